// Package config loads engine defaults from TERRAPIN_* environment
// variables.
package config

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Width       int     `envconfig:"WIDTH" default:"800"`
	Height      int     `envconfig:"HEIGHT" default:"600"`
	Framebuffer string  `envconfig:"FRAMEBUFFER" default:"/dev/fb0"`
	DelayMS     int     `envconfig:"DELAY_MS" default:"10"`
	FontPath    string  `envconfig:"FONT_PATH" default:""`
	FontSize    float64 `envconfig:"FONT_SIZE" default:"24"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("terrapin", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
