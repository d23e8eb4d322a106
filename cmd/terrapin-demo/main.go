// terrapin-demo drives the engine through a few scenes, either on the
// Linux framebuffer or headless with a PNG written at the end.
package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"time"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/terrapin-graphics/terrapin"
	"github.com/terrapin-graphics/terrapin/config"
	"github.com/terrapin-graphics/terrapin/fbdev"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("config error:", err)
		os.Exit(2)
	}

	scene := flag.String("scene", "spiral", "scene to draw: spiral | fill | stamps | qr")
	out := flag.String("out", "", "write the final frame to this PNG file")
	headless := flag.Bool("headless", false, "render offscreen instead of opening the framebuffer")
	fbPath := flag.String("fb", cfg.Framebuffer, "framebuffer device; also configurable via TERRAPIN_FRAMEBUFFER")
	debug := flag.Bool("debug", false, "enable debug logging to ./terrapin-debug.log")
	stdioLog := flag.String("stdio-log", "", "redirect stdout+stderr (including panics) to this file; also configurable via TERRAPIN_STDIO_LOG")
	payload := flag.String("qr-payload", "https://github.com/terrapin-graphics/terrapin", "payload for the qr scene")
	speed := flag.Float64("speed", terrapin.SpeedFastest, "turtle speed 0..10; 0 disables animation")
	flag.Parse()

	// Best-effort: send all stdout/stderr output (including panic stack
	// traces) to a file so crashes are diagnosable even when the console
	// is left in graphics mode.
	logPath := *stdioLog
	if logPath == "" {
		logPath = os.Getenv("TERRAPIN_STDIO_LOG")
	}
	if logPath != "" {
		if err := redirectStdIO(logPath); err != nil {
			fmt.Println("stdio log redirect error:", err)
		}
	}

	var logger terrapin.Logger = terrapin.NoopLogger{}
	if *debug {
		f, err := os.OpenFile("./terrapin-debug.log", os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err == nil {
			logger = terrapin.NewFileLogger(f)
			logger.Infof("main", "debug logging enabled")
		} else {
			fmt.Println("debug log open error:", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var display terrapin.Display
	if *headless {
		display = terrapin.NewOffscreen(cfg.Width, cfg.Height)
	} else {
		d, err := fbdev.Open(*fbPath, cfg.Width, cfg.Height, logger)
		if err != nil {
			fmt.Println("framebuffer open error:", err)
			os.Exit(1)
		}
		display = d
	}

	screen, err := terrapin.NewScreen(ctx, display, logger)
	if err != nil {
		fmt.Println("screen error:", err)
		os.Exit(1)
	}
	screen.SetDelay(time.Duration(cfg.DelayMS) * time.Millisecond)
	if cfg.FontPath != "" {
		if ttf, err := os.ReadFile(cfg.FontPath); err == nil {
			if err := screen.SetFont(ttf, cfg.FontSize); err != nil {
				logger.Errorf("main", "font load failed: %v", err)
			}
		}
	}

	t := terrapin.NewTurtle(screen)
	t.SetSpeed(*speed)

	switch *scene {
	case "spiral":
		drawSpiral(t)
	case "fill":
		drawFill(t)
	case "stamps":
		drawStamps(t)
	case "qr":
		if err := drawQR(t, *payload); err != nil {
			fmt.Println("qr error:", err)
			os.Exit(1)
		}
	default:
		fmt.Println("unknown scene:", *scene)
		os.Exit(2)
	}

	if *out != "" {
		if err := screen.Save(*out); err != nil {
			fmt.Println("save error:", err)
			os.Exit(1)
		}
		fmt.Println("saved", *out)
	}

	if !*headless {
		// Leave the drawing up until a click or escape.
		screen.OnKeyPress(func() { screen.Bye() }, terrapin.KeyEscape)
		screen.ExitOnClick()
	}
}

func drawSpiral(t *terrapin.Turtle) {
	t.SetPenColor(terrapin.Purple)
	for i := 0; i < 120; i++ {
		t.SetWidth(1 + i/30)
		t.Forward(float64(3 + i*2))
		t.Right(59)
	}
	t.Home()
	t.Write("terrapin")
}

func drawFill(t *terrapin.Turtle) {
	t.SetPenColor(terrapin.Gray)
	t.SetFillColor(terrapin.Orange)
	t.PenUp()
	t.GoTo(-120, -70)
	t.PenDown()
	t.BeginFill()
	for i := 0; i < 5; i++ {
		t.Forward(240)
		t.Left(144)
	}
	t.EndFill()
}

func drawStamps(t *terrapin.Turtle) {
	t.SetShape(terrapin.ShapeArrow)
	t.PenUp()
	t.Radians()
	for i := 0; i < 12; i++ {
		a := 2 * math.Pi * float64(i) / 12
		t.GoTo(150*math.Cos(a), 150*math.Sin(a))
		t.SetHeading(a + math.Pi/2)
		t.Stamp()
	}
	t.Degrees()
	t.Home()
}

// drawQR walks the turtle over the module grid of a QR code, filling one
// square per dark module.
func drawQR(t *terrapin.Turtle, payload string) error {
	qr, err := qrcode.New(payload, qrcode.Medium)
	if err != nil {
		return err
	}
	grid := qr.Bitmap()
	n := len(grid)
	const cell = 6.0
	half := cell * float64(n) / 2

	t.HideTurtle()
	t.PenUp()
	t.SetFillColor(terrapin.Black)
	for row, line := range grid {
		for col, dark := range line {
			if !dark {
				continue
			}
			x := float64(col)*cell - half
			y := half - float64(row)*cell
			t.GoTo(x, y)
			t.SetHeading(0)
			t.BeginFill()
			for s := 0; s < 4; s++ {
				t.Forward(cell)
				t.Right(90)
			}
			t.EndFill()
		}
	}
	t.Home()
	return nil
}
