package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/Versifine/strider/internal/body"
	"github.com/Versifine/strider/internal/config"
	"github.com/Versifine/strider/internal/debug"
	"github.com/Versifine/strider/internal/event"
	"github.com/Versifine/strider/internal/level"
	"github.com/Versifine/strider/internal/logger"
	"github.com/Versifine/strider/internal/physics"
	"github.com/Versifine/strider/internal/sim"
)

var CLI struct {
	Config string `help:"Path to the config file." default:"configs/config.yaml" type:"path"`
	Debug  bool   `help:"Whether to enable debug logging."`

	Console struct {
	} `cmd:"" help:"Drive the controller interactively from the terminal."`

	Run struct {
		Script string `arg:"" name:"script" help:"Input script to play." type:"existingfile"`
		Trace  bool   `help:"Log every frame's transform at debug level."`
	} `cmd:"" help:"Play an input script headlessly and print the final transform."`
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name("strider"),
		kong.Description("a first-person kinematic character controller"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}))

	os.Exit(run(kctx.Command()))
}

// run executes command and returns the process exit code. Deferred cleanup
// runs before main exits.
func run(command string) int {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		return 1
	}

	logLevel := cfg.Logging.Level
	if CLI.Debug {
		logLevel = "debug"
	}
	var out io.Writer = os.Stdout
	if command == "console" {
		// Keep log lines off the console's status line.
		out = os.Stderr
	}
	closer, err := logger.Init(logger.Config{
		Level:  logLevel,
		Format: cfg.Logging.Format,
		Output: out,
		File:   cfg.Logging.File,
	})
	if err != nil {
		slog.Error("Failed to init logger", "error", err)
		return 1
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch command {
	case "console":
		err = consoleCommand(ctx, cfg)
	case "run <script>":
		err = runCommand(ctx, cfg, CLI.Run.Script, CLI.Run.Trace)
	}
	if err != nil {
		slog.Error("Command failed", "command", command, "error", err)
		return 1
	}
	return 0
}

func newBody(cfg *config.Config, bus *event.Bus) (*body.Body, error) {
	mesh, err := level.Load(cfg.Level.Path)
	if err != nil {
		return nil, err
	}
	slog.Info("Level loaded",
		"path", cfg.Level.Path,
		"triangles", mesh.Len(),
		"groups", mesh.Groups(),
	)
	return body.New(cfg.Level.SpawnPoint(), cfg.Controller.Tuning(), mesh, nil, bus), nil
}

// subscribeGroundEvents logs ground transitions. The bus runs each handler
// on its own goroutine, so two transitions a frame apart can be logged out
// of order; the z and floor_z fields tell them apart.
func subscribeGroundEvents(bus *event.Bus) {
	for _, name := range []string{event.EventLanded, event.EventLeftGround, event.EventUnstuck} {
		bus.Subscribe(name, func(raw any) {
			evt, ok := raw.(event.GroundEvent)
			if !ok {
				return
			}
			slog.Info("Ground event",
				"event", name,
				"x", evt.Position.X(),
				"y", evt.Position.Y(),
				"z", evt.Position.Z(),
				"vertical_velocity", evt.VerticalVelocity,
				"floor_z", evt.HighestZ,
			)
		})
	}
}

func consoleCommand(ctx context.Context, cfg *config.Config) error {
	bus := event.NewBus()
	subscribeGroundEvents(bus)

	b, err := newBody(cfg, bus)
	if err != nil {
		return err
	}

	w, err := config.Watch(CLI.Config)
	if err != nil {
		slog.Warn("Config hot reload disabled", "error", err)
	} else {
		defer w.Close()
		go watchTuning(ctx, w, b)
	}

	console := debug.NewConsole(b, debug.Options{
		TickInterval: cfg.Console.TickInterval,
		MovePulse:    cfg.Console.MovePulse,
		LookStep:     cfg.Console.LookStep,
	})
	return console.Start(ctx)
}

func watchTuning(ctx context.Context, w *config.Watcher, b *body.Body) {
	for {
		select {
		case <-ctx.Done():
			return
		case next, ok := <-w.Updates:
			if !ok {
				return
			}
			b.SetTuning(next.Controller.Tuning())
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			slog.Warn("Config reload rejected, keeping current tuning", "error", err)
		}
	}
}

func runCommand(ctx context.Context, cfg *config.Config, path string, trace bool) error {
	script, err := sim.LoadScript(path)
	if err != nil {
		return err
	}

	bus := event.NewBus()
	subscribeGroundEvents(bus)
	defer bus.Wait()

	b, err := newBody(cfg, bus)
	if err != nil {
		return err
	}

	var onFrame func(int, physics.Result)
	if trace {
		onFrame = func(i int, res physics.Result) {
			p := res.Transform.Position
			slog.Debug("Frame",
				"frame", i,
				"branch", res.Branch.String(),
				"x", p.X(),
				"y", p.Y(),
				"z", p.Z(),
				"heading", res.Transform.Heading,
			)
		}
	}

	sum, err := sim.Run(ctx, b, script, onFrame)
	if err != nil {
		return fmt.Errorf("run script %s: %w", path, err)
	}

	p := sum.Final.Position
	fmt.Printf("frames=%d elapsed=%.3fs\n", sum.Frames, sum.Elapsed)
	fmt.Printf("position=(%.3f, %.3f, %.3f) heading=%.2f camera=%.2f pitch=%.2f\n",
		p.X(), p.Y(), p.Z(), sum.Final.Heading, sum.Final.CameraHeading, sum.Final.Pitch)
	fmt.Printf("grounded=%t landings=%d takeoffs=%d unstuck=%d\n",
		sum.Grounded, sum.Landings, sum.Takeoffs, sum.Unstuck)
	return nil
}
