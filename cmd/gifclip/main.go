// Package main provides the CLI entry point for gifclip.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/gifclip/pkg/adapters/chromesource"
	"github.com/user/gifclip/pkg/adapters/filesink"
	"github.com/user/gifclip/pkg/adapters/filesource"
	"github.com/user/gifclip/pkg/adapters/logger"
	"github.com/user/gifclip/pkg/adapters/nullsink"
	"github.com/user/gifclip/pkg/adapters/osfilesystem"
	"github.com/user/gifclip/pkg/adapters/pwsource"
	"github.com/user/gifclip/pkg/adapters/smartgif"
	"github.com/user/gifclip/pkg/config"
	"github.com/user/gifclip/pkg/orchestrator"
	"github.com/user/gifclip/pkg/ports"
)

var version = "dev"

func main() {
	app := &cli.App{
		Name:    "gifclip",
		Usage:   l10n.T("Convert a time range of a video into an animated GIF"),
		Version: version,
		Commands: []*cli.Command{
			captureCommand(),
			encodersCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "gifclip: %s\n", err)
		os.Exit(1)
	}
}

func captureCommand() *cli.Command {
	return &cli.Command{
		Name:      "capture",
		Usage:     l10n.T("Capture a video range and encode it as an animated GIF"),
		ArgsUsage: "<file-or-url>",
		Flags: []cli.Flag{
			// Output
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Required: true, Category: "Output", Usage: l10n.T("Output GIF file path (required)")},
			&cli.StringFlag{Name: "thumbnail", Category: "Output", Usage: l10n.T("Also write a PNG thumbnail to this path")},

			// Capture window
			&cli.Float64Flag{Name: "start", Aliases: []string{"s"}, Category: "Capture", Usage: l10n.T("Start time in seconds")},
			&cli.Float64Flag{Name: "end", Aliases: []string{"e"}, Category: "Capture", Usage: l10n.T("End time in seconds")},
			&cli.Float64Flag{Name: "fps", Value: 10, Category: "Capture", Usage: l10n.T("Sampling frame rate (max 60)")},
			&cli.StringFlag{Name: "quality", Aliases: []string{"q"}, Value: "medium", Category: "Capture", Usage: l10n.T("Quality preset (low, medium, high)")},
			&cli.IntFlag{Name: "max-width", Value: 640, Category: "Capture", Usage: l10n.T("Maximum output width in pixels")},
			&cli.IntFlag{Name: "max-height", Value: 640, Category: "Capture", Usage: l10n.T("Maximum output height in pixels")},
			&cli.StringFlag{Name: "strategy", Value: "auto", Category: "Capture", Usage: l10n.T("Frame extraction strategy (auto, surface, decode)")},

			// Encoding
			&cli.IntFlag{Name: "loop", Category: "Encoding", Usage: l10n.T("Loop count (0 = forever, N = N+1 plays, negative = play once)")},
			&cli.StringFlag{Name: "quantizer", Value: "histogram", Category: "Encoding", Usage: l10n.T("Palette quantizer (histogram, mediancut)")},
			&cli.StringFlag{Name: "encoder", Category: "Encoding", Usage: l10n.T("Encoder back-end name (default: automatic selection)")},
			&cli.BoolFlag{Name: "allow-fallback", Category: "Encoding", Usage: l10n.T("Retry with another back-end if encoding fails mid-run")},

			// Source
			&cli.StringFlag{Name: "source", Value: "auto", Category: "Source", Usage: l10n.T("Source kind (auto, file, chrome, playwright)")},
			&cli.StringFlag{Name: "selector", Value: "video", Category: "Source", Usage: l10n.T("CSS selector for the video element")},
			&cli.StringSliceFlag{Name: "header", Category: "Source", Usage: l10n.T("Extra HTTP header as Name:Value (repeatable)")},
			&cli.BoolFlag{Name: "no-headless", Category: "Source", Usage: l10n.T("Run browser in non-headless mode")},
			&cli.StringFlag{Name: "chrome-path", Category: "Source", Usage: l10n.T("Path to Chrome executable")},
			&cli.StringFlag{Name: "ffmpeg-path", Category: "Source", Usage: l10n.T("Path to ffmpeg executable")},
			&cli.BoolFlag{Name: "ignore-https-errors", Category: "Source", Usage: l10n.T("Ignore HTTPS certificate errors")},
			&cli.StringFlag{Name: "proxy-server", Category: "Source", Usage: l10n.T("HTTP proxy server (e.g., http://proxy:8080)")},

			// Config file
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Category: "Output", Usage: l10n.T("YAML configuration file")},

			// Debug
			&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Category: "Debug", Usage: l10n.T("Enable debug output")},
			&cli.StringFlag{Name: "debug-dir", Value: "./debug", Category: "Debug", Usage: l10n.T("Directory for debug output")},

			// Logging
			&cli.StringFlag{Name: "log-level", Aliases: []string{"l"}, Value: "info", Category: "Logging", Usage: l10n.T("Log level (debug, info, warn, error)")},
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"Q"}, Category: "Logging", Usage: l10n.T("Suppress all log output")},
		},
		Action: runCapture,
	}
}

func encodersCommand() *cli.Command {
	return &cli.Command{
		Name:  "encoders",
		Usage: l10n.T("List available GIF encoder back-ends"),
		Action: func(c *cli.Context) error {
			for _, b := range smartgif.Backends() {
				status := l10n.T("available")
				if !b.Available() {
					status = l10n.T("unavailable")
				}
				fmt.Printf("%-8s speed=%d quality=%d memory=%d (%s)\n",
					b.Info.Name, b.Info.Speed, b.Info.Quality, b.Info.Memory, status)
			}
			return nil
		},
	}
}

func runCapture(c *cli.Context) error {
	if c.NArg() < 1 {
		return errors.New(l10n.T("input file or URL argument is required"))
	}
	input := c.Args().First()

	cfg, err := buildConfig(c)
	if err != nil {
		return err
	}

	var log ports.Logger
	if c.Bool("quiet") {
		log = logger.NewNoop()
	} else {
		log = logger.NewConsole(ports.ParseLogLevel(c.String("log-level")))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Warn(l10n.T("Interrupted, shutting down..."))
		cancel()
	}()

	fs := osfilesystem.New()

	var sink ports.DebugSink
	if cfg.Debug {
		if err := fs.MkdirAll(cfg.DebugDir); err != nil {
			return fmt.Errorf("create debug directory: %w", err)
		}
		sink = filesink.New(cfg.DebugDir, fs)
	} else {
		sink = nullsink.New()
	}

	source, err := openSource(ctx, c.String("source"), input, cfg)
	if err != nil {
		return err
	}
	defer source.Close()

	orch := orchestrator.New(source, sink, log)

	log.Info(l10n.F("Capturing %s (%.1fs-%.1fs at %.0f fps)...", input, cfg.StartTime, cfg.EndTime, cfg.FrameRate))

	result, err := orch.Run(ctx, cfg.ToOrchestrator(), func(stage string, percent int, message string) {
		log.Debug(l10n.F("[%s] %d%% %s", stage, percent, message))
	})
	if err != nil {
		return err
	}

	output := c.String("output")
	if err := fs.WriteFile(output, result.GIF); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	if thumb := c.String("thumbnail"); thumb != "" {
		if err := fs.WriteFile(thumb, result.Thumbnail); err != nil {
			return fmt.Errorf("write thumbnail: %w", err)
		}
	}

	log.Info(l10n.F("Output saved to %s (%dx%d, %d frames, %d bytes, %s encoder)",
		output, result.Metadata.Width, result.Metadata.Height,
		result.Metadata.FrameCount, result.Metadata.FileSize, result.Metadata.Encoder))
	return nil
}

// buildConfig layers CLI flags over the config file (or the defaults).
func buildConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Defaults()
	if path := c.String("config"); path != "" {
		loaded, err := config.LoadFile(path)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	if c.IsSet("start") {
		cfg.StartTime = c.Float64("start")
	}
	if c.IsSet("end") {
		cfg.EndTime = c.Float64("end")
	}
	if c.IsSet("fps") {
		cfg.FrameRate = c.Float64("fps")
	}
	if c.IsSet("quality") {
		cfg.Quality = c.String("quality")
	}
	if c.IsSet("max-width") {
		cfg.MaxWidth = c.Int("max-width")
	}
	if c.IsSet("max-height") {
		cfg.MaxHeight = c.Int("max-height")
	}
	if c.IsSet("loop") {
		cfg.LoopCount = c.Int("loop")
	}
	if c.IsSet("strategy") {
		cfg.Strategy = c.String("strategy")
	}
	if c.IsSet("quantizer") {
		cfg.Quantizer = c.String("quantizer")
	}
	if c.IsSet("encoder") {
		cfg.Encoder = c.String("encoder")
	}
	if c.IsSet("allow-fallback") {
		cfg.AllowFallback = c.Bool("allow-fallback")
	}
	if c.IsSet("selector") {
		cfg.Selector = c.String("selector")
	}
	if c.Bool("no-headless") {
		cfg.Headless = false
	}
	if c.IsSet("chrome-path") {
		cfg.ChromePath = c.String("chrome-path")
	}
	if c.IsSet("ffmpeg-path") {
		cfg.FFmpegPath = c.String("ffmpeg-path")
	}
	if c.Bool("ignore-https-errors") {
		cfg.IgnoreHTTPSErrors = true
	}
	if c.IsSet("proxy-server") {
		cfg.ProxyServer = c.String("proxy-server")
	}
	if headers := c.StringSlice("header"); len(headers) > 0 {
		if cfg.Headers == nil {
			cfg.Headers = make(map[string]string, len(headers))
		}
		for _, h := range headers {
			name, value, ok := strings.Cut(h, ":")
			if !ok {
				return cfg, errors.New(l10n.F("invalid header %q, expected Name:Value", h))
			}
			cfg.Headers[strings.TrimSpace(name)] = strings.TrimSpace(value)
		}
	}
	if c.Bool("debug") {
		cfg.Debug = true
	}
	if c.IsSet("debug-dir") {
		cfg.DebugDir = c.String("debug-dir")
	}
	return cfg, nil
}

// openSource resolves the source kind and launches the matching adapter.
func openSource(ctx context.Context, kind, input string, cfg config.Config) (ports.FrameSource, error) {
	if kind == "auto" {
		if strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://") {
			kind = "chrome"
		} else {
			kind = "file"
		}
	}

	switch kind {
	case "file":
		src := filesource.New(input)
		if err := src.Open(ctx, cfg.FFmpegPath); err != nil {
			return nil, err
		}
		return src, nil
	case "chrome":
		src := chromesource.New()
		err := src.Launch(ctx, input, chromesource.Options{
			Headless:          cfg.Headless,
			ChromePath:        cfg.ChromePath,
			Selector:          cfg.Selector,
			Headers:           cfg.Headers,
			IgnoreHTTPSErrors: cfg.IgnoreHTTPSErrors,
			ProxyServer:       cfg.ProxyServer,
		})
		if err != nil {
			return nil, err
		}
		return src, nil
	case "playwright":
		src := pwsource.New()
		err := src.Launch(ctx, input, pwsource.Options{
			Headless: cfg.Headless,
			Selector: cfg.Selector,
		})
		if err != nil {
			return nil, err
		}
		return src, nil
	default:
		return nil, errors.New(l10n.F("unknown source kind %q", kind))
	}
}
