// Package gifclip provides a high-level API for converting a time range of a
// video source into an animated GIF.
package gifclip

import (
	"context"

	adapterlogger "github.com/user/gifclip/pkg/adapters/logger"
	"github.com/user/gifclip/pkg/adapters/nullsink"
	"github.com/user/gifclip/pkg/orchestrator"
	"github.com/user/gifclip/pkg/ports"
)

// CaptureOptions selects the time window and sampling parameters for a run.
type CaptureOptions struct {
	StartTime float64 // seconds, >= 0
	EndTime   float64 // seconds, > StartTime and <= source duration
	FrameRate float64 // frames per second, in (0, 60]
	Quality   string  // low, medium or high; empty means medium
	MaxWidth  int     // 0 means unconstrained
	MaxHeight int     // 0 means unconstrained
	Strategy  string  // auto, surface or decode; empty means auto
}

// EncodingOptions selects the encoder back-end and GIF parameters.
type EncodingOptions struct {
	Encoder        string // back-end name; empty selects automatically
	LoopCount      int    // 0 forever, N plays N+1 times, negative plays once
	Quantizer      string // histogram or mediancut; empty means histogram
	DelayOverrides []int  // optional per-frame delays in centiseconds
	AllowFallback  bool   // retry with another back-end on mid-run failure
	ThumbnailSize  int    // square edge length; 0 means 150
}

// RunPipeline captures the requested range from the source and assembles the
// GIF, thumbnail and metadata. It is the sole entry point for embedders;
// cancellation threads through the context and progress may be nil.
func RunPipeline(
	ctx context.Context,
	source ports.FrameSource,
	captureOpts CaptureOptions,
	encodingOpts EncodingOptions,
	progress ports.ProgressSink,
	logger ports.Logger,
) (orchestrator.Result, error) {
	if logger == nil {
		logger = adapterlogger.NewNoop()
	}

	cfg := orchestrator.DefaultConfig()
	cfg.StartTime = captureOpts.StartTime
	cfg.EndTime = captureOpts.EndTime
	if captureOpts.FrameRate > 0 {
		cfg.FrameRate = captureOpts.FrameRate
	}
	if captureOpts.Quality != "" {
		cfg.Quality = qualityFromString(captureOpts.Quality)
	}
	cfg.MaxWidth = captureOpts.MaxWidth
	cfg.MaxHeight = captureOpts.MaxHeight
	if captureOpts.Strategy != "" {
		cfg.Strategy = strategyFromString(captureOpts.Strategy)
	}

	cfg.Encoder = encodingOpts.Encoder
	cfg.LoopCount = encodingOpts.LoopCount
	if encodingOpts.Quantizer != "" {
		cfg.Quantizer = encodingOpts.Quantizer
	}
	cfg.DelayOverrides = encodingOpts.DelayOverrides
	cfg.AllowFallback = encodingOpts.AllowFallback
	cfg.ThumbnailSize = encodingOpts.ThumbnailSize

	o := orchestrator.New(source, nullsink.New(), logger)
	return o.Run(ctx, cfg, progress)
}
