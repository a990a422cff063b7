// Package orchestrator coordinates the capture, quantize and encode stages.
package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ideamans/go-l10n"

	"github.com/user/gifclip/pkg/adapters/ggthumb"
	"github.com/user/gifclip/pkg/adapters/smartgif"
	"github.com/user/gifclip/pkg/pipeline"
	"github.com/user/gifclip/pkg/ports"
	"github.com/user/gifclip/pkg/stages/capture"
	"github.com/user/gifclip/pkg/stages/encode"
	"github.com/user/gifclip/pkg/stages/quantize"
)

// Config contains all configuration for one pipeline run.
type Config struct {
	// Time window and sampling
	StartTime float64
	EndTime   float64
	FrameRate float64

	// Output
	Quality   pipeline.Quality
	MaxWidth  int
	MaxHeight int
	LoopCount int // 0 forever, N plays N+1 times, negative plays once

	// Strategies
	Strategy  pipeline.Strategy
	Quantizer string // histogram or mediancut

	// Encoder selection: a non-empty name selects explicitly, otherwise
	// the first available back-end meeting Criteria wins. Falling back to
	// another back-end after a mid-run failure only happens when
	// AllowFallback is set; surfacing the failure is the default.
	Encoder       string
	Criteria      smartgif.Criteria
	AllowFallback bool

	// DelayOverrides optionally replaces per-frame delays (centiseconds),
	// indexed by frame position.
	DelayOverrides []int

	// ThumbnailSize is the square thumbnail edge length; 0 means 150.
	ThumbnailSize int
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		FrameRate: 10,
		Quality:   pipeline.QualityMedium,
		MaxWidth:  640,
		MaxHeight: 640,
		LoopCount: 0,
		Strategy:  pipeline.StrategyAuto,
		Quantizer: quantize.QuantizerHistogram,
	}
}

// Metadata describes the produced GIF.
type Metadata struct {
	Width            int     `json:"width"`
	Height           int     `json:"height"`
	Duration         float64 `json:"duration"` // seconds
	FrameCount       int     `json:"frameCount"`
	FileSize         int64   `json:"fileSize"`
	ExtractionMethod string  `json:"extractionMethod"`
	Encoder          string  `json:"encoder"`
}

// Result is the pipeline output. Ownership transfers to the caller.
type Result struct {
	GIF       []byte
	Thumbnail []byte // PNG
	Metadata  Metadata
}

// Orchestrator wires one frame source to the pipeline stages. Stage values
// are constructed per run; the orchestrator itself holds no cross-run
// mutable state, so distinct runs may use distinct orchestrators
// concurrently as long as each has its own source.
type Orchestrator struct {
	source ports.FrameSource
	sink   ports.DebugSink
	logger ports.Logger
}

// New creates a new Orchestrator.
func New(source ports.FrameSource, sink ports.DebugSink, logger ports.Logger) *Orchestrator {
	return &Orchestrator{
		source: source,
		sink:   sink,
		logger: logger,
	}
}

// Run executes the whole pipeline: capture, quantize, encode, finalize.
// Progress arrives on one 0-100 scale. On any failure the sink receives one
// final failed-stage notification and no partial GIF is ever returned.
func (o *Orchestrator) Run(ctx context.Context, config Config, progress ports.ProgressSink) (Result, error) {
	if progress == nil {
		progress = ports.NopProgress
	}

	o.logger.Info(l10n.T("Starting pipeline"))
	progress(ports.StageCapture, pipeline.CaptureBandStart, "starting capture")

	// 1. Capture
	captured, err := o.runCapture(ctx, config, progress)
	if err != nil {
		o.logger.Error(l10n.F("Capture failed: %s", err))
		progress(ports.StageFailed, pipeline.CaptureBandEnd, err.Error())
		return Result{}, fmt.Errorf("capture stage: %w", err)
	}
	o.logger.Info(l10n.F("Captured %d frames via %s", len(captured.Frames), captured.Method))
	o.saveCaptureDebug(captured)

	// 2. Quantize. The palette is complete before any frame is mapped.
	paletteSize := config.Quality.PaletteSize()
	o.logger.Info(l10n.F("Building shared palette (%d colors)", paletteSize))
	progress(ports.StageQuantize, pipeline.CaptureBandEnd, "building palette")

	quantized, err := quantize.New(o.logger).Execute(ctx, pipeline.QuantizeInput{
		Frames:      captured.Frames,
		PaletteSize: paletteSize,
		Quantizer:   config.Quantizer,
	})
	if err != nil {
		o.logger.Error(l10n.F("Quantize failed: %s", err))
		progress(ports.StageFailed, pipeline.CaptureBandEnd, err.Error())
		return Result{}, fmt.Errorf("quantize stage: %w", err)
	}
	if o.sink.Enabled() {
		o.sink.SavePalette(quantized.Palette)
	}

	// 3. Encode
	encoded, backendName, err := o.runEncode(ctx, config, captured, quantized, progress)
	if err != nil {
		o.logger.Error(l10n.F("Encoding failed: %s", err))
		progress(ports.StageFailed, pipeline.EncodeBandEnd, err.Error())
		return Result{}, fmt.Errorf("encode stage: %w", err)
	}
	o.logger.Info(l10n.F("GIF encoded: %d bytes", len(encoded.Data)))

	// 4. Finalize: thumbnail from the first frame.
	progress(ports.StageFinalize, pipeline.FinalizeBandStart, "rendering thumbnail")
	thumb, err := ggthumb.Render(captured.Frames[0].Buffer, config.ThumbnailSize)
	if err != nil {
		progress(ports.StageFailed, pipeline.FinalizeBandStart, err.Error())
		return Result{}, fmt.Errorf("thumbnail: %w", err)
	}
	if o.sink.Enabled() {
		o.sink.SaveGIF(encoded.Data)
	}

	o.logger.Info(l10n.T("Pipeline completed successfully"))
	progress(ports.StageFinalize, pipeline.FinalizeBandEnd, "done")

	return Result{
		GIF:       encoded.Data,
		Thumbnail: thumb,
		Metadata: Metadata{
			Width:            captured.Width,
			Height:           captured.Height,
			Duration:         config.EndTime - config.StartTime,
			FrameCount:       len(captured.Frames),
			FileSize:         encoded.FileSize,
			ExtractionMethod: captured.Method,
			Encoder:          backendName,
		},
	}, nil
}

func (o *Orchestrator) runCapture(ctx context.Context, config Config, progress ports.ProgressSink) (pipeline.CaptureResult, error) {
	stage := capture.New(o.source, o.sink, o.logger)
	stage.Progress = func(done, total int) {
		pct := pipeline.BandPercent(pipeline.CaptureBandStart, pipeline.CaptureBandEnd,
			float64(done)/float64(total))
		progress(ports.StageCapture, pct, fmt.Sprintf("frame %d/%d", done, total))
	}
	return stage.Execute(ctx, pipeline.CaptureInput{
		StartTime: config.StartTime,
		EndTime:   config.EndTime,
		FrameRate: config.FrameRate,
		Quality:   config.Quality,
		MaxWidth:  config.MaxWidth,
		MaxHeight: config.MaxHeight,
		Strategy:  config.Strategy,
	})
}

func (o *Orchestrator) runEncode(ctx context.Context, config Config, captured pipeline.CaptureResult, quantized pipeline.QuantizeResult, progress ports.ProgressSink) (pipeline.EncodeResult, string, error) {
	backend, info, err := smartgif.New(config.Encoder, config.Criteria)
	if err != nil {
		return pipeline.EncodeResult{}, "", err
	}

	result, err := o.encodeWith(ctx, backend, info.Name, config, captured, quantized, progress)
	if err == nil {
		return result, info.Name, nil
	}

	// Fallback to another back-end is an explicit opt-in, and never for
	// cancellation or empty input.
	if !config.AllowFallback ||
		errors.Is(err, pipeline.ErrCancelled) || errors.Is(err, pipeline.ErrEmptyInput) {
		return pipeline.EncodeResult{}, info.Name, err
	}

	for _, b := range smartgif.Backends() {
		if b.Info.Name == info.Name || !b.Available() {
			continue
		}
		o.logger.Warn(l10n.F("Back-end %s failed (%s), retrying with %s", info.Name, err, b.Info.Name))
		result, rerr := o.encodeWith(ctx, b.New(), b.Info.Name, config, captured, quantized, progress)
		if rerr == nil {
			return result, b.Info.Name, nil
		}
		err = rerr
	}
	return pipeline.EncodeResult{}, info.Name, err
}

func (o *Orchestrator) encodeWith(ctx context.Context, backend ports.GifEncoder, name string, config Config, captured pipeline.CaptureResult, quantized pipeline.QuantizeResult, progress ports.ProgressSink) (pipeline.EncodeResult, error) {
	o.logger.Info(l10n.F("Encoding GIF with %s back-end", name))
	stage := encode.NewStage(backend, o.logger)
	stage.Progress = func(done, total int) {
		pct := pipeline.BandPercent(pipeline.EncodeBandStart, pipeline.EncodeBandEnd,
			float64(done)/float64(total))
		progress(ports.StageEncode, pct, fmt.Sprintf("frame %d/%d", done, total))
	}
	return stage.Execute(ctx, pipeline.EncodeInput{
		Frames:         captured.Frames,
		Palette:        quantized.Palette,
		Width:          captured.Width,
		Height:         captured.Height,
		LoopCount:      config.LoopCount,
		DelayOverrides: config.DelayOverrides,
	})
}

func (o *Orchestrator) saveCaptureDebug(captured pipeline.CaptureResult) {
	if !o.sink.Enabled() {
		return
	}
	meta := struct {
		Width           int     `json:"width"`
		Height          int     `json:"height"`
		FrameCount      int     `json:"frameCount"`
		ActualFrameRate float64 `json:"actualFrameRate"`
		Method          string  `json:"method"`
	}{
		Width:           captured.Width,
		Height:          captured.Height,
		FrameCount:      len(captured.Frames),
		ActualFrameRate: captured.ActualFrameRate,
		Method:          captured.Method,
	}
	if data, err := json.MarshalIndent(meta, "", "  "); err == nil {
		o.sink.SaveCaptureJSON(data)
	}
}
