// Package chromesource provides a frame source driving a <video> element in
// Chrome via chromedp. Seeking awaits the element's seeked event so readback
// always sees the presented frame; this is the render-surface sampling
// strategy.
package chromesource

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"golang.org/x/image/draw"

	"github.com/user/gifclip/pkg/ports"
)

// Options configures the browser session hosting the video.
type Options struct {
	Headless          bool
	ChromePath        string
	Selector          string // CSS selector for the video element, default "video"
	Headers           map[string]string
	IgnoreHTTPSErrors bool
	ProxyServer       string
}

// Source implements ports.FrameSource over a chromedp session.
type Source struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	ctx         context.Context
	cancel      context.CancelFunc

	selector string
}

// New creates a new Source.
func New() *Source {
	return &Source{}
}

// Launch starts the browser and navigates to the page hosting the video.
func (s *Source) Launch(ctx context.Context, url string, opts Options) error {
	chromedpOpts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.Flag("autoplay-policy", "no-user-gesture-required"),
		chromedp.Flag("disable-gpu", true),
	}

	if opts.Headless {
		chromedpOpts = append(chromedpOpts, chromedp.Flag("headless", "new"))
	}

	chromePath := ResolveChromePath(opts.ChromePath)
	if chromePath == "" {
		return fmt.Errorf("chrome not found: install Chrome/Chromium, set CHROME_PATH, or pass an explicit path")
	}
	chromedpOpts = append(chromedpOpts, chromedp.ExecPath(chromePath))

	if opts.IgnoreHTTPSErrors {
		chromedpOpts = append(chromedpOpts,
			chromedp.Flag("ignore-certificate-errors", true),
			chromedp.Flag("allow-insecure-localhost", true))
	}
	if opts.ProxyServer != "" {
		chromedpOpts = append(chromedpOpts, chromedp.Flag("proxy-server", opts.ProxyServer))
	}

	s.allocCtx, s.allocCancel = chromedp.NewExecAllocator(ctx, chromedpOpts...)
	s.ctx, s.cancel = chromedp.NewContext(s.allocCtx)
	s.selector = opts.Selector
	if s.selector == "" {
		s.selector = "video"
	}

	if len(opts.Headers) > 0 {
		headers := make(map[string]interface{}, len(opts.Headers))
		for k, v := range opts.Headers {
			headers[k] = v
		}
		if err := chromedp.Run(s.ctx, network.SetExtraHTTPHeaders(network.Headers(headers))); err != nil {
			return fmt.Errorf("set headers: %w", err)
		}
	}

	if err := chromedp.Run(s.ctx,
		chromedp.Navigate(url),
		chromedp.WaitVisible(s.selector, chromedp.ByQuery),
	); err != nil {
		return fmt.Errorf("navigate: %w", err)
	}
	return nil
}

// videoExpr builds a JS expression scoped to the configured element.
func (s *Source) videoExpr(body string) string {
	return fmt.Sprintf(`(() => {
		const v = document.querySelector(%q);
		if (!v) { throw new Error("no video element"); }
		%s
	})()`, s.selector, body)
}

// Info returns the video's intrinsic dimensions and duration.
func (s *Source) Info(ctx context.Context) (ports.SourceInfo, error) {
	var info struct {
		Width      int     `json:"width"`
		Height     int     `json:"height"`
		Duration   float64 `json:"duration"`
		ReadyState int     `json:"readyState"`
	}
	expr := s.videoExpr(`return {
		width: v.videoWidth,
		height: v.videoHeight,
		duration: v.duration,
		readyState: v.readyState,
	};`)
	if err := s.run(ctx, chromedp.Evaluate(expr, &info)); err != nil {
		return ports.SourceInfo{}, fmt.Errorf("query video: %w", err)
	}
	// HAVE_CURRENT_DATA is the minimum for pixel readback.
	if info.ReadyState < 2 {
		return ports.SourceInfo{}, fmt.Errorf("video not ready (readyState=%d)", info.ReadyState)
	}
	return ports.SourceInfo{
		Width:    info.Width,
		Height:   info.Height,
		Duration: info.Duration,
	}, nil
}

// SaveState snapshots position and play state, then pauses for stable capture.
func (s *Source) SaveState(ctx context.Context) (ports.SourceState, error) {
	var state struct {
		Position float64 `json:"position"`
		Paused   bool    `json:"paused"`
	}
	expr := s.videoExpr(`const st = { position: v.currentTime, paused: v.paused };
		v.pause();
		return st;`)
	if err := s.run(ctx, chromedp.Evaluate(expr, &state)); err != nil {
		return ports.SourceState{}, fmt.Errorf("save state: %w", err)
	}
	return ports.SourceState{Position: state.Position, Paused: state.Paused}, nil
}

// RestoreState restores the saved position and resumes playback if the video
// was playing before capture.
func (s *Source) RestoreState(ctx context.Context, state ports.SourceState) error {
	expr := s.videoExpr(fmt.Sprintf(`v.currentTime = %g;
		if (!%t) { v.play(); }
		return true;`, state.Position, state.Paused))
	var ok bool
	if err := s.run(ctx, chromedp.Evaluate(expr, &ok)); err != nil {
		return fmt.Errorf("restore state: %w", err)
	}
	return nil
}

// Present seeks the video to the timestamp and resolves once the seeked
// event confirms the frame is presented. The context bounds the wait.
func (s *Source) Present(ctx context.Context, timestamp float64) error {
	expr := fmt.Sprintf(`new Promise((resolve, reject) => {
		const v = document.querySelector(%q);
		if (!v) { reject(new Error("no video element")); return; }
		if (Math.abs(v.currentTime - %g) < 1e-6 && !v.seeking) { resolve(true); return; }
		v.addEventListener("seeked", () => resolve(true), { once: true });
		v.addEventListener("error", () => reject(new Error("seek error")), { once: true });
		v.currentTime = %g;
	})`, s.selector, timestamp, timestamp)

	var ok bool
	err := s.run(ctx, chromedp.Evaluate(expr, &ok, func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
		return p.WithAwaitPromise(true)
	}))
	if err != nil {
		return fmt.Errorf("present %.3fs: %w", timestamp, err)
	}
	return nil
}

// ReadPixels screenshots the video element and scales it to the output size.
func (s *Source) ReadPixels(ctx context.Context, width, height int) (*ports.PixelBuffer, error) {
	var shot []byte
	if err := s.run(ctx, chromedp.Screenshot(s.selector, &shot, chromedp.ByQuery)); err != nil {
		return nil, fmt.Errorf("screenshot: %w", err)
	}

	img, err := png.Decode(bytes.NewReader(shot))
	if err != nil {
		return nil, fmt.Errorf("decode screenshot: %w", err)
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return ports.FromRGBA(dst), nil
}

// Close shuts down the browser.
func (s *Source) Close() error {
	if s.cancel != nil {
		s.cancel()
	}
	if s.allocCancel != nil {
		s.allocCancel()
	}
	return nil
}

// run executes actions on the session context while honoring the caller's
// deadline and cancellation.
func (s *Source) run(ctx context.Context, actions ...chromedp.Action) error {
	if s.ctx == nil {
		return fmt.Errorf("chromesource: not launched")
	}
	done := make(chan error, 1)
	go func() {
		done <- chromedp.Run(s.ctx, actions...)
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}

var _ ports.FrameSource = (*Source)(nil)
