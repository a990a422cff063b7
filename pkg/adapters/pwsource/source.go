// Package pwsource provides a frame source driving a <video> element through
// Playwright. It implements the same render-surface sampling contract as the
// chromedp source on a different automation runtime.
package pwsource

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"

	"github.com/playwright-community/playwright-go"
	"golang.org/x/image/draw"

	"github.com/user/gifclip/pkg/ports"
)

// Options configures the Playwright session hosting the video.
type Options struct {
	Headless bool
	Selector string // CSS selector for the video element, default "video"
}

// Source implements ports.FrameSource via playwright-go.
type Source struct {
	pw       *playwright.Playwright
	browser  playwright.Browser
	page     playwright.Page
	selector string
}

// New creates a new Source.
func New() *Source {
	return &Source{}
}

// Available reports whether the Playwright driver is installed.
func Available() bool {
	pw, err := playwright.Run()
	if err != nil {
		return false
	}
	pw.Stop()
	return true
}

// Launch starts the browser and navigates to the page hosting the video.
func (s *Source) Launch(ctx context.Context, url string, opts Options) error {
	pw, err := playwright.Run()
	if err != nil {
		return fmt.Errorf("start playwright: %w", err)
	}
	s.pw = pw

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		Args:     []string{"--autoplay-policy=no-user-gesture-required", "--mute-audio"},
	})
	if err != nil {
		s.pw.Stop()
		return fmt.Errorf("launch chromium: %w", err)
	}
	s.browser = browser

	page, err := browser.NewPage()
	if err != nil {
		s.Close()
		return fmt.Errorf("new page: %w", err)
	}
	s.page = page

	s.selector = opts.Selector
	if s.selector == "" {
		s.selector = "video"
	}

	if _, err := page.Goto(url); err != nil {
		s.Close()
		return fmt.Errorf("goto: %w", err)
	}
	if err := page.Locator(s.selector).WaitFor(); err != nil {
		s.Close()
		return fmt.Errorf("wait for video element: %w", err)
	}
	return nil
}

// Info returns the video's intrinsic dimensions and duration.
func (s *Source) Info(ctx context.Context) (ports.SourceInfo, error) {
	raw, err := s.evaluate(ctx, fmt.Sprintf(`() => {
		const v = document.querySelector(%q);
		if (!v) { throw new Error("no video element"); }
		return { width: v.videoWidth, height: v.videoHeight, duration: v.duration, readyState: v.readyState };
	}`, s.selector))
	if err != nil {
		return ports.SourceInfo{}, fmt.Errorf("query video: %w", err)
	}
	m, ok := raw.(map[string]interface{})
	if !ok {
		return ports.SourceInfo{}, fmt.Errorf("unexpected evaluate result %T", raw)
	}
	if asInt(m["readyState"]) < 2 {
		return ports.SourceInfo{}, fmt.Errorf("video not ready (readyState=%d)", asInt(m["readyState"]))
	}
	return ports.SourceInfo{
		Width:    asInt(m["width"]),
		Height:   asInt(m["height"]),
		Duration: asFloat(m["duration"]),
	}, nil
}

// SaveState snapshots position and play state, then pauses for stable capture.
func (s *Source) SaveState(ctx context.Context) (ports.SourceState, error) {
	raw, err := s.evaluate(ctx, fmt.Sprintf(`() => {
		const v = document.querySelector(%q);
		if (!v) { throw new Error("no video element"); }
		const st = { position: v.currentTime, paused: v.paused };
		v.pause();
		return st;
	}`, s.selector))
	if err != nil {
		return ports.SourceState{}, fmt.Errorf("save state: %w", err)
	}
	m, ok := raw.(map[string]interface{})
	if !ok {
		return ports.SourceState{}, fmt.Errorf("unexpected evaluate result %T", raw)
	}
	paused, _ := m["paused"].(bool)
	return ports.SourceState{Position: asFloat(m["position"]), Paused: paused}, nil
}

// RestoreState restores the saved position and resumes playback if needed.
func (s *Source) RestoreState(ctx context.Context, state ports.SourceState) error {
	_, err := s.evaluate(ctx, fmt.Sprintf(`() => {
		const v = document.querySelector(%q);
		if (!v) { throw new Error("no video element"); }
		v.currentTime = %g;
		if (!%t) { v.play(); }
		return true;
	}`, s.selector, state.Position, state.Paused))
	if err != nil {
		return fmt.Errorf("restore state: %w", err)
	}
	return nil
}

// Present seeks to the timestamp and awaits the seeked event. Playwright
// awaits returned promises, so the evaluate call resolves on presentation.
func (s *Source) Present(ctx context.Context, timestamp float64) error {
	_, err := s.evaluate(ctx, fmt.Sprintf(`() => new Promise((resolve, reject) => {
		const v = document.querySelector(%q);
		if (!v) { reject(new Error("no video element")); return; }
		if (Math.abs(v.currentTime - %g) < 1e-6 && !v.seeking) { resolve(true); return; }
		v.addEventListener("seeked", () => resolve(true), { once: true });
		v.addEventListener("error", () => reject(new Error("seek error")), { once: true });
		v.currentTime = %g;
	})`, s.selector, timestamp, timestamp))
	if err != nil {
		return fmt.Errorf("present %.3fs: %w", timestamp, err)
	}
	return nil
}

// ReadPixels screenshots the video element and scales it to the output size.
func (s *Source) ReadPixels(ctx context.Context, width, height int) (*ports.PixelBuffer, error) {
	type shotResult struct {
		data []byte
		err  error
	}
	done := make(chan shotResult, 1)
	go func() {
		data, err := s.page.Locator(s.selector).Screenshot()
		done <- shotResult{data: data, err: err}
	}()

	var shot []byte
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-done:
		if res.err != nil {
			return nil, fmt.Errorf("screenshot: %w", res.err)
		}
		shot = res.data
	}

	img, err := png.Decode(bytes.NewReader(shot))
	if err != nil {
		return nil, fmt.Errorf("decode screenshot: %w", err)
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return ports.FromRGBA(dst), nil
}

// Close shuts down the browser and the driver.
func (s *Source) Close() error {
	if s.browser != nil {
		s.browser.Close()
		s.browser = nil
	}
	if s.pw != nil {
		s.pw.Stop()
		s.pw = nil
	}
	return nil
}

// evaluate runs a JS expression while honoring the caller's deadline.
func (s *Source) evaluate(ctx context.Context, expr string) (interface{}, error) {
	if s.page == nil {
		return nil, fmt.Errorf("pwsource: not launched")
	}
	type evalResult struct {
		val interface{}
		err error
	}
	done := make(chan evalResult, 1)
	go func() {
		val, err := s.page.Evaluate(expr)
		done <- evalResult{val: val, err: err}
	}()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-done:
		return res.val, res.err
	}
}

func asFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}

func asInt(v interface{}) int {
	return int(asFloat(v))
}

var _ ports.FrameSource = (*Source)(nil)
