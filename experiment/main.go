// Package main is a test program for seek-and-screenshot frame capture.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

const (
	targetURL     = "https://interactive-examples.mdn.mozilla.net/pages/tabbed/video.html"
	framesDir     = "tmp/frames"
	videoSelector = "video"
	seekStep      = 0.5
	seekCount     = 10
	probeTimeout  = 60 * time.Second
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if err := os.MkdirAll(framesDir, 0o755); err != nil {
		return fmt.Errorf("create frames dir: %w", err)
	}

	url := targetURL
	if len(os.Args) > 1 {
		url = os.Args[1]
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(),
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("autoplay-policy", "no-user-gesture-required"),
			chromedp.Flag("mute-audio", true),
		)...)
	defer allocCancel()

	ctx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	ctx, timeoutCancel := context.WithTimeout(ctx, probeTimeout)
	defer timeoutCancel()

	fmt.Printf("loading %s\n", url)
	err := chromedp.Run(ctx,
		chromedp.Navigate(url),
		chromedp.WaitVisible(videoSelector, chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("navigate: %w", err)
	}

	// Wait for metadata so duration and dimensions are known.
	var ready bool
	for i := 0; i < 50 && !ready; i++ {
		if err := chromedp.Run(ctx, chromedp.Evaluate(
			fmt.Sprintf(`document.querySelector(%q).readyState >= 2`, videoSelector), &ready)); err != nil {
			return fmt.Errorf("readiness poll: %w", err)
		}
		time.Sleep(100 * time.Millisecond)
	}
	if !ready {
		return fmt.Errorf("video never reached HAVE_CURRENT_DATA")
	}

	var duration float64
	if err := chromedp.Run(ctx, chromedp.Evaluate(
		fmt.Sprintf(`document.querySelector(%q).duration`, videoSelector), &duration)); err != nil {
		return fmt.Errorf("read duration: %w", err)
	}
	fmt.Printf("video duration: %.2fs\n", duration)

	started := time.Now()
	for i := 0; i < seekCount; i++ {
		t := float64(i) * seekStep
		if t > duration {
			break
		}

		// Seek and wait for the seeked event before reading pixels.
		seekExpr := fmt.Sprintf(`new Promise((resolve) => {
			const v = document.querySelector(%q);
			v.addEventListener('seeked', () => resolve(true), { once: true });
			v.currentTime = %f;
		})`, videoSelector, t)
		var seeked bool
		awaitPromise := func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
			return p.WithAwaitPromise(true)
		}
		if err := chromedp.Run(ctx, chromedp.Evaluate(seekExpr, &seeked, awaitPromise)); err != nil {
			return fmt.Errorf("seek to %.2fs: %w", t, err)
		}

		var shot []byte
		if err := chromedp.Run(ctx, chromedp.Screenshot(videoSelector, &shot, chromedp.ByQuery)); err != nil {
			return fmt.Errorf("screenshot at %.2fs: %w", t, err)
		}

		name := filepath.Join(framesDir, fmt.Sprintf("frame-%04d.png", i))
		if err := os.WriteFile(name, shot, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
		fmt.Printf("frame %d at %.2fs: %d bytes\n", i, t, len(shot))
	}

	fmt.Printf("captured in %s\n", time.Since(started).Round(time.Millisecond))
	return nil
}
