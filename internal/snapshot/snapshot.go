// Package snapshot captures a PNG of a rendered map with headless Chrome.
package snapshot

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/huangsam/finmap/schema"
)

// Default viewport and time limit.
const (
	DefaultWidth   = 1280
	DefaultHeight  = 800
	DefaultTimeout = 60 * time.Second
)

// Options controls the browser viewport and timing.
type Options struct {
	Width   int
	Height  int
	Wait    time.Duration // settle time for tiles and layers after the map is visible
	Timeout time.Duration
}

// Capture opens htmlPath in headless Chrome and writes a viewport PNG to pngPath.
func Capture(ctx context.Context, htmlPath, pngPath string, opts Options) error {
	if _, err := os.Stat(htmlPath); err != nil {
		return &schema.LoadError{Path: htmlPath, Reason: "map file not found", Err: err}
	}
	pageURL, err := FileURL(htmlPath)
	if err != nil {
		return &schema.LoadError{Path: htmlPath, Reason: "cannot resolve map path", Err: err}
	}
	opts = opts.withDefaults()

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(opts.Width, opts.Height),
	)
	if bin := FindChromeBinary(); bin != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(bin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer cancelAlloc()

	// Suppress chromedp log noise
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...any) {}))
	defer cancelBrowser()

	runCtx, cancelTimeout := context.WithTimeout(browserCtx, opts.Timeout)
	defer cancelTimeout()

	var png []byte
	if err := chromedp.Run(runCtx,
		chromedp.EmulateViewport(int64(opts.Width), int64(opts.Height)),
		chromedp.Navigate(pageURL),
		chromedp.WaitVisible("#map", chromedp.ByQuery),
		chromedp.Sleep(opts.Wait),
		chromedp.CaptureScreenshot(&png),
	); err != nil {
		return fmt.Errorf("headless browser failed: %w", err)
	}

	if err := os.WriteFile(pngPath, png, 0o644); err != nil {
		return &schema.WriteError{Path: pngPath, Err: err}
	}
	return nil
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	return o
}

// FileURL converts a local path into an absolute file:// URL.
func FileURL(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	return u.String(), nil
}

// FindChromeBinary returns CHROME_BIN or the first Chrome/Chromium found on the system.
// An empty result lets chromedp apply its own lookup.
func FindChromeBinary() string {
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	for _, name := range []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	for _, p := range []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
	} {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
