package avito

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/chromedp/chromedp"

	"avito-parser/utils"
)

// Loader returns the HTML of a saved page.
type Loader interface {
	Load(ctx context.Context, path string) ([]byte, error)
}

// FileLoader reads documents straight from disk.
type FileLoader struct{}

func (FileLoader) Load(_ context.Context, path string) ([]byte, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("avito: read %q: %w", path, err)
	}
	return content, nil
}

// BrowserLoader opens saved pages in headless Chrome and returns the DOM
// after scripts ran. Pages saved with lazy-rendered listing cards only carry
// the listing markup once rendered.
type BrowserLoader struct {
	chromeBin string
	timeout   time.Duration
	logger    *utils.Logger
}

// NewBrowserLoader creates a BrowserLoader. An empty chromeBin triggers a lookup
// of the usual Chrome/Chromium install locations.
func NewBrowserLoader(chromeBin string, logger *utils.Logger) *BrowserLoader {
	if chromeBin == "" {
		chromeBin = findChromeBinary()
	}
	return &BrowserLoader{chromeBin: chromeBin, timeout: 60 * time.Second, logger: logger}
}

func (b *BrowserLoader) Load(ctx context.Context, path string) ([]byte, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("avito: stat %q: %w", path, err)
	}
	docURL, err := fileURL(path)
	if err != nil {
		return nil, err
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("allow-file-access-from-files", true),
	)
	if b.chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(b.chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	// Suppress chromedp log noise
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelBrowser()

	browserCtx, cancelTimeout := context.WithTimeout(browserCtx, b.timeout)
	defer cancelTimeout()

	var html string
	err = chromedp.Run(browserCtx,
		chromedp.Navigate(docURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("avito: render %q: %w", path, err)
	}

	b.logger.Debug("[avito] Rendered %s (%d bytes)", path, len(html))
	return []byte(html), nil
}

func fileURL(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("avito: resolve %q: %w", path, err)
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	return u.String(), nil
}

// findChromeBinary locates Chrome/Chromium binary.
func findChromeBinary() string {
	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
