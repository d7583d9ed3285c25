package raster

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"strings"
	"sync"
	"time"

	"github.com/chiremba/chiremba/internal/parser/html"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
)

// Rod rasterizes documents through a rod-managed headless browser
type Rod struct {
	opts    Options
	Timeout time.Duration

	mu       sync.Mutex
	launch   *launcher.Launcher
	browser  *rod.Browser
	startErr error
}

// NewRod creates a rod rasterizer. The browser starts on first use
func NewRod(opts Options) *Rod {
	return &Rod{opts: opts.normalized(), Timeout: time.Minute}
}

func (r *Rod) start() (*rod.Browser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.browser != nil {
		return r.browser, nil
	}
	if r.startErr != nil {
		return nil, r.startErr
	}

	bin, err := FindBrowser(r.opts.BrowserPath)
	if err != nil {
		found, ok := launcher.LookPath()
		if !ok {
			r.startErr = err
			return nil, err
		}
		bin = found
	}

	l := launcher.New().Bin(bin).Headless(true).Leakless(false)
	controlURL, err := l.Launch()
	if err != nil {
		r.startErr = fmt.Errorf("%w: launch chrome: %v", ErrBrowserUnavailable, err)
		return nil, r.startErr
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connect to chrome: %w", err)
	}
	r.launch = l
	r.browser = browser
	return browser, nil
}

// Rasterize implements Rasterizer
func (r *Rod) Rasterize(ctx context.Context, doc *html.Document) (image.Image, error) {
	markup, err := documentHTML(doc)
	if err != nil {
		return nil, err
	}
	browser, err := r.start()
	if err != nil {
		return nil, err
	}

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	page, err := browser.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	defer func() { _ = page.Close() }()

	if err := (proto.NetworkEnable{}).Call(page); err != nil {
		return nil, fmt.Errorf("enable network: %w", err)
	}
	if err := (proto.NetworkSetBlockedURLs{Urls: rodBlockPatterns()}).Call(page); err != nil {
		return nil, fmt.Errorf("block remote requests: %w", err)
	}

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             r.opts.Width,
		Height:            1,
		DeviceScaleFactor: r.opts.Scale,
		Mobile:            false,
	}); err != nil {
		return nil, fmt.Errorf("set viewport: %w", err)
	}
	if err := page.SetDocumentContent(markup); err != nil {
		return nil, fmt.Errorf("set document content: %w", err)
	}
	if _, err := page.Evaluate(&rod.EvalOptions{
		JS:           "() => " + waitImagesJS,
		ByValue:      true,
		AwaitPromise: true,
	}); err != nil {
		return nil, fmt.Errorf("wait for images: %w", err)
	}

	shot, err := page.Screenshot(true, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("screenshot: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(shot))
	if err != nil {
		return nil, fmt.Errorf("failed to decode rod screenshot: %w", err)
	}
	r.opts.Logger.Debug("rasterized document",
		zap.String("rasterizer", string(KindRod)),
		zap.Int("width_px", img.Bounds().Dx()),
		zap.Int("height_px", img.Bounds().Dy()),
	)
	return img, nil
}

// rodBlockPatterns converts the block list to the wildcard form of the
// protocol's urls field, which has no port segment
func rodBlockPatterns() []string {
	urls := make([]string, 0, len(blockedURLPatterns))
	for _, p := range blockedURLPatterns {
		urls = append(urls, strings.Replace(p, "*:*/*", "*", 1))
	}
	return urls
}

// Close shuts the browser down
func (r *Rod) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var err error
	if r.browser != nil {
		err = r.browser.Close()
		r.browser = nil
	}
	if r.launch != nil {
		r.launch.Kill()
		r.launch = nil
	}
	return err
}
