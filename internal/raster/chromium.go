package raster

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"sync"
	"time"

	"github.com/chiremba/chiremba/internal/parser/html"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// Chromium rasterizes documents with a shared headless Chrome driven over
// the DevTools protocol
type Chromium struct {
	opts    Options
	Timeout time.Duration

	initOnce      sync.Once
	initErr       error
	allocCtx      context.Context
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
}

// NewChromium creates a Chromium rasterizer. The browser starts on first use
func NewChromium(opts Options) *Chromium {
	return &Chromium{opts: opts.normalized(), Timeout: time.Minute}
}

// Rasterize implements Rasterizer
func (c *Chromium) Rasterize(ctx context.Context, doc *html.Document) (image.Image, error) {
	markup, err := documentHTML(doc)
	if err != nil {
		return nil, err
	}
	if err := c.ensureBrowser(); err != nil {
		return nil, err
	}

	tabCtx, cancel := chromedp.NewContext(c.browserCtx)
	defer cancel()

	execCtx, cancelReq := context.WithCancel(tabCtx)
	defer cancelReq()
	go func() {
		select {
		case <-ctx.Done():
			cancelReq()
		case <-execCtx.Done():
		}
	}()
	if c.Timeout > 0 {
		var cancelTimeout context.CancelFunc
		execCtx, cancelTimeout = context.WithTimeout(execCtx, c.Timeout)
		defer cancelTimeout()
	}

	var shot []byte
	var loaded bool
	err = chromedp.Run(execCtx,
		network.Enable(),
		network.SetBlockedURLs().WithURLPatterns(chromiumBlockPatterns()),
		chromedp.EmulateViewport(int64(c.opts.Width), 1, chromedp.EmulateScale(c.opts.Scale)),
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, markup).Do(ctx)
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Evaluate(waitImagesJS, &loaded, func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
			return p.WithAwaitPromise(true)
		}),
		chromedp.FullScreenshot(&shot, 100),
	)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("chromium render failed: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(shot))
	if err != nil {
		return nil, fmt.Errorf("failed to decode chromium screenshot: %w", err)
	}
	c.opts.Logger.Debug("rasterized document",
		zap.String("rasterizer", string(KindChromium)),
		zap.Int("width_px", img.Bounds().Dx()),
		zap.Int("height_px", img.Bounds().Dy()),
	)
	return img, nil
}

func chromiumBlockPatterns() []*network.BlockPattern {
	patterns := make([]*network.BlockPattern, 0, len(blockedURLPatterns))
	for _, p := range blockedURLPatterns {
		patterns = append(patterns, &network.BlockPattern{URLPattern: p, Block: true})
	}
	return patterns
}

// Close releases Chromium resources if they have been initialized
func (c *Chromium) Close() error {
	if c.browserCancel != nil {
		c.browserCancel()
	}
	if c.allocCancel != nil {
		c.allocCancel()
	}
	return nil
}

func (c *Chromium) ensureBrowser() error {
	c.initOnce.Do(func() {
		bin, err := FindBrowser(c.opts.BrowserPath)
		if err != nil {
			c.initErr = err
			return
		}
		options := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
		options = append(options,
			chromedp.ExecPath(bin),
			chromedp.Flag("headless", true),
			chromedp.Flag("hide-scrollbars", true),
		)
		c.allocCtx, c.allocCancel = chromedp.NewExecAllocator(context.Background(), options...)
		c.browserCtx, c.browserCancel = chromedp.NewContext(c.allocCtx)
	})
	if c.initErr != nil {
		return c.initErr
	}
	if c.allocCtx == nil || c.browserCtx == nil {
		return fmt.Errorf("%w: chromium allocator unavailable", ErrBrowserUnavailable)
	}
	return nil
}

// IsBrowserUnavailable reports whether err means no browser could be used
func IsBrowserUnavailable(err error) bool {
	return errors.Is(err, ErrBrowserUnavailable)
}
