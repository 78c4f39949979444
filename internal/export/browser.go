package export

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// Browser is a lazily started headless Chrome shared by the PDF and PNG sinks
type Browser struct {
	bin string

	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
}

// NewBrowser creates a browser handle. bin may be empty to let rod find or
// download Chrome.
func NewBrowser(bin string) *Browser {
	return &Browser{bin: bin}
}

func (b *Browser) start() (*rod.Browser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.browser != nil {
		if _, err := b.browser.Version(); err == nil {
			return b.browser, nil
		}
		slog.Warn("Stale browser connection detected, relaunching")
		_ = b.browser.Close()
		b.browser = nil
	}

	l := launcher.New().Headless(true)
	if b.bin != "" {
		l = l.Bin(b.bin)
	}
	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch chrome: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("failed to connect to chrome: %w", err)
	}

	slog.Info("Headless browser started", "control_url", controlURL)
	b.launcher = l
	b.browser = browser
	return browser, nil
}

// render loads html into a fresh tab and hands it to fn
func (b *Browser) render(ctx context.Context, html []byte, fn func(*rod.Page) error) error {
	if b == nil {
		return fmt.Errorf("no browser configured")
	}
	browser, err := b.start()
	if err != nil {
		return err
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return fmt.Errorf("failed to open page: %w", err)
	}
	defer func() {
		if err := page.Close(); err != nil {
			slog.Warn("Failed to close page", "err", err)
		}
	}()

	page = page.Context(ctx)
	if err := page.SetDocumentContent(string(html)); err != nil {
		return fmt.Errorf("failed to load report document: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("failed waiting for report document: %w", err)
	}
	return fn(page)
}

// Close shuts the browser down if it was started
func (b *Browser) Close() error {
	if b == nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.browser == nil {
		return nil
	}
	err := b.browser.Close()
	b.launcher.Cleanup()
	b.browser = nil
	b.launcher = nil
	return err
}

// PDFSink prints the report document to PDF
type PDFSink struct {
	browser *Browser
}

func (*PDFSink) Ext() string         { return "pdf" }
func (*PDFSink) ContentType() string { return "application/pdf" }

func (s *PDFSink) Export(ctx context.Context, w io.Writer, doc Document) error {
	return s.browser.render(ctx, doc.Region, func(page *rod.Page) error {
		stream, err := page.PDF(&proto.PagePrintToPDF{
			Landscape:       true,
			PrintBackground: true,
		})
		if err != nil {
			return fmt.Errorf("failed to print PDF: %w", err)
		}
		defer stream.Close()

		if _, err := io.Copy(w, stream); err != nil {
			return fmt.Errorf("failed to write PDF: %w", err)
		}
		return nil
	})
}

// PNGSink rasterizes the report document to a full-page image
type PNGSink struct {
	browser *Browser
}

func (*PNGSink) Ext() string         { return "png" }
func (*PNGSink) ContentType() string { return "image/png" }

func (s *PNGSink) Export(ctx context.Context, w io.Writer, doc Document) error {
	return s.browser.render(ctx, doc.Region, func(page *rod.Page) error {
		img, err := page.Screenshot(true, &proto.PageCaptureScreenshot{
			Format: proto.PageCaptureScreenshotFormatPng,
		})
		if err != nil {
			return fmt.Errorf("failed to capture screenshot: %w", err)
		}
		if _, err := w.Write(img); err != nil {
			return fmt.Errorf("failed to write PNG: %w", err)
		}
		return nil
	})
}
