package exporter

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"resumePreview/internal/canvas"
)

const (
	defaultRenderTimeout    = 90 * time.Second
	defaultThumbnailQuality = 80
)

// printCSS 让画布铺满 A4 纸面，并保留背景色。
const printCSS = `
@page { size: A4; margin: 0; }
html, body { margin: 0 !important; padding: 0 !important; background: #fff !important; }
* { -webkit-print-color-adjust: exact !important; print-color-adjust: exact !important; }
.rp-canvas { width: 210mm !important; margin: 0 auto !important; box-shadow: none !important; }
`

// Output 是一次打印的产物。
type Output struct {
	PDF       []byte
	Thumbnail []byte
}

// Printer 把完整的 HTML 页面打印为 PDF 与缩略图。
type Printer interface {
	Print(ctx context.Context, document []byte) (Output, error)
}

// RodPrinter 每次打印启动一个无头 Chromium。
type RodPrinter struct {
	Bin              string
	Timeout          time.Duration
	ThumbnailQuality int
	Logger           *slog.Logger
}

// Print 实现 Printer。缩略图失败不影响 PDF，只记录日志。
func (p RodPrinter) Print(ctx context.Context, document []byte) (_ Output, err error) {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = defaultRenderTimeout
	}
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	launch := launcher.New().
		Context(ctx).
		Headless(true).
		NoSandbox(true)
	if p.Bin != "" {
		launch = launch.Bin(p.Bin)
	} else if path, ok := launcher.LookPath(); ok {
		launch = launch.Bin(path)
	}
	defer launch.Cleanup()

	browserURL, err := launch.Launch()
	if err != nil {
		return Output{}, fmt.Errorf("launch chromium: %w", err)
	}

	browser := rod.New().ControlURL(browserURL).Context(ctx).Timeout(timeout)
	if err := browser.Connect(); err != nil {
		return Output{}, fmt.Errorf("connect browser: %w", err)
	}
	defer func() {
		_ = browser.Close()
	}()

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return Output{}, fmt.Errorf("create page: %w", err)
	}
	defer func() {
		_ = page.Close()
	}()

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             int(canvas.ReferenceWidthPX),
		Height:            1123,
		DeviceScaleFactor: 1,
	}); err != nil {
		return Output{}, fmt.Errorf("set viewport: %w", err)
	}
	if err := page.SetDocumentContent(string(document)); err != nil {
		return Output{}, fmt.Errorf("set document content: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return Output{}, fmt.Errorf("wait load: %w", err)
	}
	if _, evalErr := page.Timeout(5 * time.Second).Eval(`() => {
	  if (document && document.fonts && document.fonts.ready) {
	    return Promise.race([
	      document.fonts.ready.then(() => true),
	      new Promise((resolve) => setTimeout(() => resolve(true), 3000))
	    ]);
	  }
	  return true;
	}`); evalErr != nil {
		logger.Warn("wait for fonts failed, continue", slog.Any("error", evalErr))
	}
	if err := page.AddStyleTag("", printCSS); err != nil {
		return Output{}, fmt.Errorf("inject print css: %w", err)
	}

	var out Output
	out.Thumbnail, err = p.screenshot(page)
	if err != nil {
		logger.Warn("capture thumbnail failed", slog.Any("error", err))
	}

	if err := (proto.EmulationSetEmulatedMedia{Media: "print"}).Call(page); err != nil {
		return Output{}, fmt.Errorf("set emulated media to print: %w", err)
	}
	out.PDF, err = exportPDF(page)
	if err != nil {
		return Output{}, err
	}
	return out, nil
}

func (p RodPrinter) screenshot(page *rod.Page) ([]byte, error) {
	quality := p.ThumbnailQuality
	if quality <= 0 || quality > 100 {
		quality = defaultThumbnailQuality
	}
	element, err := page.Timeout(5 * time.Second).Element("#" + canvas.ContentID)
	if err != nil {
		return nil, fmt.Errorf("find content element: %w", err)
	}
	data, err := element.Screenshot(proto.PageCaptureScreenshotFormatJpeg, quality)
	if err != nil {
		return nil, fmt.Errorf("element screenshot: %w", err)
	}
	return data, nil
}

func exportPDF(page *rod.Page) ([]byte, error) {
	reader, err := page.PDF(&proto.PagePrintToPDF{
		PrintBackground:   true,
		PaperWidth:        float64Ptr(8.27),
		PaperHeight:       float64Ptr(11.69),
		MarginTop:         float64Ptr(0),
		MarginBottom:      float64Ptr(0),
		MarginLeft:        float64Ptr(0),
		MarginRight:       float64Ptr(0),
		PreferCSSPageSize: true,
	})
	if err != nil {
		return nil, fmt.Errorf("export pdf: %w", err)
	}
	defer func() {
		_ = reader.Close()
	}()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read pdf bytes: %w", err)
	}
	return data, nil
}

func float64Ptr(value float64) *float64 {
	return &value
}
