package extract

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/quanyeomans/content-tamer-ai-sub003/constants"
	"github.com/quanyeomans/content-tamer-ai-sub003/internal/common"
)

type Config struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	TesseractLang string // default "eng"
	DPI           int    // rasterization DPI for scanned PDFs, default 300
	MaxPages      int    // 0 = no limit

	// MinTextLen is the threshold below which a PDF text layer is treated
	// as a scanned document and OCR kicks in.
	MinTextLen int

	// MaxFileBytes is a resource-exhaustion ceiling. Oversized files are
	// not extracted; they yield sentinel text instead.
	MaxFileBytes int64
}

// Content is what extraction hands to the filename generator. It is
// consumed once per pipeline invocation and never persisted.
type Content struct {
	Text     string
	ImageB64 string // data URI, empty when no image representation exists
	Pages    int
	Method   string // "pdf-text" | "pdf-ocr" | "image-ocr"
	Duration time.Duration
	Warnings []string
}

type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	if cfg.MinTextLen <= 0 {
		cfg.MinTextLen = 50
	}
	if cfg.MaxFileBytes <= 0 {
		cfg.MaxFileBytes = 50 << 20
	}
	return &Extractor{cfg: cfg, runner: execRunner{}, logger: logger}
}

// Extract picks a strategy based on file extension. On extraction-class
// failures the returned Content still carries "Error: <reason>" as its
// text so downstream stages always have something to reason about; the
// error carries the classification.
func (e *Extractor) Extract(ctx context.Context, path string) (Content, error) {
	start := time.Now()
	ext := constants.NormalizeExt(filepath.Ext(path))
	e.logger.Debug("starting extraction", "path", path, "ext", ext)

	if c, err := e.checkSize(path); err != nil {
		return c, err
	}

	switch constants.MapExtToFormat(ext) {
	case constants.PDF:
		res, err := e.extractPDF(ctx, path)
		res.Duration = time.Since(start)
		return res, err
	case constants.IMAGE:
		res, err := e.extractImage(ctx, path, ext)
		res.Duration = time.Since(start)
		return res, err
	default:
		e.logger.Error("unsupported extension", "extension", ext)
		reason := fmt.Sprintf("unsupported extension: %q", ext)
		return Content{Text: sentinel(reason)},
			common.NewAppError(common.KindExtraction, reason, nil)
	}
}

func (e *Extractor) checkSize(path string) (Content, error) {
	fi, err := os.Stat(path)
	if err != nil {
		reason := fmt.Sprintf("cannot stat file: %v", err)
		return Content{Text: sentinel(reason)},
			common.NewAppError(common.KindExtraction, "stat input file", err)
	}
	if fi.Size() > e.cfg.MaxFileBytes {
		reason := fmt.Sprintf("file exceeds size limit (%d bytes > max %d)", fi.Size(), e.cfg.MaxFileBytes)
		e.logger.Warn("extract.size_ceiling", "path", path, "bytes", fi.Size(), "max", e.cfg.MaxFileBytes)
		return Content{Text: sentinel(reason)},
			common.NewAppError(common.KindExtraction, reason, nil)
	}
	return Content{}, nil
}

func (e *Extractor) extractPDF(ctx context.Context, path string) (Content, error) {
	text, pages, warns, err := e.pdfToText(ctx, path)
	if err != nil {
		reason := fmt.Sprintf("pdf text extraction failed: %v", err)
		return Content{Text: sentinel(reason), Warnings: warns},
			common.NewAppError(common.KindExtraction, "pdftotext", err)
	}
	text = Normalize(text)
	if len(strings.TrimSpace(text)) >= e.cfg.MinTextLen {
		return Content{Text: text, Pages: pages, Method: "pdf-text", Warnings: warns}, nil
	}

	// Thin text layer: treat as scanned and OCR the rendered pages. Attach
	// the first page image for vision-capable providers.
	e.logger.Debug("pdf text layer below threshold, falling back to ocr",
		"path", path, "text_len", len(text), "min", e.cfg.MinTextLen)
	ocrText, firstPage, ocrPages, ocrWarns, err := e.pdfToOCR(ctx, path)
	warns = append(warns, ocrWarns...)
	if err != nil {
		reason := fmt.Sprintf("pdf ocr failed: %v", err)
		return Content{Text: sentinel(reason), Warnings: warns},
			common.NewAppError(common.KindExtraction, "pdf ocr", err)
	}
	out := Content{
		Text:     Normalize(ocrText),
		Pages:    ocrPages,
		Method:   "pdf-ocr",
		Warnings: warns,
	}
	if len(firstPage) > 0 {
		out.ImageB64 = encodeDataURI("png", firstPage)
	}
	if strings.TrimSpace(out.Text) == "" && out.ImageB64 == "" {
		reason := "nothing extractable from pdf"
		return Content{Text: sentinel(reason), Warnings: warns},
			common.NewAppError(common.KindExtraction, reason, nil)
	}
	return out, nil
}

func (e *Extractor) extractImage(ctx context.Context, path, ext string) (Content, error) {
	// The image itself is always attached; OCR text is best-effort.
	data, err := os.ReadFile(path)
	if err != nil {
		reason := fmt.Sprintf("cannot read image: %v", err)
		return Content{Text: sentinel(reason)},
			common.NewAppError(common.KindExtraction, "read image", err)
	}
	imageB64 := encodeDataURI(ext, data)

	txt, warns, err := e.tesseractOCR(ctx, path)
	if err != nil {
		// OCR failure is survivable for images: vision providers can work
		// from the attachment alone.
		e.logger.Warn("extract.image_ocr_failed", "path", path, "error", err)
		return Content{
			Text:     sentinel(fmt.Sprintf("image ocr failed: %v", err)),
			ImageB64: imageB64,
			Pages:    1,
			Method:   "image-ocr",
			Warnings: warns,
		}, nil
	}
	return Content{
		Text:     Normalize(txt),
		ImageB64: imageB64,
		Pages:    1,
		Method:   "image-ocr",
		Warnings: warns,
	}, nil
}

func sentinel(reason string) string {
	return "Error: " + reason
}
