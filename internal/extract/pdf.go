package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

func (e *Extractor) pdfToText(ctx context.Context, path string) (text string, pages int, warnings []string, err error) {
	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return "", 0, []string{string(errb)}, err
	}
	text = string(out)
	// A form-feed \f is used as page separator by default
	pages = 1 + strings.Count(text, "\f")
	return text, pages, nil, nil
}

// pdfToOCR rasterizes the PDF and runs tesseract over every page. The
// first rendered page is returned raw so the caller can attach it for
// vision-capable providers.
func (e *Extractor) pdfToOCR(ctx context.Context, path string) (text string, firstPage []byte, pages int, warnings []string, err error) {
	tmpDir, err := os.MkdirTemp("", "ct-pp-*")
	if err != nil {
		return "", nil, 0, nil, err
	}
	defer func(dir string) {
		if rmErr := os.RemoveAll(dir); rmErr != nil {
			e.logger.Warn("extract.tmpdir_cleanup_failed", "dir", dir, "error", rmErr)
		}
	}(tmpDir)

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r 300 -png <in.pdf> <tmp/page>
	_, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm, "-r", fmt.Sprintf("%d", e.cfg.DPI), "-png", path, prefix)
	if err != nil {
		return "", nil, 0, []string{string(errb)}, err
	}

	// collect generated pngs (prefix-1.png, prefix-2.png, ...)
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if e.cfg.MaxPages > 0 && len(matches) > e.cfg.MaxPages {
		matches = matches[:e.cfg.MaxPages]
	}
	if len(matches) == 0 {
		return "", nil, 0, []string{"pdftoppm produced no images"}, fmt.Errorf("no pages rendered")
	}

	firstPage, readErr := os.ReadFile(matches[0])
	if readErr != nil {
		warnings = append(warnings, fmt.Sprintf("read first page: %v", readErr))
		firstPage = nil
	}

	var b strings.Builder
	for _, img := range matches {
		txt, w, ocrErr := e.tesseractOCR(ctx, img)
		if ocrErr != nil {
			warnings = append(warnings, ocrErr.Error())
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\f\n") // keep a clear page break marker
		}
		b.WriteString(txt)
		warnings = append(warnings, w...)
	}
	pages = len(matches)
	return b.String(), firstPage, pages, warnings, nil
}
