package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/quanyeomans/content-tamer-ai-sub003/internal/common"
)

// fakeRunner scripts the external binaries. pdftoppm writes real files so
// the page-collection glob in the OCR path is exercised for real.
type fakeRunner struct {
	pdfText    string
	pdfTextErr error
	pageImages int
	ppmErr     error
	ocrText    string
	ocrErr     error
	calls      []string
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	f.calls = append(f.calls, name)
	switch name {
	case "pdftotext":
		if f.pdfTextErr != nil {
			return nil, []byte("syntax error in pdf"), f.pdfTextErr
		}
		return []byte(f.pdfText), nil, nil
	case "pdftoppm":
		if f.ppmErr != nil {
			return nil, []byte("render failed"), f.ppmErr
		}
		prefix := args[len(args)-1]
		for i := 1; i <= f.pageImages; i++ {
			path := fmt.Sprintf("%s-%d.png", prefix, i)
			if err := os.WriteFile(path, []byte("fake png bytes"), 0o644); err != nil {
				return nil, nil, err
			}
		}
		return nil, nil, nil
	case "tesseract":
		if f.ocrErr != nil {
			return nil, []byte("no text detected"), f.ocrErr
		}
		return []byte(f.ocrText), nil, nil
	default:
		return nil, nil, fmt.Errorf("unexpected command %q", name)
	}
}

func newTestExtractor(t *testing.T, cfg Config, r Runner) *Extractor {
	t.Helper()
	e := NewExtractor(cfg, nil)
	e.runner = r
	return e
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestExtractPDFWithTextLayer(t *testing.T) {
	r := &fakeRunner{pdfText: "Invoice #4521 from ACME Corp\fTotal due: $1,200.00 by March 2025\f"}
	e := newTestExtractor(t, Config{}, r)

	got, err := e.Extract(context.Background(), writeFile(t, "invoice.pdf", "%PDF-1.4"))
	if err != nil {
		t.Fatal(err)
	}
	if got.Method != "pdf-text" {
		t.Errorf("Method = %q, want pdf-text", got.Method)
	}
	if got.Pages != 3 {
		t.Errorf("Pages = %d, want 3 (two form feeds)", got.Pages)
	}
	if !strings.Contains(got.Text, "Invoice #4521") {
		t.Errorf("Text = %q, missing extracted content", got.Text)
	}
	if got.ImageB64 != "" {
		t.Error("text-layer extraction should not attach an image")
	}
	for _, cmd := range r.calls {
		if cmd != "pdftotext" {
			t.Errorf("unexpected command %q; text-layer success must not trigger OCR", cmd)
		}
	}
}

func TestExtractPDFFallsBackToOCR(t *testing.T) {
	// Text layer below the threshold, so the pages get rendered and OCRed.
	r := &fakeRunner{
		pdfText:    "p.1", // well under MinTextLen
		pageImages: 2,
		ocrText:    "Receipt from the corner store",
	}
	e := newTestExtractor(t, Config{}, r)

	got, err := e.Extract(context.Background(), writeFile(t, "scan.pdf", "%PDF-1.4"))
	if err != nil {
		t.Fatal(err)
	}
	if got.Method != "pdf-ocr" {
		t.Errorf("Method = %q, want pdf-ocr", got.Method)
	}
	if got.Pages != 2 {
		t.Errorf("Pages = %d, want 2", got.Pages)
	}
	if !strings.Contains(got.Text, "Receipt from the corner store") {
		t.Errorf("Text = %q, missing OCR output", got.Text)
	}
	if !strings.HasPrefix(got.ImageB64, "data:image/png;base64,") {
		t.Errorf("ImageB64 = %q, want a png data URI of the first page", got.ImageB64)
	}
}

func TestExtractPDFToolFailure(t *testing.T) {
	r := &fakeRunner{pdfTextErr: fmt.Errorf("exit status 1")}
	e := newTestExtractor(t, Config{}, r)

	got, err := e.Extract(context.Background(), writeFile(t, "broken.pdf", "not a pdf"))
	if common.KindOf(err) != common.KindExtraction {
		t.Errorf("error kind = %s, want %s", common.KindOf(err), common.KindExtraction)
	}
	if !strings.HasPrefix(got.Text, "Error: ") {
		t.Errorf("Text = %q, want sentinel error text", got.Text)
	}
}

func TestExtractOversizedFile(t *testing.T) {
	e := newTestExtractor(t, Config{MaxFileBytes: 8}, &fakeRunner{})

	got, err := e.Extract(context.Background(), writeFile(t, "big.pdf", "well over eight bytes"))
	if common.KindOf(err) != common.KindExtraction {
		t.Errorf("error kind = %s, want %s", common.KindOf(err), common.KindExtraction)
	}
	if !strings.Contains(got.Text, "size limit") {
		t.Errorf("Text = %q, want size-limit sentinel", got.Text)
	}
}

func TestExtractUnsupportedExtension(t *testing.T) {
	e := newTestExtractor(t, Config{}, &fakeRunner{})

	got, err := e.Extract(context.Background(), writeFile(t, "notes.docx", "word doc"))
	if common.KindOf(err) != common.KindExtraction {
		t.Errorf("error kind = %s, want %s", common.KindOf(err), common.KindExtraction)
	}
	if !strings.HasPrefix(got.Text, "Error: ") {
		t.Errorf("Text = %q, want sentinel error text", got.Text)
	}
}

func TestExtractMissingFile(t *testing.T) {
	e := newTestExtractor(t, Config{}, &fakeRunner{})
	_, err := e.Extract(context.Background(), filepath.Join(t.TempDir(), "gone.pdf"))
	if common.KindOf(err) != common.KindExtraction {
		t.Errorf("error kind = %s, want %s", common.KindOf(err), common.KindExtraction)
	}
}

func TestExtractImage(t *testing.T) {
	r := &fakeRunner{ocrText: "Parking ticket issued 2025-03-14"}
	e := newTestExtractor(t, Config{}, r)

	got, err := e.Extract(context.Background(), writeFile(t, "ticket.jpg", "jpeg bytes"))
	if err != nil {
		t.Fatal(err)
	}
	if got.Method != "image-ocr" || got.Pages != 1 {
		t.Errorf("Method/Pages = %q/%d, want image-ocr/1", got.Method, got.Pages)
	}
	if !strings.Contains(got.Text, "Parking ticket") {
		t.Errorf("Text = %q, missing OCR output", got.Text)
	}
	if !strings.HasPrefix(got.ImageB64, "data:image/jpeg;base64,") {
		t.Errorf("ImageB64 = %q, want jpeg data URI", got.ImageB64)
	}
}

func TestExtractImageOCRFailureStillAttachesImage(t *testing.T) {
	// Vision providers can name an image without any OCR text, so a
	// tesseract failure on an image is not fatal.
	r := &fakeRunner{ocrErr: fmt.Errorf("exit status 1")}
	e := newTestExtractor(t, Config{}, r)

	got, err := e.Extract(context.Background(), writeFile(t, "photo.png", "png bytes"))
	if err != nil {
		t.Fatalf("image ocr failure should be survivable, got %v", err)
	}
	if got.ImageB64 == "" {
		t.Error("image attachment missing")
	}
	if !strings.HasPrefix(got.Text, "Error: ") {
		t.Errorf("Text = %q, want sentinel noting the ocr failure", got.Text)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"crlf", "a\r\nb", "a\nb"},
		{"tabs and runs", "a\t\tb   c", "a b c"},
		{"blank line collapse", "a\n\n\n\n\nb", "a\n\nb"},
		{"control chars", "a\x00\x01b", "ab"},
		{"trailing spaces", "line   \nnext", "line\nnext"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
