package extract

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/quanyeomans/content-tamer-ai-sub003/constants"
)

func (e *Extractor) tesseractOCR(ctx context.Context, path string) (string, []string, error) {
	args := []string{path, "stdout", "-l", e.cfg.TesseractLang}

	// tesseract <file> stdout -l <lang>
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return "", []string{string(errb)}, fmt.Errorf("tesseract: %w", err)
	}

	// minor cleanup of obvious line noise
	txt := reBoxNoise.ReplaceAllString(string(out), "")
	return txt, nil, nil
}

// encodeDataURI wraps raw image bytes as a base64 data URI suitable for
// vision-capable provider payloads.
func encodeDataURI(ext string, data []byte) string {
	return "data:" + constants.ImageMIMEType(ext) + ";base64," + base64.StdEncoding.EncodeToString(data)
}
