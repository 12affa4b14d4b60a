package constants

import "strings"

// FileFormats holds the formats the extractor knows how to handle.
var FileFormats = []string{"PDF", "IMAGE"}

const (
	PDF   = "PDF"
	IMAGE = "IMAGE"
)

// AllowedExtensions holds the default allowed file extensions for batch processing.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"png":  {},
	"jpg":  {},
	"jpeg": {},
	"bmp":  {},
	"tiff": {},
	"gif":  {},
}

// imageMIMETypes maps normalized image extensions to their MIME type for
// base64 data-URI payloads sent to vision-capable providers.
var imageMIMETypes = map[string]string{
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"bmp":  "image/bmp",
	"tiff": "image/tiff",
	"gif":  "image/gif",
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat maps a normalized extension to a file format, or "" if unsupported.
func MapExtToFormat(ext string) string {
	ext = NormalizeExt(ext)
	if ext == "pdf" {
		return PDF
	}
	if _, ok := imageMIMETypes[ext]; ok {
		return IMAGE
	}
	return ""
}

// ImageMIMEType returns the MIME type for a normalized image extension,
// falling back to application/octet-stream.
func ImageMIMEType(ext string) string {
	if m, ok := imageMIMETypes[NormalizeExt(ext)]; ok {
		return m
	}
	return "application/octet-stream"
}
