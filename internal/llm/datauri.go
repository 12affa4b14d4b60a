package llm

import (
	"fmt"
	"strings"
)

// SplitDataURI breaks a base64 data URI into its media type and raw
// base64 payload. Claude and Gemini want the two parts separately;
// OpenAI-shaped APIs take the URI whole.
func SplitDataURI(uri string) (mediaType, data string, err error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", "", fmt.Errorf("not a data URI")
	}
	meta, data, ok := strings.Cut(rest, ",")
	if !ok {
		return "", "", fmt.Errorf("malformed data URI")
	}
	mediaType = strings.TrimSuffix(meta, ";base64")
	if mediaType == "" || data == "" {
		return "", "", fmt.Errorf("malformed data URI")
	}
	return mediaType, data, nil
}
