package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/quanyeomans/content-tamer-ai-sub003/internal/common"
)

// ClassifyHTTPError maps a provider HTTP failure onto the error taxonomy.
// keyEnvVar names the environment variable holding the credential so the
// remediation hint can point at it.
func ClassifyHTTPError(status int, body []byte, keyEnvVar string) error {
	snippet := truncateForLog(strings.TrimSpace(string(body)), 200)
	switch {
	case status == http.StatusTooManyRequests:
		return common.NewAppError(common.KindTransientProvider,
			fmt.Sprintf("rate limited (status %d): %s", status, snippet), nil)
	case status == http.StatusRequestTimeout || status >= 500:
		return common.NewAppError(common.KindTransientProvider,
			fmt.Sprintf("temporary server error (status %d): %s", status, snippet), nil)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return common.NewAppError(common.KindPermanentProvider,
			fmt.Sprintf("invalid credentials (status %d); check %s: %s", status, keyEnvVar, snippet), nil)
	case status == http.StatusNotFound:
		return common.NewAppError(common.KindPermanentProvider,
			fmt.Sprintf("model or endpoint not found (status %d); check the configured model name: %s", status, snippet), nil)
	case isContentPolicy(body):
		return common.NewAppError(common.KindPermanentProvider,
			fmt.Sprintf("content policy rejection (status %d): %s", status, snippet), nil)
	default:
		return common.NewAppError(common.KindPermanentProvider,
			fmt.Sprintf("provider rejected request (status %d): %s", status, snippet), nil)
	}
}

// ClassifyTransportError maps connection-level failures. Timeouts and
// refused connections are transient; everything else is assumed transient
// too, since a malformed request would have failed at build time.
func ClassifyTransportError(err error) error {
	if err == nil {
		return nil
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return common.NewAppError(common.KindTransientProvider, "request timed out", err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return common.NewAppError(common.KindTransientProvider, "request deadline exceeded", err)
	}
	return common.NewAppError(common.KindTransientProvider, "network error", err)
}

// IsImageRejection reports whether a 4xx body looks like the provider
// refusing the image payload specifically, which is worth one text-only
// retry before failing.
func IsImageRejection(status int, body []byte) bool {
	if status < 400 || status >= 500 {
		return false
	}
	s := strings.ToLower(string(body))
	return strings.Contains(s, "image") || strings.Contains(s, "vision") || strings.Contains(s, "multimodal")
}

type imageRejectionError struct {
	status int
	body   string
}

// NewImageRejectionError marks a failure as "the provider refused the
// image payload". Adapters retry once text-only on it; if it escapes
// anyway it classifies as permanent.
func NewImageRejectionError(status int, body []byte) error {
	return &imageRejectionError{status: status, body: truncateForLog(string(body), 200)}
}

func (e *imageRejectionError) Error() string {
	return fmt.Sprintf("provider rejected image input (status %d): %s", e.status, e.body)
}

func (e *imageRejectionError) Is(target error) bool {
	return target == common.ErrPermanentProvider
}

// IsImageRejectionErr reports whether err is an image-payload rejection.
func IsImageRejectionErr(err error) bool {
	var ire *imageRejectionError
	return errors.As(err, &ire)
}

func isContentPolicy(body []byte) bool {
	s := strings.ToLower(string(body))
	return strings.Contains(s, "content policy") || strings.Contains(s, "content_policy") ||
		strings.Contains(s, "safety")
}
