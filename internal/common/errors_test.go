package common

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
)

func TestAppErrorMatchesKindSentinel(t *testing.T) {
	tests := []struct {
		kind Kind
		want error
	}{
		{KindExtraction, ErrExtraction},
		{KindSecurity, ErrSecurity},
		{KindTransientProvider, ErrTransientProvider},
		{KindPermanentProvider, ErrPermanentProvider},
		{KindFilesystem, ErrFilesystem},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			err := NewAppError(tt.kind, "boom", nil)
			if !errors.Is(err, tt.want) {
				t.Errorf("errors.Is(%v, %v) = false", err, tt.want)
			}
		})
	}
}

func TestAppErrorPreservesCause(t *testing.T) {
	err := NewAppError(KindFilesystem, "move file", os.ErrPermission)
	if !errors.Is(err, os.ErrPermission) {
		t.Error("cause lost from chain")
	}
	if !errors.Is(err, ErrFilesystem) {
		t.Error("kind sentinel lost when a cause is present")
	}
}

func TestAppErrorThroughWrapping(t *testing.T) {
	inner := NewAppError(KindSecurity, "injection detected", nil)
	wrapped := fmt.Errorf("generate filename: %w", inner)

	var ae *AppError
	if !errors.As(wrapped, &ae) || ae.Kind != KindSecurity {
		t.Errorf("errors.As through wrapping failed, got %+v", ae)
	}
	if KindOf(wrapped) != KindSecurity {
		t.Errorf("KindOf(wrapped) = %s", KindOf(wrapped))
	}
}

func TestAppErrorMessage(t *testing.T) {
	err := NewAppError(KindPermanentProvider, "invalid key", errors.New("401"))
	got := err.Error()
	for _, part := range []string{"PERMANENT_PROVIDER", "invalid key", "401"} {
		if !strings.Contains(got, part) {
			t.Errorf("Error() = %q, missing %q", got, part)
		}
	}
}

func TestKindOfUnclassified(t *testing.T) {
	if got := KindOf(errors.New("plain")); got != KindFilesystem {
		t.Errorf("KindOf(plain error) = %s, want %s", got, KindFilesystem)
	}
}

func TestWrapErrorNilPassthrough(t *testing.T) {
	if WrapError(nil, "context") != nil {
		t.Error("WrapError(nil) should stay nil")
	}
	if err := WrapError(errors.New("x"), "stage"); err == nil || !strings.HasPrefix(err.Error(), "stage: ") {
		t.Errorf("WrapError = %v", err)
	}
}
