package retry

import (
	"errors"
	"net"
	"os"
	"syscall"

	"github.com/quanyeomans/content-tamer-ai-sub003/internal/common"
)

// Class says whether retrying can help.
type Class int

const (
	// Transient failures are expected to resolve on their own: lock
	// contention, rate limits, timeouts, transiently denied permissions.
	Transient Class = iota
	// Permanent failures cannot be fixed by retrying: missing files, bad
	// credentials, security violations.
	Permanent
)

// transientErrnos are OS-level conditions worth retrying.
var transientErrnos = []syscall.Errno{
	syscall.EACCES, // permission transiently denied (AV scanners, sync clients)
	syscall.EAGAIN,
	syscall.EBUSY, // file locked by another process
	syscall.EINTR,
	syscall.ETIMEDOUT,
	syscall.ETXTBSY,
}

// Classify maps an error onto Transient or Permanent. Classified
// application errors decide by kind; unclassified errors fall back to OS
// and network heuristics, defaulting to Permanent so unknown failures do
// not burn the retry budget.
func Classify(err error) Class {
	if err == nil {
		return Transient
	}

	var ae *common.AppError
	if errors.As(err, &ae) {
		switch ae.Kind {
		case common.KindTransientProvider:
			return Transient
		case common.KindSecurity, common.KindPermanentProvider, common.KindExtraction:
			return Permanent
		case common.KindFilesystem:
			// fall through to the OS heuristics on the cause
		}
	}

	if errors.Is(err, os.ErrNotExist) {
		return Permanent
	}
	for _, errno := range transientErrnos {
		if errors.Is(err, errno) {
			return Transient
		}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return Transient
	}
	return Permanent
}
