package filename

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/quanyeomans/content-tamer-ai-sub003/constants"
	"github.com/quanyeomans/content-tamer-ai-sub003/internal/common"
)

// maxSuffixAttempts caps the collision search. A directory pre-populated
// with every suffix would otherwise loop forever.
const maxSuffixAttempts = 10000

// Dedupe resolves safeName against the destination directory contents,
// appending _1, _2, ... until a free name is found. The returned name has
// no extension; ext (with or without dot) selects which collisions count.
//
// The existence probe is inherently racy under concurrent writers to the
// same destination; callers that parallelize must serialize moves.
func Dedupe(safeName, destDir, ext string) (string, error) {
	ext = constants.NormalizeExt(ext)

	candidate := safeName
	for i := 0; i < maxSuffixAttempts; i++ {
		if i > 0 {
			candidate = fmt.Sprintf("%s_%d", safeName, i)
		}
		target := filepath.Join(destDir, candidate+"."+ext)
		if _, err := os.Stat(target); os.IsNotExist(err) {
			return candidate, nil
		} else if err != nil && !os.IsExist(err) {
			// Stat failed for a reason other than existence; surface it.
			return "", common.NewAppError(common.KindFilesystem,
				fmt.Sprintf("probe destination %q", target), err)
		}
	}
	return "", common.NewAppError(common.KindFilesystem,
		fmt.Sprintf("no free name for %q after %d attempts", safeName, maxSuffixAttempts), nil)
}
