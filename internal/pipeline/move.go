package pipeline

import (
	"fmt"
	"io"
	"os"

	"github.com/quanyeomans/content-tamer-ai-sub003/internal/common"
)

func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return common.NewAppError(common.KindFilesystem, "create directory "+dir, err)
	}
	return nil
}

// moveFile relocates src to dst. Rename is the fast path; when it fails
// (cross-device destination, lock contention on some platforms) a
// copy-then-delete fallback runs before the failure is classified hard.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	if err := copyThenDelete(src, dst); err != nil {
		return common.NewAppError(common.KindFilesystem,
			fmt.Sprintf("move %s -> %s", src, dst), err)
	}
	return nil
}

func copyThenDelete(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		_ = os.Remove(dst) // don't leave a truncated copy behind
		return err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		_ = os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dst)
		return err
	}
	return os.Remove(src)
}
