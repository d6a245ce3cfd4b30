//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly)

package nativemsg

import (
	"os"
	"runtime"

	"github.com/cockroachdb/errors"
)

// ClaimStdout is not available here: the logger owns stdout and there is no
// way to move it aside.
func ClaimStdout() (*os.File, error) {
	return nil, errors.Newf("native messaging is not supported on %s", runtime.GOOS)
}
