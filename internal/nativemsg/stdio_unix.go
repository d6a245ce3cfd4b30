//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package nativemsg

import (
	"os"

	"github.com/cockroachdb/errors"
	"golang.org/x/sys/unix"
)

// ClaimStdout hands the process's stdout to the caller as a private file and
// points fd 1 at stderr. Anything else that writes to stdout afterwards,
// including the logger, lands on stderr. Call it before the first log line.
func ClaimStdout() (*os.File, error) {
	stdout := int(os.Stdout.Fd())
	fd, err := unix.Dup(stdout)
	if err != nil {
		return nil, errors.Wrap(err, "dup stdout")
	}
	unix.CloseOnExec(fd)

	if err := dupOnto(int(os.Stderr.Fd()), stdout); err != nil {
		_ = unix.Close(fd)
		return nil, errors.Wrap(err, "redirect stdout to stderr")
	}
	return os.NewFile(uintptr(fd), "native-messaging"), nil
}
