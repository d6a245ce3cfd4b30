//go:build darwin || freebsd || netbsd || openbsd || dragonfly

package nativemsg

import "golang.org/x/sys/unix"

func dupOnto(oldfd, newfd int) error {
	return unix.Dup2(oldfd, newfd)
}
