//go:build linux

package rollcollide

import "golang.org/x/sys/unix"

// fadviseSequential tells the kernel a result file is about to be read front
// to back, which is how Results.All and Verify walk the entry region.
// The hint is best-effort.
func fadviseSequential(fd int, offset, length int64) {
	_ = unix.Fadvise(fd, offset, length, unix.FADV_SEQUENTIAL)
}
