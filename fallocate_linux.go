//go:build linux

package rollcollide

import (
	"os"

	"golang.org/x/sys/unix"
)

// fallocateFile reserves size bytes for a result file and sets its length.
// Writing through the mapping then cannot hit SIGBUS on a full disk. Where
// fallocate is unsupported (NFS, tmpfs on old kernels) only the length is set.
func fallocateFile(file *os.File, size int64) error {
	fd := int(file.Fd())
	_ = unix.Fallocate(fd, 0, 0, size)
	return unix.Ftruncate(fd, size)
}
