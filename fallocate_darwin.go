//go:build darwin

package rollcollide

import (
	"os"

	"golang.org/x/sys/unix"
)

// fallocateFile reserves size bytes for a result file with F_PREALLOCATE and
// sets its length. If the reservation fails only the length is set.
func fallocateFile(file *os.File, size int64) error {
	fst := unix.Fstore_t{
		Flags:   unix.F_ALLOCATEALL,
		Posmode: unix.F_PEOFPOSMODE,
		Length:  size,
	}
	_ = unix.FcntlFstore(file.Fd(), unix.F_PREALLOCATE, &fst)
	return unix.Ftruncate(int(file.Fd()), size)
}
