//go:build linux

package rollcollide

import "golang.org/x/sys/unix"

// madvPopulateWrite is MADV_POPULATE_WRITE (Linux 5.14+).
const madvPopulateWrite = 23

// prefaultRegion populates the entry region of a result file being written,
// so encoding matches does not take one page fault per 4 KiB. Older kernels
// reject the advice with EINVAL; any failure only costs the faults.
func prefaultRegion(entries []byte) {
	if len(entries) == 0 {
		return
	}
	_ = unix.Madvise(entries, madvPopulateWrite)
}
