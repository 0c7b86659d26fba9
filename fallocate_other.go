//go:build !linux && !darwin

package rollcollide

import "os"

// fallocateFile sets the result file length. Disk blocks may not be reserved
// on these platforms.
func fallocateFile(file *os.File, size int64) error {
	return file.Truncate(size)
}
