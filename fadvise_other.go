//go:build !linux

package rollcollide

// fadviseSequential does nothing outside Linux.
func fadviseSequential(fd int, offset, length int64) {}
