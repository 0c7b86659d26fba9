//go:build !linux

package rollcollide

// prefaultRegion does nothing outside Linux; pages fault in as matches are
// encoded.
func prefaultRegion(entries []byte) {}
