package rollcollide

import (
	"errors"
	"fmt"
	"os"

	"github.com/cespare/xxhash/v2"
	"github.com/edsrzf/mmap-go"
)

// WriteResults persists a search result for s to path.
//
// File layout: [Header 64B][Entries Count×9B][Footer 16B]. The file is
// pre-allocated to its exact size and written through a shared mapping; the
// footer holds the xxHash64 of the entry region.
func WriteResults(path string, s *Session, res *Result) error {
	entriesSize := uint64(len(res.Matches)) * matchSlotSize
	size := uint64(headerSize) + entriesSize + footerSize

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create result file: %w", err)
	}

	// Pre-allocate disk blocks to prevent SIGBUS on disk full
	if err := fallocateFile(file, int64(size)); err != nil {
		primaryErr := fmt.Errorf("failed to allocate disk space: %w", err)
		return errors.Join(primaryErr, file.Close())
	}

	mm, err := mmap.MapRegion(file, int(size), mmap.RDWR, 0, 0)
	if err != nil {
		primaryErr := fmt.Errorf("failed to mmap file: %w", err)
		return errors.Join(primaryErr, file.Close())
	}
	data := []byte(mm)

	entries := data[headerSize : headerSize+entriesSize]
	prefaultRegion(entries)

	for i, m := range res.Matches {
		m.encodeTo(entries[i*matchSlotSize : (i+1)*matchSlotSize])
	}

	var flags uint8
	if res.Truncated {
		flags |= flagTruncated
	}
	hdr := header{
		Magic:               magic,
		Version:             version,
		Target:              s.target,
		PrefixHash:          s.prefixHash,
		TargetShift:         s.precomp.TargetShift,
		SuffixMultiplier:    s.precomp.Multiplier,
		AlphabetFingerprint: s.alphabet().Fingerprint(),
		MaxExtra:            uint8(res.MaxExtra),
		Strategy:            res.Strategy,
		PrefixWidth:         uint8(res.PrefixWidth),
		Flags:               flags,
		Count:               uint64(len(res.Matches)),
		Found:               res.Found,
	}
	hdr.encodeTo(data[0:headerSize])

	ftr := footer{EntriesHash: xxhash.Sum64(entries)}
	ftr.encodeTo(data[headerSize+entriesSize:])

	// Flush dirty pages to file (ensures writes visible before unmap)
	if err := mm.Flush(); err != nil {
		primaryErr := fmt.Errorf("mmap flush failed: %w", err)
		return errors.Join(primaryErr, mm.Unmap(), file.Close())
	}
	if err := mm.Unmap(); err != nil {
		primaryErr := fmt.Errorf("mmap unmap failed: %w", err)
		return errors.Join(primaryErr, file.Close())
	}
	return file.Close()
}
