package rollcollide

import (
	"errors"
	"fmt"
	"iter"
	"os"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	"github.com/edsrzf/mmap-go"

	rcerrors "github.com/tamirms/rollcollide/errors"
	"github.com/tamirms/rollcollide/internal/alphabet"
)

// Results is a read-only view of a result file written by WriteResults.
//
// Thread Safety:
// - read methods are safe for concurrent use
// - Close must only be called after all reads have completed
type Results struct {
	mmap mmap.MMap
	data []byte

	header *header

	closed atomic.Bool
}

// ResultsInfo describes the search a result file came from.
type ResultsInfo struct {
	Target              uint32
	PrefixHash          uint32
	TargetShift         uint32
	SuffixMultiplier    uint32
	AlphabetFingerprint uint64
	MaxExtra            int
	Strategy            Strategy
	PrefixWidth         int
	Count               uint64
	Found               uint64
	Truncated           bool
}

// OpenResults opens a result file. It opens the file, memory-maps it, and
// closes the file descriptor.
func OpenResults(path string) (*Results, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open result file: %w", err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat result file: %w", err)
	}
	if stat.Size() < headerSize+footerSize {
		return nil, rcerrors.ErrTruncatedFile
	}

	fadviseSequential(int(file.Fd()), 0, stat.Size())

	mm, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("mmap result file: %w", err)
	}

	r := &Results{
		mmap: mm,
		data: []byte(mm),
	}
	if err := r.initFromData(); err != nil {
		return nil, errors.Join(err, r.Close())
	}
	return r, nil
}

// OpenResultsBytes reads a result file from memory. Close is a no-op.
// The caller must not modify data while the Results is in use.
func OpenResultsBytes(data []byte) (*Results, error) {
	if len(data) < headerSize+footerSize {
		return nil, rcerrors.ErrTruncatedFile
	}
	r := &Results{data: data}
	if err := r.initFromData(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Results) initFromData() error {
	hdr, err := decodeHeader(r.data[:headerSize])
	if err != nil {
		return err
	}

	// Count comes from the file; bound it before multiplying.
	maxCount := uint64(len(r.data)-headerSize-footerSize) / matchSlotSize
	if hdr.Count > maxCount {
		return rcerrors.ErrTruncatedFile
	}
	if want := uint64(headerSize) + hdr.Count*matchSlotSize + footerSize; uint64(len(r.data)) != want {
		return fmt.Errorf("%w: size %d, want %d", rcerrors.ErrCorruptedFile, len(r.data), want)
	}

	r.header = hdr
	return nil
}

// Info returns the header fields.
func (r *Results) Info() ResultsInfo {
	h := r.header
	return ResultsInfo{
		Target:              h.Target,
		PrefixHash:          h.PrefixHash,
		TargetShift:         h.TargetShift,
		SuffixMultiplier:    h.SuffixMultiplier,
		AlphabetFingerprint: h.AlphabetFingerprint,
		MaxExtra:            int(h.MaxExtra),
		Strategy:            h.Strategy,
		PrefixWidth:         int(h.PrefixWidth),
		Count:               h.Count,
		Found:               h.Found,
		Truncated:           h.Flags&flagTruncated != 0,
	}
}

// Len returns the number of stored matches.
func (r *Results) Len() int {
	return int(r.header.Count)
}

// Match returns the i-th stored match.
func (r *Results) Match(i int) (Match, error) {
	if r.closed.Load() {
		return Match{}, rcerrors.ErrResultsClosed
	}
	if i < 0 || i >= r.Len() {
		return Match{}, fmt.Errorf("match index %d out of range [0, %d)", i, r.Len())
	}
	off := headerSize + i*matchSlotSize
	m, ok := decodeMatch(r.data[off : off+matchSlotSize])
	if !ok {
		return Match{}, fmt.Errorf("%w: slot %d", rcerrors.ErrCorruptedFile, i)
	}
	if m.Len() > int(r.header.MaxExtra)+1 {
		return Match{}, fmt.Errorf("%w: slot %d longer than search bound", rcerrors.ErrCorruptedFile, i)
	}
	return m, nil
}

// All iterates over the stored matches in file order, stopping at the first
// undecodable slot.
func (r *Results) All() iter.Seq2[Match, error] {
	return func(yield func(Match, error) bool) {
		for i := range r.Len() {
			m, err := r.Match(i)
			if !yield(m, err) || err != nil {
				return
			}
		}
	}
}

// CheckTarget verifies that every stored match completes the target when
// placed between prefix and suffix.
func (r *Results) CheckTarget(prefix, suffix []byte) error {
	pre := NewPrecomputedSuffix(suffix, r.header.Target)
	if Hash(prefix) != r.header.PrefixHash || pre.TargetShift != r.header.TargetShift {
		return fmt.Errorf("%w: prefix or suffix differ from the search", rcerrors.ErrSelfCheckFailed)
	}
	for m, err := range r.All() {
		if err != nil {
			return err
		}
		if got := pre.Combine(Extend(r.header.PrefixHash, m.AppendTo(nil))); got != r.header.Target {
			return fmt.Errorf("%w: %q hashes to 0x%08x", rcerrors.ErrSelfCheckFailed, m.String(), got)
		}
	}
	return nil
}

// CheckAlphabet verifies that the file was searched over symbols, given in
// any order.
func (r *Results) CheckAlphabet(symbols string) error {
	a, err := alphabet.New([]byte(symbols))
	if err != nil {
		return err
	}
	if got := a.Fingerprint(); got != r.header.AlphabetFingerprint {
		return fmt.Errorf("%w: %q has fingerprint 0x%016x, file has 0x%016x",
			rcerrors.ErrAlphabetMismatch, a.String(), got, r.header.AlphabetFingerprint)
	}
	return nil
}

// Verify checks the entry region against the footer checksum.
func (r *Results) Verify() error {
	if r.closed.Load() {
		return rcerrors.ErrResultsClosed
	}
	end := headerSize + int(r.header.Count)*matchSlotSize
	ftr, err := decodeFooter(r.data[end:])
	if err != nil {
		return err
	}
	if got := xxhash.Sum64(r.data[headerSize:end]); got != ftr.EntriesHash {
		return fmt.Errorf("%w: entries hash 0x%016x, want 0x%016x", rcerrors.ErrChecksumFailed, got, ftr.EntriesHash)
	}
	return nil
}

// Close releases the mapping.
func (r *Results) Close() error {
	if r.closed.Swap(true) {
		return nil // Already closed
	}

	if r.mmap != nil {
		return r.mmap.Unmap()
	}
	return nil
}
