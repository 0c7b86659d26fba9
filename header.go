package rollcollide

import (
	"encoding/binary"

	rcerrors "github.com/tamirms/rollcollide/errors"
)

const (
	// magic number for result files: "RCOL" in little-endian
	magic = uint32(0x4C4F4352)

	// version is the current format version
	version = uint16(0x0001)

	// headerSize is the exact size of the serialized header (64 bytes)
	headerSize = 64

	// footerSize is the exact size of the serialized footer (16 bytes)
	footerSize = 16

	// flagTruncated marks a result whose grid buffer dropped matches.
	flagTruncated = uint8(1 << 0)
)

// header is the 64-byte result file header.
//
// Layout:
//
//	Offset  Size  Field                Type
//	0       4     Magic                0x4C4F4352 ("RCOL")
//	4       2     Version              0x0001
//	6       4     Target               uint32_le
//	10      4     PrefixHash           uint32_le
//	14      4     TargetShift          uint32_le
//	18      4     SuffixMultiplier     uint32_le
//	22      8     AlphabetFingerprint  uint64_le (xxh3 of sorted symbols)
//	30      1     MaxExtra             uint8
//	31      1     Strategy             uint8 (0=dfs, 1=grid)
//	32      1     PrefixWidth          uint8 (grid only)
//	33      1     Flags                uint8 (bit 0: truncated)
//	34      8     Count                uint64_le (stored matches)
//	42      8     Found                uint64_le (matches seen)
//	50      14    Reserved             [14]byte (zero)
//
// Entries follow the header: Count slots of 9 bytes (length byte, then 8
// bytes zero padded).
type header struct {
	Magic               uint32
	Version             uint16
	Target              uint32
	PrefixHash          uint32
	TargetShift         uint32
	SuffixMultiplier    uint32
	AlphabetFingerprint uint64
	MaxExtra            uint8
	Strategy            Strategy
	PrefixWidth         uint8
	Flags               uint8
	Count               uint64
	Found               uint64
	Reserved            [14]byte
}

// encodeTo serializes the header to an existing buffer.
func (h *header) encodeTo(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:4], h.Magic)
	binary.LittleEndian.PutUint16(buf[4:6], h.Version)
	binary.LittleEndian.PutUint32(buf[6:10], h.Target)
	binary.LittleEndian.PutUint32(buf[10:14], h.PrefixHash)
	binary.LittleEndian.PutUint32(buf[14:18], h.TargetShift)
	binary.LittleEndian.PutUint32(buf[18:22], h.SuffixMultiplier)
	binary.LittleEndian.PutUint64(buf[22:30], h.AlphabetFingerprint)
	buf[30] = h.MaxExtra
	buf[31] = uint8(h.Strategy)
	buf[32] = h.PrefixWidth
	buf[33] = h.Flags
	binary.LittleEndian.PutUint64(buf[34:42], h.Count)
	binary.LittleEndian.PutUint64(buf[42:50], h.Found)
	copy(buf[50:64], h.Reserved[:])
}

// decodeHeader parses a 64-byte header.
func decodeHeader(buf []byte) (*header, error) {
	if len(buf) < headerSize {
		return nil, rcerrors.ErrTruncatedFile
	}

	h := &header{
		Magic:               binary.LittleEndian.Uint32(buf[0:4]),
		Version:             binary.LittleEndian.Uint16(buf[4:6]),
		Target:              binary.LittleEndian.Uint32(buf[6:10]),
		PrefixHash:          binary.LittleEndian.Uint32(buf[10:14]),
		TargetShift:         binary.LittleEndian.Uint32(buf[14:18]),
		SuffixMultiplier:    binary.LittleEndian.Uint32(buf[18:22]),
		AlphabetFingerprint: binary.LittleEndian.Uint64(buf[22:30]),
		MaxExtra:            buf[30],
		Strategy:            Strategy(buf[31]),
		PrefixWidth:         buf[32],
		Flags:               buf[33],
		Count:               binary.LittleEndian.Uint64(buf[34:42]),
		Found:               binary.LittleEndian.Uint64(buf[42:50]),
	}
	copy(h.Reserved[:], buf[50:64])

	if h.Magic != magic {
		return nil, rcerrors.ErrInvalidMagic
	}
	if h.Version != version {
		return nil, rcerrors.ErrInvalidVersion
	}
	if int(h.MaxExtra)+1 > MaxMatchLen || h.Strategy > StrategyGrid {
		return nil, rcerrors.ErrCorruptedFile
	}
	if h.Count > h.Found {
		return nil, rcerrors.ErrCorruptedFile
	}
	// The odd multiplier is what makes the suffix solvable at all.
	if h.SuffixMultiplier&1 == 0 {
		return nil, rcerrors.ErrCorruptedFile
	}

	return h, nil
}

// footer is the 16-byte file footer.
//
// Layout:
//
//	Offset  Size  Field        Type
//	0       8     EntriesHash  uint64_le (xxHash64 of entry region)
//	8       8     Reserved     [8]byte (zero)
type footer struct {
	EntriesHash uint64
	Reserved    [8]byte
}

// encodeTo serializes the footer into an existing buffer.
func (f *footer) encodeTo(buf []byte) {
	binary.LittleEndian.PutUint64(buf[0:8], f.EntriesHash)
	copy(buf[8:16], f.Reserved[:])
}

// decodeFooter parses a 16-byte footer.
func decodeFooter(buf []byte) (*footer, error) {
	if len(buf) < footerSize {
		return nil, rcerrors.ErrTruncatedFile
	}

	f := &footer{
		EntriesHash: binary.LittleEndian.Uint64(buf[0:8]),
	}
	copy(f.Reserved[:], buf[8:16])

	return f, nil
}
