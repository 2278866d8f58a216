package reqsketch

import (
	"math"

	"github.com/gogo/protobuf/proto"
	"github.com/pierrec/lz4/v4"
	"github.com/pkg/errors"
)

// Sketch wire layout (bytes, little-endian):
//   0   1  preamble-longs (always 1)
//   1   1  ser-ver (always 1)
//   2   1  family-id (17)
//   3   1  flags: bit2=empty, bit3=hra, bit4=compatible, bit5=criterion-is-LE
//   4   4  k (int32, fixed32)
//   8   8  total_n (int64, fixed64)
//   16  4  min_value (float32, fixed32)
//   20  4  max_value (float32, fixed32)
//   24  4  num_compactors (int32, fixed32)
//   28  ... num_compactors blobs, each length-prefixed (int32, fixed32) and
//           produced by compactor.toByteArray()
const (
	sketchPreambleLongs byte = 1
	sketchSerVer        byte = 1

	sketchFlagEmpty      byte = 1 << 2
	sketchFlagHRA        byte = 1 << 3
	sketchFlagCompatible byte = 1 << 4
	sketchFlagCritIsLE   byte = 1 << 5
)

func fixed32(v uint32) []byte {
	b := proto.NewBuffer(nil)
	b.EncodeFixed32(uint64(v))
	return b.Bytes()
}

func fixed64(v uint64) []byte {
	b := proto.NewBuffer(nil)
	b.EncodeFixed64(v)
	return b.Bytes()
}

func decodeFixed32At(data []byte, off int) (uint32, error) {
	if off+4 > len(data) {
		return 0, errors.Wrap(errBadHeader, "sketch: truncated fixed32 field")
	}
	pb := proto.NewBuffer(data[off : off+4])
	v, err := pb.DecodeFixed32()
	return uint32(v), err
}

func decodeFixed64At(data []byte, off int) (uint64, error) {
	if off+8 > len(data) {
		return 0, errors.Wrap(errBadHeader, "sketch: truncated fixed64 field")
	}
	pb := proto.NewBuffer(data[off : off+8])
	return pb.DecodeFixed64()
}

// criterionFlagBit packs only the LE-vs-LT distinction into the wire
// format: GT/GE are runtime-only query settings and never persist, so
// a criterion of GT or GE round-trips as LT.
func criterionFlagBit(c Criterion) byte {
	if c == LE {
		return sketchFlagCritIsLE
	}
	return 0
}

// ToByteArray serializes the full sketch state: header, extrema and
// every compactor level's buffer and capacity schedule.
func (s *Sketch) ToByteArray() []byte {
	flags := byte(0)
	if s.IsEmpty() {
		flags |= sketchFlagEmpty
	}
	if s.hra {
		flags |= sketchFlagHRA
	}
	if s.compatible {
		flags |= sketchFlagCompatible
	}
	flags |= criterionFlagBit(s.criterion)

	out := make([]byte, 0, 28)
	out = append(out, sketchPreambleLongs, sketchSerVer, familyID, flags)
	out = append(out, fixed32(uint32(s.k))...)
	out = append(out, fixed64(s.totalN)...)
	out = append(out, fixed32(math.Float32bits(s.minValue))...)
	out = append(out, fixed32(math.Float32bits(s.maxValue))...)
	out = append(out, fixed32(uint32(len(s.compactors)))...)

	for _, c := range s.compactors {
		blob := c.toByteArray()
		out = append(out, fixed32(uint32(len(blob)))...)
		out = append(out, blob...)
	}
	s.debug.Serialize(len(out))
	return out
}

// Heapify reconstructs a Sketch from the bytes written by ToByteArray.
// Each reconstructed compactor is given a fresh default BitSource keyed
// off seed 0 and its level, since the random stream itself is never
// part of the wire format.
func Heapify(data []byte) (*Sketch, error) {
	if len(data) < 28 {
		return nil, errors.Wrap(errBadHeader, "sketch: truncated header")
	}
	if data[0] != sketchPreambleLongs || data[1] != sketchSerVer || data[2] != familyID {
		return nil, errors.Wrap(errBadHeader, "sketch: bad preamble/ser-ver/family")
	}
	flags := data[3]

	k32, err := decodeFixed32At(data, 4)
	if err != nil {
		return nil, errors.Wrap(err, "sketch: k")
	}
	totalN, err := decodeFixed64At(data, 8)
	if err != nil {
		return nil, errors.Wrap(err, "sketch: total_n")
	}
	minBits, err := decodeFixed32At(data, 16)
	if err != nil {
		return nil, errors.Wrap(err, "sketch: min_value")
	}
	maxBits, err := decodeFixed32At(data, 20)
	if err != nil {
		return nil, errors.Wrap(err, "sketch: max_value")
	}
	numCompactors, err := decodeFixed32At(data, 24)
	if err != nil {
		return nil, errors.Wrap(err, "sketch: num_compactors")
	}
	if int32(k32) < minK {
		return nil, errors.Wrapf(ErrInvalidK, "sketch: decoded k=%d", int32(k32))
	}

	hra := flags&sketchFlagHRA != 0
	compatible := flags&sketchFlagCompatible != 0
	criterion := LT
	if flags&sketchFlagCritIsLE != 0 {
		criterion = LE
	}

	s := &Sketch{
		k:          int(k32),
		hra:        hra,
		compatible: compatible,
		criterion:  criterion,
		totalN:     totalN,
		minValue:   math.Float32frombits(minBits),
		maxValue:   math.Float32frombits(maxBits),
		hasSeen:    flags&sketchFlagEmpty == 0,
		debug:      noopDebug{},
	}

	off := 28
	s.compactors = make([]*compactor, 0, numCompactors)
	for i := 0; i < int(numCompactors); i++ {
		blobLen, err := decodeFixed32At(data, off)
		if err != nil {
			return nil, errors.Wrapf(err, "sketch: compactor %d length", i)
		}
		off += 4
		if off+int(blobLen) > len(data) {
			return nil, errors.Wrapf(errBadHeader, "sketch: compactor %d truncated blob", i)
		}
		c, err := heapifyCompactor(data[off:off+int(blobLen)], newRandBitSource(uint64(i)*0xD1B54A32D192ED03))
		if err != nil {
			return nil, errors.Wrapf(err, "sketch: compactor %d", i)
		}
		s.compactors = append(s.compactors, c)
		off += int(blobLen)
	}

	s.updateMaxNominalSize()
	s.updateRetainedItems()
	return s, nil
}

// ToCompressedByteArray serializes the sketch and LZ4-block-compresses
// the result, prefixing two fixed32 fields: the uncompressed length
// (lz4's block API needs the destination sized up front) and the
// compressed length, which is 0 when the raw bytes are stored as is.
func (s *Sketch) ToCompressedByteArray() ([]byte, error) {
	raw := s.ToByteArray()
	dst := make([]byte, lz4.CompressBlockBound(len(raw)))
	n, err := lz4.CompressBlock(raw, dst, nil)
	if err != nil {
		return nil, errors.Wrap(err, "sketch: lz4 compress")
	}
	if n == 0 {
		// incompressible input: lz4 signals this by writing nothing: fall
		// back to storing the raw block and flag it as such via length 0.
		out := make([]byte, 0, 8+len(raw))
		out = append(out, fixed32(uint32(len(raw)))...)
		out = append(out, fixed32(0)...)
		out = append(out, raw...)
		return out, nil
	}
	out := make([]byte, 0, 8+n)
	out = append(out, fixed32(uint32(len(raw)))...)
	out = append(out, fixed32(uint32(n))...)
	out = append(out, dst[:n]...)
	return out, nil
}

// FromCompressedByteArray reverses ToCompressedByteArray.
func FromCompressedByteArray(data []byte) (*Sketch, error) {
	if len(data) < 8 {
		return nil, errors.Wrap(errBadHeader, "sketch: truncated compressed header")
	}
	rawLen, err := decodeFixed32At(data, 0)
	if err != nil {
		return nil, errors.Wrap(err, "sketch: uncompressed length")
	}
	compressedLen, err := decodeFixed32At(data, 4)
	if err != nil {
		return nil, errors.Wrap(err, "sketch: compressed length")
	}
	payload := data[8:]
	if compressedLen == 0 {
		if uint32(len(payload)) < rawLen {
			return nil, errors.Wrap(errBadHeader, "sketch: truncated stored block")
		}
		return Heapify(payload[:rawLen])
	}
	raw := make([]byte, rawLen)
	n, err := lz4.UncompressBlock(payload[:compressedLen], raw)
	if err != nil {
		return nil, errors.Wrap(err, "sketch: lz4 decompress")
	}
	return Heapify(raw[:n])
}
