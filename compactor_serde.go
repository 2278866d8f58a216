package reqsketch

import (
	"math"

	"github.com/gogo/protobuf/proto"
	"github.com/pkg/errors"
)

// compactor wire layout (bytes, little-endian):
//   0   1  preamble-longs (always 1)
//   1   1  ser-ver (always 1)
//   2   1  flags: bit0=hra, bit1=empty
//   3   1  lg_weight
//   4   8  section_size_flt (float64, fixed64)
//   12  4  num_sections (int32, fixed32)
//   16  8  num_compactions (int64, fixed64)
//   24  8  state (uint64, fixed64)
//   32  4  buffer length (int32, fixed32)
//   36  ... buffer payload, sorted ascending, 4 bytes (float32, fixed32) per item
//
// Every fixed-width field is written with gogo/protobuf's proto.Buffer,
// whose EncodeFixed32/EncodeFixed64 (and the matching Decode* methods)
// produce exactly the little-endian byte layout this format calls for,
// without hand-rolling encoding/binary calls.
const (
	compactorPreambleLongs byte = 1
	compactorSerVer        byte = 1

	flagHRA   byte = 1 << 0
	flagEmpty byte = 1 << 1
)

func (c *compactor) toByteArray() []byte {
	// heapifyCompactor marks the decoded buffer as sorted, so the payload
	// must be written in ascending order.
	c.buf.Sort()
	flags := byte(0)
	if c.hra {
		flags |= flagHRA
	}
	if c.buf.Len() == 0 {
		flags |= flagEmpty
	}

	out := make([]byte, 0, 36+4*c.buf.Len())
	out = append(out, compactorPreambleLongs, compactorSerVer, flags, byte(c.lgWeight))

	fbuf := proto.NewBuffer(nil)
	fbuf.EncodeFixed64(math.Float64bits(c.sectionSizeFlt))
	out = append(out, fbuf.Bytes()...)

	fbuf = proto.NewBuffer(nil)
	fbuf.EncodeFixed32(uint64(uint32(c.numSections)))
	out = append(out, fbuf.Bytes()...)

	fbuf = proto.NewBuffer(nil)
	fbuf.EncodeFixed64(uint64(c.numCompactions))
	out = append(out, fbuf.Bytes()...)

	fbuf = proto.NewBuffer(nil)
	fbuf.EncodeFixed64(c.state)
	out = append(out, fbuf.Bytes()...)

	fbuf = proto.NewBuffer(nil)
	fbuf.EncodeFixed32(uint64(uint32(c.buf.Len())))
	out = append(out, fbuf.Bytes()...)

	for _, v := range c.buf.Slice() {
		fbuf = proto.NewBuffer(nil)
		fbuf.EncodeFixed32(uint64(math.Float32bits(v)))
		out = append(out, fbuf.Bytes()...)
	}
	return out
}

func heapifyCompactor(data []byte, bitSrc BitSource) (*compactor, error) {
	if len(data) < 36 {
		return nil, errors.Wrap(errBadHeader, "compactor: truncated header")
	}
	if data[0] != compactorPreambleLongs || data[1] != compactorSerVer {
		return nil, errors.Wrap(errBadHeader, "compactor: bad preamble/ser-ver")
	}
	flags := data[2]
	lgWeight := int(data[3])
	hra := flags&flagHRA != 0

	pb := proto.NewBuffer(data[4:12])
	sszBits, err := pb.DecodeFixed64()
	if err != nil {
		return nil, errors.Wrap(err, "compactor: section_size_flt")
	}
	sectionSizeFlt := math.Float64frombits(sszBits)

	pb = proto.NewBuffer(data[12:16])
	numSections64, err := pb.DecodeFixed32()
	if err != nil {
		return nil, errors.Wrap(err, "compactor: num_sections")
	}

	pb = proto.NewBuffer(data[16:24])
	numCompactions, err := pb.DecodeFixed64()
	if err != nil {
		return nil, errors.Wrap(err, "compactor: num_compactions")
	}

	pb = proto.NewBuffer(data[24:32])
	state, err := pb.DecodeFixed64()
	if err != nil {
		return nil, errors.Wrap(err, "compactor: state")
	}

	pb = proto.NewBuffer(data[32:36])
	bufLen64, err := pb.DecodeFixed32()
	if err != nil {
		return nil, errors.Wrap(err, "compactor: buffer length")
	}
	bufLen := int(uint32(bufLen64))

	items := make([]float32, bufLen)
	off := 36
	for i := 0; i < bufLen; i++ {
		if off+4 > len(data) {
			return nil, errors.Wrap(errBadHeader, "compactor: truncated buffer payload")
		}
		pb = proto.NewBuffer(data[off : off+4])
		bits32, derr := pb.DecodeFixed32()
		if derr != nil {
			return nil, errors.Wrap(derr, "compactor: buffer item")
		}
		items[i] = math.Float32frombits(uint32(bits32))
		off += 4
	}

	fb := newFloatBuffer(bufLen)
	fb.SetItems(items)

	c := &compactor{
		lgWeight:       lgWeight,
		hra:            hra,
		sectionSizeFlt: sectionSizeFlt,
		numSections:    int(uint32(numSections64)),
		numCompactions: int64(numCompactions),
		state:          state,
		buf:            fb,
		bits:           bitSrc,
	}
	return c, nil
}

func (c *compactor) serializedBytes() int {
	return 36 + 4*c.buf.Len()
}
