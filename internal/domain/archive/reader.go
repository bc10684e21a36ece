package archive

import (
	"encoding/binary"
	"fmt"

	"go.uber.org/zap"

	errs "gamesave/internal/errors"
)

// MaxDepth bounds object nesting while reading a class graph. Sibling chains
// are encoded as nested objects, so this also bounds list length per level.
const MaxDepth = 4096

type slot struct {
	obj   Object
	class int // registry class id for declaration slots, -1 for objects
}

// Reader decodes little-endian primitives and MFC-style object graphs from
// an in-memory buffer. The first decoding error is sticky: later reads
// return zero values and Err reports the original failure.
type Reader struct {
	buf      []byte
	pos      int
	err      error
	registry *Registry
	slots    []slot
	level    int
	log      *zap.SugaredLogger
}

func NewReader(data []byte, registry *Registry, log *zap.SugaredLogger) *Reader {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if registry == nil {
		registry = NewRegistry()
	}
	return &Reader{
		buf:      data,
		registry: registry,
		slots:    []slot{{class: -1}},
		log:      log,
	}
}

func (r *Reader) Err() error { return r.err }

func (r *Reader) Pos() int { return r.pos }

func (r *Reader) Len() int { return len(r.buf) }

func (r *Reader) Remaining() int { return len(r.buf) - r.pos }

// Level is the current object nesting depth.
func (r *Reader) Level() int { return r.level }

func (r *Reader) Logger() *zap.SugaredLogger { return r.log }

// Fail records err unless an earlier error is already pending.
func (r *Reader) Fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

func (r *Reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || r.pos+n > len(r.buf) {
		r.err = fmt.Errorf("need %d bytes at offset %d of %d: %w", n, r.pos, len(r.buf), errs.ErrTruncated)
		return nil
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b
}

func (r *Reader) ReadUint8() uint8 {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *Reader) ReadUint16() uint16 {
	b := r.take(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (r *Reader) ReadUint32() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (r *Reader) ReadInt32() int32 {
	return int32(r.ReadUint32())
}

// ReadBytes returns a copy of the next n bytes.
func (r *Reader) ReadBytes(n int) []byte {
	b := r.take(n)
	if b == nil {
		return nil
	}
	out := make([]byte, n)
	copy(out, b)
	return out
}

// ReadPascalString reads a u8 length prefixed string. A length byte of 0xFF
// is followed by the real u16 length.
func (r *Reader) ReadPascalString() string {
	n := int(r.ReadUint8())
	if n == 0xFF {
		n = int(r.ReadUint16())
	}
	return string(r.take(n))
}

// ReadWidePascalString reads a u16 length prefixed string, the form used for
// class names.
func (r *Reader) ReadWidePascalString() string {
	n := int(r.ReadUint16())
	return string(r.take(n))
}

// ReadClass reads the next object reference. New objects are constructed by
// the registry, registered, then loaded; back-references return the instance
// already registered at that index. A nil object with nil error is the null
// reference.
func (r *Reader) ReadClass() (Object, error) {
	if r.err != nil {
		return nil, r.err
	}

	tag := r.ReadUint16()
	if r.err != nil {
		return nil, r.err
	}

	var classID int
	switch {
	case tag == newClassTag:
		schema := r.ReadUint16()
		name := r.ReadWidePascalString()
		if r.err != nil {
			return nil, r.err
		}
		id, ok := r.registry.lookup(name)
		if !ok {
			r.err = fmt.Errorf("class %q (schema %d) at offset %d: %w", name, schema, r.pos, errs.ErrUnknownClass)
			return nil, r.err
		}
		r.slots = append(r.slots, slot{class: id})
		classID = id
	case tag&classTagFlag == 0:
		idx := int(tag)
		if idx == 0 {
			return nil, nil
		}
		if idx >= len(r.slots) || r.slots[idx].obj == nil {
			r.err = fmt.Errorf("back-reference %d with %d slots: %w", idx, len(r.slots), errs.ErrBadReference)
			return nil, r.err
		}
		return r.slots[idx].obj, nil
	default:
		idx := int(tag &^ classTagFlag)
		if idx >= len(r.slots) || r.slots[idx].class < 0 {
			r.err = fmt.Errorf("class reference %d with %d slots: %w", idx, len(r.slots), errs.ErrBadReference)
			return nil, r.err
		}
		classID = r.slots[idx].class
	}

	if r.level >= MaxDepth {
		r.err = fmt.Errorf("level %d: %w", r.level, errs.ErrTooDeep)
		return nil, r.err
	}

	obj := r.registry.create(classID)
	r.slots = append(r.slots, slot{obj: obj, class: -1})

	r.level++
	err := obj.Load(r)
	r.level--
	if err != nil {
		r.Fail(err)
		return nil, r.err
	}
	if r.err != nil {
		return nil, r.err
	}
	return obj, nil
}
