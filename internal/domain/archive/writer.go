package archive

import (
	"encoding/binary"
	"fmt"

	errs "gamesave/internal/errors"
)

// Writer is the encoding counterpart of Reader. It assigns object indices in
// the same order Reader registers them, so anything written here reads back
// with identical sharing.
type Writer struct {
	buf      []byte
	registry *Registry
	objects  map[Storable]int
	classes  map[string]int
	next     int
}

// NewWriter returns a Writer. registry may be nil; it only supplies class
// schema numbers.
func NewWriter(registry *Registry) *Writer {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Writer{
		registry: registry,
		objects:  make(map[Storable]int),
		classes:  make(map[string]int),
		next:     1,
	}
}

func (w *Writer) Bytes() []byte { return w.buf }

func (w *Writer) Len() int { return len(w.buf) }

func (w *Writer) WriteUint8(v uint8) {
	w.buf = append(w.buf, v)
}

func (w *Writer) WriteUint16(v uint16) {
	w.buf = binary.LittleEndian.AppendUint16(w.buf, v)
}

func (w *Writer) WriteUint32(v uint32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}

func (w *Writer) WriteInt32(v int32) {
	w.WriteUint32(uint32(v))
}

func (w *Writer) WriteBytes(b []byte) {
	w.buf = append(w.buf, b...)
}

func (w *Writer) WritePascalString(s string) error {
	switch {
	case len(s) < 0xFF:
		w.WriteUint8(uint8(len(s)))
	case len(s) <= 0xFFFF:
		w.WriteUint8(0xFF)
		w.WriteUint16(uint16(len(s)))
	default:
		return fmt.Errorf("string of %d bytes does not fit a pascal string", len(s))
	}
	w.WriteBytes([]byte(s))
	return nil
}

func (w *Writer) WriteWidePascalString(s string) error {
	if len(s) > 0xFFFF {
		return fmt.Errorf("string of %d bytes does not fit a wide pascal string", len(s))
	}
	w.WriteUint16(uint16(len(s)))
	w.WriteBytes([]byte(s))
	return nil
}

// WriteObject writes obj, or a back-reference if it was written before.
// A nil obj is written as the null reference.
func (w *Writer) WriteObject(obj Storable) error {
	if obj == nil {
		w.WriteUint16(0)
		return nil
	}
	if idx, ok := w.objects[obj]; ok {
		w.WriteUint16(uint16(idx))
		return nil
	}

	name := obj.ClassName()
	if idx, ok := w.classes[name]; ok {
		w.WriteUint16(classTagFlag | uint16(idx))
	} else {
		if w.next > maxIndex {
			return errs.ErrTooManyObjects
		}
		w.WriteUint16(newClassTag)
		w.WriteUint16(w.registry.schema(name))
		if err := w.WriteWidePascalString(name); err != nil {
			return err
		}
		w.classes[name] = w.next
		w.next++
	}

	if w.next > maxIndex {
		return errs.ErrTooManyObjects
	}
	w.objects[obj] = w.next
	w.next++

	return obj.Save(w)
}
