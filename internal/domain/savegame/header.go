package savegame

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	errs "gamesave/internal/errors"
)

const (
	// BulkVersion is the only bulk header version the loader accepts.
	BulkVersion uint32 = 48
	// MapSize is the size of the side-channel blob following the payload.
	MapSize = 800
	// HeaderSize is the encoded size of Header.
	HeaderSize = 48

	maxPayload = 64 << 20
)

// Header opens every save file and describes the obfuscated payload that
// follows it.
type Header struct {
	Version       uint32
	Magic         [32]byte
	UpdateCounter uint32
	Reserved      uint32
	EncSize       uint32
}

// MagicString returns Magic up to its first NUL.
func (h Header) MagicString() string {
	if i := bytes.IndexByte(h.Magic[:], 0); i >= 0 {
		return string(h.Magic[:i])
	}
	return string(h.Magic[:])
}

// Bulk is the raw content of a save: header, still obfuscated payload and
// the side-channel map blob.
type Bulk struct {
	Header  Header
	Payload []byte
	Map     []byte
}

// ReadHeader reads the bulk header and checks its version against want.
func ReadHeader(r io.Reader, want uint32) (Header, error) {
	var h Header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return Header{}, fmt.Errorf("read save header: %w", errs.ErrBadHeader)
	}
	if h.Version != want {
		return Header{}, fmt.Errorf("version %d, want %d: %w", h.Version, want, errs.ErrBadVersion)
	}
	if h.EncSize > maxPayload {
		return Header{}, fmt.Errorf("payload of %d bytes: %w", h.EncSize, errs.ErrBadHeader)
	}
	return h, nil
}

// ReadBody reads the payload and map blob that follow h.
func ReadBody(r io.Reader, h Header) (*Bulk, error) {
	b := &Bulk{
		Header:  h,
		Payload: make([]byte, h.EncSize),
		Map:     make([]byte, MapSize),
	}
	if _, err := io.ReadFull(r, b.Payload); err != nil {
		return nil, fmt.Errorf("read payload: %w", errs.ErrTruncated)
	}
	if _, err := io.ReadFull(r, b.Map); err != nil {
		return nil, fmt.Errorf("read map: %w", errs.ErrTruncated)
	}
	return b, nil
}

// ReadBulk reads the header, payload and map blob from r. A header whose
// version is not want fails with ErrBadVersion before anything else is read.
func ReadBulk(r io.Reader, want uint32) (*Bulk, error) {
	h, err := ReadHeader(r, want)
	if err != nil {
		return nil, err
	}
	return ReadBody(r, h)
}

func writeHeader(w io.Writer, h Header) error {
	return binary.Write(w, binary.LittleEndian, &h)
}
