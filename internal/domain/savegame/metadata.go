package savegame

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"image/png"
	"io"
	"time"

	errs "gamesave/internal/errors"
)

const (
	// MetadataVersion is the only listing block version Validate accepts.
	MetadataVersion uint8 = 1

	metadataMagic  = "SVMCR\x00"
	thumbnailMagic = "THMB"
	maxThumbnail   = 4 << 20
)

// Metadata is the listing block stored near the end of a save. It lets a
// save browser describe a slot without loading the game state.
type Metadata struct {
	Version   uint8
	Date      uint32 // day<<24 | month<<16 | year
	Time      uint16 // hour<<8 | minute
	Playtime  time.Duration
	SaveName  string
	Thumbnail image.Image
}

// PackDate encodes a calendar date the way Metadata.Date stores it.
func PackDate(year, month, day int) uint32 {
	return uint32(day&0xFF)<<24 | uint32(month&0xFF)<<16 | uint32(year&0xFFFF)
}

// PackTime encodes a wall clock time the way Metadata.Time stores it.
func PackTime(hour, minute int) uint16 {
	return uint16(hour&0xFF)<<8 | uint16(minute&0xFF)
}

func (m Metadata) Year() int   { return int(m.Date & 0xFFFF) }
func (m Metadata) Month() int  { return int(m.Date>>16) & 0xFF }
func (m Metadata) Day() int    { return int(m.Date>>24) & 0xFF }
func (m Metadata) Hour() int   { return int(m.Time>>8) & 0xFF }
func (m Metadata) Minute() int { return int(m.Time) & 0xFF }

// SavedAt returns the packed date and time as a UTC timestamp.
func (m Metadata) SavedAt() time.Time {
	return time.Date(m.Year(), time.Month(m.Month()), m.Day(), m.Hour(), m.Minute(), 0, 0, time.UTC)
}

func (m Metadata) describe() string {
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d", m.Year(), m.Month(), m.Day(), m.Hour(), m.Minute())
}

// DummyMetadata is what Validate reports for saves it cannot read, so a
// browser can still list the slot.
func DummyMetadata() Metadata {
	m := Metadata{
		Date:     PackDate(2016, 9, 20),
		Time:     PackTime(9, 56),
		Playtime: 1000 * time.Millisecond,
	}
	m.SaveName = m.describe()
	return m
}

// Validate reads the listing block of a save. It never fails: when the
// block is missing or unreadable it reports false with DummyMetadata. The
// read position of rs is the same on return as on entry.
func Validate(rs io.ReadSeeker) (bool, Metadata) {
	m, err := ReadMetadata(rs)
	if err != nil {
		return false, DummyMetadata()
	}
	return true, m
}

// ReadMetadata is Validate with the reason for rejection. The read position
// of rs is restored on every path.
func ReadMetadata(rs io.ReadSeeker) (m Metadata, err error) {
	oldPos, err := rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return Metadata{}, fmt.Errorf("tell: %w", errs.ErrBadHeader)
	}
	defer func() {
		if _, serr := rs.Seek(oldPos, io.SeekStart); serr != nil && err == nil {
			err = fmt.Errorf("rewind: %w", errs.ErrBadHeader)
		}
	}()

	size, err := rs.Seek(-4, io.SeekEnd)
	if err != nil {
		return Metadata{}, fmt.Errorf("file too short: %w", errs.ErrBadHeader)
	}
	size += 4

	var offset uint32
	if err := binary.Read(rs, binary.LittleEndian, &offset); err != nil {
		return Metadata{}, fmt.Errorf("read offset: %w", errs.ErrBadHeader)
	}
	if offset == 0 || int64(offset) >= size {
		return Metadata{}, fmt.Errorf("metadata offset %d in file of %d bytes: %w", offset, size, errs.ErrBadHeader)
	}
	if _, err := rs.Seek(int64(offset), io.SeekStart); err != nil {
		return Metadata{}, fmt.Errorf("seek metadata: %w", errs.ErrBadHeader)
	}

	var id [6]byte
	if _, err := io.ReadFull(rs, id[:]); err != nil {
		return Metadata{}, fmt.Errorf("read magic: %w", errs.ErrBadHeader)
	}
	if string(id[:]) != metadataMagic {
		return Metadata{}, fmt.Errorf("magic %q: %w", id[:], errs.ErrBadMagic)
	}

	var fixed struct {
		Version  uint8
		Date     uint32
		Time     uint16
		Playtime uint32
	}
	if err := binary.Read(rs, binary.LittleEndian, &fixed.Version); err != nil {
		return Metadata{}, fmt.Errorf("read version: %w", errs.ErrBadHeader)
	}
	if fixed.Version != MetadataVersion {
		return Metadata{}, fmt.Errorf("metadata version %d: %w", fixed.Version, errs.ErrBadVersion)
	}
	for _, field := range []any{&fixed.Date, &fixed.Time, &fixed.Playtime} {
		if err := binary.Read(rs, binary.LittleEndian, field); err != nil {
			return Metadata{}, fmt.Errorf("read metadata fields: %w", errs.ErrBadHeader)
		}
	}

	m = Metadata{
		Version:  fixed.Version,
		Date:     fixed.Date,
		Time:     fixed.Time,
		Playtime: time.Duration(fixed.Playtime) * time.Second,
	}
	m.SaveName = m.describe()

	m.Thumbnail, err = readThumbnail(rs)
	if err != nil {
		return Metadata{}, err
	}
	return m, nil
}

func readThumbnail(r io.Reader) (image.Image, error) {
	var head struct {
		Magic [4]byte
		Size  uint32
	}
	if err := binary.Read(r, binary.LittleEndian, &head); err != nil {
		return nil, fmt.Errorf("read thumbnail header: %w", errs.ErrBadThumbnail)
	}
	if string(head.Magic[:]) != thumbnailMagic || head.Size > maxThumbnail {
		return nil, fmt.Errorf("thumbnail header %q/%d: %w", head.Magic[:], head.Size, errs.ErrBadThumbnail)
	}
	data := make([]byte, head.Size)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, fmt.Errorf("read thumbnail: %w", errs.ErrBadThumbnail)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode thumbnail: %v: %w", err, errs.ErrBadThumbnail)
	}
	return img, nil
}

func writeThumbnail(w io.Writer, img image.Image) error {
	var buf bytes.Buffer
	if img == nil {
		img = image.NewRGBA(image.Rect(0, 0, 1, 1))
	}
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("encode thumbnail: %w", err)
	}
	if _, err := io.WriteString(w, thumbnailMagic); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(buf.Len())); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func writeMetadata(w io.Writer, m Metadata) error {
	if _, err := io.WriteString(w, metadataMagic); err != nil {
		return err
	}
	fixed := struct {
		Version  uint8
		Date     uint32
		Time     uint16
		Playtime uint32
	}{
		Version:  m.Version,
		Date:     m.Date,
		Time:     m.Time,
		Playtime: uint32(m.Playtime / time.Second),
	}
	if err := binary.Write(w, binary.LittleEndian, &fixed); err != nil {
		return err
	}
	return writeThumbnail(w, m.Thumbnail)
}
