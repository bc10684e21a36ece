package errors

import "errors"

var (
	ErrSlotNotFound   = errors.New("save slot was not found")
	ErrBadSlotName    = errors.New("invalid save slot name")
	ErrBadMagic       = errors.New("save header magic mismatch")
	ErrBadVersion     = errors.New("unsupported save version")
	ErrBadHeader      = errors.New("malformed save header")
	ErrBadThumbnail   = errors.New("thumbnail could not be decoded")
	ErrTruncated      = errors.New("archive truncated")
	ErrUnknownClass   = errors.New("unknown archive class")
	ErrBadReference   = errors.New("invalid archive object reference")
	ErrUnexpectedType = errors.New("archive object has unexpected type")
	ErrTooDeep        = errors.New("archive nesting too deep")
	ErrTooManyObjects = errors.New("archive object table overflow")
	ErrUnknownVarType = errors.New("unknown variable type")
	ErrCyclicTree     = errors.New("variable links form a cycle")
	ErrLoadCancelled  = errors.New("load cancelled before scene switch")
	ErrNoObjStates    = errors.New("no state to merge into")
	ErrUnknownScene   = errors.New("unknown scene")
	ErrSceneNotLoaded = errors.New("scene is not loaded")
	ErrInternal       = errors.New("internal error")
)

// Class groups load errors by how the caller is expected to react.
type Class int

const (
	// ClassNone means no error.
	ClassNone Class = iota
	// ClassRecoverable covers missing slots and incompatible headers: the
	// caller lists the slot as unreadable and carries on.
	ClassRecoverable
	// ClassFatal aborts the load attempt in progress.
	ClassFatal
)

func (c Class) String() string {
	switch c {
	case ClassNone:
		return "none"
	case ClassRecoverable:
		return "recoverable"
	case ClassFatal:
		return "fatal"
	}
	return "unknown"
}

// Classify maps err onto the load error taxonomy. Cancellation counts as
// recoverable since nothing destructive happened yet.
func Classify(err error) Class {
	switch {
	case err == nil:
		return ClassNone
	case errors.Is(err, ErrSlotNotFound),
		errors.Is(err, ErrBadSlotName),
		errors.Is(err, ErrBadMagic),
		errors.Is(err, ErrBadVersion),
		errors.Is(err, ErrBadHeader),
		errors.Is(err, ErrBadThumbnail),
		errors.Is(err, ErrLoadCancelled):
		return ClassRecoverable
	}
	return ClassFatal
}
