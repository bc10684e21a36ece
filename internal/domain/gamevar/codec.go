package gamevar

import (
	"fmt"
	"math"
	"strings"

	"gamesave/internal/domain/archive"
	errs "gamesave/internal/errors"
)

// ClassName is the archive class of a serialized variable.
const ClassName = "CGameVar"

// Classes returns the archive classes this package can decode.
func Classes() []archive.Class {
	return []archive.Class{
		{Name: ClassName, New: func() archive.Object { return &record{} }},
	}
}

// record is the on-disk shape of a variable: its payload plus five object
// links. Variable lists are stored as intrusive sibling chains, so a
// record only points at the head of each child list.
type record struct {
	name string
	typ  Type
	bits uint32
	str  string

	parent    *record
	prev      *record
	next      *record
	secondary *record
	primary   *record
}

func (rec *record) ClassName() string { return ClassName }

func (rec *record) Load(r *archive.Reader) error {
	rec.name = r.ReadPascalString()
	rec.typ = Type(r.ReadUint32())
	if err := r.Err(); err != nil {
		return err
	}

	switch rec.typ {
	case TypeInt:
		rec.bits = r.ReadUint32()
		r.Logger().Debugf("[%03d] %s<%s>: d --> %d", r.Level(), indent(r.Level()), rec.name, int32(rec.bits))
	case TypeFloat:
		rec.bits = r.ReadUint32()
		r.Logger().Debugf("[%03d] %s<%s>: f --> %f", r.Level(), indent(r.Level()), rec.name, math.Float32frombits(rec.bits))
	case TypeString:
		rec.str = r.ReadPascalString()
		r.Logger().Debugf("[%03d] %s<%s>: s --> %s", r.Level(), indent(r.Level()), rec.name, rec.str)
	default:
		return fmt.Errorf("variable %q type %d (%#x): %w", rec.name, uint32(rec.typ), uint32(rec.typ), errs.ErrUnknownVarType)
	}

	links := []**record{&rec.parent, &rec.prev, &rec.next, &rec.secondary, &rec.primary}
	for _, link := range links {
		obj, err := r.ReadClass()
		if err != nil {
			return err
		}
		if obj == nil {
			continue
		}
		linked, ok := obj.(*record)
		if !ok {
			return fmt.Errorf("variable %q link is %T: %w", rec.name, obj, errs.ErrUnexpectedType)
		}
		*link = linked
	}
	return r.Err()
}

func (rec *record) Save(w *archive.Writer) error {
	if err := w.WritePascalString(rec.name); err != nil {
		return err
	}
	w.WriteUint32(uint32(rec.typ))
	switch rec.typ {
	case TypeInt, TypeFloat:
		w.WriteUint32(rec.bits)
	case TypeString:
		if err := w.WritePascalString(rec.str); err != nil {
			return err
		}
	default:
		return fmt.Errorf("variable %q: %w", rec.name, errs.ErrUnknownVarType)
	}

	for _, link := range []*record{rec.parent, rec.prev, rec.next, rec.secondary, rec.primary} {
		if err := w.WriteObject(storable(link)); err != nil {
			return err
		}
	}
	return nil
}

func storable(rec *record) archive.Storable {
	if rec == nil {
		return nil
	}
	return rec
}

func indent(level int) string {
	return strings.Repeat(" ", level)
}

// Decode reads one variable graph from r and rebuilds it as a detached
// tree. The root's own parent and sibling links are read but not followed.
func Decode(r *archive.Reader) (*Var, error) {
	obj, err := r.ReadClass()
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, nil
	}
	root, ok := obj.(*record)
	if !ok {
		return nil, fmt.Errorf("archive root is %T: %w", obj, errs.ErrUnexpectedType)
	}
	return build(root, make(map[*record]bool))
}

func build(rec *record, seen map[*record]bool) (*Var, error) {
	if seen[rec] {
		return nil, fmt.Errorf("variable %q reached twice: %w", rec.name, errs.ErrCyclicTree)
	}
	seen[rec] = true

	v := &Var{name: rec.name, typ: rec.typ, bits: rec.bits, str: rec.str}

	for c := rec.primary; c != nil; c = c.next {
		child, err := build(c, seen)
		if err != nil {
			return nil, err
		}
		v.subVars = append(v.subVars, child)
		child.parent = v
	}
	for c := rec.secondary; c != nil; c = c.next {
		child, err := build(c, seen)
		if err != nil {
			return nil, err
		}
		v.secondary = append(v.secondary, child)
		child.parent = v
		child.inSecondary = true
	}
	return v, nil
}

// Encode writes v and both of its subtrees. v is written as a root: its
// own parent and sibling links are stored as null.
func Encode(w *archive.Writer, v *Var) error {
	if v == nil {
		return w.WriteObject(nil)
	}
	if !v.typ.valid() {
		return fmt.Errorf("variable %q: %w", v.name, errs.ErrUnknownVarType)
	}
	return w.WriteObject(flatten(v, nil))
}

func flatten(v *Var, parent *record) *record {
	rec := &record{name: v.name, typ: v.typ, bits: v.bits, str: v.str, parent: parent}
	rec.primary = chain(v.subVars, rec)
	rec.secondary = chain(v.secondary, rec)
	return rec
}

func chain(list []*Var, parent *record) *record {
	var head, prev *record
	for _, c := range list {
		rec := flatten(c, parent)
		if prev == nil {
			head = rec
		} else {
			prev.next = rec
			rec.prev = prev
		}
		prev = rec
	}
	return head
}
