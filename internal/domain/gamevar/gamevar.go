package gamevar

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

// Type is the value tag of a variable.
type Type uint32

const (
	TypeInt    Type = 0
	TypeFloat  Type = 1
	TypeString Type = 2
)

func (t Type) String() string {
	switch t {
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeString:
		return "string"
	}
	return fmt.Sprintf("type(%d)", uint32(t))
}

func (t Type) valid() bool { return t <= TypeString }

// Var is a named, typed slot in the game variable tree. A Var owns two
// ordered child lists: the sub-variables addressed by name, and a secondary
// list kept alongside them in saves. It never owns its parent.
type Var struct {
	name string
	typ  Type
	bits uint32 // Int and Float payload
	str  string

	parent      *Var
	inSecondary bool
	subVars     []*Var
	secondary   []*Var
}

func NewInt(name string, value int32) *Var {
	return &Var{name: name, typ: TypeInt, bits: uint32(value)}
}

func NewFloat(name string, value float32) *Var {
	return &Var{name: name, typ: TypeFloat, bits: math.Float32bits(value)}
}

func NewString(name, value string) *Var {
	return &Var{name: name, typ: TypeString, str: value}
}

func (v *Var) Name() string { return v.name }

func (v *Var) Type() Type { return v.typ }

func (v *Var) Parent() *Var { return v.parent }

// Int returns the integer payload. Float variables return their raw bits,
// strings return zero.
func (v *Var) Int() int32 {
	if v.typ == TypeString {
		return 0
	}
	return int32(v.bits)
}

func (v *Var) Float() float32 {
	if v.typ == TypeString {
		return 0
	}
	return math.Float32frombits(v.bits)
}

func (v *Var) Str() string { return v.str }

func (v *Var) SetInt(value int32) {
	v.typ, v.bits, v.str = TypeInt, uint32(value), ""
}

func (v *Var) SetFloat(value float32) {
	v.typ, v.bits, v.str = TypeFloat, math.Float32bits(value), ""
}

func (v *Var) SetString(value string) {
	v.typ, v.bits, v.str = TypeString, 0, value
}

// Value returns the payload as a Go value matching the type tag.
func (v *Var) Value() any {
	switch v.typ {
	case TypeFloat:
		return v.Float()
	case TypeString:
		return v.str
	}
	return v.Int()
}

// SubVars returns a copy of the primary child list.
func (v *Var) SubVars() []*Var { return slices.Clone(v.subVars) }

// Secondary returns a copy of the secondary child list.
func (v *Var) Secondary() []*Var { return slices.Clone(v.secondary) }

func (v *Var) SubVarsCount() int { return len(v.subVars) }

// SubVarByIndex returns nil when idx is out of range.
func (v *Var) SubVarByIndex(idx int) *Var {
	if idx < 0 || idx >= len(v.subVars) {
		return nil
	}
	return v.subVars[idx]
}

// SubVarByName finds a direct sub-variable, ignoring case.
func (v *Var) SubVarByName(name string) *Var {
	for _, sv := range v.subVars {
		if strings.EqualFold(sv.name, name) {
			return sv
		}
	}
	return nil
}

// AddSubVar appends sub to the tail of the primary list. A sub that still
// belongs to another parent is unlinked from it first.
func (v *Var) AddSubVar(sub *Var) bool {
	if !v.canAdopt(sub) {
		return false
	}
	sub.Unlink()
	sub.parent = v
	sub.inSecondary = false
	v.subVars = append(v.subVars, sub)
	return true
}

// AddSecondary appends sub to the tail of the secondary list.
func (v *Var) AddSecondary(sub *Var) bool {
	if !v.canAdopt(sub) {
		return false
	}
	sub.Unlink()
	sub.parent = v
	sub.inSecondary = true
	v.secondary = append(v.secondary, sub)
	return true
}

// canAdopt rejects nil and any ancestor of v, which would close a cycle.
func (v *Var) canAdopt(sub *Var) bool {
	if sub == nil {
		return false
	}
	for p := v; p != nil; p = p.parent {
		if p == sub {
			return false
		}
	}
	return true
}

// AddSubVarAsInt creates an Int sub-variable. It returns nil without touching
// the tree when the name is already taken.
func (v *Var) AddSubVarAsInt(name string, value int32) *Var {
	if v.SubVarByName(name) != nil {
		return nil
	}
	sv := NewInt(name, value)
	if !v.AddSubVar(sv) {
		return nil
	}
	return sv
}

// SetSubVarAsInt overwrites an existing Int sub-variable or creates one.
// It reports false, leaving the tree alone, when the name holds another type.
func (v *Var) SetSubVarAsInt(name string, value int32) bool {
	if sv := v.SubVarByName(name); sv != nil {
		if sv.typ != TypeInt {
			return false
		}
		sv.bits = uint32(value)
		return true
	}
	return v.AddSubVar(NewInt(name, value))
}

// SubVarAsInt returns the named sub-variable's integer value, or 0 when it
// does not exist. Use TrySubVarAsInt to tell the two apart.
func (v *Var) SubVarAsInt(name string) int32 {
	if sv := v.SubVarByName(name); sv != nil {
		return sv.Int()
	}
	return 0
}

// TrySubVarAsInt reports ok only for an existing Int sub-variable.
func (v *Var) TrySubVarAsInt(name string) (int32, bool) {
	sv := v.SubVarByName(name)
	if sv == nil || sv.typ != TypeInt {
		return 0, false
	}
	return sv.Int(), true
}

// Unlink detaches v from whichever list of its parent holds it. Children
// stay attached to v.
func (v *Var) Unlink() {
	p := v.parent
	if p == nil {
		return
	}
	if v.inSecondary {
		p.secondary = removeVar(p.secondary, v)
	} else {
		p.subVars = removeVar(p.subVars, v)
	}
	v.parent = nil
	v.inSecondary = false
}

// Remove unlinks v and destroys both of its subtrees.
func (v *Var) Remove() {
	v.Unlink()
	v.destroy()
}

func (v *Var) destroy() {
	for _, list := range [][]*Var{v.subVars, v.secondary} {
		for _, c := range list {
			c.parent = nil
			c.destroy()
		}
	}
	v.subVars = nil
	v.secondary = nil
	if v.typ == TypeString {
		v.str = ""
	}
}

func removeVar(list []*Var, v *Var) []*Var {
	i := slices.Index(list, v)
	if i < 0 {
		return list
	}
	return slices.Delete(list, i, i+1)
}

// Walk visits v and its primary descendants depth-first. Returning false
// from fn skips the children of that variable.
func (v *Var) Walk(fn func(depth int, sv *Var) bool) {
	v.walk(0, fn)
}

func (v *Var) walk(depth int, fn func(int, *Var) bool) {
	if !fn(depth, v) {
		return
	}
	for _, c := range v.subVars {
		c.walk(depth+1, fn)
	}
}

// Path returns the slash separated names from the root down to v.
func (v *Var) Path() string {
	var parts []string
	for cur := v; cur != nil; cur = cur.parent {
		parts = append(parts, cur.name)
	}
	slices.Reverse(parts)
	return strings.Join(parts, "/")
}

// Lookup follows a slash separated path of sub-variable names.
func (v *Var) Lookup(path string) *Var {
	cur := v
	for _, part := range strings.Split(path, "/") {
		if part == "" {
			continue
		}
		cur = cur.SubVarByName(part)
		if cur == nil {
			return nil
		}
	}
	return cur
}

// Equal compares names, types, values and both child lists recursively.
func (v *Var) Equal(o *Var) bool {
	if v == nil || o == nil {
		return v == o
	}
	if !strings.EqualFold(v.name, o.name) || v.typ != o.typ {
		return false
	}
	if v.typ == TypeString {
		if v.str != o.str {
			return false
		}
	} else if v.bits != o.bits {
		return false
	}
	return equalList(v.subVars, o.subVars) && equalList(v.secondary, o.secondary)
}

func equalList(a, b []*Var) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// Clone deep-copies v without its parent link.
func (v *Var) Clone() *Var {
	c := &Var{name: v.name, typ: v.typ, bits: v.bits, str: v.str}
	for _, sv := range v.subVars {
		c.AddSubVar(sv.Clone())
	}
	for _, sv := range v.secondary {
		c.AddSecondary(sv.Clone())
	}
	return c
}

func (v *Var) String() string {
	return fmt.Sprintf("%s:%s=%v", v.name, v.typ, v.Value())
}
