package archive

import "strings"

const (
	newClassTag  uint16 = 0xFFFF
	classTagFlag uint16 = 0x8000
	maxIndex            = 0x7FFE
)

// Object is anything that can be reconstructed from an archive.
type Object interface {
	Load(r *Reader) error
}

// Storable is an Object that can also be written back.
type Storable interface {
	Object
	ClassName() string
	Save(w *Writer) error
}

// Class binds an archive class name to a constructor.
type Class struct {
	Name   string
	Schema uint16
	New    func() Object
}

// Registry is the closed set of classes an archive may contain. It is
// built once and never mutated, so a single registry can back any number of
// readers.
type Registry struct {
	classes []Class
	byName  map[string]int
}

func NewRegistry(classes ...Class) *Registry {
	reg := &Registry{byName: make(map[string]int, len(classes))}
	for _, c := range classes {
		reg.byName[strings.ToLower(c.Name)] = len(reg.classes)
		reg.classes = append(reg.classes, c)
	}
	return reg
}

func (reg *Registry) lookup(name string) (int, bool) {
	id, ok := reg.byName[strings.ToLower(name)]
	return id, ok
}

func (reg *Registry) create(id int) Object {
	return reg.classes[id].New()
}

func (reg *Registry) schema(name string) uint16 {
	if id, ok := reg.lookup(name); ok {
		return reg.classes[id].Schema
	}
	return 0
}

// Names lists registered class names in registration order.
func (reg *Registry) Names() []string {
	out := make([]string, 0, len(reg.classes))
	for _, c := range reg.classes {
		out = append(out, c.Name)
	}
	return out
}
