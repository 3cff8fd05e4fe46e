package ndarray

import (
	"fmt"
)

// --------------------------------------------------------------------------
// Attribute Kinds
// --------------------------------------------------------------------------

// AttributeKind is the value type of an attribute
type AttributeKind int

const (
	AttrInt8 AttributeKind = iota
	AttrUInt8
	AttrInt16
	AttrUInt16
	AttrInt32
	AttrUInt32
	AttrInt64
	AttrUInt64
	AttrFloat32
	AttrFloat64
	AttrString
	AttrUndefined
)

func (k AttributeKind) String() string {
	switch k {
	case AttrInt8:
		return "int8"
	case AttrUInt8:
		return "uint8"
	case AttrInt16:
		return "int16"
	case AttrUInt16:
		return "uint16"
	case AttrInt32:
		return "int32"
	case AttrUInt32:
		return "uint32"
	case AttrInt64:
		return "int64"
	case AttrUInt64:
		return "uint64"
	case AttrFloat32:
		return "float32"
	case AttrFloat64:
		return "float64"
	case AttrString:
		return "string"
	case AttrUndefined:
		return "undefined"
	default:
		return fmt.Sprintf("AttributeKind(%d)", int(k))
	}
}

// --------------------------------------------------------------------------
// Attribute
// --------------------------------------------------------------------------

// Attribute is a named, typed value attached to a frame.
// Value holds the Go type matching Kind (int8 for AttrInt8, string for AttrString, ...)
// and is nil for AttrUndefined.
type Attribute struct {
	Name  string
	Kind  AttributeKind
	Value any
}

// Valid reports whether the value's Go type matches the declared kind
func (a Attribute) Valid() bool {
	switch a.Kind {
	case AttrInt8:
		_, ok := a.Value.(int8)
		return ok
	case AttrUInt8:
		_, ok := a.Value.(uint8)
		return ok
	case AttrInt16:
		_, ok := a.Value.(int16)
		return ok
	case AttrUInt16:
		_, ok := a.Value.(uint16)
		return ok
	case AttrInt32:
		_, ok := a.Value.(int32)
		return ok
	case AttrUInt32:
		_, ok := a.Value.(uint32)
		return ok
	case AttrInt64:
		_, ok := a.Value.(int64)
		return ok
	case AttrUInt64:
		_, ok := a.Value.(uint64)
		return ok
	case AttrFloat32:
		_, ok := a.Value.(float32)
		return ok
	case AttrFloat64:
		_, ok := a.Value.(float64)
		return ok
	case AttrString:
		_, ok := a.Value.(string)
		return ok
	case AttrUndefined:
		return true
	default:
		return false
	}
}

// --------------------------------------------------------------------------
// AttributeSet
// --------------------------------------------------------------------------

// AttributeSet is an insertion-ordered collection of attributes with unique names.
// The zero value is not usable, create sets with NewAttributeSet.
type AttributeSet struct {
	attrs []Attribute
	index map[string]int
}

// NewAttributeSet creates an empty attribute set
func NewAttributeSet() *AttributeSet {
	return &AttributeSet{
		index: make(map[string]int),
	}
}

// Add adds an attribute. If an attribute with the same name exists, its kind and
// value are replaced and it keeps its position.
func (s *AttributeSet) Add(name string, kind AttributeKind, value any) {
	if i, ok := s.index[name]; ok {
		s.attrs[i] = Attribute{Name: name, Kind: kind, Value: value}
		return
	}
	s.index[name] = len(s.attrs)
	s.attrs = append(s.attrs, Attribute{Name: name, Kind: kind, Value: value})
}

func (s *AttributeSet) AddInt32(name string, v int32)     { s.Add(name, AttrInt32, v) }
func (s *AttributeSet) AddInt64(name string, v int64)     { s.Add(name, AttrInt64, v) }
func (s *AttributeSet) AddFloat64(name string, v float64) { s.Add(name, AttrFloat64, v) }
func (s *AttributeSet) AddString(name string, v string)   { s.Add(name, AttrString, v) }

// Get returns the attribute with the given name
func (s *AttributeSet) Get(name string) (Attribute, bool) {
	if s == nil {
		return Attribute{}, false
	}
	i, ok := s.index[name]
	if !ok {
		return Attribute{}, false
	}
	return s.attrs[i], true
}

// Remove deletes the attribute with the given name, preserving the order of the rest
func (s *AttributeSet) Remove(name string) bool {
	i, ok := s.index[name]
	if !ok {
		return false
	}
	s.attrs = append(s.attrs[:i], s.attrs[i+1:]...)
	delete(s.index, name)
	for j := i; j < len(s.attrs); j++ {
		s.index[s.attrs[j].Name] = j
	}
	return true
}

// Len returns the number of attributes (0 for a nil set)
func (s *AttributeSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.attrs)
}

// All returns a snapshot of the attributes in insertion order
func (s *AttributeSet) All() []Attribute {
	if s == nil {
		return nil
	}
	out := make([]Attribute, len(s.attrs))
	copy(out, s.attrs)
	return out
}

// Clone returns an independent copy of the set
func (s *AttributeSet) Clone() *AttributeSet {
	c := NewAttributeSet()
	if s == nil {
		return c
	}
	for _, a := range s.attrs {
		c.Add(a.Name, a.Kind, a.Value)
	}
	return c
}
