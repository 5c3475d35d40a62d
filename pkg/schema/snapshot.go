package schema

import (
	"github.com/matzehuels/datamapper/pkg/errors"
)

// Snapshot is one immutable view of the schema trees and the mapping tree.
type Snapshot struct {
	Revision string    `json:"revision,omitempty" bson:"revision,omitempty"`
	Inputs   []*IOType `json:"inputs" bson:"inputs"`
	Output   *IOType   `json:"output" bson:"output"`
	Mappings []Mapping `json:"mappings" bson:"mappings"`
}

// Input returns the input root with the given name, or nil.
func (s *Snapshot) Input(name string) *IOType {
	if s == nil {
		return nil
	}
	for _, in := range s.Inputs {
		if in.Name() == name {
			return in
		}
	}
	return nil
}

// Clone returns a deep copy of s.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	c := &Snapshot{
		Revision: s.Revision,
		Output:   s.Output.Clone(),
		Mappings: CloneMappings(s.Mappings),
	}
	if s.Inputs != nil {
		c.Inputs = make([]*IOType, len(s.Inputs))
		for i, in := range s.Inputs {
			c.Inputs[i] = in.Clone()
		}
	}
	return c
}

// WithMappings returns a copy of s whose mapping list is replaced by a copy of ms.
func (s *Snapshot) WithMappings(ms []Mapping) *Snapshot {
	c := s.Clone()
	c.Mappings = CloneMappings(ms)
	return c
}

// Validate checks the structural requirements every snapshot must meet:
// an output root, named and unique input roots, and kinds consistent with
// their children.
func (s *Snapshot) Validate() error {
	if s == nil {
		return errors.New(errors.ErrCodeInvalidSnapshot, "snapshot is nil")
	}
	if s.Output == nil {
		return errors.New(errors.ErrCodeInvalidSnapshot, "snapshot has no output type")
	}
	seen := make(map[string]bool, len(s.Inputs))
	for i, in := range s.Inputs {
		if in == nil || in.Name() == "" {
			return errors.New(errors.ErrCodeInvalidSnapshot, "input %d has no name", i)
		}
		if seen[in.Name()] {
			return errors.New(errors.ErrCodeInvalidSnapshot, "duplicate input %q", in.Name())
		}
		seen[in.Name()] = true
		if err := validateType(in); err != nil {
			return err
		}
	}
	return validateType(s.Output)
}

func validateType(t *IOType) error {
	switch t.Kind {
	case KindArray:
		if t.Member == nil {
			return errors.New(errors.ErrCodeInvalidSnapshot, "array %q has no member type", t.Name())
		}
		return validateType(t.Member)
	case KindRecord:
		for _, f := range t.Fields {
			if f == nil || f.Name() == "" {
				return errors.New(errors.ErrCodeInvalidSnapshot, "record %q has an unnamed field", t.Name())
			}
			if err := validateType(f); err != nil {
				return err
			}
		}
	}
	return nil
}
