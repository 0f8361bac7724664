package attachment

import (
	"strings"

	"github.com/joseph-ayodele/ingest-attachment/constants"
)

// FieldSet is an immutable set of fields. The zero value is empty.
type FieldSet struct {
	members map[constants.Field]struct{}
}

// DefaultFields holds every field. Processors configured without "fields"
// share this instance.
var DefaultFields = NewFieldSet(constants.AllFields()...)

// NewFieldSet builds a set from fields; duplicates collapse.
func NewFieldSet(fields ...constants.Field) *FieldSet {
	s := &FieldSet{members: make(map[constants.Field]struct{}, len(fields))}
	for _, f := range fields {
		s.members[f] = struct{}{}
	}
	return s
}

func (s *FieldSet) Has(f constants.Field) bool {
	if s == nil {
		return false
	}
	_, ok := s.members[f]
	return ok
}

func (s *FieldSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.members)
}

// Fields returns the members in declaration order.
func (s *FieldSet) Fields() []constants.Field {
	out := make([]constants.Field, 0, s.Len())
	for _, f := range constants.AllFields() {
		if s.Has(f) {
			out = append(out, f)
		}
	}
	return out
}

// Equal reports set equality, ignoring identity.
func (s *FieldSet) Equal(other *FieldSet) bool {
	if s.Len() != other.Len() {
		return false
	}
	if s == nil {
		return true
	}
	for f := range s.members {
		if !other.Has(f) {
			return false
		}
	}
	return true
}

func (s *FieldSet) String() string {
	fields := s.Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name()
	}
	return "[" + strings.Join(names, ", ") + "]"
}
