package nameindex

import (
	"slices"
	"time"

	"github.com/agentstation/carryon/pkg/catalog"
)

// Snapshot is an immutable view of the catalog names at one point in time.
type Snapshot struct {
	names    []string
	nameToID map[string]uint
	builtAt  time.Time
}

func emptySnapshot() *Snapshot {
	return &Snapshot{nameToID: map[string]uint{}}
}

func newSnapshot(refs []catalog.NameRef, builtAt time.Time) *Snapshot {
	s := &Snapshot{
		names:    make([]string, 0, len(refs)),
		nameToID: make(map[string]uint, len(refs)),
		builtAt:  builtAt,
	}
	for _, ref := range refs {
		if ref.Name == "" {
			continue
		}
		if _, dup := s.nameToID[ref.Name]; dup {
			continue
		}
		s.names = append(s.names, ref.Name)
		s.nameToID[ref.Name] = ref.ID
	}
	return s
}

// Names returns a copy of the name list.
func (s *Snapshot) Names() []string {
	return slices.Clone(s.names)
}

// ID returns the catalog id of an exact name.
func (s *Snapshot) ID(name string) (uint, bool) {
	id, ok := s.nameToID[name]
	return id, ok
}

// Len returns the number of names.
func (s *Snapshot) Len() int {
	return len(s.names)
}

// BuiltAt returns when the snapshot was loaded. It is zero for the initial empty snapshot.
func (s *Snapshot) BuiltAt() time.Time {
	return s.builtAt
}
