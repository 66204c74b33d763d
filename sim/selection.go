package sim

import (
	"fmt"
	"math/rand"
)

// Field names the object attribute a Selector matches on.
type Field int

const (
	FieldID Field = iota
	FieldKind
	FieldClass
)

func (f Field) String() string {
	switch f {
	case FieldID:
		return "id"
	case FieldKind:
		return "kind"
	case FieldClass:
		return "class"
	default:
		return fmt.Sprintf("unknown(%d)", int(f))
	}
}

// Selector matches objects on one field. Build it with SelectID, SelectKind
// or SelectClass; only the value belonging to the field is meaningful.
type Selector struct {
	field Field
	id    ObjectID
	kind  Kind
	class Class
}

// SelectID matches the object with the given identity.
func SelectID(id ObjectID) Selector { return Selector{field: FieldID, id: id} }

// SelectKind matches objects of the given kind.
func SelectKind(k Kind) Selector { return Selector{field: FieldKind, kind: k} }

// SelectClass matches objects of the given class.
func SelectClass(c Class) Selector { return Selector{field: FieldClass, class: c} }

// Field returns the field this selector matches on.
func (s Selector) Field() Field { return s.field }

// Matches reports whether o carries the selected value.
func (s Selector) Matches(o Object) bool {
	switch s.field {
	case FieldID:
		return o.ID() == s.id
	case FieldKind:
		return o.Kind() == s.kind
	case FieldClass:
		return o.Class() == s.class
	default:
		return false
	}
}

func (s Selector) String() string {
	switch s.field {
	case FieldID:
		return fmt.Sprintf("id=%d", s.id)
	case FieldKind:
		return fmt.Sprintf("kind=%s", s.kind)
	case FieldClass:
		return fmt.Sprintf("class=%d", s.class)
	default:
		return s.field.String()
	}
}

// lookup seeds a candidate list straight from the simulation indexes.
func (s Selector) lookup(sim *Simulation) []Object {
	switch s.field {
	case FieldID:
		if o, ok := sim.ObjectByID(s.id); ok {
			return []Object{o}
		}
		return nil
	case FieldKind:
		return sim.ObjectsByKind(s.kind)
	case FieldClass:
		return sim.ObjectsByClass(s.class)
	default:
		return nil
	}
}

// SelectionMode narrows a candidate list after its field filter.
type SelectionMode int

const (
	// SelectAll keeps every candidate.
	SelectAll SelectionMode = iota
	// SelectOne keeps a single candidate drawn uniformly at random.
	SelectOne
	// SelectKOfN keeps K distinct candidates drawn at random.
	SelectKOfN
)

func (m SelectionMode) String() string {
	switch m {
	case SelectAll:
		return "all"
	case SelectOne:
		return "one"
	case SelectKOfN:
		return "k_of_n"
	default:
		return fmt.Sprintf("unknown(%d)", int(m))
	}
}

// ParseSelectionMode parses "all", "one" or "k_of_n". Empty selects all.
func ParseSelectionMode(s string) (SelectionMode, error) {
	switch s {
	case "", "all":
		return SelectAll, nil
	case "one":
		return SelectOne, nil
	case "k_of_n":
		return SelectKOfN, nil
	default:
		return SelectAll, fmt.Errorf("invalid selection mode %q (must be 'all', 'one', or 'k_of_n')", s)
	}
}

// Criterion is one step of an event's target selection.
type Criterion struct {
	Selector Selector
	Mode     SelectionMode
	K        uint32 // used by SelectKOfN only
}

// filterMatching keeps the candidates matching sel, preserving order.
func filterMatching(objs []Object, sel Selector) []Object {
	kept := objs[:0]
	for _, o := range objs {
		if sel.Matches(o) {
			kept = append(kept, o)
		}
	}
	return kept
}

// applyMode narrows objs according to the criterion mode.
func applyMode(objs []Object, c Criterion, rng *rand.Rand) []Object {
	switch c.Mode {
	case SelectOne:
		if len(objs) <= 1 {
			return objs
		}
		return []Object{objs[rng.Intn(len(objs))]}
	case SelectKOfN:
		if c.K == 0 {
			return objs[:0]
		}
		if int(c.K) >= len(objs) {
			return objs
		}
		rng.Shuffle(len(objs), func(i, j int) { objs[i], objs[j] = objs[j], objs[i] })
		return objs[:c.K]
	default:
		return objs
	}
}
