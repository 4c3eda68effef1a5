package desim

import (
	"fmt"
	"reflect"
)

// Message is the typed payload carried by an Event. A message's MessageType
// is the unit of handler dispatch: receivers register handlers by this name,
// not by Go's dynamic type, so the same Go type may legally back different
// wire-level message kinds if a caller wants that (most user types just
// return their own type name).
//
// Messages are compared lexicographically by the pair (MessageType, field
// values) per Compare — sorting by class-name-then-fields yields a
// deterministic, content-driven order used to break ties among simultaneous
// messages of different types, or the same type with different payloads.
type Message interface {
	MessageType() string
}

// Cloner is implemented by messages that support an explicit deep copy.
// The engine never silently copies a message; SendEvent only clones when
// both copy=true is requested and the message implements Cloner.
type Cloner interface {
	Clone() Message
}

// fielded is implemented by messages (such as DynamicMessage) that know
// their own field values without reflection.
type fielded interface {
	Fields() []any
}

// fieldValues returns the ordered field values carried by msg. Types
// implementing fielded are asked directly; otherwise the exported fields of
// msg's underlying struct are read via reflection, in declaration order
// (Go preserves struct field declaration order, so this mirrors de_sim's
// ordered __slots__ list without requiring a separate field-name
// declaration from the caller).
func fieldValues(msg Message) []any {
	if f, ok := msg.(fielded); ok {
		return f.Fields()
	}
	v := reflect.Indirect(reflect.ValueOf(msg))
	if v.Kind() != reflect.Struct {
		return nil
	}
	t := v.Type()
	vals := make([]any, 0, v.NumField())
	for i := 0; i < v.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		vals = append(vals, v.Field(i).Interface())
	}
	return vals
}

// Compare orders two messages by the pair (MessageType, field values),
// lexicographically. It returns -1, 0, or 1. Compare panics with a
// descriptive message (a test-visible failure, per spec) if corresponding
// field values are not mutually comparable — e.g. a field holding a slice,
// map, or a value of a type Compare does not know how to order.
func Compare(a, b Message) int {
	if a.MessageType() != b.MessageType() {
		if a.MessageType() < b.MessageType() {
			return -1
		}
		return 1
	}
	av, bv := fieldValues(a), fieldValues(b)
	n := len(av)
	if len(bv) < n {
		n = len(bv)
	}
	for i := 0; i < n; i++ {
		if c := compareAny(av[i], bv[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(av) < len(bv):
		return -1
	case len(av) > len(bv):
		return 1
	default:
		return 0
	}
}

// Less reports whether a sorts strictly before b under Compare.
func Less(a, b Message) bool { return Compare(a, b) < 0 }

// compareAny orders two field values of identical or compatible built-in
// kinds. It panics for types it cannot order, surfacing the spec's
// "undefined" comparison failure immediately rather than silently returning
// a meaningless order.
func compareAny(x, y any) int {
	switch xv := x.(type) {
	case int:
		yv, ok := y.(int)
		if !ok {
			panic(notComparable(x, y))
		}
		return cmpOrdered(xv, yv)
	case int64:
		yv, ok := y.(int64)
		if !ok {
			panic(notComparable(x, y))
		}
		return cmpOrdered(xv, yv)
	case float64:
		yv, ok := y.(float64)
		if !ok {
			panic(notComparable(x, y))
		}
		return cmpOrdered(xv, yv)
	case string:
		yv, ok := y.(string)
		if !ok {
			panic(notComparable(x, y))
		}
		return cmpOrdered(xv, yv)
	case bool:
		yv, ok := y.(bool)
		if !ok {
			panic(notComparable(x, y))
		}
		return cmpOrdered(boolToInt(xv), boolToInt(yv))
	default:
		panic(notComparable(x, y))
	}
}

func cmpOrdered[T int | int64 | float64 | string](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func notComparable(x, y any) string {
	return fmt.Sprintf("message field values %v (%T) and %v (%T) are not mutually comparable", x, x, y, y)
}

// FieldSpec declares the ordered field names of a dynamically-constructed
// message type. This backs DynamicMessage, used when a message's shape is
// only known at runtime (e.g. a scripted/test harness building messages from
// a config file) rather than as a hand-written Go struct, mirroring
// de_sim's SimulationMessage declared-attributes construction contract.
type FieldSpec struct {
	typeName string
	fields   []string
}

// NewFieldSpec declares a message type name and its ordered field names.
// A field name declared more than once is a hard error, surfaced as a panic.
func NewFieldSpec(typeName string, fields ...string) *FieldSpec {
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if _, dup := seen[f]; dup {
			panic(fmt.Sprintf("DuplicateField: %s declares field %q more than once", typeName, f))
		}
		seen[f] = struct{}{}
	}
	return &FieldSpec{typeName: typeName, fields: append([]string(nil), fields...)}
}

// New constructs a DynamicMessage, taking exactly one positional value per
// declared field. Fewer or more values is a BadArity RegistrationError-shaped
// failure, surfaced immediately as a panic since construction happens deep in
// user model code, not during Register.
func (s *FieldSpec) New(values ...any) *DynamicMessage {
	if len(values) != len(s.fields) {
		panic(fmt.Sprintf("BadArity: %s expects %d argument(s), got %d", s.typeName, len(s.fields), len(values)))
	}
	return &DynamicMessage{spec: s, values: append([]any(nil), values...)}
}

// DynamicMessage is a Message whose field set is declared at runtime via a
// FieldSpec rather than a Go struct definition.
type DynamicMessage struct {
	spec   *FieldSpec
	values []any
}

func (d *DynamicMessage) MessageType() string { return d.spec.typeName }

// Fields returns the field values in declared order.
func (d *DynamicMessage) Fields() []any { return d.values }

// FieldNames returns the declared field names, in order.
func (d *DynamicMessage) FieldNames() []string { return d.spec.fields }

// Clone returns a shallow copy of the message (field values are copied by
// assignment; deep-copy semantics for reference-typed fields are the
// caller's responsibility, matching Python's copy.deepcopy opt-in contract
// at the SimulationObject.send_event(copy=True) call site).
func (d *DynamicMessage) Clone() Message {
	return &DynamicMessage{spec: d.spec, values: append([]any(nil), d.values...)}
}

func (d *DynamicMessage) String() string {
	return fmt.Sprintf("%s%v", d.spec.typeName, d.values)
}
