package hts

import "fmt"

// Value is the payload of a dataset or attribute: a closed set of scalar,
// rank-1 array, and opaque variants. Dispatch over a Value is an exhaustive
// type switch; there is no fallthrough case for unknown payload shapes.
type Value interface {
	isValue()
}

// String is a scalar UTF-8 string.
type String string

// Int is a scalar 64-bit signed integer.
type Int int64

// Float is a scalar 64-bit float.
type Float float64

// Ref is a scalar node reference. Writes use Path; reads return a Ref whose
// Node wraps the referenced path on the same store handle.
type Ref struct {
	Path string
	Node *Node
}

// Strings is a rank-1 string array.
type Strings []string

// Ints is a rank-1 integer array.
type Ints []int64

// Floats is a rank-1 float array.
type Floats []float64

// Opaque is an uninterpreted byte blob with a free-form tag. It is readable
// and writable only as a whole unit.
type Opaque struct {
	Tag  string
	Data []byte
}

// Unsupported marks a stored value whose declared class or rank this layer
// cannot decode. It is a distinct outcome from a successfully read empty
// value.
type Unsupported struct {
	Reason string
}

func (String) isValue()      {}
func (Int) isValue()         {}
func (Float) isValue()       {}
func (Ref) isValue()         {}
func (Strings) isValue()     {}
func (Ints) isValue()        {}
func (Floats) isValue()      {}
func (Opaque) isValue()      {}
func (Unsupported) isValue() {}

// ValueOf normalizes a native Go value into a Value. The integer families
// collapse to Int and the float families to Float, for scalars and slices
// alike. A []any is accepted when every element collapses to one scalar
// type; mixed sequences fail with ErrTypeMismatch, as does any type outside
// the supported set.
func ValueOf(v any) (Value, error) {
	switch x := v.(type) {
	case Value:
		return x, nil
	case *Node:
		return Ref{Path: x.path, Node: x}, nil

	case string:
		return String(x), nil
	case int:
		return Int(x), nil
	case int8:
		return Int(x), nil
	case int16:
		return Int(x), nil
	case int32:
		return Int(x), nil
	case int64:
		return Int(x), nil
	case uint8:
		return Int(x), nil
	case uint16:
		return Int(x), nil
	case uint32:
		return Int(x), nil
	case float32:
		return Float(x), nil
	case float64:
		return Float(x), nil

	case []string:
		return Strings(x), nil
	case []int64:
		return Ints(x), nil
	case []int:
		out := make(Ints, len(x))
		for i, n := range x {
			out[i] = int64(n)
		}
		return out, nil
	case []int32:
		out := make(Ints, len(x))
		for i, n := range x {
			out[i] = int64(n)
		}
		return out, nil
	case []float64:
		return Floats(x), nil
	case []float32:
		out := make(Floats, len(x))
		for i, f := range x {
			out[i] = float64(f)
		}
		return out, nil

	case []any:
		return valueOfMixed(x)

	default:
		return nil, fmt.Errorf("%w: %T", ErrTypeMismatch, v)
	}
}

// valueOfMixed collapses a []any to a homogeneous array value.
func valueOfMixed(xs []any) (Value, error) {
	if len(xs) == 0 {
		return nil, fmt.Errorf("%w: empty []any has no element type", ErrTypeMismatch)
	}

	first, err := ValueOf(xs[0])
	if err != nil {
		return nil, err
	}

	switch first.(type) {
	case String:
		out := make(Strings, len(xs))
		for i, x := range xs {
			v, err := ValueOf(x)
			if err != nil {
				return nil, err
			}
			s, ok := v.(String)
			if !ok {
				return nil, fmt.Errorf("%w: mixed element types in sequence", ErrTypeMismatch)
			}
			out[i] = string(s)
		}
		return out, nil
	case Int:
		out := make(Ints, len(xs))
		for i, x := range xs {
			v, err := ValueOf(x)
			if err != nil {
				return nil, err
			}
			n, ok := v.(Int)
			if !ok {
				return nil, fmt.Errorf("%w: mixed element types in sequence", ErrTypeMismatch)
			}
			out[i] = int64(n)
		}
		return out, nil
	case Float:
		out := make(Floats, len(xs))
		for i, x := range xs {
			v, err := ValueOf(x)
			if err != nil {
				return nil, err
			}
			f, ok := v.(Float)
			if !ok {
				return nil, fmt.Errorf("%w: mixed element types in sequence", ErrTypeMismatch)
			}
			out[i] = float64(f)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: sequences of %T are not supported", ErrTypeMismatch, first)
	}
}
