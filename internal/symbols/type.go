package symbols

// Type is the static type of a condition expression.
type Type uint8

const (
	Unknown Type = iota
	Bool
	Integer
	Float
	String
	Struct
	Array
	Func
	Rule
)

var typeNames = [...]string{
	Unknown: "unknown",
	Bool:    "bool",
	Integer: "integer",
	Float:   "float",
	String:  "string",
	Struct:  "struct",
	Array:   "array",
	Func:    "function",
	Rule:    "rule",
}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "invalid"
}

// IsScalar reports whether values of t fit on the evaluation stack.
func (t Type) IsScalar() bool {
	switch t {
	case Bool, Integer, Float, String:
		return true
	default:
		return false
	}
}

// IsNumeric reports whether t is Integer or Float.
func (t Type) IsNumeric() bool { return t == Integer || t == Float }

// Letter is the one-letter code used in mangled function signatures.
func (t Type) Letter() byte {
	switch t {
	case Bool:
		return 'b'
	case Integer:
		return 'i'
	case Float:
		return 'f'
	case String:
		return 's'
	default:
		return '?'
	}
}

// TypeFromLetter is the inverse of Letter for scalar types.
func TypeFromLetter(c byte) (Type, bool) {
	switch c {
	case 'b':
		return Bool, true
	case 'i':
		return Integer, true
	case 'f':
		return Float, true
	case 's':
		return String, true
	default:
		return Unknown, false
	}
}

// TypeSet is a small bitset of types, used for the allowed-types argument of the checker.
type TypeSet uint16

func NewTypeSet(types ...Type) TypeSet {
	var s TypeSet
	for _, t := range types {
		s |= 1 << t
	}
	return s
}

func (s TypeSet) Has(t Type) bool { return s&(1<<t) != 0 }

func (s TypeSet) String() string {
	out := ""
	for t := Unknown; t <= Rule; t++ {
		if !s.Has(t) {
			continue
		}
		if out != "" {
			out += " | "
		}
		out += t.String()
	}
	return out
}
