package symbols

// BasicType is the closed set of primitive/basic type kinds.
type BasicType int

const (
	TInt BasicType = iota
	TChar
	TBoolean
	TString
	TNull
	TVoid
	TUserDefined
)

func (b BasicType) String() string {
	switch b {
	case TInt:
		return "int"
	case TChar:
		return "char"
	case TBoolean:
		return "boolean"
	case TString:
		return "String"
	case TNull:
		return "null"
	case TVoid:
		return "void"
	case TUserDefined:
		return "<user>"
	default:
		return "<invalid type>"
	}
}

// Type is a value type describing a Jack-language type: a closed basic kind,
// plus the class name when Basic == TUserDefined.
type Type struct {
	Basic           BasicType
	UserDefinedName string // populated iff Basic == TUserDefined
}

func (t Type) String() string {
	if t.Basic == TUserDefined {
		return t.UserDefinedName
	}
	return t.Basic.String()
}

// Equal reports type equality: same basic type, and for user-defined types,
// the same class name.
func (t Type) Equal(other Type) bool {
	if t.Basic != other.Basic {
		return false
	}
	if t.Basic == TUserDefined {
		return t.UserDefinedName == other.UserDefinedName
	}
	return true
}

// IsArithmetic reports whether t may be an operand of +, -, *, /.
func (t Type) IsArithmetic() bool { return t.Basic == TInt }

// IsComparable reports whether t may be an operand of <, >, =.
func (t Type) IsComparable() bool { return t.Basic == TInt || t.Basic == TChar }

var (
	Int     = Type{Basic: TInt}
	Char    = Type{Basic: TChar}
	Boolean = Type{Basic: TBoolean}
	String  = Type{Basic: TString}
	Null    = Type{Basic: TNull}
	Void    = Type{Basic: TVoid}
	// Array is not a primitive BasicType: in the Jack language Array is a
	// standard-library class like any other, so "Array a;" parses to
	// Type{Basic: TUserDefined, UserDefinedName: "Array"} via the default
	// case in ParseType below, exactly like any other class type.
	Array = UserDefined("Array")
)

// ParseType converts a type-string as it appears in source (or in the
// stdlib JSON catalog) into a Type: int, char, boolean, String and void
// become the matching basic kind; everything else, "Array" included, is a
// user-defined class name kept verbatim.
func ParseType(s string) Type {
	switch s {
	case "int":
		return Int
	case "char":
		return Char
	case "boolean":
		return Boolean
	case "String":
		return String
	case "void":
		return Void
	default:
		return Type{Basic: TUserDefined, UserDefinedName: s}
	}
}

// UserDefined builds a Type for an instance of class name.
func UserDefined(name string) Type {
	return Type{Basic: TUserDefined, UserDefinedName: name}
}
