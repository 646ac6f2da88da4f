// Package value models the typed payloads carried by log records and their
// mapping onto generic, JSON-like values.
package value

// Kind identifies one of the fixed set of payload variants.
type Kind uint8

// Payload kinds. The set is closed; Coerce handles every member.
const (
	KindVoid Kind = iota
	KindRaw
	KindBoolean
	KindInt64
	KindDouble
	KindFloat
	KindString
	KindBooleanArray
	KindInt64Array
	KindFloatArray
	KindDoubleArray
	KindStringArray
	KindStruct
	KindStructArray
)

var kindNames = [...]string{
	KindVoid:         "void",
	KindRaw:          "raw",
	KindBoolean:      "boolean",
	KindInt64:        "int64",
	KindDouble:       "double",
	KindFloat:        "float",
	KindString:       "string",
	KindBooleanArray: "boolean[]",
	KindInt64Array:   "int64[]",
	KindFloatArray:   "float[]",
	KindDoubleArray:  "double[]",
	KindStringArray:  "string[]",
	KindStruct:       "struct",
	KindStructArray:  "struct[]",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Variant is a decoded record payload. Only the types in this package
// implement it.
type Variant interface {
	Kind() Kind
	isVariant()
}

type (
	// Void is an empty payload.
	Void struct{}
	// Raw is an uninterpreted byte payload.
	Raw []byte
	// Boolean is a single boolean.
	Boolean bool
	// Int64 is a signed 64-bit integer.
	Int64 int64
	// Double is a 64-bit float.
	Double float64
	// Float is a 32-bit float.
	Float float32
	// String is UTF-8 text.
	String string
	BooleanArray []bool
	Int64Array   []int64
	FloatArray   []float32
	DoubleArray  []float64
	StringArray  []string
	// Struct holds schema-encoded bytes. The schema is not resolved locally.
	Struct struct {
		Schema string
		Data   []byte
	}
	// StructArray holds a packed array of schema-encoded structs.
	StructArray struct {
		Schema string
		Data   []byte
	}
)

func (Void) Kind() Kind         { return KindVoid }
func (Raw) Kind() Kind          { return KindRaw }
func (Boolean) Kind() Kind      { return KindBoolean }
func (Int64) Kind() Kind        { return KindInt64 }
func (Double) Kind() Kind       { return KindDouble }
func (Float) Kind() Kind        { return KindFloat }
func (String) Kind() Kind       { return KindString }
func (BooleanArray) Kind() Kind { return KindBooleanArray }
func (Int64Array) Kind() Kind   { return KindInt64Array }
func (FloatArray) Kind() Kind   { return KindFloatArray }
func (DoubleArray) Kind() Kind  { return KindDoubleArray }
func (StringArray) Kind() Kind  { return KindStringArray }
func (Struct) Kind() Kind       { return KindStruct }
func (StructArray) Kind() Kind  { return KindStructArray }

func (Void) isVariant()         {}
func (Raw) isVariant()          {}
func (Boolean) isVariant()      {}
func (Int64) isVariant()        {}
func (Double) isVariant()       {}
func (Float) isVariant()        {}
func (String) isVariant()       {}
func (BooleanArray) isVariant() {}
func (Int64Array) isVariant()   {}
func (FloatArray) isVariant()   {}
func (DoubleArray) isVariant()  {}
func (StringArray) isVariant()  {}
func (Struct) isVariant()       {}
func (StructArray) isVariant()  {}
