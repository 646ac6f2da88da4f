package datalog

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"github.com/ssargent/oxdash/pkg/value"
)

// Declared entry type names.
const (
	TypeBoolean      = "boolean"
	TypeInt64        = "int64"
	TypeFloat        = "float"
	TypeDouble       = "double"
	TypeString       = "string"
	TypeJSON         = "json"
	TypeRaw          = "raw"
	TypeBooleanArray = "boolean[]"
	TypeInt64Array   = "int64[]"
	TypeFloatArray   = "float[]"
	TypeDoubleArray  = "double[]"
	TypeStringArray  = "string[]"

	structPrefix = "struct:"
	arraySuffix  = "[]"
)

// decodePayload interprets payload according to the entry's declared type.
// Types that are not recognised decode as raw bytes.
func decodePayload(typ string, payload []byte) (value.Variant, error) {
	switch typ {
	case TypeBoolean:
		if len(payload) == 0 {
			return value.Void{}, nil
		}
		if len(payload) != 1 {
			return nil, payloadErr(typ, len(payload))
		}
		return value.Boolean(payload[0] != 0), nil
	case TypeInt64:
		if len(payload) == 0 {
			return value.Void{}, nil
		}
		if len(payload) != 8 {
			return nil, payloadErr(typ, len(payload))
		}
		return value.Int64(int64(binary.LittleEndian.Uint64(payload))), nil
	case TypeFloat:
		if len(payload) == 0 {
			return value.Void{}, nil
		}
		if len(payload) != 4 {
			return nil, payloadErr(typ, len(payload))
		}
		return value.Float(math.Float32frombits(binary.LittleEndian.Uint32(payload))), nil
	case TypeDouble:
		if len(payload) == 0 {
			return value.Void{}, nil
		}
		if len(payload) != 8 {
			return nil, payloadErr(typ, len(payload))
		}
		return value.Double(math.Float64frombits(binary.LittleEndian.Uint64(payload))), nil
	case TypeString, TypeJSON:
		return value.String(payload), nil
	case TypeBooleanArray:
		out := make(value.BooleanArray, len(payload))
		for i, b := range payload {
			out[i] = b != 0
		}
		return out, nil
	case TypeInt64Array:
		if len(payload)%8 != 0 {
			return nil, payloadErr(typ, len(payload))
		}
		out := make(value.Int64Array, len(payload)/8)
		for i := range out {
			out[i] = int64(binary.LittleEndian.Uint64(payload[i*8:]))
		}
		return out, nil
	case TypeFloatArray:
		if len(payload)%4 != 0 {
			return nil, payloadErr(typ, len(payload))
		}
		out := make(value.FloatArray, len(payload)/4)
		for i := range out {
			out[i] = math.Float32frombits(binary.LittleEndian.Uint32(payload[i*4:]))
		}
		return out, nil
	case TypeDoubleArray:
		if len(payload)%8 != 0 {
			return nil, payloadErr(typ, len(payload))
		}
		out := make(value.DoubleArray, len(payload)/8)
		for i := range out {
			out[i] = math.Float64frombits(binary.LittleEndian.Uint64(payload[i*8:]))
		}
		return out, nil
	case TypeStringArray:
		return decodeStringArray(payload)
	}

	if schema, ok := strings.CutPrefix(typ, structPrefix); ok {
		data := append([]byte{}, payload...)
		if elem, isArray := strings.CutSuffix(schema, arraySuffix); isArray {
			return value.StructArray{Schema: elem, Data: data}, nil
		}
		return value.Struct{Schema: schema, Data: data}, nil
	}

	return value.Raw(append([]byte{}, payload...)), nil
}

func decodeStringArray(payload []byte) (value.Variant, error) {
	if len(payload) < 4 {
		return nil, payloadErr(TypeStringArray, len(payload))
	}
	count := binary.LittleEndian.Uint32(payload)
	rest := payload[4:]
	// every element needs at least its 4-byte length
	if uint64(count)*4 > uint64(len(rest)) {
		return nil, fmt.Errorf("%w: string[] count %d exceeds payload", ErrMalformedPayload, count)
	}

	out := make(value.StringArray, count)
	for i := range out {
		if len(rest) < 4 {
			return nil, fmt.Errorf("%w: string[] element %d truncated", ErrMalformedPayload, i)
		}
		n := binary.LittleEndian.Uint32(rest)
		rest = rest[4:]
		if uint64(len(rest)) < uint64(n) {
			return nil, fmt.Errorf("%w: string[] element %d truncated", ErrMalformedPayload, i)
		}
		out[i] = string(rest[:n])
		rest = rest[n:]
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("%w: string[] has %d trailing bytes", ErrMalformedPayload, len(rest))
	}
	return out, nil
}

func payloadErr(typ string, n int) error {
	return fmt.Errorf("%w: %s with %d byte payload", ErrMalformedPayload, typ, n)
}

// TypeOf returns the declared type name Writer uses for v.
func TypeOf(v value.Variant) string {
	switch v := v.(type) {
	case value.Boolean:
		return TypeBoolean
	case value.Int64:
		return TypeInt64
	case value.Float:
		return TypeFloat
	case value.Double:
		return TypeDouble
	case value.String:
		return TypeString
	case value.BooleanArray:
		return TypeBooleanArray
	case value.Int64Array:
		return TypeInt64Array
	case value.FloatArray:
		return TypeFloatArray
	case value.DoubleArray:
		return TypeDoubleArray
	case value.StringArray:
		return TypeStringArray
	case value.Struct:
		return structPrefix + v.Schema
	case value.StructArray:
		return structPrefix + v.Schema + arraySuffix
	default:
		return TypeRaw
	}
}

// encodePayload is the inverse of decodePayload.
func encodePayload(v value.Variant) []byte {
	switch v := v.(type) {
	case nil, value.Void:
		return nil
	case value.Raw:
		return append([]byte{}, v...)
	case value.Boolean:
		if v {
			return []byte{1}
		}
		return []byte{0}
	case value.Int64:
		return binary.LittleEndian.AppendUint64(nil, uint64(v))
	case value.Float:
		return binary.LittleEndian.AppendUint32(nil, math.Float32bits(float32(v)))
	case value.Double:
		return binary.LittleEndian.AppendUint64(nil, math.Float64bits(float64(v)))
	case value.String:
		return []byte(v)
	case value.BooleanArray:
		buf := make([]byte, len(v))
		for i, b := range v {
			if b {
				buf[i] = 1
			}
		}
		return buf
	case value.Int64Array:
		buf := make([]byte, 0, len(v)*8)
		for _, n := range v {
			buf = binary.LittleEndian.AppendUint64(buf, uint64(n))
		}
		return buf
	case value.FloatArray:
		buf := make([]byte, 0, len(v)*4)
		for _, f := range v {
			buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(f))
		}
		return buf
	case value.DoubleArray:
		buf := make([]byte, 0, len(v)*8)
		for _, f := range v {
			buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(f))
		}
		return buf
	case value.StringArray:
		buf := binary.LittleEndian.AppendUint32(nil, uint32(len(v)))
		for _, s := range v {
			buf = binary.LittleEndian.AppendUint32(buf, uint32(len(s)))
			buf = append(buf, s...)
		}
		return buf
	case value.Struct:
		return append([]byte{}, v.Data...)
	case value.StructArray:
		return append([]byte{}, v.Data...)
	default:
		return nil
	}
}
