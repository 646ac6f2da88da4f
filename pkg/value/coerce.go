package value

import "math"

// Coerce converts a payload into a generic value: nil, bool, int64, float64,
// string, or a slice of one of those ([]bool, []int64, []float64, []string).
//
// Raw bytes become []int64 so they encode as a number array rather than
// base64. Float widens to float64. NaN and infinities have no JSON form and
// coerce to nil; a float array holding one becomes []any with nil in its
// place. Struct and StructArray have no local schema and always coerce to
// nil. Coerce never fails.
func Coerce(v Variant) any {
	switch v := v.(type) {
	case nil, Void:
		return nil
	case Raw:
		out := make([]int64, len(v))
		for i, b := range v {
			out[i] = int64(b)
		}
		return out
	case Boolean:
		return bool(v)
	case Int64:
		return int64(v)
	case Double:
		return finite(float64(v))
	case Float:
		return finite(float64(v))
	case String:
		return string(v)
	case BooleanArray:
		return append([]bool{}, v...)
	case Int64Array:
		return append([]int64{}, v...)
	case FloatArray:
		out := make([]float64, len(v))
		for i, f := range v {
			out[i] = float64(f)
		}
		return floatSlice(out)
	case DoubleArray:
		return floatSlice(append([]float64{}, v...))
	case StringArray:
		return append([]string{}, v...)
	case Struct, StructArray:
		return nil
	default:
		return nil
	}
}

func finite(f float64) any {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return f
}

// floatSlice returns fs unchanged when every element is finite and a []any
// with nil for each NaN or infinity otherwise.
func floatSlice(fs []float64) any {
	for i, f := range fs {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			out := make([]any, len(fs))
			for j, g := range fs[:i] {
				out[j] = g
			}
			for j := i; j < len(fs); j++ {
				out[j] = finite(fs[j])
			}
			return out
		}
	}
	return fs
}
