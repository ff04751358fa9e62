package catalog

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// toFloat64 converts a value to float64 if possible
func toFloat64(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int8:
		return float64(val), true
	case int16:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case uint:
		return float64(val), true
	case uint8:
		return float64(val), true
	case uint16:
		return float64(val), true
	case uint32:
		return float64(val), true
	case uint64:
		return float64(val), true
	default:
		return 0, false
	}
}

// toString converts a value to string if possible
func toString(v interface{}) (string, bool) {
	if str, ok := v.(string); ok {
		return str, true
	}
	return "", false
}

// toBool converts a value to bool if possible
func toBool(v interface{}) (bool, bool) {
	if b, ok := v.(bool); ok {
		return b, true
	}
	return false, false
}

// compareValues orders two cell values: nils first, then numbers, then
// strings, then booleans. Unlike types fall back to comparing their
// printed form so sorting stays deterministic on mixed columns.
func compareValues(a, b interface{}) int {
	// Handle nil values
	if a == nil && b == nil {
		return 0
	}
	if a == nil {
		return -1
	}
	if b == nil {
		return 1
	}

	// Try numeric comparison
	aNum, aIsNum := toFloat64(a)
	bNum, bIsNum := toFloat64(b)
	if aIsNum && bIsNum {
		if aNum < bNum {
			return -1
		}
		if aNum > bNum {
			return 1
		}
		return 0
	}

	// Try string comparison
	aStr, aIsStr := toString(a)
	bStr, bIsStr := toString(b)
	if aIsStr && bIsStr {
		return strings.Compare(aStr, bStr)
	}

	// Try boolean comparison
	aBool, aIsBool := toBool(a)
	bBool, bIsBool := toBool(b)
	if aIsBool && bIsBool {
		if !aBool && bBool {
			return -1 // false < true
		}
		if aBool && !bBool {
			return 1 // true > false
		}
		return 0
	}

	return strings.Compare(fmt.Sprintf("%v", a), fmt.Sprintf("%v", b))
}

// compareValueTuples orders two equal-length value tuples element-wise.
func compareValueTuples(a, b []interface{}) int {
	for i := range a {
		if i >= len(b) {
			return 1
		}
		if c := compareValues(a[i], b[i]); c != 0 {
			return c
		}
	}
	if len(a) < len(b) {
		return -1
	}
	return 0
}

// EncodeValues renders a tuple of cell values into a canonical string key
// used for grouping and membership tests across mixed value types.
func EncodeValues(values []interface{}) string {
	var keyBuilder strings.Builder
	for i, value := range values {
		if i > 0 {
			keyBuilder.WriteString("\x00||\x00") // Use unlikely separator to avoid collisions
		}
		keyBuilder.WriteString(encodeValue(value))
	}
	return keyBuilder.String()
}

func encodeValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return "\x00nil\x00"
	case *regexp.Regexp:
		return "regexp:" + val.String()
	case []interface{}:
		parts := make([]string, len(val))
		for i, item := range val {
			parts[i] = encodeValue(item)
		}
		return "[" + strings.Join(parts, "\x00,\x00") + "]"
	default:
		// Collapse the numeric types so int64(1), float64(1) and 1 group
		// together, the way dataframe equality would treat them.
		if f, ok := toFloat64(v); ok {
			return strconv.FormatFloat(f, 'g', -1, 64)
		}
		return fmt.Sprintf("%#v", val) // %#v keeps strings distinct from their numeric look-alikes
	}
}
