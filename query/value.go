package query

import (
	"reflect"
	"regexp"
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

// valuesEqual reports whether a cell value equals a query value.
// Numbers compare by value regardless of concrete type, strings and
// bools compare directly, and nil only equals nil.
func valuesEqual(cell, value interface{}) bool {
	if cell == nil || value == nil {
		return cell == nil && value == nil
	}

	cellNum, cellIsNum := toFloat64(cell)
	valueNum, valueIsNum := toFloat64(value)
	if cellIsNum || valueIsNum {
		return cellIsNum && valueIsNum && cellNum == valueNum
	}

	if cellStr, ok := cell.(string); ok {
		valueStr, ok := value.(string)
		return ok && cellStr == valueStr
	}
	if cellBool, ok := cell.(bool); ok {
		valueBool, ok := value.(bool)
		return ok && cellBool == valueBool
	}
	return reflect.DeepEqual(cell, value)
}

const wildcardChars = "*?$^"

// isPatternString reports whether a string value should be treated as a
// regular expression. Escaped wildcards are stripped first, so `2\*2`
// stays a literal while `TS*` becomes a pattern.
func isPatternString(s string) bool {
	for _, ch := range wildcardChars {
		s = strings.ReplaceAll(s, `\`+string(ch), "")
	}
	return strings.ContainsAny(s, wildcardChars)
}

// IsPattern reports whether a query value is matched as a regular
// expression rather than a literal.
func IsPattern(value interface{}) bool {
	switch v := value.(type) {
	case *regexp.Regexp:
		return v != nil
	case string:
		return isPatternString(v)
	}
	return false
}

// compilePattern returns the regular expression a query value stands
// for, or nil when the value is not a pattern. Pattern strings that do
// not compile fall back to literal matching.
func compilePattern(value interface{}) *regexp.Regexp {
	switch v := value.(type) {
	case *regexp.Regexp:
		return v
	case string:
		if !isPatternString(v) {
			return nil
		}
		re, err := regexp.Compile(v)
		if err != nil {
			return nil
		}
		return re
	default:
		return nil
	}
}
