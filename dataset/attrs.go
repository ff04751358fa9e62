package dataset

import "reflect"

// DefaultMergeKeys are the attribute names whose conflicting string values
// are joined with a newline instead of being dropped.
var DefaultMergeKeys = []string{"history", "tracking_id"}

// UnionAttrs folds attribute maps together pairwise from left to right.
//
// For each key, a nil value counts as absent. Keys listed in dropKeys are
// omitted outright, before any other rule. Keys present on one side are
// kept. Keys present on both sides are kept when the values are equal,
// joined with a newline when the key is listed in mergeKeys and both
// values are strings, and dropped otherwise. Passing an empty mergeKeys
// selects DefaultMergeKeys; an empty dropKeys drops nothing.
func UnionAttrs(mergeKeys, dropKeys []string, attrs ...map[string]interface{}) map[string]interface{} {
	if len(mergeKeys) == 0 {
		mergeKeys = DefaultMergeKeys
	}
	switch len(attrs) {
	case 0:
		return map[string]interface{}{}
	case 1:
		return copyAttrs(attrs[0])
	}
	out := unionPair(attrs[0], attrs[1], mergeKeys, dropKeys)
	for _, m := range attrs[2:] {
		out = unionPair(out, m, mergeKeys, dropKeys)
	}
	return out
}

func unionPair(d1, d2 map[string]interface{}, mergeKeys, dropKeys []string) map[string]interface{} {
	keys := make(map[string]bool, len(d1)+len(d2))
	for k := range d1 {
		keys[k] = true
	}
	for k := range d2 {
		keys[k] = true
	}

	out := make(map[string]interface{}, len(keys))
	for k := range keys {
		v1, v2 := d1[k], d2[k]
		switch {
		case keyListed(dropKeys, k):
		case v1 == nil && v2 == nil:
		case v1 == nil:
			out[k] = v2
		case v2 == nil:
			out[k] = v1
		case reflect.DeepEqual(v1, v2):
			out[k] = v1
		case keyListed(mergeKeys, k):
			s1, ok1 := v1.(string)
			s2, ok2 := v2.(string)
			if ok1 && ok2 {
				out[k] = s1 + "\n" + s2
			}
		}
	}
	return out
}

func keyListed(list []string, key string) bool {
	for _, k := range list {
		if k == key {
			return true
		}
	}
	return false
}

func copyAttrs(attrs map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(attrs))
	for k, v := range attrs {
		out[k] = v
	}
	return out
}
