package store

import "fmt"

// KeyNotFoundError reports a Get for a key the catalog has no group
// for.
type KeyNotFoundError struct {
	Key      string
	Template string
}

func (e *KeyNotFoundError) Error() string {
	return fmt.Sprintf("key %q not found in catalog; keys follow %q", e.Key, e.Template)
}
