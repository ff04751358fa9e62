package aggregate

import "fmt"

// AggregationError reports a failed dataset build for one catalog key.
type AggregationError struct {
	Key string
	Err error
}

func (e *AggregationError) Error() string {
	return fmt.Sprintf("failed to build dataset for key %q: %v", e.Key, e.Err)
}

func (e *AggregationError) Unwrap() error {
	return e.Err
}
