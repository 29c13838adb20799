package predict

import "fmt"

// SchemaMismatchError reports drift between a vector's field set and the
// schema its consumer expects, whether trained parameters or a population
// being aggregated. It is checked, never coerced: zero-filling unknown
// fields would corrupt results silently.
type SchemaMismatchError struct {
	Want   string // schema version the consumer expects
	Got    string // schema version of the offending vector
	Detail string
}

func (e *SchemaMismatchError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("schema mismatch: want %s, got %s (%s)", e.Want, e.Got, e.Detail)
	}
	return fmt.Sprintf("schema mismatch: want %s, got %s", e.Want, e.Got)
}
