package eval

import (
	"bytes"
	"fmt"
)

// Verdict is the correctness classification of a generated answer.
type Verdict int8

const (
	// Unknown means there was no answer key to compare against.
	Unknown Verdict = iota
	True
	False
)

// VerdictOf converts a boolean outcome.
func VerdictOf(correct bool) Verdict {
	if correct {
		return True
	}
	return False
}

// Known reports whether the verdict is True or False.
func (v Verdict) Known() bool {
	return v == True || v == False
}

func (v Verdict) String() string {
	switch v {
	case True:
		return "true"
	case False:
		return "false"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes Unknown as null.
func (v Verdict) MarshalJSON() ([]byte, error) {
	switch v {
	case True:
		return []byte("true"), nil
	case False:
		return []byte("false"), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts true, false or null.
func (v *Verdict) UnmarshalJSON(data []byte) error {
	switch string(bytes.TrimSpace(data)) {
	case "true":
		*v = True
	case "false":
		*v = False
	case "null":
		*v = Unknown
	default:
		return fmt.Errorf("invalid verdict %s", string(data))
	}
	return nil
}
