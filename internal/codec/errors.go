package codec

import "fmt"

// ErrorKind tags the closed set of ways a decode can fail.
type ErrorKind int

const (
	InvalidJSON ErrorKind = iota
	InvalidSnapshot
	FeatureNotFound
	MissingKey
	InvalidType
)

func (k ErrorKind) String() string {
	switch k {
	case InvalidJSON:
		return "invalid_json"
	case InvalidSnapshot:
		return "invalid_snapshot"
	case FeatureNotFound:
		return "feature_not_found"
	case MissingKey:
		return "missing_key"
	case InvalidType:
		return "invalid_type"
	default:
		return "unknown"
	}
}

// ParseError is the typed error every decode path returns; it carries
// enough structure for a caller to branch on Kind without string matching.
type ParseError struct {
	Kind     ErrorKind
	Reason   string
	Key      string
	Expected string
	Actual   string
}

func (e *ParseError) Error() string {
	switch e.Kind {
	case FeatureNotFound:
		return fmt.Sprintf("codec: feature not found: %s", e.Key)
	case MissingKey:
		return fmt.Sprintf("codec: missing key: %s", e.Key)
	case InvalidType:
		return fmt.Sprintf("codec: invalid type for %s: expected %s, got %s", e.Key, e.Expected, e.Actual)
	case InvalidSnapshot:
		return fmt.Sprintf("codec: invalid snapshot: %s", e.Reason)
	default:
		return fmt.Sprintf("codec: invalid json: %s", e.Reason)
	}
}

func errInvalidJSON(reason string) *ParseError {
	return &ParseError{Kind: InvalidJSON, Reason: reason}
}

func errInvalidSnapshot(reason string) *ParseError {
	return &ParseError{Kind: InvalidSnapshot, Reason: reason}
}

func errFeatureNotFound(key string) *ParseError {
	return &ParseError{Kind: FeatureNotFound, Key: key}
}

func errMissingKey(key string) *ParseError {
	return &ParseError{Kind: MissingKey, Key: key}
}

func errInvalidType(key, expected, actual string) *ParseError {
	return &ParseError{Kind: InvalidType, Key: key, Expected: expected, Actual: actual}
}
