package types

// SecretString is a string that redacts itself in logs and JSON output.
// Configuration secrets (database URLs, provider API keys) use this type so
// an accidental fmt.Sprintf or json.Marshal never leaks the value.
type SecretString string

const redacted = "[REDACTED]"

// String implements fmt.Stringer with a redacted value.
func (s SecretString) String() string { return redacted }

// GoString keeps %#v output redacted as well.
func (s SecretString) GoString() string { return redacted }

// MarshalJSON always emits the redaction marker.
func (s SecretString) MarshalJSON() ([]byte, error) {
	return []byte(`"` + redacted + `"`), nil
}

// Reveal returns the underlying secret. Call sites should pass the result
// directly to the consuming client and never store or log it.
func (s SecretString) Reveal() string { return string(s) }

// IsSet reports whether the secret has a non-empty value.
func (s SecretString) IsSet() bool { return s != "" }
