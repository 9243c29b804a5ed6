package types

import "log/slog"

// redactedPlaceholder is what SecretString renders as in logs and JSON.
const redactedPlaceholder = "[REDACTED]"

// SecretString holds a sensitive value (API keys, connection strings) and
// redacts itself in every accidental output path: fmt verbs, JSON
// marshalling, and slog. Use Reveal only at the point the raw value is
// actually needed.
type SecretString string

// String implements fmt.Stringer and returns the redaction placeholder.
func (s SecretString) String() string {
	return redactedPlaceholder
}

// MarshalJSON renders the redaction placeholder instead of the raw value.
func (s SecretString) MarshalJSON() ([]byte, error) {
	return []byte(`"` + redactedPlaceholder + `"`), nil
}

// LogValue implements slog.LogValuer so structured logs never carry the raw
// value.
func (s SecretString) LogValue() slog.Value {
	return slog.StringValue(redactedPlaceholder)
}

// Reveal returns the raw secret value.
func (s SecretString) Reveal() string {
	return string(s)
}

// IsEmpty reports whether the secret is unset.
func (s SecretString) IsEmpty() bool {
	return s == ""
}
