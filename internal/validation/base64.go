package validation

import (
	"encoding/base64"
	"strings"

	validation "github.com/jellydator/validation"
)

// Base64 validates that a string is base64 in any of the standard or URL-safe
// alphabets, padded or not. Encryption keys are accepted in all four forms.
var Base64 = validation.By(func(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_base64_type", "must be a string")
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil // Let Required handle empty strings
	}
	encodings := []*base64.Encoding{
		base64.StdEncoding,
		base64.URLEncoding,
		base64.RawStdEncoding,
		base64.RawURLEncoding,
	}
	for _, enc := range encodings {
		if _, err := enc.DecodeString(s); err == nil {
			return nil
		}
	}
	return validation.NewError("validation_base64", "must be valid base64-encoded data")
})
