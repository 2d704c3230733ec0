package domain

import (
	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/tokenvault/internal/crypto/domain"
)

// RotationReport summarizes a rotation or one-time encryption run. Counts are per
// row except Failed, which counts rows with at least one field that could not be
// processed. Failed rows are never written.
type RotationReport struct {
	Processed int  `json:"processed"`
	Updated   int  `json:"updated"`
	Skipped   int  `json:"skipped"`
	Failed    int  `json:"failed"`
	Batches   int  `json:"batches"`
	DryRun    bool `json:"dry_run"`

	FailedIDs []uuid.UUID `json:"failed_ids,omitempty"`
}

// Success reports whether every processed row was handled.
func (r *RotationReport) Success() bool {
	return r.Failed == 0
}

// FieldStatus counts stored values of one field by state.
type FieldStatus struct {
	Empty      int `json:"empty"`
	Plaintext  int `json:"plaintext"`
	Ciphertext int `json:"ciphertext"`
}

// Add counts one stored value.
func (f *FieldStatus) Add(state cryptoDomain.StoredValueState) {
	switch state {
	case cryptoDomain.StoredValueEmpty:
		f.Empty++
	case cryptoDomain.StoredValueCiphertext:
		f.Ciphertext++
	default:
		f.Plaintext++
	}
}

// EncryptionStatus reports migration progress of the encrypted columns.
type EncryptionStatus struct {
	Total        int         `json:"total"`
	AccessToken  FieldStatus `json:"access_token"`
	RefreshToken FieldStatus `json:"refresh_token"`
}

// Complete reports whether no plaintext value is left.
func (s *EncryptionStatus) Complete() bool {
	return s.AccessToken.Plaintext == 0 && s.RefreshToken.Plaintext == 0
}
