package domain

// Names of the encrypted token fields. They label logs and metrics.
const (
	FieldAccessToken  = "access_token"
	FieldRefreshToken = "refresh_token"
)

// FieldConfig is the static policy of one encrypted attribute.
//
// MigrationMode makes the read path return stored values verbatim without trying
// to decode them; writes are still encrypted when Enabled is true. MaxLength is
// the width of the backing column, zero meaning unbounded.
type FieldConfig struct {
	Name          string
	Enabled       bool
	MigrationMode bool
	MaxLength     int
}

// Decryption failure reasons used as metric labels.
const (
	ReasonFormat         = "format"
	ReasonAuthentication = "authentication"
)
