// Package service generates and verifies the credentials of API clients: client
// secrets hashed with Argon2id and bearer tokens hashed with SHA-256.
package service

// SecretService generates and verifies client secrets.
type SecretService interface {
	// GenerateSecret returns a new random secret and its hash. Only the hash is stored.
	GenerateSecret() (plainSecret string, hashedSecret string, err error)

	// HashSecret hashes a plain text secret.
	HashSecret(plainSecret string) (hashedSecret string, err error)

	// CompareSecret reports whether plainSecret matches hashedSecret.
	CompareSecret(plainSecret string, hashedSecret string) bool
}

// TokenService generates bearer tokens and the hashes they are looked up by.
type TokenService interface {
	// GenerateToken returns a new random token and its hash.
	GenerateToken() (plainToken string, tokenHash string, err error)

	// HashToken returns the lookup hash of a plain token.
	HashToken(plainToken string) string
}
