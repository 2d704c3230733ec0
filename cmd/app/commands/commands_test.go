package commands

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/tokenvault/internal/crypto/domain"
	cryptoService "github.com/allisson/tokenvault/internal/crypto/service"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func codecWithKeyByte(t *testing.T, b byte) cryptoService.TokenCodec {
	t.Helper()

	raw := make([]byte, cryptoDomain.KeySize)
	for i := range raw {
		raw[i] = b
	}
	key, err := cryptoDomain.NewEncryptionKey(raw, cryptoDomain.KeySourceDedicated)
	require.NoError(t, err)

	codec, err := cryptoService.NewTokenCodecWithKey(key, cryptoService.NewAEADManager(), cryptoDomain.AESGCM)
	require.NoError(t, err)
	return codec
}

// digestCodec reports a fixed key digest, such as one shorter than the
// 12 characters shown in logs.
type digestCodec struct {
	cryptoService.TokenCodec
	digest string
}

func (c digestCodec) KeyDigest() string {
	return c.digest
}
