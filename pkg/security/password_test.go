package security_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/feedmill-backend/pkg/config"
	"github.com/angelmondragon/feedmill-backend/pkg/security"
)

func cheapHasher() *security.Hasher {
	return security.NewHasher(config.PasswordConfig{
		ArgonMemoryKB:    8 * 1024,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	})
}

func TestHashAndVerify(t *testing.T) {
	h := cheapHasher()

	encoded, err := h.Hash("mill-gate-code")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(encoded, "$argon2id$v=19$m=8192,t=1,p=1$"), encoded)

	ok, err := h.Verify("mill-gate-code", encoded)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify("wrong", encoded)
	require.NoError(t, err)
	assert.False(t, ok)

	again, err := h.Hash("mill-gate-code")
	require.NoError(t, err)
	assert.NotEqual(t, encoded, again, "salt must differ per hash")
}

func TestVerifyUsesEncodedParams(t *testing.T) {
	old := cheapHasher()
	encoded, err := old.Hash("pw")
	require.NoError(t, err)

	stronger := security.NewHasher(config.PasswordConfig{ArgonMemoryKB: 16 * 1024, ArgonTime: 2, ArgonParallelism: 2, ArgonSaltLen: 16, ArgonKeyLen: 32})
	ok, err := stronger.Verify("pw", encoded)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerifyRejectsMalformedHashes(t *testing.T) {
	h := cheapHasher()
	for _, bad := range []string{
		"not-a-hash",
		"$bcrypt$v=19$m=8,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=16$m=8,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=0,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=8,t=1,p=1$!!!$a2V5",
		"$argon2id$v=19$m=8,t=1,p=1$c2FsdA$",
	} {
		_, err := h.Verify("pw", bad)
		assert.ErrorIs(t, err, security.ErrInvalidHash, bad)
	}
}

func TestHashRejectsEmpty(t *testing.T) {
	_, err := cheapHasher().Hash("")
	assert.ErrorIs(t, err, security.ErrEmptyPassword)
}

func TestParamsAreClamped(t *testing.T) {
	p := security.NewHasher(config.PasswordConfig{}).Params()
	assert.EqualValues(t, 8, p.MemoryKB)
	assert.EqualValues(t, 1, p.Time)
	assert.EqualValues(t, 1, p.Threads)
	assert.EqualValues(t, 8, p.SaltLen)
	assert.EqualValues(t, 16, p.KeyLen)

	p = security.NewHasher(config.PasswordConfig{ArgonParallelism: 1000, ArgonKeyLen: 512}).Params()
	assert.EqualValues(t, 255, p.Threads)
	assert.EqualValues(t, 64, p.KeyLen)
}

func TestGenerateTempPassword(t *testing.T) {
	pw, err := security.GenerateTempPassword(24)
	require.NoError(t, err)
	assert.Len(t, pw, 24)
	assert.NotContainsf(t, pw, "0", "look-alike characters are excluded")
	assert.NotContains(t, pw, "O")
	assert.NotContains(t, pw, "l")

	_, err = security.GenerateTempPassword(0)
	assert.Error(t, err)
}

func TestBurnDoesNotPanic(t *testing.T) {
	h := cheapHasher()
	h.Burn("anything")
	h.Burn("anything")
}
