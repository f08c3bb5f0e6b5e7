package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"golang.org/x/crypto/argon2"

	"github.com/angelmondragon/feedmill-backend/pkg/config"
)

var (
	// ErrInvalidHash is returned for anything that is not a PHC argon2id string.
	ErrInvalidHash = errors.New("invalid argon2id hash")
	// ErrEmptyPassword is returned when hashing an empty password.
	ErrEmptyPassword = errors.New("password cannot be empty")
)

const tempPasswordAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz23456789"

// Params are the argon2id cost settings. Verification always uses the
// settings encoded in the stored hash, so changing them only affects new hashes.
type Params struct {
	MemoryKB uint32
	Time     uint32
	Threads  uint8
	SaltLen  uint32
	KeyLen   uint32
}

// Hasher hashes and verifies admin passwords.
type Hasher struct {
	params Params

	decoyOnce sync.Once
	decoy     string
}

func NewHasher(cfg config.PasswordConfig) *Hasher {
	return &Hasher{params: Params{
		MemoryKB: uint32(clamp(cfg.ArgonMemoryKB, 8, 512*1024)),
		Time:     uint32(clamp(cfg.ArgonTime, 1, 10)),
		Threads:  uint8(clamp(cfg.ArgonParallelism, 1, 255)),
		SaltLen:  uint32(clamp(cfg.ArgonSaltLen, 8, 64)),
		KeyLen:   uint32(clamp(cfg.ArgonKeyLen, 16, 64)),
	}}
}

// Params reports the cost settings used for new hashes.
func (h *Hasher) Params() Params { return h.params }

// Hash returns a PHC formatted argon2id string.
func (h *Hasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	salt := make([]byte, h.params.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	key := argon2.IDKey([]byte(password), salt, h.params.Time, h.params.MemoryKB, h.params.Threads, h.params.KeyLen)
	return encode(h.params, salt, key), nil
}

// Verify reports whether password matches encoded.
func (h *Hasher) Verify(password, encoded string) (bool, error) {
	p, salt, want, err := decode(encoded)
	if err != nil {
		return false, err
	}
	got := argon2.IDKey([]byte(password), salt, p.Time, p.MemoryKB, p.Threads, p.KeyLen)
	return subtle.ConstantTimeCompare(want, got) == 1, nil
}

// Burn spends the cost of one verification against a decoy hash. Login calls
// it for unknown emails so the response time does not reveal which admin
// accounts exist.
func (h *Hasher) Burn(password string) {
	h.decoyOnce.Do(func() {
		h.decoy, _ = h.Hash("feedmill-decoy-account")
	})
	if h.decoy != "" {
		_, _ = h.Verify(password, h.decoy)
	}
}

// $argon2id$v=19$m=65536,t=3,p=2$<salt>$<key>
func encode(p Params, salt, key []byte) string {
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.MemoryKB, p.Time, p.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key))
}

func decode(encoded string) (Params, []byte, []byte, error) {
	fields := strings.Split(encoded, "$")
	if len(fields) != 6 || fields[0] != "" || fields[1] != "argon2id" {
		return Params{}, nil, nil, ErrInvalidHash
	}

	var version int
	if _, err := fmt.Sscanf(fields[2], "v=%d", &version); err != nil || version != argon2.Version {
		return Params{}, nil, nil, ErrInvalidHash
	}

	var p Params
	if _, err := fmt.Sscanf(fields[3], "m=%d,t=%d,p=%d", &p.MemoryKB, &p.Time, &p.Threads); err != nil {
		return Params{}, nil, nil, ErrInvalidHash
	}
	if p.MemoryKB == 0 || p.Time == 0 || p.Threads == 0 {
		return Params{}, nil, nil, ErrInvalidHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(fields[4])
	if err != nil || len(salt) == 0 {
		return Params{}, nil, nil, ErrInvalidHash
	}
	key, err := base64.RawStdEncoding.DecodeString(fields[5])
	if err != nil || len(key) == 0 {
		return Params{}, nil, nil, ErrInvalidHash
	}
	p.SaltLen = uint32(len(salt))
	p.KeyLen = uint32(len(key))
	return p, salt, key, nil
}

// GenerateTempPassword returns a random password from an alphabet without
// look-alike characters, for seeding an admin when none was configured.
func GenerateTempPassword(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("password length must be positive, got %d", length)
	}
	n := big.NewInt(int64(len(tempPasswordAlphabet)))
	var b strings.Builder
	b.Grow(length)
	for i := 0; i < length; i++ {
		idx, err := rand.Int(rand.Reader, n)
		if err != nil {
			return "", fmt.Errorf("generate password: %w", err)
		}
		b.WriteByte(tempPasswordAlphabet[idx.Int64()])
	}
	return b.String(), nil
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
