package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

const argon2Version = argon2.Version

// Params are the argon2id cost settings. Memory is in KiB.
type Params struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLen     uint32
	KeyLen      uint32
}

var DefaultParams = Params{Memory: 64 * 1024, Time: 3, Parallelism: 2, SaltLen: 16, KeyLen: 32}

var ErrEmptyPassword = errors.New("empty password")

// upper bounds for parameters read back from stored verifiers
const (
	maxMemory      = 1 << 20
	maxTime        = 16
	maxParallelism = 16
	maxKeyLen      = 128
)

var phcEncoding = base64.RawStdEncoding.Strict()

type PasswordHasher struct {
	params Params
}

func NewPasswordHasher(params Params) *PasswordHasher {
	if params.SaltLen == 0 {
		params.SaltLen = DefaultParams.SaltLen
	}
	if params.KeyLen == 0 {
		params.KeyLen = DefaultParams.KeyLen
	}
	if params.Parallelism == 0 {
		params.Parallelism = 1
	}
	return &PasswordHasher{params: params}
}

// Hash returns a PHC string: $argon2id$v=19$m=...,t=...,p=...$<salt>$<key>
func (h *PasswordHasher) Hash(plain string) (string, error) {
	if plain == "" {
		return "", ErrEmptyPassword
	}

	salt := make([]byte, h.params.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(plain), salt, h.params.Time, h.params.Memory, h.params.Parallelism, h.params.KeyLen)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2Version,
		h.params.Memory, h.params.Time, h.params.Parallelism,
		phcEncoding.EncodeToString(salt),
		phcEncoding.EncodeToString(key),
	), nil
}

// Verify reports whether plain matches the verifier. Malformed verifiers
// are a mismatch, never an error.
func (h *PasswordHasher) Verify(plain, verifier string) bool {
	decoded, ok := decodeVerifier(verifier)
	if !ok {
		return false
	}
	key := argon2.IDKey([]byte(plain), decoded.salt, decoded.params.Time, decoded.params.Memory, decoded.params.Parallelism, uint32(len(decoded.key)))
	return subtle.ConstantTimeCompare(key, decoded.key) == 1
}

// NeedsRehash is true when the verifier was produced with other parameters.
func (h *PasswordHasher) NeedsRehash(verifier string) bool {
	decoded, ok := decodeVerifier(verifier)
	if !ok {
		return true
	}
	return decoded.params.Memory != h.params.Memory ||
		decoded.params.Time != h.params.Time ||
		decoded.params.Parallelism != h.params.Parallelism ||
		uint32(len(decoded.key)) != h.params.KeyLen
}

type decodedVerifier struct {
	params Params
	salt   []byte
	key    []byte
}

func decodeVerifier(verifier string) (decodedVerifier, bool) {
	var out decodedVerifier

	// "", "argon2id", "v=19", "m=..,t=..,p=..", salt, key
	parts := strings.Split(verifier, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return out, false
	}
	if parts[2] != "v="+strconv.Itoa(argon2Version) {
		return out, false
	}

	memory, timeCost, parallelism, ok := parseCost(parts[3])
	if !ok {
		return out, false
	}

	salt, err := phcEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return out, false
	}
	key, err := phcEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 || len(key) > maxKeyLen {
		return out, false
	}

	out.params = Params{Memory: memory, Time: timeCost, Parallelism: parallelism, KeyLen: uint32(len(key))}
	out.salt = salt
	out.key = key
	return out, true
}

func parseCost(segment string) (uint32, uint32, uint8, bool) {
	fields := strings.Split(segment, ",")
	if len(fields) != 3 {
		return 0, 0, 0, false
	}

	values := make([]uint64, 3)
	for i, prefix := range []string{"m=", "t=", "p="} {
		if !strings.HasPrefix(fields[i], prefix) {
			return 0, 0, 0, false
		}
		value, err := strconv.ParseUint(strings.TrimPrefix(fields[i], prefix), 10, 32)
		if err != nil || value == 0 {
			return 0, 0, 0, false
		}
		values[i] = value
	}

	if values[0] > maxMemory || values[1] > maxTime || values[2] > maxParallelism {
		return 0, 0, 0, false
	}
	return uint32(values[0]), uint32(values[1]), uint8(values[2]), true
}
