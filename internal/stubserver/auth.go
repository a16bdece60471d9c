package stubserver

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/argon2"
)

// HashParams are the argon2id cost parameters for stored passwords.
type HashParams struct {
	Time    uint32
	Memory  uint32 // KiB
	Threads uint8
	KeyLen  uint32
	SaltLen int
}

// DefaultHashParams are the argon2 library defaults the daemon used.
var DefaultHashParams = HashParams{Time: 3, Memory: 64 * 1024, Threads: 4, KeyLen: 32, SaltLen: 16}

// hashPassword returns an encoded argon2id hash in the PHC string format.
func hashPassword(password string, p HashParams) (string, error) {
	salt := make([]byte, p.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	key := argon2.IDKey([]byte(password), salt, p.Time, p.Memory, p.Threads, p.KeyLen)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.Memory, p.Time, p.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key)), nil
}

// verifyPassword checks password against an encoded hash.
func verifyPassword(encoded, password string) (bool, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false, fmt.Errorf("unsupported hash format")
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return false, fmt.Errorf("parse version: %w", err)
	}
	if version != argon2.Version {
		return false, fmt.Errorf("unsupported argon2 version %d", version)
	}

	var p HashParams
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Time, &p.Threads); err != nil {
		return false, fmt.Errorf("parse params: %w", err)
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, fmt.Errorf("decode salt: %w", err)
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false, fmt.Errorf("decode hash: %w", err)
	}

	got := argon2.IDKey([]byte(password), salt, p.Time, p.Memory, p.Threads, uint32(len(want)))
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}

// Users holds the stub's accounts. The daemon has a single admin user, and
// so does the stub unless more are added.
type Users struct {
	mu     sync.Mutex
	params HashParams
	hashes map[string]string
}

func NewUsers(params HashParams) *Users {
	return &Users{params: params, hashes: map[string]string{}}
}

func (u *Users) Add(username, password string) error {
	hash, err := hashPassword(password, u.params)
	if err != nil {
		return err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	u.hashes[username] = hash
	return nil
}

// Login reports whether username exists and password matches.
func (u *Users) Login(username, password string) bool {
	u.mu.Lock()
	hash, ok := u.hashes[username]
	u.mu.Unlock()
	if !ok {
		return false
	}
	match, err := verifyPassword(hash, password)
	return err == nil && match
}

// Rename moves username's account to newName with a new password.
func (u *Users) Rename(username, newName, newPassword string) error {
	hash, err := hashPassword(newPassword, u.params)
	if err != nil {
		return err
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	if _, ok := u.hashes[username]; !ok {
		return fmt.Errorf("unknown user %q", username)
	}
	if _, taken := u.hashes[newName]; taken && newName != username {
		return fmt.Errorf("user %q already exists", newName)
	}
	delete(u.hashes, username)
	u.hashes[newName] = hash
	return nil
}
