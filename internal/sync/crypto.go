package sync

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"

	"github.com/existflow/focusboard/internal/calendar"
	"golang.org/x/crypto/pbkdf2"
)

const (
	keySize          = 32 // AES-256
	nonceSize        = 12 // GCM standard nonce size
	saltSize         = 16
	pbkdf2Iterations = 100000
)

// ErrBadPassphrase is returned when a sealed token cannot be opened.
var ErrBadPassphrase = errors.New("decryption failed: wrong passphrase or corrupted token")

// Vault seals provider tokens at rest with a passphrase-derived key.
type Vault struct {
	key []byte
}

// NewVault derives the key from passphrase and salt
func NewVault(passphrase string, salt []byte) *Vault {
	key := pbkdf2.Key([]byte(passphrase), salt, pbkdf2Iterations, keySize, sha256.New)
	return &Vault{key: key}
}

// GenerateSalt generates a random salt
func GenerateSalt() ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	return salt, nil
}

func (v *Vault) gcm() (cipher.AEAD, error) {
	block, err := aes.NewCipher(v.key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Encrypt returns base64(nonce || ciphertext) using AES-256-GCM
func (v *Vault) Encrypt(plaintext []byte) (string, error) {
	gcm, err := v.gcm()
	if err != nil {
		return "", err
	}

	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	sealed := gcm.Seal(nonce, nonce, plaintext, nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt
func (v *Vault) Decrypt(encoded string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, err
	}
	if len(data) < nonceSize {
		return nil, errors.New("ciphertext too short")
	}

	gcm, err := v.gcm()
	if err != nil {
		return nil, err
	}

	plaintext, err := gcm.Open(nil, data[:nonceSize], data[nonceSize:], nil)
	if err != nil {
		return nil, ErrBadPassphrase
	}
	return plaintext, nil
}

// SealToken encrypts an OAuth token.
func (v *Vault) SealToken(t calendar.Token) (string, error) {
	raw, err := json.Marshal(t)
	if err != nil {
		return "", err
	}
	return v.Encrypt(raw)
}

// OpenToken decrypts a token sealed by SealToken.
func (v *Vault) OpenToken(sealed string) (calendar.Token, error) {
	raw, err := v.Decrypt(sealed)
	if err != nil {
		return calendar.Token{}, err
	}
	var t calendar.Token
	if err := json.Unmarshal(raw, &t); err != nil {
		return calendar.Token{}, err
	}
	return t, nil
}
