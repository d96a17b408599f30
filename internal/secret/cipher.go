package secret

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// Cipher encrypts provider API keys at rest using ChaCha20-Poly1305 with a
// key derived from the configured application secret.
type Cipher struct {
	key []byte
}

// NewCipher derives a 32-byte AEAD key from the application secret.
func NewCipher(appSecret string) (*Cipher, error) {
	if appSecret == "" {
		return nil, fmt.Errorf("secret.NewCipher: application secret is empty")
	}
	sum := sha256.Sum256([]byte(appSecret))
	return &Cipher{key: sum[:]}, nil
}

// Encrypt seals the plaintext and returns base64(nonce || ciphertext).
// An empty plaintext encrypts to an empty string.
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}
	aead, err := chacha20poly1305.New(c.key)
	if err != nil {
		return "", fmt.Errorf("secret.Encrypt: %w", err)
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("secret.Encrypt: generating nonce: %w", err)
	}
	sealed := aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt. An empty ciphertext decrypts to an empty string.
func (c *Cipher) Decrypt(ciphertext string) (string, error) {
	if ciphertext == "" {
		return "", nil
	}
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("secret.Decrypt: decoding base64: %w", err)
	}
	aead, err := chacha20poly1305.New(c.key)
	if err != nil {
		return "", fmt.Errorf("secret.Decrypt: %w", err)
	}
	if len(raw) < aead.NonceSize() {
		return "", fmt.Errorf("secret.Decrypt: ciphertext too short")
	}
	nonce, sealed := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("secret.Decrypt: %w", err)
	}
	return string(plain), nil
}
