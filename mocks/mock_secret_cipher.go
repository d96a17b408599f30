package mocks

import (
	"github.com/stretchr/testify/mock"
)

// MockSecretCipher is a mock implementation of port.SecretCipher.
type MockSecretCipher struct {
	mock.Mock
}

func (m *MockSecretCipher) Encrypt(plaintext string) (string, error) {
	args := m.Called(plaintext)
	return args.String(0), args.Error(1)
}

func (m *MockSecretCipher) Decrypt(ciphertext string) (string, error) {
	args := m.Called(ciphertext)
	return args.String(0), args.Error(1)
}

// PassthroughCipher encrypts and decrypts by returning the input unchanged.
// Handy where a test needs a working cipher without caring about crypto.
type PassthroughCipher struct{}

func (PassthroughCipher) Encrypt(plaintext string) (string, error)  { return plaintext, nil }
func (PassthroughCipher) Decrypt(ciphertext string) (string, error) { return ciphertext, nil }
