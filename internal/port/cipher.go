package port

// SecretCipher encrypts API keys at rest. Decrypt of an empty ciphertext
// returns an empty string without error.
type SecretCipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}
