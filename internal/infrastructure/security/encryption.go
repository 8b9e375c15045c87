// Package security provides AES encryption utilities
package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"io"
)

// keyBytes normalizes a configured key. Keys of hex-string lengths are hex
// decoded when that yields a valid AES key size; anything else is raw bytes.
func keyBytes(key string) ([]byte, error) {
	var kb []byte
	if len(key) == 32 || len(key) == 48 || len(key) == 64 {
		decoded, err := hex.DecodeString(key)
		if err == nil && (len(decoded) == 16 || len(decoded) == 24 || len(decoded) == 32) {
			kb = decoded
		} else {
			kb = []byte(key)
		}
	} else {
		kb = []byte(key)
	}

	if len(kb) != 16 && len(kb) != 24 && len(kb) != 32 {
		return nil, errors.New("invalid key length")
	}
	return kb, nil
}

// Encrypt encrypts data using AES-GCM with the provided key
func Encrypt(data, key string) (string, error) {
	if len(key) == 0 {
		return "", errors.New("empty encryption key")
	}

	kb, err := keyBytes(key)
	if err != nil {
		return "", err
	}

	block, err := aes.NewCipher(kb)
	if err != nil {
		return "", err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	ciphertext := gcm.Seal(nonce, nonce, []byte(data), nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// Decrypt decrypts data using AES-GCM with the provided key
func Decrypt(encrypted, key string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(encrypted)
	if err != nil {
		return "", err
	}

	kb, err := keyBytes(key)
	if err != nil {
		return "", err
	}

	block, err := aes.NewCipher(kb)
	if err != nil {
		return "", err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return "", errors.New("invalid ciphertext")
	}

	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", err
	}

	return string(plaintext), nil
}

// EncryptNationalID seals a national identifier before it touches the durable
// store. An empty AES key disables encryption at rest (development only).
func EncryptNationalID(nationalID, aesKey string) (string, error) {
	if aesKey == "" {
		return nationalID, nil
	}
	return Encrypt(nationalID, aesKey)
}

// DecryptNationalID reverses EncryptNationalID.
func DecryptNationalID(stored, aesKey string) (string, error) {
	if aesKey == "" {
		return stored, nil
	}
	return Decrypt(stored, aesKey)
}
