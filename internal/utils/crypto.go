package utils

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
)

// ErrNoKey is returned by a FieldCipher built without a key
var ErrNoKey = errors.New("encryption key not configured")

// FieldCipher encrypts single text fields at rest with AES-CBC and PKCS#7
// padding. The hex output is the IV followed by the ciphertext.
type FieldCipher struct {
	block cipher.Block
}

// NewFieldCipher builds a cipher from a 16, 24 or 32 byte key. A nil key
// yields a cipher that passes values through unchanged.
func NewFieldCipher(key []byte) (*FieldCipher, error) {
	if key == nil {
		return &FieldCipher{}, nil
	}
	if len(key) != 16 && len(key) != 24 && len(key) != 32 {
		return nil, fmt.Errorf("encryption key must be 16, 24, or 32 bytes, got %d", len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	return &FieldCipher{block: block}, nil
}

// Enabled reports whether values are actually encrypted
func (c *FieldCipher) Enabled() bool {
	return c != nil && c.block != nil
}

// Seal encrypts plaintext, or returns it as is when no key is configured
func (c *FieldCipher) Seal(plaintext string) (string, error) {
	if !c.Enabled() || plaintext == "" {
		return plaintext, nil
	}

	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("failed to generate IV: %w", err)
	}

	padded := pad([]byte(plaintext))
	out := make([]byte, aes.BlockSize+len(padded))
	copy(out, iv)
	cipher.NewCBCEncrypter(c.block, iv).CryptBlocks(out[aes.BlockSize:], padded)
	return hex.EncodeToString(out), nil
}

// Open reverses Seal
func (c *FieldCipher) Open(sealed string) (string, error) {
	if !c.Enabled() || sealed == "" {
		return sealed, nil
	}

	data, err := hex.DecodeString(sealed)
	if err != nil {
		return "", fmt.Errorf("failed to decode hex: %w", err)
	}
	if len(data) < 2*aes.BlockSize || len(data)%aes.BlockSize != 0 {
		return "", fmt.Errorf("invalid ciphertext length: %d bytes", len(data))
	}

	iv, body := data[:aes.BlockSize], data[aes.BlockSize:]
	plain := make([]byte, len(body))
	cipher.NewCBCDecrypter(c.block, iv).CryptBlocks(plain, body)
	return unpad(plain)
}

func pad(data []byte) []byte {
	n := aes.BlockSize - len(data)%aes.BlockSize
	return append(data, bytes.Repeat([]byte{byte(n)}, n)...)
}

func unpad(data []byte) (string, error) {
	n := int(data[len(data)-1])
	if n == 0 || n > aes.BlockSize {
		return "", fmt.Errorf("invalid padding value: %d", n)
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return "", fmt.Errorf("invalid padding bytes")
		}
	}
	return string(data[:len(data)-n]), nil
}
