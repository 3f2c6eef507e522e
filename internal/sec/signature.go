package sec

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/chacha20poly1305"

	"annexe9-backend/internal/domain"
)

// SignatureCipher encrypts raster signature images before they are stored on
// the order row. XChaCha20-Poly1305 with a random nonce prefixed to the
// ciphertext; Open doubles as the integrity check.
type SignatureCipher struct {
	aead cipher.AEAD
}

func NewSignatureCipher(key []byte) (*SignatureCipher, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("key must be %d bytes, got %d", chacha20poly1305.KeySize, len(key))
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	return &SignatureCipher{aead: aead}, nil
}

func (c *SignatureCipher) Encrypt(plaintext []byte) ([]byte, error) {
	// Random nonce every time, with capacity left for the ciphertext.
	nonce := make([]byte, c.aead.NonceSize(), c.aead.NonceSize()+len(plaintext)+c.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	return c.aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Decrypt fails with domain.AuthenticationError on any tampering or key
// mismatch; it never returns garbage bytes.
func (c *SignatureCipher) Decrypt(data []byte) ([]byte, error) {
	nonceSize := c.aead.NonceSize()
	if len(data) < nonceSize {
		return nil, domain.AuthenticationError{Err: fmt.Errorf("ciphertext too short")}
	}
	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	plain, err := c.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, domain.AuthenticationError{Err: err}
	}
	return plain, nil
}

// DecodeDataURL strips an optional "data:<mime>;base64," prefix and decodes
// the remaining base64 payload.
func DecodeDataURL(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, ','); i >= 0 {
		s = s[i+1:]
	}
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, domain.ValidationError{Field: "signature_data", Msg: "base64 invalide", Err: err}
	}
	return raw, nil
}

// EncodeDataURL is the inverse of DecodeDataURL; it always re-adds the prefix.
func EncodeDataURL(data []byte, mime string) string {
	if mime == "" {
		mime = "image/png"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

var (
	defaultMu     sync.RWMutex
	defaultCipher *SignatureCipher
)

// InitDefault installs the process-wide cipher built from the configured key.
func InitDefault(key []byte) error {
	c, err := NewSignatureCipher(key)
	if err != nil {
		return err
	}
	defaultMu.Lock()
	defaultCipher = c
	defaultMu.Unlock()
	return nil
}

// Default returns the process-wide cipher, nil before InitDefault.
func Default() *SignatureCipher {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultCipher
}
