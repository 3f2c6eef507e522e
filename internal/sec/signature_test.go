package sec

import (
	"bytes"
	"testing"

	"annexe9-backend/internal/domain"
)

func testKey() []byte {
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	return key
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	c, err := NewSignatureCipher(testKey())
	if err != nil {
		t.Fatalf("cipher init: %v", err)
	}

	plain := []byte("png bytes here")
	ct, err := c.Encrypt(plain)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if bytes.Contains(ct, plain) {
		t.Fatalf("ciphertext contains plaintext")
	}

	got, err := c.Decrypt(ct)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if !bytes.Equal(got, plain) {
		t.Fatalf("roundtrip mismatch")
	}
}

func TestEncryptNonceVaries(t *testing.T) {
	c, _ := NewSignatureCipher(testKey())
	a, _ := c.Encrypt([]byte("same"))
	b, _ := c.Encrypt([]byte("same"))
	if bytes.Equal(a, b) {
		t.Fatalf("two encryptions of the same plaintext must differ")
	}
}

func TestDecryptTamperedFails(t *testing.T) {
	c, _ := NewSignatureCipher(testKey())
	ct, _ := c.Encrypt([]byte("payload"))
	ct[len(ct)-1] ^= 0x01

	_, err := c.Decrypt(ct)
	if !domain.IsAuthentication(err) {
		t.Fatalf("expected AuthenticationError, got %v", err)
	}
}

func TestDecryptWrongKeyFails(t *testing.T) {
	c1, _ := NewSignatureCipher(testKey())
	other := testKey()
	other[0] ^= 0xFF
	c2, _ := NewSignatureCipher(other)

	ct, _ := c1.Encrypt([]byte("payload"))
	if _, err := c2.Decrypt(ct); !domain.IsAuthentication(err) {
		t.Fatalf("expected AuthenticationError, got %v", err)
	}
}

func TestDecryptShortCiphertext(t *testing.T) {
	c, _ := NewSignatureCipher(testKey())
	if _, err := c.Decrypt([]byte{1, 2, 3}); !domain.IsAuthentication(err) {
		t.Fatalf("expected AuthenticationError on short input, got %v", err)
	}
}

func TestNewSignatureCipherKeySize(t *testing.T) {
	if _, err := NewSignatureCipher(make([]byte, 16)); err == nil {
		t.Fatalf("expected error on 16-byte key")
	}
}

func TestDecodeDataURL(t *testing.T) {
	raw, err := DecodeDataURL("data:image/png;base64,aGVsbG8=")
	if err != nil {
		t.Fatalf("decode with prefix: %v", err)
	}
	if string(raw) != "hello" {
		t.Fatalf("got %q", raw)
	}

	raw, err = DecodeDataURL("aGVsbG8=")
	if err != nil {
		t.Fatalf("decode without prefix: %v", err)
	}
	if string(raw) != "hello" {
		t.Fatalf("got %q", raw)
	}

	if _, err := DecodeDataURL("data:image/png;base64,not base64!!"); !domain.IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestEncodeDataURLDefaultMime(t *testing.T) {
	s := EncodeDataURL([]byte("x"), "")
	if s != "data:image/png;base64,eA==" {
		t.Fatalf("got %q", s)
	}
}
