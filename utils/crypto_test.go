package utils

import (
	"testing"
)

func TestCipherRoundTrip(t *testing.T) {
	c, err := NewCipher("short secret")
	if err != nil {
		t.Fatalf("NewCipher() error = %v", err)
	}

	sealed, err := c.Encrypt([]byte("access-sandbox-1234"))
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}
	if sealed == "access-sandbox-1234" {
		t.Fatal("Encrypt() returned the plaintext")
	}

	opened, err := c.Decrypt(sealed)
	if err != nil {
		t.Fatalf("Decrypt() error = %v", err)
	}
	if string(opened) != "access-sandbox-1234" {
		t.Errorf("Decrypt() = %q, want %q", opened, "access-sandbox-1234")
	}
}

func TestCipherNonceIsRandom(t *testing.T) {
	c, _ := NewCipher("secret")
	a, _ := c.Encrypt([]byte("same"))
	b, _ := c.Encrypt([]byte("same"))
	if a == b {
		t.Error("two encryptions of the same plaintext should differ")
	}
}

func TestCipherWrongKey(t *testing.T) {
	a, _ := NewCipher("key-a")
	b, _ := NewCipher("key-b")

	sealed, _ := a.Encrypt([]byte("token"))
	if _, err := b.Decrypt(sealed); err == nil {
		t.Error("Decrypt() with another key should fail")
	}
}

func TestNewCipher_EmptySecret(t *testing.T) {
	if _, err := NewCipher(""); err == nil {
		t.Error("NewCipher(\"\") should fail")
	}
}

func TestDecrypt_Garbage(t *testing.T) {
	c, _ := NewCipher("secret")
	if _, err := c.Decrypt("not base64!"); err == nil {
		t.Error("Decrypt() of invalid base64 should fail")
	}
	if _, err := c.Decrypt("YQ=="); err == nil {
		t.Error("Decrypt() of a too-short payload should fail")
	}
}
