package security

import (
	"bytes"
	"testing"
)

func TestEncryptDecrypt_Roundtrip(t *testing.T) {
	key := DeriveKey("test-password", []byte("SALT"))
	plain := []byte("twenty ms of opus frame data")

	enc, err := Encrypt(plain, key)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if bytes.Equal(enc, plain) {
		t.Fatal("ciphertext equals plaintext")
	}

	dec, err := Decrypt(enc, key)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if !bytes.Equal(dec, plain) {
		t.Errorf("roundtrip mismatch: %q", dec)
	}
}

func TestDecrypt_WrongKeyFails(t *testing.T) {
	enc, err := Encrypt([]byte("secret"), DeriveKey("right", []byte("SALT")))
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if _, err := Decrypt(enc, DeriveKey("wrong", []byte("SALT"))); err == nil {
		t.Error("decrypt with wrong key should fail")
	}
}

func TestDecrypt_TruncatedInput(t *testing.T) {
	key := DeriveKey("k", []byte("SALT"))
	if _, err := Decrypt([]byte{1, 2, 3}, key); err == nil {
		t.Error("short input should fail")
	}
}

func TestPasswordLocker_Roundtrip(t *testing.T) {
	locker, err := SealPassword("album-pass-123")
	if err != nil {
		t.Fatalf("SealPassword: %v", err)
	}

	pass, err := OpenPassword(locker)
	if err != nil {
		t.Fatalf("OpenPassword: %v", err)
	}
	if pass != "album-pass-123" {
		t.Errorf("pass = %q", pass)
	}
}

func TestOpenPassword_BadMagic(t *testing.T) {
	if _, err := OpenPassword([]byte("XXXXXXXXgarbage")); err == nil {
		t.Error("bad magic should fail")
	}
}

func TestRandomPassword(t *testing.T) {
	a, err := RandomPassword()
	if err != nil {
		t.Fatalf("RandomPassword: %v", err)
	}
	b, err := RandomPassword()
	if err != nil {
		t.Fatalf("RandomPassword: %v", err)
	}
	if len(a) != 32 {
		t.Errorf("len = %d, want 32", len(a))
	}
	if a == b {
		t.Error("two passwords should differ")
	}
}
