package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"github.com/elpescado/reamp-player/pkg/spec"

	"golang.org/x/crypto/pbkdf2"
)

// DeriveKey produces a 32-byte key from a password and salt
func DeriveKey(password string, salt []byte) []byte {
	return pbkdf2.Key([]byte(password), salt, 4096, 32, sha256.New)
}

// Encrypt seals data with AES-GCM under a random nonce
func Encrypt(data []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, data, nil), nil
}

// Decrypt opens AES-GCM data produced by Encrypt
func Decrypt(data []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return nil, io.ErrUnexpectedEOF
	}
	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	return gcm.Open(nil, nonce, ciphertext, nil)
}

// SealPassword wraps an asset password for embedding in the KEYS tag
// of a sealed asset. The payload starts with the locker magic so a
// stray blob is rejected before any crypto runs.
func SealPassword(password string) ([]byte, error) {
	keyForLocker := DeriveKey(spec.MasterKey, []byte(spec.Salt))
	enc, err := Encrypt([]byte(password), keyForLocker)
	if err != nil {
		return nil, err
	}
	return append([]byte(spec.LockerMagic), enc...), nil
}

// OpenPassword recovers the asset password from a KEYS tag payload.
func OpenPassword(locker []byte) (string, error) {
	if len(locker) < len(spec.LockerMagic) || string(locker[:len(spec.LockerMagic)]) != spec.LockerMagic {
		return "", fmt.Errorf("not a valid reamp key locker")
	}
	keyForLocker := DeriveKey(spec.MasterKey, []byte(spec.Salt))
	dec, err := Decrypt(locker[len(spec.LockerMagic):], keyForLocker)
	if err != nil {
		return "", err
	}
	return string(dec), nil
}

// RandomPassword generates the per-asset password used when the
// packer is not given one explicitly.
func RandomPassword() (string, error) {
	const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz23456789"
	buf := make([]byte, spec.RandomPasswordLen)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = alphabet[int(b)%len(alphabet)]
	}
	return string(buf), nil
}
