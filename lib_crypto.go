//go:build !rtinfo_minimal

package rtinfo

import (
	"bytes"
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"filippo.io/age"
	"github.com/zeebo/blake3"
	"golang.org/x/crypto/chacha20poly1305"
)

func init() {
	Register(BindingSpec{
		Import: "golang.org/x/crypto",
		Load: func() error {
			_, err := chacha20poly1305.New(make([]byte, chacha20poly1305.KeySize))
			return err
		},
		Attrs: map[string]func() (string, error){
			"aead": aeadRoundTrip,
		},
	})

	Register(BindingSpec{
		Import: "github.com/zeebo/blake3",
		Load: func() error {
			h := blake3.New()
			h.Write([]byte("rtinfo"))
			if !bytes.Equal(h.Sum(nil), sum256(blake3.Sum256([]byte("rtinfo")))) {
				return errors.New("blake3 streaming and one-shot digests differ")
			}
			return nil
		},
	})

	Register(BindingSpec{
		Import: "filippo.io/age",
		Load:   ageRoundTrip,
	})
}

func sum256(d [32]byte) []byte {
	return d[:]
}

// aeadRoundTrip seals and opens a message with a random key.
func aeadRoundTrip() (string, error) {
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := rand.Read(key); err != nil {
		return "", err
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	msg := []byte("rtinfo")
	opened, err := aead.Open(nil, nonce, aead.Seal(nil, nonce, msg, nil), nil)
	if err != nil {
		return "", err
	}
	if !bytes.Equal(opened, msg) {
		return "", errors.New("opened message differs")
	}
	return fmt.Sprintf("Ok (XChaCha20, %d-byte nonce)", aead.NonceSize()), nil
}

// ageRoundTrip encrypts to a fresh X25519 identity and decrypts again.
func ageRoundTrip() error {
	id, err := age.GenerateX25519Identity()
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	w, err := age.Encrypt(&buf, id.Recipient())
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, "rtinfo"); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	r, err := age.Decrypt(&buf, id)
	if err != nil {
		return err
	}
	out, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if string(out) != "rtinfo" {
		return errors.New("decrypted message differs")
	}
	return nil
}
