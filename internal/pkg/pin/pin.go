// Package pin hashes and verifies patron PINs. Only the bcrypt hash is
// stored; the plain PIN lives for one request.
package pin

import (
	"circulation-engine/internal/pkg/errs"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmpty    = errs.New("pin is empty")
	ErrMismatch = errs.New("pin does not match")
	ErrHashing  = errs.New("pin hashing failed")
)

const Cost = bcrypt.DefaultCost

func Hash(p string) (string, error) {
	if p == "" {
		return "", ErrEmpty
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(p), Cost)
	if err != nil {
		return "", errs.Mark(err, ErrHashing)
	}
	return string(hashed), nil
}

// Verify reports ErrMismatch for a wrong PIN and for patrons that never
// set one.
func Verify(hash, p string) error {
	if p == "" {
		return ErrEmpty
	}
	if hash == "" {
		return ErrMismatch
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(p))
	switch {
	case err == nil:
		return nil
	case errs.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return ErrMismatch
	default:
		return errs.Wrap(err, "verify pin")
	}
}
