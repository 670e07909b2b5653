package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// DefaultHasher is used when no hasher is provided in Config
var DefaultHasher = BcryptHasher{}

// Bcrypt password hasher
// The produced hash embeds salt and cost, so the cost may be raised later
// without invalidating stored hashes
type BcryptHasher struct{}

// Hash fails for passwords longer than 72 bytes, callers validate length first
func (h BcryptHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(hash), err
}

func (h BcryptHasher) Compare(hashedPassword string, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}
