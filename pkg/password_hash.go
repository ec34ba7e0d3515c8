package pkg

import "golang.org/x/crypto/bcrypt"

const passwordHashCost = 14

// HashPassword produces the value for CROSSFIELD_ADMIN_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordHashCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPasswordHash is deliberately slow, callers on request paths
// should not hold locks while it runs.
func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
