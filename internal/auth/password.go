package auth

import "golang.org/x/crypto/bcrypt"

// PasswordHasher 密码哈希
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hashed, password string) bool
}

type bcryptHasher struct {
	cost int
}

// NewBcryptHasher cost<=0 时使用 bcrypt.DefaultCost
func NewBcryptHasher(cost int) PasswordHasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &bcryptHasher{cost: cost}
}

func (h *bcryptHasher) Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (h *bcryptHasher) Verify(hashed, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password)) == nil
}
