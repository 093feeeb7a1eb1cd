package nonce

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidNonce = errors.New("invalid nonce")

const DefaultTTL = 12 * time.Hour

type claims struct {
	Action string `json:"act"`
	jwt.RegisteredClaims
}

// Issuer выдаёт и проверяет одноразовые по смыслу токены действия,
// привязанные к пользователю сессии.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (i *Issuer) Create(user, action string) (string, error) {
	now := i.now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Action: action,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	})

	s, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("nonce.Create: %w", err)
	}
	return s, nil
}

func (i *Issuer) Verify(token, user, action string) error {
	if token == "" || user == "" {
		return ErrInvalidNonce
	}

	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidNonce, err)
	}

	if c.Subject != user || c.Action != action {
		return ErrInvalidNonce
	}

	return nil
}
