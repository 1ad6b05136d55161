package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// Marketplace roles. Offices list vehicles, users bid, admins approve.
const (
	RoleAdmin  = "admin"
	RoleOffice = "office"
	RoleUser   = "user"
)

var (
	ErrMissingToken = errors.New("missing or invalid authorization header")
	ErrInvalidToken = errors.New("invalid or expired token")
)

// Identity is the authenticated principal attached to a request.
type Identity struct {
	UserID   int64
	Username string
	Role     string
}

type claims struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Verifier parses and issues the HS256 tokens the account service hands
// out. Token issuance lives here only so tests and local tooling can mint
// identities; production tokens come from the auth collaborator.
type Verifier struct {
	secret []byte
	ttl    time.Duration
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret), ttl: 24 * time.Hour}
}

func (v *Verifier) GenerateToken(id Identity) (string, error) {
	now := time.Now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		UserID:   id.UserID,
		Username: id.Username,
		Role:     id.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(v.ttl)),
		},
	})
	return token.SignedString(v.secret)
}

func (v *Verifier) ParseToken(raw string) (*Identity, error) {
	var cl claims
	token, err := jwt.ParseWithClaims(raw, &cl, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return &Identity{UserID: cl.UserID, Username: cl.Username, Role: cl.Role}, nil
}

// BearerToken extracts the token from an "Authorization: Bearer ..." value.
func BearerToken(header string) (string, error) {
	if !strings.HasPrefix(header, "Bearer ") {
		return "", ErrMissingToken
	}
	return strings.TrimPrefix(header, "Bearer "), nil
}
