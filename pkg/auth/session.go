package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const sessionCookieName = "wc_session"
const minSecretLen = 32

// ErrInvalidToken is returned for malformed, forged or expired session tokens.
var ErrInvalidToken = errors.New("invalid session token")

// SessionCookieName is the name of the admin session cookie.
func SessionCookieName() string {
	return sessionCookieName
}

// SessionSecretBytes derives the HMAC key from s, zero-padded to 32 bytes.
func SessionSecretBytes(s string) []byte {
	b := []byte(s)
	if len(b) < minSecretLen {
		out := make([]byte, minSecretLen)
		copy(out, b)
		return out
	}
	return b
}

// Claims is the payload of the session cookie. The token ID (jti) names the
// server-side session row so a token stops working once that row is gone.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// CreateSessionToken signs an HS256 token for the given session.
func CreateSessionToken(p Principal, secret []byte) (string, error) {
	claims := Claims{
		Email: p.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        p.SessionID,
			Subject:   p.AdminID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(p.ExpiresAt),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ParseSessionToken verifies signature and expiry and returns the principal
// the token was issued for.
func ParseSessionToken(token string, secret []byte) (*Principal, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}
	if claims.ID == "" || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return &Principal{
		SessionID: claims.ID,
		AdminID:   claims.Subject,
		Email:     claims.Email,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
