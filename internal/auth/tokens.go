package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	scopeAccess        = "access"
	scopePasswordReset = "password_reset"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrWrongScope   = errors.New("token not valid for this operation")
)

// Claims is the JWT payload for both token kinds. Subject carries the
// user's email, Scope separates login tokens from reset tokens so one is
// never accepted in place of the other.
type Claims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HS256 tokens.
type TokenManager struct {
	secret    []byte
	accessTTL time.Duration
	resetTTL  time.Duration
}

func NewTokenManager(secret string, accessTTL, resetTTL time.Duration) *TokenManager {
	if accessTTL <= 0 {
		accessTTL = time.Hour
	}
	if resetTTL <= 0 {
		resetTTL = 15 * time.Minute
	}
	return &TokenManager{secret: []byte(secret), accessTTL: accessTTL, resetTTL: resetTTL}
}

// IssueAccessToken creates a bearer token carrying the user's identity.
func (tm *TokenManager) IssueAccessToken(email string) (string, error) {
	return tm.issue(email, scopeAccess, tm.accessTTL)
}

// IssueResetToken creates a short-lived password-reset token for the email.
func (tm *TokenManager) IssueResetToken(email string) (string, error) {
	return tm.issue(email, scopePasswordReset, tm.resetTTL)
}

func (tm *TokenManager) issue(email, scope string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		Scope: scope,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(tm.secret)
}

// VerifyAccessToken validates signature, expiry and scope, returning the
// email claim. Reset tokens are rejected here.
func (tm *TokenManager) VerifyAccessToken(tokenStr string) (string, error) {
	return tm.verify(tokenStr, scopeAccess)
}

// VerifyResetToken validates a password-reset token and returns the email
// it was issued for. Ordinary access tokens are rejected here.
func (tm *TokenManager) VerifyResetToken(tokenStr string) (string, error) {
	return tm.verify(tokenStr, scopePasswordReset)
}

func (tm *TokenManager) verify(tokenStr, wantScope string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return tm.secret, nil
	})
	if err != nil {
		return "", ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	if claims.Scope != wantScope {
		return "", ErrWrongScope
	}
	return claims.Subject, nil
}
