package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"adhok_platform/internal/models/user"
)

var ErrInvalidToken = errors.New("invalid session token")

// Session is the authenticated identity carried through request context.
// Handlers receive it explicitly; nothing reads ambient storage.
type Session struct {
	UserId string
	Role   user.Role
}

// GenerateToken issues a signed session token carrying user id and role.
func GenerateToken(userId string, role user.Role, secret string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userId,
		"role":    string(role),
		"exp":     time.Now().Add(ttl).Unix(),
		"iat":     time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken validates a token and extracts the session.
func ParseToken(tokenStr, secret string) (Session, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil {
		return Session{}, err
	}
	if !token.Valid {
		return Session{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Session{}, ErrInvalidToken
	}

	userId, ok := claims["user_id"].(string)
	if !ok || userId == "" {
		return Session{}, ErrInvalidToken
	}
	roleStr, ok := claims["role"].(string)
	if !ok {
		return Session{}, ErrInvalidToken
	}
	role := user.Role(roleStr)
	if !role.Valid() {
		return Session{}, ErrInvalidToken
	}

	return Session{UserId: userId, Role: role}, nil
}

func ExtractToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}

	parts := strings.Split(auth, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}

	return parts[1]
}
