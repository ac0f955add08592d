package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"cityportal/config"

	"github.com/golang-jwt/jwt"
)

const devSecret = "cityportal-dev-secret"

// Claims is the subset of token claims the API relies on.
type Claims struct {
	Subject  string
	Email    string
	DeviceID string
	Expires  time.Time
}

func secretKey() []byte {
	if s := config.AppConfig.JWTSecret; s != "" {
		return []byte(s)
	}
	return []byte(devSecret)
}

// GenerateToken creates a signed JWT for the user and device. The token expires after duration.
func GenerateToken(subject, email, deviceID string, duration time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":    subject,
		"email":  email,
		"device": deviceID,
		"iat":    now.Unix(),
		"exp":    now.Add(duration).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secretKey())
}

// HashToken computes a SHA-256 hash of the token string.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// ValidateToken parses and validates a token string and returns the token if valid.
func ValidateToken(tokenString string) (*jwt.Token, error) {
	return jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secretKey(), nil
	})
}

// ExtractClaims validates the token and returns its claims.
func ExtractClaims(tokenString string) (*Claims, error) {
	token, err := ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	sub, ok := mc["sub"].(string)
	if !ok || sub == "" {
		return nil, errors.New("token does not contain a valid 'sub' claim")
	}

	out := &Claims{Subject: sub}
	out.Email, _ = mc["email"].(string)
	out.DeviceID, _ = mc["device"].(string)
	if exp, ok := mc["exp"].(float64); ok {
		out.Expires = time.Unix(int64(exp), 0)
	}
	return out, nil
}

// ExtractIDFromToken extracts the subject from a valid JWT token string.
func ExtractIDFromToken(tokenString string) (string, error) {
	c, err := ExtractClaims(tokenString)
	if err != nil {
		return "", err
	}
	return c.Subject, nil
}
