package utils

import (
	"time" // Token issue timestamp

	"github.com/golang-jwt/jwt/v5" // JWT library
	"github.com/google/uuid"       // User identifiers
)

// APIKeyClaims is the payload of an issued api key
type APIKeyClaims struct {
	UserID               string `json:"user_id"` // Custom claim for user ID
	jwt.RegisteredClaims        // Standard JWT claims
}

// MintAPIKey creates the signed api key handed out at registration. Keys
// identify, they do not expire; revocation would mean deleting the user,
// which this system never does.
func MintAPIKey(userID uuid.UUID, secret string) (string, error) {
	claims := APIKeyClaims{
		UserID: userID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseAPIKey validates a presented api key and returns the user id it names
func ParseAPIKey(apiKey, secret string) (uuid.UUID, error) {
	token, err := jwt.ParseWithClaims(apiKey, &APIKeyClaims{}, func(token *jwt.Token) (any, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	claims, ok := token.Claims.(*APIKeyClaims)
	if !ok || !token.Valid {
		return uuid.Nil, jwt.ErrSignatureInvalid
	}
	return uuid.Parse(claims.UserID)
}
