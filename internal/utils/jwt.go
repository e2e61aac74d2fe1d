package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var jwtSecret []byte

// InitJWT stores the signing secret. Must be called once at startup before
// any token is generated or validated.
func InitJWT(secret string) {
	jwtSecret = []byte(secret)
}

// Claims carried by seller access tokens.
type Claims struct {
	SellerID int64   `json:"sellerId"`
	Email    string  `json:"email"`
	StoreIDs []int64 `json:"storeIds"`
	jwt.RegisteredClaims
}

// GenerateJWT issues a signed access token for a seller.
func GenerateJWT(sellerID int64, email string, storeIDs []int64) (string, error) {
	if len(jwtSecret) == 0 {
		return "", errors.New("jwt secret not initialized")
	}
	claims := &Claims{
		SellerID: sellerID,
		Email:    email,
		StoreIDs: storeIDs,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			Issuer:    "quadramall-seller-api",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

// ValidateJWT parses and verifies a seller access token.
func ValidateJWT(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
