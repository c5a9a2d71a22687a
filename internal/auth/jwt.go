package auth

import (
	"fmt"
	"time"

	"foodloop-backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

const sessionTTL = 24 * time.Hour

type JWTCustomClaims struct {
	UserID       string              `json:"user_id"`
	Email        string              `json:"email"`
	Name         string              `json:"name,omitempty"`
	Role         models.UserRole     `json:"role"`
	BusinessID   *string             `json:"business_id"`
	BusinessType models.BusinessType `json:"business_type,omitempty"`
	BusinessName string              `json:"business_name,omitempty"`
	jwt.RegisteredClaims
}

func GenerateToken(secret string, id *Identity) (string, error) {
	now := time.Now()
	claims := &JWTCustomClaims{
		UserID:       id.ID,
		Email:        id.Email,
		Name:         id.Name,
		Role:         id.Role,
		BusinessID:   id.BusinessID,
		BusinessType: id.BusinessType,
		BusinessName: id.BusinessName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(sessionTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ParseToken(secret, tokenStr string) (*Identity, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &JWTCustomClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*JWTCustomClaims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, fmt.Errorf("invalid session token")
	}

	return &Identity{
		ID:           claims.UserID,
		Email:        claims.Email,
		Name:         claims.Name,
		Role:         claims.Role,
		BusinessID:   claims.BusinessID,
		BusinessType: claims.BusinessType,
		BusinessName: claims.BusinessName,
	}, nil
}
