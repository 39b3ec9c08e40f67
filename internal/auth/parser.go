package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/redlitmus-in/MeterSquare-sub008/internal/model"
)

var ErrInvalidToken = errors.New("invalid access token")

type Parser struct {
	secret []byte
}

func NewParser(accessSecret string) *Parser {
	return &Parser{secret: []byte(accessSecret)}
}

type accessClaims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Parse validates an HS256 access token and extracts the principal.
func (p *Parser) Parse(tokenString string) (model.Principal, error) {
	var claims accessClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return p.secret, nil
	})
	if err != nil || !token.Valid {
		return model.Principal{}, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return model.Principal{}, ErrInvalidToken
	}
	return model.Principal{
		UserID: userID,
		Role:   model.ApproverRole(claims.Role),
	}, nil
}
