package usecase

import (
	"circulation-engine/internal/pkg/jwt"

	"github.com/google/uuid"
)

// TokenValidator provides token validation for middleware
type TokenValidator interface {
	ValidateToken(tokenString string) (patronID, libraryID uuid.UUID, err error)
}

type tokenValidatorImpl struct {
	jwtService *jwt.Service
}

func NewTokenValidator(jwtService *jwt.Service) TokenValidator {
	return &tokenValidatorImpl{
		jwtService: jwtService,
	}
}

func (t *tokenValidatorImpl) ValidateToken(tokenString string) (uuid.UUID, uuid.UUID, error) {
	claims, err := t.jwtService.ValidateToken(tokenString)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}

	// Refresh tokens only buy new access tokens.
	if claims.TokenType != jwt.TokenTypeAccess {
		return uuid.Nil, uuid.Nil, jwt.ErrInvalidToken
	}

	return claims.PatronID, claims.LibraryID, nil
}
