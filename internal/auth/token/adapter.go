package token

import (
	"visitreg/internal/platform/middleware"
)

// MiddlewareAdapter exposes JWTService through the middleware validator
// interface.
type MiddlewareAdapter struct {
	service *JWTService
}

func NewMiddlewareAdapter(service *JWTService) *MiddlewareAdapter {
	return &MiddlewareAdapter{service: service}
}

func (a *MiddlewareAdapter) ValidateToken(tokenString string) (*middleware.JWTClaims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return &middleware.JWTClaims{
		IdentityID: claims.IdentityID,
		Username:   claims.Username,
		Staff:      claims.Staff,
		Groups:     claims.Groups,
	}, nil
}
