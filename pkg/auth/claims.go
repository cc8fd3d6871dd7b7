package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/talgatbekov/bazarline-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID string
	Role   enums.MemberRole
	JTI    string
}

// AccessTokenClaims represents the typed JWT issued to clients. The
// registered claim ID doubles as the authentication-session marker the
// manager gate watches for changes.
type AccessTokenClaims struct {
	UserID string           `json:"user_id"`
	Role   enums.MemberRole `json:"role"`
	jwt.RegisteredClaims
}
