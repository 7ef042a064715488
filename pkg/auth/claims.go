package auth

import (
	"github.com/estatehub/estatehub-backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the identity embedded in a minted JWT.
type AccessTokenPayload struct {
	UserID uuid.UUID
	Role   enums.UserRole
	JTI    string
}

// AccessTokenClaims is the token issued by the identity provider.
type AccessTokenClaims struct {
	UserID uuid.UUID      `json:"user_id"`
	Role   enums.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// CanManage reports whether the caller may modify a listing owned by sellerID.
func (c *AccessTokenClaims) CanManage(sellerID uuid.UUID) bool {
	if c == nil {
		return false
	}
	return c.Actor().CanManage(sellerID)
}

// Actor strips the token down to the identity services care about.
func (c *AccessTokenClaims) Actor() Actor {
	if c == nil {
		return Actor{}
	}
	return Actor{UserID: c.UserID, Role: c.Role}
}

// Actor is the authenticated caller as seen by the service layer.
type Actor struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

func (a Actor) IsAdmin() bool {
	return a.Role == enums.UserRoleAdmin
}

// CanManage is true for admins and for the listing's own seller.
func (a Actor) CanManage(sellerID uuid.UUID) bool {
	if a.UserID == uuid.Nil {
		return false
	}
	return a.IsAdmin() || a.UserID == sellerID
}
