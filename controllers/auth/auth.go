package auth

import (
	"github.com/dgrijalva/jwt-go"
	"github.com/gofiber/fiber/v2"
)

// Auth struct represents parsed jwt information.
type Auth struct {
	UID      string   `json:"uid"`
	State    string   `json:"state"`
	Email    string   `json:"email"`
	Role     string   `json:"role"`
	Audience []string `json:"aud,omitempty"`

	jwt.StandardClaims
}

func (a *Auth) IsAdmin() bool {
	return a.Role == "admin" || a.Role == "superadmin"
}

// GetCurrentUser returns the claims stored by the Authenticate middleware.
func GetCurrentUser(c *fiber.Ctx) *Auth {
	current_user, ok := c.Locals("CurrentUser").(*Auth)
	if !ok {
		return nil
	}

	return current_user
}
