package middlewares

import (
	"encoding/base64"
	"os"
	"strings"

	"github.com/dgrijalva/jwt-go"
	"github.com/gofiber/fiber/v2"
	"github.com/zsmartex/venuex/controllers/auth"
	"github.com/zsmartex/venuex/controllers/helpers"
)

var (
	AuthzInvalidSession = "authz.invalid_session"
	JwtDecodeAndVerify  = "jwt.decode_and_verify"
)

// Authenticate verifies the RS256 bearer token against JWT_PUBLIC_KEY
// (base64 encoded PEM) and stores the claims as CurrentUser.
func Authenticate(c *fiber.Ctx) error {
	var claims auth.Auth

	token := c.Get("Authorization")

	if len(token) == 0 {
		return c.Status(401).JSON(helpers.Errors{
			Errors: []string{AuthzInvalidSession},
		})
	}

	token = strings.Replace(token, "Bearer ", "", -1)

	public_key_pem, err := base64.StdEncoding.DecodeString(os.Getenv("JWT_PUBLIC_KEY"))

	if err != nil {
		return c.Status(500).JSON(helpers.Errors{
			Errors: []string{helpers.ServerInternalError},
		})
	}

	public_key, err := jwt.ParseRSAPublicKeyFromPEM(public_key_pem)

	if err != nil {
		return c.Status(500).JSON(helpers.Errors{
			Errors: []string{helpers.ServerInternalError},
		})
	}

	_, err = jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, jwt.ErrSignatureInvalid
		}

		return public_key, nil
	})

	if err != nil {
		return c.Status(401).JSON(helpers.Errors{
			Errors: []string{JwtDecodeAndVerify},
		})
	}

	c.Locals("CurrentUser", &claims)

	return c.Next()
}
