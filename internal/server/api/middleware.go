package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rbustosc/fieldsync/internal/server/auth"
)

const claimsKey = "claims"

// authMiddleware verifies the bearer token and stores the parsed claims for
// the handlers. The company id used to scope every query comes from here.
func (s *Server) authMiddleware(c *fiber.Ctx) error {
	header := c.Get(fiber.HeaderAuthorization)
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
	}

	claims, err := auth.ParseToken(token, s.jwtSecret)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, err.Error())
	}

	c.Locals(claimsKey, claims)
	return c.Next()
}

func sessionClaims(c *fiber.Ctx) *auth.Claims {
	claims, _ := c.Locals(claimsKey).(*auth.Claims)
	return claims
}
