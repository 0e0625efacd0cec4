package api

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/rbustosc/fieldsync/internal/common"
	"github.com/rbustosc/fieldsync/internal/syncapi"
)

func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) handleLogin(c *fiber.Ctx) error {
	var req syncapi.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "malformed body")
	}
	if err := s.validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	token, err := s.devices.Login(c.UserContext(), req.DeviceCode, req.Secret)
	if err != nil {
		if errors.Is(err, common.ErrUnauthorized) {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid device credentials")
		}
		s.logger.Error(c.UserContext(), fmt.Sprintf("login failed: %s", err.Error()))
		return fiber.NewError(fiber.StatusInternalServerError, "internal error")
	}

	return c.JSON(syncapi.LoginResponse{AccessToken: token})
}

func (s *Server) handleCatalog(c *fiber.Ctx) error {
	claims := sessionClaims(c)

	catalog, err := s.catalog.Catalog(c.UserContext(), claims.CompanyID)
	if err != nil {
		s.logger.Error(c.UserContext(), fmt.Sprintf("catalog failed: %s", err.Error()))
		return fiber.NewError(fiber.StatusInternalServerError, "internal error")
	}

	return c.JSON(catalog)
}

func (s *Server) handleSync(c *fiber.Ctx) error {
	claims := sessionClaims(c)

	var req syncapi.PushRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "malformed body")
	}
	if err := s.validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	results := s.sync.Apply(c.UserContext(), claims.DeviceID, claims.CompanyID, req.Operations)
	return c.JSON(syncapi.PushResponse{Results: results})
}
