package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rbustosc/fieldsync/internal/common"
	"github.com/rbustosc/fieldsync/internal/server/auth"
	"github.com/rbustosc/fieldsync/internal/server/config"
	"github.com/rbustosc/fieldsync/internal/server/repositories/repomanager"
)

// DeviceService authenticates field terminals. A login presents the device
// code and shared secret; success yields a session token carrying the
// device and company ids.
type DeviceService struct {
	db            *sql.DB
	repomanager   repomanager.RepositoryManager
	jwtSecret     []byte
	tokenValidity time.Duration
}

func NewDeviceService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *DeviceService {
	return &DeviceService{
		db:            db,
		repomanager:   m,
		jwtSecret:     []byte(cfg.SecretKey),
		tokenValidity: cfg.TokenValidityDuration,
	}
}

// Login verifies the secret against the stored bcrypt hash and issues a
// token. Unknown codes and wrong secrets are indistinguishable to the
// caller.
func (s *DeviceService) Login(ctx context.Context, code, secret string) (string, error) {
	repo := s.repomanager.Devices(s.db)

	device, err := repo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return "", common.ErrUnauthorized
		}
		return "", fmt.Errorf("error searching device: %w", err)
	}

	if !auth.CheckSecret(device.SecretHash, secret) {
		return "", common.ErrUnauthorized
	}

	token, err := auth.GenerateToken(device.ID, device.CompanyID, s.jwtSecret, s.tokenValidity)
	if err != nil {
		return "", fmt.Errorf("error generating token: %w", err)
	}

	return token, nil
}
