package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/xavion03/openings-tierlist/internal/adapters/malapi"
	"github.com/xavion03/openings-tierlist/internal/ports"
)

// CredentialService owns the OAuth token lifecycle: liveness probe, silent
// refresh, durable rewrite of the credential file. Refresh failure is
// terminal — it means the human has to re-authorize out of band.
type CredentialService struct {
	repo   ports.CredentialRepository
	api    *malapi.Client
	logger zerolog.Logger
}

func NewCredentialService(logger zerolog.Logger, repo ports.CredentialRepository, api *malapi.Client) *CredentialService {
	return &CredentialService{repo: repo, api: api, logger: logger}
}

// AccessToken returns the currently persisted access token.
func (s *CredentialService) AccessToken(ctx context.Context) (string, error) {
	cred, err := s.repo.Load(ctx)
	if err != nil {
		return "", err
	}
	return cred.AccessToken, nil
}

// Validate probes the remote with the current token. false means the token
// is expired or invalid; a 5xx comes back as a distinct server error so it
// is never read as "invalid token".
func (s *CredentialService) Validate(ctx context.Context) (bool, error) {
	cred, err := s.repo.Load(ctx)
	if err != nil {
		return false, err
	}
	err = s.api.ValidateToken(ctx, cred.AccessToken)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, malapi.ErrUnauthorized):
		return false, nil
	case malapi.IsServerError(err):
		return false, coded(CodeRemoteServerError, "token validation hit a server error", err)
	default:
		return false, coded(CodeNetworkError, "token validation failed", err)
	}
}

// Refresh exchanges the refresh token for a new pair, rewrites the
// credential file (merge, atomic) and re-validates. Not retried: a rejected
// refresh token is a terminal auth failure.
func (s *CredentialService) Refresh(ctx context.Context) error {
	cred, err := s.repo.Load(ctx)
	if err != nil {
		return err
	}

	fresh, err := s.api.RefreshToken(ctx, cred.ClientID, cred.RefreshToken)
	if err != nil {
		if errors.Is(err, malapi.ErrUnauthorized) {
			return coded(CodeAuthError, "refresh token rejected, re-authorization required", err)
		}
		if malapi.IsServerError(err) {
			return coded(CodeRemoteServerError, "token refresh hit a server error", err)
		}
		return coded(CodeNetworkError, "token refresh failed", err)
	}

	if err := s.repo.Save(ctx, fresh); err != nil {
		return coded(CodeIOError, "persisting refreshed tokens failed", err)
	}
	s.logger.Info().Msg("tokens refreshed")

	ok, err := s.Validate(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return coded(CodeAuthError, "refreshed token still rejected", nil)
	}
	return nil
}

// EnsureValid runs the validate-then-refresh dance once: a stale access
// token triggers exactly one refresh exchange.
func (s *CredentialService) EnsureValid(ctx context.Context) error {
	ok, err := s.Validate(ctx)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	s.logger.Warn().Msg("access token invalid, refreshing")
	if err := s.Refresh(ctx); err != nil {
		return fmt.Errorf("refresh after failed validation: %w", err)
	}
	return nil
}
