package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/bshishov/timelinewiki/internal/core/domain"
	"github.com/bshishov/timelinewiki/internal/core/ports"
	"github.com/bshishov/timelinewiki/internal/core/resources"
	"github.com/bshishov/timelinewiki/internal/core/validation"
)

var ErrUnauthorized = errors.New("unauthorized")

type AuthService struct {
	repo  ports.APIKeyRepository
	input *InputValidator
}

func NewAuthService(repo ports.APIKeyRepository, input *InputValidator) *AuthService {
	return &AuthService{repo: repo, input: input}
}

func (s *AuthService) Authenticate(ctx context.Context, token string) (domain.APIKey, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.APIKey{}, ErrUnauthorized
	}

	hash := HashToken(token)
	apiKey, err := s.repo.FindByTokenHash(ctx, hash)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.APIKey{}, ErrUnauthorized
		}
		return domain.APIKey{}, err
	}
	if !apiKey.Active {
		return domain.APIKey{}, ErrUnauthorized
	}
	return apiKey, nil
}

// Login checks a login body: value is the API key token and email must name
// its owner.
func (s *AuthService) Login(ctx context.Context, input validation.Mapping) (domain.APIKey, error) {
	if err := s.input.Check(ctx, resources.Login, input); err != nil {
		return domain.APIKey{}, err
	}
	email, _ := stringField(input, "email")
	token, _ := stringField(input, "value")

	apiKey, err := s.Authenticate(ctx, token)
	if err != nil {
		return domain.APIKey{}, err
	}
	if !strings.EqualFold(strings.TrimSpace(email), apiKey.Email) {
		return domain.APIKey{}, ErrUnauthorized
	}
	return apiKey, nil
}

// Logout deactivates the key. The token stops working immediately.
func (s *AuthService) Logout(ctx context.Context, apiKey domain.APIKey) error {
	apiKey.Active = false
	return s.repo.Upsert(ctx, apiKey)
}

func HashToken(token string) string {
	digest := sha256.Sum256([]byte(token))
	return hex.EncodeToString(digest[:])
}
