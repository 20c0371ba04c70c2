// Package service implements the business logic between HTTP handlers and
// the repository layer: validation of domain rules, ownership checks, the
// inventory transition contract and notification triggers.
package service

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/eventra/event-ticketing/internal/apperr"
	"github.com/eventra/event-ticketing/internal/model"
	"github.com/eventra/event-ticketing/internal/repository"
	"github.com/eventra/event-ticketing/internal/utils"
)

// TokenPair is the credential set returned by signup, login and refresh.
type TokenPair struct {
	Access  utils.AccessToken  `json:"access"`
	Refresh utils.RefreshToken `json:"refresh"`
}

// AuthService handles signup, login and refresh-token rotation.
type AuthService struct {
	accounts       repository.AccountRepo
	tokens         repository.TokenRepo
	jwtSecret      string
	accessTTLMin   int
	refreshTTLDays int
	bcryptCost     int
}

// NewAuthService constructs an AuthService.
func NewAuthService(accounts repository.AccountRepo, tokens repository.TokenRepo, jwtSecret string, accessTTLMin, refreshTTLDays, bcryptCost int) *AuthService {
	return &AuthService{
		accounts:       accounts,
		tokens:         tokens,
		jwtSecret:      jwtSecret,
		accessTTLMin:   accessTTLMin,
		refreshTTLDays: refreshTTLDays,
		bcryptCost:     bcryptCost,
	}
}

// SignupInput is the validated signup payload.
type SignupInput struct {
	Name     string
	Email    string
	Password string
	Role     model.Role
}

// Signup creates an account and issues an initial token pair. The role is
// fixed here and never changes afterwards.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (model.Account, TokenPair, error) {
	if !in.Role.Valid() {
		return model.Account{}, TokenPair{}, apperr.Validation("role", "role must be customer or organizer")
	}
	hash, err := utils.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return model.Account{}, TokenPair{}, apperr.Internal(err)
	}
	account := model.Account{
		ID:           uuid.New(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         in.Role,
	}
	if err := s.accounts.Create(ctx, &account); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return model.Account{}, TokenPair{}, apperr.Conflict("email already registered", http.StatusConflict)
		}
		return model.Account{}, TokenPair{}, apperr.Internal(err)
	}
	pair, err := s.issueTokens(ctx, account)
	if err != nil {
		return model.Account{}, TokenPair{}, err
	}
	return account, pair, nil
}

// Login verifies credentials and issues a token pair. Wrong email and wrong
// password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (model.Account, TokenPair, error) {
	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Account{}, TokenPair{}, apperr.Unauthenticated("invalid email or password")
		}
		return model.Account{}, TokenPair{}, apperr.Internal(err)
	}
	if !utils.VerifyPassword(account.PasswordHash, password) {
		return model.Account{}, TokenPair{}, apperr.Unauthenticated("invalid email or password")
	}
	pair, err := s.issueTokens(ctx, account)
	if err != nil {
		return model.Account{}, TokenPair{}, err
	}
	return account, pair, nil
}

// Refresh exchanges a live refresh token for a new pair, rotating the old
// token out.
func (s *AuthService) Refresh(ctx context.Context, rawRefresh string) (TokenPair, error) {
	hash := utils.HashRefreshRaw(rawRefresh)
	accountID, err := s.tokens.Validate(ctx, hash)
	if err != nil {
		if errors.Is(err, repository.ErrTokenInvalid) {
			return TokenPair{}, apperr.Unauthenticated("invalid refresh token")
		}
		return TokenPair{}, apperr.Internal(err)
	}
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return TokenPair{}, apperr.Unauthenticated("invalid refresh token")
	}
	if err := s.tokens.Revoke(ctx, hash); err != nil {
		return TokenPair{}, apperr.Internal(err)
	}
	return s.issueTokens(ctx, account)
}

// Logout revokes a refresh token. Unknown tokens are rejected so a client
// can detect a stale session.
func (s *AuthService) Logout(ctx context.Context, rawRefresh string) error {
	hash := utils.HashRefreshRaw(rawRefresh)
	if _, err := s.tokens.Validate(ctx, hash); err != nil {
		if errors.Is(err, repository.ErrTokenInvalid) {
			return apperr.Unauthenticated("invalid refresh token")
		}
		return apperr.Internal(err)
	}
	if err := s.tokens.Revoke(ctx, hash); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

// Account returns the account for an authenticated subject.
func (s *AuthService) Account(ctx context.Context, id uuid.UUID) (model.Account, error) {
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Account{}, apperr.NotFound("account")
		}
		return model.Account{}, apperr.Internal(err)
	}
	return account, nil
}

func (s *AuthService) issueTokens(ctx context.Context, account model.Account) (TokenPair, error) {
	access, err := utils.NewAccessToken(s.jwtSecret, account.ID, account.Role, s.accessTTLMin)
	if err != nil {
		return TokenPair{}, apperr.Internal(err)
	}
	refresh, err := utils.NewRefreshToken(s.refreshTTLDays)
	if err != nil {
		return TokenPair{}, apperr.Internal(err)
	}
	err = s.tokens.Store(ctx, model.RefreshToken{
		ID:        uuid.New(),
		AccountID: account.ID,
		TokenHash: utils.HashRefreshRaw(refresh.Raw),
		ExpiresAt: refresh.Exp,
	})
	if err != nil {
		return TokenPair{}, apperr.Internal(err)
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}
