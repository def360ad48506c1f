package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid/v5"
	"golang.org/x/oauth2"

	"github.com/sportsmatch/sportsmatch/internal/crypto"
	"github.com/sportsmatch/sportsmatch/internal/errs"
	"github.com/sportsmatch/sportsmatch/internal/model"
	"github.com/sportsmatch/sportsmatch/internal/repository"
)

// IdentityProvider abstracts the external OAuth2/OIDC provider.
type IdentityProvider interface {
	// Name is the provider key stored alongside linked accounts.
	Name() model.AuthenticationProvider

	// AuthCodeURL builds the provider authorization URL carrying the
	// state, the nonce and a code challenge derived from verifier.
	AuthCodeURL(state, nonce, verifier string) string

	// Exchange redeems an authorization code for a raw ID token,
	// presenting the code verifier.
	Exchange(ctx context.Context, code, verifier string) (string, error)

	// VerifyIDToken checks the raw ID token's signature and that its
	// nonce claim equals nonce, then extracts the profile claims.
	VerifyIDToken(ctx context.Context, rawIDToken, nonce string) (model.ExternalUserInfo, error)
}

// LoginAttempt is the transient state of one authorization round trip.
// State, Nonce and Verifier must travel back on the callback request.
type LoginAttempt struct {
	State       string
	Nonce       string
	Verifier    string
	RedirectURL string
}

// CallbackParams carries what the callback request presents: the
// provider's query values and the values stored at BeginLogin time.
type CallbackParams struct {
	State          string
	Code           string
	StoredState    string
	StoredVerifier string
	StoredNonce    string
}

// ExternalAuthService runs one provider's login flow end to end.
// Each configured provider gets its own instance; they share the
// authentication repository and the session token service.
type ExternalAuthService interface {
	// BeginLogin opens a login attempt.
	BeginLogin(ctx context.Context) (*LoginAttempt, error)

	// CompleteLogin consumes the callback, provisioning an account on
	// first login, and returns a signed session token for the user.
	// Attempts the client can retry fail with errs.ErrLoginRejected.
	CompleteLogin(ctx context.Context, cb CallbackParams) (string, error)
}

// ExternalAuthServiceImpl implements ExternalAuthService.
type ExternalAuthServiceImpl struct {
	provider IdentityProvider
	auths    repository.AuthenticationRepository
	tokens   SessionTokenService
}

// NewExternalAuthService constructs ExternalAuthService with required dependencies.
func NewExternalAuthService(provider IdentityProvider, auths repository.AuthenticationRepository, tokens SessionTokenService) *ExternalAuthServiceImpl {
	return &ExternalAuthServiceImpl{provider: provider, auths: auths, tokens: tokens}
}

// BeginLogin mints fresh state, nonce and PKCE verifier values and the
// authorization URL bound to them.
func (s *ExternalAuthServiceImpl) BeginLogin(_ context.Context) (*LoginAttempt, error) {
	state, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("generate state: %w", err)
	}
	nonce, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	a := &LoginAttempt{
		State:    state.String(),
		Nonce:    nonce.String(),
		Verifier: oauth2.GenerateVerifier(),
	}
	a.RedirectURL = s.provider.AuthCodeURL(a.State, a.Nonce, a.Verifier)
	return a, nil
}

// CompleteLogin validates the callback, exchanges the code, verifies the
// ID token and resolves the user, creating user and link rows in one
// transaction when the external identity is seen for the first time.
func (s *ExternalAuthServiceImpl) CompleteLogin(ctx context.Context, cb CallbackParams) (string, error) {
	if cb.StoredState == "" {
		return "", fmt.Errorf("state cookie missing: %w", errs.ErrLoginRejected)
	}
	if cb.State == "" {
		return "", fmt.Errorf("state parameter missing: %w", errs.ErrLoginRejected)
	}
	if cb.State != cb.StoredState {
		return "", fmt.Errorf("state mismatch: %w", errs.ErrLoginRejected)
	}
	if cb.Code == "" {
		return "", fmt.Errorf("code parameter missing: %w", errs.ErrLoginRejected)
	}
	if cb.StoredVerifier == "" {
		return "", fmt.Errorf("verifier cookie missing: %w", errs.ErrLoginRejected)
	}
	if cb.StoredNonce == "" {
		return "", fmt.Errorf("nonce cookie missing: %w", errs.ErrLoginRejected)
	}

	rawIDToken, err := s.provider.Exchange(ctx, cb.Code, cb.StoredVerifier)
	if err != nil {
		return "", fmt.Errorf("exchange code: %w", err)
	}
	info, err := s.provider.VerifyIDToken(ctx, rawIDToken, cb.StoredNonce)
	if err != nil {
		return "", fmt.Errorf("verify id token: %w", err)
	}
	if info.Name == "" {
		return "", fmt.Errorf("provider claims: name is empty")
	}
	if info.Email == "" {
		return "", fmt.Errorf("provider claims: email is empty")
	}

	u, err := s.resolveUser(ctx, info)
	if err != nil {
		return "", err
	}
	return s.tokens.Issue(u.ID)
}

func (s *ExternalAuthServiceImpl) resolveUser(ctx context.Context, info model.ExternalUserInfo) (*model.User, error) {
	u, err := s.auths.GetUserByProviderUID(ctx, s.provider.Name(), info.Subject)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, errs.ErrNotFound) {
		return nil, fmt.Errorf("find linked user: %w", err)
	}

	// First login. The email conflict check runs before the transaction
	// so a taken address never produces partial rows.
	taken, err := s.auths.EmailExists(ctx, info.Email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if taken {
		return nil, fmt.Errorf("email already registered: %w", errs.ErrLoginRejected)
	}

	digest, err := crypto.PlaceholderDigest()
	if err != nil {
		return nil, fmt.Errorf("placeholder digest: %w", err)
	}
	u, err = s.auths.CreateUserWithAuthentication(ctx, s.provider.Name(), info, digest)
	if err != nil {
		return nil, fmt.Errorf("provision user: %w", err)
	}
	return u, nil
}
