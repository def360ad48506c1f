package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/sportsmatch/sportsmatch/internal/errs"
	"github.com/sportsmatch/sportsmatch/internal/model"
	"github.com/sportsmatch/sportsmatch/internal/repository"
)

type fakeProvider struct {
	info model.ExternalUserInfo

	exchangeErr error
	verifyErr   error

	exchangeCalls int
	gotCode       string
	gotVerifier   string
	gotNonce      string
}

var _ IdentityProvider = (*fakeProvider)(nil)

func (f *fakeProvider) Name() model.AuthenticationProvider { return model.ProviderGoogle }

func (f *fakeProvider) AuthCodeURL(state, nonce, verifier string) string {
	return fmt.Sprintf("https://provider.test/auth?state=%s&nonce=%s&v=%s", state, nonce, verifier)
}

func (f *fakeProvider) Exchange(_ context.Context, code, verifier string) (string, error) {
	f.exchangeCalls++
	f.gotCode = code
	f.gotVerifier = verifier
	if f.exchangeErr != nil {
		return "", f.exchangeErr
	}
	return "raw-id-token", nil
}

func (f *fakeProvider) VerifyIDToken(_ context.Context, _, nonce string) (model.ExternalUserInfo, error) {
	f.gotNonce = nonce
	if f.verifyErr != nil {
		return model.ExternalUserInfo{}, f.verifyErr
	}
	return f.info, nil
}

type fakeAuths struct {
	linked     map[string]*model.User
	takenEmail string

	createErr error

	createCalls int
	gotInfo     model.ExternalUserInfo
	gotDigest   string
}

var _ repository.AuthenticationRepository = (*fakeAuths)(nil)

func (f *fakeAuths) GetUserByProviderUID(_ context.Context, _ model.AuthenticationProvider, uid string) (*model.User, error) {
	u, ok := f.linked[uid]
	if !ok {
		return nil, errs.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (f *fakeAuths) EmailExists(_ context.Context, email string) (bool, error) {
	return email == f.takenEmail, nil
}

func (f *fakeAuths) CreateUserWithAuthentication(_ context.Context, _ model.AuthenticationProvider, info model.ExternalUserInfo, passwordDigest string) (*model.User, error) {
	f.createCalls++
	f.gotInfo = info
	f.gotDigest = passwordDigest
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &model.User{ID: 77, Name: info.Name, Email: info.Email}, nil
}

func claimsOf(sub, name, email string) model.ExternalUserInfo {
	return model.ExternalUserInfo{Subject: sub, Name: name, Email: email}
}

func callbackFor(a *LoginAttempt) CallbackParams {
	return CallbackParams{
		State:          a.State,
		Code:           "code-1",
		StoredState:    a.State,
		StoredVerifier: a.Verifier,
		StoredNonce:    a.Nonce,
	}
}

func TestExternalAuth_BeginLogin_FreshAttempts(t *testing.T) {
	t.Parallel()
	s := NewExternalAuthService(&fakeProvider{}, &fakeAuths{}, NewSessionTokens([]byte("k")))

	a, err := s.BeginLogin(context.Background())
	if err != nil {
		t.Fatalf("BeginLogin: %v", err)
	}
	if a.State == "" || a.Nonce == "" || a.Verifier == "" {
		t.Fatalf("empty attempt fields: %+v", a)
	}
	want := fmt.Sprintf("https://provider.test/auth?state=%s&nonce=%s&v=%s", a.State, a.Nonce, a.Verifier)
	if a.RedirectURL != want {
		t.Fatalf("redirect url: %s", a.RedirectURL)
	}

	b, err := s.BeginLogin(context.Background())
	if err != nil {
		t.Fatalf("BeginLogin: %v", err)
	}
	if b.State == a.State || b.Nonce == a.Nonce || b.Verifier == a.Verifier {
		t.Fatalf("attempt values reused across logins")
	}
}

func TestExternalAuth_CompleteLogin_LinkedUser(t *testing.T) {
	t.Parallel()
	p := &fakeProvider{info: claimsOf("sub-1", "Alice", "alice@example.com")}
	auths := &fakeAuths{linked: map[string]*model.User{"sub-1": {ID: 5}}}
	tokens := NewSessionTokens([]byte("k"))
	s := NewExternalAuthService(p, auths, tokens)

	a, _ := s.BeginLogin(context.Background())
	token, err := s.CompleteLogin(context.Background(), callbackFor(a))
	if err != nil {
		t.Fatalf("CompleteLogin: %v", err)
	}
	if auths.createCalls != 0 {
		t.Fatalf("linked login must not provision")
	}
	if p.gotCode != "code-1" || p.gotVerifier != a.Verifier || p.gotNonce != a.Nonce {
		t.Fatalf("provider calls: code=%s verifier=%s nonce=%s", p.gotCode, p.gotVerifier, p.gotNonce)
	}

	id, err := tokens.Parse(token)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if id != 5 {
		t.Fatalf("token subject: %d", id)
	}
}

func TestExternalAuth_CompleteLogin_ProvisionsOnFirstLogin(t *testing.T) {
	t.Parallel()
	p := &fakeProvider{info: claimsOf("sub-9", "Bob", "bob@example.com")}
	auths := &fakeAuths{}
	tokens := NewSessionTokens([]byte("k"))
	s := NewExternalAuthService(p, auths, tokens)

	a, _ := s.BeginLogin(context.Background())
	token, err := s.CompleteLogin(context.Background(), callbackFor(a))
	if err != nil {
		t.Fatalf("CompleteLogin: %v", err)
	}
	if auths.createCalls != 1 {
		t.Fatalf("create calls: %d", auths.createCalls)
	}
	if auths.gotInfo.Subject != "sub-9" || auths.gotInfo.Email != "bob@example.com" {
		t.Fatalf("provisioned claims: %+v", auths.gotInfo)
	}
	if auths.gotDigest == "" {
		t.Fatalf("provisioned without a credential placeholder")
	}

	id, err := tokens.Parse(token)
	if err != nil || id != 77 {
		t.Fatalf("token subject: id=%d err=%v", id, err)
	}
}

func TestExternalAuth_CompleteLogin_RejectsBadCallbacks(t *testing.T) {
	t.Parallel()
	p := &fakeProvider{info: claimsOf("sub-1", "Alice", "alice@example.com")}
	auths := &fakeAuths{}
	s := NewExternalAuthService(p, auths, NewSessionTokens([]byte("k")))

	a, _ := s.BeginLogin(context.Background())

	cases := map[string]func(cb *CallbackParams){
		"missing stored state": func(cb *CallbackParams) { cb.StoredState = "" },
		"missing state param":  func(cb *CallbackParams) { cb.State = "" },
		"state mismatch":       func(cb *CallbackParams) { cb.State = "tampered" },
		"missing code":         func(cb *CallbackParams) { cb.Code = "" },
		"missing verifier":     func(cb *CallbackParams) { cb.StoredVerifier = "" },
		"missing nonce":        func(cb *CallbackParams) { cb.StoredNonce = "" },
	}
	for name, mutate := range cases {
		cb := callbackFor(a)
		mutate(&cb)
		if _, err := s.CompleteLogin(context.Background(), cb); !errors.Is(err, errs.ErrLoginRejected) {
			t.Fatalf("%s: want ErrLoginRejected, got %v", name, err)
		}
	}
	if p.exchangeCalls != 0 {
		t.Fatalf("rejected callbacks must not reach the provider")
	}
	if auths.createCalls != 0 {
		t.Fatalf("rejected callbacks must not write rows")
	}
}

func TestExternalAuth_CompleteLogin_EmailConflict(t *testing.T) {
	t.Parallel()
	p := &fakeProvider{info: claimsOf("sub-9", "Bob", "bob@example.com")}
	auths := &fakeAuths{takenEmail: "bob@example.com"}
	s := NewExternalAuthService(p, auths, NewSessionTokens([]byte("k")))

	a, _ := s.BeginLogin(context.Background())
	if _, err := s.CompleteLogin(context.Background(), callbackFor(a)); !errors.Is(err, errs.ErrLoginRejected) {
		t.Fatalf("want ErrLoginRejected, got %v", err)
	}
	if auths.createCalls != 0 {
		t.Fatalf("conflict must be detected before any insert")
	}
}

func TestExternalAuth_CompleteLogin_ProviderFailures(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	p := &fakeProvider{exchangeErr: errors.New("token endpoint down")}
	s := NewExternalAuthService(p, &fakeAuths{}, NewSessionTokens([]byte("k")))
	a, _ := s.BeginLogin(ctx)
	if _, err := s.CompleteLogin(ctx, callbackFor(a)); err == nil || errors.Is(err, errs.ErrLoginRejected) {
		t.Fatalf("exchange failure must not be client-retryable, got %v", err)
	}

	p = &fakeProvider{verifyErr: errors.New("nonce claim mismatch")}
	s = NewExternalAuthService(p, &fakeAuths{}, NewSessionTokens([]byte("k")))
	a, _ = s.BeginLogin(ctx)
	if _, err := s.CompleteLogin(ctx, callbackFor(a)); err == nil || errors.Is(err, errs.ErrLoginRejected) {
		t.Fatalf("verification failure must not be client-retryable, got %v", err)
	}

	p = &fakeProvider{info: claimsOf("sub-1", "", "alice@example.com")}
	s = NewExternalAuthService(p, &fakeAuths{}, NewSessionTokens([]byte("k")))
	a, _ = s.BeginLogin(ctx)
	if _, err := s.CompleteLogin(ctx, callbackFor(a)); err == nil || errors.Is(err, errs.ErrLoginRejected) {
		t.Fatalf("missing name must not be client-retryable, got %v", err)
	}

	p = &fakeProvider{info: claimsOf("sub-1", "Alice", "")}
	s = NewExternalAuthService(p, &fakeAuths{}, NewSessionTokens([]byte("k")))
	a, _ = s.BeginLogin(ctx)
	if _, err := s.CompleteLogin(ctx, callbackFor(a)); err == nil || errors.Is(err, errs.ErrLoginRejected) {
		t.Fatalf("missing email must not be client-retryable, got %v", err)
	}
}

