// Package httpserver exposes the JSON API over HTTP.
package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/sessions"
	"go.uber.org/zap"

	"github.com/sportsmatch/sportsmatch/internal/errs"
	"github.com/sportsmatch/sportsmatch/internal/loader"
	"github.com/sportsmatch/sportsmatch/internal/model"
	"github.com/sportsmatch/sportsmatch/internal/relay"
	"github.com/sportsmatch/sportsmatch/internal/repository"
	"github.com/sportsmatch/sportsmatch/internal/service"
)

const (
	flowSessionName = "login_flow"
	flowSessionTTL  = 3600

	tokenCookieName = "token"
	tokenCookieTTL  = 24 * 60 * 60
)

// Config carries the HTTP surface settings.
type Config struct {
	// SessionKey signs the transient login flow cookie.
	SessionKey []byte

	// LandingURL is where the browser is sent after a completed login.
	LandingURL string

	// SecureCookies marks all cookies Secure; off for local development.
	SecureCookies bool
}

// Server handles the JSON API. Loader bundles are built per request from
// Repos; nothing loaded for one request is visible to another.
// Login flows are keyed by the provider path segment, one flow service
// per configured provider.
type Server struct {
	browse service.BrowseService
	auths  map[string]service.ExternalAuthService
	tokens service.SessionTokenService
	repos  loader.Repos

	flow   *sessions.CookieStore
	log    *zap.Logger
	config Config
}

// NewServer constructs the API server with required dependencies.
func NewServer(browse service.BrowseService, auths map[string]service.ExternalAuthService, tokens service.SessionTokenService, repos loader.Repos, log *zap.Logger, config Config) *Server {
	flow := sessions.NewCookieStore(config.SessionKey)
	flow.Options = &sessions.Options{
		Path:     "/auth",
		MaxAge:   flowSessionTTL,
		HttpOnly: true,
		Secure:   config.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	}
	return &Server{
		browse: browse,
		auths:  auths,
		tokens: tokens,
		repos:  repos,
		flow:   flow,
		log:    log,
		config: config,
	}
}

// RegisterRoutes mounts all handlers on mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /auth/{provider}", s.handleLogin)
	mux.HandleFunc("GET /auth/{provider}/callback", s.handleLoginCallback)
	mux.HandleFunc("GET /recruitments", s.handleRecruitments)
	mux.HandleFunc("GET /recruitments/{id}", s.handleRecruitment)
	mux.HandleFunc("GET /users/{id}", s.handleUser)
	mux.HandleFunc("GET /users/{id}/recruitments", s.handleUserRecruitments)
	mux.HandleFunc("GET /users/{id}/stocks", s.handleUserStocks)
	mux.HandleFunc("GET /users/{id}/following", s.handleUserFollowing)
	mux.HandleFunc("GET /healthz", handleHealthz)
}

// Handler wraps the routed mux with the middleware stack.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)

	var h http.Handler = mux
	h = s.WithViewer(h)
	h = Logging(s.log)(h)
	h = Recover(s.log)(h)
	return h
}

// WithViewer resolves the session token cookie into the viewer id.
// Requests without a valid token proceed anonymously.
func (s *Server) WithViewer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie(tokenCookieName); err == nil {
			if id, err := s.tokens.Parse(c.Value); err == nil {
				r = r.WithContext(WithViewerID(r.Context(), id))
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) loginFlow(w http.ResponseWriter, r *http.Request) (service.ExternalAuthService, bool) {
	auth, ok := s.auths[r.PathValue("provider")]
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "unknown provider"})
		return nil, false
	}
	return auth, true
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	auth, ok := s.loginFlow(w, r)
	if !ok {
		return
	}
	attempt, err := auth.BeginLogin(r.Context())
	if err != nil {
		s.writeServerError(w, "begin login", err)
		return
	}

	session, _ := s.flow.New(r, flowSessionName)
	session.Values["state"] = attempt.State
	session.Values["pkce_verifier"] = attempt.Verifier
	session.Values["nonce"] = attempt.Nonce
	if err := session.Save(r, w); err != nil {
		s.writeServerError(w, "save login flow", err)
		return
	}

	http.Redirect(w, r, attempt.RedirectURL, http.StatusFound)
}

func (s *Server) handleLoginCallback(w http.ResponseWriter, r *http.Request) {
	auth, ok := s.loginFlow(w, r)
	if !ok {
		return
	}
	cb := service.CallbackParams{
		State: r.URL.Query().Get("state"),
		Code:  r.URL.Query().Get("code"),
	}
	session, err := s.flow.Get(r, flowSessionName)
	if err == nil && !session.IsNew {
		cb.StoredState, _ = session.Values["state"].(string)
		cb.StoredVerifier, _ = session.Values["pkce_verifier"].(string)
		cb.StoredNonce, _ = session.Values["nonce"].(string)
	}

	// The flow cookie is single use regardless of the outcome.
	if session != nil {
		session.Options.MaxAge = -1
		_ = session.Save(r, w)
	}

	token, err := auth.CompleteLogin(r.Context(), cb)
	if err != nil {
		if errors.Is(err, errs.ErrLoginRejected) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "login rejected"})
			return
		}
		s.writeServerError(w, "complete login", err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   tokenCookieTTL,
		HttpOnly: true,
		Secure:   s.config.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, s.config.LandingURL, http.StatusFound)
}

func (s *Server) handleRecruitments(w http.ResponseWriter, r *http.Request) {
	first, after, err := pageParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	conn, err := s.browse.PublishedRecruitments(r.Context(), first, after)
	if err != nil {
		s.writeBrowseError(w, err)
		return
	}
	s.writeRecruitmentPage(w, r, conn)
}

func (s *Server) handleRecruitment(w http.ResponseWriter, r *http.Request) {
	id, err := relay.DecodeTypedID(service.KindRecruitment, r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	rec, err := s.browse.Recruitment(r.Context(), id)
	if err != nil {
		s.writeBrowseError(w, err)
		return
	}

	var viewer *int64
	if vid, ok := ViewerIDFromCtx(r.Context()); ok {
		viewer = &vid
	}
	bundle := loader.NewBundle(s.repos)
	view, err := renderRecruitment(r.Context(), bundle, *rec, viewer)
	if err != nil {
		s.writeServerError(w, "enrich recruitment", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleUser(w http.ResponseWriter, r *http.Request) {
	id, err := relay.DecodeTypedID(service.KindUser, r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	u, err := s.browse.User(r.Context(), id)
	if err != nil {
		s.writeBrowseError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newUserView(*u))
}

func (s *Server) handleUserRecruitments(w http.ResponseWriter, r *http.Request) {
	userID, err := relay.DecodeTypedID(service.KindUser, r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	first, after, err := pageParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	filter, err := statusFilter(r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	conn, err := s.browse.UserRecruitments(r.Context(), userID, filter, first, after)
	if err != nil {
		s.writeBrowseError(w, err)
		return
	}
	s.writeRecruitmentPage(w, r, conn)
}

func (s *Server) handleUserStocks(w http.ResponseWriter, r *http.Request) {
	userID, err := relay.DecodeTypedID(service.KindUser, r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	first, after, err := pageParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	conn, err := s.browse.StockedRecruitments(r.Context(), userID, first, after)
	if err != nil {
		s.writeBrowseError(w, err)
		return
	}
	s.writeRecruitmentPage(w, r, conn)
}

func (s *Server) handleUserFollowing(w http.ResponseWriter, r *http.Request) {
	userID, err := relay.DecodeTypedID(service.KindUser, r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	first, after, err := pageParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	conn, err := s.browse.Following(r.Context(), userID, first, after)
	if err != nil {
		s.writeBrowseError(w, err)
		return
	}

	var viewer *int64
	if id, ok := ViewerIDFromCtx(r.Context()); ok {
		viewer = &id
	}
	bundle := loader.NewBundle(s.repos)
	view, err := renderUserConnection(r.Context(), bundle, conn, viewer)
	if err != nil {
		s.writeServerError(w, "enrich following", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) writeRecruitmentPage(w http.ResponseWriter, r *http.Request, conn relay.Connection[model.Recruitment]) {
	var viewer *int64
	if id, ok := ViewerIDFromCtx(r.Context()); ok {
		viewer = &id
	}
	bundle := loader.NewBundle(s.repos)
	view, err := renderRecruitmentConnection(r.Context(), bundle, conn, viewer)
	if err != nil {
		s.writeServerError(w, "enrich recruitments", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) writeBrowseError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	case errors.Is(err, relay.ErrMissingParameters),
		errors.Is(err, relay.ErrMissingLimit),
		errors.Is(err, relay.ErrEmptyCursor),
		errors.Is(err, relay.ErrBadCursor):
		writeError(w, http.StatusBadRequest, err)
	default:
		s.writeServerError(w, "browse", err)
	}
}

func (s *Server) writeServerError(w http.ResponseWriter, op string, err error) {
	s.log.Error(op, zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal"})
}

func handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// pageParams reads the first and after query values. Both stay nil when
// absent so the page validation layer can tell "missing" from "empty".
func pageParams(r *http.Request) (*int32, *string, error) {
	q := r.URL.Query()

	var first *int32
	if raw := q.Get("first"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 32)
		if err != nil || n <= 0 {
			return nil, nil, errors.New("first must be a positive integer")
		}
		v := int32(n)
		first = &v
	}
	var after *string
	if q.Has("after") {
		v := q.Get("after")
		after = &v
	}
	return first, after, nil
}

func statusFilter(raw string) (repository.RecruitmentFilter, error) {
	switch model.RecruitmentStatus(raw) {
	case "":
		return repository.RecruitmentFilter{}, nil
	case model.StatusDraft, model.StatusPublished, model.StatusClosed:
		return repository.RecruitmentFilter{UseStatus: true, Status: model.RecruitmentStatus(raw)}, nil
	default:
		return repository.RecruitmentFilter{}, errors.New("unknown status")
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
