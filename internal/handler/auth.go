package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/project-vault/internal/apperror"
	"github.com/sakif/project-vault/internal/auth"
	"github.com/sakif/project-vault/internal/service"
)

const stateCookie = "oauth_state"

// AuthHandler signs the admin in and out.
//
// HANDLER RESPONSIBILITIES:
//   - HandleLoginPage      → GET  /login: password form and/or GitHub button
//   - HandleLogin          → POST /login: check the admin password, set cookie
//   - HandleGitHubLogin    → GET  /auth/github/login: redirect to GitHub
//   - HandleGitHubCallback → GET  /auth/github/callback: code → user → cookie
//   - HandleLogout         → POST /logout: clear the cookie
//   - HandleMe             → GET  /api/me: who is signed in
//
// github is nil when GitHub sign-in is not configured; the routes are then
// not mounted and the login page hides the button.
type AuthHandler struct {
	service      *service.AuthService
	github       *auth.GitHubProvider
	views        *Views
	tokenTTL     time.Duration
	secureCookie bool
	logger       *slog.Logger
}

func NewAuthHandler(
	svc *service.AuthService,
	github *auth.GitHubProvider,
	views *Views,
	tokenTTL time.Duration,
	secureCookie bool,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		service:      svc,
		github:       github,
		views:        views,
		tokenTTL:     tokenTTL,
		secureCookie: secureCookie,
		logger:       logger,
	}
}

type loginView struct {
	layout
	Next            string
	PasswordEnabled bool
	GitHubEnabled   bool
}

func (h *AuthHandler) renderLogin(w http.ResponseWriter, r *http.Request, status int, next string, flash *Flash) {
	h.views.render(w, status, "login", loginView{
		layout: layout{
			Title:  "Sign in",
			Active: "login",
			Flash:  flash,
		},
		Next:            next,
		PasswordEnabled: h.service.PasswordLoginEnabled(),
		GitHubEnabled:   h.github != nil,
	})
}

func (h *AuthHandler) HandleLoginPage(w http.ResponseWriter, r *http.Request) {
	h.renderLogin(w, r, http.StatusOK, safeNext(r.URL.Query().Get("next")), popFlash(w, r))
}

// HandleLogin checks the submitted admin password.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	next := safeNext(r.PostFormValue("next"))

	result, err := h.service.LoginWithPassword(r.Context(), r.PostFormValue("password"))
	if err != nil {
		status, _ := statusFor(err)
		h.renderLogin(w, r, status, next, errorFlash(err))
		return
	}

	auth.SetTokenCookie(w, result.Token, h.tokenTTL, h.secureCookie)
	http.Redirect(w, r, next, http.StatusSeeOther)
}

// HandleGitHubLogin redirects the browser to GitHub's consent page.
//
// CSRF PROTECTION VIA STATE:
// A random state value goes both into a short-lived HttpOnly cookie and into
// the authorize URL. The callback only proceeds if the two match, which
// proves this server started the flow.
func (h *AuthHandler) HandleGitHubLogin(w http.ResponseWriter, r *http.Request) {
	state := xid.New().String()

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.github.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleGitHubCallback completes the OAuth flow.
//
// FLOW:
//  1. Validate the state parameter (CSRF check)
//  2. Exchange the code for a GitHub profile
//  3. AuthService checks the allowlist, upserts the user, issues a JWT
//  4. Set the cookie and go to /admin
func (h *AuthHandler) HandleGitHubCallback(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(stateCookie)
	if err != nil || cookie.Value == "" || r.URL.Query().Get("state") != cookie.Value {
		h.logger.Warn("auth callback: invalid state")
		http.Error(w, "invalid OAuth state", http.StatusBadRequest)
		return
	}

	// single use
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Path: "/", MaxAge: -1})

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Info("auth callback: user denied authorization", slog.String("error", errParam))
		setFlash(w, FlashError, "GitHub sign-in was cancelled")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "missing OAuth code", http.StatusBadRequest)
		return
	}

	ghUser, err := h.github.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("auth callback: GitHub exchange failed", slog.String("error", err.Error()))
		setFlash(w, FlashError, "GitHub sign-in failed")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	result, err := h.service.LoginOrRegisterGitHub(r.Context(), ghUser)
	if err != nil {
		status, _ := statusFor(err)
		if !errors.Is(err, apperror.ErrForbidden) {
			h.logger.Error("auth callback: login failed", slog.String("error", err.Error()))
		}
		h.renderLogin(w, r, status, "/admin", errorFlash(err))
		return
	}

	auth.SetTokenCookie(w, result.Token, h.tokenTTL, h.secureCookie)
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// HandleLogout deletes the token cookie. POST, because signing out changes
// state and must not be triggered by a prefetch.
//
// The JWT itself stays valid until it expires; without the cookie the
// browser simply stops sending it.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	auth.ClearTokenCookie(w)
	setFlash(w, FlashSuccess, "Signed out")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleMe returns the signed-in identity. Behind RequireAuth.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	subject, ok := auth.SubjectFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("valid authentication required"))
		return
	}

	user, err := h.service.GetUserByID(r.Context(), subject)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// safeNext keeps post-login redirects on this site: only absolute paths,
// never "//host" or a full URL.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/admin"
	}
	return next
}
