package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func subjectEcho(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject, _ := SubjectFromContext(r.Context())
		_, _ = w.Write([]byte(subject))
	})
}

func TestRequireAuth(t *testing.T) {
	ts := newTestTokenService(t)
	valid, err := ts.Generate("admin")
	require.NoError(t, err)
	expired, err := ts.GenerateWithDuration("admin", -time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name       string
		prepare    func(r *http.Request)
		wantStatus int
		wantBody   string
	}{
		{"no credentials", func(*http.Request) {}, http.StatusUnauthorized, ""},
		{"cookie", func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: CookieName, Value: valid})
		}, http.StatusOK, "admin"},
		{"bearer header", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+valid)
		}, http.StatusOK, "admin"},
		{"expired cookie", func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: CookieName, Value: expired})
		}, http.StatusUnauthorized, ""},
		{"wrong scheme", func(r *http.Request) {
			r.Header.Set("Authorization", "Basic "+valid)
		}, http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/notes", nil)
			tt.prepare(req)
			rec := httptest.NewRecorder()

			RequireAuth(ts)(subjectEcho(t)).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			} else {
				assert.Contains(t, rec.Body.String(), `"unauthorized"`)
			}
		})
	}
}

func TestRequirePage_RedirectsToLogin(t *testing.T) {
	ts := newTestTokenService(t)

	req := httptest.NewRequest(http.MethodGet, "/notes?q=go", nil)
	rec := httptest.NewRecorder()

	RequirePage(ts)(subjectEcho(t)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login?next=%2Fnotes%3Fq%3Dgo", rec.Header().Get("Location"))
}

func TestOptionalAuth(t *testing.T) {
	ts := newTestTokenService(t)
	token, _ := ts.Generate("admin")

	anon := httptest.NewRecorder()
	OptionalAuth(ts)(subjectEcho(t)).ServeHTTP(anon, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, anon.Code)
	assert.Empty(t, anon.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	signedIn := httptest.NewRecorder()
	OptionalAuth(ts)(subjectEcho(t)).ServeHTTP(signedIn, req)
	assert.Equal(t, "admin", signedIn.Body.String())
}

func TestSetAndClearTokenCookie(t *testing.T) {
	rec := httptest.NewRecorder()
	SetTokenCookie(rec, "abc", time.Hour, true)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.True(t, cookies[0].Secure)
	assert.Equal(t, 3600, cookies[0].MaxAge)

	rec = httptest.NewRecorder()
	ClearTokenCookie(rec)
	cookies = rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
}
