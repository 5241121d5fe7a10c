package handler

import (
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/sakif/project-vault/internal/apperror"
)

// FLASH MESSAGES:
// Forms use post/redirect/get, so the outcome of a POST ("Project saved",
// "remote operation failed") has to survive one redirect. It travels in a
// short-lived cookie that the next page render reads and clears; the page
// shows it as a toast.

const flashCookie = "flash"

const (
	FlashSuccess = "success"
	FlashError   = "error"
)

type Flash struct {
	Kind    string
	Message string
}

func setFlash(w http.ResponseWriter, kind, message string) {
	value := base64.RawURLEncoding.EncodeToString([]byte(kind + "\n" + message))
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// popFlash returns the pending flash, if any, and clears it.
func popFlash(w http.ResponseWriter, r *http.Request) *Flash {
	cookie, err := r.Cookie(flashCookie)
	if err != nil || cookie.Value == "" {
		return nil
	}
	http.SetCookie(w, &http.Cookie{Name: flashCookie, Path: "/", MaxAge: -1})

	raw, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}
	kind, message, ok := strings.Cut(string(raw), "\n")
	if !ok || (kind != FlashSuccess && kind != FlashError) {
		return nil
	}
	return &Flash{Kind: kind, Message: message}
}

func errorFlash(err error) *Flash {
	return &Flash{Kind: FlashError, Message: apperror.Message(err)}
}
