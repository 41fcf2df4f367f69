package api

import (
	"net/http"

	"theme-images-manager/internal/application"
)

// handleInstall starts an install: GET /install?shop=<domain>
func (s *Server) handleInstall(w http.ResponseWriter, r *http.Request) {
	redirect, err := s.oauth.BeginInstall(r.Context(), r.URL.Query().Get("shop"))
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    redirect.State,
		Path:     "/",
		MaxAge:   int(application.StateTTL.Seconds()),
		HttpOnly: true,
		Secure:   s.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, redirect.URL, http.StatusFound)
}

// handleCallback completes an install and relays the theme's asset listing
func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	var cookieState string
	if c, err := r.Cookie(stateCookie); err == nil {
		cookieState = c.Value
	}
	// The nonce is single-use whatever the outcome
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	result, err := s.oauth.HandleCallback(r.Context(), r.URL.Query(), cookieState)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    result.SessionKey,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(result.Assets)
}
