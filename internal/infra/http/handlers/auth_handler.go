package handlers

import (
	"net/http"
	"time"

	"github.com/xavierca1/ligue-crm/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

type AuthHandler struct {
	Users        *usecase.UserUseCase
	CookieTTL    time.Duration
	SecureCookie bool
}

func NewAuthHandler(users *usecase.UserUseCase, cookieTTL time.Duration, secure bool) *AuthHandler {
	return &AuthHandler{Users: users, CookieTTL: cookieTTL, SecureCookie: secure}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input usecase.LoginInput
	if !decodeJSON(w, r, &input) {
		return
	}

	out, err := h.Users.Login(r.Context(), input)
	if err != nil {
		writeError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    out.Token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.SecureCookie,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(h.CookieTTL.Seconds()),
	})
	writeJSON(w, http.StatusOK, out)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.SecureCookie,
		MaxAge:   -1,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.Users.Me(r.Context(), usecase.ActorFromContext(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

type UserHandler struct {
	Users *usecase.UserUseCase
}

func NewUserHandler(users *usecase.UserUseCase) *UserHandler {
	return &UserHandler{Users: users}
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input usecase.CreateUserInput
	if !decodeJSON(w, r, &input) {
		return
	}

	u, err := h.Users.CreateUser(r.Context(), usecase.ActorFromContext(r.Context()), input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.Users.ListUsers(r.Context(), usecase.ActorFromContext(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}
