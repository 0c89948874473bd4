package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"contactbook/internal/auth"

	"github.com/go-chi/chi/v5"
)

type AuthHandler struct {
	Svc *auth.Service
}

type credentialsReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userDTO struct {
	Email        string            `json:"email"`
	Subscription auth.Subscription `json:"subscription"`
}

func publicUser(u *auth.User) userDTO {
	return userDTO{Email: u.Email, Subscription: u.Subscription}
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req credentialsReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "bad json")
		return
	}

	u, err := h.Svc.Signup(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrMissingCredentials),
			errors.Is(err, auth.ErrInvalidEmail),
			errors.Is(err, auth.ErrPasswordTooShort):
			writeMessage(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, auth.ErrEmailInUse):
			writeMessage(w, http.StatusConflict, err.Error())
		default:
			writeMessage(w, http.StatusInternalServerError, "Server error")
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"user": publicUser(u),
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "bad json")
		return
	}

	res, err := h.Svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrMissingCredentials),
			errors.Is(err, auth.ErrInvalidEmail):
			writeMessage(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, auth.ErrInvalidCredentials):
			writeMessage(w, http.StatusUnauthorized, err.Error())
		default:
			writeMessage(w, http.StatusInternalServerError, "Server error")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token": res.Token,
		"user":  publicUser(res.User),
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, auth.ErrNotAuthorized.Error())
		return
	}

	if err := h.Svc.Logout(r.Context(), u.ID); err != nil {
		if errors.Is(err, auth.ErrNotAuthorized) {
			writeMessage(w, http.StatusUnauthorized, err.Error())
			return
		}
		writeMessage(w, http.StatusInternalServerError, "Server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) Current(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, auth.ErrNotAuthorized.Error())
		return
	}

	writeJSON(w, http.StatusOK, publicUser(u))
}

type updateSubscriptionReq struct {
	Subscription auth.Subscription `json:"subscription"`
}

func (h *AuthHandler) UpdateSubscription(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, auth.ErrNotAuthorized.Error())
		return
	}

	// compared as strings so a non-numeric path id is a plain mismatch
	if chi.URLParam(r, "userId") != strconv.FormatUint(u.ID, 10) {
		writeMessage(w, http.StatusForbidden, auth.ErrForbidden.Error())
		return
	}

	var req updateSubscriptionReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "bad json")
		return
	}

	updated, err := h.Svc.UpdateSubscription(r.Context(), u.ID, u.ID, req.Subscription)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidSubscription):
			writeMessage(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, auth.ErrForbidden):
			writeMessage(w, http.StatusForbidden, err.Error())
		case errors.Is(err, auth.ErrNotAuthorized):
			writeMessage(w, http.StatusUnauthorized, err.Error())
		default:
			writeMessage(w, http.StatusInternalServerError, "Server error")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Subscription updated successfully!",
		"user":    publicUser(updated),
	})
}
