package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"contactbook/internal/contact"

	"github.com/go-chi/chi/v5"
)

type ContactHandler struct {
	Store *contact.Store
}

func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.Store.List()
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Server error")
		return
	}
	if contacts == nil {
		contacts = []contact.Contact{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "The list was successfully returned",
		"data":    contacts,
	})
}

func (h *ContactHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.Store.GetByID(chi.URLParam(r, "contactId"))
	if err != nil {
		if errors.Is(err, contact.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "The contact was not found")
			return
		}
		writeMessage(w, http.StatusInternalServerError, "Server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "The contact has been returned successfully",
		"data":    c,
	})
}

type contactReq struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

func (h *ContactHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req contactReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "bad json")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeMessage(w, http.StatusBadRequest, "missing required name field")
		return
	}

	c, err := h.Store.Add(contact.Contact{
		Name:  req.Name,
		Email: strings.TrimSpace(req.Email),
		Phone: strings.TrimSpace(req.Phone),
	})
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Server error")
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *ContactHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req contactReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "bad json")
		return
	}

	c, err := h.Store.Update(chi.URLParam(r, "contactId"), contact.Contact{
		Name:  strings.TrimSpace(req.Name),
		Email: strings.TrimSpace(req.Email),
		Phone: strings.TrimSpace(req.Phone),
	})
	if err != nil {
		if errors.Is(err, contact.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "The contact was not found")
			return
		}
		writeMessage(w, http.StatusInternalServerError, "Server error")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

type favoriteReq struct {
	Favorite *bool `json:"favorite"`
}

func (h *ContactHandler) UpdateFavorite(w http.ResponseWriter, r *http.Request) {
	var req favoriteReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "bad json")
		return
	}
	if req.Favorite == nil {
		writeMessage(w, http.StatusBadRequest, "missing field favorite")
		return
	}

	c, err := h.Store.UpdateFavorite(chi.URLParam(r, "contactId"), *req.Favorite)
	if err != nil {
		if errors.Is(err, contact.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "Not found")
			return
		}
		writeMessage(w, http.StatusInternalServerError, "Server error")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *ContactHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Remove(chi.URLParam(r, "contactId")); err != nil {
		if errors.Is(err, contact.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "The contact was not found")
			return
		}
		writeMessage(w, http.StatusInternalServerError, "Server error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
