package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"todoservice/internal/apperr"
	"todoservice/internal/middleware"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type createTodoRequest struct {
	Title string `json:"title"`
}

type updateTodoRequest struct {
	Title    *string `json:"title"`
	Complete *bool   `json:"complete"`
}

// Register handles user registration and issues a token for the new user
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.E(apperr.KindValidation, "invalid request body"))
		return
	}

	user, err := h.svc.Register(req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	tokenString, err := h.signer.Sign(user.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Token: tokenString})
}

// Login handles user authentication and issues a token
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.E(apperr.KindValidation, "invalid request body"))
		return
	}

	user, err := h.svc.Authenticate(req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	tokenString, err := h.signer.Sign(user.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Token: tokenString})
}

// ListTodos returns the caller's todos, most recent first
func (h *Handler) ListTodos(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())

	todos, err := h.svc.TodosByUser(userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, todos)
}

// CreateTodo creates a todo owned by the caller
func (h *Handler) CreateTodo(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())

	var req createTodoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.E(apperr.KindValidation, "invalid request body"))
		return
	}

	todo, err := h.svc.CreateTodo(userID, req.Title)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, todo)
}

// GetTodo returns a single todo owned by the caller, or 404
func (h *Handler) GetTodo(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())
	id, err := todoID(r)
	if err != nil {
		writeNotFound(w)
		return
	}

	todo, err := h.svc.Todo(userID, id)
	if err != nil {
		writeError(w, err)
		return
	}
	if todo == nil {
		writeNotFound(w)
		return
	}
	writeJSON(w, http.StatusOK, todo)
}

// UpdateTodo patches title/complete of a todo owned by the caller.
// Patching a missing or foreign-owned todo is a no-op.
func (h *Handler) UpdateTodo(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())
	id, err := todoID(r)
	if err != nil {
		writeNotFound(w)
		return
	}

	var req updateTodoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.E(apperr.KindValidation, "invalid request body"))
		return
	}

	if err := h.svc.UpdateTodo(userID, id, req.Title, req.Complete); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// DeleteTodo removes a todo owned by the caller. Deleting a missing or
// foreign-owned todo is a no-op.
func (h *Handler) DeleteTodo(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())
	id, err := todoID(r)
	if err != nil {
		writeNotFound(w)
		return
	}

	if err := h.svc.DeleteTodo(userID, id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func todoID(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}
