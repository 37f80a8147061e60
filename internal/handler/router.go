package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"todoservice/internal/middleware"
	"todoservice/internal/token"
)

// Router wires the token-variant routes. /todos* requires a valid
// bearer token; registration and login are public.
func Router(h *Handler, signer *token.Signer) *mux.Router {
	r := mux.NewRouter()
	// Public routes
	r.HandleFunc("/user", h.Register).Methods("POST")
	r.HandleFunc("/login", h.Login).Methods("POST")
	// Protected routes
	authRouter := r.PathPrefix("/todos").Subrouter()
	authRouter.Use(middleware.AuthMiddleware(signer))
	authRouter.HandleFunc("", h.ListTodos).Methods("GET")
	authRouter.HandleFunc("", h.CreateTodo).Methods("POST")
	authRouter.HandleFunc("/export", h.ExportTodos).Methods("GET")
	authRouter.HandleFunc("/{id}", h.GetTodo).Methods("GET")
	authRouter.HandleFunc("/{id}", h.UpdateTodo).Methods("PATCH")
	authRouter.HandleFunc("/{id}", h.DeleteTodo).Methods("DELETE")

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeNotFound(w)
	})
	return r
}
