package handler

import (
	"crypto/subtle"
	"embed"
	"html/template"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"todoservice/internal/apperr"
	"todoservice/internal/models"
	"todoservice/internal/service"
	"todoservice/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

// WebHandler holds the server-rendered handlers for the session
// deployment.
type WebHandler struct {
	svc      *service.Service
	sessions *session.Manager
	tmpl     *template.Template
}

// NewWebHandler initializes the web handler set.
func NewWebHandler(svc *service.Service, sessions *session.Manager) *WebHandler {
	tmpl := template.Must(template.ParseFS(templateFS, "templates/*.html"))
	return &WebHandler{svc: svc, sessions: sessions, tmpl: tmpl}
}

// WebRouter wires the session-variant routes.
func WebRouter(h *WebHandler) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", h.Index).Methods("GET")
	r.HandleFunc("/login", h.LoginForm).Methods("GET")
	r.HandleFunc("/login", h.Login).Methods("POST")
	r.HandleFunc("/register", h.RegisterForm).Methods("GET")
	r.HandleFunc("/register", h.Register).Methods("POST")
	r.HandleFunc("/logout", h.Logout).Methods("POST")
	r.HandleFunc("/todos", h.CreateTodo).Methods("POST")
	r.HandleFunc("/todos/{id}/toggle", h.ToggleTodo).Methods("POST")
	r.HandleFunc("/todos/{id}/delete", h.DeleteTodo).Methods("POST")
	return r
}

type pageData struct {
	Username  string
	CSRFToken string
	Flash     string
	Todos     []models.Todo
}

// Index renders the todo list for the authenticated user.
func (h *WebHandler) Index(w http.ResponseWriter, r *http.Request) {
	id, sess, err := h.sessions.Load(w, r)
	if err != nil {
		h.serverError(w, err)
		return
	}
	if !sess.Authenticated() {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	user, err := h.svc.UserByID(sess.UserID)
	if err != nil {
		h.serverError(w, err)
		return
	}
	if user == nil {
		// Session points at a user that no longer resolves.
		if err := h.sessions.Reset(w, r, id); err != nil {
			h.serverError(w, err)
			return
		}
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	todos, err := h.svc.TodosByUser(user.ID)
	if err != nil {
		h.serverError(w, err)
		return
	}

	h.render(w, r, "index.html", id, sess, pageData{
		Username: user.Username,
		Todos:    todos,
	})
}

// LoginForm renders the login page.
func (h *WebHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	id, sess, err := h.sessions.Load(w, r)
	if err != nil {
		h.serverError(w, err)
		return
	}
	if sess.Authenticated() {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.render(w, r, "login.html", id, sess, pageData{})
}

// Login authenticates the session from the submitted credentials.
func (h *WebHandler) Login(w http.ResponseWriter, r *http.Request) {
	id, sess, ok := h.verifiedSession(w, r)
	if !ok {
		return
	}

	user, err := h.svc.Authenticate(r.PostFormValue("username"), r.PostFormValue("password"))
	if err != nil {
		if apperr.KindOf(err) == apperr.KindAuth {
			h.redirectWithFlash(w, r, id, sess, "/login", "Incorrect username or password.")
			return
		}
		h.serverError(w, err)
		return
	}

	sess.UserID = user.ID
	if err := h.sessions.Save(r, id, sess); err != nil {
		h.serverError(w, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// RegisterForm renders the registration page.
func (h *WebHandler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	id, sess, err := h.sessions.Load(w, r)
	if err != nil {
		h.serverError(w, err)
		return
	}
	if sess.Authenticated() {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.render(w, r, "register.html", id, sess, pageData{})
}

// Register creates the account and authenticates the new user.
func (h *WebHandler) Register(w http.ResponseWriter, r *http.Request) {
	id, sess, ok := h.verifiedSession(w, r)
	if !ok {
		return
	}

	user, err := h.svc.Register(r.PostFormValue("username"), r.PostFormValue("password"))
	if err != nil {
		switch apperr.KindOf(err) {
		case apperr.KindValidation, apperr.KindDuplicateUsername:
			h.redirectWithFlash(w, r, id, sess, "/register", err.Error())
		default:
			h.serverError(w, err)
		}
		return
	}

	sess.UserID = user.ID
	if err := h.sessions.Save(r, id, sess); err != nil {
		h.serverError(w, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout clears the session identity.
func (h *WebHandler) Logout(w http.ResponseWriter, r *http.Request) {
	id, _, ok := h.verifiedSession(w, r)
	if !ok {
		return
	}
	if err := h.sessions.Reset(w, r, id); err != nil {
		h.serverError(w, err)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// CreateTodo handles the new-todo form on the index page.
func (h *WebHandler) CreateTodo(w http.ResponseWriter, r *http.Request) {
	id, sess, ok := h.verifiedSession(w, r)
	if !ok {
		return
	}
	if !sess.Authenticated() {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if _, err := h.svc.CreateTodo(sess.UserID, r.PostFormValue("title")); err != nil {
		if apperr.KindOf(err) == apperr.KindValidation {
			h.redirectWithFlash(w, r, id, sess, "/", err.Error())
			return
		}
		h.serverError(w, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// ToggleTodo flips the complete flag of one of the caller's todos.
func (h *WebHandler) ToggleTodo(w http.ResponseWriter, r *http.Request) {
	_, sess, ok := h.verifiedSession(w, r)
	if !ok {
		return
	}
	if !sess.Authenticated() {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	todoID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	todo, err := h.svc.Todo(sess.UserID, todoID)
	if err != nil {
		h.serverError(w, err)
		return
	}
	if todo != nil {
		complete := !todo.Complete
		if err := h.svc.UpdateTodo(sess.UserID, todoID, nil, &complete); err != nil {
			h.serverError(w, err)
			return
		}
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// DeleteTodo removes one of the caller's todos.
func (h *WebHandler) DeleteTodo(w http.ResponseWriter, r *http.Request) {
	_, sess, ok := h.verifiedSession(w, r)
	if !ok {
		return
	}
	if !sess.Authenticated() {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	todoID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := h.svc.DeleteTodo(sess.UserID, todoID); err != nil {
		h.serverError(w, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// verifiedSession loads the session and enforces the CSRF token on the
// submitted form. Unsafe methods never proceed on a mismatch.
func (h *WebHandler) verifiedSession(w http.ResponseWriter, r *http.Request) (string, session.Session, bool) {
	id, sess, err := h.sessions.Load(w, r)
	if err != nil {
		h.serverError(w, err)
		return "", session.Session{}, false
	}

	submitted := r.PostFormValue("_csrf")
	if subtle.ConstantTimeCompare([]byte(sess.CSRFToken), []byte(submitted)) != 1 {
		http.Error(w, "invalid csrf token", http.StatusForbidden)
		return "", session.Session{}, false
	}
	return id, sess, true
}

// render draws a page, consuming the pending flash message.
func (h *WebHandler) render(w http.ResponseWriter, r *http.Request, name, id string, sess session.Session, data pageData) {
	data.CSRFToken = sess.CSRFToken
	data.Flash = sess.Flash
	if sess.Flash != "" {
		sess.Flash = ""
		if err := h.sessions.Save(r, id, sess); err != nil {
			h.serverError(w, err)
			return
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.tmpl.ExecuteTemplate(w, name, data); err != nil {
		h.serverError(w, err)
	}
}

func (h *WebHandler) redirectWithFlash(w http.ResponseWriter, r *http.Request, id string, sess session.Session, location, message string) {
	sess.Flash = message
	if err := h.sessions.Save(r, id, sess); err != nil {
		h.serverError(w, err)
		return
	}
	http.Redirect(w, r, location, http.StatusSeeOther)
}

func (h *WebHandler) serverError(w http.ResponseWriter, err error) {
	http.Error(w, "internal server error", http.StatusInternalServerError)
}
