package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"todoservice/internal/apperr"
	"todoservice/internal/models"
	"todoservice/internal/service"
	"todoservice/internal/token"
)

// fakeStore backs the handler tests with the same contracts the
// repository provides: unique usernames and ownership-scoped todos.
type fakeStore struct {
	users    map[int64]models.User
	byName   map[string]int64
	todos    map[int64]models.Todo
	nextUser int64
	nextTodo int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:  make(map[int64]models.User),
		byName: make(map[string]int64),
		todos:  make(map[int64]models.Todo),
	}
}

func (f *fakeStore) CreateUser(user *models.User) error {
	if _, exists := f.byName[user.Username]; exists {
		return apperr.E(apperr.KindDuplicateUsername, "username is already taken")
	}
	f.nextUser++
	user.ID = f.nextUser
	f.users[user.ID] = *user
	f.byName[user.Username] = user.ID
	return nil
}

func (f *fakeStore) FindUserByUsername(username string) (*models.User, error) {
	id, ok := f.byName[username]
	if !ok {
		return nil, nil
	}
	user := f.users[id]
	return &user, nil
}

func (f *fakeStore) FindUserByID(id int64) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

func (f *fakeStore) CreateTodo(userID int64, title string) (*models.Todo, error) {
	f.nextTodo++
	todo := models.Todo{ID: f.nextTodo, Title: title, CreatedAt: time.Now(), UserID: userID}
	f.todos[todo.ID] = todo
	return &todo, nil
}

func (f *fakeStore) FindTodosByUserID(userID int64) ([]models.Todo, error) {
	todos := []models.Todo{}
	for _, t := range f.todos {
		if t.UserID == userID {
			todos = append(todos, t)
		}
	}
	sort.Slice(todos, func(i, j int) bool { return todos[i].ID > todos[j].ID })
	return todos, nil
}

func (f *fakeStore) FindTodo(userID, id int64) (*models.Todo, error) {
	todo, ok := f.todos[id]
	if !ok || todo.UserID != userID {
		return nil, nil
	}
	return &todo, nil
}

func (f *fakeStore) UpdateTodo(userID, id int64, title string, complete bool) error {
	todo, ok := f.todos[id]
	if !ok || todo.UserID != userID {
		return nil
	}
	todo.Title = title
	todo.Complete = complete
	f.todos[id] = todo
	return nil
}

func (f *fakeStore) DeleteTodo(userID, id int64) error {
	todo, ok := f.todos[id]
	if ok && todo.UserID == userID {
		delete(f.todos, id)
	}
	return nil
}

func newTestRouter() http.Handler {
	store := newFakeStore()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	svc := service.NewService(store, store, logger)
	signer := token.NewSigner("test-secret")
	return Router(NewHandler(svc, signer), signer)
}

func doJSON(t *testing.T, router http.Handler, method, path, bearer string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func registerUser(t *testing.T, router http.Handler, username, password string) string {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/user", "", map[string]string{
		"username": username,
		"password": password,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("register %s: status = %d, body = %s", username, w.Code, w.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode token response: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("empty token")
	}
	return resp.Token
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) (string, string) {
	t.Helper()
	var resp struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return resp.Error, resp.Message
}

func TestRegisterIssuesUsableToken(t *testing.T) {
	router := newTestRouter()
	bearer := registerUser(t, router, "alice", "password1")

	w := doJSON(t, router, http.MethodGet, "/todos", bearer, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var todos []models.Todo
	if err := json.Unmarshal(w.Body.Bytes(), &todos); err != nil {
		t.Fatalf("failed to decode todos: %v", err)
	}
	if len(todos) != 0 {
		t.Fatalf("fresh user has %d todos", len(todos))
	}
}

func TestRegisterValidationError(t *testing.T) {
	router := newTestRouter()
	w := doJSON(t, router, http.MethodPost, "/user", "", map[string]string{
		"username": "alice",
		"password": "short",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if kind, _ := decodeError(t, w); kind != "validation" {
		t.Fatalf("error = %q, want validation", kind)
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	router := newTestRouter()
	registerUser(t, router, "alice", "password1")

	w := doJSON(t, router, http.MethodPost, "/user", "", map[string]string{
		"username": "alice",
		"password": "password2",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if kind, _ := decodeError(t, w); kind != "duplicate_username" {
		t.Fatalf("error = %q, want duplicate_username", kind)
	}
}

func TestLogin(t *testing.T) {
	router := newTestRouter()
	registerUser(t, router, "alice", "password1")

	t.Run("wrong password", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/login", "", map[string]string{
			"username": "alice",
			"password": "wrongpass",
		})
		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", w.Code)
		}
		if kind, _ := decodeError(t, w); kind != "auth" {
			t.Fatalf("error = %q, want auth", kind)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/login", "", map[string]string{
			"username": "bob",
			"password": "password1",
		})
		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", w.Code)
		}
		if kind, _ := decodeError(t, w); kind != "auth" {
			t.Fatalf("error = %q, want auth", kind)
		}
	})

	t.Run("success", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/login", "", map[string]string{
			"username": "alice",
			"password": "password1",
		})
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
	})
}

func TestTodosRequireToken(t *testing.T) {
	router := newTestRouter()

	w := doJSON(t, router, http.MethodGet, "/todos", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}

	w = doJSON(t, router, http.MethodGet, "/todos", "not-a-token", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestTodoLifecycle(t *testing.T) {
	router := newTestRouter()
	bearer := registerUser(t, router, "alice", "password1")

	// Create
	w := doJSON(t, router, http.MethodPost, "/todos", bearer, map[string]string{"title": "buy milk"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want 201", w.Code)
	}
	var created models.Todo
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("failed to decode created todo: %v", err)
	}
	if created.Title != "buy milk" || created.Complete {
		t.Fatalf("created = %+v", created)
	}

	// List, newest first
	doJSON(t, router, http.MethodPost, "/todos", bearer, map[string]string{"title": "walk dog"})
	w = doJSON(t, router, http.MethodGet, "/todos", bearer, nil)
	var todos []models.Todo
	if err := json.Unmarshal(w.Body.Bytes(), &todos); err != nil {
		t.Fatalf("failed to decode todos: %v", err)
	}
	if len(todos) != 2 || todos[0].Title != "walk dog" || todos[1].Title != "buy milk" {
		t.Fatalf("todos = %+v, want newest first", todos)
	}

	// Patch complete
	w = doJSON(t, router, http.MethodPatch, fmt.Sprintf("/todos/%d", created.ID), bearer,
		map[string]bool{"complete": true})
	if w.Code != http.StatusOK {
		t.Fatalf("patch status = %d, want 200", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Fatalf("patch body = %q, want empty", w.Body.String())
	}

	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/todos/%d", created.ID), bearer, nil)
	var got models.Todo
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode todo: %v", err)
	}
	if !got.Complete || got.Title != "buy milk" {
		t.Fatalf("got = %+v, want completed with original title", got)
	}

	// Delete
	w = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/todos/%d", created.ID), bearer, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete status = %d, want 200", w.Code)
	}
	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/todos/%d", created.ID), bearer, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status after delete = %d, want 404", w.Code)
	}
}

func TestForeignTodoIsInvisible(t *testing.T) {
	router := newTestRouter()
	aliceToken := registerUser(t, router, "alice", "password1")
	bobToken := registerUser(t, router, "bob", "password2")

	w := doJSON(t, router, http.MethodPost, "/todos", aliceToken, map[string]string{"title": "buy milk"})
	var created models.Todo
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("failed to decode created todo: %v", err)
	}

	// Bob cannot fetch it.
	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/todos/%d", created.ID), bobToken, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}

	// Bob's patch is a no-op.
	w = doJSON(t, router, http.MethodPatch, fmt.Sprintf("/todos/%d", created.ID), bobToken,
		map[string]bool{"complete": true})
	if w.Code != http.StatusOK {
		t.Fatalf("patch status = %d, want 200", w.Code)
	}
	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/todos/%d", created.ID), aliceToken, nil)
	var got models.Todo
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode todo: %v", err)
	}
	if got.Complete {
		t.Fatal("foreign patch changed the record")
	}

	// Bob's delete is a no-op.
	doJSON(t, router, http.MethodDelete, fmt.Sprintf("/todos/%d", created.ID), bobToken, nil)
	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/todos/%d", created.ID), aliceToken, nil)
	if w.Code != http.StatusOK {
		t.Fatal("foreign delete removed the record")
	}
}

func TestExportTodosXML(t *testing.T) {
	router := newTestRouter()
	bearer := registerUser(t, router, "alice", "password1")
	doJSON(t, router, http.MethodPost, "/todos", bearer, map[string]string{"title": "buy milk"})

	w := doJSON(t, router, http.MethodGet, "/todos/export", bearer, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/xml" {
		t.Fatalf("content type = %q, want application/xml", ct)
	}
	body := w.Body.String()
	if !strings.Contains(body, "<title>buy milk</title>") {
		t.Fatalf("export missing todo title: %s", body)
	}
	if !strings.Contains(body, `count="1"`) {
		t.Fatalf("export missing count attribute: %s", body)
	}
}

func TestUnknownRouteIs404(t *testing.T) {
	router := newTestRouter()
	w := doJSON(t, router, http.MethodGet, "/nope", "", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}
