package service

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"todoservice/internal/apperr"
	"todoservice/internal/models"
	"todoservice/internal/validate"
)

// UserStore is the persistence surface for user accounts.
type UserStore interface {
	CreateUser(user *models.User) error
	FindUserByUsername(username string) (*models.User, error)
	FindUserByID(id int64) (*models.User, error)
}

// TodoStore is the persistence surface for todos. Implementations must
// scope every operation to the owning user id.
type TodoStore interface {
	CreateTodo(userID int64, title string) (*models.Todo, error)
	FindTodosByUserID(userID int64) ([]models.Todo, error)
	FindTodo(userID, id int64) (*models.Todo, error)
	UpdateTodo(userID, id int64, title string, complete bool) error
	DeleteTodo(userID, id int64) error
}

// Service handles business logic
type Service struct {
	users UserStore
	todos TodoStore
	log   *logrus.Logger
}

// NewService initializes a new service
func NewService(users UserStore, todos TodoStore, log *logrus.Logger) *Service {
	return &Service{users: users, todos: todos, log: log}
}

// Register validates the credentials, hashes the password and creates
// the user.
func (s *Service) Register(username, password string) (*models.User, error) {
	if err := validate.Registration(username, password); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:       username,
		HashedPassword: string(hashedPassword),
	}
	if err := s.users.CreateUser(user); err != nil {
		return nil, err
	}

	s.log.Infof("User registered: %s", user.Username)
	return user, nil
}

// Authenticate verifies the credentials and returns the matching user.
func (s *Service) Authenticate(username, password string) (*models.User, error) {
	user, err := s.users.FindUserByUsername(username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.E(apperr.KindAuth, "no such user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		return nil, apperr.E(apperr.KindAuth, "bad credentials")
	}

	s.log.Infof("User logged in: %s", user.Username)
	return user, nil
}

// UserByID returns the user for id, or nil when absent.
func (s *Service) UserByID(id int64) (*models.User, error) {
	return s.users.FindUserByID(id)
}

// CreateTodo creates a todo owned by userID.
func (s *Service) CreateTodo(userID int64, title string) (*models.Todo, error) {
	if title == "" {
		return nil, apperr.E(apperr.KindValidation, "title is required")
	}
	todo, err := s.todos.CreateTodo(userID, title)
	if err != nil {
		return nil, err
	}
	s.log.Infof("Todo %d created for user %d", todo.ID, userID)
	return todo, nil
}

// TodosByUser lists userID's todos, most recent first.
func (s *Service) TodosByUser(userID int64) ([]models.Todo, error) {
	return s.todos.FindTodosByUserID(userID)
}

// Todo returns the todo for (userID, id), or nil when it does not
// exist or belongs to another user.
func (s *Service) Todo(userID, id int64) (*models.Todo, error) {
	return s.todos.FindTodo(userID, id)
}

// UpdateTodo merges the provided fields onto the stored todo. Fields
// left nil keep their stored value. A missing or foreign-owned todo is
// a silent no-op.
func (s *Service) UpdateTodo(userID, id int64, title *string, complete *bool) error {
	todo, err := s.todos.FindTodo(userID, id)
	if err != nil {
		return err
	}
	if todo == nil {
		return nil
	}

	if title != nil {
		if *title == "" {
			return apperr.E(apperr.KindValidation, "title is required")
		}
		todo.Title = *title
	}
	if complete != nil {
		todo.Complete = *complete
	}
	if err := s.todos.UpdateTodo(userID, id, todo.Title, todo.Complete); err != nil {
		return err
	}
	s.log.Infof("Todo %d updated for user %d", id, userID)
	return nil
}

// DeleteTodo removes the todo. A missing or foreign-owned todo is a
// silent no-op.
func (s *Service) DeleteTodo(userID, id int64) error {
	if err := s.todos.DeleteTodo(userID, id); err != nil {
		return err
	}
	s.log.Infof("Todo %d deleted for user %d", id, userID)
	return nil
}
