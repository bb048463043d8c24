package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"account-service/internal/domain"
	"account-service/internal/hash"
	"account-service/internal/repository"
)

var (
	// ErrEmptyFields indicates one or more required fields were left blank.
	ErrEmptyFields = errors.New("please fill in all fields")
	// ErrInvalidEmail indicates the email does not match the accepted shape.
	ErrInvalidEmail = errors.New("invalid email format")
	// ErrPasswordTooShort indicates the password is below the minimum length.
	ErrPasswordTooShort = errors.New("password must be at least 6 characters")
	// ErrPasswordMismatch indicates the password and its confirmation differ.
	ErrPasswordMismatch = errors.New("passwords do not match")
	// ErrUsernameTaken is returned when registering an existing username.
	ErrUsernameTaken = errors.New("username is already taken")
	// ErrEmailTaken is returned when registering an existing email.
	ErrEmailTaken = errors.New("email is already used")
	// ErrInvalidCredentials covers both an unknown email and a wrong
	// password; callers must not be able to tell which one it was.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrOldPasswordIncorrect indicates the current password check failed.
	ErrOldPasswordIncorrect = errors.New("old password is incorrect")
	// ErrPasswordUnchanged indicates the new password equals the old one.
	ErrPasswordUnchanged = errors.New("new password must be different from old one")
)

// MinPasswordLength is the shortest password Register and ChangePassword accept.
const MinPasswordLength = 6

// Deliberately lenient: unanchored, any local part, 2-3 char suffix.
// Tightening this is a behavior change, not a cleanup.
var emailPattern = regexp.MustCompile(`.+@.+\..{2,3}`)

// AccountService describes account lifecycle operations.
type AccountService interface {
	Register(ctx context.Context, username, email, password, confirmPassword string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*domain.User, error)
	ChangePassword(ctx context.Context, user *domain.User, oldPassword, newPassword, confirmPassword string) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
}

type accountService struct {
	users repository.UserRepository
}

func NewAccountService(users repository.UserRepository) AccountService {
	return &accountService{users: users}
}

// Register validates the candidate account and inserts it. Checks run in a
// fixed order and the first failure wins. Store I/O failures are wrapped and
// mean the account was not registered.
func (s *accountService) Register(ctx context.Context, username, email, password, confirmPassword string) (*domain.User, error) {
	if username == "" || email == "" || password == "" || confirmPassword == "" {
		return nil, ErrEmptyFields
	}
	if !emailPattern.MatchString(email) {
		return nil, ErrInvalidEmail
	}
	if len(password) < MinPasswordLength {
		return nil, ErrPasswordTooShort
	}
	if password != confirmPassword {
		return nil, ErrPasswordMismatch
	}

	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup username: %w", err)
	}
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash.Password(password),
	}
	if err := s.users.Create(ctx, user); err != nil {
		// constraint backstop for the check-then-act window
		if errors.Is(err, repository.ErrUsernameExists) {
			return nil, ErrUsernameTaken
		}
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

// Login verifies the credentials and returns the matching record. It only
// certifies the match; anything session-like is the caller's business.
func (s *accountService) Login(ctx context.Context, email, password string) (*domain.User, error) {
	if email == "" || password == "" {
		return nil, ErrEmptyFields
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	if hash.Password(password) != user.PasswordHash {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// ChangePassword verifies the old credential and commits the new one. The
// in-memory record is updated only after the store confirms the write, so a
// failed save leaves the record consistent with durable state.
func (s *accountService) ChangePassword(ctx context.Context, user *domain.User, oldPassword, newPassword, confirmPassword string) error {
	if oldPassword == "" || newPassword == "" || confirmPassword == "" {
		return ErrEmptyFields
	}
	if hash.Password(oldPassword) != user.PasswordHash {
		return ErrOldPasswordIncorrect
	}
	if newPassword == oldPassword {
		return ErrPasswordUnchanged
	}
	if len(newPassword) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if newPassword != confirmPassword {
		return ErrPasswordMismatch
	}

	newHash := hash.Password(newPassword)
	if err := s.users.UpdatePasswordHash(ctx, user.ID, newHash); err != nil {
		return fmt.Errorf("save password: %w", err)
	}
	user.PasswordHash = newHash
	return nil
}

func (s *accountService) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.users.GetByEmail(ctx, email)
}

func (s *accountService) List(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}
