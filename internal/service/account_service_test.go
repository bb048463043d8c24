package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"account-service/internal/domain"
	"account-service/internal/hash"
	"account-service/internal/repository"
	"account-service/internal/repository/memory"
)

// brokenRepo fails the configured operations, to exercise the persistence
// error paths without a real backing store going away.
type brokenRepo struct {
	repository.UserRepository
	createErr error
	updateErr error
	lookupErr error
}

func (b *brokenRepo) Create(ctx context.Context, user *domain.User) error {
	if b.createErr != nil {
		return b.createErr
	}
	return b.UserRepository.Create(ctx, user)
}

func (b *brokenRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if b.lookupErr != nil {
		return nil, b.lookupErr
	}
	return b.UserRepository.GetByEmail(ctx, email)
}

func (b *brokenRepo) UpdatePasswordHash(ctx context.Context, id, passwordHash string) error {
	if b.updateErr != nil {
		return b.updateErr
	}
	return b.UserRepository.UpdatePasswordHash(ctx, id, passwordHash)
}

func newService(t *testing.T) (AccountService, *memory.UserRepository) {
	t.Helper()
	repo := memory.NewUserRepository()
	return NewAccountService(repo), repo
}

func mustRegister(t *testing.T, svc AccountService, username, email, password string) *domain.User {
	t.Helper()
	user, err := svc.Register(context.Background(), username, email, password, password)
	require.NoError(t, err)
	return user
}

func TestRegister_Success(t *testing.T) {
	ctx := context.Background()
	svc, repo := newService(t)

	user, err := svc.Register(ctx, "alice", "alice@example.com", "secret1", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t,
		"5b11618c2e44027877d0cd0921ed166b9f176f50587fc91e7534dd2946db77d6",
		user.PasswordHash)

	users, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, user.PasswordHash, users[0].PasswordHash)
}

func TestRegister_ValidationOrder(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	mustRegister(t, svc, "alice", "alice@example.com", "secret1")

	tests := []struct {
		name     string
		username string
		email    string
		password string
		confirm  string
		want     error
	}{
		{"empty username", "", "bob@example.com", "secret1", "secret1", ErrEmptyFields},
		{"empty confirm", "bob", "bob@example.com", "secret1", "", ErrEmptyFields},
		{"bad email", "bob", "not-an-email", "secret1", "secret1", ErrInvalidEmail},
		{"bad email before short password", "bob", "not-an-email", "abc", "abc", ErrInvalidEmail},
		{"short password", "bob", "bob@example.com", "abcde", "abcde", ErrPasswordTooShort},
		{"short password before mismatch", "bob", "bob@example.com", "abcde", "other", ErrPasswordTooShort},
		{"mismatch", "bob", "bob@example.com", "secret1", "secret2", ErrPasswordMismatch},
		{"username taken", "alice", "new@example.com", "secret1", "secret1", ErrUsernameTaken},
		{"username taken before email taken", "alice", "alice@example.com", "secret1", "secret1", ErrUsernameTaken},
		{"email taken", "bob", "alice@example.com", "secret1", "secret1", ErrEmailTaken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.username, tt.email, tt.password, tt.confirm)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRegister_PasswordLengthBoundary(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	_, err := svc.Register(ctx, "alice", "alice@example.com", "abcdef", "abcdef")
	assert.NoError(t, err)

	_, err = svc.Register(ctx, "bob", "bob@example.com", "abcde", "abcde")
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestRegister_EmailLeniency(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	// the shape check is minimal and case-sensitive, on purpose
	for i, email := range []string{"a@b.cd", "a@b.cde", "weird @spaces.ok", "a@b.cdef"} {
		_, err := svc.Register(ctx, "user"+string(rune('a'+i)), email, "secret1", "secret1")
		assert.NoError(t, err, "email %q should pass the minimal shape check", email)
	}

	for _, email := range []string{"nodomain", "a@b", "a@b.c"} {
		_, err := svc.Register(ctx, "reject", email, "secret1", "secret1")
		assert.ErrorIs(t, err, ErrInvalidEmail, "email %q", email)
	}
}

func TestRegister_CaseSensitiveUniqueness(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	mustRegister(t, svc, "alice", "alice@example.com", "secret1")

	// differing only in case is a different username and a different email
	_, err := svc.Register(ctx, "Alice", "Alice@example.com", "secret1", "secret1")
	assert.NoError(t, err)
}

func TestRegister_CreateFailure(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("disk full")
	repo := &brokenRepo{UserRepository: memory.NewUserRepository(), createErr: boom}
	svc := NewAccountService(repo)

	_, err := svc.Register(ctx, "alice", "alice@example.com", "secret1", "secret1")
	assert.ErrorIs(t, err, boom)

	users, listErr := repo.List(ctx)
	require.NoError(t, listErr)
	assert.Empty(t, users, "a failed insert must not register the account")
}

func TestRegister_CreateRaceBackstop(t *testing.T) {
	ctx := context.Background()
	repo := &brokenRepo{UserRepository: memory.NewUserRepository(), createErr: repository.ErrUsernameExists}
	svc := NewAccountService(repo)

	_, err := svc.Register(ctx, "alice", "alice@example.com", "secret1", "secret1")
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestLogin_RoundTrip(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	mustRegister(t, svc, "alice", "alice@example.com", "secret1")

	user, err := svc.Login(ctx, "alice@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "alice@example.com", user.Email)
}

func TestLogin_Failures(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	mustRegister(t, svc, "alice", "alice@example.com", "secret1")

	_, err := svc.Login(ctx, "", "secret1")
	assert.ErrorIs(t, err, ErrEmptyFields)

	_, err = svc.Login(ctx, "alice@example.com", "")
	assert.ErrorIs(t, err, ErrEmptyFields)

	// wrong password and unknown email are indistinguishable
	_, wrongPass := svc.Login(ctx, "alice@example.com", "wrongpass")
	_, unknownEmail := svc.Login(ctx, "nobody@example.com", "secret1")
	assert.ErrorIs(t, wrongPass, ErrInvalidCredentials)
	assert.ErrorIs(t, unknownEmail, ErrInvalidCredentials)
	assert.Equal(t, wrongPass.Error(), unknownEmail.Error())

	// repeated wrong attempts never change the error
	for i := 0; i < 3; i++ {
		_, err := svc.Login(ctx, "alice@example.com", "wrongpass")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}
}

func TestLogin_LookupFailure(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("db gone")
	repo := &brokenRepo{UserRepository: memory.NewUserRepository(), lookupErr: boom}
	svc := NewAccountService(repo)

	_, err := svc.Login(ctx, "alice@example.com", "secret1")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestChangePassword_RoundTrip(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	user := mustRegister(t, svc, "alice", "alice@example.com", "secret1")

	require.NoError(t, svc.ChangePassword(ctx, user, "secret1", "secret2", "secret2"))
	assert.Equal(t, hash.Password("secret2"), user.PasswordHash)

	_, err := svc.Login(ctx, "alice@example.com", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "alice@example.com", "secret2")
	assert.NoError(t, err)
}

func TestChangePassword_ValidationOrder(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	user := mustRegister(t, svc, "alice", "alice@example.com", "secret1")

	tests := []struct {
		name    string
		oldPass string
		newPass string
		confirm string
		want    error
	}{
		{"empty old", "", "secret2", "secret2", ErrEmptyFields},
		{"empty new", "secret1", "", "secret2", ErrEmptyFields},
		{"wrong old", "wrongpass", "secret2", "secret2", ErrOldPasswordIncorrect},
		{"wrong old before unchanged", "wrongpass", "wrongpass", "wrongpass", ErrOldPasswordIncorrect},
		{"unchanged", "secret1", "secret1", "secret1", ErrPasswordUnchanged},
		{"too short", "secret1", "abc", "abc", ErrPasswordTooShort},
		{"too short before mismatch", "secret1", "abc", "abcd", ErrPasswordTooShort},
		{"mismatch", "secret1", "secret2", "secret3", ErrPasswordMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.ChangePassword(ctx, user, tt.oldPass, tt.newPass, tt.confirm)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, hash.Password("secret1"), user.PasswordHash, "record must be untouched")
		})
	}
}

func TestChangePassword_SaveFailureLeavesRecordIntact(t *testing.T) {
	ctx := context.Background()
	mem := memory.NewUserRepository()
	boom := errors.New("write failed")
	repo := &brokenRepo{UserRepository: mem, updateErr: boom}
	svc := NewAccountService(repo)

	user := mustRegister(t, svc, "alice", "alice@example.com", "secret1")

	err := svc.ChangePassword(ctx, user, "secret1", "secret2", "secret2")
	assert.ErrorIs(t, err, boom)

	// neither the handed-in record nor the store may carry the new hash
	assert.Equal(t, hash.Password("secret1"), user.PasswordHash)
	stored, getErr := mem.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, getErr)
	assert.Equal(t, hash.Password("secret1"), stored.PasswordHash)
}
