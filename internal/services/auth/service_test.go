package auth

import (
	"testing"

	"pesaflow/internal/models"
	"pesaflow/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(user *models.User) error {
	return m.Called(user).Error(0)
}

func (m *mockUserRepo) GetByID(id uint) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserRepo) GetByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserRepo) GetByPhone(phone string) (*models.User, error) {
	args := m.Called(phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserRepo) Update(user *models.User) error {
	return m.Called(user).Error(0)
}

func (m *mockUserRepo) IncrementTokenVersion(userID uint) error {
	return m.Called(userID).Error(0)
}

func TestRegisterHashesPasswordAndDefaultsRole(t *testing.T) {
	repo := new(mockUserRepo)
	svc := NewService(repo)

	repo.On("Create", mock.MatchedBy(func(u *models.User) bool {
		if u.Role != models.RoleUser {
			return false
		}
		return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("S3cret!pass")) == nil
	})).Return(nil)

	user, err := svc.Register(&RegisterInput{
		Name:     "Jane",
		Email:    "jane@example.com",
		Phone:    "0712345678",
		Password: "S3cret!pass",
	})

	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, user.Role)
	repo.AssertExpectations(t)
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	svc := NewService(new(mockUserRepo))

	_, err := svc.Register(&RegisterInput{
		Email:    "jane@example.com",
		Password: "short",
	})
	assert.Error(t, err)

	_, err = svc.Register(&RegisterInput{
		Email:    "jane@example.com",
		Password: "longenoughbutplain",
	})
	assert.Error(t, err)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	repo := new(mockUserRepo)
	svc := NewService(repo)

	hashed, err := bcrypt.GenerateFromPassword([]byte("S3cret!pass"), bcrypt.DefaultCost)
	require.NoError(t, err)
	user := &models.User{Email: "jane@example.com", Password: string(hashed), Role: models.RoleUser}

	repo.On("GetByEmail", "jane@example.com").Return(user, nil)

	_, _, _, err = svc.Login("jane@example.com", "", "wrong")
	assert.EqualError(t, err, "invalid credentials")
}

func TestLoginUnknownUser(t *testing.T) {
	repo := new(mockUserRepo)
	svc := NewService(repo)

	repo.On("GetByEmail", "ghost@example.com").Return(nil, repositories.ErrUserNotFound)

	_, _, _, err := svc.Login("ghost@example.com", "", "whatever")
	assert.EqualError(t, err, "invalid credentials")
}

func TestLogoutBumpsTokenVersion(t *testing.T) {
	repo := new(mockUserRepo)
	svc := NewService(repo)

	repo.On("IncrementTokenVersion", uint(5)).Return(nil)

	require.NoError(t, svc.Logout(5))
	repo.AssertExpectations(t)
}
