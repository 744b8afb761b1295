package access

import (
	"context"
	"testing"

	"pesaflow/internal/models"
	"pesaflow/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
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

type mockMembershipRepo struct {
	mock.Mock
}

func (m *mockMembershipRepo) Create(mb *models.Membership) error {
	return m.Called(mb).Error(0)
}

func (m *mockMembershipRepo) HasActiveRole(userID, businessID uint, role string) (bool, error) {
	args := m.Called(userID, businessID, role)
	return args.Bool(0), args.Error(1)
}

func (m *mockMembershipRepo) HasActiveMembership(userID, businessID uint) (bool, error) {
	args := m.Called(userID, businessID)
	return args.Bool(0), args.Error(1)
}

func (m *mockMembershipRepo) ActiveBusinessIDs(userID uint) ([]uint, error) {
	args := m.Called(userID)
	return args.Get(0).([]uint), args.Error(1)
}

func (m *mockMembershipRepo) ListForBusiness(businessID uint) ([]models.Membership, error) {
	args := m.Called(businessID)
	return args.Get(0).([]models.Membership), args.Error(1)
}

func (m *mockMembershipRepo) Deactivate(membershipID uint) (*models.Membership, error) {
	args := m.Called(membershipID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Membership), args.Error(1)
}

type mockBusinessRepo struct {
	mock.Mock
}

func (m *mockBusinessRepo) Create(b *models.Business) error {
	return m.Called(b).Error(0)
}

func (m *mockBusinessRepo) GetByID(id uint) (*models.Business, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Business), args.Error(1)
}

func (m *mockBusinessRepo) AllIDs() ([]uint, error) {
	args := m.Called()
	return args.Get(0).([]uint), args.Error(1)
}

func (m *mockBusinessRepo) ListByIDs(ids []uint) ([]models.Business, error) {
	args := m.Called(ids)
	return args.Get(0).([]models.Business), args.Error(1)
}

func superAdmin() *models.User {
	u := &models.User{Role: models.RoleSuperAdmin}
	u.ID = 1
	return u
}

func regularUser() *models.User {
	u := &models.User{Role: models.RoleUser}
	u.ID = 2
	return u
}

func TestSuperAdminSeesEveryBusiness(t *testing.T) {
	users := new(mockUserRepo)
	memberships := new(mockMembershipRepo)
	businesses := new(mockBusinessRepo)
	svc := NewService(users, memberships, businesses, nil)

	users.On("GetByID", uint(1)).Return(superAdmin(), nil)
	businesses.On("AllIDs").Return([]uint{10, 20, 30}, nil)

	ids, err := svc.AccessibleBusinessIDs(context.Background(), 1, 0)
	require.NoError(t, err)
	assert.Equal(t, []uint{10, 20, 30}, ids)
	memberships.AssertNotCalled(t, "ActiveBusinessIDs", mock.Anything)
}

func TestRegularUserSeesOnlyMembershipBusinesses(t *testing.T) {
	users := new(mockUserRepo)
	memberships := new(mockMembershipRepo)
	businesses := new(mockBusinessRepo)
	svc := NewService(users, memberships, businesses, nil)

	users.On("GetByID", uint(2)).Return(regularUser(), nil)
	memberships.On("ActiveBusinessIDs", uint(2)).Return([]uint{10}, nil)

	ids, err := svc.AccessibleBusinessIDs(context.Background(), 2, 0)
	require.NoError(t, err)
	assert.Equal(t, []uint{10}, ids)
	businesses.AssertNotCalled(t, "AllIDs")
}

func TestNonMemberSeesNothing(t *testing.T) {
	users := new(mockUserRepo)
	memberships := new(mockMembershipRepo)
	svc := NewService(users, memberships, new(mockBusinessRepo), nil)

	users.On("GetByID", uint(2)).Return(regularUser(), nil)
	memberships.On("ActiveBusinessIDs", uint(2)).Return([]uint{}, nil)

	ids, err := svc.AccessibleBusinessIDs(context.Background(), 2, 0)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestRequestedBusinessNarrowsVisibleSet(t *testing.T) {
	users := new(mockUserRepo)
	memberships := new(mockMembershipRepo)
	svc := NewService(users, memberships, new(mockBusinessRepo), nil)

	users.On("GetByID", uint(2)).Return(regularUser(), nil)
	memberships.On("ActiveBusinessIDs", uint(2)).Return([]uint{10, 20}, nil)

	ids, err := svc.AccessibleBusinessIDs(context.Background(), 2, 20)
	require.NoError(t, err)
	assert.Equal(t, []uint{20}, ids)
}

func TestRequestedBusinessOutsideMembershipsIsEmptyNotError(t *testing.T) {
	users := new(mockUserRepo)
	memberships := new(mockMembershipRepo)
	svc := NewService(users, memberships, new(mockBusinessRepo), nil)

	users.On("GetByID", uint(2)).Return(regularUser(), nil)
	memberships.On("ActiveBusinessIDs", uint(2)).Return([]uint{10}, nil)

	ids, err := svc.AccessibleBusinessIDs(context.Background(), 2, 99)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestIsBusinessAdmin(t *testing.T) {
	tests := []struct {
		name        string
		user        *models.User
		memberships []models.Membership
		want        bool
	}{
		{
			name: "super admin without membership",
			user: superAdmin(),
			want: true,
		},
		{
			name: "active business admin",
			user: regularUser(),
			memberships: []models.Membership{
				{UserID: 2, BusinessID: 10, Role: models.MembershipRoleBusinessAdmin, IsActive: true},
			},
			want: true,
		},
		{
			name: "staff is not admin",
			user: regularUser(),
			memberships: []models.Membership{
				{UserID: 2, BusinessID: 10, Role: models.MembershipRoleStaff, IsActive: true},
			},
			want: false,
		},
		{
			name: "deactivated admin row does not count",
			user: regularUser(),
			memberships: []models.Membership{
				{UserID: 2, BusinessID: 10, Role: models.MembershipRoleBusinessAdmin, IsActive: false},
			},
			want: false,
		},
		{
			name: "admin row for another user is ignored",
			user: regularUser(),
			memberships: []models.Membership{
				{UserID: 99, BusinessID: 10, Role: models.MembershipRoleBusinessAdmin, IsActive: true},
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(mockUserRepo)
			memberships := new(mockMembershipRepo)
			svc := NewService(users, memberships, new(mockBusinessRepo), nil)

			users.On("GetByID", tt.user.ID).Return(tt.user, nil)
			memberships.On("ListForBusiness", uint(10)).Return(tt.memberships, nil).Maybe()

			got, err := svc.IsBusinessAdmin(context.Background(), tt.user.ID, 10)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUnknownUserIsRejected(t *testing.T) {
	users := new(mockUserRepo)
	svc := NewService(users, new(mockMembershipRepo), new(mockBusinessRepo), nil)

	users.On("GetByID", uint(42)).Return(nil, repositories.ErrUserNotFound)

	_, err := svc.AccessibleBusinessIDs(context.Background(), 42, 0)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
