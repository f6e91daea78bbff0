package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/school-admin-api/internal/models"
	appErrors "github.com/noah-isme/school-admin-api/pkg/errors"
)

type mockUserRepo struct {
	users   map[string]*models.User
	deleted []string
}

func (m *mockUserRepo) FindByID(_ context.Context, id string) (*models.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *user
	return &copied, nil
}

func (m *mockUserRepo) List(_ context.Context, role models.UserRole) ([]models.User, error) {
	var out []models.User
	for _, user := range m.users {
		if role == "" || user.Role == role {
			out = append(out, *user)
		}
	}
	return out, nil
}

func (m *mockUserRepo) Update(_ context.Context, user *models.User) error {
	if _, ok := m.users[user.ID]; !ok {
		return sql.ErrNoRows
	}
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

func (m *mockUserRepo) EmailTaken(_ context.Context, email, excludeID string) (bool, error) {
	for id, user := range m.users {
		if id != excludeID && user.Email != nil && *user.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.users[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.users, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func newUserFixture() (*UserService, *mockUserRepo) {
	repo := &mockUserRepo{users: map[string]*models.User{
		"su-1":    {ID: "su-1", Name: "Root", Email: strptr("root@example.com"), Role: models.RoleSU},
		"admin-1": {ID: "admin-1", Name: "Asha", Email: strptr("asha@example.com"), Role: models.RoleAdmin},
		"teach-1": {ID: "teach-1", Name: "Vikram", Email: strptr("vikram@example.com"), Role: models.RoleTeacher},
	}}
	return NewUserService(repo, nil, zap.NewNop()), repo
}

func TestUserServiceUpdate(t *testing.T) {
	svc, repo := newUserFixture()

	user, err := svc.Update(context.Background(), UpdateUserRequest{UserID: "teach-1", Name: "Vikram S", Email: "Vikram.S@Example.com"})
	require.NoError(t, err)
	assert.Equal(t, "Vikram S", user.Name)
	assert.Equal(t, "vikram.s@example.com", *user.Email)
	assert.Equal(t, "vikram.s@example.com", *repo.users["teach-1"].Email)
}

func TestUserServiceUpdateEmailTaken(t *testing.T) {
	svc, _ := newUserFixture()

	_, err := svc.Update(context.Background(), UpdateUserRequest{UserID: "teach-1", Email: "asha@example.com"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, 409, appErr.Status)
	assert.Equal(t, "email already in use", appErr.Message)
}

func TestUserServiceDelete(t *testing.T) {
	svc, repo := newUserFixture()

	require.NoError(t, svc.Delete(context.Background(), "teach-1"))
	assert.Equal(t, []string{"teach-1"}, repo.deleted)
}

func TestUserServiceDeleteSuperuserForbidden(t *testing.T) {
	svc, repo := newUserFixture()

	err := svc.Delete(context.Background(), "su-1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, 403, appErr.Status)
	assert.Empty(t, repo.deleted)
}

func TestUserServiceDeleteUnknownUser(t *testing.T) {
	svc, _ := newUserFixture()

	err := svc.Delete(context.Background(), "ghost")
	require.Error(t, err)
	assert.Equal(t, 404, appErrors.FromError(err).Status)
}
