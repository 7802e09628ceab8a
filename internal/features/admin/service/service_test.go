package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"channel-admin-backend/internal/common/errors"
	"channel-admin-backend/internal/features/admin/models"
)

// stubAdminRepo — потокобезопасное хранилище в памяти; массовые
// обновления выполняются конкурентно, поэтому без мьютекса нельзя
type stubAdminRepo struct {
	mu sync.Mutex

	admins    []*models.AdminAssignment
	templates []*models.PermissionTemplate
	logs      []*models.ActivityLogEntry

	interactions    []*models.UserInteraction
	interactionsErr error
	logsErr         error

	insertAdminErr error
	insertLogErr   error

	// updateErrs задает ошибку обновления для конкретного пользователя
	updateErrs map[string]error
	updated    map[string][]string
}

func newStubAdminRepo() *stubAdminRepo {
	return &stubAdminRepo{
		updateErrs: make(map[string]error),
		updated:    make(map[string][]string),
	}
}

func (r *stubAdminRepo) ListAdmins(ctx context.Context, channelID string, filter models.AdminFilter) ([]*models.AdminAssignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []*models.AdminAssignment
	for _, a := range r.admins {
		if a.ChannelID == channelID {
			result = append(result, a)
		}
	}
	return result, nil
}

func (r *stubAdminRepo) InsertAdmin(ctx context.Context, assignment *models.AdminAssignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.insertAdminErr != nil {
		return r.insertAdminErr
	}
	r.admins = append(r.admins, assignment)
	return nil
}

func (r *stubAdminRepo) UpdatePermissions(ctx context.Context, channelID, userID string, permissions []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.updateErrs[userID]; err != nil {
		return err
	}
	r.updated[userID] = permissions
	return nil
}

func (r *stubAdminRepo) DeleteAdmin(ctx context.Context, channelID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, a := range r.admins {
		if a.ChannelID == channelID && a.UserID == userID {
			r.admins = append(r.admins[:i], r.admins[i+1:]...)
			return nil
		}
	}
	// Отсутствие назначения не считается ошибкой
	return nil
}

func (r *stubAdminRepo) InsertTemplate(ctx context.Context, template *models.PermissionTemplate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.templates = append(r.templates, template)
	return nil
}

func (r *stubAdminRepo) ListTemplates(ctx context.Context) ([]*models.PermissionTemplate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.templates, nil
}

func (r *stubAdminRepo) InsertActivityLog(ctx context.Context, entry *models.ActivityLogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.insertLogErr != nil {
		return r.insertLogErr
	}
	r.logs = append(r.logs, entry)
	return nil
}

func (r *stubAdminRepo) ListActivityLogs(ctx context.Context, userID string) ([]*models.ActivityLogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.logsErr != nil {
		return nil, r.logsErr
	}

	var result []*models.ActivityLogEntry
	for _, l := range r.logs {
		if l.UserID == userID {
			result = append(result, l)
		}
	}
	return result, nil
}

func (r *stubAdminRepo) ListInteractions(ctx context.Context, userID string) ([]*models.UserInteraction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.interactionsErr != nil {
		return nil, r.interactionsErr
	}
	return r.interactions, nil
}

func newTestAdminService(repo *stubAdminRepo) AdminService {
	return NewAdminService(repo, false, zap.NewNop())
}

func TestAddAdmin_InsertsAndLogs(t *testing.T) {
	repo := newStubAdminRepo()
	svc := newTestAdminService(repo)

	err := svc.AddAdmin(context.Background(), "chan-1", "user-1", models.RoleEditor, []string{"post", "edit"})
	require.NoError(t, err)

	require.Len(t, repo.admins, 1)
	assert.Equal(t, "user-1", repo.admins[0].UserID)
	assert.Equal(t, models.RoleEditor, repo.admins[0].Role)
	assert.NotEmpty(t, repo.admins[0].ID)

	require.Len(t, repo.logs, 1)
	entry := repo.logs[0]
	assert.Equal(t, models.ActionAdminAdded, entry.Action)
	assert.Equal(t, "user-1", entry.UserID)
	assert.Equal(t, "chan-1", entry.ChannelID)
	assert.Equal(t, models.RoleEditor, entry.Details["role"])
	assert.Equal(t, []string{"post", "edit"}, entry.Details["permissions"])
}

func TestAddAdmin_RejectsUnknownRole(t *testing.T) {
	repo := newStubAdminRepo()
	svc := newTestAdminService(repo)

	err := svc.AddAdmin(context.Background(), "chan-1", "user-1", "superuser", nil)
	require.Error(t, err)

	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeValidation, appErr.Code)
	assert.Empty(t, repo.admins)
}

func TestAddAdmin_InsertFailureSkipsLog(t *testing.T) {
	repo := newStubAdminRepo()
	repo.insertAdminErr = fmt.Errorf("unique violation")
	svc := newTestAdminService(repo)

	err := svc.AddAdmin(context.Background(), "chan-1", "user-1", models.RoleAdmin, nil)
	require.Error(t, err)

	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeDatabaseError, appErr.Code)

	assert.Empty(t, repo.logs, "audit entry only after a successful insert")
}

func TestAddThenUpdate_ProducesOrderedLogTrail(t *testing.T) {
	repo := newStubAdminRepo()
	svc := newTestAdminService(repo)

	require.NoError(t, svc.AddAdmin(context.Background(), "chan-1", "user-1", models.RoleEditor, []string{"post"}))
	require.NoError(t, svc.UpdatePermissions(context.Background(), "chan-1", "user-1", []string{"post", "delete"}))

	assert.Equal(t, []string{"post", "delete"}, repo.updated["user-1"])

	require.Len(t, repo.logs, 2)
	assert.Equal(t, models.ActionAdminAdded, repo.logs[0].Action)
	assert.Equal(t, models.ActionPermissionsUpdated, repo.logs[1].Action)
	assert.Equal(t, []string{"post", "delete"}, repo.logs[1].Details["permissions"])
}

func TestRemoveAdmin_LogsWithoutExistenceCheck(t *testing.T) {
	repo := newStubAdminRepo()
	svc := newTestAdminService(repo)

	// Назначения нет, но удаление и запись журнала все равно проходят
	err := svc.RemoveAdmin(context.Background(), "chan-1", "ghost-user")
	require.NoError(t, err)

	require.Len(t, repo.logs, 1)
	assert.Equal(t, models.ActionAdminRemoved, repo.logs[0].Action)
	assert.Equal(t, "ghost-user", repo.logs[0].UserID)
}

func TestBulkUpdatePermissions_AbsorbsIndividualFailures(t *testing.T) {
	repo := newStubAdminRepo()
	repo.updateErrs["user-2"] = fmt.Errorf("deadlock detected")
	svc := newTestAdminService(repo)

	err := svc.BulkUpdatePermissions(context.Background(), "chan-1",
		[]string{"user-1", "user-2", "user-3"}, []string{"post"})
	require.NoError(t, err, "individual failures must not surface")

	assert.Equal(t, []string{"post"}, repo.updated["user-1"])
	assert.Equal(t, []string{"post"}, repo.updated["user-3"])
	assert.NotContains(t, repo.updated, "user-2")
}

func TestBulkUpdatePermissions_EmptyUserList(t *testing.T) {
	repo := newStubAdminRepo()
	svc := newTestAdminService(repo)

	err := svc.BulkUpdatePermissions(context.Background(), "chan-1", nil, []string{"post"})
	require.NoError(t, err)
	assert.Empty(t, repo.updated)
}

func TestSaveTemplate_AllowsDuplicateNames(t *testing.T) {
	repo := newStubAdminRepo()
	svc := newTestAdminService(repo)

	first, err := svc.SaveTemplate(context.Background(), "moderators", []string{"post", "delete"})
	require.NoError(t, err)

	second, err := svc.SaveTemplate(context.Background(), "moderators", []string{"post"})
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Len(t, repo.templates, 2)
}

func TestGetUserStats(t *testing.T) {
	now := time.Date(2025, 1, 16, 12, 0, 0, 0, time.Local)
	repo := newStubAdminRepo()
	repo.interactions = []*models.UserInteraction{
		{ID: "i3", UserID: "user-1", CreatedAt: now},
		{ID: "i2", UserID: "user-1", CreatedAt: now.Add(-2 * time.Hour)},
		{ID: "i1", UserID: "user-1", CreatedAt: now.Add(-24 * time.Hour)},
	}
	repo.logs = []*models.ActivityLogEntry{
		{ID: "l1", UserID: "user-1", Action: models.ActionAdminAdded, CreatedAt: now},
	}
	svc := newTestAdminService(repo)

	stats, err := svc.GetUserStats(context.Background(), "user-1")
	require.NoError(t, err)

	assert.Equal(t, 3, stats.TotalMessages)
	require.NotNil(t, stats.LastActivity)
	assert.Equal(t, now, *stats.LastActivity)

	// Три взаимодействия за два календарных дня
	assert.InDelta(t, 150, stats.EngagementRate, 1e-9)
	require.Len(t, stats.ActivityLogs, 1)
}

func TestGetUserStats_EmptyHistory(t *testing.T) {
	repo := newStubAdminRepo()
	svc := newTestAdminService(repo)

	stats, err := svc.GetUserStats(context.Background(), "user-1")
	require.NoError(t, err)

	assert.Zero(t, stats.TotalMessages)
	assert.Nil(t, stats.LastActivity)
	assert.InDelta(t, 0, stats.EngagementRate, 1e-9)
}

func TestGetUserStats_EitherFetchFailureAborts(t *testing.T) {
	repo := newStubAdminRepo()
	repo.interactionsErr = fmt.Errorf("connection reset")
	svc := newTestAdminService(repo)

	_, err := svc.GetUserStats(context.Background(), "user-1")
	require.Error(t, err)

	repo = newStubAdminRepo()
	repo.logsErr = fmt.Errorf("connection reset")
	svc = newTestAdminService(repo)

	_, err = svc.GetUserStats(context.Background(), "user-1")
	require.Error(t, err)

	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeDatabaseError, appErr.Code)
}

func TestLogActivity_WriteFailureIsSwallowed(t *testing.T) {
	repo := newStubAdminRepo()
	repo.insertLogErr = fmt.Errorf("disk full")
	svc := newTestAdminService(repo)

	// Основная операция успешна несмотря на сломанный журнал
	err := svc.AddAdmin(context.Background(), "chan-1", "user-1", models.RoleAdmin, []string{"post"})
	require.NoError(t, err)

	require.Len(t, repo.admins, 1)
	assert.Empty(t, repo.logs)
}
