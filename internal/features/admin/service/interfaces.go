package service

import (
	"context"

	"channel-admin-backend/internal/features/admin/models"
)

type AdminService interface {
	// ListAdmins возвращает администраторов канала; фильтры выполняются
	// на стороне хранилища
	ListAdmins(ctx context.Context, channelID string, filter models.AdminFilter) ([]*models.AdminAssignment, error)

	// AddAdmin добавляет назначение и пишет запись "admin_added" в журнал
	AddAdmin(ctx context.Context, channelID, userID, role string, permissions []string) error

	// UpdatePermissions полностью заменяет набор разрешений и пишет
	// запись "permissions_updated"
	UpdatePermissions(ctx context.Context, channelID, userID string, permissions []string) error

	// RemoveAdmin удаляет назначение и пишет запись "admin_removed"
	RemoveAdmin(ctx context.Context, channelID, userID string) error

	// BulkUpdatePermissions применяет один набор разрешений к нескольким
	// пользователям. Операция не транзакционна: отдельные ошибки
	// поглощаются, частичный успех не откатывается
	BulkUpdatePermissions(ctx context.Context, channelID string, userIDs []string, permissions []string) error

	SaveTemplate(ctx context.Context, name string, permissions []string) (*models.PermissionTemplate, error)
	ListTemplates(ctx context.Context) ([]*models.PermissionTemplate, error)

	GetUserStats(ctx context.Context, userID string) (*models.UserStats, error)
}
