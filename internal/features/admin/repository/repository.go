package repository

import (
	"context"
	"errors"

	"channel-admin-backend/internal/features/admin/models"
)

var ErrAdminNotFound = errors.New("admin assignment not found")

// AdminRepository определяет методы хранения назначений администраторов,
// шаблонов разрешений и журналов
type AdminRepository interface {
	// ListAdmins возвращает администраторов канала; фильтры применяются
	// как предикаты запроса, не на клиенте
	ListAdmins(ctx context.Context, channelID string, filter models.AdminFilter) ([]*models.AdminAssignment, error)

	InsertAdmin(ctx context.Context, assignment *models.AdminAssignment) error

	// UpdatePermissions полностью заменяет набор разрешений назначения
	UpdatePermissions(ctx context.Context, channelID, userID string, permissions []string) error

	DeleteAdmin(ctx context.Context, channelID, userID string) error

	InsertTemplate(ctx context.Context, template *models.PermissionTemplate) error
	ListTemplates(ctx context.Context) ([]*models.PermissionTemplate, error)

	// InsertActivityLog добавляет запись журнала; журнал append-only
	InsertActivityLog(ctx context.Context, entry *models.ActivityLogEntry) error

	// ListActivityLogs возвращает записи журнала пользователя, свежие первыми
	ListActivityLogs(ctx context.Context, userID string) ([]*models.ActivityLogEntry, error)

	// ListInteractions возвращает взаимодействия пользователя, свежие первыми
	ListInteractions(ctx context.Context, userID string) ([]*models.UserInteraction, error)
}
