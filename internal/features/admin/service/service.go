package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"channel-admin-backend/internal/common/errors"
	"channel-admin-backend/internal/common/validation"
	"channel-admin-backend/internal/features/admin/models"
	"channel-admin-backend/internal/features/admin/repository"
	"channel-admin-backend/internal/features/statistics"
)

type adminService struct {
	repo   repository.AdminRepository
	debug  bool
	logger *zap.Logger
}

func NewAdminService(repo repository.AdminRepository, debug bool, logger *zap.Logger) AdminService {
	return &adminService{
		repo:   repo,
		debug:  debug,
		logger: logger,
	}
}

// ListAdmins возвращает администраторов канала
func (s *adminService) ListAdmins(ctx context.Context, channelID string, filter models.AdminFilter) ([]*models.AdminAssignment, error) {
	if err := validation.ValidateSearchQuery(filter.Search); err != nil {
		return nil, errors.NewValidationError("search", err.Error())
	}

	if filter.Role != "" && !validation.IsValidRole(filter.Role) {
		return nil, errors.NewValidationError("role", "Role must be one of: owner, admin, editor").
			WithDetail("provided_value", filter.Role)
	}

	admins, err := s.repo.ListAdmins(ctx, channelID, filter)
	if err != nil {
		s.logger.Error("Failed to list channel admins",
			zap.String("channel_id", channelID),
			zap.Error(err),
		)
		return nil, errors.NewDatabaseError("list channel admins", err).
			WithDetail("channel_id", channelID)
	}

	if s.debug {
		s.logger.Debug("Channel admins listed",
			zap.String("channel_id", channelID),
			zap.Int("count", len(admins)),
		)
	}

	return admins, nil
}

// AddAdmin добавляет назначение администратора. Запись в журнал
// выполняется строго после успешной вставки и не влияет на результат
func (s *adminService) AddAdmin(ctx context.Context, channelID, userID, role string, permissions []string) error {
	if err := validation.ValidateUserID(userID); err != nil {
		return errors.NewValidationError("user_id", err.Error())
	}

	if err := validation.ValidateRole(role); err != nil {
		return errors.NewValidationError("role", err.Error()).
			WithDetail("provided_value", role)
	}

	if err := validation.ValidatePermissions(permissions); err != nil {
		return errors.NewValidationError("permissions", err.Error())
	}

	assignment := &models.AdminAssignment{
		ID:          uuid.New().String(),
		ChannelID:   channelID,
		UserID:      userID,
		Role:        role,
		Permissions: permissions,
	}

	if err := s.repo.InsertAdmin(ctx, assignment); err != nil {
		s.logger.Error("Failed to add admin",
			zap.String("channel_id", channelID),
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return errors.NewDatabaseError("insert admin", err).
			WithDetail("channel_id", channelID).
			WithDetail("user_id", userID)
	}

	s.logActivity(ctx, userID, channelID, models.ActionAdminAdded, map[string]interface{}{
		"role":        role,
		"permissions": permissions,
	})

	s.logger.Info("Admin added",
		zap.String("channel_id", channelID),
		zap.String("user_id", userID),
		zap.String("role", role),
	)

	return nil
}

// UpdatePermissions полностью заменяет набор разрешений назначения.
// Существование назначения заранее не проверяется
func (s *adminService) UpdatePermissions(ctx context.Context, channelID, userID string, permissions []string) error {
	if err := validation.ValidateUserID(userID); err != nil {
		return errors.NewValidationError("user_id", err.Error())
	}

	if err := validation.ValidatePermissions(permissions); err != nil {
		return errors.NewValidationError("permissions", err.Error())
	}

	if err := s.repo.UpdatePermissions(ctx, channelID, userID, permissions); err != nil {
		s.logger.Error("Failed to update permissions",
			zap.String("channel_id", channelID),
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return errors.NewDatabaseError("update permissions", err).
			WithDetail("channel_id", channelID).
			WithDetail("user_id", userID)
	}

	s.logActivity(ctx, userID, channelID, models.ActionPermissionsUpdated, map[string]interface{}{
		"permissions": permissions,
	})

	s.logger.Info("Permissions updated",
		zap.String("channel_id", channelID),
		zap.String("user_id", userID),
		zap.Strings("permissions", permissions),
	)

	return nil
}

// RemoveAdmin удаляет назначение администратора.
// Существование назначения заранее не проверяется
func (s *adminService) RemoveAdmin(ctx context.Context, channelID, userID string) error {
	if err := validation.ValidateUserID(userID); err != nil {
		return errors.NewValidationError("user_id", err.Error())
	}

	if err := s.repo.DeleteAdmin(ctx, channelID, userID); err != nil {
		s.logger.Error("Failed to remove admin",
			zap.String("channel_id", channelID),
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return errors.NewDatabaseError("delete admin", err).
			WithDetail("channel_id", channelID).
			WithDetail("user_id", userID)
	}

	s.logActivity(ctx, userID, channelID, models.ActionAdminRemoved, map[string]interface{}{})

	s.logger.Info("Admin removed",
		zap.String("channel_id", channelID),
		zap.String("user_id", userID),
	)

	return nil
}

// BulkUpdatePermissions применяет набор разрешений к каждому пользователю
// независимо и конкурентно. Ошибки отдельных обновлений логируются и
// поглощаются: частичный успех не откатывается, поэлементный результат
// вызывающему не возвращается
func (s *adminService) BulkUpdatePermissions(ctx context.Context, channelID string, userIDs []string, permissions []string) error {
	if err := validation.ValidatePermissions(permissions); err != nil {
		return errors.NewValidationError("permissions", err.Error())
	}

	var wg sync.WaitGroup
	for _, userID := range userIDs {
		wg.Add(1)
		go func(userID string) {
			defer wg.Done()

			if err := s.repo.UpdatePermissions(ctx, channelID, userID, permissions); err != nil {
				s.logger.Warn("Bulk permission update failed for user",
					zap.String("channel_id", channelID),
					zap.String("user_id", userID),
					zap.Error(err),
				)
			}
		}(userID)
	}
	wg.Wait()

	s.logger.Info("Bulk permission update finished",
		zap.String("channel_id", channelID),
		zap.Int("user_count", len(userIDs)),
	)

	return nil
}

// SaveTemplate сохраняет шаблон разрешений; дубликаты имен допустимы
func (s *adminService) SaveTemplate(ctx context.Context, name string, permissions []string) (*models.PermissionTemplate, error) {
	if err := validation.ValidateTemplateName(name); err != nil {
		return nil, errors.NewValidationError("name", err.Error())
	}

	if err := validation.ValidatePermissions(permissions); err != nil {
		return nil, errors.NewValidationError("permissions", err.Error())
	}

	template := &models.PermissionTemplate{
		ID:          uuid.New().String(),
		Name:        name,
		Permissions: permissions,
		CreatedAt:   time.Now(),
	}

	if err := s.repo.InsertTemplate(ctx, template); err != nil {
		s.logger.Error("Failed to save permission template",
			zap.String("name", name),
			zap.Error(err),
		)
		return nil, errors.NewDatabaseError("insert permission template", err).
			WithDetail("name", name)
	}

	s.logger.Info("Permission template saved",
		zap.String("template_id", template.ID),
		zap.String("name", name),
	)

	return template, nil
}

// ListTemplates возвращает все шаблоны разрешений
func (s *adminService) ListTemplates(ctx context.Context) ([]*models.PermissionTemplate, error) {
	templates, err := s.repo.ListTemplates(ctx)
	if err != nil {
		s.logger.Error("Failed to list permission templates", zap.Error(err))
		return nil, errors.NewDatabaseError("list permission templates", err)
	}

	return templates, nil
}

// GetUserStats собирает статистику пользователя. Взаимодействия и журнал
// запрашиваются параллельно; ошибка любой из двух выборок прерывает
// всю операцию
func (s *adminService) GetUserStats(ctx context.Context, userID string) (*models.UserStats, error) {
	if err := validation.ValidateUserID(userID); err != nil {
		return nil, errors.NewValidationError("user_id", err.Error())
	}

	var (
		wg           sync.WaitGroup
		interactions []*models.UserInteraction
		logs         []*models.ActivityLogEntry
		intErr       error
		logErr       error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		interactions, intErr = s.repo.ListInteractions(ctx, userID)
	}()
	go func() {
		defer wg.Done()
		logs, logErr = s.repo.ListActivityLogs(ctx, userID)
	}()
	wg.Wait()

	if intErr != nil {
		s.logger.Error("Failed to fetch user interactions",
			zap.String("user_id", userID),
			zap.Error(intErr),
		)
		return nil, errors.NewDatabaseError("list user interactions", intErr).
			WithDetail("user_id", userID)
	}

	if logErr != nil {
		s.logger.Error("Failed to fetch user activity logs",
			zap.String("user_id", userID),
			zap.Error(logErr),
		)
		return nil, errors.NewDatabaseError("list user activity logs", logErr).
			WithDetail("user_id", userID)
	}

	stats := &models.UserStats{
		TotalMessages: len(interactions),
		ActivityLogs:  logs,
	}

	if len(interactions) > 0 {
		// Выборка отсортирована по убыванию даты
		t := interactions[0].CreatedAt
		stats.LastActivity = &t
	}

	times := make([]time.Time, 0, len(interactions))
	for _, i := range interactions {
		times = append(times, i.CreatedAt)
	}
	stats.EngagementRate = statistics.UserEngagementRate(times)

	if s.debug {
		s.logger.Debug("User stats computed",
			zap.String("user_id", userID),
			zap.Int("total_messages", stats.TotalMessages),
			zap.Float64("engagement_rate", stats.EngagementRate),
		)
	}

	return stats, nil
}

// logActivity пишет запись журнала после успешной основной операции.
// Ошибка записи логируется и поглощается: проблемы аудита не должны
// блокировать основное действие
func (s *adminService) logActivity(ctx context.Context, userID, channelID, action string, details map[string]interface{}) {
	entry := &models.ActivityLogEntry{
		ID:        uuid.New().String(),
		UserID:    userID,
		ChannelID: channelID,
		Action:    action,
		Details:   details,
		CreatedAt: time.Now(),
	}

	if err := s.repo.InsertActivityLog(ctx, entry); err != nil {
		s.logger.Warn("Failed to write activity log entry",
			zap.String("user_id", userID),
			zap.String("channel_id", channelID),
			zap.String("action", action),
			zap.Error(err),
		)
	}
}
