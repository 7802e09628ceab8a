package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"

	"channel-admin-backend/internal/features/admin/models"
	"channel-admin-backend/internal/features/admin/repository"
)

type postgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) repository.AdminRepository {
	return &postgresRepository{db: db}
}

// ListAdmins возвращает администраторов канала с данными связанного
// аккаунта. Поиск по email и фильтр роли применяются на стороне базы
func (r *postgresRepository) ListAdmins(ctx context.Context, channelID string, filter models.AdminFilter) ([]*models.AdminAssignment, error) {
	query := `
		SELECT ca.id, ca.channel_id, ca.user_id, ca.role, ca.permissions,
			COALESCE(u.email, ''), u.last_sign_in_at
		FROM channel_admins ca
		LEFT JOIN users u ON u.id = ca.user_id
		WHERE ca.channel_id = $1
	`
	args := []interface{}{channelID}

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		query += fmt.Sprintf(" AND u.email ILIKE $%d", len(args))
	}

	if filter.Role != "" {
		args = append(args, filter.Role)
		query += fmt.Sprintf(" AND ca.role = $%d", len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list admins: %w", err)
	}
	defer rows.Close()

	var admins []*models.AdminAssignment
	for rows.Next() {
		var a models.AdminAssignment
		var lastSignIn sql.NullTime
		if err := rows.Scan(&a.ID, &a.ChannelID, &a.UserID, &a.Role,
			pq.Array(&a.Permissions), &a.Email, &lastSignIn); err != nil {
			return nil, fmt.Errorf("failed to scan admin: %w", err)
		}
		if lastSignIn.Valid {
			t := lastSignIn.Time
			a.LastSignIn = &t
		}
		admins = append(admins, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate admins: %w", err)
	}

	return admins, nil
}

// InsertAdmin добавляет назначение администратора.
// Пара (channel_id, user_id) уникальна на уровне базы
func (r *postgresRepository) InsertAdmin(ctx context.Context, assignment *models.AdminAssignment) error {
	query := `
		INSERT INTO channel_admins (id, channel_id, user_id, role, permissions)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(ctx, query,
		assignment.ID, assignment.ChannelID, assignment.UserID,
		assignment.Role, pq.Array(assignment.Permissions))
	if err != nil {
		return fmt.Errorf("failed to insert admin: %w", err)
	}

	return nil
}

// UpdatePermissions полностью заменяет набор разрешений назначения.
// Отсутствие подходящей строки не считается ошибкой
func (r *postgresRepository) UpdatePermissions(ctx context.Context, channelID, userID string, permissions []string) error {
	query := `
		UPDATE channel_admins
		SET permissions = $3
		WHERE channel_id = $1 AND user_id = $2
	`

	_, err := r.db.ExecContext(ctx, query, channelID, userID, pq.Array(permissions))
	if err != nil {
		return fmt.Errorf("failed to update permissions: %w", err)
	}

	return nil
}

// DeleteAdmin удаляет назначение администратора.
// Отсутствие подходящей строки не считается ошибкой
func (r *postgresRepository) DeleteAdmin(ctx context.Context, channelID, userID string) error {
	query := `
		DELETE FROM channel_admins
		WHERE channel_id = $1 AND user_id = $2
	`

	_, err := r.db.ExecContext(ctx, query, channelID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete admin: %w", err)
	}

	return nil
}

// InsertTemplate добавляет шаблон разрешений; уникальность имени
// на этом уровне не проверяется
func (r *postgresRepository) InsertTemplate(ctx context.Context, template *models.PermissionTemplate) error {
	query := `
		INSERT INTO permission_templates (id, name, permissions, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.ExecContext(ctx, query,
		template.ID, template.Name, pq.Array(template.Permissions), template.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert permission template: %w", err)
	}

	return nil
}

// ListTemplates возвращает все шаблоны разрешений
func (r *postgresRepository) ListTemplates(ctx context.Context) ([]*models.PermissionTemplate, error) {
	query := `
		SELECT id, name, permissions, created_at
		FROM permission_templates
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	defer rows.Close()

	var templates []*models.PermissionTemplate
	for rows.Next() {
		var t models.PermissionTemplate
		if err := rows.Scan(&t.ID, &t.Name, pq.Array(&t.Permissions), &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan template: %w", err)
		}
		templates = append(templates, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate templates: %w", err)
	}

	return templates, nil
}

// InsertActivityLog добавляет запись журнала активности
func (r *postgresRepository) InsertActivityLog(ctx context.Context, entry *models.ActivityLogEntry) error {
	details, err := json.Marshal(entry.Details)
	if err != nil {
		return fmt.Errorf("failed to marshal log details: %w", err)
	}

	query := `
		INSERT INTO user_activity_logs (id, user_id, channel_id, action, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err = r.db.ExecContext(ctx, query,
		entry.ID, entry.UserID, entry.ChannelID, entry.Action, details, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert activity log: %w", err)
	}

	return nil
}

// ListActivityLogs возвращает записи журнала пользователя, свежие первыми
func (r *postgresRepository) ListActivityLogs(ctx context.Context, userID string) ([]*models.ActivityLogEntry, error) {
	query := `
		SELECT id, user_id, COALESCE(channel_id, ''), action, details, created_at
		FROM user_activity_logs
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity logs: %w", err)
	}
	defer rows.Close()

	var entries []*models.ActivityLogEntry
	for rows.Next() {
		var e models.ActivityLogEntry
		var details []byte
		if err := rows.Scan(&e.ID, &e.UserID, &e.ChannelID, &e.Action, &details, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan activity log: %w", err)
		}
		if len(details) > 0 {
			if err := json.Unmarshal(details, &e.Details); err != nil {
				return nil, fmt.Errorf("failed to unmarshal log details: %w", err)
			}
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate activity logs: %w", err)
	}

	return entries, nil
}

// ListInteractions возвращает взаимодействия пользователя, свежие первыми
func (r *postgresRepository) ListInteractions(ctx context.Context, userID string) ([]*models.UserInteraction, error) {
	query := `
		SELECT id, user_id, COALESCE(channel_id, ''), COALESCE(kind, ''), created_at
		FROM user_interactions
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list interactions: %w", err)
	}
	defer rows.Close()

	var interactions []*models.UserInteraction
	for rows.Next() {
		var i models.UserInteraction
		if err := rows.Scan(&i.ID, &i.UserID, &i.ChannelID, &i.Kind, &i.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan interaction: %w", err)
		}
		interactions = append(interactions, &i)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate interactions: %w", err)
	}

	return interactions, nil
}
