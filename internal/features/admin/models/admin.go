package models

import "time"

// Роли администраторов канала
const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleEditor = "editor"
)

// Теги записей журнала активности
const (
	ActionAdminAdded         = "admin_added"
	ActionPermissionsUpdated = "permissions_updated"
	ActionAdminRemoved       = "admin_removed"
)

// AdminAssignment — назначение администратора канала.
// Пара (channel_id, user_id) уникальна; порядок разрешений не важен.
// Email и LastSignIn читаются из связанного аккаунта и этой подсистемой
// не изменяются
type AdminAssignment struct {
	ID          string     `json:"id"`
	ChannelID   string     `json:"channel_id"`
	UserID      string     `json:"user_id"`
	Role        string     `json:"role" enums:"owner,admin,editor"`
	Permissions []string   `json:"permissions"`
	Email       string     `json:"email,omitempty"`
	LastSignIn  *time.Time `json:"last_sign_in,omitempty"`
}

// AdminFilter — серверные предикаты выборки администраторов
type AdminFilter struct {
	// Подстрочный поиск по email связанного аккаунта
	Search string
	// Точное совпадение роли
	Role string
}

// PermissionTemplate — именованный переиспользуемый набор разрешений.
// Не привязан к каналу; уникальность имени не гарантируется
type PermissionTemplate struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Permissions []string  `json:"permissions"`
	CreatedAt   time.Time `json:"created_at"`
}

// ActivityLogEntry — неизменяемая запись журнала аудита.
// Журнал только растет: записи не изменяются и не удаляются
type ActivityLogEntry struct {
	ID        string                 `json:"id"`
	UserID    string                 `json:"user_id"`
	ChannelID string                 `json:"channel_id"`
	Action    string                 `json:"action"`
	Details   map[string]interface{} `json:"details"`
	CreatedAt time.Time              `json:"created_at"`
}

// UserInteraction — сырая запись взаимодействия пользователя
type UserInteraction struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ChannelID string    `json:"channel_id,omitempty"`
	Kind      string    `json:"kind,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// UserStats — производная статистика пользователя
type UserStats struct {
	TotalMessages  int                 `json:"total_messages"`
	LastActivity   *time.Time          `json:"last_activity,omitempty"`
	EngagementRate float64             `json:"engagement_rate"`
	ActivityLogs   []*ActivityLogEntry `json:"activity_logs"`
}
