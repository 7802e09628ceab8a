package validation

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	// Максимальные длины для различных полей
	MaxTemplateNameLength   = 100
	MaxPermissionNameLength = 64
	MaxPermissionsCount     = 32
	MaxMessageLength        = 4096
	MaxSearchQueryLength    = 200
)

// Роли администраторов канала
var validRoles = map[string]bool{
	"owner":  true,
	"admin":  true,
	"editor": true,
}

// Имя разрешения: строчные буквы, цифры и подчеркивания
var permissionNameRegex = regexp.MustCompile(`^[a-z0-9_]+$`)

// ValidateChatID проверяет идентификатор чата Telegram.
// Идентификаторы каналов отрицательные, личных чатов — положительные,
// поэтому запрещен только ноль
func ValidateChatID(chatID int64) error {
	if chatID == 0 {
		return fmt.Errorf("chat ID cannot be zero")
	}
	return nil
}

// ValidateUserID проверяет внутренний идентификатор пользователя
func ValidateUserID(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("user ID cannot be empty")
	}
	return nil
}

// ValidateRole проверяет роль администратора
func ValidateRole(role string) error {
	if role == "" {
		return fmt.Errorf("role cannot be empty")
	}

	if !validRoles[role] {
		return fmt.Errorf("role must be one of: owner, admin, editor")
	}

	return nil
}

// ValidatePermissions проверяет набор разрешений
func ValidatePermissions(permissions []string) error {
	if len(permissions) > MaxPermissionsCount {
		return fmt.Errorf("permissions cannot exceed %d entries", MaxPermissionsCount)
	}

	for _, p := range permissions {
		if p == "" {
			return fmt.Errorf("permission name cannot be empty")
		}

		if len(p) > MaxPermissionNameLength {
			return fmt.Errorf("permission name cannot exceed %d characters", MaxPermissionNameLength)
		}

		if !permissionNameRegex.MatchString(p) {
			return fmt.Errorf("permission name must contain only lowercase letters, numbers and underscores")
		}
	}

	return nil
}

// ValidateTemplateName проверяет имя шаблона разрешений
func ValidateTemplateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("template name cannot be empty")
	}

	if len(name) > MaxTemplateNameLength {
		return fmt.Errorf("template name cannot exceed %d characters", MaxTemplateNameLength)
	}

	return nil
}

// ValidateMessageText проверяет текст сообщения
func ValidateMessageText(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("message text cannot be empty")
	}

	if len(text) > MaxMessageLength {
		return fmt.Errorf("message text cannot exceed %d characters", MaxMessageLength)
	}

	return nil
}

// ValidateSearchQuery проверяет поисковый запрос
func ValidateSearchQuery(query string) error {
	if len(query) > MaxSearchQueryLength {
		return fmt.Errorf("search query cannot exceed %d characters", MaxSearchQueryLength)
	}
	return nil
}

// IsValidRole проверяет роль без возврата ошибки
func IsValidRole(role string) bool {
	return validRoles[role]
}
