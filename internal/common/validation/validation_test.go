package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateChatID(t *testing.T) {
	assert.Error(t, ValidateChatID(0))

	// Каналы отрицательные, личные чаты положительные
	assert.NoError(t, ValidateChatID(-1001234567890))
	assert.NoError(t, ValidateChatID(12345))
}

func TestValidateRole(t *testing.T) {
	assert.NoError(t, ValidateRole("owner"))
	assert.NoError(t, ValidateRole("admin"))
	assert.NoError(t, ValidateRole("editor"))

	assert.Error(t, ValidateRole(""))
	assert.Error(t, ValidateRole("superuser"))
	assert.Error(t, ValidateRole("Admin"))
}

func TestValidatePermissions(t *testing.T) {
	assert.NoError(t, ValidatePermissions(nil))
	assert.NoError(t, ValidatePermissions([]string{"post_messages", "delete_messages"}))

	assert.Error(t, ValidatePermissions([]string{""}))
	assert.Error(t, ValidatePermissions([]string{"Post Messages"}))
	assert.Error(t, ValidatePermissions([]string{strings.Repeat("a", MaxPermissionNameLength+1)}))

	tooMany := make([]string, MaxPermissionsCount+1)
	for i := range tooMany {
		tooMany[i] = "p"
	}
	assert.Error(t, ValidatePermissions(tooMany))
}

func TestValidateTemplateName(t *testing.T) {
	assert.NoError(t, ValidateTemplateName("moderators"))
	assert.Error(t, ValidateTemplateName("   "))
	assert.Error(t, ValidateTemplateName(strings.Repeat("a", MaxTemplateNameLength+1)))
}

func TestValidateMessageText(t *testing.T) {
	assert.NoError(t, ValidateMessageText("hello"))
	assert.Error(t, ValidateMessageText(" "))
	assert.Error(t, ValidateMessageText(strings.Repeat("a", MaxMessageLength+1)))
}
