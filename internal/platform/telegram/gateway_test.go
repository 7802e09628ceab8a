package telegram

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"channel-admin-backend/internal/common/errors"
)

// fakeClock — детерминированные часы для проверки вытеснения кэша
type fakeClock struct {
	current time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.current
}

func (c *fakeClock) Advance(d time.Duration) {
	c.current = c.current.Add(d)
}

func TestIsBotAdministrator(t *testing.T) {
	tests := []struct {
		name     string
		response string
		expected bool
	}{
		{
			name:     "bot in admin list",
			response: `{"ok":true,"result":[{"user":{"id":12345,"is_bot":true},"status":"administrator"}]}`,
			expected: true,
		},
		{
			name:     "bot not in admin list",
			response: `{"ok":true,"result":[{"user":{"id":777},"status":"creator"}]}`,
			expected: false,
		},
		{
			name:     "api error degrades to false",
			response: `{"ok":false,"description":"Forbidden: bot was kicked"}`,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, tt.response)
			})
			gateway := NewGateway(client, 0, nil)

			assert.Equal(t, tt.expected, gateway.IsBotAdministrator(context.Background(), -1001))
		})
	}
}

func TestIsBotAdministrator_TransportErrorDegradesToFalse(t *testing.T) {
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	server.Close()

	gateway := NewGateway(client, 0, nil)
	assert.False(t, gateway.IsBotAdministrator(context.Background(), -1001))
}

func TestGetBotPermissions(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"ok":true,"result":[
			{"user":{"id":12345,"is_bot":true},"status":"administrator","can_post_messages":true,"can_pin_messages":true}
		]}`)
	})
	gateway := NewGateway(client, 0, nil)

	perms := gateway.GetBotPermissions(context.Background(), -1001)
	require.NotNil(t, perms)
	assert.True(t, perms.CanPostMessages)
	assert.True(t, perms.CanPinMessages)
	assert.False(t, perms.CanDeleteMessages)
	assert.False(t, perms.CanInviteUsers)
}

func TestGetBotPermissions_NilWhenAbsentOrError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"ok":true,"result":[{"user":{"id":777},"status":"creator"}]}`)
	})
	gateway := NewGateway(client, 0, nil)
	assert.Nil(t, gateway.GetBotPermissions(context.Background(), -1001))

	client, _ = newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"ok":false,"description":"Internal Server Error"}`)
	})
	gateway = NewGateway(client, 0, nil)
	assert.Nil(t, gateway.GetBotPermissions(context.Background(), -1001))
}

func TestGetChannelInfo_ComposesChatAndBotStatus(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/bot"+testToken+"/getChat":
			fmt.Fprint(w, `{"ok":true,"result":{"id":-1001,"type":"channel","title":"Test Channel"}}`)
		case r.URL.Path == "/bot"+testToken+"/getChatAdministrators":
			fmt.Fprint(w, `{"ok":true,"result":[{"user":{"id":12345,"is_bot":true},"status":"administrator","can_post_messages":true}]}`)
		default:
			t.Fatalf("unexpected request: %s", r.URL.Path)
		}
	})
	gateway := NewGateway(client, 0, nil)

	info, err := gateway.GetChannelInfo(context.Background(), -1001)
	require.NoError(t, err)
	assert.Equal(t, "Test Channel", info.Title)
	assert.True(t, info.BotIsAdmin)
	require.NotNil(t, info.BotPermissions)
	assert.True(t, info.BotPermissions.CanPostMessages)
}

func TestGetChannelInfo_NoPermissionLookupWhenNotAdmin(t *testing.T) {
	var adminCalls atomic.Int64
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/bot"+testToken+"/getChat":
			fmt.Fprint(w, `{"ok":true,"result":{"id":-1001,"type":"channel","title":"Test Channel"}}`)
		default:
			adminCalls.Add(1)
			fmt.Fprint(w, `{"ok":true,"result":[{"user":{"id":777},"status":"creator"}]}`)
		}
	})
	gateway := NewGateway(client, 0, nil)

	info, err := gateway.GetChannelInfo(context.Background(), -1001)
	require.NoError(t, err)
	assert.False(t, info.BotIsAdmin)
	assert.Nil(t, info.BotPermissions)

	// Только одна проверка списка администраторов: права не запрашиваются
	assert.Equal(t, int64(1), adminCalls.Load())
}

func TestGetChannelInfo_CacheHitWithinTTL(t *testing.T) {
	var chatCalls atomic.Int64
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/bot"+testToken+"/getChat":
			chatCalls.Add(1)
			fmt.Fprint(w, `{"ok":true,"result":{"id":-1001,"type":"channel","title":"Test Channel"}}`)
		default:
			fmt.Fprint(w, `{"ok":true,"result":[]}`)
		}
	})

	clock := &fakeClock{current: time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)}
	gateway := NewGateway(client, 5*time.Minute, clock.Now)

	_, err := gateway.GetChannelInfo(context.Background(), -1001)
	require.NoError(t, err)

	clock.Advance(4 * time.Minute)
	_, err = gateway.GetChannelInfo(context.Background(), -1001)
	require.NoError(t, err)

	assert.Equal(t, int64(1), chatCalls.Load(), "second call within TTL must be served from cache")
}

func TestGetChannelInfo_RefetchAfterTTL(t *testing.T) {
	var chatCalls atomic.Int64
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/bot"+testToken+"/getChat":
			chatCalls.Add(1)
			fmt.Fprint(w, `{"ok":true,"result":{"id":-1001,"type":"channel","title":"Test Channel"}}`)
		default:
			fmt.Fprint(w, `{"ok":true,"result":[]}`)
		}
	})

	clock := &fakeClock{current: time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)}
	gateway := NewGateway(client, 5*time.Minute, clock.Now)

	_, err := gateway.GetChannelInfo(context.Background(), -1001)
	require.NoError(t, err)

	clock.Advance(5 * time.Minute)
	_, err = gateway.GetChannelInfo(context.Background(), -1001)
	require.NoError(t, err)

	assert.Equal(t, int64(2), chatCalls.Load(), "entry at exactly TTL age is stale")
}

func TestGetChannelInfo_ErrorPropagatesAndIsNotCached(t *testing.T) {
	var chatCalls atomic.Int64
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		chatCalls.Add(1)
		fmt.Fprint(w, `{"ok":false,"description":"Bad Request: chat not found"}`)
	})
	gateway := NewGateway(client, 0, nil)

	_, err := gateway.GetChannelInfo(context.Background(), -1001)
	require.Error(t, err)

	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeTelegramAPI, appErr.Code)
	assert.Contains(t, appErr.Message, "Bad Request: chat not found")

	// Повторный вызов снова идет в API: ошибки не кэшируются
	_, err = gateway.GetChannelInfo(context.Background(), -1001)
	require.Error(t, err)
	assert.Equal(t, int64(2), chatCalls.Load())
}
