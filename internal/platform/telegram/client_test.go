package telegram

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"channel-admin-backend/internal/common/errors"
)

const testToken = "12345:TEST_SECRET"

// newTestClient поднимает фейковый Bot API и возвращает клиент,
// направленный на него
func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(testToken, server.URL)
	require.NoError(t, err)

	return client, server
}

func TestNewClient_ParsesBotIDFromToken(t *testing.T) {
	client, err := NewClient(testToken, "")
	require.NoError(t, err)
	assert.Equal(t, int64(12345), client.BotID())
}

func TestNewClient_RejectsMalformedToken(t *testing.T) {
	_, err := NewClient("no-colon-here", "")
	assert.Error(t, err)

	_, err = NewClient("abc:secret", "")
	assert.Error(t, err)
}

func TestGetChat_Success(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bot"+testToken+"/getChat", r.URL.Path)
		assert.Equal(t, "-1001", r.URL.Query().Get("chat_id"))

		fmt.Fprint(w, `{"ok":true,"result":{"id":-1001,"type":"channel","title":"Test Channel","username":"testchannel"}}`)
	})

	chat, err := client.GetChat(context.Background(), -1001)
	require.NoError(t, err)
	assert.Equal(t, int64(-1001), chat.ID)
	assert.Equal(t, "Test Channel", chat.Title)
	assert.Equal(t, "channel", chat.Type)
}

func TestGetChat_APIErrorCarriesDescription(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"ok":false,"description":"Bad Request: chat not found"}`)
	})

	_, err := client.GetChat(context.Background(), -1001)
	require.Error(t, err)

	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeTelegramAPI, appErr.Code)
	assert.Contains(t, appErr.Message, "Bad Request: chat not found")
}

func TestGetChatAdministrators_MissingPermissionFlagsAreFalse(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"ok":true,"result":[
			{"user":{"id":12345,"is_bot":true,"first_name":"Bot"},"status":"administrator","can_post_messages":true},
			{"user":{"id":777,"first_name":"Owner"},"status":"creator"}
		]}`)
	})

	admins, err := client.GetChatAdministrators(context.Background(), -1001)
	require.NoError(t, err)
	require.Len(t, admins, 2)

	bot := admins[0]
	assert.True(t, bot.CanPostMessages)
	assert.False(t, bot.CanDeleteMessages)
	assert.False(t, bot.CanPinMessages)
	assert.False(t, bot.CanInviteUsers)
}

func TestGetChatMemberCount(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"ok":true,"result":4210}`)
	})

	count, err := client.GetChatMemberCount(context.Background(), -1001)
	require.NoError(t, err)
	assert.Equal(t, 4210, count)
}

func TestGetUpdates_PassesLimit(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "100", r.URL.Query().Get("limit"))

		fmt.Fprint(w, `{"ok":true,"result":[
			{"update_id":1,"views":500,"reactions":[{"type":"emoji","emoji":"👍"}]},
			{"update_id":2,"views":300}
		]}`)
	})

	updates, err := client.GetUpdates(context.Background(), -1001, 100)
	require.NoError(t, err)
	require.Len(t, updates, 2)
	assert.Equal(t, int64(500), updates[0].Views)
	assert.Len(t, updates[0].Reactions, 1)
	assert.Empty(t, updates[1].Reactions)
}

func TestSendMessage_PostsForm(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "-1001", r.PostForm.Get("chat_id"))
		assert.Equal(t, "hello", r.PostForm.Get("text"))

		fmt.Fprint(w, `{"ok":true,"result":{"message_id":7,"chat":{"id":-1001},"text":"hello"}}`)
	})

	msg, err := client.SendMessage(context.Background(), -1001, "hello")
	require.NoError(t, err)
	assert.Equal(t, int64(7), msg.MessageID)
}

func TestMakeRequest_TransportError(t *testing.T) {
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	server.Close()

	_, err := client.GetMe(context.Background())
	require.Error(t, err)

	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeTransport, appErr.Code)
}

func TestMakeRequest_MalformedJSON(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `not json`)
	})

	_, err := client.GetMe(context.Background())
	require.Error(t, err)

	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeTransport, appErr.Code)
}
