package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient создает клиента без сетевого соединения
func newTestClient(hub *Hub, userID string) *Client {
	return NewClient(hub, nil, userID)
}

func registerClient(t *testing.T, hub *Hub, client *Client) {
	t.Helper()
	hub.register <- client
	select {
	case <-client.registered:
	case <-time.After(time.Second):
		t.Fatal("клиент не зарегистрирован")
	}
}

func readEvent(t *testing.T, client *Client) map[string]interface{} {
	t.Helper()
	select {
	case msg, ok := <-client.send:
		require.True(t, ok, "канал send закрыт")
		var event map[string]interface{}
		require.NoError(t, json.Unmarshal(msg, &event))
		return event
	case <-time.After(time.Second):
		t.Fatal("сообщение не получено")
	}
	return nil
}

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-hub.Done()
	})
	return hub
}

// ==================== Hub ====================

func TestHub_SendJSONToUser_DeliversToAllUserConnections(t *testing.T) {
	hub := startHub(t)
	first := newTestClient(hub, "7")
	second := newTestClient(hub, "7")
	other := newTestClient(hub, "8")
	registerClient(t, hub, first)
	registerClient(t, hub, second)
	registerClient(t, hub, other)

	require.NoError(t, hub.SendJSONToUser("7", Event{Type: NOTIFICATION, Data: "ok"}))

	assert.Equal(t, NOTIFICATION, readEvent(t, first)["type"])
	assert.Equal(t, NOTIFICATION, readEvent(t, second)["type"])
	select {
	case <-other.send:
		t.Fatal("сообщение не должно дойти до другого пользователя")
	case <-time.After(50 * time.Millisecond):
	}
	assert.Equal(t, 3, hub.ClientCount())
}

func TestHub_Unregister_ClosesSendChannel(t *testing.T) {
	hub := startHub(t)
	client := newTestClient(hub, "1")
	registerClient(t, hub, client)

	hub.unregister <- client

	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 10*time.Millisecond)
	_, ok := <-client.send
	assert.False(t, ok, "канал send должен быть закрыт")
}

func TestHub_BroadcastJSON(t *testing.T) {
	hub := startHub(t)
	a := newTestClient(hub, "1")
	b := newTestClient(hub, "2")
	registerClient(t, hub, a)
	registerClient(t, hub, b)

	require.NoError(t, hub.BroadcastJSON(Event{Type: FORUM_POST_CREATED, Data: 1}))

	assert.Equal(t, FORUM_POST_CREATED, readEvent(t, a)["type"])
	assert.Equal(t, FORUM_POST_CREATED, readEvent(t, b)["type"])
}

// ==================== Manager ====================

func TestManager_HandleMessage_DispatchesRegisteredHandler(t *testing.T) {
	// Arrange
	hub := NewHub()
	manager := NewManager(hub)
	client := newTestClient(hub, "5")
	var received struct {
		QuizID uint `json:"quiz_id"`
	}
	manager.RegisterHandler(PlayerLoad, func(data json.RawMessage, c *Client) error {
		return json.Unmarshal(data, &received)
	})

	// Act
	err := manager.HandleMessage([]byte(`{"type":"player:load","data":{"quiz_id":42}}`), client)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, uint(42), received.QuizID)
}

func TestManager_HandleMessage_UnknownTypeSendsErrorAndKeepsConnection(t *testing.T) {
	hub := NewHub()
	manager := NewManager(hub)
	client := newTestClient(hub, "5")

	err := manager.HandleMessage([]byte(`{"type":"nope","data":{}}`), client)

	require.NoError(t, err)
	event := readEvent(t, client)
	assert.Equal(t, SERVER_ERROR, event["type"])
	data := event["data"].(map[string]interface{})
	assert.Equal(t, "unknown_message_type", data["code"])
}

func TestManager_HandleMessage_InvalidJSONReturnsError(t *testing.T) {
	hub := NewHub()
	manager := NewManager(hub)
	client := newTestClient(hub, "5")

	err := manager.HandleMessage([]byte(`{not json`), client)

	assert.Error(t, err)
	assert.Equal(t, SERVER_ERROR, readEvent(t, client)["type"])
}

func TestManager_HandleMessage_HandlerErrorPropagates(t *testing.T) {
	hub := NewHub()
	manager := NewManager(hub)
	client := newTestClient(hub, "5")
	boom := errors.New("boom")
	manager.RegisterHandler(PlayerSubmit, func(json.RawMessage, *Client) error { return boom })

	err := manager.HandleMessage([]byte(`{"type":"player:submit"}`), client)

	assert.ErrorIs(t, err, boom)
}

// ==================== Client ====================

func TestClient_ValuesAndCloseHooks(t *testing.T) {
	client := newTestClient(NewHub(), "3")
	client.Set("player", 10)
	v, ok := client.Get("player")
	require.True(t, ok)
	assert.Equal(t, 10, v)

	calls := 0
	client.OnClose(func() { calls++ })
	client.runCloseHooks()
	client.runCloseHooks()
	assert.Equal(t, 1, calls, "хуки закрытия вызываются один раз")
}

func TestClient_SendEventAfterCloseFails(t *testing.T) {
	client := newTestClient(NewHub(), "3")
	assert.True(t, client.CloseSend())
	assert.False(t, client.CloseSend())

	assert.Error(t, client.SendEvent(NOTIFICATION, nil))
}

// ==================== StartPumps ====================

func stoppedHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	go hub.Run(ctx)
	<-hub.Done()
	return hub
}

func TestClient_StartPumps_FailureRunsCloseHooks(t *testing.T) {
	tests := []struct {
		name   string
		userID string
	}{
		{name: "хаб остановлен", userID: "5"},
		{name: "нет UserID", userID: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			client := newTestClient(stoppedHub(t), tt.userID)
			hooks := 0
			client.OnClose(func() { hooks++ })

			// Act
			started := client.StartPumps(nil)

			// Assert
			assert.False(t, started, "Клиент не должен запускаться")
			assert.Equal(t, 1, hooks, "Хуки закрытия должны выполниться ровно один раз")
		})
	}
}
