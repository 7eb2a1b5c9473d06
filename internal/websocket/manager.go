package websocket

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
)

// Event представляет структуру WebSocket-сообщения
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// HandlerFunc обрабатывает данные события от клиента
type HandlerFunc func(data json.RawMessage, client *Client) error

// Manager обрабатывает WebSocket сообщения
type Manager struct {
	hub *Hub

	mu             sync.RWMutex
	messageHandler map[string]HandlerFunc
}

// NewManager создает новый менеджер WebSocket
func NewManager(hub *Hub) *Manager {
	return &Manager{
		hub:            hub,
		messageHandler: make(map[string]HandlerFunc),
	}
}

// RegisterHandler регистрирует обработчик для определенного типа сообщений
func (m *Manager) RegisterHandler(eventType string, handler HandlerFunc) {
	m.mu.Lock()
	m.messageHandler[eventType] = handler
	m.mu.Unlock()
	log.Printf("[WebSocketManager] Зарегистрирован обработчик для сообщений типа: %s", eventType)
}

// HandleMessage обрабатывает входящее сообщение от клиента.
// Возвращает error, если обработка не удалась и соединение нужно закрыть.
func (m *Manager) HandleMessage(message []byte, client *Client) error {
	var event struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(message, &event); err != nil {
		log.Printf("[WebSocketManager] Некорректное сообщение от %s: %v", client.UserID, err)
		m.SendErrorToClient(client, "invalid_message_format", "Format JSON invalide")
		return err
	}

	m.mu.RLock()
	handler, ok := m.messageHandler[event.Type]
	m.mu.RUnlock()
	if !ok {
		log.Printf("[WebSocketManager] Нет обработчика для типа '%s' от клиента %s", event.Type, client.UserID)
		m.SendErrorToClient(client, "unknown_message_type", fmt.Sprintf("Type de message inconnu : %s", event.Type))
		return nil
	}

	if err := handler(event.Data, client); err != nil {
		log.Printf("[WebSocketManager] Обработчик '%s' вернул ошибку для клиента %s: %v", event.Type, client.UserID, err)
		return err
	}
	return nil
}

// SendErrorToClient отправляет стандартизированное сообщение об ошибке
// только в соединение клиента. Соединение не закрывается.
func (m *Manager) SendErrorToClient(client *Client, code string, message string) {
	data := map[string]string{
		"code":    code,
		"message": message,
	}
	if err := client.SendEvent(SERVER_ERROR, data); err != nil {
		log.Printf("[WebSocketManager] Не удалось отправить ошибку клиенту %s: %v", client.UserID, err)
	}
}

// BroadcastEvent отправляет событие всем клиентам
func (m *Manager) BroadcastEvent(eventType string, data interface{}) error {
	return m.hub.BroadcastJSON(Event{Type: eventType, Data: data})
}

// SendEventToUser отправляет событие всем соединениям пользователя
func (m *Manager) SendEventToUser(userID string, eventType string, data interface{}) error {
	return m.hub.SendJSONToUser(userID, Event{Type: eventType, Data: data})
}

// NotifyUser отправляет событие пользователю по числовому идентификатору
func (m *Manager) NotifyUser(userID uint, eventType string, data interface{}) {
	if err := m.SendEventToUser(fmt.Sprintf("%d", userID), eventType, data); err != nil {
		log.Printf("[WebSocketManager] Ошибка отправки %s пользователю %d: %v", eventType, userID, err)
	}
}

// GetMetrics возвращает текущие метрики WebSocket-системы
func (m *Manager) GetMetrics() map[string]interface{} {
	return map[string]interface{}{
		"client_count": m.hub.ClientCount(),
	}
}
