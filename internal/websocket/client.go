package websocket

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Время, которое разрешено писать сообщение клиенту.
	writeWait = 10 * time.Second

	// Время, которое разрешено клиенту читать следующее сообщение.
	pongWait = 30 * time.Second

	// Периодичность отправки ping-сообщений клиенту.
	pingPeriod = (pongWait * 9) / 10

	// Максимальный размер входящего сообщения (ответ на короткий вопрос может быть длинным)
	maxMessageSize = 8192

	defaultClientBufferSize = 64
)

var (
	newline = []byte{'\n'}
	space   = []byte{' '}
)

// Client является посредником между WebSocket соединением и hub.
type Client struct {
	// ID пользователя
	UserID string

	// Уникальный ID для каждого соединения
	ConnectionID string

	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	sendClosed atomic.Bool
	registered chan struct{}

	// состояние соединения (например, плеер викторины)
	mu      sync.Mutex
	values  map[string]interface{}
	onClose []func()
}

// NewClient создает нового клиента
func NewClient(hub *Hub, conn *websocket.Conn, userID string) *Client {
	return &Client{
		UserID:       userID,
		ConnectionID: uuid.New().String(),
		hub:          hub,
		conn:         conn,
		send:         make(chan []byte, defaultClientBufferSize),
		registered:   make(chan struct{}),
		values:       make(map[string]interface{}),
	}
}

// Set сохраняет значение, связанное с соединением
func (c *Client) Set(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
}

// Get возвращает значение, связанное с соединением
func (c *Client) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.values[key]
	return v, ok
}

// OnClose регистрирует функцию, вызываемую при закрытии соединения
func (c *Client) OnClose(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onClose = append(c.onClose, fn)
}

func (c *Client) runCloseHooks() {
	c.mu.Lock()
	hooks := c.onClose
	c.onClose = nil
	c.mu.Unlock()
	for _, fn := range hooks {
		fn()
	}
}

// SendEvent отправляет событие только этому соединению
func (c *Client) SendEvent(eventType string, data interface{}) error {
	payload, err := json.Marshal(Event{Type: eventType, Data: data})
	if err != nil {
		return err
	}
	if !c.trySend(payload) {
		return fmt.Errorf("client %s send buffer is full or closed", c.ConnectionID)
	}
	return nil
}

func (c *Client) trySend(message []byte) (sent bool) {
	if c.sendClosed.Load() {
		return false
	}
	defer func() {
		// канал мог закрыться между проверкой и отправкой
		if recover() != nil {
			sent = false
		}
	}()
	select {
	case c.send <- message:
		return true
	default:
		return false
	}
}

// CloseSend безопасно закрывает канал send (только один раз)
func (c *Client) CloseSend() bool {
	if c.sendClosed.CompareAndSwap(false, true) {
		close(c.send)
		return true
	}
	return false
}

// readPump читает сообщения от клиента и передает их обработчику
func (c *Client) readPump(messageHandler func(message []byte, client *Client) error) {
	defer func() {
		c.runCloseHooks()
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
		log.Printf("WebSocket Client Read Pump STOPPED for UserID: %s, ConnID: %s", c.UserID, c.ConnectionID)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				log.Printf("WebSocket Client Read Error (UserID: %s, ConnID: %s): %v", c.UserID, c.ConnectionID, err)
			}
			return
		}

		if handlerErr := safeHandleMessage(message, c, messageHandler); handlerErr != nil {
			log.Printf("WebSocket Client Handler Error (UserID: %s, ConnID: %s): %v. Closing connection.", c.UserID, c.ConnectionID, handlerErr)
			return
		}
	}
}

// safeHandleMessage - обертка для вызова обработчика с recover
func safeHandleMessage(message []byte, client *Client, messageHandler func(message []byte, client *Client) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("PANIC recovered in message handler for UserID: %s, ConnID: %s. Panic: %v\nStack trace:\n%s",
				client.UserID, client.ConnectionID, r, string(debug.Stack()))
			err = fmt.Errorf("panic recovered: %v", r)
		}
	}()
	message = bytes.TrimSpace(bytes.Replace(message, newline, space, -1))
	if messageHandler == nil {
		return nil
	}
	return messageHandler(message, client)
}

// writePump отправляет сообщения клиенту из канала send
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("WebSocket Client Write Error (UserID: %s, ConnID: %s): %v", c.UserID, c.ConnectionID, err)
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// registrationTimeout ограничивает ожидание регистрации в хабе
const registrationTimeout = 5 * time.Second

// StartPumps регистрирует клиента в хабе и запускает горутины чтения и записи.
// Возвращает false, если клиент не зарегистрирован; хуки закрытия к этому
// моменту уже выполнены и соединение закрыто.
func (c *Client) StartPumps(messageHandler func(message []byte, client *Client) error) bool {
	if c.UserID == "" {
		log.Printf("WebSocket: client has no UserID, skipping registration")
		c.abort()
		return false
	}

	select {
	case c.hub.register <- c:
	case <-c.hub.done:
		log.Printf("WebSocket: hub is stopped, rejecting client %s", c.UserID)
		c.abort()
		return false
	}

	select {
	case <-c.registered:
	case <-time.After(registrationTimeout):
		log.Printf("WebSocket: timeout waiting for client %s registration", c.UserID)
		go func() {
			select {
			case c.hub.unregister <- c:
			case <-c.hub.done:
			}
		}()
		c.abort()
		return false
	}

	go c.writePump()
	go c.readPump(messageHandler)
	return true
}

// abort освобождает ресурсы клиента, так и не запустившего pump-горутины
func (c *Client) abort() {
	c.runCloseHooks()
	if c.conn != nil {
		c.conn.Close()
	}
}
