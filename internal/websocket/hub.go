package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync/atomic"
)

type directMessage struct {
	userID  string
	payload []byte
}

// Hub хранит подключенных клиентов. Реестром владеет одна горутина Run,
// остальные взаимодействуют с ним через каналы.
type Hub struct {
	clients    map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	direct     chan directMessage

	clientCount atomic.Int64
	done        chan struct{}
}

// NewHub создает новый хаб
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 256),
		direct:     make(chan directMessage, 256),
		done:       make(chan struct{}),
	}
}

// Run обрабатывает регистрацию и рассылку до отмены контекста
func (h *Hub) Run(ctx context.Context) {
	log.Println("[WebSocketHub] Хаб запущен")
	defer func() {
		for _, conns := range h.clients {
			for client := range conns {
				client.CloseSend()
			}
		}
		h.clients = make(map[string]map[*Client]bool)
		h.clientCount.Store(0)
		close(h.done)
		log.Println("[WebSocketHub] Хаб остановлен")
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			conns, ok := h.clients[client.UserID]
			if !ok {
				conns = make(map[*Client]bool)
				h.clients[client.UserID] = conns
			}
			conns[client] = true
			h.clientCount.Add(1)
			close(client.registered)

		case client := <-h.unregister:
			conns, ok := h.clients[client.UserID]
			if !ok || !conns[client] {
				continue
			}
			delete(conns, client)
			if len(conns) == 0 {
				delete(h.clients, client.UserID)
			}
			h.clientCount.Add(-1)
			client.CloseSend()

		case message := <-h.broadcast:
			for _, conns := range h.clients {
				for client := range conns {
					h.deliver(client, message)
				}
			}

		case msg := <-h.direct:
			for client := range h.clients[msg.userID] {
				h.deliver(client, msg.payload)
			}
		}
	}
}

// deliver отправляет сообщение без блокировки; медленный клиент отключается
func (h *Hub) deliver(client *Client, message []byte) {
	if client.trySend(message) {
		return
	}
	log.Printf("[WebSocketHub] Буфер клиента %s (Conn: %s) переполнен, отключаем", client.UserID, client.ConnectionID)
	conns := h.clients[client.UserID]
	delete(conns, client)
	if len(conns) == 0 {
		delete(h.clients, client.UserID)
	}
	h.clientCount.Add(-1)
	client.CloseSend()
}

// Done закрывается после остановки хаба
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// ClientCount возвращает количество подключенных клиентов
func (h *Hub) ClientCount() int {
	return int(h.clientCount.Load())
}

// BroadcastJSON отправляет структуру JSON всем клиентам
func (h *Hub) BroadcastJSON(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	select {
	case h.broadcast <- data:
	case <-h.done:
	}
	return nil
}

// SendJSONToUser отправляет структуру JSON всем соединениям пользователя
func (h *Hub) SendJSONToUser(userID string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	select {
	case h.direct <- directMessage{userID: userID, payload: data}:
	case <-h.done:
	}
	return nil
}
