package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"

	"github.com/yourusername/lms-api/internal/service"
	"github.com/yourusername/lms-api/internal/service/quizplayer"
	"github.com/yourusername/lms-api/internal/websocket"
	"github.com/yourusername/lms-api/pkg/auth"
)

const (
	playerKey       = "quiz_player"
	playerTick      = time.Second
	wsActionTimeout = 15 * time.Second
)

// WSHandler обрабатывает WebSocket соединения: уведомления и живой плеер викторины
type WSHandler struct {
	wsHub          *websocket.Hub
	wsManager      *websocket.Manager
	quizService    *service.QuizService
	attemptService *service.AttemptService
	jwtService     *auth.JWTService
	upgrader       gorillaws.Upgrader
}

// NewWSHandler создает новый обработчик WebSocket
func NewWSHandler(
	wsHub *websocket.Hub,
	wsManager *websocket.Manager,
	quizService *service.QuizService,
	attemptService *service.AttemptService,
	jwtService *auth.JWTService,
	allowedOrigins []string,
) *WSHandler {
	handler := &WSHandler{
		wsHub:          wsHub,
		wsManager:      wsManager,
		quizService:    quizService,
		attemptService: attemptService,
		jwtService:     jwtService,
		upgrader: gorillaws.Upgrader{
			ReadBufferSize:    4096,
			WriteBufferSize:   4096,
			CheckOrigin:       originChecker(allowedOrigins),
			EnableCompression: true,
		},
	}

	// Регистрируем обработчики сообщений один раз при создании обработчика
	handler.registerMessageHandlers()

	return handler
}

// originChecker разрешает соединения без Origin (мобильные клиенты, curl)
// и из списка разрешенных origin (тот же список, что и для CORS)
func originChecker(allowedOrigins []string) func(r *http.Request) bool {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if _, ok := allowed[origin]; ok {
			return true
		}
		log.Printf("WebSocket: rejected unauthorized origin: %s", origin)
		return false
	}
}

// HandleConnection обрабатывает входящее WebSocket соединение
// GET /ws?ticket=...
func (h *WSHandler) HandleConnection(c *gin.Context) {
	// НЕ логируем тикет - это секретные данные аутентификации
	ticket := c.Query("ticket")
	if ticket == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing authentication ticket parameter"})
		return
	}

	claims, err := h.jwtService.ParseWSTicket(ticket)
	if err != nil {
		log.Printf("WebSocket: Invalid or expired ticket - %v", err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired ticket"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade уже записал ответ с ошибкой
		log.Printf("WebSocket: Error upgrading connection for UserID %d: %v", claims.UserID, err)
		return
	}
	log.Printf("WebSocket: Connection upgraded for UserID: %d", claims.UserID)

	client := websocket.NewClient(h.wsHub, conn, strconv.FormatUint(uint64(claims.UserID), 10))
	player, stop := h.attachPlayer(client, claims.UserID)

	if !client.StartPumps(h.wsManager.HandleMessage) {
		log.Printf("[WSHandler] Соединение пользователя %d не зарегистрировано", claims.UserID)
		return
	}
	go runPlayerTicks(client, player, playerTick, stop)
}

// attachPlayer создает плеер викторины соединения. Канал stop закрывается
// хуком закрытия соединения и останавливает горутину PLAYER_TICK.
func (h *WSHandler) attachPlayer(client *websocket.Client, userID uint) (*quizplayer.Player, <-chan struct{}) {
	gateway := service.NewPlayerGateway(h.quizService, h.attemptService, userID)
	notifier := quizplayer.NotifierFunc(func(level quizplayer.Level, message string) {
		if err := client.SendEvent(websocket.NOTIFICATION, gin.H{"level": level, "message": message}); err != nil {
			log.Printf("[WSHandler] Не удалось отправить уведомление пользователю %d: %v", userID, err)
		}
	})
	player := quizplayer.NewPlayer(gateway, notifier)
	client.Set(playerKey, player)

	stop := make(chan struct{})
	client.OnClose(func() { close(stop) })
	return player, stop
}

// runPlayerTicks отправляет время попытки раз в interval, пока попытка идет
func runPlayerTicks(client *websocket.Client, player *quizplayer.Player, interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if player.State() != quizplayer.StateInProgress {
				continue
			}
			elapsed := player.Elapsed()
			client.SendEvent(websocket.PLAYER_TICK, gin.H{
				"elapsed_seconds": int(elapsed / time.Second),
				"elapsed":         quizplayer.FormatElapsed(elapsed),
			})
		}
	}
}

func playerOf(client *websocket.Client) (*quizplayer.Player, error) {
	value, ok := client.Get(playerKey)
	if !ok {
		return nil, fmt.Errorf("no quiz player for connection %s", client.ConnectionID)
	}
	player, ok := value.(*quizplayer.Player)
	if !ok {
		return nil, fmt.Errorf("unexpected player type %T", value)
	}
	return player, nil
}

// playerAction оборачивает обработчик сообщения плеера: разбор данных,
// таймаут, отправка ошибки и нового состояния клиенту.
// Ошибки действий не закрывают соединение.
func (h *WSHandler) playerAction(eventType string, action func(ctx context.Context, data json.RawMessage, player *quizplayer.Player, client *websocket.Client) error) websocket.HandlerFunc {
	return func(data json.RawMessage, client *websocket.Client) error {
		player, err := playerOf(client)
		if err != nil {
			log.Printf("[WSHandler] %v", err)
			h.wsManager.SendErrorToClient(client, "internal_error", "Lecteur de quiz indisponible")
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), wsActionTimeout)
		defer cancel()

		if err := action(ctx, data, player, client); err != nil {
			log.Printf("[WSHandler] %s для пользователя %s: %v", eventType, client.UserID, err)
			h.wsManager.SendErrorToClient(client, "player_error", err.Error())
		}
		if err := client.SendEvent(websocket.PLAYER_STATE, player.View()); err != nil {
			log.Printf("[WSHandler] Не удалось отправить PLAYER_STATE пользователю %s: %v", client.UserID, err)
		}
		return nil
	}
}

func decode(data json.RawMessage, v interface{}) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("invalid message data: %w", err)
	}
	return nil
}

// registerMessageHandlers регистрирует обработчики сообщений плеера
func (h *WSHandler) registerMessageHandlers() {
	h.wsManager.RegisterHandler(websocket.PlayerLoad, h.playerAction(websocket.PlayerLoad,
		func(ctx context.Context, data json.RawMessage, player *quizplayer.Player, _ *websocket.Client) error {
			var req struct {
				QuizID uint `json:"quiz_id"`
			}
			if err := decode(data, &req); err != nil {
				return err
			}
			if req.QuizID == 0 {
				return fmt.Errorf("quiz_id is required")
			}
			return player.Load(ctx, req.QuizID)
		}))

	h.wsManager.RegisterHandler(websocket.PlayerStart, h.playerAction(websocket.PlayerStart,
		func(ctx context.Context, _ json.RawMessage, player *quizplayer.Player, _ *websocket.Client) error {
			return player.Start(ctx)
		}))

	h.wsManager.RegisterHandler(websocket.PlayerAnswer, h.playerAction(websocket.PlayerAnswer,
		func(_ context.Context, data json.RawMessage, player *quizplayer.Player, _ *websocket.Client) error {
			var req struct {
				Index    int    `json:"index"`
				OptionID *uint  `json:"option_id"`
				Text     string `json:"text"`
			}
			if err := decode(data, &req); err != nil {
				return err
			}
			if req.OptionID != nil {
				return player.AnswerOption(req.Index, *req.OptionID)
			}
			return player.AnswerText(req.Index, req.Text)
		}))

	h.wsManager.RegisterHandler(websocket.PlayerNavigate, h.playerAction(websocket.PlayerNavigate,
		func(_ context.Context, data json.RawMessage, player *quizplayer.Player, _ *websocket.Client) error {
			var req struct {
				Index     *int   `json:"index"`
				Direction string `json:"direction"`
			}
			if err := decode(data, &req); err != nil {
				return err
			}
			switch {
			case req.Index != nil:
				player.Navigate(*req.Index)
			case req.Direction == "next":
				player.Next()
			case req.Direction == "prev":
				player.Prev()
			default:
				return fmt.Errorf("index or direction (next|prev) is required")
			}
			return nil
		}))

	h.wsManager.RegisterHandler(websocket.PlayerSubmit, h.playerAction(websocket.PlayerSubmit,
		func(ctx context.Context, _ json.RawMessage, player *quizplayer.Player, client *websocket.Client) error {
			result, err := player.Submit(ctx)
			if err != nil {
				return err
			}
			return client.SendEvent(websocket.PLAYER_RESULT, result)
		}))

	h.wsManager.RegisterHandler(websocket.PlayerRestart, h.playerAction(websocket.PlayerRestart,
		func(_ context.Context, _ json.RawMessage, player *quizplayer.Player, _ *websocket.Client) error {
			return player.Restart()
		}))

	h.wsManager.RegisterHandler(websocket.PlayerReview, h.playerAction(websocket.PlayerReview,
		func(_ context.Context, _ json.RawMessage, player *quizplayer.Player, client *websocket.Client) error {
			items, err := player.Review()
			if err != nil {
				return err
			}
			return client.SendEvent(websocket.PLAYER_REVIEW, gin.H{"items": items})
		}))
}
