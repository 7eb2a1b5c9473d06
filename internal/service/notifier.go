package service

import "log"

// Notifier доставляет пользователю события в реальном времени
type Notifier interface {
	NotifyUser(userID uint, eventType string, data interface{})
}

// NoopNotifier используется, когда WebSocket отключен (например, в CLI)
type NoopNotifier struct{}

func (NoopNotifier) NotifyUser(userID uint, eventType string, data interface{}) {
	log.Printf("[Notifier] noop %s -> user %d", eventType, userID)
}

// Типы событий, отправляемых сервисами
const (
	EventBadgeAwarded     = "BADGE_AWARDED"
	EventXPAwarded        = "XP_AWARDED"
	EventCourseCompleted  = "COURSE_COMPLETED"
	EventForumPostCreated = "FORUM_POST_CREATED"
	EventNotification     = "NOTIFICATION"
)
