package websocket

// Входящие сообщения плеера викторины
const (
	PlayerLoad     = "player:load"
	PlayerStart    = "player:start"
	PlayerAnswer   = "player:answer"
	PlayerNavigate = "player:navigate"
	PlayerSubmit   = "player:submit"
	PlayerRestart  = "player:restart"
	PlayerReview   = "player:review"
)

// Исходящие события
const (
	// PLAYER_STATE - снимок состояния плеера после каждого действия
	PLAYER_STATE = "PLAYER_STATE"

	// PLAYER_TICK - ежесекундное обновление времени попытки
	PLAYER_TICK = "PLAYER_TICK"

	// PLAYER_RESULT - итог завершенной попытки
	PLAYER_RESULT = "PLAYER_RESULT"

	// PLAYER_REVIEW - разбор вопросов после завершения
	PLAYER_REVIEW = "PLAYER_REVIEW"

	// NOTIFICATION - временное уведомление для пользователя
	NOTIFICATION = "NOTIFICATION"

	// BADGE_AWARDED сообщает о полученном значке
	BADGE_AWARDED = "BADGE_AWARDED"

	// XP_AWARDED сообщает о начисленном опыте
	XP_AWARDED = "XP_AWARDED"

	// COURSE_COMPLETED сообщает о завершении курса
	COURSE_COMPLETED = "COURSE_COMPLETED"

	// FORUM_POST_CREATED сообщает о новом сообщении в теме
	FORUM_POST_CREATED = "FORUM_POST_CREATED"

	// SERVER_ERROR - ошибка обработки сообщения клиента
	SERVER_ERROR = "server:error"
)
