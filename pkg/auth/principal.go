package auth

import "github.com/yourusername/lms-api/internal/domain/entity"

// Principal - аутентифицированный пользователь текущего запроса.
// Создается middleware для каждого запроса и передается обработчикам явно.
type Principal struct {
	UserID    uint   `json:"user_id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	SessionID string `json:"session_id,omitempty"`
}

// IsAdmin проверяет роль администратора
func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == entity.RoleAdmin
}

// CanAuthor сообщает, может ли пользователь создавать курсы и викторины
func (p *Principal) CanAuthor() bool {
	return p != nil && (p.Role == entity.RoleInstructor || p.Role == entity.RoleAdmin)
}

// HasRole проверяет, что роль пользователя входит в список
func (p *Principal) HasRole(roles ...string) bool {
	if p == nil {
		return false
	}
	for _, role := range roles {
		if p.Role == role {
			return true
		}
	}
	return false
}

// Owns проверяет, что пользователь является владельцем записи или администратором
func (p *Principal) Owns(ownerID uint) bool {
	return p != nil && (p.UserID == ownerID || p.Role == entity.RoleAdmin)
}
