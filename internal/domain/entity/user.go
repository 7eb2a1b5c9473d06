package entity

import (
	"log"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Роли пользователей
const (
	RoleStudent    = "student"
	RoleInstructor = "instructor"
	RoleAdmin      = "admin"
)

// Поддерживаемые языки интерфейса
const (
	LanguageFrench  = "fr"
	LanguageEnglish = "en"
)

// XPPerLevel - количество опыта на один уровень
const XPPerLevel = 1000

// User представляет пользователя в системе
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"size:50;not null;uniqueIndex" json:"username"`
	Email     string    `gorm:"size:100;not null;uniqueIndex" json:"email"`
	Password  string    `gorm:"size:100;not null" json:"-"`
	FullName  string    `gorm:"size:150;not null;default:''" json:"full_name"`
	Role      string    `gorm:"size:20;not null;default:'student'" json:"role"`
	XP        int64     `gorm:"not null;default:0" json:"xp"`
	Language  string    `gorm:"size:5;not null;default:'fr'" json:"language"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (User) TableName() string {
	return "users"
}

// BeforeSave хеширует пароль перед сохранением, только если он не является bcrypt-хешем
func (u *User) BeforeSave(tx *gorm.DB) error {
	if len(u.Password) > 0 && !strings.HasPrefix(u.Password, "$2a$") &&
		!strings.HasPrefix(u.Password, "$2b$") && !strings.HasPrefix(u.Password, "$2y$") {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Printf("[User.BeforeSave] Ошибка при хешировании пароля для email=%s: %v", u.Email, err)
			return err
		}
		u.Password = string(hashedPassword)
	}
	return nil
}

// CheckPassword проверяет, соответствует ли переданный пароль хешу
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// CanAuthor сообщает, может ли пользователь создавать курсы и викторины
func (u *User) CanAuthor() bool {
	return u.Role == RoleInstructor || u.Role == RoleAdmin
}

// Level возвращает уровень пользователя: уровень N начинается с N*1000 XP
func (u *User) Level() int {
	return LevelForXP(u.XP)
}

// LevelForXP вычисляет уровень по количеству опыта
func LevelForXP(xp int64) int {
	if xp <= 0 {
		return 0
	}
	return int(xp / XPPerLevel)
}

// LevelProgress возвращает процент прохождения текущего уровня (0-100)
func LevelProgress(xp int64) int {
	if xp <= 0 {
		return 0
	}
	return int((xp % XPPerLevel) * 100 / XPPerLevel)
}

// IsSupportedLanguage проверяет код языка интерфейса
func IsSupportedLanguage(lang string) bool {
	return lang == LanguageFrench || lang == LanguageEnglish
}
