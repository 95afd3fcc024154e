package models

import (
	"time"

	"gorm.io/gorm"
)

// Статусы талона.
const (
	TokenWaiting   = "WAITING"
	TokenCalling   = "CALLING"
	TokenCompleted = "COMPLETED"
	TokenSkipped   = "SKIPPED"
)

// CallWindow — окно подтверждения после вызова талона.
const CallWindow = 60 * time.Second

type Token struct {
	gorm.Model
	UserID      uint       `gorm:"index;not null"`
	User        User       `gorm:"foreignKey:UserID"`
	QueueID     uint       `gorm:"index;not null"`
	Queue       Queue      `gorm:"foreignKey:QueueID"`
	TokenNumber int        `gorm:"index;not null"` // Номер в очереди; среди WAITING всегда непрерывный диапазон 1..N
	Status      string     `gorm:"default:WAITING"`
	SwapsUsed   int        `gorm:"default:0"`
	JoinedAt    time.Time
	CalledAt    *time.Time // Время вызова; nil — талон не вызывался
}

// IsCallExpired сообщает, истекло ли окно подтверждения вызова.
func (t *Token) IsCallExpired(now time.Time) bool {
	if t.CalledAt == nil {
		return false
	}
	return now.After(t.CalledAt.Add(CallWindow))
}
