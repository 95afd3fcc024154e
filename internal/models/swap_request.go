package models

import (
	"time"

	"gorm.io/gorm"
)

// Статусы запроса на обмен местами.
const (
	SwapPending  = "PENDING"
	SwapAccepted = "ACCEPTED"
	SwapRejected = "REJECTED"
)

// SwapTTL — время жизни запроса на обмен.
const SwapTTL = 5 * time.Minute

type SwapRequest struct {
	gorm.Model
	QueueID    uint   `gorm:"index;not null"`
	SenderID   uint   `gorm:"index;not null"` // Талон, который хочет продвинуться вперёд
	Sender     Token  `gorm:"foreignKey:SenderID"`
	ReceiverID uint   `gorm:"index;not null"` // Талон, которому предлагают обмен
	Receiver   Token  `gorm:"foreignKey:ReceiverID"`
	Status     string `gorm:"index;default:PENDING"`
}

// IsExpired сообщает, просрочен ли запрос. Просроченные запросы
// отклоняются при следующем обращении, фоновых таймеров нет.
func (s *SwapRequest) IsExpired(now time.Time) bool {
	return now.After(s.CreatedAt.Add(SwapTTL))
}
