package models

import (
	"gorm.io/gorm"
)

type Queue struct {
	gorm.Model
	InstitutionID      uint        `gorm:"index;not null"` // Учреждение-владелец очереди
	Institution        Institution `gorm:"foreignKey:InstitutionID"`
	Name               string      `gorm:"not null"`
	Size               int         `gorm:"not null"`      // Максимальное количество талонов за всю историю очереди
	ServiceTimeMinutes int         `gorm:"default:5"`     // Среднее время обслуживания одного талона
	IsPaused           bool        `gorm:"default:false"` // Очередь приостановлена (новые талоны не выдаются)
	IsClosed           bool        `gorm:"default:false"` // Очередь закрыта
	AllowSwaps         bool        `gorm:"default:true"`
	MaxSwapsPerUser    int         `gorm:"default:2"` // Лимит обменов на один талон
}
