package queue

import (
	"queue_hack/internal/models"

	"gorm.io/gorm"
)

// MoveBack переставляет ожидающий талон назад на позицию targetPosition.
// Цель обрезается по последнему занятому номеру; талоны строго между
// старой и новой позициями сдвигаются на одно место вперёд, порядок
// остальных не меняется. Возвращает фактическую позицию.
func MoveBack(tokenID uint, targetPosition int) (int, error) {
	queueID, err := queueOf(tokenID)
	if err != nil {
		return 0, err
	}
	actual := 0
	err = withQueue(queueID, func(tx *gorm.DB) error {
		var t models.Token
		if err := tx.First(&t, tokenID).Error; err != nil {
			return notFound("TOKEN_NOT_FOUND", "Талон не найден")
		}
		if t.Status != models.TokenWaiting || t.CalledAt != nil {
			return conflict("TOKEN_NOT_MODIFIABLE", "Талон не может быть изменён")
		}
		current := t.TokenNumber
		if targetPosition <= current {
			return validation("TARGET_NOT_BEHIND", "Целевая позиция должна быть позади текущей")
		}

		var last models.Token
		tail := current
		if err := tx.Where("queue_id = ? AND status = ?", queueID, models.TokenWaiting).
			Order("token_number DESC").First(&last).Error; err == nil {
			tail = last.TokenNumber
		}
		actual = targetPosition
		if actual > tail {
			actual = tail
		}

		// Сдвиг промежуточных талонов на одну позицию вперёд.
		var between []models.Token
		if err := tx.Where("queue_id = ? AND status = ? AND token_number > ? AND token_number <= ?",
			queueID, models.TokenWaiting, current, actual).
			Order("token_number ASC").Find(&between).Error; err != nil {
			return err
		}
		for i := range between {
			if err := tx.Model(&between[i]).
				Update("token_number", between[i].TokenNumber-1).Error; err != nil {
				return err
			}
		}
		return tx.Model(&t).Update("token_number", actual).Error
	})
	if err != nil {
		return 0, err
	}
	return actual, nil
}
