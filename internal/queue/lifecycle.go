package queue

import (
	"errors"
	"time"

	"queue_hack/internal/models"
	"queue_hack/internal/storage"

	"gorm.io/gorm"
)

// queueOf возвращает очередь талона. Вызывается до захвата блокировки,
// внутри критической секции талон перечитывается заново.
func queueOf(tokenID uint) (uint, error) {
	var t models.Token
	if err := storage.DB.Select("queue_id").First(&t, tokenID).Error; err != nil {
		return 0, notFound("TOKEN_NOT_FOUND", "Талон не найден")
	}
	return t.QueueID, nil
}

// Book выдаёт пользователю новый талон в очереди.
func Book(userID, queueID uint) (*models.Token, error) {
	var token models.Token
	err := withQueue(queueID, func(tx *gorm.DB) error {
		var q models.Queue
		if err := tx.First(&q, queueID).Error; err != nil {
			return notFound("QUEUE_NOT_FOUND", "Очередь не найдена")
		}
		if q.IsClosed || q.IsPaused {
			return conflict("QUEUE_UNAVAILABLE", "Очередь сейчас недоступна")
		}
		var existing models.Token
		err := tx.Where("user_id = ? AND queue_id = ? AND status = ?",
			userID, queueID, models.TokenWaiting).First(&existing).Error
		if err == nil {
			return conflict("ALREADY_HAS_TOKEN", "У вас уже есть активный талон в этой очереди")
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		number, err := NextNumber(tx, &q)
		if err != nil {
			return err
		}
		token = models.Token{
			UserID:      userID,
			QueueID:     queueID,
			TokenNumber: number,
			Status:      models.TokenWaiting,
			JoinedAt:    time.Now(),
		}
		return tx.Create(&token).Error
	})
	if err != nil {
		return nil, err
	}
	return &token, nil
}

// CallNext вызывает талон с наименьшим номером в статусе WAITING.
// Пустая очередь — не ошибка: возвращается nil.
func CallNext(queueID uint) (*models.Token, error) {
	var called *models.Token
	err := withQueue(queueID, func(tx *gorm.DB) error {
		var q models.Queue
		if err := tx.First(&q, queueID).Error; err != nil {
			return notFound("QUEUE_NOT_FOUND", "Очередь не найдена")
		}
		var t models.Token
		err := tx.Where("queue_id = ? AND status = ?", queueID, models.TokenWaiting).
			Order("token_number ASC").First(&t).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		now := time.Now()
		if err := tx.Model(&t).Updates(map[string]interface{}{
			"status":    models.TokenCalling,
			"called_at": now,
		}).Error; err != nil {
			return err
		}
		t.Status = models.TokenCalling
		t.CalledAt = &now
		called = &t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return called, nil
}

// ConfirmResult — исход подтверждения вызова.
type ConfirmResult struct {
	Token   models.Token
	Expired bool // окно вызова истекло, талон перенесён в конец очереди
}

// Confirm подтверждает явку по вызванному талону. Если окно вызова (60с)
// истекло, талон автоматически переносится в конец очереди; операция при
// этом считается успешной, исход сообщается флагом Expired.
func Confirm(tokenID uint) (*ConfirmResult, error) {
	queueID, err := queueOf(tokenID)
	if err != nil {
		return nil, err
	}
	var res ConfirmResult
	err = withQueue(queueID, func(tx *gorm.DB) error {
		var t models.Token
		if err := tx.First(&t, tokenID).Error; err != nil {
			return notFound("TOKEN_NOT_FOUND", "Талон не найден")
		}
		if t.CalledAt == nil {
			return conflict("NOT_CALLED", "Талон ещё не был вызван")
		}
		if t.IsCallExpired(time.Now()) {
			if err := snoozeLocked(tx, &t); err != nil {
				return err
			}
			res = ConfirmResult{Token: t, Expired: true}
			return nil
		}

		var u models.User
		if err := tx.First(&u, t.UserID).Error; err != nil {
			return err
		}
		if err := tx.Model(&t).Updates(map[string]interface{}{
			"status":    models.TokenCompleted,
			"called_at": nil,
		}).Error; err != nil {
			return err
		}
		if err := tx.Model(&u).Update("reward_points", u.RewardPoints+10).Error; err != nil {
			return err
		}
		t.Status = models.TokenCompleted
		t.CalledAt = nil
		res = ConfirmResult{Token: t}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// snoozeLocked переносит талон в конец очереди: новый хвостовой номер,
// сброс вызова, статус WAITING, затем перенумерация оставшихся.
func snoozeLocked(tx *gorm.DB, t *models.Token) error {
	last, err := lastIssuedNumber(tx, t.QueueID)
	if err != nil {
		return err
	}
	if err := tx.Model(t).Updates(map[string]interface{}{
		"token_number": last + 1,
		"called_at":    nil,
		"status":       models.TokenWaiting,
	}).Error; err != nil {
		return err
	}
	t.TokenNumber = last + 1
	t.CalledAt = nil
	t.Status = models.TokenWaiting
	if err := Renumber(tx, t.QueueID); err != nil {
		return err
	}
	// Перенумерация могла сдвинуть и сам перенесённый талон.
	return tx.First(t, t.ID).Error
}

// Snooze переносит талон в конец очереди независимо от того, был ли он
// вызван. Проверка полномочий вызывающего — на внешнем слое.
func Snooze(tokenID uint) (*models.Token, error) {
	queueID, err := queueOf(tokenID)
	if err != nil {
		return nil, err
	}
	var token models.Token
	err = withQueue(queueID, func(tx *gorm.DB) error {
		if err := tx.First(&token, tokenID).Error; err != nil {
			return notFound("TOKEN_NOT_FOUND", "Талон не найден")
		}
		if token.Status != models.TokenWaiting && token.Status != models.TokenCalling {
			return conflict("TOKEN_NOT_MODIFIABLE", "Талон уже завершён и не может быть изменён")
		}
		return snoozeLocked(tx, &token)
	})
	if err != nil {
		return nil, err
	}
	return &token, nil
}

// CancelResult — исход отмены талона.
type CancelResult struct {
	FCFSClaimOpen bool // освободилось первое место, открыто окно FCFS-захвата
}

// Cancel отменяет ожидающий талон и закрывает разрыв в нумерации.
// Вызванный талон этим путём отменить нельзя.
func Cancel(tokenID uint) (*CancelResult, error) {
	queueID, err := queueOf(tokenID)
	if err != nil {
		return nil, err
	}
	var res CancelResult
	err = withQueue(queueID, func(tx *gorm.DB) error {
		var t models.Token
		if err := tx.First(&t, tokenID).Error; err != nil {
			return notFound("TOKEN_NOT_FOUND", "Талон не найден")
		}
		if t.Status != models.TokenWaiting || t.CalledAt != nil {
			return conflict("TOKEN_NOT_MODIFIABLE", "Талон не может быть изменён")
		}
		position := t.TokenNumber
		if err := tx.Model(&t).Update("status", models.TokenSkipped).Error; err != nil {
			return err
		}
		if err := Renumber(tx, queueID); err != nil {
			return err
		}
		res.FCFSClaimOpen = position == 1
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}
