package queue

import (
	"errors"
	"fmt"
	"time"

	"queue_hack/internal/models"
	"queue_hack/internal/storage"

	"gorm.io/gorm"
)

// sweepExpiredLocked отклоняет просроченные PENDING-запросы очереди.
// Фоновых таймеров нет: просрочка разрешается при следующем обращении.
func sweepExpiredLocked(tx *gorm.DB, queueID uint, now time.Time) (int, error) {
	var pending []models.SwapRequest
	if err := tx.Where("queue_id = ? AND status = ?", queueID, models.SwapPending).
		Find(&pending).Error; err != nil {
		return 0, err
	}
	rejected := 0
	for i := range pending {
		if pending[i].IsExpired(now) {
			if err := tx.Model(&pending[i]).Update("status", models.SwapRejected).Error; err != nil {
				return rejected, err
			}
			rejected++
		}
	}
	return rejected, nil
}

// senderGuard проверяет, что отправитель может инициировать обмен:
// талон ждёт своей очереди и не находится на вызове.
func senderGuard(t *models.Token) error {
	if t.Status != models.TokenWaiting || t.CalledAt != nil {
		return conflict("TOKEN_NOT_MODIFIABLE", "Талон не может инициировать обмен")
	}
	return nil
}

// ProposeTiered создаёт запрос на обмен с лучшим (ближайшим к началу)
// талоном в диапазоне [rangeStart, rangeEnd] впереди отправителя.
func ProposeTiered(tokenID uint, rangeStart, rangeEnd int) (*models.SwapRequest, error) {
	queueID, err := queueOf(tokenID)
	if err != nil {
		return nil, err
	}
	var req models.SwapRequest
	err = withQueue(queueID, func(tx *gorm.DB) error {
		var sender models.Token
		if err := tx.First(&sender, tokenID).Error; err != nil {
			return notFound("TOKEN_NOT_FOUND", "Талон не найден")
		}
		if err := senderGuard(&sender); err != nil {
			return err
		}
		var q models.Queue
		if err := tx.First(&q, queueID).Error; err != nil {
			return err
		}

		// Сначала чистим просроченные запросы, чтобы лимит считался
		// по актуальному состоянию.
		if _, err := sweepExpiredLocked(tx, queueID, time.Now()); err != nil {
			return err
		}

		if rangeEnd-rangeStart >= 10 {
			return validation("RANGE_TOO_WIDE", "Интервал не может превышать 10 мест")
		}
		if rangeEnd >= sender.TokenNumber {
			return validation("RANGE_NOT_AHEAD", "Диапазон должен быть строго впереди вашей позиции")
		}

		var totalWaiting int64
		if err := tx.Model(&models.Token{}).
			Where("queue_id = ? AND status = ?", queueID, models.TokenWaiting).
			Count(&totalWaiting).Error; err != nil {
			return err
		}
		var activeSwaps int64
		if err := tx.Model(&models.SwapRequest{}).
			Where("queue_id = ? AND status = ?", queueID, models.SwapPending).
			Count(&activeSwaps).Error; err != nil {
			return err
		}
		// Лимит пересчитывается от текущего числа ожидающих, отдельный
		// счётчик не ведём, чтобы он не расходился с базой.
		limit := int64(0.2 * float64(totalWaiting))
		if limit < 1 {
			limit = 1
		}
		if activeSwaps >= limit {
			return conflict("SWAP_CAPACITY", "Система обменов загружена на 20% от очереди, попробуйте позже")
		}
		if sender.SwapsUsed >= q.MaxSwapsPerUser {
			return conflict("SWAP_LIMIT_REACHED", "Лимит обменов для этого талона исчерпан")
		}

		var receiver models.Token
		err := tx.Where("queue_id = ? AND status = ? AND token_number >= ? AND token_number <= ?",
			queueID, models.TokenWaiting, rangeStart, rangeEnd).
			Order("token_number ASC").First(&receiver).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return conflict("NO_CANDIDATE",
				fmt.Sprintf("В диапазоне %d-%d нет активных талонов", rangeStart, rangeEnd))
		}
		if err != nil {
			return err
		}

		req = models.SwapRequest{
			QueueID:    queueID,
			SenderID:   sender.ID,
			ReceiverID: receiver.ID,
			Status:     models.SwapPending,
		}
		return tx.Create(&req).Error
	})
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// ProposeDirect создаёт запрос на обмен с конкретным талоном.
// В отличие от диапазонного варианта, без лимита на число активных
// запросов и без проверки диапазона.
func ProposeDirect(tokenID, targetTokenID uint) (*models.SwapRequest, error) {
	queueID, err := queueOf(tokenID)
	if err != nil {
		return nil, err
	}
	var req models.SwapRequest
	err = withQueue(queueID, func(tx *gorm.DB) error {
		var sender models.Token
		if err := tx.First(&sender, tokenID).Error; err != nil {
			return notFound("TOKEN_NOT_FOUND", "Талон не найден")
		}
		if err := senderGuard(&sender); err != nil {
			return err
		}
		var q models.Queue
		if err := tx.First(&q, queueID).Error; err != nil {
			return err
		}
		var receiver models.Token
		if err := tx.First(&receiver, targetTokenID).Error; err != nil {
			return notFound("TOKEN_NOT_FOUND", "Целевой талон не найден")
		}
		if receiver.QueueID != queueID {
			return validation("DIFFERENT_QUEUE", "Целевой талон должен быть в той же очереди")
		}
		if receiver.Status != models.TokenWaiting {
			return conflict("TARGET_NOT_WAITING", "Целевой талон уже не ожидает")
		}
		if sender.SwapsUsed >= q.MaxSwapsPerUser {
			return conflict("SWAP_LIMIT_REACHED", "Лимит обменов для этого талона исчерпан")
		}

		req = models.SwapRequest{
			QueueID:    queueID,
			SenderID:   sender.ID,
			ReceiverID: receiver.ID,
			Status:     models.SwapPending,
		}
		return tx.Create(&req).Error
	})
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// AcceptResult — исход принятия обмена. Expired и Invalid означают, что
// запрос был автоматически отклонён; это не жёсткая ошибка, побочный
// эффект (REJECTED) фиксируется.
type AcceptResult struct {
	Expired bool // запрос просрочен
	Invalid bool // одна из сторон уже не в статусе WAITING
}

// AcceptSwap принимает обмен: стороны меняются номерами, отправителю
// засчитывается использованный обмен, применяется перевод баллов
// (отправитель -10 с полом в 0, получатель +5), остальные PENDING-запросы,
// затрагивающие любую из сторон, отклоняются каскадом. Всё — атомарно.
func AcceptSwap(swapID uint) (*AcceptResult, error) {
	var probe models.SwapRequest
	if err := storage.DB.Select("queue_id").First(&probe, swapID).Error; err != nil {
		return nil, notFound("SWAP_NOT_FOUND", "Запрос на обмен не найден")
	}
	var res AcceptResult
	err := withQueue(probe.QueueID, func(tx *gorm.DB) error {
		var swap models.SwapRequest
		if err := tx.First(&swap, swapID).Error; err != nil {
			return notFound("SWAP_NOT_FOUND", "Запрос на обмен не найден")
		}
		if swap.Status != models.SwapPending {
			return conflict("SWAP_NOT_PENDING", "Запрос на обмен уже обработан")
		}
		if swap.IsExpired(time.Now()) {
			res.Expired = true
			return tx.Model(&swap).Update("status", models.SwapRejected).Error
		}

		var sender, receiver models.Token
		if err := tx.First(&sender, swap.SenderID).Error; err != nil {
			return err
		}
		if err := tx.First(&receiver, swap.ReceiverID).Error; err != nil {
			return err
		}
		if sender.Status != models.TokenWaiting || receiver.Status != models.TokenWaiting {
			res.Invalid = true
			return tx.Model(&swap).Update("status", models.SwapRejected).Error
		}

		// Обмен номерами — именно обмен, не сдвиг.
		senderNumber, receiverNumber := sender.TokenNumber, receiver.TokenNumber
		if err := tx.Model(&sender).Updates(map[string]interface{}{
			"token_number": receiverNumber,
			"swaps_used":   sender.SwapsUsed + 1,
		}).Error; err != nil {
			return err
		}
		if err := tx.Model(&receiver).Update("token_number", senderNumber).Error; err != nil {
			return err
		}

		// Перевод баллов несимметричный: -10/+5, 5 баллов исчезают.
		// Так задумано продуктом, не выравнивать до нулевой суммы.
		var senderUser, receiverUser models.User
		if err := tx.First(&senderUser, sender.UserID).Error; err != nil {
			return err
		}
		if err := tx.First(&receiverUser, receiver.UserID).Error; err != nil {
			return err
		}
		senderPoints := senderUser.RewardPoints - 10
		if senderPoints < 0 {
			senderPoints = 0
		}
		if err := tx.Model(&senderUser).Update("reward_points", senderPoints).Error; err != nil {
			return err
		}
		if err := tx.Model(&receiverUser).Update("reward_points", receiverUser.RewardPoints+5).Error; err != nil {
			return err
		}

		if err := tx.Model(&swap).Update("status", models.SwapAccepted).Error; err != nil {
			return err
		}

		// Каскадная инвалидация: все прочие PENDING-запросы с участием
		// любой из сторон ссылаются на устаревшие позиции.
		return tx.Model(&models.SwapRequest{}).
			Where("status = ? AND id <> ? AND (sender_id IN ? OR receiver_id IN ?)",
				models.SwapPending, swap.ID,
				[]uint{sender.ID, receiver.ID}, []uint{sender.ID, receiver.ID}).
			Update("status", models.SwapRejected).Error
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// RejectSwap отклоняет ожидающий запрос на обмен. Без побочных эффектов.
func RejectSwap(swapID uint) error {
	var probe models.SwapRequest
	if err := storage.DB.Select("queue_id").First(&probe, swapID).Error; err != nil {
		return notFound("SWAP_NOT_FOUND", "Запрос на обмен не найден")
	}
	return withQueue(probe.QueueID, func(tx *gorm.DB) error {
		var swap models.SwapRequest
		if err := tx.First(&swap, swapID).Error; err != nil {
			return notFound("SWAP_NOT_FOUND", "Запрос на обмен не найден")
		}
		if swap.Status != models.SwapPending {
			return conflict("SWAP_NOT_PENDING", "Запрос на обмен уже обработан")
		}
		return tx.Model(&swap).Update("status", models.SwapRejected).Error
	})
}

// SweepExpiredSwaps отклоняет просроченные запросы очереди. Используется
// фоновой задачей для оперативности; для корректности достаточно
// ленивой проверки при обращении.
func SweepExpiredSwaps(queueID uint) (int, error) {
	rejected := 0
	err := withQueue(queueID, func(tx *gorm.DB) error {
		n, err := sweepExpiredLocked(tx, queueID, time.Now())
		rejected = n
		return err
	})
	return rejected, err
}
