package queue

import (
	"queue_hack/internal/models"

	"gorm.io/gorm"
)

// Renumber выдаёт талонам в статусе WAITING номера 1..N по их текущему
// порядку, сохраняя только изменившиеся. Вызывается в той же транзакции,
// что и операция, создавшая разрыв (отмена, перенос в конец).
func Renumber(tx *gorm.DB, queueID uint) error {
	var waiting []models.Token
	if err := tx.
		Where("queue_id = ? AND status = ?", queueID, models.TokenWaiting).
		Order("token_number ASC").
		Find(&waiting).Error; err != nil {
		return err
	}
	for i := range waiting {
		want := i + 1
		if waiting[i].TokenNumber != want {
			if err := tx.Model(&waiting[i]).Update("token_number", want).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

// lastIssuedNumber возвращает максимальный номер, когда-либо выданный в
// очереди. Считается по всем талонам, включая завершённые и пропущенные:
// номера монотонны за всю историю очереди, иначе новый талон мог бы
// получить номер уже обслуженного.
func lastIssuedNumber(tx *gorm.DB, queueID uint) (int, error) {
	var last int
	row := tx.Model(&models.Token{}).
		Where("queue_id = ?", queueID).
		Select("COALESCE(MAX(token_number),0)").Row()
	if err := row.Scan(&last); err != nil {
		return 0, err
	}
	return last, nil
}

// NextNumber возвращает номер для нового талона или ошибку QUEUE_FULL,
// если ёмкость очереди исчерпана.
func NextNumber(tx *gorm.DB, q *models.Queue) (int, error) {
	last, err := lastIssuedNumber(tx, q.ID)
	if err != nil {
		return 0, err
	}
	next := last + 1
	if next > q.Size {
		return 0, conflict("QUEUE_FULL", "Очередь заполнена")
	}
	return next, nil
}
