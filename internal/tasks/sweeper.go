package tasks

import (
	"log"
	"time"

	"queue_hack/internal/models"
	"queue_hack/internal/queue"
	"queue_hack/internal/storage"

	"github.com/robfig/cron/v3"
)

// SweepExpiredSwapRequests отклоняет просроченные запросы на обмен во
// всех очередях, где они есть. Для корректности достаточно ленивой
// проверки при обращении; задача нужна только для оперативности UI.
// Каждая очередь обрабатывается под своей блокировкой.
func SweepExpiredSwapRequests() {
	var queueIDs []uint
	if err := storage.DB.Model(&models.SwapRequest{}).
		Where("status = ?", models.SwapPending).
		Distinct("queue_id").
		Pluck("queue_id", &queueIDs).Error; err != nil {
		log.Println("Ошибка поиска очередей с активными обменами:", err)
		return
	}

	total := 0
	for _, id := range queueIDs {
		n, err := queue.SweepExpiredSwaps(id)
		if err != nil {
			log.Println("Ошибка очистки просроченных обменов в очереди", id, ":", err)
			continue
		}
		total += n
	}
	if total > 0 {
		log.Printf("Отклонено просроченных запросов на обмен: %d\n", total)
	}
}

// CleanOldSwapRequests удаляет завершённые запросы на обмен старше недели.
// Талоны не удаляются никогда: нумерация очереди монотонна за всю её
// историю и опирается на максимум по всем выданным талонам.
func CleanOldSwapRequests() {
	threshold := time.Now().Add(-7 * 24 * time.Hour)
	if err := storage.DB.
		Where("status IN ? AND created_at < ?",
			[]string{models.SwapAccepted, models.SwapRejected}, threshold).
		Delete(&models.SwapRequest{}).Error; err != nil {
		log.Println("Ошибка при удалении старых запросов на обмен:", err)
	} else {
		log.Println("Старые запросы на обмен успешно удалены.")
	}
}

// InitScheduler инициализирует планировщик cron-задач.
func InitScheduler() *cron.Cron {
	c := cron.New(cron.WithSeconds())

	// Очистка просроченных обменов раз в минуту.
	_, err := c.AddFunc("0 * * * * *", SweepExpiredSwapRequests)
	if err != nil {
		log.Println("Ошибка запуска cron-задачи SweepExpiredSwapRequests:", err)
	}

	// Удаление завершённых запросов на обмен каждый день в 03:00.
	_, err = c.AddFunc("0 0 3 * * *", CleanOldSwapRequests)
	if err != nil {
		log.Println("Ошибка запуска cron-задачи CleanOldSwapRequests:", err)
	}

	c.Start()
	log.Println("Cron-планировщик запущен.")
	return c
}
