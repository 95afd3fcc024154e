package queue

import (
	"testing"
	"time"

	"queue_hack/internal/models"
	"queue_hack/internal/storage"

	"github.com/stretchr/testify/assert"
)

func backdateSwap(t *testing.T, swapID uint, age time.Duration) {
	t.Helper()
	assert.NoError(t, storage.DB.Model(&models.SwapRequest{}).
		Where("id = ?", swapID).
		Update("created_at", time.Now().Add(-age)).Error)
}

func TestTieredProposeValidations(t *testing.T) {
	setupTestDB(t)
	q := createTestQueue(t, 30)
	tokens := bookTokens(t, q.ID, 15)
	sender := tokens[14] // позиция 15

	// Ширина диапазона ограничена: 10 и больше — отказ.
	_, err := ProposeTiered(sender.ID, 1, 11)
	assertEngineErr(t, err, "RANGE_TOO_WIDE")

	// Диапазон должен быть строго впереди отправителя.
	_, err = ProposeTiered(sender.ID, 10, 15)
	assertEngineErr(t, err, "RANGE_NOT_AHEAD")

	// Пустой диапазон: все талоны в [1,4] переведём в терминальный статус.
	for i := 0; i < 4; i++ {
		_, err := Cancel(tokens[i].ID)
		assert.NoError(t, err)
	}
	// После перенумерации отправитель стоит на позиции 11.
	_, err = ProposeTiered(sender.ID, 12, 14)
	assertEngineErr(t, err, "RANGE_NOT_AHEAD")
}

func TestTieredProposeCapacityThrottle(t *testing.T) {
	setupTestDB(t)
	q := createTestQueue(t, 30)
	tokens := bookTokens(t, q.ID, 6)

	// 6 ожидающих: лимит активных запросов = max(1, floor(0.2*6)) = 1.
	_, err := ProposeTiered(tokens[5].ID, 1, 3)
	assert.NoError(t, err)

	_, err = ProposeTiered(tokens[4].ID, 1, 3)
	assertEngineErr(t, err, "SWAP_CAPACITY")
}

func TestTieredProposePicksBestCandidate(t *testing.T) {
	setupTestDB(t)
	q := createTestQueue(t, 30)
	tokens := bookTokens(t, q.ID, 5)

	// Первый талон на вызове: лучший кандидат в [1,4] — номер 2.
	_, err := CallNext(q.ID)
	assert.NoError(t, err)

	swap, err := ProposeTiered(tokens[4].ID, 1, 4)
	assert.NoError(t, err)
	assert.Equal(t, models.SwapPending, swap.Status)
	assert.Equal(t, tokens[1].ID, swap.ReceiverID)
}

func TestTieredProposeNoCandidate(t *testing.T) {
	setupTestDB(t)
	q := createTestQueue(t, 30)
	tokens := bookTokens(t, q.ID, 5)

	// Единственный талон диапазона уже на вызове: CALLING не кандидат.
	_, err := CallNext(q.ID)
	assert.NoError(t, err)

	_, err = ProposeTiered(tokens[4].ID, 1, 1)
	assertEngineErr(t, err, "NO_CANDIDATE")

	var count int64
	storage.DB.Model(&models.SwapRequest{}).Where("queue_id = ?", q.ID).Count(&count)
	assert.Equal(t, int64(0), count, "запрос не должен создаваться")
}

func TestTieredProposeSwapLimit(t *testing.T) {
	setupTestDB(t)
	q := createTestQueue(t, 30)
	tokens := bookTokens(t, q.ID, 10)

	// Лимит обменов на талон исчерпан.
	storage.DB.Model(&models.Token{}).Where("id = ?", tokens[9].ID).
		Update("swaps_used", q.MaxSwapsPerUser)
	_, err := ProposeTiered(tokens[9].ID, 1, 3)
	assertEngineErr(t, err, "SWAP_LIMIT_REACHED")
}

func TestTieredProposeSweepsExpired(t *testing.T) {
	setupTestDB(t)
	q := createTestQueue(t, 30)
	tokens := bookTokens(t, q.ID, 6)

	// Единственный слот лимита занят просроченным запросом: при новой
	// попытке он отклоняется и не мешает.
	stale, err := ProposeTiered(tokens[5].ID, 1, 3)
	assert.NoError(t, err)
	backdateSwap(t, stale.ID, 6*time.Minute)

	fresh, err := ProposeTiered(tokens[4].ID, 1, 3)
	assert.NoError(t, err)
	assert.Equal(t, models.SwapPending, fresh.Status)

	var reloaded models.SwapRequest
	assert.NoError(t, storage.DB.First(&reloaded, stale.ID).Error)
	assert.Equal(t, models.SwapRejected, reloaded.Status)
}

func TestDirectProposeValidations(t *testing.T) {
	setupTestDB(t)
	q := createTestQueue(t, 30)
	other := createTestQueue(t, 30)
	tokens := bookTokens(t, q.ID, 3)
	foreign := bookTokens(t, other.ID, 1)

	// Целевой талон из другой очереди.
	_, err := ProposeDirect(tokens[2].ID, foreign[0].ID)
	assertEngineErr(t, err, "DIFFERENT_QUEUE")

	// Целевой талон уже не ожидает.
	_, err = Cancel(tokens[0].ID)
	assert.NoError(t, err)
	_, err = ProposeDirect(tokens[2].ID, tokens[0].ID)
	assertEngineErr(t, err, "TARGET_NOT_WAITING")

	// Корректный запрос, без диапазонных ограничений и лимита очереди.
	swap, err := ProposeDirect(tokens[2].ID, tokens[1].ID)
	assert.NoError(t, err)
	assert.Equal(t, tokens[1].ID, swap.ReceiverID)
}

func TestAcceptSwapExchangesAndCascades(t *testing.T) {
	setupTestDB(t)
	q := createTestQueue(t, 30)

	senderUser := createTestUser(t, "sender", 12)
	receiverUser := createTestUser(t, "receiver", 7)
	bystander := createTestUser(t, "bystander", 0)

	receiverToken, err := Book(receiverUser.ID, q.ID) // номер 1
	assert.NoError(t, err)
	bystanderToken, err := Book(bystander.ID, q.ID) // номер 2
	assert.NoError(t, err)
	senderToken, err := Book(senderUser.ID, q.ID) // номер 3
	assert.NoError(t, err)

	swap, err := ProposeDirect(senderToken.ID, receiverToken.ID)
	assert.NoError(t, err)

	// Конкурирующий запрос, задевающий получателя: после принятия
	// первого он должен быть отклонён каскадом.
	rival, err := ProposeDirect(bystanderToken.ID, receiverToken.ID)
	assert.NoError(t, err)

	res, err := AcceptSwap(swap.ID)
	assert.NoError(t, err)
	assert.False(t, res.Expired)
	assert.False(t, res.Invalid)

	// Номерами обменялись ровно две стороны.
	assert.Equal(t, 1, reload(t, senderToken).TokenNumber)
	assert.Equal(t, 3, reload(t, receiverToken).TokenNumber)
	assert.Equal(t, 2, reload(t, bystanderToken).TokenNumber)
	assert.Equal(t, 1, reload(t, senderToken).SwapsUsed)

	// Перевод баллов: -10 отправителю, +5 получателю.
	var su, ru models.User
	assert.NoError(t, storage.DB.First(&su, senderUser.ID).Error)
	assert.NoError(t, storage.DB.First(&ru, receiverUser.ID).Error)
	assert.Equal(t, 2, su.RewardPoints)
	assert.Equal(t, 12, ru.RewardPoints)

	var acceptedSwap, rivalSwap models.SwapRequest
	assert.NoError(t, storage.DB.First(&acceptedSwap, swap.ID).Error)
	assert.NoError(t, storage.DB.First(&rivalSwap, rival.ID).Error)
	assert.Equal(t, models.SwapAccepted, acceptedSwap.Status)
	assert.Equal(t, models.SwapRejected, rivalSwap.Status, "каскадная инвалидация")
}

func TestAcceptSwapPointsFlooredAtZero(t *testing.T) {
	setupTestDB(t)
	q := createTestQueue(t, 30)

	senderUser := createTestUser(t, "poor", 4)
	receiverUser := createTestUser(t, "receiver", 0)

	receiverToken, err := Book(receiverUser.ID, q.ID)
	assert.NoError(t, err)
	senderToken, err := Book(senderUser.ID, q.ID)
	assert.NoError(t, err)

	swap, err := ProposeDirect(senderToken.ID, receiverToken.ID)
	assert.NoError(t, err)
	_, err = AcceptSwap(swap.ID)
	assert.NoError(t, err)

	var su, ru models.User
	assert.NoError(t, storage.DB.First(&su, senderUser.ID).Error)
	assert.NoError(t, storage.DB.First(&ru, receiverUser.ID).Error)
	assert.Equal(t, 0, su.RewardPoints, "баллы не уходят в минус")
	assert.Equal(t, 5, ru.RewardPoints)
}

func TestAcceptExpiredSwap(t *testing.T) {
	setupTestDB(t)
	q := createTestQueue(t, 30)
	tokens := bookTokens(t, q.ID, 3)

	swap, err := ProposeDirect(tokens[2].ID, tokens[0].ID)
	assert.NoError(t, err)
	backdateSwap(t, swap.ID, 6*time.Minute)

	res, err := AcceptSwap(swap.ID)
	assert.NoError(t, err, "просрочка — не жёсткая ошибка")
	assert.True(t, res.Expired)

	// Запрос отклонён, номера не тронуты.
	var reloaded models.SwapRequest
	assert.NoError(t, storage.DB.First(&reloaded, swap.ID).Error)
	assert.Equal(t, models.SwapRejected, reloaded.Status)
	assert.Equal(t, 3, reload(t, tokens[2]).TokenNumber)
	assert.Equal(t, 1, reload(t, tokens[0]).TokenNumber)
	assert.Equal(t, 0, reload(t, tokens[2]).SwapsUsed)
}

func TestAcceptInvalidWhenPartyLeft(t *testing.T) {
	setupTestDB(t)
	q := createTestQueue(t, 30)
	tokens := bookTokens(t, q.ID, 3)

	swap, err := ProposeDirect(tokens[2].ID, tokens[1].ID)
	assert.NoError(t, err)

	// Получатель вышел из очереди до принятия.
	_, err = Cancel(tokens[1].ID)
	assert.NoError(t, err)

	res, err := AcceptSwap(swap.ID)
	assert.NoError(t, err)
	assert.True(t, res.Invalid)

	var reloaded models.SwapRequest
	assert.NoError(t, storage.DB.First(&reloaded, swap.ID).Error)
	assert.Equal(t, models.SwapRejected, reloaded.Status)
}

func TestRejectSwap(t *testing.T) {
	setupTestDB(t)
	q := createTestQueue(t, 30)
	tokens := bookTokens(t, q.ID, 3)

	swap, err := ProposeDirect(tokens[2].ID, tokens[0].ID)
	assert.NoError(t, err)

	assert.NoError(t, RejectSwap(swap.ID))

	// Повторная обработка невозможна: запрос уже не PENDING.
	err = RejectSwap(swap.ID)
	assertEngineErr(t, err, "SWAP_NOT_PENDING")
	_, err = AcceptSwap(swap.ID)
	assertEngineErr(t, err, "SWAP_NOT_PENDING")
}

func TestSweepExpiredSwaps(t *testing.T) {
	setupTestDB(t)
	q := createTestQueue(t, 30)
	tokens := bookTokens(t, q.ID, 4)

	stale, err := ProposeDirect(tokens[3].ID, tokens[0].ID)
	assert.NoError(t, err)
	fresh, err := ProposeDirect(tokens[2].ID, tokens[1].ID)
	assert.NoError(t, err)
	backdateSwap(t, stale.ID, 6*time.Minute)

	n, err := SweepExpiredSwaps(q.ID)
	assert.NoError(t, err)
	assert.Equal(t, 1, n)

	var staleReloaded, freshReloaded models.SwapRequest
	assert.NoError(t, storage.DB.First(&staleReloaded, stale.ID).Error)
	assert.NoError(t, storage.DB.First(&freshReloaded, fresh.ID).Error)
	assert.Equal(t, models.SwapRejected, staleReloaded.Status)
	assert.Equal(t, models.SwapPending, freshReloaded.Status)
}
