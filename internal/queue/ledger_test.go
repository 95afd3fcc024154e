package queue

import (
	"testing"

	"queue_hack/internal/models"
	"queue_hack/internal/storage"

	"github.com/stretchr/testify/assert"
)

func TestBookAssignsSequentialNumbers(t *testing.T) {
	setupTestDB(t)
	q := createTestQueue(t, 3)

	tokens := bookTokens(t, q.ID, 3)
	assert.Equal(t, 1, tokens[0].TokenNumber)
	assert.Equal(t, 2, tokens[1].TokenNumber)
	assert.Equal(t, 3, tokens[2].TokenNumber)

	// Ёмкость исчерпана: четвёртый талон не выдаётся.
	extra := createTestUser(t, "extra", 0)
	_, err := Book(extra.ID, q.ID)
	assertEngineErr(t, err, "QUEUE_FULL")

	var count int64
	storage.DB.Model(&models.Token{}).Where("queue_id = ?", q.ID).Count(&count)
	assert.Equal(t, int64(3), count, "неудачное бронирование не должно создавать талон")
}

func TestCancelRenumbersAndSignalsFCFS(t *testing.T) {
	setupTestDB(t)
	q := createTestQueue(t, 3)
	tokens := bookTokens(t, q.ID, 3)

	res, err := Cancel(tokens[0].ID)
	assert.NoError(t, err)
	assert.True(t, res.FCFSClaimOpen, "отмена первого места должна открывать FCFS-окно")

	assert.Equal(t, []int{1, 2}, waitingNumbers(t, q.ID))
	assert.Equal(t, models.TokenSkipped, reload(t, tokens[0]).Status)

	// Нумерация монотонна за всю историю: место отменённого талона
	// не переиспользуется, очередь остаётся заполненной.
	extra := createTestUser(t, "extra", 0)
	_, err = Book(extra.ID, q.ID)
	assertEngineErr(t, err, "QUEUE_FULL")
}

func TestCancelMiddleDoesNotSignalFCFS(t *testing.T) {
	setupTestDB(t)
	q := createTestQueue(t, 5)
	tokens := bookTokens(t, q.ID, 3)

	res, err := Cancel(tokens[1].ID)
	assert.NoError(t, err)
	assert.False(t, res.FCFSClaimOpen)
	assert.Equal(t, []int{1, 2}, waitingNumbers(t, q.ID))
}

func TestRenumberIdempotent(t *testing.T) {
	setupTestDB(t)
	q := createTestQueue(t, 10)
	tokens := bookTokens(t, q.ID, 5)

	_, err := Cancel(tokens[2].ID)
	assert.NoError(t, err)
	first := waitingNumbers(t, q.ID)

	// Повторная перенумерация ничего не меняет.
	assert.NoError(t, Renumber(storage.DB, q.ID))
	assert.Equal(t, first, waitingNumbers(t, q.ID))
	assert.Equal(t, []int{1, 2, 3, 4}, first)
}
