package queue

import (
	"testing"
	"time"

	"queue_hack/internal/models"
	"queue_hack/internal/storage"

	"github.com/stretchr/testify/assert"
)

func TestBookGuards(t *testing.T) {
	setupTestDB(t)
	q := createTestQueue(t, 5)
	u := createTestUser(t, "ivan", 0)

	// Закрытая очередь.
	storage.DB.Model(q).Update("is_closed", true)
	_, err := Book(u.ID, q.ID)
	assertEngineErr(t, err, "QUEUE_UNAVAILABLE")

	// Приостановленная очередь.
	storage.DB.Model(q).Updates(map[string]interface{}{"is_closed": false, "is_paused": true})
	_, err = Book(u.ID, q.ID)
	assertEngineErr(t, err, "QUEUE_UNAVAILABLE")

	// Повторный талон в той же очереди.
	storage.DB.Model(q).Update("is_paused", false)
	_, err = Book(u.ID, q.ID)
	assert.NoError(t, err)
	_, err = Book(u.ID, q.ID)
	assertEngineErr(t, err, "ALREADY_HAS_TOKEN")
}

func TestCallNextOrderAndEmpty(t *testing.T) {
	setupTestDB(t)
	q := createTestQueue(t, 5)

	// Пустая очередь — штатный исход, не ошибка.
	called, err := CallNext(q.ID)
	assert.NoError(t, err)
	assert.Nil(t, called)

	bookTokens(t, q.ID, 3)

	called, err = CallNext(q.ID)
	assert.NoError(t, err)
	if assert.NotNil(t, called) {
		assert.Equal(t, 1, called.TokenNumber)
		assert.Equal(t, models.TokenCalling, called.Status)
		assert.NotNil(t, called.CalledAt)
	}

	// Следующий вызов берёт наименьший из оставшихся WAITING.
	second, err := CallNext(q.ID)
	assert.NoError(t, err)
	if assert.NotNil(t, second) {
		assert.Equal(t, 2, second.TokenNumber)
	}
}

func TestConfirmRequiresCall(t *testing.T) {
	setupTestDB(t)
	q := createTestQueue(t, 5)
	tokens := bookTokens(t, q.ID, 1)

	_, err := Confirm(tokens[0].ID)
	assertEngineErr(t, err, "NOT_CALLED")
}

func TestConfirmAwardsPoints(t *testing.T) {
	setupTestDB(t)
	q := createTestQueue(t, 5)
	u := createTestUser(t, "ivan", 3)
	token, err := Book(u.ID, q.ID)
	assert.NoError(t, err)

	_, err = CallNext(q.ID)
	assert.NoError(t, err)

	res, err := Confirm(token.ID)
	assert.NoError(t, err)
	assert.False(t, res.Expired)

	fresh := reload(t, token)
	assert.Equal(t, models.TokenCompleted, fresh.Status)
	assert.Nil(t, fresh.CalledAt)

	var user models.User
	assert.NoError(t, storage.DB.First(&user, u.ID).Error)
	assert.Equal(t, 13, user.RewardPoints)
}

func TestConfirmExpiredAutoSnooze(t *testing.T) {
	setupTestDB(t)
	q := createTestQueue(t, 10)
	tokens := bookTokens(t, q.ID, 3)

	called, err := CallNext(q.ID)
	assert.NoError(t, err)

	// Окно подтверждения (60с) истекло 1 секунду назад.
	late := time.Now().Add(-61 * time.Second)
	storage.DB.Model(&models.Token{}).Where("id = ?", called.ID).Update("called_at", late)

	res, err := Confirm(called.ID)
	assert.NoError(t, err, "просрочка — не жёсткая ошибка")
	assert.True(t, res.Expired)

	fresh := reload(t, tokens[0])
	assert.Equal(t, models.TokenWaiting, fresh.Status)
	assert.Nil(t, fresh.CalledAt)
	assert.Equal(t, 3, fresh.TokenNumber, "талон уходит в хвост очереди")
	assert.Equal(t, []int{1, 2, 3}, waitingNumbers(t, q.ID))
}

func TestSnoozeMovesToBack(t *testing.T) {
	setupTestDB(t)
	q := createTestQueue(t, 10)
	tokens := bookTokens(t, q.ID, 3)

	snoozed, err := Snooze(tokens[0].ID)
	assert.NoError(t, err)
	assert.Equal(t, 3, snoozed.TokenNumber)
	assert.Equal(t, []int{1, 2, 3}, waitingNumbers(t, q.ID))

	// Завершённый талон перенести нельзя.
	_, err = CallNext(q.ID)
	assert.NoError(t, err)
	res, err := Confirm(tokens[1].ID)
	assert.NoError(t, err)
	assert.False(t, res.Expired)
	_, err = Snooze(tokens[1].ID)
	assertEngineErr(t, err, "TOKEN_NOT_MODIFIABLE")
}

func TestCancelGuards(t *testing.T) {
	setupTestDB(t)
	q := createTestQueue(t, 5)
	tokens := bookTokens(t, q.ID, 2)

	// Вызванный талон через отмену не проходит.
	called, err := CallNext(q.ID)
	assert.NoError(t, err)
	_, err = Cancel(called.ID)
	assertEngineErr(t, err, "TOKEN_NOT_MODIFIABLE")

	// Повторная отмена уже пропущенного талона.
	_, err = Cancel(tokens[1].ID)
	assert.NoError(t, err)
	_, err = Cancel(tokens[1].ID)
	assertEngineErr(t, err, "TOKEN_NOT_MODIFIABLE")
}
