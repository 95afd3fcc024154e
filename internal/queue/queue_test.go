package queue

import (
	"fmt"
	"os"
	"testing"
	"time"

	"queue_hack/internal/models"
	"queue_hack/internal/storage"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
)

// setupTestDB подключается к тестовой базе и очищает таблицы.
func setupTestDB(t *testing.T) {
	t.Helper()
	if os.Getenv("ENV_CHEK") == "" {
		_ = godotenv.Load("../../.env")
	}
	if storage.DB == nil {
		storage.ConnectTestingDatabase()
		if err := storage.DB.AutoMigrate(
			&models.User{},
			&models.Institution{},
			&models.Queue{},
			&models.Token{},
			&models.SwapRequest{},
		); err != nil {
			t.Fatal("Ошибка при миграции тестовой базы:", err)
		}
	}
	storage.DB.Exec("TRUNCATE TABLE users, institutions, queues, tokens, swap_requests RESTART IDENTITY CASCADE;")
}

func createTestInstitution(t *testing.T) *models.Institution {
	t.Helper()
	inst := models.Institution{
		Name:         "Тестовая поликлиника",
		Email:        fmt.Sprintf("inst_%d@example.com", time.Now().UnixNano()),
		PasswordHash: "hashed",
	}
	assert.NoError(t, storage.DB.Create(&inst).Error)
	return &inst
}

func createTestQueue(t *testing.T, size int) *models.Queue {
	t.Helper()
	inst := createTestInstitution(t)
	q := models.Queue{
		InstitutionID:      inst.ID,
		Name:               "Окно 1",
		Size:               size,
		ServiceTimeMinutes: 5,
		AllowSwaps:         true,
		MaxSwapsPerUser:    2,
	}
	assert.NoError(t, storage.DB.Create(&q).Error)
	return &q
}

func createTestUser(t *testing.T, name string, points int) *models.User {
	t.Helper()
	u := models.User{
		Name:         name,
		Email:        fmt.Sprintf("%s_%d@example.com", name, time.Now().UnixNano()),
		PasswordHash: "hashed",
		RewardPoints: points,
	}
	assert.NoError(t, storage.DB.Create(&u).Error)
	return &u
}

// bookTokens выдаёт талоны n новым пользователям и возвращает их.
func bookTokens(t *testing.T, queueID uint, n int) []*models.Token {
	t.Helper()
	tokens := make([]*models.Token, 0, n)
	for i := 0; i < n; i++ {
		u := createTestUser(t, fmt.Sprintf("user%d", i+1), 0)
		token, err := Book(u.ID, queueID)
		assert.NoError(t, err)
		tokens = append(tokens, token)
	}
	return tokens
}

// waitingNumbers возвращает номера WAITING-талонов очереди по порядку.
func waitingNumbers(t *testing.T, queueID uint) []int {
	t.Helper()
	var tokens []models.Token
	assert.NoError(t, storage.DB.
		Where("queue_id = ? AND status = ?", queueID, models.TokenWaiting).
		Order("token_number ASC").Find(&tokens).Error)
	numbers := make([]int, 0, len(tokens))
	for _, tok := range tokens {
		numbers = append(numbers, tok.TokenNumber)
	}
	return numbers
}

func assertEngineErr(t *testing.T, err error, code string) {
	t.Helper()
	var qe *Err
	if assert.ErrorAs(t, err, &qe, "ожидалась ошибка движка с кодом %s", code) {
		assert.Equal(t, code, qe.Code)
	}
}

func reload(t *testing.T, token *models.Token) *models.Token {
	t.Helper()
	var fresh models.Token
	assert.NoError(t, storage.DB.First(&fresh, token.ID).Error)
	return &fresh
}
