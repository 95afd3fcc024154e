package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"queue_hack/internal/models"
	"queue_hack/internal/queue"
	"queue_hack/internal/response"
	"queue_hack/internal/storage"

	"github.com/gin-gonic/gin"
)

var ctx = context.Background()

func boardCacheKey(queueID uint) string {
	return fmt.Sprintf("queue_board_%d", queueID)
}

// invalidateBoard сбрасывает кэш табло после любой мутации очереди.
func invalidateBoard(queueID uint) {
	if storage.RedisClient != nil {
		storage.RedisClient.Del(ctx, boardCacheKey(queueID))
	}
}

// renderEngineError переводит ошибку движка очереди в HTTP-ответ.
func renderEngineError(c *gin.Context, err error) {
	var qe *queue.Err
	if errors.As(err, &qe) {
		status := http.StatusBadRequest
		if qe.Kind == queue.KindNotFound {
			status = http.StatusNotFound
		}
		c.JSON(status, response.ErrorResponse{
			Code:    qe.Code,
			Message: qe.Message,
		})
		return
	}
	c.JSON(http.StatusInternalServerError, response.ErrorResponse{
		Code:    "DB_ERROR",
		Message: "Внутренняя ошибка сервера",
		Details: err.Error(),
	})
}

func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "INVALID_ID",
			Message: "Неверный идентификатор",
		})
		return 0, false
	}
	return uint(id), true
}

// ownedToken загружает талон и проверяет, что он принадлежит
// авторизованному пользователю.
func ownedToken(c *gin.Context, tokenID uint) (*models.Token, bool) {
	var t models.Token
	if err := storage.DB.First(&t, tokenID).Error; err != nil {
		c.JSON(http.StatusNotFound, response.ErrorResponse{
			Code:    "TOKEN_NOT_FOUND",
			Message: "Талон не найден",
		})
		return nil, false
	}
	if t.UserID != c.GetUint("userID") {
		c.JSON(http.StatusForbidden, response.ErrorResponse{
			Code:    "NOT_YOUR_TOKEN",
			Message: "Талон принадлежит другому пользователю",
		})
		return nil, false
	}
	return &t, true
}

// ownedQueue загружает очередь и проверяет, что ею владеет
// авторизованное учреждение.
func ownedQueue(c *gin.Context, queueID uint) (*models.Queue, bool) {
	var q models.Queue
	if err := storage.DB.First(&q, queueID).Error; err != nil {
		c.JSON(http.StatusNotFound, response.ErrorResponse{
			Code:    "QUEUE_NOT_FOUND",
			Message: "Очередь не найдена",
		})
		return nil, false
	}
	if q.InstitutionID != c.GetUint("institutionID") {
		c.JSON(http.StatusForbidden, response.ErrorResponse{
			Code:    "NOT_YOUR_QUEUE",
			Message: "Очередь принадлежит другому учреждению",
		})
		return nil, false
	}
	return &q, true
}
