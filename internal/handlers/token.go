package handlers

import (
	"net/http"
	"strconv"

	"queue_hack/internal/queue"
	"queue_hack/internal/response"
	"queue_hack/internal/ws"

	"github.com/gin-gonic/gin"
)

// ConfirmTokenHandler подтверждает явку по вызванному талону
// @Summary		Подтверждение явки
// @Description	Подтверждает вызванный талон; при просрочке окна вызова талон автоматически переносится в конец очереди (исход TOKEN_EXPIRED_SNOOZED)
// @Tags			token
// @Produce		json
// @Param			id	path	string	true	"ID талона"
// @Security		BearerAuth
// @Success		200	{object}	response.OutcomeResponse	"CHECKED_IN или TOKEN_EXPIRED_SNOOZED"
// @Failure		400	{object}	response.ErrorResponse		"Талон не вызывался (NOT_CALLED)"
// @Failure		404	{object}	response.ErrorResponse		"Талон не найден (TOKEN_NOT_FOUND)"
// @Router			/api/tokens/{id}/confirm [post]
func ConfirmTokenHandler(c *gin.Context) {
	tokenID, ok := parseIDParam(c)
	if !ok {
		return
	}
	t, ok := ownedToken(c, tokenID)
	if !ok {
		return
	}

	res, err := queue.Confirm(tokenID)
	if err != nil {
		renderEngineError(c, err)
		return
	}

	invalidateBoard(t.QueueID)
	queueIDStr := strconv.Itoa(int(t.QueueID))

	if res.Expired {
		ws.HubInstance.BroadcastWSMessage(ws.WSMessage{
			EventType: "token_snoozed",
			QueueID:   queueIDStr,
			Data: map[string]interface{}{
				"token_id":     res.Token.ID,
				"token_number": res.Token.TokenNumber,
			},
		})
		c.JSON(http.StatusOK, response.OutcomeResponse{
			Outcome: "TOKEN_EXPIRED_SNOOZED",
			Message: "Окно подтверждения истекло, талон перенесён в конец очереди",
		})
		return
	}

	ws.HubInstance.BroadcastWSMessage(ws.WSMessage{
		EventType: "token_completed",
		QueueID:   queueIDStr,
		Data: map[string]interface{}{
			"token_id": res.Token.ID,
		},
	})
	c.JSON(http.StatusOK, response.OutcomeResponse{
		Outcome: "CHECKED_IN",
		Message: "Явка подтверждена, начислено 10 баллов",
	})
}

// SnoozeTokenHandler переносит талон в конец очереди
// @Summary		Перенос талона в конец
// @Description	Переносит талон в конец очереди независимо от статуса вызова
// @Tags			token
// @Produce		json
// @Param			id	path	string	true	"ID талона"
// @Security		BearerAuth
// @Success		200	{object}	response.SuccessResponse
// @Failure		400	{object}	response.ErrorResponse	"Талон уже завершён (TOKEN_NOT_MODIFIABLE)"
// @Failure		404	{object}	response.ErrorResponse	"Талон не найден (TOKEN_NOT_FOUND)"
// @Router			/api/tokens/{id}/snooze [post]
func SnoozeTokenHandler(c *gin.Context) {
	tokenID, ok := parseIDParam(c)
	if !ok {
		return
	}
	t, ok := ownedToken(c, tokenID)
	if !ok {
		return
	}

	snoozed, err := queue.Snooze(tokenID)
	if err != nil {
		renderEngineError(c, err)
		return
	}

	invalidateBoard(t.QueueID)
	ws.HubInstance.BroadcastWSMessage(ws.WSMessage{
		EventType: "token_snoozed",
		QueueID:   strconv.Itoa(int(t.QueueID)),
		Data: map[string]interface{}{
			"token_id":     snoozed.ID,
			"token_number": snoozed.TokenNumber,
		},
	})

	c.JSON(http.StatusOK, gin.H{
		"message":      "Талон перенесён в конец очереди",
		"token_number": snoozed.TokenNumber,
	})
}

// CancelTokenHandler отменяет ожидающий талон
// @Summary		Отмена талона
// @Description	Отменяет ожидающий талон и закрывает разрыв в нумерации; при освобождении первого места сообщает FCFS_CLAIM_OPEN
// @Tags			token
// @Produce		json
// @Param			id	path	string	true	"ID талона"
// @Security		BearerAuth
// @Success		200	{object}	response.OutcomeResponse	"TOKEN_CANCELLED или FCFS_CLAIM_OPEN"
// @Failure		400	{object}	response.ErrorResponse		"Талон не может быть изменён (TOKEN_NOT_MODIFIABLE)"
// @Failure		404	{object}	response.ErrorResponse		"Талон не найден (TOKEN_NOT_FOUND)"
// @Router			/api/tokens/{id}/cancel [post]
func CancelTokenHandler(c *gin.Context) {
	tokenID, ok := parseIDParam(c)
	if !ok {
		return
	}
	t, ok := ownedToken(c, tokenID)
	if !ok {
		return
	}

	res, err := queue.Cancel(tokenID)
	if err != nil {
		renderEngineError(c, err)
		return
	}

	invalidateBoard(t.QueueID)
	ws.HubInstance.BroadcastWSMessage(ws.WSMessage{
		EventType: "token_cancelled",
		QueueID:   strconv.Itoa(int(t.QueueID)),
		Data: map[string]interface{}{
			"token_id":  t.ID,
			"fcfs_open": res.FCFSClaimOpen,
		},
	})

	if res.FCFSClaimOpen {
		c.JSON(http.StatusOK, response.OutcomeResponse{
			Outcome: "FCFS_CLAIM_OPEN",
			Message: "Первое место освободилось! Открыто окно захвата по принципу «кто первый»",
		})
		return
	}
	c.JSON(http.StatusOK, response.OutcomeResponse{
		Outcome: "TOKEN_CANCELLED",
		Message: "Талон отменён, очередь перенумерована",
	})
}

type MoveBackRequest struct {
	TargetPosition int `json:"target_position" binding:"required"`
}

// MoveBackHandler переставляет талон назад
// @Summary		Перестановка талона назад
// @Description	Переставляет ожидающий талон на позицию позади текущей; промежуточные талоны сдвигаются на одно место вперёд
// @Tags			token
// @Accept			json
// @Produce		json
// @Param			id		path	string			true	"ID талона"
// @Param			body	body	MoveBackRequest	true	"Целевая позиция"
// @Security		BearerAuth
// @Success		200	{object}	response.SuccessResponse	"Фактическая позиция после перестановки"
// @Failure		400	{object}	response.ErrorResponse		"Позиция не позади текущей (TARGET_NOT_BEHIND), талон не может быть изменён (TOKEN_NOT_MODIFIABLE)"
// @Failure		404	{object}	response.ErrorResponse		"Талон не найден (TOKEN_NOT_FOUND)"
// @Router			/api/tokens/{id}/move-back [post]
func MoveBackHandler(c *gin.Context) {
	tokenID, ok := parseIDParam(c)
	if !ok {
		return
	}
	t, ok := ownedToken(c, tokenID)
	if !ok {
		return
	}

	var req MoveBackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Неверный формат позиции",
			Details: err.Error(),
		})
		return
	}

	actual, err := queue.MoveBack(tokenID, req.TargetPosition)
	if err != nil {
		renderEngineError(c, err)
		return
	}

	invalidateBoard(t.QueueID)
	ws.HubInstance.BroadcastWSMessage(ws.WSMessage{
		EventType: "queue_shifted",
		QueueID:   strconv.Itoa(int(t.QueueID)),
		Data: map[string]interface{}{
			"token_id":     t.ID,
			"new_position": actual,
		},
	})

	c.JSON(http.StatusOK, gin.H{
		"message":  "Талон переставлен назад",
		"position": actual,
	})
}
