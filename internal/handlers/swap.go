package handlers

import (
	"net/http"
	"strconv"

	"queue_hack/internal/models"
	"queue_hack/internal/queue"
	"queue_hack/internal/response"
	"queue_hack/internal/storage"
	"queue_hack/internal/ws"

	"github.com/gin-gonic/gin"
)

type TieredSwapRequest struct {
	RangeStart int `json:"range_start" binding:"required,min=1"`
	RangeEnd   int `json:"range_end" binding:"required,min=1"`
}

// ProposeTieredHandler создаёт запрос на обмен в диапазоне впереди
// @Summary		Запрос обмена по диапазону
// @Description	Предлагает обмен лучшему талону в диапазоне впереди отправителя; просроченные запросы очереди предварительно отклоняются
// @Tags			swap
// @Accept			json
// @Produce		json
// @Param			id		path	string				true	"ID талона отправителя"
// @Param			body	body	TieredSwapRequest	true	"Диапазон позиций"
// @Security		BearerAuth
// @Success		201	{object}	response.SuccessResponse	"Запрос создан"
// @Failure		400	{object}	response.ErrorResponse		"RANGE_TOO_WIDE, RANGE_NOT_AHEAD, SWAP_CAPACITY, SWAP_LIMIT_REACHED, NO_CANDIDATE"
// @Failure		404	{object}	response.ErrorResponse		"Талон не найден (TOKEN_NOT_FOUND)"
// @Router			/api/tokens/{id}/swap/tiered [post]
func ProposeTieredHandler(c *gin.Context) {
	tokenID, ok := parseIDParam(c)
	if !ok {
		return
	}
	if _, ok := ownedToken(c, tokenID); !ok {
		return
	}

	var req TieredSwapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Неверный формат диапазона",
			Details: err.Error(),
		})
		return
	}

	swap, err := queue.ProposeTiered(tokenID, req.RangeStart, req.RangeEnd)
	if err != nil {
		renderEngineError(c, err)
		return
	}

	var receiver models.Token
	storage.DB.First(&receiver, swap.ReceiverID)
	c.JSON(http.StatusCreated, gin.H{
		"message":         "Запрос на обмен отправлен",
		"swap_id":         swap.ID,
		"receiver_number": receiver.TokenNumber,
	})
}

type DirectSwapRequest struct {
	TargetTokenID uint `json:"target_token_id" binding:"required"`
}

// ProposeDirectHandler создаёт запрос на обмен с конкретным талоном
// @Summary		Запрос обмена с конкретным талоном
// @Tags			swap
// @Accept			json
// @Produce		json
// @Param			id		path	string				true	"ID талона отправителя"
// @Param			body	body	DirectSwapRequest	true	"Целевой талон"
// @Security		BearerAuth
// @Success		201	{object}	response.SuccessResponse	"Запрос создан"
// @Failure		400	{object}	response.ErrorResponse		"DIFFERENT_QUEUE, TARGET_NOT_WAITING, SWAP_LIMIT_REACHED"
// @Failure		404	{object}	response.ErrorResponse		"Талон не найден (TOKEN_NOT_FOUND)"
// @Router			/api/tokens/{id}/swap/direct [post]
func ProposeDirectHandler(c *gin.Context) {
	tokenID, ok := parseIDParam(c)
	if !ok {
		return
	}
	if _, ok := ownedToken(c, tokenID); !ok {
		return
	}

	var req DirectSwapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Неверный формат запроса",
			Details: err.Error(),
		})
		return
	}

	swap, err := queue.ProposeDirect(tokenID, req.TargetTokenID)
	if err != nil {
		renderEngineError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Запрос на обмен отправлен",
		"swap_id": swap.ID,
	})
}

// AcceptSwapHandler принимает запрос на обмен
// @Summary		Принятие обмена
// @Description	Стороны меняются номерами, применяется перевод баллов, прочие запросы сторон отклоняются каскадом. Просроченный или недействительный запрос отклоняется автоматически (исход в ответе)
// @Tags			swap
// @Produce		json
// @Param			id	path	string	true	"ID запроса на обмен"
// @Security		BearerAuth
// @Success		200	{object}	response.OutcomeResponse	"SWAP_ACCEPTED, SWAP_EXPIRED или SWAP_INVALID"
// @Failure		400	{object}	response.ErrorResponse		"Запрос уже обработан (SWAP_NOT_PENDING)"
// @Failure		404	{object}	response.ErrorResponse		"Запрос не найден (SWAP_NOT_FOUND)"
// @Router			/api/swaps/{id}/accept [post]
func AcceptSwapHandler(c *gin.Context) {
	swapID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var swap models.SwapRequest
	if err := storage.DB.First(&swap, swapID).Error; err != nil {
		c.JSON(http.StatusNotFound, response.ErrorResponse{
			Code:    "SWAP_NOT_FOUND",
			Message: "Запрос на обмен не найден",
		})
		return
	}
	// Принять обмен может только владелец талона-получателя.
	var receiver models.Token
	if err := storage.DB.First(&receiver, swap.ReceiverID).Error; err != nil {
		c.JSON(http.StatusNotFound, response.ErrorResponse{
			Code:    "TOKEN_NOT_FOUND",
			Message: "Талон получателя не найден",
		})
		return
	}
	if receiver.UserID != c.GetUint("userID") {
		c.JSON(http.StatusForbidden, response.ErrorResponse{
			Code:    "NOT_YOUR_SWAP",
			Message: "Запрос адресован другому пользователю",
		})
		return
	}

	res, err := queue.AcceptSwap(swapID)
	if err != nil {
		renderEngineError(c, err)
		return
	}

	invalidateBoard(swap.QueueID)

	switch {
	case res.Expired:
		c.JSON(http.StatusOK, response.OutcomeResponse{
			Outcome: "SWAP_EXPIRED",
			Message: "Запрос на обмен просрочен и отклонён",
		})
	case res.Invalid:
		c.JSON(http.StatusOK, response.OutcomeResponse{
			Outcome: "SWAP_INVALID",
			Message: "Обмен больше недействителен и отклонён",
		})
	default:
		ws.HubInstance.BroadcastWSMessage(ws.WSMessage{
			EventType: "swap_accepted",
			QueueID:   strconv.Itoa(int(swap.QueueID)),
			Data: map[string]interface{}{
				"swap_id": swap.ID,
			},
		})
		c.JSON(http.StatusOK, response.OutcomeResponse{
			Outcome: "SWAP_ACCEPTED",
			Message: "Обмен успешно выполнен!",
		})
	}
}

// RejectSwapHandler отклоняет запрос на обмен
// @Summary		Отклонение обмена
// @Tags			swap
// @Produce		json
// @Param			id	path	string	true	"ID запроса на обмен"
// @Security		BearerAuth
// @Success		200	{object}	response.SuccessResponse
// @Failure		400	{object}	response.ErrorResponse	"Запрос уже обработан (SWAP_NOT_PENDING)"
// @Failure		404	{object}	response.ErrorResponse	"Запрос не найден (SWAP_NOT_FOUND)"
// @Router			/api/swaps/{id}/reject [post]
func RejectSwapHandler(c *gin.Context) {
	swapID, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := queue.RejectSwap(swapID); err != nil {
		renderEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessResponse{
		Message: "Запрос на обмен отклонён",
	})
}
