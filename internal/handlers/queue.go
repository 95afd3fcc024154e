package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"queue_hack/internal/models"
	"queue_hack/internal/queue"
	"queue_hack/internal/response"
	"queue_hack/internal/storage"
	"queue_hack/internal/ws"

	"github.com/gin-gonic/gin"
)

type CreateQueueRequest struct {
	Name            string `json:"name" binding:"required"`
	Size            int    `json:"size" binding:"required,min=1"`
	ServiceTime     int    `json:"service_time_minutes"`
	AllowSwaps      *bool  `json:"allow_swaps"`
	MaxSwapsPerUser int    `json:"max_swaps_per_user"`
}

// CreateQueueHandler создаёт новую очередь учреждения
// @Summary		Создание очереди
// @Description	Учреждение создаёт новую очередь с заданной ёмкостью
// @Tags			queue
// @Accept			json
// @Produce		json
// @Param			queue	body		CreateQueueRequest	true	"Параметры очереди"
// @Security		BearerAuth
// @Success		201	{object}	response.SuccessResponse	"Очередь создана"
// @Failure		400	{object}	response.ErrorResponse		"Ошибка валидации (VALIDATION_ERROR)"
// @Failure		500	{object}	response.ErrorResponse		"Ошибка сервера (DB_ERROR)"
// @Router			/api/queues [post]
func CreateQueueHandler(c *gin.Context) {
	var req CreateQueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Ошибка валидации данных",
			Details: err.Error(),
		})
		return
	}

	q := models.Queue{
		InstitutionID:      c.GetUint("institutionID"),
		Name:               req.Name,
		Size:               req.Size,
		ServiceTimeMinutes: 5,
		AllowSwaps:         true,
		MaxSwapsPerUser:    2,
	}
	if req.ServiceTime > 0 {
		q.ServiceTimeMinutes = req.ServiceTime
	}
	if req.AllowSwaps != nil {
		q.AllowSwaps = *req.AllowSwaps
	}
	if req.MaxSwapsPerUser > 0 {
		q.MaxSwapsPerUser = req.MaxSwapsPerUser
	}

	if err := storage.DB.Create(&q).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка создания очереди",
			Details: err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Очередь успешно создана", "queue_id": q.ID, "name": q.Name})
}

func setQueueFlag(c *gin.Context, column string, value bool, event, message string) {
	queueID, ok := parseIDParam(c)
	if !ok {
		return
	}
	q, ok := ownedQueue(c, queueID)
	if !ok {
		return
	}
	if err := storage.DB.Model(q).Update(column, value).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка обновления очереди",
			Details: err.Error(),
		})
		return
	}
	invalidateBoard(queueID)
	ws.HubInstance.BroadcastWSMessage(ws.WSMessage{
		EventType: event,
		QueueID:   c.Param("id"),
		Data:      map[string]interface{}{"queue_id": queueID},
	})
	c.JSON(http.StatusOK, response.SuccessResponse{Message: message})
}

// PauseQueueHandler приостанавливает выдачу талонов
// @Summary		Приостановка очереди
// @Tags			queue
// @Produce		json
// @Param			id	path	string	true	"ID очереди"
// @Security		BearerAuth
// @Success		200	{object}	response.SuccessResponse
// @Failure		404	{object}	response.ErrorResponse	"Очередь не найдена (QUEUE_NOT_FOUND)"
// @Router			/api/queues/{id}/pause [post]
func PauseQueueHandler(c *gin.Context) {
	setQueueFlag(c, "is_paused", true, "queue_paused", "Очередь приостановлена")
}

// ResumeQueueHandler возобновляет выдачу талонов
// @Summary		Возобновление очереди
// @Tags			queue
// @Produce		json
// @Param			id	path	string	true	"ID очереди"
// @Security		BearerAuth
// @Success		200	{object}	response.SuccessResponse
// @Failure		404	{object}	response.ErrorResponse	"Очередь не найдена (QUEUE_NOT_FOUND)"
// @Router			/api/queues/{id}/resume [post]
func ResumeQueueHandler(c *gin.Context) {
	setQueueFlag(c, "is_paused", false, "queue_resumed", "Очередь возобновлена")
}

// CloseQueueHandler закрывает очередь
// @Summary		Закрытие очереди
// @Tags			queue
// @Produce		json
// @Param			id	path	string	true	"ID очереди"
// @Security		BearerAuth
// @Success		200	{object}	response.SuccessResponse
// @Failure		404	{object}	response.ErrorResponse	"Очередь не найдена (QUEUE_NOT_FOUND)"
// @Router			/api/queues/{id}/close [post]
func CloseQueueHandler(c *gin.Context) {
	setQueueFlag(c, "is_closed", true, "queue_closed", "Очередь закрыта")
}

// BookTokenHandler выдаёт пользователю талон в очереди
// @Summary		Бронирование талона
// @Description	Выдаёт пользователю следующий номер в очереди
// @Tags			token
// @Produce		json
// @Param			id	path	string	true	"ID очереди"
// @Security		BearerAuth
// @Success		201	{object}	queue.BoardToken	"Выданный талон"
// @Failure		400	{object}	response.ErrorResponse	"Очередь недоступна (QUEUE_UNAVAILABLE), талон уже есть (ALREADY_HAS_TOKEN), очередь заполнена (QUEUE_FULL)"
// @Failure		404	{object}	response.ErrorResponse	"Очередь не найдена (QUEUE_NOT_FOUND)"
// @Router			/api/queues/{id}/book [post]
func BookTokenHandler(c *gin.Context) {
	queueID, ok := parseIDParam(c)
	if !ok {
		return
	}
	userID := c.GetUint("userID")

	token, err := queue.Book(userID, queueID)
	if err != nil {
		renderEngineError(c, err)
		return
	}

	invalidateBoard(queueID)
	ws.HubInstance.BroadcastWSMessage(ws.WSMessage{
		EventType: "token_booked",
		QueueID:   c.Param("id"),
		Data: map[string]interface{}{
			"token_id":     token.ID,
			"token_number": token.TokenNumber,
		},
	})

	c.JSON(http.StatusCreated, gin.H{
		"message":      "Талон успешно получен",
		"token_id":     token.ID,
		"token_number": token.TokenNumber,
		"status":       token.Status,
	})
}

// CallNextHandler вызывает следующий талон очереди
// @Summary		Вызов следующего талона
// @Description	Учреждение вызывает талон с наименьшим номером
// @Tags			queue
// @Produce		json
// @Param			id	path	string	true	"ID очереди"
// @Security		BearerAuth
// @Success		200	{object}	response.SuccessResponse	"Вызванный талон или сообщение о пустой очереди"
// @Failure		404	{object}	response.ErrorResponse		"Очередь не найдена (QUEUE_NOT_FOUND)"
// @Router			/api/queues/{id}/call-next [post]
func CallNextHandler(c *gin.Context) {
	queueID, ok := parseIDParam(c)
	if !ok {
		return
	}
	if _, ok := ownedQueue(c, queueID); !ok {
		return
	}

	token, err := queue.CallNext(queueID)
	if err != nil {
		renderEngineError(c, err)
		return
	}
	if token == nil {
		// Пустая очередь — штатный исход, не ошибка.
		c.JSON(http.StatusOK, gin.H{"message": "Очередь пуста"})
		return
	}

	invalidateBoard(queueID)
	ws.HubInstance.BroadcastWSMessage(ws.WSMessage{
		EventType: "token_called",
		QueueID:   c.Param("id"),
		Data: map[string]interface{}{
			"token_id":     token.ID,
			"token_number": token.TokenNumber,
		},
	})

	c.JSON(http.StatusOK, gin.H{
		"token_id":     token.ID,
		"token_number": token.TokenNumber,
		"status":       token.Status,
		"called_at":    token.CalledAt.Format(time.RFC3339),
	})
}

// GetQueueBoardHandler возвращает табло очереди
// @Summary		Состояние очереди
// @Description	Публичное табло: активные талоны по порядку, кэшируется в Redis
// @Tags			queue
// @Produce		json
// @Param			id	path		string		true	"ID очереди"
// @Success		200	{object}	queue.Board	"Снимок состояния очереди"
// @Failure		404	{object}	response.ErrorResponse	"Очередь не найдена (QUEUE_NOT_FOUND)"
// @Router			/api/queues/{id}/state [get]
func GetQueueBoardHandler(c *gin.Context) {
	queueID, ok := parseIDParam(c)
	if !ok {
		return
	}

	cacheKey := boardCacheKey(queueID)
	if storage.RedisClient != nil {
		cached, err := storage.RedisClient.Get(ctx, cacheKey).Result()
		if err == nil && cached != "" {
			var board queue.Board
			if err := json.Unmarshal([]byte(cached), &board); err == nil {
				c.JSON(http.StatusOK, board)
				return
			}
		}
	}

	board, err := queue.GetBoard(queueID)
	if err != nil {
		renderEngineError(c, err)
		return
	}

	if storage.RedisClient != nil {
		if raw, err := json.Marshal(board); err == nil {
			storage.RedisClient.Set(ctx, cacheKey, string(raw), 5*time.Second)
		}
	}

	c.JSON(http.StatusOK, board)
}

// SearchInstitutionsHandler ищет учреждения по названию или адресу
// @Summary		Поиск учреждений
// @Tags			discovery
// @Produce		json
// @Param			search	query		string	false	"Подстрока названия или адреса"
// @Success		200		{array}		InstitutionItem
// @Failure		500		{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/institutions [get]
func SearchInstitutionsHandler(c *gin.Context) {
	search := c.Query("search")

	db := storage.DB.Model(&models.Institution{})
	if search != "" {
		pattern := "%" + search + "%"
		db = db.Where("name ILIKE ? OR address ILIKE ?", pattern, pattern)
	}

	var institutions []models.Institution
	if err := db.Find(&institutions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка поиска учреждений",
			Details: err.Error(),
		})
		return
	}

	result := make([]InstitutionItem, 0, len(institutions))
	for _, inst := range institutions {
		var queues []models.Queue
		storage.DB.Where("institution_id = ? AND is_closed = false", inst.ID).Find(&queues)
		item := InstitutionItem{
			ID:      inst.ID,
			Name:    inst.Name,
			Phone:   inst.Phone,
			Address: inst.Address,
			Queues:  make([]InstitutionQueueItem, 0, len(queues)),
		}
		for _, q := range queues {
			var active int64
			storage.DB.Model(&models.Token{}).
				Where("queue_id = ? AND status IN ?", q.ID,
					[]string{models.TokenWaiting, models.TokenCalling}).
				Count(&active)
			item.Queues = append(item.Queues, InstitutionQueueItem{
				ID:           q.ID,
				Name:         q.Name,
				Size:         q.Size,
				IsPaused:     q.IsPaused,
				ActiveTokens: int(active),
			})
		}
		result = append(result, item)
	}

	c.JSON(http.StatusOK, result)
}

type InstitutionQueueItem struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	Size         int    `json:"size"`
	IsPaused     bool   `json:"is_paused"`
	ActiveTokens int    `json:"active_tokens"`
}

type InstitutionItem struct {
	ID      uint                   `json:"id"`
	Name    string                 `json:"name"`
	Phone   string                 `json:"phone"`
	Address string                 `json:"address"`
	Queues  []InstitutionQueueItem `json:"queues"`
}
