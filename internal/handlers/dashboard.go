package handlers

import (
	"net/http"

	"queue_hack/internal/queue"

	"github.com/gin-gonic/gin"
)

// UserDashboardHandler возвращает состояние талонов пользователя
// @Summary		Личный кабинет пользователя
// @Description	Активные талоны пользователя: текущий обслуживаемый номер, позиция, входящие запросы на обмен и до 5 ближайших соседей впереди и позади
// @Tags			profile
// @Produce		json
// @Security		BearerAuth
// @Success		200	{array}		queue.DashboardItem
// @Failure		404	{object}	response.ErrorResponse	"Пользователь не найден (USER_NOT_FOUND)"
// @Router			/api/user/dashboard [get]
func UserDashboardHandler(c *gin.Context) {
	items, err := queue.UserDashboard(c.GetUint("userID"))
	if err != nil {
		renderEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// InstitutionDashboardHandler возвращает очереди учреждения
// @Summary		Панель учреждения
// @Description	Все очереди учреждения с активными талонами по порядку
// @Tags			profile
// @Produce		json
// @Security		BearerAuth
// @Success		200	{array}	queue.InstitutionQueue
// @Router			/api/institution/dashboard [get]
func InstitutionDashboardHandler(c *gin.Context) {
	queues, err := queue.InstitutionDashboard(c.GetUint("institutionID"))
	if err != nil {
		renderEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, queues)
}
