package queue

import (
	"fmt"

	"queue_hack/internal/models"
	"queue_hack/internal/storage"
)

// BoardToken — строка публичного табло очереди.
type BoardToken struct {
	TokenID     uint   `json:"token_id"`
	TokenNumber int    `json:"token_number"`
	UserName    string `json:"user_name"`
	Status      string `json:"status"`
}

// Board — публичное состояние очереди: активные талоны по порядку.
type Board struct {
	QueueID            uint         `json:"queue_id"`
	Name               string       `json:"name"`
	Size               int          `json:"size"`
	ServiceTimeMinutes int          `json:"service_time_minutes"`
	IsPaused           bool         `json:"is_paused"`
	IsClosed           bool         `json:"is_closed"`
	CurrentServing     int          `json:"current_serving"`
	ActiveTokens       int          `json:"active_tokens"`
	Tokens             []BoardToken `json:"tokens"`
}

// GetBoard строит снимок состояния очереди. Чтение выполняется одной
// транзакцией, поэтому блокировка очереди не нужна.
func GetBoard(queueID uint) (*Board, error) {
	var q models.Queue
	if err := storage.DB.First(&q, queueID).Error; err != nil {
		return nil, notFound("QUEUE_NOT_FOUND", "Очередь не найдена")
	}
	var tokens []models.Token
	if err := storage.DB.Preload("User").
		Where("queue_id = ? AND status IN ?", queueID,
			[]string{models.TokenWaiting, models.TokenCalling}).
		Order("token_number ASC").
		Find(&tokens).Error; err != nil {
		return nil, err
	}

	board := Board{
		QueueID:            q.ID,
		Name:               q.Name,
		Size:               q.Size,
		ServiceTimeMinutes: q.ServiceTimeMinutes,
		IsPaused:           q.IsPaused,
		IsClosed:           q.IsClosed,
		Tokens:             make([]BoardToken, 0, len(tokens)),
	}
	for _, t := range tokens {
		if t.Status == models.TokenWaiting && board.CurrentServing == 0 {
			board.CurrentServing = t.TokenNumber
		}
		board.Tokens = append(board.Tokens, BoardToken{
			TokenID:     t.ID,
			TokenNumber: t.TokenNumber,
			UserName:    t.User.Name,
			Status:      t.Status,
		})
	}
	board.ActiveTokens = len(board.Tokens)
	return &board, nil
}

// SwappableToken — сосед по очереди, с которым можно предложить обмен.
type SwappableToken struct {
	TokenID     uint   `json:"token_id"`
	TokenNumber int    `json:"token_number"`
	Position    int    `json:"position"` // расстояние до талона владельца
	UserName    string `json:"user_name"`
	WaitTime    string `json:"wait_time"` // расстояние × время обслуживания
}

// IncomingSwap — входящий запрос на обмен по талону пользователя.
type IncomingSwap struct {
	SwapID         uint   `json:"swap_id"`
	SenderName     string `json:"sender_name"`
	SenderToken    int    `json:"sender_token"`
	SenderPosition int    `json:"sender_position"`
}

// DashboardItem — состояние одного активного талона пользователя.
type DashboardItem struct {
	TokenID         uint             `json:"token_id"`
	TokenNumber     int              `json:"token_number"`
	QueueID         uint             `json:"queue_id"`
	QueueName       string           `json:"queue_name"`
	InstitutionName string           `json:"institution_name"`
	CurrentServing  int              `json:"current_serving"`
	Position        int              `json:"position"`
	Status          string           `json:"status"`
	SwapsUsed       int              `json:"swaps_used"`
	MaxSwaps        int              `json:"max_swaps"`
	RewardPoints    int              `json:"reward_points"`
	IncomingSwaps   []IncomingSwap   `json:"incoming_swaps"`
	SwappableAhead  []SwappableToken `json:"swappable_ahead"`
	SwappableBehind []SwappableToken `json:"swappable_behind"`
}

// UserDashboard собирает состояние всех ожидающих талонов пользователя:
// текущий обслуживаемый номер, позицию и до 5 ближайших соседей впереди
// и позади для обмена.
func UserDashboard(userID uint) ([]DashboardItem, error) {
	var user models.User
	if err := storage.DB.First(&user, userID).Error; err != nil {
		return nil, notFound("USER_NOT_FOUND", "Пользователь не найден")
	}
	var tokens []models.Token
	if err := storage.DB.
		Where("user_id = ? AND status = ?", userID, models.TokenWaiting).
		Order("joined_at ASC").
		Find(&tokens).Error; err != nil {
		return nil, err
	}

	items := make([]DashboardItem, 0, len(tokens))
	for _, t := range tokens {
		var q models.Queue
		if err := storage.DB.Preload("Institution").First(&q, t.QueueID).Error; err != nil {
			return nil, err
		}

		var front models.Token
		serving := 0
		if err := storage.DB.Where("queue_id = ? AND status = ?", t.QueueID, models.TokenWaiting).
			Order("token_number ASC").First(&front).Error; err == nil {
			serving = front.TokenNumber
		}
		position := t.TokenNumber - serving
		if position < 0 {
			position = 0
		}

		var ahead []models.Token
		if err := storage.DB.Preload("User").
			Where("queue_id = ? AND status = ? AND token_number < ?",
				t.QueueID, models.TokenWaiting, t.TokenNumber).
			Order("token_number DESC").Limit(5).
			Find(&ahead).Error; err != nil {
			return nil, err
		}
		var behind []models.Token
		if err := storage.DB.Preload("User").
			Where("queue_id = ? AND status = ? AND token_number > ?",
				t.QueueID, models.TokenWaiting, t.TokenNumber).
			Order("token_number ASC").Limit(5).
			Find(&behind).Error; err != nil {
			return nil, err
		}

		var incoming []models.SwapRequest
		if err := storage.DB.Preload("Sender").Preload("Sender.User").
			Where("receiver_id = ? AND status = ?", t.ID, models.SwapPending).
			Find(&incoming).Error; err != nil {
			return nil, err
		}

		item := DashboardItem{
			TokenID:         t.ID,
			TokenNumber:     t.TokenNumber,
			QueueID:         q.ID,
			QueueName:       q.Name,
			InstitutionName: q.Institution.Name,
			CurrentServing:  serving,
			Position:        position,
			Status:          t.Status,
			SwapsUsed:       t.SwapsUsed,
			MaxSwaps:        q.MaxSwapsPerUser,
			RewardPoints:    user.RewardPoints,
			IncomingSwaps:   make([]IncomingSwap, 0, len(incoming)),
			SwappableAhead:  make([]SwappableToken, 0, len(ahead)),
			SwappableBehind: make([]SwappableToken, 0, len(behind)),
		}
		for _, req := range incoming {
			senderPos := req.Sender.TokenNumber - serving
			if senderPos < 0 {
				senderPos = 0
			}
			item.IncomingSwaps = append(item.IncomingSwaps, IncomingSwap{
				SwapID:         req.ID,
				SenderName:     req.Sender.User.Name,
				SenderToken:    req.Sender.TokenNumber,
				SenderPosition: senderPos,
			})
		}
		for _, n := range ahead {
			delta := t.TokenNumber - n.TokenNumber
			item.SwappableAhead = append(item.SwappableAhead, SwappableToken{
				TokenID:     n.ID,
				TokenNumber: n.TokenNumber,
				Position:    delta,
				UserName:    n.User.Name,
				WaitTime:    fmt.Sprintf("%d мин", delta*q.ServiceTimeMinutes),
			})
		}
		for _, n := range behind {
			delta := n.TokenNumber - t.TokenNumber
			item.SwappableBehind = append(item.SwappableBehind, SwappableToken{
				TokenID:     n.ID,
				TokenNumber: n.TokenNumber,
				Position:    delta,
				UserName:    n.User.Name,
				WaitTime:    fmt.Sprintf("%d мин", delta*q.ServiceTimeMinutes),
			})
		}
		items = append(items, item)
	}
	return items, nil
}

// InstitutionQueue — состояние очереди на панели учреждения.
type InstitutionQueue struct {
	QueueID            uint         `json:"queue_id"`
	Name               string       `json:"name"`
	Size               int          `json:"size"`
	ServiceTimeMinutes int          `json:"service_time_minutes"`
	IsPaused           bool         `json:"is_paused"`
	IsClosed           bool         `json:"is_closed"`
	ActiveTokens       int          `json:"active_tokens"`
	Tokens             []BoardToken `json:"tokens"`
}

// InstitutionDashboard собирает все очереди учреждения с их активными
// талонами.
func InstitutionDashboard(institutionID uint) ([]InstitutionQueue, error) {
	var queues []models.Queue
	if err := storage.DB.Where("institution_id = ?", institutionID).
		Find(&queues).Error; err != nil {
		return nil, err
	}
	result := make([]InstitutionQueue, 0, len(queues))
	for _, q := range queues {
		var tokens []models.Token
		if err := storage.DB.Preload("User").
			Where("queue_id = ? AND status IN ?", q.ID,
				[]string{models.TokenWaiting, models.TokenCalling}).
			Order("token_number ASC").
			Find(&tokens).Error; err != nil {
			return nil, err
		}
		iq := InstitutionQueue{
			QueueID:            q.ID,
			Name:               q.Name,
			Size:               q.Size,
			ServiceTimeMinutes: q.ServiceTimeMinutes,
			IsPaused:           q.IsPaused,
			IsClosed:           q.IsClosed,
			ActiveTokens:       len(tokens),
			Tokens:             make([]BoardToken, 0, len(tokens)),
		}
		for _, t := range tokens {
			iq.Tokens = append(iq.Tokens, BoardToken{
				TokenID:     t.ID,
				TokenNumber: t.TokenNumber,
				UserName:    t.User.Name,
				Status:      t.Status,
			})
		}
		result = append(result, iq)
	}
	return result, nil
}
