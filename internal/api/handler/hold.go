package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-seat-hold-api/internal/api"
	"github.com/sanosuguru/go-seat-hold-api/internal/api/middleware"
	"github.com/sanosuguru/go-seat-hold-api/internal/domain/hold"
)

type HoldHandler struct {
	service HoldServiceInterface
}

func NewHoldHandler(s HoldServiceInterface) *HoldHandler {
	return &HoldHandler{service: s}
}

type CreateHoldRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1" example:"2"`
}

type HoldResponse struct {
	ID        string    `json:"reservation_id"`
	EventID   string    `json:"event_id"`
	UserID    string    `json:"user_id"`
	Quantity  int       `json:"quantity"`
	Status    string    `json:"status"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// toHoldResponse は表示用の実効状態でレスポンスを組み立てる
// スイーパー未処理の期限切れホールドも expired として見える
func toHoldResponse(h *hold.Hold, now time.Time) HoldResponse {
	return HoldResponse{
		ID:        h.ID,
		EventID:   h.EventID,
		UserID:    h.UserID,
		Quantity:  h.Quantity,
		Status:    string(h.EffectiveStatus(now)),
		ExpiresAt: h.ExpiresAt,
		CreatedAt: h.CreatedAt,
	}
}

// Create godoc
// @Summary 座席を仮押さえ
// @Description 指定イベントの座席をTTL付きで仮押さえします
// @Tags holds
// @Accept json
// @Produce json
// @Param id path string true "イベントID"
// @Param request body CreateHoldRequest true "仮押さえ情報"
// @Success 201 {object} HoldResponse
// @Failure 400 {object} api.Envelope
// @Failure 401 {object} api.Envelope
// @Failure 409 {object} api.Envelope "空席不足"
// @Failure 429 {object} api.Envelope "回数制限超過"
// @Router /events/{id}/holds [post]
func (h *HoldHandler) Create(c echo.Context) error {
	userID := middleware.UserID(c)
	if userID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "認証が必要です")
	}

	var req CreateHoldRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	created, err := h.service.CreateHold(c.Request().Context(), c.Param("id"), userID, req.Quantity)
	if err != nil {
		return err
	}
	return api.Success(c, http.StatusCreated, toHoldResponse(created, time.Now()))
}

// GetByID godoc
// @Summary ホールドを取得
// @Description 自分のホールドを取得します
// @Tags holds
// @Produce json
// @Param id path string true "ホールドID"
// @Success 200 {object} HoldResponse
// @Failure 403 {object} api.Envelope
// @Failure 404 {object} api.Envelope
// @Router /holds/{id} [get]
func (h *HoldHandler) GetByID(c echo.Context) error {
	userID := middleware.UserID(c)
	if userID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "認証が必要です")
	}

	got, err := h.service.GetHold(c.Request().Context(), c.Param("id"), userID)
	if err != nil {
		return err
	}
	return api.Success(c, http.StatusOK, toHoldResponse(got, time.Now()))
}
