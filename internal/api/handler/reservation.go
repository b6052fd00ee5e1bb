package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-seat-hold-api/internal/api"
	"github.com/sanosuguru/go-seat-hold-api/internal/api/middleware"
	"github.com/sanosuguru/go-seat-hold-api/internal/domain/hold"
)

type ReservationHandler struct {
	reservationService ReservationServiceInterface
	holdService        HoldServiceInterface
}

func NewReservationHandler(rs ReservationServiceInterface, hs HoldServiceInterface) *ReservationHandler {
	return &ReservationHandler{reservationService: rs, holdService: hs}
}

// Confirm godoc
// @Summary ホールドを確定
// @Description 仮押さえ中の座席を確定します
// @Tags reservations
// @Produce json
// @Param id path string true "ホールドID"
// @Success 200 {object} HoldResponse
// @Failure 403 {object} api.Envelope
// @Failure 404 {object} api.Envelope
// @Failure 409 {object} api.Envelope "既に終端状態"
// @Router /reservations/{id}/confirm [post]
func (h *ReservationHandler) Confirm(c echo.Context) error {
	userID := middleware.UserID(c)
	if userID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "認証が必要です")
	}

	confirmed, err := h.reservationService.Confirm(c.Request().Context(), c.Param("id"), userID)
	if err != nil {
		return err
	}
	return api.Success(c, http.StatusOK, toHoldResponse(confirmed, time.Now()))
}

// Cancel godoc
// @Summary ホールドをキャンセル
// @Description 仮押さえ中の座席を解放します
// @Tags reservations
// @Produce json
// @Param id path string true "ホールドID"
// @Success 200 {object} HoldResponse
// @Failure 403 {object} api.Envelope
// @Failure 404 {object} api.Envelope
// @Failure 409 {object} api.Envelope "既に終端状態"
// @Router /reservations/{id}/cancel [post]
func (h *ReservationHandler) Cancel(c echo.Context) error {
	userID := middleware.UserID(c)
	if userID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "認証が必要です")
	}

	cancelled, err := h.reservationService.Cancel(c.Request().Context(), c.Param("id"), userID)
	if err != nil {
		return err
	}
	return api.Success(c, http.StatusOK, toHoldResponse(cancelled, time.Now()))
}

// ListMine godoc
// @Summary 自分の予約一覧を取得
// @Description ログインユーザーのホールド・予約履歴を取得します
// @Tags reservations
// @Produce json
// @Param status query string false "状態フィルタ（hold/confirmed/cancelled/expired）"
// @Param limit query int false "取得件数" default(20)
// @Param offset query int false "オフセット" default(0)
// @Success 200 {array} HoldResponse
// @Failure 400 {object} api.Envelope
// @Router /me/reservations [get]
func (h *ReservationHandler) ListMine(c echo.Context) error {
	userID := middleware.UserID(c)
	if userID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "認証が必要です")
	}

	filter := hold.ListFilter{}
	if status := c.QueryParam("status"); status != "" {
		switch hold.Status(status) {
		case hold.StatusHold, hold.StatusConfirmed, hold.StatusCancelled, hold.StatusExpired:
			filter.Status = hold.Status(status)
		default:
			return echo.NewHTTPError(http.StatusBadRequest, "無効な状態フィルタです")
		}
	}
	filter.Limit, _ = strconv.Atoi(c.QueryParam("limit"))
	filter.Offset, _ = strconv.Atoi(c.QueryParam("offset"))

	holds, err := h.holdService.ListUserHolds(c.Request().Context(), userID, filter)
	if err != nil {
		return err
	}

	now := time.Now()
	resp := make([]HoldResponse, len(holds))
	for i, item := range holds {
		resp[i] = toHoldResponse(item, now)
	}
	return api.Success(c, http.StatusOK, resp)
}
