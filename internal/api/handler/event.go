package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-seat-hold-api/internal/api"
	"github.com/sanosuguru/go-seat-hold-api/internal/domain/event"
)

type EventHandler struct {
	service EventServiceInterface
}

func NewEventHandler(s EventServiceInterface) *EventHandler {
	return &EventHandler{service: s}
}

type EventResponse struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description,omitempty"`
	Venue         string    `json:"venue"`
	City          string    `json:"city"`
	StartsAt      time.Time `json:"starts_at"`
	EndsAt        time.Time `json:"ends_at"`
	TotalCapacity int       `json:"total_capacity"`
}

type EventDetailResponse struct {
	EventResponse
	AvailableSeats int `json:"available_seats"`
}

func toEventResponse(e *event.Event) EventResponse {
	return EventResponse{
		ID: e.ID, Title: e.Title, Description: e.Description,
		Venue: e.Venue, City: e.City,
		StartsAt: e.StartsAt, EndsAt: e.EndsAt,
		TotalCapacity: e.TotalCapacity,
	}
}

// List godoc
// @Summary 公開イベント一覧を取得
// @Tags events
// @Produce json
// @Param limit query int false "取得件数" default(20)
// @Param offset query int false "オフセット" default(0)
// @Success 200 {array} EventResponse
// @Router /events [get]
func (h *EventHandler) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	events, err := h.service.ListEvents(c.Request().Context(), limit, offset)
	if err != nil {
		return err
	}

	resp := make([]EventResponse, len(events))
	for i, e := range events {
		resp[i] = toEventResponse(e)
	}
	return api.Success(c, http.StatusOK, resp)
}

// GetByID godoc
// @Summary 公開イベントを空席数付きで取得
// @Tags events
// @Produce json
// @Param id path string true "イベントID"
// @Success 200 {object} EventDetailResponse
// @Failure 404 {object} api.Envelope
// @Router /events/{id} [get]
func (h *EventHandler) GetByID(c echo.Context) error {
	detail, err := h.service.GetEvent(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return api.Success(c, http.StatusOK, EventDetailResponse{
		EventResponse:  toEventResponse(detail.Event),
		AvailableSeats: detail.AvailableSeats,
	})
}
