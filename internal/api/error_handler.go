package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-seat-hold-api/internal/domain/event"
	"github.com/sanosuguru/go-seat-hold-api/internal/domain/hold"
	"github.com/sanosuguru/go-seat-hold-api/internal/domain/inventory"
	"github.com/sanosuguru/go-seat-hold-api/internal/pkg/logger"
)

// CustomHTTPErrorHandler はドメインエラーをHTTPステータスへ写すカスタムエラーハンドラー
// ハンドラーはサービスのエラーをそのまま返し、分類はここに集約する
func CustomHTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var (
		code    = http.StatusInternalServerError
		message = "内部サーバーエラー"
		data    interface{}
	)

	var (
		stateErr     *hold.StateError
		insufficient *inventory.InsufficientError
		httpErr      *echo.HTTPError
	)

	switch {
	case errors.Is(err, event.ErrEventNotFound), errors.Is(err, hold.ErrHoldNotFound):
		code = http.StatusNotFound
		message = err.Error()

	case errors.Is(err, hold.ErrHoldForbidden):
		code = http.StatusForbidden
		message = err.Error()

	case errors.Is(err, hold.ErrInvalidQuantity),
		errors.Is(err, hold.ErrEventIDRequired),
		errors.Is(err, hold.ErrUserIDRequired):
		code = http.StatusBadRequest
		message = err.Error()

	case errors.Is(err, hold.ErrRateLimited):
		code = http.StatusTooManyRequests
		message = err.Error()

	case errors.Is(err, hold.ErrEventBusy):
		code = http.StatusConflict
		message = err.Error()

	case errors.As(err, &insufficient):
		// 空席不足はクライアントが数量を調整できるよう現在の空席数を添える
		code = http.StatusConflict
		message = insufficient.Error()
		data = map[string]int{
			"requested": insufficient.Requested,
			"available": insufficient.Available,
		}

	case errors.As(err, &stateErr):
		// 終端遷移の競合はポーリングを打ち切れるよう現在状態を添える
		code = http.StatusConflict
		message = stateErr.Error()
		data = map[string]string{
			"current_status": string(stateErr.Current),
		}

	case errors.As(err, &httpErr):
		code = httpErr.Code
		if m, ok := httpErr.Message.(string); ok {
			message = m
		} else {
			message = http.StatusText(code)
		}
	}

	if code >= 500 {
		logger.Error("サーバーエラー",
			zap.Int("status", code),
			zap.String("path", c.Request().URL.Path),
			zap.Error(err),
		)
	}

	if err := Failure(c, code, message, data); err != nil {
		logger.Error("エラーレスポンス送信失敗", zap.Error(err))
	}
}
