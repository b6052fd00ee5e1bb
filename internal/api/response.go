package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Meta はレスポンスエンベロープのメタ情報
type Meta struct {
	Status  string `json:"status"`
	Code    int    `json:"code"`
	Message string `json:"message,omitempty"`
}

// Envelope は全エンドポイント共通のレスポンス形式
// data にはエンドポイント固有のペイロードが入り、エラー時は補足情報または null になる
type Envelope struct {
	Meta Meta        `json:"meta"`
	Data interface{} `json:"data"`
}

// Success は成功レスポンスをエンベロープに包んで返す
func Success(c echo.Context, code int, data interface{}) error {
	return c.JSON(code, Envelope{
		Meta: Meta{Status: "Success", Code: code},
		Data: data,
	})
}

// Failure はエラーレスポンスをエンベロープに包んで返す
// data には空席不足時の空席数など、クライアントの分岐に必要な補足を入れる
func Failure(c echo.Context, code int, message string, data interface{}) error {
	return c.JSON(code, Envelope{
		Meta: Meta{Status: "Error", Code: code, Message: message},
		Data: data,
	})
}

// FailureText はステータスコードの標準文言でエラーレスポンスを返す
func FailureText(c echo.Context, code int) error {
	return Failure(c, code, http.StatusText(code), nil)
}
