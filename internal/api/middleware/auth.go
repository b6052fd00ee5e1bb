package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// コンテキストキー
const (
	ContextKeyUserID = "user_id"
	ContextKeyRole   = "user_role"
)

// Claims はアクセストークンのクレーム
type Claims struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// JWTAuth は Bearer トークンを検証し、ユーザーIDをコンテキストに載せるミドルウェア
// 署名は HS256 固定で、alg ヘッダーのすり替えは拒否する
func JWTAuth(secret string) echo.MiddlewareFunc {
	key := []byte(secret)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "認証トークンが必要です")
			}

			tokenStr, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || tokenStr == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authorization ヘッダーの形式が不正です")
			}

			claims := &Claims{}
			token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return key, nil
			})
			if err != nil || !token.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "認証トークンが無効です")
			}
			if claims.UserID == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "トークンにユーザーIDがありません")
			}

			c.Set(ContextKeyUserID, claims.UserID)
			c.Set(ContextKeyRole, claims.Role)
			return next(c)
		}
	}
}

// UserID はミドルウェアが載せた認証済みユーザーIDを取り出す
func UserID(c echo.Context) string {
	if v, ok := c.Get(ContextKeyUserID).(string); ok {
		return v
	}
	return ""
}
