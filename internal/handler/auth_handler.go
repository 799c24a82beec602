// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/hitoshi/gauth/internal/auth"
	"github.com/hitoshi/gauth/internal/middleware"
	"github.com/hitoshi/gauth/internal/model"
)

const (
	accessTokenCookie  = "accessToken"
	refreshTokenCookie = "refreshToken"

	accessTokenMaxAge  = 900    // 15分。アクセストークンの有効期間と一致させる。
	refreshTokenMaxAge = 604800 // 7日。リフレッシュトークンの有効期間と一致させる。
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	Login(ctx context.Context, code string) (*model.User, *auth.TokenPair, error)
}

// UserFinder はログイン済みユーザーの参照に必要なインターフェース。
// repository.UserRepositoryの部分集合として定義する。
type UserFinder interface {
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}

// AuthHandlerConfig は認証ハンドラーの設定。
type AuthHandlerConfig struct {
	CookieDomain string
	CookieSecure bool // 本番環境でのみtrue
}

// AuthHandler はGoogleログインとログアウトのHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
	users   UserFinder
	config  AuthHandlerConfig
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, users UserFinder, config AuthHandlerConfig) *AuthHandler {
	return &AuthHandler{
		service: service,
		users:   users,
		config:  config,
	}
}

// googleLoginRequest はログインリクエストのボディ。
type googleLoginRequest struct {
	Code string `json:"code"`
}

// userPayload はクライアントへ返すユーザー情報。
// 内部ID、トークン、パスワードハッシュは含めない。
type userPayload struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture"`
}

// loginResponse はログイン成功時のレスポンスエンベロープ。
type loginResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	User    userPayload `json:"user"`
}

// GoogleLogin は認可コードを受け取りログイン処理を実行する。
// POST /auth/google-login
func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	var req googleLoginRequest
	if r.Body != nil {
		// ボディ不正はコード未指定と同じ扱い
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	if req.Code == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "Authorization code is required",
		})
		return
	}

	user, tokens, err := h.service.Login(r.Context(), req.Code)
	if err != nil {
		// 失敗の詳細はログのみに記録し、クライアントには汎用メッセージを返す
		slog.Error("google login failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"message": "Failed to log in with Google",
		})
		return
	}

	h.setTokenCookie(w, accessTokenCookie, tokens.AccessToken, accessTokenMaxAge)
	h.setTokenCookie(w, refreshTokenCookie, tokens.RefreshToken, refreshTokenMaxAge)

	writeJSON(w, http.StatusOK, loginResponse{
		Success: true,
		Message: "User authenticated successfully.",
		User: userPayload{
			Name:    user.Name,
			Email:   user.Email,
			Picture: user.Picture,
		},
	})
}

// Logout は両方のトークンCookieを無条件でクリアする。
// POST /auth/logout
// サーバー側にセッションテーブルは存在しないため、トークンの検証や
// 失効処理は行わない。ログアウト前に発行されたアクセストークンは
// 自然な有効期限切れまで暗号学的には有効なまま残る。
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.clearTokenCookie(w, accessTokenCookie)
	h.clearTokenCookie(w, refreshTokenCookie)

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Logged out successfully",
	})
}

// Me は現在のログインユーザー情報を返す。
// GET /auth/me
// 認証ミドルウェアを通過したリクエストでのみ到達する。
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	email, err := middleware.EmailFromContext(r.Context())
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	user, err := h.users.FindByEmail(r.Context(), email)
	if err != nil {
		slog.Error("failed to get current user", slog.String("error", err.Error()))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if user == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	writeJSON(w, http.StatusOK, userPayload{
		Name:    user.Name,
		Email:   user.Email,
		Picture: user.Picture,
	})
}

// setTokenCookie はトークンをHTTP Only Cookieとして設定する。
func (h *AuthHandler) setTokenCookie(w http.ResponseWriter, name, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
}

// clearTokenCookie はトークンCookieを設定時と同じ属性でクリアする。
func (h *AuthHandler) clearTokenCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
}

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}
