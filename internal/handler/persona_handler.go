package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/personabuilder/internal/model"
)

// PersonaServiceInterface はペルソナハンドラーが必要とするサービスインターフェース。
type PersonaServiceInterface interface {
	// BuildPersona はプロフィールURLからペルソナを生成する。
	BuildPersona(ctx context.Context, rawURL string) (*model.PersonaReport, error)
}

// URLValidator は入力URLの事前検証のインターフェース。
// security.SSRFGuardServiceを抽象化してテスタビリティを向上させる。
type URLValidator interface {
	ValidateURL(rawURL string) error
}

// PersonaHandler はペルソナ生成のHTTPハンドラー。
type PersonaHandler struct {
	service   PersonaServiceInterface
	validator URLValidator
}

// NewPersonaHandler はPersonaHandlerを生成する。
func NewPersonaHandler(service PersonaServiceInterface, validator URLValidator) *PersonaHandler {
	return &PersonaHandler{
		service:   service,
		validator: validator,
	}
}

// buildPersonaRequest はペルソナ生成リクエストのボディ。
type buildPersonaRequest struct {
	URL string `json:"url"`
}

// buildPersonaResponse はペルソナ生成のAPIレスポンス。
type buildPersonaResponse struct {
	Username    string `json:"username"`
	PersonaText string `json:"persona_text"`
}

// apiErrorResponse は統一エラーフォーマットのレスポンス。
type apiErrorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// BuildPersona はペルソナ生成を処理する。
// POST /build_persona
func (h *PersonaHandler) BuildPersona(w http.ResponseWriter, r *http.Request) {
	var req buildPersonaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}

	if req.URL == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidURLError(req.URL))
		return
	}

	// ユーザー名抽出の前にURLとしての安全性を静的に検証する
	if err := h.validator.ValidateURL(req.URL); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidURLError(req.URL))
		return
	}

	report, err := h.service.BuildPersona(r.Context(), req.URL)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(buildPersonaResponse{
		Username:    report.Username,
		PersonaText: report.PersonaText,
	})
}

// --- ヘルパー関数 ---

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(apiErrorResponse{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
// 生の上流エラーテキストはログにのみ記録し、レスポンスにはコード付きの
// 安定したメッセージだけを返す。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		writeAPIErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	})
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeInvalidURL, model.ErrCodeInvalidRequest:
		return http.StatusBadRequest
	case model.ErrCodeUserNotFound:
		return http.StatusNotFound
	case model.ErrCodeUpstreamFetch, model.ErrCodeGeneration, model.ErrCodeMalformedResponse:
		return http.StatusBadGateway
	case model.ErrCodeRequestTimeout:
		return http.StatusGatewayTimeout
	case model.ErrCodeCredentialsMissing:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
