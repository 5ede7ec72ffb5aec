// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
// 上流サービス起因のエラーはErrに元エラーを保持する。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: validation, reddit, llm, system
	Action   string // ユーザー向け対処方法
	Err      error  // 元エラー（存在する場合のみ）
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap はラップされた元エラーを返す。errors.Is / errors.As 連携用。
func (e *APIError) Unwrap() error {
	return e.Err
}

// 定義済みエラーコード
const (
	ErrCodeInvalidURL         = "INVALID_URL"
	ErrCodeInvalidRequest     = "INVALID_REQUEST"
	ErrCodeCredentialsMissing = "CREDENTIALS_MISSING"
	ErrCodeUserNotFound       = "USER_NOT_FOUND"
	ErrCodeUpstreamFetch      = "UPSTREAM_FETCH_FAILED"
	ErrCodeGeneration         = "GENERATION_FAILED"
	ErrCodeRequestTimeout     = "REQUEST_TIMEOUT"
	ErrCodeMalformedResponse  = "MALFORMED_RESPONSE"
)

// NewInvalidURLError は無効なプロフィールURLエラーを生成する。
// メッセージには入力されたURLをそのまま含める。
func NewInvalidURLError(rawURL string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidURL,
		Message:  fmt.Sprintf("無効なRedditユーザープロフィールURLです: %s", rawURL),
		Category: "validation",
		Action:   "https://www.reddit.com/user/<ユーザー名> 形式のURLを入力してください。",
	}
}

// NewInvalidRequestError はリクエストボディの解析失敗エラーを生成する。
func NewInvalidRequestError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  "リクエストボディの解析に失敗しました。",
		Category: "validation",
		Action:   "正しいJSON形式でリクエストしてください。",
	}
}

// NewCredentialsMissingError は必須クレデンシャル未設定エラーを生成する。
// namesには不足している環境変数名を渡す。
func NewCredentialsMissingError(names ...string) *APIError {
	return &APIError{
		Code:     ErrCodeCredentialsMissing,
		Message:  fmt.Sprintf("必須のクレデンシャルが設定されていません: %v", names),
		Category: "system",
		Action:   "環境変数（.env）にAPIクレデンシャルを設定してからサーバーを再起動してください。",
	}
}

// NewUserNotFoundError は対象ユーザーがRedditに存在しない場合のエラーを生成する。
func NewUserNotFoundError(username string) *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  fmt.Sprintf("ユーザー /u/%s はRedditに存在しません。", username),
		Category: "reddit",
		Action:   "ユーザー名のつづりを確認してください。削除・凍結されたアカウントは取得できません。",
	}
}

// NewUpstreamFetchError はReddit APIとの通信失敗エラーを生成する。
func NewUpstreamFetchError(cause error) *APIError {
	return &APIError{
		Code:     ErrCodeUpstreamFetch,
		Message:  "Reddit APIからのデータ取得に失敗しました。",
		Category: "reddit",
		Action:   "しばらく待ってから再度お試しください。続く場合はRedditの稼働状況を確認してください。",
		Err:      cause,
	}
}

// NewGenerationError はLLMサービスとの通信失敗エラーを生成する。
func NewGenerationError(cause error) *APIError {
	return &APIError{
		Code:     ErrCodeGeneration,
		Message:  "ペルソナの生成に失敗しました。",
		Category: "llm",
		Action:   "しばらく待ってから再度お試しください。続く場合はAPIクォータを確認してください。",
		Err:      cause,
	}
}

// NewRequestTimeoutError はリクエスト全体の制限時間超過エラーを生成する。
func NewRequestTimeoutError(cause error) *APIError {
	return &APIError{
		Code:     ErrCodeRequestTimeout,
		Message:  "処理が制限時間内に完了しませんでした。",
		Category: "system",
		Action:   "アクティビティの多いユーザーは時間がかかります。再度お試しください。",
		Err:      cause,
	}
}

// NewMalformedResponseError は上流サービスの応答が解釈できない場合のエラーを生成する。
// sourceには"reddit"または"llm"を渡す。
func NewMalformedResponseError(source string, cause error) *APIError {
	return &APIError{
		Code:     ErrCodeMalformedResponse,
		Message:  fmt.Sprintf("%s からの応答を解釈できませんでした。", source),
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
		Err:      cause,
	}
}
