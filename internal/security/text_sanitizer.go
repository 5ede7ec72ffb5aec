package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizerService は取得したRedditテキストのサニタイズ機能の
// インターフェースを定義する。プロンプト組み立て前の境界で使用される。
type TextSanitizerService interface {
	// SanitizeText はテキストからHTMLマークアップを全て除去し、
	// HTMLエンティティをデコードしてプレーンテキストを返す。
	// 空文字列の入力には空文字列を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	SanitizeText(raw string) string
}

// textSanitizer はTextSanitizerServiceの実装。
// bluemondayのStrictPolicyを保持し、スレッドセーフにサニタイズ処理を行う。
type textSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer はTextSanitizerServiceの新しいインスタンスを生成する。
// Redditの本文・タイトルはMarkdownだが、APIレスポンスにはHTML断片や
// エスケープ済みエンティティ（&amp;等）が混入することがある。
// LLMプロンプトにはタグを一切含めないため、許可タグなしのStrictPolicyを使う。
func NewTextSanitizer() *textSanitizer {
	return &textSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// SanitizeText はテキストからマークアップを除去してプレーンテキストを返す。
func (s *textSanitizer) SanitizeText(raw string) string {
	if raw == "" {
		return ""
	}
	stripped := s.policy.Sanitize(raw)
	// StrictPolicyは実体参照をエスケープしたまま残すためデコードして戻す
	return strings.TrimSpace(html.UnescapeString(stripped))
}
