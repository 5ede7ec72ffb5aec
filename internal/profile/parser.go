// Package profile はRedditプロフィールURLからのユーザー名抽出を提供する。
package profile

import (
	"strings"

	"github.com/hitoshi/personabuilder/internal/model"
)

// ParseUsername はプロフィールURLからユーザー名を抽出する。
// 前後のスラッシュを除去してパスを"/"で分割し、末尾から2番目のセグメントが
// 大文字小文字を無視して"user"に一致する場合のみ有効とみなし、
// 末尾のセグメントをユーザー名として返す。
// ユーザー名自体の大文字小文字は入力のまま保持される。
// それ以外の形状はINVALID_URLエラーになる。ネットワークアクセスは行わない。
func ParseUsername(rawURL string) (string, error) {
	trimmed := strings.Trim(rawURL, "/")
	parts := strings.Split(trimmed, "/")

	if len(parts) < 2 {
		return "", model.NewInvalidURLError(rawURL)
	}

	if !strings.EqualFold(parts[len(parts)-2], "user") {
		return "", model.NewInvalidURLError(rawURL)
	}

	username := parts[len(parts)-1]
	if username == "" {
		return "", model.NewInvalidURLError(rawURL)
	}

	return username, nil
}
