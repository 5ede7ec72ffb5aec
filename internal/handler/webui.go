package handler

import (
	_ "embed"
	"net/http"
)

// indexHTML は埋め込みのWebフォーム。プロフィールURLの入力と
// 生成結果の表示・ダウンロードだけを行う最小のプレゼンテーション層。
//
//go:embed webui/index.html
var indexHTML []byte

// ServeIndex は埋め込みWebフォームを返す。
// GET /
func ServeIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML)
}
