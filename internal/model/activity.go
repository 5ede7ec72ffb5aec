package model

import "time"

// Comment はRedditユーザーのコメント1件を表す。
type Comment struct {
	ID        string    // プラットフォーム一意のID（例: "k3x9ab2"）
	Subreddit string    // 投稿先サブレディット名（"r/"プレフィックスなし）
	Body      string    // コメント本文（サニタイズ済みテキスト）
	Permalink string    // 絶対URLのパーマリンク
	Score     int       // スコア（アップ投票 - ダウン投票）
	CreatedAt time.Time // 投稿日時（UTC）
}

// Submission はRedditユーザーの投稿（トップレベルポスト）1件を表す。
// SelfTextとExternalURLは排他: セルフポストはSelfTextのみ、
// リンクポストはExternalURLのみが非空になる。
type Submission struct {
	ID          string
	Subreddit   string
	Title       string
	SelfText    string // セルフポストの本文。リンクポストの場合は空
	ExternalURL string // リンクポストの外部URL。セルフポストの場合は空
	Permalink   string
	Score       int
	CreatedAt   time.Time
}

// ActivitySnapshot は1リクエストのために取得したユーザーの直近アクティビティ。
// コメント・投稿とも新しい順で、取得件数は設定された上限で制限される。
// 構築後は変更されず、リクエスト間で共有されない。
type ActivitySnapshot struct {
	Username    string
	Comments    []Comment
	Submissions []Submission
}

// PersonaReport はLLMが生成したペルソナテキストと対象ユーザー名の組。
// 生成後は変更されない。テキストの内部構造は解釈しない。
type PersonaReport struct {
	Username    string
	PersonaText string
	GeneratedAt time.Time
}
