// Package persona はペルソナ生成のドメインロジックを提供する。
// プロンプトの組み立てと、取得→生成パイプラインのオーケストレーションを含む。
package persona

import (
	"fmt"
	"strings"

	"github.com/hitoshi/personabuilder/internal/model"
)

// promptPreamble はLLMへの指示文。必須セクションと引用要件を明示する。
// 引用要件はコメント・投稿の整形フォーマット（ID・パーマリンク入り）に依存する。
const promptPreamble = `You are an expert user persona generator. Your task is to analyze the provided Reddit comments and posts of a user and create a detailed user persona.

The persona should include:
- **Basic Info**: Age, Occupation
- **Personality Traits**
- **Motivations**
- **Goals & Needs**
- **Frustrations**
- **Quote** summarizing their mindset.

Cite the specific Reddit comment/post ID and permalink that supports each insight.`

// ComposePrompt はActivitySnapshotからLLMに送るプロンプトを組み立てる。
// 純粋関数: 同一入力に対して常にバイト単位で同一の出力を返す。
// コメント・投稿が0件のスナップショットでも整形済みプロンプトを返す。
// 各行には引用に必要なIDとパーマリンクをそのまま含める。
func ComposePrompt(s *model.ActivitySnapshot) string {
	var b strings.Builder

	b.WriteString(promptPreamble)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Here's the Reddit data for user /u/%s:\n", s.Username)

	b.WriteString("\n--- Comments ---\n")
	for _, c := range s.Comments {
		fmt.Fprintf(&b, "Comment (%s) in r/%s: %s [link: %s]\n", c.ID, c.Subreddit, c.Body, c.Permalink)
	}

	b.WriteString("\n--- Posts ---\n")
	for _, p := range s.Submissions {
		fmt.Fprintf(&b, "Post (%s) in r/%s: Title: %s Body: %s [Link: %s]\n", p.ID, p.Subreddit, p.Title, p.SelfText, p.Permalink)
	}

	return b.String()
}
