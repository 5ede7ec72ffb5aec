package persona

import (
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/personabuilder/internal/model"
)

func sampleSnapshot() *model.ActivitySnapshot {
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return &model.ActivitySnapshot{
		Username: "kojied",
		Comments: []model.Comment{
			{
				ID:        "c1",
				Subreddit: "golang",
				Body:      "I love goroutines",
				Permalink: "https://www.reddit.com/r/golang/comments/abc/c1/",
				Score:     10,
				CreatedAt: created,
			},
			{
				ID:        "c2",
				Subreddit: "programming",
				Body:      "Types are good",
				Permalink: "https://www.reddit.com/r/programming/comments/def/c2/",
				Score:     3,
				CreatedAt: created,
			},
		},
		Submissions: []model.Submission{
			{
				ID:        "p1",
				Subreddit: "golang",
				Title:     "Why I switched",
				SelfText:  "Long story",
				Permalink: "https://www.reddit.com/r/golang/comments/p1/",
				Score:     42,
				CreatedAt: created,
			},
		},
	}
}

func TestComposePromptIsDeterministic(t *testing.T) {
	s := sampleSnapshot()

	first := ComposePrompt(s)
	second := ComposePrompt(s)

	if first != second {
		t.Error("ComposePrompt should return byte-identical output for the same snapshot")
	}
}

func TestComposePromptContainsInstructionAndData(t *testing.T) {
	s := sampleSnapshot()
	prompt := ComposePrompt(s)

	// 指示文の必須セクション
	for _, section := range []string{
		"Basic Info",
		"Personality Traits",
		"Motivations",
		"Goals & Needs",
		"Frustrations",
		"Quote",
	} {
		if !strings.Contains(prompt, section) {
			t.Errorf("prompt should contain section %q", section)
		}
	}

	// 引用要件
	if !strings.Contains(prompt, "permalink") {
		t.Error("prompt should require citation with permalinks")
	}

	if !strings.Contains(prompt, "Here's the Reddit data for user /u/kojied:") {
		t.Error("prompt should identify the user")
	}

	// コメント・投稿の各行にIDとパーマリンクが含まれること
	wantLines := []string{
		"Comment (c1) in r/golang: I love goroutines [link: https://www.reddit.com/r/golang/comments/abc/c1/]",
		"Comment (c2) in r/programming: Types are good [link: https://www.reddit.com/r/programming/comments/def/c2/]",
		"Post (p1) in r/golang: Title: Why I switched Body: Long story [Link: https://www.reddit.com/r/golang/comments/p1/]",
	}
	for _, line := range wantLines {
		if !strings.Contains(prompt, line) {
			t.Errorf("prompt should contain line %q", line)
		}
	}
}

func TestComposePromptPreservesOrder(t *testing.T) {
	s := sampleSnapshot()
	prompt := ComposePrompt(s)

	// コメントセクションが投稿セクションより前にあること
	commentsIdx := strings.Index(prompt, "--- Comments ---")
	postsIdx := strings.Index(prompt, "--- Posts ---")
	if commentsIdx < 0 || postsIdx < 0 {
		t.Fatal("prompt should contain both comments and posts sections")
	}
	if commentsIdx > postsIdx {
		t.Error("comments section should come before posts section")
	}

	// スナップショット内の順序がそのまま保持されること
	c1 := strings.Index(prompt, "Comment (c1)")
	c2 := strings.Index(prompt, "Comment (c2)")
	if c1 > c2 {
		t.Error("comment order should match snapshot order")
	}
}

func TestComposePromptEmptySnapshot(t *testing.T) {
	s := &model.ActivitySnapshot{Username: "newbie"}
	prompt := ComposePrompt(s)

	// 空のスナップショットでも整形済みプロンプトを返す（エラーや空文字にしない）
	if prompt == "" {
		t.Fatal("prompt should not be empty for an empty snapshot")
	}
	if !strings.Contains(prompt, "Here's the Reddit data for user /u/newbie:") {
		t.Error("prompt should identify the user even with no activity")
	}
	if !strings.Contains(prompt, "--- Comments ---") || !strings.Contains(prompt, "--- Posts ---") {
		t.Error("prompt should keep section headers even with no activity")
	}
}
