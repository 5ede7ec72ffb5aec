package security

import "testing"

func TestSanitizeText(t *testing.T) {
	sanitizer := NewTextSanitizer()

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "プレーンテキストはそのまま",
			raw:  "I love goroutines",
			want: "I love goroutines",
		},
		{
			name: "HTMLタグを除去",
			raw:  "<b>bold</b> and <i>italic</i>",
			want: "bold and italic",
		},
		{
			name: "scriptタグは中身ごと除去",
			raw:  "<script>alert(1)</script>hello",
			want: "hello",
		},
		{
			name: "HTMLエンティティをデコード",
			raw:  "Tom &amp; Jerry &gt; others",
			want: "Tom & Jerry > others",
		},
		{
			name: "前後の空白を除去",
			raw:  "  padded  ",
			want: "padded",
		},
		{
			name: "空文字列は空文字列",
			raw:  "",
			want: "",
		},
		{
			name: "リンクはテキストのみ残す",
			raw:  `check <a href="https://evil.example/">this</a> out`,
			want: "check this out",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizer.SanitizeText(tt.raw)
			if got != tt.want {
				t.Errorf("SanitizeText(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestSanitizeTextIsIdempotent(t *testing.T) {
	sanitizer := NewTextSanitizer()

	raw := "<p>some &amp; text</p>"
	once := sanitizer.SanitizeText(raw)
	twice := sanitizer.SanitizeText(once)

	if once != twice {
		t.Errorf("SanitizeText should be idempotent: once=%q twice=%q", once, twice)
	}
}
