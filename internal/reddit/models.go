package reddit

// tokenResponse はアプリ専用OAuthトークンエンドポイントのレスポンス。
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Scope       string `json:"scope"`
}

// listing はRedditのリスティングAPIレスポンス（kind: Listing）。
// 子要素は data.children[].data に格納され、afterカーソルでページングする。
type listing struct {
	Kind string `json:"kind"`
	Data struct {
		After    string `json:"after"`
		Before   string `json:"before"`
		Children []struct {
			Kind string `json:"kind"` // "t1"（コメント）または "t3"（投稿）
			Data thing  `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// thing はコメント（t1）と投稿（t3）の両方のフィールドを持つワイヤ構造体。
// コメントはBody、投稿はTitle/Selftext/URL/IsSelfを使用する。
type thing struct {
	ID         string  `json:"id"`
	Subreddit  string  `json:"subreddit"`
	Body       string  `json:"body"`
	Title      string  `json:"title"`
	Selftext   string  `json:"selftext"`
	URL        string  `json:"url"`
	IsSelf     bool    `json:"is_self"`
	Permalink  string  `json:"permalink"`
	Score      int     `json:"score"`
	CreatedUTC float64 `json:"created_utc"`
}
