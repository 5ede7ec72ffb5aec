// Package reddit はReddit Data APIからのユーザーアクティビティ取得を提供する。
// アプリ専用OAuthトークンの取得と、コメント・投稿リスティングのページングを含む。
package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hitoshi/personabuilder/internal/model"
)

const (
	// defaultTokenURL はアプリ専用OAuthトークンエンドポイント。
	defaultTokenURL = "https://www.reddit.com/api/v1/access_token"
	// defaultAPIBaseURL は認証済みData APIのベースURL。
	defaultAPIBaseURL = "https://oauth.reddit.com"
	// permalinkBaseURL はパーマリンクを絶対URLにするためのプレフィックス。
	permalinkBaseURL = "https://www.reddit.com"
	// pageSize はリスティング1ページあたりの最大取得件数（API上限）。
	pageSize = 100
)

// Credentials はReddit APIのアプリ専用クレデンシャル。
type Credentials struct {
	ClientID     string
	ClientSecret string
	UserAgent    string
}

// TextSanitizer は取得したテキストのサニタイズのインターフェース。
// security.TextSanitizerServiceを抽象化してテスタビリティを向上させる。
type TextSanitizer interface {
	SanitizeText(raw string) string
}

// Client はReddit Data APIのクライアント。
// 指定ユーザーの直近のコメントと投稿を新しい順で取得する。
// 1回の取得は全件成功か全体失敗のどちらかで、部分的なスナップショットは返さない。
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	sanitizer  TextSanitizer
	creds      Credentials

	commentLimit    int
	submissionLimit int

	tokenURL   string // テスト用にエンドポイントを差し替え可能
	apiBaseURL string
}

// NewClient はClientの新しいインスタンスを生成する。
// クレデンシャルのいずれかが空の場合、ネットワークアクセスを行う前に
// CREDENTIALS_MISSINGエラーで失敗する。
// commentLimit/submissionLimitが0以下の場合はデフォルト（200/50）を使う。
func NewClient(creds Credentials, httpClient *http.Client, sanitizer TextSanitizer, logger *slog.Logger, commentLimit, submissionLimit int) (*Client, error) {
	var missing []string
	if creds.ClientID == "" {
		missing = append(missing, "REDDIT_CLIENT_ID")
	}
	if creds.ClientSecret == "" {
		missing = append(missing, "REDDIT_CLIENT_SECRET")
	}
	if creds.UserAgent == "" {
		missing = append(missing, "REDDIT_USER_AGENT")
	}
	if len(missing) > 0 {
		return nil, model.NewCredentialsMissingError(missing...)
	}

	if commentLimit <= 0 {
		commentLimit = 200
	}
	if submissionLimit <= 0 {
		submissionLimit = 50
	}

	return &Client{
		httpClient:      httpClient,
		logger:          logger,
		sanitizer:       sanitizer,
		creds:           creds,
		commentLimit:    commentLimit,
		submissionLimit: submissionLimit,
		tokenURL:        defaultTokenURL,
		apiBaseURL:      defaultAPIBaseURL,
	}, nil
}

// FetchActivity は指定ユーザーの直近のコメントと投稿を取得して
// ActivitySnapshotを返す。両リスティングの取得が成功した場合のみ
// スナップショットを返し、どちらかが失敗した場合は全体を失敗させる。
func (c *Client) FetchActivity(ctx context.Context, username string) (*model.ActivitySnapshot, error) {
	token, err := c.fetchToken(ctx)
	if err != nil {
		return nil, err
	}

	c.logger.Info("fetching reddit activity",
		slog.String("username", username),
		slog.Int("comment_limit", c.commentLimit),
		slog.Int("submission_limit", c.submissionLimit),
	)

	commentThings, err := c.fetchListing(ctx, token, username, "comments", c.commentLimit)
	if err != nil {
		return nil, err
	}

	submissionThings, err := c.fetchListing(ctx, token, username, "submitted", c.submissionLimit)
	if err != nil {
		return nil, err
	}

	snapshot := &model.ActivitySnapshot{
		Username:    username,
		Comments:    make([]model.Comment, 0, len(commentThings)),
		Submissions: make([]model.Submission, 0, len(submissionThings)),
	}

	for _, t := range commentThings {
		snapshot.Comments = append(snapshot.Comments, c.toComment(t))
	}
	for _, t := range submissionThings {
		snapshot.Submissions = append(snapshot.Submissions, c.toSubmission(t))
	}

	c.logger.Info("reddit activity fetched",
		slog.String("username", username),
		slog.Int("comments", len(snapshot.Comments)),
		slog.Int("submissions", len(snapshot.Submissions)),
	)

	return snapshot, nil
}

// fetchToken はアプリ専用OAuthトークンを取得する。
// client_credentialsグラントをHTTPベーシック認証で送信する。
func (c *Client) fetchToken(ctx context.Context) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", model.NewUpstreamFetchError(err)
	}
	req.SetBasicAuth(c.creds.ClientID, c.creds.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.creds.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("reddit token request failed", slog.String("error", err.Error()))
		return "", model.NewUpstreamFetchError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("reddit token endpoint returned error status",
			slog.Int("http_status", resp.StatusCode),
		)
		return "", model.NewUpstreamFetchError(fmt.Errorf("token endpoint returned status %d", resp.StatusCode))
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", model.NewMalformedResponseError("reddit", err)
	}
	if tok.AccessToken == "" {
		return "", model.NewMalformedResponseError("reddit", fmt.Errorf("empty access_token in response"))
	}

	return tok.AccessToken, nil
}

// fetchListing は/user/{name}/{kind}リスティングをafterカーソルで
// ページングしながら、最大limit件まで新しい順で取得する。
// kindは"comments"または"submitted"。
func (c *Client) fetchListing(ctx context.Context, token, username, kind string, limit int) ([]thing, error) {
	things := make([]thing, 0, limit)
	after := ""

	for len(things) < limit {
		remaining := limit - len(things)
		size := remaining
		if size > pageSize {
			size = pageSize
		}

		page, err := c.fetchPage(ctx, token, username, kind, after, size)
		if err != nil {
			return nil, err
		}

		for _, child := range page.Data.Children {
			things = append(things, child.Data)
			if len(things) >= limit {
				break
			}
		}

		// afterが空、または子要素が尽きたらリスティングの終端
		if page.Data.After == "" || len(page.Data.Children) == 0 {
			break
		}
		after = page.Data.After
	}

	return things, nil
}

// fetchPage はリスティング1ページ分を取得してデコードする。
func (c *Client) fetchPage(ctx context.Context, token, username, kind, after string, size int) (*listing, error) {
	reqURL := fmt.Sprintf("%s/user/%s/%s", c.apiBaseURL, url.PathEscape(username), kind)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, model.NewUpstreamFetchError(err)
	}

	q := req.URL.Query()
	q.Set("sort", "new")
	q.Set("limit", strconv.Itoa(size))
	q.Set("raw_json", "1")
	if after != "" {
		q.Set("after", after)
	}
	req.URL.RawQuery = q.Encode()

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("User-Agent", c.creds.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("reddit listing request failed",
			slog.String("username", username),
			slog.String("kind", kind),
			slog.String("error", err.Error()),
		)
		return nil, model.NewUpstreamFetchError(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, model.NewUserNotFoundError(username)
	case resp.StatusCode != http.StatusOK:
		c.logger.Error("reddit listing returned error status",
			slog.String("username", username),
			slog.String("kind", kind),
			slog.Int("http_status", resp.StatusCode),
		)
		return nil, model.NewUpstreamFetchError(fmt.Errorf("listing %s returned status %d", kind, resp.StatusCode))
	}

	var page listing
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, model.NewMalformedResponseError("reddit", err)
	}

	return &page, nil
}

// toComment はワイヤ構造体をドメインのCommentに変換する。
func (c *Client) toComment(t thing) model.Comment {
	return model.Comment{
		ID:        t.ID,
		Subreddit: t.Subreddit,
		Body:      c.sanitizer.SanitizeText(t.Body),
		Permalink: permalinkBaseURL + t.Permalink,
		Score:     t.Score,
		CreatedAt: time.Unix(int64(t.CreatedUTC), 0).UTC(),
	}
}

// toSubmission はワイヤ構造体をドメインのSubmissionに変換する。
// セルフポストはSelfTextのみ、リンクポストはExternalURLのみを埋める。
// セルフポストのurlフィールドはパーマリンクを指すため、is_selfで判定する。
func (c *Client) toSubmission(t thing) model.Submission {
	sub := model.Submission{
		ID:        t.ID,
		Subreddit: t.Subreddit,
		Title:     c.sanitizer.SanitizeText(t.Title),
		Permalink: permalinkBaseURL + t.Permalink,
		Score:     t.Score,
		CreatedAt: time.Unix(int64(t.CreatedUTC), 0).UTC(),
	}
	if t.IsSelf {
		sub.SelfText = c.sanitizer.SanitizeText(t.Selftext)
	} else {
		sub.ExternalURL = t.URL
	}
	return sub
}
