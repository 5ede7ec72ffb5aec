// Package gemini はGoogle Gemini APIによるテキスト生成を提供する。
package gemini

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/hitoshi/personabuilder/internal/model"

	"google.golang.org/genai"
)

// Generator はGemini APIのクライアント。
// モデル識別子はプロセス起動時の設定で固定され、呼び出しごとには変更できない。
// 生成されたテキストは後処理なしでそのまま返す。リトライは行わない。
type Generator struct {
	client    *genai.Client
	modelName string
	logger    *slog.Logger
}

// NewGenerator はGeneratorの新しいインスタンスを生成する。
// APIキーが空の場合、ネットワークアクセスを行う前に
// CREDENTIALS_MISSINGエラーで失敗する。
func NewGenerator(ctx context.Context, apiKey, modelName string, logger *slog.Logger) (*Generator, error) {
	return newGenerator(ctx, apiKey, modelName, logger, nil, "")
}

// newGenerator はHTTPクライアントとベースURLを差し替え可能な内部コンストラクタ。
// テストではhttptestサーバーを指すbaseURLを渡す。
func newGenerator(ctx context.Context, apiKey, modelName string, logger *slog.Logger, httpClient *http.Client, baseURL string) (*Generator, error) {
	if apiKey == "" {
		return nil, model.NewCredentialsMissingError("GOOGLE_API_KEY")
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if httpClient != nil {
		cfg.HTTPClient = httpClient
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, model.NewGenerationError(err)
	}

	return &Generator{
		client:    client,
		modelName: modelName,
		logger:    logger,
	}, nil
}

// Generate はプロンプトを設定済みモデルに送信し、応答テキストをそのまま返す。
// 引用指示が守られているかどうかの検証は行わない。
// 通信・クォータ失敗はGENERATION_FAILED、候補のない応答は
// MALFORMED_RESPONSEとして返す。
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	g.logger.Info("sending prompt to gemini",
		slog.String("model", g.modelName),
		slog.Int("prompt_chars", len(prompt)),
	)

	start := time.Now()
	result, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt), nil)
	if err != nil {
		g.logger.Error("gemini generation failed",
			slog.String("model", g.modelName),
			slog.String("error", err.Error()),
		)
		return "", model.NewGenerationError(err)
	}

	if result == nil || len(result.Candidates) == 0 ||
		result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return "", model.NewMalformedResponseError("llm", errNoCandidates)
	}

	text := result.Candidates[0].Content.Parts[0].Text
	if text == "" {
		return "", model.NewMalformedResponseError("llm", errNoCandidates)
	}

	g.logger.Info("gemini generation succeeded",
		slog.String("model", g.modelName),
		slog.Float64("duration_sec", time.Since(start).Seconds()),
		slog.Int("response_chars", len(text)),
	)

	return text, nil
}

// errNoCandidates はテキスト候補を含まない応答を表す。
var errNoCandidates = &emptyResponseError{}

type emptyResponseError struct{}

func (e *emptyResponseError) Error() string {
	return "gemini response contains no text candidates"
}
