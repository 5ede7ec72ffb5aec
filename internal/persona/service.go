package persona

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hitoshi/personabuilder/internal/model"
	"github.com/hitoshi/personabuilder/internal/profile"
)

// パイプラインの各ステージ名。失敗時のログとメトリクスのラベルに使う。
const (
	StageParseURL      = "parse_url"
	StageFetchActivity = "fetch_activity"
	StageGenerate      = "generate"
)

// ActivityFetcher はユーザーアクティビティ取得のインターフェース。
// reddit.Clientを抽象化してテスタビリティを向上させる。
type ActivityFetcher interface {
	FetchActivity(ctx context.Context, username string) (*model.ActivitySnapshot, error)
}

// PersonaGenerator はプロンプトからのテキスト生成のインターフェース。
// gemini.Generatorを抽象化してテスタビリティを向上させる。
type PersonaGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// MetricsCollector はペルソナ生成パイプラインのメトリクス収集のインターフェース。
type MetricsCollector interface {
	RecordBuildSuccess()
	RecordBuildFailure(stage string)
	RecordFetchLatency(d time.Duration)
	RecordGenerationLatency(d time.Duration)
}

// Service はペルソナ生成パイプラインを統括する唯一のエントリポイント。
// URL解析→アクティビティ取得→プロンプト組み立て→生成を順に実行し、
// 最初の失敗で打ち切る。呼び出し間で状態を持たず、同時呼び出しに対して安全。
type Service struct {
	fetcher   ActivityFetcher
	generator PersonaGenerator
	metrics   MetricsCollector
	logger    *slog.Logger
	timeout   time.Duration
}

// NewService はServiceの新しいインスタンスを生成する。
// timeoutはペルソナ生成1回あたりの全体の制限時間。0以下の場合は300秒を使う。
func NewService(fetcher ActivityFetcher, generator PersonaGenerator, metrics MetricsCollector, logger *slog.Logger, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = 300 * time.Second
	}
	return &Service{
		fetcher:   fetcher,
		generator: generator,
		metrics:   metrics,
		logger:    logger,
		timeout:   timeout,
	}
}

// BuildPersona はプロフィールURLからPersonaReportを生成する。
// いずれかのステージの失敗はステージ名付きでログに記録され、
// model.APIErrorとしてそのまま呼び出し元に返る。部分的な結果は返さない。
// 全体の制限時間を超過した場合はREQUEST_TIMEOUTに変換される。
// リトライは行わず、このシステム側には副作用を残さない。
func (s *Service) BuildPersona(ctx context.Context, rawURL string) (*model.PersonaReport, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	username, err := profile.ParseUsername(rawURL)
	if err != nil {
		return nil, s.fail(StageParseURL, err)
	}

	s.logger.Info("building persona",
		slog.String("username", username),
	)

	fetchStart := time.Now()
	snapshot, err := s.fetcher.FetchActivity(ctx, username)
	if err != nil {
		return nil, s.fail(StageFetchActivity, s.mapTimeout(ctx, err))
	}
	s.metrics.RecordFetchLatency(time.Since(fetchStart))

	prompt := ComposePrompt(snapshot)

	genStart := time.Now()
	text, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, s.fail(StageGenerate, s.mapTimeout(ctx, err))
	}
	s.metrics.RecordGenerationLatency(time.Since(genStart))

	s.metrics.RecordBuildSuccess()
	s.logger.Info("persona built",
		slog.String("username", username),
		slog.Int("comments", len(snapshot.Comments)),
		slog.Int("submissions", len(snapshot.Submissions)),
		slog.Int("persona_chars", len(text)),
	)

	return &model.PersonaReport{
		Username:    username,
		PersonaText: text,
		GeneratedAt: time.Now().UTC(),
	}, nil
}

// fail は失敗ステージをメトリクスとログに記録してエラーをそのまま返す。
func (s *Service) fail(stage string, err error) error {
	s.metrics.RecordBuildFailure(stage)
	s.logger.Warn("persona build failed",
		slog.String("stage", stage),
		slog.String("error", err.Error()),
	)
	return err
}

// mapTimeout は全体の制限時間超過に起因するエラーをREQUEST_TIMEOUTに変換する。
// 制限時間に関係しないエラーはそのまま返す。
func (s *Service) mapTimeout(ctx context.Context, err error) error {
	if ctx.Err() == context.DeadlineExceeded || errors.Is(err, context.DeadlineExceeded) {
		return model.NewRequestTimeoutError(err)
	}
	return err
}
