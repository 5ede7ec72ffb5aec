package persona

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/personabuilder/internal/model"
)

// --- テスト用モック ---

// mockFetcher はテスト用のActivityFetcherモック。
type mockFetcher struct {
	snapshot   *model.ActivitySnapshot
	err        error
	delay      time.Duration
	fetchCalls int
	lastUser   string
}

func (m *mockFetcher) FetchActivity(ctx context.Context, username string) (*model.ActivitySnapshot, error) {
	m.fetchCalls++
	m.lastUser = username
	if m.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(m.delay):
		}
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.snapshot, nil
}

// mockGenerator はテスト用のPersonaGeneratorモック。
type mockGenerator struct {
	text          string
	err           error
	generateCalls int
	lastPrompt    string
}

func (m *mockGenerator) Generate(_ context.Context, prompt string) (string, error) {
	m.generateCalls++
	m.lastPrompt = prompt
	if m.err != nil {
		return "", m.err
	}
	return m.text, nil
}

// mockMetrics はテスト用のMetricsCollectorモック。
type mockMetrics struct {
	successCalls int
	failCalls    int
	lastStage    string
	fetchObs     int
	genObs       int
}

func (m *mockMetrics) RecordBuildSuccess()                     { m.successCalls++ }
func (m *mockMetrics) RecordBuildFailure(stage string)         { m.failCalls++; m.lastStage = stage }
func (m *mockMetrics) RecordFetchLatency(_ time.Duration)      { m.fetchObs++ }
func (m *mockMetrics) RecordGenerationLatency(_ time.Duration) { m.genObs++ }

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(&strings.Builder{}, nil))
}

func newTestService(f *mockFetcher, g *mockGenerator, m *mockMetrics, timeout time.Duration) *Service {
	return NewService(f, g, m, testLogger(), timeout)
}

// --- テスト ---

func TestBuildPersonaSuccess(t *testing.T) {
	snapshot := &model.ActivitySnapshot{
		Username: "kojied",
		Comments: []model.Comment{
			{ID: "c1", Subreddit: "golang", Body: "hello", Permalink: "https://www.reddit.com/r/golang/c1/"},
		},
	}
	fetcher := &mockFetcher{snapshot: snapshot}
	generator := &mockGenerator{text: "## Persona: kojied\n..."}
	m := &mockMetrics{}

	svc := newTestService(fetcher, generator, m, 0)

	report, err := svc.BuildPersona(context.Background(), "https://www.reddit.com/user/kojied/")
	if err != nil {
		t.Fatalf("BuildPersona returned unexpected error: %v", err)
	}

	if report.Username != "kojied" {
		t.Errorf("report.Username = %q, want %q", report.Username, "kojied")
	}
	if report.PersonaText != generator.text {
		t.Errorf("report.PersonaText = %q, want generator output verbatim", report.PersonaText)
	}
	if report.GeneratedAt.IsZero() {
		t.Error("report.GeneratedAt should be set")
	}

	if fetcher.lastUser != "kojied" {
		t.Errorf("fetcher should be called with username %q, got %q", "kojied", fetcher.lastUser)
	}
	if generator.generateCalls != 1 {
		t.Errorf("generator should be called exactly once, got %d", generator.generateCalls)
	}
	if !strings.Contains(generator.lastPrompt, "/u/kojied") {
		t.Error("generator should receive the composed prompt")
	}

	if m.successCalls != 1 || m.failCalls != 0 {
		t.Errorf("metrics: success=%d fail=%d, want 1/0", m.successCalls, m.failCalls)
	}
	if m.fetchObs != 1 || m.genObs != 1 {
		t.Errorf("metrics: fetch latency obs=%d gen obs=%d, want 1/1", m.fetchObs, m.genObs)
	}
}

func TestBuildPersonaInvalidURLSkipsDownstream(t *testing.T) {
	fetcher := &mockFetcher{}
	generator := &mockGenerator{}
	m := &mockMetrics{}

	svc := newTestService(fetcher, generator, m, 0)

	_, err := svc.BuildPersona(context.Background(), "https://www.reddit.com/r/golang/")
	if err == nil {
		t.Fatal("BuildPersona should fail for a non-profile URL")
	}

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error should be *model.APIError, got %T", err)
	}
	if apiErr.Code != model.ErrCodeInvalidURL {
		t.Errorf("error code = %s, want %s", apiErr.Code, model.ErrCodeInvalidURL)
	}

	// 下流は一切呼ばれないこと
	if fetcher.fetchCalls != 0 {
		t.Errorf("fetcher should not be called, got %d calls", fetcher.fetchCalls)
	}
	if generator.generateCalls != 0 {
		t.Errorf("generator should not be called, got %d calls", generator.generateCalls)
	}

	if m.lastStage != StageParseURL {
		t.Errorf("failure stage = %q, want %q", m.lastStage, StageParseURL)
	}
}

func TestBuildPersonaFetchFailureSkipsGeneration(t *testing.T) {
	fetcher := &mockFetcher{err: model.NewUserNotFoundError("ghost")}
	generator := &mockGenerator{}
	m := &mockMetrics{}

	svc := newTestService(fetcher, generator, m, 0)

	_, err := svc.BuildPersona(context.Background(), "https://www.reddit.com/user/ghost/")
	if err == nil {
		t.Fatal("BuildPersona should fail when fetch fails")
	}

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error should be *model.APIError, got %T", err)
	}
	if apiErr.Code != model.ErrCodeUserNotFound {
		t.Errorf("error code = %s, want %s", apiErr.Code, model.ErrCodeUserNotFound)
	}

	if generator.generateCalls != 0 {
		t.Errorf("generator should not be called after fetch failure, got %d calls", generator.generateCalls)
	}
	if m.lastStage != StageFetchActivity {
		t.Errorf("failure stage = %q, want %q", m.lastStage, StageFetchActivity)
	}
	if m.successCalls != 0 {
		t.Error("success metric should not be recorded on failure")
	}
}

func TestBuildPersonaGenerationFailureReturnsNoPartialResult(t *testing.T) {
	fetcher := &mockFetcher{snapshot: &model.ActivitySnapshot{Username: "kojied"}}
	generator := &mockGenerator{err: model.NewGenerationError(errors.New("upstream 500"))}
	m := &mockMetrics{}

	svc := newTestService(fetcher, generator, m, 0)

	report, err := svc.BuildPersona(context.Background(), "https://www.reddit.com/user/kojied/")
	if err == nil {
		t.Fatal("BuildPersona should fail when generation fails")
	}
	if report != nil {
		t.Error("no partial report should be returned on failure")
	}

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error should be *model.APIError, got %T", err)
	}
	if apiErr.Code != model.ErrCodeGeneration {
		t.Errorf("error code = %s, want %s", apiErr.Code, model.ErrCodeGeneration)
	}
	if m.lastStage != StageGenerate {
		t.Errorf("failure stage = %q, want %q", m.lastStage, StageGenerate)
	}
}

func TestBuildPersonaTimeoutMapsToRequestTimeout(t *testing.T) {
	// フェッチが制限時間を超えてブロックするケース
	fetcher := &mockFetcher{delay: 500 * time.Millisecond}
	generator := &mockGenerator{}
	m := &mockMetrics{}

	svc := newTestService(fetcher, generator, m, 20*time.Millisecond)

	_, err := svc.BuildPersona(context.Background(), "https://www.reddit.com/user/kojied/")
	if err == nil {
		t.Fatal("BuildPersona should fail when the overall deadline is exceeded")
	}

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error should be *model.APIError, got %T", err)
	}
	if apiErr.Code != model.ErrCodeRequestTimeout {
		t.Errorf("error code = %s, want %s", apiErr.Code, model.ErrCodeRequestTimeout)
	}

	if generator.generateCalls != 0 {
		t.Error("generator should not be called after timeout")
	}
}

func TestBuildPersonaEmptyActivityStillGenerates(t *testing.T) {
	// アクティビティ0件でもエラーにせず生成まで進むこと
	fetcher := &mockFetcher{snapshot: &model.ActivitySnapshot{Username: "lurker"}}
	generator := &mockGenerator{text: "quiet persona"}
	m := &mockMetrics{}

	svc := newTestService(fetcher, generator, m, 0)

	report, err := svc.BuildPersona(context.Background(), "https://www.reddit.com/user/lurker/")
	if err != nil {
		t.Fatalf("BuildPersona returned unexpected error: %v", err)
	}
	if report.PersonaText != "quiet persona" {
		t.Errorf("report.PersonaText = %q, want %q", report.PersonaText, "quiet persona")
	}
	if generator.generateCalls != 1 {
		t.Errorf("generator should be called once, got %d", generator.generateCalls)
	}
}
