package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"alfredoptarigan/resume-analyzer/internal/models"
)

const validResume = `Senior software engineer with eight years of experience building distributed systems in Go.
Education: BSc Computer Science, State University.
Skills: Kubernetes, PostgreSQL, gRPC and observability tooling.`

type recordingCleanup struct {
	mu    sync.Mutex
	now   []string
	after []string
}

func (c *recordingCleanup) Start(ctx context.Context) {}
func (c *recordingCleanup) Stop()                     {}
func (c *recordingCleanup) Pending() int              { return 0 }

func (c *recordingCleanup) ReleaseNow(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = append(c.now, key)
	return nil
}

func (c *recordingCleanup) ReleaseAfter(key string, delay time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.after = append(c.after, key)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []PipelineEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, event PipelineEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) states() []PipelineState {
	p.mu.Lock()
	defer p.mu.Unlock()
	states := make([]PipelineState, len(p.events))
	for i, e := range p.events {
		states[i] = e.State
	}
	return states
}

type fakeRenderer struct {
	calls int
	err   error
}

func (r *fakeRenderer) RenderHTMLToPDF(ctx context.Context, html string) ([]byte, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return []byte("%PDF-1.4 fake"), nil
}

type analyzerFixture struct {
	analyzer ResumeAnalyzer
	storage  StorageService
	gateway  *fakeGateway
	cleanup  *recordingCleanup
	events   *recordingPublisher
	renderer *fakeRenderer
}

func newAnalyzerFixture(t *testing.T, responses ...fakeResponse) *analyzerFixture {
	t.Helper()
	storage, err := NewLocalStorageService(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewLocalStorageService: %v", err)
	}

	f := &analyzerFixture{
		storage:  storage,
		gateway:  &fakeGateway{responses: responses},
		cleanup:  &recordingCleanup{},
		events:   &recordingPublisher{},
		renderer: &fakeRenderer{},
	}
	f.analyzer = NewResumeAnalyzer(
		storage,
		f.cleanup,
		NewTextExtractor(),
		NewResumeValidator(DefaultMinWords),
		f.gateway,
		NewResumeComposer(),
		f.renderer,
		f.events,
		AnalyzerOptions{Tasks: DefaultTaskConfigs(), FallbackLocale: "en", GraceDelay: time.Minute},
	)
	return f
}

func (f *analyzerFixture) upload(t *testing.T, name, content string) *models.StoredFile {
	t.Helper()
	stored, err := f.storage.SaveUpload(context.Background(), multipartFile(t, name, "text/plain", []byte(content)))
	if err != nil {
		t.Fatalf("SaveUpload: %v", err)
	}
	return stored
}

func requirePipelineError(t *testing.T, err error, state PipelineState, kind string) *PipelineError {
	t.Helper()
	var perr *PipelineError
	if !errors.As(err, &perr) {
		t.Fatalf("error = %v, want *PipelineError", err)
	}
	if perr.State != state {
		t.Errorf("State = %q, want %q", perr.State, state)
	}
	if perr.Kind() != kind {
		t.Errorf("Kind() = %q, want %q", perr.Kind(), kind)
	}
	return perr
}

func TestAnalyzeUpload(t *testing.T) {
	f := newAnalyzerFixture(t,
		fakeResponse{text: sampleAnalysis},
		fakeResponse{text: sampleImprovements},
	)
	stored := f.upload(t, "cv.txt", validResume)

	got, err := f.analyzer.AnalyzeUpload(context.Background(), AnalyzeUploadInput{
		RequestID:        "req-1",
		File:             stored,
		JobDescription:   "Platform engineer with Terraform",
		WithImprovements: true,
		ImprovementType:  "ats",
	})
	if err != nil {
		t.Fatalf("AnalyzeUpload() returned error: %v", err)
	}

	if got.Analysis.OverallScore == nil || *got.Analysis.OverallScore != 82 {
		t.Errorf("OverallScore = %v, want 82", got.Analysis.OverallScore)
	}
	if got.Analysis.MissingSkills != "Terraform" {
		t.Errorf("MissingSkills = %q", got.Analysis.MissingSkills)
	}
	if got.Improvements == nil || got.Improvements.Priority != "medium" {
		t.Errorf("Improvements = %+v, want medium priority plan", got.Improvements)
	}
	if got.AIImprovements == nil || got.AIImprovements.IsFallback() {
		t.Errorf("AIImprovements = %+v, want model bundle", got.AIImprovements)
	}
	if got.File != stored || !got.Metadata.HasJobComparison || got.Metadata.WordCount == 0 {
		t.Errorf("response metadata = %+v, file = %v", got.Metadata, got.File)
	}

	if f.gateway.calls[0].Name != "analysis" || f.gateway.calls[1].Name != "improvement" {
		t.Errorf("gateway tasks = %+v", f.gateway.calls)
	}
	if !strings.Contains(f.gateway.prompts[1], ParseImprovementCategory("ats").Focus()) {
		t.Error("improvement prompt does not carry the ats focus")
	}

	if len(f.cleanup.after) != 1 || f.cleanup.after[0] != stored.Key || len(f.cleanup.now) != 0 {
		t.Errorf("cleanup now=%v after=%v, want deferred release of %s", f.cleanup.now, f.cleanup.after, stored.Key)
	}

	want := []PipelineState{StateReceived, StateExtracted, StateValidated, StateAnalyzed, StateImprovementsGenerated, StateDone}
	if got := f.events.states(); fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("events = %v, want %v", got, want)
	}
}

func TestAnalyzeUploadRejectsNonResume(t *testing.T) {
	f := newAnalyzerFixture(t)
	stored := f.upload(t, "notes.txt", "Lorem ipsum")

	_, err := f.analyzer.AnalyzeUpload(context.Background(), AnalyzeUploadInput{RequestID: "req-2", File: stored})

	requirePipelineError(t, err, StateExtracted, "ValidationFailed")
	if !errors.Is(err, ErrValidationFailed) {
		t.Errorf("errors.Is(err, ErrValidationFailed) = false for %v", err)
	}
	if f.gateway.callCount() != 0 {
		t.Errorf("gateway called %d times, want 0", f.gateway.callCount())
	}
	if len(f.cleanup.now) != 1 || f.cleanup.now[0] != stored.Key {
		t.Errorf("cleanup now = %v, want immediate release of %s", f.cleanup.now, stored.Key)
	}
	states := f.events.states()
	if states[len(states)-1] != StateFailed {
		t.Errorf("last event = %q, want failed", states[len(states)-1])
	}
}

func TestAnalyzeUploadEmptyDocument(t *testing.T) {
	f := newAnalyzerFixture(t)
	stored := f.upload(t, "blank.txt", " \n\t ")

	_, err := f.analyzer.AnalyzeUpload(context.Background(), AnalyzeUploadInput{RequestID: "req-3", File: stored})

	requirePipelineError(t, err, StateReceived, "EmptyContent")
	if !errors.Is(err, ErrExtractionFailed) {
		t.Errorf("errors.Is(err, ErrExtractionFailed) = false for %v", err)
	}
	if len(f.cleanup.now) != 1 {
		t.Errorf("cleanup now = %v, want one release", f.cleanup.now)
	}
}

func TestAnalyzeUploadMissingFile(t *testing.T) {
	f := newAnalyzerFixture(t)

	_, err := f.analyzer.AnalyzeUpload(context.Background(), AnalyzeUploadInput{
		RequestID: "req-4",
		File:      &models.StoredFile{Key: "gone.txt", OriginalName: "gone.txt"},
	})

	requirePipelineError(t, err, StateReceived, "ExtractionFailed")
	if len(f.cleanup.now) != 1 || f.cleanup.now[0] != "gone.txt" {
		t.Errorf("cleanup now = %v", f.cleanup.now)
	}
}

func TestAnalyzeTextModelFailure(t *testing.T) {
	f := newAnalyzerFixture(t, fakeResponse{err: fmt.Errorf("%w: quota exceeded", ErrModelInvocationFailed)})

	_, err := f.analyzer.AnalyzeText(context.Background(), "req-5", validResume, "")

	requirePipelineError(t, err, StateValidated, "ModelInvocationFailed")
	if !errors.Is(err, ErrAnalysisFailed) {
		t.Errorf("errors.Is(err, ErrAnalysisFailed) = false for %v", err)
	}
	if len(f.cleanup.now) != 0 {
		t.Errorf("text analysis released uploads: %v", f.cleanup.now)
	}
}

func TestAnalyzeTextWithoutJobDescription(t *testing.T) {
	f := newAnalyzerFixture(t, fakeResponse{text: sampleAnalysis})

	got, err := f.analyzer.AnalyzeText(context.Background(), "req-6", validResume, "  ")
	if err != nil {
		t.Fatalf("AnalyzeText() returned error: %v", err)
	}
	if got.Analysis.HasJobComparison || got.Analysis.JobMatch != "" {
		t.Errorf("job comparison fields set without a job description: %+v", got.Analysis)
	}
	if got.AIImprovements != nil {
		t.Error("AIImprovements set without being requested")
	}
	if strings.Contains(f.gateway.prompts[0], "JOB MATCH") {
		t.Error("analysis prompt asks for job match without a job description")
	}
}

func TestGenerateImprovementsFallback(t *testing.T) {
	analysis := &models.AnalysisResult{OverallScore: intPtr(64)}

	tests := []struct {
		name       string
		response   fakeResponse
		wantReason string
	}{
		{"model error", fakeResponse{err: fmt.Errorf("%w: network", ErrModelInvocationFailed)}, "ModelInvocationFailed"},
		{"unstructured response", fakeResponse{text: "Sorry, I cannot help with that."}, "MalformedModelResponse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAnalyzerFixture(t, tt.response)

			got := f.analyzer.GenerateImprovements(context.Background(), "req-7", analysis, validResume, CategoryGeneral)

			if !got.IsFallback() {
				t.Fatalf("Source = %q, want fallback", got.Source)
			}
			if got.FallbackReason != tt.wantReason {
				t.Errorf("FallbackReason = %q, want %q", got.FallbackReason, tt.wantReason)
			}
			if !strings.Contains(got.EstimatedImpact, "64") {
				t.Errorf("EstimatedImpact = %q, want current score", got.EstimatedImpact)
			}
		})
	}
}

func TestGenerateImprovedResume(t *testing.T) {
	f := newAnalyzerFixture(t, fakeResponse{text: sampleRewrite})
	analysis := &models.AnalysisResult{OverallScore: intPtr(71), Weaknesses: "Few metrics"}

	got, err := f.analyzer.GenerateImprovedResume(context.Background(), "req-8", analysis, validResume)
	if err != nil {
		t.Fatalf("GenerateImprovedResume() returned error: %v", err)
	}

	if got.Sections.FullName != "Maria Silva" {
		t.Errorf("FullName = %q", got.Sections.FullName)
	}
	if !strings.Contains(got.HTML, "Maria Silva") || !strings.Contains(got.HTML, "71/100") {
		t.Error("HTML is missing the name or the original score")
	}
	if string(got.PDF) != "%PDF-1.4 fake" {
		t.Errorf("PDF = %q", got.PDF)
	}
	if !strings.HasPrefix(got.Filename, "resume_improved_") || !strings.HasSuffix(got.Filename, ".pdf") {
		t.Errorf("Filename = %q", got.Filename)
	}
	if f.gateway.calls[0].Name != "rewrite" {
		t.Errorf("gateway task = %q, want rewrite", f.gateway.calls[0].Name)
	}
}

func TestGenerateImprovedResumeFailures(t *testing.T) {
	analysis := &models.AnalysisResult{OverallScore: intPtr(71)}

	t.Run("missing identity markers", func(t *testing.T) {
		f := newAnalyzerFixture(t, fakeResponse{text: "[RESUMO_PROFISSIONAL]\nEngenheira de software"})

		_, err := f.analyzer.GenerateImprovedResume(context.Background(), "req-9", analysis, validResume)

		requirePipelineError(t, err, StateReceived, "MalformedModelResponse")
		if !errors.Is(err, ErrImprovedResumeFailed) || !errors.Is(err, ErrMissingSection) {
			t.Errorf("error chain = %v", err)
		}
		if f.renderer.calls != 0 {
			t.Error("renderer called for an incomplete rewrite")
		}
	})

	t.Run("model error", func(t *testing.T) {
		f := newAnalyzerFixture(t, fakeResponse{err: fmt.Errorf("%w: invalid key", ErrModelInvocationFailed)})

		_, err := f.analyzer.GenerateImprovedResume(context.Background(), "req-10", analysis, validResume)

		requirePipelineError(t, err, StateReceived, "ModelInvocationFailed")
	})

	t.Run("render error", func(t *testing.T) {
		f := newAnalyzerFixture(t, fakeResponse{text: sampleRewrite})
		f.renderer.err = fmt.Errorf("%w: chrome not found", ErrRenderFailed)

		_, err := f.analyzer.GenerateImprovedResume(context.Background(), "req-11", analysis, validResume)

		requirePipelineError(t, err, StateRewritten, "RenderFailed")
	})

	t.Run("text too short", func(t *testing.T) {
		f := newAnalyzerFixture(t)

		_, err := f.analyzer.GenerateImprovedResume(context.Background(), "req-12", analysis, "too short")

		requirePipelineError(t, err, StateReceived, "TextTooShort")
		if f.gateway.callCount() != 0 {
			t.Error("gateway called for a too short text")
		}
	})
}
