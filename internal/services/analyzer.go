package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"alfredoptarigan/resume-analyzer/internal/models"
)

// ResumeAnalyzer sequences extraction, validation, analysis and improvement
// generation for one request. Failures come back as *PipelineError.
type ResumeAnalyzer interface {
	AnalyzeUpload(ctx context.Context, in AnalyzeUploadInput) (*models.AnalysisResponse, error)
	AnalyzeText(ctx context.Context, requestID, resumeText, jobDescription string) (*models.AnalysisResponse, error)
	GenerateImprovements(ctx context.Context, requestID string, analysis *models.AnalysisResult, resumeText string, category ImprovementCategory) *models.ImprovementBundle
	GenerateImprovedResume(ctx context.Context, requestID string, analysis *models.AnalysisResult, resumeText string) (*ImprovedResume, error)
}

type AnalyzeUploadInput struct {
	RequestID        string
	File             *models.StoredFile
	JobDescription   string
	WithImprovements bool
	ImprovementType  string
}

// ImprovedResume is the rewritten résumé and its rendered PDF.
type ImprovedResume struct {
	Sections *models.ImprovedResumeSections
	HTML     string
	PDF      []byte
	Filename string
}

type AnalyzerOptions struct {
	Tasks          TaskConfigs
	FallbackLocale string
	GraceDelay     time.Duration
}

type resumeAnalyzer struct {
	storage     StorageService
	cleanup     CleanupWorker
	extractor   TextExtractor
	validator   ResumeValidator
	gateway     ModelGateway
	prompts     *PromptBuilder
	parser      *ResponseParser
	synthesizer *ImprovementSynthesizer
	composer    ResumeComposer
	renderer    PDFRenderer
	events      EventPublisher
	opts        AnalyzerOptions
	now         func() time.Time
}

func NewResumeAnalyzer(
	storage StorageService,
	cleanup CleanupWorker,
	extractor TextExtractor,
	validator ResumeValidator,
	gateway ModelGateway,
	composer ResumeComposer,
	renderer PDFRenderer,
	events EventPublisher,
	opts AnalyzerOptions,
) ResumeAnalyzer {
	if events == nil {
		events = NewNoopPublisher()
	}
	if opts.FallbackLocale == "" {
		opts.FallbackLocale = "pt-BR"
	}
	return &resumeAnalyzer{
		storage:     storage,
		cleanup:     cleanup,
		extractor:   extractor,
		validator:   validator,
		gateway:     gateway,
		prompts:     NewPromptBuilder(),
		parser:      NewResponseParser(),
		synthesizer: NewImprovementSynthesizer(),
		composer:    composer,
		renderer:    renderer,
		events:      events,
		opts:        opts,
		now:         time.Now,
	}
}

// AnalyzeUpload implements ResumeAnalyzer. The stored file is released
// immediately when the pipeline fails and after the grace delay otherwise.
func (a *resumeAnalyzer) AnalyzeUpload(ctx context.Context, in AnalyzeUploadInput) (*models.AnalysisResponse, error) {
	if in.File == nil {
		return nil, newPipelineError(StateReceived, ErrExtractionFailed, fmt.Errorf("%w: no file provided", ErrEmptyContent))
	}
	start := a.now()
	key := in.File.Key
	a.transition(ctx, in.RequestID, StateReceived, in.File.OriginalName)

	content, err := a.readStored(ctx, key)
	if err != nil {
		return nil, a.fail(ctx, in.RequestID, key, StateReceived, ErrExtractionFailed, err)
	}

	log.Printf("📄 Extracting text from %s\n", in.File.OriginalName)
	text, err := a.extractor.Extract(ctx, RawDocument{
		Key:          key,
		OriginalName: in.File.OriginalName,
		MimeType:     in.File.MimeType,
		Size:         in.File.Size,
		Content:      content,
	})
	if err != nil {
		return nil, a.fail(ctx, in.RequestID, key, StateReceived, ErrExtractionFailed, err)
	}
	a.transition(ctx, in.RequestID, StateExtracted, string(text.SourceFormat))

	response, state, err := a.analyze(ctx, in.RequestID, text.Content, in.JobDescription)
	if err != nil {
		return nil, a.fail(ctx, in.RequestID, key, state, stageFor(state), err)
	}

	if in.WithImprovements {
		response.AIImprovements = a.GenerateImprovements(ctx, in.RequestID, response.Analysis, text.Content, ParseImprovementCategory(in.ImprovementType))
	}
	response.File = in.File

	if a.cleanup != nil {
		a.cleanup.ReleaseAfter(key, a.opts.GraceDelay)
	}
	a.transition(ctx, in.RequestID, StateDone, fmt.Sprintf("completed in %s", a.now().Sub(start)))
	return response, nil
}

// AnalyzeText implements ResumeAnalyzer.
func (a *resumeAnalyzer) AnalyzeText(ctx context.Context, requestID, resumeText, jobDescription string) (*models.AnalysisResponse, error) {
	start := a.now()
	a.transition(ctx, requestID, StateReceived, "text")
	a.transition(ctx, requestID, StateExtracted, string(FormatTXT))

	response, state, err := a.analyze(ctx, requestID, resumeText, jobDescription)
	if err != nil {
		return nil, a.fail(ctx, requestID, "", state, stageFor(state), err)
	}

	a.transition(ctx, requestID, StateDone, fmt.Sprintf("completed in %s", a.now().Sub(start)))
	return response, nil
}

// GenerateImprovements implements ResumeAnalyzer. It never fails: a model
// or parsing failure yields the canned bundle marked as a fallback.
func (a *resumeAnalyzer) GenerateImprovements(ctx context.Context, requestID string, analysis *models.AnalysisResult, resumeText string, category ImprovementCategory) *models.ImprovementBundle {
	log.Printf("🤖 Generating %s improvements\n", category)

	prompt := a.prompts.BuildImprovementPrompt(analysis, resumeText, category)
	raw, err := a.gateway.Generate(ctx, prompt, a.opts.Tasks.Improvement)
	if err == nil {
		var bundle *models.ImprovementBundle
		if bundle, err = a.parser.ParseImprovements(raw); err == nil {
			a.transition(ctx, requestID, StateImprovementsGenerated, string(models.BundleSourceModel))
			return bundle
		}
	}

	log.Printf("⚠️  Improvement generation failed, using fallback bundle: %v\n", err)
	bundle := FallbackBundle(a.opts.FallbackLocale, analysis, ErrorKind(err), a.now())
	a.transition(ctx, requestID, StateImprovementsGenerated, string(models.BundleSourceFallback))
	return bundle
}

// GenerateImprovedResume implements ResumeAnalyzer. Any failure of the
// rewrite, composition or rendering fails the whole request.
func (a *resumeAnalyzer) GenerateImprovedResume(ctx context.Context, requestID string, analysis *models.AnalysisResult, resumeText string) (*ImprovedResume, error) {
	a.transition(ctx, requestID, StateReceived, "rewrite")

	if len(strings.TrimSpace(resumeText)) < MinResumeChars {
		return nil, a.fail(ctx, requestID, "", StateReceived, ErrImprovedResumeFailed, ErrTextTooShort)
	}

	log.Println("🤖 Rewriting resume with LLM...")
	raw, err := a.gateway.Generate(ctx, a.prompts.BuildRewritePrompt(analysis, resumeText), a.opts.Tasks.Rewrite)
	if err != nil {
		return nil, a.fail(ctx, requestID, "", StateReceived, ErrImprovedResumeFailed, err)
	}

	sections, err := a.parser.ParseRewrite(raw)
	if err != nil {
		return nil, a.fail(ctx, requestID, "", StateReceived, ErrImprovedResumeFailed, err)
	}
	a.transition(ctx, requestID, StateRewritten, "sections parsed")

	generatedAt := a.now()
	html, err := a.composer.ComposeHTML(sections, analysis, generatedAt)
	if err != nil {
		return nil, a.fail(ctx, requestID, "", StateRewritten, ErrImprovedResumeFailed, fmt.Errorf("%w: %v", ErrRenderFailed, err))
	}

	pdf, err := a.renderer.RenderHTMLToPDF(ctx, html)
	if err != nil {
		return nil, a.fail(ctx, requestID, "", StateRewritten, ErrImprovedResumeFailed, err)
	}
	a.transition(ctx, requestID, StateRendered, FormatFileSize(int64(len(pdf))))
	a.transition(ctx, requestID, StateDone, "")

	return &ImprovedResume{
		Sections: sections,
		HTML:     html,
		PDF:      pdf,
		Filename: ImprovedResumeFilename(generatedAt),
	}, nil
}

// analyze runs validation and the analysis model call. On failure it also
// reports the last state reached.
func (a *resumeAnalyzer) analyze(ctx context.Context, requestID, resumeText, jobDescription string) (*models.AnalysisResponse, PipelineState, error) {
	verdict := a.validator.Inspect(resumeText)
	if !verdict.Valid {
		return nil, StateExtracted, fmt.Errorf("%w: %d words, %d resume keywords", ErrValidationFailed, verdict.WordCount, len(verdict.MatchedKeywords))
	}
	a.transition(ctx, requestID, StateValidated, fmt.Sprintf("%d words", verdict.WordCount))

	prompt, err := a.prompts.BuildAnalysisPrompt(resumeText, jobDescription)
	if err != nil {
		return nil, StateValidated, err
	}

	log.Println("🤖 Analyzing resume with LLM...")
	raw, err := a.gateway.Generate(ctx, prompt, a.opts.Tasks.Analysis)
	if err != nil {
		return nil, StateValidated, err
	}

	hasJob := strings.TrimSpace(jobDescription) != ""
	analysis := a.parser.ParseAnalysis(raw, hasJob)
	a.transition(ctx, requestID, StateAnalyzed, scoreOrNA(analysis.OverallScore))

	return &models.AnalysisResponse{
		Analysis:     analysis,
		Improvements: a.synthesizer.Synthesize(analysis),
		Metadata: models.AnalysisMetadata{
			AnalyzedAt:       analysis.AnalyzedAt,
			HasJobComparison: hasJob,
			TextLength:       len(resumeText),
			WordCount:        verdict.WordCount,
			ResumeText:       resumeText,
		},
	}, StateAnalyzed, nil
}

func (a *resumeAnalyzer) readStored(ctx context.Context, key string) ([]byte, error) {
	rc, err := a.storage.Open(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read stored file %s: %w", key, err)
	}
	return content, nil
}

// fail releases the upload, if any, and reports the failure.
func (a *resumeAnalyzer) fail(ctx context.Context, requestID, key string, state PipelineState, stage, err error) error {
	perr := newPipelineError(state, stage, err)

	if key != "" && a.cleanup != nil {
		if cerr := a.cleanup.ReleaseNow(context.WithoutCancel(ctx), key); cerr != nil {
			log.Printf("⚠️  Failed to release %s after error: %v\n", key, cerr)
		}
	}

	log.Printf("❌ [%s] %v\n", requestID, perr)
	a.events.Publish(ctx, PipelineEvent{
		RequestID: requestID,
		State:     StateFailed,
		Message:   perr.Kind(),
		Timestamp: a.now(),
	})
	return perr
}

func (a *resumeAnalyzer) transition(ctx context.Context, requestID string, state PipelineState, message string) {
	log.Printf("✅ [%s] %s %s\n", requestID, state, message)
	a.events.Publish(ctx, PipelineEvent{
		RequestID: requestID,
		State:     state,
		Message:   message,
		Timestamp: a.now(),
	})
}

// stageFor names the stage that failed when the pipeline stopped at state.
func stageFor(state PipelineState) error {
	switch state {
	case StateReceived:
		return ErrExtractionFailed
	case StateExtracted:
		return ErrValidationFailed
	default:
		return ErrAnalysisFailed
	}
}
