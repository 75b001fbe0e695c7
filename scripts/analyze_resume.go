package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"alfredoptarigan/resume-analyzer/internal/config"
	"alfredoptarigan/resume-analyzer/internal/models"
	"alfredoptarigan/resume-analyzer/internal/services"
)

func main() {
	jobDescriptionPath := flag.String("job", "", "path to a job description text file")
	improve := flag.Bool("improve", false, "also generate AI improvement suggestions")
	category := flag.String("type", "general", "improvement type (general, structure, content, keywords, ats, formatting)")
	reportDir := flag.String("report", "", "directory where an xlsx report is written for each resume")
	pdfDir := flag.String("pdf", "", "directory where an improved resume PDF is written for each resume")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: analyze_resume [flags] resume.pdf [resume.docx ...]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	log.Println("🚀 Starting resume analysis...")

	// Load configuration
	cfg := config.Load()
	ctx := context.Background()

	gemini, err := services.NewGeminiGateway(ctx, services.GeminiOptions{
		APIKey:   cfg.Gemini.APIKey,
		Model:    cfg.Gemini.Model,
		Backend:  cfg.Gemini.Backend,
		Project:  cfg.Gemini.Project,
		Location: cfg.Gemini.Location,
	})
	if err != nil {
		log.Fatalf("❌ Failed to initialize Gemini: %v", err)
	}

	var jobDescription string
	if *jobDescriptionPath != "" {
		data, err := os.ReadFile(*jobDescriptionPath)
		if err != nil {
			log.Fatalf("❌ Failed to read job description: %v", err)
		}
		jobDescription = string(data)
	}

	extractor := services.NewTextExtractor()
	exporter := services.NewReportExporter()
	synthesizer := services.NewImprovementSynthesizer()
	analyzer := services.NewResumeAnalyzer(
		nil,
		nil,
		extractor,
		services.NewResumeValidator(cfg.Analysis.MinWords),
		services.NewRetryingGateway(gemini, cfg.Gemini.MaxAttempts, cfg.Gemini.Timeout),
		services.NewResumeComposer(),
		services.NewChromedpRenderer(cfg.Renderer.ChromePath, cfg.Renderer.Timeout),
		services.NewNoopPublisher(),
		services.AnalyzerOptions{
			Tasks:          services.TaskConfigsFrom(cfg.Generation),
			FallbackLocale: cfg.Analysis.FallbackLocale,
		},
	)

	successCount := 0
	failCount := 0

	for i, path := range flag.Args() {
		log.Printf("\n📄 Processing: %s", path)

		content, err := os.ReadFile(path)
		if err != nil {
			log.Printf("   ❌ Failed to read file: %v", err)
			failCount++
			continue
		}

		log.Printf("   📖 Extracting text...")
		text, err := extractor.Extract(ctx, services.RawDocument{
			Key:          filepath.Base(path),
			OriginalName: filepath.Base(path),
			Size:         int64(len(content)),
			Content:      content,
		})
		if err != nil {
			log.Printf("   ❌ Failed to extract text (%s): %v", services.ErrorKind(err), err)
			failCount++
			continue
		}
		log.Printf("   ✅ Extracted %d characters", text.Length)

		requestID := fmt.Sprintf("cli-%d", i+1)
		response, err := analyzer.AnalyzeText(ctx, requestID, text.Content, jobDescription)
		if err != nil {
			log.Printf("   ❌ Analysis failed (%s): %v", services.ErrorKind(err), err)
			failCount++
			continue
		}

		if *improve {
			response.AIImprovements = analyzer.GenerateImprovements(ctx, requestID, response.Analysis, text.Content, services.ParseImprovementCategory(*category))
		}

		printResult(path, response)

		if *reportDir != "" {
			if err := writeReport(exporter, synthesizer, *reportDir, response); err != nil {
				log.Printf("   ❌ Failed to write report: %v", err)
			}
		}

		if *pdfDir != "" {
			if err := writeImprovedPDF(ctx, analyzer, *pdfDir, requestID, response.Analysis, text.Content); err != nil {
				log.Printf("   ❌ Failed to generate improved resume (%s): %v", services.ErrorKind(err), err)
			}
		}

		successCount++
	}

	// Summary
	log.Println("\n" + strings.Repeat("=", 60))
	log.Printf("📊 Analysis Summary:")
	log.Printf("   ✅ Successful: %d resumes", successCount)
	log.Printf("   ❌ Failed: %d resumes", failCount)
	log.Println(strings.Repeat("=", 60))

	if failCount > 0 {
		os.Exit(1)
	}
}

func printResult(path string, response *models.AnalysisResponse) {
	out, err := json.MarshalIndent(struct {
		File         string                    `json:"file"`
		Analysis     *models.AnalysisResult    `json:"analysis"`
		Plan         *models.ImprovementPlan   `json:"improvements"`
		Improvements *models.ImprovementBundle `json:"aiImprovements,omitempty"`
	}{path, response.Analysis, response.Improvements, response.AIImprovements}, "", "  ")
	if err != nil {
		log.Printf("   ❌ Failed to encode result: %v", err)
		return
	}
	fmt.Println(string(out))
}

func writeReport(exporter services.ReportExporter, synthesizer *services.ImprovementSynthesizer, dir string, response *models.AnalysisResponse) error {
	now := time.Now()
	report, err := exporter.Export(services.ExportInput{
		Analysis:     response.Analysis,
		Plan:         synthesizer.Synthesize(response.Analysis),
		Improvements: response.AIImprovements,
		GeneratedAt:  now,
	})
	if err != nil {
		return err
	}

	target := filepath.Join(dir, services.ReportFilename(now))
	if err := os.WriteFile(target, report, 0o644); err != nil {
		return err
	}
	log.Printf("   📊 Report written to %s", target)
	return nil
}

func writeImprovedPDF(ctx context.Context, analyzer services.ResumeAnalyzer, dir, requestID string, analysis *models.AnalysisResult, resumeText string) error {
	improved, err := analyzer.GenerateImprovedResume(ctx, requestID, analysis, resumeText)
	if err != nil {
		return err
	}

	target := filepath.Join(dir, improved.Filename)
	if err := os.WriteFile(target, improved.PDF, 0o644); err != nil {
		return err
	}
	log.Printf("   📝 Improved resume written to %s", target)
	return nil
}
