package services

import (
	"errors"
	"strings"
	"testing"

	"alfredoptarigan/resume-analyzer/internal/models"
)

const longResume = "Jane Doe - Backend Engineer. Experience: 6 years building Go services, PostgreSQL, Kubernetes."

func TestBuildAnalysisPrompt(t *testing.T) {
	pb := NewPromptBuilder()

	prompt, err := pb.BuildAnalysisPrompt(longResume, "")
	if err != nil {
		t.Fatalf("BuildAnalysisPrompt() returned error: %v", err)
	}
	for _, want := range []string{
		analysisSystemPrompt,
		longResume,
		"1. OVERALL SCORE:",
		"2. STRENGTHS:",
		"3. WEAKNESSES:",
		"4. SUGGESTIONS:",
		"5. KEYWORDS:",
		"6. FORMATTING:",
		"7. ATS COMPATIBILITY:",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("analysis prompt missing %q", want)
		}
	}
	if strings.Contains(prompt, "JOB MATCH") || strings.Contains(prompt, "8. ") {
		t.Error("analysis prompt contains job sections without a job description")
	}
	if !strings.HasPrefix(prompt, analysisSystemPrompt) {
		t.Error("analysis prompt does not start with the system prompt")
	}
}

func TestBuildAnalysisPromptWithJobDescription(t *testing.T) {
	prompt, err := NewPromptBuilder().BuildAnalysisPrompt(longResume, "Senior Go engineer, Terraform")
	if err != nil {
		t.Fatalf("BuildAnalysisPrompt() returned error: %v", err)
	}
	for _, want := range []string{
		"JOB DESCRIPTION FOR COMPARISON:\nSenior Go engineer, Terraform",
		"8. JOB MATCH:",
		"9. MISSING SKILLS:",
		"10. CUSTOMIZATION SUGGESTIONS:",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("analysis prompt missing %q", want)
		}
	}
}

func TestBuildAnalysisPromptTooShort(t *testing.T) {
	for _, text := range []string{"", "short resume", "   " + strings.Repeat("a", MinResumeChars-1) + "   "} {
		if _, err := NewPromptBuilder().BuildAnalysisPrompt(text, ""); !errors.Is(err, ErrTextTooShort) {
			t.Errorf("BuildAnalysisPrompt(%q) error = %v, want ErrTextTooShort", text, err)
		}
	}
	if _, err := NewPromptBuilder().BuildAnalysisPrompt(strings.Repeat("a", MinResumeChars), ""); err != nil {
		t.Errorf("BuildAnalysisPrompt() rejected %d characters: %v", MinResumeChars, err)
	}
}

func TestParseImprovementCategory(t *testing.T) {
	tests := map[string]ImprovementCategory{
		"structure":  CategoryStructure,
		" ATS ":      CategoryATS,
		"Formatting": CategoryFormatting,
		"":           CategoryGeneral,
		"unknown":    CategoryGeneral,
	}
	for in, want := range tests {
		if got := ParseImprovementCategory(in); got != want {
			t.Errorf("ParseImprovementCategory(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBuildImprovementPrompt(t *testing.T) {
	score, ats := 64, 5
	analysis := &models.AnalysisResult{OverallScore: &score, ATSScore: &ats, Strengths: "Go depth", Weaknesses: "No metrics"}

	prompt := NewPromptBuilder().BuildImprovementPrompt(analysis, longResume, CategoryKeywords)

	for _, want := range []string{
		improvementSystemPrompt,
		"Overall Score: 64/100",
		"Strengths: Go depth",
		"Areas for Improvement: No metrics",
		"ATS Compatibility: 5/10",
		CategoryKeywords.Focus(),
		"**PRIORITY IMPROVEMENTS**",
		"**CONTENT ENHANCEMENTS**",
		"**FORMAT & STRUCTURE OPTIMIZATIONS**",
		"**KEYWORD & ATS IMPROVEMENTS**",
		"**ESTIMATED IMPACT**",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("improvement prompt missing %q", want)
		}
	}
}

func TestBuildImprovementPromptDefaults(t *testing.T) {
	prompt := NewPromptBuilder().BuildImprovementPrompt(nil, longResume, ImprovementCategory("bogus"))

	for _, want := range []string{
		"Overall Score: N/A/100",
		"Strengths: Not available",
		"ATS Compatibility: N/A/10",
		CategoryGeneral.Focus(),
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("improvement prompt missing %q", want)
		}
	}
}

func TestBuildRewritePrompt(t *testing.T) {
	score := 58
	prompt := NewPromptBuilder().BuildRewritePrompt(&models.AnalysisResult{OverallScore: &score}, longResume)

	for _, want := range []string{
		longResume,
		"- Score: 58/100",
		"- Pontos fracos identificados: formatação e estrutura",
		"[NOME_COMPLETO]",
		"[CONTATO]",
		"[RESUMO_PROFISSIONAL]",
		"[EXPERIENCIA_PROFISSIONAL]",
		"[FORMACAO]",
		"[COMPETENCIAS]",
		"[CONQUISTAS]",
		"Não invente dados!",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("rewrite prompt missing %q", want)
		}
	}
}
