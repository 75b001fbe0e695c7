package services

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"alfredoptarigan/resume-analyzer/internal/models"
)

const sampleAnalysis = `1. OVERALL SCORE: 82
2. STRENGTHS:
- Clear progression across three roles
- Strong Go and Kubernetes background
3. WEAKNESSES:
Few quantified results
4. SUGGESTIONS: Add metrics to each role
5. KEYWORDS: gRPC, PostgreSQL; missing: Terraform
6. FORMATTING: Consistent headings
7. ATS COMPATIBILITY: 7/10
8. JOB MATCH: 75 - good overlap
9. MISSING SKILLS: Terraform
10. CUSTOMIZATION SUGGESTIONS: Mention infrastructure as code`

func fixedParser() *ResponseParser {
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	return &ResponseParser{now: func() time.Time { return at }}
}

func TestExtractScore(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		label string
		want  int
		isNil bool
	}{
		{"colon", "OVERALL SCORE: 82", LabelOverallScore, 82, false},
		{"no colon", "overall score 64/100", LabelOverallScore, 64, false},
		{"markdown bold", "**OVERALL SCORE:** 91", LabelOverallScore, 91, false},
		{"no number", "OVERALL SCORE: excellent", LabelOverallScore, 0, true},
		{"missing label", "STRENGTHS: many", LabelOverallScore, 0, true},
		{"ats", "ATS: 6", LabelATS, 6, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractScore(tt.text, tt.label)
			if tt.isNil {
				if got != nil {
					t.Fatalf("ExtractScore() = %d, want nil", *got)
				}
				return
			}
			if got == nil || *got != tt.want {
				t.Fatalf("ExtractScore() = %v, want %d", got, tt.want)
			}
		})
	}
}

func TestExtractNumberedSection(t *testing.T) {
	text := "STRENGTHS:\n  Solid backend work  \n2. WEAKNESSES: none"

	if got := ExtractNumberedSection(text, LabelStrengths); got != "Solid backend work" {
		t.Errorf("ExtractNumberedSection(STRENGTHS) = %q", got)
	}
	if got := ExtractNumberedSection(text, LabelWeaknesses); got != "none" {
		t.Errorf("ExtractNumberedSection(WEAKNESSES) = %q", got)
	}
	if got := ExtractNumberedSection(text, LabelKeywords); got != "" {
		t.Errorf("ExtractNumberedSection(KEYWORDS) = %q, want empty", got)
	}
	if got := ExtractNumberedSection("strengths: lower case label", LabelStrengths); got != "lower case label" {
		t.Errorf("ExtractNumberedSection() is not case-insensitive, got %q", got)
	}
}

func TestParseAnalysisRoundTrip(t *testing.T) {
	raw := "OVERALL SCORE: 82\nSTRENGTHS:\nDeep distributed systems experience\n2. WEAKNESSES: Layout"

	got := fixedParser().ParseAnalysis(raw, false)

	if got.OverallScore == nil || *got.OverallScore != 82 {
		t.Fatalf("OverallScore = %v, want 82", got.OverallScore)
	}
	if got.Strengths != "Deep distributed systems experience" {
		t.Errorf("Strengths = %q", got.Strengths)
	}
	if got.RawAnalysis != raw {
		t.Errorf("RawAnalysis was not kept verbatim")
	}
}

func TestParseAnalysis(t *testing.T) {
	got := fixedParser().ParseAnalysis(sampleAnalysis, true)

	if got.OverallScore == nil || *got.OverallScore != 82 {
		t.Errorf("OverallScore = %v, want 82", got.OverallScore)
	}
	if got.ATSScore == nil || *got.ATSScore != 7 {
		t.Errorf("ATSScore = %v, want 7", got.ATSScore)
	}
	if want := "- Clear progression across three roles\n- Strong Go and Kubernetes background"; got.Strengths != want {
		t.Errorf("Strengths = %q, want %q", got.Strengths, want)
	}
	if got.Weaknesses != "Few quantified results" {
		t.Errorf("Weaknesses = %q", got.Weaknesses)
	}
	if !strings.Contains(got.Keywords, "missing") {
		t.Errorf("Keywords = %q", got.Keywords)
	}
	if got.MissingSkills != "Terraform" {
		t.Errorf("MissingSkills = %q", got.MissingSkills)
	}
	if got.Customization != "Mention infrastructure as code" {
		t.Errorf("Customization = %q", got.Customization)
	}
	if !got.HasJobComparison {
		t.Error("HasJobComparison = false, want true")
	}
}

func TestParseAnalysisWithoutJobDescription(t *testing.T) {
	got := fixedParser().ParseAnalysis(sampleAnalysis, false)
	if got.JobMatch != "" || got.MissingSkills != "" || got.Customization != "" {
		t.Errorf("job fields populated without a job description: %+v", got)
	}
}

func TestParseAnalysisGarbage(t *testing.T) {
	got := fixedParser().ParseAnalysis("The model refused to answer.", false)

	if got.OverallScore != nil || got.ATSScore != nil {
		t.Errorf("scores = %v/%v, want nil", got.OverallScore, got.ATSScore)
	}
	for name, field := range map[string]string{
		"strengths":   got.Strengths,
		"weaknesses":  got.Weaknesses,
		"suggestions": got.Suggestions,
		"keywords":    got.Keywords,
		"formatting":  got.Formatting,
	} {
		if field != "" {
			t.Errorf("%s = %q, want empty", name, field)
		}
	}
}

const sampleImprovements = `**PRIORITY IMPROVEMENTS** (Most impactful changes)
1. Do X
2. Do Y

**CONTENT ENHANCEMENTS**
• Quantify the migration project
- Mention team size

**FORMAT & STRUCTURE OPTIMIZATIONS**
Keep the current layout, it reads well.

**KEYWORD & ATS IMPROVEMENTS**
* Add "Terraform"

**ESTIMATED IMPACT**
Potential score increase: 10-15 points`

func TestParseImprovements(t *testing.T) {
	got, err := fixedParser().ParseImprovements(sampleImprovements)
	if err != nil {
		t.Fatalf("ParseImprovements() returned error: %v", err)
	}

	if want := "• Do X\n• Do Y"; got.PriorityImprovements != want {
		t.Errorf("PriorityImprovements = %q, want %q", got.PriorityImprovements, want)
	}
	if want := "• Quantify the migration project\n• Mention team size"; got.ContentEnhancements != want {
		t.Errorf("ContentEnhancements = %q, want %q", got.ContentEnhancements, want)
	}
	if want := "Keep the current layout, it reads well."; got.FormatOptimizations != want {
		t.Errorf("FormatOptimizations = %q, want %q", got.FormatOptimizations, want)
	}
	if want := `• Add "Terraform"`; got.KeywordImprovements != want {
		t.Errorf("KeywordImprovements = %q, want %q", got.KeywordImprovements, want)
	}
	if want := "Potential score increase: 10-15 points"; got.EstimatedImpact != want {
		t.Errorf("EstimatedImpact = %q, want %q", got.EstimatedImpact, want)
	}
	if got.FullResponse != sampleImprovements {
		t.Error("FullResponse was not kept verbatim")
	}
	if got.IsFallback() {
		t.Error("IsFallback() = true for a parsed model response")
	}
}

func TestParseImprovementsPartial(t *testing.T) {
	got, err := fixedParser().ParseImprovements("**PRIORITY IMPROVEMENTS**\n1. Only this")
	if err != nil {
		t.Fatalf("ParseImprovements() returned error: %v", err)
	}
	if got.PriorityImprovements != "• Only this" {
		t.Errorf("PriorityImprovements = %q", got.PriorityImprovements)
	}
	if got.ContentEnhancements != "" {
		t.Errorf("ContentEnhancements = %q, want empty", got.ContentEnhancements)
	}
}

func TestParseImprovementsMalformed(t *testing.T) {
	_, err := fixedParser().ParseImprovements("Sorry, I cannot help with that.")
	if !errors.Is(err, ErrMalformedModelResponse) {
		t.Fatalf("ParseImprovements() error = %v, want ErrMalformedModelResponse", err)
	}
}

func TestItemizeBlock(t *testing.T) {
	tests := []struct {
		name  string
		block string
		want  []string
	}{
		{"numbered", "1. First\n2) Second\n10. Tenth", []string{"First", "Second", "Tenth"}},
		{"bullets", "• a\n- b\n* c", []string{"a", "b", "c"}},
		{"mixed prose", "Intro line\n- only item", []string{"only item"}},
		{"no list", "Plain paragraph", []string{"Plain paragraph"}},
		{"empty", "  ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ItemizeBlock(tt.block)
			if strings.Join(got, "|") != strings.Join(tt.want, "|") || len(got) != len(tt.want) {
				t.Errorf("ItemizeBlock(%q) = %q, want %q", tt.block, got, tt.want)
			}
		})
	}
}

const sampleRewrite = `[NOME_COMPLETO]
Maria Silva

[CONTATO]
maria@example.com | São Paulo

[RESUMO_PROFISSIONAL]
Engenheira de software com 8 anos de experiência.

[EXPERIENCIA_PROFISSIONAL]
• Engenheira Sênior | Acme | 2019-2024
• Reduziu custos de infraestrutura em 30%

[FORMACAO]
• Ciência da Computação | USP | 2015

[COMPETENCIAS]
Go, Kubernetes

[CONQUISTAS]
Palestrante na GopherCon Brasil`

func TestParseRewrite(t *testing.T) {
	got, err := fixedParser().ParseRewrite(sampleRewrite)
	if err != nil {
		t.Fatalf("ParseRewrite() returned error: %v", err)
	}
	if got.FullName != "Maria Silva" {
		t.Errorf("FullName = %q", got.FullName)
	}
	if got.Contact != "maria@example.com | São Paulo" {
		t.Errorf("Contact = %q", got.Contact)
	}
	if !strings.HasPrefix(got.Experience, "• Engenheira Sênior") || !strings.Contains(got.Experience, "30%") {
		t.Errorf("Experience = %q", got.Experience)
	}
	if got.Achievements != "Palestrante na GopherCon Brasil" {
		t.Errorf("Achievements = %q", got.Achievements)
	}
}

func TestParseRewriteMissingMandatoryMarkers(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"missing name", strings.Replace(sampleRewrite, "[NOME_COMPLETO]", "", 1)},
		{"missing contact", strings.Replace(sampleRewrite, "[CONTATO]", "", 1)},
		{"empty name", "[NOME_COMPLETO]\n\n[CONTATO]\nmaria@example.com"},
		{"free text", "Maria Silva, maria@example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := fixedParser().ParseRewrite(tt.raw)
			if !errors.Is(err, ErrMissingSection) {
				t.Fatalf("ParseRewrite() error = %v, want ErrMissingSection", err)
			}
			if got != nil {
				t.Errorf("ParseRewrite() returned sections %+v alongside an error", got)
			}
		})
	}
}

func TestParseRewriteOptionalSections(t *testing.T) {
	got, err := fixedParser().ParseRewrite("[NOME_COMPLETO]\nJoão\n[CONTATO]\njoao@example.com")
	if err != nil {
		t.Fatalf("ParseRewrite() returned error: %v", err)
	}
	if got.Summary != "" || got.Experience != "" || got.Achievements != "" {
		t.Errorf("optional sections = %+v, want empty", got)
	}
}

func TestParseAnalysisScoresOutsideScale(t *testing.T) {
	raw := "1. OVERALL SCORE: 140\n2. STRENGTHS: Go\n7. ATS COMPATIBILITY: 85/100 - good"

	got := NewResponseParser().ParseAnalysis(raw, false)
	if got.OverallScore != nil {
		t.Errorf("OverallScore = %d, want nil", *got.OverallScore)
	}
	if got.ATSScore != nil {
		t.Errorf("ATSScore = %d, want nil", *got.ATSScore)
	}
	if got.Strengths != "Go" {
		t.Errorf("Strengths = %q, want Go", got.Strengths)
	}
}

func TestParseAnalysisAcceptedByPayloadSchema(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		withJob bool
	}{
		{"sample", sampleAnalysis, true},
		{"ats on a hundred scale", "1. OVERALL SCORE: 72\n2. STRENGTHS: Go\n7. ATS COMPATIBILITY: 85/100 - good", false},
		{"no sections", "The model ignored the format.", false},
		{"job sections missing", "1. OVERALL SCORE: 60", true},
	}

	parser := NewResponseParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, err := json.Marshal(parser.ParseAnalysis(tt.raw, tt.withJob))
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			if _, err := models.ValidateAnalysisPayload(payload); err != nil {
				t.Errorf("ValidateAnalysisPayload() rejected parsed analysis: %v", err)
			}
		})
	}
}
