package services

import (
	"strings"
	"testing"
	"time"

	"alfredoptarigan/resume-analyzer/internal/models"
)

func TestComposeHTML(t *testing.T) {
	sections := &models.ImprovedResumeSections{
		FullName:   "Maria Silva",
		Contact:    "maria@example.com\nSão Paulo, SP",
		Summary:    "Engenheira de software com 8 anos de experiência.",
		Experience: "Engenheira Sênior | Acme\n• Reduziu custos em 30%\n• Liderou 5 pessoas",
		Skills:     "<script>alert(1)</script>",
	}
	at := time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)

	html, err := NewResumeComposer().ComposeHTML(sections, &models.AnalysisResult{OverallScore: intPtr(68)}, at)
	if err != nil {
		t.Fatalf("ComposeHTML() returned error: %v", err)
	}

	for _, want := range []string{
		"Maria Silva",
		"maria@example.com<br>São Paulo, SP",
		"Score original: 68/100 | Gerado em: 05/03/2024",
		"<p>Engenheira Sênior | Acme</p>",
		"<li>Reduziu custos em 30%</li>",
		"<li>Liderou 5 pessoas</li>",
		"Competências",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("html missing %q", want)
		}
	}

	if strings.Contains(html, "<script>") {
		t.Error("section text was not escaped")
	}
	for _, omitted := range []string{"Formação Acadêmica", "Principais Conquistas"} {
		if strings.Contains(html, omitted) {
			t.Errorf("empty section %q was rendered", omitted)
		}
	}
}

func TestComposeHTMLWithoutScore(t *testing.T) {
	sections := &models.ImprovedResumeSections{FullName: "Ana", Contact: "ana@example.com"}

	html, err := NewResumeComposer().ComposeHTML(sections, nil, time.Now())
	if err != nil {
		t.Fatalf("ComposeHTML() returned error: %v", err)
	}
	if !strings.Contains(html, "Score original: N/A/100") {
		t.Error("missing score should render as N/A")
	}
}

func TestComposeHTMLNilSections(t *testing.T) {
	if _, err := NewResumeComposer().ComposeHTML(nil, nil, time.Now()); err == nil {
		t.Error("ComposeHTML(nil) returned no error")
	}
}

func TestImprovedResumeFilename(t *testing.T) {
	at := time.UnixMilli(1700000000123)
	if got := ImprovedResumeFilename(at); got != "resume_improved_1700000000123.pdf" {
		t.Errorf("ImprovedResumeFilename() = %q", got)
	}
}
