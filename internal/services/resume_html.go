package services

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"regexp"
	"strconv"
	"strings"
	"time"

	"alfredoptarigan/resume-analyzer/internal/models"
)

//go:embed templates/improved_resume.html
var improvedResumeTemplate string

var bulletLine = regexp.MustCompile(`^[•▶\-*]\s*`)

// ResumeComposer turns rewritten résumé sections into a printable HTML page.
type ResumeComposer interface {
	ComposeHTML(sections *models.ImprovedResumeSections, analysis *models.AnalysisResult, generatedAt time.Time) (string, error)
}

type resumeComposer struct {
	tmpl *template.Template
}

type sectionBlock struct {
	Paragraph string
	Items     []string
}

type composedSection struct {
	Title  string
	Blocks []sectionBlock
}

type resumePage struct {
	OriginalScore string
	GeneratedOn   string
	FullName      string
	ContactLines  []string
	Sections      []composedSection
}

func NewResumeComposer() ResumeComposer {
	return &resumeComposer{
		tmpl: template.Must(template.New("improved_resume").Parse(improvedResumeTemplate)),
	}
}

// ComposeHTML implements ResumeComposer. Empty optional sections are left out.
func (c *resumeComposer) ComposeHTML(sections *models.ImprovedResumeSections, analysis *models.AnalysisResult, generatedAt time.Time) (string, error) {
	if sections == nil {
		return "", fmt.Errorf("%w: no sections to compose", ErrMissingSection)
	}

	score := "N/A"
	if analysis != nil && analysis.OverallScore != nil {
		score = strconv.Itoa(*analysis.OverallScore)
	}

	data := resumePage{
		OriginalScore: score,
		GeneratedOn:   generatedAt.Format("02/01/2006"),
		FullName:      sections.FullName,
		ContactLines:  nonEmptyLines(sections.Contact),
	}

	for _, s := range []struct{ title, body string }{
		{"Resumo Profissional", sections.Summary},
		{"Experiência Profissional", sections.Experience},
		{"Formação Acadêmica", sections.Education},
		{"Competências", sections.Skills},
		{"Principais Conquistas", sections.Achievements},
	} {
		if blocks := splitBlocks(s.body); len(blocks) > 0 {
			data.Sections = append(data.Sections, composedSection{Title: s.title, Blocks: blocks})
		}
	}

	var buf bytes.Buffer
	if err := c.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to compose resume html: %w", err)
	}
	return buf.String(), nil
}

// splitBlocks groups consecutive bullet lines into lists and keeps every
// other line as its own paragraph, preserving order.
func splitBlocks(body string) []sectionBlock {
	var blocks []sectionBlock
	var items []string

	flush := func() {
		if len(items) > 0 {
			blocks = append(blocks, sectionBlock{Items: items})
			items = nil
		}
	}

	for _, line := range nonEmptyLines(body) {
		if bulletLine.MatchString(line) {
			if item := strings.TrimSpace(bulletLine.ReplaceAllString(line, "")); item != "" {
				items = append(items, item)
			}
			continue
		}
		flush()
		blocks = append(blocks, sectionBlock{Paragraph: line})
	}
	flush()

	return blocks
}

func nonEmptyLines(s string) []string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// ImprovedResumeFilename is the attachment name for a rendered résumé.
func ImprovedResumeFilename(at time.Time) string {
	return fmt.Sprintf("resume_improved_%d.pdf", at.UnixMilli())
}
