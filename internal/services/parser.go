package services

import (
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"
	"time"

	"alfredoptarigan/resume-analyzer/internal/models"
)

var (
	sectionBoundary = regexp.MustCompile(`\d+\.`)
	listLine        = regexp.MustCompile(`^[\d•\-*]`)
	listMarker      = regexp.MustCompile(`^(?:\d+[.)]?|[•\-*])\s*`)
)

// ExtractScore finds the first integer following label, ignoring case.
// Markdown emphasis between the label and the number is tolerated. It
// returns nil when no number follows the label.
func ExtractScore(text, label string) *int {
	re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(label) + `[*_]*:?[*_\s]*(\d+)`)
	match := re.FindStringSubmatch(text)
	if match == nil {
		return nil
	}
	score, err := strconv.Atoi(match[1])
	if err != nil {
		return nil
	}
	return &score
}

// ExtractNumberedSection returns the text after "label:" up to the next
// "<digits>." token or the end of text, trimmed. Missing labels yield "".
func ExtractNumberedSection(text, label string) string {
	re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(label) + `:`)
	loc := re.FindStringIndex(text)
	if loc == nil {
		return ""
	}

	rest := text[loc[1]:]
	if end := sectionBoundary.FindStringIndex(rest); end != nil {
		rest = rest[:end[0]]
	}
	return cleanCapture(rest)
}

// ExtractBoldSection returns the text between "**header**" and the next
// "**" or the end of text. The bool reports whether the header was found.
func ExtractBoldSection(text, header string) (string, bool) {
	re := regexp.MustCompile(`(?i)\*\*` + regexp.QuoteMeta(header) + `\*\*`)
	loc := re.FindStringIndex(text)
	if loc == nil {
		return "", false
	}

	rest := text[loc[1]:]
	if end := strings.Index(rest, "**"); end >= 0 {
		rest = rest[:end]
	}
	return strings.TrimSpace(rest), true
}

// ExtractBracketSection returns the text between "[token]" and the next "["
// or the end of text. The bool reports whether the marker was found.
func ExtractBracketSection(text, token string) (string, bool) {
	marker := "[" + token + "]"
	start := strings.Index(text, marker)
	if start < 0 {
		return "", false
	}

	rest := text[start+len(marker):]
	if end := strings.Index(rest, "["); end >= 0 {
		rest = rest[:end]
	}
	return cleanCapture(rest), true
}

// ItemizeBlock collects the list lines of block with their markers removed.
// A block without list lines is returned whole as a single item.
func ItemizeBlock(block string) []string {
	items, _ := itemize(block)
	return items
}

// FormatBlock renders the list lines of block as bullet lines, or returns
// the trimmed block verbatim when it has no list lines.
func FormatBlock(block string) string {
	items, listed := itemize(block)
	if !listed {
		return strings.TrimSpace(block)
	}
	return JoinItems(items)
}

// JoinItems renders items as "• " prefixed lines.
func JoinItems(items []string) string {
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = "• " + item
	}
	return strings.Join(lines, "\n")
}

func itemize(block string) ([]string, bool) {
	block = strings.TrimSpace(block)
	if block == "" {
		return nil, false
	}

	var items []string
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		if !listLine.MatchString(line) {
			continue
		}
		item := strings.TrimSpace(listMarker.ReplaceAllString(line, ""))
		if item != "" {
			items = append(items, item)
		}
	}

	if len(items) == 0 {
		return []string{block}, false
	}
	return items, true
}

func cleanCapture(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "**")
	s = strings.TrimSuffix(s, "**")
	return strings.TrimSpace(s)
}

const (
	maxOverallScore = 100
	maxATSScore     = 10
)

// withinScale drops a score the model reported on another scale ("85/100"
// for ATS) instead of passing on a value no client accepts.
func withinScale(score *int, limit int, label string) *int {
	if score == nil || (*score >= 0 && *score <= limit) {
		return score
	}
	log.Printf("⚠️  Ignoring %s %d outside 0-%d\n", label, *score, limit)
	return nil
}

type ResponseParser struct {
	now func() time.Time
}

func NewResponseParser() *ResponseParser {
	return &ResponseParser{now: time.Now}
}

// ParseAnalysis never fails: unmatched sections are empty and unmatched scores nil.
func (p *ResponseParser) ParseAnalysis(raw string, withJobDescription bool) (result *models.AnalysisResult) {
	result = &models.AnalysisResult{
		RawAnalysis:      raw,
		AnalyzedAt:       p.now(),
		HasJobComparison: withJobDescription,
	}

	defer func() {
		if r := recover(); r != nil {
			log.Printf("⚠️  Analysis parsing recovered from panic: %v\n", r)
			result = &models.AnalysisResult{RawAnalysis: raw, AnalyzedAt: p.now(), HasJobComparison: withJobDescription}
		}
	}()

	result.OverallScore = ExtractScore(raw, LabelOverallScore)
	result.Strengths = ExtractNumberedSection(raw, LabelStrengths)
	result.Weaknesses = ExtractNumberedSection(raw, LabelWeaknesses)
	result.Suggestions = ExtractNumberedSection(raw, LabelSuggestions)
	result.Keywords = ExtractNumberedSection(raw, LabelKeywords)
	result.Formatting = ExtractNumberedSection(raw, LabelFormatting)

	result.ATSScore = ExtractScore(raw, LabelATS+" COMPATIBILITY")
	if result.ATSScore == nil {
		result.ATSScore = ExtractScore(raw, LabelATS)
	}

	result.OverallScore = withinScale(result.OverallScore, maxOverallScore, LabelOverallScore)
	result.ATSScore = withinScale(result.ATSScore, maxATSScore, LabelATS)

	if withJobDescription {
		result.JobMatch = ExtractNumberedSection(raw, LabelJobMatch)
		result.MissingSkills = ExtractNumberedSection(raw, LabelMissingSkills)
		result.Customization = ExtractNumberedSection(raw, LabelCustomization)
		if result.Customization == "" {
			result.Customization = ExtractNumberedSection(raw, "CUSTOMIZATION")
		}
	}

	return result
}

// ParseImprovements itemizes each bold-header section. It fails with
// ErrMalformedModelResponse only when none of the headers is present.
func (p *ResponseParser) ParseImprovements(raw string) (bundle *models.ImprovementBundle, err error) {
	defer func() {
		if r := recover(); r != nil {
			bundle = nil
			err = fmt.Errorf("%w: %v", ErrMalformedModelResponse, r)
		}
	}()

	found := 0
	section := func(header string) string {
		block, ok := ExtractBoldSection(raw, header)
		if ok {
			found++
		}
		return block
	}

	priority := section(HeaderPriority)
	content := section(HeaderContent)
	format := section(HeaderFormat)
	keywords := section(HeaderKeywords)
	impact := section(HeaderImpact)

	if found == 0 {
		return nil, fmt.Errorf("%w: no improvement headers in response", ErrMalformedModelResponse)
	}

	return &models.ImprovementBundle{
		PriorityImprovements: FormatBlock(priority),
		ContentEnhancements:  FormatBlock(content),
		FormatOptimizations:  FormatBlock(format),
		KeywordImprovements:  FormatBlock(keywords),
		EstimatedImpact:      impact,
		FullResponse:         raw,
		GeneratedAt:          p.now(),
		Source:               models.BundleSourceModel,
	}, nil
}

// ParseRewrite splits a rewrite response on its bracket markers. The name
// and contact markers must be present and non-empty; no placeholder text is
// ever substituted for them.
func (p *ResponseParser) ParseRewrite(raw string) (*models.ImprovedResumeSections, error) {
	fullName, ok := ExtractBracketSection(raw, TokenFullName)
	if !ok || fullName == "" {
		return nil, fmt.Errorf("%w: [%s]", ErrMissingSection, TokenFullName)
	}
	contact, ok := ExtractBracketSection(raw, TokenContact)
	if !ok || contact == "" {
		return nil, fmt.Errorf("%w: [%s]", ErrMissingSection, TokenContact)
	}

	optional := func(token string) string {
		s, _ := ExtractBracketSection(raw, token)
		return s
	}

	return &models.ImprovedResumeSections{
		FullName:     fullName,
		Contact:      contact,
		Summary:      optional(TokenSummary),
		Experience:   optional(TokenExperience),
		Education:    optional(TokenEducation),
		Skills:       optional(TokenSkills),
		Achievements: optional(TokenAchievements),
	}, nil
}
