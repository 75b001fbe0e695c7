package models

import (
	"encoding/json"
	"time"
)

// AnalysisResult is the structured view of a model analysis response.
// Text fields are empty when the model omitted them and scores are nil
// when no number followed the label.
type AnalysisResult struct {
	OverallScore     *int      `json:"overallScore"`
	Strengths        string    `json:"strengths"`
	Weaknesses       string    `json:"weaknesses"`
	Suggestions      string    `json:"suggestions"`
	Keywords         string    `json:"keywords"`
	Formatting       string    `json:"formatting"`
	ATSScore         *int      `json:"atsScore"`
	JobMatch         string    `json:"jobMatch,omitempty"`
	MissingSkills    string    `json:"missingSkills,omitempty"`
	Customization    string    `json:"customization,omitempty"`
	RawAnalysis      string    `json:"rawAnalysis"`
	AnalyzedAt       time.Time `json:"analyzedAt"`
	HasJobComparison bool      `json:"hasJobComparison"`
}

// MarshalJSON always writes the job comparison fields, empty or not, when a
// job description was supplied, and leaves them out otherwise.
func (r AnalysisResult) MarshalJSON() ([]byte, error) {
	type plain AnalysisResult
	out := struct {
		plain
		JobMatch      *string `json:"jobMatch,omitempty"`
		MissingSkills *string `json:"missingSkills,omitempty"`
		Customization *string `json:"customization,omitempty"`
	}{plain: plain(r)}

	if r.HasJobComparison {
		out.JobMatch = &r.JobMatch
		out.MissingSkills = &r.MissingSkills
		out.Customization = &r.Customization
	}
	return json.Marshal(out)
}

type BundleSource string

const (
	BundleSourceModel    BundleSource = "model"
	BundleSourceFallback BundleSource = "fallback"
)

// ImprovementBundle holds AI improvement suggestions. Source tells callers
// whether the content came from the model or from the canned fallback.
type ImprovementBundle struct {
	PriorityImprovements string       `json:"priorityImprovements"`
	ContentEnhancements  string       `json:"contentEnhancements"`
	FormatOptimizations  string       `json:"formatOptimizations"`
	KeywordImprovements  string       `json:"keywordImprovements"`
	EstimatedImpact      string       `json:"estimatedImpact"`
	FullResponse         string       `json:"fullResponse"`
	GeneratedAt          time.Time    `json:"generatedAt"`
	Source               BundleSource `json:"source"`
	FallbackReason       string       `json:"fallbackReason,omitempty"`
}

func (b *ImprovementBundle) IsFallback() bool {
	return b.Source == BundleSourceFallback
}

// ImprovedResumeSections is the rewritten résumé split on its bracket markers.
type ImprovedResumeSections struct {
	FullName     string `json:"nomeCompleto"`
	Contact      string `json:"contato"`
	Summary      string `json:"resumoProfissional"`
	Experience   string `json:"experienciaProfissional"`
	Education    string `json:"formacao"`
	Skills       string `json:"competencias"`
	Achievements string `json:"conquistas"`
}

type Suggestion struct {
	Type       string `json:"type"`
	Priority   string `json:"priority"`
	Suggestion string `json:"suggestion"`
}

type ImpactEstimate struct {
	CurrentScore      int `json:"currentScore"`
	PotentialScore    int `json:"potentialScore"`
	EstimatedIncrease int `json:"estimatedIncrease"`
}

// ImprovementPlan is the rule-based summary derived from an AnalysisResult.
type ImprovementPlan struct {
	Suggestions     []Suggestion   `json:"suggestions"`
	Priority        string         `json:"priority"`
	EstimatedImpact ImpactEstimate `json:"estimatedImpact"`
}
