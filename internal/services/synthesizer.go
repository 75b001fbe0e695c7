package services

import (
	"strings"

	"alfredoptarigan/resume-analyzer/internal/models"
)

const (
	PriorityUrgent = "urgent"
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"

	maxImpactIncrease = 25
)

// ImprovementSynthesizer derives rule-based suggestions from an analysis
// without calling the model. Missing scores count as zero.
type ImprovementSynthesizer struct{}

func NewImprovementSynthesizer() *ImprovementSynthesizer {
	return &ImprovementSynthesizer{}
}

func (s *ImprovementSynthesizer) Synthesize(analysis *models.AnalysisResult) *models.ImprovementPlan {
	if analysis == nil {
		analysis = &models.AnalysisResult{}
	}

	score := scoreValue(analysis.OverallScore)
	ats := scoreValue(analysis.ATSScore)

	suggestions := []models.Suggestion{}
	if score < 70 {
		suggestions = append(suggestions, models.Suggestion{
			Type:       "structure",
			Priority:   PriorityHigh,
			Suggestion: "Consider restructuring your resume to better highlight key achievements",
		})
	}
	if ats < 7 {
		suggestions = append(suggestions, models.Suggestion{
			Type:       "ats",
			Priority:   PriorityHigh,
			Suggestion: "Optimize for ATS systems by using standard section headers and keywords",
		})
	}
	if strings.Contains(strings.ToLower(analysis.Keywords), "missing") {
		suggestions = append(suggestions, models.Suggestion{
			Type:       "keywords",
			Priority:   PriorityMedium,
			Suggestion: "Add relevant industry keywords to improve discoverability",
		})
	}

	return &models.ImprovementPlan{
		Suggestions:     suggestions,
		Priority:        improvementPriority(score, ats),
		EstimatedImpact: estimateImpact(score),
	}
}

func improvementPriority(score, ats int) string {
	switch {
	case score < 50 || ats < 5:
		return PriorityUrgent
	case score < 70 || ats < 7:
		return PriorityHigh
	case score < 85 || ats < 9:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

func estimateImpact(current int) models.ImpactEstimate {
	increase := 100 - current
	if increase > maxImpactIncrease {
		increase = maxImpactIncrease
	}
	if increase < 0 {
		increase = 0
	}
	return models.ImpactEstimate{
		CurrentScore:      current,
		PotentialScore:    current + increase,
		EstimatedIncrease: increase,
	}
}

func scoreValue(score *int) int {
	if score == nil {
		return 0
	}
	return *score
}
