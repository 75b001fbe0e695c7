package services

import (
	"fmt"
	"strings"
	"time"

	"alfredoptarigan/resume-analyzer/internal/models"
)

type cannedBundle struct {
	priority    string
	content     string
	format      string
	keywords    string
	impact      string
	fullSummary string
}

var cannedBundles = map[string]cannedBundle{
	"pt-BR": {
		priority:    "• Adicionar mais detalhes quantificáveis nas experiências\n• Melhorar formatação visual para maior legibilidade\n• Incluir palavras-chave específicas da sua área",
		content:     "• Expandir descrições de responsabilidades com resultados\n• Adicionar métricas e números sempre que possível\n• Incluir projetos e conquistas relevantes",
		format:      "• Usar formatação consistente em todas as seções\n• Melhorar espaçamento entre elementos\n• Organizar seções em ordem lógica de importância",
		keywords:    "• Adicionar termos técnicos específicos da área\n• Incluir habilidades em alta demanda no mercado\n• Otimizar conteúdo para sistemas ATS",
		impact:      "Potencial aumento de 15-20 pontos na pontuação atual (%s)\nMudança mais impactante: quantificar resultados e conquistas\nTempo estimado para implementar: 2-3 horas",
		fullSummary: "Melhorias sugeridas para currículo com score atual de %s/100",
	},
	"en": {
		priority:    "• Add more quantifiable detail to each experience\n• Improve visual formatting for readability\n• Include keywords specific to your field",
		content:     "• Expand responsibility descriptions with outcomes\n• Add metrics and numbers wherever possible\n• Include relevant projects and achievements",
		format:      "• Use consistent formatting across all sections\n• Improve spacing between elements\n• Order sections by importance",
		keywords:    "• Add technical terms specific to your field\n• Include in-demand skills\n• Optimize content for ATS systems",
		impact:      "Potential increase of 15-20 points over the current score (%s)\nMost impactful change: quantify results and achievements\nEstimated time to implement: 2-3 hours",
		fullSummary: "Suggested improvements for a resume with a current score of %s/100",
	},
}

// FallbackBundle returns the canned improvement bundle for locale, marked as
// a fallback with reason. Unknown locales use pt-BR.
func FallbackBundle(locale string, analysis *models.AnalysisResult, reason string, now time.Time) *models.ImprovementBundle {
	canned, ok := cannedBundles[locale]
	if !ok {
		canned, ok = cannedBundles[strings.ToLower(strings.SplitN(locale, "-", 2)[0])]
	}
	if !ok {
		canned = cannedBundles["pt-BR"]
	}

	score := "N/A"
	if analysis != nil {
		score = scoreOrNA(analysis.OverallScore)
	}

	return &models.ImprovementBundle{
		PriorityImprovements: canned.priority,
		ContentEnhancements:  canned.content,
		FormatOptimizations:  canned.format,
		KeywordImprovements:  canned.keywords,
		EstimatedImpact:      fmt.Sprintf(canned.impact, score),
		FullResponse:         fmt.Sprintf(canned.fullSummary, score),
		GeneratedAt:          now,
		Source:               models.BundleSourceFallback,
		FallbackReason:       reason,
	}
}
