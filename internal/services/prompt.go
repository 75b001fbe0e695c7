package services

import (
	"fmt"
	"strconv"
	"strings"

	"alfredoptarigan/resume-analyzer/internal/models"
)

// MinResumeChars is the shortest trimmed text an analysis prompt is built for.
const MinResumeChars = 50

const analysisSystemPrompt = "You are an expert HR professional and resume analyzer. You MUST analyze ONLY the specific resume text provided below. Do NOT use any example or template resumes. Provide detailed, constructive feedback based EXCLUSIVELY on the actual resume content provided."

const improvementSystemPrompt = "You are an expert resume consultant and career advisor. Based on the resume analysis provided, generate specific, actionable improvements that the candidate can implement immediately. Focus on concrete suggestions that will directly improve the resume's effectiveness."

// Section labels shared by the prompts and the response parser.
const (
	LabelOverallScore  = "OVERALL SCORE"
	LabelStrengths     = "STRENGTHS"
	LabelWeaknesses    = "WEAKNESSES"
	LabelSuggestions   = "SUGGESTIONS"
	LabelKeywords      = "KEYWORDS"
	LabelFormatting    = "FORMATTING"
	LabelATS           = "ATS"
	LabelJobMatch      = "JOB MATCH"
	LabelMissingSkills = "MISSING SKILLS"
	LabelCustomization = "CUSTOMIZATION SUGGESTIONS"

	HeaderPriority = "PRIORITY IMPROVEMENTS"
	HeaderContent  = "CONTENT ENHANCEMENTS"
	HeaderFormat   = "FORMAT & STRUCTURE OPTIMIZATIONS"
	HeaderKeywords = "KEYWORD & ATS IMPROVEMENTS"
	HeaderImpact   = "ESTIMATED IMPACT"

	TokenFullName     = "NOME_COMPLETO"
	TokenContact      = "CONTATO"
	TokenSummary      = "RESUMO_PROFISSIONAL"
	TokenExperience   = "EXPERIENCIA_PROFISSIONAL"
	TokenEducation    = "FORMACAO"
	TokenSkills       = "COMPETENCIAS"
	TokenAchievements = "CONQUISTAS"
)

type ImprovementCategory string

const (
	CategoryStructure  ImprovementCategory = "structure"
	CategoryContent    ImprovementCategory = "content"
	CategoryKeywords   ImprovementCategory = "keywords"
	CategoryATS        ImprovementCategory = "ats"
	CategoryFormatting ImprovementCategory = "formatting"
	CategoryGeneral    ImprovementCategory = "general"
)

var categoryFocus = map[ImprovementCategory]string{
	CategoryStructure:  "Focus on structural improvements: formatting, organization, section ordering, and layout optimization.",
	CategoryContent:    "Focus on content improvements: strengthening descriptions, adding quantifiable achievements, improving language and tone.",
	CategoryKeywords:   "Focus on keyword optimization: industry-specific terms, skill keywords, and ATS-friendly language.",
	CategoryATS:        "Focus on ATS optimization: formatting compatibility, keyword density, and parsing-friendly structure.",
	CategoryFormatting: "Focus on visual formatting: readability, professional appearance, and design elements.",
	CategoryGeneral:    "Provide comprehensive improvements across all areas: structure, content, keywords, and formatting.",
}

// ParseImprovementCategory normalizes a user supplied category. Unknown or
// empty values become CategoryGeneral.
func ParseImprovementCategory(s string) ImprovementCategory {
	c := ImprovementCategory(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := categoryFocus[c]; ok {
		return c
	}
	return CategoryGeneral
}

// Focus returns the instruction sentence injected for the category.
func (c ImprovementCategory) Focus() string {
	if focus, ok := categoryFocus[c]; ok {
		return focus
	}
	return categoryFocus[CategoryGeneral]
}

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildAnalysisPrompt creates the numbered-section analysis prompt. The
// numbering matters: the parser ends a section at the next "<n>." token.
func (pb *PromptBuilder) BuildAnalysisPrompt(resumeText, jobDescription string) (string, error) {
	if len(strings.TrimSpace(resumeText)) < MinResumeChars {
		return "", ErrTextTooShort
	}

	var b strings.Builder
	b.WriteString(analysisSystemPrompt)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, `IMPORTANT: You must analyze ONLY the following specific resume text. Do NOT use any example resumes, templates, or generic responses.

ACTUAL RESUME TEXT TO ANALYZE:
%s

Based EXCLUSIVELY on the above resume content, provide a comprehensive evaluation in this structured format:

1. %s: Rate from 1-100 based on the actual content above
2. %s: List 3-5 key strengths found in this specific resume
3. %s: List 3-5 areas for improvement in this specific resume
4. %s: Provide specific actionable recommendations for this resume
5. %s: List relevant industry keywords found/missing in this resume
6. %s: Comment on this resume's structure and presentation
7. %s COMPATIBILITY: Rate how well this specific resume would pass ATS systems (1-10)`,
		resumeText,
		LabelOverallScore, LabelStrengths, LabelWeaknesses, LabelSuggestions,
		LabelKeywords, LabelFormatting, LabelATS)

	if strings.TrimSpace(jobDescription) != "" {
		fmt.Fprintf(&b, `

JOB DESCRIPTION FOR COMPARISON:
%s

8. %s: Rate how well this specific resume matches the job (1-100) and explain
9. %s: What skills from the job description are missing from this resume
10. %s: How to better tailor this specific resume for this job`,
			jobDescription, LabelJobMatch, LabelMissingSkills, LabelCustomization)
	}

	return b.String(), nil
}

// BuildImprovementPrompt creates the bold-header improvement prompt.
func (pb *PromptBuilder) BuildImprovementPrompt(analysis *models.AnalysisResult, resumeText string, category ImprovementCategory) string {
	if analysis == nil {
		analysis = &models.AnalysisResult{}
	}

	return fmt.Sprintf(`%s

RESUME TO IMPROVE:
%s

CURRENT ANALYSIS DATA:
Overall Score: %s/100
Strengths: %s
Areas for Improvement: %s
ATS Compatibility: %s/10

IMPROVEMENT INSTRUCTIONS:
%s

Please provide specific, actionable improvement suggestions in the following format:

**%s** (Most impactful changes)
1. [Specific improvement with clear action]
2. [Specific improvement with clear action]
3. [Specific improvement with clear action]

**%s**
• [Specific content improvement]
• [Specific content improvement]
• [Specific content improvement]

**%s**
• [Specific formatting improvement]
• [Specific formatting improvement]
• [Specific formatting improvement]

**%s**
• [Specific keyword/ATS improvement]
• [Specific keyword/ATS improvement]

**%s**
Potential score increase: [X-Y points]
Most impactful change: [Specific improvement]
Time to implement: [Estimated time]

Provide concrete, specific suggestions that the candidate can act on immediately. Avoid generic advice.`,
		improvementSystemPrompt,
		resumeText,
		scoreOrNA(analysis.OverallScore),
		textOr(analysis.Strengths, "Not available"),
		textOr(analysis.Weaknesses, "Not available"),
		scoreOrNA(analysis.ATSScore),
		category.Focus(),
		HeaderPriority, HeaderContent, HeaderFormat, HeaderKeywords, HeaderImpact,
	)
}

// BuildRewritePrompt creates the bracket-token rewrite prompt. The prompt
// forbids inventing data that is not in the original résumé.
func (pb *PromptBuilder) BuildRewritePrompt(analysis *models.AnalysisResult, resumeText string) string {
	if analysis == nil {
		analysis = &models.AnalysisResult{}
	}

	currentScore := "não informado"
	if analysis.OverallScore != nil {
		currentScore = strconv.Itoa(*analysis.OverallScore)
	}

	return fmt.Sprintf(`Você é um especialista em recursos humanos com 15 anos de experiência. Sua tarefa é reescrever completamente o currículo abaixo para torná-lo mais profissional, impactante e otimizado para ATS.

CURRÍCULO ORIGINAL:
%s

ANÁLISE ATUAL:
- Score: %s/100
- Pontos fracos identificados: %s

INSTRUÇÕES:
1. Reescreva o currículo de forma profissional e impactante
2. Mantenha APENAS as informações reais que você conseguir extrair do texto original
3. Melhore a linguagem tornando-a mais objetiva e orientada a resultados
4. Adicione verbos de ação e quantifique conquistas quando possível
5. Organize as informações de forma lógica e ATS-friendly

FORMATO DE RESPOSTA OBRIGATÓRIO:
[%s]
Nome completo da pessoa (se mencionado no original)

[%s]
Informações de contato encontradas no original

[%s]
Um resumo profissional impactante baseado na experiência real da pessoa (2-3 linhas)

[%s]
Para cada experiência encontrada no original:
• Cargo | Empresa | Período
• Conquista/responsabilidade com números/resultados
• Conquista/responsabilidade com números/resultados

[%s]
• Curso | Instituição | Ano (se mencionado)
• Certificações relevantes (se mencionadas)

[%s]
Habilidades técnicas e comportamentais identificadas no texto original

[%s]
Principais realizações e resultados mensuráveis (baseados no conteúdo original)

IMPORTANTE: Use APENAS informações que conseguir extrair do currículo original. Não invente dados!`,
		resumeText,
		currentScore,
		textOr(analysis.Weaknesses, "formatação e estrutura"),
		TokenFullName, TokenContact, TokenSummary, TokenExperience,
		TokenEducation, TokenSkills, TokenAchievements,
	)
}

func scoreOrNA(score *int) string {
	if score == nil {
		return "N/A"
	}
	return strconv.Itoa(*score)
}

func textOr(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
