package services

import (
	"log"
	"strings"
)

// DefaultMinWords is the smallest word count accepted as a résumé.
const DefaultMinWords = 20

var resumeKeywords = []string{
	// English
	"experience",
	"education",
	"skills",
	"work",
	"employment",
	"university",
	"college",
	"degree",
	"certification",
	"project",
	"resume",
	"cv",
	"curriculum",

	// Portuguese, accented and unaccented
	"experiência",
	"experiencia",
	"educação",
	"educacao",
	"formação",
	"formacao",
	"habilidades",
	"competências",
	"competencias",
	"trabalho",
	"emprego",
	"universidade",
	"faculdade",
	"graduação",
	"graduacao",
	"certificação",
	"certificacao",
	"projeto",
	"currículo",
	"curriculo",
	"profissional",
	"carreira",
	"conhecimentos",
	"qualificações",
	"qualificacoes",
}

// ValidationVerdict explains why a text was accepted or rejected.
type ValidationVerdict struct {
	Valid           bool
	WordCount       int
	MatchedKeywords []string
}

type ResumeValidator interface {
	Validate(text string) bool
	Inspect(text string) ValidationVerdict
}

type resumeValidator struct {
	minWords int
}

func NewResumeValidator(minWords int) ResumeValidator {
	if minWords <= 0 {
		minWords = DefaultMinWords
	}
	return &resumeValidator{minWords: minWords}
}

// Validate implements ResumeValidator.
func (v *resumeValidator) Validate(text string) bool {
	return v.Inspect(text).Valid
}

// Inspect implements ResumeValidator.
func (v *resumeValidator) Inspect(text string) (verdict ValidationVerdict) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("❌ Resume validation error: %v\n", r)
			verdict = ValidationVerdict{}
		}
	}()

	if strings.TrimSpace(text) == "" {
		log.Println("❌ Invalid text provided for validation")
		return ValidationVerdict{}
	}

	verdict.WordCount = CountWords(text)
	if verdict.WordCount < v.minWords {
		log.Printf("❌ Text too short: %d words\n", verdict.WordCount)
		return verdict
	}

	textLower := strings.ToLower(text)
	for _, keyword := range resumeKeywords {
		if strings.Contains(textLower, keyword) {
			verdict.MatchedKeywords = append(verdict.MatchedKeywords, keyword)
		}
	}

	if len(verdict.MatchedKeywords) == 0 {
		log.Println("❌ No resume keywords found in text")
		return verdict
	}

	log.Printf("✅ Resume validation successful (%d words, keywords: %s)\n",
		verdict.WordCount, strings.Join(verdict.MatchedKeywords, ", "))
	verdict.Valid = true
	return verdict
}

// CountWords counts whitespace separated tokens.
func CountWords(text string) int {
	return len(strings.Fields(text))
}
