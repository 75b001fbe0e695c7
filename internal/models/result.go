package models

import (
	"encoding/json"
	"time"
)

// APIResponse is the envelope every endpoint answers with.
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

type AnalyzeTextRequest struct {
	ResumeText     string `json:"resumeText"`
	JobDescription string `json:"jobDescription"`
}

type GenerateImprovementsRequest struct {
	AnalysisData    json.RawMessage `json:"analysisData"`
	ResumeText      string          `json:"resumeText"`
	ImprovementType string          `json:"improvementType"`
}

type GenerateImprovedPDFRequest struct {
	AnalysisData json.RawMessage `json:"analysisData"`
	ResumeText   string          `json:"resumeText"`
}

type ExportReportRequest struct {
	AnalysisData json.RawMessage    `json:"analysisData"`
	Improvements *ImprovementBundle `json:"improvements,omitempty"`
}

type AnalysisMetadata struct {
	AnalyzedAt       time.Time `json:"analyzedAt"`
	HasJobComparison bool      `json:"hasJobComparison"`
	TextLength       int       `json:"textLength"`
	WordCount        int       `json:"wordCount"`
	ResumeText       string    `json:"resumeText"`
}

type AnalysisResponse struct {
	File           *StoredFile        `json:"file,omitempty"`
	Analysis       *AnalysisResult    `json:"analysis"`
	Improvements   *ImprovementPlan   `json:"improvements"`
	AIImprovements *ImprovementBundle `json:"aiImprovements,omitempty"`
	Metadata       AnalysisMetadata   `json:"metadata"`
}

type UploadResponse struct {
	ID   string      `json:"id"`
	File *StoredFile `json:"file"`
}

type ImprovementsResponse struct {
	Improvements *ImprovementBundle `json:"improvements"`
	Plan         *ImprovementPlan   `json:"plan"`
}
