package services

import (
	"fmt"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"alfredoptarigan/resume-analyzer/internal/models"
)

const (
	summarySheet      = "Summary"
	feedbackSheet     = "Feedback"
	improvementsSheet = "Improvements"
)

// ExportInput is everything a report can contain. Plan and Improvements are optional.
type ExportInput struct {
	Analysis     *models.AnalysisResult
	Plan         *models.ImprovementPlan
	Improvements *models.ImprovementBundle
	GeneratedAt  time.Time
}

// ReportExporter writes an analysis as an xlsx workbook.
type ReportExporter interface {
	Export(input ExportInput) ([]byte, error)
}

type reportExporter struct{}

func NewReportExporter() ReportExporter {
	return &reportExporter{}
}

type reportStyles struct {
	header int
	label  int
	wrap   int
}

// Export implements ReportExporter.
func (e *reportExporter) Export(input ExportInput) ([]byte, error) {
	if input.Analysis == nil {
		return nil, fmt.Errorf("%w: analysis is required", ErrValidationFailed)
	}
	if input.GeneratedAt.IsZero() {
		input.GeneratedAt = time.Now()
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, fmt.Errorf("failed to create summary sheet: %w", err)
	}
	for _, name := range []string{feedbackSheet, improvementsSheet} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("failed to create %s sheet: %w", name, err)
		}
	}

	styles, err := newReportStyles(f)
	if err != nil {
		return nil, fmt.Errorf("failed to create report styles: %w", err)
	}

	writeSummarySheet(f, styles, input)
	writeFeedbackSheet(f, styles, input.Analysis)
	writeImprovementsSheet(f, styles, input)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write report: %w", err)
	}
	return buf.Bytes(), nil
}

// ReportFilename is the attachment name for an exported report.
func ReportFilename(at time.Time) string {
	return fmt.Sprintf("resume_report_%d.xlsx", at.UnixMilli())
}

func newReportStyles(f *excelize.File) (reportStyles, error) {
	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"2C5282"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
	if err != nil {
		return reportStyles{}, err
	}
	label, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return reportStyles{}, err
	}
	wrap, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})
	if err != nil {
		return reportStyles{}, err
	}
	return reportStyles{header: header, label: label, wrap: wrap}, nil
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

func writeTitle(f *excelize.File, sheet string, styles reportStyles, row int, title string) {
	f.SetCellValue(sheet, cell("A", row), title)
	f.SetCellStyle(sheet, cell("A", row), cell("B", row), styles.header)
	f.MergeCell(sheet, cell("A", row), cell("B", row))
}

func writePair(f *excelize.File, sheet string, styles reportStyles, row int, label string, value interface{}) {
	f.SetCellValue(sheet, cell("A", row), label)
	f.SetCellStyle(sheet, cell("A", row), cell("A", row), styles.label)
	f.SetCellValue(sheet, cell("B", row), value)
	f.SetCellStyle(sheet, cell("B", row), cell("B", row), styles.wrap)
}

func scoreCell(score *int, scale int) string {
	if score == nil {
		return "N/A"
	}
	return strconv.Itoa(*score) + "/" + strconv.Itoa(scale)
}

func writeSummarySheet(f *excelize.File, styles reportStyles, input ExportInput) {
	f.SetColWidth(summarySheet, "A", "A", 28)
	f.SetColWidth(summarySheet, "B", "B", 60)

	analysis := input.Analysis
	row := 1
	writeTitle(f, summarySheet, styles, row, "Resume Analysis Report")
	row += 2

	writePair(f, summarySheet, styles, row, "Generated:", input.GeneratedAt.Format("2006-01-02 15:04:05"))
	row++
	writePair(f, summarySheet, styles, row, "Overall Score:", scoreCell(analysis.OverallScore, 100))
	row++
	writePair(f, summarySheet, styles, row, "ATS Compatibility:", scoreCell(analysis.ATSScore, 10))
	row++
	writePair(f, summarySheet, styles, row, "Job Comparison:", strconv.FormatBool(analysis.HasJobComparison))
	row++

	if input.Plan == nil {
		return
	}
	row++
	writeTitle(f, summarySheet, styles, row, "Estimated Impact")
	row++
	writePair(f, summarySheet, styles, row, "Priority:", input.Plan.Priority)
	row++
	writePair(f, summarySheet, styles, row, "Current Score:", input.Plan.EstimatedImpact.CurrentScore)
	row++
	writePair(f, summarySheet, styles, row, "Potential Score:", input.Plan.EstimatedImpact.PotentialScore)
	row++
	writePair(f, summarySheet, styles, row, "Estimated Increase:", input.Plan.EstimatedImpact.EstimatedIncrease)
}

func writeFeedbackSheet(f *excelize.File, styles reportStyles, analysis *models.AnalysisResult) {
	f.SetColWidth(feedbackSheet, "A", "A", 24)
	f.SetColWidth(feedbackSheet, "B", "B", 90)

	fields := []struct{ label, value string }{
		{"Strengths", analysis.Strengths},
		{"Weaknesses", analysis.Weaknesses},
		{"Suggestions", analysis.Suggestions},
		{"Keywords", analysis.Keywords},
		{"Formatting", analysis.Formatting},
	}
	if analysis.HasJobComparison {
		fields = append(fields,
			struct{ label, value string }{"Job Match", analysis.JobMatch},
			struct{ label, value string }{"Missing Skills", analysis.MissingSkills},
			struct{ label, value string }{"Customization", analysis.Customization},
		)
	}

	writeTitle(f, feedbackSheet, styles, 1, "Feedback")
	row := 2
	for _, field := range fields {
		writePair(f, feedbackSheet, styles, row, field.label, field.value)
		row++
	}
}

func writeImprovementsSheet(f *excelize.File, styles reportStyles, input ExportInput) {
	f.SetColWidth(improvementsSheet, "A", "A", 28)
	f.SetColWidth(improvementsSheet, "B", "B", 90)

	row := 1
	writeTitle(f, improvementsSheet, styles, row, "Suggested Improvements")
	row++

	if input.Plan != nil {
		for _, s := range input.Plan.Suggestions {
			writePair(f, improvementsSheet, styles, row, s.Type+" ("+s.Priority+")", s.Suggestion)
			row++
		}
	}

	bundle := input.Improvements
	if bundle == nil {
		return
	}

	row++
	writeTitle(f, improvementsSheet, styles, row, "AI Improvements")
	row++
	for _, field := range []struct{ label, value string }{
		{"Priority Improvements", bundle.PriorityImprovements},
		{"Content Enhancements", bundle.ContentEnhancements},
		{"Format Optimizations", bundle.FormatOptimizations},
		{"Keyword Improvements", bundle.KeywordImprovements},
		{"Estimated Impact", bundle.EstimatedImpact},
		{"Source", string(bundle.Source)},
	} {
		writePair(f, improvementsSheet, styles, row, field.label, field.value)
		row++
	}
}
