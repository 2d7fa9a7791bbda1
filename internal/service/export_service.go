package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sportedu/agenda-api/internal/models"
	appErrors "github.com/sportedu/agenda-api/pkg/errors"
	"github.com/sportedu/agenda-api/pkg/export"
)

// Export formats accepted by the agenda endpoint.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

var agendaColumns = []string{"Date", "Start", "End", "Title", "Location", "Shift"}

type agendaProvider interface {
	Agenda(ctx context.Context, teacherID string, date time.Time) ([]models.Lesson, error)
}

type exportTeacherReader interface {
	Get(ctx context.Context, id string) (*models.Teacher, error)
}

// ExportResult holds a rendered document ready to be served.
type ExportResult struct {
	Data        []byte
	ContentType string
	Filename    string
}

// ExportService renders a teacher's daily agenda as CSV or PDF.
type ExportService struct {
	agendas  agendaProvider
	teachers exportTeacherReader
	csv      *export.CSVExporter
	pdf      *export.PDFExporter
	logger   *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(agendas agendaProvider, teachers exportTeacherReader, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		agendas:  agendas,
		teachers: teachers,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		logger:   logger,
	}
}

// AgendaExport renders the agenda of one teacher for one calendar date.
func (s *ExportService) AgendaExport(ctx context.Context, teacherID string, date time.Time, format string) (*ExportResult, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = ExportFormatCSV
	}
	if format != ExportFormatCSV && format != ExportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}

	teacher, err := s.teachers.Get(ctx, teacherID)
	if err != nil {
		return nil, err
	}

	lessons, err := s.agendas.Agenda(ctx, teacherID, date)
	if err != nil {
		return nil, err
	}

	table := export.Table{Columns: agendaColumns, Rows: make([][]string, 0, len(lessons))}
	for i := range lessons {
		lesson := &lessons[i]
		table.Rows = append(table.Rows, []string{
			lesson.Date.Format(models.DateLayout),
			lesson.StartTime,
			lesson.EndTime(),
			lesson.Title,
			lesson.Location,
			lesson.Shift(),
		})
	}

	day := date.Format(models.DateLayout)
	filename := fmt.Sprintf("agenda-%s-%s.%s", teacherID, day, format)

	var data []byte
	var contentType string
	switch format {
	case ExportFormatPDF:
		title := fmt.Sprintf("Agenda - %s - %s", teacher.FullName, day)
		data, err = s.pdf.Render(table, title)
		contentType = "application/pdf"
	default:
		data, err = s.csv.Render(table)
		contentType = "text/csv"
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not render agenda export")
	}

	s.logger.Info("agenda exported",
		zap.String("teacher_id", teacherID),
		zap.String("date", day),
		zap.String("format", format),
		zap.Int("lessons", len(lessons)))
	return &ExportResult{Data: data, ContentType: contentType, Filename: filename}, nil
}
