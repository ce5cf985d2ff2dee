package services

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/yungbote/safetywatch-backend/internal/domain"
	"github.com/yungbote/safetywatch-backend/internal/platform/ctxutil"
	"github.com/yungbote/safetywatch-backend/internal/platform/logger"
)

const (
	ExportSheet       = "Observations"
	ExportFilename    = "observations.xlsx"
	ExportContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var exportHeader = []any{"Name", "Department", "Observation", "Fix", "Status", "Date"}

type ExportService interface {
	WriteXLSX(ctx context.Context, w io.Writer) (int, error)
}

type exportService struct {
	log          *logger.Logger
	observations ObservationService
}

func NewExportService(log *logger.Logger, observations ObservationService) ExportService {
	return &exportService{
		log:          log.With("service", "ExportService"),
		observations: observations,
	}
}

// WriteXLSX writes every observation as one row under a fixed header and returns the row count.
// Nothing is written to w when the store read fails.
func (s *exportService) WriteXLSX(ctx context.Context, w io.Writer) (int, error) {
	ctx = ctxutil.Default(ctx)
	rows, err := s.observations.GetAllObservations(ctx)
	if err != nil {
		return 0, err
	}

	f, err := buildWorkbook(rows)
	if err != nil {
		return 0, fmt.Errorf("build workbook: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		s.log.Warn("write workbook failed", append(ctxutil.LogFields(ctx), "error", err)...)
		return 0, fmt.Errorf("write workbook: %w", err)
	}
	s.log.Debug("observations exported", append(ctxutil.LogFields(ctx), "rows", len(rows))...)
	return len(rows), nil
}

func buildWorkbook(rows []*domain.Observation) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), ExportSheet); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.SetSheetRow(ExportSheet, "A1", &exportHeader); err != nil {
		f.Close()
		return nil, err
	}
	line := 2
	for _, o := range rows {
		if o == nil {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, line)
		if err != nil {
			f.Close()
			return nil, err
		}
		values := []any{o.Name, o.Department, o.Description, o.Fix, o.Status, o.Date}
		if err := f.SetSheetRow(ExportSheet, cell, &values); err != nil {
			f.Close()
			return nil, err
		}
		line++
	}
	return f, nil
}
