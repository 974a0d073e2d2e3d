package pipeline

import (
	"fmt"
	"log/slog"

	"certmail/internal"
	"certmail/internal/config"
)

type AssignService struct {
	cfg config.Config
	log *slog.Logger
}

func NewAssignService(cfg config.Config, log *slog.Logger) *AssignService {
	return &AssignService{cfg: cfg, log: log}
}

// Run numbers every participant row and writes the first sheet back over
// the configured workbook.
func (s *AssignService) Run() (internal.JobReport, error) {
	report := newReport()

	wb, err := LoadWorkbook(s.cfg.SheetPath)
	if err != nil {
		return report, err
	}

	wb.AssignSequentialIDs()
	report.Processed = len(wb.Records)

	if err := wb.SaveFirstSheet(s.cfg.SheetPath, s.cfg.AtomicWrite); err != nil {
		return report, fmt.Errorf("rewrite %s: %w", s.cfg.SheetPath, err)
	}
	report.Done = len(wb.Records)

	s.log.Info("sequential ids saved", "run", report.RunID, "sheet", wb.Sheet, "path", s.cfg.SheetPath, "rows", len(wb.Records), "atomic", s.cfg.AtomicWrite)
	return report, nil
}
