package pipeline

import (
	"log/slog"
	"path/filepath"
	"strings"

	"certmail/internal"
	"certmail/internal/config"
	"certmail/internal/util"
)

// CheckService runs the send job's row validation and matching without
// sending anything, so a batch can be reviewed before it goes out.
type CheckService struct {
	cfg     config.Config
	log     *slog.Logger
	pdfText func(path string) (string, error)
}

func NewCheckService(cfg config.Config, log *slog.Logger) *CheckService {
	return &CheckService{cfg: cfg, log: log, pdfText: PDFText}
}

func (s *CheckService) Run() (internal.JobReport, error) {
	wb, err := LoadWorkbook(s.cfg.SheetPath)
	if err != nil {
		return newReport(), err
	}
	files, err := ListCertificates(s.cfg.CertificateDir)
	if err != nil {
		return newReport(), err
	}
	return s.Process(wb.Records, files), nil
}

func (s *CheckService) Process(records []internal.ParticipantRecord, files []string) internal.JobReport {
	report := newReport()
	used := map[string]int{}

	for i, rec := range records {
		report.Processed++
		rowNo := rowNumber(i)

		id := rec.Field(internal.HeaderID)
		name := rec.Field(internal.NameHeaders...)
		email := rec.Field(internal.MailHeaders...)

		if name == "" && id == "" {
			s.log.Error("no ID or name provided for record", "row", rowNo)
			report.Skip(internal.RowOutcome{RowNo: rowNo, Reason: internal.SkipNoIdentity})
			continue
		}
		if email == "" {
			s.log.Warn("email is empty", "row", rowNo, "name", name)
			report.Skip(internal.RowOutcome{RowNo: rowNo, Name: name, Reason: internal.SkipNoEmail})
			continue
		}

		file, ok := FindMatchingFile(files, id, name)
		if !ok {
			s.log.Error("certificate file not found", "row", rowNo, "name", name, "id", id)
			report.Skip(internal.RowOutcome{RowNo: rowNo, Name: name, Reason: internal.SkipNoCertificate})
			continue
		}
		if prev, dup := used[file]; dup {
			s.log.Warn("certificate already matched by another row", "row", rowNo, "file", file, "firstRow", prev)
		} else {
			used[file] = rowNo
		}

		attrs := []any{"row", rowNo, "name", name, "to", email, "file", file}
		text, err := s.pdfText(filepath.Join(s.cfg.CertificateDir, file))
		if err != nil {
			s.log.Warn("certificate text unreadable", append(attrs, "err", err)...)
		} else if strings.TrimSpace(text) != "" {
			attrs = append(attrs, "nameInPDF", strings.Contains(util.NormalizeName(text), util.NormalizeName(name)))
			s.log.Info("certificate matched", attrs...)
		} else {
			s.log.Info("certificate matched", attrs...)
		}
		report.Done++
	}

	return report
}
