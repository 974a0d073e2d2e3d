package pipeline

import (
	"context"
	"log/slog"
	"path/filepath"

	"certmail/internal"
	"certmail/internal/config"
	"certmail/internal/connectors"
)

// Composer turns a participant into an encoded message with the certificate attached.
type Composer interface {
	Compose(to, name, attachmentPath string) (internal.OutgoingMail, error)
}

type SendService struct {
	cfg      config.Config
	log      *slog.Logger
	sender   connectors.MailSender
	composer Composer
	throttle *Throttle
	checkPDF func(path string) error
}

func NewSendService(cfg config.Config, log *slog.Logger, sender connectors.MailSender, composer Composer) *SendService {
	return &SendService{
		cfg:      cfg,
		log:      log,
		sender:   sender,
		composer: composer,
		throttle: NewThrottle(SendDelay),
		checkPDF: CheckPDF,
	}
}

func (s *SendService) Run(ctx context.Context) (internal.JobReport, error) {
	wb, err := LoadWorkbook(s.cfg.SheetPath)
	if err != nil {
		return newReport(), err
	}
	files, err := ListCertificates(s.cfg.CertificateDir)
	if err != nil {
		return newReport(), err
	}
	return s.Process(ctx, wb.Records, files)
}

// Process mails every valid record its certificate. Rows that cannot be sent
// are logged and skipped; a failed send is counted and the batch goes on.
// Only cancellation of ctx stops the loop early.
func (s *SendService) Process(ctx context.Context, records []internal.ParticipantRecord, files []string) (internal.JobReport, error) {
	report := newReport()
	s.log.Info("sending certificates", "run", report.RunID, "rows", len(records), "files", len(files))

	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return report, err
		}
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
			s.log.Warn("email is empty, skipping entry", "row", rowNo, "name", name)
			report.Skip(internal.RowOutcome{RowNo: rowNo, Name: name, Reason: internal.SkipNoEmail})
			continue
		}

		s.log.Info("processing certificate", "row", rowNo, "name", name)
		file, ok := FindMatchingFile(files, id, name)
		if !ok {
			s.log.Error("certificate file not found", "row", rowNo, "name", name, "id", id)
			report.Skip(internal.RowOutcome{RowNo: rowNo, Name: name, Reason: internal.SkipNoCertificate})
			continue
		}

		path := filepath.Join(s.cfg.CertificateDir, file)
		if s.cfg.VerifyPDF {
			if err := s.checkPDF(path); err != nil {
				s.log.Error("certificate is not a readable pdf", "row", rowNo, "name", name, "file", file, "err", err)
				report.Skip(internal.RowOutcome{RowNo: rowNo, Name: name, File: file, Reason: internal.SkipInvalidPDF, Detail: err.Error()})
				continue
			}
		}

		msg, err := s.composer.Compose(email, name, path)
		if err != nil {
			s.log.Error("error composing certificate mail", "row", rowNo, "name", name, "err", err)
			report.Fail(internal.RowOutcome{RowNo: rowNo, Name: name, File: file, Reason: internal.SkipSendFailed, Detail: err.Error()})
			continue
		}

		if err := s.sender.Send(ctx, msg); err != nil {
			s.log.Error("error sending certificate", "row", rowNo, "name", name, "to", email, "err", err)
			report.Fail(internal.RowOutcome{RowNo: rowNo, Name: name, File: file, Reason: internal.SkipSendFailed, Detail: err.Error()})
		} else {
			s.log.Info("email sent", "row", rowNo, "to", email, "file", file)
			report.Done++
		}

		if err := s.throttle.Wait(ctx); err != nil {
			return report, err
		}
	}

	return report, nil
}
