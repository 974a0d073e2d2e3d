package connectors

import (
	"context"
	"log/slog"

	"certmail/internal"
)

// ArchivingSender files a copy of every delivered message with an Archiver.
// Archive failures are logged and never turn a delivered message into a failure.
type ArchivingSender struct {
	sender   MailSender
	archiver Archiver
	log      *slog.Logger
}

func NewArchivingSender(sender MailSender, archiver Archiver, log *slog.Logger) *ArchivingSender {
	return &ArchivingSender{sender: sender, archiver: archiver, log: log}
}

func (s *ArchivingSender) Send(ctx context.Context, msg internal.OutgoingMail) error {
	if err := s.sender.Send(ctx, msg); err != nil {
		return err
	}
	if err := s.archiver.Archive(ctx, msg); err != nil {
		s.log.Warn("archive copy failed", "to", msg.To, "err", err)
	}
	return nil
}
