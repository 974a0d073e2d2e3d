package connectors

import (
	"context"

	"certmail/internal"
)

// MailSender delivers one encoded message.
type MailSender interface {
	Send(ctx context.Context, msg internal.OutgoingMail) error
}

// Archiver stores a copy of a delivered message, e.g. in a Sent folder.
type Archiver interface {
	Archive(ctx context.Context, msg internal.OutgoingMail) error
}
