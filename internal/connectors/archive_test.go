package connectors

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"certmail/internal"
)

type senderFunc func(context.Context, internal.OutgoingMail) error

func (f senderFunc) Send(ctx context.Context, msg internal.OutgoingMail) error { return f(ctx, msg) }

type archiverFunc func(context.Context, internal.OutgoingMail) error

func (f archiverFunc) Archive(ctx context.Context, msg internal.OutgoingMail) error {
	return f(ctx, msg)
}

func TestArchivingSender(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	archived := 0
	archiver := archiverFunc(func(context.Context, internal.OutgoingMail) error {
		archived++
		return errors.New("mailbox does not exist")
	})

	ok := NewArchivingSender(senderFunc(func(context.Context, internal.OutgoingMail) error { return nil }), archiver, log)
	if err := ok.Send(context.Background(), internal.OutgoingMail{To: "a@x.com"}); err != nil {
		t.Fatalf("archive failure must not fail the send: %v", err)
	}

	failing := NewArchivingSender(senderFunc(func(context.Context, internal.OutgoingMail) error { return errors.New("421") }), archiver, log)
	if err := failing.Send(context.Background(), internal.OutgoingMail{To: "b@x.com"}); err == nil {
		t.Fatal("expected send error")
	}
	if archived != 1 {
		t.Fatalf("archived=%d", archived)
	}
}
