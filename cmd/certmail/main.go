package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"certmail/internal"
	"certmail/internal/config"
	"certmail/internal/connectors"
	gmailconnector "certmail/internal/connectors/gmail"
	imapconnector "certmail/internal/connectors/imap"
	smtpconnector "certmail/internal/connectors/smtp"
	"certmail/internal/mailer"
	"certmail/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	log := newLogger(cfg.LogLevel)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cmd := os.Args[1]
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	sheet := fs.String("sheet", cfg.SheetPath, "participant workbook (.xlsx)")
	dir := fs.String("dir", cfg.CertificateDir, "certificate directory")
	reportPath := fs.String("report", "", "write skipped/failed rows to this xlsx")

	switch cmd {
	case "rename":
		strategy := fs.String("strategy", string(pipeline.PairByPosition), "position|match")
		dryRun := fs.Bool("dry-run", false, "log planned renames only")
		_ = fs.Parse(os.Args[2:])
		cfg.SheetPath, cfg.CertificateDir = *sheet, *dir
		st, err := pipeline.ParseRenameStrategy(*strategy)
		must(err)
		report, err := pipeline.NewRenameService(cfg, log, st, *dryRun).Run()
		must(err)
		finish(cmd, report, *reportPath)
		fmt.Printf("rename done run=%s rows=%d renamed=%d skipped=%d failed=%d dry_run=%t\n", report.RunID, report.Processed, report.Done, len(report.Skipped), len(report.Failed), *dryRun)
	case "assign-ids":
		_ = fs.Parse(os.Args[2:])
		cfg.SheetPath = *sheet
		report, err := pipeline.NewAssignService(cfg, log).Run()
		must(err)
		fmt.Printf("sequential ids created rows=%d saved=%s\n", report.Done, cfg.SheetPath)
	case "send":
		provider := fs.String("provider", cfg.MailProvider, "smtp|gmail")
		_ = fs.Parse(os.Args[2:])
		cfg.SheetPath, cfg.CertificateDir = *sheet, *dir
		sender, err := makeSender(cfg, *provider, log)
		must(err)
		composer, err := mailer.NewComposer(cfg)
		must(err)
		report, err := pipeline.NewSendService(cfg, log, sender, composer).Run(ctx)
		finish(cmd, report, *reportPath)
		must(err)
		fmt.Printf("send done run=%s rows=%d sent=%d skipped=%d failed=%d\n", report.RunID, report.Processed, report.Done, len(report.Skipped), len(report.Failed))
	case "check":
		_ = fs.Parse(os.Args[2:])
		cfg.SheetPath, cfg.CertificateDir = *sheet, *dir
		report, err := pipeline.NewCheckService(cfg, log).Run()
		must(err)
		finish(cmd, report, *reportPath)
		fmt.Printf("check done run=%s rows=%d matched=%d skipped=%d\n", report.RunID, report.Processed, report.Done, len(report.Skipped))
	default:
		usage()
		os.Exit(1)
	}
}

func makeSender(cfg config.Config, provider string, log *slog.Logger) (connectors.MailSender, error) {
	var sender connectors.MailSender
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "smtp":
		c, err := smtpconnector.NewConnector(cfg)
		if err != nil {
			return nil, err
		}
		sender = c
	case "gmail":
		c, err := gmailconnector.NewConnector(cfg)
		if err != nil {
			return nil, err
		}
		sender = c
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}

	if !cfg.IMAPArchive {
		return sender, nil
	}
	archiver, err := imapconnector.NewConnector(cfg)
	if err != nil {
		return nil, err
	}
	return connectors.NewArchivingSender(sender, archiver, log), nil
}

func finish(cmd string, report internal.JobReport, reportPath string) {
	if strings.TrimSpace(reportPath) == "" {
		return
	}
	if len(report.Skipped)+len(report.Failed) == 0 {
		return
	}
	must(pipeline.ExportReportToXLSX(cmd, report, reportPath))
	fmt.Printf("report written to %s\n", reportPath)
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func usage() {
	fmt.Println("usage: certmail <command> [--sheet=nd.xlsx] [--dir=./certificates] [--report=out.xlsx]")
	fmt.Println("commands:")
	fmt.Println("  rename --strategy=position|match [--dry-run]")
	fmt.Println("  assign-ids")
	fmt.Println("  send --provider=smtp|gmail")
	fmt.Println("  check")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
