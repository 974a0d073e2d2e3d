package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	SheetPath      string
	CertificateDir string
	AtomicWrite    bool
	VerifyPDF      bool
	LogLevel       string

	MailProvider string
	MailFrom     string
	MailFromName string
	MailSubject  string
	EventName    string
	OrgName      string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string

	GmailClientID     string
	GmailClientSecret string
	GmailRedirectURI  string
	GmailRefreshToken string

	IMAPArchive    bool
	IMAPHost       string
	IMAPPort       int
	IMAPSecure     bool
	IMAPUser       string
	IMAPPassword   string
	IMAPSentFolder string
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		SheetPath:      getEnv("SHEET_PATH", "nd.xlsx"),
		CertificateDir: getEnv("CERT_DIR", "./certificates"),
		AtomicWrite:    getEnvBool("SHEET_ATOMIC_WRITE", true),
		VerifyPDF:      getEnvBool("CERT_VERIFY_PDF", false),
		LogLevel:       getEnv("LOG_LEVEL", "info"),

		MailProvider: getEnv("MAIL_PROVIDER", "smtp"),
		MailFrom:     getEnv("MAIL_FROM", ""),
		MailFromName: getEnv("MAIL_FROM_NAME", ""),
		MailSubject:  getEnv("MAIL_SUBJECT", "Congratulations on Participating"),
		EventName:    getEnv("EVENT_NAME", "Event"),
		OrgName:      getEnv("ORG_NAME", "your-organization"),

		SMTPHost:     getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),

		GmailClientID:     getEnv("GMAIL_CLIENT_ID", ""),
		GmailClientSecret: getEnv("GMAIL_CLIENT_SECRET", ""),
		GmailRedirectURI:  getEnv("GMAIL_REDIRECT_URI", "https://developers.google.com/oauthplayground"),
		GmailRefreshToken: getEnv("GMAIL_REFRESH_TOKEN", ""),

		IMAPArchive:    getEnvBool("IMAP_ARCHIVE", false),
		IMAPHost:       getEnv("IMAP_HOST", ""),
		IMAPPort:       getEnvInt("IMAP_PORT", 993),
		IMAPSecure:     getEnvBool("IMAP_SECURE", true),
		IMAPUser:       getEnv("IMAP_USER", ""),
		IMAPPassword:   getEnv("IMAP_PASSWORD", ""),
		IMAPSentFolder: getEnv("IMAP_SENT_FOLDER", "Sent"),
	}

	// MAIL_FROM falls back to the SMTP login, which is what Gmail expects anyway.
	if strings.TrimSpace(cfg.MailFrom) == "" {
		cfg.MailFrom = cfg.SMTPUser
	}

	return cfg, nil
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required env var: %s", name)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(key, "")))
	if value == "" {
		return fallback
	}
	if value == "1" || value == "true" || value == "yes" || value == "on" {
		return true
	}
	if value == "0" || value == "false" || value == "no" || value == "off" {
		return false
	}
	return fallback
}
