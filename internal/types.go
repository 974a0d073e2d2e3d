package internal

import "strings"

// ParticipantRecord is one spreadsheet row keyed by trimmed header.
type ParticipantRecord map[string]string

// Field returns the first non-empty trimmed value among keys.
func (r ParticipantRecord) Field(keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(r[k]); v != "" {
			return v
		}
	}
	return ""
}

const (
	HeaderID   = "ID"
	HeaderName = "Name"
	HeaderMail = "Mail"
)

var (
	NameHeaders = []string{HeaderName, "Name "}
	MailHeaders = []string{HeaderMail, "Email", "E-mail"}
)

type SkipReason string

const (
	SkipNoName        SkipReason = "NO_NAME"
	SkipNoIdentity    SkipReason = "NO_ID_OR_NAME"
	SkipNoEmail       SkipReason = "NO_EMAIL"
	SkipNoCertificate SkipReason = "NO_CERTIFICATE"
	SkipNoFileAtIndex SkipReason = "NO_FILE_AT_INDEX"
	SkipNoNumber      SkipReason = "NO_NUMBER_IN_FILENAME"
	SkipTargetExists  SkipReason = "TARGET_EXISTS"
	SkipInvalidPDF    SkipReason = "INVALID_PDF"
	SkipSendFailed    SkipReason = "SEND_FAILED"
	SkipRenameFailed  SkipReason = "RENAME_FAILED"
)

type RowOutcome struct {
	RowNo  int
	Name   string
	File   string
	Reason SkipReason
	Detail string
}

// JobReport summarizes one batch run. Done counts rows whose effect was applied
// (file renamed, id written, mail sent).
type JobReport struct {
	RunID     string
	Processed int
	Done      int
	Skipped   []RowOutcome
	Failed    []RowOutcome
}

func (r *JobReport) Skip(o RowOutcome) {
	r.Skipped = append(r.Skipped, o)
}

func (r *JobReport) Fail(o RowOutcome) {
	r.Failed = append(r.Failed, o)
}

type OutgoingMail struct {
	From    string
	To      string
	Subject string
	Raw     []byte
}
