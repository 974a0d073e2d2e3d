// Package mailer renders the certificate message and encodes it as MIME.
package mailer

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/jhillyerd/enmime"

	"certmail/internal"
	"certmail/internal/config"
)

//go:embed templates/certificate.html
var templateFS embed.FS

var reSpaces = regexp.MustCompile(`[ \t]+`)

type Composer struct {
	fromName string
	fromAddr string
	subject  string
	event    string
	org      string
	tmpl     *template.Template
	now      func() time.Time
}

type bodyData struct {
	Name  string
	Event string
	Org   string
	Year  int
}

func NewComposer(cfg config.Config) (*Composer, error) {
	if err := cfg.Require("MAIL_FROM", cfg.MailFrom); err != nil {
		return nil, err
	}
	tmpl, err := template.ParseFS(templateFS, "templates/certificate.html")
	if err != nil {
		return nil, err
	}
	return &Composer{
		fromName: cfg.MailFromName,
		fromAddr: cfg.MailFrom,
		subject:  cfg.MailSubject,
		event:    cfg.EventName,
		org:      cfg.OrgName,
		tmpl:     tmpl,
		now:      time.Now,
	}, nil
}

// Compose builds the message for one participant with attachmentPath attached.
func (c *Composer) Compose(to, name, attachmentPath string) (internal.OutgoingMail, error) {
	now := c.now()
	html, err := c.renderHTML(name, now)
	if err != nil {
		return internal.OutgoingMail{}, err
	}

	part, err := enmime.Builder().
		From(c.fromName, c.fromAddr).
		To(name, to).
		Subject(c.subject).
		Date(now).
		Text([]byte(htmlToText(html))).
		HTML([]byte(html)).
		AddFileAttachment(attachmentPath).
		Build()
	if err != nil {
		return internal.OutgoingMail{}, fmt.Errorf("build message for %s: %w", to, err)
	}

	var buf bytes.Buffer
	if err := part.Encode(&buf); err != nil {
		return internal.OutgoingMail{}, fmt.Errorf("encode message for %s: %w", to, err)
	}

	return internal.OutgoingMail{From: c.fromAddr, To: to, Subject: c.subject, Raw: buf.Bytes()}, nil
}

func (c *Composer) renderHTML(name string, now time.Time) (string, error) {
	var buf bytes.Buffer
	data := bodyData{Name: name, Event: c.event, Org: c.org, Year: now.Year()}
	if err := c.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render body: %w", err)
	}
	return buf.String(), nil
}

// htmlToText keeps one paragraph per <p>, with <br> as a line break.
func htmlToText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	paragraphs := []string{}
	doc.Find("p").Each(func(_ int, p *goquery.Selection) {
		p.Find("br").ReplaceWithHtml("\n")
		lines := []string{}
		for _, line := range strings.Split(p.Text(), "\n") {
			line = strings.TrimSpace(reSpaces.ReplaceAllString(line, " "))
			if line != "" {
				lines = append(lines, line)
			}
		}
		if len(lines) > 0 {
			paragraphs = append(paragraphs, strings.Join(lines, "\n"))
		}
	})
	return strings.Join(paragraphs, "\n\n")
}
