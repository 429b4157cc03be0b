// Package message renders site-manager notifications as Markdown with an
// HTML alternative.
package message

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"visitreg/internal/notify/models"
)

const timeLayout = "Mon 2 Jan 2006 15:04"

var (
	markdownOnce sync.Once
	markdown     goldmark.Markdown
)

func converter() goldmark.Markdown {
	markdownOnce.Do(func() {
		markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))
	})
	return markdown
}

var escaper = strings.NewReplacer(
	`\`, `\\`,
	"|", `\|`,
	"*", `\*`,
	"_", `\_`,
	"`", "\\`",
	"[", `\[`,
	"]", `\]`,
	"<", "&lt;",
	">", "&gt;",
)

// Subject is the notification subject line for a site.
func Subject(job *models.Job) string {
	return "New visitor at " + job.Site.Title()
}

// Render builds the message for job addressed to recipients.
func Render(job *models.Job, recipients []string) (*models.Message, error) {
	body := Markdown(job)
	var html bytes.Buffer
	if err := converter().Convert([]byte(body), &html); err != nil {
		return nil, fmt.Errorf("render notification html: %w", err)
	}
	return &models.Message{
		VisitID:  job.VisitID,
		Site:     job.Site,
		To:       append([]string(nil), recipients...),
		Subject:  Subject(job),
		Markdown: body,
		HTML:     html.String(),
	}, nil
}

// Markdown is the plain-text body. Visitor-supplied values are escaped.
func Markdown(job *models.Job) string {
	var b strings.Builder
	fmt.Fprintf(&b, "A new visitor has registered at **%s**.\n\n", job.Site.Title())

	b.WriteString("| Detail | Value |\n|---|---|\n")
	row(&b, "Visitor", job.VisitorName)
	row(&b, "Role", job.Role)
	row(&b, "Arrival", job.Arrival.Format(timeLayout))
	row(&b, "Departure", job.Departure.Format(timeLayout))
	row(&b, "Overnight", yesNo(job.Overnight))
	if job.Paddock != nil {
		row(&b, "Paddock", *job.Paddock)
	}

	if c := job.Contact; c != nil {
		b.WriteString("\n### Emergency contact\n\n")
		b.WriteString("| Detail | Value |\n|---|---|\n")
		row(&b, "Name", c.Name)
		row(&b, "Phone", c.Phone)
		row(&b, "Relationship", c.Relationship)
	}
	return b.String()
}

func row(b *strings.Builder, label, value string) {
	fmt.Fprintf(b, "| %s | %s |\n", label, escaper.Replace(value))
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}
