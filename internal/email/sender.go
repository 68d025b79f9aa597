package email

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"net/mail"
	"strings"

	"github.com/jonathan/job-harvester/internal/prompts"
	"github.com/jonathan/job-harvester/internal/types"
)

// separator ends each posting block in a results email.
var separator = strings.Repeat("=", 50)

// Transport delivers a base64url-encoded RFC 2822 message and returns its ID.
type Transport interface {
	Send(ctx context.Context, raw string) (string, error)
}

// Sender composes and sends job result emails.
type Sender struct {
	transport Transport
	from      string
}

// NewSender creates a Sender. from may be "me" for the authenticated account.
func NewSender(transport Transport, from string) *Sender {
	if from == "" {
		from = "me"
	}
	return &Sender{transport: transport, from: from}
}

// SendJobs mails jobs to recipient and returns the message ID.
func (s *Sender) SendJobs(ctx context.Context, recipient string, jobs []types.JobPosting) (string, error) {
	addr, err := mail.ParseAddress(recipient)
	if err != nil {
		return "", fmt.Errorf("invalid recipient %q: %w", recipient, err)
	}

	subject := prompts.Format(prompts.MustGet(prompts.EmailSubject), map[string]string{
		"Count": fmt.Sprintf("%d", len(jobs)),
	})
	raw := BuildMessage(s.from, addr.Address, subject, FormatJobs(jobs))

	id, err := s.transport.Send(ctx, raw)
	if err != nil {
		return "", err
	}
	log.Printf("[email] sent %d postings to %s (message %s)", len(jobs), addr.Address, id)
	return id, nil
}

// BuildMessage renders a plain-text message and encodes it for the Gmail API.
func BuildMessage(from, to, subject, body string) string {
	var sb strings.Builder
	sb.WriteString("From: " + from + "\r\n")
	sb.WriteString("To: " + to + "\r\n")
	sb.WriteString("Subject: " + mimeHeader(subject) + "\r\n")
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	return base64.URLEncoding.EncodeToString([]byte(sb.String()))
}

func mimeHeader(s string) string {
	for _, r := range s {
		if r > 127 {
			return fmt.Sprintf("=?UTF-8?B?%s?=", base64.StdEncoding.EncodeToString([]byte(s)))
		}
	}
	return s
}

// FormatJobs renders postings as the plain-text body of a results email.
func FormatJobs(jobs []types.JobPosting) string {
	var sb strings.Builder
	sb.WriteString("Job Search Results:\n\n")
	if len(jobs) == 0 {
		sb.WriteString("No matching jobs found.\n")
		return sb.String()
	}

	for i := range jobs {
		j := &jobs[i]
		fmt.Fprintf(&sb, "Job Title: %s\n", types.Deref(j.Title, "N/A"))
		fmt.Fprintf(&sb, "Company: %s\n", types.Deref(j.CompanyName, "N/A"))
		fmt.Fprintf(&sb, "Location: %s\n", types.Deref(j.Location.Location, "N/A"))
		if j.Remote {
			sb.WriteString("Remote: yes\n")
		}
		fmt.Fprintf(&sb, "Seniority Level: %s\n", types.Deref(j.SeniorityLevel, "N/A"))
		fmt.Fprintf(&sb, "Employment Type: %s\n", types.Deref(j.EmploymentType, "N/A"))
		fmt.Fprintf(&sb, "Salary: %s\n", types.Deref(j.Salary.Raw, "N/A"))
		fmt.Fprintf(&sb, "Years of Experience: %s\n", types.Deref(j.YOE.Raw, "N/A"))
		education := "N/A"
		if len(j.Education) > 0 {
			education = strings.Join(j.Education, ", ")
		}
		fmt.Fprintf(&sb, "Education: %s\n", education)
		if j.JobURL != nil {
			fmt.Fprintf(&sb, "URL: %s\n", *j.JobURL)
		}
		fmt.Fprintf(&sb, "Description: %s\n", types.Deref(j.Description, "N/A"))
		sb.WriteString(separator + "\n")
	}
	return sb.String()
}
