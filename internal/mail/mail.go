// Package mail delivers plain-text e-mail through SMTP or a logging fallback.
package mail

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNoRecipients   = errors.New("mail: no recipients")
	ErrInvalidAddress = errors.New("mail: invalid address")
)

// Message is a single plain-text e-mail.
type Message struct {
	From    string
	To      []string
	Subject string
	Body    string
}

// Sender delivers messages. Implementations must be safe for concurrent use.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Validate checks sender and recipient addresses.
func (m Message) Validate() error {
	if _, err := mail.ParseAddress(m.From); err != nil {
		return fmt.Errorf("%w: from %q", ErrInvalidAddress, m.From)
	}
	if len(m.To) == 0 {
		return ErrNoRecipients
	}
	for _, to := range m.To {
		if _, err := mail.ParseAddress(to); err != nil {
			return fmt.Errorf("%w: to %q", ErrInvalidAddress, to)
		}
	}
	return nil
}

// Bytes renders the message as RFC 5322 text with CRLF line endings.
func (m Message) Bytes(now time.Time) []byte {
	domain := "localhost"
	if at := strings.LastIndex(m.From, "@"); at >= 0 && at < len(m.From)-1 {
		domain = strings.Trim(m.From[at+1:], "> ")
	}

	var b strings.Builder
	writeHeader(&b, "From", m.From)
	writeHeader(&b, "To", strings.Join(m.To, ", "))
	writeHeader(&b, "Subject", mimeHeader(m.Subject))
	writeHeader(&b, "Date", now.Format(time.RFC1123Z))
	writeHeader(&b, "Message-ID", fmt.Sprintf("<%s@%s>", uuid.NewString(), domain))
	writeHeader(&b, "MIME-Version", "1.0")
	writeHeader(&b, "Content-Type", "text/plain; charset=UTF-8")
	writeHeader(&b, "Content-Transfer-Encoding", "8bit")
	b.WriteString("\r\n")

	body := strings.ReplaceAll(m.Body, "\r\n", "\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	return []byte(b.String())
}

func writeHeader(b *strings.Builder, key, value string) {
	value = strings.NewReplacer("\r", " ", "\n", " ").Replace(value)
	b.WriteString(key)
	b.WriteString(": ")
	b.WriteString(value)
	b.WriteString("\r\n")
}

// mimeHeader encodes non-ASCII header values as RFC 2047 words.
func mimeHeader(value string) string {
	for _, r := range value {
		if r > 127 {
			return mime.QEncoding.Encode("UTF-8", value)
		}
	}
	return value
}
