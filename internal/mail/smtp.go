package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"time"
)

// SMTPSender sends mail through an SMTP relay, upgrading with STARTTLS when offered.
type SMTPSender struct {
	Host     string
	Port     int
	Username string
	Password string

	// sendMail is swapped in tests.
	sendMail func(ctx context.Context, addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPSender builds a sender for host:port with optional PLAIN credentials.
func NewSMTPSender(host string, port int, username, password string) *SMTPSender {
	s := &SMTPSender{
		Host:     host,
		Port:     port,
		Username: username,
		Password: password,
	}
	s.sendMail = s.deliver
	return s
}

// Send validates and delivers msg. The SMTP conversation runs on the caller's
// goroutine and is aborted when ctx ends, so a returned error means the relay
// did not acknowledge the message.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	var auth smtp.Auth
	if s.Username != "" {
		auth = smtp.PlainAuth("", s.Username, s.Password, s.Host)
	}

	addr := net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
	if err := s.sendMail(ctx, addr, auth, msg.From, msg.To, msg.Bytes(time.Now())); err != nil {
		return fmt.Errorf("smtp send via %s: %w", addr, err)
	}
	return nil
}

func (s *SMTPSender) deliver(ctx context.Context, addr string, auth smtp.Auth, from string, to []string, payload []byte) error {
	err := s.dialAndConverse(ctx, addr, auth, from, to, payload)
	if ctxErr := ctx.Err(); ctxErr != nil && err != nil {
		return fmt.Errorf("%w: %v", ctxErr, err)
	}
	return err
}

func (s *SMTPSender) dialAndConverse(ctx context.Context, addr string, auth smtp.Auth, from string, to []string, payload []byte) error {
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			conn.Close()
			return err
		}
	}
	// unblock any pending read or write once ctx is cancelled
	stop := context.AfterFunc(ctx, func() {
		conn.SetDeadline(time.Now())
	})
	defer stop()

	return s.converse(conn, auth, from, to, payload)
}

func (s *SMTPSender) converse(conn net.Conn, auth smtp.Auth, from string, to []string, payload []byte) error {
	client, err := smtp.NewClient(conn, s.Host)
	if err != nil {
		conn.Close()
		return err
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: s.Host}); err != nil {
			return err
		}
	}
	if auth != nil {
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(auth); err != nil {
				return err
			}
		}
	}

	if err := client.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}

	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(payload); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}
