package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/inkwell/internal/db"
	"github.com/inkwell/internal/mail"
)

var ErrShareNotPublished = errors.New("only published posts can be shared")

// ShareService e-mails post recommendations.
type ShareService struct {
	sender mail.Sender
	from   string
}

// ShareInput is a validated recommend-by-email submission.
type ShareInput struct {
	Name     string
	Email    string
	To       string
	Comments string
}

func NewShareService(sender mail.Sender, from string) *ShareService {
	return &ShareService{sender: sender, from: from}
}

// ComposeShare builds the recommendation mail for post located at postURL.
func ComposeShare(post *db.Post, postURL string, input ShareInput) (subject, body string) {
	name := strings.TrimSpace(input.Name)
	subject = fmt.Sprintf("%s recommends you read %s", name, post.Title)
	body = fmt.Sprintf("Read %s at %s\n\n%s's comments: %s", post.Title, postURL, name, strings.TrimSpace(input.Comments))
	return subject, body
}

// Share sends one recommendation mail from the fixed sender address to input.To.
func (s *ShareService) Share(ctx context.Context, post *db.Post, postURL string, input ShareInput) error {
	if post == nil {
		return ErrPostNotFound
	}
	if !post.IsPublished() {
		return ErrShareNotPublished
	}

	subject, body := ComposeShare(post, postURL, input)
	msg := mail.Message{
		From:    s.from,
		To:      []string{strings.TrimSpace(input.To)},
		Subject: subject,
		Body:    body,
	}

	if err := s.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("send share mail for post %d: %w", post.ID, err)
	}
	return nil
}
