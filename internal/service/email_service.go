package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/resend/resend-go/v2"
)

// EmailService sends transactional emails.
type EmailService interface {
	SendQuizResult(ctx context.Context, toEmail, name, quizTitle string, percentage int, passed bool) error
	SendCourseCompleted(ctx context.Context, toEmail, name, courseTitle string) error
}

// NoopEmailService is used when no Resend API key is configured.
type NoopEmailService struct{}

func (s *NoopEmailService) SendQuizResult(ctx context.Context, toEmail, name, quizTitle string, percentage int, passed bool) error {
	log.Printf("[EmailService] noop quiz result to=%s quiz=%q percentage=%d", toEmail, quizTitle, percentage)
	return nil
}

func (s *NoopEmailService) SendCourseCompleted(ctx context.Context, toEmail, name, courseTitle string) error {
	log.Printf("[EmailService] noop course completed to=%s course=%q", toEmail, courseTitle)
	return nil
}

// ResendEmailService sends emails via Resend REST API.
type ResendEmailService struct {
	from   string
	client *resend.Client
}

func NewResendEmailService(apiKey, from string) (*ResendEmailService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("resend api key is required")
	}
	if from == "" {
		return nil, fmt.Errorf("email from is required")
	}
	return &ResendEmailService{
		from:   from,
		client: resend.NewClient(apiKey),
	}, nil
}

func (s *ResendEmailService) SendQuizResult(ctx context.Context, toEmail, name, quizTitle string, percentage int, passed bool) error {
	if toEmail == "" {
		return fmt.Errorf("toEmail is required")
	}
	verdict := "Vous n'avez pas atteint le score requis."
	if passed {
		verdict = "Félicitations, vous avez réussi !"
	}
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{toEmail},
		Subject: fmt.Sprintf("Résultat du quiz : %s", quizTitle),
		Text:    fmt.Sprintf("Bonjour %s,\n\nVotre score au quiz « %s » est de %d%%. %s", name, quizTitle, percentage, verdict),
		Html: fmt.Sprintf("<p>Bonjour %s,</p><p>Votre score au quiz « %s » est de <strong>%d%%</strong>.</p><p>%s</p>",
			html.EscapeString(name), html.EscapeString(quizTitle), percentage, verdict),
	}
	return s.send(ctx, params, "")
}

func (s *ResendEmailService) SendCourseCompleted(ctx context.Context, toEmail, name, courseTitle string) error {
	if toEmail == "" {
		return fmt.Errorf("toEmail is required")
	}
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{toEmail},
		Subject: fmt.Sprintf("Cours terminé : %s", courseTitle),
		Text:    fmt.Sprintf("Bonjour %s,\n\nVous avez terminé le cours « %s ». Bravo !", name, courseTitle),
		Html: fmt.Sprintf("<p>Bonjour %s,</p><p>Vous avez terminé le cours « <strong>%s</strong> ». Bravo !</p>",
			html.EscapeString(name), html.EscapeString(courseTitle)),
	}
	// один и тот же курс не должен приходить дважды
	return s.send(ctx, params, fmt.Sprintf("course-completed:%s:%s", toEmail, courseTitle))
}

func (s *ResendEmailService) send(ctx context.Context, params *resend.SendEmailRequest, idempotencyKey string) error {
	options := &resend.SendEmailOptions{}
	if strings.TrimSpace(idempotencyKey) != "" {
		options.IdempotencyKey = strings.TrimSpace(idempotencyKey)
	}

	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		_, err := s.client.Emails.SendWithOptions(ctx, params, options)
		if err == nil {
			return nil
		}
		lastErr = err

		if wait, ok := resendRetryDelay(err, attempt); ok {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
				continue
			}
		}

		return fmt.Errorf("resend send failed: %w", err)
	}

	return fmt.Errorf("resend send failed after retries: %w", lastErr)
}

func resendRetryDelay(err error, attempt int) (time.Duration, bool) {
	var rateLimitErr *resend.RateLimitError
	if errors.As(err, &rateLimitErr) {
		if seconds, convErr := strconv.Atoi(strings.TrimSpace(rateLimitErr.RetryAfter)); convErr == nil && seconds > 0 {
			if seconds > 30 {
				seconds = 30
			}
			return time.Duration(seconds) * time.Second, true
		}
		return time.Duration(attempt+1) * time.Second, true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return time.Duration(attempt+1) * 500 * time.Millisecond, true
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "timeout") || strings.Contains(msg, "temporar") {
		return time.Duration(attempt+1) * 500 * time.Millisecond, true
	}

	return 0, false
}
