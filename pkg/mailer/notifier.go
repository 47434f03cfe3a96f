package mailer

import (
	"context"

	"github.com/oksasatya/go-auth-service/config"
	"github.com/oksasatya/go-auth-service/pkg/helpers"
)

// QueueNotifier is the notification channel used by the auth engine. Each
// send enqueues a typed job for the email worker; the publish error is the
// delivery failure the engine reacts to (rollback of one-time token fields,
// NotificationFailed to the caller).
type QueueNotifier struct {
	Pub *helpers.RabbitPublisher
	Cfg *config.Config
}

func NewQueueNotifier(pub *helpers.RabbitPublisher, cfg *config.Config) *QueueNotifier {
	return &QueueNotifier{Pub: pub, Cfg: cfg}
}

func (n *QueueNotifier) SendVerification(ctx context.Context, email, name, rawToken string) error {
	link := n.Cfg.VerifyEmailURL + "?token=" + rawToken
	return n.Pub.PublishJSON(ctx, EmailJob{
		To:       email,
		Template: TemplateVerifyEmail,
		Data: map[string]any{
			"Name":        name,
			"Code":        rawToken,
			"VerifyURL":   link,
			"CompanyName": n.Cfg.CompanyName,
			"SupportURL":  n.Cfg.SupportURL,
			"ExpiresIn":   n.Cfg.VerifyTokenTTL.String(),
		},
	})
}

func (n *QueueNotifier) SendWelcome(ctx context.Context, email, name string) error {
	return n.Pub.PublishJSON(ctx, EmailJob{
		To:       email,
		Template: TemplateWelcome,
		Data: map[string]any{
			"Name":        name,
			"CompanyName": n.Cfg.CompanyName,
			"SupportURL":  n.Cfg.SupportURL,
		},
	})
}

func (n *QueueNotifier) SendPasswordReset(ctx context.Context, email, name, resetURL string) error {
	return n.Pub.PublishJSON(ctx, EmailJob{
		To:       email,
		Template: TemplatePasswordReset,
		Data: map[string]any{
			"Name":        name,
			"ResetURL":    resetURL,
			"CompanyName": n.Cfg.CompanyName,
			"SupportURL":  n.Cfg.SupportURL,
			"ExpiresIn":   n.Cfg.ResetTokenTTL.String(),
		},
	})
}
