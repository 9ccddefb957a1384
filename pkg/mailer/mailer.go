package mailer

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"maintenance-system/pkg/config"
)

// Message - одно письмо.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Sender отправляет письмо. Таймаут задаёт ctx вызывающего.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// New выбирает транспорт по EMAIL_PROVIDER.
func New(cfg config.EmailConfig, logger *zap.Logger) (Sender, error) {
	switch cfg.Provider {
	case "resend":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("RESEND_API_KEY не задан")
		}
		return NewResendSender(cfg.APIURL, cfg.APIKey, cfg.From, &http.Client{Timeout: cfg.Timeout}), nil
	case "log", "":
		return NewLogSender(logger), nil
	}
	return nil, fmt.Errorf("неизвестный EMAIL_PROVIDER %q", cfg.Provider)
}
