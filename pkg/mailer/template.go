package mailer

import (
	"bytes"
	"fmt"
	"html"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

const SubjectPrefix = "Lab Maintenance Notification - "

var notificationTemplate = template.Must(template.New("notification").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8" />
<meta name="viewport" content="width=device-width, initial-scale=1.0" />
<title>Lab Maintenance Notification</title>
<style>
  body { margin: 0; padding: 0; background: #f5f7fa; font-family: -apple-system, "Segoe UI", Roboto, Arial, sans-serif; }
  .container { max-width: 600px; margin: 40px auto; background: #ffffff; border-radius: 14px; overflow: hidden; }
  .header { padding: 32px 20px; background: #0284c7; color: #ffffff; text-align: center; font-size: 22px; font-weight: 600; }
  .content { padding: 36px 32px; color: #1a202c; }
  .notification-box { margin: 24px 0; padding: 24px; background: #e0f2fe; border-left: 4px solid #0284c7; border-radius: 10px; }
  .notification-title { font-size: 20px; font-weight: 700; margin-bottom: 10px; }
  .notification-message { font-size: 15px; line-height: 1.6; color: #334155; white-space: pre-line; }
  .cta-button { display: inline-block; padding: 13px 30px; background: #0284c7; color: #ffffff; border-radius: 8px; text-decoration: none; }
  .footer { padding: 24px; text-align: center; font-size: 13px; color: #718096; }
</style>
</head>
<body>
  <div class="container">
    <div class="header">Lab Maintenance Notification</div>
    <div class="content">
      <p>You have a new update regarding a maintenance request.</p>
      <div class="notification-box">
        <div class="notification-title">{{ .Title }}</div>
        <div class="notification-message">{{ .Message }}</div>
      </div>
      {{ if .DashboardURL }}<a href="{{ .DashboardURL }}" class="cta-button">Open Dashboard</a>{{ end }}
    </div>
    <div class="footer">This is an automated notification. Do not reply.</div>
  </div>
</body>
</html>`))

// Тексты уведомлений приходят из форм заявки, разметку из них убираем целиком.
var plainText = bluemonday.StrictPolicy()

// Render собирает письмо уведомления: тема, HTML и текстовая версия.
func Render(to, title, message, dashboardURL string) (Message, error) {
	cleanTitle := stripMarkup(title)
	cleanMessage := stripMarkup(message)

	var buf bytes.Buffer
	err := notificationTemplate.Execute(&buf, struct {
		Title, Message, DashboardURL string
	}{cleanTitle, cleanMessage, dashboardURL})
	if err != nil {
		return Message{}, fmt.Errorf("ошибка рендеринга письма: %w", err)
	}

	return Message{
		To:      to,
		Subject: SubjectPrefix + cleanTitle,
		HTML:    buf.String(),
		Text:    cleanTitle + "\n\n" + cleanMessage,
	}, nil
}

// stripMarkup убирает теги. Сущности раскрываются обратно, экранирует шаблон.
func stripMarkup(s string) string {
	return strings.TrimSpace(html.UnescapeString(plainText.Sanitize(s)))
}
