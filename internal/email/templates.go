package email

import (
	"fmt"
	"html/template"
	"strings"
)

const notificationLayout = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #222;">
	<h2>{{.Subject}}</h2>
	<p>{{.Message}}</p>
	<hr>
	<p style="font-size: 12px; color: #888;">{{.Company}}: this message was sent because payment notifications are enabled in your settings.</p>
</body>
</html>`

// TemplateData — данные письма-уведомления
type TemplateData struct {
	Subject string
	Message string
	Company string
}

var layout = template.Must(template.New("notification").Parse(notificationLayout))

// Render собирает HTML. Текст экранируется html/template.
func Render(data TemplateData) (string, error) {
	var buf strings.Builder
	if err := layout.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render email: %w", err)
	}
	return buf.String(), nil
}
