package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	subjectRunFailedFmt        = "Обработка листа %q завершилась с ошибкой"
	subjectDeliveryFailuresFmt = "%d уведомлений не доставлено (лист %q)"
)

func renderRunAlert(alert RunAlert) (string, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/run_alert.html")
	if err != nil {
		return "", fmt.Errorf("parse alert template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, alert); err != nil {
		return "", fmt.Errorf("execute alert template: %w", err)
	}
	return buf.String(), nil
}
