package mail

import (
	"bytes"
	"context"
	"fmt"
	"text/template"

	"gopkg.in/gomail.v2"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

var saleNotificationTmpl = template.Must(template.New("sale").Parse(
	`{{.Subject}}

Sale #{{.Event.SaleID}} (lead #{{.Event.LeadID}})
Customer: {{.Event.CustomerName}}{{if .Event.BusinessName}} / {{.Event.BusinessName}}{{end}}
Amount: ${{printf "%.2f" .Event.TotalAmount}}
Payment type: {{if .Event.PaymentType}}{{.Event.PaymentType}}{{else}}not set{{end}}
Payment method: {{if .Event.PaymentMethod}}{{.Event.PaymentMethod}}{{else}}not set{{end}}
Contract term: {{.Event.ContractTerm}} months
Contract ends: {{.EndDate}}
By: {{.Event.Actor}} at {{.Event.OccurredAt.Format "2006-01-02 15:04 MST"}}
`))

var subjects = map[entity.SaleEventType]string{
	entity.SaleEventCreated:          "New sale created",
	entity.SaleEventPaymentConfirmed: "Payment confirmed",
	entity.SaleEventContractArchived: "Contract period archived",
	entity.SaleEventContractExpiring: "Contract ending soon",
}

func NewEmailSender(host string, port int, user, password, from, to string) *EmailSender {
	return &EmailSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		From:     from,
		To:       to,
	}
}

// RenderSaleNotification monta assunto e corpo do aviso de venda.
func RenderSaleNotification(evt entity.SaleEvent) (subject, body string, err error) {
	subject, ok := subjects[evt.Type]
	if !ok {
		subject = string(evt.Type)
	}
	subject = fmt.Sprintf("[CRM] %s: sale #%d", subject, evt.SaleID)

	data := SaleNotificationData{Event: evt, Subject: subject, EndDate: "n/a"}
	if evt.ContractEndDate != nil {
		data.EndDate = evt.ContractEndDate.Format("2006-01-02")
	}

	var buf bytes.Buffer
	if err := saleNotificationTmpl.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("erro ao processar template: %w", err)
	}
	return subject, buf.String(), nil
}

func (s *EmailSender) SendSaleNotification(ctx context.Context, evt entity.SaleEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	subject, body, err := RenderSaleNotification(evt)
	if err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", s.To)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	d := gomail.NewDialer(s.Host, s.Port, s.User, s.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("erro ao enviar email SMTP: %w", err)
	}
	return nil
}
