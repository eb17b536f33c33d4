package mail

import "github.com/xavierca1/ligue-crm/internal/entity"

type SaleNotificationData struct {
	Event   entity.SaleEvent
	Subject string
	EndDate string
}

type EmailSender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	To       string
}
