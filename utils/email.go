package utils

import (
	"fmt"
	"html"
	"log/slog"
	"net/smtp"
	"os"
	"strings"
)

type EmailConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

func GetEmailConfig() *EmailConfig {
	return &EmailConfig{
		Host:     os.Getenv("SMTP_HOST"),
		Port:     os.Getenv("SMTP_PORT"),
		Username: os.Getenv("SMTP_USERNAME"),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     os.Getenv("SMTP_FROM"),
	}
}

func (c *EmailConfig) Configured() bool {
	return c.Host != "" && c.Port != "" && c.From != ""
}

// sendMail is swapped out in tests.
var sendMail = smtp.SendMail

func SendEmail(to, subject, htmlBody string) error {
	config := GetEmailConfig()
	if !config.Configured() {
		return fmt.Errorf("SMTP not configured")
	}

	headers := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n",
		config.From, to, subject)
	msg := []byte(headers + htmlBody)

	var auth smtp.Auth
	if config.Username != "" && config.Password != "" {
		auth = smtp.PlainAuth("", config.Username, config.Password, config.Host)
	}

	addr := config.Host + ":" + config.Port
	return sendMail(addr, auth, config.From, []string{to}, msg)
}

func firstName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Gościu"
	}
	return html.EscapeString(strings.Fields(name)[0])
}

func reservationBody(name, date, clock, room string, guests int) string {
	return fmt.Sprintf(`<h2>Rezerwacja przyjęta</h2>
<p>Cześć %s,</p>
<p>Dziękujemy za rezerwację w MilkShake Bar.</p>
<ul>
<li>Data: <strong>%s</strong></li>
<li>Godzina: <strong>%s</strong></li>
<li>Sala: <strong>%s</strong></li>
<li>Liczba gości: <strong>%d</strong></li>
</ul>
<p>Do zobaczenia!</p>
<p>Zespół MILK</p>`, firstName(name), html.EscapeString(date), html.EscapeString(clock), html.EscapeString(room), guests)
}

// SendReservationConfirmation mails the booking details in the background.
// Unconfigured SMTP or a missing address is silently skipped.
func SendReservationConfirmation(email, name, date, clock, room string, guests int) {
	if email == "" || !GetEmailConfig().Configured() {
		return
	}
	go func() {
		subject := fmt.Sprintf("Rezerwacja %s %s - MILK", date, clock)
		if err := SendEmail(email, subject, reservationBody(name, date, clock, room, guests)); err != nil {
			slog.Warn("Failed to send reservation confirmation", "email", email, "error", err)
		}
	}()
}

func orderStatusBody(name, orderID, status string) string {
	return fmt.Sprintf(`<h2>Status zamówienia</h2>
<p>Cześć %s,</p>
<p>Twoje zamówienie <strong>%s</strong> ma teraz status: <strong>%s</strong></p>
<p>Zespół MILK</p>`, firstName(name), html.EscapeString(orderID), html.EscapeString(status))
}

// SendOrderStatusUpdate mails a status change in the background.
func SendOrderStatusUpdate(email, name, orderID, status string) {
	if email == "" || !GetEmailConfig().Configured() {
		return
	}
	go func() {
		subject := fmt.Sprintf("Zamówienie %s - %s", shortID(orderID), status)
		if err := SendEmail(email, subject, orderStatusBody(name, orderID, status)); err != nil {
			slog.Warn("Failed to send status update email", "email", email, "error", err)
		}
	}()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
