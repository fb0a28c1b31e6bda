// Package sender отправляет участникам письма по событиям из RabbitMQ.
package sender

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/csa-backend/internal/lib/sl"
	"github.com/magabrotheeeer/csa-backend/internal/lib/smtp"
	"github.com/magabrotheeeer/csa-backend/internal/models"
)

const dateLayout = "02.01.2006"

// Service формирует и отправляет письма.
type Service struct {
	transport smtp.TransportInterface
	log       *slog.Logger
}

// New создаёт новый экземпляр Service.
func New(transport smtp.TransportInterface, log *slog.Logger) *Service {
	return &Service{
		transport: transport,
		log:       log,
	}
}

// SendJokerUsed письмо о взятом джокере.
func (s *Service) SendJokerUsed(body []byte) error {
	var message models.JokerNotification
	if err := json.Unmarshal(body, &message); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	subject := "Joker registered"
	text := fmt.Sprintf("Hello %s,\n\nyour joker for the delivery week of %s has been registered.\nYou will not receive jokers-affected shares that week.",
		message.FirstName, message.Date.Format(dateLayout))
	return s.sendEmail([]string{message.Email}, subject, text)
}

// SendJokerCancelled письмо об отменённом джокере.
func (s *Service) SendJokerCancelled(body []byte) error {
	var message models.JokerNotification
	if err := json.Unmarshal(body, &message); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	subject := "Joker cancelled"
	text := fmt.Sprintf("Hello %s,\n\nyour joker for the delivery week of %s has been cancelled.\nYour shares will be delivered as usual.",
		message.FirstName, message.Date.Format(dateLayout))
	return s.sendEmail([]string{message.Email}, subject, text)
}

// SendPaymentCreated письмо о новом платеже.
func (s *Service) SendPaymentCreated(body []byte) error {
	var message models.PaymentNotification
	if err := json.Unmarshal(body, &message); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	subject := "Upcoming payment"
	text := fmt.Sprintf("Hello %s,\n\n%s EUR for %s (%s - %s) will be collected on %s from mandate %s.",
		message.FirstName,
		message.Amount.StringFixed(2),
		message.Type,
		message.RangeStart.Format(dateLayout),
		message.RangeEnd.Format(dateLayout),
		message.DueDate.Format(dateLayout),
		message.MandateRef,
	)
	return s.sendEmail([]string{message.Email}, subject, text)
}

func (s *Service) sendEmail(to []string, subject, bodyText string) error {
	from := s.transport.GetSMTPUser()
	msg := strings.Join([]string{
		"From: " + from,
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer func() {
		if err := client.Close(); err != nil {
			s.log.Debug("failed to close SMTP client", sl.Err(err))
		}
	}()

	if err := client.Mail(from); err != nil {
		s.log.Error("failed to set MAIL FROM", slog.String("from", from), sl.Err(err))
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", slog.String("recipient", addr), sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get Data writer", sl.Err(err))
		return err
	}

	if _, err = wc.Write([]byte(msg)); err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return err
	}

	if err = wc.Close(); err != nil {
		s.log.Error("failed to close Data writer", sl.Err(err))
		return err
	}

	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return err
	}

	s.log.Info("email sent successfully", slog.Any("to", to), slog.String("subject", subject))
	return nil
}
