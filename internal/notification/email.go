package notification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aryan0dhankhar/citas/internal/domain"
)

const confirmationSubject = "Confirmación de Cita Médica"

// Message is a plain text email
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers one message with a single attempt
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// EmailObserver mails an appointment confirmation to the patient
type EmailObserver struct {
	sender Sender
	logger *slog.Logger
}

// NewEmailObserver creates the default observer
func NewEmailObserver(sender Sender, logger *slog.Logger) *EmailObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &EmailObserver{sender: sender, logger: logger}
}

// Name implements Observer
func (o *EmailObserver) Name() string { return "email" }

// Notify implements Observer
func (o *EmailObserver) Notify(ctx context.Context, notice *domain.AppointmentNotice) error {
	msg := ConfirmationMessage(notice)
	if err := o.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("send confirmation to %s: %w", msg.To, err)
	}
	o.logger.Info("appointment confirmation sent",
		slog.Int64("appointment_id", notice.Appointment.ID),
		slog.String("to", msg.To),
	)
	return nil
}

// ConfirmationMessage renders the confirmation mail for notice
func ConfirmationMessage(notice *domain.AppointmentNotice) Message {
	a := notice.Appointment
	return Message{
		To:      notice.Contact,
		Subject: confirmationSubject,
		Body: fmt.Sprintf(
			"Estimado paciente, su cita ha sido agendada para el %s. Motivo: %s\n\n%s",
			a.ScheduledAt.Format("02/01/2006 15:04"), a.Reason, notice.Details(),
		),
	}
}
