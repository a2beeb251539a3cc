package domain

import (
	"fmt"
	"strings"
	"time"
)

// Kind selects the appointment variant
type Kind string

const (
	KindGeneral Kind = "GENERAL"
	KindUrgent  Kind = "URGENT"
)

// ParseKind accepts exactly GENERAL or URGENT
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if _, ok := variants[k]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidAppointmentType, s)
	}
	return k, nil
}

// Urgency is derived from Kind
type Urgency string

const (
	UrgencyNormal Urgency = "Normal"
	UrgencyHigh   Urgency = "Alta"
)

type variant struct {
	label   string
	urgency Urgency
}

var variants = map[Kind]variant{
	KindGeneral: {label: "General Consultation", urgency: UrgencyNormal},
	KindUrgent:  {label: "URGENT", urgency: UrgencyHigh},
}

// Appointment is a persisted appointment row
type Appointment struct {
	ID            int64     `json:"id"`
	PatientUserID int64     `json:"patient_user_id"`
	DoctorUserID  int64     `json:"doctor_user_id"`
	SpecialtyID   *int64    `json:"specialty_id,omitempty"`
	ScheduledAt   time.Time `json:"scheduled_at"`
	Reason        string    `json:"reason"`
	Kind          Kind      `json:"kind"`
	CreatedAt     time.Time `json:"created_at"`
}

// AppointmentView is an appointment joined with participant names
type AppointmentView struct {
	Appointment
	PatientName   string `json:"patient_name"`
	DoctorName    string `json:"doctor_name"`
	SpecialtyName string `json:"specialty,omitempty"`
}

// AppointmentFilter narrows List; zero fields do not filter
type AppointmentFilter struct {
	PatientUserID int64
	DoctorUserID  int64
}

// AppointmentNotice is the transient value handed to observers after an
// appointment is stored.
type AppointmentNotice struct {
	Appointment Appointment
	Urgency     Urgency
	Contact     string
	label       string
}

// NewAppointmentNotice builds the notice for the variant named by a.Kind.
// It returns either a complete notice or an error, never both.
func NewAppointmentNotice(a Appointment, contact string) (*AppointmentNotice, error) {
	v, ok := variants[a.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAppointmentType, a.Kind)
	}
	contact = strings.TrimSpace(contact)
	if contact == "" {
		return nil, ErrMissingContact
	}
	return &AppointmentNotice{
		Appointment: a,
		Urgency:     v.urgency,
		Contact:     contact,
		label:       v.label,
	}, nil
}

// Details renders the human readable summary, e.g.
// "URGENT: Appointment for patient ID: 1, doctor: 2, date: 2025-03-01 10:00, reason: chest pain - Urgency: Alta"
func (n *AppointmentNotice) Details() string {
	return fmt.Sprintf("%s: %s - Urgency: %s", n.label, describe(n.Appointment), n.Urgency)
}

func describe(a Appointment) string {
	return fmt.Sprintf("Appointment for patient ID: %d, doctor: %d, date: %s, reason: %s",
		a.PatientUserID, a.DoctorUserID, a.ScheduledAt.Format("2006-01-02 15:04"), a.Reason)
}
