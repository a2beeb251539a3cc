package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/aryan0dhankhar/citas/internal/domain"
	"github.com/aryan0dhankhar/citas/internal/notification"
	"github.com/aryan0dhankhar/citas/internal/observability/metrics"
	"github.com/aryan0dhankhar/citas/internal/security"
	"github.com/aryan0dhankhar/citas/pkg/cache"
)

// DefaultNotifyTimeout bounds the observers of one creation
const DefaultNotifyTimeout = 10 * time.Second

var scheduleLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02 15:04"}

// Notifier hands created appointments to observers
type Notifier interface {
	Dispatch(ctx context.Context, event notification.Event, notice *domain.AppointmentNotice) int
}

// AppointmentInput is the body of appointment create requests
type AppointmentInput struct {
	DoctorUserID int64  `json:"doctor_user_id"`
	SpecialtyID  *int64 `json:"specialty_id"`
	ScheduledAt  string `json:"scheduled_at"`
	Reason       string `json:"reason"`
	Type         string `json:"type"`
}

type parsedAppointment struct {
	scheduledAt time.Time
	kind        domain.Kind
	reason      string
}

func (in AppointmentInput) parse() (parsedAppointment, error) {
	var out parsedAppointment
	if in.DoctorUserID <= 0 {
		return out, domain.NewValidationError("doctor_user_id", "is required")
	}
	if err := require("scheduled_at", in.ScheduledAt); err != nil {
		return out, err
	}
	at, ok := parseSchedule(in.ScheduledAt)
	if !ok {
		return out, domain.NewValidationError("scheduled_at", "must be an ISO 8601 date and time")
	}
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return out, domain.NewValidationError("reason", "is required")
	}
	kind, err := domain.ParseKind(in.Type)
	if err != nil {
		return out, err
	}
	return parsedAppointment{scheduledAt: at, kind: kind, reason: reason}, nil
}

// AppointmentUpdate is the body of a reschedule request. Doctor, specialty
// and kind are fixed at creation.
type AppointmentUpdate struct {
	ScheduledAt string `json:"scheduled_at"`
	Reason      string `json:"reason"`
}

func (in AppointmentUpdate) parse() (time.Time, string, error) {
	if err := require("scheduled_at", in.ScheduledAt); err != nil {
		return time.Time{}, "", err
	}
	at, ok := parseSchedule(in.ScheduledAt)
	if !ok {
		return time.Time{}, "", domain.NewValidationError("scheduled_at", "must be an ISO 8601 date and time")
	}
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return time.Time{}, "", domain.NewValidationError("reason", "is required")
	}
	return at, reason, nil
}

func parseSchedule(s string) (time.Time, bool) {
	for _, layout := range scheduleLayouts {
		if t, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// AppointmentService books appointments and serves them through the cache
type AppointmentService struct {
	appointments  domain.AppointmentRepository
	patients      domain.PatientRepository
	doctors       domain.DoctorRepository
	cache         *cache.Layer
	notifier      Notifier
	ownership     *security.OwnershipService
	notifyTimeout time.Duration
	logger        *slog.Logger
	tracer        trace.Tracer
}

// NewAppointmentService creates the appointment service. A nil notifier
// disables notifications.
func NewAppointmentService(
	appointments domain.AppointmentRepository,
	patients domain.PatientRepository,
	doctors domain.DoctorRepository,
	c *cache.Layer,
	notifier Notifier,
	ownership *security.OwnershipService,
	notifyTimeout time.Duration,
	logger *slog.Logger,
) *AppointmentService {
	if logger == nil {
		logger = slog.Default()
	}
	if ownership == nil {
		ownership = security.NewOwnershipService(logger)
	}
	if notifyTimeout <= 0 {
		notifyTimeout = DefaultNotifyTimeout
	}
	return &AppointmentService{
		appointments:  appointments,
		patients:      patients,
		doctors:       doctors,
		cache:         c,
		notifier:      notifier,
		ownership:     ownership,
		notifyTimeout: notifyTimeout,
		logger:        logger,
		tracer:        otel.Tracer("github.com/aryan0dhankhar/citas/internal/service"),
	}
}

// Create books an appointment for the calling patient. The row is stored
// first, the appointment collections are invalidated, and only then are
// observers notified. Notification failures never fail the request.
func (s *AppointmentService) Create(ctx context.Context, p domain.Principal, in AppointmentInput) (*domain.Appointment, error) {
	ctx, span := s.tracer.Start(ctx, "appointment.create", trace.WithAttributes(
		attribute.Int64("patient_user_id", p.UserID),
		attribute.String("type", in.Type),
	))
	defer span.End()

	if p.Role != domain.RolePatient {
		return nil, domain.ErrForbidden
	}
	parsed, err := in.parse()
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	contact, err := s.patientContact(ctx, p)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	doctor, err := s.doctors.GetByUserID(ctx, in.DoctorUserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewValidationError("doctor_user_id", "unknown doctor")
		}
		return nil, err
	}
	specialtyID := in.SpecialtyID
	if specialtyID == nil {
		specialtyID = doctor.SpecialtyID
	}

	appt := &domain.Appointment{
		PatientUserID: p.UserID,
		DoctorUserID:  doctor.UserID,
		SpecialtyID:   specialtyID,
		ScheduledAt:   parsed.scheduledAt,
		Reason:        parsed.reason,
		Kind:          parsed.kind,
	}
	if err := s.appointments.Create(ctx, appt); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int64("appointment_id", appt.ID))
	s.cache.InvalidateAll(ctx, cache.Appointments)
	metrics.ObserveAppointmentCreated(string(appt.Kind))

	s.logger.Info("appointment created",
		slog.Int64("appointment_id", appt.ID),
		slog.Int64("patient_user_id", appt.PatientUserID),
		slog.Int64("doctor_user_id", appt.DoctorUserID),
		slog.String("kind", string(appt.Kind)),
	)

	s.notify(ctx, *appt, contact)
	return appt, nil
}

func (s *AppointmentService) patientContact(ctx context.Context, p domain.Principal) (string, error) {
	patient, err := s.patients.GetByUserID(ctx, p.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.ErrMissingContact
		}
		return "", err
	}
	contact := strings.TrimSpace(patient.Email)
	if contact == "" {
		contact = strings.TrimSpace(p.Email)
	}
	if contact == "" {
		return "", domain.ErrMissingContact
	}
	return contact, nil
}

func (s *AppointmentService) notify(ctx context.Context, appt domain.Appointment, contact string) {
	if s.notifier == nil {
		return
	}
	notice, err := domain.NewAppointmentNotice(appt, contact)
	if err != nil {
		s.logger.Error("cannot build appointment notice",
			slog.Int64("appointment_id", appt.ID),
			slog.String("error", err.Error()),
		)
		return
	}

	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notifyTimeout)
	defer cancel()
	if failed := s.notifier.Dispatch(nctx, notification.EventAppointmentCreated, notice); failed > 0 {
		s.logger.Warn("appointment stored but some notifications failed",
			slog.Int64("appointment_id", appt.ID),
			slog.Int("failed", failed),
		)
	}
}

// List returns the appointments visible to p. Admins see everything, or
// the appointments of one patient when patientUserID is set.
func (s *AppointmentService) List(ctx context.Context, p domain.Principal, patientUserID int64) ([]domain.AppointmentView, error) {
	switch p.Role {
	case domain.RolePatient:
		return s.listByPatient(ctx, p.UserID)
	case domain.RoleDoctor:
		return s.ListForDoctor(ctx, p.UserID)
	case domain.RoleAdmin:
		if patientUserID > 0 {
			return s.listByPatient(ctx, patientUserID)
		}
		return cache.Fetch(ctx, s.cache, cache.Appointments.All(), func(ctx context.Context) ([]domain.AppointmentView, error) {
			return s.appointments.List(ctx, domain.AppointmentFilter{})
		})
	}
	return nil, domain.ErrForbidden
}

// ListForDoctor returns the appointments assigned to a doctor
func (s *AppointmentService) ListForDoctor(ctx context.Context, doctorUserID int64) ([]domain.AppointmentView, error) {
	return cache.Fetch(ctx, s.cache, cache.AppointmentsByDoctor(doctorUserID), func(ctx context.Context) ([]domain.AppointmentView, error) {
		return s.appointments.List(ctx, domain.AppointmentFilter{DoctorUserID: doctorUserID})
	})
}

func (s *AppointmentService) listByPatient(ctx context.Context, patientUserID int64) ([]domain.AppointmentView, error) {
	return cache.Fetch(ctx, s.cache, cache.AppointmentsByPatient(patientUserID), func(ctx context.Context) ([]domain.AppointmentView, error) {
		return s.appointments.List(ctx, domain.AppointmentFilter{PatientUserID: patientUserID})
	})
}

// Get returns one appointment if p may read it
func (s *AppointmentService) Get(ctx context.Context, p domain.Principal, id int64) (*domain.Appointment, error) {
	appt, err := cache.Fetch(ctx, s.cache, cache.Appointments.ID(id), func(ctx context.Context) (*domain.Appointment, error) {
		return s.appointments.GetByID(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	if err := s.ownership.ValidateAppointmentAccess(p, appt, security.ActionRead); err != nil {
		return nil, err
	}
	return appt, nil
}

// Update reschedules an appointment. Ownership is checked against the
// stored row, never against a cached snapshot.
func (s *AppointmentService) Update(ctx context.Context, p domain.Principal, id int64, in AppointmentUpdate) (*domain.Appointment, error) {
	appt, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ownership.ValidateAppointmentAccess(p, appt, security.ActionWrite); err != nil {
		return nil, err
	}
	at, reason, err := in.parse()
	if err != nil {
		return nil, err
	}

	appt.ScheduledAt = at
	appt.Reason = reason
	if err := s.appointments.Update(ctx, appt); err != nil {
		return nil, err
	}
	s.cache.InvalidateAll(ctx, cache.Appointments)
	s.logger.Info("appointment rescheduled",
		slog.Int64("appointment_id", id),
		slog.Int64("by_user_id", p.UserID),
	)
	return appt, nil
}

// Delete cancels an appointment
func (s *AppointmentService) Delete(ctx context.Context, p domain.Principal, id int64) error {
	appt, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.ownership.ValidateAppointmentAccess(p, appt, security.ActionDelete); err != nil {
		return err
	}
	if err := s.appointments.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.InvalidateAll(ctx, cache.Appointments)
	s.logger.Info("appointment deleted",
		slog.Int64("appointment_id", id),
		slog.Int64("by_user_id", p.UserID),
	)
	return nil
}
