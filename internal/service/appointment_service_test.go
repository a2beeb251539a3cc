package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aryan0dhankhar/citas/internal/domain"
	"github.com/aryan0dhankhar/citas/internal/notification"
	"github.com/aryan0dhankhar/citas/internal/repository/memory"
	"github.com/aryan0dhankhar/citas/pkg/cache"
)

type captureSender struct {
	sent []notification.Message
	err  error
}

func (s *captureSender) Send(_ context.Context, msg notification.Message) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

type apptFixture struct {
	store   *memory.Store
	appts   *countingAppointments
	backend *cache.Memory
	svc     *AppointmentService
	sender  *captureSender
	patient domain.Principal
	other   domain.Principal
	doctor  domain.Principal
	admin   domain.Principal
}

func newApptFixture(t *testing.T) *apptFixture {
	t.Helper()
	store := memory.NewStore()
	backend := cache.NewMemory()
	layer := cache.NewLayer(backend, 0, nil)
	ctx := context.Background()

	p1, err := store.Patients().Create(ctx, &domain.User{Email: "p1@example.com", Role: domain.RolePatient}, &domain.Patient{Name: "Pat", Surname: "One"})
	if err != nil {
		t.Fatal(err)
	}
	d, _ := store.Doctors().Create(ctx, &domain.User{Email: "doc@example.com", Role: domain.RoleDoctor}, &domain.Doctor{Name: "Doc", Surname: "Two"})
	p2, _ := store.Patients().Create(ctx, &domain.User{Email: "p2@example.com", Role: domain.RolePatient}, &domain.Patient{Name: "Pat", Surname: "Three"})
	admin, _ := store.Admins().Create(ctx, &domain.User{Email: "admin@example.com", Role: domain.RoleAdmin}, &domain.Admin{Name: "Ad", Surname: "Min"})
	store.SetNextAppointmentID(42)

	sender := &captureSender{}
	dispatcher := notification.NewDispatcher(nil)
	dispatcher.RegisterObserver(notification.NewEmailObserver(sender, nil))

	appts := &countingAppointments{AppointmentRepository: store.Appointments()}
	svc := NewAppointmentService(appts, store.Patients(), store.Doctors(), layer, dispatcher, nil, 0, nil)
	return &apptFixture{
		store:   store,
		appts:   appts,
		backend: backend,
		svc:     svc,
		sender:  sender,
		patient: domain.Principal{UserID: p1, Role: domain.RolePatient, Email: "p1@example.com"},
		other:   domain.Principal{UserID: p2, Role: domain.RolePatient, Email: "p2@example.com"},
		doctor:  domain.Principal{UserID: d, Role: domain.RoleDoctor, Email: "doc@example.com"},
		admin:   domain.Principal{UserID: admin, Role: domain.RoleAdmin, Email: "admin@example.com"},
	}
}

func (f *apptFixture) input(kind string) AppointmentInput {
	return AppointmentInput{
		DoctorUserID: f.doctor.UserID,
		ScheduledAt:  "2025-03-01T10:00:00Z",
		Reason:       "chest pain",
		Type:         kind,
	}
}

func TestCreateUrgentAppointmentEndToEnd(t *testing.T) {
	f := newApptFixture(t)
	ctx := context.Background()

	// warm the aggregate and per-patient lists
	if _, err := f.svc.List(ctx, f.admin, 0); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.List(ctx, f.patient, 0); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{cache.Appointments.All(), cache.AppointmentsByPatient(f.patient.UserID)} {
		if _, err := f.backend.Get(ctx, key); err != nil {
			t.Fatalf("expected %s cached before create: %v", key, err)
		}
	}

	appt, err := f.svc.Create(ctx, f.patient, f.input("URGENT"))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if appt.ID != 42 || appt.Kind != domain.KindUrgent {
		t.Fatalf("unexpected appointment: %+v", appt)
	}

	for _, key := range []string{cache.Appointments.All(), cache.AppointmentsByPatient(f.patient.UserID)} {
		if _, err := f.backend.Get(ctx, key); !errors.Is(err, cache.ErrMiss) {
			t.Fatalf("%s survived create: %v", key, err)
		}
	}

	if len(f.sender.sent) != 1 {
		t.Fatalf("expected one email, got %d", len(f.sender.sent))
	}
	msg := f.sender.sent[0]
	if msg.To != "p1@example.com" {
		t.Fatalf("email sent to %q", msg.To)
	}
	if msg.Subject != "Confirmación de Cita Médica" {
		t.Fatalf("subject = %q", msg.Subject)
	}
	for _, want := range []string{"01/03/2025 10:00", "chest pain", "URGENT:", "Urgency: Alta"} {
		if !strings.Contains(msg.Body, want) {
			t.Fatalf("body missing %q:\n%s", want, msg.Body)
		}
	}

	list, err := f.svc.List(ctx, f.patient, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].ID != 42 || list[0].DoctorName != "Doc Two" {
		t.Fatalf("unexpected list after create: %+v", list)
	}
}

func TestCreateRejectsUnknownKindBeforeInsert(t *testing.T) {
	f := newApptFixture(t)
	for _, kind := range []string{"", "urgent", "ROUTINE"} {
		_, err := f.svc.Create(context.Background(), f.patient, f.input(kind))
		if !errors.Is(err, domain.ErrInvalidAppointmentType) {
			t.Fatalf("kind %q: expected invalid type, got %v", kind, err)
		}
	}
	if _, n := f.store.Counts(); n != 0 {
		t.Fatal("appointment stored for invalid kind")
	}
	if len(f.sender.sent) != 0 {
		t.Fatal("notification sent for invalid kind")
	}
}

func TestCreateWithoutContactLeavesNoRow(t *testing.T) {
	f := newApptFixture(t)
	f.store.SetEmail(f.patient.UserID, "")
	p := f.patient
	p.Email = ""

	_, err := f.svc.Create(context.Background(), p, f.input("GENERAL"))
	if !errors.Is(err, domain.ErrMissingContact) {
		t.Fatalf("expected missing contact, got %v", err)
	}
	if _, n := f.store.Counts(); n != 0 {
		t.Fatal("appointment stored without contact")
	}
}

func TestCreateSucceedsWhenEmailFails(t *testing.T) {
	f := newApptFixture(t)
	f.sender.err = errors.New("smtp unreachable")

	appt, err := f.svc.Create(context.Background(), f.patient, f.input("GENERAL"))
	if err != nil {
		t.Fatalf("mail failure leaked into create: %v", err)
	}
	if _, err := f.store.Appointments().GetByID(context.Background(), appt.ID); err != nil {
		t.Fatalf("appointment not stored: %v", err)
	}
}

func TestCreateValidatesInput(t *testing.T) {
	f := newApptFixture(t)
	ctx := context.Background()

	in := f.input("GENERAL")
	in.ScheduledAt = "tomorrow"
	if _, err := f.svc.Create(ctx, f.patient, in); !domain.IsValidation(err) {
		t.Fatalf("bad date: %v", err)
	}
	in = f.input("GENERAL")
	in.DoctorUserID = 999
	if _, err := f.svc.Create(ctx, f.patient, in); !domain.IsValidation(err) {
		t.Fatalf("unknown doctor: %v", err)
	}
	if _, err := f.svc.Create(ctx, f.doctor, f.input("GENERAL")); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("doctor booking: %v", err)
	}
}

func TestAppointmentOwnership(t *testing.T) {
	f := newApptFixture(t)
	ctx := context.Background()
	appt, err := f.svc.Create(ctx, f.patient, f.input("GENERAL"))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := f.svc.Get(ctx, f.doctor, appt.ID); err != nil {
		t.Fatalf("assigned doctor read: %v", err)
	}
	if _, err := f.svc.Get(ctx, f.other, appt.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("other patient read: %v", err)
	}

	upd := AppointmentUpdate{ScheduledAt: "2025-04-01T09:00:00Z", Reason: "follow-up"}
	if _, err := f.svc.Update(ctx, f.doctor, appt.ID, upd); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("doctor update: %v", err)
	}
	if _, err := f.svc.Update(ctx, f.other, appt.ID, upd); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("other patient update: %v", err)
	}
	if err := f.svc.Delete(ctx, f.doctor, appt.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("doctor delete: %v", err)
	}
	if err := f.svc.Delete(ctx, f.other, appt.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("other patient delete: %v", err)
	}

	got, err := f.svc.Update(ctx, f.patient, appt.ID, upd)
	if err != nil {
		t.Fatalf("owner update: %v", err)
	}
	if got.Reason != "follow-up" || !got.ScheduledAt.Equal(time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)) {
		t.Fatalf("update not applied: %+v", got)
	}
	if got.Kind != domain.KindGeneral || got.DoctorUserID != f.doctor.UserID {
		t.Fatalf("reschedule changed fixed fields: %+v", got)
	}

	upd.Reason = "annual check"
	if _, err := f.svc.Update(ctx, f.admin, appt.ID, upd); err != nil {
		t.Fatalf("admin update: %v", err)
	}
	read, err := f.svc.Get(ctx, f.admin, appt.ID)
	if err != nil {
		t.Fatal(err)
	}
	if read.Reason != "annual check" {
		t.Fatalf("stale snapshot after update: %+v", read)
	}
	if len(f.sender.sent) != 1 {
		t.Fatalf("reschedule sent mail: %d messages", len(f.sender.sent))
	}

	if err := f.svc.Delete(ctx, f.admin, appt.ID); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
	if _, err := f.svc.Get(ctx, f.admin, appt.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestUpdateValidatesOnlyScheduleAndReason(t *testing.T) {
	f := newApptFixture(t)
	ctx := context.Background()
	appt, err := f.svc.Create(ctx, f.patient, f.input("URGENT"))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := f.svc.Update(ctx, f.patient, appt.ID, AppointmentUpdate{ScheduledAt: "soon", Reason: "x"}); !domain.IsValidation(err) {
		t.Fatalf("bad date: %v", err)
	}
	if _, err := f.svc.Update(ctx, f.patient, appt.ID, AppointmentUpdate{ScheduledAt: "2025-04-01T09:00", Reason: "  "}); !domain.IsValidation(err) {
		t.Fatalf("blank reason: %v", err)
	}
	got, err := f.svc.Update(ctx, f.patient, appt.ID, AppointmentUpdate{ScheduledAt: "2025-04-01T09:00", Reason: "pain gone"})
	if err != nil {
		t.Fatalf("reschedule without doctor: %v", err)
	}
	if got.Kind != domain.KindUrgent {
		t.Fatalf("kind = %s", got.Kind)
	}
	if _, err := f.svc.Update(ctx, f.patient, 999, AppointmentUpdate{ScheduledAt: "2025-04-01T09:00", Reason: "x"}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing appointment: %v", err)
	}
}

func TestListIsScopedByRole(t *testing.T) {
	f := newApptFixture(t)
	ctx := context.Background()
	if _, err := f.svc.Create(ctx, f.patient, f.input("GENERAL")); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.Create(ctx, f.other, f.input("URGENT")); err != nil {
		t.Fatal(err)
	}

	mine, _ := f.svc.List(ctx, f.patient, 0)
	if len(mine) != 1 || mine[0].PatientUserID != f.patient.UserID {
		t.Fatalf("patient list: %+v", mine)
	}
	assigned, _ := f.svc.ListForDoctor(ctx, f.doctor.UserID)
	if len(assigned) != 2 {
		t.Fatalf("doctor list: %+v", assigned)
	}
	all, _ := f.svc.List(ctx, f.admin, 0)
	if len(all) != 2 {
		t.Fatalf("admin list: %+v", all)
	}
	filtered, _ := f.svc.List(ctx, f.admin, f.other.UserID)
	if len(filtered) != 1 || filtered[0].PatientUserID != f.other.UserID {
		t.Fatalf("admin filtered list: %+v", filtered)
	}

	loads := f.appts.lists.Load()
	if _, err := f.svc.List(ctx, f.admin, 0); err != nil {
		t.Fatal(err)
	}
	if f.appts.lists.Load() != loads {
		t.Fatal("admin list not served from cache")
	}
}
