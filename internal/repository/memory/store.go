// Package memory is a process-local entity store implementing the domain
// repositories. It mirrors the PostgreSQL schema rules that callers rely
// on: unique emails, cascading user deletes and the specialty foreign key.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/aryan0dhankhar/citas/internal/domain"
)

// Store holds every entity behind one mutex so multi-row writes are atomic
type Store struct {
	mu           sync.Mutex
	now          func() time.Time
	nextUser     int64
	nextSpec     int64
	nextAppt     int64
	users        map[int64]domain.User
	patients     map[int64]domain.Patient
	doctors      map[int64]domain.Doctor
	admins       map[int64]domain.Admin
	specialties  map[int64]domain.Specialty
	appointments map[int64]domain.Appointment
}

// NewStore returns an empty store
func NewStore() *Store {
	return &Store{
		now:          time.Now,
		users:        map[int64]domain.User{},
		patients:     map[int64]domain.Patient{},
		doctors:      map[int64]domain.Doctor{},
		admins:       map[int64]domain.Admin{},
		specialties:  map[int64]domain.Specialty{},
		appointments: map[int64]domain.Appointment{},
	}
}

// SetNextAppointmentID makes the next created appointment receive id
func (s *Store) SetNextAppointmentID(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextAppt = id - 1
}

// SetEmail overwrites a stored address without validation
func (s *Store) SetEmail(userID int64, email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[userID]; ok {
		u.Email = email
		s.users[userID] = u
	}
}

// Counts reports the number of users and appointments
func (s *Store) Counts() (users, appointments int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users), len(s.appointments)
}

func (s *Store) Users() domain.UserRepository               { return userRepo{s} }
func (s *Store) Patients() domain.PatientRepository         { return patientRepo{s} }
func (s *Store) Doctors() domain.DoctorRepository           { return doctorRepo{s} }
func (s *Store) Admins() domain.AdminRepository             { return adminRepo{s} }
func (s *Store) Specialties() domain.SpecialtyRepository    { return specialtyRepo{s} }
func (s *Store) Appointments() domain.AppointmentRepository { return appointmentRepo{s} }

func (s *Store) emailTaken(email string, except int64) bool {
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) && u.ID != except {
			return true
		}
	}
	return false
}

func (s *Store) insertUser(u *domain.User) (int64, error) {
	if s.emailTaken(u.Email, 0) {
		return 0, domain.ErrDuplicateEmail
	}
	s.nextUser++
	u.ID = s.nextUser
	u.CreatedAt = s.now()
	s.users[u.ID] = *u
	return u.ID, nil
}

func (s *Store) applyChange(userID int64, change domain.AccountChange) error {
	u := s.users[userID]
	if change.Email != "" {
		if s.emailTaken(change.Email, userID) {
			return domain.ErrDuplicateEmail
		}
		u.Email = change.Email
	}
	if change.PasswordHash != "" {
		u.PasswordHash = change.PasswordHash
	}
	s.users[userID] = u
	return nil
}

func (s *Store) checkSpecialty(id *int64) error {
	if id == nil {
		return nil
	}
	if _, ok := s.specialties[*id]; !ok {
		return domain.NewValidationError("specialty_id", "references a missing row")
	}
	return nil
}

type userRepo struct{ s *Store }

func (r userRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (r userRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r userRepo) EmailTaken(_ context.Context, email string, exceptUserID int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.emailTaken(email, exceptUserID), nil
}

func (r userRepo) UpdatePassword(_ context.Context, id int64, hash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.PasswordHash = hash
	r.s.users[id] = u
	return nil
}

func (r userRepo) ListCredentials(_ context.Context) ([]domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]domain.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r userRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.users, id)
	delete(r.s.patients, id)
	delete(r.s.doctors, id)
	delete(r.s.admins, id)
	for aid, a := range r.s.appointments {
		if a.PatientUserID == id || a.DoctorUserID == id {
			delete(r.s.appointments, aid)
		}
	}
	return nil
}

type patientRepo struct{ s *Store }

func (r patientRepo) Create(_ context.Context, u *domain.User, p *domain.Patient) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	id, err := r.s.insertUser(u)
	if err != nil {
		return 0, err
	}
	p.UserID = id
	p.Email = u.Email
	r.s.patients[id] = *p
	return id, nil
}

func (r patientRepo) view(p domain.Patient) domain.Patient {
	p.Email = r.s.users[p.UserID].Email
	return p
}

func (r patientRepo) GetByUserID(_ context.Context, id int64) (*domain.Patient, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.patients[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	p = r.view(p)
	return &p, nil
}

func (r patientRepo) List(_ context.Context) ([]domain.Patient, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]domain.Patient, 0, len(r.s.patients))
	for _, p := range r.s.patients {
		out = append(out, r.view(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (r patientRepo) Update(_ context.Context, p *domain.Patient, change domain.AccountChange) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.patients[p.UserID]; !ok {
		return domain.ErrNotFound
	}
	if err := r.s.applyChange(p.UserID, change); err != nil {
		return err
	}
	r.s.patients[p.UserID] = *p
	return nil
}

type doctorRepo struct{ s *Store }

func (r doctorRepo) Create(_ context.Context, u *domain.User, d *domain.Doctor) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.checkSpecialty(d.SpecialtyID); err != nil {
		return 0, err
	}
	id, err := r.s.insertUser(u)
	if err != nil {
		return 0, err
	}
	d.UserID = id
	r.s.doctors[id] = *d
	return id, nil
}

func (r doctorRepo) view(d domain.Doctor) domain.Doctor {
	d.Email = r.s.users[d.UserID].Email
	d.SpecialtyName = ""
	if d.SpecialtyID != nil {
		d.SpecialtyName = r.s.specialties[*d.SpecialtyID].Name
	}
	return d
}

func (r doctorRepo) GetByUserID(_ context.Context, id int64) (*domain.Doctor, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.doctors[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	d = r.view(d)
	return &d, nil
}

func (r doctorRepo) List(_ context.Context) ([]domain.Doctor, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]domain.Doctor, 0, len(r.s.doctors))
	for _, d := range r.s.doctors {
		out = append(out, r.view(d))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (r doctorRepo) Update(_ context.Context, d *domain.Doctor, change domain.AccountChange) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.doctors[d.UserID]; !ok {
		return domain.ErrNotFound
	}
	if err := r.s.checkSpecialty(d.SpecialtyID); err != nil {
		return err
	}
	if err := r.s.applyChange(d.UserID, change); err != nil {
		return err
	}
	r.s.doctors[d.UserID] = *d
	return nil
}

type adminRepo struct{ s *Store }

func (r adminRepo) Create(_ context.Context, u *domain.User, a *domain.Admin) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	id, err := r.s.insertUser(u)
	if err != nil {
		return 0, err
	}
	a.UserID = id
	a.Email = u.Email
	r.s.admins[id] = *a
	return id, nil
}

func (r adminRepo) GetByUserID(_ context.Context, id int64) (*domain.Admin, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.admins[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	a.Email = r.s.users[id].Email
	return &a, nil
}

func (r adminRepo) List(_ context.Context) ([]domain.Admin, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]domain.Admin, 0, len(r.s.admins))
	for id, a := range r.s.admins {
		a.Email = r.s.users[id].Email
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (r adminRepo) Update(_ context.Context, a *domain.Admin, change domain.AccountChange) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.admins[a.UserID]; !ok {
		return domain.ErrNotFound
	}
	if err := r.s.applyChange(a.UserID, change); err != nil {
		return err
	}
	r.s.admins[a.UserID] = *a
	return nil
}

type specialtyRepo struct{ s *Store }

func (r specialtyRepo) Create(_ context.Context, name string) (*domain.Specialty, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, sp := range r.s.specialties {
		if strings.EqualFold(sp.Name, name) {
			return nil, domain.NewValidationError("name", "already exists")
		}
	}
	r.s.nextSpec++
	sp := domain.Specialty{ID: r.s.nextSpec, Name: name}
	r.s.specialties[sp.ID] = sp
	return &sp, nil
}

func (r specialtyRepo) GetByID(_ context.Context, id int64) (*domain.Specialty, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sp, ok := r.s.specialties[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &sp, nil
}

func (r specialtyRepo) List(_ context.Context) ([]domain.Specialty, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]domain.Specialty, 0, len(r.s.specialties))
	for _, sp := range r.s.specialties {
		out = append(out, sp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r specialtyRepo) Update(_ context.Context, sp *domain.Specialty) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.specialties[sp.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.specialties[sp.ID] = *sp
	return nil
}

func (r specialtyRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.specialties[id]; !ok {
		return domain.ErrNotFound
	}
	for _, d := range r.s.doctors {
		if d.SpecialtyID != nil && *d.SpecialtyID == id {
			return domain.NewValidationError("specialty", "is still assigned to doctors")
		}
	}
	delete(r.s.specialties, id)
	for aid, a := range r.s.appointments {
		if a.SpecialtyID != nil && *a.SpecialtyID == id {
			a.SpecialtyID = nil
			r.s.appointments[aid] = a
		}
	}
	return nil
}

type appointmentRepo struct{ s *Store }

func (r appointmentRepo) Create(_ context.Context, a *domain.Appointment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.patients[a.PatientUserID]; !ok {
		return domain.NewValidationError("patient_user_id", "references a missing row")
	}
	if _, ok := r.s.doctors[a.DoctorUserID]; !ok {
		return domain.NewValidationError("doctor_user_id", "references a missing row")
	}
	if err := r.s.checkSpecialty(a.SpecialtyID); err != nil {
		return err
	}
	r.s.nextAppt++
	a.ID = r.s.nextAppt
	a.CreatedAt = r.s.now()
	r.s.appointments[a.ID] = *a
	return nil
}

func (r appointmentRepo) GetByID(_ context.Context, id int64) (*domain.Appointment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.appointments[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &a, nil
}

func (r appointmentRepo) List(_ context.Context, f domain.AppointmentFilter) ([]domain.AppointmentView, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domain.AppointmentView{}
	for _, a := range r.s.appointments {
		if f.PatientUserID != 0 && a.PatientUserID != f.PatientUserID {
			continue
		}
		if f.DoctorUserID != 0 && a.DoctorUserID != f.DoctorUserID {
			continue
		}
		p := r.s.patients[a.PatientUserID]
		d := r.s.doctors[a.DoctorUserID]
		v := domain.AppointmentView{
			Appointment: a,
			PatientName: p.Name + " " + p.Surname,
			DoctorName:  d.Name + " " + d.Surname,
		}
		if a.SpecialtyID != nil {
			v.SpecialtyName = r.s.specialties[*a.SpecialtyID].Name
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ScheduledAt.Equal(out[j].ScheduledAt) {
			return out[i].ScheduledAt.Before(out[j].ScheduledAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r appointmentRepo) Update(_ context.Context, a *domain.Appointment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.appointments[a.ID]
	if !ok {
		return domain.ErrNotFound
	}
	stored.ScheduledAt = a.ScheduledAt
	stored.Reason = a.Reason
	r.s.appointments[a.ID] = stored
	return nil
}

func (r appointmentRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.appointments[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.appointments, id)
	return nil
}
