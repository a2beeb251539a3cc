package domain

import "context"

// UserRepository defines data access for login identities. Deleting a user
// cascades to its profile and appointments.
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	EmailTaken(ctx context.Context, email string, exceptUserID int64) (bool, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	ListCredentials(ctx context.Context) ([]User, error)
	Delete(ctx context.Context, id int64) error
}

// PatientRepository creates and updates the user row and profile together
type PatientRepository interface {
	Create(ctx context.Context, user *User, p *Patient) (int64, error)
	GetByUserID(ctx context.Context, userID int64) (*Patient, error)
	List(ctx context.Context) ([]Patient, error)
	Update(ctx context.Context, p *Patient, change AccountChange) error
}

// DoctorRepository creates and updates the user row and profile together
type DoctorRepository interface {
	Create(ctx context.Context, user *User, d *Doctor) (int64, error)
	GetByUserID(ctx context.Context, userID int64) (*Doctor, error)
	List(ctx context.Context) ([]Doctor, error)
	Update(ctx context.Context, d *Doctor, change AccountChange) error
}

// AdminRepository creates and updates the user row and profile together
type AdminRepository interface {
	Create(ctx context.Context, user *User, a *Admin) (int64, error)
	GetByUserID(ctx context.Context, userID int64) (*Admin, error)
	List(ctx context.Context) ([]Admin, error)
	Update(ctx context.Context, a *Admin, change AccountChange) error
}

// SpecialtyRepository defines data access for specialties
type SpecialtyRepository interface {
	Create(ctx context.Context, name string) (*Specialty, error)
	GetByID(ctx context.Context, id int64) (*Specialty, error)
	List(ctx context.Context) ([]Specialty, error)
	Update(ctx context.Context, s *Specialty) error
	Delete(ctx context.Context, id int64) error
}

// AppointmentRepository defines data access for appointments
type AppointmentRepository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id int64) (*Appointment, error)
	List(ctx context.Context, filter AppointmentFilter) ([]AppointmentView, error)
	Update(ctx context.Context, a *Appointment) error
	Delete(ctx context.Context, id int64) error
}
