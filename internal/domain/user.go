package domain

import "time"

// Role is fixed when the user row is created
type Role string

const (
	RolePatient Role = "PATIENT"
	RoleDoctor  Role = "DOCTOR"
	RoleAdmin   Role = "ADMIN"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RolePatient, RoleDoctor, RoleAdmin:
		return true
	}
	return false
}

// User represents one login identity
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Patient is the profile owned by a PATIENT user
type Patient struct {
	UserID     int64  `json:"user_id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	Surname    string `json:"surname"`
	Birthdate  string `json:"birthdate,omitempty"` // YYYY-MM-DD
	Address    string `json:"address,omitempty"`
	Phone      string `json:"phone,omitempty"`
	NationalID string `json:"national_id,omitempty"`
}

// Doctor is the profile owned by a DOCTOR user
type Doctor struct {
	UserID        int64  `json:"user_id"`
	Email         string `json:"email"`
	Name          string `json:"name"`
	Surname       string `json:"surname"`
	SpecialtyID   *int64 `json:"specialty_id,omitempty"`
	SpecialtyName string `json:"specialty,omitempty"`
	Phone         string `json:"phone,omitempty"`
}

// Admin is the profile owned by an ADMIN user
type Admin struct {
	UserID  int64  `json:"user_id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Surname string `json:"surname"`
}

// Specialty is a medical specialty doctors belong to
type Specialty struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Principal is the authenticated caller extracted from a token
type Principal struct {
	UserID int64
	Role   Role
	Email  string
}

// AccountChange carries optional user-row updates made together with a
// profile update. Empty fields are left unchanged.
type AccountChange struct {
	Email        string
	PasswordHash string
}
