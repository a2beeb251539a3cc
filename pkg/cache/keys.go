package cache

import "strconv"

// Collection is the key prefix shared by every entry derived from one
// entity table.
type Collection string

const (
	Doctors      Collection = "medicos"
	Patients     Collection = "pacientes"
	Admins       Collection = "administradores"
	Specialties  Collection = "especialidades"
	Appointments Collection = "citas"
)

// All returns the aggregate list key, e.g. "medicos:all"
func (c Collection) All() string {
	return string(c) + ":all"
}

// ID returns the per-entity key, e.g. "citas:id:42"
func (c Collection) ID(id int64) string {
	return string(c) + ":id:" + strconv.FormatInt(id, 10)
}

// Prefix matches every key of the collection
func (c Collection) Prefix() string {
	return string(c) + ":"
}

// AppointmentsByPatient is the list key for one patient's appointments
func AppointmentsByPatient(patientUserID int64) string {
	return string(Appointments) + ":paciente:" + strconv.FormatInt(patientUserID, 10)
}

// AppointmentsByDoctor is the list key for one doctor's appointments
func AppointmentsByDoctor(doctorUserID int64) string {
	return string(Appointments) + ":medico:" + strconv.FormatInt(doctorUserID, 10)
}
