package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/aryan0dhankhar/citas/internal/observability/metrics"
	"github.com/aryan0dhankhar/citas/internal/security"
	"github.com/aryan0dhankhar/citas/internal/security/audit"
	"github.com/aryan0dhankhar/citas/internal/security/auth"
	"github.com/aryan0dhankhar/citas/internal/security/middleware"
	"github.com/aryan0dhankhar/citas/internal/security/ratelimit"
)

// RouterConfig wires handlers and the access control gate into one mux
type RouterConfig struct {
	Auth         *AuthHandler
	Patients     *PatientHandler
	Doctors      *DoctorHandler
	Admins       *AdminHandler
	Specialties  *SpecialtyHandler
	Appointments *AppointmentHandler
	Health       *HealthHandler
	// LiveFeed is optional; nil leaves /ws/appointments unrouted
	LiveFeed *LiveFeedHandler

	Tokens         *auth.TokenManager
	Authz          *security.AuthorizationService
	Audit          *audit.Logger
	LoginLimiter   *ratelimit.Limiter
	AllowedOrigins []string
	Logger         *slog.Logger
}

// NewRouter builds the HTTP surface. Request metrics wrap the mux directly
// so the matched pattern is available as the route label.
func NewRouter(cfg RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	if cfg.Authz == nil {
		cfg.Authz = security.NewAuthorizationService(log)
	}
	if cfg.Audit == nil {
		cfg.Audit = audit.NewLogger(log)
	}

	authn := middleware.Authenticate(cfg.Tokens, log)
	authed := func(h http.HandlerFunc) http.Handler {
		return authn(middleware.Audit(cfg.Audit)(h))
	}
	protect := func(perm security.Permission, h http.HandlerFunc) http.Handler {
		return authed(middleware.RequirePermission(cfg.Authz, cfg.Audit, perm)(h).ServeHTTP)
	}

	mux := http.NewServeMux()

	login := http.Handler(http.HandlerFunc(cfg.Auth.Login))
	if cfg.LoginLimiter != nil {
		login = middleware.RateLimit(cfg.LoginLimiter, log)(login)
	}
	mux.Handle("POST /api/login", login)
	mux.Handle("POST /api/patients/register", middleware.Audit(cfg.Audit)(http.HandlerFunc(cfg.Auth.RegisterPatient)))
	mux.Handle("POST /api/auth/change-password", authed(cfg.Auth.ChangePassword))

	mux.Handle("GET /api/patients", protect(security.PermManagePatients, cfg.Patients.List))
	mux.Handle("GET /api/patients/{id}", protect(security.PermManagePatients, cfg.Patients.Get))
	mux.Handle("PUT /api/patients/{id}", protect(security.PermManagePatients, cfg.Patients.Update))
	mux.Handle("DELETE /api/patients/{id}", protect(security.PermManagePatients, cfg.Patients.Delete))

	mux.Handle("POST /api/doctors", protect(security.PermManageDoctors, cfg.Doctors.Create))
	mux.Handle("GET /api/doctors", protect(security.PermListDoctors, cfg.Doctors.List))
	mux.Handle("GET /api/doctors/me/appointments", protect(security.PermViewAssignedAppointments, cfg.Doctors.MyAppointments))
	mux.Handle("GET /api/doctors/{id}", protect(security.PermReadDoctor, cfg.Doctors.Get))
	mux.Handle("PUT /api/doctors/{id}", protect(security.PermManageDoctors, cfg.Doctors.Update))
	mux.Handle("DELETE /api/doctors/{id}", protect(security.PermManageDoctors, cfg.Doctors.Delete))

	mux.Handle("POST /api/admins", protect(security.PermManageAdmins, cfg.Admins.Create))
	mux.Handle("GET /api/admins", protect(security.PermManageAdmins, cfg.Admins.List))
	mux.Handle("GET /api/admins/{id}", protect(security.PermManageAdmins, cfg.Admins.Get))
	mux.Handle("PUT /api/admins/{id}", protect(security.PermManageAdmins, cfg.Admins.Update))
	mux.Handle("DELETE /api/admins/{id}", protect(security.PermManageAdmins, cfg.Admins.Delete))

	mux.Handle("GET /api/specialties", protect(security.PermListSpecialties, cfg.Specialties.List))
	mux.Handle("POST /api/specialties", protect(security.PermManageSpecialties, cfg.Specialties.Create))
	mux.Handle("PUT /api/specialties/{id}", protect(security.PermManageSpecialties, cfg.Specialties.Update))
	mux.Handle("DELETE /api/specialties/{id}", protect(security.PermManageSpecialties, cfg.Specialties.Delete))

	mux.Handle("POST /api/appointments", protect(security.PermBookAppointment, cfg.Appointments.Create))
	mux.Handle("GET /api/appointments", protect(security.PermListAppointments, cfg.Appointments.List))
	mux.Handle("GET /api/appointments/{id}", protect(security.PermReadAppointment, cfg.Appointments.Get))
	mux.Handle("PUT /api/appointments/{id}", protect(security.PermModifyAppointment, cfg.Appointments.Update))
	mux.Handle("DELETE /api/appointments/{id}", protect(security.PermModifyAppointment, cfg.Appointments.Delete))

	if cfg.LiveFeed != nil {
		mux.Handle("GET /ws/appointments", authn(middleware.RequirePermission(cfg.Authz, cfg.Audit, security.PermViewLiveFeed)(cfg.LiveFeed)))
	}

	if cfg.Health != nil {
		mux.HandleFunc("GET /healthz", cfg.Health.Health)
		mux.HandleFunc("GET /readyz", cfg.Health.Ready)
	}
	mux.Handle("GET /metrics", promhttp.Handler())

	var h http.Handler = metrics.HTTPMetricsMiddleware(mux)
	h = middleware.ValidateJSONContentType(log)(h)
	h = middleware.CORS(cfg.AllowedOrigins)(h)
	h = middleware.Logging(log)(h)
	h = middleware.RequestID(h)
	return otelhttp.NewHandler(h, "citas",
		otelhttp.WithFilter(traced),
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
}

// traced skips probes, scrapes and long-lived websocket streams
func traced(r *http.Request) bool {
	switch r.URL.Path {
	case "/healthz", "/readyz", "/metrics":
		return false
	}
	return !strings.HasPrefix(r.URL.Path, "/ws/")
}
