package notification

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/aryan0dhankhar/citas/internal/domain"
	"github.com/aryan0dhankhar/citas/internal/observability/metrics"
)

// Event names something observers can react to
type Event string

// EventAppointmentCreated fires after an appointment row is stored
const EventAppointmentCreated Event = "appointment.created"

// Handler reacts to an event. Returned errors are logged, never propagated.
type Handler func(ctx context.Context, notice *domain.AppointmentNotice) error

// HandlerID identifies one registration
type HandlerID uint64

// Observer is a named reaction to created appointments. Implementations
// must be comparable (pointer receivers) so they can be unregistered.
type Observer interface {
	Name() string
	Notify(ctx context.Context, notice *domain.AppointmentNotice) error
}

type registration struct {
	id       HandlerID
	name     string
	observer Observer
	fn       Handler
}

// Dispatcher maps events to an ordered list of handlers. It is safe for
// concurrent use; registrations made during a dispatch apply to the next one.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[Event][]registration
	nextID   HandlerID
	logger   *slog.Logger
	tracer   trace.Tracer
}

// NewDispatcher creates an empty dispatcher
func NewDispatcher(logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		handlers: map[Event][]registration{},
		logger:   logger,
		tracer:   otel.Tracer("github.com/aryan0dhankhar/citas/internal/notification"),
	}
}

// Register appends fn to the handlers of event. Registering the same
// function twice runs it twice.
func (d *Dispatcher) Register(event Event, fn Handler) HandlerID {
	return d.add(event, registration{fn: fn})
}

// RegisterObserver subscribes o to EventAppointmentCreated
func (d *Dispatcher) RegisterObserver(o Observer) HandlerID {
	return d.add(EventAppointmentCreated, registration{name: o.Name(), observer: o, fn: o.Notify})
}

func (d *Dispatcher) add(event Event, reg registration) HandlerID {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextID++
	reg.id = d.nextID
	if reg.name == "" {
		reg.name = fmt.Sprintf("handler-%d", reg.id)
	}
	d.handlers[event] = append(d.handlers[event], reg)
	return reg.id
}

// Unregister removes one registration and reports whether it existed
func (d *Dispatcher) Unregister(event Event, id HandlerID) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	regs := d.handlers[event]
	for i, reg := range regs {
		if reg.id == id {
			d.handlers[event] = append(regs[:i:i], regs[i+1:]...)
			return true
		}
	}
	return false
}

// UnregisterObserver removes every registration of o, compared by identity,
// and returns how many were removed.
func (d *Dispatcher) UnregisterObserver(o Observer) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	regs := d.handlers[EventAppointmentCreated]
	kept := make([]registration, 0, len(regs))
	for _, reg := range regs {
		if reg.observer != nil && reg.observer == o {
			continue
		}
		kept = append(kept, reg)
	}
	d.handlers[EventAppointmentCreated] = kept
	return len(regs) - len(kept)
}

// Len returns the number of handlers registered for event
func (d *Dispatcher) Len(event Event) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.handlers[event])
}

// Dispatch runs every handler of event in registration order. A handler
// that fails or panics is logged and counted; the rest still run.
// Dispatch returns the number of handlers that failed.
func (d *Dispatcher) Dispatch(ctx context.Context, event Event, notice *domain.AppointmentNotice) int {
	d.mu.RLock()
	regs := append([]registration(nil), d.handlers[event]...)
	d.mu.RUnlock()

	ctx, span := d.tracer.Start(ctx, "notification.dispatch", trace.WithAttributes(
		attribute.String("event", string(event)),
		attribute.Int("handlers", len(regs)),
		attribute.Int64("appointment_id", notice.Appointment.ID),
	))
	defer span.End()

	failed := 0
	for _, reg := range regs {
		if err := d.invoke(ctx, reg, notice); err != nil {
			failed++
			span.RecordError(err)
			metrics.ObserveNotification(reg.name, "error")
			d.logger.Error("notification handler failed",
				slog.String("event", string(event)),
				slog.String("handler", reg.name),
				slog.Int64("appointment_id", notice.Appointment.ID),
				slog.String("error", err.Error()),
			)
			continue
		}
		metrics.ObserveNotification(reg.name, "ok")
	}
	if failed > 0 {
		span.SetStatus(codes.Error, fmt.Sprintf("%d handlers failed", failed))
	}
	return failed
}

func (d *Dispatcher) invoke(ctx context.Context, reg registration, notice *domain.AppointmentNotice) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("handler panicked: %v", p)
		}
	}()
	return reg.fn(ctx, notice)
}
