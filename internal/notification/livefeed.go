package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/aryan0dhankhar/citas/internal/domain"
	"github.com/aryan0dhankhar/citas/internal/observability/metrics"
)

const (
	feedSendBuffer   = 16
	feedWriteTimeout = 5 * time.Second
	feedPingInterval = 15 * time.Second
)

// FeedEvent is the JSON frame pushed to doctors
type FeedEvent struct {
	Type        string             `json:"type"`
	Appointment domain.Appointment `json:"appointment"`
	Urgency     domain.Urgency     `json:"urgency"`
	Details     string             `json:"details"`
}

type feedClient struct {
	conn *websocket.Conn
	send chan []byte
}

// LiveFeed pushes created appointments to the websocket connections of the
// assigned doctor.
type LiveFeed struct {
	mu      sync.Mutex
	clients map[int64]map[*feedClient]struct{}
	logger  *slog.Logger
}

// NewLiveFeed creates an empty feed
func NewLiveFeed(logger *slog.Logger) *LiveFeed {
	if logger == nil {
		logger = slog.Default()
	}
	return &LiveFeed{clients: map[int64]map[*feedClient]struct{}{}, logger: logger}
}

// Name implements Observer
func (f *LiveFeed) Name() string { return "live_feed" }

// Notify implements Observer. Slow clients whose buffer is full miss the
// frame rather than blocking the dispatch.
func (f *LiveFeed) Notify(_ context.Context, notice *domain.AppointmentNotice) error {
	frame, err := json.Marshal(FeedEvent{
		Type:        string(EventAppointmentCreated),
		Appointment: notice.Appointment,
		Urgency:     notice.Urgency,
		Details:     notice.Details(),
	})
	if err != nil {
		return fmt.Errorf("encode feed event: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	dropped := 0
	for c := range f.clients[notice.Appointment.DoctorUserID] {
		select {
		case c.send <- frame:
		default:
			dropped++
		}
	}
	if dropped > 0 {
		return fmt.Errorf("live feed dropped frame for %d slow clients", dropped)
	}
	return nil
}

// Clients returns the number of open connections for a doctor
func (f *LiveFeed) Clients(doctorUserID int64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.clients[doctorUserID])
}

// Serve attaches an upgraded connection to a doctor and blocks until the
// peer goes away or ctx is done.
func (f *LiveFeed) Serve(ctx context.Context, conn *websocket.Conn, doctorUserID int64) {
	c := &feedClient{conn: conn, send: make(chan []byte, feedSendBuffer)}
	f.add(doctorUserID, c)
	defer f.remove(doctorUserID, c)
	defer conn.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Reads only detect closure; doctors never send frames.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					f.logger.Debug("live feed closed", slog.Int64("doctor_user_id", doctorUserID), slog.String("error", err.Error()))
				}
				return
			}
		}
	}()

	ticker := time.NewTicker(feedPingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
			return
		case frame := <-c.send:
			_ = conn.SetWriteDeadline(time.Now().Add(feedWriteTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(feedWriteTimeout)); err != nil {
				return
			}
		}
	}
}

func (f *LiveFeed) add(doctorUserID int64, c *feedClient) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.clients[doctorUserID] == nil {
		f.clients[doctorUserID] = map[*feedClient]struct{}{}
	}
	f.clients[doctorUserID][c] = struct{}{}
	metrics.LiveFeedConnected(1)
}

func (f *LiveFeed) remove(doctorUserID int64, c *feedClient) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.clients[doctorUserID], c)
	if len(f.clients[doctorUserID]) == 0 {
		delete(f.clients, doctorUserID)
	}
	metrics.LiveFeedConnected(-1)
}
