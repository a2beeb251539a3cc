package notification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/aryan0dhankhar/citas/internal/domain"
)

func TestLiveFeedPushesToAssignedDoctor(t *testing.T) {
	feed := NewLiveFeed(nil)
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		feed.Serve(r.Context(), conn, 2)
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for feed.Clients(2) == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("client never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	other := testNotice(t)
	other.Appointment.DoctorUserID = 99
	if err := feed.Notify(context.Background(), other); err != nil {
		t.Fatalf("notify other doctor: %v", err)
	}
	if err := feed.Notify(context.Background(), testNotice(t)); err != nil {
		t.Fatalf("notify: %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var ev FeedEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		t.Fatal(err)
	}
	if ev.Appointment.ID != 42 || ev.Appointment.DoctorUserID != 2 || ev.Urgency != domain.UrgencyHigh {
		t.Fatalf("unexpected frame %+v", ev)
	}
}

func TestLiveFeedWithoutClientsIsNoop(t *testing.T) {
	feed := NewLiveFeed(nil)
	if err := feed.Notify(context.Background(), testNotice(t)); err != nil {
		t.Fatalf("expected no error without clients, got %v", err)
	}
}
