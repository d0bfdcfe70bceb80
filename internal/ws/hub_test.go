package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/tableside/api/internal/model"
	"github.com/tableside/api/internal/store"
)

// mockClient creates a client for testing without a real WebSocket connection
func mockClient(hub *Hub, room string) *Client {
	return &Client{
		hub:  hub,
		room: room,
		send: make(chan []byte, 256),
	}
}

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)
	return hub
}

func TestHubRegistration(t *testing.T) {
	hub := startHub(t)
	client := mockClient(hub, StaffRoom)

	hub.register <- client
	time.Sleep(10 * time.Millisecond)

	hub.mu.RLock()
	defer hub.mu.RUnlock()

	if !hub.rooms[StaffRoom][client] {
		t.Fatal("client not registered in staff room")
	}
}

func TestHubCleanupEmptyRoom(t *testing.T) {
	hub := startHub(t)
	room := TableRoom(4)
	client1 := mockClient(hub, room)
	client2 := mockClient(hub, room)

	hub.register <- client1
	hub.register <- client2
	time.Sleep(10 * time.Millisecond)

	if n := hub.RoomSize(room); n != 2 {
		t.Fatalf("expected 2 clients, got %d", n)
	}

	hub.unregister <- client1
	time.Sleep(10 * time.Millisecond)
	if n := hub.RoomSize(room); n != 1 {
		t.Fatalf("expected 1 client after first unregister, got %d", n)
	}

	hub.unregister <- client2
	time.Sleep(10 * time.Millisecond)

	hub.mu.RLock()
	defer hub.mu.RUnlock()
	if hub.rooms[room] != nil {
		t.Fatal("room should be deleted when last client unregisters")
	}
}

func TestBroadcastToRoomIsolation(t *testing.T) {
	hub := startHub(t)

	clients := map[string][]*Client{
		StaffRoom:    {mockClient(hub, StaffRoom), mockClient(hub, StaffRoom)},
		TableRoom(1): {mockClient(hub, TableRoom(1))},
		TableRoom(2): {mockClient(hub, TableRoom(2))},
	}
	for _, list := range clients {
		for _, c := range list {
			hub.register <- c
		}
	}
	time.Sleep(10 * time.Millisecond)

	payload := json.RawMessage(`{"table_number":2}`)
	hub.BroadcastToRoom(TableRoom(2), Event{Type: EventTableOrder, Payload: payload})

	for room, list := range clients {
		for i, c := range list {
			select {
			case msg := <-c.send:
				if room != TableRoom(2) {
					t.Fatalf("%s client %d should not receive message", room, i)
				}
				var received Event
				if err := json.Unmarshal(msg, &received); err != nil {
					t.Fatalf("unmarshal error: %v", err)
				}
				if received.Type != EventTableOrder || string(received.Payload) != string(payload) {
					t.Errorf("unexpected event: %+v", received)
				}
			case <-time.After(50 * time.Millisecond):
				if room == TableRoom(2) {
					t.Fatalf("table 2 client %d should have received message", i)
				}
			}
		}
	}
}

func TestHubDropsSlowClient(t *testing.T) {
	hub := startHub(t)
	slow := &Client{hub: hub, room: StaffRoom, send: make(chan []byte, 1)}
	hub.register <- slow
	time.Sleep(10 * time.Millisecond)

	for range 3 {
		hub.BroadcastToRoom(StaffRoom, Event{Type: EventStaffSnapshot, Payload: json.RawMessage(`{}`)})
	}
	time.Sleep(20 * time.Millisecond)

	if hub.RoomSize(StaffRoom) != 0 {
		t.Error("slow client should have been removed")
	}
}

func TestHubStopClosesClients(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	client := mockClient(hub, StaffRoom)
	hub.register <- client
	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case _, ok := <-client.send:
		if ok {
			t.Fatal("expected closed channel")
		}
	case <-time.After(time.Second):
		t.Fatal("send channel not closed on stop")
	}

	// Broadcasting after stop must not block.
	hub.BroadcastToRoom(StaffRoom, Event{Type: EventStaffSnapshot})
}

func TestBroadcaster_OnSnapshot(t *testing.T) {
	hub := startHub(t)
	staff := mockClient(hub, StaffRoom)
	table5 := mockClient(hub, TableRoom(5))
	hub.register <- staff
	hub.register <- table5
	time.Sleep(10 * time.Millisecond)

	now := time.Date(2025, 3, 14, 19, 0, 0, 0, time.UTC)
	b := NewBroadcaster(hub, 20)
	b.now = func() time.Time { return now }

	orderID := uuid.New()
	b.OnSnapshot(store.Snapshot{Orders: []model.Order{
		{ID: orderID, TableNumber: 5, Status: "pending", PaymentStatus: "pending", Total: decimal.NewFromInt(250), CreatedAt: now, Items: []model.OrderItem{}},
		{ID: uuid.New(), TableNumber: 8, Status: "completed", PaymentStatus: "paid", Total: decimal.NewFromInt(90), CreatedAt: now, Items: []model.OrderItem{}},
	}})

	select {
	case msg := <-staff.send:
		var e Event
		_ = json.Unmarshal(msg, &e)
		var view StaffView
		if err := json.Unmarshal(e.Payload, &view); err != nil {
			t.Fatalf("decode staff view: %v", err)
		}
		if e.Type != EventStaffSnapshot || len(view.Orders) != 1 || view.Stats.Pending != 1 || len(view.Tables) != 20 {
			t.Errorf("unexpected staff view: %+v", view)
		}
		if !view.Tables[4].Occupied || view.Tables[7].Occupied {
			t.Errorf("unexpected occupancy: %+v", view.Tables)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("staff room received nothing")
	}

	select {
	case msg := <-table5.send:
		var e Event
		_ = json.Unmarshal(msg, &e)
		var view TableView
		if err := json.Unmarshal(e.Payload, &view); err != nil {
			t.Fatalf("decode table view: %v", err)
		}
		if view.TableNumber != 5 || view.Order == nil || view.Order.ID != orderID {
			t.Errorf("unexpected table view: %+v", view)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("table room received nothing")
	}
}

func TestServeWS_SendsInitialMessage(t *testing.T) {
	hub := startHub(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		initial, _ := NewEvent(EventTableOrder, TableView{TableNumber: 3})
		ServeWS(hub, TableRoom(3), initial, w, r)
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(time.Second))
	var e Event
	if err := conn.ReadJSON(&e); err != nil {
		t.Fatalf("read initial: %v", err)
	}
	if e.Type != EventTableOrder || !strings.Contains(string(e.Payload), `"table_number":3`) {
		t.Errorf("unexpected initial message: %+v", e)
	}

	hub.BroadcastToRoom(TableRoom(3), Event{Type: EventTableOrder, Payload: json.RawMessage(`{"table_number":3,"order":null}`)})
	if err := conn.ReadJSON(&e); err != nil {
		t.Fatalf("read broadcast: %v", err)
	}
	if string(e.Payload) != `{"table_number":3,"order":null}` {
		t.Errorf("unexpected broadcast payload: %s", e.Payload)
	}
}
