package ws

import (
	"encoding/json"
	"log"
	"time"

	"github.com/tableside/api/internal/model"
	"github.com/tableside/api/internal/service"
	"github.com/tableside/api/internal/store"
)

const (
	EventStaffSnapshot = "staff.snapshot"
	EventTableOrder    = "table.order"
)

// StaffView is what the staff dashboard renders: active orders, counters
// and occupancy.
type StaffView struct {
	Orders []model.Order         `json:"orders"`
	Stats  service.Stats         `json:"stats"`
	Tables []service.TableStatus `json:"tables"`
}

// TableView is the current order of one table, nil when the table is free.
type TableView struct {
	TableNumber int          `json:"table_number"`
	Order       *model.Order `json:"order"`
}

func NewEvent(eventType string, payload any) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{Type: eventType, Payload: raw}, nil
}

// Broadcaster pushes store snapshots to connected dashboards and tables.
// Register OnSnapshot as a store listener.
type Broadcaster struct {
	hub        *Hub
	tableCount int
	now        func() time.Time
}

func NewBroadcaster(hub *Hub, tableCount int) *Broadcaster {
	return &Broadcaster{hub: hub, tableCount: tableCount, now: time.Now}
}

func (b *Broadcaster) StaffEvent(snap store.Snapshot) (Event, error) {
	active, err := service.FilterOrders(snap.Orders, service.FilterAll)
	if err != nil {
		return Event{}, err
	}
	return NewEvent(EventStaffSnapshot, StaffView{
		Orders: active,
		Stats:  service.ComputeStats(snap.Orders, b.now()),
		Tables: service.DeriveTableOccupancy(snap.Orders, b.tableCount),
	})
}

func (b *Broadcaster) TableEvent(snap store.Snapshot, tableNumber int) (Event, error) {
	return NewEvent(EventTableOrder, TableView{
		TableNumber: tableNumber,
		Order:       service.CurrentTableOrder(snap.Orders, tableNumber),
	})
}

// OnSnapshot fans snap out to the staff room and to every table room that
// has someone listening.
func (b *Broadcaster) OnSnapshot(snap store.Snapshot) {
	if b.hub.RoomSize(StaffRoom) > 0 {
		if e, err := b.StaffEvent(snap); err != nil {
			log.Printf("ERROR: build staff snapshot: %v", err)
		} else {
			b.hub.BroadcastToRoom(StaffRoom, e)
		}
	}

	for table := 1; table <= b.tableCount; table++ {
		room := TableRoom(table)
		if b.hub.RoomSize(room) == 0 {
			continue
		}
		e, err := b.TableEvent(snap, table)
		if err != nil {
			log.Printf("ERROR: build table %d snapshot: %v", table, err)
			continue
		}
		b.hub.BroadcastToRoom(room, e)
	}
}
