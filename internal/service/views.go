package service

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tableside/api/internal/enum"
	"github.com/tableside/api/internal/model"
)

// Filter values accepted by FilterOrders besides the order statuses.
const FilterAll = "all"

// TableStatus is the derived occupancy of one table.
type TableStatus struct {
	Number       int          `json:"number"`
	Occupied     bool         `json:"occupied"`
	ActiveOrders int          `json:"active_orders"`
	CurrentOrder *model.Order `json:"current_order"`
}

// DeriveTableOccupancy reports tables 1..tableCount. A table is occupied when
// it has at least one order that is not completed. When several are active
// (the one-per-table rule is advisory) the newest is the current order and
// ActiveOrders shows the count.
func DeriveTableOccupancy(orders []model.Order, tableCount int) []TableStatus {
	tables := make([]TableStatus, tableCount)
	for i := range tables {
		tables[i].Number = i + 1
	}
	for i := range orders {
		o := &orders[i]
		if o.Status == enum.OrderStatusCompleted || o.TableNumber < 1 || o.TableNumber > tableCount {
			continue
		}
		t := &tables[o.TableNumber-1]
		t.Occupied = true
		t.ActiveOrders++
		if t.CurrentOrder == nil || o.CreatedAt.After(t.CurrentOrder.CreatedAt) {
			t.CurrentOrder = o
		}
	}
	return tables
}

// CurrentTableOrder returns the newest non-completed order for the table.
func CurrentTableOrder(orders []model.Order, tableNumber int) *model.Order {
	var current *model.Order
	for i := range orders {
		o := &orders[i]
		if o.TableNumber != tableNumber || o.Status == enum.OrderStatusCompleted {
			continue
		}
		if current == nil || o.CreatedAt.After(current.CreatedAt) {
			current = o
		}
	}
	return current
}

type Stats struct {
	TotalActive    int             `json:"total_active"`
	Pending        int             `json:"pending"`
	Preparing      int             `json:"preparing"`
	Ready          int             `json:"ready"`
	Delivered      int             `json:"delivered"`
	PaymentPending int             `json:"payment_pending"`
	TotalRevenue   decimal.Decimal `json:"total_revenue"`
	TodayRevenue   decimal.Decimal `json:"today_revenue"`
}

// ComputeStats aggregates the staff dashboard counters. "Today" is now's
// calendar date in now's location.
func ComputeStats(orders []model.Order, now time.Time) Stats {
	st := Stats{TotalRevenue: decimal.Zero, TodayRevenue: decimal.Zero}
	for _, o := range orders {
		switch o.Status {
		case enum.OrderStatusPending:
			st.Pending++
		case enum.OrderStatusPreparing:
			st.Preparing++
		case enum.OrderStatusReady:
			st.Ready++
		case enum.OrderStatusDelivered:
			st.Delivered++
			if o.PaymentStatus == enum.PaymentStatusPending {
				st.PaymentPending++
			}
		}
		if o.Status != enum.OrderStatusCompleted {
			st.TotalActive++
		}
		if o.PaymentStatus == enum.PaymentStatusPaid {
			st.TotalRevenue = st.TotalRevenue.Add(o.Total)
			if sameDay(o.CreatedAt, now) {
				st.TodayRevenue = st.TodayRevenue.Add(o.Total)
			}
		}
	}
	return st
}

// FilterOrders applies the staff dashboard filter. "" and "all" select every
// non-completed order; a status name selects that status only.
func FilterOrders(orders []model.Order, filter string) ([]model.Order, error) {
	if filter != "" && filter != FilterAll && !enum.IsOrderStatus(filter) {
		return nil, &ValidationError{Field: "status", Message: fmt.Sprintf("unknown filter %q", filter)}
	}
	out := []model.Order{}
	for _, o := range orders {
		switch filter {
		case "", FilterAll:
			if o.Status != enum.OrderStatusCompleted {
				out = append(out, o)
			}
		default:
			if o.Status == filter {
				out = append(out, o)
			}
		}
	}
	return out, nil
}

// RecentlyCompleted lists completed orders created within window before now.
func RecentlyCompleted(orders []model.Order, now time.Time, window time.Duration) []model.Order {
	cutoff := now.Add(-window)
	out := []model.Order{}
	for _, o := range orders {
		if o.Status == enum.OrderStatusCompleted && !o.CreatedAt.Before(cutoff) {
			out = append(out, o)
		}
	}
	return out
}

type HourlyRevenue struct {
	Hour    int             `json:"hour"`
	Revenue decimal.Decimal `json:"revenue"`
	Orders  int             `json:"orders"`
}

type CategoryBreakdown struct {
	Category string          `json:"category"`
	Revenue  decimal.Decimal `json:"revenue"`
	Quantity int             `json:"quantity"`
}

type Analytics struct {
	TodayRevenue      decimal.Decimal     `json:"today_revenue"`
	TodayOrders       int                 `json:"today_orders"`
	AverageOrderValue decimal.Decimal     `json:"average_order_value"`
	Hourly            []HourlyRevenue     `json:"hourly"`
	Categories        []CategoryBreakdown `json:"categories"`
}

const uncategorized = "Uncategorized"

// Analyze builds the analytics view. Hourly covers today's paid orders and
// lists only hours that had any; categories cover every order item, with
// items whose menu entry was deleted counted as uncategorized.
func Analyze(orders []model.Order, now time.Time) Analytics {
	a := Analytics{
		TodayRevenue:      decimal.Zero,
		AverageOrderValue: decimal.Zero,
		Hourly:            []HourlyRevenue{},
		Categories:        []CategoryBreakdown{},
	}

	completedSum := decimal.Zero
	completed := 0
	hours := make(map[int]*HourlyRevenue)
	categories := make(map[string]*CategoryBreakdown)

	for _, o := range orders {
		today := sameDay(o.CreatedAt, now)
		if today {
			a.TodayOrders++
		}
		if o.Status == enum.OrderStatusCompleted {
			completedSum = completedSum.Add(o.Total)
			completed++
		}
		if o.PaymentStatus == enum.PaymentStatusPaid && today {
			a.TodayRevenue = a.TodayRevenue.Add(o.Total)
			h := o.CreatedAt.In(now.Location()).Hour()
			bucket, ok := hours[h]
			if !ok {
				bucket = &HourlyRevenue{Hour: h, Revenue: decimal.Zero}
				hours[h] = bucket
			}
			bucket.Revenue = bucket.Revenue.Add(o.Total)
			bucket.Orders++
		}
		for _, it := range o.Items {
			name := it.Category()
			if name == "" {
				name = uncategorized
			}
			c, ok := categories[name]
			if !ok {
				c = &CategoryBreakdown{Category: name, Revenue: decimal.Zero}
				categories[name] = c
			}
			c.Revenue = c.Revenue.Add(it.LineTotal())
			c.Quantity += it.Quantity
		}
	}

	if completed > 0 {
		a.AverageOrderValue = completedSum.Div(decimal.NewFromInt(int64(completed))).Round(2)
	}
	for _, h := range hours {
		a.Hourly = append(a.Hourly, *h)
	}
	sort.Slice(a.Hourly, func(i, j int) bool { return a.Hourly[i].Hour < a.Hourly[j].Hour })
	for _, c := range categories {
		a.Categories = append(a.Categories, *c)
	}
	sort.Slice(a.Categories, func(i, j int) bool {
		if cmp := a.Categories[i].Revenue.Cmp(a.Categories[j].Revenue); cmp != 0 {
			return cmp > 0
		}
		return a.Categories[i].Category < a.Categories[j].Category
	})
	return a
}

func sameDay(t, now time.Time) bool {
	ty, tm, td := t.In(now.Location()).Date()
	ny, nm, nd := now.Date()
	return ty == ny && tm == nm && td == nd
}
