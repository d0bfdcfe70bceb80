package enum

// ── Order lifecycle (CHECK constrained in DB) ──

const (
	OrderStatusPending   = "pending"
	OrderStatusPreparing = "preparing"
	OrderStatusReady     = "ready"
	OrderStatusDelivered = "delivered"
	OrderStatusCompleted = "completed"
)

// OrderStatuses lists every order status in lifecycle order.
var OrderStatuses = []string{
	OrderStatusPending,
	OrderStatusPreparing,
	OrderStatusReady,
	OrderStatusDelivered,
	OrderStatusCompleted,
}

const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
)

const (
	PaymentMethodCash   = "cash"
	PaymentMethodOnline = "online"
)

// ── Menu ──

const (
	MenuTypeVeg    = "veg"
	MenuTypeNonVeg = "non-veg"
)

// MenuCategories is the fixed category list offered by the menu panel.
var MenuCategories = []string{
	"Sandvich",
	"Salads",
	"Burgers",
	"Bakes & Meals",
	"Choice of Pasta",
	"Pizza",
	"Extra Toppings",
	"Hearth Stone Special",
	"Soups",
	"Starters",
	"Main Course",
	"Noodles",
	"Rice",
	"Chats",
	"Subziyan",
	"Dals",
	"Breads",
	"Rice / Pulao / Biryanis / Raitas",
	"Dessert",
	"Meal For One (North Indian)",
	"South-Indian",
	"Dosas",
	"Uttapam",
	"Sweets",
	"Extra",
	"Fresh Juices",
	"Smoothies & Mocktails",
	"Ice Cream",
	"Sundaes",
	"Tea & Coffee",
	"Beverages",
}

// IsOrderStatus reports whether s is a known order status.
func IsOrderStatus(s string) bool {
	for _, v := range OrderStatuses {
		if v == s {
			return true
		}
	}
	return false
}

func IsPaymentMethod(s string) bool {
	return s == PaymentMethodCash || s == PaymentMethodOnline
}

func IsMenuType(s string) bool {
	return s == MenuTypeVeg || s == MenuTypeNonVeg
}

func IsMenuCategory(s string) bool {
	for _, c := range MenuCategories {
		if c == s {
			return true
		}
	}
	return false
}
