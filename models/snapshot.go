package models

// Snapshot is a point-in-time copy of the three raw collections a dashboard renders from.
type Snapshot struct {
	Orders        []Order
	KitchenTokens []KitchenToken
	Bills         []Bill
}
