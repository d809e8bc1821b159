package models

// OrderStatus is one stage of the fixed order lifecycle.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusPreparing OrderStatus = "preparing"
	StatusReady     OrderStatus = "ready"
	StatusCompleted OrderStatus = "completed"
	StatusDelivered OrderStatus = "delivered"
	StatusBilled    OrderStatus = "billed"
)

// StatusFlow is the lifecycle in order; an order only ever moves right.
var StatusFlow = []OrderStatus{
	StatusPending,
	StatusPreparing,
	StatusReady,
	StatusCompleted,
	StatusDelivered,
	StatusBilled,
}

func (s OrderStatus) Valid() bool {
	for _, st := range StatusFlow {
		if st == s {
			return true
		}
	}
	return false
}

// IsActive -> masih dikerjakan (pending, preparing, ready)
func (s OrderStatus) IsActive() bool {
	return s == StatusPending || s == StatusPreparing || s == StatusReady
}

// IsCompleted -> sudah selesai (completed, delivered, billed)
func (s OrderStatus) IsCompleted() bool {
	return s == StatusCompleted || s == StatusDelivered || s == StatusBilled
}

// IsKitchenRelevant reports whether the kitchen token should follow this status.
func (s OrderStatus) IsKitchenRelevant() bool {
	return s == StatusPreparing || s == StatusReady || s == StatusCompleted
}

// IsBillable -> order boleh dibuatkan bill
func (s OrderStatus) IsBillable() bool {
	return s == StatusCompleted || s == StatusDelivered || s == StatusBilled
}

type OrderSource string

const (
	SourceManual    OrderSource = "manual"
	SourcePhone     OrderSource = "phone"
	SourceWhatsApp  OrderSource = "whatsapp"
	SourceZomato    OrderSource = "zomato"
	SourceSwiggy    OrderSource = "swiggy"
	SourceAI        OrderSource = "ai"
	SourceSimulator OrderSource = "simulator"
)

var orderSources = []OrderSource{
	SourceManual, SourcePhone, SourceWhatsApp, SourceZomato, SourceSwiggy, SourceAI, SourceSimulator,
}

func (s OrderSource) Valid() bool {
	for _, src := range orderSources {
		if src == s {
			return true
		}
	}
	return false
}
