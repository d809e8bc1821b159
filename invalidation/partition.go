// Package invalidation turns change signals into partition refetches and
// holds the raw collections every dashboard view reads from.
package invalidation

import "github.com/yeremiapane/restaurant-dashboard/kds"

// Partition names one raw collection that is refetched as a whole.
type Partition string

const (
	PartitionOrders        Partition = "orders"
	PartitionKitchenTokens Partition = "kitchen_tokens"
	PartitionBills         Partition = "bills"
)

var AllPartitions = []Partition{PartitionOrders, PartitionKitchenTokens, PartitionBills}

// routes is the single mapping from change tag to invalidated partitions.
var routes = map[kds.EventType][]Partition{
	kds.EventOrderUpdated:        {PartitionOrders},
	kds.EventNewOrder:            {PartitionOrders},
	kds.EventKitchenTokenUpdated: {PartitionKitchenTokens},
	kds.EventNewKitchenToken:     {PartitionKitchenTokens},
	kds.EventBillUpdated:         {PartitionBills},
	kds.EventNewBill:             {PartitionBills},
}

// PartitionsFor returns the partitions a change tag invalidates.
func PartitionsFor(event kds.EventType) ([]Partition, bool) {
	parts, ok := routes[event]
	if !ok {
		return nil, false
	}
	return append([]Partition(nil), parts...), true
}
