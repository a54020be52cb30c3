package models

// -----------------------------------------------------------------------------
// Resource identifies one synchronized resource kind.
// The set is closed: snapshots, topics and refetch bindings are all derived
// from these constants at startup.
// -----------------------------------------------------------------------------

type Resource string

const (
	ResMenuItems             Resource = "menu_items"
	ResOrders                Resource = "orders"
	ResBills                 Resource = "bills"
	ResCustomers             Resource = "customers"
	ResStaff                 Resource = "staff"
	ResSettings              Resource = "settings"
	ResExpenses              Resource = "expenses"
	ResWaiterCalls           Resource = "waiter_calls"
	ResTransactions          Resource = "transactions"
	ResCategories            Resource = "categories"
	ResInventoryItems        Resource = "inventory_items"
	ResInventoryTransactions Resource = "inventory_transactions"
	ResPortionOptions        Resource = "portion_options"
	ResItemPortionPrices     Resource = "item_portion_prices"
	ResLowStockItems         Resource = "low_stock_items"
)

// AllResources lists every snapshot kind held by the store (15).
var AllResources = []Resource{
	ResMenuItems,
	ResOrders,
	ResBills,
	ResCustomers,
	ResStaff,
	ResSettings,
	ResExpenses,
	ResWaiterCalls,
	ResTransactions,
	ResCategories,
	ResInventoryItems,
	ResInventoryTransactions,
	ResPortionOptions,
	ResItemPortionPrices,
	ResLowStockItems,
}

// -----------------------------------------------------------------------------

// Topics lists the watched change topics (13). Low-stock items and
// item-portion prices have no channel of their own: they are derived tables
// refetched through the inventory_items and portion_options bindings.
var Topics = []Resource{
	ResMenuItems,
	ResOrders,
	ResBills,
	ResCustomers,
	ResStaff,
	ResSettings,
	ResExpenses,
	ResWaiterCalls,
	ResTransactions,
	ResCategories,
	ResInventoryItems,
	ResInventoryTransactions,
	ResPortionOptions,
}

// topicIndex maps a topic to its slot in fixed per-topic tables.
var topicIndex = func() map[Resource]int {
	m := make(map[Resource]int, len(Topics))
	for i, t := range Topics {
		m[t] = i
	}
	return m
}()

// TopicIndex returns the fixed table slot for a topic, or -1 for resources
// that are not watched topics.
func TopicIndex(r Resource) int {
	if i, ok := topicIndex[r]; ok {
		return i
	}
	return -1
}

// NumTopics is the size of per-topic tables (timer slots, refetch bindings).
const NumTopics = 13
