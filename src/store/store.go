package store

import (
	"sync"

	"pos-sync/src/logger"
	"pos-sync/src/models"
)

// -----------------------------------------------------------------------------
// Store is the process-wide snapshot store: one full, current slice per
// resource kind, a load flag, and change listeners. Writers are the
// coordinator (initial load), refetch actions (topic-scoped) and the
// auto-cancel sweeper (order-status-scoped); everything else reads only.
// Snapshots are replaced wholesale, never mutated in place, so readers can
// hold a returned slice without locking.
// -----------------------------------------------------------------------------

type Listener func(models.Resource)

type Store struct {
	Logger *logger.Logger

	mu sync.RWMutex

	menuItems             []models.MMenuItem
	orders                []models.MOrder
	bills                 []models.MBill
	customers             []models.MCustomer
	staff                 []models.MStaff
	settings              []models.MSettings
	expenses              []models.MExpense
	waiterCalls           []models.MWaiterCall
	transactions          []models.MTransaction
	categories            []models.MCategory
	inventoryItems        []models.MInventoryItem
	inventoryTransactions []models.MInventoryTransaction
	portionOptions        []models.MPortionOption
	itemPortionPrices     []models.MItemPortionPrice
	lowStockItems         []models.MLowStockItem

	loaded  bool
	loadErr string
	closed  bool

	listeners []Listener
}

// -----------------------------------------------------------------------------

func NewStore(log *logger.Logger) *Store {
	return &Store{Logger: log}
}

// -----------------------------------------------------------------------------
// Lifecycle
// -----------------------------------------------------------------------------

// Close marks the store torn down. Late writes from in-flight fetches
// become no-ops; the results are simply discarded.
func (s *Store) Close() {
	s.mu.Lock()
	s.closed = true
	s.listeners = nil
	s.mu.Unlock()
}

// -----------------------------------------------------------------------------

// Subscribe registers a listener invoked after every snapshot write with
// the resource that changed. Listeners run on the writer's goroutine,
// outside the store lock, and must not block.
func (s *Store) Subscribe(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.listeners = append(s.listeners, l)
}

// -----------------------------------------------------------------------------

// notify fans a change out to listeners. Called without the lock held so a
// listener may read the store.
func (s *Store) notify(r models.Resource) {
	s.mu.RLock()
	listeners := make([]Listener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.RUnlock()

	for _, l := range listeners {
		l(r)
	}
}

// -----------------------------------------------------------------------------
// Load state
// -----------------------------------------------------------------------------

func (s *Store) SetLoaded(loaded bool) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.loaded = loaded
	if loaded {
		s.loadErr = ""
	}
	s.mu.Unlock()
}

func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

func (s *Store) SetLoadError(msg string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.loadErr = msg
	s.mu.Unlock()
}

func (s *Store) LoadError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadErr
}

// -----------------------------------------------------------------------------
// Snapshot setters. Each replaces the whole slice and notifies listeners.
// -----------------------------------------------------------------------------

func (s *Store) replace(r models.Resource, write func()) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	write()
	s.mu.Unlock()

	s.notify(r)
}

func (s *Store) SetMenuItems(v []models.MMenuItem) {
	s.replace(models.ResMenuItems, func() { s.menuItems = v })
}

func (s *Store) SetOrders(v []models.MOrder) {
	s.replace(models.ResOrders, func() { s.orders = v })
}

func (s *Store) SetBills(v []models.MBill) {
	s.replace(models.ResBills, func() { s.bills = v })
}

func (s *Store) SetCustomers(v []models.MCustomer) {
	s.replace(models.ResCustomers, func() { s.customers = v })
}

func (s *Store) SetStaff(v []models.MStaff) {
	s.replace(models.ResStaff, func() { s.staff = v })
}

func (s *Store) SetSettings(v []models.MSettings) {
	s.replace(models.ResSettings, func() { s.settings = v })
}

func (s *Store) SetExpenses(v []models.MExpense) {
	s.replace(models.ResExpenses, func() { s.expenses = v })
}

func (s *Store) SetWaiterCalls(v []models.MWaiterCall) {
	s.replace(models.ResWaiterCalls, func() { s.waiterCalls = v })
}

func (s *Store) SetTransactions(v []models.MTransaction) {
	s.replace(models.ResTransactions, func() { s.transactions = v })
}

func (s *Store) SetCategories(v []models.MCategory) {
	s.replace(models.ResCategories, func() { s.categories = v })
}

func (s *Store) SetInventoryItems(v []models.MInventoryItem) {
	s.replace(models.ResInventoryItems, func() { s.inventoryItems = v })
}

func (s *Store) SetInventoryTransactions(v []models.MInventoryTransaction) {
	s.replace(models.ResInventoryTransactions, func() { s.inventoryTransactions = v })
}

func (s *Store) SetPortionOptions(v []models.MPortionOption) {
	s.replace(models.ResPortionOptions, func() { s.portionOptions = v })
}

func (s *Store) SetItemPortionPrices(v []models.MItemPortionPrice) {
	s.replace(models.ResItemPortionPrices, func() { s.itemPortionPrices = v })
}

func (s *Store) SetLowStockItems(v []models.MLowStockItem) {
	s.replace(models.ResLowStockItems, func() { s.lowStockItems = v })
}

// -----------------------------------------------------------------------------
// Read accessors
// -----------------------------------------------------------------------------

func (s *Store) MenuItems() []models.MMenuItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.menuItems
}

func (s *Store) Orders() []models.MOrder {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.orders
}

func (s *Store) Bills() []models.MBill {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bills
}

func (s *Store) Customers() []models.MCustomer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.customers
}

func (s *Store) Staff() []models.MStaff {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.staff
}

func (s *Store) Settings() []models.MSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

func (s *Store) Expenses() []models.MExpense {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expenses
}

func (s *Store) WaiterCalls() []models.MWaiterCall {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.waiterCalls
}

func (s *Store) Transactions() []models.MTransaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.transactions
}

func (s *Store) Categories() []models.MCategory {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.categories
}

func (s *Store) InventoryItems() []models.MInventoryItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inventoryItems
}

func (s *Store) InventoryTransactions() []models.MInventoryTransaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inventoryTransactions
}

func (s *Store) PortionOptions() []models.MPortionOption {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.portionOptions
}

func (s *Store) ItemPortionPrices() []models.MItemPortionPrice {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.itemPortionPrices
}

func (s *Store) LowStockItems() []models.MLowStockItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lowStockItems
}

// -----------------------------------------------------------------------------
// Scoped order write (auto-cancel sweeper)
// -----------------------------------------------------------------------------

// UpdateOrderStatus transitions one order to a new status. The orders
// snapshot is rebuilt rather than patched so readers never observe a
// partial update. Returns false when the order is absent or already in the
// requested status (idempotent no-op).
func (s *Store) UpdateOrderStatus(orderID string, status models.OrderStatus) bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}

	changed := false
	next := make([]models.MOrder, len(s.orders))
	for i, o := range s.orders {
		if o.ID == orderID && o.Status != status {
			o.Status = status
			changed = true
		}
		next[i] = o
	}
	if changed {
		s.orders = next
	}
	s.mu.Unlock()

	if changed {
		s.notify(models.ResOrders)
	}
	return changed
}
