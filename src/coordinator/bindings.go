package coordinator

import (
	"context"
	"errors"

	"pos-sync/src/interfaces"
	"pos-sync/src/models"
	"pos-sync/src/store"
)

// -----------------------------------------------------------------------------
// Fetch bindings: for every resource kind, one fetch-and-store step used by
// the bulk load, and for every topic, one (possibly compound) refetch
// action used by the router. Both tables are built once at startup.
// -----------------------------------------------------------------------------

// loadStep couples a resource with its fetch-and-store action and a clear
// action for the fail-soft path (empty snapshot on fetch failure).
type loadStep struct {
	resource models.Resource
	fetch    func(ctx context.Context) error
	clear    func()
}

// Refetch is a no-argument refetch action bound to one topic.
type Refetch func(ctx context.Context) error

// -----------------------------------------------------------------------------

// buildLoadSteps returns one step per snapshot kind (15).
func buildLoadSteps(b interfaces.IBackend, st *store.Store) []loadStep {
	return []loadStep{
		{
			resource: models.ResMenuItems,
			fetch: func(ctx context.Context) error {
				rows, err := b.FetchMenuItems(ctx)
				if err != nil {
					return err
				}
				st.SetMenuItems(rows)
				return nil
			},
			clear: func() { st.SetMenuItems([]models.MMenuItem{}) },
		},
		{
			resource: models.ResOrders,
			fetch: func(ctx context.Context) error {
				rows, err := b.FetchOrders(ctx)
				if err != nil {
					return err
				}
				st.SetOrders(rows)
				return nil
			},
			clear: func() { st.SetOrders([]models.MOrder{}) },
		},
		{
			resource: models.ResBills,
			fetch: func(ctx context.Context) error {
				rows, err := b.FetchBills(ctx)
				if err != nil {
					return err
				}
				st.SetBills(rows)
				return nil
			},
			clear: func() { st.SetBills([]models.MBill{}) },
		},
		{
			resource: models.ResCustomers,
			fetch: func(ctx context.Context) error {
				rows, err := b.FetchCustomers(ctx)
				if err != nil {
					return err
				}
				st.SetCustomers(rows)
				return nil
			},
			clear: func() { st.SetCustomers([]models.MCustomer{}) },
		},
		{
			resource: models.ResStaff,
			fetch: func(ctx context.Context) error {
				rows, err := b.FetchStaff(ctx)
				if err != nil {
					return err
				}
				st.SetStaff(rows)
				return nil
			},
			clear: func() { st.SetStaff([]models.MStaff{}) },
		},
		{
			resource: models.ResSettings,
			fetch: func(ctx context.Context) error {
				rows, err := b.FetchSettings(ctx)
				if err != nil {
					return err
				}
				st.SetSettings(rows)
				return nil
			},
			clear: func() { st.SetSettings([]models.MSettings{}) },
		},
		{
			resource: models.ResExpenses,
			fetch: func(ctx context.Context) error {
				rows, err := b.FetchExpenses(ctx)
				if err != nil {
					return err
				}
				st.SetExpenses(rows)
				return nil
			},
			clear: func() { st.SetExpenses([]models.MExpense{}) },
		},
		{
			resource: models.ResWaiterCalls,
			fetch: func(ctx context.Context) error {
				rows, err := b.FetchWaiterCalls(ctx)
				if err != nil {
					return err
				}
				st.SetWaiterCalls(rows)
				return nil
			},
			clear: func() { st.SetWaiterCalls([]models.MWaiterCall{}) },
		},
		{
			resource: models.ResTransactions,
			fetch: func(ctx context.Context) error {
				rows, err := b.FetchTransactions(ctx)
				if err != nil {
					return err
				}
				st.SetTransactions(rows)
				return nil
			},
			clear: func() { st.SetTransactions([]models.MTransaction{}) },
		},
		{
			resource: models.ResCategories,
			fetch: func(ctx context.Context) error {
				rows, err := b.FetchCategories(ctx)
				if err != nil {
					return err
				}
				st.SetCategories(rows)
				return nil
			},
			clear: func() { st.SetCategories([]models.MCategory{}) },
		},
		{
			resource: models.ResInventoryItems,
			fetch: func(ctx context.Context) error {
				rows, err := b.FetchInventoryItems(ctx)
				if err != nil {
					return err
				}
				st.SetInventoryItems(rows)
				return nil
			},
			clear: func() { st.SetInventoryItems([]models.MInventoryItem{}) },
		},
		{
			resource: models.ResInventoryTransactions,
			fetch: func(ctx context.Context) error {
				rows, err := b.FetchInventoryTransactions(ctx)
				if err != nil {
					return err
				}
				st.SetInventoryTransactions(rows)
				return nil
			},
			clear: func() { st.SetInventoryTransactions([]models.MInventoryTransaction{}) },
		},
		{
			resource: models.ResPortionOptions,
			fetch: func(ctx context.Context) error {
				rows, err := b.FetchPortionOptions(ctx)
				if err != nil {
					return err
				}
				st.SetPortionOptions(rows)
				return nil
			},
			clear: func() { st.SetPortionOptions([]models.MPortionOption{}) },
		},
		{
			resource: models.ResItemPortionPrices,
			fetch: func(ctx context.Context) error {
				rows, err := b.FetchItemPortionPrices(ctx)
				if err != nil {
					return err
				}
				st.SetItemPortionPrices(rows)
				return nil
			},
			clear: func() { st.SetItemPortionPrices([]models.MItemPortionPrice{}) },
		},
		{
			resource: models.ResLowStockItems,
			fetch: func(ctx context.Context) error {
				rows, err := b.FetchLowStockItems(ctx)
				if err != nil {
					return err
				}
				st.SetLowStockItems(rows)
				return nil
			},
			clear: func() { st.SetLowStockItems([]models.MLowStockItem{}) },
		},
	}
}

// -----------------------------------------------------------------------------

// buildRefetchTable returns the per-topic refetch actions, indexed by
// models.TopicIndex. Compound topics fan one change event out to several
// snapshot fetches:
//
//	bills           -> bills + transactions
//	inventory_items -> inventory items + low-stock view
//	portion_options -> portion options + item-portion prices
//
// The compositions are fixed here, not re-derived per event.
func buildRefetchTable(steps []loadStep) [models.NumTopics]Refetch {
	fetchOf := make(map[models.Resource]func(context.Context) error, len(steps))
	for _, s := range steps {
		fetchOf[s.resource] = s.fetch
	}

	compounds := map[models.Resource][]models.Resource{
		models.ResBills:          {models.ResBills, models.ResTransactions},
		models.ResInventoryItems: {models.ResInventoryItems, models.ResLowStockItems},
		models.ResPortionOptions: {models.ResPortionOptions, models.ResItemPortionPrices},
	}

	var table [models.NumTopics]Refetch
	for _, topic := range models.Topics {
		targets, ok := compounds[topic]
		if !ok {
			targets = []models.Resource{topic}
		}

		fetches := make([]func(context.Context) error, 0, len(targets))
		for _, t := range targets {
			fetches = append(fetches, fetchOf[t])
		}

		table[models.TopicIndex(topic)] = func(ctx context.Context) error {
			var errs []error
			for _, fetch := range fetches {
				if err := fetch(ctx); err != nil {
					errs = append(errs, err)
				}
			}
			return errors.Join(errs...)
		}
	}
	return table
}
