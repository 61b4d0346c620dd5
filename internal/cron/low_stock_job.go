package cron

import (
	"context"
	"fmt"

	"github.com/gang93/pos-backend/pkg/db/models"
	dbtypes "github.com/gang93/pos-backend/pkg/db/types"
	"github.com/gang93/pos-backend/pkg/logger"
	"github.com/gang93/pos-backend/pkg/metrics"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
)

const lowStockJobName = "low_stock_sweep"

type stockReader interface {
	List(ctx context.Context) ([]models.InventoryItem, error)
	ListBelow(ctx context.Context, threshold decimal.Decimal) ([]models.InventoryItem, error)
}

type catalogReader interface {
	ListMenu(ctx context.Context) ([]models.MenuItem, error)
	ListAddOns(ctx context.Context) ([]models.AddOn, error)
}

// LowStockJobParams configure the low-stock sweep.
type LowStockJobParams struct {
	Logger    *logger.Logger
	Inventory stockReader
	Catalog   catalogReader
	Metrics   *metrics.InventoryMetrics
	Threshold decimal.Decimal
}

type lowStockJob struct {
	logg      *logger.Logger
	inventory stockReader
	catalog   catalogReader
	metrics   *metrics.InventoryMetrics
	threshold decimal.Decimal
}

// NewLowStockJob builds the job that surfaces stock drift left behind by
// best-effort reconciliation: ingredients under the threshold, and recipe
// entries pointing at inventory rows that do not exist (their decrements
// silently match nothing).
func NewLowStockJob(params LowStockJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Inventory == nil {
		return nil, fmt.Errorf("inventory reader required")
	}
	if params.Catalog == nil {
		return nil, fmt.Errorf("catalog reader required")
	}
	if params.Threshold.IsNegative() {
		return nil, fmt.Errorf("low stock threshold must not be negative")
	}
	return &lowStockJob{
		logg:      params.Logger,
		inventory: params.Inventory,
		catalog:   params.Catalog,
		metrics:   params.Metrics,
		threshold: params.Threshold,
	}, nil
}

func (j *lowStockJob) Name() string { return lowStockJobName }

// Run performs both checks; a failure in one does not skip the other.
func (j *lowStockJob) Run(ctx context.Context) error {
	return multierr.Append(j.sweep(ctx), j.auditRecipes(ctx))
}

func (j *lowStockJob) sweep(ctx context.Context) error {
	items, err := j.inventory.ListBelow(ctx, j.threshold)
	if err != nil {
		return fmt.Errorf("list low stock: %w", err)
	}
	for _, item := range items {
		j.logg.Warn(j.logg.WithFields(ctx, map[string]any{
			"item_id":   item.ItemID,
			"item_name": item.ItemName,
			"quantity":  item.Quantity.String(),
			"threshold": j.threshold.String(),
		}), "inventory.low_stock")
	}
	j.metrics.SetLowStock(len(items))
	j.logg.Info(j.logg.WithField(ctx, "low_stock_items", len(items)), "inventory.low_stock_sweep")
	return nil
}

func (j *lowStockJob) auditRecipes(ctx context.Context) error {
	var errs error
	stock, err := j.inventory.List(ctx)
	errs = multierr.Append(errs, wrapIf(err, "list inventory"))
	menu, err := j.catalog.ListMenu(ctx)
	errs = multierr.Append(errs, wrapIf(err, "list menu"))
	addOns, err := j.catalog.ListAddOns(ctx)
	errs = multierr.Append(errs, wrapIf(err, "list add-ons"))
	if errs != nil {
		return errs
	}

	known := make(map[int64]struct{}, len(stock))
	for _, item := range stock {
		known[item.ItemID] = struct{}{}
	}
	missing := 0
	report := func(source string, id int64, recipe dbtypes.Recipe) {
		for _, line := range recipe {
			if _, ok := known[line.ItemID]; ok {
				continue
			}
			missing++
			j.logg.Warn(j.logg.WithFields(ctx, map[string]any{
				"source":  source,
				"id":      id,
				"item_id": line.ItemID,
			}), "catalog.recipe_unknown_ingredient")
		}
	}
	for _, item := range menu {
		report("menu_item", item.MenuItemID, item.Ingredients)
	}
	for _, addOn := range addOns {
		report("add_on", addOn.AddOnID, addOn.Ingredients)
	}
	if missing > 0 {
		j.logg.Info(j.logg.WithField(ctx, "unknown_ingredients", missing), "catalog.recipe_audit")
	}
	return nil
}

func wrapIf(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}
