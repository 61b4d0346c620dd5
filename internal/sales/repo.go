package sales

import (
	"context"
	"strings"

	"github.com/gang93/pos-backend/internal/repo"
	"github.com/gang93/pos-backend/pkg/db/models"
	dbtypes "github.com/gang93/pos-backend/pkg/db/types"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Filter narrows sales-ledger reads. Date wins over the Start/End range.
type Filter struct {
	Date      *dbtypes.Date
	StartDate *dbtypes.Date
	EndDate   *dbtypes.Date
	ItemName  string
	Limit     int
}

// Totals summarizes the rows matching a Filter, ignoring its Limit.
type Totals struct {
	UnitsSold int64
	Revenue   decimal.Decimal
}

// Repository persists sales-ledger rows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	MaxID(ctx context.Context) (int64, error)
	CreateBatch(ctx context.Context, rows []models.Sale) error
	List(ctx context.Context, filter Filter) ([]models.Sale, error)
	Totals(ctx context.Context, filter Filter) (Totals, error)
}

type repository struct {
	repo.Base
}

// NewRepository builds a sales repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{Base: r.Base.Tx(tx)}
}

func (r *repository) MaxID(ctx context.Context) (int64, error) {
	var max int64
	err := r.DB(ctx).Model(&models.Sale{}).
		Select("COALESCE(MAX(sale_id), 0)").
		Scan(&max).Error
	return max, err
}

func (r *repository) CreateBatch(ctx context.Context, rows []models.Sale) error {
	if len(rows) == 0 {
		return nil
	}
	return r.DB(ctx).Create(&rows).Error
}

func (r *repository) List(ctx context.Context, filter Filter) ([]models.Sale, error) {
	var rows []models.Sale
	err := r.DB(ctx).
		Scopes(filterScope(filter, "")).
		Order("sale_date DESC").
		Order("sale_time DESC").
		Order("sale_id DESC").
		Limit(filter.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Totals prices each row by the menu item or add-on carrying the same name.
// Rows whose name no longer matches the catalog add units but no revenue.
func (r *repository) Totals(ctx context.Context, filter Filter) (Totals, error) {
	var row totalsRow
	err := r.DB(ctx).
		Table("sales AS s").
		Select("COALESCE(SUM(s.amount_sold), 0) AS units_sold, " +
			"SUM(s.amount_sold * COALESCE(m.price, a.price, 0)) AS revenue").
		Joins("LEFT JOIN menu_items AS m ON m.name = s.item_name").
		Joins("LEFT JOIN add_ons AS a ON a.name = s.item_name").
		Scopes(filterScope(filter, "s.")).
		Scan(&row).Error
	if err != nil {
		return Totals{}, err
	}

	totals := Totals{UnitsSold: row.UnitsSold, Revenue: decimal.Zero}
	if row.Revenue.Valid {
		totals.Revenue = row.Revenue.Decimal
	}
	return totals, nil
}

type totalsRow struct {
	UnitsSold int64               `gorm:"column:units_sold"`
	Revenue   decimal.NullDecimal `gorm:"column:revenue"`
}

func filterScope(filter Filter, prefix string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch {
		case filter.Date != nil:
			db = db.Where(prefix+"sale_date = ?", *filter.Date)
		case filter.StartDate != nil && filter.EndDate != nil:
			db = db.Where(prefix+"sale_date BETWEEN ? AND ?", *filter.StartDate, *filter.EndDate)
		}
		if name := strings.TrimSpace(filter.ItemName); name != "" {
			db = db.Where("LOWER("+prefix+"item_name) LIKE ?", "%"+strings.ToLower(name)+"%")
		}
		return db
	}
}
