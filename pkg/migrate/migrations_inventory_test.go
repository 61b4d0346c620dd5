package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gang93/pos-backend/pkg/migrate"
)

func readMigration(t *testing.T, suffix string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", "*_"+suffix+".sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no %s migration file found", suffix)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func assertContains(t *testing.T, content string, checks []string) {
	t.Helper()
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestMigrationsDirIsValid(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("ValidateDir: %v", err)
	}
}

func TestInventoryMigrationContainsConstraints(t *testing.T) {
	assertContains(t, readMigration(t, "create_inventory_items"), []string{
		"CREATE TABLE IF NOT EXISTS inventory_items",
		"quantity NUMERIC(12,3) NOT NULL DEFAULT 0",
		"CHECK (quantity >= 0)",
		"DROP TABLE IF EXISTS inventory_items",
	})
}

func TestOrdersMigrationUsesSequenceAllocator(t *testing.T) {
	assertContains(t, readMigration(t, "create_orders"), []string{
		"CONSTRAINT orders_pkey PRIMARY KEY (order_id)",
		"CREATE SEQUENCE IF NOT EXISTS orders_order_id_seq",
		"payload_version SMALLINT NOT NULL DEFAULT 2",
		"CHECK (order_type IN ('card', 'cash', 'void'))",
		"DROP SEQUENCE IF EXISTS orders_order_id_seq",
	})
}

func TestCatalogMigrationTagsSweetnessBase(t *testing.T) {
	assertContains(t, readMigration(t, "create_catalog"), []string{
		"CREATE TABLE IF NOT EXISTS menu_items",
		"CREATE TABLE IF NOT EXISTS add_ons",
		"role IN ('sweetness_base')",
		"CREATE UNIQUE INDEX IF NOT EXISTS add_ons_role_unique",
	})
}

func TestRewardsMigrationForbidsNegativeBalance(t *testing.T) {
	assertContains(t, readMigration(t, "create_customer_rewards"), []string{
		"CREATE TABLE IF NOT EXISTS customer_rewards",
		"CHECK (points >= 0)",
	})
}

func TestSalesMigrationKeysOnSaleID(t *testing.T) {
	assertContains(t, readMigration(t, "create_sales"), []string{
		"CONSTRAINT sales_pkey PRIMARY KEY (sale_id)",
		"CHECK (amount_sold > 0)",
	})
}
