package controllers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/gang93/pos-backend/internal/catalog"
	"github.com/gang93/pos-backend/internal/customers"
	"github.com/gang93/pos-backend/internal/sales"
	"github.com/gang93/pos-backend/pkg/config"
	"github.com/gang93/pos-backend/pkg/db/models"
	dbtypes "github.com/gang93/pos-backend/pkg/db/types"
	pkgerrors "github.com/gang93/pos-backend/pkg/errors"
	"github.com/gang93/pos-backend/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

func TestHealthReady(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "test"}}

	rec := httptest.NewRecorder()
	HealthReady(cfg, testLogger(), stubPinger{}, stubPinger{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	HealthReady(cfg, testLogger(), stubPinger{}, stubPinger{err: errors.New("down")}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", rec.Code)
	}
}

type stubCatalog struct {
	menu   []models.MenuItem
	addOns []models.AddOn
}

func (s *stubCatalog) LoadSnapshot(context.Context, *gorm.DB, []int64) (*catalog.Snapshot, error) {
	return catalog.NewSnapshot(s.menu, s.addOns), nil
}

func (s *stubCatalog) ListMenu(context.Context) ([]models.MenuItem, error) { return s.menu, nil }

func (s *stubCatalog) GetMenuItem(_ context.Context, id int64) (*models.MenuItem, error) {
	for i := range s.menu {
		if s.menu[i].MenuItemID == id {
			return &s.menu[i], nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "menu item not found")
}

func (s *stubCatalog) ListAddOns(context.Context) ([]models.AddOn, error) { return s.addOns, nil }

func TestCatalogEndpoints(t *testing.T) {
	svc := &stubCatalog{
		menu: []models.MenuItem{{
			MenuItemID:  1,
			Name:        "Classic Milk Tea",
			Price:       decimal.RequireFromString("5.00"),
			Ingredients: dbtypes.Recipe{{ItemID: 10, Qty: decimal.NewFromInt(2)}},
		}},
		addOns: []models.AddOn{{AddOnID: 2, Name: "Boba", Price: decimal.RequireFromString("0.75")}},
	}

	rec := httptest.NewRecorder()
	ListMenu(svc, testLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/menu", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"name":"Classic Milk Tea"`) {
		t.Fatalf("unexpected menu response %d %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"itemId":10`) {
		t.Fatalf("expected recipe in response, got %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	GetMenuItem(svc, testLogger()).ServeHTTP(rec, withURLParam(httptest.NewRequest(http.MethodGet, "/api/v1/menu/404", nil), "id", "404"))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	ListAddOns(svc, testLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/addons", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ingredients":[]`) {
		t.Fatalf("expected empty recipe array, got %s", rec.Body.String())
	}
}

type stubCustomers struct {
	search string
	create *customers.CreateInput
	adjust *customers.AdjustPointsInput
	err    error
}

func (s *stubCustomers) List(_ context.Context, search string) ([]models.CustomerReward, error) {
	s.search = search
	return []models.CustomerReward{{CustomerID: 1, FirstName: "Ana", Email: "ana@example.com"}}, nil
}

func (s *stubCustomers) Get(_ context.Context, id int64) (*models.CustomerReward, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.CustomerReward{CustomerID: id}, nil
}

func (s *stubCustomers) Rewards(_ context.Context, id int64) (*customers.RewardsView, error) {
	return &customers.RewardsView{CustomerID: id, Points: 12}, nil
}

func (s *stubCustomers) Create(_ context.Context, input customers.CreateInput) (*models.CustomerReward, error) {
	s.create = &input
	if s.err != nil {
		return nil, s.err
	}
	return &models.CustomerReward{CustomerID: 5, FirstName: input.FirstName, Email: input.Email}, nil
}

func (s *stubCustomers) AdjustPoints(_ context.Context, id int64, input customers.AdjustPointsInput) (*customers.RewardsView, error) {
	s.adjust = &input
	if s.err != nil {
		return nil, s.err
	}
	return &customers.RewardsView{CustomerID: id, Points: 10}, nil
}

func TestCustomerEndpoints(t *testing.T) {
	t.Run("list passes trimmed search", func(t *testing.T) {
		svc := &stubCustomers{}
		rec := httptest.NewRecorder()
		ListCustomers(svc, testLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/customers?search=+ana+", nil))
		if rec.Code != http.StatusOK || svc.search != "ana" {
			t.Fatalf("unexpected list result %d search=%q", rec.Code, svc.search)
		}
		if !strings.Contains(rec.Body.String(), `"firstName":"Ana"`) {
			t.Fatalf("unexpected body %s", rec.Body.String())
		}
	})

	t.Run("create normalizes email", func(t *testing.T) {
		svc := &stubCustomers{}
		body := `{"firstName":"Ana","lastName":"Lopez","email":" Ana@Example.com ","dob":"1990-04-02"}`
		rec := httptest.NewRecorder()
		CreateCustomer(svc, testLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/customers", strings.NewReader(body)))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected whitespace email to fail validation, got %d", rec.Code)
		}

		body = `{"firstName":"Ana","lastName":"Lopez","email":"Ana@Example.com","dob":"1990-04-02"}`
		rec = httptest.NewRecorder()
		CreateCustomer(svc, testLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/customers", strings.NewReader(body)))
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
		}
		if svc.create.Email != "ana@example.com" || svc.create.DOB == nil {
			t.Fatalf("unexpected create input %+v", svc.create)
		}
	})

	t.Run("create conflict", func(t *testing.T) {
		svc := &stubCustomers{err: pkgerrors.New(pkgerrors.CodeConflict, "email already registered")}
		body := `{"firstName":"Ana","lastName":"Lopez","email":"ana@example.com"}`
		rec := httptest.NewRecorder()
		CreateCustomer(svc, testLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/customers", strings.NewReader(body)))
		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409 got %d", rec.Code)
		}
	})

	t.Run("adjust points", func(t *testing.T) {
		svc := &stubCustomers{}
		req := withURLParam(httptest.NewRequest(http.MethodPut, "/api/v1/customers/3/points", strings.NewReader(`{"points":-5,"reason":"redeem"}`)), "id", "3")
		rec := httptest.NewRecorder()
		AdjustCustomerPoints(svc, testLogger()).ServeHTTP(rec, req)
		if rec.Code != http.StatusOK || svc.adjust.Points != -5 {
			t.Fatalf("unexpected adjust result %d %+v", rec.Code, svc.adjust)
		}
	})

	t.Run("adjust zero rejected", func(t *testing.T) {
		svc := &stubCustomers{}
		req := withURLParam(httptest.NewRequest(http.MethodPut, "/api/v1/customers/3/points", strings.NewReader(`{"points":0}`)), "id", "3")
		rec := httptest.NewRecorder()
		AdjustCustomerPoints(svc, testLogger()).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest || svc.adjust != nil {
			t.Fatalf("expected 400 without service call, got %d", rec.Code)
		}
	})

	t.Run("insufficient points", func(t *testing.T) {
		svc := &stubCustomers{err: pkgerrors.New(pkgerrors.CodeValidation, "insufficient points")}
		req := withURLParam(httptest.NewRequest(http.MethodPut, "/api/v1/customers/3/points", strings.NewReader(`{"points":-500}`)), "id", "3")
		rec := httptest.NewRecorder()
		AdjustCustomerPoints(svc, testLogger()).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "insufficient points") {
			t.Fatalf("expected insufficient points, got %d %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("rewards", func(t *testing.T) {
		req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/v1/customers/3/rewards", nil), "id", "3")
		rec := httptest.NewRecorder()
		GetCustomerRewards(&stubCustomers{}, testLogger()).ServeHTTP(rec, req)
		if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"points":12`) {
			t.Fatalf("unexpected rewards %d %s", rec.Code, rec.Body.String())
		}
	})
}

type stubInventory struct {
	setID     int64
	setQty    decimal.Decimal
	threshold *decimal.Decimal
	err       error
}

func (s *stubInventory) List(context.Context) ([]models.InventoryItem, error) {
	return []models.InventoryItem{{ItemID: 1, ItemName: "Black tea", Quantity: decimal.NewFromInt(40)}}, nil
}

func (s *stubInventory) Get(_ context.Context, id int64) (*models.InventoryItem, error) {
	return &models.InventoryItem{ItemID: id}, nil
}

func (s *stubInventory) SetQuantity(_ context.Context, id int64, qty decimal.Decimal) (*models.InventoryItem, error) {
	s.setID, s.setQty = id, qty
	if s.err != nil {
		return nil, s.err
	}
	return &models.InventoryItem{ItemID: id, Quantity: qty}, nil
}

func (s *stubInventory) LowStock(_ context.Context, threshold *decimal.Decimal) ([]models.InventoryItem, error) {
	s.threshold = threshold
	return []models.InventoryItem{}, nil
}

func TestInventoryEndpoints(t *testing.T) {
	t.Run("set quantity", func(t *testing.T) {
		svc := &stubInventory{}
		req := withURLParam(httptest.NewRequest(http.MethodPut, "/api/v1/inventory/4", strings.NewReader(`{"quantity":"12.5"}`)), "id", "4")
		rec := httptest.NewRecorder()
		SetInventoryQuantity(svc, testLogger()).ServeHTTP(rec, req)
		if rec.Code != http.StatusOK || svc.setID != 4 || !svc.setQty.Equal(decimal.RequireFromString("12.5")) {
			t.Fatalf("unexpected set result %d id=%d qty=%s", rec.Code, svc.setID, svc.setQty)
		}
	})

	t.Run("missing quantity", func(t *testing.T) {
		req := withURLParam(httptest.NewRequest(http.MethodPut, "/api/v1/inventory/4", strings.NewReader(`{}`)), "id", "4")
		rec := httptest.NewRecorder()
		SetInventoryQuantity(&stubInventory{}, testLogger()).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 got %d", rec.Code)
		}
	})

	t.Run("low stock threshold", func(t *testing.T) {
		svc := &stubInventory{}
		rec := httptest.NewRecorder()
		LowStock(svc, testLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/inventory/low-stock?threshold=3.5", nil))
		if rec.Code != http.StatusOK || svc.threshold == nil || !svc.threshold.Equal(decimal.RequireFromString("3.5")) {
			t.Fatalf("unexpected low stock result %d %v", rec.Code, svc.threshold)
		}

		svc = &stubInventory{}
		rec = httptest.NewRecorder()
		LowStock(svc, testLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/inventory/low-stock", nil))
		if rec.Code != http.StatusOK || svc.threshold != nil {
			t.Fatalf("expected default threshold, got %v", svc.threshold)
		}
	})
}

type stubSales struct {
	filter sales.Filter
	err    error
}

func (s *stubSales) Report(_ context.Context, filter sales.Filter) (*sales.Report, error) {
	s.filter = filter
	if s.err != nil {
		return nil, s.err
	}
	return &sales.Report{Sales: []models.Sale{}, TotalSales: 3, TotalRevenue: decimal.RequireFromString("16")}, nil
}

func TestSalesReport(t *testing.T) {
	svc := &stubSales{}
	rec := httptest.NewRecorder()
	SalesReport(svc, testLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/sales?startDate=2025-03-01&endDate=2025-03-02&itemName=tea&limit=20", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	f := svc.filter
	if f.StartDate == nil || f.EndDate == nil || f.ItemName != "tea" || f.Limit != 20 || f.Date != nil {
		t.Fatalf("unexpected filter %+v", f)
	}
	if !strings.Contains(rec.Body.String(), `"totalRevenue":"16"`) {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	SalesReport(&stubSales{}, testLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/sales?limit=5000", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for oversized limit, got %d", rec.Code)
	}
}
