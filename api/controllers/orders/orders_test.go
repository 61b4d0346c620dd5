package orders

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/gang93/pos-backend/internal/fulfillment"
	internalorders "github.com/gang93/pos-backend/internal/orders"
	"github.com/gang93/pos-backend/internal/orders/history"
	"github.com/gang93/pos-backend/pkg/enums"
	pkgerrors "github.com/gang93/pos-backend/pkg/errors"
	"github.com/gang93/pos-backend/pkg/logger"
)

type stubFulfillment struct {
	got     *fulfillment.PlaceOrderInput
	receipt *fulfillment.Receipt
	err     error
}

func (s *stubFulfillment) PlaceOrder(ctx context.Context, input fulfillment.PlaceOrderInput) (*fulfillment.Receipt, error) {
	s.got = &input
	if s.err != nil {
		return nil, s.err
	}
	return s.receipt, nil
}

type stubHistory struct {
	filter internalorders.ListFilter
	getID  int64
	err    error
}

func (s *stubHistory) List(ctx context.Context, filter internalorders.ListFilter) (*history.Page, error) {
	s.filter = filter
	if s.err != nil {
		return nil, s.err
	}
	return &history.Page{Orders: []history.OrderView{}, Limit: filter.Page.Limit, Offset: filter.Page.Offset}, nil
}

func (s *stubHistory) Get(ctx context.Context, id int64) (*history.OrderView, error) {
	s.getID = id
	if s.err != nil {
		return nil, s.err
	}
	return &history.OrderView{OrderID: id, Total: decimal.RequireFromString("12.5")}, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func postOrder(t *testing.T, svc fulfillment.Service, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body))
	rec := httptest.NewRecorder()
	Place(svc, testLogger()).ServeHTTP(rec, req)
	return rec
}

func TestPlaceReturnsReceipt(t *testing.T) {
	svc := &stubFulfillment{receipt: &fulfillment.Receipt{
		OrderID: 42,
		Message: "Order completed successfully",
		Total:   decimal.RequireFromString("13.25"),
	}}
	rec := postOrder(t, svc, `{
		"customerId": 3,
		"orderType": "card",
		"tip": "2.25",
		"items": [{"menuItemId": 1, "quantity": 2, "addOnIDs": [5], "ice": "light", "sweetness": "50%"}]
	}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Data struct {
			OrderID int64  `json:"orderId"`
			Message string `json:"message"`
			Total   string `json:"total"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data.OrderID != 42 || body.Data.Total != "13.25" {
		t.Fatalf("unexpected receipt %+v", body.Data)
	}

	in := svc.got
	if in == nil {
		t.Fatal("service not called")
	}
	if in.CustomerID == nil || *in.CustomerID != 3 || in.OrderType != enums.OrderTypeCard {
		t.Fatalf("unexpected input %+v", in)
	}
	if !in.Tip.Equal(decimal.RequireFromString("2.25")) {
		t.Fatalf("expected tip 2.25 got %s", in.Tip)
	}
	line := in.Items[0]
	if line.MenuItemID != 1 || line.Quantity != 2 || line.Sweetness != enums.Sweetness50 || line.Ice != enums.IceLevelLight || len(line.AddOnIDs) != 1 {
		t.Fatalf("unexpected line %+v", line)
	}
}

func TestPlaceDefaultsTipAndAddOns(t *testing.T) {
	svc := &stubFulfillment{receipt: &fulfillment.Receipt{OrderID: 1}}
	rec := postOrder(t, svc, `{"orderType":"cash","items":[{"menuItemId":1,"quantity":1,"sweetness":"100%"}]}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	if !svc.got.Tip.IsZero() || svc.got.Items[0].AddOnIDs == nil || svc.got.CustomerID != nil {
		t.Fatalf("unexpected defaults %+v", svc.got)
	}
}

func TestPlaceRejectsInvalidBodies(t *testing.T) {
	cases := map[string]string{
		"empty cart":        `{"orderType":"cash","items":[]}`,
		"zero quantity":     `{"orderType":"cash","items":[{"menuItemId":1,"quantity":0,"sweetness":"50%"}]}`,
		"unknown sweetness": `{"orderType":"cash","items":[{"menuItemId":1,"quantity":1,"sweetness":"60%"}]}`,
		"bad ice":           `{"orderType":"cash","items":[{"menuItemId":1,"quantity":1,"ice":"none","sweetness":"50%"}]}`,
		"bad order type":    `{"orderType":"credit","items":[{"menuItemId":1,"quantity":1,"sweetness":"50%"}]}`,
		"unknown field":     `{"orderType":"cash","discount":1,"items":[{"menuItemId":1,"quantity":1,"sweetness":"50%"}]}`,
		"bad date":          `{"orderType":"cash","date":"03/01/2025","items":[{"menuItemId":1,"quantity":1,"sweetness":"50%"}]}`,
		"malformed":         `{"orderType":`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			svc := &stubFulfillment{}
			rec := postOrder(t, svc, body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400 got %d: %s", rec.Code, rec.Body.String())
			}
			if svc.got != nil {
				t.Fatal("service must not be called for invalid bodies")
			}
		})
	}
}

func TestPlaceMapsServiceErrors(t *testing.T) {
	svc := &stubFulfillment{err: pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")}
	rec := postOrder(t, svc, `{"customerId":99,"orderType":"cash","items":[{"menuItemId":1,"quantity":1,"sweetness":"50%"}]}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "customer not found") {
		t.Fatalf("expected message in body, got %s", rec.Body.String())
	}
}

func TestListParsesFilters(t *testing.T) {
	svc := &stubHistory{}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders?date=2025-03-01&customerId=7&limit=5&offset=10", nil)
	rec := httptest.NewRecorder()
	List(svc, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	f := svc.filter
	if f.Date == nil || f.Date.String() != "2025-03-01" {
		t.Fatalf("unexpected date filter %+v", f.Date)
	}
	if f.CustomerID == nil || *f.CustomerID != 7 || f.Page.Limit != 5 || f.Page.Offset != 10 {
		t.Fatalf("unexpected filter %+v", f)
	}
}

func TestListRejectsBadQuery(t *testing.T) {
	for _, query := range []string{"date=yesterday", "customerId=abc", "limit=0", "offset=-1"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/orders?"+query, nil)
		rec := httptest.NewRecorder()
		List(&stubHistory{}, testLogger()).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400 got %d", query, rec.Code)
		}
	}
}

func TestDetail(t *testing.T) {
	get := func(svc history.Service, id string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/"+id, nil)
		routeCtx := chi.NewRouteContext()
		routeCtx.URLParams.Add("id", id)
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
		rec := httptest.NewRecorder()
		Detail(svc, testLogger()).ServeHTTP(rec, req)
		return rec
	}

	t.Run("invalid id", func(t *testing.T) {
		if rec := get(&stubHistory{}, "abc"); rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 got %d", rec.Code)
		}
	})

	t.Run("missing", func(t *testing.T) {
		svc := &stubHistory{err: pkgerrors.New(pkgerrors.CodeNotFound, "order not found")}
		if rec := get(svc, "9"); rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404 got %d", rec.Code)
		}
	})

	t.Run("found", func(t *testing.T) {
		svc := &stubHistory{}
		rec := get(svc, "9")
		if rec.Code != http.StatusOK || svc.getID != 9 {
			t.Fatalf("expected 200 for order 9, got %d (id %d)", rec.Code, svc.getID)
		}
		if !strings.Contains(rec.Body.String(), `"total":"12.5"`) {
			t.Fatalf("unexpected body %s", rec.Body.String())
		}
	})
}
