package reconcile

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"ofs/fulfillsync/internal/app/domains/entity/etsync"
	"ofs/fulfillsync/internal/app/domains/services/svsync"
	"ofs/fulfillsync/internal/app/infra/commerce"
	"ofs/fulfillsync/internal/app/pkg/errorx"
	"ofs/fulfillsync/internal/app/pkg/logger"
)

type fakeCommerce struct {
	orders map[int64]*etsync.CommerceOrderSnapshot
}

func (f *fakeCommerce) GetOrder(_ context.Context, orderID int64) (*etsync.CommerceOrderSnapshot, error) {
	if o, ok := f.orders[orderID]; ok {
		cp := *o
		return &cp, nil
	}
	return nil, errorx.ErrCommerceOrderNotFound
}

func (f *fakeCommerce) ListOrders(_ context.Context, _ string, _ time.Time, _, _ int) ([]*etsync.CommerceOrderSnapshot, error) {
	return nil, nil
}

func (f *fakeCommerce) ApplyFulfillmentUpdate(_ context.Context, req *commerce.UpdateRequest) (*commerce.UpdateResult, error) {
	status := req.CurrentStatus
	if req.NextStatus != "" {
		status = req.NextStatus
	}
	if o, ok := f.orders[req.OrderID]; ok {
		o.Status = status
	}
	return &commerce.UpdateResult{Status: status, Changed: req.NextStatus != "" && req.NextStatus != req.CurrentStatus}, nil
}

func (f *fakeCommerce) AddOrderNote(_ context.Context, _ int64, _ string, _ bool) error {
	return nil
}

type fakeFulfillment struct {
	shipments map[string]*etsync.FulfillmentShipment
}

func (f *fakeFulfillment) FetchOrderStatus(_ context.Context, orderNumber string) (*etsync.FulfillmentShipment, error) {
	return f.shipments[orderNumber], nil
}

type fakeResolver struct {
	byNumber map[string]int64
}

func (f *fakeResolver) Resolve(_ context.Context, req *etsync.SyncRequest) (*etsync.ResolvedIdentity, error) {
	if id, ok := f.byNumber[req.OrderNumber]; ok {
		return &etsync.ResolvedIdentity{CommerceOrderID: id, Source: etsync.SourceSearchByNumber}, nil
	}
	return nil, &errorx.IdentityUnresolvedError{
		OrderNumber: req.OrderNumber,
		Tried:       []string{string(etsync.SourceSearchByNumber)},
	}
}

func newTestRouter(cm *fakeCommerce, ff *fakeFulfillment, rs *fakeResolver) *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := logger.NewNop()
	reconciler := svsync.NewReconcileService(ff, rs, cm, nil, log)
	handler := NewReconcileHandler(reconciler, log)

	r := gin.New()
	r.POST("/api/v1/sync/reconcile", handler.Trigger)
	return r
}

func postReconcile(t *testing.T, r *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sync/reconcile", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestTriggerValidatesRequest(t *testing.T) {
	r := newTestRouter(&fakeCommerce{}, &fakeFulfillment{}, &fakeResolver{})

	w := postReconcile(t, r, `{"fulfillment_order_id":"fx-1"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without order_number, got %d", w.Code)
	}

	var resp struct {
		Meta struct {
			Message string `json:"message"`
			Details []struct {
				Path string `json:"path"`
				Info string `json:"info"`
			} `json:"details"`
		} `json:"meta"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Meta.Message != "Validation failed" {
		t.Errorf("message = %q, want Validation failed", resp.Meta.Message)
	}
	if len(resp.Meta.Details) == 0 || !strings.Contains(resp.Meta.Details[0].Info, "required") {
		t.Errorf("details = %+v, want a required-field violation", resp.Meta.Details)
	}
}

func TestTriggerReconcilesOrder(t *testing.T) {
	cm := &fakeCommerce{orders: map[int64]*etsync.CommerceOrderSnapshot{
		7: {ID: 7, Number: "1001", Status: "processing"},
	}}
	ff := &fakeFulfillment{shipments: map[string]*etsync.FulfillmentShipment{
		"1001": {Status: "shipped", TrackingNumber: "TRK1"},
	}}
	rs := &fakeResolver{byNumber: map[string]int64{"1001": 7}}
	r := newTestRouter(cm, ff, rs)

	w := postReconcile(t, r, `{"order_number":"1001"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Data struct {
			Commerce etsync.CommerceResult `json:"commerce"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Data.Commerce.NextStatus != "completed" || !resp.Data.Commerce.Updated {
		t.Fatalf("unexpected commerce result: %+v", resp.Data.Commerce)
	}
	if cm.orders[7].Status != "completed" {
		t.Fatalf("order status not updated, got %q", cm.orders[7].Status)
	}
}

func TestTriggerUnresolvedReturns404(t *testing.T) {
	r := newTestRouter(&fakeCommerce{}, &fakeFulfillment{}, &fakeResolver{byNumber: map[string]int64{}})

	w := postReconcile(t, r, `{"order_number":"9999"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unresolved order, got %d: %s", w.Code, w.Body.String())
	}
}
