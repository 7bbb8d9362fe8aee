package webhook

import (
	"bytes"
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

const testSecret = "topsecret"

type fakeCommerce struct {
	orders      map[int64]*etsync.CommerceOrderSnapshot
	updateCalls int
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
	f.updateCalls++
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
	handler := NewWebhookHandler(reconciler, testSecret, log)

	r := gin.New()
	r.POST("/api/v1/webhooks/fulfillment", handler.Receive)
	return r
}

func postWebhook(t *testing.T, r *gin.Engine, body []byte, contentType, secret string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/fulfillment", bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if secret != "" {
		req.Header.Set("X-Webhook-Secret", secret)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestReceiveRejectsBadSecret(t *testing.T) {
	r := newTestRouter(&fakeCommerce{}, &fakeFulfillment{}, &fakeResolver{})

	w := postWebhook(t, r, []byte(`{"order_number":"1001"}`), "application/json", "wrong")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}

	w = postWebhook(t, r, []byte(`{"order_number":"1001"}`), "application/json", "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without secret, got %d", w.Code)
	}
}

func TestReceiveAcceptsSecretViaQueryParam(t *testing.T) {
	cm := &fakeCommerce{orders: map[int64]*etsync.CommerceOrderSnapshot{
		7: {ID: 7, Number: "1001", Status: "processing"},
	}}
	ff := &fakeFulfillment{shipments: map[string]*etsync.FulfillmentShipment{
		"1001": {Status: "shipped", TrackingNumber: "TRK1"},
	}}
	rs := &fakeResolver{byNumber: map[string]int64{"1001": 7}}
	r := newTestRouter(cm, ff, rs)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/fulfillment?secret="+testSecret,
		strings.NewReader(`{"order_number":"1001","status":"shipped"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestReceiveShippedOrderUpdatesCommerce(t *testing.T) {
	cm := &fakeCommerce{orders: map[int64]*etsync.CommerceOrderSnapshot{
		7: {ID: 7, Number: "1001", Status: "processing"},
	}}
	ff := &fakeFulfillment{shipments: map[string]*etsync.FulfillmentShipment{
		"1001": {Status: "shipped", TrackingNumber: "TRK1", CarrierCode: "ups"},
	}}
	rs := &fakeResolver{byNumber: map[string]int64{"1001": 7}}
	r := newTestRouter(cm, ff, rs)

	w := postWebhook(t, r, []byte(`{"order_number":"1001","status":"shipped"}`), "application/json", testSecret)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		OK     bool `json:"ok"`
		Result struct {
			Commerce etsync.CommerceResult `json:"commerce"`
		} `json:"result"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if !resp.OK {
		t.Fatal("expected ok=true")
	}
	if resp.Result.Commerce.NextStatus != "completed" || !resp.Result.Commerce.Updated {
		t.Fatalf("unexpected commerce result: %+v", resp.Result.Commerce)
	}
	if cm.orders[7].Status != "completed" {
		t.Fatalf("order status not updated, got %q", cm.orders[7].Status)
	}
}

func TestReceiveBinaryBlobAcknowledgedAndSkipped(t *testing.T) {
	cm := &fakeCommerce{}
	r := newTestRouter(cm, &fakeFulfillment{}, &fakeResolver{})

	blob := []byte{0x00, 0x01, 0xfe, 0xff, 0x88, 0x99}
	w := postWebhook(t, r, blob, "application/octet-stream", testSecret)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for unparseable payload, got %d", w.Code)
	}
	var resp struct {
		OK      bool   `json:"ok"`
		Skipped bool   `json:"skipped"`
		Reason  string `json:"reason"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if !resp.OK || !resp.Skipped {
		t.Fatalf("expected ok+skipped, got %+v", resp)
	}
	if resp.Reason != "missing_order_identifier" {
		t.Fatalf("unexpected reason %q", resp.Reason)
	}
	if cm.updateCalls != 0 {
		t.Fatalf("expected no commerce calls, got %d", cm.updateCalls)
	}
}

func TestReceiveUnresolvedIdentityReturns404(t *testing.T) {
	r := newTestRouter(&fakeCommerce{}, &fakeFulfillment{}, &fakeResolver{byNumber: map[string]int64{}})

	w := postWebhook(t, r, []byte(`{"order_number":"9999","status":"shipped"}`), "application/json", testSecret)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unresolved order, got %d: %s", w.Code, w.Body.String())
	}
}
