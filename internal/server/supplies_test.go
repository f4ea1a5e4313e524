package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/frotacloud/fuelstock/internal/config"
	supplydomain "github.com/frotacloud/fuelstock/internal/supply/domain"
	tankdomain "github.com/frotacloud/fuelstock/internal/tank/domain"
	userdomain "github.com/frotacloud/fuelstock/internal/user/domain"
	vehicledomain "github.com/frotacloud/fuelstock/internal/vehicle/domain"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type fakeSupplyService struct {
	recordErr  error
	lastRecord *supplydomain.RecordRequest
}

func (f *fakeSupplyService) Record(ctx context.Context, req supplydomain.RecordRequest) (*supplydomain.Response, error) {
	f.lastRecord = &req
	if f.recordErr != nil {
		return nil, f.recordErr
	}
	return &supplydomain.Response{
		ID:        "1",
		Reference: "SUP/00001",
		Status:    "draft",
	}, nil
}

func (f *fakeSupplyService) List(ctx context.Context, req supplydomain.ListRequest) ([]supplydomain.Response, error) {
	return nil, nil
}

func (f *fakeSupplyService) Get(ctx context.Context, id string) (*supplydomain.Response, error) {
	return nil, supplydomain.ErrNotFound
}

type fakeTankService struct{}

func (f *fakeTankService) Create(ctx context.Context, req tankdomain.CreateRequest) (*tankdomain.Response, error) {
	return &tankdomain.Response{}, nil
}

func (f *fakeTankService) List(ctx context.Context, req tankdomain.ListRequest) ([]tankdomain.Response, error) {
	return nil, nil
}

func (f *fakeTankService) Get(ctx context.Context, id string) (*tankdomain.Response, error) {
	return nil, tankdomain.ErrNotFound
}

func (f *fakeTankService) Refill(ctx context.Context, req tankdomain.RefillRequest) (*tankdomain.Response, error) {
	return &tankdomain.Response{}, nil
}

func (f *fakeTankService) Adjust(ctx context.Context, req tankdomain.AdjustRequest) (*tankdomain.Response, error) {
	return &tankdomain.Response{}, nil
}

func (f *fakeTankService) Archive(ctx context.Context, id string) (*tankdomain.Response, error) {
	return &tankdomain.Response{}, nil
}

type fakeVehicleService struct{}

func (f *fakeVehicleService) Create(ctx context.Context, req vehicledomain.CreateRequest) (*vehicledomain.Response, error) {
	return &vehicledomain.Response{}, nil
}

func (f *fakeVehicleService) List(ctx context.Context, req vehicledomain.ListRequest) ([]vehicledomain.Response, error) {
	return nil, nil
}

func (f *fakeVehicleService) Get(ctx context.Context, id string) (*vehicledomain.Response, error) {
	return nil, vehicledomain.ErrNotFound
}

func (f *fakeVehicleService) Archive(ctx context.Context, id string) (*vehicledomain.Response, error) {
	return &vehicledomain.Response{}, nil
}

type fakeUserService struct{}

func (f *fakeUserService) Create(ctx context.Context, req userdomain.CreateRequest) (*userdomain.Response, error) {
	return &userdomain.Response{}, nil
}

func (f *fakeUserService) List(ctx context.Context) ([]userdomain.Response, error) {
	return nil, nil
}

func (f *fakeUserService) Get(ctx context.Context, id string) (*userdomain.Response, error) {
	return nil, userdomain.ErrNotFound
}

func newTestServer(t *testing.T, supplySvc supplydomain.Service) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}

	engine := NewEngine(config.Config{Environment: "test"}, zap.NewNop(), nil)
	return NewServer(ServerParams{
		Gin:        engine,
		Cfg:        config.Config{},
		GenID:      node,
		TankSvc:    &fakeTankService{},
		SupplySvc:  supplySvc,
		VehicleSvc: &fakeVehicleService{},
		UserSvc:    &fakeUserService{},
	})
}

func postSupply(t *testing.T, srv *Server, actor string, body map[string]any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/supplies", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if actor != "" {
		req.Header.Set("X-Actor-Id", actor)
	}

	w := httptest.NewRecorder()
	srv.Engine().ServeHTTP(w, req)
	return w
}

func TestRecordSupplyRequiresActor(t *testing.T) {
	fake := &fakeSupplyService{}
	srv := newTestServer(t, fake)

	w := postSupply(t, srv, "", map[string]any{
		"tank_id":    "1",
		"vehicle_id": "2",
		"quantity":   "10",
		"unit_price": "5.20",
	})

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d: %s", w.Code, w.Body.String())
	}
	if fake.lastRecord != nil {
		t.Fatal("service must not be reached without an actor")
	}
}

func TestRecordSupplyPassesActorToService(t *testing.T) {
	fake := &fakeSupplyService{}
	srv := newTestServer(t, fake)

	w := postSupply(t, srv, "12345", map[string]any{
		"tank_id":    "1",
		"vehicle_id": "2",
		"quantity":   "10",
		"unit_price": "5.20",
	})

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if fake.lastRecord == nil {
		t.Fatal("service not called")
	}
	if fake.lastRecord.RecordedBy != "12345" {
		t.Fatalf("expected actor 12345, got %q", fake.lastRecord.RecordedBy)
	}
}

func TestRecordSupplyInsufficientStockMapsToConflict(t *testing.T) {
	fake := &fakeSupplyService{
		recordErr: &tankdomain.InsufficientStockError{
			TankName:  "Main Tank",
			Available: decimal.RequireFromString("300"),
			Required:  decimal.RequireFromString("500"),
		},
	}
	srv := newTestServer(t, fake)

	w := postSupply(t, srv, "12345", map[string]any{
		"tank_id":    "1",
		"vehicle_id": "2",
		"quantity":   "500",
		"unit_price": "5.20",
	})

	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", w.Code, w.Body.String())
	}

	var resp errorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Error.Type != "conflict" {
		t.Fatalf("expected conflict type, got %q", resp.Error.Type)
	}
	// The operator-facing message must carry the live numbers.
	for _, want := range []string{"Main Tank", "300.00", "500.00"} {
		if !bytes.Contains(w.Body.Bytes(), []byte(want)) {
			t.Fatalf("message missing %q: %s", want, w.Body.String())
		}
	}
}

func TestRecordSupplyValidationMapsToBadRequest(t *testing.T) {
	fake := &fakeSupplyService{recordErr: supplydomain.ErrInvalidQuantity}
	srv := newTestServer(t, fake)

	w := postSupply(t, srv, "12345", map[string]any{
		"tank_id":    "1",
		"vehicle_id": "2",
		"quantity":   "0",
		"unit_price": "5.20",
	})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}

	var resp errorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Error.Type != "validation_error" {
		t.Fatalf("expected validation_error, got %q", resp.Error.Type)
	}
	if len(resp.Error.Errors) != 1 || resp.Error.Errors[0].Code != "invalid_quantity" {
		t.Fatalf("unexpected validation payload: %s", w.Body.String())
	}
}

func TestGetSupplyNotFound(t *testing.T) {
	srv := newTestServer(t, &fakeSupplyService{})

	req := httptest.NewRequest(http.MethodGet, "/api/supplies/999", nil)
	w := httptest.NewRecorder()
	srv.Engine().ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", w.Code, w.Body.String())
	}
}
