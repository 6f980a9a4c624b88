package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/courierlabs/robocourier-backend/api/middleware"
	"github.com/courierlabs/robocourier-backend/internal/deliveries"
	"github.com/courierlabs/robocourier-backend/internal/state"
	"github.com/courierlabs/robocourier-backend/pkg/errors"
	"github.com/go-chi/chi/v5"
)

type stubDeliveryService struct {
	created     *state.Delivery
	createErr   error
	gotUsername string
	gotRequest  deliveries.CreateRequest
	deliveries  map[int]*state.Delivery
	deleted     []int
	clearedAll  bool
}

func (s *stubDeliveryService) Create(ctx context.Context, username string, req deliveries.CreateRequest) (*state.Delivery, error) {
	s.gotUsername = username
	s.gotRequest = req
	if s.createErr != nil {
		return nil, s.createErr
	}
	return s.created, nil
}

func (s *stubDeliveryService) Get(ctx context.Context, id int) (*state.Delivery, error) {
	if delivery, ok := s.deliveries[id]; ok {
		return delivery, nil
	}
	return nil, errors.New(errors.CodeNotFound, "delivery does not exist")
}

func (s *stubDeliveryService) List(ctx context.Context) ([]*state.Delivery, error) {
	all := make([]*state.Delivery, 0, len(s.deliveries))
	for _, delivery := range s.deliveries {
		all = append(all, delivery)
	}
	return all, nil
}

func (s *stubDeliveryService) Delete(ctx context.Context, id int) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubDeliveryService) DeleteAll(ctx context.Context) error {
	s.deliveries = map[int]*state.Delivery{}
	s.clearedAll = true
	return nil
}

type stubDispatcher struct {
	updated   *state.Delivery
	err       error
	gotID     int
	gotTarget state.DeliveryState
	gotRobot  *int
}

func (s *stubDispatcher) Apply(ctx context.Context, deliveryID int, target state.DeliveryState, robotID *int) (*state.Delivery, error) {
	s.gotID = deliveryID
	s.gotTarget = target
	s.gotRobot = robotID
	if s.err != nil {
		return nil, s.err
	}
	return s.updated, nil
}

func TestCreateDeliveryUsesAuthenticatedUsername(t *testing.T) {
	svc := &stubDeliveryService{
		created: &state.Delivery{
			ID:       0,
			Name:     "snacks",
			State:    state.StateInQueue,
			Sender:   "alice",
			Receiver: "bob",
			From:     state.TargetRef{ID: 1, Name: "kitchen"},
			To:       state.TargetRef{ID: 2, Name: "lab"},
		},
	}
	handler := CreateDelivery(svc, testWriter())

	req := httptest.NewRequest(http.MethodPost, "/deliveries",
		strings.NewReader(`{"name":"snacks","priority":1,"from":1,"to":2,"sender":"alice","receiver":"bob"}`))
	req = req.WithContext(middleware.WithUsername(req.Context(), "alice"))
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.gotUsername != "alice" {
		t.Fatalf("expected username alice, got %q", svc.gotUsername)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body["id"] != float64(0) {
		t.Fatalf("expected id 0, got %v", body["id"])
	}
	if _, ok := body["robot"]; ok {
		t.Fatalf("expected robot key to be omitted for queued delivery")
	}
	if _, ok := body["senderToken"]; ok {
		t.Fatalf("tokens must never be exposed")
	}
	from, ok := body["from"].(map[string]any)
	if !ok {
		t.Fatalf("expected embedded from target, got %v", body["from"])
	}
	if from["name"] != "kitchen" {
		t.Fatalf("expected from target kitchen, got %v", from["name"])
	}
}

func TestDeleteDeliveriesClearsQueue(t *testing.T) {
	svc := &stubDeliveryService{deliveries: map[int]*state.Delivery{0: {ID: 0}}}
	handler := DeleteDeliveries(svc, testWriter())

	req := httptest.NewRequest(http.MethodDelete, "/deliveries", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !svc.clearedAll {
		t.Fatalf("expected queue to be cleared")
	}
}

func TestGetDeliveryNonIntegerID(t *testing.T) {
	svc := &stubDeliveryService{deliveries: map[int]*state.Delivery{}}

	router := chi.NewRouter()
	router.Get("/delivery/{id}", GetDelivery(svc, testWriter()))

	req := httptest.NewRequest(http.MethodGet, "/delivery/abc", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	body := decodeErrorBody(t, rec.Body.String())
	if body["error"] != "Not found" {
		t.Fatalf("expected Not found label, got %v", body["error"])
	}
}

func TestTransitionDeliveryPassesRobot(t *testing.T) {
	robotID := 3
	dispatcher := &stubDispatcher{
		updated: &state.Delivery{ID: 0, State: state.StateMovingToSource, Robot: &robotID},
	}

	router := chi.NewRouter()
	router.Patch("/delivery/{id}", TransitionDelivery(dispatcher, testWriter()))

	req := httptest.NewRequest(http.MethodPatch, "/delivery/0",
		strings.NewReader(`{"state":"MOVING_TO_SOURCE","robot":3}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if dispatcher.gotID != 0 {
		t.Fatalf("expected delivery id 0, got %d", dispatcher.gotID)
	}
	if dispatcher.gotTarget != state.StateMovingToSource {
		t.Fatalf("expected MOVING_TO_SOURCE, got %s", dispatcher.gotTarget)
	}
	if dispatcher.gotRobot == nil || *dispatcher.gotRobot != 3 {
		t.Fatalf("expected robot 3, got %v", dispatcher.gotRobot)
	}
}

func TestTransitionDeliveryRejectsUnknownState(t *testing.T) {
	dispatcher := &stubDispatcher{}

	router := chi.NewRouter()
	router.Patch("/delivery/{id}", TransitionDelivery(dispatcher, testWriter()))

	req := httptest.NewRequest(http.MethodPatch, "/delivery/0",
		strings.NewReader(`{"state":"TELEPORTING"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestTransitionDeliveryRequiresState(t *testing.T) {
	router := chi.NewRouter()
	router.Patch("/delivery/{id}", TransitionDelivery(&stubDispatcher{}, testWriter()))

	req := httptest.NewRequest(http.MethodPatch, "/delivery/0", strings.NewReader(`{"robot":3}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestDeleteDeliveryReturnsEmptyBody(t *testing.T) {
	svc := &stubDeliveryService{deliveries: map[int]*state.Delivery{}}

	router := chi.NewRouter()
	router.Delete("/delivery/{id}", DeleteDelivery(svc, testWriter()))

	req := httptest.NewRequest(http.MethodDelete, "/delivery/7", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Fatalf("expected empty body, got %q", rec.Body.String())
	}
	if len(svc.deleted) != 1 || svc.deleted[0] != 7 {
		t.Fatalf("expected delete of 7, got %v", svc.deleted)
	}
}
