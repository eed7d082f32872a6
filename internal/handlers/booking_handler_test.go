package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/saeid-a/StudioBookingBack/internal/apperr"
	"github.com/saeid-a/StudioBookingBack/internal/models"
	"github.com/saeid-a/StudioBookingBack/internal/services"
)

type stubBookingService struct {
	createResult     *models.SessionDetail
	createErr        error
	rescheduleResult *models.SessionDetail
	rescheduleErr    error
	statusResult     *models.SessionDetail
	statusErr        error
	occupiedResult   []models.OccupiedSlot
	occupiedErr      error
	getResult        *models.SessionDetail
	getErr           error
	listResult       []models.SessionDetail
	listErr          error
	historyResult    []models.SessionDetail
	historyTotal     int
	historyErr       error

	lastActor            models.Actor
	lastCreateInput      services.CreateSessionInput
	lastRescheduleInput  services.RescheduleSessionInput
	lastListInput        services.ListSessionsInput
	lastSessionID        string
	lastContractID       string
	lastStatus           string
	lastTrainerID        string
	lastDate             int64
	createSessionInvoked bool
}

func (s *stubBookingService) CreateSession(_ context.Context, actor models.Actor, input services.CreateSessionInput) (*models.SessionDetail, error) {
	s.createSessionInvoked = true
	s.lastActor = actor
	s.lastCreateInput = input
	return s.createResult, s.createErr
}

func (s *stubBookingService) RescheduleSession(_ context.Context, actor models.Actor, sessionID string, input services.RescheduleSessionInput) (*models.SessionDetail, error) {
	s.lastActor = actor
	s.lastSessionID = sessionID
	s.lastRescheduleInput = input
	return s.rescheduleResult, s.rescheduleErr
}

func (s *stubBookingService) ChangeSessionStatus(_ context.Context, actor models.Actor, sessionID string, status string) (*models.SessionDetail, error) {
	s.lastActor = actor
	s.lastSessionID = sessionID
	s.lastStatus = status
	return s.statusResult, s.statusErr
}

func (s *stubBookingService) OccupiedSlots(_ context.Context, trainerID string, date int64) ([]models.OccupiedSlot, error) {
	s.lastTrainerID = trainerID
	s.lastDate = date
	return s.occupiedResult, s.occupiedErr
}

func (s *stubBookingService) GetSession(_ context.Context, actor models.Actor, sessionID string) (*models.SessionDetail, error) {
	s.lastActor = actor
	s.lastSessionID = sessionID
	return s.getResult, s.getErr
}

func (s *stubBookingService) ListContractSessions(_ context.Context, actor models.Actor, contractID string) ([]models.SessionDetail, error) {
	s.lastActor = actor
	s.lastContractID = contractID
	return s.listResult, s.listErr
}

func (s *stubBookingService) ListSessions(_ context.Context, actor models.Actor, input services.ListSessionsInput) ([]models.SessionDetail, int, error) {
	s.lastActor = actor
	s.lastListInput = input
	return s.historyResult, s.historyTotal, s.historyErr
}

func newActorApp(actor models.Actor) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("actor_id", actor.ID)
		c.Locals("actor", actor)
		c.Locals("role", string(actor.Role))
		return c.Next()
	})
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string) *http.Response {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	return resp
}

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func decodeError(t *testing.T, resp *http.Response) errorBody {
	t.Helper()

	var body errorBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return body
}

var testCustomer = models.Actor{ID: "cust-1", Role: models.RoleCustomer}

func TestCreateSessionReturnsCreatedSession(t *testing.T) {
	service := &stubBookingService{
		createResult: &models.SessionDetail{
			Session: models.Session{ID: "s-1", ContractID: "c-1", From: 480, To: 570, Status: models.SessionNewlyCreated},
		},
	}
	handler := &BookingHandler{service: service}

	app := newActorApp(testCustomer)
	app.Post("/api/v1/sessions", handler.CreateSession)

	resp := doJSON(t, app, http.MethodPost, "/api/v1/sessions", `{
		"contract_id": "c-1",
		"date": 1906761600000,
		"from": 480,
		"to": 570
	}`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if service.lastActor != testCustomer {
		t.Fatalf("expected actor forwarded, got %+v", service.lastActor)
	}
	want := services.CreateSessionInput{ContractID: "c-1", Date: 1906761600000, From: 480, To: 570}
	if service.lastCreateInput != want {
		t.Fatalf("expected %+v, got %+v", want, service.lastCreateInput)
	}

	var body struct {
		Session models.SessionDetail `json:"session"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if body.Session.ID != "s-1" || body.Session.Status != models.SessionNewlyCreated {
		t.Fatalf("unexpected session %+v", body.Session)
	}
}

func TestCreateSessionAcceptsMidnightStart(t *testing.T) {
	service := &stubBookingService{createResult: &models.SessionDetail{}}
	handler := &BookingHandler{service: service}

	app := newActorApp(testCustomer)
	app.Post("/api/v1/sessions", handler.CreateSession)

	resp := doJSON(t, app, http.MethodPost, "/api/v1/sessions", `{"contract_id":"c-1","date":1906761600000,"from":0,"to":90}`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if service.lastCreateInput.From != 0 {
		t.Fatalf("expected from 0, got %d", service.lastCreateInput.From)
	}
}

func TestCreateSessionValidatesBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "malformed", body: `{`},
		{name: "missing contract", body: `{"date":1906761600000,"from":480,"to":570}`},
		{name: "missing date", body: `{"contract_id":"c-1","from":480,"to":570}`},
		{name: "missing from", body: `{"contract_id":"c-1","date":1906761600000,"to":570}`},
		{name: "to out of day", body: `{"contract_id":"c-1","date":1906761600000,"from":480,"to":1500}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &stubBookingService{}
			handler := &BookingHandler{service: service}

			app := newActorApp(testCustomer)
			app.Post("/api/v1/sessions", handler.CreateSession)

			resp := doJSON(t, app, http.MethodPost, "/api/v1/sessions", tt.body)
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", resp.StatusCode)
			}
			if body := decodeError(t, resp); body.Kind != string(apperr.KindInvalidField) {
				t.Fatalf("expected INVALID_FIELD, got %q", body.Kind)
			}
			if service.createSessionInvoked {
				t.Fatalf("expected service not to be called")
			}
		})
	}
}

func TestCreateSessionReturnsConflictDetails(t *testing.T) {
	service := &stubBookingService{createErr: &apperr.ConflictError{SessionID: "s-0", From: 540, To: 600}}
	handler := &BookingHandler{service: service}

	app := newActorApp(testCustomer)
	app.Post("/api/v1/sessions", handler.CreateSession)

	resp := doJSON(t, app, http.MethodPost, "/api/v1/sessions", `{"contract_id":"c-1","date":1906761600000,"from":480,"to":570}`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	body := decodeError(t, resp)
	if body.Kind != string(apperr.KindTimeConflict) {
		t.Fatalf("expected TIME_CONFLICT, got %q", body.Kind)
	}
	if !strings.Contains(body.Error, "09:00 to 10:00") {
		t.Fatalf("expected conflicting interval in message, got %q", body.Error)
	}
}

func TestCreateSessionRequiresActor(t *testing.T) {
	handler := &BookingHandler{service: &stubBookingService{}}

	app := fiber.New()
	app.Post("/api/v1/sessions", handler.CreateSession)

	resp := doJSON(t, app, http.MethodPost, "/api/v1/sessions", `{}`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestChangeSessionStatusForwardsRequest(t *testing.T) {
	service := &stubBookingService{statusErr: &apperr.TransitionError{Role: "STAFF", From: "CANCELED", To: "PT_CONFIRMED"}}
	handler := &BookingHandler{service: service}

	app := newActorApp(models.Actor{ID: "staff-1", Role: models.RoleStaff})
	app.Post("/api/v1/sessions/status", handler.ChangeSessionStatus)

	resp := doJSON(t, app, http.MethodPost, "/api/v1/sessions/status", `{"session_id":" s-9 ","status":"PT_CONFIRMED"}`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if body := decodeError(t, resp); body.Kind != string(apperr.KindIllegalTransition) {
		t.Fatalf("expected ILLEGAL_TRANSITION, got %q", body.Kind)
	}
	if service.lastSessionID != "s-9" || service.lastStatus != "PT_CONFIRMED" {
		t.Fatalf("unexpected forwarded values %q %q", service.lastSessionID, service.lastStatus)
	}
}

func TestChangeSessionStatusForbidden(t *testing.T) {
	service := &stubBookingService{statusErr: apperr.ErrForbidden}
	handler := &BookingHandler{service: service}

	app := newActorApp(testCustomer)
	app.Post("/api/v1/sessions/status", handler.ChangeSessionStatus)

	resp := doJSON(t, app, http.MethodPost, "/api/v1/sessions/status", `{"session_id":"s-9","status":"CANCELED"}`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}

func TestOccupiedSlots(t *testing.T) {
	service := &stubBookingService{occupiedResult: []models.OccupiedSlot{{From: 540, To: 600}}}
	handler := &BookingHandler{service: service}

	app := newActorApp(testCustomer)
	app.Get("/api/v1/sessions/occupied", handler.OccupiedSlots)

	resp := doJSON(t, app, http.MethodGet, "/api/v1/sessions/occupied?trainer_id=staff-1&date=1906761600000", "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastTrainerID != "staff-1" || service.lastDate != 1906761600000 {
		t.Fatalf("unexpected query forwarded: %q %d", service.lastTrainerID, service.lastDate)
	}

	var body struct {
		OccupiedSlots []models.OccupiedSlot `json:"occupied_slots"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(body.OccupiedSlots) != 1 || body.OccupiedSlots[0].From != 540 {
		t.Fatalf("unexpected slots %+v", body.OccupiedSlots)
	}

	bad := doJSON(t, app, http.MethodGet, "/api/v1/sessions/occupied?trainer_id=staff-1&date=tomorrow", "")
	defer bad.Body.Close()
	if bad.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-numeric date, got %d", bad.StatusCode)
	}
}

func TestSlotsDefaultsToBookingStep(t *testing.T) {
	handler := &BookingHandler{service: &stubBookingService{}}

	app := newActorApp(testCustomer)
	app.Get("/api/v1/sessions/slots", handler.Slots)

	tests := []struct {
		query string
		want  int
	}{
		{query: "", want: 16},
		{query: "?step=30", want: 48},
		{query: "?step=abc", want: 16},
	}
	for _, tt := range tests {
		resp := doJSON(t, app, http.MethodGet, "/api/v1/sessions/slots"+tt.query, "")
		var body struct {
			Slots []models.Slot `json:"slots"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatalf("Decode: %v", err)
		}
		resp.Body.Close()
		if len(body.Slots) != tt.want {
			t.Fatalf("step %q: expected %d slots, got %d", tt.query, tt.want, len(body.Slots))
		}
	}

	resp := doJSON(t, app, http.MethodGet, "/api/v1/sessions/slots?step=2000", "")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for oversized step, got %d", resp.StatusCode)
	}
}

func TestRescheduleSessionForwardsPartialInput(t *testing.T) {
	service := &stubBookingService{rescheduleResult: &models.SessionDetail{}}
	handler := &BookingHandler{service: service}

	app := newActorApp(testCustomer)
	app.Put("/api/v1/sessions/:id", handler.RescheduleSession)

	resp := doJSON(t, app, http.MethodPut, "/api/v1/sessions/s-3", `{"from":600,"to":690}`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastSessionID != "s-3" {
		t.Fatalf("expected session id s-3, got %q", service.lastSessionID)
	}
	input := service.lastRescheduleInput
	if input.Date != nil || input.From == nil || *input.From != 600 || input.To == nil || *input.To != 690 {
		t.Fatalf("unexpected reschedule input %+v", input)
	}

	empty := doJSON(t, app, http.MethodPut, "/api/v1/sessions/s-3", `{}`)
	defer empty.Body.Close()
	if empty.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty body, got %d", empty.StatusCode)
	}
}

func TestGetSessionReturnsNotFound(t *testing.T) {
	service := &stubBookingService{getErr: apperr.NotFound("session")}
	handler := &BookingHandler{service: service}

	app := newActorApp(testCustomer)
	app.Get("/api/v1/sessions/:id", handler.GetSession)

	resp := doJSON(t, app, http.MethodGet, "/api/v1/sessions/missing", "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	if body := decodeError(t, resp); body.Error != "session not found" {
		t.Fatalf("unexpected message %q", body.Error)
	}
}

func TestListContractSessionsHidesInternalErrors(t *testing.T) {
	service := &stubBookingService{listErr: errors.New("connection reset by peer")}
	handler := &BookingHandler{service: service}

	app := newActorApp(testCustomer)
	app.Get("/api/v1/contracts/:id/sessions", handler.ListContractSessions)

	resp := doJSON(t, app, http.MethodGet, "/api/v1/contracts/c-1/sessions", "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
	body := decodeError(t, resp)
	if body.Kind != string(apperr.KindInternal) || strings.Contains(body.Error, "connection") {
		t.Fatalf("expected generic internal error, got %+v", body)
	}
	if service.lastContractID != "c-1" {
		t.Fatalf("expected contract id c-1, got %q", service.lastContractID)
	}
}

func TestSlotsFlagsPastSlotsForDate(t *testing.T) {
	handler := &BookingHandler{service: &stubBookingService{}}

	app := newActorApp(testCustomer)
	app.Get("/api/v1/sessions/slots", handler.Slots)

	tests := []struct {
		name     string
		query    string
		wantPast int
	}{
		{name: "no date", query: "", wantPast: 0},
		{name: "long ago", query: "?date=86400000", wantPast: 16},
		{name: "far future", query: "?date=1906761600000", wantPast: 0},
	}
	for _, tt := range tests {
		resp := doJSON(t, app, http.MethodGet, "/api/v1/sessions/slots"+tt.query, "")
		var body struct {
			Slots []models.Slot `json:"slots"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatalf("Decode: %v", err)
		}
		resp.Body.Close()

		past := 0
		for _, slot := range body.Slots {
			if slot.Past {
				past++
			}
		}
		if past != tt.wantPast {
			t.Fatalf("%s: expected %d past slots, got %d", tt.name, tt.wantPast, past)
		}
	}

	resp := doJSON(t, app, http.MethodGet, "/api/v1/sessions/slots?date=yesterday", "")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for a bad date, got %d", resp.StatusCode)
	}
}

func TestListSessionsForwardsFilters(t *testing.T) {
	service := &stubBookingService{
		historyResult: []models.SessionDetail{{Session: models.Session{ID: "s-1"}}},
		historyTotal:  11,
	}
	handler := &BookingHandler{service: service}

	app := newActorApp(testCustomer)
	app.Get("/api/v1/sessions", handler.ListSessions)

	resp := doJSON(t, app, http.MethodGet,
		"/api/v1/sessions?page=2&limit=5&statuses=PT_CONFIRMED,canceled&start_date=1906761600000&end_date=1907366400000", "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	in := service.lastListInput
	if in.Page != 2 || in.Limit != 5 {
		t.Fatalf("expected page 2 limit 5, got %d %d", in.Page, in.Limit)
	}
	if len(in.Statuses) != 2 || in.Statuses[0] != "PT_CONFIRMED" || in.Statuses[1] != "canceled" {
		t.Fatalf("unexpected statuses %v", in.Statuses)
	}
	if in.StartDate == nil || *in.StartDate != 1906761600000 || in.EndDate == nil || *in.EndDate != 1907366400000 {
		t.Fatalf("unexpected date range %v %v", in.StartDate, in.EndDate)
	}

	var body struct {
		Sessions   []models.SessionDetail `json:"sessions"`
		Pagination models.PaginationMeta  `json:"pagination"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(body.Sessions) != 1 || body.Pagination.Total != 11 || body.Pagination.TotalPages != 3 {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestListSessionsRejectsBadDates(t *testing.T) {
	service := &stubBookingService{}
	handler := &BookingHandler{service: service}

	app := newActorApp(testCustomer)
	app.Get("/api/v1/sessions", handler.ListSessions)

	for _, query := range []string{"?start_date=soon", "?end_date=-5"} {
		resp := doJSON(t, app, http.MethodGet, "/api/v1/sessions"+query, "")
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", query, resp.StatusCode)
		}
	}
	if service.lastActor.ID != "" {
		t.Fatal("service should not be called for bad dates")
	}
}

func TestListSessionsReturnsEmptyArray(t *testing.T) {
	handler := &BookingHandler{service: &stubBookingService{}}

	app := newActorApp(testCustomer)
	app.Get("/api/v1/sessions", handler.ListSessions)

	resp := doJSON(t, app, http.MethodGet, "/api/v1/sessions", "")
	defer resp.Body.Close()

	var body map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if string(body["sessions"]) != "[]" {
		t.Fatalf("expected empty array, got %s", body["sessions"])
	}
}
