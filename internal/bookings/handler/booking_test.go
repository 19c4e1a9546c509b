package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "slotkeeper/pkg/errors"
	httputil "slotkeeper/pkg/http"
	"slotkeeper/pkg/logger"
	"slotkeeper/pkg/model"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockBookingService struct {
	createFunc       func(ctx context.Context, actor model.Actor, req *model.BookingRequest) (*model.Booking, error)
	changeStatusFunc func(ctx context.Context, actor model.Actor, id string, status model.BookingStatus) (*model.Booking, error)
	getFunc          func(ctx context.Context, actor model.Actor, id string) (*model.Booking, error)
	listFunc         func(ctx context.Context, actor model.Actor, filter *model.BookingFilter) ([]*model.Booking, int64, error)
}

func (m *mockBookingService) CreateBooking(ctx context.Context, actor model.Actor, req *model.BookingRequest) (*model.Booking, error) {
	return m.createFunc(ctx, actor, req)
}

func (m *mockBookingService) ChangeStatus(ctx context.Context, actor model.Actor, id string, status model.BookingStatus) (*model.Booking, error) {
	return m.changeStatusFunc(ctx, actor, id, status)
}

func (m *mockBookingService) GetBooking(ctx context.Context, actor model.Actor, id string) (*model.Booking, error) {
	return m.getFunc(ctx, actor, id)
}

func (m *mockBookingService) ListBookings(ctx context.Context, actor model.Actor, filter *model.BookingFilter) ([]*model.Booking, int64, error) {
	return m.listFunc(ctx, actor, filter)
}

func newRouter(svc *mockBookingService) *httprouter.Router {
	router := httprouter.New()
	NewBookingHandler(svc, logger.NewNop()).RegisterRoutes(router)
	return router
}

func TestCreate_DefaultsClientIDFromHeader(t *testing.T) {
	var got *model.BookingRequest
	var gotActor model.Actor
	svc := &mockBookingService{
		createFunc: func(ctx context.Context, actor model.Actor, req *model.BookingRequest) (*model.Booking, error) {
			got, gotActor = req, actor
			return &model.Booking{ID: "b-1", ClientID: req.ClientID, Status: model.StatusPending}, nil
		},
	}

	body := `{"specialist_id":"sp-1","service_id":"svc-1","date":"2026-10-26","start_time":"10:00"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(body))
	req.Header.Set(httputil.HeaderClientID, "c-1")
	rec := httptest.NewRecorder()

	newRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, "c-1", got.ClientID)
	assert.Equal(t, model.RoleClient, gotActor.Role)
	assert.Contains(t, rec.Body.String(), `"id":"b-1"`)
}

func TestCreate_Errors(t *testing.T) {
	svc := &mockBookingService{
		createFunc: func(ctx context.Context, actor model.Actor, req *model.BookingRequest) (*model.Booking, error) {
			return nil, apperrors.Conflict("Requested time overlaps an occupied interval")
		},
	}
	router := newRouter(svc)

	tests := []struct {
		name     string
		body     string
		role     string
		wantCode int
	}{
		{"bad body", `{`, "", http.StatusBadRequest},
		{"bad role", `{}`, "owner", http.StatusBadRequest},
		{"conflict", `{"client_id":"c-1"}`, "admin", http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(tt.body))
			if tt.role != "" {
				req.Header.Set(httputil.HeaderActorRole, tt.role)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestChangeStatus_UppercasesStatus(t *testing.T) {
	svc := &mockBookingService{
		changeStatusFunc: func(ctx context.Context, actor model.Actor, id string, status model.BookingStatus) (*model.Booking, error) {
			assert.Equal(t, "b-1", id)
			assert.Equal(t, model.StatusCancelled, status)
			assert.True(t, actor.IsAdmin())
			return &model.Booking{ID: id, Status: status}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/bookings/b-1/status/cancelled", nil)
	req.Header.Set(httputil.HeaderActorRole, "admin")
	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestChangeStatus_InvalidTransition(t *testing.T) {
	svc := &mockBookingService{
		changeStatusFunc: func(ctx context.Context, actor model.Actor, id string, status model.BookingStatus) (*model.Booking, error) {
			return nil, apperrors.InvalidTransition("CANCELLED", string(status))
		},
	}

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/bookings/b-1/status/CONFIRMED", nil)
	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, apperrors.CodeInvalidTransition, body["code"])
}

func TestList_ParsesFilter(t *testing.T) {
	var got *model.BookingFilter
	svc := &mockBookingService{
		listFunc: func(ctx context.Context, actor model.Actor, filter *model.BookingFilter) ([]*model.Booking, int64, error) {
			got = filter
			return []*model.Booking{}, 0, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings?specialist_id=sp-1&status=pending&scope=UPCOMING&limit=5&offset=10", nil)
	req.Header.Set(httputil.HeaderActorRole, "admin")
	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, "sp-1", got.SpecialistID)
	assert.Equal(t, model.StatusPending, got.Status)
	assert.Equal(t, model.ScopeUpcoming, got.Scope)
	assert.Equal(t, 5, got.Limit)
	assert.Equal(t, int64(10), got.Offset)
}

func TestList_InvalidLimit(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings?limit=abc", nil)
	rec := httptest.NewRecorder()
	newRouter(&mockBookingService{}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetByID_NotFound(t *testing.T) {
	svc := &mockBookingService{
		getFunc: func(ctx context.Context, actor model.Actor, id string) (*model.Booking, error) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings/b-9", nil)
	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
