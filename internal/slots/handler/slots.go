package handler

import (
	"net/http"

	"slotkeeper/internal/slots/service"
	"slotkeeper/pkg/daytime"
	httputil "slotkeeper/pkg/http"
	"slotkeeper/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type SlotHandler struct {
	service service.SlotService
	log     *logger.Logger
}

func NewSlotHandler(service service.SlotService, log *logger.Logger) *SlotHandler {
	return &SlotHandler{
		service: service,
		log:     log,
	}
}

type freeSlotsResponse struct {
	SpecialistID string          `json:"specialist_id"`
	ServiceID    string          `json:"service_id"`
	Date         string          `json:"date"`
	Slots        []daytime.Range `json:"slots"`
}

type occupancyResponse struct {
	SpecialistID string          `json:"specialist_id"`
	Date         string          `json:"date"`
	Occupied     []daytime.Range `json:"occupied"`
}

func (h *SlotHandler) GetFreeSlots(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	specialistID := ps.ByName("id")
	serviceID := r.URL.Query().Get("service_id")
	date := r.URL.Query().Get("date")

	slots, err := h.service.GetFreeSlots(r.Context(), specialistID, serviceID, date)
	if err != nil {
		h.writeError(w, "GetFreeSlots", err)
		return
	}

	resp := freeSlotsResponse{
		SpecialistID: specialistID,
		ServiceID:    serviceID,
		Date:         date,
		Slots:        slots,
	}
	if err := httputil.WriteSuccess(w, resp); err != nil {
		h.log.Error("failed to write success response", "handler", "GetFreeSlots", "operation", "WriteSuccess", "error", err)
	}
}

func (h *SlotHandler) GetOccupancy(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	specialistID := ps.ByName("id")
	date := r.URL.Query().Get("date")

	occupied, err := h.service.GetOccupiedIntervals(r.Context(), specialistID, date)
	if err != nil {
		h.writeError(w, "GetOccupancy", err)
		return
	}

	resp := occupancyResponse{
		SpecialistID: specialistID,
		Date:         date,
		Occupied:     occupied,
	}
	if err := httputil.WriteSuccess(w, resp); err != nil {
		h.log.Error("failed to write success response", "handler", "GetOccupancy", "operation", "WriteSuccess", "error", err)
	}
}

func (h *SlotHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *SlotHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/specialists/:id/free-slots", h.GetFreeSlots)
	router.GET("/api/v1/specialists/:id/occupancy", h.GetOccupancy)
}
