package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"slotkeeper/internal/calendar/service"
	apperrors "slotkeeper/pkg/errors"
	httputil "slotkeeper/pkg/http"
	"slotkeeper/pkg/logger"
	"slotkeeper/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type CalendarHandler struct {
	service service.CalendarService
	log     *logger.Logger
}

func NewCalendarHandler(service service.CalendarService, log *logger.Logger) *CalendarHandler {
	return &CalendarHandler{
		service: service,
		log:     log,
	}
}

type workingWindowResponse struct {
	SpecialistID string  `json:"specialist_id"`
	Date         string  `json:"date"`
	Working      bool    `json:"working"`
	Start        *string `json:"start_time,omitempty"`
	End          *string `json:"end_time,omitempty"`
	TimeZone     string  `json:"time_zone"`
}

func (h *CalendarHandler) GetWorkingWindow(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	date := r.URL.Query().Get("date")

	day, err := h.service.GetDay(r.Context(), id, date)
	if err != nil {
		h.writeError(w, "GetWorkingWindow", err)
		return
	}

	resp := workingWindowResponse{
		SpecialistID: id,
		Date:         date,
		Working:      day.Window != nil,
		TimeZone:     day.Location.String(),
	}
	if day.Window != nil {
		start, end := day.Window.Start.String(), day.Window.End.String()
		resp.Start, resp.End = &start, &end
	}

	if err := httputil.WriteSuccess(w, resp); err != nil {
		h.log.Error("failed to write success response", "handler", "GetWorkingWindow", "operation", "WriteSuccess", "error", err)
	}
}

func (h *CalendarHandler) GetSpecialist(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	sp, err := h.service.GetSpecialist(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetSpecialist", err)
		return
	}

	if err := httputil.WriteSuccess(w, sp); err != nil {
		h.log.Error("failed to write success response", "handler", "GetSpecialist", "operation", "WriteSuccess", "error", err)
	}
}

func (h *CalendarHandler) UpsertSpecialist(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := httputil.RequireAdmin(r); err != nil {
		h.writeError(w, "UpsertSpecialist", err)
		return
	}

	var sp model.Specialist
	if err := json.NewDecoder(r.Body).Decode(&sp); err != nil {
		h.writeError(w, "UpsertSpecialist", apperrors.InvalidInput("Invalid request body"))
		return
	}
	sp.ID = ps.ByName("id")
	sp.Schedule = nil

	if err := h.service.UpsertSpecialist(r.Context(), &sp); err != nil {
		h.writeError(w, "UpsertSpecialist", err)
		return
	}

	if err := httputil.WriteSuccess(w, sp); err != nil {
		h.log.Error("failed to write success response", "handler", "UpsertSpecialist", "operation", "WriteSuccess", "error", err)
	}
}

func (h *CalendarHandler) SetWorkingDay(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := httputil.RequireAdmin(r); err != nil {
		h.writeError(w, "SetWorkingDay", err)
		return
	}

	day, err := parseDay(ps.ByName("day"))
	if err != nil {
		h.writeError(w, "SetWorkingDay", err)
		return
	}

	var req model.WorkingDayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "SetWorkingDay", apperrors.InvalidInput("Invalid request body"))
		return
	}

	sp, err := h.service.SetWorkingDay(r.Context(), ps.ByName("id"), day, &req)
	if err != nil {
		h.writeError(w, "SetWorkingDay", err)
		return
	}

	if err := httputil.WriteSuccess(w, sp); err != nil {
		h.log.Error("failed to write success response", "handler", "SetWorkingDay", "operation", "WriteSuccess", "error", err)
	}
}

func (h *CalendarHandler) RemoveWorkingDay(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := httputil.RequireAdmin(r); err != nil {
		h.writeError(w, "RemoveWorkingDay", err)
		return
	}

	day, err := parseDay(ps.ByName("day"))
	if err != nil {
		h.writeError(w, "RemoveWorkingDay", err)
		return
	}

	if _, err := h.service.RemoveWorkingDay(r.Context(), ps.ByName("id"), day); err != nil {
		h.writeError(w, "RemoveWorkingDay", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *CalendarHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func parseDay(s string) (int, error) {
	day, err := strconv.Atoi(s)
	if err != nil || day < 0 || day > 6 {
		return 0, apperrors.InvalidInput("day must be an integer between 0 (Sunday) and 6 (Saturday)")
	}
	return day, nil
}

func (h *CalendarHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/specialists/:id", h.GetSpecialist)
	router.PUT("/api/v1/specialists/:id", h.UpsertSpecialist)
	router.GET("/api/v1/specialists/:id/working-window", h.GetWorkingWindow)
	router.PUT("/api/v1/specialists/:id/schedule/:day", h.SetWorkingDay)
	router.DELETE("/api/v1/specialists/:id/schedule/:day", h.RemoveWorkingDay)
}
