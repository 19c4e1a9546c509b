package handler

import (
	"encoding/json"
	"net/http"

	"slotkeeper/internal/catalog/service"
	apperrors "slotkeeper/pkg/errors"
	httputil "slotkeeper/pkg/http"
	"slotkeeper/pkg/logger"
	"slotkeeper/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type ServiceHandler struct {
	service service.CatalogService
	log     *logger.Logger
}

func NewServiceHandler(service service.CatalogService, log *logger.Logger) *ServiceHandler {
	return &ServiceHandler{
		service: service,
		log:     log,
	}
}

func (h *ServiceHandler) GetService(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	svc, err := h.service.GetService(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetService", err)
		return
	}

	if err := httputil.WriteSuccess(w, svc); err != nil {
		h.log.Error("failed to write success response", "handler", "GetService", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ServiceHandler) UpsertService(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := httputil.RequireAdmin(r); err != nil {
		h.writeError(w, "UpsertService", err)
		return
	}

	var svc model.Service
	if err := json.NewDecoder(r.Body).Decode(&svc); err != nil {
		h.writeError(w, "UpsertService", apperrors.InvalidInput("Invalid request body"))
		return
	}
	svc.ID = ps.ByName("id")

	if err := h.service.UpsertService(r.Context(), &svc); err != nil {
		h.writeError(w, "UpsertService", err)
		return
	}

	if err := httputil.WriteSuccess(w, svc); err != nil {
		h.log.Error("failed to write success response", "handler", "UpsertService", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ServiceHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *ServiceHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/services/:id", h.GetService)
	router.PUT("/api/v1/services/:id", h.UpsertService)
}
