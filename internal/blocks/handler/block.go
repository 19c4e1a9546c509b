package handler

import (
	"encoding/json"
	"net/http"

	"slotkeeper/internal/blocks/service"
	apperrors "slotkeeper/pkg/errors"
	httputil "slotkeeper/pkg/http"
	"slotkeeper/pkg/logger"
	"slotkeeper/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type BlockHandler struct {
	service service.BlockService
	log     *logger.Logger
}

func NewBlockHandler(service service.BlockService, log *logger.Logger) *BlockHandler {
	return &BlockHandler{
		service: service,
		log:     log,
	}
}

func (h *BlockHandler) Add(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := httputil.RequireAdmin(r); err != nil {
		h.writeError(w, "Add", err)
		return
	}

	var req model.BlockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Add", apperrors.InvalidInput("Invalid request body"))
		return
	}

	block, err := h.service.AddBlock(r.Context(), ps.ByName("id"), &req)
	if err != nil {
		h.writeError(w, "Add", err)
		return
	}

	if err := httputil.WriteCreated(w, block); err != nil {
		h.log.Error("failed to write created response", "handler", "Add", "operation", "WriteCreated", "error", err)
	}
}

func (h *BlockHandler) List(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	blocks, err := h.service.ListBlocks(r.Context(), ps.ByName("id"), r.URL.Query().Get("date"))
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	if err := httputil.WriteSuccess(w, blocks); err != nil {
		h.log.Error("failed to write success response", "handler", "List", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BlockHandler) Remove(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := httputil.RequireAdmin(r); err != nil {
		h.writeError(w, "Remove", err)
		return
	}

	if err := h.service.RemoveBlock(r.Context(), ps.ByName("id")); err != nil {
		h.writeError(w, "Remove", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *BlockHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *BlockHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/specialists/:id/blocks", h.Add)
	router.GET("/api/v1/specialists/:id/blocks", h.List)
	router.DELETE("/api/v1/blocks/:id", h.Remove)
}
