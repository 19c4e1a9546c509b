// Package remote talks to the catalog and client directory services over
// HTTP.
package remote

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	catalogerrors "slotkeeper/internal/catalog/errors"
	"slotkeeper/internal/catalog/service"
	"slotkeeper/pkg/client"
	apperrors "slotkeeper/pkg/errors"
	"slotkeeper/pkg/logger"
	"slotkeeper/pkg/model"
)

type HTTPServiceCatalog struct {
	client *client.HttpClient
	log    *logger.Logger
}

var _ service.ServiceCatalog = (*HTTPServiceCatalog)(nil)

func NewHTTPServiceCatalog(c *client.HttpClient, log *logger.Logger) *HTTPServiceCatalog {
	return &HTTPServiceCatalog{client: c, log: log}
}

func (c *HTTPServiceCatalog) GetService(ctx context.Context, id string) (*model.Service, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Service ID cannot be empty")
	}

	resp, err := c.client.GET(ctx, "/services/"+url.PathEscape(id))
	if err != nil {
		c.log.Error("Service catalog request failed", "service_id", id, "error", err)
		return nil, apperrors.Unavailable("service catalog")
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, apperrors.NotFoundWithID("Service", id)
	default:
		c.log.Error("Service catalog returned an error",
			"service_id", id,
			"status", resp.StatusCode,
			"message", client.GetErrorMessage(resp),
		)
		return nil, apperrors.Unavailable("service catalog")
	}

	svc, err := decodeService(resp)
	if err != nil {
		return nil, apperrors.Internal("Failed to decode service catalog response", err)
	}
	if svc.DurationMin <= 0 {
		return nil, apperrors.Internal("Service catalog returned an invalid duration",
			fmt.Errorf("service %s has duration %d", id, svc.DurationMin))
	}
	if svc.ID == "" {
		svc.ID = id
	}
	return svc, nil
}

// decodeService accepts either a bare service object or one wrapped in a
// {"data": ...} envelope.
func decodeService(resp *client.Response) (*model.Service, error) {
	var envelope struct {
		Data *model.Service `json:"data"`
	}
	if err := resp.DecodeJSON(&envelope); err != nil {
		return nil, err
	}
	if envelope.Data != nil {
		return envelope.Data, nil
	}

	var svc model.Service
	if err := resp.DecodeJSON(&svc); err != nil {
		return nil, err
	}
	return &svc, nil
}

type HTTPClientDirectory struct {
	client *client.HttpClient
	log    *logger.Logger
}

var _ service.ClientDirectory = (*HTTPClientDirectory)(nil)

func NewHTTPClientDirectory(c *client.HttpClient, log *logger.Logger) *HTTPClientDirectory {
	return &HTTPClientDirectory{client: c, log: log}
}

func (d *HTTPClientDirectory) ClientExists(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, nil
	}

	resp, err := d.client.GET(ctx, "/clients/"+url.PathEscape(id))
	if err != nil {
		return false, fmt.Errorf("client directory request failed: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("%w: client directory returned %d: %s",
			catalogerrors.ErrDirectoryUnavailable, resp.StatusCode, client.GetErrorMessage(resp))
	}
}
