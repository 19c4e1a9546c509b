package http

import (
	"net/http"
	"slotkeeper/pkg/config"
	apperrors "slotkeeper/pkg/errors"
	"slotkeeper/pkg/model"
	"strconv"
	"strings"
)

func ExtractLimitOffset(r *http.Request) (int, int64, error) {
	query := r.URL.Query()

	limit := 0
	if s := query.Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid limit parameter: " + s)
		}
		limit = v
	}

	var offset int64 = 0
	if s := query.Get("offset"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid offset parameter: " + s)
		}
		offset = int64(v)
	}

	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	return limit, offset, nil
}

const (
	HeaderActorRole = "X-Actor-Role"
	HeaderClientID  = "X-Client-ID"
)

// ActorFromRequest reads the identity headers set by the gateway. A missing
// role means a client.
func ActorFromRequest(r *http.Request) (model.Actor, error) {
	clientID := strings.TrimSpace(r.Header.Get(HeaderClientID))

	switch role := model.ActorRole(strings.ToLower(strings.TrimSpace(r.Header.Get(HeaderActorRole)))); role {
	case "", model.RoleClient:
		return model.ClientActor(clientID), nil
	case model.RoleAdmin:
		return model.Actor{Role: model.RoleAdmin, ClientID: clientID}, nil
	default:
		return model.Actor{}, apperrors.InvalidInput("invalid " + HeaderActorRole + " header: " + string(role))
	}
}

// RequireAdmin returns Forbidden for non-admin callers.
func RequireAdmin(r *http.Request) error {
	actor, err := ActorFromRequest(r)
	if err != nil {
		return err
	}
	if !actor.IsAdmin() {
		return apperrors.Forbidden("Administrator role required")
	}
	return nil
}
