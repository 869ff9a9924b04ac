package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/recipe-api/internal/application"
	"github.com/oksasatya/recipe-api/internal/domain/entity"
	"github.com/oksasatya/recipe-api/internal/interface/middleware"
	"github.com/oksasatya/recipe-api/pkg/helpers"
	"github.com/oksasatya/recipe-api/pkg/response"
	"github.com/oksasatya/recipe-api/pkg/validation"
)

func currentUser(c *gin.Context) int64 { return c.GetInt64(middleware.CtxUserIDKey) }

func currentSession(c *gin.Context) string { return c.GetString(middleware.CtxSessionIDKey) }

// writeError maps domain errors onto HTTP responses. Unknown errors are
// logged and reported as a generic 500.
func writeError(c *gin.Context, logger *logrus.Logger, err error) {
	var ve *entity.ValidationError
	switch {
	case errors.As(err, &ve):
		response.Error(c, http.StatusBadRequest, "invalid payload", ve.Fields)
	case errors.Is(err, entity.ErrNotFound):
		response.Error(c, http.StatusNotFound, "not found", nil)
	case errors.Is(err, entity.ErrEmailTaken), errors.Is(err, entity.ErrEmailRequired):
		response.Error(c, http.StatusBadRequest, err.Error(), map[string]string{"email": err.Error()})
	case errors.Is(err, entity.ErrDuplicateName):
		response.Error(c, http.StatusBadRequest, err.Error(), map[string]string{"name": err.Error()})
	case errors.Is(err, entity.ErrInvalidCredentials):
		response.Error(c, http.StatusBadRequest, err.Error(), map[string]string{"non_field_errors": err.Error()})
	case errors.Is(err, entity.ErrUnauthorized):
		response.Error(c, http.StatusUnauthorized, err.Error(), nil)
	case errors.Is(err, application.ErrImageStorageUnavailable):
		response.Error(c, http.StatusServiceUnavailable, err.Error(), nil)
	default:
		helpers.LogError(logger, "request failed", err, logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"request_id": c.GetString("request_id"),
		})
		response.Error(c, http.StatusInternalServerError, "internal server error", nil)
	}
}

// bindJSON decodes and validates the body into dst. On failure it writes
// a 400 and returns false.
func bindJSON(c *gin.Context, dst any) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return true
	}
	if entity.IsPriceError(err) {
		response.Error(c, http.StatusBadRequest, "invalid payload", map[string]string{"price": err.Error()})
		return false
	}
	response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
	return false
}

// pathID parses the :id segment. A malformed id matches no row.
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusNotFound, "not found", nil)
		return 0, false
	}
	return id, true
}

// queryIDs parses a comma-separated id list such as "1,2,3".
func queryIDs(c *gin.Context, key string) ([]int64, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, entity.NewValidationError(key, "must be a comma-separated list of integers")
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// queryFlag parses 0/1/true/false; absent means false.
func queryFlag(c *gin.Context, key string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(c.Query(key))) {
	case "", "0", "false":
		return false, nil
	case "1", "true":
		return true, nil
	default:
		return false, entity.NewValidationError(key, "must be one of: 0, 1")
	}
}
