package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/smsi-platform/smsi-backend/internal/response"
	"github.com/smsi-platform/smsi-backend/internal/service"
)

// failFromService maps a service error onto the API error envelope.
// Unknown errors are attached to the context for the request logger and
// answered with a generic 500.
func failFromService(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
	case errors.Is(err, service.ErrInvalidPassword):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPassword)
	case errors.Is(err, service.ErrEmailExists):
		response.Fail(c, http.StatusConflict, response.ErrEmailExists)
	case errors.Is(err, service.ErrCannotDeleteSelf):
		response.Fail(c, http.StatusBadRequest, response.ErrCannotDeleteSelf)
	case errors.Is(err, service.ErrUserNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrUserNotFound)
	case errors.Is(err, service.ErrModuleNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrModuleNotFound)
	case errors.Is(err, service.ErrQuizNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrNoQuestions):
		response.Fail(c, http.StatusNotFound, response.ErrNoQuestions)
	case errors.Is(err, service.ErrInvalidAnswer):
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
			map[string]string{"correct_option": err.Error()})
	case errors.Is(err, service.ErrResultNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrResultNotFound)
	case errors.Is(err, service.ErrNotEligible):
		response.Fail(c, http.StatusForbidden, response.ErrNotEligible)
	default:
		_ = c.Error(err)
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// paramID parses a positive integer path parameter, answering 400 otherwise.
func paramID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return 0, false
	}
	return id, true
}

// queryInt reads an integer query parameter with a fallback.
func queryInt(c *gin.Context, name string, def int) int {
	v, err := strconv.Atoi(c.DefaultQuery(name, strconv.Itoa(def)))
	if err != nil {
		return def
	}
	return v
}
