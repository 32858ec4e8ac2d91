package render

import (
	"encoding/json"
	"errors"
	"net/http"

	"lending/core"

	"github.com/sirupsen/logrus"
)

type H map[string]interface{}

// JSON render with json
func JSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Debugln("render json")
	}
}

// Error write error
func Error(w http.ResponseWriter, statusCode, errCode int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(errorResponse{Code: errCode, Msg: err.Error()}); err != nil {
		logrus.WithError(err).Debugln("render error")
	}
}

// Err write err, core error codes are kept and mapped to a status by kind
func Err(w http.ResponseWriter, err error) {
	var code core.ErrorCode
	if errors.As(err, &code) {
		Error(w, statusOf(code.Kind()), int(code), err)
		return
	}

	Error(w, http.StatusInternalServerError, -1, err)
}

func statusOf(kind core.ErrorKind) int {
	switch kind {
	case core.KindNotFound:
		return http.StatusNotFound
	case core.KindInvariant, core.KindCapacity:
		return http.StatusUnprocessableEntity
	case core.KindOverflow, core.KindPrecondition:
		return http.StatusBadRequest
	}

	return http.StatusInternalServerError
}

// BadRequest bad request error
func BadRequest(w http.ResponseWriter, err error) {
	Error(w, http.StatusBadRequest, -1, err)
}

// NotFoundRequest not found request error
func NotFoundRequest(w http.ResponseWriter, err error) {
	Error(w, http.StatusNotFound, -1, err)
}

// Unauthorized missing or invalid access token
func Unauthorized(w http.ResponseWriter, err error) {
	Error(w, http.StatusUnauthorized, 401, err)
}

// Forbidden token owner can not act on the resource
func Forbidden(w http.ResponseWriter, err error) {
	Error(w, http.StatusForbidden, 403, err)
}
