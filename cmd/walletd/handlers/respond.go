package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/iov-one/custody/client"
	"github.com/iov-one/custody/errors"
	"github.com/tendermint/tendermint/libs/log"
)

// JSONResp writes content as the JSON body of the response.
func JSONResp(w http.ResponseWriter, logger log.Logger, code int, content interface{}) {
	b, err := json.MarshalIndent(content, "", "\t")
	if err != nil {
		logger.Error("cannot JSON serialize response", "err", err)
		code = http.StatusInternalServerError
		b = []byte(`{"code":1,"errors":["internal error"]}`)
	}
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(code)

	const MB = 1 << (10 * 2)
	if len(b) > MB {
		logger.Info("response JSON body is huge", "size", len(b))
	}
	_, _ = w.Write(b)
}

// JSONErr writes err as the JSON body of the response. Internal errors
// are hidden unless debug is set.
func JSONErr(w http.ResponseWriter, logger log.Logger, debug bool, err error) {
	code, msg := errors.Info(err, debug)
	status := StatusCode(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed", "err", err)
	}
	JSONResp(w, logger, status, client.ErrorResponse{
		Code:   code,
		Errors: []string{msg},
	})
}

// StatusCode returns the HTTP status matching the category of err.
func StatusCode(err error) int {
	switch errors.CategoryOf(err) {
	case errors.ErrValidation, errors.ErrInput, errors.ErrType, errors.ErrEmpty:
		return http.StatusBadRequest
	case errors.ErrUnauthorized:
		return http.StatusForbidden
	case errors.ErrNotFound:
		return http.StatusNotFound
	case errors.ErrState, errors.ErrDuplicate:
		return http.StatusConflict
	case errors.ErrExecution, errors.ErrInsufficientAmount, errors.ErrOverflow:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
