package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/pranavrajput12/PRSNL-sub011/application/mediator"
	apperrors "github.com/pranavrajput12/PRSNL-sub011/pkg/errors"
)

const maxBodyBytes = 1 << 20

// base carries what every handler needs
type base struct {
	mediator mediator.IMediator
	errors   *apperrors.ErrorHandler
	logger   *zap.Logger
}

func newBase(m mediator.IMediator, errs *apperrors.ErrorHandler, logger *zap.Logger) base {
	return base{mediator: m, errors: errs, logger: logger}
}

// decodeBody decodes JSON into dst on top of whatever defaults dst already
// holds. An empty body leaves dst untouched.
func decodeBody(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return nil
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return apperrors.NewValidationError("Invalid request body: " + err.Error())
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.NewValidationErrorf("%s must be an integer", name)
	}
	return v, nil
}

func queryFloat(r *http.Request, name string, def float64) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, apperrors.NewValidationErrorf("%s must be a number", name)
	}
	return v, nil
}
