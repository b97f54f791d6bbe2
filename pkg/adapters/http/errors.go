package http

import (
	"errors"
	"net/http"

	"github.com/aretw0/viben"
	"github.com/aretw0/viben/pkg/domain"
	"github.com/aretw0/viben/pkg/playback"
	"github.com/aretw0/viben/pkg/tutor"
)

type fieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
	Card   *int   `json:"card,omitempty"`
}

type errorBody struct {
	Error  string       `json:"error"`
	Fields []fieldError `json:"fields,omitempty"`
}

var playbackErrors = []error{
	playback.ErrEmptyTutorial,
	playback.ErrIndexOutOfRange,
	playback.ErrNotQuiz,
	playback.ErrOptionOutOfRange,
	playback.ErrModalityNotOffered,
	playback.ErrEmptyChoice,
	playback.ErrUnknownEvent,
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrShape), errors.Is(err, domain.ErrParse):
		return http.StatusUnprocessableEntity
	case errors.Is(err, tutor.ErrNoMessages):
		return http.StatusBadRequest
	case errors.Is(err, viben.ErrNoGenerator), errors.Is(err, viben.ErrNoRecordSource), errors.Is(err, viben.ErrNoChatter):
		return http.StatusServiceUnavailable
	}
	for _, target := range playbackErrors {
		if errors.Is(err, target) {
			return http.StatusUnprocessableEntity
		}
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	body := errorBody{Error: err.Error()}
	for _, se := range domain.ShapeErrors(err) {
		fe := fieldError{Field: se.Field, Reason: se.Reason}
		if se.Card >= 0 {
			card := se.Card
			fe.Card = &card
		}
		body.Fields = append(body.Fields, fe)
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "status", status, "err", err)
	} else {
		s.logger.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "err", err)
	}
	writeJSON(w, status, body)
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
