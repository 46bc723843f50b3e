package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/konditional/konditional/internal/codec"
	"github.com/konditional/konditional/internal/notifier"
	"github.com/konditional/konditional/internal/registry"
)

const (
	loadEventType     = notifier.EventLoad
	rollbackEventType = notifier.EventRollback
)

func decodeJSONBody(r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	return dec.Decode(v)
}

// writeDecodeError maps a codec.ParseError onto the HTTP status contract:
// malformed or structurally invalid JSON is a client error (400); a
// reference to an unregistered feature is semantically valid JSON the
// server simply doesn't recognize (422).
func writeDecodeError(w http.ResponseWriter, r *http.Request, err error) {
	var parseErr *codec.ParseError
	if pe, ok := err.(*codec.ParseError); ok {
		parseErr = pe
	}
	if parseErr == nil {
		writeError(w, r, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	}

	switch parseErr.Kind {
	case codec.FeatureNotFound:
		writeError(w, r, http.StatusUnprocessableEntity, ErrCodeFeatureNotFnd, parseErr.Error())
	case codec.InvalidJSON:
		writeError(w, r, http.StatusBadRequest, ErrCodeInvalidJSON, parseErr.Error())
	case codec.InvalidType:
		writeError(w, r, http.StatusBadRequest, ErrCodeInvalidType, parseErr.Error())
	case codec.MissingKey:
		writeError(w, r, http.StatusBadRequest, ErrCodeMissingKey, parseErr.Error())
	default:
		writeError(w, r, http.StatusBadRequest, ErrCodeInvalidSchema, parseErr.Error())
	}
}

func (s *Server) persistAndNotify(r *http.Request, rawJSON string) {
	if s.store != nil {
		_, _ = s.store.Append(r.Context(), s.namespace.Name(), "http", rawJSON)
	}
	if s.notify != nil {
		s.notify.Notify(changeEvent(s.namespace, loadEventType))
	}
}

func changeEvent(ns *registry.Namespace, kind notifier.EventKind) notifier.Event {
	return notifier.Event{
		Type:         kind,
		Namespace:    ns.Name(),
		Generation:   ns.Generation(),
		FeatureCount: ns.Configuration().Len(),
		OccurredAt:   time.Now().UTC(),
	}
}
