package httpapi

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/go-chi/chi/v5"

	"github.com/konditional/konditional/internal/codec"
	"github.com/konditional/konditional/internal/loader"
	"github.com/konditional/konditional/internal/stableid"
	"github.com/konditional/konditional/internal/targeting"
)

// evaluateResponse is the wire shape for GET /v1/evaluate/{feature}.
type evaluateResponse struct {
	Feature          string `json:"feature"`
	Value            any    `json:"value"`
	Decision         string `json:"decision"`
	MatchedRuleIndex int    `json:"matchedRuleIndex"`
	SkippedByRollout int    `json:"skippedByRollout"`
	Bucket           int    `json:"bucket"`
	BucketComputed   bool   `json:"bucketComputed"`
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	featureKey := chi.URLParam(r, "feature")
	ctx, err := parseContext(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	}

	result, ok := s.namespace.Evaluate(featureKey, ctx)
	if !ok {
		writeError(w, r, http.StatusUnprocessableEntity, ErrCodeFeatureNotFnd, "unknown feature: "+featureKey)
		return
	}

	writeJSON(w, http.StatusOK, evaluateResponse{
		Feature:          featureKey,
		Value:            result.Value.Raw(),
		Decision:         result.Decision.Kind.String(),
		MatchedRuleIndex: result.Decision.MatchedRuleIndex,
		SkippedByRollout: result.Decision.SkippedByRollout,
		Bucket:           result.Decision.Bucket,
		BucketComputed:   result.Decision.BucketComputed,
	})
}

func parseContext(r *http.Request) (targeting.Context, error) {
	q := r.URL.Query()
	ctx := targeting.Context{
		StableID: stableid.ID(q.Get("stableId")),
		Locale:   q.Get("locale"),
		Platform: q.Get("platform"),
	}
	if !stableid.Valid(ctx.StableID) {
		return ctx, errors.New("stableId is not valid hex")
	}

	if v := q.Get("appVersion"); v != "" {
		parsed, err := semver.NewVersion(v)
		if err != nil {
			return ctx, errors.New("appVersion is not a valid semantic version")
		}
		ctx.AppVersion = parsed
	}

	axisValues := map[targeting.AxisID]targeting.AxisValueID{}
	for key, vals := range q {
		const prefix = "axis."
		if !strings.HasPrefix(key, prefix) || len(vals) == 0 {
			continue
		}
		axisValues[targeting.AxisID(key[len(prefix):])] = targeting.AxisValueID(vals[0])
	}
	if len(axisValues) > 0 {
		ctx.AxisValues = axisValues
	}
	return ctx, nil
}

type snapshotResponse struct {
	Namespace     string `json:"namespace"`
	Generation    uint64 `json:"generation"`
	ConfigVersion string `json:"configVersion"`
	Raw           string `json:"raw"`
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	config := s.namespace.Configuration()
	raw, err := codec.Encode(config)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, ErrCodeInternal, "failed to encode snapshot")
		return
	}

	etag := strconv.FormatUint(s.namespace.Generation(), 10)
	w.Header().Set("ETag", etag)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	writeJSON(w, http.StatusOK, snapshotResponse{
		Namespace:     s.namespace.Name(),
		Generation:    s.namespace.Generation(),
		ConfigVersion: s.namespace.ConfigVersion(),
		Raw:           raw,
	})
}

type loadResponse struct {
	OK            bool   `json:"ok"`
	FeatureCount  int    `json:"featureCount"`
	Generation    uint64 `json:"generation"`
	ConfigVersion string `json:"configVersion"`
}

func (s *Server) handleLoadSnapshot(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "failed to read request body")
		return
	}

	summary, err := loader.Load(s.namespace, body, s.resolver, s.codecOpts)
	if err != nil {
		writeDecodeError(w, r, err)
		return
	}

	s.persistAndNotify(r, string(body))

	writeJSON(w, http.StatusOK, loadResponse{OK: true, FeatureCount: summary.FeatureCount, Generation: s.namespace.Generation(), ConfigVersion: s.namespace.ConfigVersion()})
}

func (s *Server) handleLoadPatch(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "failed to read request body")
		return
	}

	summary, err := loader.LoadPatch(s.namespace, body, s.resolver, s.codecOpts)
	if err != nil {
		writeDecodeError(w, r, err)
		return
	}

	s.persistAndNotify(r, string(body))

	writeJSON(w, http.StatusOK, loadResponse{OK: true, FeatureCount: summary.FeatureCount, Generation: s.namespace.Generation(), ConfigVersion: s.namespace.ConfigVersion()})
}

type rollbackRequest struct {
	Steps int `json:"steps"`
}

type rollbackResponse struct {
	OK            bool   `json:"ok"`
	Generation    uint64 `json:"generation"`
	ConfigVersion string `json:"configVersion"`
}

func (s *Server) handleRollback(w http.ResponseWriter, r *http.Request) {
	var req rollbackRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, ErrCodeInvalidJSON, "invalid JSON: "+err.Error())
		return
	}
	if req.Steps <= 0 {
		writeError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "steps must be positive")
		return
	}

	if !s.namespace.Rollback(req.Steps) {
		writeError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "rollback exceeds available history")
		return
	}

	if s.notify != nil {
		s.notify.Notify(changeEvent(s.namespace, rollbackEventType))
	}

	writeJSON(w, http.StatusOK, rollbackResponse{OK: true, Generation: s.namespace.Generation(), ConfigVersion: s.namespace.ConfigVersion()})
}
