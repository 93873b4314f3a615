package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"occupancy/ml"
	"occupancy/monitoring"
)

// Handlers serves the prediction form and API on top of a loaded Predictor.
type Handlers struct {
	predictor *ml.Predictor
	renderer  *Renderer
	metrics   *monitoring.Metrics
	logger    *zap.Logger
	validator *requestValidator
}

func NewHandlers(predictor *ml.Predictor, renderer *Renderer, metrics *monitoring.Metrics, logger *zap.Logger) (*Handlers, error) {
	validator, err := newRequestValidator(predictor.Schema())
	if err != nil {
		return nil, err
	}
	return &Handlers{
		predictor: predictor,
		renderer:  renderer,
		metrics:   metrics,
		logger:    logger,
		validator: validator,
	}, nil
}

func (h *Handlers) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.handleForm)
	mux.HandleFunc("POST /predict", h.handlePredictForm)
	mux.HandleFunc("POST /api/predict", h.handlePredictJSON)
	mux.HandleFunc("GET /api/schema", h.handleSchema)
	mux.HandleFunc("GET /api/health", handleHealth)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

type groupView struct {
	Name    string   `json:"name"`
	Label   string   `json:"label"`
	Prefix  string   `json:"prefix"`
	Options []string `json:"options"`
}

func (h *Handlers) groupViews() []groupView {
	groups := h.predictor.Schema().Groups()
	views := make([]groupView, len(groups))
	for i, g := range groups {
		views[i] = groupView{Name: g.Name, Label: g.Label, Prefix: g.Prefix, Options: g.Members()}
	}
	return views
}

func (h *Handlers) handleSchema(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"features":    h.predictor.Schema().Names(),
		"groups":      h.groupViews(),
		"core_inputs": h.coreInputs(),
		"labels":      h.predictor.Labels(),
		"threshold":   h.predictor.Threshold(),
	})
}

type coreInputView struct {
	Name  string `json:"name"`
	Label string `json:"label"`
}

func (h *Handlers) coreInputs() []coreInputView {
	inputs := ml.CoreInputs()
	views := make([]coreInputView, len(inputs))
	for i, in := range inputs {
		views[i] = coreInputView{Name: in.Name, Label: in.Label}
	}
	return views
}

// errorStatus maps a prediction failure to a status code and a metrics kind.
func errorStatus(err error) (int, string) {
	var validation *validationError
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, monitoring.ErrorInvalidInput
	case errors.As(err, &validation):
		return http.StatusBadRequest, monitoring.ErrorInvalidInput
	case errors.Is(err, ml.ErrUnknownCategoryValue):
		return http.StatusUnprocessableEntity, monitoring.ErrorUnknownCategory
	default:
		return http.StatusInternalServerError, monitoring.ErrorClassification
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, kind := errorStatus(err)
	h.metrics.ObserveError(kind)

	fields := []zap.Field{
		zap.String("request_id", GetRequestID(r.Context())),
		zap.String("kind", kind),
		zap.Error(err),
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error("prediction failed", fields...)
	} else {
		h.logger.Info("prediction rejected", fields...)
	}

	body := map[string]interface{}{"error": err.Error()}
	var unknown *ml.UnknownCategoryError
	if errors.As(err, &unknown) {
		body["group"] = unknown.Group
		body["value"] = unknown.Value
	}
	var validation *validationError
	if errors.As(err, &validation) {
		body["violations"] = validation.violations
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
