package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"occupancy/ml"
)

type formPage struct {
	CoreInputs []ml.CoreInput
	Groups     []groupView
}

type probabilityRow struct {
	Label       string
	Probability float64
}

type inputRow struct {
	Label string
	Value float64
}

type resultPage struct {
	Result        string
	Confidence    string
	Inconclusive  bool
	Probabilities []probabilityRow
	Inputs        []inputRow
	Expected      string
}

func (h *Handlers) handleForm(w http.ResponseWriter, r *http.Request) {
	page := formPage{CoreInputs: ml.CoreInputs(), Groups: h.groupViews()}
	h.renderPage(w, r, "form.html", page)
}

func (h *Handlers) renderPage(w http.ResponseWriter, r *http.Request, name string, data interface{}) {
	var buf bytes.Buffer
	if err := h.renderer.Render(&buf, name, data); err != nil {
		h.logger.Error("render failed",
			zap.String("request_id", GetRequestID(r.Context())),
			zap.String("template", name),
			zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

// handlePredictForm serves the HTML form submission. expected_people is
// required; blank numeric fields count as 0; NaN and infinities are rejected.
func (h *Handlers) handlePredictForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.writeError(w, r, bodyError(err))
		return
	}

	input, err := rawInputFromForm(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	result, ok := h.predict(w, r, input)
	if !ok {
		return
	}

	page := resultPage{
		Result:       result.Label,
		Confidence:   h.renderer.Percent(result.Probability),
		Inconclusive: result.Inconclusive,
		Expected:     r.PostForm.Get("expected_people"),
	}
	if result.Inconclusive {
		page.Result = ml.InconclusiveMessage
	}
	for _, e := range result.Probabilities.Entries() {
		page.Probabilities = append(page.Probabilities, probabilityRow{Label: e.Label, Probability: e.Probability})
	}
	for _, in := range ml.CoreInputs() {
		if value, ok := input.Numeric[in.Name]; ok {
			page.Inputs = append(page.Inputs, inputRow{Label: in.Label, Value: value})
		}
	}
	h.renderPage(w, r, "result.html", page)
}

func rawInputFromForm(r *http.Request) (ml.RawInput, error) {
	input := ml.RawInput{
		Numeric:    make(map[string]float64),
		Categories: make(map[string]string),
	}
	var violations []string
	if strings.TrimSpace(r.PostForm.Get("expected_people")) == "" {
		violations = append(violations, "expected_people: required")
	}
	for _, name := range ml.CoreInputNames() {
		raw := strings.TrimSpace(r.PostForm.Get(name))
		if raw == "" {
			continue
		}
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
			violations = append(violations, name+": not a number")
			continue
		}
		input.Numeric[name] = value
	}
	if len(violations) > 0 {
		return ml.RawInput{}, &validationError{violations: violations}
	}
	for _, spec := range ml.KnownGroups() {
		if value := r.PostForm.Get(spec.Name); value != "" {
			input.Categories[spec.Name] = value
		}
	}
	return input, nil
}

type predictRequest struct {
	Numeric map[string]float64 `json:"numeric"`
	State   string             `json:"state"`
	Climate string             `json:"climate"`
	IECC    string             `json:"iecc"`
}

type predictResponse struct {
	ml.PredictionResult
	Message    string `json:"message"`
	Confidence string `json:"confidence"`
}

func (h *Handlers) handlePredictJSON(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.writeError(w, r, bodyError(err))
		return
	}
	violations, err := h.validator.Validate(body)
	if err != nil {
		h.writeError(w, r, &validationError{violations: []string{err.Error()}})
		return
	}
	if len(violations) > 0 {
		h.writeError(w, r, &validationError{violations: violations})
		return
	}

	var req predictRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.writeError(w, r, &validationError{violations: []string{err.Error()}})
		return
	}

	input := ml.RawInput{
		Numeric: req.Numeric,
		Categories: map[string]string{
			ml.GroupState:   req.State,
			ml.GroupClimate: req.Climate,
			ml.GroupIECC:    req.IECC,
		},
	}
	result, ok := h.predict(w, r, input)
	if !ok {
		return
	}

	resp := predictResponse{
		PredictionResult: result,
		Message:          result.Label,
		Confidence:       h.renderer.Percent(result.Probability),
	}
	if result.Inconclusive {
		resp.Message = ml.InconclusiveMessage
	}
	writeJSON(w, http.StatusOK, resp)
}

// bodyError keeps an over-limit body distinct so it maps to 413.
func bodyError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return err
	}
	return &validationError{violations: []string{err.Error()}}
}

// predict runs the pipeline and records the outcome. On failure it has
// already written the error response.
func (h *Handlers) predict(w http.ResponseWriter, r *http.Request, input ml.RawInput) (ml.PredictionResult, bool) {
	start := time.Now()
	result, err := h.predictor.Predict(r.Context(), input)
	if err != nil {
		h.writeError(w, r, err)
		return ml.PredictionResult{}, false
	}
	h.metrics.ObservePrediction(result, time.Since(start))
	h.logger.Debug("prediction served",
		zap.String("request_id", GetRequestID(r.Context())),
		zap.String("label", result.TopLabel()),
		zap.Float64("probability", result.Probability),
		zap.Bool("inconclusive", result.Inconclusive))
	return result, true
}
