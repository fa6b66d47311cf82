package router

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/gorilla/schema"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/jiaming2012/lattice-pricer/src/lattice"
	"github.com/jiaming2012/lattice-pricer/src/models"
	"github.com/jiaming2012/lattice-pricer/src/pricing"
	"github.com/jiaming2012/lattice-pricer/src/store"
	"github.com/jiaming2012/lattice-pricer/src/utils"
)

// DefaultStepList is used by /convergence when no step_list is given.
const DefaultStepList = "25,50,100,200"

var decoder = newDecoder()

func newDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}

type errorResponse struct {
	Type string `json:"type"`
	Msg  string `json:"message"`
}

func NewErrorResponse(errType string, message string) *errorResponse {
	return &errorResponse{
		Type: errType,
		Msg:  message,
	}
}

func setResponse(response interface{}, w http.ResponseWriter) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(200)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		return fmt.Errorf("setResponse: encode: %w", err)
	}

	return nil
}

func setErrorResponse(errType string, statusCode int, err error, w http.ResponseWriter) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	resp := NewErrorResponse(errType, err.Error())
	if encodeErr := json.NewEncoder(w).Encode(resp); encodeErr != nil {
		return encodeErr
	}

	return nil
}

func statusCode(err error) int {
	switch {
	case errors.Is(err, models.InvalidParameterErr), errors.Is(err, models.UnknownSchemeErr):
		return http.StatusBadRequest
	case errors.Is(err, models.DegenerateProbabilityErr), errors.Is(err, models.NumericOverflowErr):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// ParametersRequest is the query string form of the market parameters.
type ParametersRequest struct {
	Spot          float64 `schema:"spot"`
	Strike        float64 `schema:"strike"`
	Rate          float64 `schema:"rate"`
	DividendYield float64 `schema:"dividend_yield"`
	Maturity      float64 `schema:"maturity"`
	Volatility    float64 `schema:"volatility"`
	Steps         float64 `schema:"steps"`
	Type          string  `schema:"type"`
	Style         string  `schema:"style"`
}

func (req ParametersRequest) ToModel() (models.MarketParameters, error) {
	dto := store.ParametersDTO{
		Spot:          req.Spot,
		Strike:        req.Strike,
		Rate:          req.Rate,
		DividendYield: req.DividendYield,
		Maturity:      req.Maturity,
		Volatility:    req.Volatility,
		Steps:         req.Steps,
		Type:          req.Type,
		Style:         req.Style,
	}

	return dto.ToModel()
}

type SweepRequest struct {
	ParametersRequest
	Maturities string `schema:"maturities"`
}

type ConvergenceRequest struct {
	ParametersRequest
	StepList string `schema:"step_list"`
	Scheme   string `schema:"scheme"`
}

type PricingResultDTO struct {
	Scheme models.SchemeName    `json:"scheme"`
	Type   models.OptionType    `json:"type"`
	Style  models.ExerciseStyle `json:"style"`
	Price  *float64             `json:"price,omitempty"`
	Error  string               `json:"error,omitempty"`
}

type PriceResponse struct {
	Parameters models.MarketParameters `json:"parameters"`
	Results    []PricingResultDTO      `json:"results"`
}

func NewPriceResponse(params models.MarketParameters, table *models.ResultTable) *PriceResponse {
	resp := &PriceResponse{Parameters: params}
	for _, r := range table.Results() {
		dto := PricingResultDTO{Scheme: r.Scheme, Type: r.Type, Style: r.Style}
		if r.Err != nil {
			dto.Error = r.Err.Error()
		} else {
			price := r.Price
			dto.Price = &price
		}

		resp.Results = append(resp.Results, dto)
	}

	return resp
}

type handler struct {
	pricer *pricing.Pricer
}

func (h *handler) parseParameters(r *http.Request, dst interface{}) error {
	if err := r.ParseForm(); err != nil {
		return fmt.Errorf("%w: %v", models.InvalidParameterErr, err)
	}

	if err := decoder.Decode(dst, r.Form); err != nil {
		return fmt.Errorf("%w: %v", models.InvalidParameterErr, err)
	}

	return nil
}

func (h *handler) handlePrice(w http.ResponseWriter, r *http.Request) {
	var req ParametersRequest
	if err := h.parseParameters(r, &req); err != nil {
		setErrorResponse("handlePrice: failed to parse request", http.StatusBadRequest, err, w)
		return
	}

	params, err := req.ToModel()
	if err != nil {
		setErrorResponse("handlePrice: invalid parameters", statusCode(err), err, w)
		return
	}

	table, err := h.pricer.PriceAll(r.Context(), params)
	if err != nil {
		setErrorResponse("handlePrice: failed to price", statusCode(err), err, w)
		return
	}

	if err := setResponse(NewPriceResponse(params, table), w); err != nil {
		log.Errorf("handlePrice: failed to set response: %v", err)
	}
}

func (h *handler) handleSweep(w http.ResponseWriter, r *http.Request) {
	var req SweepRequest
	if err := h.parseParameters(r, &req); err != nil {
		setErrorResponse("handleSweep: failed to parse request", http.StatusBadRequest, err, w)
		return
	}

	params, err := req.ToModel()
	if err != nil {
		setErrorResponse("handleSweep: invalid parameters", statusCode(err), err, w)
		return
	}

	maturities, err := utils.ParseMaturities(req.Maturities)
	if err != nil {
		setErrorResponse("handleSweep: invalid maturities", http.StatusBadRequest, err, w)
		return
	}

	table, err := h.pricer.Sweep(r.Context(), params, maturities)
	if err != nil {
		setErrorResponse("handleSweep: failed to sweep", statusCode(err), err, w)
		return
	}

	if err := setResponse(table, w); err != nil {
		log.Errorf("handleSweep: failed to set response: %v", err)
	}
}

func (h *handler) handleConvergence(w http.ResponseWriter, r *http.Request) {
	var req ConvergenceRequest
	if err := h.parseParameters(r, &req); err != nil {
		setErrorResponse("handleConvergence: failed to parse request", http.StatusBadRequest, err, w)
		return
	}

	params, err := req.ToModel()
	if err != nil {
		setErrorResponse("handleConvergence: invalid parameters", statusCode(err), err, w)
		return
	}

	stepList := req.StepList
	if stepList == "" {
		stepList = DefaultStepList
	}

	steps, err := utils.ParseSteps(stepList)
	if err != nil {
		setErrorResponse("handleConvergence: invalid step list", http.StatusBadRequest, err, w)
		return
	}

	pricer := h.pricer
	if req.Scheme != "" {
		scheme, err := lattice.SchemeByName(models.SchemeName(strings.ToUpper(req.Scheme)))
		if err != nil {
			setErrorResponse("handleConvergence: invalid scheme", statusCode(err), err, w)
			return
		}

		pricer = &pricing.Pricer{Schemes: []lattice.Scheme{scheme}, Concurrency: h.pricer.Concurrency}
	}

	report, err := pricer.Converge(r.Context(), params, steps)
	if err != nil {
		setErrorResponse("handleConvergence: failed to converge", statusCode(err), err, w)
		return
	}

	if err := setResponse(report, w); err != nil {
		log.Errorf("handleConvergence: failed to set response: %v", err)
	}
}

// NewHandler returns the pricing routes wrapped in an otelhttp server span,
// so the session spans of each request share its trace.
func NewHandler(pricer *pricing.Pricer) http.Handler {
	router := mux.NewRouter()
	SetupHandler(router, pricer)

	return otelhttp.NewHandler(router, "/")
}

// SetupHandler registers the pricing routes on router. Each route is tagged
// for the otelhttp server span.
func SetupHandler(router *mux.Router, pricer *pricing.Pricer) {
	h := &handler{pricer: pricer}

	handle := func(pattern string, f http.HandlerFunc) {
		router.Handle(pattern, otelhttp.WithRouteTag(pattern, f)).Methods(http.MethodGet)
	}

	handle("/price", h.handlePrice)
	handle("/sweep", h.handleSweep)
	handle("/convergence", h.handleConvergence)
}
