package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"biomassopt/pkg/common"
	"biomassopt/pkg/model"
	"biomassopt/pkg/monitor"
	"biomassopt/pkg/store"
)

// Server exposes the calculation service over HTTP. Every failure is
// converted to a structured JSON payload at this boundary; nothing is
// allowed to take the process down.
type Server struct {
	store        *store.ResultStore
	model        model.Interpolator
	stats        *monitor.WorkloadStats
	historyLimit int
}

func NewServer(st *store.ResultStore, m model.Interpolator, stats *monitor.WorkloadStats, historyLimit int) *Server {
	if stats == nil {
		stats = monitor.NewWorkloadStats()
	}
	if historyLimit <= 0 {
		historyLimit = 100
	}
	return &Server{store: st, model: m, stats: stats, historyLimit: historyLimit}
}

// Handler returns the route table. Separate from Start so tests can
// drive it with httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRoot)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/calculate", s.handleCalculate)
	mux.HandleFunc("/results/latest", s.handleLatest)
	mux.HandleFunc("/results/history", s.handleHistory)
	mux.HandleFunc("/results/clear", s.handleClear)
	mux.HandleFunc("/api/stats", s.handleStats)
	return mux
}

func (s *Server) Start(addr string) error {
	log.Printf("[API] Server listening on %s...", addr)
	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")

	var vals [common.Dims]float64
	for i, name := range []string{"fuel_price", "commodity_cost", "energy_price", "weather_index"} {
		raw := r.URL.Query().Get(name)
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{
				"error": "missing or invalid parameter: " + name,
			})
			return
		}
		vals[i] = v
	}
	inputs := common.VectorOf(vals)

	s.stats.RecordCalc()

	// Inputs are deliberately not range-checked: out-of-range points
	// are extrapolated, not rejected.
	output, err := s.model.Predict(inputs.Values())
	if err != nil {
		s.stats.RecordCalcError()
		writeJSON(w, http.StatusOK, calcError(err, inputs))
		return
	}
	output = common.Round2(output)

	rec, err := s.store.Append(r.Context(), inputs, output)
	if err != nil {
		s.stats.RecordCalcError()
		log.Printf("[API] Store append failed: %v", err)
		writeJSON(w, http.StatusOK, calcError(err, inputs))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"fuel_price":        rec.FuelPrice,
		"commodity_cost":    rec.CommodityCost,
		"energy_price":      rec.EnergyPrice,
		"weather_index":     rec.WeatherIndex,
		"calculated_output": rec.CalculatedOutput,
	})
}

func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")

	rec, ok, err := s.store.Latest(r.Context())
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{"error": err.Error()})
		return
	}
	if !ok {
		writeJSON(w, http.StatusOK, map[string]interface{}{"message": "No results yet"})
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")

	records, err := s.store.History(r.Context(), s.historyLimit)
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{"error": err.Error()})
		return
	}
	if records == nil {
		records = []common.CalcRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")

	if err := s.store.Clear(r.Context()); err != nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "Database cleared"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")

	stats := s.store.Stats()
	stats["model_ready"] = s.model.Ready()
	stats["model_points"] = s.model.Len()
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "healthy"})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"service":  "Biomass Optimizer API",
		"endpoint": "/calculate?fuel_price=2.0&commodity_cost=5.0&energy_price=1.0&weather_index=50",
	})
}

func calcError(err error, inputs common.InputVector) map[string]interface{} {
	return map[string]interface{}{
		"error":          err.Error(),
		"fuel_price":     inputs.FuelPrice,
		"commodity_cost": inputs.CommodityCost,
		"energy_price":   inputs.EnergyPrice,
		"weather_index":  inputs.WeatherIndex,
	}
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
