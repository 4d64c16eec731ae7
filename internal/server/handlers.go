package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"policyscope/internal/household"
	"policyscope/internal/logging"
)

// indexData feeds the form template.
type indexData struct {
	States   []string
	Defaults household.Inputs
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	data := indexData{
		States: household.ValidStates,
		Defaults: household.Inputs{
			Age:         40,
			Income:      20000,
			NumChildren: 2,
			State:       "CA",
			Variable:    "snap",
			Period:      "2023",
		},
	}
	s.render(w, "index.html", data)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"status":"ok","version":%q}`, s.cfg.Version)
}

// resultData feeds the result template.
type resultData struct {
	Variable    string
	Formatted   string
	Explanation string
	GraphDOT    string
	Trace       string
}

func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	reqID := uuid.NewString()
	start := time.Now()

	in, err := decodeForm(r)
	if err != nil {
		logging.Server("req=%s rejected: %v", reqID, err)
		s.renderError(w, http.StatusBadRequest, err.Error())
		return
	}

	outcome, err := s.runner.Run(r.Context(), in)
	if err != nil {
		// Failure domain 1: simulation errors abort the submission.
		logging.ServerError("req=%s submission aborted: %v", reqID, err)
		s.renderError(w, http.StatusBadGateway, err.Error())
		return
	}

	logging.Server("req=%s variable=%s value=%s elapsed=%v", reqID, in.Variable, outcome.Formatted, time.Since(start))
	s.render(w, "result.html", resultData{
		Variable:    outcome.Variable,
		Formatted:   outcome.Formatted,
		Explanation: outcome.Explanation,
		GraphDOT:    outcome.GraphDOT,
		Trace:       outcome.Trace,
	})
}

func (s *Server) handleAPICalculate(w http.ResponseWriter, r *http.Request) {
	reqID := uuid.NewString()

	var in household.Inputs
	var req struct {
		Age         int     `json:"age"`
		Income      float64 `json:"income"`
		Married     bool    `json:"married"`
		NumChildren int     `json:"num_children"`
		State       string  `json:"state"`
		Variable    string  `json:"variable"`
		Period      string  `json:"period"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	in = household.Inputs{
		Age:         req.Age,
		Income:      req.Income,
		Married:     req.Married,
		NumChildren: req.NumChildren,
		State:       req.State,
		Variable:    req.Variable,
		Period:      req.Period,
	}
	if err := in.Validate(); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	outcome, err := s.runner.Run(r.Context(), in)
	if err != nil {
		logging.ServerError("req=%s submission aborted: %v", reqID, err)
		writeJSONError(w, http.StatusBadGateway, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(outcome); err != nil {
		logging.ServerError("req=%s encode failed: %v", reqID, err)
	}
}

// decodeForm parses and validates the submission form.
func decodeForm(r *http.Request) (household.Inputs, error) {
	var in household.Inputs
	if err := r.ParseForm(); err != nil {
		return in, fmt.Errorf("invalid form: %w", err)
	}

	age, err := strconv.Atoi(strings.TrimSpace(r.PostFormValue("age")))
	if err != nil {
		return in, fmt.Errorf("age must be an integer")
	}
	income, err := strconv.ParseFloat(strings.TrimSpace(r.PostFormValue("income")), 64)
	if err != nil {
		return in, fmt.Errorf("income must be a number")
	}
	children, err := strconv.Atoi(strings.TrimSpace(r.PostFormValue("num_children")))
	if err != nil {
		return in, fmt.Errorf("number of children must be an integer")
	}

	in = household.Inputs{
		Age:         age,
		Income:      income,
		Married:     r.PostFormValue("married") == "on" || r.PostFormValue("married") == "true",
		NumChildren: children,
		State:       strings.TrimSpace(r.PostFormValue("state")),
		Variable:    strings.TrimSpace(r.PostFormValue("variable")),
		Period:      strings.TrimSpace(r.PostFormValue("period")),
	}
	if err := in.Validate(); err != nil {
		return in, err
	}
	return in, nil
}

func (s *Server) render(w http.ResponseWriter, name string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		logging.ServerError("render %s: %v", name, err)
	}
}

type errorData struct {
	Status  int
	Message string
}

func (s *Server) renderError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.templates.ExecuteTemplate(w, "error.html", errorData{Status: status, Message: msg}); err != nil {
		logging.ServerError("render error page: %v", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
