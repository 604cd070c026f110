package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	apperrors "github.com/agbru/fibcost/internal/errors"
	"github.com/agbru/fibcost/internal/fibonacci"
	"github.com/agbru/fibcost/internal/logging"
	"github.com/agbru/fibcost/internal/service"
	"github.com/agbru/fibcost/pkg/models"
)

// DefaultAlgorithm is used by /calculate when algo is omitted.
const DefaultAlgorithm = fibonacci.IterativeName

// handleHealth responds to health check requests.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeErrorResponse(w, r, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	s.writeJSONResponse(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().Unix(),
	})
}

// handleAlgorithms returns the algorithms the service runs.
func (s *Server) handleAlgorithms(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeErrorResponse(w, r, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	s.writeJSONResponse(w, http.StatusOK, AlgorithmsResponse{
		Algorithms:    s.service.Algorithms(),
		Default:       DefaultAlgorithm,
		MaxRecursiveN: s.cfg.MaxRecursiveN,
	})
}

// handleCalculate runs one algorithm for the 'n' query parameter and
// returns a models.Calculation.
func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeErrorResponse(w, r, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	n, err := parseIndexParam(r)
	if err != nil {
		s.writeParseError(w, r, err)
		return
	}
	algo := r.URL.Query().Get("algo")
	if algo == "" {
		algo = DefaultAlgorithm
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeouts.RequestTimeout)
	defer cancel()

	m, err := s.service.Calculate(ctx, algo, n)
	if err != nil {
		s.writeCalculationError(w, r, algo, err)
		return
	}

	s.writeJSONResponse(w, http.StatusOK, models.NewCalculation(algo, n, m.Result, m.Cost, m.Duration, nil))
}

// handleCompare runs every algorithm for 'n'. Per-algorithm failures are
// reported inside the comparison rather than as an HTTP error.
func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeErrorResponse(w, r, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	n, err := parseIndexParam(r)
	if err != nil {
		s.writeParseError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeouts.RequestTimeout)
	defer cancel()

	algorithms := s.service.Algorithms()
	results := make([]models.Calculation, 0, len(algorithms))
	for _, algo := range algorithms {
		m, err := s.service.Calculate(ctx, algo, n)
		results = append(results, models.NewCalculation(algo, n, m.Result, m.Cost, m.Duration, err))
	}

	s.writeJSONResponse(w, http.StatusOK, models.NewComparison(n, results))
}

// parseIndexParam extracts the 'n' query parameter. Range checks are left
// to the algorithms: the iterative one accepts any n up to 93.
func parseIndexParam(r *http.Request) (int, error) {
	nStr := r.URL.Query().Get("n")
	if nStr == "" {
		return 0, CalculateParseError{
			Message:    "Missing 'n' parameter",
			StatusCode: http.StatusBadRequest,
		}
	}

	n, err := strconv.Atoi(nStr)
	if err != nil {
		return 0, CalculateParseError{
			Message:    "Invalid 'n' parameter: must be an integer",
			StatusCode: http.StatusBadRequest,
		}
	}
	return n, nil
}

func (s *Server) writeParseError(w http.ResponseWriter, r *http.Request, err error) {
	var parseErr CalculateParseError
	if errors.As(err, &parseErr) {
		s.writeErrorResponse(w, r, parseErr.StatusCode, parseErr.Message)
		return
	}
	s.writeErrorResponse(w, r, http.StatusBadRequest, err.Error())
}

// writeCalculationError maps a service error to an HTTP status.
func (s *Server) writeCalculationError(w http.ResponseWriter, r *http.Request, algo string, err error) {
	var unknown *fibonacci.UnknownCalculatorError
	switch {
	case errors.As(err, &unknown):
		s.writeErrorResponse(w, r, http.StatusBadRequest,
			fmt.Sprintf("Unknown algorithm '%s'. See /algorithms.", unknown.Name))
	case errors.Is(err, service.ErrMaxValueExceeded):
		s.writeErrorResponse(w, r, http.StatusBadRequest,
			fmt.Sprintf("Value of 'n' exceeds the maximum allowed for the recursive algorithm (%d). This limit prevents resource exhaustion.", s.cfg.MaxRecursiveN))
	case apperrors.IsValidationError(err):
		s.writeErrorResponse(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		s.writeErrorResponse(w, r, http.StatusGatewayTimeout, "Calculation timed out")
	default:
		s.logger.Error("calculation failed", err, logging.String("algo", algo),
			logging.String("request_id", RequestIDFromContext(r.Context())))
		s.writeErrorResponse(w, r, http.StatusInternalServerError, "Calculation failed")
	}
}

// writeJSONResponse writes data as JSON with the given status code.
func (s *Server) writeJSONResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("error encoding JSON response", err)
	}
}

// writeErrorResponse writes a standardized error response.
func (s *Server) writeErrorResponse(w http.ResponseWriter, r *http.Request, statusCode int, message string) {
	s.writeJSONResponse(w, statusCode, ErrorResponse{
		Error:     http.StatusText(statusCode),
		Message:   message,
		RequestID: RequestIDFromContext(r.Context()),
	})
}
