package tests

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/esinx/student-tests/internal/core/ports/primary"
	"github.com/esinx/student-tests/internal/core/services/assignment"
	"github.com/esinx/student-tests/internal/core/services/results"
	"github.com/esinx/student-tests/internal/core/services/submission"
	"github.com/esinx/student-tests/internal/domain"
	"github.com/esinx/student-tests/internal/handlers"
	"github.com/esinx/student-tests/internal/handlers/response"
	"github.com/esinx/student-tests/internal/static/errs"
)

// TestsHandler handles the test bank API requests
type TestsHandler struct {
	submissionService submission.ISubmissionService
	resultService     results.IResultService
	assignmentService assignment.IAssignmentService
	logger            primary.Logger
	validate          *validator.Validate
}

// NewTestsHandler creates a new tests handler
func NewTestsHandler(
	submissionService submission.ISubmissionService,
	resultService results.IResultService,
	assignmentService assignment.IAssignmentService,
	logger primary.Logger,
) *TestsHandler {
	return &TestsHandler{
		submissionService: submissionService,
		resultService:     resultService,
		assignmentService: assignmentService,
		logger:            logger,
		validate:          validator.New(),
	}
}

// RegisterRoutes registers the API routes for TestsHandler. Mutating
// routes go through the shared-secret middleware; reads stay open.
func (h *TestsHandler) RegisterRoutes(router *mux.Router, mw *handlers.MiddlewareProvider) {
	router.HandleFunc("/", h.Health).Methods("GET")
	router.HandleFunc("/view-collections", h.ViewCollections).Methods("GET")
	router.HandleFunc("/view-tests/{assignmentName}", h.ViewTests).Methods("GET")

	router.Handle("/submit-tests/{assignmentName}", mw.Authorize(http.HandlerFunc(h.SubmitTests))).Methods("POST")
	router.Handle("/submit-results/{assignmentName}", mw.Authorize(http.HandlerFunc(h.SubmitResults))).Methods("POST")
	router.Handle("/delete-assignment/{assignmentName}", mw.Authorize(http.HandlerFunc(h.DeleteAssignment))).Methods("DELETE")
	router.Handle("/delete-tests/{assignmentName}", mw.Authorize(http.HandlerFunc(h.DeleteTests))).Methods("DELETE")
	router.Handle("/delete-test/{assignmentName}", mw.Authorize(http.HandlerFunc(h.DeleteTest))).Methods("DELETE")
}

// Health handles liveness checks
func (h *TestsHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// ViewCollections lists the known assignment test sets
func (h *TestsHandler) ViewCollections(w http.ResponseWriter, r *http.Request) {
	assignments, err := h.assignmentService.ListAssignments(r.Context())
	if err != nil {
		h.logger.Error("Failed to list collections", "error", err)
		http.Error(w, "Failed to retrieve collections", http.StatusInternalServerError)
		return
	}

	response.WriteJSON(w, http.StatusOK, assignments)
}

// SubmitTests handles a batch of test case candidates
func (h *TestsHandler) SubmitTests(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	assignmentName := vars["assignmentName"]

	author := r.URL.Query().Get("student_id")
	if author == "" {
		http.Error(w, "Error: student_id is required as a query parameter.", http.StatusBadRequest)
		return
	}

	threshold := int64(0)
	if raw := r.URL.Query().Get("num_public_tests"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 0 {
			http.Error(w, "Error: num_public_tests must be a non-negative integer.", http.StatusBadRequest)
			return
		}
		threshold = parsed
	}

	var req []TestCaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("Failed to decode request", "error", err)
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	batch := make([]domain.TestCaseCandidate, 0, len(req))
	for _, item := range req {
		if err := h.validate.Struct(item); err != nil {
			h.logger.Error("Invalid test case payload", "error", err)
			http.Error(w, "Invalid request: every test case needs a name", http.StatusBadRequest)
			return
		}
		batch = append(batch, item.toCandidate())
	}

	receipt, err := h.submissionService.SubmitTests(r.Context(), assignmentName, author, threshold, batch)
	if err != nil {
		h.logger.Error("Failed to submit tests", "assignment", assignmentName, "error", err)
		if receipt != nil {
			// merges applied before a failed bulk insert persist; the
			// receipt says so rather than pretending nothing happened
			response.WriteJSON(w, http.StatusInternalServerError, receipt)
			return
		}
		h.writeServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusCreated, receipt)
}

// SubmitResults handles a batch of run-result reports
func (h *TestsHandler) SubmitResults(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	assignmentName := vars["assignmentName"]

	student := r.URL.Query().Get("student_id")
	if student == "" {
		http.Error(w, "Error: student_id is required as a query parameter.", http.StatusBadRequest)
		return
	}

	var req []ResultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("Failed to decode request", "error", err)
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	reports := make([]domain.ResultReport, 0, len(req))
	for _, item := range req {
		if err := h.validate.Struct(item); err != nil {
			h.logger.Error("Invalid result payload", "error", err)
			http.Error(w, "Invalid request: every result needs a name", http.StatusBadRequest)
			return
		}
		reports = append(reports, item.toReport())
	}

	receipt, err := h.resultService.SubmitResults(r.Context(), assignmentName, student, reports)
	if err != nil {
		h.logger.Error("Failed to submit results", "assignment", assignmentName, "error", err)
		h.writeServiceError(w, err)
		return
	}

	status := http.StatusOK
	if !receipt.Success {
		status = http.StatusInternalServerError
	}
	response.WriteJSON(w, status, receipt)
}

// DeleteAssignment drops an assignment's whole test set
func (h *TestsHandler) DeleteAssignment(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	assignmentName := vars["assignmentName"]

	if err := h.assignmentService.DeleteAssignment(r.Context(), assignmentName); err != nil {
		h.logger.Error("Failed to delete assignment", "assignment", assignmentName, "error", err)
		h.writeServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, map[string]string{"message": "Assignment collection deleted successfully"})
}

// DeleteTests empties an assignment's test set
func (h *TestsHandler) DeleteTests(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	assignmentName := vars["assignmentName"]

	if _, err := h.assignmentService.DeleteAllTests(r.Context(), assignmentName); err != nil {
		h.logger.Error("Failed to delete tests", "assignment", assignmentName, "error", err)
		h.writeServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, map[string]string{"message": "Deleted all tests from database"})
}

// DeleteTest removes one test by name or id
func (h *TestsHandler) DeleteTest(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	assignmentName := vars["assignmentName"]

	name := r.URL.Query().Get("testName")
	id := r.URL.Query().Get("testId")

	if err := h.assignmentService.DeleteTest(r.Context(), assignmentName, name, id); err != nil {
		h.logger.Error("Failed to delete test", "assignment", assignmentName, "name", name, "id", id, "error", err)
		h.writeServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, map[string]string{"message": "Test deleted successfully"})
}

// writeServiceError maps domain errors to HTTP statuses per the error
// taxonomy: missing parameters are 400, missing records 404, everything
// else is a store failure
func (h *TestsHandler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errs.StudentIDRequired),
		errors.Is(err, errs.TestSelectorMissing),
		errors.Is(err, errs.BadRequest):
		response.WriteError(w, response.ErrorMessage{Message: err.Error(), StatusCode: http.StatusBadRequest})
	case errors.Is(err, errs.AssignmentNotFound),
		errors.Is(err, errs.TestNotFound),
		errors.Is(err, errs.NotFound):
		response.WriteError(w, response.ErrorMessage{Message: err.Error(), StatusCode: http.StatusNotFound})
	default:
		response.WriteError(w, response.ErrorMessage{Message: errs.StoreFailure.Error(), StatusCode: http.StatusInternalServerError})
	}
}
