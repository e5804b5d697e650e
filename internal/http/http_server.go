package http

// this is the entry point of the http request handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"

	"github.com/esinx/student-tests/internal/core/ports/primary"
	"github.com/esinx/student-tests/internal/core/services/assignment"
	"github.com/esinx/student-tests/internal/core/services/results"
	"github.com/esinx/student-tests/internal/core/services/submission"
	"github.com/esinx/student-tests/internal/handlers"
	"github.com/esinx/student-tests/internal/handlers/tests"
)

type ServiceProvider struct {
	submissionService submission.ISubmissionService
	resultService     results.IResultService
	assignmentService assignment.IAssignmentService
}

func NewServiceProvider(
	submissionService submission.ISubmissionService,
	resultService results.IResultService,
	assignmentService assignment.IAssignmentService,
) *ServiceProvider {
	return &ServiceProvider{
		submissionService: submissionService,
		resultService:     resultService,
		assignmentService: assignmentService,
	}
}

type Server struct {
	router          *mux.Router
	srv             *http.Server
	Port            int
	ServiceName     string
	ServiceProvider ServiceProvider
	middleware      *handlers.MiddlewareProvider
	logger          primary.Logger
}

func NewServer(port int, serviceName string, serviceProvider ServiceProvider, middleware *handlers.MiddlewareProvider, logger primary.Logger) *Server {
	return &Server{
		Port:            port,
		ServiceName:     serviceName,
		ServiceProvider: serviceProvider,
		middleware:      middleware,
		logger:          logger,
	}
}

func (s *Server) Init() error {
	r := mux.NewRouter()
	tests.NewTestsHandler(
		s.ServiceProvider.submissionService,
		s.ServiceProvider.resultService,
		s.ServiceProvider.assignmentService,
		s.logger,
	).RegisterRoutes(r, s.middleware)
	s.router = r
	return nil
}

func (s *Server) Start(ctx context.Context) {
	s.srv = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start the server in a goroutine
	go func() {
		s.logger.Info("Server listening", "addr", s.srv.Addr, "service", s.ServiceName)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()
}

func (s *Server) Stop(ctx context.Context) {
	s.logger.Info("Shutting down http server...")
	if s.srv == nil {
		return
	}
	if err := s.srv.Shutdown(ctx); err != nil {
		s.logger.Error("Server forced to shutdown", "error", err)
	}
}
