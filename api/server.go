package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/mux"
	"github.com/jub0bs/fcors"

	"github.com/dicabi/inmobiliaria/db"
	"github.com/dicabi/inmobiliaria/model"
)

type Deps struct {
	Backend *db.Backend
	// Notifier and Writer are optional.
	Notifier AppointmentNotifier
	Writer   DescriptionWriter
	CacheTTL time.Duration
}

type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	cache      *ModelCache
}

func NewServer(port string, deps Deps, log *slog.Logger) (*Server, error) {
	modelResidences := db.Collection[model.ModelResidence](deps.Backend, collModelResidences)
	cache := NewModelCache(modelResidences, deps.CacheTTL)

	r := mux.NewRouter()
	r.Use(LoggerMiddleware(log), middleware.Recoverer)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSONError(w, http.StatusNotFound, "Ruta no encontrada", nil)
	})

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/municipios", listMunicipalities).Methods(http.MethodGet)
	for _, res := range newResources(deps, cache, modelResidences) {
		res.Register(api)
	}

	cors, err := fcors.AllowAccess(
		fcors.FromAnyOrigin(),
		fcors.WithMethods(
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
		),
		fcors.WithRequestHeaders("Authorization", "Content-Type"),
	)
	if err != nil {
		cache.Stop()
		return nil, fmt.Errorf("configure cors: %w", err)
	}

	return &Server{
		httpServer: &http.Server{
			Addr:              ":" + port,
			Handler:           cors(r),
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: log,
		cache:  cache,
	}, nil
}

func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) Start() error {
	s.logger.Info("Starting REST server", slog.String("address", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping REST server...")
	defer s.cache.Stop()
	return s.httpServer.Shutdown(ctx)
}

// Close releases background resources without touching the listener; used
// when the server was only used through Handler.
func (s *Server) Close() {
	s.cache.Stop()
}
