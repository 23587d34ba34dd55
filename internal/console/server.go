package console

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/ansycloud/console/internal/file"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/rs/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

const shutdownTimeout = 10 * time.Second

// Server is an interface for the component that serves the console.
type Server interface {
	// ListenAndServe causes the console to start serving HTTP requests. It
	// blocks until the context is canceled or an error occurs.
	ListenAndServe(ctx context.Context) error
	// Handler returns the console's complete request handling chain.
	Handler() http.Handler
}

type server struct {
	*BaseEndpoints
	config  Config
	handler http.Handler
}

// NewServer returns a console server. Every request passes through the cookie
// gate before it reaches any of the given endpoints.
func NewServer(
	config Config,
	baseEndpoints *BaseEndpoints,
	gate *cookieGate,
	endpoints []Endpoints,
) Server {
	router := mux.NewRouter()
	router.StrictSlash(true)

	s := &server{
		BaseEndpoints: baseEndpoints,
		config:        config,
	}

	// Health check
	router.HandleFunc(
		"/healthz",
		s.checkHealth, // No filters applied to this request
	).Methods(http.MethodGet)

	for _, eps := range endpoints {
		eps.Register(router)
	}

	s.handler = cors.New(
		cors.Options{
			AllowedMethods: []string{http.MethodGet, http.MethodPost},
		},
	).Handler(withRedirector(gate.Middleware(router)))

	return s
}

func (s *server) Handler() http.Handler {
	return s.handler
}

func (s *server) ListenAndServe(ctx context.Context) error {
	tlsEnabled := s.config.TLSEnabled() &&
		file.Exists(s.config.TLSCertPath()) &&
		file.Exists(s.config.TLSKeyPath())
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.config.Port()),
		Handler: s.handler,
	}
	if !tlsEnabled {
		srv.Handler = h2c.NewHandler(s.handler, &http2.Server{})
	}

	errCh := make(chan error, 1)
	go func() {
		if tlsEnabled {
			log.Printf(
				"console is listening with TLS enabled on 0.0.0.0:%d",
				s.config.Port(),
			)
			errCh <- srv.ListenAndServeTLS(
				s.config.TLSCertPath(),
				s.config.TLSKeyPath(),
			)
			return
		}
		log.Printf(
			"console is listening without TLS on 0.0.0.0:%d",
			s.config.Port(),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	log.Println("console is shutting down")
	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		shutdownTimeout,
	)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "error shutting down console")
	}
	return nil
}

func (s *server) checkHealth(w http.ResponseWriter, r *http.Request) {
	s.ServeRequest(
		InboundRequest{
			W: w,
			R: r,
			EndpointLogic: func() (interface{}, error) {
				return struct{}{}, nil
			},
			SuccessCode: http.StatusOK,
		},
	)
}
