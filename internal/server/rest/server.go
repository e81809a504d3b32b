// Package rest exposes the HTTP API: registration, login, the user directory
// and the per-message endpoints. All routes except /register and /login
// require a bearer token.
package rest

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/messagely/internal/logging"
	"github.com/dmitrijs2005/messagely/internal/server/config"
	"github.com/dmitrijs2005/messagely/internal/server/messages"
	"github.com/dmitrijs2005/messagely/internal/server/users"
	"github.com/gin-gonic/gin"
)

// UserService is the slice of the users service the handlers need.
type UserService interface {
	Register(ctx context.Context, p users.RegisterParams) (*users.User, error)
	Authenticate(ctx context.Context, username, password string) (bool, error)
	UpdateLoginTimestamp(ctx context.Context, username string) error
	Get(ctx context.Context, username string) (*users.User, error)
	All(ctx context.Context) ([]users.Summary, error)
}

// MessageService is the slice of the messages service the handlers need.
type MessageService interface {
	Create(ctx context.Context, fromUsername, toUsername, body string) (*messages.Message, error)
	Get(ctx context.Context, id string) (*messages.Detail, error)
	MarkRead(ctx context.Context, id string) (*messages.ReadReceipt, error)
	From(ctx context.Context, username string) ([]messages.Sent, error)
	To(ctx context.Context, username string) ([]messages.Received, error)
}

type RESTServer struct {
	address         string
	secretKey       []byte
	shutdownTimeout time.Duration
	users           UserService
	messages        MessageService
	logger          logging.Logger
}

func NewRESTServer(cfg *config.Config, us UserService, ms MessageService, logger logging.Logger) *RESTServer {
	return &RESTServer{
		address:         cfg.EndpointAddr,
		secretKey:       []byte(cfg.SecretKey),
		shutdownTimeout: cfg.ShutdownTimeout,
		users:           us,
		messages:        ms,
		logger:          logger.With("module", "rest_server"),
	}
}

// Router builds the gin engine with all routes attached. Split out from Run
// so tests can drive it through httptest without binding a socket.
func (s *RESTServer) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.POST("/register", s.register)
	r.POST("/login", s.login)

	u := r.Group("/users", s.authRequired)
	{
		u.GET("", s.listUsers)
		u.GET("/:username", s.correctUser, s.getUser)
		u.GET("/:username/to", s.correctUser, s.messagesTo)
		u.GET("/:username/from", s.correctUser, s.messagesFrom)
	}

	m := r.Group("/messages", s.authRequired)
	{
		m.POST("", s.createMessage)
		m.GET("/:id", s.getMessage)
		m.POST("/:id/read", s.markMessageRead)
	}

	return r
}

// Run serves until ctx is cancelled, then drains in-flight requests within
// the configured shutdown timeout.
func (s *RESTServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.address,
		Handler: s.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "starting http server", "addr", s.address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	s.logger.Info(ctx, "shutting down http server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	return <-errCh
}
