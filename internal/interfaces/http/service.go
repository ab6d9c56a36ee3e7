package httpinterface

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/incubator-tracker/internal/core/application"
	"github.com/tdex-network/incubator-tracker/internal/interfaces"
	"github.com/tdex-network/incubator-tracker/pkg/explorer"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
)

type ServiceOpts struct {
	Address        string
	AllowedOrigins []string

	DepositSvc application.DepositService
	// Explorer, if defined, is used to report the health of the ledger node.
	Explorer explorer.Service
}

func (o ServiceOpts) validate() error {
	if _, _, err := net.SplitHostPort(o.Address); err != nil {
		return fmt.Errorf("invalid listening address %s: %s", o.Address, err)
	}
	if o.DepositSvc == nil {
		return fmt.Errorf("deposit app service must not be null")
	}
	return nil
}

type service struct {
	opts   ServiceOpts
	server *http.Server
}

func NewService(opts ServiceOpts) (interfaces.Service, error) {
	if err := opts.validate(); err != nil {
		return nil, fmt.Errorf("invalid opts: %s", err)
	}

	gin.SetMode(gin.ReleaseMode)

	return &service{
		opts: opts,
		server: &http.Server{
			Addr:              opts.Address,
			Handler:           newRouter(opts),
			ReadHeaderTimeout: readHeaderTimeout,
		},
	}, nil
}

func (s *service) Start() error {
	lis, err := net.Listen("tcp", s.opts.Address)
	if err != nil {
		return err
	}

	go func() {
		if err := s.server.Serve(lis); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("http interface stopped unexpectedly")
		}
	}()

	log.Infof("http interface listening on %s", lis.Addr())
	return nil
}

func (s *service) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		log.WithError(err).Warn("failed to gracefully stop http interface")
		return
	}
	log.Debug("disabled http interface")
}

func newRouter(opts ServiceOpts) http.Handler {
	handler := newDepositHandler(opts.DepositSvc, opts.Explorer)

	router := gin.New()
	router.Use(gin.Recovery(), requestID(), requestLogger())

	router.GET("/healthz", handler.Health)
	router.GET("/metrics", metricsHandler())

	v1 := router.Group("/v1")
	v1.GET("/deposits/:user", handler.GetUserDeposit)

	allowedOrigins := opts.AllowedOrigins
	if len(allowedOrigins) == 0 {
		return router
	}
	return cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet},
		ExposedHeaders: []string{requestIDHeader},
	}).Handler(router)
}
