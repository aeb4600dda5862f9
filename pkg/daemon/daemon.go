package daemon

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/charlie0129/corrcal/pkg/config"
	"github.com/charlie0129/corrcal/pkg/events"
	"github.com/charlie0129/corrcal/pkg/session"
)

var (
	conf  config.Config
	store *session.Store
	hub   *events.EventHub
	// closed when the server shuts down, so event streams can return
	streamsDone chan struct{}
)

func setupRoutes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(ginLogger(logrus.StandardLogger()))
	router.Use(rateLimiter(conf.RateLimit))

	router.GET("/version", getVersion)
	router.GET("/config", getConfig)
	router.PUT("/theme", setTheme)
	router.PUT("/default-unit", setDefaultUnit)
	router.POST("/calculate", calculate)
	router.GET("/events", streamEvents)

	sessions := router.Group("/sessions")
	sessions.GET("", listSessions)
	sessions.POST("", createSession)
	sessions.GET("/:id", getSession)
	sessions.DELETE("/:id", deleteSession)
	sessions.PUT("/:id/calcium", setSessionCalcium)
	sessions.PUT("/:id/albumin", setSessionAlbumin)
	sessions.PUT("/:id/unit", setSessionUnit)
	sessions.POST("/:id/reset", resetSession)
	sessions.GET("/:id/clipboard", getSessionClipboard)

	return router
}

// setup wires the package state from an already loaded config.
func setup(c config.Config) {
	conf = c
	store = session.NewStore(conf.MaxSessions(), conf.SessionTTL(), logrus.StandardLogger())
	hub = events.NewEventHub()
	streamsDone = make(chan struct{})
}

func Run(configPath string, unixSocketPath string, allowNonRoot bool) error {
	fileConf, err := config.NewFile(configPath)
	if err != nil {
		logrus.Fatalf("failed to parse config during startup: %v", err)
	}
	logrus.WithFields(fileConf.LogrusFields()).Infof("config loaded")

	setup(fileConf)
	router := setupRoutes()

	// Receive SIGHUP to reload config. The rate limit follows it, session limits
	// only apply to a new daemon.
	go func() {
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGHUP)
		for range sigc {
			err := fileConf.Load()
			if err != nil {
				logrus.Errorf("failed to reload config: %v", err)
				continue
			}
			logrus.WithFields(fileConf.LogrusFields()).Infof("config reloaded")
		}
	}()

	srv := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// A socket left behind by a crashed daemon would make Listen fail.
	if _, err := os.Stat(unixSocketPath); err == nil {
		logrus.Warnf("removing stale socket %s", unixSocketPath)
		if err := os.Remove(unixSocketPath); err != nil {
			logrus.Fatal(err)
		}
	}

	// Create the socket to listen on:
	l, err := net.Listen("unix", unixSocketPath)
	if err != nil {
		logrus.Fatal(err)
	}

	if conf.AllowNonRootAccess() || allowNonRoot {
		logrus.Infof("non-root access is allowed, changing permissions of %s to 0777", unixSocketPath)
		err = os.Chmod(unixSocketPath, 0777)
		if err != nil {
			logrus.Fatal(err)
		}
	}

	// Serve HTTP on unix socket
	go func() {
		logrus.Infof("http server listening on %s", l.Addr().String())
		if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatal(err)
		}
	}()

	// Handle common process-killing signals, so we can gracefully shut down:
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	// Wait for a SIGINT or SIGTERM:
	sig := <-sigc
	logrus.Infof("caught signal \"%s\": shutting down.", sig)

	logrus.Info("shutting down http server")
	// Open event streams never go idle on their own.
	done := streamsDone
	srv.RegisterOnShutdown(func() { close(done) })
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	err = srv.Shutdown(ctx)
	if err != nil {
		logrus.Errorf("failed to shutdown http server: %v", err)
	}
	cancel()

	logrus.WithField("sessions", store.Len()).Info("exiting")
	return nil
}
