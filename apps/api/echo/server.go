package echoapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/campusconnect/backend/core"
	"github.com/campusconnect/backend/core/announcement"
	"github.com/campusconnect/backend/core/assignment"
	"github.com/campusconnect/backend/core/attendance"
	"github.com/campusconnect/backend/core/enroll"
	"github.com/campusconnect/backend/core/user"
)

type (
	Options struct {
		Conf            *core.Config
		Logger          core.Logger
		Identity        core.IdentityProvider
		UserSvc         user.Service
		EnrollSvc       enroll.Service
		AssignmentSvc   assignment.Service
		AnnouncementSvc announcement.Service
		AttendanceSvc   attendance.Service
		DisableReqLogs  bool
		// SignalShutdown is called when an unrecoverable error is caught;
		// main uses it to trigger a graceful shutdown.
		SignalShutdown func()
	}

	Server interface {
		http.Handler
		Start()
		Stop(context.Context) error
	}

	server struct {
		opts *Options
		app  *echo.Echo
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	if opts.SignalShutdown == nil {
		opts.SignalShutdown = func() {}
	}
	s := &server{
		opts: opts,
		app:  echo.New(),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.opts.Conf

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.opts.SignalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(newJWTConfig(conf))

	registerAuthAPI(v1, jwt, s.opts)
	registerProfileAPI(v1, jwt, s.opts)
	registerEnrollAPI(v1, jwt, s.opts)
	registerAssignmentAPI(v1, jwt, s.opts)
	registerAnnouncementAPI(v1, jwt, s.opts)
	registerAttendanceAPI(v1, jwt, s.opts)
}

func (s *server) Start() {
	s.app.Logger.Fatal(s.app.Start(s.opts.Conf.Server.Address()))
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to CampusConnect API!")
}
