package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	echoapi "github.com/campusconnect/backend/apps/api/echo"
	"github.com/campusconnect/backend/core"
	"github.com/campusconnect/backend/core/announcement"
	"github.com/campusconnect/backend/core/assignment"
	"github.com/campusconnect/backend/core/attendance"
	"github.com/campusconnect/backend/core/enroll"
	"github.com/campusconnect/backend/core/user"
	emailsvc "github.com/campusconnect/backend/services/email"
	identitysvc "github.com/campusconnect/backend/services/identity"
	logsvc "github.com/campusconnect/backend/services/logger"
	b2blob "github.com/campusconnect/backend/storage/blob/b2"
	inmemblob "github.com/campusconnect/backend/storage/blob/inmem"
	boltdoc "github.com/campusconnect/backend/storage/document/bolt"
)

func main() {
	std := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig(core.Getwd())

	var logger core.Logger
	if conf.RollbarToken != "" {
		logger = logsvc.NewRollbarLogger(std, conf)
		logger.Enable(!conf.Debug)
	} else {
		logger = core.NewConsoleLogger(std)
	}

	// set up stores
	store, err := boltdoc.Open(conf.Store)
	if err != nil {
		std.Fatal(err)
	}
	defer store.Close()

	var blobs core.BlobStore
	if conf.Debug {
		blobs = inmemblob.New()
	} else {
		blobs, err = b2blob.New(context.Background(), conf.Blob)
		if err != nil {
			std.Fatal(err)
		}
	}

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}
	identity := identitysvc.NewService(store)
	usrSvc := user.NewService(store, blobs)
	enrollSvc := enroll.NewService(conf, store, mailSvc, logger)
	assignmentSvc := assignment.NewService(store, blobs, logger)
	announcementSvc := announcement.NewService(store)
	attendanceSvc := attendance.NewService(conf, store)

	// start API server
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	app := echoapi.NewServer(
		&echoapi.Options{
			Conf:            conf,
			Logger:          logger,
			Identity:        identity,
			UserSvc:         usrSvc,
			EnrollSvc:       enrollSvc,
			AssignmentSvc:   assignmentSvc,
			AnnouncementSvc: announcementSvc,
			AttendanceSvc:   attendanceSvc,
			SignalShutdown:  func() { shutdown <- syscall.SIGTERM },
		},
	)
	go app.Start()

	<-shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.Stop(ctx); err != nil {
		std.Fatal(err)
	}
}
