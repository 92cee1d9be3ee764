package main

import (
	"log"
	"os"

	"github.com/campusconnect/backend/core"
	"github.com/campusconnect/backend/core/enroll"
	"github.com/campusconnect/backend/core/user"
	emailsvc "github.com/campusconnect/backend/services/email"
	identitysvc "github.com/campusconnect/backend/services/identity"
	boltdoc "github.com/campusconnect/backend/storage/document/bolt"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig(core.Getwd())

	store, err := boltdoc.Open(conf.Store)
	errAndDie(err)
	defer store.Close()

	coreLogger := core.NewConsoleLogger(logger)
	mailSvc := emailsvc.NewConsoleService(conf)

	cli := commandLine{
		identity:  identitysvc.NewService(store),
		usrSvc:    user.NewService(store, nil),
		enrollSvc: enroll.NewService(conf, store, mailSvc, coreLogger),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
