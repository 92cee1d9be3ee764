package main

import (
	"context"
	"io/ioutil"
	"log"
	"testing"

	"github.com/campusconnect/backend/core"
	"github.com/campusconnect/backend/core/enroll"
	"github.com/campusconnect/backend/core/user"
	emailsvc "github.com/campusconnect/backend/services/email"
	identitysvc "github.com/campusconnect/backend/services/identity"
	inmemdoc "github.com/campusconnect/backend/storage/document/inmem"
)

func setup(t *testing.T) (*commandLine, core.IdentityProvider) {
	t.Helper()
	logger = log.New(ioutil.Discard, "", 0)

	conf := &core.Config{AppName: "CampusConnect", TestMode: true}
	store := inmemdoc.New()
	identity := identitysvc.NewService(store)
	coreLogger := core.NewConsoleLogger(logger)

	return &commandLine{
		identity:  identity,
		usrSvc:    user.NewService(store, nil),
		enrollSvc: enroll.NewService(conf, store, emailsvc.NewConsoleServiceMock(conf), coreLogger),
	}, identity
}

type cliTest struct {
	name    string
	args    []string // without program name
	pwd     string
	wantErr error
}

func Test_commandLine_run(t *testing.T) {
	cli, _ := setup(t)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "addteacher: no args", args: []string{"addteacher"}, wantErr: errHelp},
		{name: "addteacher: no name", args: []string{"addteacher", "-email", "jane@test.cd"}, wantErr: errHelp},
		{name: "addteacher: empty password", args: []string{"addteacher", "-email", "jane@test.cd", "-name", "Jane Poe"}, wantErr: errHelp},
		{name: "addteacher: weak password", args: []string{"addteacher", "-email", "jane@test.cd", "-name", "Jane Poe"}, pwd: "short", wantErr: core.ErrWeakPassword},
		{name: "addteacher", args: []string{"addteacher", "-email", "jane@test.cd", "-name", "Jane Poe"}, pwd: "s3cretpwd"},
		{name: "addteacher: email taken", args: []string{"addteacher", "-email", "jane@test.cd", "-name", "Jane Poe"}, pwd: "s3cretpwd", wantErr: core.ErrEmailTaken},
		{name: "reconcile: nothing to do", args: []string{"reconcile"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			readPasswordFunc = func(int) ([]byte, error) { return []byte(tt.pwd), nil }

			err := cli.run(args)
			if tt.wantErr != nil {
				if err != tt.wantErr {
					t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Errorf("cli.run() unexpected error = %v", err)
			}
		})
	}
}

func Test_commandLine_addTeacher(t *testing.T) {
	cli, identity := setup(t)

	if err := cli.addTeacher(" Jane@Test.CD ", "  Jane Poe ", "s3cretpwd"); err != nil {
		t.Fatalf("addTeacher() failed: %v", err)
	}

	ctx := context.Background()
	uid, err := identity.VerifyCredential(ctx, "jane@test.cd", "s3cretpwd")
	if err != nil {
		t.Fatalf("VerifyCredential() failed: %v", err)
	}
	usr, err := cli.usrSvc.Get(ctx, user.RoleTeacher, uid)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if usr.FullName != "Jane Poe" {
		t.Errorf("FullName = %q, want %q", usr.FullName, "Jane Poe")
	}
}
