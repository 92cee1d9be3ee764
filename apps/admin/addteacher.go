package main

import (
	"context"

	"github.com/campusconnect/backend/core"
	"github.com/campusconnect/backend/core/user"
)

// addTeacher creates a credential and a teacher profile for it.
func (cli *commandLine) addTeacher(email, name, pwd string) error {
	ctx := context.Background()
	email = core.CleanString(email, true /* lower */)
	name = core.CleanString(name)

	uid, err := cli.identity.CreateCredential(ctx, email, pwd)
	if err != nil {
		return err
	}

	if _, err := cli.usrSvc.Create(ctx, user.User{
		ID:       uid,
		Email:    email,
		FullName: name,
		Role:     user.RoleTeacher,
	}); err != nil {
		return err
	}

	logger.Printf("teacher %q created (id=%s)", email, uid)
	return nil
}
