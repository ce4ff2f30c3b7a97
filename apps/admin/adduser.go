package main

import (
	"context"

	"github.com/trezcool/classsync/core"
	"github.com/trezcool/classsync/core/user"
)

// addUser updates or creates an active user.User with the given role.
func (cli *commandLine) addUser(uname, name, email, pwd string, isTeacher bool) error {
	ctx := context.Background()
	roles := []string{user.RoleStudent}
	if isTeacher {
		roles = []string{user.RoleTeacher}
	}

	usr, err := cli.usrSvc.GetByUsername(ctx, uname)
	if err != nil {
		if !core.IsNotFound(err) {
			return err
		}
		_, err = cli.usrSvc.Create(ctx, user.NewUser{
			Name:            name,
			Username:        uname,
			Email:           email,
			Password:        pwd,
			PasswordConfirm: pwd,
			Roles:           roles,
		})
		return err
	}

	active := true
	_, err = cli.usrSvc.Update(ctx, usr, user.UpdateUser{
		Name:            name,
		Email:           email,
		IsActive:        &active,
		Roles:           roles,
		Password:        pwd,
		PasswordConfirm: pwd,
	})
	return err
}
