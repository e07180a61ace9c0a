package main

import (
	"github.com/pkg/errors"

	"github.com/skillx/skillx/core/user"
)

// addUser registers a faculty member. Students sign up through the API.
func (cli *commandLine) addUser(name, email, pwd string) (user.User, error) {
	nu := user.NewUser{
		Name:            name,
		Email:           email,
		Password:        pwd,
		PasswordConfirm: pwd,
		Role:            user.RoleFaculty,
	}
	if err := nu.Validate(cli.validate); err != nil {
		return user.User{}, err
	}
	return cli.usrSvc.Register(ctxBg, nu)
}

func (cli *commandLine) clearAll() error {
	if err := cli.store.Clear(ctxBg); err != nil {
		return errors.Wrap(err, "clearing store")
	}
	_, _ = cli.out.Write([]byte("all records deleted\n"))
	return nil
}
