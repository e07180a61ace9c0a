package main

import (
	"database/sql"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"syscall"

	"github.com/go-playground/validator/v10"
	"golang.org/x/term"

	"github.com/skillx/skillx/core"
	"github.com/skillx/skillx/core/report"
	"github.com/skillx/skillx/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp       = errors.New("help provided")
	errNoDatabase = errors.New("migrations require the postgres storage driver")
	errNotCleared = errors.New("clearall aborted: pass -yes to confirm")
)

type commandLine struct {
	store     core.Store
	openDB    func() (*sql.DB, error) // nil unless storage is postgres
	usrSvc    *user.Service
	reportSvc *report.Service
	validate  *validator.Validate
	out       io.Writer
}

func (cli *commandLine) printUsage() {
	_, _ = fmt.Fprintln(cli.out, "Usage:")
	_, _ = fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS] - run a goose command (up, down, status, ...) on the postgres store")
	_, _ = fmt.Fprintln(cli.out, "  adduser -name NAME -email EMAIL - create a faculty member. The password will be prompted next.")
	_, _ = fmt.Fprintln(cli.out, "  clearall -yes - delete every record of every collection")
	_, _ = fmt.Fprintln(cli.out, "  stats - print the platform statistics as JSON")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addUserCmd := flag.NewFlagSet("adduser", flag.ContinueOnError)
	addUserCmd.SetOutput(cli.out)
	addUserName := addUserCmd.String("name", "", "The faculty member's full name.")
	addUserEmail := addUserCmd.String("email", "", "The faculty member's email.")

	clearAllCmd := flag.NewFlagSet("clearall", flag.ContinueOnError)
	clearAllCmd.SetOutput(cli.out)
	clearAllYes := clearAllCmd.Bool("yes", false, "Confirm deleting all records.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addUserName == "" || *addUserEmail == "" {
			addUserCmd.Usage()
			return errHelp
		}
		_, _ = fmt.Fprint(cli.out, "Enter password:")
		pwd, err := readPasswordFunc(int(syscall.Stdin))
		_, _ = fmt.Fprintln(cli.out)
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			addUserCmd.Usage()
			return errHelp
		}
		usr, err := cli.addUser(*addUserName, *addUserEmail, string(pwd))
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cli.out, "faculty member %s <%s> created: %s\n", usr.Name, usr.Email, usr.ID)
		return nil
	case "clearall":
		if err := clearAllCmd.Parse(args[2:]); err != nil {
			return err
		}
		if !*clearAllYes {
			return errNotCleared
		}
		return cli.clearAll()
	case "stats":
		return cli.stats()
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) stats() error {
	stats, err := cli.reportSvc.Platform(ctxBg)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cli.out)
	enc.SetIndent("", "  ")
	return enc.Encode(stats)
}
