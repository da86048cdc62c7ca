// Command register creates an account from the terminal, prompting for the
// password without echo. Useful for bootstrapping an instance before the API
// is exposed.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"golang.org/x/term"

	"budgeteer/internal/auth"
	"budgeteer/internal/cli"
	applog "budgeteer/internal/log"
	"budgeteer/internal/services"
)

func main() {
	username := flag.String("username", "", "username for the new account")
	email := flag.String("email", "", "email for the new account")
	flag.Parse()

	if *username == "" || *email == "" {
		fmt.Fprintln(os.Stderr, "usage: register -username <name> -email <address>")
		os.Exit(2)
	}

	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentAuth)
	cfg := cli.LoadAndValidateConfig(logger)

	password, err := promptPassword("Password: ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "read password: %v\n", err)
		os.Exit(1)
	}
	confirm, err := promptPassword("Confirm password: ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "read password: %v\n", err)
		os.Exit(1)
	}
	if password != confirm {
		fmt.Fprintln(os.Stderr, "passwords do not match")
		os.Exit(1)
	}

	db := cli.OpenDatabase(logger, cfg.SQLiteDBPath)
	defer db.Close()

	authService := services.NewAuthService(db, auth.LoginPolicy{
		AttemptLimit: cfg.LoginAttemptLimit,
		LockDuration: cfg.LoginLockDuration,
	}, cfg.SessionTimeout)

	account, err := authService.Register(context.Background(), *username, *email, password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "register: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Account %q created with id %d\n", account.Username, account.ID)
}

func promptPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
