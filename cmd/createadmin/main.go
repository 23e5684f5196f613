package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/finaurial/finance-tracker/internal/config"
	"github.com/finaurial/finance-tracker/internal/models"
	"github.com/finaurial/finance-tracker/internal/repository"
	"github.com/finaurial/finance-tracker/internal/service"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"
)

// openStore is replaced in tests
var openStore = func(ctx context.Context) (repository.Store, error) {
	cfg, err := config.Load(".env")
	if err != nil {
		return nil, err
	}
	return repository.Open(ctx, cfg)
}

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("createadmin", flag.ContinueOnError)
	fs.SetOutput(stderr)

	emailAddr := fs.String("email", "", "Email of the admin account")
	username := fs.String("username", "", "Username, required when the account does not exist yet")
	passwordFlag := fs.String("password", "", "Password (optional, will prompt if omitted)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *emailAddr == "" {
		fmt.Fprintln(stdout, "Usage: createadmin -email <email> [-username <username>] [-password <password>]")
		fs.PrintDefaults()
		return fmt.Errorf("missing required flags: email")
	}

	ctx := context.Background()
	store, err := openStore(ctx)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer store.Close()

	logger := logrus.New()
	logger.SetOutput(stderr)
	logger.SetLevel(logrus.WarnLevel)
	svc := service.NewService(store, logger, service.Dependencies{})

	// Existing accounts are promoted without touching their password
	user, err := svc.SetRole(ctx, *emailAddr, models.RoleAdmin)
	if err == nil {
		fmt.Fprintf(stdout, "User %s promoted to admin\n", user.Email)
		return nil
	}
	if !errors.Is(err, service.ErrNotFound) {
		return fmt.Errorf("failed to promote user: %w", err)
	}

	if *username == "" {
		return fmt.Errorf("user %s does not exist, -username is required to create it", *emailAddr)
	}

	password := *passwordFlag
	if password == "" {
		fmt.Fprint(stdout, "Password: ")
		password, err = readPassword(stdin)
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Fprintln(stdout)
	}
	if len(strings.TrimSpace(password)) < 6 {
		return fmt.Errorf("password must be at least 6 characters")
	}

	user, err = svc.CreateUser(ctx, *username, *emailAddr, password, models.RoleAdmin)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	fmt.Fprintf(stdout, "Admin %s created successfully with ID %s\n", user.Email, user.ID)
	return nil
}

func readPassword(stdin io.Reader) (string, error) {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		bytePassword, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(bytePassword), nil
	}

	scanner := bufio.NewScanner(stdin)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}
