package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/aussiebroadwan/quill/internal/quill/app"
	"github.com/aussiebroadwan/quill/pkg/authhttp"
)

const usage = `usage: quill <command> [flags]

commands:
  login    -u <username> [-p <password>]   log in and store the session
  logout                                   end the session
  status                                   show the stored session
  open     <path>                          navigate to a route through the guard
  request  [-X method] [-d body] <path>    send an authenticated request
`

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := app.LoadConfig()
	application, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}

	err = run(ctx, application, os.Args[1], os.Args[2:])
	for _, n := range application.Notices() {
		fmt.Fprintf(os.Stderr, "[%s] %s\n", n.Level, n.Message)
	}
	if cerr := application.Close(); cerr != nil {
		log.Printf("failed to close storage: %v", cerr)
	}
	if err != nil {
		var apiErr *authhttp.APIError
		if errors.As(err, &apiErr) {
			fmt.Fprintf(os.Stderr, "%s\n", apiErr.Body)
		}
		log.Fatalf("%s failed: %v", os.Args[1], err)
	}
}

func run(ctx context.Context, a *app.Application, cmd string, args []string) error {
	switch cmd {
	case "login":
		in, err := app.ParseLoginArgs(args, os.Getenv, os.Stdin)
		if err != nil {
			return usageError(err)
		}
		return a.Login(ctx, os.Stdout, in.Username, in.Password)
	case "logout":
		return a.Logout(ctx, os.Stdout)
	case "status":
		return a.Status(ctx, os.Stdout)
	case "open":
		path, err := app.ParseOpenArgs(args)
		if err != nil {
			return usageError(err)
		}
		return a.Open(ctx, os.Stdout, path)
	case "request":
		return runRequest(ctx, a, args)
	case "help", "-h", "--help":
		fmt.Print(usage)
		return nil
	default:
		return usageError(fmt.Errorf("unknown command %q", cmd))
	}
}

func runRequest(ctx context.Context, a *app.Application, args []string) error {
	in, err := app.ParseRequestArgs(args, os.Stdin)
	if err != nil {
		return usageError(err)
	}
	defer in.Close()

	if err := a.Request(ctx, os.Stdout, in.Method, in.Path, in.Body); err != nil {
		return err
	}
	fmt.Println()
	return nil
}

func usageError(err error) error {
	fmt.Fprint(os.Stderr, usage)
	return err
}
