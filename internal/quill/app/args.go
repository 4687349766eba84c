package app

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
)

// PasswordEnv supplies the login password when -p is not given.
const PasswordEnv = "QUILL_PASSWORD"

// maxPasswordBytes bounds a password read from stdin.
const maxPasswordBytes = 4096

// LoginArgs are the parsed arguments of the login command.
type LoginArgs struct {
	Username string
	Password string
}

// ParseLoginArgs reads -u and -p. Without -p the password comes from
// PasswordEnv, then from the first line of stdin.
func ParseLoginArgs(args []string, getenv func(string) string, stdin io.Reader) (LoginArgs, error) {
	fs := newFlagSet("login")
	username := fs.String("u", "", "Username")
	password := fs.String("p", "", "Password (default: read from "+PasswordEnv+" or stdin)")
	if err := fs.Parse(args); err != nil {
		return LoginArgs{}, err
	}
	if fs.NArg() != 0 {
		return LoginArgs{}, fmt.Errorf("login takes no arguments, got %q", fs.Args())
	}

	out := LoginArgs{Username: *username, Password: *password}
	if out.Password == "" && getenv != nil {
		out.Password = getenv(PasswordEnv)
	}
	if out.Password == "" && stdin != nil {
		raw, err := io.ReadAll(io.LimitReader(stdin, maxPasswordBytes))
		if err != nil {
			return LoginArgs{}, fmt.Errorf("failed to read password: %w", err)
		}
		out.Password = strings.TrimRight(string(raw), "\r\n")
	}
	return out, nil
}

// RequestArgs are the parsed arguments of the request command. Close releases
// a body opened from a file.
type RequestArgs struct {
	Method string
	Path   string
	Body   io.Reader

	closer io.Closer
}

func (r *RequestArgs) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// ParseRequestArgs reads -X and -d and the one path argument. The body is
// inline text, @file for a file, or @- for stdin; empty means no body.
func ParseRequestArgs(args []string, stdin io.Reader) (*RequestArgs, error) {
	fs := newFlagSet("request")
	method := fs.String("X", "GET", "HTTP method")
	data := fs.String("d", "", "Request body, @file to read a file, @- for stdin")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 1 {
		return nil, errors.New("request takes exactly one path")
	}

	out := &RequestArgs{Method: strings.ToUpper(*method), Path: fs.Arg(0)}
	switch {
	case *data == "@-":
		out.Body = stdin
	case strings.HasPrefix(*data, "@"):
		f, err := os.Open(strings.TrimPrefix(*data, "@"))
		if err != nil {
			return nil, fmt.Errorf("failed to open request body: %w", err)
		}
		out.Body, out.closer = f, f
	case *data != "":
		out.Body = strings.NewReader(*data)
	}
	return out, nil
}

// ParseOpenArgs returns the single route path of the open command.
func ParseOpenArgs(args []string) (string, error) {
	fs := newFlagSet("open")
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	if fs.NArg() != 1 {
		return "", errors.New("open takes exactly one path")
	}
	return fs.Arg(0), nil
}

// newFlagSet returns errors instead of exiting; the caller prints usage.
func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}
