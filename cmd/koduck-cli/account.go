package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"koduck/internal/state"
	"koduck/pkg/koduck"
)

func runLogin(ctx context.Context, a *app, args []string) error {
	fs := a.newFlags("login", "[options]")
	username := fs.StringP("username", "u", "", "account name")
	password := fs.StringP("password", "p", "", "password (default $KODUCK_PASSWORD, then stdin)")
	remember := fs.Bool("remember", false, "ask for a long-lived token")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *username == "" {
		return usagef("login: --username is required")
	}
	pw, err := readPassword(a, *password)
	if err != nil {
		return err
	}

	resp, err := a.client.Login(ctx, koduck.LoginRequest{
		Username:   *username,
		Password:   pw,
		RememberMe: *remember,
	})
	if err != nil {
		return err
	}

	user := &state.User{Username: *username}
	if resp.User != nil {
		user = &state.User{ID: resp.User.ID, Username: resp.User.Username}
	}
	if err := a.session.SetCredential(resp.AccessToken, user); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	fmt.Fprintf(a.stdout, "logged in as %s\n", user.Username)
	return nil
}

func runRegister(ctx context.Context, a *app, args []string) error {
	fs := a.newFlags("register", "[options]")
	username := fs.StringP("username", "u", "", "account name")
	password := fs.StringP("password", "p", "", "password")
	confirm := fs.String("confirm", "", "password again")
	email := fs.String("email", "", "email address")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *username == "" || *password == "" {
		return usagef("register: --username and --password are required")
	}
	err := a.client.Register(ctx, koduck.RegisterRequest{
		Username:        *username,
		Password:        *password,
		ConfirmPassword: *confirm,
		Email:           *email,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "registered %s, run `koduck-cli login -u %s`\n", *username, *username)
	return nil
}

func runLogout(ctx context.Context, a *app, args []string) error {
	if err := a.client.Logout(ctx); err != nil {
		// The local session is gone either way.
		a.log.Warn("server logout failed", "error", err)
	}
	fmt.Fprintln(a.stdout, "logged out")
	return nil
}

func runWhoami(ctx context.Context, a *app, args []string) error {
	if _, ok := a.session.Token(); !ok {
		return fmt.Errorf("not logged in, run `koduck-cli login`")
	}
	info, err := a.client.UserInfo(ctx)
	if err != nil {
		return err
	}
	field(a.stdout, "user", info.Username)
	field(a.stdout, "id", info.ID)
	if info.Email != "" {
		field(a.stdout, "email", info.Email)
	}
	if len(info.Roles) > 0 {
		field(a.stdout, "roles", strings.Join(info.Roles, ", "))
	}
	return nil
}

func runProfile(ctx context.Context, a *app, args []string) error {
	fs := a.newFlags("profile", "[options]")
	var req koduck.UpdateProfileRequest
	fs.StringVar(&req.Nickname, "nickname", "", "new nickname")
	fs.StringVar(&req.Email, "email", "", "new email")
	fs.StringVar(&req.Phone, "phone", "", "new phone number")
	fs.StringVar(&req.Avatar, "avatar", "", "new avatar URL")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var (
		u   *koduck.UserDetail
		err error
	)
	if req == (koduck.UpdateProfileRequest{}) {
		u, err = a.client.CurrentUser(ctx)
	} else {
		u, err = a.client.UpdateProfile(ctx, req)
	}
	if err != nil {
		return err
	}
	field(a.stdout, "user", u.Username)
	field(a.stdout, "nickname", u.Nickname)
	field(a.stdout, "email", u.Email)
	if u.Phone != nil {
		field(a.stdout, "phone", *u.Phone)
	}
	field(a.stdout, "created", u.CreatedAt)
	return nil
}

func runPasswd(ctx context.Context, a *app, args []string) error {
	fs := a.newFlags("passwd", "[options]")
	var req koduck.ChangePasswordRequest
	fs.StringVar(&req.CurrentPassword, "current", "", "current password")
	fs.StringVar(&req.NewPassword, "new", "", "new password")
	fs.StringVar(&req.ConfirmPassword, "confirm", "", "new password again")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return usagef("passwd: --current and --new are required")
	}
	if err := a.client.ChangePassword(ctx, req); err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, "password changed")
	return nil
}

func runTheme(ctx context.Context, a *app, args []string) error {
	switch len(args) {
	case 0:
		theme, ok := a.state.Get(state.KeyTheme)
		if !ok {
			theme = "light"
		}
		fmt.Fprintln(a.stdout, theme)
		return nil
	case 1:
		if args[0] != "light" && args[0] != "dark" {
			return usagef("theme: want light or dark, got %q", args[0])
		}
		return a.state.Set(state.KeyTheme, args[0])
	}
	return usagef("usage: koduck-cli theme [light|dark]")
}

// readPassword returns flagValue, $KODUCK_PASSWORD, or the first line of
// stdin, in that order.
func readPassword(a *app, flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if pw := os.Getenv("KODUCK_PASSWORD"); pw != "" {
		return pw, nil
	}
	fmt.Fprint(a.stderr, "password: ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		if err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}
		return "", usagef("login: empty password")
	}
	return line, nil
}
