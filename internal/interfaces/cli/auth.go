package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"uyadmin.io/cli/internal/core/domain"
	"uyadmin.io/cli/internal/infrastructure/auth"
)

// newAuthCommand creates the auth subcommand
func newAuthCommand(container *CLIContainer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Log in, log out and inspect the session",
	}

	cmd.AddCommand(newAuthLoginCommand(container))
	cmd.AddCommand(newAuthLogoutCommand(container))
	cmd.AddCommand(newAuthRegisterCommand(container))
	cmd.AddCommand(newAuthStatusCommand(container))
	cmd.AddCommand(newAuthRefreshCommand(container))

	return cmd
}

func newAuthLoginCommand(container *CLIContainer) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the token pair",
		Example: `  uyadmin auth login -u admin -p secret
  echo secret | uyadmin auth login -u admin`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				pw, err := readSecret(cmd)
				if err != nil {
					return err
				}
				password = pw
			}

			if _, err := container.Auth.Login(cmd.Context(), username, password); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Logged in as %s", username)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (read from stdin when omitted)")
	_ = cmd.MarkFlagRequired("username")

	return cmd
}

func newAuthLogoutCommand(container *CLIContainer) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored tokens",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := container.Auth.Logout(); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newAuthRegisterCommand(container *CLIContainer) *cobra.Command {
	var req domain.RegisterRequest

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a backend account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if req.Password == "" {
				pw, err := readSecret(cmd)
				if err != nil {
					return err
				}
				req.Password = pw
			}

			if _, err := container.Auth.Register(cmd.Context(), req); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Registered %s, now run 'uyadmin auth login -u %s'", req.Username, req.Username)
			return nil
		},
	}

	cmd.Flags().StringVarP(&req.Username, "username", "u", "", "Username")
	cmd.Flags().StringVarP(&req.Email, "email", "e", "", "Email address")
	cmd.Flags().StringVarP(&req.Password, "password", "p", "", "Password (read from stdin when omitted)")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func newAuthStatusCommand(container *CLIContainer) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show who is logged in and when the access token expires",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			creds, err := container.Auth.Credentials()
			if err != nil {
				return err
			}
			if creds.IsEmpty() {
				fmt.Fprintln(out, "❌ Not logged in")
				fmt.Fprintln(out, "   Run 'uyadmin auth login -u USERNAME' to log in")
				return nil
			}

			fields := [][2]string{
				{"backend", container.Config.APIURL},
				{"access token", domain.MaskToken(creds.AccessToken)},
				{"refresh token", presence(creds.RefreshToken)},
			}
			status := map[string]any{
				"backend":       container.Config.APIURL,
				"refresh_token": creds.RefreshToken != "",
			}

			if claims, err := auth.ParseClaims(creds.AccessToken); err == nil {
				user := claims.Username
				if user == "" {
					user = claims.Subject
				}
				fields = append(fields,
					[2]string{"user", user},
					[2]string{"user id", fmt.Sprint(claims.UserID)},
					[2]string{"expires", describeExpiry(claims)},
				)
				status["user"] = user
				status["user_id"] = claims.UserID
				status["expires_at"] = claims.ExpiresAtTime()
				status["expired"] = claims.IsExpired()
			}

			return renderFields(cmd, status, fields)
		},
	}
}

func newAuthRefreshCommand(container *CLIContainer) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Exchange the refresh token for a new access token now",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := container.Auth.RefreshToken(cmd.Context())
			if err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Access token refreshed (%s)", domain.MaskToken(token))
			return nil
		},
	}
}

func describeExpiry(claims *domain.TokenClaims) string {
	exp := claims.ExpiresAtTime()
	if exp.IsZero() {
		return "never"
	}
	left := time.Until(exp).Round(time.Second)
	if left <= 0 {
		return fmt.Sprintf("%s (expired, refreshed on next request)", exp.Local().Format(time.RFC3339))
	}
	return fmt.Sprintf("%s (in %s)", exp.Local().Format(time.RFC3339), left)
}

func presence(s string) string {
	if s == "" {
		return "missing"
	}
	return "present"
}

// readSecret reads the password from the command's stdin. A terminal gets a
// prompt with echo disabled; piped input is read up to the first newline.
func readSecret(cmd *cobra.Command) (string, error) {
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
		secret, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(secret), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
