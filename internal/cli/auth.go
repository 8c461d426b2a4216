package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"shopfront/internal/session"
)

// LoginOptions holds flags for the login command.
type LoginOptions struct {
	*RootOptions
	Email      string
	Password   string
	GoogleCode string
}

// NewLoginCommand creates the login command.
func NewLoginCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LoginOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password, or a Google authorization code",
		Long: `Sign in to the storefront.

With --email and --password, exchanges credentials for a session. With
--google-code, completes an external Google sign-in by exchanging the
one-time authorization code. Codes are single use; a failed exchange is not
retried.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := NewEnv(opts.RootOptions)
			if err != nil {
				return err
			}
			switch {
			case opts.GoogleCode != "":
				err = env.Session.CompleteExternalSignIn(cmd.Context(), opts.GoogleCode)
			case opts.Email != "" && opts.Password != "":
				err = env.Session.Login(cmd.Context(), opts.Email, opts.Password)
			default:
				return fmt.Errorf("provide --email and --password, or --google-code")
			}
			if err != nil {
				return err
			}
			principal := env.Session.Principal()
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s <%s>\n", principal.Name, principal.Email)
			if exp, ok := env.Session.TokenExpiry(); ok {
				fmt.Fprintf(cmd.OutOrStdout(), "Session expires %s\n", exp.Local().Format("2006-01-02 15:04"))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Email, "email", "", "account email")
	cmd.Flags().StringVar(&opts.Password, "password", "", "account password")
	cmd.Flags().StringVar(&opts.GoogleCode, "google-code", "", "authorization code from the Google sign-in redirect")

	return cmd
}

// RegisterOptions holds flags for the register command.
type RegisterOptions struct {
	*RootOptions
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
	AcceptTerms     bool
}

// NewRegisterCommand creates the register command.
func NewRegisterCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RegisterOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a new account",
		Long: `Create a new storefront account.

Registration does not sign you in; run "shopfront login" afterwards.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := NewEnv(opts.RootOptions)
			if err != nil {
				return err
			}
			form := session.RegisterForm{
				Name:            opts.Name,
				Email:           opts.Email,
				Password:        opts.Password,
				ConfirmPassword: opts.ConfirmPassword,
				AcceptTerms:     opts.AcceptTerms,
			}
			if err := env.Session.Register(cmd.Context(), form); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Account created. Sign in with: shopfront login")
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "display name (required)")
	cmd.Flags().StringVar(&opts.Email, "email", "", "account email (required)")
	cmd.Flags().StringVar(&opts.Password, "password", "", "account password (required)")
	cmd.Flags().StringVar(&opts.ConfirmPassword, "confirm-password", "", "repeat the password (required)")
	cmd.Flags().BoolVar(&opts.AcceptTerms, "accept-terms", false, "accept the terms and conditions")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	_ = cmd.MarkFlagRequired("confirm-password")

	return cmd
}

// NewLogoutCommand creates the logout command.
func NewLogoutCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := NewEnv(rootOpts)
			if err != nil {
				return err
			}
			env.Session.Logout()
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			return nil
		},
	}
	return cmd
}

// NewWhoamiCommand creates the whoami command.
func NewWhoamiCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the current signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := NewEnv(rootOpts)
			if err != nil {
				return err
			}
			if err := env.Session.Restore(cmd.Context()); err != nil {
				return err
			}
			principal := env.Session.Principal()
			if principal == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Not signed in.")
				return nil
			}
			if rootOpts.Format == "json" {
				return env.printJSON(cmd.OutOrStdout(), principal)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> (%s)\n", principal.Name, principal.Email, principal.Role)
			if exp, ok := env.Session.TokenExpiry(); ok {
				fmt.Fprintf(cmd.OutOrStdout(), "Session expires %s\n", exp.Local().Format("2006-01-02 15:04"))
			}
			return nil
		},
	}
	return cmd
}
