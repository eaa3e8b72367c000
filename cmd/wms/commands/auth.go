package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"wms/internal/flows"
	"wms/internal/models"
	"wms/internal/session"
)

// readSecret returns value, or the first line of in when value is empty.
func readSecret(cmd *cobra.Command, in io.Reader, prompt, value string) (string, error) {
	if value != "" {
		return value, nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// authOutcome prints the terminal state of a login or sign up attempt and
// turns failures into errors.
func authOutcome(cmd *cobra.Command, st flows.AuthState) error {
	out := cmd.OutOrStdout()
	switch st := st.(type) {
	case flows.AuthSuccess:
		fmt.Fprintln(out, st.Message)
		return nil
	case flows.AuthValidationError:
		fields := make([]string, 0, len(st.Errors))
		for f := range st.Errors {
			fields = append(fields, f)
		}
		sort.Strings(fields)
		for _, f := range fields {
			fmt.Fprintf(cmd.ErrOrStderr(), "  %s: %s\n", f, st.Errors[f])
		}
		return errors.New("the server rejected some fields")
	case flows.AuthNetworkError:
		return errors.New(st.Message)
	case flows.AuthAPIError:
		if st.Message != "" {
			return errors.New(st.Message)
		}
		return errors.New(st.Error)
	case flows.AuthUnknownError:
		return errors.New(st.Message)
	default:
		return fmt.Errorf("unexpected state %T", st)
	}
}

func loginCmd(a *app) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := readSecret(cmd, a.in, "Password: ", password)
			if err != nil {
				return err
			}

			f := flows.NewAuthFlow(a.client, a.store, a.log)
			ch, err := f.Login(cmd.Context(), models.LoginRequest{Email: strings.TrimSpace(email), Password: pw})
			if err != nil {
				return err
			}
			return authOutcome(cmd, <-ch)
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (read from stdin when empty)")
	return cmd
}

func signupCmd(a *app) *cobra.Command {
	var firstName, lastName, contact, email, password string
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Register a driver account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := readSecret(cmd, a.in, "Password: ", password)
			if err != nil {
				return err
			}

			req := models.NewSignUpRequest(firstName, lastName, strings.TrimSpace(contact), strings.TrimSpace(email), pw)
			f := flows.NewAuthFlow(a.client, a.store, a.log)
			ch, err := f.SignUp(cmd.Context(), req)
			if err != nil {
				return err
			}
			return authOutcome(cmd, <-ch)
		},
	}
	cmd.Flags().StringVar(&firstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&lastName, "last-name", "", "last name")
	cmd.Flags().StringVar(&contact, "contact", "", "contact number, +33...")
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (read from stdin when empty)")
	return cmd
}

func logoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := flows.NewAuthFlow(a.client, a.store, a.log).Logout(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func whoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.store.Load()
			if errors.Is(err, session.ErrNoSession) {
				return errors.New("not logged in")
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s <%s>\n", s.FirstName, s.LastName, s.Email)
			fmt.Fprintf(out, "id:      %d\n", s.UserID)
			fmt.Fprintf(out, "role:    %s\n", s.Role)
			if s.ContactNumber != "" {
				fmt.Fprintf(out, "contact: %s\n", s.ContactNumber)
			}
			if exp, ok := session.TokenExpiry(s.Token); ok {
				state := "valid"
				if session.Expired(s.Token, time.Now()) {
					state = "expired, log in again"
				}
				fmt.Fprintf(out, "token:   %s until %s\n", state, exp.Local().Format(models.DetailLayout))
			}
			return nil
		},
	}
}
