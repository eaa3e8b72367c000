package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"wms/internal/flows"
	"wms/internal/models"
	"wms/internal/session"
)

func profileCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or edit the driver profile",
	}
	cmd.AddCommand(profileShowCmd(a), profileUpdateCmd(a))
	return cmd
}

func fetchProfile(cmd *cobra.Command, p *flows.ProfileFlow) (models.UserProfile, error) {
	ch, err := p.Fetch(cmd.Context())
	if errors.Is(err, session.ErrNoSession) {
		return models.UserProfile{}, errors.New("not logged in")
	}
	if err != nil {
		return models.UserProfile{}, err
	}
	res := <-ch
	if res.Phase == flows.PhaseFailed {
		return models.UserProfile{}, errors.New(res.Message)
	}
	return res.Value, nil
}

func printProfile(cmd *cobra.Command, u models.UserProfile) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "First name: %s\n", u.FirstName)
	fmt.Fprintf(out, "Last name:  %s\n", u.LastName)
	fmt.Fprintf(out, "Email:      %s\n", u.Email)
	fmt.Fprintf(out, "Contact:    %s\n", u.ContactNumber)
	fmt.Fprintf(out, "Role:       %s\n", u.Role)
}

func profileShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the driver profile from the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := fetchProfile(cmd, flows.NewProfileFlow(a.client, a.store, a.log))
			if err != nil {
				return err
			}
			printProfile(cmd, u)
			return nil
		},
	}
}

func profileUpdateCmd(a *app) *cobra.Command {
	var firstName, lastName, contact, email string
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Edit the driver profile",
		Long:  "Edit the driver profile. Fields without a flag keep their current value.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := flows.NewProfileFlow(a.client, a.store, a.log)
			u, err := fetchProfile(cmd, p)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("first-name") {
				u.FirstName = firstName
			}
			if flags.Changed("last-name") {
				u.LastName = lastName
			}
			if flags.Changed("contact") {
				u.ContactNumber = contact
			}
			if flags.Changed("email") {
				u.Email = email
			}

			ch, err := p.Update(cmd.Context(), u)
			if err != nil {
				return err
			}
			res := <-ch
			if res.Err != nil {
				return errors.New(res.Message)
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Message)
			printProfile(cmd, res.Profile)
			return nil
		},
	}
	cmd.Flags().StringVar(&firstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&lastName, "last-name", "", "last name")
	cmd.Flags().StringVar(&contact, "contact", "", "contact number")
	cmd.Flags().StringVarP(&email, "email", "e", "", "email")
	return cmd
}
