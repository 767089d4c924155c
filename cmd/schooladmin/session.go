package main

import (
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func NewLoginCommand(clientFlags *ClientFlags) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and persist the session credential",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("SCHOOLADMIN_PASSWORD")
			}
			if email == "" || password == "" {
				return errors.New("--email and --password (or SCHOOLADMIN_PASSWORD) are required")
			}

			p, err := clientFlags.NewPlatform(cmd.Flags())
			if err != nil {
				return err
			}
			session, err := p.client.Login(cmd.Context(), email, password)
			if err != nil {
				return errors.WithMessage(err, "login failed")
			}
			return printJSON(cmd.OutOrStdout(), session)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Operator email address")
	cmd.Flags().StringVar(&password, "password", "", "Operator password (env SCHOOLADMIN_PASSWORD)")
	return cmd
}

func NewLogoutCommand(clientFlags *ClientFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and forget the stored credential",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := clientFlags.NewPlatform(cmd.Flags())
			if err != nil {
				return err
			}
			if err := p.client.Logout(cmd.Context()); err != nil {
				return err
			}
			log.Info("logged out")
			return nil
		},
	}
}
