package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newLoginCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Check credentials against the backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			cred := s.client.Credential()
			ok, err := s.client.Authenticate(cmd.Context(), cred)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("login rejected for %q", cred.Username)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s logged in as %s\n", color.GreenString("✓"), cred.Username)
			return nil
		},
	}
}

func newPasswdCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "passwd",
		Short: "Change the backend username and password",
		Args:  cobra.NoArgs,
		RunE:  runPasswd,
	}
	cmd.Flags().String("new-username", "", "New username (default: keep the current one)")
	return cmd
}

func runPasswd(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	username, _ := cmd.Flags().GetString("new-username")
	if username == "" {
		username = s.client.Credential().Username
	}

	password, err := s.prompt.secret("New password: ")
	if err != nil {
		return err
	}
	if password == "" {
		return fmt.Errorf("new password must not be empty")
	}
	confirm, err := s.prompt.secret("Repeat new password: ")
	if err != nil {
		return err
	}
	if confirm != password {
		return fmt.Errorf("passwords do not match")
	}

	ok, err := s.client.ChangeCredential(cmd.Context(), username, password)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("backend rejected the credential change")
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Credentials changed; now %s\n", username)
	return nil
}
