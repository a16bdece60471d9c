package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"sas-panel/internal/models"
)

func newPreviewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "preview <template-id> <person-id>",
		Short: "Show a template as it would be sent to one person",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tid, err := parseID(args[0])
			if err != nil {
				return err
			}
			pid, err := parseID(args[1])
			if err != nil {
				return err
			}

			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			t, err := fetchOne(cmd, s, models.KindTemplate, tid)
			if err != nil {
				return err
			}
			p, err := fetchOne(cmd, s, models.KindRecipient, pid)
			if err != nil {
				return err
			}

			text, err := t.(*models.Template).Compile(p.(*models.Recipient))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
}
