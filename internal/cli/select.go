package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"sas-panel/internal/client"
	"sas-panel/internal/models"
	"sas-panel/internal/render"
	"sas-panel/internal/selection"
)

const selectHelp = `Commands:
  <n>     toggle row n
  a       toggle every row
  rm      remove the selected records
  q       quit`

func newSelectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "select <templates|people|rules>",
		Short: "Pick records from a list and act on the selection",
		Args:  cobra.ExactArgs(1),
		RunE:  runSelect,
	}
	cmd.Flags().Int64Slice("ids", nil, "Records to select up front")
	return cmd
}

func runSelect(cmd *cobra.Command, args []string) error {
	kind, err := models.ParseKind(args[0])
	if err != nil {
		return err
	}
	preselect, _ := cmd.Flags().GetInt64Slice("ids")

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	records, err := s.client.Fetch(cmd.Context(), kind, client.Filter{})
	if err != nil {
		return err
	}

	var state selection.ActionState
	c, err := render.List(kind, records, selection.PolicyObserver(nil, func(a selection.ActionState) {
		state = a
	}))
	if err != nil {
		return err
	}
	if len(preselect) > 0 {
		c.Select(preselect...)
	}

	out := cmd.OutOrStdout()
	for {
		if err := render.Write(out, render.Build(kind, c)); err != nil {
			return err
		}
		printActionState(out, c.Count(), state)

		input, err := s.prompt.line("> ")
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		switch input = strings.TrimSpace(strings.ToLower(input)); input {
		case "":
		case "q", "quit", "exit":
			return nil
		case "a", "all":
			c.ToggleHeader()
		case "?", "h", "help":
			fmt.Fprintln(out, selectHelp)
		case "rm", "remove", "delete":
			if !state.Delete {
				fmt.Fprintln(out, "Nothing selected.")
				continue
			}
			if err := removeRecords(cmd, s, kind, c.SelectedIDs()); err != nil {
				fmt.Fprintln(out, color.RedString(err.Error()))
			}
			records, err := s.client.Fetch(cmd.Context(), kind, client.Filter{})
			if err != nil {
				return err
			}
			c.Reset(records)
		default:
			n, convErr := strconv.Atoi(input)
			if convErr != nil {
				fmt.Fprintf(out, "Unknown command %q; ? for help.\n", input)
				continue
			}
			if err := c.Toggle(n - 1); err != nil {
				fmt.Fprintf(out, "No row %d.\n", n)
			}
		}
	}
}

func printActionState(w io.Writer, count int, state selection.ActionState) {
	onOff := func(name string, on bool) string {
		if on {
			return color.GreenString(name + ":on")
		}
		return color.New(color.Faint).Sprint(name + ":off")
	}
	fmt.Fprintf(w, "%d selected  actions: %s %s\n", count, onOff("edit", state.Edit), onOff("delete", state.Delete))
}
