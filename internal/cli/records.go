package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"sas-panel/internal/client"
	"sas-panel/internal/models"
	"sas-panel/internal/render"
)

// recordFamily describes the list/show/add/edit/rm commands of one kind.
type recordFamily struct {
	kind    models.Kind
	use     string
	aliases []string
	short   string
	// bind registers the field flags shared by add and edit.
	bind func(cmd *cobra.Command)
	// apply copies the field flags into rec. On edit only changed flags
	// are applied.
	apply func(cmd *cobra.Command, rec models.Record, adding bool) error
}

func newRecordCommand(f recordFamily) *cobra.Command {
	cmd := &cobra.Command{
		Use:     f.use,
		Aliases: f.aliases,
		Short:   f.short,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List " + f.use,
		Args:  cobra.NoArgs,
		RunE:  func(cmd *cobra.Command, args []string) error { return runList(cmd, f.kind) },
	}
	list.Flags().Int("limit", -1, "Maximum number of records")
	list.Flags().Int("offset", -1, "Records to skip")

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one record",
		Args:  cobra.ExactArgs(1),
		RunE:  func(cmd *cobra.Command, args []string) error { return runShow(cmd, f.kind, args[0]) },
	}

	add := &cobra.Command{
		Use:   "add",
		Short: "Add a record",
		Args:  cobra.NoArgs,
		RunE:  func(cmd *cobra.Command, args []string) error { return runAdd(cmd, f) },
	}
	f.bind(add)

	edit := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of a record",
		Args:  cobra.ExactArgs(1),
		RunE:  func(cmd *cobra.Command, args []string) error { return runEdit(cmd, f, args[0]) },
	}
	f.bind(edit)

	rm := &cobra.Command{
		Use:     "rm <id>...",
		Aliases: []string{"remove", "delete"},
		Short:   "Remove records",
		Args:    cobra.MinimumNArgs(1),
		RunE:    func(cmd *cobra.Command, args []string) error { return runRemove(cmd, f.kind, args) },
	}

	cmd.AddCommand(list, show, add, edit, rm)
	return cmd
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func runList(cmd *cobra.Command, kind models.Kind) error {
	var f client.Filter
	if n, _ := cmd.Flags().GetInt("limit"); n >= 0 {
		f.Limit = &n
	}
	if n, _ := cmd.Flags().GetInt("offset"); n >= 0 {
		f.Offset = &n
	}

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	records, err := s.client.Fetch(cmd.Context(), kind, f)
	if err != nil {
		return err
	}
	return printRecords(cmd, kind, records)
}

func printRecords(cmd *cobra.Command, kind models.Kind, records []models.Record) error {
	out := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return writeJSON(out, records)
	}
	c, err := render.List(kind, records, nil)
	if err != nil {
		return err
	}
	return render.Write(out, render.Build(kind, c))
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func fetchOne(cmd *cobra.Command, s *session, kind models.Kind, id int64) (models.Record, error) {
	records, err := s.client.Fetch(cmd.Context(), kind, client.ByID(id))
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s %d not found", kind, id)
	}
	return records[0], nil
}

func runShow(cmd *cobra.Command, kind models.Kind, arg string) error {
	id, err := parseID(arg)
	if err != nil {
		return err
	}
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	rec, err := fetchOne(cmd, s, kind, id)
	if err != nil {
		return err
	}
	if err := printRecords(cmd, kind, []models.Record{rec}); err != nil {
		return err
	}
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return nil
	}

	out := cmd.OutOrStdout()
	switch r := rec.(type) {
	case *models.Template:
		names, err := r.Placeholders()
		if err != nil {
			return err
		}
		if len(names) > 0 {
			fmt.Fprintf(out, "\nPlaceholders: %s\n", strings.Join(names, ", "))
		}
	case *models.DeliveryRule:
		next, ok := r.NextExecution(wallClock(time.Now()))
		if ok {
			fmt.Fprintf(out, "\nNext run: %s\n", models.FormatTimestamp(next))
		} else {
			fmt.Fprintln(out, "\nNext run: never")
		}
	}
	return nil
}

func runAdd(cmd *cobra.Command, f recordFamily) error {
	rec, err := models.NewRecord(f.kind)
	if err != nil {
		return err
	}
	if err := f.apply(cmd, rec, true); err != nil {
		return err
	}

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	id, err := s.client.Add(cmd.Context(), rec)
	if err != nil {
		return err
	}
	if id == nil {
		return fmt.Errorf("backend did not add the %s", f.kind)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added %s %d\n", f.kind, *id)
	return nil
}

func runEdit(cmd *cobra.Command, f recordFamily, arg string) error {
	id, err := parseID(arg)
	if err != nil {
		return err
	}
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	rec, err := fetchOne(cmd, s, f.kind, id)
	if err != nil {
		return err
	}
	if err := f.apply(cmd, rec, false); err != nil {
		return err
	}

	ok, err := s.client.Alter(cmd.Context(), rec)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("backend rejected the change to %s %d", f.kind, id)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Updated %s %d\n", f.kind, id)
	return nil
}

func runRemove(cmd *cobra.Command, kind models.Kind, args []string) error {
	ids := make([]int64, len(args))
	for i, a := range args {
		id, err := parseID(a)
		if err != nil {
			return err
		}
		ids[i] = id
	}

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()
	return removeRecords(cmd, s, kind, ids)
}

func removeRecords(cmd *cobra.Command, s *session, kind models.Kind, ids []int64) error {
	var failed []string
	for _, id := range ids {
		ok, err := s.client.Remove(cmd.Context(), kind, id)
		if err != nil {
			return err
		}
		if !ok {
			failed = append(failed, strconv.FormatInt(id, 10))
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %s %d\n", kind, id)
	}
	if len(failed) > 0 {
		return fmt.Errorf("backend refused to remove %s %s", kind, strings.Join(failed, ", "))
	}
	return nil
}

// changed reports whether a field flag should be applied.
func changed(cmd *cobra.Command, name string, adding bool) bool {
	return adding || cmd.Flags().Changed(name)
}

var templateCommands = recordFamily{
	kind:    models.KindTemplate,
	use:     "templates",
	aliases: []string{"template", "tpl"},
	short:   "Manage message templates",
	bind: func(cmd *cobra.Command) {
		cmd.Flags().String("label", "", "Short name shown in lists")
		cmd.Flags().String("message", "", "Message body; $(field) is replaced per recipient")
	},
	apply: func(cmd *cobra.Command, rec models.Record, adding bool) error {
		t := rec.(*models.Template)
		if changed(cmd, "label", adding) {
			t.Label, _ = cmd.Flags().GetString("label")
		}
		if changed(cmd, "message", adding) {
			t.Message, _ = cmd.Flags().GetString("message")
		}
		return nil
	},
}

var peopleCommands = recordFamily{
	kind:    models.KindRecipient,
	use:     "people",
	aliases: []string{"person", "recipients"},
	short:   "Manage message recipients",
	bind: func(cmd *cobra.Command) {
		cmd.Flags().String("first-name", "", "First name")
		cmd.Flags().String("last-name", "", "Last name")
		cmd.Flags().String("telephone", "", "Telephone number (required)")
		cmd.Flags().String("address", "", "Postal address")
	},
	apply: func(cmd *cobra.Command, rec models.Record, adding bool) error {
		p := rec.(*models.Recipient)
		for name, field := range map[string]*string{
			"first-name": &p.FirstName,
			"last-name":  &p.LastName,
			"telephone":  &p.Telephone,
			"address":    &p.Address,
		} {
			if changed(cmd, name, adding) {
				*field, _ = cmd.Flags().GetString(name)
			}
		}
		return nil
	},
}

var ruleCommands = recordFamily{
	kind:    models.KindRule,
	use:     "rules",
	aliases: []string{"rule"},
	short:   "Manage delivery rules",
	bind: func(cmd *cobra.Command) {
		cmd.Flags().String("label", "", "Short name shown in lists")
		cmd.Flags().Int64("template", 0, "Template to send")
		cmd.Flags().Int64Slice("recipients", nil, "People to send to (comma separated ids)")
		cmd.Flags().String("start", "now", "First run, e.g. \"2024-03-01 09:00\"")
		cmd.Flags().String("end", "", "Last possible run; \"none\" clears it")
		cmd.Flags().Int64("every", 0, "Repeat interval; 0 runs once")
		cmd.Flags().String("unit", string(models.UnitDays), "Interval unit: days, hours, minutes or seconds")
	},
	apply: applyRuleFlags,
}

func applyRuleFlags(cmd *cobra.Command, rec models.Record, adding bool) error {
	r := rec.(*models.DeliveryRule)
	flags := cmd.Flags()

	if changed(cmd, "label", adding) {
		r.Label, _ = flags.GetString("label")
	}
	if changed(cmd, "template", adding) {
		r.Template, _ = flags.GetInt64("template")
	}
	if changed(cmd, "recipients", adding) {
		ids, _ := flags.GetInt64Slice("recipients")
		r.Recipients = append([]int64{}, ids...)
	}
	if changed(cmd, "start", adding) {
		v, _ := flags.GetString("start")
		start, err := parseWhen(v)
		if err != nil {
			return fmt.Errorf("--start: %w", err)
		}
		r.StartDate = start
	}
	if changed(cmd, "end", adding) {
		v, _ := flags.GetString("end")
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "", "none", "never":
			r.EndDate = nil
		default:
			end, err := parseWhen(v)
			if err != nil {
				return fmt.Errorf("--end: %w", err)
			}
			r.EndDate = &end
		}
	}
	if changed(cmd, "every", adding) || flags.Changed("unit") {
		every, _ := flags.GetInt64("every")
		unitName, _ := flags.GetString("unit")
		if !flags.Changed("every") && !adding {
			// A new unit alone keeps the displayed count.
			every, _ = models.DisplayInterval(r.Interval)
		}
		unit, err := models.ParseIntervalUnit(unitName)
		if err != nil {
			return err
		}
		d, err := models.ParseInterval(every, unit)
		if err != nil {
			return err
		}
		r.Interval = d
	}
	return nil
}

var whenLayouts = []string{
	models.TimestampLayout,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// parseWhen reads a date the way it is typed, as backend wall clock time.
func parseWhen(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "now") {
		return wallClock(time.Now()), nil
	}
	for _, layout := range whenLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot read %q as a date", s)
}

// wallClock keeps t's local wall clock reading, to the millisecond, and
// labels it UTC like every timestamp exchanged with the backend.
func wallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(),
		t.Nanosecond()/int(time.Millisecond)*int(time.Millisecond), time.UTC)
}
