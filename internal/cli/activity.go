package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"agenda-cli/internal/activity"
	"agenda-cli/internal/model"

	"github.com/spf13/cobra"
)

func newActivityCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "activity",
		Aliases: []string{"activities", "act"},
		Short:   "Create, edit, show and delete activity details",
	}
	cmd.AddCommand(newActivityAddCmd(app))
	cmd.AddCommand(newActivityEditCmd(app))
	cmd.AddCommand(newActivityShowCmd(app))
	cmd.AddCommand(newActivityRmCmd(app))
	return cmd
}

// fieldFlags binds the form fields to flags, in form order.
var fieldFlags = []struct {
	flag  string
	name  activity.FieldName
	usage string
}{
	{"titulo", activity.FieldTitulo, "Title"},
	{"responsable", activity.FieldResponsable, "Person in charge"},
	{"fecha-ini", activity.FieldFechaIni, "Trip start date (YYYY-MM-DD)"},
	{"fecha-fin", activity.FieldFechaFin, "Trip end date (YYYY-MM-DD)"},
	{"hora-ini", activity.FieldHoraIni, "Start time (HH:mm)"},
	{"hora-fin", activity.FieldHoraFin, "End time (HH:mm)"},
	{"lugar", activity.FieldLugar, "Place"},
	{"traduccion", activity.FieldTraduccion, "Translation"},
}

func addFieldFlags(cmd *cobra.Command) map[activity.FieldName]*string {
	vals := map[activity.FieldName]*string{}
	for _, f := range fieldFlags {
		vals[f.name] = cmd.Flags().String(f.flag, "", f.usage)
	}
	return vals
}

// applyFieldFlags feeds the flags the user set into the form.
func applyFieldFlags(cmd *cobra.Command, eng *activity.Engine, vals map[activity.FieldName]*string) error {
	for _, f := range fieldFlags {
		if !cmd.Flags().Changed(f.flag) {
			continue
		}
		if err := eng.SetField(f.name, *vals[f.name]); err != nil {
			if errors.Is(err, activity.ErrUnknownField) {
				return fmt.Errorf("--%s is not a field of %q", f.flag, eng.CategoryLabel())
			}
			return err
		}
	}
	return nil
}

// resolveCategory accepts a localized id (1..22) or a category label in
// either language.
func resolveCategory(s string) (activity.LocalizedID, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if _, ok := activity.Delocalize(activity.LocalizedID(n)); !ok {
			return 0, activity.UnknownCategoryError{ID: activity.LocalizedID(n)}
		}
		return activity.LocalizedID(n), nil
	}
	for _, c := range activity.Categories() {
		for _, lang := range []activity.Language{activity.Spanish, activity.English} {
			if strings.EqualFold(c.Label(lang), s) {
				return activity.Localize(c.ID(), lang), nil
			}
		}
	}
	return 0, fmt.Errorf("unknown activity type %q (see `agenda categories --static`)", s)
}

// submit runs the engine's submit and writes the outcome. Rejected forms
// print their field messages before failing.
func submit(cmd *cobra.Command, app *App, eng *activity.Engine, dryRun bool) error {
	ctx := cmd.Context()
	if dryRun {
		sub, err := eng.BeginSubmit()
		if err != nil {
			return submitErr(cmd, app, eng, err)
		}
		eng.Cancel()
		var records any = sub.Create
		if sub.Kind == activity.OutcomeUpdated {
			records = sub.Update
		}
		return writeOut(cmd, app, map[string]any{
			"data": records,
			"meta": map[string]any{"outcome": sub.Kind.String(), "dryRun": true},
		})
	}

	date := eng.Date()
	out, err := eng.Submit(ctx)
	if err != nil {
		return submitErr(cmd, app, eng, err)
	}
	return writeOut(cmd, app, map[string]any{
		"data": out.Detail,
		"meta": map[string]any{"outcome": out.Kind.String(), "date": date},
		"_hints": []string{
			"agenda activity show " + out.Detail.DetailID,
			"agenda days",
		},
	})
}

func submitErr(cmd *cobra.Command, app *App, eng *activity.Engine, err error) error {
	if !errors.Is(err, activity.ErrInvalid) {
		return writeErr(cmd, err)
	}
	fe := eng.Errors()
	if werr := writeOut(cmd, app, map[string]any{"error": err.Error(), "fields": fe}); werr != nil {
		return werr
	}
	return writeErr(cmd, invalidFieldsError{fields: fe})
}

func newActivityAddCmd(app *App) *cobra.Command {
	var (
		date   string
		typ    string
		lang   string
		newDay bool
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an activity to a day (creates the day when missing)",
		Example: strings.TrimSpace(`
  agenda activity add --date 2025-03-10 --type 3 --titulo "Café" --hora-ini 10:00 --hora-fin 10:30
  agenda activity add --date 2025-03-12 --new-day --type "Field trip" --titulo "Volcán" \
    --fecha-ini 2025-03-12 --fecha-fin 2025-03-14 --hora-ini 07:00 --hora-fin 18:00
`),
		Args: cobra.NoArgs,
	}
	vals := addFieldFlags(cmd)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		id, err := resolveCategory(typ)
		if err != nil {
			return writeErr(cmd, err)
		}
		b, closeFn, err := openBackend(ctx, app)
		if err != nil {
			return writeErr(cmd, err)
		}
		defer closeFn()

		req := activity.OpenRequest{
			EventID:         app.cfg.EventID,
			DefaultLanguage: app.language(),
			Backend:         b,
			Logger:          app.log,
		}
		if newDay {
			used, err := usedDates(ctx, b, app.cfg.EventID)
			if err != nil {
				return writeErr(cmd, err)
			}
			req.UsedDates = used
		}
		// Both paths go through date selection so the date is checked the
		// same way; only --new-day refuses existing days.
		eng := activity.Open(req)
		eng.Load(ctx)
		if err := eng.ChooseDate(date); err != nil {
			return writeErr(cmd, fmt.Errorf("--date %q: %w", date, err))
		}
		if err := eng.SelectLocalized(id); err != nil {
			return writeErr(cmd, err)
		}
		if cmd.Flags().Changed("lang") {
			l, ok := activity.ParseLanguage(lang)
			if !ok {
				return writeErr(cmd, fmt.Errorf("--lang %q: expected ES or EN", lang))
			}
			if err := eng.SelectLanguage(l); err != nil {
				return writeErr(cmd, err)
			}
		}
		if err := eng.Next(); err != nil {
			return writeErr(cmd, err)
		}
		if err := applyFieldFlags(cmd, eng, vals); err != nil {
			return writeErr(cmd, err)
		}
		return submit(cmd, app, eng, dryRun)
	}

	cmd.Flags().StringVar(&date, "date", "", "Day of the activity (YYYY-MM-DD)")
	cmd.Flags().StringVar(&typ, "type", "", "Activity type: localized id (see `agenda categories`) or label")
	cmd.Flags().StringVar(&lang, "lang", "", "Language of the activity (ES|EN); overrides the type's language")
	cmd.Flags().BoolVar(&newDay, "new-day", false, "Fail when the day already exists")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the request records without saving")
	_ = cmd.MarkFlagRequired("date")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func newActivityEditCmd(app *App) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "edit <detail-id>",
		Short: "Change fields of an existing activity (type and language are fixed)",
		Args:  cobra.ExactArgs(1),
	}
	vals := addFieldFlags(cmd)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		id := strings.TrimSpace(args[0])
		b, closeFn, err := openBackend(ctx, app)
		if err != nil {
			return writeErr(cmd, err)
		}
		defer closeFn()

		d, err := b.GetDetail(ctx, id)
		if err != nil {
			return writeErr(cmd, asNotFound("activity", id, err))
		}
		eventID := d.EventID
		if eventID == "" {
			eventID = app.cfg.EventID
		}
		date := activity.NormalizeDate(d.Date)
		if date == "" {
			if date, err = dayDateOf(ctx, b, eventID, d); err != nil {
				return writeErr(cmd, err)
			}
		}
		eng := activity.Open(activity.OpenRequest{
			EventID:         eventID,
			Date:            date,
			Detail:          &d,
			DefaultLanguage: app.language(),
			Backend:         b,
			Logger:          app.log,
		})
		eng.Load(ctx)
		if eng.State().Step != 2 {
			msg := eng.Notice()
			if msg == "" {
				msg = "activity cannot be edited"
			}
			return writeErr(cmd, fmt.Errorf("%s: %s", id, msg))
		}
		if err := applyFieldFlags(cmd, eng, vals); err != nil {
			return writeErr(cmd, err)
		}
		return submit(cmd, app, eng, dryRun)
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the request records without saving")
	return cmd
}

func newActivityShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <detail-id>",
		Short: "Show one activity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id := strings.TrimSpace(args[0])
			b, closeFn, err := openBackend(ctx, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer closeFn()

			d, err := b.GetDetail(ctx, id)
			if err != nil {
				return writeErr(cmd, asNotFound("activity", id, err))
			}
			meta := map[string]any{
				"category": activity.LabelFor(activity.LocalizedID(d.LocalizedCategoryID), nil),
			}
			if activity.NormalizeDate(d.FechaIni) != "" {
				meta["duration"] = activity.TripDuration(d.FechaIni, d.FechaFin).String()
			}
			return writeOut(cmd, app, map[string]any{
				"data": d,
				"meta": meta,
				"_hints": []string{
					"agenda activity edit " + id + " --titulo <title>",
					"agenda activity rm " + id,
				},
			})
		},
	}
}

func newActivityRmCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <detail-id>",
		Aliases: []string{"delete"},
		Short:   "Delete an activity (and its day when it was the last one)",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id := strings.TrimSpace(args[0])
			b, closeFn, err := openBackend(ctx, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer closeFn()

			if err := b.DeleteActivityDetail(ctx, id); err != nil {
				return writeErr(cmd, asNotFound("activity", id, err))
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"detailId": id, "deleted": true}})
		},
	}
}

func usedDates(ctx context.Context, b backend, eventID string) ([]string, error) {
	days, err := b.ListDays(ctx, eventID)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(days))
	for _, d := range days {
		out = append(out, d.Date)
	}
	return out, nil
}

// dayDateOf finds the date of the day that owns d when the backend's detail
// answer did not carry it.
func dayDateOf(ctx context.Context, b backend, eventID string, d model.ActivityDetail) (string, error) {
	days, err := b.ListDays(ctx, eventID)
	if err != nil {
		return "", err
	}
	for _, day := range days {
		if d.ActivityID != "" && day.ID == d.ActivityID {
			return day.Date, nil
		}
		for _, x := range day.Details {
			if x.DetailID == d.DetailID {
				return day.Date, nil
			}
		}
	}
	return "", nil
}
