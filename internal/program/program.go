// Package program renders an event's activity days as a readable program.
package program

import (
	"fmt"
	"strings"
	"time"

	"agenda-cli/internal/activity"
	"agenda-cli/internal/model"
)

var weekdays = map[activity.Language][7]string{
	activity.Spanish: {"domingo", "lunes", "martes", "miércoles", "jueves", "viernes", "sábado"},
	activity.English: {"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"},
}

type labels struct {
	title, empty, place, lead, translation, trip, days string
}

var texts = map[activity.Language]labels{
	activity.Spanish: {
		title:       "Programa",
		empty:       "_Sin actividades registradas._",
		place:       "Lugar",
		lead:        "Responsable",
		translation: "Traducción",
		trip:        "Salida",
		days:        "días",
	},
	activity.English: {
		title:       "Program",
		empty:       "_No activities yet._",
		place:       "Place",
		lead:        "Lead",
		translation: "Translation",
		trip:        "Trip",
		days:        "days",
	},
}

// DayHeading is "2025-03-10 (lunes)"; unparseable dates are returned as is.
func DayHeading(date string, lang activity.Language) string {
	t, err := time.Parse("2006-01-02", activity.NormalizeDate(date))
	if err != nil {
		return date
	}
	names, ok := weekdays[lang]
	if !ok {
		names = weekdays[activity.Spanish]
	}
	return fmt.Sprintf("%s (%s)", t.Format("2006-01-02"), names[t.Weekday()])
}

// Markdown renders the whole program. Days keep their given order; details
// are expected to be sorted by start time already.
func Markdown(title string, days []model.ActivityDay, lang activity.Language) string {
	tx, ok := texts[lang]
	if !ok {
		tx = texts[activity.Spanish]
	}
	var b strings.Builder
	fmt.Fprintf(&b, "# %s: %s\n\n", tx.title, title)
	if len(days) == 0 {
		b.WriteString(tx.empty + "\n")
		return b.String()
	}
	for _, day := range days {
		fmt.Fprintf(&b, "## %s\n\n", DayHeading(day.Date, lang))
		if len(day.Details) == 0 {
			b.WriteString(tx.empty + "\n\n")
			continue
		}
		for _, d := range day.Details {
			b.WriteString(DetailLine(d, lang))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

// DetailLine is one bullet: time span, category, title and the category's
// extra fields.
func DetailLine(d model.ActivityDetail, lang activity.Language) string {
	tx, ok := texts[lang]
	if !ok {
		tx = texts[activity.Spanish]
	}
	span := activity.NormalizeTime(d.HoraIni)
	if end := activity.NormalizeTime(d.HoraFin); end != "" {
		span += "–" + end
	}
	if span == "" {
		span = "--:--"
	}
	label := d.CategoryLabel
	if label == "" {
		label = activity.LabelFor(activity.LocalizedID(d.LocalizedCategoryID), nil)
	}

	line := fmt.Sprintf("- **%s** · %s · *%s*", span, escape(label), escape(d.Titulo))
	var extra []string
	if v := strings.TrimSpace(d.Lugar); v != "" {
		extra = append(extra, tx.place+": "+escape(v))
	}
	if v := strings.TrimSpace(d.Responsable); v != "" {
		extra = append(extra, tx.lead+": "+escape(v))
	}
	if v := strings.TrimSpace(d.Traduccion); v != "" {
		extra = append(extra, tx.translation+": "+escape(v))
	}
	if ini, fin := activity.NormalizeDate(d.FechaIni), activity.NormalizeDate(d.FechaFin); ini != "" && fin != "" {
		extra = append(extra, fmt.Sprintf("%s: %s → %s (%s)", tx.trip, ini, fin, tripLength(ini, fin, tx)))
	}
	if len(extra) > 0 {
		line += "  \n  " + strings.Join(extra, " · ")
	}
	return line
}

func tripLength(ini, fin string, tx labels) string {
	d := activity.TripDuration(ini, fin)
	if !d.Valid() || d.Days == 0 {
		return d.String()
	}
	return fmt.Sprintf("%d %s", d.Days, tx.days)
}

var mdEscaper = strings.NewReplacer(`*`, `\*`, `_`, `\_`, "`", "\\`", `[`, `\[`, `]`, `\]`)

func escape(s string) string { return mdEscaper.Replace(strings.TrimSpace(s)) }
