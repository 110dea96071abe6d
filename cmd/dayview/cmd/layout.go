package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/theakshaypant/dayview/internal/core"
	"github.com/theakshaypant/dayview/internal/grid"
	"github.com/theakshaypant/dayview/internal/layout"
	"github.com/theakshaypant/dayview/internal/store"
)

var layoutCmd = &cobra.Command{
	Use:   "layout",
	Short: "Print the computed day-view layout",
	Long: `Run one layout pass over the selected range and print every view: its
rectangle, day column, overlap count and banner layer.

Appointments come from the configured provider, or from a YAML/JSON file
given with --input:

  - id: standup
    title: Standup
    start: 2024-03-04T09:00:00+01:00
    end: 2024-03-04T09:15:00+01:00
    group: Work

Example:
  dayview layout --from 2024-03-04 --days 5 --width 120 --height 40 -o yaml`,
	RunE: runLayout,
}

func init() {
	rootCmd.AddCommand(layoutCmd)
	addViewportFlags(layoutCmd)
	layoutCmd.Flags().StringP("output", "o", "table", "Output format (table, json, yaml)")
}

// addViewportFlags registers the flags shared by layout and at.
func addViewportFlags(cmd *cobra.Command) {
	cmd.Flags().String("input", "", "Read appointments from a YAML or JSON file instead of the provider")
	cmd.Flags().Int("width", 120, "Client area width")
	cmd.Flags().Int("height", 40, "Client area height")
	cmd.Flags().Int("scroll", -1, "Vertical scroll offset (-1 scrolls to grid.start_hour)")
	cmd.Flags().String("geometry", "terminal", "Grid geometry: terminal (character cells) or desktop (pixels)")
}

// appointmentRecord is the file format read by --input.
type appointmentRecord struct {
	ID       string    `yaml:"id"`
	Title    string    `yaml:"title"`
	Start    time.Time `yaml:"start"`
	End      time.Time `yaml:"end"`
	AllDay   bool      `yaml:"all_day"`
	Group    string    `yaml:"group"`
	Location string    `yaml:"location"`
	Locked   bool      `yaml:"locked"`
}

// viewRecord is one laid-out view in layout output.
type viewRecord struct {
	ID            string `json:"id" yaml:"id"`
	Title         string `json:"title" yaml:"title"`
	Kind          string `json:"kind" yaml:"kind"`
	Group         string `json:"group,omitempty" yaml:"group,omitempty"`
	Day           int    `json:"day" yaml:"day"`
	X             int    `json:"x" yaml:"x"`
	Y             int    `json:"y" yaml:"y"`
	Width         int    `json:"width" yaml:"width"`
	Height        int    `json:"height" yaml:"height"`
	ConflictCount int    `json:"conflict_count,omitempty" yaml:"conflict_count,omitempty"`
	Layer         int    `json:"layer,omitempty" yaml:"layer,omitempty"`
}

// layoutReport is the document printed by layout -o json|yaml.
type layoutReport struct {
	RangeStart   string       `json:"range_start" yaml:"range_start"`
	Days         int          `json:"days" yaml:"days"`
	Scroll       int          `json:"scroll" yaml:"scroll"`
	BannerHeight int          `json:"banner_height" yaml:"banner_height"`
	Views        []viewRecord `json:"views" yaml:"views"`
	Errors       []string     `json:"errors,omitempty" yaml:"errors,omitempty"`
}

func loadInputFile(path string) ([]core.Appointment, error) {
	data, err := os.ReadFile(expandPath(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	// JSON is a subset of YAML, so one decoder reads both.
	var records []appointmentRecord
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse input: %w", err)
	}

	appts := make([]core.Appointment, 0, len(records))
	for _, r := range records {
		start, end := r.Start.Local(), r.End.Local()
		if r.AllDay {
			// Dates carry no zone; read them as local days.
			start = localDate(r.Start)
			end = localDate(r.End)
		}
		appts = append(appts, core.Appointment{
			ID:         r.ID,
			DedupeKey:  r.ID,
			ProviderID: "file",
			Title:      r.Title,
			Location:   r.Location,
			Start:      start,
			End:        end,
			AllDay:     r.AllDay,
			Group:      r.Group,
			Locked:     r.Locked,
			Status:     core.StatusNoResponse,
		})
	}
	return appts, nil
}

func localDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

// computeView lays out the selected range in the viewport described by the
// command's flags. Validation errors come back alongside a usable engine.
func computeView(cmd *cobra.Command) (*layout.Engine, layout.Result, error) {
	rng, err := resolveRange(time.Now())
	if err != nil {
		return nil, layout.Result{}, err
	}

	var appts []core.Appointment
	providerID := "file"
	if input, _ := cmd.Flags().GetString("input"); input != "" {
		appts, err = loadInputFile(input)
	} else {
		providerID = adapter.ID()
		appts, err = fetchAppointments(cmd.Context(), rng)
	}
	if err != nil {
		return nil, layout.Result{}, err
	}

	mem := store.NewMemory()
	if err := mem.SyncAppointments(cmd.Context(), providerID, appts); err != nil {
		return nil, layout.Result{}, err
	}
	appts, err = mem.Resolve(cmd.Context(), rng.Start, rng.End())
	if err != nil {
		return nil, layout.Result{}, err
	}

	base := grid.TerminalConfig()
	geometry, _ := cmd.Flags().GetString("geometry")
	switch geometry {
	case "terminal":
	case "desktop":
		base = grid.DefaultConfig()
	default:
		return nil, layout.Result{}, fmt.Errorf("unknown geometry: %s (supported: terminal, desktop)", geometry)
	}
	cfg, err := gridConfigFrom(base)
	if err != nil {
		return nil, layout.Result{}, err
	}
	cfg.Days = rng.Days

	width, _ := cmd.Flags().GetInt("width")
	height, _ := cmd.Flags().GetInt("height")
	scroll, _ := cmd.Flags().GetInt("scroll")
	client := grid.Size{Width: width, Height: height}

	e := layout.NewEngine(cfg, layout.WithLogger(logger))
	// The first pass sizes the banner strip, which bounds the scroll.
	_, _ = e.ComputeLayout(rng, appts, client)
	if scroll < 0 {
		e.Grid().ScrollToStartHour(client.Height)
	} else {
		e.Grid().SetScroll(scroll, client.Height)
	}
	res, err := e.ComputeLayout(rng, appts, client)
	return e, res, err
}

func runLayout(cmd *cobra.Command, args []string) error {
	e, res, err := computeView(cmd)
	if e == nil {
		return err
	}

	report := newLayoutReport(res, e.Grid().Scroll(), err)
	out := cmd.OutOrStdout()

	format, _ := cmd.Flags().GetString("output")
	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(report)
	case "table":
		printLayoutTable(out, report)
		return nil
	default:
		return fmt.Errorf("unknown output format: %s (supported: table, json, yaml)", format)
	}
}

func newLayoutReport(res layout.Result, scroll int, err error) layoutReport {
	report := layoutReport{
		RangeStart:   res.Range.Start.Format("2006-01-02"),
		Days:         res.Range.Days,
		Scroll:       scroll,
		BannerHeight: res.BannerHeight,
	}
	for _, v := range res.Banners {
		report.Views = append(report.Views, newViewRecord(v))
	}
	for _, v := range res.SameDay {
		report.Views = append(report.Views, newViewRecord(v))
	}
	for _, e := range multierr.Errors(err) {
		report.Errors = append(report.Errors, e.Error())
	}
	return report
}

func newViewRecord(v layout.View) viewRecord {
	r := viewRecord{
		ID:     v.Appointment.ID,
		Title:  v.Appointment.Title,
		Kind:   "same-day",
		Group:  v.Appointment.Group,
		Day:    v.Day,
		X:      v.Rect.X,
		Y:      v.Rect.Y,
		Width:  v.Rect.Width,
		Height: v.Rect.Height,
	}
	if v.Banner {
		r.Kind = "banner"
		r.Layer = v.Layer
	} else {
		r.ConflictCount = v.ConflictCount
	}
	return r
}

func printLayoutTable(w io.Writer, report layoutReport) {
	fmt.Fprintf(w, "Range: %s (+%d days)  scroll: %d  banner strip: %d\n",
		report.RangeStart, report.Days, report.Scroll, report.BannerHeight)

	if len(report.Views) == 0 {
		fmt.Fprintln(w, "No appointments in range.")
	} else {
		rows := make([][]string, 0, len(report.Views))
		for _, v := range report.Views {
			extra := strconv.Itoa(v.ConflictCount)
			if v.Kind == "banner" {
				extra = "L" + strconv.Itoa(v.Layer)
			}
			rows = append(rows, []string{
				v.Kind,
				strconv.Itoa(v.Day),
				fmt.Sprintf("%d,%d %dx%d", v.X, v.Y, v.Width, v.Height),
				extra,
				v.Group,
				v.Title,
			})
		}
		t := table.New().
			Border(lipgloss.NormalBorder()).
			Headers("KIND", "DAY", "RECT", "N/LAYER", "GROUP", "TITLE").
			Rows(rows...)
		fmt.Fprintln(w, t.String())
	}

	for _, e := range report.Errors {
		warn("%s", e)
	}
}
