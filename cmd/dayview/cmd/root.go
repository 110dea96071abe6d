package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/theakshaypant/dayview/internal/adapter/google"
	"github.com/theakshaypant/dayview/internal/adapter/ics"
	"github.com/theakshaypant/dayview/internal/adapter/outlook"
	"github.com/theakshaypant/dayview/internal/core"
	"github.com/theakshaypant/dayview/internal/grid"
	"github.com/theakshaypant/dayview/internal/layout"
	"github.com/theakshaypant/dayview/internal/logging"
	"github.com/theakshaypant/dayview/internal/tui"
)

// CalendarAdapter extends core.Provider with login and calendar listing.
// The Google, Outlook and .ics adapters implement this interface.
type CalendarAdapter interface {
	core.Provider
	Login(ctx context.Context) error
	Calendars() map[string]string
}

var (
	cfgFile string
	profile string
	adapter CalendarAdapter
	logger  = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "dayview",
	Short: "A day-view calendar for the terminal",
	Long: `dayview lays out your calendar the way a desktop day view does: days side
by side, hours running down, overlapping appointments sharing a column and
multi-day appointments stacked in a banner strip above the grid.

Without a subcommand it prints an agenda for the selected range. Use
'dayview ui' for the interactive view.`,
	PersistentPreRunE: initAdapter,
	RunE:              listAgenda,
}

func Execute() {
	defer func() { _ = logger.Sync() }()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags (inherited by all subcommands)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/dayview/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&profile, "profile", "p", "", "config profile to use (e.g., work, personal)")

	// Range and filter flags
	rootCmd.PersistentFlags().IntP("days", "d", 7, "Number of days to show (ignored if --to specified)")
	rootCmd.PersistentFlags().String("from", "", "Start date (YYYY-MM-DD, 'today', 'tomorrow', 'monday', etc.)")
	rootCmd.PersistentFlags().String("to", "", "End date (YYYY-MM-DD, 'today', 'tomorrow', 'monday', etc.)")
	rootCmd.PersistentFlags().StringP("calendars", "c", "", "Comma-separated list of calendar names to filter")
	rootCmd.PersistentFlags().Bool("ooo", true, "Include out-of-office appointments")
	rootCmd.PersistentFlags().Bool("focus", false, "Include focus time appointments")
	rootCmd.PersistentFlags().Bool("workloc", false, "Include working location appointments")
	rootCmd.PersistentFlags().Bool("all-types", false, "Include all appointment types")
	rootCmd.PersistentFlags().Bool("accepted", true, "Only show accepted appointments")
	rootCmd.PersistentFlags().Bool("subscribed", true, "Include subscribed calendar appointments")
	rootCmd.PersistentFlags().Bool("smart-ooo", false, "Hide appointments on days you're OOO")
	rootCmd.PersistentFlags().String("primary-calendar", "", "Primary calendar for smart OOO detection (default: auto-detect)")
	rootCmd.PersistentFlags().Bool("no-allday", false, "Exclude all-day appointments")

	// Grid flags
	rootCmd.PersistentFlags().String("height-mode", "", "Appointment height mode (true-height-all, full-blocks-all, end-blocks-all, full-blocks-short, end-blocks-short)")
	rootCmd.PersistentFlags().Int("slots-per-hour", 0, "Grid slots per hour (must divide 60)")
	rootCmd.PersistentFlags().Int("start-hour", 0, "Hour the view scrolls to on open")

	// Logging flags
	rootCmd.PersistentFlags().String("log-file", "", "Write logs to this file (default: no logs)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")

	for key, flag := range flagKeys {
		viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag))
	}
}

// flagKeys maps config keys to the persistent flags that override them.
var flagKeys = map[string]string{
	"days":                "days",
	"from":                "from",
	"to":                  "to",
	"calendars":           "calendars",
	"ooo":                 "ooo",
	"focus":               "focus",
	"workloc":             "workloc",
	"all_types":           "all-types",
	"accepted":            "accepted",
	"subscribed":          "subscribed",
	"smart_ooo":           "smart-ooo",
	"primary_calendar":    "primary-calendar",
	"no_allday":           "no-allday",
	"grid.height_mode":    "height-mode",
	"grid.slots_per_hour": "slots-per-hour",
	"grid.start_hour":     "start-hour",
	"log.file":            "log-file",
	"log.level":           "log-level",
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		configDir := filepath.Join(home, ".config", "dayview")
		viper.AddConfigPath(configDir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	// Environment variables (DAYVIEW_GRID_DAYS for grid.days)
	viper.SetEnvPrefix("DAYVIEW")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("provider", "google")
	viper.SetDefault("credentials_file", "credentials.json")
	viper.SetDefault("token_file", "token.json")
	viper.SetDefault("days", 7)
	viper.SetDefault("ooo", true)
	viper.SetDefault("accepted", true)
	viper.SetDefault("subscribed", true)
	viper.SetDefault("grid.slots_per_hour", 4)
	viper.SetDefault("grid.start_hour", 8)
	viper.SetDefault("grid.working_start", "08:30")
	viper.SetDefault("grid.working_end", "18:30")
	viper.SetDefault("grid.height_mode", "true-height-all")
	viper.SetDefault("ui.refresh", tui.DefaultRefresh)
	viper.SetDefault("log.level", "info")

	// Read config file if it exists
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	// Apply profile settings if specified
	applyProfile()
}

// profileSettings lists the keys a profile may override.
var profileSettings = []string{
	"provider",
	"credentials_file",
	"token_file",
	"client_id",
	"tenant_id",
	"ics_source",
	"ics_name",
	"days",
	"from",
	"to",
	"calendars",
	"primary_calendar",
	"ooo",
	"focus",
	"workloc",
	"all_types",
	"accepted",
	"subscribed",
	"smart_ooo",
	"no_allday",
	"grid.slots_per_hour",
	"grid.slot_height",
	"grid.start_hour",
	"grid.working_start",
	"grid.working_end",
	"grid.height_mode",
	"grid.days",
	"grid.border_all",
	"grid.min_slot_height",
	"grid.legacy_day_keys",
	"ui.refresh",
	"log.file",
	"log.level",
}

// displaySettings are profile overrides for the agenda output.
var displaySettings = []string{
	"display.calendar",
	"display.group",
	"display.time",
	"display.location",
	"display.meeting_link",
	"display.description",
	"display.status",
	"display.event_url",
	"display.id",
	"display.in_progress",
}

// applyProfile merges profile-specific settings over defaults
func applyProfile() {
	activeProfile := profile
	if activeProfile == "" {
		activeProfile = viper.GetString("default_profile")
	}
	if activeProfile == "" {
		return
	}

	profileKey := "profiles." + activeProfile
	if !viper.IsSet(profileKey) {
		fmt.Fprintf(os.Stderr, "Warning: profile '%s' not found in config\n", activeProfile)
		return
	}

	fmt.Fprintf(os.Stderr, "Using profile: %s\n", activeProfile)

	// A CLI flag still wins over the profile.
	for _, key := range profileSettings {
		profileSettingKey := profileKey + "." + key
		if viper.IsSet(profileSettingKey) && !isFlagExplicitlySet(key) {
			viper.Set(key, viper.Get(profileSettingKey))
		}
	}

	for _, key := range displaySettings {
		profileSettingKey := profileKey + "." + key
		if viper.IsSet(profileSettingKey) {
			viper.Set(key, viper.Get(profileSettingKey))
		}
	}
}

func isFlagExplicitlySet(viperKey string) bool {
	flagName, ok := flagKeys[viperKey]
	if !ok {
		return false
	}
	f := rootCmd.PersistentFlags().Lookup(flagName)

	return f != nil && f.Changed
}

// skipsAdapter reports whether cmd runs without a calendar provider.
func skipsAdapter(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "help", "completion", "profile", "auth":
		return true
	}
	if cmd.Parent() != nil && cmd.Parent().Name() == "profile" {
		return true
	}
	// layout and at can read appointments from a file instead.
	if f := cmd.Flags().Lookup("input"); f != nil && f.Value.String() != "" {
		return true
	}
	return false
}

func initLogger() error {
	level := viper.GetString("log.level")
	l, err := logging.New(logging.Options{
		Level:       level,
		File:        expandPath(viper.GetString("log.file")),
		Development: strings.EqualFold(level, "debug"),
	})
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	logger = l
	return nil
}

func initAdapter(cmd *cobra.Command, args []string) error {
	if err := initLogger(); err != nil {
		return err
	}
	if skipsAdapter(cmd) {
		return nil
	}

	provider := viper.GetString("provider")
	if provider == "" {
		provider = "google"
	}
	logger.Debug("initializing provider", zap.String("provider", provider))

	switch provider {
	case "google":
		return initGoogleAdapter(cmd)
	case "outlook":
		return initOutlookAdapter(cmd)
	case "ics":
		return initICSAdapter(cmd)
	default:
		return fmt.Errorf("unknown provider: %s (supported: google, outlook, ics)", provider)
	}
}

func initGoogleAdapter(cmd *cobra.Command) error {
	credsFile := expandPath(viper.GetString("credentials_file"))
	tokenFile := expandPath(viper.GetString("token_file"))

	if _, err := os.Stat(credsFile); os.IsNotExist(err) {
		return fmt.Errorf("credentials file not found: %s\n\nCreate an OAuth client in the Google Cloud console and download it as JSON", credsFile)
	}

	if _, err := os.Stat(tokenFile); os.IsNotExist(err) {
		return fmt.Errorf("token file not found: %s\n\nRun 'dayview auth' to authenticate", tokenFile)
	}

	adapter = google.NewGoogleAdapter(
		"google",
		"Google Calendar",
		credsFile,
		tokenFile,
		logger,
	)

	if err := adapter.Login(cmd.Context()); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	return nil
}

func initOutlookAdapter(cmd *cobra.Command) error {
	clientID := viper.GetString("client_id")
	if clientID == "" {
		return fmt.Errorf("client_id not configured for Outlook provider\n\nAdd it to your profile config:\n  client_id: \"your-azure-app-client-id\"")
	}

	tenantID := viper.GetString("tenant_id")
	tokenFile := expandPath(viper.GetString("token_file"))

	if _, err := os.Stat(tokenFile); os.IsNotExist(err) {
		return fmt.Errorf("token file not found: %s\n\nRun 'dayview auth' to authenticate with Microsoft", tokenFile)
	}

	adapter = outlook.NewOutlookAdapter(
		"outlook",
		"Outlook Calendar",
		clientID,
		tenantID,
		tokenFile,
		logger,
	)

	if err := adapter.Login(cmd.Context()); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	return nil
}

func initICSAdapter(cmd *cobra.Command) error {
	source := viper.GetString("ics_source")
	if source == "" {
		return fmt.Errorf("ics_source not configured for ics provider\n\nAdd a file path or URL to your profile config:\n  ics_source: \"https://example.com/calendar.ics\"")
	}
	if !strings.Contains(source, "://") {
		source = expandPath(source)
	}

	name := viper.GetString("ics_name")
	if name == "" {
		name = "Calendar feed"
	}

	adapter = ics.NewAdapter("ics", name, source, logger)
	return adapter.Login(cmd.Context())
}

// resolveRange turns --from/--to/--days into a run of whole days.
func resolveRange(now time.Time) (layout.Range, error) {
	start := now
	if fromStr := viper.GetString("from"); fromStr != "" {
		var err error
		start, err = parseDate(fromStr, now)
		if err != nil {
			return layout.Range{}, err
		}
	}

	days := viper.GetInt("days")
	if toStr := viper.GetString("to"); toStr != "" {
		end, err := parseDate(toStr, now)
		if err != nil {
			return layout.Range{}, err
		}
		days = grid.CalendarDays(start, end) + 1
		if days < 1 {
			return layout.Range{}, fmt.Errorf("--to (%s) is before --from (%s)", end.Format("2006-01-02"), start.Format("2006-01-02"))
		}
	}

	return layout.NewRange(start, days), nil
}

// buildFetchOptions turns the filter flags into fetch options for r.
func buildFetchOptions(r layout.Range) (core.FetchOptions, error) {
	opts := core.FetchOptions{
		Start: r.Start,
		End:   r.End(),
	}

	// Calendar filter
	if calendars := viper.GetString("calendars"); calendars != "" && adapter != nil {
		filterNames := strings.Split(calendars, ",")
		calendarIDs := resolveCalendarNames(filterNames, adapter.Calendars())
		if len(calendarIDs) == 0 {
			return opts, fmt.Errorf("no matching calendars found for: %s\nUse 'dayview calendars' to see available calendars", calendars)
		}
		opts.CalendarIDs = calendarIDs
	}

	// Type filter
	if viper.GetBool("all_types") {
		opts.IncludeTypes = []core.AppointmentType{
			core.TypeDefault,
			core.TypeOutOfOffice,
			core.TypeFocusTime,
			core.TypeWorkLocation,
		}
	} else {
		opts.IncludeTypes = []core.AppointmentType{core.TypeDefault}
		if viper.GetBool("ooo") {
			opts.IncludeTypes = append(opts.IncludeTypes, core.TypeOutOfOffice)
		}
		if viper.GetBool("focus") {
			opts.IncludeTypes = append(opts.IncludeTypes, core.TypeFocusTime)
		}
		if viper.GetBool("workloc") {
			opts.IncludeTypes = append(opts.IncludeTypes, core.TypeWorkLocation)
		}
	}

	// Status filter
	if viper.GetBool("accepted") {
		opts.IncludeStatuses = []core.AppointmentStatus{core.StatusAccepted}
		if viper.GetBool("subscribed") {
			opts.IncludeStatuses = append(opts.IncludeStatuses, core.StatusNoResponse)
		}
	}

	opts.ExcludeAllDay = viper.GetBool("no_allday")

	return opts, nil
}

// fetchAppointments fetches r from the configured provider, applying the
// smart OOO filter when enabled.
func fetchAppointments(ctx context.Context, r layout.Range) ([]core.Appointment, error) {
	opts, err := buildFetchOptions(r)
	if err != nil {
		return nil, err
	}

	appts, err := adapter.FetchAppointments(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch appointments: %w", err)
	}

	// Smart OOO filter: hide appointments on days you're OOO
	if viper.GetBool("smart_ooo") {
		primaryCal := detectPrimaryCalendar(viper.GetString("primary_calendar"))
		oooPeriods := getOOOPeriods(ctx, opts.Start, opts.End, primaryCal)
		if len(oooPeriods) > 0 {
			appts = filterOutsideOOO(appts, oooPeriods, primaryCal)
		}
	}

	return appts, nil
}
