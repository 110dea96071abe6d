package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage configuration profiles",
	Long: `Manage configuration profiles for different accounts, filters and grid
settings.

Profiles let you switch between calendar sources and day-view layouts
quickly.`,
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all profiles",
	RunE:  runProfileList,
}

var profileShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Show profile settings",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runProfileShow,
}

var profileAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a new profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileAdd,
}

var profileSetDefaultCmd = &cobra.Command{
	Use:   "default <name>",
	Short: "Set the default profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileSetDefault,
}

var profileEditCmd = &cobra.Command{
	Use:   "edit <name>",
	Short: "Edit a profile's settings",
	Long: `Edit a profile's settings using flags.

Example:
  dayview profile edit work --days=5 --height-mode=full-blocks-all
  dayview profile edit feed --provider=ics --ics-source=~/holidays.ics`,
	Args: cobra.ExactArgs(1),
	RunE: runProfileEdit,
}

type settingKind int

const (
	stringSetting settingKind = iota
	intSetting
	boolSetting
)

// profileFlag ties a profile flag to the config key it writes.
type profileFlag struct {
	flag    string
	key     string
	kind    settingKind
	section string
	usage   string
}

var profileFlags = []profileFlag{
	{"provider", "provider", stringSetting, "Source", "Calendar provider (google, outlook, ics)"},
	{"credentials-file", "credentials_file", stringSetting, "Source", "Path to credentials file"},
	{"token-file", "token_file", stringSetting, "Source", "Path to token file"},
	{"client-id", "client_id", stringSetting, "Source", "Azure app client ID"},
	{"tenant-id", "tenant_id", stringSetting, "Source", "Azure tenant ID"},
	{"ics-source", "ics_source", stringSetting, "Source", ".ics file path or URL"},
	{"primary-calendar", "primary_calendar", stringSetting, "Source", "Primary calendar ID"},

	{"days", "days", intSetting, "Range", "Number of days to show"},
	{"calendars", "calendars", stringSetting, "Range", "Calendar filter"},

	{"ooo", "ooo", boolSetting, "Filters", "Include OOO appointments"},
	{"focus", "focus", boolSetting, "Filters", "Include focus time"},
	{"workloc", "workloc", boolSetting, "Filters", "Include working location"},
	{"all-types", "all_types", boolSetting, "Filters", "Include all appointment types"},
	{"accepted", "accepted", boolSetting, "Filters", "Only accepted appointments"},
	{"subscribed", "subscribed", boolSetting, "Filters", "Include subscribed calendars"},
	{"smart-ooo", "smart_ooo", boolSetting, "Filters", "Smart OOO filtering"},
	{"no-allday", "no_allday", boolSetting, "Filters", "Exclude all-day appointments"},

	{"slots-per-hour", "grid.slots_per_hour", intSetting, "Grid", "Grid slots per hour"},
	{"start-hour", "grid.start_hour", intSetting, "Grid", "Hour the view scrolls to"},
	{"working-start", "grid.working_start", stringSetting, "Grid", "Start of working hours (HH:MM)"},
	{"working-end", "grid.working_end", stringSetting, "Grid", "End of working hours (HH:MM)"},
	{"height-mode", "grid.height_mode", stringSetting, "Grid", "Appointment height mode"},
	{"border-all", "grid.border_all", boolSetting, "Grid", "Border every appointment"},
	{"min-slot-height", "grid.min_slot_height", boolSetting, "Grid", "Draw appointments at least one slot tall"},

	{"refresh", "ui.refresh", stringSetting, "Interface", "Refresh schedule (cron spec)"},
	{"log-file", "log.file", stringSetting, "Interface", "Log file"},
	{"log-level", "log.level", stringSetting, "Interface", "Log level"},
}

var profileSections = []string{"Source", "Range", "Filters", "Grid", "Interface"}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.AddCommand(profileListCmd)
	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileAddCmd)
	profileCmd.AddCommand(profileSetDefaultCmd)
	profileCmd.AddCommand(profileEditCmd)

	registerProfileFlags(profileAddCmd.Flags())
	registerProfileFlags(profileEditCmd.Flags())
}

// registerProfileFlags adds local copies of the profile flags. They shadow
// the root's persistent flags of the same name.
func registerProfileFlags(fs *pflag.FlagSet) {
	for _, pf := range profileFlags {
		switch pf.kind {
		case stringSetting:
			fs.String(pf.flag, "", pf.usage)
		case intSetting:
			fs.Int(pf.flag, 0, pf.usage)
		case boolSetting:
			fs.Bool(pf.flag, false, pf.usage)
		}
	}
}

// changedSettings collects the values of the profile flags set on the
// command line, keyed by nested config path.
func changedSettings(fs *pflag.FlagSet) map[string]any {
	changed := make(map[string]any)
	for _, pf := range profileFlags {
		if !fs.Changed(pf.flag) {
			continue
		}
		var val any
		switch pf.kind {
		case stringSetting:
			val, _ = fs.GetString(pf.flag)
		case intSetting:
			val, _ = fs.GetInt(pf.flag)
		case boolSetting:
			val, _ = fs.GetBool(pf.flag)
		}
		changed[pf.key] = val
	}
	return changed
}

// setNested writes val at a dotted key such as "grid.start_hour".
func setNested(m map[string]any, key string, val any) {
	head, rest, nested := strings.Cut(key, ".")
	if !nested {
		m[key] = val
		return
	}
	child, ok := m[head].(map[string]any)
	if !ok {
		child = make(map[string]any)
		m[head] = child
	}
	setNested(child, rest, val)
}

// getNested reads a dotted key such as "grid.start_hour".
func getNested(m map[string]any, key string) (any, bool) {
	head, rest, nested := strings.Cut(key, ".")
	val, ok := m[head]
	if !ok || !nested {
		return val, ok
	}
	child, ok := val.(map[string]any)
	if !ok {
		return nil, false
	}
	return getNested(child, rest)
}

func runProfileList(cmd *cobra.Command, args []string) error {
	profiles := viper.GetStringMap("profiles")
	defaultProfile := viper.GetString("default_profile")

	if len(profiles) == 0 {
		fmt.Println("No profiles configured.")
		fmt.Println("\nAdd one with: dayview profile add <name> --provider=<google|outlook|ics>")
		return nil
	}

	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println("Available profiles:")
	fmt.Println(rule)

	for _, name := range names {
		marker := "  "
		if name == defaultProfile {
			marker = "* "
		}
		fmt.Printf("%s%s\n", marker, name)
	}

	fmt.Println(rule)
	if defaultProfile != "" {
		fmt.Printf("Default: %s\n", defaultProfile)
	}
	fmt.Println("\nUse 'dayview profile show <name>' for details")

	return nil
}

func runProfileShow(cmd *cobra.Command, args []string) error {
	var profileName string
	if len(args) > 0 {
		profileName = args[0]
	} else {
		profileName = viper.GetString("default_profile")
		if profileName == "" {
			return fmt.Errorf("no profile specified and no default profile set")
		}
	}

	profileKey := "profiles." + profileName
	if !viper.IsSet(profileKey) {
		return fmt.Errorf("profile '%s' not found", profileName)
	}

	settings := viper.GetStringMap(profileKey)

	fmt.Printf("Profile: %s\n", profileName)
	if profileName == viper.GetString("default_profile") {
		fmt.Println("(default)")
	}
	fmt.Println(rule)

	for _, section := range profileSections {
		var lines []string
		for _, pf := range profileFlags {
			if pf.section != section {
				continue
			}
			if val, ok := getNested(settings, pf.key); ok {
				lines = append(lines, fmt.Sprintf("  %s: %v", pf.flag, val))
			}
		}
		if len(lines) == 0 {
			continue
		}
		fmt.Printf("\n%s:\n%s\n", section, strings.Join(lines, "\n"))
	}

	fmt.Println()
	return nil
}

func runProfileAdd(cmd *cobra.Command, args []string) error {
	profileName := args[0]

	profileKey := "profiles." + profileName
	if viper.IsSet(profileKey) {
		return fmt.Errorf("profile '%s' already exists. Use 'dayview profile edit %s' to modify it", profileName, profileName)
	}

	profile := make(map[string]any)
	for key, val := range changedSettings(cmd.Flags()) {
		setNested(profile, key, val)
	}

	if err := saveProfileToConfig(profileName, profile); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}

	fmt.Printf("✓ Profile '%s' created\n", profileName)
	fmt.Printf("\nUse it with: dayview -p %s\n", profileName)
	fmt.Printf("Set as default: dayview profile default %s\n", profileName)

	return nil
}

func runProfileSetDefault(cmd *cobra.Command, args []string) error {
	profileName := args[0]

	profileKey := "profiles." + profileName
	if !viper.IsSet(profileKey) {
		return fmt.Errorf("profile '%s' not found", profileName)
	}

	if err := setDefaultProfileInConfig(profileName); err != nil {
		return fmt.Errorf("failed to set default profile: %w", err)
	}

	fmt.Printf("✓ Default profile set to '%s'\n", profileName)
	return nil
}

func runProfileEdit(cmd *cobra.Command, args []string) error {
	profileName := args[0]

	profileKey := "profiles." + profileName
	if !viper.IsSet(profileKey) {
		return fmt.Errorf("profile '%s' not found. Use 'dayview profile add %s' to create it", profileName, profileName)
	}

	changed := changedSettings(cmd.Flags())
	if len(changed) == 0 {
		fmt.Println("No changes specified. Use flags to update settings:")
		fmt.Println("  dayview profile edit", profileName, "--days=5 --start-hour=7")
		return nil
	}

	config, err := readConfigFile()
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	profiles, _ := config["profiles"].(map[string]any)
	profile, _ := profiles[profileName].(map[string]any)
	if profile == nil {
		profile = make(map[string]any)
	}

	for key, val := range changed {
		setNested(profile, key, val)
	}

	if err := saveProfileToConfig(profileName, profile); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}

	fmt.Printf("✓ Profile '%s' updated\n", profileName)
	return nil
}

// Config file manipulation functions

func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "dayview", "config.yaml")
}

func readConfigFile() (map[string]any, error) {
	data, err := os.ReadFile(getConfigPath())
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]any), nil
		}
		return nil, err
	}

	var config map[string]any
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	if config == nil {
		config = make(map[string]any)
	}

	return config, nil
}

func writeConfigFile(config map[string]any) error {
	configPath := getConfigPath()

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return err
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0o644)
}

func saveProfileToConfig(name string, profile map[string]any) error {
	config, err := readConfigFile()
	if err != nil {
		return err
	}

	profiles, ok := config["profiles"].(map[string]any)
	if !ok {
		profiles = make(map[string]any)
	}

	profiles[name] = profile
	config["profiles"] = profiles

	return writeConfigFile(config)
}

func setDefaultProfileInConfig(name string) error {
	config, err := readConfigFile()
	if err != nil {
		return err
	}

	config["default_profile"] = name

	return writeConfigFile(config)
}
