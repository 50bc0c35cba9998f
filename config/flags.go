package config

import "flag"

// Flags command-line options for a single run.
type Flags struct {
	// ConfigPath path to the yaml job list.
	ConfigPath string
	// ExportCSV when set, replay the order journal into this CSV file and exit.
	ExportCSV string
	// Setup when set, run the interactive setup wizard first and continue
	// with the generated config.
	Setup bool
}

// ParseFlags parses process flags.
func ParseFlags() Flags {
	configPath := flag.String("config", "config.yaml", "path to yaml config")
	export := flag.String("export", "", "write the order journal to this CSV file and exit")
	setup := flag.Bool("setup", false, "run the interactive setup wizard, then continue with the generated config")
	flag.Parse()

	return Flags{
		ConfigPath: *configPath,
		ExportCSV:  *export,
		Setup:      *setup,
	}
}
