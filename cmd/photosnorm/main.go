package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	"github.com/NicolasDuboisToulouse/PhotosNormReloaded/internal/config"
	"github.com/NicolasDuboisToulouse/PhotosNormReloaded/internal/metadata"
	"github.com/NicolasDuboisToulouse/PhotosNormReloaded/internal/pipeline"
	"github.com/NicolasDuboisToulouse/PhotosNormReloaded/pkg/types"
)

var (
	appVersion     = "0.1.0"
	cfgFile        string
	source         string
	includeExt     []string
	fixDimensions  bool
	fixRename      bool
	description    string
	date           string
	conflictPolicy string
	checkMethod    string
	backup         bool
	backupDir      string
	verify         bool
	stateFile      string
	logFile        string
	logJSON        bool
	dryRun         bool
	force          bool
	docsDir        string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "photosnorm",
	Short: "Normalize image EXIF metadata and file names",
	Long: `PhotosNorm reads EXIF metadata from image files, fixes the recorded
dimensions, sets descriptions and dates, and renames files after their
capture date (YYYY_MM_DD-hh_mm_ss - description.ext).`,
}

var fixCmd = &cobra.Command{
	Use:   "fix [PATH]",
	Short: "Fix image metadata under a file or directory",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runPipeline,
}

var infoCmd = &cobra.Command{
	Use:   "info FILE...",
	Short: "Print image metadata",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runInfo,
}

var docsCmd = &cobra.Command{
	Use:    "docs",
	Short:  "Generate markdown documentation for all commands",
	Hidden: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := os.MkdirAll(docsDir, 0755); err != nil {
			return err
		}
		return doc.GenMarkdownTree(rootCmd, docsDir)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(appVersion)
	},
}

func init() {
	rootCmd.AddCommand(fixCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(docsCmd)
	rootCmd.AddCommand(versionCmd)

	fixCmd.Flags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	fixCmd.Flags().StringVarP(&source, "source", "s", "", "directory of images to process")
	fixCmd.Flags().StringSliceVarP(&includeExt, "include-ext", "e", nil, "file extensions to include")
	fixCmd.Flags().BoolVar(&fixDimensions, "dimensions", false, "fix EXIF dimension tags from real image size")
	fixCmd.Flags().BoolVar(&fixRename, "rename", false, "rename files after their capture date")
	fixCmd.Flags().StringVar(&description, "description", "", "set image description on every file")
	fixCmd.Flags().StringVar(&date, "date", "", "set capture date on every file (YYYY:MM:DD hh:mm:ss)")
	fixCmd.Flags().StringVar(&conflictPolicy, "conflict", "", "rename conflict policy: fail, skip")
	fixCmd.Flags().StringVar(&checkMethod, "check", "", "unchanged-file check method: name-size, hash")
	fixCmd.Flags().BoolVar(&backup, "backup", false, "back up files before modifying them")
	fixCmd.Flags().StringVar(&backupDir, "backup-dir", "", "backup directory")
	fixCmd.Flags().BoolVar(&verify, "verify", false, "re-read written tags and compare")
	fixCmd.Flags().StringVar(&stateFile, "state-file", "", "state file for incremental runs")
	fixCmd.Flags().StringVar(&logFile, "log-file", "", "log file path")
	fixCmd.Flags().BoolVar(&logJSON, "log-json", false, "output JSON logs")
	fixCmd.Flags().BoolVar(&dryRun, "dry-run", false, "report fixes without touching files")
	fixCmd.Flags().BoolVar(&force, "force", false, "reprocess files already recorded in the state")

	docsCmd.Flags().StringVar(&docsDir, "dir", "docs", "output directory")
}

func runPipeline(cmd *cobra.Command, args []string) error {
	var cfg *config.Config
	var err error

	if cfgFile != "" {
		cfg, err = config.LoadFromFile(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
	} else {
		cfg = config.DefaultConfig()
	}

	if len(args) > 0 {
		cfg.Source = args[0]
	}
	if source != "" {
		cfg.Source = source
	}
	if len(includeExt) > 0 {
		cfg.IncludeExtensions = includeExt
	}
	if fixDimensions {
		cfg.FixDimensions = true
	}
	if fixRename {
		cfg.FixRename = true
	}
	if description != "" {
		cfg.Description = description
	}
	if date != "" {
		cfg.Date = date
	}
	if conflictPolicy != "" {
		cfg.ConflictPolicy = types.ConflictPolicy(conflictPolicy)
	}
	if checkMethod != "" {
		cfg.CheckMethod = types.CheckMethod(checkMethod)
	}
	if backup {
		cfg.Backup = true
	}
	if backupDir != "" {
		cfg.BackupDir = backupDir
	}
	if verify {
		cfg.Verify = true
	}
	if stateFile != "" {
		cfg.StateFile = stateFile
	}
	if logFile != "" {
		cfg.LogFile = logFile
	}
	if logJSON {
		cfg.LogJSON = true
	}
	if dryRun {
		cfg.DryRun = true
	}
	if force {
		cfg.Force = true
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	p, err := pipeline.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer p.Close()

	_, err = p.Run()
	return err
}

func runInfo(cmd *cobra.Command, args []string) error {
	title := color.New(color.FgCyan, color.Bold)
	label := color.New(color.FgYellow)

	var firstErr error
	for i, path := range args {
		if i > 0 {
			fmt.Println()
		}
		title.Println(path)

		m, err := metadata.Load(path)
		if err != nil {
			color.Red("  error: %v", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		printField(label, "Size", fmt.Sprintf("%dx%d", m.Width(), m.Height()))
		printField(label, "Date", orUndefined(m.ExifDate()))
		printField(label, "Description", orUndefined(m.Description()))
		printField(label, "Camera", m.CameraInfo().String())
	}
	return firstErr
}

func printField(label *color.Color, name, value string) {
	label.Printf("  %-12s", name+":")
	fmt.Println(value)
}

func orUndefined(s string) string {
	if s == "" {
		return "Undefined"
	}
	return s
}
