package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jamesainslie/mlcc/pkg/mlcc/config"
	"github.com/jamesainslie/mlcc/pkg/mlcc/manifest"
	"github.com/jamesainslie/mlcc/pkg/mlcc/output"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View generation history",
	Long: `View the history of generation runs.

Each run records its answers, where each answer came from, the exclusion
patterns that applied and the files written.`,
	RunE: runHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show details of a generation run",
	Long:  `Display a generation run by its ID or a unique ID prefix.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove old history entries",
	Long:  `Remove history entries older than the retention period.`,
	RunE:  runHistoryClean,
}

var (
	historyLimit int
	historyDays  int
)

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", 20, "maximum number of entries to show")
	historyCleanCmd.Flags().IntVar(&historyDays, "days", 0, "retention in days (default from settings)")

	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyCleanCmd)
	rootCmd.AddCommand(historyCmd)
}

// getManifest returns the history store from the settings.
func getManifest() (*manifest.Manifest, error) {
	dir := config.HistoryDir()
	if settings != nil && settings.History.Path != "" {
		dir = settings.History.Path
	}
	m, err := manifest.New(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize history: %w", err)
	}
	return m, nil
}

// runHistory lists recent runs.
func runHistory(cmd *cobra.Command, args []string) error {
	m, err := getManifest()
	if err != nil {
		return err
	}
	entries, err := m.List(historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}

	if len(entries) == 0 {
		printInfo("No history entries found.")
		printInfo("Run 'mlcc' to generate a project.")
		return nil
	}

	fmt.Printf("\n%s\n", output.TableHeaderStyle.Render(fmt.Sprintf("%-8s  %-16s  %-24s  %-8s  %6s  %9s", "ID", "WHEN", "PROJECT", "TYPE", "FILES", "SIZE")))
	fmt.Println(strings.Repeat("-", 84))
	for _, e := range entries {
		fmt.Printf("%-8s  %-16s  %-24s  %-8s  %6d  %9s\n",
			e.ID[:min(8, len(e.ID))],
			humanize.Time(e.Timestamp),
			truncateString(e.Project, 24),
			e.Operation,
			e.Summary.TotalFiles,
			humanize.Bytes(uint64(e.Summary.TotalBytes)),
		)
	}
	fmt.Println(strings.Repeat("-", 84))
	fmt.Println("Use 'mlcc history show <id>' for details on a specific entry.")
	return nil
}

// runHistoryShow displays one run.
func runHistoryShow(cmd *cobra.Command, args []string) error {
	m, err := getManifest()
	if err != nil {
		return err
	}
	entry, err := m.Get(args[0])
	if err != nil {
		return fmt.Errorf("failed to get entry: %w", err)
	}

	fmt.Println()
	fmt.Println(output.TitleStyle.Render("Generation Details"))
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("ID:          %s\n", entry.ID)
	fmt.Printf("Timestamp:   %s (%s)\n", entry.Timestamp.Local().Format("2006-01-02 15:04:05 MST"), humanize.Time(entry.Timestamp))
	fmt.Printf("Operation:   %s\n", entry.Operation)
	fmt.Printf("Project:     %s\n", entry.Project)
	fmt.Printf("Destination: %s\n", output.PathStyle.Render(entry.Destination))
	fmt.Printf("Files:       %d (%s), %d skipped\n", entry.Summary.TotalFiles, humanize.Bytes(uint64(entry.Summary.TotalBytes)), entry.Summary.SkippedFiles)

	keys := make([]string, 0, len(entry.Answers))
	for k := range entry.Answers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fmt.Println("\nAnswers:")
	fmt.Println(strings.Repeat("-", 60))
	for _, k := range keys {
		fmt.Printf("%-20s %-36s %s\n", k, output.FormatValue(entry.Answers[k]), output.MutedStyle.Render(entry.Sources[k]))
	}

	if len(entry.Excluded) > 0 {
		fmt.Println("\nExcluded patterns:")
		fmt.Println(strings.Repeat("-", 60))
		for _, p := range entry.Excluded {
			fmt.Printf("  %s\n", p)
		}
	}

	if len(entry.Files) > 0 {
		fmt.Println("\nFiles:")
		fmt.Println(strings.Repeat("-", 60))
		for _, f := range entry.Files {
			fmt.Printf("%-11s  %9s  %s\n", f.Mode, humanize.Bytes(uint64(f.Size)), f.Path)
		}
	}
	return nil
}

// runHistoryClean removes old entries.
func runHistoryClean(cmd *cobra.Command, args []string) error {
	m, err := getManifest()
	if err != nil {
		return err
	}

	days := historyDays
	if days <= 0 && settings != nil {
		days = settings.History.RetentionDays
	}
	if days <= 0 {
		days = config.DefaultRetentionDays
	}

	printInfo("Cleaning history entries older than %d days...", days)
	removed, err := m.Cleanup(days)
	if err != nil {
		return fmt.Errorf("failed to clean history: %w", err)
	}
	printInfo("Removed %d entries.", removed)
	return nil
}

// truncateString truncates a string to maxLen, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
