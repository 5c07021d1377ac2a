package main

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cvgo/cvgo/internal/anonview"
	"github.com/cvgo/cvgo/internal/config"
)

// --- students ---

var studentsCmd = &cobra.Command{
	Use:   "students",
	Short: "Browse the anonymized candidate pool",
	Long: `Browse the anonymized candidate pool.

Examples:
  cvgo students --city ירושלים --limit 10
  cvgo students --search hebrew --gpa-min 85
  cvgo students --completed all`,
	RunE: func(cmd *cobra.Command, args []string) error {
		q := url.Values{}
		for flag, param := range map[string]string{
			"search":    "search",
			"city":      "city",
			"degree":    "currentDegree",
			"completed": "completed",
			"gpa-min":   "gpaMin",
			"gpa-max":   "gpaMax",
		} {
			if v, _ := cmd.Flags().GetString(flag); v != "" {
				q.Set(param, v)
			}
		}
		if limit, _ := cmd.Flags().GetInt("limit"); limit > 0 {
			q.Set("limit", fmt.Sprintf("%d", limit))
		}
		if page, _ := cmd.Flags().GetInt("page"); page > 1 {
			q.Set("page", fmt.Sprintf("%d", page))
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(context.Background(), "/students?"+q.Encode())
		if err != nil {
			return err
		}

		var result struct {
			Students []anonview.View `json:"students"`
			Total    int             `json:"total"`
			Page     int             `json:"page"`
		}
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		if len(result.Students) == 0 {
			fmt.Println("No candidates found.")
			return nil
		}

		for _, v := range result.Students {
			line := fmt.Sprintf("%s  %3d%%  %s",
				colorize(colorCyan, v.ID[:8]),
				v.CompletionScore,
				v.Education.Institution,
			)
			if v.Location.City != "" {
				line += "  " + v.Location.City
			}
			if v.Education.CurrentDegree != "" {
				line += "  " + colorize(colorBold, v.Education.CurrentDegree)
			}
			fmt.Println(line)
		}
		fmt.Printf("\n%d candidates (page %d)\n", result.Total, result.Page)
		return nil
	},
}

func init() {
	studentsCmd.Flags().String("search", "", "free-text search over name, institution, field and city")
	studentsCmd.Flags().String("city", "", "filter by city")
	studentsCmd.Flags().String("degree", "", "filter by degree type")
	studentsCmd.Flags().String("completed", "", `completion filter: "true" (default), "false" or "all"`)
	studentsCmd.Flags().String("gpa-min", "", "minimum GPA")
	studentsCmd.Flags().String("gpa-max", "", "maximum GPA")
	studentsCmd.Flags().Int("limit", 20, "maximum number of results")
	studentsCmd.Flags().Int("page", 1, "result page")
}

// --- stats ---

type poolStats struct {
	Total          int `json:"total"`
	Completed      int `json:"completed"`
	InProgress     int `json:"inProgress"`
	CompletionRate int `json:"completionRate"`
}

func fetchStats() (poolStats, error) {
	client, err := newAPIClient()
	if err != nil {
		return poolStats{}, err
	}
	resp, err := client.get(context.Background(), "/statistics")
	if err != nil {
		return poolStats{}, err
	}
	var stats poolStats
	if err := decodeJSON(resp, &stats); err != nil {
		return poolStats{}, err
	}
	return stats, nil
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show candidate pool statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		stats, err := fetchStats()
		if err != nil {
			return err
		}

		printStatus("Total candidates", "%d", stats.Total)
		printStatus("Completed profiles", "%d", stats.Completed)
		printStatus("In progress", "%d", stats.InProgress)
		printStatus("Completion rate", "%d%%", stats.CompletionRate)
		return nil
	},
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		keys := config.ShowAll(cfg)
		for _, k := range keys {
			fmt.Printf("  %s = %s\n", colorize(colorBold, k.Key), k.Value)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			if strings.Contains(err.Error(), "unknown config key") {
				printWarning("valid keys: %s", strings.Join(config.ValidKeys(), ", "))
			}
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Remove a configuration value so the default applies",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := args[0]

		if err := config.UnsetKey(key); err != nil {
			if strings.Contains(err.Error(), "unknown config key") {
				printWarning("valid keys: %s", strings.Join(config.ValidKeys(), ", "))
			}
			return err
		}

		printSuccess("Unset %s", key)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configUnsetCmd)
}
