// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/report-engine/internal/store"
	"github.com/pdiddy/report-engine/pkg/types"
)

// openStore opens the report history using the configured data directory.
func openStore() (*store.Store, error) {
	viper.SetDefault("store.data_dir", "data")
	return store.NewStore(types.StoreConfig{DataDir: viper.GetString("store.data_dir")})
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List stored pipeline runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		summaries, err := st.List(cmd.Context(), limit)
		if err != nil {
			return err
		}
		if len(summaries) == 0 {
			fmt.Println("No stored reports.")
			return nil
		}

		fmt.Printf("%-36s  %-20s  %-6s  %s\n", "ID", "Created", "Status", "Query")
		for _, s := range summaries {
			status := "ok"
			if s.Failed {
				status = "failed"
			}
			fmt.Printf("%-36s  %-20s  %-6s  %s\n",
				s.ID, s.CreatedAt.Format("2006-01-02 15:04:05"), status, s.Query)
		}
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print one stored report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		report, err := st.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		asJSON, _ := cmd.Flags().GetBool("json")
		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}
		return writeReport(report, false, true)
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove one stored report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Println("deleted", args[0])
		return nil
	},
}

func init() {
	historyCmd.Flags().Int("limit", 20, "maximum number of runs to list")
	showCmd.Flags().Bool("json", false, "output the report as JSON")

	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(deleteCmd)
}
