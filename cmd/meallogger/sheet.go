package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var sheetCmd = &cobra.Command{
	Use:   "sheet",
	Short: "Manage the remote spreadsheet target",
}

var sheetListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your Google Sheets spreadsheets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		client, err := a.sheetsClient(cmd.Context())
		if err != nil {
			return err
		}
		refs, err := client.ListSpreadsheets(cmd.Context())
		if err != nil {
			return err
		}
		if len(refs) == 0 {
			fmt.Println("No spreadsheets found.")
			return nil
		}
		for _, ref := range refs {
			fmt.Printf("  %-44s  %s\n", ref.ID, ref.Name)
		}
		return nil
	},
}

var sheetSelectCmd = &cobra.Command{
	Use:   "select <spreadsheet-id> [name]",
	Short: "Select an existing spreadsheet as the sync target",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		cfg, err := a.settings.Load()
		if err != nil {
			return err
		}
		cfg.SheetID = args[0]
		if len(args) == 2 {
			cfg.SheetName = args[1]
		} else {
			cfg.SheetName = args[0]
		}
		// Switching targets starts a fresh sync history for this device.
		cfg.LastSyncTime = ""
		if err := a.settings.Save(cfg); err != nil {
			return err
		}
		fmt.Printf("Selected %s. Run 'meallogger sync' to reconcile.\n", cfg.SheetName)
		return nil
	},
}

var sheetCreateCmd = &cobra.Command{
	Use:   "create [title]",
	Short: "Create a new spreadsheet and make it the sync target",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		engine, err := a.engine(cmd.Context())
		if err != nil {
			return err
		}

		title := ""
		if len(args) == 1 {
			title = args[0]
		}
		res, err := engine.CreateRemoteTarget(cmd.Context(), title)
		if err != nil {
			return err
		}
		if !res.Skipped {
			printRoundSummary(res)
		}
		return nil
	},
}

var sheetStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the selected sync target",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		cfg, err := a.settings.Load()
		if err != nil {
			return err
		}
		if !cfg.HasRemoteTarget() {
			fmt.Println("No sync target selected. Use 'meallogger sheet create' or 'meallogger sheet select'.")
			return nil
		}
		fmt.Printf("Target:    %s (%s)\n", cfg.SheetName, cfg.SheetID)
		if cfg.LastSyncTime == "" {
			fmt.Println("Last sync: never")
		} else {
			fmt.Printf("Last sync: %s\n", cfg.LastSyncTime)
		}
		return nil
	},
}

func init() {
	sheetCmd.AddCommand(sheetListCmd, sheetSelectCmd, sheetCreateCmd, sheetStatusCmd)
	rootCmd.AddCommand(sheetCmd)
}
