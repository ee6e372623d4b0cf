package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var targetSetFlags struct {
	protein int
	carbs   int
	fat     int
	sugar   int
}

var targetCmd = &cobra.Command{
	Use:   "target",
	Short: "Manage daily macro targets",
}

var targetSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Set daily macro targets in grams",
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
		if cmd.Flags().Changed("protein") {
			cfg.Targets.Protein = targetSetFlags.protein
		}
		if cmd.Flags().Changed("carbs") {
			cfg.Targets.Carbs = targetSetFlags.carbs
		}
		if cmd.Flags().Changed("fat") {
			cfg.Targets.Fat = targetSetFlags.fat
		}
		if cmd.Flags().Changed("sugar") {
			cfg.Targets.Sugar = targetSetFlags.sugar
		}
		if err := a.settings.Save(cfg); err != nil {
			return err
		}
		fmt.Printf("Targets: P%d C%d F%d S%d (pushed to the spreadsheet on the next sync)\n",
			cfg.Targets.Protein, cfg.Targets.Carbs, cfg.Targets.Fat, cfg.Targets.Sugar)
		return nil
	},
}

var targetShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the daily macro targets",
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
		if cfg.Targets.IsZero() {
			fmt.Println("No targets set. Use 'meallogger target set'.")
			return nil
		}
		fmt.Printf("Protein: %d g\nCarbs:   %d g\nFat:     %d g\nSugar:   %d g\n",
			cfg.Targets.Protein, cfg.Targets.Carbs, cfg.Targets.Fat, cfg.Targets.Sugar)
		return nil
	},
}

func init() {
	targetSetCmd.Flags().IntVar(&targetSetFlags.protein, "protein", 0, "daily protein target in grams")
	targetSetCmd.Flags().IntVar(&targetSetFlags.carbs, "carbs", 0, "daily carbohydrate target in grams")
	targetSetCmd.Flags().IntVar(&targetSetFlags.fat, "fat", 0, "daily fat target in grams")
	targetSetCmd.Flags().IntVar(&targetSetFlags.sugar, "sugar", 0, "daily sugar target in grams")

	targetCmd.AddCommand(targetSetCmd, targetShowCmd)
	rootCmd.AddCommand(targetCmd)
}
