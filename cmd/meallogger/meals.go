package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/hkaya/meallogger/internal/models"
	"github.com/hkaya/meallogger/internal/uuid"
)

var addFlags struct {
	date     string
	mealType string
	calories int
	protein  int
	carbs    int
	fat      int
	sugar    int
	notes    string
}

var addCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Log a meal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		date := addFlags.date
		if date == "" {
			date = time.Now().Format(models.DateFormat)
		}
		if _, err := time.Parse(models.DateFormat, date); err != nil {
			return fmt.Errorf("invalid date %q, want YYYY-MM-DD", date)
		}

		mealType := models.MealType(addFlags.mealType)
		if !mealType.IsValid() {
			return fmt.Errorf("invalid type %q, want breakfast, lunch, dinner or snack", addFlags.mealType)
		}

		calories := addFlags.calories
		if calories == 0 {
			calories = models.DerivedCalories(addFlags.protein, addFlags.carbs, addFlags.fat)
		}

		meal := &models.MealRecord{
			SyncID:   uuid.NewSyncID(),
			Date:     date,
			Name:     args[0],
			Type:     mealType,
			Calories: calories,
			Protein:  addFlags.protein,
			Carbs:    addFlags.carbs,
			Fat:      addFlags.fat,
			Sugar:    addFlags.sugar,
			Notes:    addFlags.notes,
		}
		id, err := a.store.CreateMeal(meal)
		if err != nil {
			return err
		}
		fmt.Printf("Logged %q (#%d, %d kcal)\n", meal.Name, id, meal.Calories)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list [date]",
	Short: "List the meals of a day with macro totals",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		date := time.Now().Format(models.DateFormat)
		if len(args) == 1 {
			date = args[0]
		}
		if _, err := time.Parse(models.DateFormat, date); err != nil {
			return fmt.Errorf("invalid date %q, want YYYY-MM-DD", date)
		}

		meals, err := a.store.GetMealsByDate(date)
		if err != nil {
			return err
		}
		if len(meals) == 0 {
			fmt.Printf("No meals logged for %s\n", date)
			return nil
		}

		fmt.Printf("Meals for %s\n\n", date)
		for _, m := range meals {
			fmt.Printf("  #%-4d %-10s %-30s %4d kcal  P%-3d C%-3d F%-3d S%-3d\n",
				m.ID, m.Type, m.Name, m.Calories, m.Protein, m.Carbs, m.Fat, m.Sugar)
			if m.Notes != "" {
				fmt.Printf("        %s\n", m.Notes)
			}
		}

		tot := models.SumDay(meals)
		fmt.Printf("\n  Total: %d kcal  P%d C%d F%d S%d\n", tot.Calories, tot.Protein, tot.Carbs, tot.Fat, tot.Sugar)

		cfg, err := a.settings.Load()
		if err != nil {
			return err
		}
		if !cfg.Targets.IsZero() {
			fmt.Printf("  Target:          P%d C%d F%d S%d\n",
				cfg.Targets.Protein, cfg.Targets.Carbs, cfg.Targets.Fat, cfg.Targets.Sugar)
		}
		return nil
	},
}

var editFlags struct {
	name     string
	date     string
	mealType string
	calories int
	protein  int
	carbs    int
	fat      int
	sugar    int
	notes    string
}

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a logged meal",
	Long: `Change the fields of a logged meal. Only the flags you pass are
changed; the sync identity of the record is kept so the edit propagates
to other devices on the next sync.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid meal id %q", args[0])
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		meal, err := a.store.GetMealByID(id)
		if err != nil {
			return err
		}

		if cmd.Flags().Changed("name") {
			meal.Name = editFlags.name
		}
		if cmd.Flags().Changed("date") {
			if _, err := time.Parse(models.DateFormat, editFlags.date); err != nil {
				return fmt.Errorf("invalid date %q, want YYYY-MM-DD", editFlags.date)
			}
			meal.Date = editFlags.date
		}
		if cmd.Flags().Changed("type") {
			mealType := models.MealType(editFlags.mealType)
			if !mealType.IsValid() {
				return fmt.Errorf("invalid type %q, want breakfast, lunch, dinner or snack", editFlags.mealType)
			}
			meal.Type = mealType
		}
		macrosChanged := false
		if cmd.Flags().Changed("protein") {
			meal.Protein = editFlags.protein
			macrosChanged = true
		}
		if cmd.Flags().Changed("carbs") {
			meal.Carbs = editFlags.carbs
			macrosChanged = true
		}
		if cmd.Flags().Changed("fat") {
			meal.Fat = editFlags.fat
			macrosChanged = true
		}
		if cmd.Flags().Changed("sugar") {
			meal.Sugar = editFlags.sugar
		}
		if cmd.Flags().Changed("calories") {
			meal.Calories = editFlags.calories
		} else if macrosChanged {
			meal.Calories = models.DerivedCalories(meal.Protein, meal.Carbs, meal.Fat)
		}
		if cmd.Flags().Changed("notes") {
			meal.Notes = editFlags.notes
		}

		meal.Touch()
		if err := a.store.UpdateMeal(meal); err != nil {
			return err
		}
		fmt.Printf("Updated %q (#%d, %d kcal)\n", meal.Name, meal.ID, meal.Calories)
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a logged meal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid meal id %q", args[0])
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.store.DeleteMeal(id); err != nil {
			return err
		}
		fmt.Printf("Deleted meal #%d\n", id)
		return nil
	},
}

func init() {
	addCmd.Flags().StringVar(&addFlags.date, "date", "", "calendar date (YYYY-MM-DD, default today)")
	addCmd.Flags().StringVar(&addFlags.mealType, "type", "snack", "breakfast, lunch, dinner or snack")
	addCmd.Flags().IntVar(&addFlags.calories, "calories", 0, "calories (default derived from macros)")
	addCmd.Flags().IntVar(&addFlags.protein, "protein", 0, "protein in grams")
	addCmd.Flags().IntVar(&addFlags.carbs, "carbs", 0, "carbohydrates in grams")
	addCmd.Flags().IntVar(&addFlags.fat, "fat", 0, "fat in grams")
	addCmd.Flags().IntVar(&addFlags.sugar, "sugar", 0, "sugar in grams")
	addCmd.Flags().StringVar(&addFlags.notes, "notes", "", "free-form notes")

	editCmd.Flags().StringVar(&editFlags.name, "name", "", "meal name")
	editCmd.Flags().StringVar(&editFlags.date, "date", "", "calendar date (YYYY-MM-DD)")
	editCmd.Flags().StringVar(&editFlags.mealType, "type", "", "breakfast, lunch, dinner or snack")
	editCmd.Flags().IntVar(&editFlags.calories, "calories", 0, "calories (default re-derived from macros)")
	editCmd.Flags().IntVar(&editFlags.protein, "protein", 0, "protein in grams")
	editCmd.Flags().IntVar(&editFlags.carbs, "carbs", 0, "carbohydrates in grams")
	editCmd.Flags().IntVar(&editFlags.fat, "fat", 0, "fat in grams")
	editCmd.Flags().IntVar(&editFlags.sugar, "sugar", 0, "sugar in grams")
	editCmd.Flags().StringVar(&editFlags.notes, "notes", "", "free-form notes")

	rootCmd.AddCommand(addCmd, listCmd, editCmd, deleteCmd)
}
