package main

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hkaya/meallogger/internal/estimator"
	"github.com/hkaya/meallogger/internal/models"
	"github.com/hkaya/meallogger/internal/uuid"
)

var estimateFlags struct {
	image    string
	log      bool
	date     string
	mealType string
}

var estimateCmd = &cobra.Command{
	Use:   "estimate [description...]",
	Short: "Estimate the macros of a meal with Gemini",
	Long: `Estimate protein, carbs, fat and sugar for a meal from a photo
(--image) or a free-text description. Requires GEMINI_API_KEY.

With --log the estimate is written straight into the meal log.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if estimateFlags.image == "" && len(args) == 0 {
			return fmt.Errorf("describe the meal or pass --image")
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		ctx := cmd.Context()
		gem, err := estimator.NewGemini(ctx, a.cfg.GeminiAPIKey)
		if err != nil {
			return err
		}
		defer gem.Close()

		var est *estimator.Estimate
		if estimateFlags.image != "" {
			data, err := os.ReadFile(estimateFlags.image)
			if err != nil {
				return err
			}
			mimeType := mime.TypeByExtension(filepath.Ext(estimateFlags.image))
			if mimeType == "" {
				mimeType = "image/jpeg"
			}
			est, err = gem.EstimateFromImage(ctx, mimeType, data)
			if err != nil {
				return err
			}
		} else {
			est, err = gem.EstimateFromText(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
		}

		calories := models.DerivedCalories(est.Protein, est.Carbs, est.Fat)
		fmt.Printf("%s (~%d kcal, confidence %s)\n", est.Name, calories, est.Confidence)
		fmt.Printf("  Protein: %d g\n  Carbs:   %d g\n  Fat:     %d g\n  Sugar:   %d g\n",
			est.Protein, est.Carbs, est.Fat, est.Sugar)
		if est.Notes != "" {
			fmt.Printf("  Note: %s\n", est.Notes)
		}

		if !estimateFlags.log {
			return nil
		}

		date := estimateFlags.date
		if date == "" {
			date = time.Now().Format(models.DateFormat)
		}
		meal := &models.MealRecord{
			SyncID:   uuid.NewSyncID(),
			Date:     date,
			Name:     est.Name,
			Type:     models.ParseMealType(estimateFlags.mealType),
			Calories: calories,
			Protein:  est.Protein,
			Carbs:    est.Carbs,
			Fat:      est.Fat,
			Sugar:    est.Sugar,
			Notes:    est.Notes,
		}
		id, err := a.store.CreateMeal(meal)
		if err != nil {
			return err
		}
		fmt.Printf("Logged %q (#%d)\n", meal.Name, id)
		return nil
	},
}

func init() {
	estimateCmd.Flags().StringVar(&estimateFlags.image, "image", "", "path to a meal photo")
	estimateCmd.Flags().BoolVar(&estimateFlags.log, "log", false, "log the estimate as a meal")
	estimateCmd.Flags().StringVar(&estimateFlags.date, "date", "", "calendar date for --log (default today)")
	estimateCmd.Flags().StringVar(&estimateFlags.mealType, "type", "snack", "meal type for --log")

	rootCmd.AddCommand(estimateCmd)
}
