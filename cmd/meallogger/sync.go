package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hkaya/meallogger/internal/sync"
	"github.com/hkaya/meallogger/internal/sync/conflict"
	"github.com/hkaya/meallogger/internal/sync/scheduler"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Reconcile the local log with the remote spreadsheet",
	Long: `Run one sync round: pull the remote rows, diff against the local log,
surface conflicts for resolution, merge and push the result back.

Conflicts are shown pairwise; for each you choose which version to keep.
Canceling keeps the local data untouched.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		ctx := cmd.Context()
		engine, err := a.engine(ctx)
		if err != nil {
			return err
		}

		res, err := engine.SmartSync(ctx)
		if err != nil {
			return err
		}
		if res.Skipped {
			fmt.Printf("Sync skipped: %s\n", res.SkipReason)
			return nil
		}
		if res.AwaitingResolution {
			return resolveInteractively(ctx, engine)
		}
		printRoundSummary(res)
		return nil
	},
}

// resolveInteractively walks the pending conflicts on the terminal, then
// resumes the suspended round with the collected choices.
func resolveInteractively(ctx context.Context, engine *sync.Engine) error {
	pending := engine.Resolver().Pending()
	if pending == nil {
		return nil
	}

	fmt.Printf("\n%d conflict(s) between this device and the spreadsheet:\n\n", len(pending.Conflicts))
	reader := bufio.NewReader(os.Stdin)
	choices := make(map[string]conflict.Choice, len(pending.Conflicts))

	for i, c := range pending.Conflicts {
		fmt.Printf("[%d/%d] %s\n", i+1, len(pending.Conflicts), c.Local.Date)
		fmt.Printf("  this device: %-30s %4d kcal  P%-3d C%-3d F%-3d (modified %s)\n",
			c.Local.Name, c.Local.Calories, c.Local.Protein, c.Local.Carbs, c.Local.Fat, c.Local.ModifiedAt)
		fmt.Printf("  spreadsheet: %-30s %4d kcal  P%-3d C%-3d F%-3d (modified %s)\n",
			c.Remote.Name, c.Remote.Calories, c.Remote.Protein, c.Remote.Carbs, c.Remote.Fat, c.Remote.ModifiedAt)

		for {
			fmt.Print("  keep [t]his device, [s]preadsheet, or [c]ancel sync? ")
			line, err := reader.ReadString('\n')
			if err != nil {
				engine.Cancel()
				fmt.Println("\nSync canceled, local data kept.")
				return nil
			}
			switch strings.ToLower(strings.TrimSpace(line)) {
			case "t", "this":
				choices[c.SyncID] = conflict.ChoiceLocal
			case "s", "spreadsheet":
				choices[c.SyncID] = conflict.ChoiceRemote
			case "c", "cancel":
				engine.Cancel()
				fmt.Println("Sync canceled, local data kept.")
				return nil
			default:
				continue
			}
			break
		}
	}

	res, err := engine.ResolveConflicts(ctx, choices)
	if err != nil {
		return err
	}
	printRoundSummary(res)
	return nil
}

func printRoundSummary(res *sync.Result) {
	if res.Imported > 0 {
		fmt.Printf("Imported %d meal(s) from the spreadsheet\n", res.Imported)
	}
	if res.Overwritten > 0 {
		fmt.Printf("Overwrote %d local meal(s) with the spreadsheet version\n", res.Overwritten)
	}
	fmt.Printf("Pushed %d meal(s)\n", res.Pushed)
}

var loadFlags struct {
	force bool
}

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Replace the local log with the spreadsheet contents",
	Long: `Discard the local log and re-import everything from the remote
spreadsheet. Daily targets stored in the spreadsheet are adopted too.

This is destructive; pass --force to skip the confirmation.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !loadFlags.force {
			fmt.Print("This replaces ALL local meals with the spreadsheet contents. Continue? [y/N] ")
			reader := bufio.NewReader(os.Stdin)
			line, _ := reader.ReadString('\n')
			if strings.ToLower(strings.TrimSpace(line)) != "y" {
				fmt.Println("Aborted.")
				return nil
			}
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		engine, err := a.engine(cmd.Context())
		if err != nil {
			return err
		}
		_, err = engine.LoadFromRemote(cmd.Context())
		return err
	},
}

var watchFlags struct {
	interval time.Duration
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Sync periodically in the background until interrupted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		engine, err := a.engine(ctx)
		if err != nil {
			return err
		}

		sched := scheduler.New(engine, watchFlags.interval)
		sched.Start(ctx)
		defer sched.Stop()

		fmt.Printf("Syncing every %s, Ctrl-C to stop.\n", sched.Interval())
		<-ctx.Done()
		return nil
	},
}

var authSetTokenCmd = &cobra.Command{
	Use:   "set-token <access-token>",
	Short: "Cache a Google OAuth access token for sync",
	Args:  cobra.ExactArgs(1),
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
		cfg.AccessToken = args[0]
		if err := a.settings.Save(cfg); err != nil {
			return err
		}
		fmt.Println("Token saved.")
		return nil
	},
}

var authRevokeCmd = &cobra.Command{
	Use:   "revoke",
	Short: "Forget the cached access token",
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
		cfg.AccessToken = ""
		if err := a.settings.Save(cfg); err != nil {
			return err
		}
		fmt.Println("Token forgotten. Local data is untouched.")
		return nil
	},
}

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the Google credential used for sync",
}

func init() {
	loadCmd.Flags().BoolVar(&loadFlags.force, "force", false, "skip the confirmation prompt")
	watchCmd.Flags().DurationVar(&watchFlags.interval, "interval", 0, "sync interval (default 5m)")
	authCmd.AddCommand(authSetTokenCmd, authRevokeCmd)
	rootCmd.AddCommand(syncCmd, loadCmd, watchCmd, authCmd)
}
