package main

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Dosada05/judo-pools/app"
	"github.com/Dosada05/judo-pools/brackets"
)

func newPairingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pairings <pool_size>",
		Short: "Print the bout order of a pool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 0 {
				return fmt.Errorf("pool size must be a non-negative integer, got %q", args[0])
			}
			out := cmd.OutOrStdout()
			pairs := brackets.Pairings(n)
			for i, p := range pairs {
				fmt.Fprintf(out, "%2d. %d - %d\n", i+1, p.A, p.B)
			}
			fmt.Fprintf(out, "%d bouts\n", len(pairs))
			return nil
		},
	}
}

func newStatusCmd() *cobra.Command {
	var categoryID int
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the pools of a category with their progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app.App) error {
				pools, err := a.Pools.Pools(cmd.Context(), categoryID)
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "POOL\tSIZE\tSTATUS\tBOUTS\tTABLE\tLEADER")
				for _, p := range pools {
					leader := "-"
					if len(p.Standings) > 0 && p.Progress.Played > 0 {
						leader = p.Standings[0].Name
					}
					fmt.Fprintf(w, "%d\t%d\t%s\t%d/%d\t%d\t%s\n",
						p.Key.PoolNumber, len(p.Roster), p.Progress.Status, p.Progress.Played, p.Progress.Total, p.Assignment.TableNumber, leader)
				}
				return w.Flush()
			})
		},
	}
	cmd.Flags().IntVar(&categoryID, "category", 0, "Category id")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}

func newBalanceCmd() *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Spread the pools that have not started over the tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app.App) error {
				res, err := a.Tables.Balance(cmd.Context(), dryRun)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				for i, load := range res.Plan.Loads {
					fmt.Fprintf(out, "table %d: %d bouts\n", i+1, load)
				}
				for _, c := range res.Changed {
					fmt.Fprintf(out, "category %d pool %d -> table %d (#%d)\n", c.Key.CategoryID, c.Key.PoolNumber, c.Table, c.Order+1)
				}
				if dryRun {
					fmt.Fprintln(out, "dry run: nothing saved")
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Only print the plan")
	return cmd
}

func newExportCmd() *cobra.Command {
	var (
		categoryID int
		outPath    string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the score sheet workbook of a category",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app.App) error {
				sheet, err := a.Exports.ScoreSheet(cmd.Context(), categoryID)
				if err != nil {
					return err
				}
				path := outPath
				if path == "" {
					path = sheet.Filename
				}
				if err := os.WriteFile(path, sheet.Data, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", path, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
				if sheet.URL != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "archived at %s\n", sheet.URL)
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&categoryID, "category", 0, "Category id")
	cmd.Flags().StringVar(&outPath, "out", "", "Output file (default: generated name)")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}

func newSeedCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load categories and competitors from a TOML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app.App) error {
				res, err := a.ApplySeedFile(cmd.Context(), path)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d categories, %d competitors imported\n", res.Categories, res.Competitors)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&path, "file", "", "Seed file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newDemoCmd() *cobra.Command {
	var (
		categoryID int
		count      int
		seed       uint64
	)
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Register generated competitors for rehearsals",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app.App) error {
				res, err := a.Seeds.Demo(cmd.Context(), categoryID, count, seed)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d competitors registered\n", res.Competitors)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&categoryID, "category", 0, "Category id")
	cmd.Flags().IntVar(&count, "count", 12, "Number of competitors")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "Random seed")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}
