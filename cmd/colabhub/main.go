package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/colabhub/colabhub/internal/config"
	"github.com/colabhub/colabhub/internal/domain"
	"github.com/colabhub/colabhub/internal/repository/postgres"
	"github.com/colabhub/colabhub/internal/service"
	"github.com/colabhub/colabhub/pkg/logger/slogpretty"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}

// app bundles everything the subcommands need.
type app struct {
	log       *slog.Logger
	cfg       *config.Config
	users     *service.UserService
	projects  *service.ProjectService
	tasks     *service.TaskService
	solutions *service.SolutionService
	stats     *service.StatsService
	cascade   *service.CascadeDeleter
	close     func() error
}

func run(ctx context.Context) error {
	cfg := config.MustLoad()
	log := slogpretty.SetupLogger(cfg.Env)

	log.Info("starting colabhub", slog.String("env", cfg.Env))

	db, err := postgres.NewDB(cfg.Postgres, log)
	if err != nil {
		return fmt.Errorf("failed to init db: %v", err)
	}

	pool := db.DB()

	users := postgres.NewUserRepository(pool, log)
	profiles := postgres.NewProfileRepository(pool, log)
	projects := postgres.NewProjectRepository(pool, log)
	tasks := postgres.NewTaskRepository(pool, log)
	solutions := postgres.NewSolutionRepository(pool, log)
	ratings := postgres.NewRatingRepository(pool, log)

	a := &app{
		log:       log,
		cfg:       cfg,
		users:     service.NewUserService(pool, log, users, profiles),
		projects:  service.NewProjectService(pool, log, projects, tasks),
		tasks:     service.NewTaskService(pool, log, tasks, projects),
		solutions: service.NewSolutionService(pool, log, tasks, solutions, ratings),
		stats:     service.NewStatsService(log, cfg.Ranking, users, projects, ratings),
		cascade:   service.NewCascadeDeleter(pool, log, users, projects, tasks, solutions, ratings),
		close:     pool.Close,
	}
	defer func() {
		if err := a.close(); err != nil {
			log.Error("db close failed", slog.String("error", err.Error()))
		}
	}()

	root := &cobra.Command{
		Use:           "colabhub",
		Short:         "Collaborative work tracking over PostgreSQL",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		seedCmd(a),
		rankingCmd(a),
		statsCmd(a),
		progressCmd(a),
		overdueCmd(a),
		deleteCmd(a),
	)

	return root.ExecuteContext(ctx)
}

// seedCmd loads a small demo dataset: two users with profiles, a project
// with tasks, competing solutions and enough ratings to enter the ranking.
func seedCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert a demo dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			ana, err := a.users.Register(ctx, "", "Ana", "ana@example.com", "hash-ana")
			if err != nil {
				return err
			}
			bruno, err := a.users.Register(ctx, "", "Bruno", "bruno@example.com", "hash-bruno")
			if err != nil {
				return err
			}

			profile := domain.NewProfile("", ana.ID, "Backend engineer", "")
			for _, skill := range []string{"go", "postgres", "sql"} {
				if err := profile.AddSkill(skill); err != nil {
					return err
				}
			}
			if err := a.users.SaveProfile(ctx, profile); err != nil {
				return err
			}

			project, err := a.projects.Create(ctx, "", "Platform rewrite", "Move the platform onto the new stack", ana.ID)
			if err != nil {
				return err
			}

			task, err := a.tasks.Create(ctx, "", "Design the schema", "Tables, keys, constraints", project.ID, bruno.ID)
			if err != nil {
				return err
			}

			solution, err := a.solutions.Submit(ctx, "", "Normalized schema", "Six tables, plain FKs", task.ID, bruno.ID)
			if err != nil {
				return err
			}

			for i, score := range []int{5, 5, 4} {
				rater, err := a.users.Register(ctx, "", fmt.Sprintf("Rater %d", i+1),
					fmt.Sprintf("rater%d@example.com", i+1), "hash-rater")
				if err != nil {
					return err
				}
				if _, err := a.solutions.Rate(ctx, solution.ID, score, "solid work", rater.ID); err != nil {
					return err
				}
			}

			a.log.Info("demo dataset loaded", slog.String("project_id", project.ID))

			return nil
		},
	}
}

func rankingCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "ranking",
		Short: "Show the best-rated solutions",
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := a.stats.Ranking(cmd.Context(), limit)
			if err != nil {
				return err
			}

			tw := table.NewWriter()
			tw.SetOutputMirror(os.Stdout)
			tw.AppendHeader(table.Row{"#", "Solution", "Author", "Ratings", "Average", "Quality"})
			for i, e := range entries {
				tw.AppendRow(table.Row{
					i + 1, e.Title, e.AuthorName, e.RatingCount,
					fmt.Sprintf("%.2f", e.Average),
					domain.QualityFor(e.Average, domain.SchemeDefault),
				})
			}
			tw.Render()

			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "maximum number of entries")

	return cmd
}

func statsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show global rating statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			overall, err := a.stats.Overall(ctx)
			if err != nil {
				return err
			}
			distribution, err := a.stats.ScoreDistribution(ctx)
			if err != nil {
				return err
			}

			tw := table.NewWriter()
			tw.SetOutputMirror(os.Stdout)
			tw.AppendHeader(table.Row{"Average", "Min", "Max", "Count"})
			tw.AppendRow(table.Row{fmt.Sprintf("%.2f", overall.Average), overall.Min, overall.Max, overall.Count})
			tw.Render()

			dw := table.NewWriter()
			dw.SetOutputMirror(os.Stdout)
			dw.AppendHeader(table.Row{"Score", "Ratings"})
			for score := domain.MinScore; score <= domain.MaxScore; score++ {
				dw.AppendRow(table.Row{score, distribution[score]})
			}
			dw.Render()

			return nil
		},
	}
}

func progressCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "progress <project-id>",
		Short: "Show a project's completion percentage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			progress, err := a.projects.Progress(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Printf("%.1f%%\n", progress)

			return nil
		},
	}
}

func overdueCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "overdue",
		Short: "List unconcluded tasks past their deadline",
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := a.tasks.ListOverdue(cmd.Context(), time.Now())
			if err != nil {
				return err
			}

			tw := table.NewWriter()
			tw.SetOutputMirror(os.Stdout)
			tw.AppendHeader(table.Row{"ID", "Title", "Priority", "Deadline"})
			for _, t := range tasks {
				deadline := ""
				if t.Deadline != nil {
					deadline = t.Deadline.Format(time.DateOnly)
				}
				tw.AppendRow(table.Row{t.ID, t.Title, t.Priority, deadline})
			}
			tw.Render()

			return nil
		},
	}
}

// deleteCmd runs the cascade coordinator for the given entity kind.
func deleteCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <kind> <id>",
		Short: "Delete an entity and everything depending on it",
		Long: "Deletes a project, task, solution or rating together with its whole " +
			"dependent subtree, atomically. 'user' deactivates instead of deleting.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			kind, id := args[0], args[1]

			switch kind {
			case "project":
				return a.cascade.DeleteProject(ctx, id)
			case "task":
				return a.cascade.DeleteTask(ctx, id)
			case "solution":
				return a.cascade.DeleteSolution(ctx, id)
			case "rating":
				return a.cascade.DeleteRating(ctx, id)
			case "user":
				return a.cascade.DeactivateUser(ctx, id)
			default:
				return fmt.Errorf("unknown kind %s", strconv.Quote(kind))
			}
		},
	}

	return cmd
}
