package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/pushdeploy/pkg/cli/config"
	"github.com/m-mizutani/pushdeploy/pkg/domain/model"
	"github.com/m-mizutani/pushdeploy/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdStatus() *cli.Command {
	var (
		githubCfg config.GitHub
		deployCfg config.Deploy
		storeCfg  config.Store
		logLines  int
	)

	var flags []cli.Flag
	flags = append(flags, githubCfg.Flags()...)
	flags = append(flags, deployCfg.Flags()...)
	flags = append(flags, storeCfg.Flags()...)
	flags = append(flags, &cli.IntFlag{
		Name:        "lines",
		Aliases:     []string{"n"},
		Usage:       "Number of log entries to show",
		Value:       usecase.DefaultSummaryLogCount,
		Destination: &logLines,
	})

	return &cli.Command{
		Name:  "status",
		Usage: "Show last push, last deployed commit and recent activity",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			store, err := storeCfg.Configure(ctx, deployCfg.BaseDir)
			if err != nil {
				return goerr.Wrap(err, "failed to open event store")
			}
			defer store.Close()

			githubClient, err := githubCfg.NewClient()
			if err != nil {
				return goerr.Wrap(err, "failed to create GitHub client")
			}
			poller, err := usecase.NewPoller(githubClient, store, githubCfg.Repository,
				usecase.WithPollBranch(githubCfg.Branch),
				usecase.WithPollTimeout(githubCfg.PollTimeout),
			)
			if err != nil {
				return err
			}

			dashboard := usecase.NewDashboard(store, githubCfg.RepoDisplayName(), deployCfg.OutputLogPath(),
				usecase.WithUpstreamChecker(poller),
			)

			summary, err := dashboard.Summary(ctx)
			if err != nil {
				return err
			}
			logs, err := dashboard.Logs(ctx, logLines)
			if err != nil {
				return err
			}

			printStatus(os.Stdout, summary, logs)
			return nil
		},
	}
}

func printStatus(w io.Writer, s *model.DashboardState, logs []model.LogEntry) {
	heading := color.New(color.FgCyan, color.Bold)
	label := color.New(color.Bold)

	_, _ = heading.Fprintf(w, "%s\n", orNone(s.Repo.Name))
	_, _ = label.Fprint(w, "  Last push:        ")
	fmt.Fprintln(w, orNone(s.LastPush))
	_, _ = label.Fprint(w, "  Deployed commit:  ")
	fmt.Fprintln(w, orNone(s.LastDeployedCommit))
	_, _ = label.Fprint(w, "  Updates:          ")
	fmt.Fprintln(w, updatesText(s.Repo.UpdatesAvailable))

	if len(s.Deployments) > 0 {
		fmt.Fprintln(w)
		_, _ = heading.Fprintln(w, "Deployments")
		for _, d := range s.Deployments {
			fmt.Fprintf(w, "  %s  %-8s %s  %s\n",
				d.TriggeredAt.UTC().Format(model.LogTimeFormat),
				d.Source,
				outcomeText(d.Outcome),
				orNone(d.CommitSHA),
			)
		}
	}

	fmt.Fprintln(w)
	_, _ = heading.Fprintln(w, "Recent logs")
	if len(logs) == 0 {
		fmt.Fprintln(w, "  (no entries)")
	}
	for _, e := range logs {
		fmt.Fprintf(w, "  %s\n", e.String())
	}

	fmt.Fprintln(w)
	_, _ = heading.Fprintln(w, "Last deployment output")
	for _, line := range strings.Split(strings.TrimRight(s.DeploymentOutput, "\n"), "\n") {
		fmt.Fprintf(w, "  %s\n", line)
	}
}

func updatesText(v *bool) string {
	switch {
	case v == nil:
		return color.YellowString("unknown")
	case *v:
		return color.GreenString("available")
	default:
		return "up to date"
	}
}

func outcomeText(o model.DeploymentOutcome) string {
	text := fmt.Sprintf("%-15s", o)
	switch o {
	case model.DeploymentSucceeded, model.DeploymentStarted:
		return color.GreenString(text)
	case model.DeploymentFailed, model.DeploymentFailedToStart:
		return color.RedString(text)
	default:
		return color.YellowString(text)
	}
}

func orNone(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
