package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/killallgit/liftchat/pkg/api"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Check which configured backends are reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		timeout, _ := cmd.Flags().GetDuration("timeout")
		ctx, cancel := signalContext(cmd)
		defer cancel()

		statuses, err := probeAll(ctx, a.newTransport(), a.cfg.API.BaseURLs, timeout)
		if err != nil {
			return err
		}
		renderProbeTable(cmd.OutOrStdout(), statuses)

		for _, s := range statuses {
			if s.Available {
				return nil
			}
		}
		return errors.New("no backend is reachable")
	},
}

func init() {
	probeCmd.Flags().Duration("timeout", 5*time.Second, "time limit for each backend")
}

// probeAll checks every base URL at once. Results keep the configured order.
func probeAll(ctx context.Context, client *api.Client, bases []string, timeout time.Duration) ([]*api.HealthStatus, error) {
	statuses := make([]*api.HealthStatus, len(bases))

	g, gctx := errgroup.WithContext(ctx)
	for i, base := range bases {
		i, base := i, base
		g.Go(func() error {
			probeCtx, cancel := context.WithTimeout(gctx, timeout)
			defer cancel()
			statuses[i] = client.CheckHealth(probeCtx, base)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "probe failed")
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "probe interrupted")
	}
	return statuses, nil
}

func renderProbeTable(w io.Writer, statuses []*api.HealthStatus) {
	ok := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	bad := lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))

	rows := make([][]string, 0, len(statuses))
	for _, s := range statuses {
		state := ok.Render("reachable")
		detail := ""
		if !s.Available {
			state = bad.Render("unreachable")
			if s.Error != nil {
				detail = s.Error.Error()
			}
		}
		code := "-"
		if s.StatusCode != 0 {
			code = fmt.Sprintf("%d", s.StatusCode)
		}
		rows = append(rows, []string{s.BaseURL, state, code, s.Latency.Round(time.Millisecond).String(), detail})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("BASE URL", "STATUS", "HTTP", "LATENCY", "ERROR").
		Rows(rows...)
	fmt.Fprintln(w, t.Render())
}
