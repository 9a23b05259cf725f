package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/ppiankov/scaleproof/internal/sources"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// sourcesCmd represents the sources command
var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Inspect the approved-source registry",
}

var sourcesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List approved sources by priority",
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := loadRegistry(sourcesPath)
		if err != nil {
			return err
		}

		srcs := registry.Sources()
		sort.SliceStable(srcs, func(i, j int) bool { return srcs[i].Priority > srcs[j].Priority })

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "HOSTNAME\tPRIORITY\tRELIABILITY\tSCALE TYPES\tCULTURAL CONTEXT")
		for _, s := range srcs {
			fmt.Fprintf(w, "%s\t%d\t%.2f\t%s\t%s\n", s.Hostname, s.Priority, s.Reliability,
				strings.Join(s.ScaleTypes, ","), strings.Join(s.CulturalContext, ","))
		}
		return w.Flush()
	},
}

var sourcesCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Probe every approved source for reachability",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(viper.GetViper())
		if err != nil {
			return err
		}
		registry, err := loadRegistry(sourcesPath)
		if err != nil {
			return err
		}
		comps, err := buildComponents(cfg, registry, cmd.ErrOrStderr())
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		fmt.Fprintf(cmd.ErrOrStderr(), "⚙️  Probing %d approved sources...\n", registry.Len())
		reachable := comps.manager.ValidateAllApprovedSources(ctx)

		hosts := make([]string, 0, registry.Len())
		for _, s := range registry.Sources() {
			hosts = append(hosts, s.Hostname)
		}
		sort.Strings(hosts)

		out := cmd.OutOrStdout()
		unreachable := 0
		for _, host := range hosts {
			ok, probed := reachable[host]
			switch {
			case !probed && sources.IsWikipediaHost(host):
				fmt.Fprintf(out, "-  %s (excluded: Wikipedia)\n", host)
			case ok:
				fmt.Fprintf(out, "✓  %s\n", host)
			default:
				unreachable++
				fmt.Fprintf(out, "✗  %s\n", host)
			}
		}
		if unreachable > 0 {
			return fmt.Errorf("%d approved source(s) unreachable", unreachable)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
	sourcesCmd.AddCommand(sourcesListCmd)
	sourcesCmd.AddCommand(sourcesCheckCmd)
	sourcesCmd.PersistentFlags().StringVar(&sourcesPath, "sources", "", "approved sources file (JSON or YAML); built-in defaults otherwise")
}
