package commands

import (
	"errors"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"wms/internal/flows"
	"wms/internal/models"
)

func binsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bins",
		Short: "Browse bins",
	}
	cmd.AddCommand(binsListCmd(a), binsShowCmd(a))
	return cmd
}

func binsListCmd(a *app) *cobra.Command {
	var criticalOnly bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List bins with their fill level",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res := <-flows.NewBinListFlow(a.client, a.log).Fetch(cmd.Context())
			if res.Phase == flows.PhaseFailed {
				return errors.New(res.Message)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tFILL\tLEVEL\tPOSITION\tUPDATED")
			shown := 0
			for _, b := range res.Value {
				if criticalOnly && b.FillLevel() != models.FillCritical {
					continue
				}
				fmt.Fprintf(tw, "%d\t%d%%\t%s\t%.5f,%.5f\t%s\n",
					b.ID, b.Status, b.FillLevel(), b.Latitude, b.Longitude,
					models.FormatTimestamp(b.LastUpdated, models.ListLayout))
				shown++
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			if shown == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No bins.")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&criticalOnly, "critical", false, "only bins at 80% or more")
	return cmd
}

func parseBinID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid bin id %q", s)
	}
	return id, nil
}

func binsShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one bin with its sensor data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseBinID(args[0])
			if err != nil {
				return err
			}
			res := <-flows.NewBinDetailsFlow(a.client, a.log).Fetch(cmd.Context(), id)
			if res.Phase == flows.PhaseFailed {
				return errors.New(res.Message)
			}

			b := res.Value
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Bin #%d\n", b.ID)
			fmt.Fprintf(out, "Fill:     %d%% (%s)\n", b.Status, b.FillLevel())
			fmt.Fprintf(out, "Position: %.5f, %.5f\n", b.Latitude, b.Longitude)
			fmt.Fprintf(out, "Updated:  %s\n", models.FormatTimestamp(b.LastUpdated, models.DetailLayout))
			if b.SensorData != "" {
				fmt.Fprintf(out, "Sensors:  %s\n", b.SensorData)
			}
			return nil
		},
	}
}
