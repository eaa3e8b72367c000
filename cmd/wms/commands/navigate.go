package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"wms/internal/flows"
	"wms/internal/models"
	"wms/internal/navigation"
)

// parseLatLng reads "lat,lng".
func parseLatLng(s string) (models.LatLng, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return models.LatLng{}, fmt.Errorf("invalid position %q, want lat,lng", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return models.LatLng{}, fmt.Errorf("invalid latitude in %q", s)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return models.LatLng{}, fmt.Errorf("invalid longitude in %q", s)
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return models.LatLng{}, fmt.Errorf("position %q out of range", s)
	}
	return models.LatLng{Latitude: lat, Longitude: lng}, nil
}

func formatDistance(m float64) string {
	if m < 1000 {
		return fmt.Sprintf("%.0f m", m)
	}
	return fmt.Sprintf("%.2f km", m/1000)
}

// binPosition fetches the coordinates of bin id.
func binPosition(cmd *cobra.Command, a *app, id int64) (models.LatLng, error) {
	res := <-flows.NewBinDetailsFlow(a.client, a.log).Fetch(cmd.Context(), id)
	if res.Phase == flows.PhaseFailed {
		return models.LatLng{}, errors.New(res.Message)
	}
	return res.Value.Position(), nil
}

func navigateCmd(a *app) *cobra.Command {
	var from, to string
	var binID int64
	cmd := &cobra.Command{
		Use:   "navigate",
		Short: "Bearing and distance between two points or to a bin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := parseLatLng(from)
			if err != nil {
				return err
			}

			var end models.LatLng
			switch {
			case to != "" && binID != 0:
				return errors.New("use either --to or --bin")
			case to != "":
				if end, err = parseLatLng(to); err != nil {
					return err
				}
			case binID > 0:
				if end, err = binPosition(cmd, a, binID); err != nil {
					return err
				}
			default:
				return errors.New("a destination is required: --to or --bin")
			}

			b := navigation.Bearing(start, end)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Bearing:  %.1f° (%s)\n", b, navigation.Compass(b))
			fmt.Fprintf(out, "Distance: %s\n", formatDistance(navigation.Distance(start, end)))
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "start position lat,lng")
	cmd.Flags().StringVar(&to, "to", "", "destination lat,lng")
	cmd.Flags().Int64Var(&binID, "bin", 0, "destination bin id")
	cmd.MarkFlagRequired("from")
	return cmd
}
