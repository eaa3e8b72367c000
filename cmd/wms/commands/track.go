package commands

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"wms/internal/models"
	"wms/internal/navigation"
	"wms/internal/session"
)

func trackCmd(a *app) *cobra.Command {
	var binID int64
	cmd := &cobra.Command{
		Use:   "track",
		Short: "Stream positions read from stdin to the backend",
		Long: "Stream positions to the backend while driving to a bin. Each stdin line\n" +
			"is a position \"lat,lng\"; the remaining bearing and distance are printed.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.store.Load()
			if errors.Is(err, session.ErrNoSession) {
				return errors.New("not logged in")
			}
			if err != nil {
				return err
			}

			var target *models.LatLng
			if binID > 0 {
				pos, err := binPosition(cmd, a, binID)
				if err != nil {
					return err
				}
				target = &pos
			}

			tr, err := navigation.Dial(cmd.Context(), a.baseURL, s.Token, a.log)
			if err != nil {
				return err
			}
			defer tr.Close()

			go func() {
				for f := range tr.Frames() {
					a.log.Debug("📨 Frame received", zap.String("type", f.Type))
				}
			}()

			out := cmd.OutOrStdout()
			sc := bufio.NewScanner(a.in)
			for sc.Scan() {
				if cmd.Context().Err() != nil {
					break
				}
				line := strings.TrimSpace(sc.Text())
				if line == "" {
					continue
				}
				pos, err := parseLatLng(line)
				if err != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), err)
					continue
				}

				u := models.LocationUpdate{DriverID: s.UserID, Latitude: pos.Latitude, Longitude: pos.Longitude}
				if target != nil {
					heading := navigation.Bearing(pos, *target)
					u.Heading = &heading
					u.BinID = &binID
					fmt.Fprintf(out, "%.5f,%.5f -> bin #%d: %.1f° (%s), %s\n",
						pos.Latitude, pos.Longitude, binID, heading, navigation.Compass(heading),
						formatDistance(navigation.Distance(pos, *target)))
				}
				if err := tr.Send(u); err != nil {
					return err
				}
			}
			return sc.Err()
		},
	}
	cmd.Flags().Int64Var(&binID, "bin", 0, "bin being driven to")
	return cmd
}
