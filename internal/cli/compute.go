package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"celestial/internal/domain/models"
	"celestial/internal/services/astro"
	"celestial/internal/services/interpret"
	"celestial/internal/usecase"
	xhttp "celestial/pkg/http"
)

type birthFlags struct {
	name      string
	date      string
	clock     string
	latitude  float64
	longitude float64
}

func (f *birthFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "Name shown on the chart")
	cmd.Flags().StringVar(&f.date, "date", "", "Birth date, YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&f.clock, "time", "12:00", "Birth time in UTC, HH:MM or HH:MM:SS")
	cmd.Flags().Float64Var(&f.latitude, "lat", 0, "Latitude in degrees, north positive (required)")
	cmd.Flags().Float64Var(&f.longitude, "lon", 0, "Longitude in degrees, east positive (required)")
	_ = cmd.MarkFlagRequired("date")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lon")
}

func (f *birthFlags) request() models.ChartRequest {
	lat, lon := f.latitude, f.longitude
	return models.ChartRequest{Name: f.name, BirthDate: f.date, BirthTime: f.clock, Latitude: &lat, Longitude: &lon}
}

// input validates the flags with the same rules the HTTP API applies.
func (f *birthFlags) input(ctx context.Context) (models.BirthInput, error) {
	req := f.request()
	if verr := xhttp.ValidateStruct(ctx, &req); verr != nil {
		msgs := make([]string, 0, len(verr))
		for _, v := range verr {
			msgs = append(msgs, v.Message)
		}
		return models.BirthInput{}, errors.New(strings.Join(msgs, "; "))
	}
	return usecase.BirthInputFromRequest(req)
}

func computeCmd() *cobra.Command {
	var (
		birth   birthFlags
		asJSON  bool
		server  string
		timeout time.Duration
	)

	c := &cobra.Command{
		Use:   "compute",
		Short: "Compute a natal chart locally or on a chart service",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if server != "" {
				ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
				defer cancel()

				var resp json.RawMessage
				req := birth.request()
				if err := xhttp.NewClient(server).Post(ctx, "/api/charts", &req, &resp); err != nil {
					return err
				}
				return writeIndented(out, resp)
			}

			in, err := birth.input(cmd.Context())
			if err != nil {
				return err
			}
			chart, err := astro.NewEngine().Compute(in)
			if err != nil {
				return err
			}
			if asJSON {
				b, err := json.Marshal(chart)
				if err != nil {
					return err
				}
				return writeIndented(out, b)
			}
			return printChart(out, chart)
		},
	}

	birth.register(c)
	c.Flags().BoolVar(&asJSON, "json", false, "Print the chart as JSON")
	c.Flags().StringVar(&server, "server", "", "Chart service base URL; computes remotely when set")
	c.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout for --server")
	return c
}

func hashCmd() *cobra.Command {
	var birth birthFlags

	c := &cobra.Command{
		Use:   "hash",
		Short: "Print the chart hash of birth data without computing the chart",
		RunE: func(cmd *cobra.Command, _ []string) error {
			in, err := birth.input(cmd.Context())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), astro.ChartHash(in))
			return err
		},
	}
	birth.register(c)
	return c
}

func getCmd() *cobra.Command {
	var (
		server  string
		timeout time.Duration
	)

	c := &cobra.Command{
		Use:   "get <hash>",
		Short: "Fetch a chart by hash from a chart service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			var resp json.RawMessage
			if err := xhttp.NewClient(server).Get(ctx, "/api/charts/"+args[0], &resp); err != nil {
				return err
			}
			return writeIndented(cmd.OutOrStdout(), resp)
		},
	}
	c.Flags().StringVar(&server, "server", "http://localhost:8080", "Chart service base URL")
	c.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")
	return c
}

func writeIndented(w io.Writer, raw []byte) error {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printChart(w io.Writer, chart models.NatalChart) error {
	h := interpret.ForChart(chart)
	fmt.Fprintf(w, "Chart %s  %s  %s\n", chart.Hash, chart.Birth.Name, chart.Birth.Timestamp.Format("2006-01-02 15:04 UTC"))
	fmt.Fprintf(w, "Sun %s  Moon %s  Rising %s\n\n", chart.SunSign(), chart.MoonSign(), chart.RisingSign())

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "BODY\tPOSITION\tHOUSE")
	for _, p := range chart.OrderedPositions() {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", p.Body, p.Formatted(), p.House)
	}
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "ASPECT\tORB\tSTRENGTH")
	for _, a := range chart.Aspects {
		fmt.Fprintf(tw, "%s %s %s\t%.2f°\t%s\n", a.Body1, a.Type, a.Body2, a.Orb, a.Strength)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "\n%s. %s\n", h.Sun.Title, h.SunHouse.Theme)
	return err
}
