package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newFetchCommand(opts *options) *cobra.Command {
	var pretty bool

	cmd := &cobra.Command{
		Use:   CmdFetch,
		Short: "Fetch and merge items once and print them as JSON",
		Long: `Run the same fetch-and-merge the endpoint performs and write the
resulting JSON array to stdout. Useful for checking source configuration
without starting the server. Source failures are logged to stderr.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			agg, err := buildAggregator(cfg)
			if err != nil {
				return err
			}

			items := agg.FetchAllItems(cmd.Context())

			enc := json.NewEncoder(cmd.OutOrStdout())
			if pretty {
				enc.SetIndent("", "  ")
			}
			if err := enc.Encode(items); err != nil {
				return fmt.Errorf("failed to encode items: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&pretty, "pretty", false, "indent the JSON output")
	return cmd
}
