package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/saulfrancisco-ruizacevedo/go-proteograph"
	"github.com/saulfrancisco-ruizacevedo/go-proteograph/config"
	"github.com/saulfrancisco-ruizacevedo/go-proteograph/observability"
	"github.com/spf13/cobra"
)

func newSearchCmd() *cobra.Command {
	var (
		searchType string
		value      string
		shape      string
		indent     bool
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Run one search against the graph and print the JSON response",
		Example: `  proteograph search --type "Gene Name" --value BRCA1
  proteograph search --type Peptides --value "PEPTIDEA;PEPTIDEB"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := proteograph.ParseRequest(searchType, value, shape)
			if err != nil {
				return err
			}

			logger := observability.GetLogger()
			executor, err := connect(cmd.Context(), config.Get().Neo4j, logger)
			if err != nil {
				return err
			}
			defer closeExecutor(executor, logger)

			manager, err := proteograph.NewSearchManager(executor, logger)
			if err != nil {
				return err
			}
			resp, err := manager.Search(cmd.Context(), req)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetEscapeHTML(false)
			if indent {
				enc.SetIndent("", "  ")
			}
			if err := enc.Encode(resp.Payload()); err != nil {
				return fmt.Errorf("failed to write response: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&searchType, "type", "t", "", `search type ("Gene Name", "Gene ID", "Proteoform", "Proteoform ID", "Peptides")`)
	cmd.Flags().StringVar(&value, "value", "", "search value; peptides are separated by ';'")
	cmd.Flags().StringVar(&shape, "shape", "", "response shape (full or compact), default depends on the type")
	cmd.Flags().BoolVar(&indent, "indent", false, "indent the JSON output")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("value")
	return cmd
}
