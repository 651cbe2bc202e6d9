package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dshills/gocontext-qa/pkg/types"
)

func newSearchCmd() *cobra.Command {
	var (
		limit    int
		language string
		pattern  string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Run a hybrid search against the index",
		Long: `Run a hybrid search. Inline filters are supported in the query text,
for example: "retry backoff lang:go path:internal/*".`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer closeApp(a)

			req := types.SearchRequest{Query: strings.Join(args, " ")}
			if limit > 0 {
				req.Limit = &limit
			}
			if language != "" || pattern != "" {
				req.Filters = &types.SearchFilters{Language: language, FilePathPattern: pattern}
			}

			resp, err := a.Search.Execute(cmd.Context(), req)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), resp)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SCORE\tFILE\tLINES\tLANGUAGE")
			for _, r := range resp.Results {
				md := r.Metadata
				fmt.Fprintf(w, "%.4f\t%s\t%d-%d\t%s\n", r.Score, md.FilePath, md.StartLine, md.EndLine, md.Language)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\n%d results in %dms\n", resp.TotalFound, resp.QueryTimeMs)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum results (0 uses GOCONTEXT_SEARCH_LIMIT)")
	cmd.Flags().StringVar(&language, "language", "", "Restrict to a language")
	cmd.Flags().StringVar(&pattern, "file", "", "Restrict to files matching a glob pattern")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the raw JSON response")
	return cmd
}
