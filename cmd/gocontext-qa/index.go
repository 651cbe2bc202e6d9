package main

import (
	"github.com/spf13/cobra"
)

func newIndexCmd() *cobra.Command {
	var workers int

	cmd := &cobra.Command{
		Use:   "index <path>",
		Short: "Chunk, embed and store every source file under path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer closeApp(a)

			stats, err := a.Index(cmd.Context(), args[0], workers)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), stats)
		},
	}
	cmd.Flags().IntVar(&workers, "workers", 0, "Parallel file workers (0 uses GOMAXPROCS)")
	return cmd
}
