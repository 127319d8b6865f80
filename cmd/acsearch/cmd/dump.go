package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/milden6/ahocorasick"
)

func newDumpCmd() *cobra.Command {
	var tree bool

	cmd := &cobra.Command{
		Use:   "dump <file>",
		Short: "Print the records of an automaton file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if tree {
				a, err := ahocorasick.Load(args[0])
				if err != nil {
					return err
				}
				return a.Print(cmd.OutOrStdout())
			}

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			return ahocorasick.DumpFile(cmd.OutOrStdout(), f)
		},
	}

	cmd.Flags().BoolVar(&tree, "tree", false, "load and validate the automaton, then print its nodes")
	return cmd
}
