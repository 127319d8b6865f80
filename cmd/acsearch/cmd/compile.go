package cmd

import (
	"github.com/spf13/cobra"

	"github.com/milden6/ahocorasick/internal/dict"
	"github.com/milden6/ahocorasick/internal/logger"
)

func newCompileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compile <dict> <out>",
		Short: "Compile a dictionary file into an automaton file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.New(cmd.ErrOrStderr())

			a, err := dict.Compile(args[0])
			if err != nil {
				return err
			}

			n, err := a.Save(args[1])
			if err != nil {
				return err
			}

			log.Info("automaton written",
				"file", args[1],
				"bytes", n,
				"patterns", a.NumPatterns(),
				"nodes", a.NumNodes())
			return nil
		},
	}
}
