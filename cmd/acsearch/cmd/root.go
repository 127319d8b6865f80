// Package cmd implements the acsearch command: it builds an automaton from a
// dictionary and prints every dictionary match in each line read from stdin.
package cmd

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/milden6/ahocorasick"
	"github.com/milden6/ahocorasick/internal/dict"
	"github.com/milden6/ahocorasick/internal/logger"
)

// DefaultPatterns is the dictionary used when none is given.
var DefaultPatterns = []string{"a", "aa", "aab", "baa", "baab", "aac"}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// NewRootCmd builds the command tree. Every call gets its own configuration.
func NewRootCmd() *cobra.Command {
	v := viper.New()
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "acsearch",
		Short: "acsearch finds dictionary words in text",
		Long: `acsearch builds an Aho-Corasick automaton from a dictionary and reports
every occurrence of every dictionary word in each line read from standard input.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(v, cfgFile)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, v)
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml)")

	flags := rootCmd.Flags()
	flags.StringP("dict", "d", "", "dictionary file, one pattern per line or a yaml patterns list")
	flags.StringP("automaton", "a", "", "compiled automaton file, as written by the compile command")
	flags.StringArrayP("pattern", "p", nil, "pattern to search for (repeatable)")
	flags.Bool("watch", false, "reload the dictionary file when it changes")
	flags.Bool("prompt", false, "print a prompt before reading each line")

	for _, name := range []string{"dict", "automaton", "pattern", "watch", "prompt"} {
		cobra.CheckErr(v.BindPFlag(name, flags.Lookup(name)))
	}

	rootCmd.AddCommand(newCompileCmd(), newDumpCmd())
	return rootCmd
}

func initConfig(v *viper.Viper, cfgFile string) error {
	v.SetEnvPrefix("acsearch")
	v.AutomaticEnv()

	if cfgFile == "" {
		return nil
	}
	v.SetConfigFile(cfgFile)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	return nil
}

func runSearch(cmd *cobra.Command, v *viper.Viper) error {
	log := logger.New(cmd.ErrOrStderr())

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	current, err := openAutomaton(ctx, v, log)
	if err != nil {
		return err
	}

	return searchLines(cmd.InOrStdin(), cmd.OutOrStdout(), current, v.GetBool("prompt"))
}

// openAutomaton returns a function yielding the automaton to search with. With
// --watch the automaton may change between calls.
func openAutomaton(ctx context.Context, v *viper.Viper, log *slog.Logger) (func() ahocorasick.Searcher, error) {
	automatonFile := v.GetString("automaton")
	dictFile := v.GetString("dict")
	patterns, err := patternList(v)
	if err != nil {
		return nil, err
	}

	sources := 0
	for _, set := range []bool{automatonFile != "", dictFile != "", len(patterns) > 0} {
		if set {
			sources++
		}
	}
	if sources > 1 {
		return nil, errors.New("use only one of --automaton, --dict and --pattern")
	}
	if v.GetBool("watch") && dictFile == "" {
		return nil, errors.New("--watch needs --dict")
	}

	var a *ahocorasick.Automaton
	switch {
	case automatonFile != "":
		a, err = ahocorasick.Load(automatonFile)

	case dictFile != "" && v.GetBool("watch"):
		w, err := dict.NewWatcher(dictFile, log)
		if err != nil {
			return nil, err
		}
		go func() {
			if err := w.Run(ctx); err != nil {
				log.Error("watcher stopped", "error", err)
			}
		}()
		log.Debug("watching dictionary", "dict", dictFile)
		return func() ahocorasick.Searcher { return w.Automaton() }, nil

	case dictFile != "":
		a, err = dict.Compile(dictFile)

	case len(patterns) > 0:
		a, err = ahocorasick.Compile(patterns)

	default:
		a = ahocorasick.MustCompile(DefaultPatterns...)
	}
	if err != nil {
		return nil, err
	}

	log.Debug("automaton ready",
		"patterns", a.NumPatterns(),
		"nodes", a.NumNodes(),
		"edges", a.NumEdges())
	return func() ahocorasick.Searcher { return a }, nil
}

// patternList returns the inline patterns. A single string, as set through
// ACSEARCH_PATTERN, is split with the CSV rules --pattern uses, so a pattern
// may contain spaces and quoted commas.
func patternList(v *viper.Viper) ([]string, error) {
	s, ok := v.Get("pattern").(string)
	if !ok {
		return v.GetStringSlice("pattern"), nil
	}
	if s == "" {
		return nil, nil
	}
	patterns, err := csv.NewReader(strings.NewReader(s)).Read()
	if err != nil {
		return nil, fmt.Errorf("parsing patterns %q: %w", s, err)
	}
	return patterns, nil
}

// searchLines prints every match in each line of in, with the offset of the
// match in its line.
func searchLines(in io.Reader, out io.Writer, current func() ahocorasick.Searcher, prompt bool) error {
	w := bufio.NewWriter(out)
	scanner := bufio.NewScanner(in)
	scanner.Buffer(nil, 1<<20)

	for {
		if prompt {
			fmt.Fprint(w, "> ")
		}
		if err := w.Flush(); err != nil {
			return err
		}
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSuffix(scanner.Text(), "\r")
		for c := current().Search(line); c.Next(); {
			fmt.Fprintf(w, "%s: found at offset %d\n", c.Text(), c.Match().Start)
		}
	}

	if prompt {
		fmt.Fprintln(w)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return scanner.Err()
}
