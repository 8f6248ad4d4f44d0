package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/dealfinder/backend/internal/domain"
	"github.com/dealfinder/backend/internal/logging"
	"github.com/dealfinder/backend/internal/usecase"
)

// newRootCmd builds the dealctl command tree
func newRootCmd() *cobra.Command {
	var (
		debug  bool
		pretty bool
	)

	root := &cobra.Command{
		Use:   "dealctl",
		Short: "Inspect how reference items match marketplace listings",
		Long: `dealctl runs the product matcher offline against JSON fixtures.
Reference items use the request body shape ({"title","price","category","searchQuery"});
candidate files hold an array of listings as the marketplace client produces them.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVar(&debug, "debug", false, "log matcher decisions to stderr")
	root.PersistentFlags().BoolVar(&pretty, "pretty", false, "indent JSON output")

	opts := func(cmd *cobra.Command) cliOptions {
		level := "warn"
		if debug {
			level = "debug"
		}
		return cliOptions{
			out:    cmd.OutOrStdout(),
			pretty: pretty,
			debug:  debug,
			logger: logging.New(logging.Config{Level: level, Format: "console", Output: cmd.ErrOrStderr()}),
		}
	}

	root.AddCommand(newRankCmd(opts), newMergeCmd(opts), newTokenizeCmd(opts))
	return root
}

type cliOptions struct {
	out    io.Writer
	pretty bool
	debug  bool
	logger zerolog.Logger
}

func newRankCmd(opts func(*cobra.Command) cliOptions) *cobra.Command {
	var (
		referencePath  string
		candidatesPath string
		maxResults     int
	)

	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Score and rank candidates against a reference item",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			o := opts(cmd)

			var ref domain.ReferenceItem
			if err := readJSONFile(referencePath, &ref); err != nil {
				return fmt.Errorf("reading reference: %w", err)
			}
			var candidates []domain.Candidate
			if err := readJSONFile(candidatesPath, &candidates); err != nil {
				return fmt.Errorf("reading candidates: %w", err)
			}

			matcher := usecase.NewMatchingService(usecase.MatchConfig{EnableDebug: o.debug}, o.logger)
			outcome := matcher.Run(ref, usecase.CandidateBatch{Strategy: usecase.StrategyRank, Primary: candidates})

			matches := outcome.Matches
			if maxResults > 0 && len(matches) > maxResults {
				matches = matches[:maxResults]
			}
			return writeJSON(o, map[string]interface{}{
				"matches": matches,
				"count":   len(matches),
			})
		},
	}

	cmd.Flags().StringVarP(&referencePath, "reference", "r", "", "reference item JSON file")
	cmd.Flags().StringVarP(&candidatesPath, "candidates", "c", "", "candidate listings JSON file")
	cmd.Flags().IntVarP(&maxResults, "max-results", "n", 0, "truncate output (0 keeps all)")
	_ = cmd.MarkFlagRequired("reference")
	_ = cmd.MarkFlagRequired("candidates")
	return cmd
}

func newMergeCmd(opts func(*cobra.Command) cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "merge <primary.json> <secondary.json>",
		Short: "Merge two listing files, keeping the first listing per product ID",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			o := opts(cmd)

			var primary, secondary []domain.Candidate
			if err := readJSONFile(args[0], &primary); err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}
			if err := readJSONFile(args[1], &secondary); err != nil {
				return fmt.Errorf("reading %s: %w", args[1], err)
			}

			matcher := usecase.NewMatchingService(usecase.MatchConfig{EnableDebug: o.debug}, o.logger)
			outcome := matcher.Run(domain.ReferenceItem{}, usecase.CandidateBatch{
				Strategy:  usecase.StrategyMerge,
				Primary:   primary,
				Secondary: secondary,
			})
			return writeJSON(o, map[string]interface{}{
				"products": outcome.Listings,
				"count":    len(outcome.Listings),
			})
		},
	}
}

func newTokenizeCmd(opts func(*cobra.Command) cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tokenize <text>",
		Short: "Print the keyword set extracted from text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeJSON(opts(cmd), usecase.Tokenize(args[0]).Tokens())
		},
	}
}

// readJSONFile decodes path into v; "-" reads stdin
func readJSONFile(path string, v interface{}) error {
	var r io.Reader
	if path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	return json.NewDecoder(r).Decode(v)
}

func writeJSON(o cliOptions, v interface{}) error {
	enc := json.NewEncoder(o.out)
	if o.pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
