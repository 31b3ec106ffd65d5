package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/sunbird/internal/pipeline"
	"github.com/kailas-cloud/sunbird/internal/source"
	"github.com/kailas-cloud/sunbird/internal/validate"
)

var (
	sourceName   string
	searchParams string
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Run one search and print the result envelope",
	Example: `  sunbird search --params '{"filters":{"se_boards":["CBSE"]},"limit":5}'
  sunbird search --source sandbox --params '{"query":"english"}'`,
	Args: cobra.NoArgs,
	RunE: runSearch,
}

var artifactsCmd = &cobra.Command{
	Use:     "artifacts <content_id>",
	Short:   "Resolve one content item to its artifacts and print the result envelope",
	Example: `  sunbird artifacts do_31307361357558579213961`,
	Args:    cobra.ExactArgs(1),
	RunE:    runArtifacts,
}

func init() {
	for _, c := range []*cobra.Command{searchCmd, artifactsCmd} {
		c.Flags().StringVar(&sourceName, "source", "sunbird", "Configured source to query")
	}
	searchCmd.Flags().StringVar(&searchParams, "params", "{}", "Search parameters as a JSON object")
}

func runSearch(cmd *cobra.Command, _ []string) error {
	params, err := parseParams(searchParams)
	if err != nil {
		return err
	}
	return withSource(cmd, func(src *source.Source) bool {
		env := src.Search(cmd.Context(), params)
		return printEnvelope(cmd.OutOrStdout(), env)
	})
}

func runArtifacts(cmd *cobra.Command, args []string) error {
	params := map[string]any{validate.ParamContentID: args[0]}
	return withSource(cmd, func(src *source.Source) bool {
		env := src.Artifacts(cmd.Context(), params)
		return printEnvelope(cmd.OutOrStdout(), env)
	})
}

// withSource builds the app, runs fn and turns an unsuccessful envelope
// into a non-zero exit.
func withSource(cmd *cobra.Command, fn func(*source.Source) bool) error {
	a, err := newApp(cmd.Context(), envName, true)
	if err != nil {
		return err
	}
	defer a.close()

	src, ok := a.sources.Get(sourceName)
	if !ok {
		return fmt.Errorf("unknown source %q (configured: %s)", sourceName, strings.Join(a.sources.Names(), ", "))
	}
	if !fn(src) {
		cmd.SilenceErrors = true
		return errEnvelope
	}
	return nil
}

var errEnvelope = errors.New("operation failed")

func parseParams(raw string) (map[string]any, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var params map[string]any
	if err := dec.Decode(&params); err != nil {
		return nil, fmt.Errorf("--params must be a JSON object: %w", err)
	}
	if params == nil {
		params = map[string]any{}
	}
	return params, nil
}

func printEnvelope[T any](w io.Writer, env pipeline.Envelope[T]) bool {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(env)
	return env.Success
}
