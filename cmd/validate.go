package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var (
	validateQuery    string
	validateResponse string
	validateDomain   string
	validateMode     string
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate an existing response without regeneration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if validateQuery == "" || validateResponse == "" {
			return eris.New("--query and --response are required")
		}

		env, err := initEngine(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		agent := env.AgentFor(resolveMode(validateMode))
		agg := agent.ValidateExisting(cmd.Context(), validateQuery, validateResponse, validateDomain)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(agg)
	},
}

func init() {
	validateCmd.Flags().StringVar(&validateQuery, "query", "", "original query (required)")
	validateCmd.Flags().StringVar(&validateResponse, "response", "", "response text to validate (required)")
	validateCmd.Flags().StringVar(&validateDomain, "domain", "courses", "validation domain")
	validateCmd.Flags().StringVar(&validateMode, "mode", "", "validation mode (basic, comprehensive, strict, disabled)")
	rootCmd.AddCommand(validateCmd)
}
