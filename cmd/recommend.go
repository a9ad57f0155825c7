package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/tuanpa2295/filip-hackathon/internal/recommend"
)

var (
	recommendUserSkills   []string
	recommendTargetSkills []string
	recommendMaxResults   int
	recommendDomain       string
	recommendMode         string
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Generate validated course recommendations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(recommendTargetSkills) == 0 {
			return eris.New("at least one --target skill is required")
		}

		env, err := initEngine(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		agent := env.AgentFor(resolveMode(recommendMode))
		rec, err := agent.Recommend(cmd.Context(), recommend.Request{
			UserSkills:   recommendUserSkills,
			TargetSkills: recommendTargetSkills,
			MaxResults:   recommendMaxResults,
			Domain:       recommendDomain,
		})
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	},
}

func init() {
	recommendCmd.Flags().StringSliceVar(&recommendUserSkills, "skills", nil, "user's current skills")
	recommendCmd.Flags().StringSliceVar(&recommendTargetSkills, "target", nil, "skills to learn (required)")
	recommendCmd.Flags().IntVar(&recommendMaxResults, "max", 5, "maximum courses to return")
	recommendCmd.Flags().StringVar(&recommendDomain, "domain", "courses", "validation domain")
	recommendCmd.Flags().StringVar(&recommendMode, "mode", "", "validation mode (basic, comprehensive, strict, disabled)")
	rootCmd.AddCommand(recommendCmd)
}
