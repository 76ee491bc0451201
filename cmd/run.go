package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/fire-ai/valuation-cli/internal/model"
)

var (
	runSubjectFile    string
	runAddress        string
	runCity           string
	runState          string
	runZip            string
	runBedrooms       int
	runBathrooms      float64
	runSquareFootage  int
	runYearBuilt      int
	runConditionScore int
	runEmail          string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a valuation for a single subject property",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		subject, err := loadSubject()
		if err != nil {
			return err
		}

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		result, err := env.Pipeline.Run(ctx, subject)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(result), "encode result")
	},
}

// loadSubject builds the subject from --subject JSON or individual flags.
func loadSubject() (model.SubjectProperty, error) {
	if runSubjectFile != "" {
		data, err := os.ReadFile(runSubjectFile)
		if err != nil {
			return model.SubjectProperty{}, eris.Wrapf(err, "read subject file %s", runSubjectFile)
		}
		var subject model.SubjectProperty
		if err := json.Unmarshal(data, &subject); err != nil {
			return model.SubjectProperty{}, eris.Wrap(err, "parse subject file")
		}
		return subject, nil
	}

	return model.SubjectProperty{
		Address:        runAddress,
		City:           runCity,
		State:          runState,
		ZipCode:        runZip,
		Bedrooms:       runBedrooms,
		Bathrooms:      runBathrooms,
		SquareFootage:  runSquareFootage,
		YearBuilt:      runYearBuilt,
		ConditionScore: runConditionScore,
		Email:          runEmail,
	}, nil
}

func init() {
	runCmd.Flags().StringVar(&runSubjectFile, "subject", "", "path to a JSON subject file")
	runCmd.Flags().StringVar(&runAddress, "address", "", "street address")
	runCmd.Flags().StringVar(&runCity, "city", "", "city")
	runCmd.Flags().StringVar(&runState, "state", "", "state code")
	runCmd.Flags().StringVar(&runZip, "zip", "", "zip code")
	runCmd.Flags().IntVar(&runBedrooms, "bedrooms", 0, "bedroom count")
	runCmd.Flags().Float64Var(&runBathrooms, "bathrooms", 0, "bathroom count")
	runCmd.Flags().IntVar(&runSquareFootage, "sqft", 0, "living area in square feet")
	runCmd.Flags().IntVar(&runYearBuilt, "year-built", 0, "year built")
	runCmd.Flags().IntVar(&runConditionScore, "condition", 5, "condition score 1-10")
	runCmd.Flags().StringVar(&runEmail, "email", "", "contact email for the posted result")
	runCmd.Flags().StringVar(&poolFile, "pool-file", "", "read candidates from a local xlsx workbook instead of the feed")
	rootCmd.AddCommand(runCmd)
}
