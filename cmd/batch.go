package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync/atomic"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fire-ai/valuation-cli/internal/model"
)

var (
	batchFile        string
	batchConcurrency int
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Run valuations for a CSV of subject properties",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		subjects, err := loadSubjectsCSV(batchFile)
		if err != nil {
			return err
		}
		if len(subjects) == 0 {
			return eris.New("no subjects in csv")
		}

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		var succeeded, failed atomic.Int64

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(batchConcurrency)
		for _, subject := range subjects {
			g.Go(func() error {
				result, runErr := env.Pipeline.Run(gctx, subject)
				if runErr != nil {
					failed.Add(1)
					zap.L().Error("batch valuation failed",
						zap.String("address", subject.Address),
						zap.String("city", subject.City),
						zap.Error(runErr),
					)
					return nil // keep going, failures are tallied
				}
				succeeded.Add(1)
				fmt.Printf("%s, %s: $%d - $%d\n",
					subject.Address, subject.City,
					result.Features.PriceRange.Min, result.Features.PriceRange.Max,
				)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return eris.Wrap(err, "batch run")
		}

		fmt.Printf("done: %d succeeded, %d failed\n", succeeded.Load(), failed.Load())
		return nil
	},
}

// loadSubjectsCSV parses subjects from a CSV with a header row:
// address,city,state,zip,bedrooms,bathrooms,sqft,year_built,condition,email
func loadSubjectsCSV(path string) ([]model.SubjectProperty, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "open csv %s", path)
	}
	defer f.Close() //nolint:errcheck

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return nil, eris.Wrap(err, "read csv header")
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	for _, required := range []string{"address", "city", "state", "zip"} {
		if _, ok := col[required]; !ok {
			return nil, eris.Errorf("csv missing column %q", required)
		}
	}

	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var subjects []model.SubjectProperty
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "read csv line %d", line)
		}

		bedrooms, _ := strconv.Atoi(field(row, "bedrooms"))
		bathrooms, _ := strconv.ParseFloat(field(row, "bathrooms"), 64)
		sqft, _ := strconv.Atoi(field(row, "sqft"))
		yearBuilt, _ := strconv.Atoi(field(row, "year_built"))
		condition, _ := strconv.Atoi(field(row, "condition"))

		subjects = append(subjects, model.SubjectProperty{
			Address:        field(row, "address"),
			City:           field(row, "city"),
			State:          field(row, "state"),
			ZipCode:        field(row, "zip"),
			Bedrooms:       bedrooms,
			Bathrooms:      bathrooms,
			SquareFootage:  sqft,
			YearBuilt:      yearBuilt,
			ConditionScore: condition,
			Email:          field(row, "email"),
		})
	}
	return subjects, nil
}

func init() {
	batchCmd.Flags().StringVar(&batchFile, "file", "", "path to the subjects csv (required)")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 4, "concurrent valuations")
	batchCmd.MarkFlagRequired("file") //nolint:errcheck
	rootCmd.AddCommand(batchCmd)
}
