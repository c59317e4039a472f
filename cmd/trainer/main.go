package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"immoprice/server/config"
	"immoprice/server/internal/database"
	"immoprice/server/internal/features"
	"immoprice/server/internal/reference"
	"immoprice/server/internal/training"
)

var logger = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.JSONFormatter{})
	l.SetOutput(os.Stdout)
	return l
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}
	if level, err := logrus.ParseLevel(cfg.Server.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	rootCmd := &cobra.Command{
		Use:   "trainer",
		Short: "Build the reference table and train the price regression",
	}

	rootCmd.AddCommand(createBuildReferenceCmd(cfg))
	rootCmd.AddCommand(createTrainCmd(cfg))

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// createBuildReferenceCmd joins the raw statistics into the reference CSV
func createBuildReferenceCmd(cfg *config.Config) *cobra.Command {
	var dataDir, output string

	cmd := &cobra.Command{
		Use:   "build-reference",
		Short: "Join zip codes, incomes and district sales into the reference table",
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := reference.Build(reference.DefaultSources(dataDir), logger)
			if err != nil {
				return err
			}
			if err := reference.WriteCSVFile(output, rows); err != nil {
				return err
			}

			// Loading the result applies the district repair and imputation
			table, err := reference.Load(output, logger)
			if err != nil {
				return fmt.Errorf("built reference table does not load: %w", err)
			}
			logger.WithFields(logrus.Fields{
				"path":         output,
				"postal_codes": table.Len(),
			}).Info("Reference table written")
			return nil
		},
	}

	cmd.Flags().StringVar(&dataDir, "data-dir", "data", "Directory holding the raw statistics files")
	cmd.Flags().StringVar(&output, "output", cfg.Data.ReferencePath, "Reference CSV to write")
	return cmd
}

// createTrainCmd fits the scaler and regression and records the run
func createTrainCmd(cfg *config.Config) *cobra.Command {
	opts := training.Options{
		ReferencePath: cfg.Data.ReferencePath,
		ScalerPath:    cfg.Data.ScalerPath,
		ModelPath:     cfg.Data.ModelPath,
		TestFraction:  training.DefaultTestFraction,
		Seed:          training.DefaultSeed,
	}
	var record bool

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train the linear regression on the listings corpus",
		RunE: func(cmd *cobra.Command, args []string) error {
			trainer := training.NewTrainer(features.DefaultEncoder(), logger)
			result, err := trainer.Run(opts)
			if err != nil {
				return err
			}

			fmt.Println("Training metrics:")
			printMetrics(result.Run.Train.R2, result.Run.Train.MAE, result.Run.Train.RMSE, result.Run.Train.MAPE)
			fmt.Println("Testing metrics:")
			printMetrics(result.Run.Test.R2, result.Run.Test.MAE, result.Run.Test.RMSE, result.Run.Test.MAPE)

			if !record {
				return nil
			}
			db, err := database.NewDatabase(cfg.Data.DatabasePath)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer db.Close()
			if err := db.RunMigrations(); err != nil {
				return err
			}
			if err := db.SaveTrainingRun(&result.Run); err != nil {
				return err
			}
			logger.WithField("run_id", result.Run.ID).Info("Recorded training run")
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.CorpusPath, "corpus", filepath.Join("data", "precleaned-dataset-immoweb.csv"), "Listings corpus CSV")
	cmd.Flags().StringVar(&opts.ReferencePath, "reference", opts.ReferencePath, "Reference CSV")
	cmd.Flags().StringVar(&opts.ScalerPath, "scaler", opts.ScalerPath, "Scaler artifact to write")
	cmd.Flags().StringVar(&opts.ModelPath, "model", opts.ModelPath, "Model artifact to write")
	cmd.Flags().StringVar(&opts.DatasetPath, "dataset", "", "Optional path for the preprocessed dataset CSV")
	cmd.Flags().Float64Var(&opts.TestFraction, "test-fraction", opts.TestFraction, "Share of rows held out for testing")
	cmd.Flags().Int64Var(&opts.Seed, "seed", opts.Seed, "Shuffle seed for the train/test split")
	cmd.Flags().BoolVar(&record, "record", true, "Record the run in the database")
	return cmd
}

func printMetrics(r2, mae, rmse, mape float64) {
	fmt.Printf("Score: %.2f\n", r2)
	fmt.Printf("MAE: %.2f\n", mae)
	fmt.Printf("RMSE: %.2f\n", rmse)
	fmt.Printf("MAPE: %.2f\n", mape)
}
