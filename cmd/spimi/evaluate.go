package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/wizenheimer/spimi"
)

func newEvaluateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evaluate <gold-file> <run-file>",
		Short: "Compute precision/recall/F1/AP/DCG of a run file against a gold standard",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			gold, err := spimi.LoadJudgments(args[0])
			if err != nil {
				return err
			}
			run, err := spimi.LoadJudgments(args[1])
			if err != nil {
				return err
			}
			_, mean := spimi.Evaluate(gold, run)
			fmt.Printf("Average Precision: %f\n", mean.Precision)
			fmt.Printf("Average Recall: %f\n", mean.Recall)
			fmt.Printf("Average F-Measure: %f\n", mean.F1)
			fmt.Printf("Average Average Precision: %f\n", mean.AveragePrecision)
			fmt.Printf("Average DCG: %f\n", mean.DCG)
			return nil
		},
	}
	return cmd
}

func newVerifyCmd() *cobra.Command {
	var indexDir string
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check a built index's on-disk invariants without re-indexing",
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := spimi.Verify(indexDir)
			if err != nil {
				return err
			}
			if !report.OK {
				return fmt.Errorf("verify: %s", report.Violation)
			}
			fmt.Println("index OK")
			return nil
		},
	}
	cmd.Flags().StringVar(&indexDir, "index", "", "directory containing a built index")
	cmd.MarkFlagRequired("index")
	return cmd
}
