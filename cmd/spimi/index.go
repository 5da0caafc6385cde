package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/wizenheimer/spimi"
)

func newIndexCmd(configPath *string) *cobra.Command {
	var (
		collectionPath string
		outputDir      string
		positional     bool
		memThreshold   float64
	)

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Build a SPIMI inverted index from a line-delimited JSON corpus",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := spimi.LoadConfigFile(*configPath, spimi.DefaultConfig())
			if err != nil {
				return err
			}
			if collectionPath != "" {
				cfg.PathToCollection = collectionPath
			}
			if outputDir != "" {
				cfg.IndexOutputFolder = outputDir
			}
			if cmd.Flags().Changed("positional") {
				cfg.Indexer.StoreTermPosition = positional
			}
			if cmd.Flags().Changed("memory-threshold") {
				cfg.Indexer.MemoryThreshold = memThreshold
			}
			if cfg.PathToCollection == "" || cfg.IndexOutputFolder == "" {
				return fmt.Errorf("index: --collection and --output are required")
			}

			tok, err := cfg.BuildTokenizer()
			if err != nil {
				return err
			}
			log := newLogger()

			builder, err := spimi.NewBuilder(spimi.BuildOptions{
				CorpusPath: cfg.PathToCollection,
				OutputDir:  cfg.IndexOutputFolder,
				Positional: cfg.Indexer.StoreTermPosition,
				Monitor:    spimi.NewMonitor(cfg.Indexer.MemoryThreshold),
				Tokenizer:  tok,
				Log:        log,
			})
			if err != nil {
				return err
			}

			result, err := builder.Build(context.Background())
			if err != nil {
				return err
			}
			fmt.Printf("indexed %d documents, %d distinct terms\n", result.TotalDocs, result.TotalTerms)
			return nil
		},
	}

	cmd.Flags().StringVar(&collectionPath, "collection", "", "path to the line-delimited JSON corpus")
	cmd.Flags().StringVar(&outputDir, "output", "", "directory to write index artifacts into")
	cmd.Flags().BoolVar(&positional, "positional", false, "store positional postings instead of frequency-only")
	cmd.Flags().Float64Var(&memThreshold, "memory-threshold", 0, "memory pressure fraction that triggers a block flush")
	return cmd
}
