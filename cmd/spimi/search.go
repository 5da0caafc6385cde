package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/wizenheimer/spimi"
)

func newSearchCmd(configPath *string) *cobra.Command {
	var (
		indexDir    string
		batchFile   string
		outputFile  string
		topK        int
		method      string
		smart       string
		searchType  string
		maxDistance int
		k1          float64
		b           float64
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Query a built index interactively or in batch",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := spimi.LoadConfigFile(*configPath, spimi.DefaultConfig())
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("top-k") {
				cfg.Search.TopK = topK
			}
			if cmd.Flags().Changed("method") {
				cfg.Ranking.Method = method
			}
			if cmd.Flags().Changed("smart") {
				cfg.Ranking.SMARTNotation = smart
			}
			if cmd.Flags().Changed("search-type") {
				cfg.Search.SearchType = searchType
			}
			if cmd.Flags().Changed("max-distance") {
				cfg.Search.MaxDistance = maxDistance
			}
			if cmd.Flags().Changed("k1") {
				cfg.Ranking.K1 = k1
			}
			if cmd.Flags().Changed("b") {
				cfg.Ranking.B = b
			}
			if indexDir == "" {
				return fmt.Errorf("search: --index is required")
			}

			log := newLogger()
			idx, err := spimi.OpenIndex(indexDir, log)
			if err != nil {
				return err
			}
			tok, err := cfg.BuildTokenizer()
			if err != nil {
				return err
			}

			opts := spimi.QueryOptions{
				Method:      spimi.RankingMethod(cfg.Ranking.Method),
				SMART:       spimi.SMARTNotation(cfg.Ranking.SMARTNotation),
				BM25:        spimi.BM25Params{K1: cfg.Ranking.K1, B: cfg.Ranking.B},
				SearchType:  spimi.SearchType(cfg.Search.SearchType),
				MaxDistance: cfg.Search.MaxDistance,
				TopK:        cfg.Search.TopK,
			}

			if batchFile != "" {
				return runBatch(idx, tok, opts, batchFile, outputFile)
			}
			return runInteractive(idx, tok, opts)
		},
	}

	cmd.Flags().StringVar(&indexDir, "index", "", "directory containing a built index")
	cmd.Flags().StringVar(&batchFile, "batch", "", "path to a line-delimited JSON query file (enables batch mode)")
	cmd.Flags().StringVar(&outputFile, "out", "", "output path for batch mode results")
	cmd.Flags().IntVar(&topK, "top-k", 10, "maximum number of documents to return per query")
	cmd.Flags().StringVar(&method, "method", "bm25", "ranking method: bm25 or tfidf")
	cmd.Flags().StringVar(&smart, "smart", "lnc.ltc", "SMART notation for tfidf: lnc.ltc or bnn.bnc")
	cmd.Flags().StringVar(&searchType, "search-type", "standard", "standard, phrase, or proximity")
	cmd.Flags().IntVar(&maxDistance, "max-distance", 0, "max distance for proximity search")
	cmd.Flags().Float64Var(&k1, "k1", 1.2, "BM25 k1 parameter")
	cmd.Flags().Float64Var(&b, "b", 0.75, "BM25 b parameter")
	return cmd
}

type batchQuery struct {
	QueryID   string `json:"query_id"`
	QueryText string `json:"query_text"`
}

type batchResult struct {
	QueryID       string `json:"query_id"`
	DocumentPMIDs []int  `json:"documents_pmid"`
}

func runBatch(idx *spimi.Index, tok *spimi.Tokenizer, opts spimi.QueryOptions, inPath, outPath string) error {
	in, err := os.Open(inPath)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}
	defer in.Close()

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}
	defer out.Close()
	w := bufio.NewWriter(out)
	defer w.Flush()

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		var q batchQuery
		if err := json.Unmarshal(scanner.Bytes(), &q); err != nil {
			return fmt.Errorf("search: %w", err)
		}
		results, err := idx.Search(q.QueryText, tok, opts)
		if err != nil {
			return fmt.Errorf("search: %w", err)
		}
		pmids := make([]int, len(results))
		for i, r := range results {
			pmids[i] = r.PMID
		}
		line, err := json.Marshal(batchResult{QueryID: q.QueryID, DocumentPMIDs: pmids})
		if err != nil {
			return fmt.Errorf("search: %w", err)
		}
		if _, err := w.Write(append(line, '\n')); err != nil {
			return fmt.Errorf("search: %w", err)
		}
	}
	return scanner.Err()
}

func runInteractive(idx *spimi.Index, tok *spimi.Tokenizer, opts spimi.QueryOptions) error {
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Println("Enter your query (or 'exit' to quit):")
	for scanner.Scan() {
		query := scanner.Text()
		if query == "exit" {
			return nil
		}
		results, err := idx.Search(query, tok, opts)
		if err != nil {
			return fmt.Errorf("search: %w", err)
		}
		for rank, r := range results {
			fmt.Printf("%d. Document: %d, Score: %f\n", rank+1, r.PMID, r.Score)
		}
		fmt.Println("Enter your query (or 'exit' to quit):")
	}
	return scanner.Err()
}
