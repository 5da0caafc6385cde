// ═══════════════════════════════════════════════════════════════════════════════
// EVALUATOR
// ═══════════════════════════════════════════════════════════════════════════════
// A stateless comparison of a gold-standard judgment file against a run
// file, both line-delimited JSON with {query_id, documents_pmid}. Every
// metric here is a pure function of the two id lists for one query; there
// is no index or corpus dependency at all.
// ═══════════════════════════════════════════════════════════════════════════════

package spimi

import (
	"bufio"
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// Judgment is one line of a gold-standard or run file.
type Judgment struct {
	QueryID       string `json:"query_id"`
	DocumentPMIDs []int  `json:"documents_pmid"`
}

// LoadJudgments parses a line-delimited JSON judgment file.
func LoadJudgments(path string) ([]Judgment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load judgments: %w", err)
	}
	defer f.Close()

	var judgments []Judgment
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var j Judgment
		if err := json.Unmarshal(line, &j); err != nil {
			return nil, fmt.Errorf("load judgments: %w", err)
		}
		judgments = append(judgments, j)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("load judgments: %w", err)
	}
	return judgments, nil
}

// QueryMetrics holds the per-query evaluation results.
type QueryMetrics struct {
	Precision        float64
	Recall           float64
	F1               float64
	AveragePrecision float64
	DCG              float64
}

// Precision is |retrieved ∩ relevant| / |retrieved|, 0 if nothing retrieved.
func Precision(retrieved, relevant []int) float64 {
	if len(retrieved) == 0 {
		return 0
	}
	return float64(intersectionSize(retrieved, relevant)) / float64(len(retrieved))
}

// Recall is |retrieved ∩ relevant| / |relevant|, 0 if nothing relevant.
func Recall(retrieved, relevant []int) float64 {
	if len(relevant) == 0 {
		return 0
	}
	return float64(intersectionSize(retrieved, relevant)) / float64(len(relevant))
}

// F1 is the harmonic mean of precision and recall, 0 if both are 0.
func F1(precision, recall float64) float64 {
	if precision+recall == 0 {
		return 0
	}
	return 2 * (precision * recall) / (precision + recall)
}

// AveragePrecision averages precision-at-i over every rank where a relevant
// document was retrieved, normalized by the number of relevant documents.
func AveragePrecision(retrieved, relevant []int) float64 {
	if len(relevant) == 0 {
		return 0
	}
	relevantSet := toSet(relevant)
	sum := 0.0
	hits := 0
	for i, doc := range retrieved {
		if relevantSet[doc] {
			hits++
			sum += float64(hits) / float64(i+1)
		}
	}
	return sum / float64(len(relevant))
}

// DCG computes binary-relevance discounted cumulative gain over retrieved,
// 0-indexed ranks discounted by log2(rank+2).
func DCG(retrieved, relevant []int) float64 {
	relevantSet := toSet(relevant)
	sum := 0.0
	for i, doc := range retrieved {
		if relevantSet[doc] {
			sum += 1 / math.Log2(float64(i+2))
		}
	}
	return sum
}

// Evaluate computes per-query and mean metrics for every query present in
// gold. A query absent from run is scored against an empty retrieved list.
func Evaluate(gold, run []Judgment) (map[string]QueryMetrics, QueryMetrics) {
	runByID := make(map[string][]int, len(run))
	for _, j := range run {
		runByID[j.QueryID] = j.DocumentPMIDs
	}

	perQuery := make(map[string]QueryMetrics, len(gold))
	var sum QueryMetrics
	for _, g := range gold {
		retrieved := runByID[g.QueryID]
		p := Precision(retrieved, g.DocumentPMIDs)
		r := Recall(retrieved, g.DocumentPMIDs)
		m := QueryMetrics{
			Precision:        p,
			Recall:           r,
			F1:               F1(p, r),
			AveragePrecision: AveragePrecision(retrieved, g.DocumentPMIDs),
			DCG:              DCG(retrieved, g.DocumentPMIDs),
		}
		perQuery[g.QueryID] = m
		sum.Precision += m.Precision
		sum.Recall += m.Recall
		sum.F1 += m.F1
		sum.AveragePrecision += m.AveragePrecision
		sum.DCG += m.DCG
	}

	n := float64(len(gold))
	if n == 0 {
		return perQuery, QueryMetrics{}
	}
	mean := QueryMetrics{
		Precision:        sum.Precision / n,
		Recall:           sum.Recall / n,
		F1:               sum.F1 / n,
		AveragePrecision: sum.AveragePrecision / n,
		DCG:              sum.DCG / n,
	}
	return perQuery, mean
}

func toSet(ids []int) map[int]bool {
	set := make(map[int]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func intersectionSize(a, b []int) int {
	set := toSet(b)
	count := 0
	for _, id := range a {
		if set[id] {
			count++
		}
	}
	return count
}
