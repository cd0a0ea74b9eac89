package sink

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"sync"

	"framematch/types"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// ReportSink prints each match instead of copying anything
type ReportSink struct {
	out     io.Writer
	mu      sync.Mutex
	results []types.MatchResult
}

// NewReportSink creates a sink printing to out
func NewReportSink(out io.Writer) *ReportSink {
	if out == nil {
		out = io.Discard
	}
	return &ReportSink{out: out}
}

// Consume prints the match and keeps it for the closing table
func (s *ReportSink) Consume(_ context.Context, result types.MatchResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.results = append(s.results, result)
	_, err := fmt.Fprintf(s.out, "%.6f similarity between %s and %s\n",
		result.Score, result.Source.Path(), result.Match.Name)
	return err
}

// Results returns the collected matches sorted by source name
func (s *ReportSink) Results() []types.MatchResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]types.MatchResult, len(s.results))
	copy(out, s.results)
	sort.Slice(out, func(i, j int) bool {
		return out[i].Source.Name < out[j].Source.Name
	})
	return out
}

// Close renders the summary table of every match
func (s *ReportSink) Close() error {
	results := s.Results()
	if len(results) == 0 {
		return nil
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.Style().Format.Header = text.FormatDefault
	tw.AppendHeader(table.Row{"Frame", "Best match", "Score"})
	for _, r := range results {
		tw.AppendRow(table.Row{r.Source.Name, r.Match.Name, strconv.FormatFloat(r.Score, 'f', 6, 64)})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := fmt.Fprintln(s.out, tw.Render())
	return err
}
