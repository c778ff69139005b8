package usecase

import (
	"fmt"
	"strings"
	"time"
)

// RowError は拒否された1行の位置と理由です。
type RowError struct {
	Line   int
	Reason string
}

// Report は取り込みパイプライン1回分の集計結果です。
// 純粋な導出データであり、永続化はされません。
type Report struct {
	Source     string
	StartedAt  time.Time
	FinishedAt time.Time
	TotalRows  int
	ValidCount int
	Rejections []RowError
	Warnings   []string
	// Stored は取り込み完了後のストア内の総レコード数です。
	Stored int64
}

// RejectedCount は拒否された行数を返します。
func (r *Report) RejectedCount() int {
	return len(r.Rejections)
}

// SuccessRate は検証を通過した行の割合（%）を返します。
func (r *Report) SuccessRate() float64 {
	if r.TotalRows == 0 {
		return 0
	}
	return float64(r.ValidCount) / float64(r.TotalRows) * 100
}

// Summary は人間が読めるレポートを生成します。
func (r *Report) Summary() string {
	var b strings.Builder
	line := strings.Repeat("=", 50)

	fmt.Fprintln(&b, line)
	fmt.Fprintln(&b, "DATA INGESTION REPORT")
	fmt.Fprintf(&b, "Generated: %s\n", r.FinishedAt.Format(time.RFC3339))
	fmt.Fprintln(&b, line)
	fmt.Fprintf(&b, "Source:        %s\n", r.Source)
	fmt.Fprintf(&b, "Total rows:    %d\n", r.TotalRows)
	fmt.Fprintf(&b, "Valid:         %d\n", r.ValidCount)
	fmt.Fprintf(&b, "Rejected:      %d\n", r.RejectedCount())
	fmt.Fprintf(&b, "Success rate:  %.1f%%\n", r.SuccessRate())
	fmt.Fprintf(&b, "Stored total:  %d\n", r.Stored)

	if len(r.Rejections) > 0 {
		fmt.Fprintln(&b, strings.Repeat("-", 50))
		fmt.Fprintln(&b, "Rejected rows:")
		for _, e := range r.Rejections {
			fmt.Fprintf(&b, "  line %d: %s\n", e.Line, e.Reason)
		}
	}
	if len(r.Warnings) > 0 {
		fmt.Fprintln(&b, strings.Repeat("-", 50))
		fmt.Fprintln(&b, "Warnings:")
		for _, w := range r.Warnings {
			fmt.Fprintf(&b, "  %s\n", w)
		}
	}
	fmt.Fprintln(&b, line)
	return b.String()
}
