package report

import (
	"fmt"
	"slices"
	"strings"

	"github.com/aretw0/exprmig/internal/config"
	"github.com/aretw0/exprmig/pkg/domain"
)

// TotalLabel names the margin row and column.
const TotalLabel = "All"

// Pivot counts occurrences per expression (rows) and tenant (columns).
type Pivot struct {
	GroupBy string
	Rows    []string
	Columns []string

	counts    map[string]map[string]int
	rowTotals map[string]int
	colTotals map[string]int
	total     int
}

// BuildPivot groups occurrences by service, or by service and subservice when groupBy
// is config.GroupBySubservice. Rows and columns are sorted.
func BuildPivot(occurrences []domain.Occurrence, groupBy string) Pivot {
	p := Pivot{
		GroupBy:   groupBy,
		counts:    map[string]map[string]int{},
		rowTotals: map[string]int{},
		colTotals: map[string]int{},
	}

	for _, occ := range occurrences {
		col := occ.Service
		if groupBy == config.GroupBySubservice {
			col = occ.Service + " " + occ.Subservice
		}

		row, ok := p.counts[occ.Expression]
		if !ok {
			row = map[string]int{}
			p.counts[occ.Expression] = row
			p.Rows = append(p.Rows, occ.Expression)
		}
		if _, seen := p.colTotals[col]; !seen {
			p.Columns = append(p.Columns, col)
		}

		row[col]++
		p.rowTotals[occ.Expression]++
		p.colTotals[col]++
		p.total++
	}

	slices.Sort(p.Rows)
	slices.Sort(p.Columns)
	return p
}

// Count returns the cell count. The TotalLabel row or column returns margins.
func (p Pivot) Count(row, col string) int {
	switch {
	case row == TotalLabel && col == TotalLabel:
		return p.total
	case row == TotalLabel:
		return p.colTotals[col]
	case col == TotalLabel:
		return p.rowTotals[row]
	default:
		return p.counts[row][col]
	}
}

// Empty reports whether the pivot holds no occurrence.
func (p Pivot) Empty() bool {
	return p.total == 0
}

// Markdown renders the pivot as a markdown table with margins.
func (p Pivot) Markdown() string {
	var b strings.Builder

	header := "expression \\ service"
	if p.GroupBy == config.GroupBySubservice {
		header = "expression \\ service subservice"
	}

	cols := append(slices.Clone(p.Columns), TotalLabel)

	b.WriteString("| " + header)
	for _, c := range cols {
		b.WriteString(" | " + escapeCell(c))
	}
	b.WriteString(" |\n|---")
	for range cols {
		b.WriteString("|--:")
	}
	b.WriteString("|\n")

	rows := append(slices.Clone(p.Rows), TotalLabel)
	for _, r := range rows {
		label := TotalLabel
		if r != TotalLabel {
			label = "`" + escapeCell(r) + "`"
		}
		b.WriteString("| " + label)
		for _, c := range cols {
			fmt.Fprintf(&b, " | %d", p.Count(r, c))
		}
		b.WriteString(" |\n")
	}
	return b.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
