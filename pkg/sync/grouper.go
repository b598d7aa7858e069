package sync

import (
	"github.com/taployalty/lightspeed-sync/pkg/lightspeed"
)

// LineGroup is the set of sale lines sharing one saleID, in encounter order.
type LineGroup struct {
	SaleID string
	Lines  []*lightspeed.SaleLine
}

// GroupLines partitions a page of sale lines into per-sale groups. Group
// order follows the first appearance of each saleID; lines with no saleID
// are skipped. The groups hold pointers into lines so enrichment backfill
// is visible to the assembler.
func GroupLines(lines []lightspeed.SaleLine) []LineGroup {
	var groups []LineGroup
	index := make(map[string]int)

	for i := range lines {
		line := &lines[i]
		if line.SaleID == "" {
			continue
		}

		gi, ok := index[line.SaleID]
		if !ok {
			gi = len(groups)
			index[line.SaleID] = gi
			groups = append(groups, LineGroup{SaleID: line.SaleID})
		}
		groups[gi].Lines = append(groups[gi].Lines, line)
	}

	return groups
}
