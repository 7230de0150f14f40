package cmd

import (
	"slices"

	"github.com/skipera/skipera/internal/llm"
	"github.com/skipera/skipera/internal/store"
)

// usageTotals is token usage and estimated cost for one item or one run.
type usageTotals struct {
	Calls        int
	Failed       int
	InputTokens  int
	OutputTokens int
	Cost         float64
	Partial      bool // some calls used a model without pricing
}

func (u *usageTotals) add(o usageTotals) {
	u.Calls += o.Calls
	u.Failed += o.Failed
	u.InputTokens += o.InputTokens
	u.OutputTokens += o.OutputTokens
	u.Cost += o.Cost
	u.Partial = u.Partial || o.Partial
}

type itemCost struct {
	ItemID string
	usageTotals
}

type runCost struct {
	RunID string
	Items []itemCost
	Total usageTotals
}

// summarizeCost folds per-model usage rows into per-item and per-run
// totals, keeping the row order. It also returns the models that have
// no pricing entry.
func summarizeCost(rows []store.ItemUsage) (runs []runCost, unpriced []string) {
	for _, r := range rows {
		u := usageTotals{
			Calls:        r.Calls,
			Failed:       r.Failed,
			InputTokens:  r.InputTokens,
			OutputTokens: r.OutputTokens,
		}
		if c := llm.LookupCost(r.Model); c != nil {
			u.Cost = c.Cost(r.InputTokens, r.OutputTokens)
		} else {
			u.Partial = true
			if !slices.Contains(unpriced, r.Model) {
				unpriced = append(unpriced, r.Model)
			}
		}

		if len(runs) == 0 || runs[len(runs)-1].RunID != r.RunID {
			runs = append(runs, runCost{RunID: r.RunID})
		}
		run := &runs[len(runs)-1]
		run.Total.add(u)

		i := slices.IndexFunc(run.Items, func(ic itemCost) bool { return ic.ItemID == r.ItemID })
		if i < 0 {
			run.Items = append(run.Items, itemCost{ItemID: r.ItemID})
			i = len(run.Items) - 1
		}
		run.Items[i].add(u)
	}
	return runs, unpriced
}

func (u usageTotals) costString() string {
	s := formatCost(u.Cost)
	if u.Partial {
		s += "+?"
	}
	return s
}
