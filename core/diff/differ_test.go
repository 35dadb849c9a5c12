package diff

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"funnel-cost/core/funnel"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func before() funnel.Result {
	return funnel.Result{
		CostNoReply:   d("220"),
		CostReplies:   d("3850"),
		CostQualified: d("2625"),
		CostBooked:    d("4575"),
		TotalCost:     d("11270"),
	}
}

func after() funnel.Result {
	return funnel.Result{
		CostNoReply:    d("220"),
		CostReplies:    d("4235"),
		CostQualified:  d("2625"),
		CostCommission: d("500"),
		TotalCost:      d("7580"),
	}
}

func TestDiff(t *testing.T) {
	r := NewDiffer(0).Diff(before(), after())

	require.True(t, r.TotalDelta.Equal(d("-3690")))
	require.InDelta(t, -32.741792, r.DeltaPercent.InexactFloat64(), 1e-6)

	changes := make(map[funnel.Stage]ChangeType)
	for _, c := range r.Components {
		changes[c.Stage] = c.ChangeType
	}
	require.Equal(t, map[funnel.Stage]ChangeType{
		funnel.StageNoReply:    ChangeUnchanged,
		funnel.StageReplies:    ChangeIncreased,
		funnel.StageQualified:  ChangeUnchanged,
		funnel.StageBooked:     ChangeRemoved,
		funnel.StageCommission: ChangeAdded,
	}, changes, "stages billed on neither side are skipped")

	require.Equal(t, 1, r.AddedCount)
	require.Equal(t, 1, r.RemovedCount)
	require.Equal(t, 1, r.ChangedCount)
	require.Equal(t, 2, r.UnchangedCount)

	replies := r.Components[1]
	require.Equal(t, funnel.StageReplies, replies.Stage)
	require.True(t, replies.Delta.Equal(d("385")))
	require.True(t, replies.Percent.Equal(d("10")))
}

func TestDiffThreshold(t *testing.T) {
	r := NewDiffer(0.2).Diff(before(), after())

	require.Equal(t, ChangeUnchanged, r.Components[1].ChangeType)
	require.Equal(t, 0, r.ChangedCount)
}

func TestDiffThresholdIsRelative(t *testing.T) {
	small := funnel.Result{CostBooked: d("4575"), TotalCost: d("4575")}
	moved := funnel.Result{CostBooked: d("4580"), TotalCost: d("4580")}

	// a 5 unit move on 4575 is about 0.11%
	require.Equal(t, ChangeIncreased, NewDiffer(0.001).Diff(small, moved).Components[0].ChangeType)
	require.Equal(t, ChangeUnchanged, NewDiffer(0.01).Diff(small, moved).Components[0].ChangeType)
}

func TestDiffIdentical(t *testing.T) {
	r := NewDiffer(0).Diff(before(), before())

	require.True(t, r.TotalDelta.IsZero())
	require.Equal(t, 4, r.UnchangedCount)
	require.Empty(t, r.TopChanges(5))
	require.Equal(t, "No cost change\n", r.Summary(nil))
}

func TestTopChanges(t *testing.T) {
	r := NewDiffer(0).Diff(before(), after())

	top := r.TopChanges(2)
	require.Len(t, top, 2)
	require.Equal(t, funnel.StageBooked, top[0].Stage)
	require.Equal(t, funnel.StageCommission, top[1].Stage)

	require.Len(t, r.TopChanges(10), 3)
	require.Empty(t, r.TopChanges(-1))
}

func TestSummary(t *testing.T) {
	r := NewDiffer(0).Diff(before(), after())

	require.Equal(t, "Cost decreased by 3690.00 (-32.7%)\n"+
		"  + 1 components added\n"+
		"  - 1 components removed\n"+
		"  ~ 1 components changed\n", r.Summary(nil))

	up := NewDiffer(0).Diff(after(), before())
	require.Contains(t, up.Summary(nil), "Cost increased by 3690.00 (+48.7%)")

	money := func(d decimal.Decimal) string { return "$" + d.StringFixed(0) }
	require.Contains(t, up.Summary(money), "Cost increased by $3690 (+48.7%)")
}

func TestChangeTypeText(t *testing.T) {
	text, err := ChangeDecreased.MarshalText()
	require.NoError(t, err)
	require.Equal(t, "decreased", string(text))
	require.Equal(t, "unknown", ChangeType(42).String())
}
