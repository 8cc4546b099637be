package bcfdelta

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnchorSelector_FirstBiallelicRecordIsAlwaysAnchor(t *testing.T) {
	sel := NewAnchorSelector(1000)
	assert.True(t, sel.Decide("chr1", 0, 1))
}

func TestAnchorSelector_FirstMultiAllelicRecordIsNeverAnchor(t *testing.T) {
	sel := NewAnchorSelector(1000)
	assert.False(t, sel.Decide("chr1", 0, 2))
}

func TestAnchorSelector_SameBucketSameChromIsNotAnchor(t *testing.T) {
	sel := NewAnchorSelector(1000)
	sel.Advance("chr1", 0)
	assert.False(t, sel.Decide("chr1", 500, 1))
}

func TestAnchorSelector_BucketTransitionIsAnchor(t *testing.T) {
	sel := NewAnchorSelector(1000)
	sel.Advance("chr1", 0)
	assert.True(t, sel.Decide("chr1", 1000, 1))
}

func TestAnchorSelector_ChromTransitionIsAnchor(t *testing.T) {
	sel := NewAnchorSelector(1000)
	sel.Advance("chr1", 500)
	assert.True(t, sel.Decide("chr2", 500, 1))
}

func TestAnchorSelector_MultiAllelicNeverAnchorEvenOnTransition(t *testing.T) {
	sel := NewAnchorSelector(1000)
	sel.Advance("chr1", 0)
	assert.False(t, sel.Decide("chr2", 9999, 2), "chrom transition")
	assert.False(t, sel.Decide("chr1", 5000, 2), "bucket transition")
}

func TestAnchorSelector_AdvanceOnlyMovesStateWhenCalled(t *testing.T) {
	sel := NewAnchorSelector(1000)
	sel.Advance("chr1", 0)
	// Decide does not move the state: after the first call, the record at
	// pos 4000 is still judged against bucket 0.
	assert.False(t, sel.Decide("chr1", 900, 1))
	assert.True(t, sel.Decide("chr1", 4000, 1))
}

func TestAnchorSelector_ZeroRefFreqTreatedAsOne(t *testing.T) {
	sel := NewAnchorSelector(0)
	sel.Advance("chr1", 0)
	assert.True(t, sel.Decide("chr1", 1, 1), "every position is its own bucket when refFreq degenerates to 1")
}
