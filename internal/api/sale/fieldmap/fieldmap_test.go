package fieldmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToPhysical(t *testing.T) {
	assert.Equal(t, "Customer Region", ToPhysical(CustomerRegion))
	assert.Equal(t, "Price per Unit", ToPhysical(PricePerUnit))
	assert.Equal(t, "Age", ToPhysical(AgeRange))
	assert.Equal(t, "Date", ToPhysical(DateRange))
}

func TestToPhysical_UnknownKeyPassesThrough(t *testing.T) {
	assert.Equal(t, "loyaltyTier", ToPhysical("loyaltyTier"))
	assert.Equal(t, "", ToPhysical(""))
}

func TestToLogical_InvertsEveryField(t *testing.T) {
	for _, f := range Fields() {
		got, ok := ToLogical(f.Physical)
		if assert.True(t, ok, f.Physical) {
			assert.Equal(t, f.Logical, got.Logical)
			assert.Equal(t, f.Physical, ToPhysical(got.Logical))
		}
	}
	_, ok := ToLogical("_id")
	assert.False(t, ok)
}

func TestFields_ReturnsCopy(t *testing.T) {
	a := Fields()
	a[0].Physical = "mutated"
	assert.NotEqual(t, "mutated", Fields()[0].Physical)
}

func TestSplitTags(t *testing.T) {
	assert.Equal(t, []string{"red", "blue", "green"}, SplitTags("red, blue , green"))
	assert.Equal(t, []string{"a"}, SplitTags(" ,a,, "))
	assert.Empty(t, SplitTags(""))
}

func TestJoinTags(t *testing.T) {
	assert.Equal(t, "red,blue,green", JoinTags([]string{" red", "blue ", "", "green"}))
	assert.Equal(t, "", JoinTags(nil))
	assert.Equal(t, []string{"x", "y"}, SplitTags(JoinTags([]string{"x", "y"})))
}
