package util_test

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/slacklinehq/slackline/pkg/util"
)

func TestConvertList(t *testing.T) {
	t.Parallel()
	got := util.ConvertList([]int{1, 2, 3}, strconv.Itoa)
	assert.Equal(t, []string{"1", "2", "3"}, got)
	assert.Empty(t, util.ConvertList(nil, strconv.Itoa))
}

func TestSliceIncludes(t *testing.T) {
	t.Parallel()
	assert.True(t, util.SliceIncludes([]string{"a", "b"}, "b"))
	assert.False(t, util.SliceIncludes([]string{"a", "b"}, "c"))
	assert.False(t, util.SliceIncludes(nil, "a"))
}

func TestPtrVal(t *testing.T) {
	t.Parallel()
	p := util.Ptr(42)
	assert.Equal(t, 42, util.Val(p))
	assert.Zero(t, util.Val[int](nil))
}
