package gcsstore

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("obj.slice%06d", i+1)
	}
	return out
}

func TestPlanCompose_SingleCall(t *testing.T) {
	steps, intermediates := planCompose("obj", names(32), maxComposeSources)
	require.Len(t, steps, 1)
	assert.Empty(t, intermediates)
	assert.Equal(t, "obj", steps[0].dst)
	assert.Equal(t, names(32), steps[0].sources)
}

func TestPlanCompose_TwoLevels(t *testing.T) {
	src := names(70)
	steps, intermediates := planCompose("obj", src, maxComposeSources)

	// 32 + 32 + 6 into intermediates, then one final compose.
	require.Len(t, steps, 4)
	assert.Equal(t, []string{"obj.slice-compose-1-1", "obj.slice-compose-1-2", "obj.slice-compose-1-3"}, intermediates)
	assert.Equal(t, src[:32], steps[0].sources)
	assert.Equal(t, src[64:], steps[2].sources)
	assert.Equal(t, "obj", steps[3].dst)
	assert.Equal(t, intermediates, steps[3].sources)
}

func TestPlanCompose_TrailingSingleIsCarried(t *testing.T) {
	src := names(5)
	steps, intermediates := planCompose("obj", src, 2)

	final := steps[len(steps)-1]
	assert.Equal(t, "obj", final.dst)
	assert.LessOrEqual(t, len(final.sources), 2)
	for _, step := range steps {
		assert.LessOrEqual(t, len(step.sources), 2)
	}
	// slice 5 is never composed alone.
	for _, step := range steps {
		assert.NotEqual(t, []string{src[4]}, step.sources)
	}
	assert.Len(t, intermediates, len(steps)-1)
}

func TestPlanCompose_PreservesOrder(t *testing.T) {
	src := names(100)
	steps, _ := planCompose("obj", src, 4)

	// Expanding the final step through the intermediates yields the sources in order.
	byName := map[string][]string{}
	for _, step := range steps {
		byName[step.dst] = step.sources
	}
	var expand func(string) []string
	expand = func(name string) []string {
		parts, ok := byName[name]
		if !ok {
			return []string{name}
		}
		var out []string
		for _, p := range parts {
			out = append(out, expand(p)...)
		}
		return out
	}
	assert.Equal(t, src, expand("obj"))
}
