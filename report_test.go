package timestats

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectRows(t *testing.T) {
	p, clock := newTestProfiler(t)

	_, err := p.Profile("begin", "dispatch")
	require.NoError(t, err)
	clock.Advance(10 * time.Millisecond)
	_, err = p.Profile("begin", "render", "comment", "template")
	require.NoError(t, err)
	clock.Advance(20 * time.Millisecond)
	_, err = p.Profile("end", "render")
	require.NoError(t, err)
	clock.Advance(5 * time.Millisecond)
	_, err = p.Profile("loose note")
	require.NoError(t, err)

	rows := p.CollectRows()
	require.Len(t, rows, 3)

	// Still-open scope: no elapsed yet.
	assert.Equal(t, Row{Depth: 1, Label: "dispatch", IsScope: true}, rows[0])

	assert.Equal(t, 2, rows[1].Depth)
	assert.Equal(t, "render - template", rows[1].Label)
	assert.True(t, rows[1].IsScope)
	assert.True(t, rows[1].HasElapsed)
	assert.Equal(t, 20*time.Millisecond, rows[1].Elapsed)

	assert.Equal(t, 2, rows[2].Depth)
	assert.Equal(t, "loose note", rows[2].Label)
	assert.False(t, rows[2].IsScope)
	// Measured from the previous sibling's start ("render" opened at
	// +10ms), not from the enclosing scope.
	assert.Equal(t, 25*time.Millisecond, rows[2].Elapsed)
}

func TestRowLabelForms(t *testing.T) {
	tests := []struct {
		name string
		node Node
		want string
	}{
		{name: "action and comment", node: Node{action: "db", comment: "users query"}, want: "db - users query"},
		{name: "action only", node: Node{action: "db"}, want: "db"},
		{name: "comment only", node: Node{comment: "checkpoint"}, want: "checkpoint"},
		{name: "neither", node: Node{}, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.node.label())
		})
	}
}

func TestFormatElapsed(t *testing.T) {
	assert.Equal(t, "??", formatElapsed(Row{}))
	assert.Equal(t, "0.123400s", formatElapsed(Row{Elapsed: 123400 * time.Microsecond, HasElapsed: true}))
}

func TestFormatShare(t *testing.T) {
	row := Row{Elapsed: 250 * time.Millisecond, HasElapsed: true}
	assert.Equal(t, "25.0%", formatShare(row, time.Second))

	// Zero total must not produce NaN.
	assert.Equal(t, "0.0%", formatShare(row, 0))
	assert.Equal(t, "0.0%", formatShare(Row{}, time.Second))
}

func TestTopLevelSharesSumBelowHundred(t *testing.T) {
	p, clock := newTestProfiler(t)

	for _, label := range []string{"a", "b", "c"} {
		_, err := p.Profile("begin", label)
		require.NoError(t, err)
		clock.Advance(10 * time.Millisecond)
		_, err = p.Profile("end", label)
		require.NoError(t, err)
	}

	total := p.Elapsed()
	var sum float64
	for _, row := range p.CollectRows() {
		if row.Depth == 1 && row.HasElapsed {
			sum += row.Elapsed.Seconds() / total.Seconds() * 100
		}
	}
	assert.LessOrEqual(t, sum, 100.0+1e-9)
}

func TestColorSchemaLookup(t *testing.T) {
	schema := ColorSchema{
		0.01: lipgloss.Color("Y"),
		0.1:  lipgloss.Color("R"),
	}

	tests := []struct {
		elapsed time.Duration
		want    string
		found   bool
	}{
		{200 * time.Millisecond, "R", true},
		{100 * time.Millisecond, "R", true},
		{50 * time.Millisecond, "Y", true},
		{10 * time.Millisecond, "Y", true},
		{5 * time.Millisecond, "", false},
		{0, "", false},
	}
	for _, tt := range tests {
		c, ok := schema.Color(tt.elapsed)
		assert.Equal(t, tt.found, ok, "elapsed %s", tt.elapsed)
		assert.Equal(t, lipgloss.Color(tt.want), c, "elapsed %s", tt.elapsed)
	}
}

func TestDefaultColorSchema(t *testing.T) {
	schema := DefaultColorSchema()

	c, ok := schema.Color(600 * time.Millisecond)
	require.True(t, ok)
	assert.Equal(t, lipgloss.Color("9"), c)

	c, ok = schema.Color(20 * time.Millisecond)
	require.True(t, ok)
	assert.Equal(t, lipgloss.Color("3"), c)

	_, ok = schema.Color(time.Millisecond)
	assert.False(t, ok)
}

func TestRenderTable(t *testing.T) {
	p, clock := newTestProfiler(t)

	_, err := p.Profile("begin", "query", "comment", "users")
	require.NoError(t, err)
	clock.Advance(30 * time.Millisecond)
	_, err = p.Profile("end", "query")
	require.NoError(t, err)
	_, err = p.Profile("begin", "hanging")
	require.NoError(t, err)

	out := p.RenderTable()
	assert.Contains(t, out, "Action")
	assert.Contains(t, out, "Time")
	assert.Contains(t, out, "query - users")
	assert.Contains(t, out, "0.030000s")
	assert.Contains(t, out, "100.0%")
	// The open scope renders a placeholder and a zero share.
	assert.Contains(t, out, "hanging")
	assert.Contains(t, out, "??")
	assert.Contains(t, out, "0.0%")
}

func TestRenderTableIndentsByDepth(t *testing.T) {
	p, clock := newTestProfiler(t)

	_, err := p.Profile("begin", "outer")
	require.NoError(t, err)
	clock.Advance(time.Millisecond)
	_, err = p.Profile("inner note")
	require.NoError(t, err)
	clock.Advance(time.Millisecond)
	_, err = p.Profile("end", "outer")
	require.NoError(t, err)

	rows := p.CollectRows()
	require.Len(t, rows, 2)

	out := p.RenderTable()
	// Depth-2 labels carry one more leading space than depth-1 ones.
	assert.Contains(t, out, strings.Repeat(" ", rows[0].Depth)+"outer")
	assert.Contains(t, out, strings.Repeat(" ", rows[1].Depth)+"inner note")
}
