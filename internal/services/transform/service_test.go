package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ternarybob/auspex/internal/common"
)

func TestCleanHTMLBasicMarkup(t *testing.T) {
	svc := NewService(common.GetLogger())

	got := svc.CleanHTML("<p>Shares of <strong>Acme</strong> rallied today.</p>")
	assert.Contains(t, got, "Shares of")
	assert.Contains(t, got, "Acme")
	assert.NotContains(t, got, "<p>")
	assert.NotContains(t, got, "<strong>")
}

func TestCleanHTMLDropsLinkTargets(t *testing.T) {
	svc := NewService(common.GetLogger())

	got := svc.CleanHTML(`<p>Read the <a href="https://example.com/report">full report</a> here.</p>`)
	assert.Contains(t, got, "full report")
	assert.NotContains(t, got, "https://example.com/report")
}

func TestCleanHTMLDropsImages(t *testing.T) {
	svc := NewService(common.GetLogger())

	got := svc.CleanHTML(`<p>Before.</p><img src="https://cdn.test/chart.png" alt="chart"><p>After.</p>`)
	assert.Contains(t, got, "Before.")
	assert.Contains(t, got, "After.")
	assert.NotContains(t, got, "chart.png")
}

func TestCleanHTMLEmptyInput(t *testing.T) {
	svc := NewService(common.GetLogger())

	assert.Equal(t, "", svc.CleanHTML(""))
	assert.Equal(t, "", svc.CleanHTML("   \n\t"))
}

func TestCleanHTMLPlainTextPassesThrough(t *testing.T) {
	svc := NewService(common.GetLogger())

	got := svc.CleanHTML("No markup at all.")
	assert.Equal(t, "No markup at all.", got)
}

func TestStripHTMLTagsFallback(t *testing.T) {
	got := stripHTMLTags("<div>Q3 &amp; Q4 revenue &gt; forecast</div>")
	assert.Equal(t, "Q3 & Q4 revenue > forecast", got)
}
