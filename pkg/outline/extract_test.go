package outline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattsolo1/grove-docnav/pkg/models"
)

func TestExtractHTML(t *testing.T) {
	body := `<html><head><title>Doc</title></head><body>
<h1 id="h.1">Overview</h1>
<p>Intro text</p>
<h3 id="h.2"><span>Deep   </span><b>dive</b></h3>
<div><h2 id="h.3">Details</h2></div>
</body></html>`

	headings, err := ExtractHTML(strings.NewReader(body))
	require.NoError(t, err)

	assert.Equal(t, []models.Heading{
		{Level: 1, ID: "h.1", Text: "Overview"},
		{Level: 3, ID: "h.2", Text: "Deep dive"},
		{Level: 2, ID: "h.3", Text: "Details"},
	}, headings)
}

func TestExtractHTMLWithoutHeadings(t *testing.T) {
	headings, err := ExtractHTML(strings.NewReader("<p>nothing here</p>"))
	require.NoError(t, err)
	assert.Empty(t, headings)
}

func TestExtractMarkdown(t *testing.T) {
	src := []byte("# Title\n\nSome text.\n\n## Setup\n\n### Install\n\n## Usage\n")

	headings, err := ExtractMarkdown(src)
	require.NoError(t, err)
	require.Len(t, headings, 4)

	assert.Equal(t, models.Heading{Level: 1, ID: "title", Text: "Title"}, headings[0])
	assert.Equal(t, "setup", headings[1].ID)
	assert.Equal(t, 3, headings[2].Level)
	assert.Equal(t, "Usage", headings[3].Text)

	assert.Equal(t, "Title(Setup(Install),Usage)", shape(Build(headings)))
}
