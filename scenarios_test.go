package mustache_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gomustache/mustache"
)

// Scenario 1: a run of tags and static text with triple-mustache, checked
// for both tree shape and source position.
func ExampleParse_scenario1() {
	nodes, err := mustache.Parse("Hello{{tag1}}\nWorld{{{ tag2 }}}Until eof", mustache.Config{})
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	for _, n := range nodes {
		fmt.Printf("%+v @ (%d,%d)\n", n, n.Line, n.Col)
	}
	// Output:
	// Static "Hello" left=preserve right=preserve @ (1,1)
	// Interpolation("tag1") @ (1,6)
	// Static "\nWorld" left=preserve right=preserve @ (1,14)
	// Raw("tag2") @ (2,6)
	// Static "Until eof" left=preserve right=preserve @ (2,18)
}

func TestScenario1TripleMustacheRawContentKeepsSurroundingSpaces(t *testing.T) {
	nodes, err := mustache.Parse("Hello{{tag1}}\nWorld{{{ tag2 }}}Until eof", mustache.Config{})
	require.NoError(t, err)
	require.Len(t, nodes, 5)
	assert.Equal(t, mustache.Raw, nodes[3].Type)
	assert.Equal(t, "tag2", nodes[3].Identifier)
	assert.Equal(t, " tag2 ", nodes[3].Content.Text())
}

// Scenario 2's full-tree shape and streamed-batch boundaries are covered by
// TestBuilderStreamedModeFlushesRootLevelStaticBoundaries in builder_test.go.

func TestScenario3StandaloneCommentTrimsSurroundingWhitespace(t *testing.T) {
	src := "   {{!           \n   Comments block \n   }}            \nHello"
	nodes, err := mustache.Parse(src, mustache.Config{})
	require.NoError(t, err)
	require.Len(t, nodes, 3)

	assert.Equal(t, mustache.Static, nodes[0].Type)
	assert.Equal(t, "", nodes[0].Content.Text())

	assert.Equal(t, mustache.Comment, nodes[1].Type)
	assert.True(t, nodes[1].HasIndentation)
	assert.Equal(t, "   ", nodes[1].Indentation.Text())

	assert.Equal(t, mustache.Static, nodes[2].Type)
	assert.Equal(t, "Hello", nodes[2].Content.Text())
}

func TestScenario4DelimiterChangeThenTagUnderNewPair(t *testing.T) {
	nodes, err := mustache.Parse("{{=[ ]=}}           \n[interpolation]", mustache.Config{})
	require.NoError(t, err)
	require.NotEmpty(t, nodes)

	assert.Equal(t, mustache.SetDelimiters, nodes[0].Type)
	assert.Equal(t, "[", nodes[0].Delimiters.Start)
	assert.Equal(t, "]", nodes[0].Delimiters.End)

	last := nodes[len(nodes)-1]
	assert.Equal(t, mustache.Interpolation, last.Type)
	assert.Equal(t, "interpolation", last.Identifier)
}

func TestScenario5LambdaInnerTextNesting(t *testing.T) {
	src := "{{#section1}}begin_content1{{#section2}}content2{{/section2}}end_content1{{/section1}}"
	nodes, err := mustache.Parse(src, mustache.Config{WithLambdas: true})
	require.NoError(t, err)

	var section1, section2 *mustache.Node
	for i := range nodes {
		switch nodes[i].Identifier {
		case "section1":
			section1 = &nodes[i]
		case "section2":
			section2 = &nodes[i]
		}
	}
	require.NotNil(t, section1)
	require.NotNil(t, section2)
	assert.Equal(t, "content2", section2.InnerText.Text())
	assert.Equal(t, "begin_content1{{#section2}}content2{{/section2}}end_content1", section1.InnerText.Text())
}

func TestScenario6MissingCloseYieldsUnexpectedEOFAtEOF(t *testing.T) {
	_, err := mustache.Parse("{{tag1", mustache.Config{})
	require.Error(t, err)
	var merr *mustache.Error
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, mustache.UnexpectedEOF, merr.Kind)
	assert.Equal(t, 1, merr.Line)
	assert.Equal(t, 7, merr.Col)
}
