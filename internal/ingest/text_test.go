package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanText_NormalizesLineEndings(t *testing.T) {
	input := "first line\r\nsecond line\rthird line"
	result := CleanText(input)
	assert.Equal(t, "first line\nsecond line\nthird line", result)
}

func TestCleanText_CollapsesBlankLines(t *testing.T) {
	input := "first\n\n\n\nsecond"
	result := CleanText(input)
	assert.Equal(t, "first\n\nsecond", result)
}

func TestCleanText_NormalizesInternalSpaces(t *testing.T) {
	input := "a    sentence   with\tgaps"
	result := CleanText(input)
	assert.Equal(t, "a sentence with gaps", result)
}

func TestCleanText_EmptyInput(t *testing.T) {
	assert.Equal(t, "", CleanText(""))
	assert.Equal(t, "", CleanText("   \n\t\n  "))
}

func TestSplitItems_ParagraphsBecomeItems(t *testing.T) {
	input := "A tensor is a multilinear map.\n\nApply the chain rule to compute derivatives."

	items := SplitItems(input)
	require.Len(t, items, 2)
	assert.Equal(t, 1, items[0].ID)
	assert.Equal(t, "A tensor is a multilinear map.", items[0].Text)
	assert.Equal(t, 2, items[1].ID)
	assert.Equal(t, 6, items[0].WordCount)
}

func TestSplitItems_MultiLineParagraphJoins(t *testing.T) {
	input := "A definition spread\nacross two lines."

	items := SplitItems(input)
	require.Len(t, items, 1)
	assert.Equal(t, "A definition spread across two lines.", items[0].Text)
}

func TestSplitItems_BulletsAreSeparateItems(t *testing.T) {
	input := "- An axiom is accepted without proof.\n- Apply the substitution method.\n- Used in engineering practice."

	items := SplitItems(input)
	require.Len(t, items, 3)
	assert.Equal(t, "An axiom is accepted without proof.", items[0].Text)
	assert.Equal(t, "Apply the substitution method.", items[1].Text)
	assert.Equal(t, []int{1, 2, 3}, []int{items[0].ID, items[1].ID, items[2].ID})
}

func TestSplitItems_UnicodeBulletMarker(t *testing.T) {
	input := "• First point.\n• Second point."

	items := SplitItems(input)
	require.Len(t, items, 2)
	assert.Equal(t, "First point.", items[0].Text)
}

func TestSplitItems_HeadingsDropped(t *testing.T) {
	input := "# Lesson One\n\nAn axiom is accepted without proof.\n\n## Details\n\nApply the method carefully."

	items := SplitItems(input)
	require.Len(t, items, 2)
	assert.Equal(t, "An axiom is accepted without proof.", items[0].Text)
	assert.Equal(t, "Apply the method carefully.", items[1].Text)
}

func TestSplitItems_MixedProseAndBullets(t *testing.T) {
	input := "Intro paragraph here.\n- first bullet\n- second bullet\nClosing remark."

	items := SplitItems(input)
	require.Len(t, items, 4)
	assert.Equal(t, "Intro paragraph here.", items[0].Text)
	assert.Equal(t, "first bullet", items[1].Text)
	assert.Equal(t, "second bullet", items[2].Text)
	assert.Equal(t, "Closing remark.", items[3].Text)
}

func TestSplitItems_EmptyContent(t *testing.T) {
	assert.Nil(t, SplitItems(""))
	assert.Nil(t, SplitItems("\n\n\n"))
}

func TestSplitItems_IDsSequentialFromOne(t *testing.T) {
	input := "One.\n\nTwo.\n\nThree.\n\nFour."
	items := SplitItems(input)
	require.Len(t, items, 4)
	for i, item := range items {
		assert.Equal(t, i+1, item.ID)
	}
}
