package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuggestMapping(t *testing.T) {
	t.Run("exact headers", func(t *testing.T) {
		mapping := SuggestMapping([]string{"Date", "Description", "Amount", "Category", "Type", "Tag"})
		assert.Equal(t, map[string]string{
			FieldDate:        "Date",
			FieldDescription: "Description",
			FieldAmount:      "Amount",
			FieldCategory:    "Category",
			FieldType:        "Type",
			FieldTag:         "Tag",
		}, mapping)
	})

	t.Run("underscores and aliases", func(t *testing.T) {
		mapping := SuggestMapping([]string{"Posted_Date", "Memo", "AMT", "Category Name", "Trans Type"})
		assert.Equal(t, "Posted_Date", mapping[FieldDate])
		assert.Equal(t, "Memo", mapping[FieldDescription])
		assert.Equal(t, "AMT", mapping[FieldAmount])
		assert.Equal(t, "Category Name", mapping[FieldCategory])
		assert.Equal(t, "Trans Type", mapping[FieldType])
	})

	t.Run("whole word substring match", func(t *testing.T) {
		mapping := SuggestMapping([]string{"Transaction Date GMT"})
		assert.Equal(t, "Transaction Date GMT", mapping[FieldDate])
	})

	t.Run("partial word does not match", func(t *testing.T) {
		mapping := SuggestMapping([]string{"updated"})
		assert.NotContains(t, mapping, FieldDate)
	})

	t.Run("unmatched fields absent", func(t *testing.T) {
		mapping := SuggestMapping([]string{"Date", "Amount"})
		assert.Equal(t, "Date", mapping[FieldDate])
		assert.NotContains(t, mapping, FieldDescription)
		assert.NotContains(t, mapping, FieldTag)
	})

	t.Run("no headers", func(t *testing.T) {
		assert.Empty(t, SuggestMapping(nil))
	})
}
