package zotero

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatorFullName(t *testing.T) {
	tests := []struct {
		name    string
		creator Creator
		want    string
	}{
		{"first and last", Creator{FirstName: "Jane", LastName: "Doe"}, "Jane Doe"},
		{"padded parts", Creator{FirstName: "  Jane ", LastName: " Doe  "}, "Jane Doe"},
		{"last only", Creator{LastName: "Doe"}, "Doe"},
		{"first only", Creator{FirstName: "Jane"}, "Jane"},
		{"both empty", Creator{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.creator.FullName())
		})
	}
}

func TestRecordDefaults(t *testing.T) {
	var bare Record
	assert.False(t, bare.HasData())
	assert.Equal(t, NoTitle, bare.Title())
	assert.Equal(t, UnknownItemType, bare.ItemType())
	assert.Empty(t, bare.Creators())

	full := Record{Key: "K", Data: &RecordData{ItemType: "book", Title: "Herkunft"}}
	assert.True(t, full.HasData())
	assert.Equal(t, "Herkunft", full.Title())
	assert.Equal(t, "book", full.ItemType())
}

func TestDecodePage(t *testing.T) {
	t.Run("array", func(t *testing.T) {
		records, err := decodePage([]byte(`[{"key":"A","data":{"itemType":"book"}},{"key":"B"}]`))
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.True(t, records[0].HasData())
		assert.False(t, records[1].HasData())
	})

	t.Run("wrapped object", func(t *testing.T) {
		records, err := decodePage([]byte(` {"data":[{"key":"A"}]}`))
		require.NoError(t, err)
		assert.Len(t, records, 1)
	})

	t.Run("object without data", func(t *testing.T) {
		records, err := decodePage([]byte(`{"total":0}`))
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	for _, body := range []string{``, `42`, `"x"`, `null`, `[1,2`} {
		t.Run("invalid "+body, func(t *testing.T) {
			_, err := decodePage([]byte(body))
			assert.True(t, errors.Is(err, ErrInvalidResponse))
		})
	}
}

func TestCollectionRefPaths(t *testing.T) {
	group := CollectionRef{Group: "42"}
	assert.Equal(t, "/groups/42/items", group.ItemsPath())
	assert.Equal(t, "/groups/42/items/K1", group.ItemPath("K1"))
	assert.Equal(t, "42", group.String())

	coll := CollectionRef{Group: "42", Collection: "C1"}
	assert.Equal(t, "/groups/42/collections/C1/items", coll.ItemsPath())
	assert.Equal(t, "/groups/42/items/K1", coll.ItemPath("K1"))
	assert.Equal(t, "42/C1", coll.String())
}
