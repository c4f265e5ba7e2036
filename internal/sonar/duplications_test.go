package sonar

import (
	"context"
	"net/http"
	"testing"

	"github.com/huangsam/sonar-cli/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinBlocks(t *testing.T) {
	files := map[string]FileRef{
		"1": {Key: "proj:a.go", Name: "a.go"},
		"2": {Key: "proj:b.go", Name: "b.go"},
		"3": {Key: "proj:c.go"},
		"4": {Key: "proj:a.go", Name: "a.go (alias)"},
	}

	tests := []struct {
		name     string
		groups   []DuplicationGroup
		expected []schema.DuplicationBlock
	}{
		{
			name:   "pairs current block with others",
			groups: []DuplicationGroup{{Blocks: []BlockRef{{From: 10, Size: 5, Ref: "1"}, {From: 40, Size: 5, Ref: "2"}}}},
			expected: []schema.DuplicationBlock{
				{From: 10, Size: 5, DuplicatedIn: "b.go", DuplicatedFrom: 40},
			},
		},
		{
			name:     "only own block yields nothing",
			groups:   []DuplicationGroup{{Blocks: []BlockRef{{From: 10, Size: 5, Ref: "1"}}}},
			expected: nil,
		},
		{
			name:     "other ref resolving to current file is skipped",
			groups:   []DuplicationGroup{{Blocks: []BlockRef{{From: 10, Size: 5, Ref: "1"}, {From: 90, Size: 5, Ref: "4"}}}},
			expected: nil,
		},
		{
			name:     "unresolvable refs are skipped",
			groups:   []DuplicationGroup{{Blocks: []BlockRef{{From: 10, Size: 5, Ref: "1"}, {From: 1, Size: 5, Ref: "99"}}}},
			expected: nil,
		},
		{
			name:     "group without current file is skipped",
			groups:   []DuplicationGroup{{Blocks: []BlockRef{{From: 1, Size: 3, Ref: "2"}, {From: 7, Size: 3, Ref: "3"}}}},
			expected: nil,
		},
		{
			name: "key used when name is missing",
			groups: []DuplicationGroup{{Blocks: []BlockRef{
				{From: 3, Size: 8, Ref: "3"},
				{From: 20, Size: 8, Ref: "1"},
				{From: 30, Size: 8, Ref: "2"},
			}}},
			expected: []schema.DuplicationBlock{
				{From: 20, Size: 8, DuplicatedIn: "proj:c.go", DuplicatedFrom: 3},
				{From: 20, Size: 8, DuplicatedIn: "b.go", DuplicatedFrom: 30},
			},
		},
		{
			name: "first current block wins when malformed",
			groups: []DuplicationGroup{{Blocks: []BlockRef{
				{From: 1, Size: 2, Ref: "1"},
				{From: 50, Size: 2, Ref: "1"},
				{From: 70, Size: 2, Ref: "2"},
			}}},
			expected: []schema.DuplicationBlock{
				{From: 1, Size: 2, DuplicatedIn: "b.go", DuplicatedFrom: 70},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := JoinBlocks(DuplicationDetail{Duplications: tt.groups, Files: files}, "proj:a.go")
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestDuplicationsWithBlocks(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/measures/component_tree":
			_, _ = w.Write([]byte(`{"paging":{"pageIndex":1,"pageSize":100,"total":2},"components":[
				{"key":"proj:a.go","measures":[{"metric":"duplicated_lines","value":"10"},{"metric":"duplicated_blocks","value":"1"}]},
				{"key":"proj:clean.go","measures":[{"metric":"duplicated_lines","value":"0"}]}]}`))
		case "/api/duplications/show":
			assert.Equal(t, "proj:a.go", r.URL.Query().Get("key"))
			_, _ = w.Write([]byte(`{"duplications":[{"blocks":[{"from":4,"size":10,"_ref":"1"},{"from":60,"size":10,"_ref":"2"}]}],
				"files":{"1":{"key":"proj:a.go","name":"a.go"},"2":{"key":"proj:b.go","name":"b.go"}}}`))
		default:
			http.NotFound(w, r)
		}
	})

	files, err := c.DuplicationsWithBlocks(context.Background(), "proj", 0)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "a.go", files[0].Path)
	assert.Equal(t, []schema.DuplicationBlock{{From: 4, Size: 10, DuplicatedIn: "b.go", DuplicatedFrom: 60}}, files[0].Blocks)
}

func TestDuplicationsWithBlocksFailsWhole(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/duplications/show" {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"paging":{"pageIndex":1,"pageSize":100,"total":1},"components":[
			{"key":"proj:a.go","measures":[{"metric":"duplicated_lines","value":"3"}]}]}`))
	})

	files, err := c.DuplicationsWithBlocks(context.Background(), "proj", 0)
	assert.Nil(t, files)
	assert.Equal(t, http.StatusInternalServerError, StatusCode(err))
}
