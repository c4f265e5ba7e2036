package sonar

import (
	"context"
	"fmt"
	"net/url"

	"github.com/huangsam/sonar-cli/schema"
)

// BlockRef is one block of a duplication group. Ref points into the file table.
type BlockRef struct {
	From int    `json:"from"`
	Size int    `json:"size"`
	Ref  string `json:"_ref"`
}

// DuplicationGroup is a set of blocks that duplicate each other.
type DuplicationGroup struct {
	Blocks []BlockRef `json:"blocks"`
}

// FileRef describes a file referenced by blocks of the same response.
type FileRef struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	ProjectName string `json:"projectName,omitempty"`
}

// DisplayName returns the name when known and the key otherwise.
func (f FileRef) DisplayName() string {
	if f.Name != "" {
		return f.Name
	}
	return f.Key
}

// DuplicationDetail is the duplication detail of one file: the groups and
// the reference table their blocks resolve against.
type DuplicationDetail struct {
	Duplications []DuplicationGroup `json:"duplications"`
	Files        map[string]FileRef `json:"files"`
}

// Duplications returns the raw duplication detail of a file component.
func (c *Client) Duplications(ctx context.Context, fileKey string) (DuplicationDetail, error) {
	q := c.withBranch(url.Values{"key": {fileKey}})
	return getJSON[DuplicationDetail](ctx, c, "/api/duplications/show", q)
}

// JoinBlocks resolves the groups of detail from the point of view of the file
// currentKey. Each output block pairs a region of the current file with the
// place it is repeated in another file.
func JoinBlocks(detail DuplicationDetail, currentKey string) []schema.DuplicationBlock {
	var out []schema.DuplicationBlock
	for _, group := range detail.Duplications {
		current := -1
		for i, b := range group.Blocks {
			if f, ok := detail.Files[b.Ref]; ok && f.Key == currentKey {
				current = i
				break
			}
		}
		if current < 0 {
			continue
		}
		self := group.Blocks[current]
		for i, b := range group.Blocks {
			if i == current {
				continue
			}
			other, ok := detail.Files[b.Ref]
			if !ok {
				continue
			}
			// Different refs may still point at the current file.
			if other.Key == currentKey {
				continue
			}
			out = append(out, schema.DuplicationBlock{
				From:           self.From,
				Size:           self.Size,
				DuplicatedIn:   other.DisplayName(),
				DuplicatedFrom: b.From,
			})
		}
	}
	return out
}

// DuplicationsWithBlocks runs both passes: it finds the files with duplicated
// lines, then resolves the blocks of each one. Any failure aborts the whole call.
func (c *Client) DuplicationsWithBlocks(ctx context.Context, project string, limit int) ([]schema.FileDuplication, error) {
	files, err := c.FilesWithDuplications(ctx, project, limit)
	if err != nil {
		return nil, err
	}
	out := make([]schema.FileDuplication, len(files))
	for i, f := range files {
		detail, err := c.Duplications(ctx, f.Key)
		if err != nil {
			return nil, fmt.Errorf("duplications of %s: %w", f.Path, err)
		}
		f.Blocks = JoinBlocks(detail, f.Key)
		out[i] = f
	}
	return out, nil
}
