package schema

// FileCoverage is the coverage of a single file.
type FileCoverage struct {
	Path           string  `json:"path"`
	Coverage       float64 `json:"coverage"`
	UncoveredLines int     `json:"uncoveredLines"`
	LinesToCover   int     `json:"linesToCover"`
}

// DuplicationBlock is one duplicated region of the current file and where it is repeated.
type DuplicationBlock struct {
	From           int    `json:"from"`
	Size           int    `json:"size"`
	DuplicatedIn   string `json:"duplicatedIn"`
	DuplicatedFrom int    `json:"duplicatedFrom"`
}

// FileDuplication is the duplication summary of a single file.
type FileDuplication struct {
	Key              string             `json:"key"`
	Path             string             `json:"path"`
	DuplicatedLines  int                `json:"duplicatedLines"`
	DuplicatedBlocks int                `json:"duplicatedBlocks"`
	Density          float64            `json:"density"`
	Blocks           []DuplicationBlock `json:"blocks,omitempty"`
}
