package sonar

import (
	"context"
	"encoding/json"
	"errors"
	"html"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/huangsam/sonar-cli/schema"
)

var markupTag = regexp.MustCompile(`<[^>]*>`)

type sourceShowResponse struct {
	Sources [][]json.RawMessage `json:"sources"`
}

// RawSource returns the source of a file split into numbered lines.
func (c *Client) RawSource(ctx context.Context, fileKey string) ([]schema.SourceLine, error) {
	q := c.withBranch(url.Values{"key": {fileKey}})
	body, err := c.get(ctx, "/api/sources/raw", q)
	if err != nil {
		return nil, err
	}
	text := strings.TrimSuffix(strings.ReplaceAll(string(body), "\r\n", "\n"), "\n")
	if text == "" {
		return []schema.SourceLine{}, nil
	}
	var lines []schema.SourceLine
	for i, code := range strings.Split(text, "\n") {
		lines = append(lines, schema.SourceLine{Line: i + 1, Code: code})
	}
	return lines, nil
}

// SourceRange returns lines from..to of a file. Highlighting markup is removed.
func (c *Client) SourceRange(ctx context.Context, fileKey string, from, to int) ([]schema.SourceLine, error) {
	q := c.withBranch(url.Values{"key": {fileKey}})
	if from > 0 {
		q.Set("from", strconv.Itoa(from))
	}
	if to > 0 {
		q.Set("to", strconv.Itoa(to))
	}
	resp, err := getJSON[sourceShowResponse](ctx, c, "/api/sources/show", q)
	if err != nil {
		return nil, err
	}

	lines := make([]schema.SourceLine, 0, len(resp.Sources))
	for _, entry := range resp.Sources {
		if len(entry) < 2 {
			return nil, &DecodeError{Path: "/api/sources/show", Err: errors.New("source entry without line and code")}
		}
		var line schema.SourceLine
		if err := json.Unmarshal(entry[0], &line.Line); err != nil {
			return nil, &DecodeError{Path: "/api/sources/show", Err: err}
		}
		if err := json.Unmarshal(entry[1], &line.Code); err != nil {
			return nil, &DecodeError{Path: "/api/sources/show", Err: err}
		}
		line.Code = html.UnescapeString(markupTag.ReplaceAllString(line.Code, ""))
		lines = append(lines, line)
	}
	return lines, nil
}
