package sonar

import (
	"context"
	"encoding/json"
	"strings"
)

// StatusUp is the system status of a healthy server.
const StatusUp = "UP"

// SystemStatus returns the server status string such as "UP" or "STARTING".
// Bodies that are not the usual JSON document are returned trimmed.
func (c *Client) SystemStatus(ctx context.Context) (string, error) {
	body, err := c.get(ctx, "/api/system/status", nil)
	if err != nil {
		return "", err
	}
	var resp struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(body, &resp); err == nil && resp.Status != "" {
		return resp.Status, nil
	}
	return strings.TrimSpace(string(body)), nil
}
