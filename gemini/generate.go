package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"gemfiles/core"
	"gemfiles/internal/transport"
)

// GenerateContent posts a generation request to the given model. File parts
// reference previously uploaded files by URI; see core.FilePart.
func (c *Client) GenerateContent(ctx context.Context, model string, req *core.GenerateRequest) (*core.GenerateResponse, error) {
	endpoint := fmt.Sprintf("%s/models/%s:generateContent", apiVersionPath, url.PathEscape(model))

	resp, err := c.transport.Do(ctx, transport.Request{
		Method:   http.MethodPost,
		Endpoint: endpoint,
		Query:    c.apiQuery(),
		Body:     req,
	})
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, core.NewRemoteError(resp.StatusCode, resp.Body)
	}

	var genResp core.GenerateResponse
	if err := json.Unmarshal(resp.Body, &genResp); err != nil {
		return nil, core.NewMalformedResponseError("failed to decode generate response", err)
	}
	return &genResp, nil
}

// GenerateText is a convenience wrapper: one user turn made of a text prompt
// plus any uploaded files, returning the first candidate's text.
func (c *Client) GenerateText(ctx context.Context, model, prompt string, files ...*core.FileDescriptor) (string, error) {
	parts := make([]core.Part, 0, len(files)+1)
	parts = append(parts, core.TextPart(prompt))
	for _, fd := range files {
		parts = append(parts, core.FilePart(fd))
	}

	resp, err := c.GenerateContent(ctx, model, &core.GenerateRequest{
		Contents: []core.Content{{Role: "user", Parts: parts}},
	})
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}
