package ui

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/idilsaglam/todoproxy/internal/model"
)

// FetchTodos GETs url and parses the body text as a JSON array of rows.
// A relayed "Exception: ..." body fails to parse and comes back as an error.
func FetchTodos(ctx context.Context, client *http.Client, url string) ([]model.Todo, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	text, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	var rows []model.Todo
	if err := json.Unmarshal(text, &rows); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}
	return rows, nil
}
