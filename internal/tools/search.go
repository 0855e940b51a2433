package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/pythonicvarun/anveshak/internal/guard"
)

const serperEndpoint = "https://google.serper.dev/search"

// GoogleSearch queries Serper.dev and returns the top organic results.
type GoogleSearch struct {
	// APIKey is read per call so settings changes take effect without
	// rebuilding the registry.
	APIKey   func() string
	Guard    *guard.Guard
	Client   *http.Client
	Endpoint string
}

func NewGoogleSearch(apiKey func() string, g *guard.Guard) *GoogleSearch {
	return &GoogleSearch{
		APIKey:   apiKey,
		Guard:    g,
		Client:   &http.Client{Timeout: 15 * time.Second},
		Endpoint: serperEndpoint,
	}
}

func (t *GoogleSearch) Name() string        { return "googleSearch" }
func (t *GoogleSearch) Description() string { return "Search Google for recent results." }

func (t *GoogleSearch) Parameters() map[string]interface{} {
	return objectSchema(map[string]interface{}{
		"query": map[string]interface{}{"type": "string"},
	})
}

type searchResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

func (t *GoogleSearch) Invoke(ctx context.Context, args map[string]interface{}) (string, error) {
	key := t.APIKey()
	if key == "" {
		return "", errors.New("Serper API key not provided.")
	}

	if v := t.Guard.CheckHost(t.Endpoint); v != nil {
		return "", fmt.Errorf("search blocked: %s", v.Message)
	}

	query := stringArg(args, "query")
	body, err := json.Marshal(map[string]string{"q": query})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("X-API-KEY", key)
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.Client.Do(req)
	if err != nil {
		return searchError(err.Error()), nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return searchError(fmt.Sprintf("API Error: %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))), nil
	}

	var payload struct {
		Organic []searchResult `json:"organic"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return searchError(err.Error()), nil
	}

	results := payload.Organic
	if len(results) > 5 {
		results = results[:5]
	}
	if results == nil {
		results = []searchResult{}
	}

	out, err := json.Marshal(results)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func searchError(msg string) string {
	out, _ := json.Marshal(map[string]string{
		"error": "An error occurred during search: " + msg,
	})
	return string(out)
}
