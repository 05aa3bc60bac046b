// Package client is a Go client for the tournament JSON API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/AdamBeresnev/prompt-tournament/internal/api"
)

const defaultTimeout = 60 * time.Second

// APIError is a non-2xx answer from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New returns a client for the API rooted at baseURL, e.g. http://localhost:8080/api.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

func (c *Client) CreateTournament(ctx context.Context, req api.CreateTournamentRequest) (*api.CreateTournamentResponse, error) {
	var out api.CreateTournamentResponse
	if err := c.do(ctx, http.MethodPost, "/tournament", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetStatus(ctx context.Context, tournamentID int64) (*api.TournamentStatus, error) {
	var out api.TournamentStatus
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/tournament/%d/status", tournamentID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) StartBracket(ctx context.Context, tournamentID int64) (*api.StartBracketResponse, error) {
	var out api.StartBracketResponse
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/tournament/%d/start-bracket", tournamentID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SubmitResult(ctx context.Context, matchID, winnerID int64) (*api.SubmitResultResponse, error) {
	var out api.SubmitResultResponse
	body := api.SubmitResultRequest{WinnerID: &winnerID}
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/match/%d/result", matchID), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListMatches lists the tournament's matches. A round of 0 lists every round.
func (c *Client) ListMatches(ctx context.Context, tournamentID int64, round int) (*api.MatchesResponse, error) {
	path := fmt.Sprintf("/tournament/%d/matches", tournamentID)
	if round > 0 {
		path += "?" + url.Values{"round": {strconv.Itoa(round)}}.Encode()
	}
	var out api.MatchesResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Leaderboard(ctx context.Context, tournamentID int64) (*api.LeaderboardResponse, error) {
	var out api.LeaderboardResponse
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/tournament/%d/leaderboard", tournamentID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GeneratorStatus(ctx context.Context) (*api.GeneratorStatus, error) {
	var out api.GeneratorStatus
	if err := c.do(ctx, http.MethodGet, "/openai-status", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) TestPrompt(ctx context.Context, req api.TestPromptRequest) (*api.TestPromptResponse, error) {
	var out api.TestPromptResponse
	if err := c.do(ctx, http.MethodPost, "/test-prompt", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var e api.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&e); err != nil || e.Error == "" {
			e.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: e.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
