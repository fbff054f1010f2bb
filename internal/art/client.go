package art

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Task statuses reported by the image task API.
const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Client talks to the external asynchronous image-generation task API:
// create a task, then poll it by id until it reaches a terminal status.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

type createTaskRequest struct {
	Tool string   `json:"tool"`
	Args taskArgs `json:"args"`
}

type taskArgs struct {
	Prompt      string `json:"prompt"`
	AspectRatio string `json:"aspect_ratio"`
}

type createTaskResponse struct {
	TaskID string `json:"taskId"`
}

// TaskStatus is one poll result. On completion the first output URL of the
// first result entry carries the generated image.
type TaskStatus struct {
	Status string       `json:"status"`
	Result []TaskResult `json:"result,omitempty"`
}

type TaskResult struct {
	Output []TaskOutput `json:"output"`
}

type TaskOutput struct {
	URL string `json:"url"`
}

// FirstURL extracts the generated image URL, or "" when absent.
func (t TaskStatus) FirstURL() string {
	if len(t.Result) == 0 || len(t.Result[0].Output) == 0 {
		return ""
	}
	return t.Result[0].Output[0].URL
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// CreateTask submits an image-generation task and returns its id.
func (c *Client) CreateTask(ctx context.Context, prompt, aspectRatio string) (string, error) {
	var resp createTaskResponse
	err := c.do(ctx, http.MethodPost, "/tasks/create", createTaskRequest{
		Tool: "image_generation",
		Args: taskArgs{Prompt: prompt, AspectRatio: aspectRatio},
	}, &resp)
	if err != nil {
		return "", err
	}
	if resp.TaskID == "" {
		return "", fmt.Errorf("task creation returned no task id")
	}
	return resp.TaskID, nil
}

// GetTask fetches the current status of a task.
func (c *Client) GetTask(ctx context.Context, taskID string) (TaskStatus, error) {
	var status TaskStatus
	if err := c.do(ctx, http.MethodGet, "/tasks/"+taskID, nil, &status); err != nil {
		return TaskStatus{}, err
	}
	return status, nil
}
