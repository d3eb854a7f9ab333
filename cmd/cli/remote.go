package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/thereceipt/titlecard-engine/internal/queue"
	"github.com/thereceipt/titlecard-engine/pkg/cardformat"
)

var httpClient = &http.Client{Timeout: 30 * time.Second}

func runJobCommand(serverURL string, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: job submit <cards.json> | job list | job status <id>")
	}

	switch args[0] {
	case "submit":
		if len(args) < 2 {
			return fmt.Errorf("usage: job submit <cards.json>")
		}
		b, err := cardformat.ParseFile(args[1])
		if err != nil {
			return err
		}
		var resp struct {
			JobID string `json:"job_id"`
		}
		if err := call(serverURL, "POST", "/jobs", b, &resp); err != nil {
			return err
		}
		fmt.Printf("Job ID: %s\n", resp.JobID)
		return nil

	case "list":
		var resp struct {
			Jobs []queue.Job `json:"jobs"`
		}
		if err := call(serverURL, "GET", "/jobs", nil, &resp); err != nil {
			return err
		}
		fmt.Println(TitleStyle.Render("Jobs:"))
		for _, job := range resp.Jobs {
			fmt.Printf("  %s: %s (%d cards)\n", job.ID, statusStyle(job.Status).Render(job.Status), job.Cards)
		}
		return nil

	case "status":
		if len(args) < 2 {
			return fmt.Errorf("usage: job status <id>")
		}
		var job queue.Job
		if err := call(serverURL, "GET", "/job/"+args[1], nil, &job); err != nil {
			return err
		}
		fmt.Printf("%s: %s (attempts: %d)\n", job.ID, statusStyle(job.Status).Render(job.Status), job.Attempts)
		if job.Report != nil {
			printReport(*job.Report)
		}
		return nil

	default:
		return fmt.Errorf("unknown job command: %s", args[0])
	}
}

// call sends body as JSON and decodes a successful response into out
func call(serverURL, method, path string, body, out any) error {
	url := strings.TrimSuffix(serverURL, "/") + path

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to server: %v", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %v", err)
	}

	if resp.StatusCode >= 300 {
		var e struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &e) == nil && e.Error != "" {
			return fmt.Errorf("%s", e.Error)
		}
		return fmt.Errorf("server returned HTTP %d", resp.StatusCode)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse response: %v", err)
	}
	return nil
}
