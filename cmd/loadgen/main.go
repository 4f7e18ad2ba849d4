// Command loadgen generates synthetic bill-return traffic against a running
// server: it creates requests, attaches documents, and walks every attachment
// through a review decision, then reports throughput.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"subsidy/internal/logger"
	. "subsidy/internal/models"
	"sync"
	"sync/atomic"
	"time"
)

type options struct {
	baseURL     string
	requests    int
	attachments int
	workers     int
	approveAll  bool
}

type stats struct {
	requestsCreated atomic.Int64
	decisionsSent   atomic.Int64
	failures        atomic.Int64
}

func main() {
	log := logger.New("loadgen")

	var opts options
	flag.StringVar(&opts.baseURL, "url", "http://localhost:8285", "server base URL")
	flag.IntVar(&opts.requests, "requests", 100, "number of requests to create")
	flag.IntVar(&opts.attachments, "attachments", 3, "attachments per request")
	flag.IntVar(&opts.workers, "workers", 8, "concurrent workers")
	flag.BoolVar(&opts.approveAll, "approve", false, "approve every attachment instead of leaving them in review")
	flag.Parse()

	start := time.Now()
	s := run(opts, log)
	elapsed := time.Since(start)

	perSecond := float64(s.requestsCreated.Load()) / elapsed.Seconds()
	log.Info("load generation complete",
		"requests", s.requestsCreated.Load(),
		"decisions", s.decisionsSent.Load(),
		"failures", s.failures.Load(),
		"elapsed", elapsed.String(),
		"requestsPerSecond", fmt.Sprintf("%.1f", perSecond),
	)

	if s.failures.Load() > 0 {
		os.Exit(1)
	}
}

func run(opts options, log logger.Logger) *stats {
	client := &http.Client{Timeout: 10 * time.Second}
	s := &stats{}

	jobs := make(chan int)
	var wg sync.WaitGroup
	wg.Add(opts.workers)
	for i := 0; i < opts.workers; i++ {
		go func() {
			defer wg.Done()
			for range jobs {
				if err := driveRequest(client, opts, s); err != nil {
					s.failures.Add(1)
					log.Er("request scenario failed", err)
				}
			}
		}()
	}

	for i := 0; i < opts.requests; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return s
}

// driveRequest runs one full scenario: create, attach, decide.
func driveRequest(client *http.Client, opts options, s *stats) error {
	requestID, err := createRequest(client, opts.baseURL)
	if err != nil {
		return err
	}
	s.requestsCreated.Add(1)

	decision := AttachmentStateInReview
	if opts.approveAll {
		decision = AttachmentStateApproved
	}

	for i := 0; i < opts.attachments; i++ {
		attachmentID, err := addAttachment(client, opts.baseURL, requestID)
		if err != nil {
			return err
		}

		if err := decideAttachment(client, opts.baseURL, attachmentID, decision); err != nil {
			return err
		}
		s.decisionsSent.Add(1)
	}

	return nil
}

func createRequest(client *http.Client, baseURL string) (string, error) {
	var result struct {
		Request struct {
			ID string `json:"id"`
		} `json:"request"`
	}

	err := postJSON(client, baseURL+"/api/requests",
		map[string]string{"requestType": string(RequestTypeBillReturn)}, &result)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	return result.Request.ID, nil
}

func addAttachment(client *http.Client, baseURL, requestID string) (string, error) {
	var result struct {
		Attachment struct {
			ID string `json:"id"`
		} `json:"attachment"`
	}

	url := fmt.Sprintf("%s/api/requests/%s/attachments", baseURL, requestID)
	if err := postJSON(client, url, map[string]string{"fileType": "invoice"}, &result); err != nil {
		return "", fmt.Errorf("add attachment: %w", err)
	}

	return result.Attachment.ID, nil
}

func decideAttachment(
	client *http.Client,
	baseURL, attachmentID string,
	state AttachmentState,
) error {
	url := fmt.Sprintf("%s/api/attachments/%s/state", baseURL, attachmentID)
	if err := postJSON(client, url, map[string]string{"state": string(state)}, nil); err != nil {
		return fmt.Errorf("decide attachment: %w", err)
	}
	return nil
}

func postJSON(client *http.Client, url string, body, result any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	resp, err := client.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("%s returned %d", url, resp.StatusCode)
	}

	if result == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(result)
}
