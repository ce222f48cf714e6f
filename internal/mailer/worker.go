package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"google.golang.org/api/idtoken"
)

// WorkerMailer posts messages to an external mail worker, authenticating with a Google ID token
// when one is available for the worker's audience.
type WorkerMailer struct {
	client  *http.Client
	baseURL string
	from    string
	timeout time.Duration
}

const workerSendTimeout = 15 * time.Second

// NewWorkerMailer builds a worker mailer, auto-configuring an ID token client when client is nil.
func NewWorkerMailer(client *http.Client, workerBaseURL, from string) (*WorkerMailer, error) {
	if workerBaseURL == "" {
		return nil, errors.New("worker base url must not be empty")
	}
	workerBaseURL = strings.TrimRight(workerBaseURL, "/")
	if client == nil {
		idc, err := idtoken.NewClient(context.Background(), workerBaseURL)
		if err != nil {
			idc = &http.Client{}
		}
		idc.Timeout = workerSendTimeout
		client = idc
	}
	return &WorkerMailer{client: client, baseURL: workerBaseURL, from: from, timeout: workerSendTimeout}, nil
}

func (m *WorkerMailer) Name() string { return "worker" }

type workerPayload struct {
	From    string `json:"from"`
	To      string `json:"to"`
	ReplyTo string `json:"reply_to,omitempty"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Send posts msg to <base>/send and returns data.message_id from the worker's envelope. Each
// attempt is bounded by the mailer timeout whatever client was supplied.
func (m *WorkerMailer) Send(ctx context.Context, msg Message) (string, error) {
	if err := msg.validate(); err != nil {
		return "", err
	}

	body, err := json.Marshal(workerPayload{From: m.from, To: msg.To, ReplyTo: msg.ReplyTo, Subject: msg.Subject, Body: msg.Body})
	if err != nil {
		return "", fmt.Errorf("failed to marshal payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/send", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create worker request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("worker request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("worker error: %s", extractWorkerError(resp.Body))
	}

	var workerResp struct {
		Data struct {
			MessageID string `json:"message_id"`
		} `json:"data"`
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&workerResp); err != nil && err != io.EOF {
		return "", fmt.Errorf("could not decode worker response: %w", err)
	}
	if workerResp.Error != "" {
		return "", fmt.Errorf("worker error: %s", workerResp.Error)
	}
	if workerResp.Data.MessageID == "" {
		return "", errors.New("worker returned no message id")
	}
	return workerResp.Data.MessageID, nil
}

func extractWorkerError(body io.Reader) string {
	data, err := io.ReadAll(body)
	if err != nil || len(data) == 0 {
		return "worker returned an error"
	}

	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return strings.TrimSpace(string(data))
}

var _ Mailer = (*WorkerMailer)(nil)
