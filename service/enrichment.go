package service

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os"

	"github.com/google/generative-ai-go/genai"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

// Notification is the outbound payload sent to the enrichment worker after
// an upload commits.
type Notification struct {
	FileID      string `json:"fileId"`
	FolderID    string `json:"folderId,omitempty"`
	UserID      string `json:"userId,omitempty"`
	FileType    string `json:"fileType,omitempty"`
	StoragePath string `json:"storagePath,omitempty"`
	PublicURL   string `json:"publicUrl,omitempty"`
	FileName    string `json:"fileName,omitempty"`
}

// EnrichmentResult is the worker's response. Absent or malformed fields
// degrade to zero values; Processed=false with no content is the
// "unprocessed" sentinel that merges as a no-op.
type EnrichmentResult struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Processed     bool           `json:"processed"`
	ExtractedText string         `json:"extractedText"`
	Metadata      map[string]any `json:"metadata"`
	ThumbnailURL  string         `json:"thumbnailUrl"`
}

// IsUnprocessed reports whether the result carries nothing worth merging.
func (r *EnrichmentResult) IsUnprocessed() bool {
	return !r.Processed && r.ExtractedText == "" && r.ThumbnailURL == "" && len(r.Metadata) == 0
}

// Unprocessed returns the sentinel result used whenever the worker fails
// or times out.
func Unprocessed() *EnrichmentResult {
	return &EnrichmentResult{}
}

// Enricher dispatches upload metadata to an external extraction pipeline.
// Notify never returns an error; any failure degrades to the unprocessed
// sentinel so the upload path stays unaffected.
type Enricher interface {
	Notify(ctx context.Context, n Notification) *EnrichmentResult
}

// WorkerEnricher posts notifications to an HTTP enrichment worker.
type WorkerEnricher struct {
	url    string
	client *http.Client
	log    *logrus.Logger
}

// NewWorkerEnricher creates an enricher targeting the worker at url
func NewWorkerEnricher(url string, log *logrus.Logger) *WorkerEnricher {
	return &WorkerEnricher{
		url:    url,
		client: &http.Client{Timeout: enrichmentTimeout},
		log:    log,
	}
}

// Notify posts the notification and decodes the worker's response. Network
// errors, timeouts, non-2xx statuses, and malformed bodies all degrade to
// the unprocessed sentinel.
func (e *WorkerEnricher) Notify(ctx context.Context, n Notification) *EnrichmentResult {
	body, err := json.Marshal(n)
	if err != nil {
		e.log.WithError(err).Warn("enrichment payload marshal failed")
		return Unprocessed()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(body))
	if err != nil {
		e.log.WithError(err).Warn("enrichment request build failed")
		return Unprocessed()
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		e.log.WithField("file", n.FileID).WithError(err).Warn("enrichment worker unreachable")
		return Unprocessed()
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		e.log.WithFields(logrus.Fields{
			"file":   n.FileID,
			"status": resp.StatusCode,
		}).Warn("enrichment worker returned error status")
		return Unprocessed()
	}

	var result EnrichmentResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		e.log.WithField("file", n.FileID).WithError(err).Warn("enrichment response malformed")
		return Unprocessed()
	}
	return &result
}

// GeminiEnricher generates a short description for the uploaded file with
// Gemini when no dedicated worker is deployed.
type GeminiEnricher struct {
	client *genai.Client
	model  string
	log    *logrus.Logger
}

// NewGeminiEnricher creates a Gemini-backed enricher
func NewGeminiEnricher(ctx context.Context, apiKey string, log *logrus.Logger) (*GeminiEnricher, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	return &GeminiEnricher{
		client: client,
		model:  "gemini-1.5-flash",
		log:    log,
	}, nil
}

// Notify asks Gemini for a one-line description of the file. Failures
// degrade to the unprocessed sentinel like the worker path.
func (e *GeminiEnricher) Notify(ctx context.Context, n Notification) *EnrichmentResult {
	model := e.client.GenerativeModel(e.model)
	prompt := genai.Text(
		"Write a one-sentence description of a document for a file manager listing. " +
			"File name: " + n.FileName + ". File type: " + n.FileType + ". " +
			"Respond with the description only.")

	resp, err := model.GenerateContent(ctx, prompt)
	if err != nil {
		e.log.WithField("file", n.FileID).WithError(err).Warn("gemini enrichment failed")
		return Unprocessed()
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return Unprocessed()
	}

	var description string
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			description += string(text)
		}
	}
	if description == "" {
		return Unprocessed()
	}

	return &EnrichmentResult{
		ID:        n.FileID,
		Name:      n.FileName,
		Processed: true,
		Metadata:  map[string]any{"generatedDescription": description},
	}
}

// NewEnricherFromEnv picks an enricher: the HTTP worker when
// ENRICHMENT_WORKER_URL is set, Gemini when only GEMINI_API_KEY is set,
// nil when neither is configured.
func NewEnricherFromEnv(ctx context.Context, log *logrus.Logger) (Enricher, error) {
	if url := os.Getenv("ENRICHMENT_WORKER_URL"); url != "" {
		return NewWorkerEnricher(url, log), nil
	}
	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		return NewGeminiEnricher(ctx, apiKey, log)
	}
	return nil, nil
}
