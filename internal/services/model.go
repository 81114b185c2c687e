package services

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

const (
	// modelLoadTimeout bounds the warmup call; first load downloads weights
	// into the runtime's cache directory and can take a while.
	modelLoadTimeout = 10 * time.Minute
)

// GenerateOptions are the fixed decoding parameters used for every model
// invocation. Beam search with early stopping trades a little latency for
// noticeably better mod descriptions.
type GenerateOptions struct {
	MaxLength     int  `json:"max_length"`
	NumBeams      int  `json:"num_beams"`
	EarlyStopping bool `json:"early_stopping"`
}

var defaultGenerateOptions = GenerateOptions{
	MaxLength:     512,
	NumBeams:      4,
	EarlyStopping: true,
}

// Model is a loaded translation model. Implementations are opaque; the
// translator only ever calls Generate.
type Model interface {
	Generate(ctx context.Context, text string, opts GenerateOptions) (string, error)
}

// ModelLoader produces a ready Model. Loading is expensive (weights are
// downloaded to a local cache on first use) so the Translator calls it
// lazily and at most once per process on success.
type ModelLoader func(ctx context.Context) (Model, error)

// localModelClient talks to a local inference runtime over HTTP. The runtime
// owns model files and their on-disk cache; we only ask it to load a model
// and run generations against it.
type localModelClient struct {
	baseURL    string
	model      string
	sourceLang string
	client     *http.Client
}

// NewLocalModelLoader returns a ModelLoader backed by the local inference
// runtime at endpoint. The returned loader blocks until the runtime reports
// the model ready.
func NewLocalModelLoader(endpoint, model, sourceLang string) ModelLoader {
	return func(ctx context.Context) (Model, error) {
		c := &localModelClient{
			baseURL:    strings.TrimRight(strings.TrimSpace(endpoint), "/"),
			model:      model,
			sourceLang: sourceLang,
			client:     &http.Client{Timeout: modelLoadTimeout},
		}
		if err := c.load(ctx); err != nil {
			return nil, err
		}
		return c, nil
	}
}

type modelLoadRequest struct {
	Model      string `json:"model"`
	SourceLang string `json:"source_lang,omitempty"`
}

// load asks the runtime to bring the model into memory. On first use the
// runtime downloads the weights into its per-user cache directory; later
// loads reuse the cached files.
func (c *localModelClient) load(ctx context.Context) error {
	body, err := json.Marshal(modelLoadRequest{Model: c.model, SourceLang: c.sourceLang})
	if err != nil {
		return fmt.Errorf("marshal model load request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/models/load", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build model load request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("load model %s: %w", c.model, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read model load response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("model runtime returned status %d: %s", resp.StatusCode, truncateText(string(respBody), 200))
	}
	return nil
}

type generateRequest struct {
	Model string `json:"model"`
	Text  string `json:"text"`
	GenerateOptions
}

func (c *localModelClient) Generate(ctx context.Context, text string, opts GenerateOptions) (string, error) {
	body, err := json.Marshal(generateRequest{Model: c.model, Text: text, GenerateOptions: opts})
	if err != nil {
		return "", fmt.Errorf("marshal generate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/translate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read generate response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("model runtime returned status %d: %s", resp.StatusCode, truncateText(string(respBody), 200))
	}

	return decodeTranslationResult(respBody)
}

type translationResult struct {
	TranslationText string `json:"translation_text"`
}

// decodeTranslationResult extracts the translated string from the runtime's
// response. Pipeline runtimes are inconsistent about the result shape: some
// return a bare object, some a single-element array. Accept both rather than
// assuming one schema.
func decodeTranslationResult(body []byte) (string, error) {
	var obj translationResult
	if err := json.Unmarshal(body, &obj); err == nil && obj.TranslationText != "" {
		return obj.TranslationText, nil
	}

	var arr []translationResult
	if err := json.Unmarshal(body, &arr); err == nil && len(arr) > 0 && arr[0].TranslationText != "" {
		return arr[0].TranslationText, nil
	}

	return "", fmt.Errorf("unrecognized translation result shape: %s", truncateText(string(body), 120))
}
