package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

// sentimentURL is a package variable so tests can point it at a fake server.
var sentimentURL = "https://api-inference.huggingface.co/models/distilbert-base-uncased-finetuned-sst-2-english"

var sentimentClient = &http.Client{Timeout: 10 * time.Second}

// Sentiment is the classifier's verdict on a chat message.
type Sentiment struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// AnalyzeSentiment classifies text with the hosted inference API. It is
// best-effort: any failure returns nil and the caller proceeds without a
// sentiment.
func AnalyzeSentiment(ctx context.Context, text string) *Sentiment {
	payload, err := json.Marshal(map[string]string{"inputs": text})
	if err != nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, "POST", sentimentURL, bytes.NewReader(payload))
	if err != nil {
		return nil
	}
	req.Header.Set("Content-Type", "application/json")
	if token := os.Getenv("HF_API_TOKEN"); token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	}

	resp, err := sentimentClient.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil
	}

	// The model returns one candidate list per input, best label first.
	var result [][]struct {
		Label string  `json:"label"`
		Score float64 `json:"score"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil
	}
	if len(result) == 0 || len(result[0]) == 0 {
		return nil
	}

	best := result[0][0]
	return &Sentiment{Label: strings.ToLower(best.Label), Score: best.Score}
}
