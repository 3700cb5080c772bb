// Command scoresearch searches for a high-scoring script against a level
// by generating candidate scripts and running them against a live
// AutoDrone server, keeping the best score found across attempts.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"os"
	"strings"
	"time"
)

type runSummary struct {
	ID          string         `json:"ID"`
	VMState     string         `json:"VMState"`
	WorldStatus string         `json:"WorldStatus"`
	Inventory   map[string]int `json:"Inventory"`
}

type scoreResult struct {
	Score       int      `json:"Score"`
	Stars       int      `json:"Stars"`
	Suggestions []string `json:"Suggestions"`
}

type client struct {
	baseURL    string
	httpClient *http.Client
}

func newClient(baseURL string) *client {
	return &client{baseURL: baseURL, httpClient: &http.Client{Timeout: 10 * time.Second}}
}

func (c *client) createRun(level, source string) (*runSummary, error) {
	body, _ := json.Marshal(map[string]string{"level": level, "source": source, "syntax": "block"})
	resp, err := c.httpClient.Post(c.baseURL+"/api/runs", "application/json", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("create run: %w", err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("create run failed: %s - %s", resp.Status, string(data))
	}

	var summary runSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, fmt.Errorf("parse run summary: %w", err)
	}
	return &summary, nil
}

func (c *client) runToCompletion(runID string) (*runSummary, error) {
	resp, err := c.httpClient.Post(c.baseURL+"/api/runs/"+runID+"/run", "application/json", nil)
	if err != nil {
		return nil, fmt.Errorf("run to completion: %w", err)
	}
	defer resp.Body.Close()

	var summary runSummary
	if err := json.NewDecoder(resp.Body).Decode(&summary); err != nil {
		return nil, fmt.Errorf("parse run summary: %w", err)
	}
	return &summary, nil
}

func (c *client) score(runID string) (*scoreResult, error) {
	resp, err := c.httpClient.Get(c.baseURL + "/api/runs/" + runID + "/score")
	if err != nil {
		return nil, fmt.Errorf("score run: %w", err)
	}
	defer resp.Body.Close()

	var result scoreResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("parse score: %w", err)
	}
	return &result, nil
}

// randomScript generates a candidate block-syntax script of random moves,
// turns, and collects, exactly maxLines lines long.
func randomScript(rng *rand.Rand, maxLines int) string {
	var lines []string
	for i := 0; i < maxLines; i++ {
		switch rng.Intn(5) {
		case 0:
			lines = append(lines, "move forward")
		case 1:
			lines = append(lines, "move back")
		case 2:
			lines = append(lines, "turn left")
		case 3:
			lines = append(lines, "turn right")
		case 4:
			lines = append(lines, "collect")
		}
	}
	return strings.Join(lines, "\n") + "\n"
}

func main() {
	serverURL := flag.String("url", "http://localhost:8080", "AutoDrone server URL")
	level := flag.String("level", "", "level name to search against")
	maxAttempts := flag.Int("max-attempts", 200, "maximum attempts before giving up")
	maxLines := flag.Int("max-lines", 40, "maximum instructions per candidate script")
	seed := flag.Int64("seed", 1, "random seed")
	flag.Parse()

	if *level == "" {
		log.Fatal("missing required -level flag")
	}

	log.Printf("searching for a high-scoring script against level %q via %s", *level, *serverURL)
	c := newClient(*serverURL)
	rng := rand.New(rand.NewSource(*seed))

	bestScore := -1
	var bestScript string
	var wonOnce bool

	for attempt := 1; attempt <= *maxAttempts; attempt++ {
		source := randomScript(rng, *maxLines)

		summary, err := c.createRun(*level, source)
		if err != nil {
			log.Printf("attempt %d: %v", attempt, err)
			continue
		}

		final, err := c.runToCompletion(summary.ID)
		if err != nil {
			log.Printf("attempt %d: %v", attempt, err)
			continue
		}

		result, err := c.score(summary.ID)
		if err != nil {
			log.Printf("attempt %d: %v", attempt, err)
			continue
		}

		if result.Score > bestScore {
			bestScore = result.Score
			bestScript = source
			log.Printf("attempt %d: new best score %d (stars %d, world status %s)",
				attempt, result.Score, result.Stars, final.WorldStatus)
		}

		if final.WorldStatus == "won" {
			wonOnce = true
		}
	}

	fmt.Printf("\nbest score: %d\n", bestScore)
	fmt.Printf("won at least once: %v\n", wonOnce)
	fmt.Printf("best script:\n%s\n", bestScript)

	if bestScore < 0 {
		os.Exit(1)
	}
}
