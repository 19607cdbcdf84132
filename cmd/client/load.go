package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"go.uber.org/zap"
)

type orderPayload struct {
	TableNumber int    `json:"table_number"`
	MenuItem    string `json:"menu_item"`
	Quantity    int    `json:"quantity"`
}

type summary struct {
	Placed   int
	Rejected int
	Failed   int
}

// loadGenerator places identical orders concurrently to exercise id assignment
// under contention.
type loadGenerator struct {
	client  *http.Client
	baseURL string
	logger  *zap.Logger
}

func (g *loadGenerator) Run(n int, payload orderPayload) summary {
	body, err := json.Marshal(payload)
	if err != nil {
		g.logger.Error("encoding payload", zap.Error(err))
		return summary{Failed: n}
	}

	var (
		mu  sync.Mutex
		out summary
		wg  sync.WaitGroup
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			status, err := g.place(body)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				out.Failed++
				g.logger.Warn("failed to send request", zap.Error(err))
			case status >= 200 && status < 300:
				out.Placed++
				g.logger.Debug("order added", zap.Int("status", status))
			default:
				out.Rejected++
				g.logger.Warn("failed to add order", zap.Int("status", status))
			}
		}()
	}
	wg.Wait()

	return out
}

func (g *loadGenerator) place(body []byte) (int, error) {
	resp, err := g.client.Post(g.baseURL+"/v1/orders", "application/json", bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("posting order: %w", err)
	}
	defer resp.Body.Close()
	return resp.StatusCode, nil
}
