// Package webhook delivers completed orders to external endpoints. The
// dispatch is best effort: every endpoint is tried concurrently, outcomes
// are collected independently and a failure never aborts the caller.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/iarleylcs/cartify-flow/internal/domain"
)

// PayloadItem keys follow the wire contract the order intake endpoints
// already consume (ERP field names).
type PayloadItem struct {
	ProductCode int64           `json:"codprod"`
	Description string          `json:"descrprod"`
	UnitCode    string          `json:"codvol,omitempty"`
	Quantity    int             `json:"quantidade"`
	UnitPrice   decimal.Decimal `json:"valor_unitario"`
	Total       decimal.Decimal `json:"total"`
}

type Payload struct {
	SessionToken string          `json:"session_token,omitempty"`
	OrderCode    string          `json:"order_code"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	Items        []PayloadItem   `json:"items"`
}

func NewPayload(sessionToken string, order *domain.Order) Payload {
	items := make([]PayloadItem, 0, len(order.Lines))
	for _, line := range order.Lines {
		items = append(items, PayloadItem{
			ProductCode: line.ProductID,
			Description: line.Description,
			UnitCode:    line.Unit,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			Total:       line.LineTotal,
		})
	}
	return Payload{
		SessionToken: sessionToken,
		OrderCode:    order.Code,
		TotalAmount:  order.TotalAmount,
		Items:        items,
	}
}

// Result aggregates the fan-out outcome. Delivered counts 2xx responses;
// the caller only cares whether at least one endpoint took the order.
type Result struct {
	Delivered int
	Failed    int
}

func (r Result) AnyDelivered() bool {
	return r.Delivered > 0
}

type Dispatcher struct {
	endpoints []string
	client    *http.Client
	breakers  map[string]*gobreaker.CircuitBreaker[int]
	timeout   time.Duration
	logger    *zap.Logger
}

func NewDispatcher(endpoints []string, timeout time.Duration, logger *zap.Logger) *Dispatcher {
	breakers := make(map[string]*gobreaker.CircuitBreaker[int], len(endpoints))
	for _, endpoint := range endpoints {
		breakers[endpoint] = gobreaker.NewCircuitBreaker[int](gobreaker.Settings{
			Name:    endpoint,
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		})
	}
	return &Dispatcher{
		endpoints: endpoints,
		client:    &http.Client{Timeout: timeout},
		breakers:  breakers,
		timeout:   timeout,
		logger:    logger,
	}
}

// Dispatch posts the payload to every endpoint concurrently. A failure on
// one endpoint does not cancel or block the others.
func (d *Dispatcher) Dispatch(ctx context.Context, payload Payload) Result {
	if len(d.endpoints) == 0 {
		return Result{}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		d.logger.Error("failed to marshal webhook payload", zap.Error(err))
		return Result{Failed: len(d.endpoints)}
	}

	type outcome struct {
		endpoint string
		err      error
	}

	outcomes := make(chan outcome, len(d.endpoints))
	var wg sync.WaitGroup
	for _, endpoint := range d.endpoints {
		wg.Add(1)
		go func(endpoint string) {
			defer wg.Done()
			outcomes <- outcome{endpoint: endpoint, err: d.post(ctx, endpoint, body)}
		}(endpoint)
	}
	wg.Wait()
	close(outcomes)

	var result Result
	for o := range outcomes {
		if o.err != nil {
			result.Failed++
			d.logger.Warn("webhook delivery failed",
				zap.String("endpoint", o.endpoint),
				zap.String("order_code", payload.OrderCode),
				zap.Error(o.err))
			continue
		}
		result.Delivered++
		d.logger.Info("webhook delivered",
			zap.String("endpoint", o.endpoint),
			zap.String("order_code", payload.OrderCode))
	}
	return result
}

func (d *Dispatcher) post(ctx context.Context, endpoint string, body []byte) error {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	_, err := d.breakers[endpoint].Execute(func() (int, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return 0, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := d.client.Do(req)
		if err != nil {
			return 0, err
		}
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, resp.Body)

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return resp.StatusCode, fmt.Errorf("endpoint returned status %d", resp.StatusCode)
		}
		return resp.StatusCode, nil
	})
	return err
}
