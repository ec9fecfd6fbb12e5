// Package checkout orchestrates order submission: confirm intent, persist
// the order, fan out notifications, clear the cart. One submission per
// session is in flight at a time; the Submitting state is the mutex.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/iarleylcs/cartify-flow/internal/cart"
	"github.com/iarleylcs/cartify-flow/internal/domain"
	"github.com/iarleylcs/cartify-flow/internal/notify"
	"github.com/iarleylcs/cartify-flow/internal/repository"
	"github.com/iarleylcs/cartify-flow/internal/webhook"
)

type State string

const (
	StateIdle       State = "IDLE"
	StateConfirming State = "CONFIRMING"
	StateSubmitting State = "SUBMITTING"
)

func (s State) String() string {
	return string(s)
}

var (
	ErrEmptyCart          = errors.New("cannot submit an empty cart")
	ErrNotConfirming      = errors.New("no submission awaiting confirmation")
	ErrSubmissionInFlight = errors.New("a submission is already in flight")
	ErrPersistenceFailed  = errors.New("order could not be persisted")
)

// Announcer publishes the completed order to the event stream; failures
// are best-effort like webhook delivery.
type Announcer interface {
	OrderCompleted(ctx context.Context, order *domain.Order) error
}

// Dispatcher fans the order out to the configured webhook endpoints.
type Dispatcher interface {
	Dispatch(ctx context.Context, payload webhook.Payload) webhook.Result
}

// Confirmation is shown to the user before the final submit.
type Confirmation struct {
	ItemCount int             `json:"item_count"`
	Total     decimal.Decimal `json:"total"`
}

// Receipt is the outcome of a successful submission. Degraded marks
// orders that were persisted but reached no webhook endpoint.
type Receipt struct {
	OrderCode string          `json:"order_code"`
	Total     decimal.Decimal `json:"total"`
	Degraded  bool            `json:"degraded"`
	Notice    notify.Notice   `json:"notice"`
}

type Workflow struct {
	carts      *cart.Service
	orders     repository.OrderRepository
	dispatcher Dispatcher
	announcer  Announcer
	timeout    time.Duration
	logger     *zap.Logger

	mu     sync.Mutex
	states map[string]State
}

func NewWorkflow(
	carts *cart.Service,
	orders repository.OrderRepository,
	dispatcher Dispatcher,
	announcer Announcer,
	timeout time.Duration,
	logger *zap.Logger,
) *Workflow {
	return &Workflow{
		carts:      carts,
		orders:     orders,
		dispatcher: dispatcher,
		announcer:  announcer,
		timeout:    timeout,
		logger:     logger,
		states:     make(map[string]State),
	}
}

func (w *Workflow) state(sessionID string) State {
	if s, ok := w.states[sessionID]; ok {
		return s
	}
	return StateIdle
}

// Begin moves a session from Idle to Confirming. An empty cart refuses
// the transition with a warning and no state change.
func (w *Workflow) Begin(ctx context.Context, sessionID string) (Confirmation, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state(sessionID) == StateSubmitting {
		return Confirmation{}, ErrSubmissionInFlight
	}

	snapshot, err := w.carts.Cart(ctx, sessionID)
	if err != nil {
		return Confirmation{}, err
	}
	if snapshot.IsEmpty() {
		return Confirmation{}, ErrEmptyCart
	}

	w.states[sessionID] = StateConfirming
	return Confirmation{
		ItemCount: len(snapshot.Items),
		Total:     snapshot.Total,
	}, nil
}

// Cancel returns a Confirming session to Idle with no side effects.
func (w *Workflow) Cancel(sessionID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state(sessionID) != StateConfirming {
		return ErrNotConfirming
	}
	delete(w.states, sessionID)
	return nil
}

// Confirm runs the submission sequence: order header, order lines, then
// the best-effort notification fan-out. Persistence failures preserve
// the cart for retry; webhook failures only degrade the success notice.
func (w *Workflow) Confirm(ctx context.Context, sessionID string) (Receipt, error) {
	w.mu.Lock()
	switch w.state(sessionID) {
	case StateSubmitting:
		w.mu.Unlock()
		return Receipt{}, ErrSubmissionInFlight
	case StateConfirming:
		// fall through
	default:
		w.mu.Unlock()
		return Receipt{}, ErrNotConfirming
	}
	w.states[sessionID] = StateSubmitting
	w.mu.Unlock()

	receipt, err := w.submit(ctx, sessionID)

	// Both terminal outcomes return the session to Idle so submission
	// is re-enabled.
	w.mu.Lock()
	delete(w.states, sessionID)
	w.mu.Unlock()

	return receipt, err
}

func (w *Workflow) submit(ctx context.Context, sessionID string) (Receipt, error) {
	snapshot, err := w.carts.Cart(ctx, sessionID)
	if err != nil {
		return Receipt{}, err
	}
	if snapshot.IsEmpty() {
		return Receipt{}, ErrEmptyCart
	}

	order := domain.NewOrderFromCart(snapshot)

	// Step 1: order header. Failure aborts with the cart untouched.
	persistCtx, cancel := context.WithTimeout(ctx, w.timeout)
	err = w.orders.CreateOrder(persistCtx, order)
	cancel()
	if err != nil {
		w.logger.Error("order header insert failed",
			zap.String("session_id", sessionID),
			zap.Error(err))
		return Receipt{}, fmt.Errorf("%w: %v", ErrPersistenceFailed, err)
	}

	// Step 2: order lines. Failure aborts; the header from step 1 stays
	// behind as a reconciliation concern.
	persistCtx, cancel = context.WithTimeout(ctx, w.timeout)
	err = w.orders.CreateOrderLines(persistCtx, order)
	cancel()
	if err != nil {
		w.logger.Error("order line insert failed",
			zap.String("session_id", sessionID),
			zap.String("order_code", order.Code),
			zap.Error(err))
		return Receipt{}, fmt.Errorf("%w: %v", ErrPersistenceFailed, err)
	}

	// Step 3: best-effort fan-out. Nothing here can fail the workflow.
	result := w.dispatcher.Dispatch(ctx, webhook.NewPayload(sessionID, order))

	announceCtx, cancel := context.WithTimeout(ctx, w.timeout)
	_ = w.announcer.OrderCompleted(announceCtx, order)
	cancel()

	if err := w.carts.ClearCart(ctx, sessionID); err != nil {
		// The order is persisted; a stale cart is only logged.
		w.logger.Warn("failed to clear cart after submission",
			zap.String("session_id", sessionID),
			zap.Error(err))
	}

	degraded := !result.AnyDelivered() && result.Failed > 0
	notice := notify.Success("Order created", "Your order was submitted successfully")
	if degraded {
		notice = notify.Success("Order created",
			"Your order was saved, but delivery notifications could not be sent")
	}

	w.logger.Info("order submitted",
		zap.String("session_id", sessionID),
		zap.String("order_code", order.Code),
		zap.Int("webhooks_delivered", result.Delivered),
		zap.Int("webhooks_failed", result.Failed))

	return Receipt{
		OrderCode: order.Code,
		Total:     order.TotalAmount,
		Degraded:  degraded,
		Notice:    notice,
	}, nil
}
