package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"tableorder-backend/models"
)

// Notifier is told about order events. Failures are logged by the caller
// and never fail the request.
type Notifier interface {
	OrderPlaced(ctx context.Context, order models.Order) error
	OrderReady(ctx context.Context, order models.Order) error
}

// Notifiers fans out to every notifier and joins their errors.
type Notifiers []Notifier

func (n Notifiers) OrderPlaced(ctx context.Context, order models.Order) error {
	var errs []error
	for _, notifier := range n {
		if err := notifier.OrderPlaced(ctx, order); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (n Notifiers) OrderReady(ctx context.Context, order models.Order) error {
	var errs []error
	for _, notifier := range n {
		if err := notifier.OrderReady(ctx, order); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// AsyncNotifier delivers in the background so slow providers do not hold
// up the request.
type AsyncNotifier struct {
	next     Notifier
	timeout  time.Duration
	logger   *slog.Logger
	inFlight sync.WaitGroup
}

func NewAsyncNotifier(next Notifier, timeout time.Duration, logger *slog.Logger) *AsyncNotifier {
	return &AsyncNotifier{next: next, timeout: timeout, logger: logger.With("component", "notifier")}
}

func (a *AsyncNotifier) OrderPlaced(_ context.Context, order models.Order) error {
	a.dispatch("order_placed", order, a.next.OrderPlaced)
	return nil
}

func (a *AsyncNotifier) OrderReady(_ context.Context, order models.Order) error {
	a.dispatch("order_ready", order, a.next.OrderReady)
	return nil
}

// The request context is not used: it is cancelled once the response is
// written.
func (a *AsyncNotifier) dispatch(event string, order models.Order, send func(context.Context, models.Order) error) {
	a.inFlight.Add(1)
	go func() {
		defer a.inFlight.Done()
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		defer cancel()
		if err := send(ctx, order); err != nil {
			a.logger.Warn("notification failed", "event", event, "order_id", order.ID, "error", err)
		}
	}()
}

// Wait blocks until every dispatched notification has been delivered or
// has failed, or until ctx is done.
func (a *AsyncNotifier) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		a.inFlight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// orderSummary renders the order for chat and SMS messages.
func orderSummary(order models.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "New order for table %d (%s)\n", order.TableNumber, shortID(order))
	for _, item := range order.Items {
		fmt.Fprintf(&b, "- %d x %s\n", item.Quantity, item.Name)
	}
	if order.SpecialInstructions != "" {
		fmt.Fprintf(&b, "Note: %s\n", order.SpecialInstructions)
	}
	fmt.Fprintf(&b, "Total: %s, ready in about %d min", order.TotalAmount.StringFixed(2), order.EstimatedTime)
	return b.String()
}

func shortID(order models.Order) string {
	return order.ID.String()[:8]
}
