package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kiwari-pos/cafeteria/internal/cafeapi"
	"github.com/kiwari-pos/cafeteria/internal/catalog"
	"github.com/kiwari-pos/cafeteria/internal/enum"
	"github.com/kiwari-pos/cafeteria/internal/metrics"
	"github.com/kiwari-pos/cafeteria/internal/order"
	"github.com/kiwari-pos/cafeteria/internal/ws"
	"github.com/rs/zerolog"
)

// Errors returned by the order service.
var (
	ErrEmptySelection  = errors.New("no items selected")
	ErrUnknownItem     = errors.New("item not on the menu")
	ErrMenuUnavailable = errors.New("menu unavailable")
	ErrTransport       = errors.New("ordering service unavailable")
	ErrInvalidMode     = errors.New("invalid order mode")
)

// OrderStore defines the order history methods the service needs.
// Satisfied by *order.Store.
type OrderStore interface {
	ReadAll(ctx context.Context) ([]order.Order, error)
	Append(ctx context.Context, o order.Order) error
	FindByID(ctx context.Context, id string) (order.Order, bool, error)
	AdvanceStatus(ctx context.Context, id string) (order.Order, bool, error)
}

// NewOrderStore returns the store of one browser profile.
type NewOrderStore func(profileID uuid.UUID) OrderStore

// OrderCreator sends an order to the remote API. Satisfied by *cafeapi.Client.
type OrderCreator interface {
	CreateOrder(ctx context.Context, lines []cafeapi.OrderLine) (*cafeapi.CreateOrderResponse, error)
}

// Notifier tells open pages of a profile that its orders changed.
// Satisfied by *ws.Hub.
type Notifier interface {
	BroadcastToProfile(profileID uuid.UUID, event ws.Event)
}

// PlaceOrderRequest is a quantity per menu item id. Entries with a
// quantity of zero or less are ignored.
type PlaceOrderRequest struct {
	ProfileID  uuid.UUID
	Quantities map[string]int
}

// Options wires an OrderService.
type Options struct {
	Mode     string
	Menu     catalog.Catalog
	API      OrderCreator // remote mode only
	NewStore NewOrderStore
	Notifier Notifier
	Metrics  *metrics.Metrics
	Now      func() time.Time
	NewID    func() string
}

// OrderService handles order submission and the status lifecycle.
type OrderService struct {
	mode     string
	menu     catalog.Catalog
	submit   submitter
	newStore NewOrderStore
	notifier Notifier
	metrics  *metrics.Metrics
	now      func() time.Time
}

// NewOrderService creates a new OrderService.
func NewOrderService(opts Options) (*OrderService, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = func() string { return uuid.New().String() }
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.Discard()
	}

	var sub submitter
	switch opts.Mode {
	case enum.OrderModeLocal:
		sub = localSubmitter{newID: opts.NewID}
	case enum.OrderModeRemote:
		if opts.API == nil {
			return nil, fmt.Errorf("%w: remote mode needs an API client", ErrInvalidMode)
		}
		sub = remoteSubmitter{api: opts.API}
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, opts.Mode)
	}

	return &OrderService{
		mode:     opts.Mode,
		menu:     opts.Menu,
		submit:   sub,
		newStore: opts.NewStore,
		notifier: opts.Notifier,
		metrics:  opts.Metrics,
		now:      opts.Now,
	}, nil
}

// Mode reports the configured submission strategy.
func (s *OrderService) Mode() string {
	return s.mode
}

// Menu returns the current menu.
func (s *OrderService) Menu(ctx context.Context) ([]catalog.MenuItem, error) {
	items, err := s.menu.Menu(ctx)
	if err != nil {
		s.metrics.MenuFetchFailures.Inc()
		return nil, fmt.Errorf("%w: %w", ErrMenuUnavailable, err)
	}
	return items, nil
}

// PlaceOrder validates the selection, prices it from the menu, submits it
// with the configured strategy and records it in the profile's history.
// Nothing is persisted unless every step before the write succeeds.
func (s *OrderService) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (order.Order, error) {
	log := zerolog.Ctx(ctx)

	selected := make(map[string]int, len(req.Quantities))
	for id, qty := range req.Quantities {
		if qty > 0 {
			selected[id] = qty
		}
	}
	if len(selected) == 0 {
		s.count(metrics.OutcomeRejected)
		return order.Order{}, ErrEmptySelection
	}

	menu, err := s.Menu(ctx)
	if err != nil {
		s.count(metrics.OutcomeTransport)
		return order.Order{}, fmt.Errorf("%w: %w", ErrTransport, err)
	}

	// Line items follow menu order so the same selection always produces
	// the same order.
	items := make([]order.LineItem, 0, len(selected))
	seen := make(map[string]bool, len(selected))
	for _, m := range menu {
		qty, ok := selected[m.ID]
		if !ok || seen[m.ID] {
			continue
		}
		seen[m.ID] = true
		items = append(items, order.NewLineItem(m.ID, m.Name, m.Price, qty))
	}
	for id := range selected {
		if !seen[id] {
			s.count(metrics.OutcomeRejected)
			return order.Order{}, fmt.Errorf("%w: %q", ErrUnknownItem, id)
		}
	}

	sub, err := s.submit.submit(ctx, items)
	if err != nil {
		s.count(metrics.OutcomeTransport)
		log.Error().Err(err).Str("mode", s.mode).Msg("order submission failed")
		return order.Order{}, fmt.Errorf("%w: %w", ErrTransport, err)
	}

	o := order.New(sub.id, items, s.now().UTC())
	o.Extra = sub.extra
	if err := s.newStore(req.ProfileID).Append(ctx, o); err != nil {
		s.count(metrics.OutcomeStorage)
		return order.Order{}, fmt.Errorf("save order %s: %w", sub.id, err)
	}
	s.count(metrics.OutcomePlaced)

	log.Info().
		Str("order_id", o.ID).
		Str("mode", s.mode).
		Int("lines", len(o.Items)).
		Str("total", o.Total.StringFixed(2)).
		Msg("order placed")

	s.notify(req.ProfileID, enum.EventOrderCreated, o)
	return o, nil
}

// ListOrders returns the profile's orders, newest first.
func (s *OrderService) ListOrders(ctx context.Context, profileID uuid.UUID) ([]order.Order, error) {
	return s.newStore(profileID).ReadAll(ctx)
}

// GetOrder looks up one order of the profile.
func (s *OrderService) GetOrder(ctx context.Context, profileID uuid.UUID, id string) (order.Order, bool, error) {
	return s.newStore(profileID).FindByID(ctx, id)
}

// AdvanceStatus moves an order one lifecycle step forward. ok is false when
// the profile has no such order.
func (s *OrderService) AdvanceStatus(ctx context.Context, profileID uuid.UUID, id string) (order.Order, bool, error) {
	o, ok, err := s.newStore(profileID).AdvanceStatus(ctx, id)
	if err != nil || !ok {
		return o, ok, err
	}
	s.metrics.StatusAdvances.WithLabelValues(string(o.Status)).Inc()
	s.notify(profileID, enum.EventOrderUpdated, o)
	return o, true, nil
}

func (s *OrderService) count(outcome string) {
	s.metrics.OrdersSubmitted.WithLabelValues(s.mode, outcome).Inc()
}

func (s *OrderService) notify(profileID uuid.UUID, eventType string, o order.Order) {
	if s.notifier == nil {
		return
	}
	s.notifier.BroadcastToProfile(profileID, ws.NewOrderEvent(eventType, o.ID, string(o.Status)))
}

// submission is what a submitter learned about a new order.
type submission struct {
	id    string
	extra map[string]json.RawMessage
}

// submitter turns priced line items into an order id.
type submitter interface {
	submit(ctx context.Context, items []order.LineItem) (submission, error)
}

// localSubmitter issues ids itself; no network call.
type localSubmitter struct {
	newID func() string
}

func (l localSubmitter) submit(ctx context.Context, items []order.LineItem) (submission, error) {
	return submission{id: l.newID()}, nil
}

// remoteSubmitter sends only id and quantity per line; names and prices stay
// on the local record. Other fields of the reply are kept on the record.
type remoteSubmitter struct {
	api OrderCreator
}

func (r remoteSubmitter) submit(ctx context.Context, items []order.LineItem) (submission, error) {
	lines := make([]cafeapi.OrderLine, len(items))
	for i, it := range items {
		lines[i] = cafeapi.OrderLine{ItemID: it.ItemID, Qty: it.Quantity}
	}
	resp, err := r.api.CreateOrder(ctx, lines)
	if err != nil {
		return submission{}, err
	}
	return submission{id: resp.OrderID, extra: resp.Extra}, nil
}
