// Package cart is the client-side shopping cart of a storefront session.
//
// A Cart lives in memory and is written in full to its Storage after every
// mutation, so a later session can pick it up again with Load.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fjod/pixelwick/internal/domain"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	KeyCart     = "pixelwick_cart"
	KeyOrders   = "pixelwick_orders"
	KeyContacts = "pixelwick_contacts"
)

var (
	ErrEmptyCart     = errors.New("cart is empty")
	ErrNoOrderPlacer = errors.New("no order placer configured")
)

// Storage is a string-keyed blob store in the manner of browser localStorage.
type Storage interface {
	// Get returns ok=false when the key has never been set.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

type Catalog interface {
	Product(id int64) (domain.Product, bool)
}

// OrderPlacer submits an order to the system of record and returns its id.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, req domain.PlaceOrderRequest) (int64, error)
}

// LineItem is a product in the cart. It is stored flat:
// {"id":1,"name":...,"quantity":2}.
type LineItem struct {
	domain.Product
	Quantity int `json:"quantity"`
}

// Subtotal is price times quantity, rounded to cents.
func (li LineItem) Subtotal() decimal.Decimal {
	return decimal.NewFromFloat(li.Price).Mul(decimal.NewFromInt(int64(li.Quantity))).Round(2)
}

type Receipt struct {
	OrderID int64
	Total   decimal.Decimal
}

type Cart struct {
	storage  Storage
	catalog  Catalog
	placer   OrderPlacer
	observer func(Event)
	now      func() time.Time
	logger   zerolog.Logger

	mu    sync.Mutex
	items []LineItem
}

type Option func(*Cart)

// WithObserver registers fn to be told about every change. It is called
// after the cart has been persisted, without the cart lock held.
func WithObserver(fn func(Event)) Option {
	return func(c *Cart) { c.observer = fn }
}

func WithOrderPlacer(p OrderPlacer) Option {
	return func(c *Cart) { c.placer = p }
}

func WithClock(now func() time.Time) Option {
	return func(c *Cart) { c.now = now }
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Cart) { c.logger = l }
}

// Load restores the cart saved in storage. A missing, unreadable or invalid
// saved cart yields an empty cart; the bad value is overwritten by the next
// mutation.
func Load(ctx context.Context, storage Storage, catalog Catalog, opts ...Option) *Cart {
	c := &Cart{
		storage:  storage,
		catalog:  catalog,
		observer: func(Event) {},
		now:      time.Now,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	items, err := hydrate(ctx, storage)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", KeyCart).Msg("discarding saved cart")
	}
	c.items = items
	c.logger.Debug().Int("items", len(items)).Msg("cart loaded")
	return c
}

func hydrate(ctx context.Context, storage Storage) ([]LineItem, error) {
	raw, ok, err := storage.Get(ctx, KeyCart)
	if err != nil {
		return nil, fmt.Errorf("read saved cart: %w", err)
	}
	if !ok {
		return nil, nil
	}

	var items []LineItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode saved cart: %w", err)
	}

	seen := make(map[int64]struct{}, len(items))
	for _, li := range items {
		if li.Quantity < 1 {
			return nil, fmt.Errorf("saved cart: product %d has quantity %d", li.ID, li.Quantity)
		}
		if _, dup := seen[li.ID]; dup {
			return nil, fmt.Errorf("saved cart: product %d appears twice", li.ID)
		}
		seen[li.ID] = struct{}{}
	}
	return items, nil
}

// AddItem puts one unit of the product in the cart. It reports false, and
// changes nothing, when the catalog does not know the product.
func (c *Cart) AddItem(ctx context.Context, productID int64) (bool, error) {
	product, ok := c.catalog.Product(productID)
	if !ok {
		return false, nil
	}

	c.mu.Lock()
	if i := c.indexOf(productID); i >= 0 {
		c.items[i].Quantity++
	} else {
		c.items = append(c.items, LineItem{Product: product, Quantity: 1})
	}
	err := c.save(ctx)
	c.mu.Unlock()

	c.observer(Event{Kind: EventAdded, Product: product, Message: product.Name + " added to cart!"})
	return true, err
}

// RemoveItem drops the product's line. Removing an absent product is a no-op
// apart from the save.
func (c *Cart) RemoveItem(ctx context.Context, productID int64) error {
	c.mu.Lock()
	c.remove(productID)
	err := c.save(ctx)
	c.mu.Unlock()

	c.observer(Event{Kind: EventChanged})
	return err
}

// SetQuantity steps the product's quantity up or down by one. Stepping down
// from one removes the line. Unknown products are ignored.
func (c *Cart) SetQuantity(ctx context.Context, productID int64, increase bool) error {
	c.mu.Lock()
	i := c.indexOf(productID)
	if i < 0 {
		c.mu.Unlock()
		return nil
	}

	switch {
	case increase:
		c.items[i].Quantity++
	case c.items[i].Quantity > 1:
		c.items[i].Quantity--
	default:
		c.remove(productID)
	}
	err := c.save(ctx)
	c.mu.Unlock()

	c.observer(Event{Kind: EventChanged})
	return err
}

func (c *Cart) Clear(ctx context.Context) error {
	c.mu.Lock()
	c.items = nil
	err := c.save(ctx)
	c.mu.Unlock()

	c.observer(Event{Kind: EventChanged})
	c.observer(Event{Kind: EventCleared, Message: "Cart cleared!"})
	return err
}

// Checkout places an order for the cart contents. On success the order is
// added to the local order history and the cart is cleared. On failure
// nothing changes.
func (c *Cart) Checkout(ctx context.Context, customerInfo json.RawMessage) (Receipt, error) {
	c.mu.Lock()
	items := c.snapshot()
	c.mu.Unlock()

	if len(items) == 0 {
		return Receipt{}, ErrEmptyCart
	}
	if c.placer == nil {
		return Receipt{}, ErrNoOrderPlacer
	}

	total := sum(items)
	lines := make([]domain.OrderItem, 0, len(items))
	for _, li := range items {
		lines = append(lines, domain.OrderItem{
			ProductID: li.ID,
			Name:      li.Name,
			Price:     li.Price,
			Quantity:  li.Quantity,
		})
	}
	raw, err := domain.EncodeItems(lines)
	if err != nil {
		return Receipt{}, fmt.Errorf("encode order items: %w", err)
	}
	req := domain.PlaceOrderRequest{
		Items:        raw,
		CustomerInfo: customerInfo,
		Total:        total.InexactFloat64(),
	}

	orderID, err := c.placer.PlaceOrder(ctx, req)
	if err != nil {
		return Receipt{}, fmt.Errorf("place order: %w", err)
	}

	entry := OrderRecord{
		ID:    orderID,
		Date:  c.now().UTC().Truncate(time.Millisecond),
		Items: items,
		Total: total.InexactFloat64(),
	}
	if err := appendHistory(ctx, c.storage, KeyOrders, entry); err != nil {
		// The order exists on the server; only the local receipt is missing.
		c.logger.Error().Err(err).Int64("order_id", orderID).Msg("failed to record order history")
	}

	if err := c.Clear(ctx); err != nil {
		return Receipt{OrderID: orderID, Total: total}, err
	}

	c.observer(Event{
		Kind:    EventOrderPlaced,
		OrderID: orderID,
		Message: "Order placed successfully! Total: $" + total.StringFixed(2),
	})
	return Receipt{OrderID: orderID, Total: total}, nil
}

// Items returns a copy of the line items in the order they were added.
func (c *Cart) Items() []LineItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

// TotalItems is the number of units across all lines.
func (c *Cart) TotalItems() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, li := range c.items {
		n += li.Quantity
	}
	return n
}

// Total is the cart price, rounded to cents.
func (c *Cart) Total() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return sum(c.items)
}

func sum(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, li := range items {
		total = total.Add(decimal.NewFromFloat(li.Price).Mul(decimal.NewFromInt(int64(li.Quantity))))
	}
	return total.Round(2)
}

func (c *Cart) indexOf(productID int64) int {
	for i, li := range c.items {
		if li.ID == productID {
			return i
		}
	}
	return -1
}

func (c *Cart) remove(productID int64) {
	kept := c.items[:0]
	for _, li := range c.items {
		if li.ID != productID {
			kept = append(kept, li)
		}
	}
	c.items = kept
}

func (c *Cart) snapshot() []LineItem {
	out := make([]LineItem, len(c.items))
	copy(out, c.items)
	return out
}

// save must be called with mu held. The in-memory state stays mutated when
// the write fails.
func (c *Cart) save(ctx context.Context) error {
	items := c.items
	if items == nil {
		items = []LineItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := c.storage.Set(ctx, KeyCart, data); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}
