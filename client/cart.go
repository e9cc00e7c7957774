package client

import (
	"context"
	"errors"
	"sync"
)

// CartController keeps a responsive local cart in front of the API.
//
// Mutations apply to local state immediately and the matching request is sent
// afterwards; the server's snapshot response is authoritative and replaces
// local state wholesale, which also repairs any earlier drift. On failure the
// pre-mutation state is restored exactly. The local copy is a cache, never
// the source of truth.
//
// Without a logged-in identity the controller runs in local mode: mutations
// never touch the network and the cart lives only in memory.
type CartController struct {
	mu             sync.Mutex
	api            *Client
	lines          []Line
	serverMode     bool
	seq            uint64
	onUnauthorized func()
}

func NewCartController(api *Client) *CartController {
	return &CartController{api: api}
}

// OnUnauthorized registers the re-authentication hook. It runs after the
// controller has already dropped its identity and cart state.
func (cc *CartController) OnUnauthorized(fn func()) {
	cc.mu.Lock()
	cc.onUnauthorized = fn
	cc.mu.Unlock()
}

// Lines returns a copy of the current visible cart.
func (cc *CartController) Lines() []Line {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cloneLines(cc.lines)
}

// Subtotal is the price-weighted quantity sum of the visible cart.
func (cc *CartController) Subtotal() float64 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	var total float64
	for _, l := range cc.lines {
		total += l.Price * float64(l.Quantity)
	}
	return total
}

// Login authenticates, switches to server-backed mode and adopts the server
// snapshot. Any anonymous local lines are discarded, not merged.
func (cc *CartController) Login(ctx context.Context, email, password string) error {
	result, err := cc.api.Login(ctx, email, password)
	if err != nil {
		return err
	}
	cc.api.SetToken(result.Token)

	snapshot, err := cc.api.FetchCart(ctx)
	if err != nil {
		cc.api.SetToken("")
		return err
	}

	cc.mu.Lock()
	cc.serverMode = true
	cc.lines = snapshot
	cc.seq++ // any in-flight anonymous-era response is now stale
	cc.mu.Unlock()
	return nil
}

// Logout revokes the session server-side (best effort) and reverts to an
// empty local cart.
func (cc *CartController) Logout(ctx context.Context) {
	_ = cc.api.Logout(ctx)
	cc.mu.Lock()
	cc.resetLocked()
	cc.mu.Unlock()
}

// Add puts quantity more of the product in the cart (insert-or-increment).
func (cc *CartController) Add(ctx context.Context, line Line) error {
	if line.ProductID == 0 {
		return ErrValidation
	}
	if line.Quantity <= 0 {
		line.Quantity = 1
	}
	return cc.mutate(ctx,
		func(lines []Line) []Line { return applyUpsert(lines, line) },
		func(ctx context.Context) ([]Line, error) { return cc.api.UpsertItem(ctx, line) },
	)
}

// Increment raises the line's quantity by one.
func (cc *CartController) Increment(ctx context.Context, productID uint) error {
	cc.mu.Lock()
	idx := findLine(cc.lines, productID)
	if idx < 0 {
		cc.mu.Unlock()
		return ErrNotFound
	}
	target := cc.lines[idx].Quantity + 1
	cc.mu.Unlock()
	return cc.SetQuantity(ctx, productID, target)
}

// Decrement lowers the line's quantity by one, clamped at 1: the request for
// a quantity below one is never even sent.
func (cc *CartController) Decrement(ctx context.Context, productID uint) error {
	cc.mu.Lock()
	idx := findLine(cc.lines, productID)
	if idx < 0 {
		cc.mu.Unlock()
		return ErrNotFound
	}
	current := cc.lines[idx].Quantity
	cc.mu.Unlock()

	if current <= 1 {
		return nil
	}
	return cc.SetQuantity(ctx, productID, current-1)
}

// SetQuantity replaces the line's quantity exactly.
func (cc *CartController) SetQuantity(ctx context.Context, productID uint, quantity int) error {
	if productID == 0 || quantity <= 0 {
		return ErrValidation
	}
	return cc.mutate(ctx,
		func(lines []Line) []Line { return applySetQuantity(lines, productID, quantity) },
		func(ctx context.Context) ([]Line, error) { return cc.api.SetQuantity(ctx, productID, quantity) },
	)
}

// Remove drops the line from the cart.
func (cc *CartController) Remove(ctx context.Context, productID uint) error {
	if productID == 0 {
		return ErrValidation
	}
	return cc.mutate(ctx,
		func(lines []Line) []Line { return applyRemove(lines, productID) },
		func(ctx context.Context) ([]Line, error) { return cc.api.RemoveItem(ctx, productID) },
	)
}

// Clear empties the cart.
func (cc *CartController) Clear(ctx context.Context) error {
	return cc.mutate(ctx,
		func([]Line) []Line { return nil },
		func(ctx context.Context) ([]Line, error) { return cc.api.ClearCart(ctx) },
	)
}

// Refresh pulls the server snapshot without an optimistic step.
func (cc *CartController) Refresh(ctx context.Context) error {
	cc.mu.Lock()
	if !cc.serverMode {
		cc.mu.Unlock()
		return nil
	}
	cc.seq++
	seq := cc.seq
	cc.mu.Unlock()

	snapshot, err := cc.api.FetchCart(ctx)

	cc.mu.Lock()
	defer cc.mu.Unlock()
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			return cc.handleUnauthorizedLocked(err)
		}
		return err
	}
	if seq == cc.seq {
		cc.lines = snapshot
	}
	return nil
}

// mutate is the optimistic-update cycle: snapshot for rollback, apply
// locally, send, then reconcile. A response whose sequence number is stale
// (a newer mutation has been issued since) is discarded rather than applied.
func (cc *CartController) mutate(ctx context.Context, apply func([]Line) []Line, send func(context.Context) ([]Line, error)) error {
	cc.mu.Lock()
	rollback := cloneLines(cc.lines)
	cc.lines = apply(cloneLines(cc.lines))

	if !cc.serverMode {
		cc.mu.Unlock()
		return nil
	}
	cc.seq++
	seq := cc.seq
	cc.mu.Unlock()

	snapshot, err := send(ctx)

	cc.mu.Lock()
	defer cc.mu.Unlock()
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			return cc.handleUnauthorizedLocked(err)
		}
		if seq == cc.seq {
			cc.lines = rollback
		}
		return err
	}
	if seq == cc.seq {
		cc.lines = snapshot
	}
	return nil
}

// handleUnauthorizedLocked drops identity and cart state; stale local data
// must not survive an invalid session. Caller holds cc.mu.
func (cc *CartController) handleUnauthorizedLocked(err error) error {
	fn := cc.onUnauthorized
	cc.resetLocked()
	if fn != nil {
		cc.mu.Unlock()
		fn()
		cc.mu.Lock()
	}
	return err
}

func (cc *CartController) resetLocked() {
	cc.serverMode = false
	cc.lines = nil
	cc.seq++
	cc.api.SetToken("")
}

func applyUpsert(lines []Line, line Line) []Line {
	if idx := findLine(lines, line.ProductID); idx >= 0 {
		lines[idx].Quantity += line.Quantity
		lines[idx].Title = line.Title
		lines[idx].Price = line.Price
		lines[idx].Image = line.Image
		return lines
	}
	return append(lines, line)
}

func applySetQuantity(lines []Line, productID uint, quantity int) []Line {
	if idx := findLine(lines, productID); idx >= 0 {
		lines[idx].Quantity = quantity
	}
	return lines
}

func applyRemove(lines []Line, productID uint) []Line {
	if idx := findLine(lines, productID); idx >= 0 {
		return append(lines[:idx], lines[idx+1:]...)
	}
	return lines
}

func findLine(lines []Line, productID uint) int {
	for i := range lines {
		if lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func cloneLines(lines []Line) []Line {
	if lines == nil {
		return nil
	}
	out := make([]Line, len(lines))
	copy(out, lines)
	return out
}
