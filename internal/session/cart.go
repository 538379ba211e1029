package session

import (
	"context"
	"fmt"

	"github.com/safar/storefront/internal/store"
)

func (c *Controller) Cart(ctx context.Context, userID string) (store.CartView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cart, err := c.cart(ctx, userID)
	if err != nil {
		return store.CartView{}, err
	}
	return cart.View(), nil
}

func (c *Controller) AddToCart(ctx context.Context, userID string, productID int64, quantity int) (store.CartView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cart, err := c.cart(ctx, userID)
	if err != nil {
		return store.CartView{}, err
	}
	if _, err := cart.Add(ctx, productID, quantity); err != nil {
		return store.CartView{}, err
	}
	return cart.View(), nil
}

func (c *Controller) SetCartQuantity(ctx context.Context, userID string, productID int64, quantity int) (store.CartView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cart, err := c.cart(ctx, userID)
	if err != nil {
		return store.CartView{}, err
	}
	if err := cart.SetQuantity(ctx, productID, quantity); err != nil {
		return store.CartView{}, err
	}
	return cart.View(), nil
}

func (c *Controller) RemoveFromCart(ctx context.Context, userID string, productID int64) (store.CartView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cart, err := c.cart(ctx, userID)
	if err != nil {
		return store.CartView{}, err
	}
	cart.Remove(ctx, productID)
	return cart.View(), nil
}

func (c *Controller) ClearCart(ctx context.Context, userID string) (store.CartView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cart, err := c.cart(ctx, userID)
	if err != nil {
		return store.CartView{}, err
	}
	cart.Clear(ctx)
	return cart.View(), nil
}

// cart returns the user's cart, restoring it from storage on first use.
// Callers hold c.mu.
func (c *Controller) cart(ctx context.Context, userID string) (*store.Cart, error) {
	if cart, ok := c.carts[userID]; ok {
		return cart, nil
	}

	cart := store.NewCart(c.kv, c.log, userID, c.catalog)
	if err := cart.Restore(ctx); err != nil {
		return nil, fmt.Errorf("restore cart: %w", err)
	}
	if len(c.carts) >= c.maxCarts {
		for id := range c.carts {
			delete(c.carts, id)
			break
		}
	}
	c.carts[userID] = cart
	return cart, nil
}
