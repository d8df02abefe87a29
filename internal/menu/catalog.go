package menu

import (
	"context"
	"slices"
	"sync"

	"github.com/Kabeer-Ahmad/POS-Gloria/internal/enum"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Mirror receives admin edits after they are applied locally. Writes are
// best-effort: a failing mirror never undoes a catalog change.
type Mirror interface {
	SaveMenuItem(ctx context.Context, item MenuItem) error
	DeleteMenuItem(ctx context.Context, id string) error
}

// Catalog is the in-memory menu shared by cashiers and admins.
type Catalog struct {
	mu     sync.RWMutex
	items  []MenuItem
	extras []string
	mirror Mirror
	logger *zap.SugaredLogger
}

// NewCatalog creates a catalog from a loaded menu file. mirror may be nil.
func NewCatalog(f File, mirror Mirror, logger *zap.SugaredLogger) *Catalog {
	c := &Catalog{mirror: mirror, logger: logger}
	c.Replace(f.Items)
	c.extras = append([]string(nil), f.Extras...)
	return c
}

// Replace swaps the whole item list.
func (c *Catalog) Replace(items []MenuItem) {
	cp := make([]MenuItem, len(items))
	for i, it := range items {
		cp[i] = it.Clone()
	}
	c.mu.Lock()
	c.items = cp
	c.mu.Unlock()
}

// List returns items in the category, or all items for "" and "All".
func (c *Catalog) List(category string) []MenuItem {
	return c.filter(category, false)
}

// Active is List restricted to items currently available for sale.
func (c *Catalog) Active(category string) []MenuItem {
	return c.filter(category, true)
}

func (c *Catalog) filter(category string, activeOnly bool) []MenuItem {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]MenuItem, 0, len(c.items))
	for _, it := range c.items {
		if activeOnly && !it.IsActive {
			continue
		}
		if category != "" && category != enum.CategoryAll && it.Category != category {
			continue
		}
		out = append(out, it.Clone())
	}
	return out
}

// Get returns a copy of the item with the given id.
func (c *Catalog) Get(id string) (MenuItem, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i := c.indexOf(id)
	if i < 0 {
		return MenuItem{}, ErrItemNotFound
	}
	return c.items[i].Clone(), nil
}

// Categories returns "All" followed by each category in first-seen order.
func (c *Catalog) Categories() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	cats := []string{enum.CategoryAll}
	for _, it := range c.items {
		if !slices.Contains(cats, it.Category) {
			cats = append(cats, it.Category)
		}
	}
	return cats
}

// Extras returns the extra labels offered on every item.
func (c *Catalog) Extras() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.extras...)
}

// IsExtra reports whether label is an offered extra.
func (c *Catalog) IsExtra(label string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Contains(c.extras, label)
}

// Add validates and appends a new item. An empty id gets a generated one.
func (c *Catalog) Add(ctx context.Context, item MenuItem) (MenuItem, error) {
	if err := item.Validate(); err != nil {
		return MenuItem{}, err
	}
	item = item.Clone()
	if item.ID == "" {
		item.ID = uuid.NewString()
	}

	c.mu.Lock()
	if c.indexOf(item.ID) >= 0 {
		c.mu.Unlock()
		return MenuItem{}, ErrDuplicateID
	}
	c.items = append(c.items, item)
	c.mu.Unlock()

	c.mirrorSave(ctx, item)
	return item.Clone(), nil
}

// Update applies a patch. The result must still validate; otherwise the item
// is left untouched.
func (c *Catalog) Update(ctx context.Context, id string, p Patch) (MenuItem, error) {
	c.mu.Lock()
	i := c.indexOf(id)
	if i < 0 {
		c.mu.Unlock()
		return MenuItem{}, ErrItemNotFound
	}
	updated := p.apply(c.items[i])
	if err := updated.Validate(); err != nil {
		c.mu.Unlock()
		return MenuItem{}, err
	}
	c.items[i] = updated
	c.mu.Unlock()

	c.mirrorSave(ctx, updated)
	return updated.Clone(), nil
}

// Delete removes an item. Lines already in carts keep their captured copy.
func (c *Catalog) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	i := c.indexOf(id)
	if i < 0 {
		c.mu.Unlock()
		return ErrItemNotFound
	}
	c.items = slices.Delete(c.items, i, i+1)
	c.mu.Unlock()

	if c.mirror != nil {
		if err := c.mirror.DeleteMenuItem(ctx, id); err != nil {
			c.logger.Warnw("remote menu delete failed", "menu_item_id", id, "error", err)
		}
	}
	return nil
}

// ToggleAvailability flips IsActive and returns the updated item.
func (c *Catalog) ToggleAvailability(ctx context.Context, id string) (MenuItem, error) {
	c.mu.Lock()
	i := c.indexOf(id)
	if i < 0 {
		c.mu.Unlock()
		return MenuItem{}, ErrItemNotFound
	}
	c.items[i].IsActive = !c.items[i].IsActive
	updated := c.items[i].Clone()
	c.mu.Unlock()

	c.mirrorSave(ctx, updated)
	return updated, nil
}

func (c *Catalog) mirrorSave(ctx context.Context, item MenuItem) {
	if c.mirror == nil {
		return
	}
	if err := c.mirror.SaveMenuItem(ctx, item); err != nil {
		c.logger.Warnw("remote menu save failed", "menu_item_id", item.ID, "error", err)
	}
}

// indexOf must be called with c.mu held.
func (c *Catalog) indexOf(id string) int {
	return slices.IndexFunc(c.items, func(it MenuItem) bool { return it.ID == id })
}
