package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/Kabeer-Ahmad/POS-Gloria/internal/menu"
	"github.com/Kabeer-Ahmad/POS-Gloria/internal/pricing"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// MenuCatalog defines the catalog methods needed by menu handlers.
// Satisfied by *menu.Catalog; narrow interface for testability.
type MenuCatalog interface {
	List(category string) []menu.MenuItem
	Active(category string) []menu.MenuItem
	Get(id string) (menu.MenuItem, error)
	Categories() []string
	Extras() []string
	Add(ctx context.Context, item menu.MenuItem) (menu.MenuItem, error)
	Update(ctx context.Context, id string, p menu.Patch) (menu.MenuItem, error)
	Delete(ctx context.Context, id string) error
	ToggleAvailability(ctx context.Context, id string) (menu.MenuItem, error)
}

// MenuHandler handles menu endpoints.
type MenuHandler struct {
	catalog MenuCatalog
	logger  *zap.SugaredLogger
}

// NewMenuHandler creates a new MenuHandler.
func NewMenuHandler(catalog MenuCatalog, logger *zap.SugaredLogger) *MenuHandler {
	return &MenuHandler{catalog: catalog, logger: logger}
}

// RegisterRoutes registers read-only menu endpoints.
// Expected to be mounted at /menu.
func (h *MenuHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/categories", h.Categories)
	r.Get("/extras", h.Extras)
	r.Get("/{id}", h.Get)
}

// RegisterAdminRoutes registers menu management endpoints.
// Expected to be mounted at /menu behind an admin role check.
func (h *MenuHandler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Patch("/{id}/availability", h.ToggleAvailability)
}

// --- Request / Response types ---

type createMenuItemRequest struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Category    string            `json:"category"`
	Sizes       []string          `json:"sizes"`
	Prices      map[string]string `json:"prices"`
	Description string            `json:"description"`
	ImageURL    string            `json:"image_url"`
	IsActive    *bool             `json:"is_active"`
}

type updateMenuItemRequest struct {
	Name        *string           `json:"name"`
	Category    *string           `json:"category"`
	Sizes       []string          `json:"sizes"`
	Prices      map[string]string `json:"prices"`
	Description *string           `json:"description"`
	ImageURL    *string           `json:"image_url"`
	IsActive    *bool             `json:"is_active"`
}

type menuItemResponse struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Category    string            `json:"category"`
	Sizes       []string          `json:"sizes"`
	Prices      map[string]string `json:"prices"`
	Description *string           `json:"description"`
	ImageURL    *string           `json:"image_url"`
	IsActive    bool              `json:"is_active"`
}

func toMenuItemResponse(m menu.MenuItem) menuItemResponse {
	resp := menuItemResponse{
		ID:       m.ID,
		Name:     m.Name,
		Category: m.Category,
		Sizes:    m.Sizes,
		Prices:   make(map[string]string, len(m.Prices)),
		IsActive: m.IsActive,
	}
	// Always format with 2 decimal places for consistent money representation.
	for size, p := range m.Prices {
		resp.Prices[size] = pricing.Format(p)
	}
	if m.Description != "" {
		resp.Description = &m.Description
	}
	if m.ImageURL != "" {
		resp.ImageURL = &m.ImageURL
	}
	return resp
}

// --- Handlers ---

// List returns menu items. Query params: category (default All) and
// include_inactive=true for the admin menu screen.
func (h *MenuHandler) List(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")

	var items []menu.MenuItem
	if r.URL.Query().Get("include_inactive") == "true" {
		items = h.catalog.List(category)
	} else {
		items = h.catalog.Active(category)
	}

	resp := make([]menuItemResponse, len(items))
	for i, it := range items {
		resp[i] = toMenuItemResponse(it)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Categories returns the category filter list, "All" first.
func (h *MenuHandler) Categories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.catalog.Categories())
}

// Extras returns the add-on labels offered on every item.
func (h *MenuHandler) Extras(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"extras":     h.catalog.Extras(),
		"unit_price": pricing.Format(pricing.ExtraPrice),
	})
}

// Get returns a single menu item.
func (h *MenuHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, err := h.catalog.Get(chi.URLParam(r, "id"))
	if err != nil {
		h.writeMenuError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMenuItemResponse(item))
}

// Create adds a menu item.
func (h *MenuHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createMenuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	prices, err := parsePrices(req.Prices)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	item := menu.MenuItem{
		ID:          req.ID,
		Name:        req.Name,
		Category:    req.Category,
		Sizes:       req.Sizes,
		Prices:      prices,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		IsActive:    req.IsActive == nil || *req.IsActive,
	}

	created, err := h.catalog.Add(r.Context(), item)
	if err != nil {
		h.writeMenuError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toMenuItemResponse(created))
}

// Update applies a partial update to a menu item.
func (h *MenuHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateMenuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	var prices map[string]decimal.Decimal
	if req.Prices != nil {
		var err error
		if prices, err = parsePrices(req.Prices); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
	}

	updated, err := h.catalog.Update(r.Context(), chi.URLParam(r, "id"), menu.Patch{
		Name:        req.Name,
		Category:    req.Category,
		Sizes:       req.Sizes,
		Prices:      prices,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		IsActive:    req.IsActive,
	})
	if err != nil {
		h.writeMenuError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toMenuItemResponse(updated))
}

// Delete removes a menu item. Lines already in carts are unaffected.
func (h *MenuHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeMenuError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ToggleAvailability flips whether an item can be sold.
func (h *MenuHandler) ToggleAvailability(w http.ResponseWriter, r *http.Request) {
	item, err := h.catalog.ToggleAvailability(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeMenuError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMenuItemResponse(item))
}

// --- Helpers ---

func parsePrices(raw map[string]string) (map[string]decimal.Decimal, error) {
	prices := make(map[string]decimal.Decimal, len(raw))
	for size, s := range raw {
		d, err := decimal.NewFromString(s)
		if err != nil {
			return nil, fmt.Errorf("invalid price for size %q", size)
		}
		prices[size] = d
	}
	return prices, nil
}

func (h *MenuHandler) writeMenuError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, menu.ErrItemNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "menu item not found"})
	case errors.Is(err, menu.ErrDuplicateID):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, menu.ErrNameRequired),
		errors.Is(err, menu.ErrCategoryRequired),
		errors.Is(err, menu.ErrSizesRequired),
		errors.Is(err, menu.ErrDuplicateSize),
		errors.Is(err, menu.ErrMissingPrice),
		errors.Is(err, menu.ErrUnknownPriceKey),
		errors.Is(err, menu.ErrNegativePrice):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		h.logger.Errorw("menu operation", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}
