package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/abgdnv/flatshop/internal/cart"
	perrors "github.com/abgdnv/flatshop/internal/errors"
	"github.com/abgdnv/flatshop/pkg/validation"
	"github.com/abgdnv/flatshop/pkg/web"
)

// AddItemRequest is the body of POST /api/carts/{id}/product/{pid}.
// Quantity accepts a JSON number or a quoted number.
type AddItemRequest struct {
	Quantity json.Number `json:"quantity" validate:"required,gt=0"`
}

// quantity returns the requested amount, zero when absent.
func (req AddItemRequest) quantity() float64 {
	q, err := req.Quantity.Float64()
	if err != nil {
		return 0
	}
	return q
}

// ListCarts returns the whole cart collection.
func (h *Handler) ListCarts(w http.ResponseWriter, r *http.Request) {
	list, err := h.carts.List(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Error retrieving cart list", "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, "Failed to fetch carts")
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, list)
}

// CreateCart stores a new empty cart.
func (h *Handler) CreateCart(w http.ResponseWriter, r *http.Request) {
	created, err := h.carts.Create(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Error creating cart", "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, "Failed to create cart")
		return
	}
	h.logger.InfoContext(r.Context(), "Cart created successfully", "ID", created.ID)
	status := http.StatusOK
	if h.strict {
		status = http.StatusCreated
	}
	web.RespondJSON(w, h.logger, status, created)
}

// GetCart returns only the items of the cart.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	id, ok := web.PathValue(w, r, h.logger, "id")
	if !ok {
		return
	}
	found, err := h.carts.GetByID(r.Context(), id)
	if err != nil {
		h.respondCartError(w, r, id, err, "retrieve")
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, found.Products)
}

// UpdateCart merges the submitted fields into a cart.
func (h *Handler) UpdateCart(w http.ResponseWriter, r *http.Request) {
	id, ok := web.PathValue(w, r, h.logger, "id")
	if !ok {
		return
	}
	var patch cart.CartPatch
	if err := web.DecodeJSON(w, r, &patch, true); err != nil {
		h.logger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	updated, err := h.carts.Update(r.Context(), id, patch)
	if err != nil {
		h.respondCartError(w, r, id, err, "update")
		return
	}
	h.logger.InfoContext(r.Context(), "Cart updated successfully", "ID", updated.ID)
	web.RespondJSON(w, h.logger, http.StatusOK, updated)
}

// AddCartItem adds a quantity of a product to a cart.
// In lenient mode the response is 200 without a body even when the cart does not exist
// or the quantity is not a number.
func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	id, ok := web.PathValue(w, r, h.logger, "id")
	if !ok {
		return
	}
	productID, ok := web.PathValue(w, r, h.logger, "pid")
	if !ok {
		return
	}
	var req AddItemRequest
	if _, err := web.DecodeBody(w, r, &req); err != nil {
		var typeErr *web.TypeMismatchError
		switch {
		case !errors.As(err, &typeErr):
			h.logger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
			web.RespondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		case h.strict:
			h.logger.WarnContext(r.Context(), "Validation errors occurred", "errors", typeErr.Fields())
			web.RespondValidationErrors(w, h.logger, typeErr.Fields())
		default:
			h.logger.WarnContext(r.Context(), "Item not added: validation failed", "ID", id, "errors", typeErr.Fields())
			w.WriteHeader(http.StatusOK)
		}
		return
	}
	if h.strict {
		if err := h.validate.Struct(req); err != nil {
			if fields, ok := validation.Fields(err); ok {
				h.logger.WarnContext(r.Context(), "Validation errors occurred", "errors", fields)
				web.RespondValidationErrors(w, h.logger, fields)
				return
			}
			h.logger.ErrorContext(r.Context(), "Error validating request body", "error", err)
			web.RespondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	updated, err := h.carts.AddItem(r.Context(), id, productID, req.quantity())
	if err != nil {
		if !errors.Is(err, perrors.ErrCartNotFound) || h.strict {
			h.respondCartError(w, r, id, err, "add item to")
			return
		}
		h.logger.WarnContext(r.Context(), "Cart not found for item add", "ID", id, "product_id", productID)
	} else {
		h.logger.InfoContext(r.Context(), "Item added to cart", "ID", updated.ID, "product_id", productID, "quantity", req.quantity())
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) respondCartError(w http.ResponseWriter, r *http.Request, id string, err error, action string) {
	var validationErr *perrors.ValidationError
	switch {
	case errors.Is(err, perrors.ErrCartNotFound):
		h.logger.WarnContext(r.Context(), "Cart not found", "ID", id)
		web.RespondError(w, h.logger, http.StatusNotFound, fmt.Sprintf("Cart with ID %s not found", id))
	case errors.As(err, &validationErr):
		h.logger.WarnContext(r.Context(), "Validation errors occurred", "errors", validationErr.Fields)
		web.RespondValidationErrors(w, h.logger, validationErr.Fields)
	default:
		h.logger.ErrorContext(r.Context(), "Error processing cart", "ID", id, "action", action, "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, fmt.Sprintf("Failed to %s cart with ID %s", action, id))
	}
}
