package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	perrors "github.com/abgdnv/flatshop/internal/errors"
	"github.com/abgdnv/flatshop/internal/product"
	"github.com/abgdnv/flatshop/pkg/web"
)

// ListProducts returns the whole product collection.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	list, err := h.products.List(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Error retrieving product list", "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, "Failed to fetch products")
		return
	}
	h.logger.DebugContext(r.Context(), "Successfully retrieved product list", "count", len(list))
	web.RespondJSON(w, h.logger, http.StatusOK, list)
}

// GetProduct retrieves a product by its ID.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := web.PathValue(w, r, h.logger, "id")
	if !ok {
		return
	}
	found, err := h.products.GetByID(r.Context(), id)
	if err != nil {
		h.respondProductError(w, r, id, err, "retrieve")
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, found)
}

// AddProduct stores a new product.
// In lenient mode the submitted body is echoed with 200 whether or not the product was stored,
// including well-formed bodies whose values have the wrong type. An empty body is echoed as {}.
func (h *Handler) AddProduct(w http.ResponseWriter, r *http.Request) {
	var in product.ProductInput
	body, err := web.DecodeBody(w, r, &in)
	if err != nil {
		var typeErr *web.TypeMismatchError
		if !errors.As(err, &typeErr) {
			h.logger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
			web.RespondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
			return
		}
		h.logger.WarnContext(r.Context(), "Product not added: validation failed", "errors", typeErr.Fields())
		if h.strict {
			web.RespondValidationErrors(w, h.logger, typeErr.Fields())
			return
		}
		web.RespondJSON(w, h.logger, http.StatusOK, json.RawMessage(body))
		return
	}

	created, err := h.products.Add(r.Context(), in)
	if err != nil {
		var validationErr *perrors.ValidationError
		switch {
		case errors.As(err, &validationErr):
			h.logger.WarnContext(r.Context(), "Product not added: validation failed", "errors", validationErr.Fields)
			if h.strict {
				web.RespondValidationErrors(w, h.logger, validationErr.Fields)
				return
			}
		case errors.Is(err, perrors.ErrDuplicateCode):
			h.logger.WarnContext(r.Context(), "Product not added: duplicate code", "code", in.Code)
			if h.strict {
				web.RespondError(w, h.logger, http.StatusConflict, fmt.Sprintf("Product with code %s already exists", in.Code))
				return
			}
		default:
			h.logger.ErrorContext(r.Context(), "Error creating product", "error", err)
			web.RespondError(w, h.logger, http.StatusInternalServerError, "Failed to create product")
			return
		}
		web.RespondJSON(w, h.logger, http.StatusOK, json.RawMessage(body))
		return
	}

	h.logger.InfoContext(r.Context(), "Product created successfully", "ID", created.ID, "code", created.Code)
	if h.strict {
		web.RespondJSON(w, h.logger, http.StatusCreated, created)
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, json.RawMessage(body))
}

// UpdateProduct merges the submitted fields into a product. An id in the body is ignored.
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := web.PathValue(w, r, h.logger, "id")
	if !ok {
		return
	}
	var patch product.ProductPatch
	if err := web.DecodeJSON(w, r, &patch, true); err != nil {
		h.logger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	updated, err := h.products.Update(r.Context(), id, patch)
	if err != nil {
		h.respondProductError(w, r, id, err, "update")
		return
	}
	h.logger.InfoContext(r.Context(), "Product updated successfully", "ID", updated.ID)
	web.RespondJSON(w, h.logger, http.StatusOK, updated)
}

// DeleteProduct deletes a product by its ID.
// In lenient mode an unknown ID still answers 204.
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := web.PathValue(w, r, h.logger, "id")
	if !ok {
		return
	}
	if err := h.products.Delete(r.Context(), id); err != nil {
		if !errors.Is(err, perrors.ErrProductNotFound) || h.strict {
			h.respondProductError(w, r, id, err, "delete")
			return
		}
		h.logger.WarnContext(r.Context(), "Product not found for deletion", "ID", id)
	} else {
		h.logger.InfoContext(r.Context(), "Product deleted successfully", "ID", id)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondProductError(w http.ResponseWriter, r *http.Request, id string, err error, action string) {
	var validationErr *perrors.ValidationError
	switch {
	case errors.Is(err, perrors.ErrProductNotFound):
		h.logger.WarnContext(r.Context(), "Product not found", "ID", id)
		web.RespondError(w, h.logger, http.StatusNotFound, fmt.Sprintf("Product with ID %s not found", id))
	case errors.Is(err, perrors.ErrDuplicateCode):
		h.logger.WarnContext(r.Context(), "Product code already exists", "ID", id)
		web.RespondError(w, h.logger, http.StatusConflict, "Product code already exists")
	case errors.As(err, &validationErr):
		web.RespondValidationErrors(w, h.logger, validationErr.Fields)
	default:
		h.logger.ErrorContext(r.Context(), "Error processing product", "ID", id, "action", action, "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, fmt.Sprintf("Failed to %s product with ID %s", action, id))
	}
}
