package cart

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/amontes/storefront-backend/api/middleware"
	"github.com/amontes/storefront-backend/api/responses"
	"github.com/amontes/storefront-backend/api/validators"
	cartsvc "github.com/amontes/storefront-backend/internal/cart"
	pkgerrors "github.com/amontes/storefront-backend/pkg/errors"
	"github.com/amontes/storefront-backend/pkg/logger"
)

// CartFetch returns the owner's cart projection, or null when none exists.
func CartFetch(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		owner, err := ownerFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.GetCart(r.Context(), owner)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, view)
	}
}

// CartAddItem adds a product to the cart or increments its existing line.
func CartAddItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		owner, err := ownerFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload AddItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := uuid.Parse(payload.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}

		result := svc.AddItem(r.Context(), owner, cartsvc.AddItemInput{
			ProductID: productID,
			Name:      payload.Name,
			Slug:      payload.Slug,
			Image:     payload.Image,
			Price:     payload.Price,
			Qty:       payload.Qty,
		})
		responses.WriteSuccess(w, result)
	}
}

// CartSetQuantity overwrites a line's quantity.
func CartSetQuantity(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		owner, err := ownerFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := productIDFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload SetQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result := svc.SetItemQuantity(r.Context(), owner, productID, payload.Qty)
		responses.WriteSuccess(w, result)
	}
}

// CartDecrementItem lowers a line's quantity by one.
func CartDecrementItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		owner, err := ownerFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := productIDFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result := svc.DecrementItem(r.Context(), owner, productID)
		responses.WriteSuccess(w, result)
	}
}

// CartRemoveItem deletes a line regardless of quantity.
func CartRemoveItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		owner, err := ownerFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := productIDFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result := svc.RemoveItem(r.Context(), owner, productID)
		responses.WriteSuccess(w, result)
	}
}

func ownerFromContext(r *http.Request) (cartsvc.Owner, error) {
	sessionCartID := middleware.SessionCartIDFromContext(r.Context())
	if sessionCartID == "" {
		return cartsvc.Owner{}, pkgerrors.New(pkgerrors.CodeSessionMissing, "Cart session not found")
	}

	owner := cartsvc.Owner{SessionCartID: sessionCartID}
	if raw := middleware.UserIDFromContext(r.Context()); raw != "" {
		if userID, err := uuid.Parse(raw); err == nil {
			owner.UserID = &userID
		}
	}
	return owner, nil
}

func productIDFromPath(r *http.Request) (uuid.UUID, error) {
	productID, err := uuid.Parse(chi.URLParam(r, "productId"))
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id")
	}
	return productID, nil
}
