package httpserver

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"lostfound/internal/domain"
	"lostfound/internal/service"
)

const maxItemFormSize = 10 << 20 // 10MB, image included

func itemID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil
}

// @Summary      Public feed
// @Description  Approved items that are not returned or closed
// @Tags         items
// @Produce      json
// @Success      200  {array}  service.ItemResponse
// @Router       /items [get]
func handlePublicFeed(itemSvc *service.ItemService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := itemSvc.PublicFeed(r.Context())
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": itemSvc.ToResponses(r.Context(), items)})
	}
}

// @Summary      Create item
// @Description  Post a lost/found item with an optional photo
// @Tags         items
// @Security     CookieAuth
// @Accept       mpfd
// @Produce      json
// @Success      201  {object}  service.ItemResponse
// @Failure      400  {object}  map[string]string
// @Router       /items [post]
func handleCreateItem(itemSvc *service.ItemService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(maxItemFormSize); err != nil {
			writeError(w, http.StatusBadRequest, "failed to parse multipart form")
			return
		}

		var image io.Reader
		if file, _, err := r.FormFile("image"); err == nil {
			defer file.Close()
			image = file
		}

		it, err := itemSvc.Create(r.Context(), CurrentUser(r), service.ItemCreateInput{
			Title:       r.FormValue("title"),
			Description: r.FormValue("description"),
			Location:    r.FormValue("location"),
			Status:      r.FormValue("status"),
			Image:       image,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"item": itemSvc.ToResponse(r.Context(), it)})
	}
}

// @Summary      Get item
// @Tags         items
// @Produce      json
// @Param        id path int true "Item ID"
// @Success      200  {object}  service.ItemResponse
// @Failure      404  {object}  map[string]string
// @Router       /items/{id} [get]
func handleGetItem(itemSvc *service.ItemService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := itemID(r)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid item id")
			return
		}
		it, err := itemSvc.Get(r.Context(), id)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"item": itemSvc.ToResponse(r.Context(), it)})
	}
}

// @Summary      Approve item
// @Tags         items
// @Security     CookieAuth
// @Produce      json
// @Param        id path int true "Item ID"
// @Success      200  {object}  service.ItemResponse
// @Failure      403  {object}  map[string]string
// @Router       /items/{id}/approve [patch]
func handleApproveItem(itemSvc *service.ItemService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := itemID(r)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid item id")
			return
		}
		it, err := itemSvc.Approve(r.Context(), CurrentUser(r), id)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"message": "Item approved", "item": itemSvc.ToResponse(r.Context(), it)})
	}
}

// @Summary      Claim item
// @Description  Claim an unclaimed item; opens the chat thread
// @Tags         items
// @Security     CookieAuth
// @Produce      json
// @Param        id path int true "Item ID"
// @Success      200  {object}  service.ItemResponse
// @Failure      409  {object}  map[string]string
// @Router       /items/{id}/claim [patch]
func handleClaimItem(itemSvc *service.ItemService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := itemID(r)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid item id")
			return
		}
		it, err := itemSvc.Claim(r.Context(), CurrentUser(r), id)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "item": itemSvc.ToResponse(r.Context(), it)})
	}
}

// @Summary      Unclaim item
// @Description  Reset an item to found/unclaimed
// @Tags         items
// @Security     CookieAuth
// @Produce      json
// @Param        id path int true "Item ID"
// @Success      200  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /items/{id}/unclaim [patch]
func handleUnclaimItem(itemSvc *service.ItemService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := itemID(r)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid item id")
			return
		}
		if err := itemSvc.Unclaim(r.Context(), CurrentUser(r), id); err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Item status set to found and unclaimed."})
	}
}

type statusRequest struct {
	Status string `json:"status"`
}

// @Summary      Resolve item
// @Description  Mark a claim as returned or closed
// @Tags         items
// @Security     CookieAuth
// @Accept       json
// @Produce      json
// @Param        id path int true "Item ID"
// @Param        input body statusRequest true "returned or closed"
// @Success      200  {object}  service.ItemResponse
// @Router       /items/{id}/resolve [patch]
func handleResolveItem(itemSvc *service.ItemService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := itemID(r)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid item id")
			return
		}
		var req statusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		it, err := itemSvc.Resolve(r.Context(), CurrentUser(r), id, domain.ItemStatus(req.Status))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"message": "Item marked as " + req.Status, "item": itemSvc.ToResponse(r.Context(), it)})
	}
}

// @Summary      Set item status
// @Description  Set any valid lifecycle status
// @Tags         items
// @Security     CookieAuth
// @Accept       json
// @Produce      json
// @Param        id path int true "Item ID"
// @Param        input body statusRequest true "New status"
// @Success      200  {object}  service.ItemResponse
// @Router       /items/{id}/status [patch]
func handleSetItemStatus(itemSvc *service.ItemService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := itemID(r)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid item id")
			return
		}
		var req statusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		it, err := itemSvc.SetStatus(r.Context(), CurrentUser(r), id, domain.ItemStatus(req.Status))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"message": "Status updated", "item": itemSvc.ToResponse(r.Context(), it)})
	}
}

// @Summary      Delete item
// @Description  Creator removes their own posting
// @Tags         items
// @Security     CookieAuth
// @Param        id path int true "Item ID"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Router       /items/{id} [delete]
func handleDeleteItem(itemSvc *service.ItemService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := itemID(r)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid item id")
			return
		}
		if err := itemSvc.Delete(r.Context(), CurrentUser(r), id); err != nil {
			writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// @Summary      Unapproved queue
// @Tags         items
// @Security     CookieAuth
// @Produce      json
// @Success      200  {array}  service.ItemResponse
// @Router       /items/unapproved [get]
func handleUnapprovedItems(itemSvc *service.ItemService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := itemSvc.UnapprovedQueue(r.Context(), CurrentUser(r))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": itemSvc.ToResponses(r.Context(), items)})
	}
}

// @Summary      Approved list
// @Description  All approved items for the admin manage view
// @Tags         items
// @Security     CookieAuth
// @Produce      json
// @Success      200  {array}  service.ItemResponse
// @Router       /items/approved [get]
func handleApprovedItems(itemSvc *service.ItemService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := itemSvc.ApprovedList(r.Context(), CurrentUser(r))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": itemSvc.ToResponses(r.Context(), items)})
	}
}
