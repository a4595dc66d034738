package httpserver

import (
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"lostfound/internal/blob"
	"lostfound/internal/service"
)

const maxChatFormSize = 50 << 20 // 50MB

// @Summary      List chat messages
// @Description  Messages for an item's thread in creation order
// @Tags         chats
// @Security     CookieAuth
// @Produce      json
// @Param        itemId path int true "Item ID"
// @Success      200  {array}  service.MessageResponse
// @Failure      403  {object}  map[string]string
// @Router       /chats/{itemId} [get]
func handleListChat(chatSvc *service.ChatService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "itemId"), 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid item id")
			return
		}
		msgs, err := chatSvc.List(r.Context(), CurrentUser(r), id)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"messages": msgs})
	}
}

// @Summary      Post chat message
// @Description  Append a message with optional attachment (multipart: text, file)
// @Tags         chats
// @Security     CookieAuth
// @Accept       mpfd
// @Produce      json
// @Param        itemId path int true "Item ID"
// @Success      201  {object}  service.MessageResponse
// @Failure      403  {object}  map[string]string
// @Router       /chats/{itemId} [post]
func handlePostChat(chatSvc *service.ChatService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "itemId"), 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid item id")
			return
		}
		if err := r.ParseMultipartForm(maxChatFormSize); err != nil {
			writeError(w, http.StatusBadRequest, "failed to parse multipart form")
			return
		}

		in := service.AppendInput{
			ItemID: id,
			Text:   r.FormValue("text"),
		}
		if file, header, err := r.FormFile("file"); err == nil {
			defer file.Close()
			in.File = io.Reader(file)
			in.Filename = header.Filename
		}

		msg, err := chatSvc.Append(r.Context(), CurrentUser(r), in)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"message": msg})
	}
}

// handleServeUpload serves stored chat attachments by filename.
func handleServeUpload(blobs blob.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path, err := blobs.Path(chi.URLParam(r, "filename"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid filename")
			return
		}
		http.ServeFile(w, r, path)
	}
}
