package handlers

import (
	"errors"
	"net/http"

	"profile-service/internal/core"
)

const (
	photoField = "photo"
	// multipartMemory is kept in RAM; larger parts spill to temp files.
	multipartMemory = 1 << 20
)

// UploadPhoto handles POST /api/user/photo
// @Summary      Upload profile photo
// @Description  Replaces the current photo. Accepts jpg, jpeg, png, gif or webp.
// @Tags         user
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        photo  formData  file  true  "Image file"
// @Success      200    {object}  map[string]interface{}
// @Failure      400    {object}  map[string]interface{}
// @Router       /api/user/photo [post]
func (h *Handlers) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r.Context())
	if !ok {
		writeError(w, h.app, http.StatusUnauthorized, "Unauthorized")
		return
	}

	// Leave headroom for the multipart envelope; the service enforces the file limit.
	r.Body = http.MaxBytesReader(w, r.Body, h.app.Config.UploadMaxBytes+multipartMemory)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, h.app, http.StatusRequestEntityTooLarge, "File is too large")
			return
		}
		writeError(w, h.app, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(photoField)
	if err != nil {
		writeError(w, h.app, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	photoURL, err := h.photos.Replace(r.Context(), userID, header.Filename, file)
	if err != nil {
		h.writeServiceError(w, r, err, "Failed to update photo",
			errorMessage{core.ErrValidation, "Invalid image file"},
			errorMessage{core.ErrNotFound, "User not found"},
		)
		return
	}

	writeSuccess(w, h.app, "Photo updated successfully", map[string]interface{}{
		"photo_url": photoURL,
	})
}

// DeletePhoto handles DELETE /api/user/photo
// @Summary      Remove profile photo
// @Tags         user
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/user/photo [delete]
func (h *Handlers) DeletePhoto(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r.Context())
	if !ok {
		writeError(w, h.app, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := h.photos.Remove(r.Context(), userID); err != nil {
		h.writeServiceError(w, r, err, "Failed to remove photo",
			errorMessage{core.ErrNotFound, "User not found"},
		)
		return
	}

	writeSuccess(w, h.app, "Photo removed", nil)
}
