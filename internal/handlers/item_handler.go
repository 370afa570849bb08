package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"itemViewerBack/internal/imaging"
	"itemViewerBack/internal/models"
	"itemViewerBack/internal/services"
)

const (
	maxUploadMemory     = 32 << 20
	maxAdditionalImages = 8
	formOverhead        = 1 << 20
)

// defaultMaxBodyBytes covers a cover image plus maxAdditionalImages, base64
// encoded in JSON bodies.
const defaultMaxBodyBytes = (1+maxAdditionalImages)*imaging.MaxFileSize*4/3 + formOverhead

type ItemHandler struct {
	Store    *services.ItemStore
	Uploader ImageUploader
	ErrorLog *log.Logger
	// MaxBodyBytes caps create requests; zero means defaultMaxBodyBytes.
	MaxBodyBytes int64
}

func (h *ItemHandler) maxBodyBytes() int64 {
	if h.MaxBodyBytes > 0 {
		return h.MaxBodyBytes
	}
	return defaultMaxBodyBytes
}

// errBodyTooLarge marks a create request cut off by the body limit.
var errBodyTooLarge = errors.New("request body too large")

func (h *ItemHandler) GetItems(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Store.State())
}

func (h *ItemHandler) GetItemByID(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if id == "" {
		http.Error(w, "Missing item ID", http.StatusBadRequest)
		return
	}

	item, ok := h.Store.LookupByID(id)
	if !ok {
		http.Error(w, models.ErrItemNotFound.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *ItemHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var (
		input     models.ItemInput
		fieldErrs map[string]string
		err       error
	)
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes())
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		input, fieldErrs, err = h.inputFromMultipart(r)
	} else {
		input, fieldErrs, err = h.inputFromJSON(r)
	}
	if err != nil {
		if errors.Is(err, errBodyTooLarge) {
			http.Error(w, "Request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	for field, msg := range input.Validate() {
		if _, exists := fieldErrs[field]; !exists {
			fieldErrs[field] = msg
		}
	}
	if len(fieldErrs) > 0 {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"errors": fieldErrs})
		return
	}

	result, err := h.Store.Add(r.Context(), input)
	if err != nil {
		h.mutationError(w, err)
		return
	}
	writeJSON(w, mutationStatus(result, http.StatusCreated), result)
}

func (h *ItemHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if id == "" {
		http.Error(w, "Missing item ID", http.StatusBadRequest)
		return
	}

	result, err := h.Store.Delete(r.Context(), id)
	if err != nil {
		h.mutationError(w, err)
		return
	}
	writeJSON(w, mutationStatus(result, http.StatusOK), result)
}

func (h *ItemHandler) inputFromJSON(r *http.Request) (models.ItemInput, map[string]string, error) {
	var input models.ItemInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		return input, nil, bodyError(err)
	}

	fieldErrs := map[string]string{}
	if input.CoverImage != "" {
		ref, err := dataURIRef(input.CoverImage, h.Uploader)
		if err != nil {
			fieldErrs["coverImage"] = imageErrorMessage(err)
		}
		input.CoverImage = ref
	}

	if len(input.AdditionalImages) > maxAdditionalImages {
		fieldErrs["additionalImages"] = tooManyImagesMessage
		input.AdditionalImages = input.AdditionalImages[:maxAdditionalImages]
	}
	images := make([]string, 0, len(input.AdditionalImages))
	for _, raw := range input.AdditionalImages {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		ref, err := dataURIRef(raw, h.Uploader)
		if err != nil {
			fieldErrs["additionalImages"] = imageErrorMessage(err)
			continue
		}
		images = append(images, ref)
	}
	input.AdditionalImages = images
	return input, fieldErrs, nil
}

func (h *ItemHandler) inputFromMultipart(r *http.Request) (models.ItemInput, map[string]string, error) {
	var input models.ItemInput
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		return input, nil, bodyError(err)
	}
	defer r.MultipartForm.RemoveAll()
	form := r.MultipartForm

	input.Name = formValue(form, "name")
	input.Type = models.ItemType(formValue(form, "type"))
	input.Description = formValue(form, "description")
	input.AIHint = formValue(form, "data-ai-hint")

	fieldErrs := map[string]string{}

	covers := collectImageFiles(form, "coverImage")
	switch {
	case len(covers) > 1:
		fieldErrs["coverImage"] = "Exactly one cover image is allowed."
	case len(covers) == 1:
		ref, err := imageRef(covers[0], h.Uploader)
		if err != nil {
			fieldErrs["coverImage"] = imageErrorMessage(err)
		}
		input.CoverImage = ref
	default:
		input.CoverImage = formValue(form, "coverImage")
	}

	input.AdditionalImages = []string{}
	additional := collectImageFiles(form, "additionalImages", "additionalImages[]")
	if len(additional) > maxAdditionalImages {
		fieldErrs["additionalImages"] = tooManyImagesMessage
		additional = additional[:maxAdditionalImages]
	}
	for _, fh := range additional {
		ref, err := imageRef(fh, h.Uploader)
		if err != nil {
			fieldErrs["additionalImages"] = imageErrorMessage(err)
			continue
		}
		input.AdditionalImages = append(input.AdditionalImages, ref)
	}
	return input, fieldErrs, nil
}

func bodyError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return fmt.Errorf("%w: limit %d bytes", errBodyTooLarge, maxErr.Limit)
	}
	return err
}

func (h *ItemHandler) mutationError(w http.ResponseWriter, err error) {
	if errors.Is(err, models.ErrRemoteNotConfigured) {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	if h.ErrorLog != nil {
		h.ErrorLog.Printf("item mutation: %v", err)
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func mutationStatus(result models.MutationResult, ok int) int {
	switch {
	case result.Success:
		return ok
	case result.PermissionDenied:
		return http.StatusForbidden
	case result.NotFound:
		return http.StatusNotFound
	case result.Error == models.ErrSeedItemReadOnly.Error():
		return http.StatusConflict
	case result.Error == models.ErrInvalidItem.Error():
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

var tooManyImagesMessage = fmt.Sprintf("At most %d additional images are allowed.", maxAdditionalImages)

func imageErrorMessage(err error) string {
	switch {
	case errors.Is(err, models.ErrImageTooLarge):
		return "Max file size is 5MB."
	case errors.Is(err, models.ErrUnsupportedImage):
		return ".jpg, .jpeg, .png, .webp and .gif files are accepted."
	}
	return err.Error()
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
