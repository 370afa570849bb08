package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"path"
	"strings"

	"github.com/google/uuid"

	"itemViewerBack/internal/imaging"
	"itemViewerBack/internal/models"
)

// ImageUploader offloads processed images to object storage.
type ImageUploader interface {
	Upload(data []byte, fileName, folder, contentType string) (string, error)
}

const itemImagesFolder = "items"

// collectImageFiles gathers the files under the given form keys.
func collectImageFiles(form *multipart.Form, keys ...string) []*multipart.FileHeader {
	if form == nil {
		return nil
	}

	var result []*multipart.FileHeader
	for _, key := range keys {
		if headers, ok := form.File[key]; ok {
			result = append(result, headers...)
		}
	}
	return result
}

// formValue returns the first non-empty value under key.
func formValue(form *multipart.Form, key string) string {
	if form == nil {
		return ""
	}
	for _, v := range form.Value[key] {
		v = strings.TrimSpace(v)
		if v != "" && v != "null" && v != "undefined" {
			return v
		}
	}
	return ""
}

// imageRef validates an uploaded file and turns it into what an item stores:
// a public URL when an uploader is configured, an inline data URI otherwise.
func imageRef(fh *multipart.FileHeader, uploader ImageUploader) (string, error) {
	if fh.Size > imaging.MaxFileSize {
		return "", fmt.Errorf("%s: %w", fh.Filename, models.ErrImageTooLarge)
	}

	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("%s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, imaging.MaxFileSize+1))
	if err != nil {
		return "", fmt.Errorf("%s: %w", fh.Filename, err)
	}

	return processedRef(data, fh.Filename, uploader)
}

// dataURIRef validates an inline image sent in a JSON body. http(s) URLs
// are kept as they are.
func dataURIRef(ref string, uploader ImageUploader) (string, error) {
	ref = strings.TrimSpace(ref)
	if !strings.HasPrefix(ref, "data:") {
		if err := imaging.CheckImageURL(ref); err != nil {
			return "", fmt.Errorf("%w: %v", models.ErrUnsupportedImage, err)
		}
		return ref, nil
	}
	_, data, err := imaging.ParseDataURI(ref)
	if err != nil {
		return "", err
	}
	return processedRef(data, "", uploader)
}

func processedRef(data []byte, name string, uploader ImageUploader) (string, error) {
	result, err := imaging.Process(data)
	if err != nil {
		if name != "" {
			return "", fmt.Errorf("%s: %w", name, err)
		}
		return "", err
	}

	if uploader == nil {
		return imaging.ToDataURI(result.MIME, result.Data), nil
	}

	fileName := uuid.NewString() + extensionFor(result.MIME, name)
	url, err := uploader.Upload(result.Data, fileName, itemImagesFolder, result.MIME)
	if err != nil {
		return "", err
	}
	return url, nil
}

func extensionFor(mime, name string) string {
	switch mime {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	}
	return path.Ext(name)
}
