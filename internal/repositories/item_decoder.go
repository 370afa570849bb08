package repositories

import (
	"fmt"
	"strings"

	"itemViewerBack/internal/models"
)

// Firestore field names of the items collection.
const (
	fieldName             = "name"
	fieldType             = "type"
	fieldDescription      = "description"
	fieldCoverImage       = "coverImage"
	fieldAdditionalImages = "additionalImages"
	fieldAIHint           = "data-ai-hint"
	fieldCreatedAt        = "createdAt"
)

// DecodeItem converts a raw items document into a models.Item. Documents
// missing required fields or carrying values of the wrong shape are
// rejected with an error wrapping models.ErrInvalidItem.
func DecodeItem(id string, data map[string]interface{}) (models.Item, error) {
	if strings.TrimSpace(id) == "" {
		return models.Item{}, fmt.Errorf("%w: empty document id", models.ErrInvalidItem)
	}

	name, err := requiredString(data, fieldName)
	if err != nil {
		return models.Item{}, fmt.Errorf("%w: document %s: %v", models.ErrInvalidItem, id, err)
	}
	rawType, err := requiredString(data, fieldType)
	if err != nil {
		return models.Item{}, fmt.Errorf("%w: document %s: %v", models.ErrInvalidItem, id, err)
	}
	itemType := models.ItemType(rawType)
	if !itemType.Valid() {
		return models.Item{}, fmt.Errorf("%w: document %s: unknown type %q", models.ErrInvalidItem, id, rawType)
	}
	cover, err := requiredString(data, fieldCoverImage)
	if err != nil {
		return models.Item{}, fmt.Errorf("%w: document %s: %v", models.ErrInvalidItem, id, err)
	}

	description, err := optionalString(data, fieldDescription)
	if err != nil {
		return models.Item{}, fmt.Errorf("%w: document %s: %v", models.ErrInvalidItem, id, err)
	}
	hint, err := optionalString(data, fieldAIHint)
	if err != nil {
		return models.Item{}, fmt.Errorf("%w: document %s: %v", models.ErrInvalidItem, id, err)
	}
	images, err := stringList(data, fieldAdditionalImages)
	if err != nil {
		return models.Item{}, fmt.Errorf("%w: document %s: %v", models.ErrInvalidItem, id, err)
	}

	return models.Item{
		ID:               id,
		Name:             name,
		Type:             itemType,
		Description:      description,
		CoverImage:       cover,
		AdditionalImages: images,
		AIHint:           hint,
	}, nil
}

// EncodeItem builds the document written for a new item. createdAt is left
// to the caller since it is a server-side sentinel.
func EncodeItem(in models.ItemInput) map[string]interface{} {
	images := in.AdditionalImages
	if images == nil {
		images = []string{}
	}
	doc := map[string]interface{}{
		fieldName:             in.Name,
		fieldType:             string(in.Type),
		fieldDescription:      in.Description,
		fieldCoverImage:       in.CoverImage,
		fieldAdditionalImages: images,
	}
	if in.AIHint != "" {
		doc[fieldAIHint] = in.AIHint
	}
	return doc
}

func requiredString(data map[string]interface{}, key string) (string, error) {
	raw, ok := data[key]
	if !ok || raw == nil {
		return "", fmt.Errorf("missing field %q", key)
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("field %q is %T, want string", key, raw)
	}
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("field %q is empty", key)
	}
	return s, nil
}

func optionalString(data map[string]interface{}, key string) (string, error) {
	raw, ok := data[key]
	if !ok || raw == nil {
		return "", nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("field %q is %T, want string", key, raw)
	}
	return s, nil
}

func stringList(data map[string]interface{}, key string) ([]string, error) {
	raw, ok := data[key]
	if !ok || raw == nil {
		return []string{}, nil
	}

	switch v := raw.(type) {
	case []string:
		out := make([]string, len(v))
		copy(out, v)
		return out, nil
	case []interface{}:
		out := make([]string, 0, len(v))
		for i, el := range v {
			s, ok := el.(string)
			if !ok {
				return nil, fmt.Errorf("field %q[%d] is %T, want string", key, i, el)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("field %q is %T, want array", key, raw)
	}
}
