package validators

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/MKhiriev/navdash/models"
)

// Field name constants used to scope validation of an update.
const (
	// FieldType requires a known slice name.
	FieldType = "type"

	// FieldData requires a non-empty, non-null payload.
	FieldData = "data"

	// FieldShape requires the payload to decode into the typed model of the
	// slice and to pass its per-type rules.
	FieldShape = "shape"

	// FieldSiblingIDs requires link tree ids to be present and unique among
	// siblings. Only new local edits are checked this way.
	FieldSiblingIDs = "sibling_ids"

	// FieldUpdatedAt requires a non-negative logical timestamp.
	FieldUpdatedAt = "updated_at"
)

// GatewayUpdateFields is the field set the gateway enforces on POST /update.
var GatewayUpdateFields = []string{FieldType, FieldData, FieldShape, FieldUpdatedAt}

var allowedBackgroundTypes = []models.BackgroundType{
	models.BackgroundColor,
	models.BackgroundGradient,
	models.BackgroundImage,
}

type SliceValidator struct {
}

func NewSliceValidator() Validator {
	return &SliceValidator{}
}

func (v *SliceValidator) Validate(ctx context.Context, obj any, fields ...string) error {
	switch value := obj.(type) {
	case models.UpdateRequest:
		return v.validateUpdateRequest(ctx, value, fields...)
	case *models.UpdateRequest:
		return v.validateUpdateRequest(ctx, *value, fields...)

	case models.LinkTree:
		return value.Validate()
	case models.BackgroundSpec:
		return validateBackground(value)
	case *models.BackgroundSpec:
		return validateBackground(*value)
	case models.Preferences:
		return validatePreferences(value)
	case *models.Preferences:
		return validatePreferences(*value)

	default:
		return ErrUnsupportedType
	}
}

func (v *SliceValidator) validateUpdateRequest(ctx context.Context, request models.UpdateRequest, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldType, FieldData, FieldShape, FieldSiblingIDs, FieldUpdatedAt}
	}

	for _, f := range fields {
		switch f {
		case FieldType:
			if !request.Type.Valid() {
				return fmt.Errorf("%w: %q", ErrInvalidSliceType, request.Type)
			}
		case FieldData:
			trimmed := bytes.TrimSpace(request.Data)
			if len(trimmed) == 0 {
				return ErrEmptyData
			}
			if bytes.Equal(trimmed, []byte("null")) {
				return ErrNullData
			}
		case FieldShape:
			if err := v.validateShape(ctx, request.Type, request.Data); err != nil {
				return err
			}
		case FieldSiblingIDs:
			if request.Type != models.LinkTreeSlice {
				continue
			}
			var tree models.LinkTree
			if err := json.Unmarshal(request.Data, &tree); err != nil {
				return fmt.Errorf("%w: %v", ErrInvalidShape, err)
			}
			if err := tree.Validate(); err != nil {
				return err
			}
		case FieldUpdatedAt:
			if request.UpdatedAt < 0 {
				return ErrInvalidUpdatedAt
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func (v *SliceValidator) validateShape(ctx context.Context, slice models.Slice, raw json.RawMessage) error {
	switch slice {
	case models.LinkTreeSlice:
		var tree models.LinkTree
		if err := decodeShape(raw, &tree); err != nil {
			return err
		}
	case models.BackgroundSlice:
		var bg models.BackgroundSpec
		if err := decodeShape(raw, &bg); err != nil {
			return err
		}
		return v.Validate(ctx, bg)
	case models.PreferencesSlice:
		var prefs models.Preferences
		if err := decodeShape(raw, &prefs); err != nil {
			return err
		}
		return v.Validate(ctx, prefs)
	default:
		return fmt.Errorf("%w: %q", ErrInvalidSliceType, slice)
	}
	return nil
}

func decodeShape(raw json.RawMessage, target any) error {
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidShape, err)
	}
	return nil
}

func validateBackground(bg models.BackgroundSpec) error {
	known := false
	for _, t := range allowedBackgroundTypes {
		if bg.Type == t {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidBackground, bg.Type)
	}
	if bg.Value == "" {
		return fmt.Errorf("%w: empty value", ErrInvalidBackground)
	}
	if bg.Blur < 0 {
		return fmt.Errorf("%w: negative blur", ErrInvalidBackground)
	}
	if bg.Dim < 0 || bg.Dim > 100 {
		return fmt.Errorf("%w: dim out of range", ErrInvalidBackground)
	}
	return nil
}

func validatePreferences(p models.Preferences) error {
	if p.Columns < 0 {
		return ErrInvalidColumns
	}
	return nil
}
