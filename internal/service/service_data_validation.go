// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"fmt"

	"github.com/MKhiriev/navdash/internal/logger"
	"github.com/MKhiriev/navdash/internal/validators"
	"github.com/MKhiriev/navdash/models"
)

// dataValidationService rejects malformed updates before they reach the
// wrapped DataService.
type dataValidationService struct {
	inner     DataService
	validator validators.Validator
	logger    *logger.Logger
}

// NewDataValidationService returns a DataServiceWrapper that validates
// update requests against the slice shapes.
func NewDataValidationService(logger *logger.Logger) DataServiceWrapper {
	return &dataValidationService{
		validator: validators.NewSliceValidator(),
		logger:    logger,
	}
}

func (v *dataValidationService) Wrap(inner DataService) DataService {
	return &dataValidationService{
		inner:     inner,
		validator: v.validator,
		logger:    v.logger,
	}
}

func (v *dataValidationService) Bootstrap(ctx context.Context) (models.BootstrapResponse, error) {
	return v.inner.Bootstrap(ctx)
}

func (v *dataValidationService) Update(ctx context.Context, req models.UpdateRequest) error {
	if err := v.validator.Validate(ctx, req, validators.GatewayUpdateFields...); err != nil {
		logger.FromContext(ctx).Err(err).Str("slice", req.Type.String()).Msg("update request failed validation")
		return fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}

	return v.inner.Update(ctx, req)
}
