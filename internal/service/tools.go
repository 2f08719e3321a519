package service

import (
	"strings"

	"github.com/avolkov/cropfill/internal/model"
)

func validateQueryParams(req *model.ListRequest) {
	// Empty values get defaults.
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.Limit <= 0 || req.Limit > 100 {
		req.Limit = 30
	}
	if req.Sort == "" {
		req.Sort = model.ByCreated
	}
	if req.Order == "" {
		req.Order = model.OrderDESC
	}

	req.Sort = strings.ToLower(req.Sort)
	req.Sort = strings.TrimSpace(req.Sort)
	switch {
	case strings.Contains(req.Sort, model.ByUUID):
		req.Sort = "uid"
	case strings.Contains(req.Sort, model.ByCreated):
		req.Sort = "created_at"
	default:
		req.Sort = "created_at"
	}

	req.Order = strings.ToLower(req.Order)
	req.Order = strings.TrimSpace(req.Order)
	switch {
	case strings.Contains(req.Order, model.OrderASC):
		req.Order = "ASC"
	case strings.Contains(req.Order, model.OrderDESC):
		req.Order = "DESC"
	default:
		req.Order = "DESC"
	}
}

func validateNormalizeTaskInfo(raw *model.TaskCreateData, clean *model.Task) error {
	// Source must be present and of a supported content type.
	if raw.SrcImg == nil || raw.SrcImgSize <= 0 {
		return model.ErrEmptySource
	}
	if !model.InImageTypeMap[raw.SrcContentType] {
		return model.ErrUnsupportedFormat
	}

	clean.Width = raw.Width
	clean.Height = raw.Height
	clean.Quality = raw.Quality

	if err := validateNormalizeBox(clean); err != nil {
		return err
	}

	return validateQuality(clean, raw.SrcContentType)
}

// validateNormalizeBox requires at least one positive target dimension.
// A non-positive value is normalized to nil, meaning "derive from the source
// aspect ratio".
func validateNormalizeBox(input *model.Task) error {
	if input.Width != nil && *input.Width <= 0 {
		input.Width = nil
	}
	if input.Height != nil && *input.Height <= 0 {
		input.Height = nil
	}

	if input.Width == nil && input.Height == nil {
		return model.ErrIncorrectBox
	}
	return nil
}

// validateQuality rejects a quality override for non-JPEG uploads up front.
// The worker re-checks against the sniffed format, this only saves a queue
// round-trip for the obvious case.
func validateQuality(input *model.Task, contentType string) error {
	if input.Quality == nil {
		return nil
	}
	if contentType != model.JPEG {
		return model.ErrIncorrectQuality
	}
	if *input.Quality < 1 || *input.Quality > 100 {
		return model.ErrIncorrectQuality
	}
	return nil
}
