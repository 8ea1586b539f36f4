package media

import (
	"errors"
	"fmt"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"cutroom/internal/config"
	"cutroom/internal/domain"
	mediaSvc "cutroom/internal/domain/services/media"
)

var (
	folderNamePattern = regexp.MustCompile(`^[^/]+$`)
	errNothingToMove  = errors.New("at least one of name, description or parent_id must be provided")
)

func folderNameRules() []validation.Rule {
	return []validation.Rule{
		validation.Required,
		validation.Length(1, config.MaxFolderNameLength),
		validation.Match(folderNamePattern).Error("folder name cannot contain slashes"),
	}
}

// validationError wraps an ozzo error so callers can match domain.ErrValidation
func validationError(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", domain.ErrValidation, err)
}

func validateCreateFolder(req *mediaSvc.CreateFolderRequest) error {
	return validationError(validation.ValidateStruct(req,
		validation.Field(&req.ProjectID, validation.Required),
		validation.Field(&req.Name, folderNameRules()...),
		validation.Field(&req.Description, validation.Length(0, config.MaxFolderDescriptionLength)),
	))
}

func validateMoveFolder(req *mediaSvc.MoveFolderRequest) error {
	if req.Name == nil && req.Description == nil && !req.ParentID.Present {
		return validationError(errNothingToMove)
	}

	rules := []*validation.FieldRules{
		validation.Field(&req.FolderID, validation.Required),
		validation.Field(&req.Description, validation.Length(0, config.MaxFolderDescriptionLength)),
	}
	if req.Name != nil {
		rules = append(rules, validation.Field(&req.Name, folderNameRules()...))
	}

	return validationError(validation.ValidateStruct(req, rules...))
}

func validateVersionContent(content *mediaSvc.VersionContent) error {
	if content.Content == nil {
		return validationError(errors.New("content: cannot be blank"))
	}
	return validationError(validation.ValidateStruct(&content.Media,
		validation.Field(&content.Media.Width, validation.NilOrNotEmpty, validation.Min(1)),
		validation.Field(&content.Media.Height, validation.NilOrNotEmpty, validation.Min(1)),
		validation.Field(&content.Media.DurationSeconds, validation.Min(0.0)),
	))
}

func validateUploadAsset(req *mediaSvc.UploadAssetRequest) error {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.ProjectID, validation.Required),
		validation.Field(&req.Name, validation.Required, validation.Length(1, config.MaxAssetNameLength)),
		validation.Field(&req.ChangeNotes, validation.Length(0, config.MaxChangeNotesLength)),
	); err != nil {
		return validationError(err)
	}
	return validateVersionContent(&req.VersionContent)
}

func validateCreateVersion(req *mediaSvc.CreateVersionRequest) error {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.AssetID, validation.Required),
		validation.Field(&req.ChangeNotes, validation.Length(0, config.MaxChangeNotesLength)),
	); err != nil {
		return validationError(err)
	}
	return validateVersionContent(&req.VersionContent)
}
