package docsystem

import (
	"context"
	"errors"
	"fmt"

	"docsgraph/internal/config"
	"docsgraph/internal/domain"
	docsysSvc "docsgraph/internal/domain/services/docsystem"
	"docsgraph/internal/loader"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// ResourceValidator checks that referenced folders exist before a write.
type ResourceValidator struct{}

// ValidateFolder returns nil for a nil id (root is always valid) and an error
// wrapping domain.ErrNotFound when the folder is missing.
func (ResourceValidator) ValidateFolder(ctx context.Context, loaders *loader.Loaders, folderID *uuid.UUID) error {
	if folderID == nil {
		return nil
	}
	if _, err := loaders.Folders.Load(ctx, *folderID); err != nil {
		return fmt.Errorf("invalid folder: %w", err)
	}
	return nil
}

// requiredID rejects the nil UUID; validation.Required treats every array as set.
var requiredID = validation.By(func(value any) error {
	if id, ok := value.(uuid.UUID); ok && id == uuid.Nil {
		return errors.New("cannot be blank")
	}
	return nil
})

func validateInsertDocument(req *docsysSvc.InsertDocumentRequest) error {
	err := validation.ValidateStruct(req,
		validation.Field(&req.Name,
			validation.Required,
			validation.Length(1, config.MaxDocumentNameLength),
		),
		validation.Field(&req.Description, validation.NilOrNotEmpty, validation.Length(0, config.MaxDescriptionLength)),
		validation.Field(&req.CollectionID, requiredID),
		validation.Field(&req.Type, validation.Length(0, config.MaxDocumentTypeLength)),
		validation.Field(&req.Language, validation.Length(0, 16)),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return nil
}

func validateUpdateDocument(req *docsysSvc.UpdateDocumentRequest) error {
	err := validation.ValidateStruct(req,
		validation.Field(&req.ID, requiredID),
		validation.Field(&req.Name,
			validation.NilOrNotEmpty,
			validation.Length(1, config.MaxDocumentNameLength),
		),
		validation.Field(&req.Description, validation.Length(0, config.MaxDescriptionLength)),
		validation.Field(&req.DocumentType, validation.Length(0, config.MaxDocumentTypeLength)),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return nil
}

func validateAddBitstream(req *docsysSvc.AddBitstreamRequest) error {
	err := validation.ValidateStruct(req,
		validation.Field(&req.Filename,
			validation.Required,
			validation.Length(1, config.MaxFilenameLength),
		),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return nil
}

func validateCreateFolder(req *docsysSvc.CreateFolderRequest) error {
	err := validation.ValidateStruct(req,
		validation.Field(&req.Name,
			validation.Required,
			validation.Length(1, config.MaxFolderNameLength),
		),
		validation.Field(&req.Description, validation.Length(0, config.MaxDescriptionLength)),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return nil
}

func validateUpdateFolder(req *docsysSvc.UpdateFolderRequest) error {
	err := validation.ValidateStruct(req,
		validation.Field(&req.ID, requiredID),
		validation.Field(&req.Name,
			validation.NilOrNotEmpty,
			validation.Length(1, config.MaxFolderNameLength),
		),
		validation.Field(&req.Description, validation.Length(0, config.MaxDescriptionLength)),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return nil
}

func validateDSpaceName(name string) error {
	err := validation.Validate(name,
		validation.Required,
		validation.Length(1, config.MaxDSpaceNameLength),
	)
	if err != nil {
		return fmt.Errorf("%w: name: %v", domain.ErrValidation, err)
	}
	return nil
}
