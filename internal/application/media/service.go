package media

import (
	"context"
	"errors"
	"mime/multipart"
	"time"

	"plotsure-backend/internal/application/accesspolicy"
	"plotsure-backend/internal/domain"
	"plotsure-backend/internal/infrastructure/storage"
	"plotsure-backend/internal/pkg/apperr"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Service attaches documents and media files to listings and keeps the
// primary-media invariant: at most one primary per listing per media type.
type Service struct {
	DB    *gorm.DB
	Store storage.Store
}

func (s *Service) manageableListing(ctx context.Context, req accesspolicy.Requester, listingID uint) (*domain.Listing, error) {
	var listing domain.Listing
	if err := s.DB.WithContext(ctx).First(&listing, listingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Listing not found")
		}
		return nil, apperr.Internal(err)
	}
	if !accesspolicy.CanManageListing(req, &listing) {
		return nil, apperr.Forbidden("You can only manage your own listings")
	}
	return &listing, nil
}

type UploadDocumentInput struct {
	Name         string
	DocumentType string
	IsPublic     *bool
	DisplayOrder int
}

// UploadDocument stores the file and registers it against the listing.
func (s *Service) UploadDocument(ctx context.Context, req accesspolicy.Requester, listingID uint, file *multipart.FileHeader, in UploadDocumentInput) (*domain.Document, error) {
	if !domain.ValidDocumentType(in.DocumentType) {
		return nil, apperr.Validation("Invalid document type")
	}
	if _, err := s.manageableListing(ctx, req, listingID); err != nil {
		return nil, err
	}

	stored, err := s.Store.Save(storage.CategoryDocument, file)
	if err != nil {
		return nil, err
	}

	public := true
	if in.IsPublic != nil {
		public = *in.IsPublic
	}
	name := in.Name
	if name == "" {
		name = stored.Name
	}
	doc := &domain.Document{
		ListingID:    listingID,
		Name:         name,
		DocumentType: in.DocumentType,
		FilePath:     stored.Path,
		FileName:     stored.Name,
		FileSize:     stored.Size,
		FileType:     stored.MimeType,
		IsPublic:     public,
		DisplayOrder: in.DisplayOrder,
	}
	if err := s.DB.WithContext(ctx).Create(doc).Error; err != nil {
		if rmErr := s.Store.Remove(stored.Path); rmErr != nil {
			log.Warn().Err(rmErr).Str("path", stored.Path).Msg("failed to clean up orphaned document file")
		}
		return nil, apperr.Internal(err)
	}
	return doc, nil
}

// VerifyDocument marks a document checked by an admin.
func (s *Service) VerifyDocument(ctx context.Context, req accesspolicy.Requester, docID uint, notes string) (*domain.Document, error) {
	if !accesspolicy.CanModerateListing(req) {
		return nil, apperr.Forbidden("Only admins can verify documents")
	}
	var doc domain.Document
	if err := s.DB.WithContext(ctx).First(&doc, docID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Document not found")
		}
		return nil, apperr.Internal(err)
	}
	now := time.Now()
	updates := map[string]interface{}{
		"is_verified":       true,
		"verified_by":       req.UserID,
		"verification_date": now,
	}
	if notes != "" {
		updates["verification_notes"] = notes
	}
	if err := s.DB.WithContext(ctx).Model(&doc).Updates(updates).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	doc.IsVerified = true
	doc.VerifiedBy = &req.UserID
	doc.VerificationDate = &now
	doc.VerificationNotes = notes
	return &doc, nil
}

// DeleteDocument removes the record and its file.
func (s *Service) DeleteDocument(ctx context.Context, req accesspolicy.Requester, docID uint) error {
	var doc domain.Document
	if err := s.DB.WithContext(ctx).First(&doc, docID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("Document not found")
		}
		return apperr.Internal(err)
	}
	if _, err := s.manageableListing(ctx, req, doc.ListingID); err != nil {
		return err
	}
	if err := s.DB.WithContext(ctx).Delete(&doc).Error; err != nil {
		return apperr.Internal(err)
	}
	if err := s.Store.Remove(doc.FilePath); err != nil {
		log.Warn().Err(err).Str("path", doc.FilePath).Msg("failed to remove document file")
	}
	return nil
}

type UploadMediaInput struct {
	MediaType    string
	IsPrimary    bool
	DisplayOrder int
}

// UploadMedia stores an image or video for a listing.
func (s *Service) UploadMedia(ctx context.Context, req accesspolicy.Requester, listingID uint, file *multipart.FileHeader, in UploadMediaInput) (*domain.Media, error) {
	var category storage.Category
	switch in.MediaType {
	case domain.MediaImage:
		category = storage.CategoryImage
	case domain.MediaVideo:
		category = storage.CategoryVideo
	default:
		return nil, apperr.Validation("Media type must be image or video")
	}
	if _, err := s.manageableListing(ctx, req, listingID); err != nil {
		return nil, err
	}

	stored, err := s.Store.Save(category, file)
	if err != nil {
		return nil, err
	}

	m := &domain.Media{
		ListingID:    listingID,
		MediaType:    in.MediaType,
		FileName:     stored.Name,
		FilePath:     stored.Path,
		FileSize:     stored.Size,
		FileType:     stored.MimeType,
		DisplayOrder: in.DisplayOrder,
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if in.IsPrimary {
			if err := tx.Model(&domain.Media{}).
				Where("listing_id = ? AND media_type = ?", listingID, in.MediaType).
				Update("is_primary", false).Error; err != nil {
				return err
			}
			m.IsPrimary = true
		}
		return tx.Create(m).Error
	})
	if err != nil {
		if rmErr := s.Store.Remove(stored.Path); rmErr != nil {
			log.Warn().Err(rmErr).Str("path", stored.Path).Msg("failed to clean up orphaned media file")
		}
		return nil, apperr.Internal(err)
	}
	return m, nil
}

// SetPrimary makes one media record the primary for its listing and type,
// clearing any sibling that held the flag. Runs in a transaction so the
// invariant holds even under concurrent calls.
func (s *Service) SetPrimary(ctx context.Context, req accesspolicy.Requester, mediaID uint) (*domain.Media, error) {
	var m domain.Media
	if err := s.DB.WithContext(ctx).First(&m, mediaID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Media not found")
		}
		return nil, apperr.Internal(err)
	}
	if _, err := s.manageableListing(ctx, req, m.ListingID); err != nil {
		return nil, err
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.Media{}).
			Where("listing_id = ? AND media_type = ?", m.ListingID, m.MediaType).
			Update("is_primary", false).Error; err != nil {
			return err
		}
		return tx.Model(&domain.Media{}).Where("id = ?", m.ID).
			Update("is_primary", true).Error
	})
	if err != nil {
		return nil, apperr.Internal(err)
	}
	m.IsPrimary = true
	return &m, nil
}

// Reorder updates display positions for a listing's media.
func (s *Service) Reorder(ctx context.Context, req accesspolicy.Requester, listingID uint, order []uint) error {
	if _, err := s.manageableListing(ctx, req, listingID); err != nil {
		return err
	}
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, id := range order {
			res := tx.Model(&domain.Media{}).
				Where("id = ? AND listing_id = ?", id, listingID).
				Update("display_order", i)
			if res.Error != nil {
				return res.Error
			}
		}
		return nil
	})
}

// DeleteMedia removes the record and its file.
func (s *Service) DeleteMedia(ctx context.Context, req accesspolicy.Requester, mediaID uint) error {
	var m domain.Media
	if err := s.DB.WithContext(ctx).First(&m, mediaID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("Media not found")
		}
		return apperr.Internal(err)
	}
	if _, err := s.manageableListing(ctx, req, m.ListingID); err != nil {
		return err
	}
	if err := s.DB.WithContext(ctx).Delete(&m).Error; err != nil {
		return apperr.Internal(err)
	}
	if err := s.Store.Remove(m.FilePath); err != nil {
		log.Warn().Err(err).Str("path", m.FilePath).Msg("failed to remove media file")
	}
	return nil
}
