package activity

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"time"

	"plotsure-backend/internal/domain"
	"plotsure-backend/internal/pkg/apperr"

	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Service records staff actions for the admin audit trail. Recording is
// best-effort: a failed write is logged, never surfaced to the caller.
type Service struct {
	DB *gorm.DB
}

// Record appends an activity row. Details may be nil.
func (s *Service) Record(ctx context.Context, userID *uint, action, entity string, entityID uint, details map[string]interface{}) {
	entry := &domain.ActivityLog{
		UserID:   userID,
		Action:   action,
		Entity:   entity,
		EntityID: entityID,
	}
	if details != nil {
		raw, err := json.Marshal(details)
		if err == nil {
			entry.Details = datatypes.JSON(raw)
		}
	}
	if err := s.DB.WithContext(ctx).Create(entry).Error; err != nil {
		log.Error().Err(err).Str("action", action).Str("entity", entity).Msg("failed to record activity")
	}
}

// Filter narrows List and Export.
type Filter struct {
	UserID  uint
	Action  string
	Entity  string
	Since   time.Time
	Until   time.Time
	Page    int
	PerPage int
}

type Page struct {
	Items      []domain.ActivityLog `json:"items"`
	Total      int64                `json:"total"`
	Page       int                  `json:"page"`
	PerPage    int                  `json:"per_page"`
	TotalPages int                  `json:"total_pages"`
}

func (s *Service) query(ctx context.Context, f Filter) *gorm.DB {
	q := s.DB.WithContext(ctx).Model(&domain.ActivityLog{})
	if f.UserID != 0 {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.Action != "" {
		q = q.Where("action = ?", f.Action)
	}
	if f.Entity != "" {
		q = q.Where("entity = ?", f.Entity)
	}
	if !f.Since.IsZero() {
		q = q.Where("created_at >= ?", f.Since)
	}
	if !f.Until.IsZero() {
		q = q.Where("created_at <= ?", f.Until)
	}
	return q
}

// List returns a page of the audit trail, newest first (admin).
func (s *Service) List(ctx context.Context, f Filter) (*Page, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 {
		f.PerPage = 50
	}
	if f.PerPage > 200 {
		f.PerPage = 200
	}

	q := s.query(ctx, f)
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	var items []domain.ActivityLog
	err := q.Order("created_at DESC").
		Offset((f.Page - 1) * f.PerPage).Limit(f.PerPage).
		Find(&items).Error
	if err != nil {
		return nil, apperr.Internal(err)
	}

	totalPages := int((total + int64(f.PerPage) - 1) / int64(f.PerPage))
	return &Page{Items: items, Total: total, Page: f.Page, PerPage: f.PerPage, TotalPages: totalPages}, nil
}

// ExportCSV streams the filtered trail as CSV, oldest first.
func (s *Service) ExportCSV(ctx context.Context, f Filter, w io.Writer) error {
	var items []domain.ActivityLog
	if err := s.query(ctx, f).Order("created_at ASC").Find(&items).Error; err != nil {
		return apperr.Internal(err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "user_id", "action", "entity", "entity_id", "details", "created_at"}); err != nil {
		return apperr.Internal(err)
	}
	for _, it := range items {
		userID := ""
		if it.UserID != nil {
			userID = strconv.FormatUint(uint64(*it.UserID), 10)
		}
		row := []string{
			strconv.FormatUint(uint64(it.ID), 10),
			userID,
			it.Action,
			it.Entity,
			strconv.FormatUint(uint64(it.EntityID), 10),
			string(it.Details),
			it.CreatedAt.Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return apperr.Internal(err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return apperr.Internal(err)
	}
	return nil
}
