package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"caa_portal_backend/internal/models"
	"caa_portal_backend/internal/repositories"
	"caa_portal_backend/pkg/utils"
)

// --- Custom Service Errors for Options ---
var (
	ErrOptionNotFound   = errors.New("option not found")
	ErrOptionValidation = errors.New("option data validation error")
)

// --- Option DTOs ---
type UpsertOptionRequest struct {
	Category  string         `json:"category" binding:"required"`
	Value     string         `json:"value" binding:"required"`
	Label     string         `json:"label" binding:"required"`
	Key       *string        `json:"key"`
	SortOrder *int           `json:"sort_order"`
	IsActive  *bool          `json:"is_active"`
	Metadata  models.JSONMap `json:"metadata"`
}

// OptionsCache is the read-through cache used for the options views.
// *cache.OptionsCache satisfies it.
// Set calls carry the generation read before the database load; a write whose
// generation was invalidated in between is dropped.
type OptionsCache interface {
	Generation(ctx context.Context) (int64, error)
	GetGrouped(ctx context.Context) (models.GroupedOptions, bool, error)
	SetGrouped(ctx context.Context, gen int64, grouped models.GroupedOptions) error
	GetCategory(ctx context.Context, category string) ([]models.OptionChoice, bool, error)
	SetCategory(ctx context.Context, gen int64, category string, choices []models.OptionChoice) error
	Invalidate(ctx context.Context, categories ...string) error
}

// --- OptionService Interface ---
type OptionService interface {
	GetGroupedOptions(ctx context.Context) (models.GroupedOptions, error)
	GetOptionsByCategory(ctx context.Context, category string) ([]models.OptionChoice, error)
	UpsertOption(ctx context.Context, req UpsertOptionRequest) (*models.SystemOption, error)
	DeleteOption(ctx context.Context, id int64) error
	// IsAllowed reports whether value is an active choice of category.
	IsAllowed(ctx context.Context, category, value string) (bool, error)
}

type optionService struct {
	optionRepo repositories.OptionRepository
	db         *sql.DB
	cache      OptionsCache // nil disables caching
}

// NewOptionService creates a new instance of OptionService. cache may be nil.
func NewOptionService(repo repositories.OptionRepository, db *sql.DB, cache OptionsCache) OptionService {
	return &optionService{optionRepo: repo, db: db, cache: cache}
}

// cacheGeneration returns the generation to store a freshly loaded view under.
// ok is false when the view must not be cached.
func (s *optionService) cacheGeneration(ctx context.Context) (gen int64, ok bool) {
	if s.cache == nil {
		return 0, false
	}
	gen, err := s.cache.Generation(ctx)
	if err != nil {
		utils.LogWarn("Options cache generation read failed, skipping cache write", map[string]interface{}{"error": err.Error()})
		return 0, false
	}
	return gen, true
}

func (s *optionService) GetGroupedOptions(ctx context.Context) (models.GroupedOptions, error) {
	if s.cache != nil {
		grouped, ok, err := s.cache.GetGrouped(ctx)
		if err != nil {
			utils.LogWarn("Options cache read failed, falling back to database", map[string]interface{}{"error": err.Error()})
		} else if ok {
			return grouped, nil
		}
	}

	gen, cacheable := s.cacheGeneration(ctx)
	opts, err := s.optionRepo.GetActiveOptions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load options: %w", err)
	}

	grouped := models.GroupedOptions{}
	for _, o := range opts {
		if _, exists := grouped[o.Category]; !exists {
			grouped[o.Category] = map[string]string{}
		}
		grouped[o.Category][o.Value] = o.Label
	}

	if cacheable {
		if err := s.cache.SetGrouped(ctx, gen, grouped); err != nil {
			utils.LogWarn("Options cache write failed", map[string]interface{}{"error": err.Error()})
		}
	}
	return grouped, nil
}

// GetOptionsByCategory returns the active choices of category. Only categories
// with choices are cached, so lookups of arbitrary names never fill Redis.
func (s *optionService) GetOptionsByCategory(ctx context.Context, category string) ([]models.OptionChoice, error) {
	category = strings.TrimSpace(category)

	if s.cache != nil {
		choices, ok, err := s.cache.GetCategory(ctx, category)
		if err != nil {
			utils.LogWarn("Options cache read failed, falling back to database", map[string]interface{}{"error": err.Error(), "category": category})
		} else if ok {
			return choices, nil
		}
	}

	gen, cacheable := s.cacheGeneration(ctx)
	opts, err := s.optionRepo.GetActiveOptionsByCategory(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("failed to load options for category %s: %w", category, err)
	}

	choices := make([]models.OptionChoice, 0, len(opts))
	for _, o := range opts {
		choices = append(choices, models.OptionChoice{Value: o.Value, Label: o.Label, Key: o.Key})
	}

	if cacheable && len(choices) > 0 {
		if err := s.cache.SetCategory(ctx, gen, category, choices); err != nil {
			utils.LogWarn("Options cache write failed", map[string]interface{}{"error": err.Error(), "category": category})
		}
	}
	return choices, nil
}

// UpsertOption creates or updates the (category, value) option. Omitted sort_order
// and is_active default to 0 and true for a new option and keep their stored values
// on update.
func (s *optionService) UpsertOption(ctx context.Context, req UpsertOptionRequest) (*models.SystemOption, error) {
	in := models.OptionUpsert{
		Category:  strings.TrimSpace(req.Category),
		Value:     strings.TrimSpace(req.Value),
		Label:     strings.TrimSpace(req.Label),
		Key:       utils.TrimToNil(req.Key),
		SortOrder: req.SortOrder,
		IsActive:  req.IsActive,
		Metadata:  req.Metadata,
	}
	if in.Category == "" || in.Value == "" || in.Label == "" {
		return nil, fmt.Errorf("%w: category, value and label are required", ErrOptionValidation)
	}
	if len(in.Category) > 100 || len(in.Value) > 255 || len(in.Label) > 255 {
		return nil, fmt.Errorf("%w: category must be at most 100 characters, value and label at most 255", ErrOptionValidation)
	}

	opt, err := s.optionRepo.UpsertOption(ctx, s.db, in)
	if err != nil {
		return nil, fmt.Errorf("failed to save option: %w", err)
	}

	s.invalidate(ctx, opt.Category)
	utils.LogInfo("Option saved", map[string]interface{}{"option_id": opt.ID, "category": opt.Category, "value": opt.Value})
	return opt, nil
}

func (s *optionService) DeleteOption(ctx context.Context, id int64) error {
	opt, err := s.optionRepo.GetOptionByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrOptionNotFound
		}
		return fmt.Errorf("failed to get option: %w", err)
	}

	if err := s.optionRepo.DeleteOption(ctx, s.db, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrOptionNotFound
		}
		return fmt.Errorf("failed to delete option: %w", err)
	}

	s.invalidate(ctx, opt.Category)
	utils.LogInfo("Option deleted", map[string]interface{}{"option_id": id, "category": opt.Category})
	return nil
}

func (s *optionService) IsAllowed(ctx context.Context, category, value string) (bool, error) {
	ok, err := s.optionRepo.IsActiveOption(ctx, category, value)
	if err != nil {
		return false, fmt.Errorf("failed to check option %s/%s: %w", category, value, err)
	}
	return ok, nil
}

func (s *optionService) invalidate(ctx context.Context, category string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, category); err != nil {
		utils.LogError(err, "Failed to invalidate options cache", map[string]interface{}{"category": category})
	}
}
