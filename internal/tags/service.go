package tags

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"tagging/internal/shared/config"
	"tagging/internal/shared/constants"
	"tagging/internal/shared/utils/response"
	"tagging/internal/tagevents"
	"tagging/pkg/cache"
	"tagging/pkg/logger"
)

const (
	JoinActionName      = "join_tags"
	JoinActionLabel     = "Join selected tags as synonyms of one tag"
	JoinConfirmTitle    = "Select main tag"
	ActionCheckboxName  = "_selected_action"
	JoinConfirmField    = "post"
	AdminTagChangeRoute = "/admin/tagging/tag/"
)

type Service interface {
	// Admin CRUD operations
	CreateTag(ctx context.Context, req CreateTagRequest) (*TagResponse, error)
	GetTagByID(ctx context.Context, id uuid.UUID) (*TagResponse, error)
	RenameTag(ctx context.Context, id uuid.UUID, req UpdateTagRequest) (*TagResponse, error)
	DeleteTag(ctx context.Context, id uuid.UUID) error
	ListTags(ctx context.Context, query TagListQuery) (*PaginatedTags, error)

	// Synonym and translation operations
	AddSynonym(ctx context.Context, tagID uuid.UUID, req AddSynonymRequest) (*TagResponse, error)
	RemoveSynonym(ctx context.Context, tagID uuid.UUID, name string) error
	ListSynonyms(ctx context.Context, query SynonymListQuery) (*PaginatedSynonyms, error)
	SetTranslation(ctx context.Context, tagID uuid.UUID, req SetTranslationRequest) (*TagResponse, error)

	// Join action
	PrepareJoin(ctx context.Context, selected []uuid.UUID) (*JoinConfirmation, error)
	JoinTags(ctx context.Context, selected []uuid.UUID, primaryID uuid.UUID) (*JoinResult, error)

	// Tagging operations
	ResolveTag(ctx context.Context, name string) (*TagResponse, error)
	TagObject(ctx context.Context, req TagObjectRequest) ([]TagResponse, error)
	UntagObject(ctx context.Context, req TagObjectRequest) error
	TagsForObject(ctx context.Context, objectType, objectID string) ([]TagResponse, error)
	ObjectsForTag(ctx context.Context, tagID uuid.UUID) ([]TaggedItemResponse, error)
	ListTaggedItems(ctx context.Context, query TaggedItemListQuery) (*PaginatedTaggedItems, error)

	// Multilingual reports whether the admin shows translations
	Multilingual() bool
	DefaultLanguage() string
}

type service struct {
	repo      Repository
	cache     cache.Service
	publisher tagevents.Publisher
	log       *logger.Logger
	cfg       config.TaggingConfig
}

// NewService wires the tag service. cacheService and publisher may be nil.
func NewService(repo Repository, cacheService cache.Service, publisher tagevents.Publisher, log *logger.Logger, cfg config.TaggingConfig) Service {
	if log == nil {
		log = logger.GetDefault()
	}
	if publisher == nil {
		publisher = tagevents.NopPublisher{}
	}
	return &service{
		repo:      repo,
		cache:     cacheService,
		publisher: publisher,
		log:       log,
		cfg:       cfg,
	}
}

func (s *service) Multilingual() bool {
	return s.cfg.MultilingualTags
}

func (s *service) DefaultLanguage() string {
	return s.cfg.DefaultLanguage
}

func notFound(err error, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}

func (s *service) invalidate(ctx context.Context) {
	if err := InvalidateTagCache(ctx, s.cache); err != nil {
		s.log.WarnContext(ctx, "Failed to invalidate tag cache", "error", err.Error())
	}
}

// Admin CRUD operations

func (s *service) CreateTag(ctx context.Context, req CreateTagRequest) (*TagResponse, error) {
	name, err := NormalizeName(req.Name, s.cfg.MaxTagLength)
	if err != nil {
		return nil, err
	}

	synonyms := make([]string, 0, len(req.Synonyms))
	for _, raw := range req.Synonyms {
		synonym, err := NormalizeName(raw, s.cfg.MaxTagLength)
		if err != nil {
			return nil, fmt.Errorf("synonym %q: %w", raw, err)
		}
		synonyms = append(synonyms, synonym)
	}

	existing, err := s.repo.GetByName(ctx, name)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing tag: %w", err)
	}
	if existing != nil {
		return nil, ErrTagExists
	}

	tag := &Tag{Name: name}
	if err := s.repo.CreateWithSynonyms(ctx, tag, synonyms); err != nil {
		if errors.Is(err, ErrSynonymTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create tag: %w", err)
	}

	s.invalidate(ctx)
	s.log.LogTagCreated(ctx, tag.ID.String(), tag.Name)

	return s.GetTagByID(ctx, tag.ID)
}

func (s *service) GetTagByID(ctx context.Context, id uuid.UUID) (*TagResponse, error) {
	cacheKey := constants.BuildTagDetailKey(id.String())

	var cached TagResponse
	if cacheGet(ctx, s.cache, cacheKey, &cached) {
		return &cached, nil
	}

	tag, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTagNotFound
		}
		return nil, fmt.Errorf("failed to get tag: %w", err)
	}

	response := tag.ToResponse()
	cacheSet(ctx, s.cache, cacheKey, response, constants.TTL_TAG_DETAIL)
	return &response, nil
}

func (s *service) RenameTag(ctx context.Context, id uuid.UUID, req UpdateTagRequest) (*TagResponse, error) {
	if req.Name == nil {
		return s.GetTagByID(ctx, id)
	}

	name, err := NormalizeName(*req.Name, s.cfg.MaxTagLength)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByName(ctx, name)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing tag: %w", err)
	}
	if existing != nil && existing.ID != id {
		return nil, ErrTagExists
	}

	owner, err := s.repo.ResolveSynonym(ctx, name)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check synonym: %w", err)
	}
	if owner != nil && owner.ID != id {
		return nil, ErrSynonymTaken
	}

	tag, err := s.repo.Rename(ctx, id, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTagNotFound
		}
		return nil, fmt.Errorf("failed to rename tag: %w", err)
	}

	s.invalidate(ctx)

	response := tag.ToResponse()
	return &response, nil
}

func (s *service) DeleteTag(ctx context.Context, id uuid.UUID) error {
	tag, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTagNotFound
		}
		return fmt.Errorf("failed to get tag: %w", err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTagNotFound
		}
		return fmt.Errorf("failed to delete tag: %w", err)
	}

	s.invalidate(ctx)
	tagevents.PublishPayload(ctx, s.publisher, s.log, tagevents.EventTypeTagDeleted, tagevents.TagDeletedPayload{
		TagID:   tag.ID.String(),
		TagName: tag.Name,
	})
	return nil
}

func (s *service) ListTags(ctx context.Context, query TagListQuery) (*PaginatedTags, error) {
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = defaultPageSize
	}

	cacheKey := constants.BuildTagListKey(query.Page, query.Limit,
		fmt.Sprintf("%s:%s:%s", query.Search, query.SortBy, query.SortOrder))
	var cached PaginatedTags
	if cacheGet(ctx, s.cache, cacheKey, &cached) {
		return &cached, nil
	}

	tags, total, err := s.repo.List(ctx, query, s.cfg.MultilingualTags)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}

	responses := make([]TagResponse, len(tags))
	for i, tag := range tags {
		responses[i] = tag.ToResponse()
	}

	result := &PaginatedTags{
		Tags:       responses,
		TotalCount: total,
		Page:       query.Page,
		Limit:      query.Limit,
		TotalPages: response.TotalPages(total, query.Limit, defaultPageSize),
	}
	cacheSet(ctx, s.cache, cacheKey, result, constants.TTL_TAGS_LIST)
	return result, nil
}

// Synonym and translation operations

func (s *service) AddSynonym(ctx context.Context, tagID uuid.UUID, req AddSynonymRequest) (*TagResponse, error) {
	name, err := NormalizeName(req.Name, s.cfg.MaxTagLength)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByID(ctx, tagID); err != nil {
		return nil, notFound(err, ErrTagNotFound)
	}

	synonym, _, err := s.repo.GetOrCreateSynonym(ctx, name, tagID)
	if err != nil {
		return nil, fmt.Errorf("failed to add synonym: %w", err)
	}
	if synonym.TagID != tagID {
		return nil, ErrSynonymTaken
	}

	s.invalidate(ctx)
	return s.GetTagByID(ctx, tagID)
}

func (s *service) RemoveSynonym(ctx context.Context, tagID uuid.UUID, name string) error {
	if err := s.repo.DeleteSynonym(ctx, tagID, strings.TrimSpace(name)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSynonymNotFound
		}
		return fmt.Errorf("failed to remove synonym: %w", err)
	}

	s.invalidate(ctx)
	return nil
}

func (s *service) ListSynonyms(ctx context.Context, query SynonymListQuery) (*PaginatedSynonyms, error) {
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = defaultPageSize
	}

	synonyms, total, err := s.repo.ListSynonyms(ctx, query, s.cfg.MultilingualTags)
	if err != nil {
		return nil, fmt.Errorf("failed to list synonyms: %w", err)
	}

	responses := make([]SynonymResponse, len(synonyms))
	for i, synonym := range synonyms {
		responses[i] = synonym.ToResponse()
		responses[i].TagURL = TagChangeURL(synonym.TagID)
		if s.cfg.MultilingualTags && synonym.Tag != nil {
			responses[i].TagName = synonym.Tag.NameAny(s.cfg.DefaultLanguage)
		}
	}

	return &PaginatedSynonyms{
		Synonyms:   responses,
		TotalCount: total,
		Page:       query.Page,
		Limit:      query.Limit,
		TotalPages: response.TotalPages(total, query.Limit, defaultPageSize),
	}, nil
}

func (s *service) SetTranslation(ctx context.Context, tagID uuid.UUID, req SetTranslationRequest) (*TagResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrInvalidTagName
	}

	if _, err := s.repo.GetByID(ctx, tagID); err != nil {
		return nil, notFound(err, ErrTagNotFound)
	}

	if err := s.repo.SetTranslation(ctx, tagID, strings.ToLower(req.LanguageCode), name); err != nil {
		return nil, fmt.Errorf("failed to set translation: %w", err)
	}

	s.invalidate(ctx)
	return s.GetTagByID(ctx, tagID)
}

// TagChangeURL is the admin change page of a tag
func TagChangeURL(id uuid.UUID) string {
	return AdminTagChangeRoute + id.String() + "/"
}

// Join action

// loadSelection fetches the selected tags in selection order
func (s *service) loadSelection(ctx context.Context, selected []uuid.UUID) ([]Tag, error) {
	if len(selected) == 0 {
		return nil, ErrNoTagsToJoin
	}

	tags, err := s.repo.GetByIDs(ctx, selected)
	if err != nil {
		return nil, fmt.Errorf("failed to load selected tags: %w", err)
	}
	if len(tags) != len(selected) {
		return nil, ErrTagNotFound
	}

	byID := make(map[uuid.UUID]Tag, len(tags))
	for _, tag := range tags {
		byID[tag.ID] = tag
	}
	ordered := make([]Tag, 0, len(selected))
	for _, id := range selected {
		ordered = append(ordered, byID[id])
	}
	return ordered, nil
}

func (s *service) PrepareJoin(ctx context.Context, selected []uuid.UUID) (*JoinConfirmation, error) {
	tags, err := s.loadSelection(ctx, selected)
	if err != nil {
		return nil, err
	}

	responses := make([]TagResponse, len(tags))
	for i, tag := range tags {
		responses[i] = tag.ToResponse()
	}

	return &JoinConfirmation{
		Title:        JoinConfirmTitle,
		Tags:         responses,
		ActionField:  ActionCheckboxName,
		ConfirmField: JoinConfirmField,
	}, nil
}

func (s *service) JoinTags(ctx context.Context, selected []uuid.UUID, primaryID uuid.UUID) (*JoinResult, error) {
	tags, err := s.loadSelection(ctx, selected)
	if err != nil {
		return nil, err
	}

	ordered, err := OrderForJoin(tags, primaryID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Join(ctx, ordered); err != nil {
		return nil, fmt.Errorf("failed to join tags: %w", err)
	}

	s.invalidate(ctx)

	primary := ordered[0]
	payload := tagevents.TagsJoinedPayload{
		PrimaryID:   primary.ID.String(),
		PrimaryName: primary.Name,
	}
	for _, other := range ordered[1:] {
		payload.MergedIDs = append(payload.MergedIDs, other.ID.String())
		payload.MergedNames = append(payload.MergedNames, other.Name)
	}
	tagevents.PublishPayload(ctx, s.publisher, s.log, tagevents.EventTypeTagsJoined, payload)
	s.log.LogTagsJoined(ctx, primary.ID.String(), primary.Name, len(ordered)-1)

	joined, err := s.GetTagByID(ctx, primary.ID)
	if err != nil {
		return nil, err
	}

	return &JoinResult{
		Primary:     *joined,
		JoinedCount: len(selected),
		Message:     fmt.Sprintf("Successfully joined %d tags.", len(selected)),
	}, nil
}

// Tagging operations

// ResolveTag maps a synonym, or a bare tag name, to its canonical tag
func (s *service) ResolveTag(ctx context.Context, name string) (*TagResponse, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidTagName
	}

	cacheKey := constants.BuildTagResolveKey(name)
	var cached TagResponse
	if cacheGet(ctx, s.cache, cacheKey, &cached) {
		return &cached, nil
	}

	tag, err := s.repo.ResolveSynonym(ctx, name)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		tag, err = s.repo.GetByName(ctx, name)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTagNotFound
		}
		return nil, fmt.Errorf("failed to resolve tag: %w", err)
	}

	response := tag.ToResponse()
	cacheSet(ctx, s.cache, cacheKey, response, constants.TTL_TAG_RESOLVE)
	return &response, nil
}

// resolveOrCreate resolves name through the synonyms and creates an unknown
// name as a new tag that is its own synonym.
func (s *service) resolveOrCreate(ctx context.Context, name string) (*Tag, bool, error) {
	tag, err := s.repo.ResolveSynonym(ctx, name)
	if err == nil {
		return tag, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	tag, created, err := s.repo.GetOrCreateTag(ctx, name)
	if err != nil {
		return nil, false, err
	}
	if _, _, err := s.repo.GetOrCreateSynonym(ctx, name, tag.ID); err != nil {
		return nil, false, err
	}
	return tag, created, nil
}

func (s *service) TagObject(ctx context.Context, req TagObjectRequest) ([]TagResponse, error) {
	names := uniqueNames(req.Tags)
	if len(names) == 0 {
		return nil, ErrInvalidTagName
	}

	tagIDs := make([]uuid.UUID, 0, len(names))
	seen := make(map[uuid.UUID]bool, len(names))
	created := false
	for _, raw := range names {
		name, err := NormalizeName(raw, s.cfg.MaxTagLength)
		if err != nil {
			return nil, fmt.Errorf("tag %q: %w", raw, err)
		}

		tag, isNew, err := s.resolveOrCreate(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve tag %q: %w", name, err)
		}
		created = created || isNew
		if !seen[tag.ID] {
			seen[tag.ID] = true
			tagIDs = append(tagIDs, tag.ID)
		}
	}

	if err := s.repo.AddTaggedItems(ctx, req.ObjectType, req.ObjectID, tagIDs); err != nil {
		return nil, fmt.Errorf("failed to tag object: %w", err)
	}

	if created {
		s.invalidate(ctx)
	} else if s.cache != nil {
		_ = s.cache.Delete(ctx, constants.BuildTagsByObjectKey(req.ObjectType, req.ObjectID))
	}

	return s.TagsForObject(ctx, req.ObjectType, req.ObjectID)
}

func (s *service) UntagObject(ctx context.Context, req TagObjectRequest) error {
	var tagIDs []uuid.UUID
	for _, name := range uniqueNames(req.Tags) {
		tag, err := s.repo.ResolveSynonym(ctx, name)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return fmt.Errorf("failed to resolve tag %q: %w", name, err)
		}
		tagIDs = append(tagIDs, tag.ID)
	}

	if err := s.repo.RemoveTaggedItems(ctx, req.ObjectType, req.ObjectID, tagIDs); err != nil {
		return fmt.Errorf("failed to untag object: %w", err)
	}

	if s.cache != nil {
		_ = s.cache.Delete(ctx, constants.BuildTagsByObjectKey(req.ObjectType, req.ObjectID))
	}
	return nil
}

func (s *service) TagsForObject(ctx context.Context, objectType, objectID string) ([]TagResponse, error) {
	cacheKey := constants.BuildTagsByObjectKey(objectType, objectID)

	var cached []TagResponse
	if cacheGet(ctx, s.cache, cacheKey, &cached) {
		return cached, nil
	}

	tags, err := s.repo.GetTagsForObject(ctx, objectType, objectID)
	if err != nil {
		return nil, fmt.Errorf("failed to get tags for object: %w", err)
	}

	responses := make([]TagResponse, len(tags))
	for i, tag := range tags {
		responses[i] = tag.ToResponse()
	}

	cacheSet(ctx, s.cache, cacheKey, responses, constants.TTL_TAGS_BY_OBJECT)
	return responses, nil
}

func (s *service) ObjectsForTag(ctx context.Context, tagID uuid.UUID) ([]TaggedItemResponse, error) {
	if _, err := s.repo.GetByID(ctx, tagID); err != nil {
		return nil, notFound(err, ErrTagNotFound)
	}

	items, err := s.repo.GetObjectsForTag(ctx, tagID)
	if err != nil {
		return nil, fmt.Errorf("failed to get tagged objects: %w", err)
	}

	responses := make([]TaggedItemResponse, len(items))
	for i, item := range items {
		responses[i] = item.ToResponse()
	}
	return responses, nil
}

func (s *service) ListTaggedItems(ctx context.Context, query TaggedItemListQuery) (*PaginatedTaggedItems, error) {
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = defaultPageSize
	}

	items, total, err := s.repo.ListTaggedItems(ctx, query)
	if err != nil {
		if errors.Is(err, ErrInvalidTagID) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to list tagged items: %w", err)
	}

	responses := make([]TaggedItemResponse, len(items))
	for i, item := range items {
		responses[i] = item.ToResponse()
	}

	return &PaginatedTaggedItems{
		Items:      responses,
		TotalCount: total,
		Page:       query.Page,
		Limit:      query.Limit,
		TotalPages: response.TotalPages(total, query.Limit, defaultPageSize),
	}, nil
}
