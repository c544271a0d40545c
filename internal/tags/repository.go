package tags

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	// Basic CRUD operations
	Create(ctx context.Context, tag *Tag) error
	CreateWithSynonyms(ctx context.Context, tag *Tag, synonyms []string) error
	GetByID(ctx context.Context, id uuid.UUID) (*Tag, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]Tag, error)
	GetByName(ctx context.Context, name string) (*Tag, error)
	Rename(ctx context.Context, id uuid.UUID, name string) (*Tag, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, query TagListQuery, multilingual bool) ([]Tag, int64, error)

	// Get-or-create operations used by the importer and the tagging API
	GetOrCreateTag(ctx context.Context, name string) (*Tag, bool, error)
	GetOrCreateSynonym(ctx context.Context, name string, tagID uuid.UUID) (*Synonym, bool, error)

	// Synonym operations
	ResolveSynonym(ctx context.Context, name string) (*Tag, error)
	DeleteSynonym(ctx context.Context, tagID uuid.UUID, name string) error
	ListSynonyms(ctx context.Context, query SynonymListQuery, multilingual bool) ([]Synonym, int64, error)

	// Translation operations
	SetTranslation(ctx context.Context, tagID uuid.UUID, languageCode, name string) error

	// Join merges tags[1:] into tags[0]
	Join(ctx context.Context, tags []Tag) error

	// Tagged item operations
	AddTaggedItems(ctx context.Context, objectType, objectID string, tagIDs []uuid.UUID) error
	RemoveTaggedItems(ctx context.Context, objectType, objectID string, tagIDs []uuid.UUID) error
	GetTagsForObject(ctx context.Context, objectType, objectID string) ([]Tag, error)
	GetObjectsForTag(ctx context.Context, tagID uuid.UUID) ([]TaggedItem, error)
	ListTaggedItems(ctx context.Context, query TaggedItemListQuery) ([]TaggedItem, int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository works on a plain connection as well as on a transaction handle
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func preloadSynonyms(db *gorm.DB) *gorm.DB {
	return db.Order("tag_synonyms.name ASC")
}

func preloadTranslations(db *gorm.DB) *gorm.DB {
	return db.Order("tag_translations.language_code ASC")
}

// Basic CRUD operations

func (r *repository) Create(ctx context.Context, tag *Tag) error {
	return r.db.WithContext(ctx).Create(tag).Error
}

// CreateWithSynonyms creates the tag and registers its own name plus synonyms
// in one transaction. A synonym already owned by another tag aborts the create.
func (r *repository) CreateWithSynonyms(ctx context.Context, tag *Tag, synonyms []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(tag).Error; err != nil {
			return err
		}

		names := uniqueNames(append([]string{tag.Name}, synonyms...))
		for _, name := range names {
			synonym, _, err := getOrCreateSynonym(tx, name, tag.ID)
			if err != nil {
				return err
			}
			if synonym.TagID != tag.ID {
				return fmt.Errorf("%w: %q", ErrSynonymTaken, name)
			}
		}
		return nil
	})
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Tag, error) {
	var tag Tag
	err := r.db.WithContext(ctx).
		Preload("Synonyms", preloadSynonyms).
		Preload("Translations", preloadTranslations).
		Where("id = ?", id).
		First(&tag).Error
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

func (r *repository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]Tag, error) {
	var tags []Tag
	if len(ids) == 0 {
		return tags, nil
	}

	err := r.db.WithContext(ctx).
		Preload("Synonyms", preloadSynonyms).
		Where("id IN ?", ids).
		Order("name ASC").
		Find(&tags).Error
	return tags, err
}

func (r *repository) GetByName(ctx context.Context, name string) (*Tag, error) {
	var tag Tag
	err := r.db.WithContext(ctx).
		Preload("Synonyms", preloadSynonyms).
		Where("name = ?", name).
		First(&tag).Error
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

func (r *repository) Rename(ctx context.Context, id uuid.UUID, name string) (*Tag, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tag Tag
		if err := tx.Where("id = ?", id).First(&tag).Error; err != nil {
			return err
		}

		if err := tx.Model(&tag).Update("name", name).Error; err != nil {
			return err
		}

		// The new name resolves to this tag as well
		_, _, err := getOrCreateSynonym(tx, name, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	return r.GetByID(ctx, id)
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tag_id = ?", id).Delete(&TaggedItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("tag_id = ?", id).Delete(&Synonym{}).Error; err != nil {
			return err
		}
		if err := tx.Where("tag_id = ?", id).Delete(&TagTranslation{}).Error; err != nil {
			return err
		}

		res := tx.Where("id = ?", id).Delete(&Tag{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// List searches the way the admin change list does: every whitespace separated
// term must match at least one of the search fields.
func (r *repository) List(ctx context.Context, query TagListQuery, multilingual bool) ([]Tag, int64, error) {
	var tags []Tag
	var totalCount int64

	db := r.db.WithContext(ctx).Model(&Tag{})

	for _, term := range strings.Fields(query.Search) {
		like := "%" + strings.ToLower(term) + "%"
		cond := "LOWER(tags.name) LIKE ? OR tags.id IN (SELECT tag_id FROM tag_synonyms WHERE LOWER(name) LIKE ?)"
		args := []interface{}{like, like}
		if multilingual {
			cond += " OR tags.id IN (SELECT tag_id FROM tag_translations WHERE LOWER(name) LIKE ?)"
			args = append(args, like)
		}
		db = db.Where(cond, args...)
	}

	if err := db.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	sortBy := "name"
	sortOrder := "asc"
	switch query.SortBy {
	case "name", "created_at", "updated_at":
		sortBy = query.SortBy
	}
	if query.SortOrder == "desc" {
		sortOrder = "desc"
	}

	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = defaultPageSize
	}
	offset := (query.Page - 1) * query.Limit

	db = db.Preload("Synonyms", preloadSynonyms)
	if multilingual {
		db = db.Preload("Translations", preloadTranslations)
	}

	err := db.Order(fmt.Sprintf("tags.%s %s", sortBy, sortOrder)).
		Offset(offset).
		Limit(query.Limit).
		Find(&tags).Error

	return tags, totalCount, err
}

// Get-or-create operations

func (r *repository) GetOrCreateTag(ctx context.Context, name string) (*Tag, bool, error) {
	return getOrCreateTag(r.db.WithContext(ctx), name)
}

func (r *repository) GetOrCreateSynonym(ctx context.Context, name string, tagID uuid.UUID) (*Synonym, bool, error) {
	return getOrCreateSynonym(r.db.WithContext(ctx), name, tagID)
}

func getOrCreateTag(db *gorm.DB, name string) (*Tag, bool, error) {
	var tag Tag
	err := db.Where("name = ?", name).First(&tag).Error
	if err == nil {
		return &tag, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	tag = Tag{Name: name}
	if err := db.Create(&tag).Error; err != nil {
		return nil, false, err
	}
	return &tag, true, nil
}

// getOrCreateSynonym only uses tagID when the synonym does not exist yet, so the
// first tag to claim a name keeps it.
func getOrCreateSynonym(db *gorm.DB, name string, tagID uuid.UUID) (*Synonym, bool, error) {
	var synonym Synonym
	err := db.Where("name = ?", name).First(&synonym).Error
	if err == nil {
		return &synonym, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	synonym = Synonym{Name: name, TagID: tagID}
	if err := db.Create(&synonym).Error; err != nil {
		return nil, false, err
	}
	return &synonym, true, nil
}

// Synonym operations

func (r *repository) ResolveSynonym(ctx context.Context, name string) (*Tag, error) {
	var synonym Synonym
	err := r.db.WithContext(ctx).
		Preload("Tag").
		Preload("Tag.Synonyms", preloadSynonyms).
		Where("name = ?", name).
		First(&synonym).Error
	if err != nil {
		return nil, err
	}
	if synonym.Tag == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return synonym.Tag, nil
}

func (r *repository) DeleteSynonym(ctx context.Context, tagID uuid.UUID, name string) error {
	res := r.db.WithContext(ctx).Where("tag_id = ? AND name = ?", tagID, name).Delete(&Synonym{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListSynonyms pages through synonyms with their tag. In multilingual mode the
// tag's translations are loaded too so the tag column can show NameAny.
func (r *repository) ListSynonyms(ctx context.Context, query SynonymListQuery, multilingual bool) ([]Synonym, int64, error) {
	var synonyms []Synonym
	var totalCount int64

	db := r.db.WithContext(ctx).Model(&Synonym{})
	for _, term := range strings.Fields(query.Search) {
		db = db.Where("LOWER(tag_synonyms.name) LIKE ?", "%"+strings.ToLower(term)+"%")
	}

	if err := db.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = defaultPageSize
	}

	db = db.Preload("Tag")
	if multilingual {
		db = db.Preload("Tag.Translations")
	}

	err := db.Order("tag_synonyms.name ASC").
		Offset((query.Page - 1) * query.Limit).
		Limit(query.Limit).
		Find(&synonyms).Error

	return synonyms, totalCount, err
}

// Translation operations

func (r *repository) SetTranslation(ctx context.Context, tagID uuid.UUID, languageCode, name string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing TagTranslation
		err := tx.Where("tag_id = ? AND language_code = ?", tagID, languageCode).First(&existing).Error
		if err == nil {
			return tx.Model(&existing).Update("name", name).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		return tx.Create(&TagTranslation{
			TagID:        tagID,
			LanguageCode: languageCode,
			Name:         name,
		}).Error
	})
}

// Join merges every tag after the first into the first one. The first tag keeps
// its identity; the others are deleted after their synonyms, translations and
// tagged items have been moved over.
func (r *repository) Join(ctx context.Context, tags []Tag) error {
	if len(tags) == 0 {
		return ErrNoTagsToJoin
	}
	primary := tags[0]

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := pointSynonymAt(tx, primary.Name, primary.ID); err != nil {
			return fmt.Errorf("failed to register primary name %q: %w", primary.Name, err)
		}

		for _, other := range tags[1:] {
			if other.ID == primary.ID {
				continue
			}
			if err := mergeInto(tx, primary, other); err != nil {
				return fmt.Errorf("failed to join %q into %q: %w", other.Name, primary.Name, err)
			}
		}
		return nil
	})
}

func mergeInto(tx *gorm.DB, primary, other Tag) error {
	if err := tx.Model(&Synonym{}).
		Where("tag_id = ?", other.ID).
		Update("tag_id", primary.ID).Error; err != nil {
		return err
	}

	if err := pointSynonymAt(tx, other.Name, primary.ID); err != nil {
		return err
	}

	var items []TaggedItem
	if err := tx.Where("tag_id = ?", other.ID).Find(&items).Error; err != nil {
		return err
	}
	for _, item := range items {
		var duplicates int64
		if err := tx.Model(&TaggedItem{}).
			Where("tag_id = ? AND object_type = ? AND object_id = ?", primary.ID, item.ObjectType, item.ObjectID).
			Count(&duplicates).Error; err != nil {
			return err
		}

		if duplicates > 0 {
			if err := tx.Delete(&TaggedItem{}, "id = ?", item.ID).Error; err != nil {
				return err
			}
			continue
		}
		if err := tx.Model(&TaggedItem{}).Where("id = ?", item.ID).Update("tag_id", primary.ID).Error; err != nil {
			return err
		}
	}

	var translations []TagTranslation
	if err := tx.Where("tag_id = ?", other.ID).Find(&translations).Error; err != nil {
		return err
	}
	for _, tr := range translations {
		var taken int64
		if err := tx.Model(&TagTranslation{}).
			Where("tag_id = ? AND language_code = ?", primary.ID, tr.LanguageCode).
			Count(&taken).Error; err != nil {
			return err
		}

		if taken > 0 {
			if _, _, err := getOrCreateSynonym(tx, tr.Name, primary.ID); err != nil {
				return err
			}
			if err := tx.Delete(&TagTranslation{}, "id = ?", tr.ID).Error; err != nil {
				return err
			}
			continue
		}
		if err := tx.Model(&TagTranslation{}).Where("id = ?", tr.ID).Update("tag_id", primary.ID).Error; err != nil {
			return err
		}
	}

	return tx.Delete(&Tag{}, "id = ?", other.ID).Error
}

// pointSynonymAt makes name a synonym of tagID, moving it if it already exists
func pointSynonymAt(tx *gorm.DB, name string, tagID uuid.UUID) error {
	synonym, created, err := getOrCreateSynonym(tx, name, tagID)
	if err != nil {
		return err
	}
	if created || synonym.TagID == tagID {
		return nil
	}
	return tx.Model(&Synonym{}).Where("id = ?", synonym.ID).Update("tag_id", tagID).Error
}

// Tagged item operations

func (r *repository) AddTaggedItems(ctx context.Context, objectType, objectID string, tagIDs []uuid.UUID) error {
	if len(tagIDs) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, tagID := range tagIDs {
			var existing TaggedItem
			err := tx.Where("tag_id = ? AND object_type = ? AND object_id = ?", tagID, objectType, objectID).
				First(&existing).Error
			if err == nil {
				continue
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}

			item := TaggedItem{
				TagID:      tagID,
				ObjectType: objectType,
				ObjectID:   objectID,
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *repository) RemoveTaggedItems(ctx context.Context, objectType, objectID string, tagIDs []uuid.UUID) error {
	if len(tagIDs) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).
		Where("object_type = ? AND object_id = ? AND tag_id IN ?", objectType, objectID, tagIDs).
		Delete(&TaggedItem{}).Error
}

func (r *repository) GetTagsForObject(ctx context.Context, objectType, objectID string) ([]Tag, error) {
	var tags []Tag

	err := r.db.WithContext(ctx).
		Joins("JOIN tagged_items ON tags.id = tagged_items.tag_id").
		Where("tagged_items.object_type = ? AND tagged_items.object_id = ?", objectType, objectID).
		Order("tags.name ASC").
		Find(&tags).Error

	return tags, err
}

func (r *repository) GetObjectsForTag(ctx context.Context, tagID uuid.UUID) ([]TaggedItem, error) {
	var items []TaggedItem

	err := r.db.WithContext(ctx).
		Where("tag_id = ?", tagID).
		Order("object_type ASC, object_id ASC").
		Find(&items).Error

	return items, err
}

func (r *repository) ListTaggedItems(ctx context.Context, query TaggedItemListQuery) ([]TaggedItem, int64, error) {
	var items []TaggedItem
	var totalCount int64

	db := r.db.WithContext(ctx).Model(&TaggedItem{})
	if query.ObjectType != "" {
		db = db.Where("object_type = ?", query.ObjectType)
	}
	if query.ObjectID != "" {
		db = db.Where("object_id = ?", query.ObjectID)
	}
	if query.TagID != "" {
		tagID, err := uuid.Parse(query.TagID)
		if err != nil {
			return nil, 0, ErrInvalidTagID
		}
		db = db.Where("tag_id = ?", tagID)
	}

	if err := db.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = defaultPageSize
	}

	err := db.Preload("Tag").
		Order("created_at DESC").
		Offset((query.Page - 1) * query.Limit).
		Limit(query.Limit).
		Find(&items).Error

	return items, totalCount, err
}
