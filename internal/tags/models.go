package tags

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tag represents the canonical label entity
type Tag struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name      string    `json:"name" gorm:"uniqueIndex;not null;size:100"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	Synonyms     []Synonym        `json:"synonyms,omitempty" gorm:"foreignKey:TagID"`
	Translations []TagTranslation `json:"translations,omitempty" gorm:"foreignKey:TagID"`
}

// Synonym is an alternate name that resolves to exactly one Tag
type Synonym struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name      string    `json:"name" gorm:"uniqueIndex;not null;size:100"`
	TagID     uuid.UUID `json:"tag_id" gorm:"type:uuid;not null;index"`
	Tag       *Tag      `json:"tag,omitempty" gorm:"foreignKey:TagID"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TaggedItem associates a Tag with an arbitrary record identified by type and id
type TaggedItem struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	TagID      uuid.UUID `json:"tag_id" gorm:"type:uuid;not null;index;uniqueIndex:idx_tagged_item_unique"`
	ObjectType string    `json:"object_type" gorm:"not null;size:100;uniqueIndex:idx_tagged_item_unique;index:idx_tagged_item_object"`
	ObjectID   string    `json:"object_id" gorm:"not null;size:100;uniqueIndex:idx_tagged_item_unique;index:idx_tagged_item_object"`
	Tag        *Tag      `json:"tag,omitempty" gorm:"foreignKey:TagID"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TagTranslation holds the name of a tag in one language (multilingual mode)
type TagTranslation struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	TagID        uuid.UUID `json:"tag_id" gorm:"type:uuid;not null;uniqueIndex:idx_tag_translation_lang"`
	LanguageCode string    `json:"language_code" gorm:"not null;size:10;uniqueIndex:idx_tag_translation_lang"`
	Name         string    `json:"name" gorm:"not null;size:100;index"`
}

func (t *Tag) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

func (s *Synonym) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

func (i *TaggedItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

func (tr *TagTranslation) BeforeCreate(tx *gorm.DB) error {
	if tr.ID == uuid.Nil {
		tr.ID = uuid.New()
	}
	return nil
}

// NameAny returns the tag name in the requested language, falling back to the
// plain name and then to any translation.
func (t *Tag) NameAny(lang string) string {
	for _, tr := range t.Translations {
		if tr.LanguageCode == lang && tr.Name != "" {
			return tr.Name
		}
	}
	if t.Name != "" {
		return t.Name
	}
	for _, tr := range t.Translations {
		if tr.Name != "" {
			return tr.Name
		}
	}
	return ""
}

// SynonymNames joins the synonym names the way the admin list shows them
func (t *Tag) SynonymNames() string {
	names := make([]string, 0, len(t.Synonyms))
	for _, s := range t.Synonyms {
		names = append(names, s.Name)
	}
	return strings.Join(names, ", ")
}

func (t *Tag) TranslationNames() string {
	names := make([]string, 0, len(t.Translations))
	for _, tr := range t.Translations {
		names = append(names, tr.Name)
	}
	return strings.Join(names, ", ")
}

// Helper methods
func (t *Tag) ToResponse() TagResponse {
	resp := TagResponse{
		ID:        t.ID.String(),
		Name:      t.Name,
		Synonyms:  make([]string, 0, len(t.Synonyms)),
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
	for _, s := range t.Synonyms {
		resp.Synonyms = append(resp.Synonyms, s.Name)
	}
	if len(t.Translations) > 0 {
		resp.Translations = make(map[string]string, len(t.Translations))
		for _, tr := range t.Translations {
			resp.Translations[tr.LanguageCode] = tr.Name
		}
	}
	return resp
}

func (s *Synonym) ToResponse() SynonymResponse {
	resp := SynonymResponse{
		ID:    s.ID.String(),
		Name:  s.Name,
		TagID: s.TagID.String(),
	}
	if s.Tag != nil {
		resp.TagName = s.Tag.Name
	}
	return resp
}

func (i *TaggedItem) ToResponse() TaggedItemResponse {
	resp := TaggedItemResponse{
		ID:         i.ID.String(),
		TagID:      i.TagID.String(),
		ObjectType: i.ObjectType,
		ObjectID:   i.ObjectID,
		CreatedAt:  i.CreatedAt,
	}
	if i.Tag != nil {
		resp.TagName = i.Tag.Name
	}
	return resp
}

// TableName specifies the table name for GORM
func (Tag) TableName() string {
	return "tags"
}

func (Synonym) TableName() string {
	return "tag_synonyms"
}

func (TaggedItem) TableName() string {
	return "tagged_items"
}

func (TagTranslation) TableName() string {
	return "tag_translations"
}

// Models lists every model of the package, in migration order
func Models() []interface{} {
	return []interface{}{
		&Tag{},
		&Synonym{},
		&TaggedItem{},
		&TagTranslation{},
	}
}
