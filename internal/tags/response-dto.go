package tags

import (
	"sort"
	"strings"
	"time"
)

type TagResponse struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Synonyms     []string          `json:"synonyms"`
	Translations map[string]string `json:"translations,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// NameAny mirrors Tag.NameAny for responses coming out of the cache
func (r TagResponse) NameAny(lang string) string {
	if name := r.Translations[lang]; name != "" {
		return name
	}
	if r.Name != "" {
		return r.Name
	}
	for _, lang := range r.languages() {
		if name := r.Translations[lang]; name != "" {
			return name
		}
	}
	return ""
}

func (r TagResponse) SynonymList() string {
	return strings.Join(r.Synonyms, ", ")
}

func (r TagResponse) TranslationList() string {
	names := make([]string, 0, len(r.Translations))
	for _, lang := range r.languages() {
		names = append(names, r.Translations[lang])
	}
	return strings.Join(names, ", ")
}

func (r TagResponse) languages() []string {
	langs := make([]string, 0, len(r.Translations))
	for lang := range r.Translations {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

type SynonymResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	TagID   string `json:"tag_id"`
	TagName string `json:"tag_name,omitempty"`
	TagURL  string `json:"tag_url,omitempty"`
}

type TaggedItemResponse struct {
	ID         string    `json:"id"`
	TagID      string    `json:"tag_id"`
	TagName    string    `json:"tag_name,omitempty"`
	ObjectType string    `json:"object_type"`
	ObjectID   string    `json:"object_id"`
	CreatedAt  time.Time `json:"created_at"`
}

type PaginatedTags struct {
	Tags       []TagResponse `json:"tags"`
	TotalCount int64         `json:"total_count"`
	Page       int           `json:"page"`
	Limit      int           `json:"limit"`
	TotalPages int           `json:"total_pages"`
}

type PaginatedSynonyms struct {
	Synonyms   []SynonymResponse `json:"synonyms"`
	TotalCount int64             `json:"total_count"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
}

type PaginatedTaggedItems struct {
	Items      []TaggedItemResponse `json:"items"`
	TotalCount int64                `json:"total_count"`
	Page       int                  `json:"page"`
	Limit      int                  `json:"limit"`
	TotalPages int                  `json:"total_pages"`
}

// JoinResult is returned by the join action
type JoinResult struct {
	Primary     TagResponse `json:"primary"`
	JoinedCount int         `json:"joined_count"`
	Message     string      `json:"message"`
}

// JoinConfirmation is returned when a join is requested without confirmation
type JoinConfirmation struct {
	Title        string        `json:"title"`
	Tags         []TagResponse `json:"tags"`
	ActionField  string        `json:"action_checkbox_name"`
	ConfirmField string        `json:"confirm_field"`
}
