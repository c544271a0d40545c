package tags

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tagging/internal/shared/constants"
	"tagging/internal/tagevents"
	"tagging/pkg/cache"
)

func newTestService(t *testing.T) (Service, Repository) {
	t.Helper()
	repo := NewRepository(newTestDB(t))
	return NewService(repo, nil, nil, nil, testTaggingConfig()), repo
}

func TestService_JoinTags(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(newTestDB(t))

	a := mustTag(t, repo, "A")
	b := mustTag(t, repo, "B")
	c := mustTag(t, repo, "C")

	cacheMock := new(mockCache)
	cacheMock.On("DeletePattern", mock.Anything, constants.PATTERN_INVALIDATE_TAGS_ALL).Return(nil).Once()
	cacheMock.On("Get", mock.Anything, constants.BuildTagDetailKey(b.ID.String()), mock.Anything).Return(cache.ErrCacheMiss)
	cacheMock.On("Set", mock.Anything, constants.BuildTagDetailKey(b.ID.String()), mock.Anything, constants.TTL_TAG_DETAIL).Return(nil)

	publisher := new(mockPublisher)
	publisher.On("Publish", mock.Anything, mock.MatchedBy(func(e *tagevents.Event) bool {
		return e.Type == tagevents.EventTypeTagsJoined
	})).Return(nil).Once()

	svc := NewService(repo, cacheMock, publisher, nil, testTaggingConfig())

	result, err := svc.JoinTags(ctx, ids(a, b, c), b.ID)
	require.NoError(t, err)

	assert.Equal(t, "Successfully joined 3 tags.", result.Message)
	assert.Equal(t, 3, result.JoinedCount)
	assert.Equal(t, "B", result.Primary.Name)
	assert.ElementsMatch(t, []string{"A", "B", "C"}, result.Primary.Synonyms)

	_, err = repo.GetByID(ctx, a.ID)
	assert.Error(t, err)

	cacheMock.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestService_JoinTags_PrimaryOutsideSelection(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t)

	a := mustTag(t, repo, "A")
	b := mustTag(t, repo, "B")
	other := mustTag(t, repo, "other")

	_, err := svc.JoinTags(ctx, ids(a, b), other.ID)
	assert.ErrorIs(t, err, ErrPrimaryNotSelected)

	// Nothing changed
	_, err = repo.GetByID(ctx, a.ID)
	assert.NoError(t, err)
}

func TestService_JoinTags_EmptyAndUnknownSelection(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t)

	_, err := svc.JoinTags(ctx, nil, uuid.New())
	assert.ErrorIs(t, err, ErrNoTagsToJoin)

	a := mustTag(t, repo, "A")
	_, err = svc.JoinTags(ctx, []uuid.UUID{a.ID, uuid.New()}, a.ID)
	assert.ErrorIs(t, err, ErrTagNotFound)
}

func TestService_PrepareJoin_KeepsSelectionOrder(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t)

	zebra := mustTag(t, repo, "zebra")
	ant := mustTag(t, repo, "ant")

	confirmation, err := svc.PrepareJoin(ctx, ids(zebra, ant))
	require.NoError(t, err)

	assert.Equal(t, "Select main tag", confirmation.Title)
	assert.Equal(t, "_selected_action", confirmation.ActionField)
	require.Len(t, confirmation.Tags, 2)
	assert.Equal(t, "zebra", confirmation.Tags[0].Name)
	assert.Equal(t, "ant", confirmation.Tags[1].Name)
}

func TestService_CreateTag(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	tag, err := svc.CreateTag(ctx, CreateTagRequest{Name: " cat ", Synonyms: []string{"feline", "kitty"}})
	require.NoError(t, err)
	assert.Equal(t, "cat", tag.Name)
	assert.Equal(t, []string{"cat", "feline", "kitty"}, tag.Synonyms)

	_, err = svc.CreateTag(ctx, CreateTagRequest{Name: "cat"})
	assert.ErrorIs(t, err, ErrTagExists)

	_, err = svc.CreateTag(ctx, CreateTagRequest{Name: "feline2", Synonyms: []string{"kitty"}})
	assert.ErrorIs(t, err, ErrSynonymTaken)

	_, err = svc.CreateTag(ctx, CreateTagRequest{Name: "big cat"})
	assert.ErrorIs(t, err, ErrInvalidTagName)
}

func TestService_ResolveTag(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t)

	cat := mustTag(t, repo, "cat", "kitty")

	tag, err := svc.ResolveTag(ctx, "kitty")
	require.NoError(t, err)
	assert.Equal(t, cat.ID.String(), tag.ID)

	_, err = svc.ResolveTag(ctx, "dog")
	assert.ErrorIs(t, err, ErrTagNotFound)
}

func TestService_ResolveTag_FromCache(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(newTestDB(t))

	cacheMock := new(mockCache)
	cacheMock.On("Get", mock.Anything, constants.BuildTagResolveKey("kitty"), mock.Anything).
		Run(func(args mock.Arguments) {
			dest := args.Get(2).(*TagResponse)
			dest.Name = "cat"
		}).
		Return(nil)

	svc := NewService(repo, cacheMock, nil, nil, testTaggingConfig())

	tag, err := svc.ResolveTag(ctx, "kitty")
	require.NoError(t, err)
	assert.Equal(t, "cat", tag.Name)
	cacheMock.AssertExpectations(t)
}

func TestService_TagObject_ResolvesSynonyms(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t)

	cat := mustTag(t, repo, "cat", "kitty")

	tags, err := svc.TagObject(ctx, TagObjectRequest{
		ObjectType: "photo",
		ObjectID:   "42",
		Tags:       []string{"kitty", "cat", "sunset"},
	})
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "cat", tags[0].Name)
	assert.Equal(t, cat.ID.String(), tags[0].ID)
	assert.Equal(t, "sunset", tags[1].Name)

	sunset, err := repo.ResolveSynonym(ctx, "sunset")
	require.NoError(t, err)
	assert.Equal(t, "sunset", sunset.Name)

	require.NoError(t, svc.UntagObject(ctx, TagObjectRequest{ObjectType: "photo", ObjectID: "42", Tags: []string{"kitty", "unknown"}}))

	tags, err = svc.TagsForObject(ctx, "photo", "42")
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, "sunset", tags[0].Name)
}

func TestService_SynonymsAndTranslations(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(newTestDB(t))
	cfg := testTaggingConfig()
	cfg.MultilingualTags = true
	svc := NewService(repo, nil, nil, nil, cfg)

	cat := mustTag(t, repo, "cat")
	dog := mustTag(t, repo, "dog")

	tag, err := svc.AddSynonym(ctx, cat.ID, AddSynonymRequest{Name: "kitty"})
	require.NoError(t, err)
	assert.Contains(t, tag.Synonyms, "kitty")

	_, err = svc.AddSynonym(ctx, dog.ID, AddSynonymRequest{Name: "kitty"})
	assert.ErrorIs(t, err, ErrSynonymTaken)

	tag, err = svc.SetTranslation(ctx, cat.ID, SetTranslationRequest{LanguageCode: "FR", Name: "chat"})
	require.NoError(t, err)
	assert.Equal(t, "chat", tag.Translations["fr"])

	synonyms, err := svc.ListSynonyms(ctx, SynonymListQuery{Search: "kit"})
	require.NoError(t, err)
	require.Len(t, synonyms.Synonyms, 1)
	assert.Equal(t, "/admin/tagging/tag/"+cat.ID.String()+"/", synonyms.Synonyms[0].TagURL)
	assert.Equal(t, "cat", synonyms.Synonyms[0].TagName)

	require.NoError(t, svc.RemoveSynonym(ctx, cat.ID, "kitty"))
	assert.ErrorIs(t, svc.RemoveSynonym(ctx, cat.ID, "kitty"), ErrSynonymNotFound)
}

func TestService_ListSynonyms_MultilingualTagName(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(newTestDB(t))
	cfg := testTaggingConfig()
	cfg.MultilingualTags = true
	cfg.DefaultLanguage = "de"
	svc := NewService(repo, nil, nil, nil, cfg)

	cat := mustTag(t, repo, "cat", "kitty")
	dog := mustTag(t, repo, "dog", "hound")
	_, err := svc.SetTranslation(ctx, cat.ID, SetTranslationRequest{LanguageCode: "de", Name: "Katze"})
	require.NoError(t, err)

	synonyms, err := svc.ListSynonyms(ctx, SynonymListQuery{})
	require.NoError(t, err)

	byName := make(map[string]string, len(synonyms.Synonyms))
	for _, synonym := range synonyms.Synonyms {
		byName[synonym.Name] = synonym.TagName
	}
	assert.Equal(t, "Katze", byName["kitty"])
	assert.Equal(t, "Katze", byName["cat"])
	assert.Equal(t, dog.Name, byName["hound"])
}

func TestService_RenameAndDelete(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t)

	cat := mustTag(t, repo, "cat")
	mustTag(t, repo, "dog", "hound")

	name := "dog"
	_, err := svc.RenameTag(ctx, cat.ID, UpdateTagRequest{Name: &name})
	assert.ErrorIs(t, err, ErrTagExists)

	name = "hound"
	_, err = svc.RenameTag(ctx, cat.ID, UpdateTagRequest{Name: &name})
	assert.ErrorIs(t, err, ErrSynonymTaken)

	name = "feline"
	tag, err := svc.RenameTag(ctx, cat.ID, UpdateTagRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "feline", tag.Name)

	require.NoError(t, svc.DeleteTag(ctx, cat.ID))
	assert.ErrorIs(t, svc.DeleteTag(ctx, cat.ID), ErrTagNotFound)
}

func TestService_ListTags_Pagination(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t)

	for _, name := range []string{"a", "b", "c"} {
		mustTag(t, repo, name)
	}

	page, err := svc.ListTags(ctx, TagListQuery{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.TotalCount)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Tags, 1)
	assert.Equal(t, "c", page.Tags[0].Name)
}
