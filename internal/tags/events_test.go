package tags

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tagging/internal/shared/constants"
	"tagging/internal/tagevents"
)

func TestCacheInvalidationHandler(t *testing.T) {
	cacheMock := &mockCache{}
	cacheMock.On("DeletePattern", mock.Anything, constants.PATTERN_INVALIDATE_TAGS_ALL).Return(nil).Once()

	handle := CacheInvalidationHandler(cacheMock, nil)

	event, err := tagevents.NewEvent(tagevents.EventTypeTagsImported, tagevents.TagsImportedPayload{TagCount: 1})
	require.NoError(t, err)
	require.NoError(t, handle(context.Background(), event))

	cacheMock.AssertExpectations(t)
}

func TestCacheInvalidationHandler_IgnoresUnknownEvents(t *testing.T) {
	cacheMock := &mockCache{}
	handle := CacheInvalidationHandler(cacheMock, nil)

	require.NoError(t, handle(context.Background(), &tagevents.Event{Type: "SOMETHING_ELSE"}))
	cacheMock.AssertNotCalled(t, "DeletePattern", mock.Anything, mock.Anything)
}

func TestCacheInvalidationHandler_PropagatesCacheErrors(t *testing.T) {
	cacheMock := &mockCache{}
	cacheMock.On("DeletePattern", mock.Anything, mock.Anything).Return(errors.New("redis down"))

	handle := CacheInvalidationHandler(cacheMock, nil)
	err := handle(context.Background(), &tagevents.Event{Type: tagevents.EventTypeTagsJoined})
	assert.EqualError(t, err, "redis down")
}

func TestCacheInvalidationHandler_WithoutCache(t *testing.T) {
	handle := CacheInvalidationHandler(nil, nil)
	assert.NoError(t, handle(context.Background(), &tagevents.Event{Type: tagevents.EventTypeTagDeleted}))
}
