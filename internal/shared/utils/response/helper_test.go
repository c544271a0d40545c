package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, TotalPages(0, 20, 20))
	assert.Equal(t, 1, TotalPages(20, 20, 20))
	assert.Equal(t, 2, TotalPages(21, 20, 20))
	assert.Equal(t, 3, TotalPages(41, 0, 20))
	assert.Equal(t, 0, TotalPages(5, 0, 0))
}

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	RespondError(c, http.StatusBadRequest, "Invalid tag ID", "bad uuid")

	var body StandardApiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, StatusError, body.Status)
	assert.Equal(t, "bad uuid", body.Errors)
	assert.Nil(t, body.Data)
}
