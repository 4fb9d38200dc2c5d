package api

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/tastebook/backend/internal/model"
	"github.com/tastebook/backend/internal/service"
	"github.com/tastebook/backend/internal/testdb"
)

const testJWTSecret = "test-secret"

type testEnv struct {
	router  *gin.Engine
	db      *gorm.DB
	recipes *service.RecipeService
}

func setupAPI(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testdb.Open(t)
	authService := service.NewAuthService(db, testJWTSecret)
	recipeService := service.NewRecipeService(db, nil)

	router := gin.New()
	v1 := router.Group("/api/v1")
	NewAuthHandler(authService).RegisterRoutes(v1)
	NewRecipeHandler(recipeService, nil, authService, nil).RegisterRoutes(v1)
	NewIngredientHandler(db, authService).RegisterRoutes(v1)

	return &testEnv{router: router, db: db, recipes: recipeService}
}

// newToken signs a token for a fresh user id, the same claim shape the
// auth service issues.
func newToken(t *testing.T, userID uuid.UUID, isAdmin bool) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  userID.String(),
		"is_admin": isAdmin,
		"exp":      time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return signed
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) mustIngredient(t *testing.T, name, category string) model.Ingredient {
	t.Helper()
	ingredient := model.Ingredient{Name: name, Category: category}
	require.NoError(t, e.db.Create(&ingredient).Error)
	return ingredient
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}
