package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchByNameCaseInsensitive(t *testing.T) {
	svc, _, db := newTestService(t)
	mustRecipe(t, db, "Margherita Pizza", 25)
	mustRecipe(t, db, "Chicken Soup", 60)

	results, err := svc.SearchAndFilter(context.Background(), SearchParams{QueryName: "PIZZA"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Margherita Pizza", results[0].Name)

	results, err = svc.SearchAndFilter(context.Background(), SearchParams{QueryName: "chick"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Chicken Soup", results[0].Name)
}

func TestSearchNoCriteriaReturnsAll(t *testing.T) {
	svc, _, db := newTestService(t)
	mustRecipe(t, db, "Pizza", 25)
	mustRecipe(t, db, "Soup", 60)
	mustRecipe(t, db, "Salad", 10)

	results, err := svc.SearchAndFilter(context.Background(), SearchParams{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Pizza", "Soup", "Salad"}, resultNames(results))
	for _, r := range results {
		assert.Empty(t, r.MatchingIngredientIDs)
		assert.Empty(t, r.MissingIngredientIDs)
	}
}

func TestSearchByIngredientsRanksByMissing(t *testing.T) {
	svc, _, db := newTestService(t)
	salt := mustIngredient(t, db, "Salt", "Seasoning")
	pepper := mustIngredient(t, db, "Pepper", "Seasoning")

	// Pizza carries an extra ingredient outside the required set, soup
	// carries none, so soup ranks first.
	mustRecipe(t, db, "Pizza", 25, salt.ID, pepper.ID)
	mustRecipe(t, db, "Soup", 60, salt.ID)

	results, err := svc.SearchAndFilter(context.Background(), SearchParams{
		QueryIngredients: []uint{salt.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Soup", "Pizza"}, resultNames(results))
}

func TestSearchByIngredientsAnnotations(t *testing.T) {
	svc, _, db := newTestService(t)
	salt := mustIngredient(t, db, "Salt", "Seasoning")
	pepper := mustIngredient(t, db, "Pepper", "Seasoning")
	mustRecipe(t, db, "Pizza", 25, salt.ID, pepper.ID)

	results, err := svc.SearchAndFilter(context.Background(), SearchParams{
		QueryIngredients: []uint{salt.ID},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Equal(t, []uint{salt.ID}, results[0].MatchingIngredientIDs)
	assert.Equal(t, []string{"Salt"}, results[0].MatchingIngredientNames)
	assert.Equal(t, []uint{pepper.ID}, results[0].MissingIngredientIDs)
	assert.Equal(t, []string{"Pepper"}, results[0].MissingIngredientNames)
}

func TestSearchByIngredientsExcludesNonMatching(t *testing.T) {
	svc, _, db := newTestService(t)
	salt := mustIngredient(t, db, "Salt", "Seasoning")
	pepper := mustIngredient(t, db, "Pepper", "Seasoning")
	mustRecipe(t, db, "Pizza", 25, salt.ID, pepper.ID)
	mustRecipe(t, db, "Soup", 60, salt.ID)

	results, err := svc.SearchAndFilter(context.Background(), SearchParams{
		QueryIngredients: []uint{pepper.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Pizza"}, resultNames(results))
}

func TestSearchUnknownIngredientIDs(t *testing.T) {
	svc, _, db := newTestService(t)
	salt := mustIngredient(t, db, "Salt", "Seasoning")
	mustRecipe(t, db, "Soup", 60, salt.ID)

	results, err := svc.SearchAndFilter(context.Background(), SearchParams{
		QueryIngredients: []uint{9999},
	})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestFilterTimeBuckets(t *testing.T) {
	svc, _, db := newTestService(t)
	mustRecipe(t, db, "Toast", 19)
	mustRecipe(t, db, "Pasta", 20)
	mustRecipe(t, db, "Roast", 45)
	mustRecipe(t, db, "Stew", 46)

	cases := []struct {
		filter string
		want   []string
	}{
		{TimeFilterQuick, []string{"Toast"}},
		{TimeFilterStandard, []string{"Pasta", "Roast"}},
		{TimeFilterLong, []string{"Stew"}},
		{"", []string{"Toast", "Pasta", "Roast", "Stew"}},
	}
	for _, tc := range cases {
		t.Run("filter_"+tc.filter, func(t *testing.T) {
			results, err := svc.SearchAndFilter(context.Background(), SearchParams{TimeFilter: tc.filter})
			require.NoError(t, err)
			assert.Equal(t, tc.want, resultNames(results))
		})
	}
}

func TestExclusionIsAbsolute(t *testing.T) {
	svc, _, db := newTestService(t)
	salt := mustIngredient(t, db, "Salt", "Seasoning")
	pepper := mustIngredient(t, db, "Pepper", "Seasoning")
	mustRecipe(t, db, "Pizza", 25, salt.ID, pepper.ID)
	mustRecipe(t, db, "Soup", 60, salt.ID)

	// Pizza matches the required set perfectly but contains the excluded
	// ingredient, so it is removed regardless.
	results, err := svc.SearchAndFilter(context.Background(), SearchParams{
		QueryIngredients:   []uint{salt.ID, pepper.ID},
		ExcludeIngredients: []uint{pepper.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Soup"}, resultNames(results))
}

func TestSearchCombinesNameTimeAndIngredients(t *testing.T) {
	svc, _, db := newTestService(t)
	salt := mustIngredient(t, db, "Salt", "Seasoning")
	tomato := mustIngredient(t, db, "Tomato", "Vegetable")
	mustRecipe(t, db, "Quick Pizza", 15, salt.ID, tomato.ID)
	mustRecipe(t, db, "Slow Pizza", 90, salt.ID, tomato.ID)
	mustRecipe(t, db, "Quick Soup", 15, salt.ID)

	results, err := svc.SearchAndFilter(context.Background(), SearchParams{
		QueryName:        "pizza",
		QueryIngredients: []uint{tomato.ID},
		TimeFilter:       TimeFilterQuick,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Quick Pizza"}, resultNames(results))
}

func TestSearchIsIdempotent(t *testing.T) {
	svc, _, db := newTestService(t)
	salt := mustIngredient(t, db, "Salt", "Seasoning")
	pepper := mustIngredient(t, db, "Pepper", "Seasoning")
	mustRecipe(t, db, "Pizza", 25, salt.ID, pepper.ID)
	mustRecipe(t, db, "Soup", 60, salt.ID)

	params := SearchParams{QueryIngredients: []uint{salt.ID}}
	first, err := svc.SearchAndFilter(context.Background(), params)
	require.NoError(t, err)
	second, err := svc.SearchAndFilter(context.Background(), params)
	require.NoError(t, err)
	assert.Equal(t, resultNames(first), resultNames(second))
}
