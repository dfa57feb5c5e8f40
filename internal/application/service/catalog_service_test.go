package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akhil1198/ER/internal/domain/taxonomy"
)

func newTestCatalog() CatalogService {
	return NewCatalogService(taxonomy.NewResolver(taxonomy.DefaultTable(), taxonomy.DefaultAliases()))
}

func TestCatalogService_ListTypes(t *testing.T) {
	svc := newTestCatalog()

	all, err := svc.ListTypes("")
	require.NoError(t, err)
	assert.Len(t, all, len(taxonomy.DefaultTypes()))

	lodging, err := svc.ListTypes("lodging")
	require.NoError(t, err)
	for _, et := range lodging {
		assert.Equal(t, taxonomy.CategoryLodging, et.Category)
	}

	_, err = svc.ListTypes("groceries")
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestCatalogService_Form(t *testing.T) {
	svc := newTestCatalog()

	meal, err := svc.Form("meals_client_in_town")
	require.NoError(t, err)
	assert.Equal(t, taxonomy.MealTypes, meal.MealTypes)
	assert.Empty(t, meal.TravelTypes)
	assert.Equal(t, 2, meal.Type.Attendees.Min)

	ride, err := svc.Form("rideshare")
	require.NoError(t, err)
	assert.Equal(t, taxonomy.TravelTypes, ride.TravelTypes)
	assert.Empty(t, ride.MealTypes)
	assert.NotEmpty(t, ride.PaymentMethods)

	_, err = svc.Form("yacht")
	assert.ErrorIs(t, err, ErrUnknownExpenseType)
}

func TestCatalogService_Classify(t *testing.T) {
	svc := newTestCatalog()

	res := svc.Classify("Uber", "")
	assert.Equal(t, "01009", res.Code)
	assert.Equal(t, taxonomy.MatchAlias, res.Source)

	res = svc.Classify("zzz", "")
	assert.Equal(t, taxonomy.DefaultCode, res.Code)
	assert.Equal(t, taxonomy.MatchDefault, res.Source)
}
