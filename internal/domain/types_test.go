package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeFillsAllRatingCategories(t *testing.T) {
	r := Restaurant{Name: "Nopa", Visited: true, Ratings: map[string]int{"food": 4}}
	r.Normalize()

	require.Len(t, r.Ratings, len(RatingCategories))
	for _, cat := range RatingCategories {
		assert.Contains(t, r.Ratings, cat)
	}
	assert.Equal(t, 4, r.Ratings["food"])
	assert.Equal(t, 0, r.Ratings["service"])
}

func TestNormalizeClampsRatings(t *testing.T) {
	r := Restaurant{Visited: true, Ratings: map[string]int{"food": 11, "value": -3}}
	r.Normalize()

	assert.Equal(t, RatingMax, r.Ratings["food"])
	assert.Equal(t, RatingMin, r.Ratings["value"])
}

func TestNormalizeClearsRatingsWhenNotVisited(t *testing.T) {
	r := Restaurant{Visited: false, Ratings: map[string]int{"food": 5}}
	r.Normalize()

	assert.Nil(t, r.Ratings)
}

func TestAverageRating(t *testing.T) {
	r := Restaurant{Visited: true, Ratings: map[string]int{"food": 4, "service": 3, "ambiance": 5, "value": 4}}
	assert.InDelta(t, 4.0, r.AverageRating(), 0.001)

	unvisited := Restaurant{Visited: false}
	assert.Zero(t, unvisited.AverageRating())
}

func TestCloneIsDeep(t *testing.T) {
	r := Restaurant{
		ID:      "1",
		Visited: true,
		Ratings: map[string]int{"food": 3},
		Photos:  []string{"data:image/png;base64,AAA"},
	}
	c := r.Clone()
	c.Ratings["food"] = 5
	c.Photos[0] = "changed"

	assert.Equal(t, 3, r.Ratings["food"])
	assert.Equal(t, "data:image/png;base64,AAA", r.Photos[0])
}
