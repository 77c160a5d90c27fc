package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCardSetOrder(t *testing.T) {
	expected := []Card{"0", "½", "1", "2", "3", "5", "8", "13", "21", "?", "☕"}
	assert.Equal(t, expected, CardSet())
}

func TestCardSetIsACopy(t *testing.T) {
	cards := CardSet()
	cards[0] = "999"
	assert.Equal(t, Card("0"), CardSet()[0])
}

func TestIsValidCard(t *testing.T) {
	five := Card("5")
	half := Card("½")
	coffee := CardCoffee
	bogus := Card("4")
	empty := Card("")

	assert.True(t, IsValidCard(nil), "nil clears a selection and is valid")
	assert.True(t, IsValidCard(&five))
	assert.True(t, IsValidCard(&half))
	assert.True(t, IsValidCard(&coffee))
	assert.False(t, IsValidCard(&bogus))
	assert.False(t, IsValidCard(&empty))
}

func TestIsEstimate(t *testing.T) {
	assert.True(t, Card("0").IsEstimate())
	assert.True(t, Card("½").IsEstimate())
	assert.True(t, Card("21").IsEstimate())
	assert.False(t, CardUnsure.IsEstimate())
	assert.False(t, CardCoffee.IsEstimate())
}
