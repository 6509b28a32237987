package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestSortSpec(t *testing.T) {
	assert.Equal(t, bson.D{{Key: "created_at", Value: -1}}, sortSpec(SortNewFirst))
	assert.Equal(t, bson.D{{Key: "created_at", Value: 1}}, sortSpec(SortOldFirst))
	assert.Equal(t, bson.D{{Key: "title", Value: 1}}, sortSpec(SortAlphabetically))
	assert.Equal(t,
		bson.D{{Key: "is_important", Value: -1}, {Key: "created_at", Value: -1}},
		sortSpec(SortImportantFirst))

	// Unknown names fall back to newest first.
	assert.Equal(t, bson.D{{Key: "created_at", Value: -1}}, sortSpec("bogus"))
	assert.Equal(t, bson.D{{Key: "created_at", Value: -1}}, sortSpec(""))
}

func TestListFilter(t *testing.T) {
	userID := primitive.NewObjectID()

	t.Run("NoSearch", func(t *testing.T) {
		assert.Equal(t, bson.M{"user_id": userID}, listFilter(userID, ""))
		assert.Equal(t, bson.M{"user_id": userID}, listFilter(userID, "   "))
	})

	t.Run("SingleWord", func(t *testing.T) {
		filter := listFilter(userID, "milk")
		assert.Equal(t, userID, filter["user_id"])
		assert.Equal(t, []bson.M{
			{"title": bson.M{"$regex": "milk", "$options": "i"}},
		}, filter["$or"])
	})

	t.Run("EachWordMatchesIndependently", func(t *testing.T) {
		filter := listFilter(userID, "  buy   milk ")
		assert.Equal(t, []bson.M{
			{"title": bson.M{"$regex": "buy", "$options": "i"}},
			{"title": bson.M{"$regex": "milk", "$options": "i"}},
		}, filter["$or"])
	})
}
