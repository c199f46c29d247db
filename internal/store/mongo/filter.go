package mongo

import (
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/cloudnotes/cloudnotes/internal/domain"
)

// listSort orders pinned notes first, then most recently updated.
// _id breaks ties so pagination is stable.
var listSort = bson.D{
	{Key: "pinned", Value: -1},
	{Key: "updatedAt", Value: -1},
	{Key: "_id", Value: 1},
}

// buildFilter translates a listing filter into a query document scoped to owner.
// Search text is escaped so it is matched literally and case-insensitively.
func buildFilter(owner string, f domain.Filter) bson.D {
	filter := bson.D{{Key: "owner", Value: owner}}

	if f.HasCategory() {
		filter = append(filter, bson.E{Key: "category", Value: f.CategoryValue()})
	}
	if f.Pinned != nil {
		filter = append(filter, bson.E{Key: "pinned", Value: *f.Pinned})
	}
	if f.Search != "" {
		re := bson.Regex{Pattern: domain.EscapePattern(f.Search), Options: "i"}
		filter = append(filter, bson.E{Key: "$or", Value: bson.A{
			bson.D{{Key: "title", Value: re}},
			bson.D{{Key: "content", Value: re}},
			bson.D{{Key: "tags", Value: re}},
		}})
	}
	return filter
}

// patchSet builds the $set document for the present fields of an applied note.
func patchSet(patch domain.NotePatch, next *domain.Note) bson.D {
	set := bson.D{}
	if patch.Title.Set {
		set = append(set, bson.E{Key: "title", Value: next.Title})
	}
	if patch.Content.Set {
		set = append(set, bson.E{Key: "content", Value: next.Content})
	}
	if patch.Tags.Set {
		tags := next.Tags
		if tags == nil {
			tags = []string{}
		}
		set = append(set, bson.E{Key: "tags", Value: tags})
	}
	if patch.Category.Set {
		set = append(set, bson.E{Key: "category", Value: string(next.Category)})
	}
	if patch.Pinned.Set {
		set = append(set, bson.E{Key: "pinned", Value: next.Pinned})
	}
	return append(set, bson.E{Key: "updatedAt", Value: next.UpdatedAt})
}

// tagCountPipeline counts, per tag, how many of the owner's notes carry it.
// Tags repeated within one note are counted once.
func tagCountPipeline(owner string) bson.A {
	return bson.A{
		bson.D{{Key: "$match", Value: bson.D{{Key: "owner", Value: owner}}}},
		bson.D{{Key: "$project", Value: bson.D{
			{Key: "tags", Value: bson.D{{Key: "$setUnion", Value: bson.A{"$tags", bson.A{}}}}},
		}}},
		bson.D{{Key: "$unwind", Value: "$tags"}},
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$tags"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
	}
}
