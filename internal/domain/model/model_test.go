package model_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/okian/tierlist/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestContestantJSON(t *testing.T) {
	convey.Convey("Given a contestant payload with extra keys", t, func() {
		payload := `{"id":"rob","name":"Boston Rob","season":4,"status":"Winner","tribe":"Chapera","votes":[1,2]}`

		convey.Convey("When decoding it", func() {
			var c model.Contestant
			err := json.Unmarshal([]byte(payload), &c)

			convey.Convey("Then named fields and extras are populated", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(c.ID, convey.ShouldEqual, "rob")
				convey.So(c.Name, convey.ShouldEqual, "Boston Rob")
				convey.So(c.Season, convey.ShouldEqual, 4.0)
				convey.So(c.Status, convey.ShouldEqual, "Winner")
				convey.So(c.Extra["tribe"], convey.ShouldEqual, "Chapera")
				convey.So(c.Extra, convey.ShouldContainKey, "votes")
			})

			convey.Convey("And re-encoding keeps every key", func() {
				out, err := json.Marshal(c)
				convey.So(err, convey.ShouldBeNil)

				var back map[string]any
				convey.So(json.Unmarshal(out, &back), convey.ShouldBeNil)
				convey.So(back["id"], convey.ShouldEqual, "rob")
				convey.So(back["tribe"], convey.ShouldEqual, "Chapera")
				convey.So(back["season"], convey.ShouldEqual, 4.0)
				convey.So(back, convey.ShouldNotContainKey, "imageUrl")
			})
		})

		convey.Convey("When the id is missing", func() {
			var c model.Contestant
			err := json.Unmarshal([]byte(`{"name":"nobody"}`), &c)

			convey.Convey("Then decoding fails", func() {
				convey.So(errors.Is(err, model.ErrMissingID), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When season is a string", func() {
			var c model.Contestant
			err := json.Unmarshal([]byte(`{"id":"x","season":"40"}`), &c)

			convey.Convey("Then the string is kept as-is", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(c.Season, convey.ShouldEqual, "40")
			})
		})
	})
}

func TestTiers(t *testing.T) {
	convey.Convey("Given tiers built from a pool", t, func() {
		pool := []model.Contestant{{ID: "a"}, {ID: "b"}, {ID: "c"}}
		tiers := model.NewTiers([]string{"S", "A"}, pool)

		convey.Convey("Then every bucket exists and the pool is unranked", func() {
			convey.So(tiers, convey.ShouldContainKey, "S")
			convey.So(tiers, convey.ShouldContainKey, "A")
			convey.So(len(tiers[model.Unranked]), convey.ShouldEqual, 3)
			convey.So(tiers.Count(), convey.ShouldEqual, 3)
			convey.So(tiers.RankedCount(), convey.ShouldEqual, 0)
		})

		convey.Convey("Then the unranked slice does not alias the pool", func() {
			tiers[model.Unranked][0].ID = "changed"
			convey.So(pool[0].ID, convey.ShouldEqual, "a")
		})

		convey.Convey("When locating contestants", func() {
			bucket, idx, ok := tiers.Locate("b")
			_, _, missing := tiers.Locate("zzz")

			convey.Convey("Then present ids are found and absent ids are not", func() {
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(bucket, convey.ShouldEqual, model.Unranked)
				convey.So(idx, convey.ShouldEqual, 1)
				convey.So(missing, convey.ShouldBeFalse)
			})
		})

		convey.Convey("Then IDs are sorted", func() {
			convey.So(tiers.IDs(), convey.ShouldResemble, []string{"a", "b", "c"})
		})
	})
}

func TestSavedRankingJSON(t *testing.T) {
	convey.Convey("Given a saved ranking", t, func() {
		doc := model.SavedRanking{
			Version:    model.SavedRankingVersion,
			Group:      "Legends",
			Theme:      "ocean",
			TierConfig: model.DefaultTierConfig(),
			Tiers: model.Tiers{
				"S":            {{ID: "a", Name: "A"}, {ID: "b"}},
				model.Unranked: {{ID: "c"}},
			},
			SavedAt: 1700000000000,
		}

		convey.Convey("When encoding and decoding", func() {
			raw, err := json.Marshal(doc)
			convey.So(err, convey.ShouldBeNil)

			var back model.SavedRanking
			convey.So(json.Unmarshal(raw, &back), convey.ShouldBeNil)

			convey.Convey("Then membership and order are preserved", func() {
				convey.So(back.Version, convey.ShouldEqual, 1)
				convey.So(back.SavedAt, convey.ShouldEqual, int64(1700000000000))
				convey.So(back.Tiers["S"][0].ID, convey.ShouldEqual, "a")
				convey.So(back.Tiers["S"][1].ID, convey.ShouldEqual, "b")
				convey.So(back.Tiers.IDs(), convey.ShouldResemble, doc.Tiers.IDs())
				convey.So(back.TierConfig["S"].Description, convey.ShouldEqual, "Legendary")
			})
		})
	})
}
