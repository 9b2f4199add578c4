package headtohead_test

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/okian/tierlist/internal/domain/headtohead"
	"github.com/okian/tierlist/internal/domain/model"
	"github.com/okian/tierlist/internal/domain/rng"
	"github.com/smartystreets/goconvey/convey"
)

type script []float64

func (s *script) Float64() float64 {
	if len(*s) == 0 {
		return 0
	}
	v := (*s)[0]
	*s = (*s)[1:]
	return v
}

func pool(ids ...string) []model.Contestant {
	out := make([]model.Contestant, len(ids))
	for i, id := range ids {
		out[i] = model.Contestant{ID: id}
	}
	return out
}

func rowIDs(rows []headtohead.Row) []string {
	out := make([]string, len(rows))
	for i := range rows {
		out[i] = rows[i].Contestant.ID
	}
	return out
}

func TestPickPair(t *testing.T) {
	convey.Convey("Given a pool of four", t, func() {
		p := pool("a", "b", "c", "d")

		convey.Convey("When both draws collide", func() {
			src := &script{0.5, 0.6}
			pair := headtohead.PickPair(p, src)

			convey.Convey("Then the second index steps forward", func() {
				convey.So(pair.Left.ID, convey.ShouldEqual, "c")
				convey.So(pair.Right.ID, convey.ShouldEqual, "d")
			})
		})

		convey.Convey("When the collision is on the last index", func() {
			pair := headtohead.PickPair(p, &script{0.99, 0.99})

			convey.Convey("Then it wraps to the start", func() {
				convey.So(pair.Left.ID, convey.ShouldEqual, "d")
				convey.So(pair.Right.ID, convey.ShouldEqual, "a")
			})
		})

		convey.Convey("Then any seeded draw yields distinct members", func() {
			src := rng.NewLehmer(3)
			for i := 0; i < 200; i++ {
				pair := headtohead.PickPair(p, src)
				convey.So(pair.Left.ID, convey.ShouldNotEqual, pair.Right.ID)
			}
		})

		convey.Convey("Then a session seeded with the most negative int64 keeps drawing valid pairs", func() {
			s := headtohead.NewSession(rng.NewLehmer(math.MinInt64))
			convey.So(s.Start(p), convey.ShouldNotBeNil)
			for i := 0; i < 200; i++ {
				convey.So(s.Skip(), convey.ShouldBeTrue)
				pair := s.Pair()
				convey.So(pair, convey.ShouldNotBeNil)
				convey.So(pair.Left.ID, convey.ShouldNotEqual, pair.Right.ID)
			}
		})

		convey.Convey("Then equal seeds draw equal sequences", func() {
			a, b := rng.NewLehmer(11), rng.NewLehmer(11)
			for i := 0; i < 50; i++ {
				convey.So(cmp.Diff(headtohead.PickPair(p, a), headtohead.PickPair(p, b)), convey.ShouldBeEmpty)
			}
		})
	})

	convey.Convey("Given pools smaller than two", t, func() {
		convey.So(headtohead.PickPair(nil, rng.NewLehmer(1)), convey.ShouldBeNil)
		convey.So(headtohead.PickPair(pool("solo"), rng.NewLehmer(1)), convey.ShouldBeNil)
	})
}

func TestSession(t *testing.T) {
	convey.Convey("Given a session started on three contestants", t, func() {
		s := headtohead.NewSession(&script{0, 0.5, 0, 0.5, 0, 0.5, 0, 0.5})
		pair := s.Start(pool("a", "b", "c"))

		convey.So(s.State(), convey.ShouldEqual, headtohead.Active)
		convey.So(pair.Left.ID, convey.ShouldEqual, "a")
		convey.So(pair.Right.ID, convey.ShouldEqual, "b")

		convey.Convey("When choosing a winner from the pair", func() {
			ok := s.ChooseWinner("a")

			convey.Convey("Then the tallies and counter move", func() {
				convey.So(ok, convey.ShouldBeTrue)
				stats := s.Stats()
				convey.So(stats["a"], convey.ShouldResemble, headtohead.Stat{Wins: 1})
				convey.So(stats["b"], convey.ShouldResemble, headtohead.Stat{Losses: 1})
				convey.So(s.Comparisons(), convey.ShouldEqual, 1)
				convey.So(s.Pair(), convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When choosing an id outside the pair", func() {
			ok := s.ChooseWinner("c")

			convey.Convey("Then nothing is recorded", func() {
				convey.So(ok, convey.ShouldBeFalse)
				convey.So(s.Comparisons(), convey.ShouldEqual, 0)
				convey.So(s.Stats()["c"], convey.ShouldResemble, headtohead.Stat{})
			})
		})

		convey.Convey("When skipping", func() {
			convey.So(s.Skip(), convey.ShouldBeTrue)

			convey.Convey("Then only the counter moves", func() {
				convey.So(s.Comparisons(), convey.ShouldEqual, 1)
				for _, st := range s.Stats() {
					convey.So(st, convey.ShouldResemble, headtohead.Stat{})
				}
			})
		})

		convey.Convey("When stopping", func() {
			s.ChooseWinner("b")
			s.Stop()

			convey.Convey("Then the session is idle and keeps its tallies", func() {
				convey.So(s.State(), convey.ShouldEqual, headtohead.Idle)
				convey.So(s.Pair(), convey.ShouldBeNil)
				convey.So(s.Stats()["b"].Wins, convey.ShouldEqual, 1)
				convey.So(s.ChooseWinner("a"), convey.ShouldBeFalse)
				convey.So(s.Skip(), convey.ShouldBeFalse)
			})

			convey.Convey("And a restart clears them", func() {
				s.Start(pool("a", "b"))
				convey.So(s.Comparisons(), convey.ShouldEqual, 0)
				convey.So(s.Stats()["b"].Wins, convey.ShouldEqual, 0)
			})
		})
	})

	convey.Convey("Given a session started on one contestant", t, func() {
		s := headtohead.NewSession(rng.NewLehmer(1))

		convey.Convey("Then there is no pair to compare", func() {
			convey.So(s.Start(pool("solo")), convey.ShouldBeNil)
			convey.So(s.State(), convey.ShouldEqual, headtohead.Active)
			convey.So(s.ChooseWinner("solo"), convey.ShouldBeFalse)
		})
	})
}

func TestScore(t *testing.T) {
	convey.Convey("Given tallies", t, func() {
		convey.So(headtohead.Stat{Wins: 3, Losses: 1}.Score(), convey.ShouldEqual, 0.75)
		convey.So(headtohead.Stat{}.Score(), convey.ShouldEqual, 0)
		convey.So(headtohead.Stat{Losses: 2}.Score(), convey.ShouldEqual, 0)
	})
}

func TestRanking(t *testing.T) {
	convey.Convey("Given a session with a known tally", t, func() {
		// every draw lands on index 0 then steps to 1, so the pair is always (a, b)
		s := headtohead.NewSession(&script{})
		s.Start(pool("a", "b", "c", "d"))

		s.ChooseWinner("b")
		s.ChooseWinner("b")
		s.ChooseWinner("a")

		convey.Convey("Then rows are ordered by score then wins", func() {
			rows := s.Ranking()
			convey.So(rowIDs(rows), convey.ShouldResemble, []string{"b", "a", "c", "d"})
			convey.So(rows[0].Score, convey.ShouldAlmostEqual, 2.0/3.0)
			convey.So(rows[1].Score, convey.ShouldAlmostEqual, 1.0/3.0)
			convey.So(rows[2].Score, convey.ShouldEqual, 0)
		})
	})

	convey.Convey("Given equal scores with different win counts", t, func() {
		// (a,b) twice, then (b,c) four times
		s := headtohead.NewSession(&script{0, 0.4, 0, 0.4, 0.4, 0.7, 0.4, 0.7, 0.4, 0.7, 0.4, 0.7})
		s.Start(pool("a", "b", "c"))
		for _, winner := range []string{"a", "b", "c", "c", "b", "b"} {
			convey.So(s.ChooseWinner(winner), convey.ShouldBeTrue)
		}

		convey.Convey("Then wins break the tie", func() {
			rows := s.Ranking()
			convey.So(rowIDs(rows), convey.ShouldResemble, []string{"b", "c", "a"})
			for _, r := range rows {
				convey.So(r.Score, convey.ShouldEqual, 0.5)
			}
		})
	})

	convey.Convey("Given a fresh start", t, func() {
		s := headtohead.NewSession(&script{})
		s.Start(pool("x", "a", "b"))

		convey.Convey("Then unscored contestants keep pool order", func() {
			convey.So(rowIDs(s.Ranking()), convey.ShouldResemble, []string{"x", "a", "b"})
		})
	})
}

func TestFinish(t *testing.T) {
	convey.Convey("Given a finished comparison over the unranked pool", t, func() {
		start := model.NewTiers([]string{"S", "A"}, pool("a", "b", "c"))
		s := headtohead.NewSession(&script{})
		s.Start(start[model.Unranked])
		s.ChooseWinner("b")

		convey.Convey("When finishing into S and A", func() {
			next, changed := s.Finish(start, []string{"S", "A"})

			convey.Convey("Then the ranking is dealt round-robin", func() {
				convey.So(changed, convey.ShouldBeTrue)
				convey.So(next["S"], convey.ShouldHaveLength, 2)
				convey.So(next["S"][0].ID, convey.ShouldEqual, "b")
				convey.So(next["S"][1].ID, convey.ShouldEqual, "c")
				convey.So(next["A"], convey.ShouldHaveLength, 1)
				convey.So(next["A"][0].ID, convey.ShouldEqual, "a")
				convey.So(next[model.Unranked], convey.ShouldBeEmpty)
				convey.So(s.State(), convey.ShouldEqual, headtohead.Idle)
			})

			convey.Convey("And the input tiers are untouched", func() {
				convey.So(start[model.Unranked], convey.ShouldHaveLength, 3)
			})
		})

		convey.Convey("When a contestant left the tiers meanwhile", func() {
			trimmed := model.Tiers{"S": {}, "A": {}, model.Unranked: pool("a", "c")}
			next, _ := s.Finish(trimmed, []string{"S", "A"})

			convey.Convey("Then it is skipped, not duplicated", func() {
				convey.So(next.Count(), convey.ShouldEqual, 2)
			})
		})

		convey.Convey("When no bucket names are given", func() {
			next, changed := s.Finish(start, nil)

			convey.Convey("Then nothing moves", func() {
				convey.So(changed, convey.ShouldBeFalse)
				convey.So(cmp.Diff(start, next), convey.ShouldBeEmpty)
			})
		})
	})
}
