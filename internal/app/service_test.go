package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/okian/tierlist/internal/adapters/repository"
	service "github.com/okian/tierlist/internal/app"
	"github.com/okian/tierlist/internal/domain/dataset"
	"github.com/okian/tierlist/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const catalogYAML = `
contestants:
  a: {name: Ada}
  b: {name: Bo}
  c: {name: Cy}
  d: {name: Di}
  e: {name: Ed}
groups:
  - name: Five
    contestants: [a, b, c, d, e]
  - name: One
    contestants: [a]
`

func testCatalog() *dataset.Catalog {
	c, err := dataset.Parse([]byte(catalogYAML))
	if err != nil {
		panic(err)
	}
	return c
}

func newService(opts ...service.Option) *service.Service {
	base := []service.Option{
		service.WithCatalog(testCatalog()),
		service.WithClock(func() time.Time { return time.UnixMilli(1_700_000_000_000) }),
	}
	return service.New(append(base, opts...)...)
}

func ids(list []model.Contestant) []string {
	out := make([]string, len(list))
	for i := range list {
		out[i] = list[i].ID
	}
	return out
}

func seed(v int64) *int64 { return &v }

func TestCreateSession(t *testing.T) {
	convey.Convey("Given a service with a catalog", t, func() {
		ctx := context.Background()
		svc := newService(service.WithMaxSessions(2))

		convey.Convey("When a session is created with defaults", func() {
			st, err := svc.CreateSession(ctx, service.CreateRequest{})

			convey.Convey("Then every contestant of the first group is unranked", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(st.ID, convey.ShouldNotBeEmpty)
				convey.So(st.Group, convey.ShouldEqual, "Five")
				convey.So(st.Theme, convey.ShouldEqual, "survivor")
				convey.So(st.Buckets, convey.ShouldResemble, model.DefaultTierOrder)
				convey.So(ids(st.Tiers[model.Unranked]), convey.ShouldResemble, []string{"a", "b", "c", "d", "e"})
				convey.So(st.Tiers["S"], convey.ShouldBeEmpty)
				convey.So(st.UnrankedRemaining, convey.ShouldEqual, 5)
				convey.So(st.CanUndo, convey.ShouldBeFalse)
				convey.So(st.HeadToHead, convey.ShouldEqual, "idle")
			})

			convey.Convey("Then it is listed and can be fetched", func() {
				list := svc.ListSessions(ctx)
				convey.So(len(list), convey.ShouldEqual, 1)
				convey.So(list[0].Unranked, convey.ShouldEqual, 5)
				got, err := svc.Session(ctx, st.ID)
				convey.So(err, convey.ShouldBeNil)
				convey.So(got.ID, convey.ShouldEqual, st.ID)
			})

			convey.Convey("Then deleting removes it", func() {
				convey.So(svc.DeleteSession(ctx, st.ID), convey.ShouldBeNil)
				_, err := svc.Session(ctx, st.ID)
				convey.So(errors.Is(err, service.ErrSessionNotFound), convey.ShouldBeTrue)
				convey.So(errors.Is(svc.DeleteSession(ctx, st.ID), service.ErrSessionNotFound), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When custom tiers are requested", func() {
			st, err := svc.CreateSession(ctx, service.CreateRequest{Group: "One", Buckets: []string{"Top", "S"}})

			convey.Convey("Then unknown labels are filled in and known ones kept", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(st.Buckets, convey.ShouldResemble, []string{"Top", "S"})
				convey.So(st.TierConfig["Top"].Name, convey.ShouldEqual, "Top")
				convey.So(st.TierConfig["S"].Description, convey.ShouldEqual, "Legendary")
				_, hasA := st.TierConfig["A"]
				convey.So(hasA, convey.ShouldBeFalse)
			})
		})

		convey.Convey("When the request is invalid", func() {
			_, errGroup := svc.CreateSession(ctx, service.CreateRequest{Group: "Nope"})
			_, errTheme := svc.CreateSession(ctx, service.CreateRequest{Theme: "neon"})
			_, errDup := svc.CreateSession(ctx, service.CreateRequest{Buckets: []string{"S", "S"}})
			_, errReserved := svc.CreateSession(ctx, service.CreateRequest{Buckets: []string{model.Unranked}})

			convey.Convey("Then it is rejected with a typed error", func() {
				convey.So(errors.Is(errGroup, service.ErrUnknownGroup), convey.ShouldBeTrue)
				convey.So(errors.Is(errTheme, service.ErrUnknownTheme), convey.ShouldBeTrue)
				convey.So(errors.Is(errDup, service.ErrInvalidBuckets), convey.ShouldBeTrue)
				convey.So(errors.Is(errReserved, service.ErrInvalidBuckets), convey.ShouldBeTrue)
				convey.So(svc.ListSessions(ctx), convey.ShouldBeEmpty)
			})
		})

		convey.Convey("When the session limit is reached", func() {
			_, _ = svc.CreateSession(ctx, service.CreateRequest{})
			_, _ = svc.CreateSession(ctx, service.CreateRequest{})
			_, err := svc.CreateSession(ctx, service.CreateRequest{})

			convey.Convey("Then further sessions are refused", func() {
				convey.So(err, convey.ShouldEqual, service.ErrTooManySessions)
			})
		})

		convey.Convey("When the catalog is replaced", func() {
			next, err := dataset.Parse([]byte("contestants: {z: {}}\ngroups:\n  - name: Zed\n    contestants: [z]\n"))
			convey.So(err, convey.ShouldBeNil)
			svc.SetCatalog(next)
			st, err := svc.CreateSession(ctx, service.CreateRequest{})

			convey.Convey("Then new sessions use it", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(st.Group, convey.ShouldEqual, "Zed")
				convey.So(svc.Groups(ctx), convey.ShouldResemble, []dataset.Summary{{Name: "Zed", Size: 1}})
			})
		})
	})
}

func TestMutationsAndHistory(t *testing.T) {
	convey.Convey("Given a fresh session", t, func() {
		ctx := context.Background()
		svc := newService()
		st, err := svc.CreateSession(ctx, service.CreateRequest{})
		convey.So(err, convey.ShouldBeNil)
		id := st.ID

		convey.Convey("When a contestant is moved", func() {
			st, err := svc.Move(ctx, id, "c", "S")

			convey.Convey("Then the move is applied and undoable", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(st.Changed, convey.ShouldBeTrue)
				convey.So(ids(st.Tiers["S"]), convey.ShouldResemble, []string{"c"})
				convey.So(st.UnrankedRemaining, convey.ShouldEqual, 4)
				convey.So(st.CanUndo, convey.ShouldBeTrue)
				convey.So(st.Stats.Moves, convey.ShouldEqual, 1)
			})

			convey.Convey("Then undo and redo walk history", func() {
				undone, err := svc.Undo(ctx, id)
				convey.So(err, convey.ShouldBeNil)
				convey.So(undone.Tiers["S"], convey.ShouldBeEmpty)
				convey.So(undone.CanRedo, convey.ShouldBeTrue)

				redone, _ := svc.Redo(ctx, id)
				convey.So(ids(redone.Tiers["S"]), convey.ShouldResemble, []string{"c"})
				convey.So(redone.Stats.Undos, convey.ShouldEqual, 1)
				convey.So(redone.Stats.Redos, convey.ShouldEqual, 1)
			})

			convey.Convey("Then a new move after undo drops the redo branch", func() {
				_, _ = svc.Undo(ctx, id)
				st, _ := svc.Move(ctx, id, "a", "A")
				convey.So(st.CanRedo, convey.ShouldBeFalse)
				convey.So(st.Tiers["S"], convey.ShouldBeEmpty)
			})

			convey.Convey("Then moving it to the same tier is a recorded no-op", func() {
				again, err := svc.Move(ctx, id, "c", "S")
				convey.So(err, convey.ShouldBeNil)
				convey.So(again.Changed, convey.ShouldBeFalse)
				convey.So(again.Stats.Noops, convey.ShouldEqual, 1)
				undone, _ := svc.Undo(ctx, id)
				convey.So(undone.CanUndo, convey.ShouldBeFalse)
			})
		})

		convey.Convey("When the target tier does not exist", func() {
			_, err := svc.Move(ctx, id, "a", "Z")
			_, errClear := svc.Clear(ctx, id, "Z")
			_, errReorder := svc.Reorder(ctx, id, "Z", 0, 1)

			convey.Convey("Then the request is rejected", func() {
				convey.So(errors.Is(err, service.ErrUnknownBucket), convey.ShouldBeTrue)
				convey.So(errors.Is(errClear, service.ErrUnknownBucket), convey.ShouldBeTrue)
				convey.So(errors.Is(errReorder, service.ErrUnknownBucket), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the session does not exist", func() {
			_, err := svc.Move(ctx, "missing", "a", "S")
			convey.So(errors.Is(err, service.ErrSessionNotFound), convey.ShouldBeTrue)
		})

		convey.Convey("When a tier is cleared", func() {
			_, _ = svc.Move(ctx, id, "a", "S")
			_, _ = svc.Move(ctx, id, "b", "S")
			st, err := svc.Clear(ctx, id, "S")

			convey.Convey("Then its contestants return to the end of unranked in order", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(st.Tiers["S"], convey.ShouldBeEmpty)
				convey.So(ids(st.Tiers[model.Unranked]), convey.ShouldResemble, []string{"c", "d", "e", "a", "b"})
			})
		})

		convey.Convey("When unranked is reordered", func() {
			st, err := svc.Reorder(ctx, id, model.Unranked, 0, 4)

			convey.Convey("Then only that tier changes", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(ids(st.Tiers[model.Unranked]), convey.ShouldResemble, []string{"b", "c", "d", "e", "a"})
			})
		})

		convey.Convey("When everything is reset", func() {
			_, _ = svc.Move(ctx, id, "a", "S")
			_, _ = svc.Move(ctx, id, "e", "F")
			st, _ := svc.Reset(ctx, id)

			convey.Convey("Then everyone is unranked and the reset is undoable", func() {
				convey.So(st.Changed, convey.ShouldBeTrue)
				convey.So(st.UnrankedRemaining, convey.ShouldEqual, 5)
				convey.So(ids(st.Tiers[model.Unranked]), convey.ShouldResemble, []string{"a", "e", "b", "c", "d"})
				undone, _ := svc.Undo(ctx, id)
				convey.So(ids(undone.Tiers["F"]), convey.ShouldResemble, []string{"e"})
			})

			convey.Convey("Then resetting again is a no-op", func() {
				again, _ := svc.Reset(ctx, id)
				convey.So(again.Changed, convey.ShouldBeFalse)
			})
		})
	})
}

func TestRandomize(t *testing.T) {
	convey.Convey("Given two sessions with the same seed", t, func() {
		ctx := context.Background()
		svc := newService()
		one, _ := svc.CreateSession(ctx, service.CreateRequest{Seed: seed(42)})
		two, _ := svc.CreateSession(ctx, service.CreateRequest{Seed: seed(42)})

		convey.Convey("When both are randomized", func() {
			a, err := svc.Randomize(ctx, one.ID)
			convey.So(err, convey.ShouldBeNil)
			b, _ := svc.Randomize(ctx, two.ID)

			convey.Convey("Then they deal identically and keep every contestant", func() {
				convey.So(cmp.Diff(a.Tiers, b.Tiers), convey.ShouldBeEmpty)
				convey.So(a.Tiers.IDs(), convey.ShouldResemble, []string{"a", "b", "c", "d", "e"})
				convey.So(a.UnrankedRemaining, convey.ShouldEqual, 0)
				for _, bucket := range a.Buckets[:5] {
					convey.So(len(a.Tiers[bucket]), convey.ShouldEqual, 1)
				}
				convey.So(a.Tiers["F"], convey.ShouldBeEmpty)
			})
		})
	})
}

func TestHeadToHead(t *testing.T) {
	convey.Convey("Given a seeded session", t, func() {
		ctx := context.Background()
		svc := newService()
		st, _ := svc.CreateSession(ctx, service.CreateRequest{Seed: seed(7), Buckets: []string{"S", "A"}})
		id := st.ID

		convey.Convey("When no round is active", func() {
			_, errChoose := svc.ChooseWinner(ctx, id, "a")
			_, errSkip := svc.Skip(ctx, id)
			_, errFinish := svc.FinishHeadToHead(ctx, id)
			stopped, errStop := svc.StopHeadToHead(ctx, id)

			convey.Convey("Then comparisons are refused and stop is a no-op", func() {
				convey.So(errChoose, convey.ShouldEqual, service.ErrHeadToHeadInactive)
				convey.So(errSkip, convey.ShouldEqual, service.ErrHeadToHeadInactive)
				convey.So(errors.Is(errFinish, service.ErrHeadToHeadInactive), convey.ShouldBeTrue)
				convey.So(errStop, convey.ShouldBeNil)
				convey.So(stopped.Changed, convey.ShouldBeFalse)
			})
		})

		convey.Convey("When fewer than two contestants are unranked", func() {
			for _, c := range []string{"a", "b", "c", "d"} {
				_, _ = svc.Move(ctx, id, c, "S")
			}
			_, err := svc.StartHeadToHead(ctx, id)
			convey.So(errors.Is(err, service.ErrNotEnoughContestants), convey.ShouldBeTrue)
		})

		convey.Convey("When a round is played and finished", func() {
			h, err := svc.StartHeadToHead(ctx, id)
			convey.So(err, convey.ShouldBeNil)
			convey.So(h.State, convey.ShouldEqual, "active")
			convey.So(h.Pair, convey.ShouldNotBeNil)
			convey.So(h.Pair.Left.ID, convey.ShouldNotEqual, h.Pair.Right.ID)

			ignored, err := svc.ChooseWinner(ctx, id, "nobody")
			convey.So(err, convey.ShouldBeNil)
			convey.So(ignored.Changed, convey.ShouldBeFalse)
			convey.So(ignored.Comparisons, convey.ShouldEqual, 0)

			for i := 0; i < 6; i++ {
				cur, _ := svc.HeadToHead(ctx, id)
				_, _ = svc.ChooseWinner(ctx, id, cur.Pair.Left.ID)
			}
			skipped, _ := svc.Skip(ctx, id)
			convey.So(skipped.Comparisons, convey.ShouldEqual, 7)

			total := 0
			for _, row := range skipped.Ranking {
				total += row.Wins
			}
			convey.So(total, convey.ShouldEqual, 6)

			st, err := svc.FinishHeadToHead(ctx, id)

			convey.Convey("Then the ranking is dealt into tiers as one undoable step", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(st.Changed, convey.ShouldBeTrue)
				convey.So(st.HeadToHead, convey.ShouldEqual, "idle")
				convey.So(st.Tiers.IDs(), convey.ShouldResemble, []string{"a", "b", "c", "d", "e"})
				convey.So(len(st.Tiers["S"])+len(st.Tiers["A"]), convey.ShouldEqual, 5)
				convey.So(ids(st.Tiers["S"])[0], convey.ShouldEqual, skipped.Ranking[0].Contestant.ID)

				undone, _ := svc.Undo(ctx, id)
				convey.So(undone.UnrankedRemaining, convey.ShouldEqual, 5)
			})
		})
	})
}

func TestPersistence(t *testing.T) {
	convey.Convey("Given a service backed by a memory store", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore()
		svc := newService(service.WithStore(store))
		st, _ := svc.CreateSession(ctx, service.CreateRequest{})
		id := st.ID

		convey.Convey("When nothing was saved", func() {
			_, err := svc.Load(ctx, id)
			convey.So(errors.Is(err, repository.ErrNotFound), convey.ShouldBeTrue)
		})

		convey.Convey("When a ranking is saved, changed and loaded", func() {
			_, _ = svc.Move(ctx, id, "a", "S")
			doc, err := svc.Save(ctx, id)
			convey.So(err, convey.ShouldBeNil)
			convey.So(doc.Version, convey.ShouldEqual, model.SavedRankingVersion)
			convey.So(doc.SavedAt, convey.ShouldEqual, int64(1_700_000_000_000))

			_, _ = svc.Move(ctx, id, "b", "A")
			loaded, err := svc.Load(ctx, id)

			convey.Convey("Then the saved tiers come back with a fresh history", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(ids(loaded.Tiers["S"]), convey.ShouldResemble, []string{"a"})
				convey.So(loaded.Tiers["A"], convey.ShouldBeEmpty)
				convey.So(loaded.CanUndo, convey.ShouldBeFalse)
				convey.So(loaded.CanRedo, convey.ShouldBeFalse)
			})
		})

		convey.Convey("When a ranking is exported and imported into another session", func() {
			_, _ = svc.Move(ctx, id, "d", "B")
			doc, err := svc.Export(ctx, id)
			convey.So(err, convey.ShouldBeNil)
			raw, _ := json.Marshal(doc)

			other, _ := svc.CreateSession(ctx, service.CreateRequest{Group: "One"})
			imported, err := svc.Import(ctx, other.ID, raw)

			convey.Convey("Then the other session holds the same tiers", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(imported.Group, convey.ShouldEqual, "Five")
				for bucket, list := range doc.Tiers {
					convey.So(ids(imported.Tiers[bucket]), convey.ShouldResemble, ids(list))
				}
				convey.So(ids(imported.Tiers["B"]), convey.ShouldResemble, []string{"d"})
				convey.So(imported.CanUndo, convey.ShouldBeFalse)
			})
		})

		convey.Convey("When an import carries a duplicate or a non-list tier", func() {
			dup := []byte(`{"version":1,"tiers":{"S":[{"id":"a"}],"A":[{"id":"a"}]}}`)
			notList := []byte(`{"tiers":{"S":{"id":"a"}}}`)
			future := []byte(`{"version":9,"tiers":{}}`)

			_, errDup := svc.Import(ctx, id, dup)
			_, errList := svc.Import(ctx, id, notList)
			_, errVersion := svc.Import(ctx, id, future)
			_, errMissing := svc.Import(ctx, id, []byte(`{"version":1}`))
			_, errBlankID := svc.Import(ctx, id, []byte(`{"version":1,"tiers":{"S":[{"id":""}]}}`))
			_, errBlankTier := svc.Import(ctx, id, []byte(`{"version":1,"tiers":{"":[{"id":"a"}]}}`))

			convey.Convey("Then it is rejected and the session is unchanged", func() {
				for _, err := range []error{errDup, errList, errVersion, errMissing, errBlankID, errBlankTier} {
					convey.So(errors.Is(err, service.ErrInvalidSnapshot), convey.ShouldBeTrue)
				}
				cur, _ := svc.Session(ctx, id)
				convey.So(cur.UnrankedRemaining, convey.ShouldEqual, 5)
			})
		})

		convey.Convey("When an import adds an unknown tier", func() {
			raw := []byte(`{"tiers":{"Bench":[{"id":"q","name":"Q"}],"unranked":[]}}`)
			st, err := svc.Import(ctx, id, raw)

			convey.Convey("Then the tier is adopted and missing ones are created", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(st.Buckets[len(st.Buckets)-1], convey.ShouldEqual, "Bench")
				convey.So(st.Tiers["S"], convey.ShouldNotBeNil)
				convey.So(st.TierConfig["Bench"].Name, convey.ShouldEqual, "Bench")
			})
		})
	})

	convey.Convey("Given a service without a store", t, func() {
		ctx := context.Background()
		svc := newService()
		st, _ := svc.CreateSession(ctx, service.CreateRequest{})

		_, errSave := svc.Save(ctx, st.ID)
		_, errLoad := svc.Load(ctx, st.ID)
		convey.So(errSave, convey.ShouldEqual, service.ErrNoStore)
		convey.So(errLoad, convey.ShouldEqual, service.ErrNoStore)
	})
}

func TestAutosave(t *testing.T) {
	convey.Convey("Given a started service with autosave", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore()
		svc := newService(service.WithStore(store), service.WithAutosave(true), service.WithWorkerCount(1))
		convey.So(svc.Start(ctx), convey.ShouldBeNil)

		st, _ := svc.CreateSession(ctx, service.CreateRequest{})
		_, _ = svc.Move(ctx, st.ID, "b", "A")

		convey.Convey("When the service stops", func() {
			stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			convey.So(svc.Stop(stopCtx), convey.ShouldBeNil)

			convey.Convey("Then the mutation was persisted", func() {
				doc, err := store.Get(ctx, st.ID)
				convey.So(err, convey.ShouldBeNil)
				convey.So(ids(doc.Tiers["A"]), convey.ShouldResemble, []string{"b"})
			})
		})
	})
}

func TestAutosaveDrain(t *testing.T) {
	convey.Convey("Given autosave started under a context that is later cancelled", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore()
		svc := newService(service.WithStore(store), service.WithAutosave(true), service.WithWorkerCount(4))
		startCtx, cancelStart := context.WithCancel(ctx)
		convey.So(svc.Start(startCtx), convey.ShouldBeNil)

		st, _ := svc.CreateSession(ctx, service.CreateRequest{})
		order := []string{"a", "b", "c", "d", "e"}
		for _, id := range order {
			_, err := svc.Move(ctx, st.ID, id, "S")
			convey.So(err, convey.ShouldBeNil)
		}
		cancelStart()
		_, _ = svc.Move(ctx, st.ID, "a", "F")

		convey.Convey("When the service stops", func() {
			stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			convey.So(svc.Stop(stopCtx), convey.ShouldBeNil)

			convey.Convey("Then the latest ranking is in the store", func() {
				doc, err := store.Get(ctx, st.ID)
				convey.So(err, convey.ShouldBeNil)
				convey.So(doc.Revision, convey.ShouldEqual, 6)
				convey.So(ids(doc.Tiers["S"]), convey.ShouldResemble, []string{"b", "c", "d", "e"})
				convey.So(ids(doc.Tiers["F"]), convey.ShouldResemble, []string{"a"})
			})
		})
	})
}

func TestRevisions(t *testing.T) {
	convey.Convey("Given a session backed by a store", t, func() {
		ctx := context.Background()
		svc := newService(service.WithStore(repository.NewMemoryStore()))
		st, _ := svc.CreateSession(ctx, service.CreateRequest{})

		convey.Convey("Then every applied change raises the saved revision", func() {
			doc, _ := svc.Save(ctx, st.ID)
			convey.So(doc.Revision, convey.ShouldEqual, 0)

			_, _ = svc.Move(ctx, st.ID, "a", "S")
			_, _ = svc.Move(ctx, st.ID, "a", "S") // no-op
			doc, _ = svc.Save(ctx, st.ID)
			convey.So(doc.Revision, convey.ShouldEqual, 1)

			_, _ = svc.Undo(ctx, st.ID)
			doc, _ = svc.Save(ctx, st.ID)
			convey.So(doc.Revision, convey.ShouldEqual, 2)
		})

		convey.Convey("Then loading never moves the revision backwards", func() {
			_, _ = svc.Move(ctx, st.ID, "a", "S")
			_, _ = svc.Move(ctx, st.ID, "b", "S")
			_, _ = svc.Save(ctx, st.ID)
			_, err := svc.Load(ctx, st.ID)
			convey.So(err, convey.ShouldBeNil)
			doc, _ := svc.Export(ctx, st.ID)
			convey.So(doc.Revision, convey.ShouldEqual, 3)
		})
	})
}

func TestIdempotencyKeys(t *testing.T) {
	convey.Convey("Given a service", t, func() {
		ctx := context.Background()
		svc := newService()

		convey.So(svc.SeenAndRecord(ctx, "s1", "k"), convey.ShouldBeFalse)
		convey.So(svc.SeenAndRecord(ctx, "s1", "k"), convey.ShouldBeTrue)
		convey.So(svc.SeenAndRecord(ctx, "s2", "k"), convey.ShouldBeFalse)

		svc.Unrecord(ctx, "s1", "k")
		convey.So(svc.SeenAndRecord(ctx, "s1", "k"), convey.ShouldBeFalse)

		stats := svc.GetStats()
		convey.So(stats["dedupeEntries"], convey.ShouldEqual, int64(2))
		convey.So(stats["groups"], convey.ShouldEqual, 2)
	})
}
