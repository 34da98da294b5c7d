package session_test

import (
	"context"
	"path/filepath"
	"testing"

	session "github.com/nandira/taksir/internal/adapters/session"
	"github.com/nandira/taksir/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func openStore(t *testing.T) *session.Store {
	t.Helper()
	store, err := session.Open(filepath.Join(t.TempDir(), "sessions.db"))
	So(err, ShouldBeNil)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func result(city string) model.PredictionResult {
	return model.PredictionResult{
		LineItem: model.LineItem{
			City: city, Location: "selatan", ConstructionType: "renovasi",
			WorkType: "pengecatan", WorkDescription: "cat dinding",
			Volume: 10, Unit: "m2", UnitPrice: 50000,
		},
		Prediction: 480000,
		Category:   "pengecatan",
		Date:       "2026-08-27",
	}
}

func TestLedgerLifecycle(t *testing.T) {
	Convey("Given a session store", t, func() {
		store := openStore(t)
		ctx := context.Background()
		token := "tok-1"

		Convey("When the session was never written", func() {
			results, err := store.Results(ctx, token)

			Convey("Then the ledger is empty, not an error", func() {
				So(err, ShouldBeNil)
				So(results, ShouldBeEmpty)
			})
		})

		Convey("When appending three results", func() {
			So(store.Append(ctx, token, result("jakarta")), ShouldBeNil)
			So(store.Append(ctx, token, result("bandung")), ShouldBeNil)
			So(store.Append(ctx, token, result("surabaya")), ShouldBeNil)

			Convey("Then they come back in insertion order", func() {
				results, err := store.Results(ctx, token)
				So(err, ShouldBeNil)
				So(results, ShouldHaveLength, 3)
				So(results[0].City, ShouldEqual, "jakarta")
				So(results[2].City, ShouldEqual, "surabaya")
			})

			Convey("And deleting index 1 keeps the 1st and 3rd in order", func() {
				So(store.DeleteAt(ctx, token, 1), ShouldBeNil)
				results, err := store.Results(ctx, token)
				So(err, ShouldBeNil)
				So(results, ShouldHaveLength, 2)
				So(results[0].City, ShouldEqual, "jakarta")
				So(results[1].City, ShouldEqual, "surabaya")
			})

			Convey("And an out-of-range delete leaves the ledger unchanged", func() {
				So(store.DeleteAt(ctx, token, 3), ShouldBeNil)
				So(store.DeleteAt(ctx, token, -1), ShouldBeNil)
				results, err := store.Results(ctx, token)
				So(err, ShouldBeNil)
				So(results, ShouldHaveLength, 3)
			})

			Convey("And clearing empties the ledger", func() {
				So(store.Clear(ctx, token), ShouldBeNil)
				results, err := store.Results(ctx, token)
				So(err, ShouldBeNil)
				So(results, ShouldBeEmpty)
			})
		})

		Convey("When seeding with Replace", func() {
			seed := []model.PredictionResult{result("jakarta"), result("medan")}
			So(store.Replace(ctx, token, seed), ShouldBeNil)

			results, err := store.Results(ctx, token)
			So(err, ShouldBeNil)
			So(results, ShouldHaveLength, 2)
			So(results[1].City, ShouldEqual, "medan")
		})

		Convey("When two tokens write independently", func() {
			So(store.Append(ctx, "tok-a", result("jakarta")), ShouldBeNil)
			So(store.Append(ctx, "tok-b", result("bandung")), ShouldBeNil)

			Convey("Then ledgers stay isolated per session", func() {
				a, err := store.Results(ctx, "tok-a")
				So(err, ShouldBeNil)
				b, err := store.Results(ctx, "tok-b")
				So(err, ShouldBeNil)
				So(a, ShouldHaveLength, 1)
				So(b, ShouldHaveLength, 1)
				So(a[0].City, ShouldEqual, "jakarta")
				So(b[0].City, ShouldEqual, "bandung")
			})

			Convey("Then the store counts both sessions", func() {
				n, err := store.Count(ctx)
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 2)
			})
		})
	})
}

func TestProjectInfo(t *testing.T) {
	Convey("Given a session store", t, func() {
		store := openStore(t)
		ctx := context.Background()

		Convey("When no project info was saved", func() {
			info, err := store.ProjectInfo(ctx, "tok")
			So(err, ShouldBeNil)
			So(info, ShouldResemble, model.ProjectInfo{})
		})

		Convey("When saving project info", func() {
			info := model.ProjectInfo{
				SubActivity:     "rehabilitasi gedung",
				WorkName:        "pengecatan ulang",
				ProjectLocation: "jakarta selatan",
			}
			So(store.SaveProjectInfo(ctx, "tok", info), ShouldBeNil)

			Convey("Then it round-trips", func() {
				got, err := store.ProjectInfo(ctx, "tok")
				So(err, ShouldBeNil)
				So(got, ShouldResemble, info)
			})

			Convey("And it does not disturb the ledger", func() {
				results, err := store.Results(ctx, "tok")
				So(err, ShouldBeNil)
				So(results, ShouldBeEmpty)
			})
		})
	})
}
