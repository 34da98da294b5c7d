package web

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/nandira/taksir/internal/domain/estimate"
	"github.com/nandira/taksir/internal/domain/model"
	"github.com/nandira/taksir/pkg/logger"
)

func TestMain(m *testing.M) {
	_ = logger.Init()
	os.Exit(m.Run())
}

type mockDeps struct {
	results     []model.PredictionResult
	warning     string
	resultsErr  error
	estimated   []model.RawLineItem
	estimateErr error
	deleted     []int
	cleared     bool
	info        model.ProjectInfo
	lastToken   string
}

func (m *mockDeps) Results(_ context.Context, token string) ([]model.PredictionResult, string, error) {
	m.lastToken = token
	return m.results, m.warning, m.resultsErr
}

func (m *mockDeps) Estimate(_ context.Context, token string, raw model.RawLineItem) (model.PredictionResult, error) {
	m.lastToken = token
	if m.estimateErr != nil {
		return model.PredictionResult{}, m.estimateErr
	}
	m.estimated = append(m.estimated, raw)
	return model.PredictionResult{Prediction: 480000}, nil
}

func (m *mockDeps) DeleteAt(_ context.Context, token string, i int) error {
	m.lastToken = token
	m.deleted = append(m.deleted, i)
	return nil
}

func (m *mockDeps) ClearAll(_ context.Context, token string) error {
	m.lastToken = token
	m.cleared = true
	return nil
}

func (m *mockDeps) ProjectInfo(_ context.Context, token string) (model.ProjectInfo, error) {
	m.lastToken = token
	return m.info, nil
}

func (m *mockDeps) SaveProjectInfo(_ context.Context, token string, info model.ProjectInfo) error {
	m.lastToken = token
	m.info = info
	return nil
}

type mockStats struct{}

func (mockStats) GetStats() map[string]interface{} {
	return map[string]interface{}{"started": true}
}

func newTestMux(deps *mockDeps) *http.ServeMux {
	server := NewServer(deps, mockStats{})
	mux := http.NewServeMux()
	server.Register(context.Background(), mux)
	return mux
}

func postForm(mux *http.ServeMux, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func TestIndexPage(t *testing.T) {
	Convey("Given the registered routes", t, func() {
		deps := &mockDeps{}
		mux := newTestMux(deps)

		Convey("When requesting the index page", func() {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it renders the entry form and mints a session", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldContainSubstring, "text/html")
				body := w.Body.String()
				So(body, ShouldContainSubstring, `action="/estimate"`)
				So(body, ShouldContainSubstring, `action="/project-info"`)
				So(body, ShouldContainSubstring, "Belum ada hasil prediksi")

				cookies := w.Result().Cookies()
				So(cookies, ShouldHaveLength, 1)
				So(cookies[0].Name, ShouldEqual, "taksir_session")
				So(cookies[0].Value, ShouldNotBeEmpty)
			})
		})

		Convey("When the session already has results", func() {
			deps.results = []model.PredictionResult{
				{
					LineItem: model.LineItem{
						City: "jakarta", WorkDescription: "kolom beton",
						Volume: 10, Unit: "m3", UnitPrice: 120000,
					},
					Prediction: 1234567,
					Category:   "struktur",
					Date:       "2025-01-02",
				},
			}
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then the table shows the row, total, and delete link", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				body := w.Body.String()
				So(body, ShouldContainSubstring, "jakarta")
				So(body, ShouldContainSubstring, "Rp 1.234.567")
				So(body, ShouldContainSubstring, `href="/delete/0"`)
				So(body, ShouldContainSubstring, `action="/clear"`)
			})
		})

		Convey("When loading the ledger raises a warning", func() {
			deps.warning = "Gagal memuat dari Google Sheets: quota exceeded"
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then the page still renders and shows the warning", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				body := w.Body.String()
				So(body, ShouldContainSubstring, "Gagal memuat dari Google Sheets")
				So(body, ShouldContainSubstring, "Belum ada hasil prediksi")
			})
		})

		Convey("When a session cookie is already set", func() {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.AddCookie(&http.Cookie{Name: "taksir_session", Value: "existing-token"})
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then the existing token is reused", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.lastToken, ShouldEqual, "existing-token")
				So(w.Result().Cookies(), ShouldBeEmpty)
			})
		})

		Convey("When requesting an unknown path", func() {
			req := httptest.NewRequest(http.MethodGet, "/unknown", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestEstimateHandler(t *testing.T) {
	Convey("Given the registered routes", t, func() {
		deps := &mockDeps{}
		mux := newTestMux(deps)

		form := url.Values{
			"city":              {"Jakarta"},
			"location":          {"Tengah Kota"},
			"construction_type": {"Gedung"},
			"work_type":         {"Struktur"},
			"work_description":  {"Kolom Beton"},
			"volume":            {"10"},
			"unit":              {"m3"},
			"unit_price":        {"120000"},
		}

		Convey("When posting a valid form", func() {
			w := postForm(mux, "/estimate", form)

			Convey("Then it redirects back to the page", func() {
				So(w.Code, ShouldEqual, http.StatusSeeOther)
				So(w.Header().Get("Location"), ShouldEqual, "/")
				So(deps.estimated, ShouldHaveLength, 1)
				So(deps.estimated[0].City, ShouldEqual, "Jakarta")
				So(deps.estimated[0].UnitPrice, ShouldEqual, "120000")
			})
		})

		Convey("When the pipeline rejects the form", func() {
			deps.estimateErr = fmt.Errorf("%w: missing volume", estimate.ErrValidation)
			w := postForm(mux, "/estimate", form)

			Convey("Then the page re-renders with the error inline", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(w.Body.String(), ShouldContainSubstring, "missing volume")
			})
		})

		Convey("When the model fails", func() {
			deps.estimateErr = fmt.Errorf("%w: weights mismatch", estimate.ErrModel)
			w := postForm(mux, "/estimate", form)

			So(w.Code, ShouldEqual, http.StatusInternalServerError)
			So(w.Body.String(), ShouldContainSubstring, "prediksi gagal")
		})

		Convey("When using the wrong method", func() {
			req := httptest.NewRequest(http.MethodGet, "/estimate", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestLedgerHandlers(t *testing.T) {
	Convey("Given the registered routes", t, func() {
		deps := &mockDeps{}
		mux := newTestMux(deps)

		Convey("When deleting a row by index", func() {
			req := httptest.NewRequest(http.MethodGet, "/delete/2", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it deletes and redirects", func() {
				So(w.Code, ShouldEqual, http.StatusSeeOther)
				So(deps.deleted, ShouldResemble, []int{2})
			})
		})

		Convey("When the index is not numeric", func() {
			req := httptest.NewRequest(http.MethodGet, "/delete/abc", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusNotFound)
			So(deps.deleted, ShouldBeEmpty)
		})

		Convey("When clearing all results", func() {
			w := postForm(mux, "/clear", url.Values{})

			So(w.Code, ShouldEqual, http.StatusSeeOther)
			So(deps.cleared, ShouldBeTrue)
		})
	})
}

func TestProjectInfoHandler(t *testing.T) {
	Convey("Given the registered routes", t, func() {
		deps := &mockDeps{}
		mux := newTestMux(deps)

		Convey("When saving project info", func() {
			w := postForm(mux, "/project-info", url.Values{
				"sub_activity":     {"Pembangunan Gedung"},
				"work_name":        {"Renovasi Kantor"},
				"project_location": {"Jakarta Selatan"},
			})

			Convey("Then it stores the info and redirects", func() {
				So(w.Code, ShouldEqual, http.StatusSeeOther)
				So(deps.info.SubActivity, ShouldEqual, "Pembangunan Gedung")
				So(deps.info.WorkName, ShouldEqual, "Renovasi Kantor")
				So(deps.info.ProjectLocation, ShouldEqual, "Jakarta Selatan")
			})

			Convey("And the index page shows it back", func() {
				req := httptest.NewRequest(http.MethodGet, "/", nil)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)
				So(w.Body.String(), ShouldContainSubstring, "Renovasi Kantor")
			})
		})
	})
}

func TestOperationalEndpoints(t *testing.T) {
	Convey("Given the registered routes", t, func() {
		mux := newTestMux(&mockDeps{})

		Convey("Then the metrics endpoint responds", func() {
			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("Then the stats endpoint serves JSON", func() {
			req := httptest.NewRequest(http.MethodGet, "/stats", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldContainSubstring, "application/json")
			So(w.Body.String(), ShouldContainSubstring, "started")
		})
	})
}

func TestRupiah(t *testing.T) {
	Convey("Given the price formatter", t, func() {
		So(rupiah(0), ShouldEqual, "Rp 0")
		So(rupiah(480000), ShouldEqual, "Rp 480.000")
		So(rupiah(1234567), ShouldEqual, "Rp 1.234.567")
		So(rupiah(100_000_000), ShouldEqual, "Rp 100.000.000")
	})
}
