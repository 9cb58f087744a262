package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/okian/dojo/internal/adapters/http/api"
	"github.com/okian/dojo/internal/adapters/repository/memstore"
	service "github.com/okian/dojo/internal/app"
	"github.com/okian/dojo/internal/domain/model"
	"github.com/okian/dojo/internal/domain/rank"
	"github.com/okian/dojo/internal/domain/types"
	"github.com/okian/dojo/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

var now = time.Date(2026, time.October, 17, 12, 0, 0, 0, time.UTC)

func born(year int) *time.Time {
	t := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return &t
}

func ptr(v int64) *int64 { return &v }

// newRouter serves a real service over an in-memory roster: competitors 1
// and 2 pair, official 14 is competitor 1.
func newRouter() http.Handler {
	store := memstore.New(rank.DefaultThresholds())
	store.PutEvent(model.Event{ID: 1, Name: "Autumn Cup", Date: time.Date(2026, time.November, 1, 0, 0, 0, 0, time.UTC)})
	store.PutCompetitor(model.Competitor{ID: 1, Name: "A", Rank: rank.Yellow, WeightKg: 60, DateOfBirth: born(2006), Status: model.CompetitorActive})
	store.PutCompetitor(model.Competitor{ID: 2, Name: "B", Rank: rank.Yellow, WeightKg: 62, DateOfBirth: born(2005), Status: model.CompetitorActive})
	for i := int64(1); i <= 2; i++ {
		store.PutRegistration(model.Registration{ID: i, EventID: 1, CompetitorID: i, Status: model.RegistrationRegistered, RegisteredAt: now})
	}
	for _, id := range []int64{11, 12, 13} {
		store.PutOfficial(model.Official{ID: id, Name: "judge", Certification: model.CertificationNational, Active: true})
	}
	store.PutOfficial(model.Official{ID: 14, Name: "A as judge", Certification: model.CertificationRegional, Active: true, CompetitorID: ptr(1)})

	svc := service.New(store, service.WithClock(func() time.Time { return now }))
	return api.NewServer(svc).Handler(context.Background())
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

type apiError struct {
	Code    string  `json:"code"`
	Message string  `json:"message"`
	IDs     []int64 `json:"ids"`
}

func decode[T any](w *httptest.ResponseRecorder) T {
	var v T
	So(json.Unmarshal(w.Body.Bytes(), &v), ShouldBeNil)
	return v
}

// book confirms 1 vs 2 and seats officials 11 to 13, returning the bout id.
func book(h http.Handler) int64 {
	w := do(h, http.MethodPost, "/events/1/bouts", `{"selections":[{"competitor_a":1,"competitor_b":2}]}`)
	So(w.Code, ShouldEqual, http.StatusCreated)
	bouts := decode[[]types.Bout](w)
	So(bouts, ShouldHaveLength, 1)
	id := bouts[0].ID
	w = do(h, http.MethodPut, fmt.Sprintf("/bouts/%d/officials", id), `{"official_ids":[11,12,13]}`)
	So(w.Code, ShouldEqual, http.StatusOK)
	return id
}

func TestAPI_Health(t *testing.T) {
	Convey("Given the API router", t, func() {
		h := newRouter()

		Convey("When GET /healthz is called", func() {
			w := do(h, http.MethodGet, "/healthz", "")

			Convey("Then it reports ok as JSON", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldContainSubstring, "application/json")
				So(decode[map[string]string](w)["status"], ShouldEqual, "ok")
			})
		})

		Convey("When GET /metrics is called", func() {
			w := do(h, http.MethodGet, "/metrics", "")

			Convey("Then the Prometheus registry is served", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldContainSubstring, "text/plain")
			})
		})

		Convey("When GET /stats is called", func() {
			w := do(h, http.MethodGet, "/stats", "")

			Convey("Then no submission is in flight", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(decode[map[string]int64](w)["submissions_in_flight"], ShouldEqual, 0)
			})
		})
	})
}

func TestAPI_Matches(t *testing.T) {
	Convey("Given two compatible competitors", t, func() {
		h := newRouter()

		Convey("When proposals are requested", func() {
			w := do(h, http.MethodGet, "/events/1/proposals", "")

			Convey("Then one pair is returned with weight classes", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				pairs := decode[[]types.Proposal](w)
				So(pairs, ShouldHaveLength, 1)
				So(pairs[0].A.ID, ShouldEqual, 1)
				So(pairs[0].B.ID, ShouldEqual, 2)
				So(pairs[0].A.WeightClass, ShouldEqual, model.Lightweight)
				So(pairs[0].WeightDiff, ShouldEqual, 2)
			})
		})

		Convey("When the pair is confirmed twice", func() {
			book(h)
			w := do(h, http.MethodPost, "/events/1/bouts", `{"selections":[{"competitor_a":1,"competitor_b":2}]}`)

			Convey("Then the second batch is a consistency failure", func() {
				So(w.Code, ShouldEqual, http.StatusConflict)
				e := decode[apiError](w)
				So(e.Code, ShouldEqual, "consistency_failed")
				So(e.IDs, ShouldResemble, []int64{1, 2})
			})
		})

		Convey("When an unknown event is addressed", func() {
			w := do(h, http.MethodGet, "/events/99/proposals", "")

			Convey("Then 404 is returned", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When the event id is not a number", func() {
			w := do(h, http.MethodGet, "/events/abc/proposals", "")

			Convey("Then 400 is returned", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decode[apiError](w).Code, ShouldEqual, "bad_request")
			})
		})

		Convey("When the confirm body is malformed", func() {
			w := do(h, http.MethodPost, "/events/1/bouts", `{"picks":`)

			Convey("Then 400 is returned", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})
	})
}

func TestAPI_Officials(t *testing.T) {
	Convey("Given a confirmed bout", t, func() {
		h := newRouter()
		w := do(h, http.MethodPost, "/events/1/bouts", `{"selections":[{"competitor_a":1,"competitor_b":2}]}`)
		So(w.Code, ShouldEqual, http.StatusCreated)
		boutID := decode[[]types.Bout](w)[0].ID
		path := fmt.Sprintf("/bouts/%d/officials", boutID)

		Convey("When a competitor-official's eligibility is checked", func() {
			w := do(h, http.MethodGet, "/events/1/officials/14/eligibility", "")

			Convey("Then they cannot judge the event", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(decode[types.Eligibility](w).CanAssign, ShouldBeFalse)
			})
		})

		Convey("When only two officials are sent", func() {
			w := do(h, http.MethodPut, path, `{"official_ids":[11,12]}`)

			Convey("Then the panel is rejected as invalid", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decode[apiError](w).Code, ShouldEqual, "validation_failed")
			})
		})

		Convey("When the panel contains a conflicted official", func() {
			w := do(h, http.MethodPut, path, `{"official_ids":[11,12,14]}`)

			Convey("Then 409 names the official", func() {
				So(w.Code, ShouldEqual, http.StatusConflict)
				So(decode[apiError](w).IDs, ShouldResemble, []int64{14})
			})
		})

		Convey("When a valid panel is sent", func() {
			w := do(h, http.MethodPut, path, `{"official_ids":[11,12,13]}`)

			Convey("Then three assignments are returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(decode[[]types.Assignment](w), ShouldHaveLength, 3)
			})
		})
	})
}

func TestAPI_Results(t *testing.T) {
	Convey("Given a bout with a full panel", t, func() {
		h := newRouter()
		boutID := book(h)
		path := fmt.Sprintf("/bouts/%d/result", boutID)

		Convey("When an official submits a win for competitor 1", func() {
			w := do(h, http.MethodPost, path, `{"official_id":11,"winner_id":1,"score_a":3,"score_b":1}`)

			Convey("Then the result is locked and points are credited", func() {
				So(w.Code, ShouldEqual, http.StatusCreated)
				out := decode[types.RecordedResult](w)
				So(out.Result.Locked, ShouldBeTrue)
				So(out.Bout.Status, ShouldEqual, "completed")
				So(out.Points, ShouldHaveLength, 2)
				totals := map[int64]int{}
				for _, p := range out.Points {
					totals[p.CompetitorID] = p.TotalPoints
				}
				So(totals[1], ShouldEqual, 30)
				So(totals[2], ShouldEqual, 10)
			})

			Convey("And the all-time board ranks the winner first", func() {
				w := do(h, http.MethodGet, "/leaderboards/all_time", "")
				So(w.Code, ShouldEqual, http.StatusOK)
				lb := decode[types.Leaderboard](w)
				So(lb.Entries, ShouldHaveLength, 2)
				So(lb.Entries[0].CompetitorID, ShouldEqual, 1)
				So(lb.Entries[0].Position, ShouldEqual, 1)
			})

			Convey("And a second submission is a conflict", func() {
				w := do(h, http.MethodPost, path, `{"official_id":12,"winner_id":2,"score_a":0,"score_b":2}`)
				So(w.Code, ShouldEqual, http.StatusConflict)
			})
		})

		Convey("When the winner is not in the bout", func() {
			w := do(h, http.MethodPost, path, `{"official_id":11,"winner_id":7,"score_a":3,"score_b":1}`)

			Convey("Then 400 is returned", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the bout does not exist", func() {
			w := do(h, http.MethodPost, "/bouts/999/result", `{"official_id":11,"winner_id":1}`)

			Convey("Then 404 is returned", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestAPI_Promotions(t *testing.T) {
	Convey("Given a yellow belt", t, func() {
		h := newRouter()

		Convey("When an admin promotes them to green", func() {
			w := do(h, http.MethodPost, "/competitors/1/promotions", `{"rank":"green","actor":"sensei","note":"grading"}`)

			Convey("Then the override is recorded", func() {
				So(w.Code, ShouldEqual, http.StatusCreated)
				p := decode[types.Promotion](w)
				So(p.FromRank, ShouldEqual, "yellow")
				So(p.ToRank, ShouldEqual, "green")
				So(p.Trigger, ShouldEqual, "admin_override")
			})

			Convey("And it appears in the audit trail", func() {
				w := do(h, http.MethodGet, "/promotions?competitor_id=1", "")
				So(w.Code, ShouldEqual, http.StatusOK)
				So(decode[[]types.Promotion](w), ShouldHaveLength, 1)
			})
		})

		Convey("When the target rank is their current rank", func() {
			w := do(h, http.MethodPost, "/competitors/1/promotions", `{"rank":"yellow","actor":"sensei"}`)

			Convey("Then 400 is returned", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When no actor is given", func() {
			w := do(h, http.MethodPost, "/competitors/1/promotions", `{"rank":"green"}`)

			Convey("Then the override is recorded without one", func() {
				So(w.Code, ShouldEqual, http.StatusCreated)
				p := decode[types.Promotion](w)
				So(p.ToRank, ShouldEqual, "green")
				So(p.Actor, ShouldBeEmpty)
			})
		})

		Convey("When the audit trail of an unknown competitor is requested", func() {
			w := do(h, http.MethodGet, "/promotions?competitor_id=99", "")

			Convey("Then 404 is returned", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestAPI_Leaderboards(t *testing.T) {
	Convey("Given the API router", t, func() {
		h := newRouter()

		Convey("When a monthly board is rebuilt", func() {
			w := do(h, http.MethodPost, "/leaderboards/monthly/rebuild?year=2026&month=10", "")

			Convey("Then the period is echoed back", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				lb := decode[types.Leaderboard](w)
				So(lb.Timeframe, ShouldEqual, "monthly")
				So(lb.Month, ShouldEqual, 10)
			})
		})

		Convey("When a monthly board is requested without a month", func() {
			w := do(h, http.MethodGet, "/leaderboards/monthly?year=2026", "")

			Convey("Then 400 is returned", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the timeframe is unknown", func() {
			w := do(h, http.MethodGet, "/leaderboards/weekly", "")

			Convey("Then 400 is returned", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decode[apiError](w).Code, ShouldEqual, "bad_request")
			})
		})
	})
}
