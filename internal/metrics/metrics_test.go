package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/sakif/kudos-board/internal/model"
)

func TestKudoCreated_CountsPerCategory(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.KudoCreated(model.CategoryTeamwork)
	c.KudoCreated(model.CategoryTeamwork)
	c.KudoCreated(model.CategoryHelpful)

	if got := testutil.ToFloat64(c.kudosPosted.WithLabelValues("Teamwork")); got != 2 {
		t.Errorf("Teamwork = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.kudosPosted.WithLabelValues("Helpful")); got != 1 {
		t.Errorf("Helpful = %v, want 1", got)
	}
}

func TestKudoHidden_Increments(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.KudoHidden()

	if got := testutil.ToFloat64(c.kudosHidden); got != 1 {
		t.Errorf("kudos_hidden_total = %v, want 1", got)
	}
}

func TestRecordRequest_LabelsByRouteAndStatus(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordRequest(http.MethodPost, "/api/kudos", 201, 5*time.Millisecond)
	c.RecordRequest(http.MethodPost, "/api/kudos", 400, time.Millisecond)
	c.RecordRequest(http.MethodPost, "/api/kudos", 201, time.Millisecond)

	if got := testutil.ToFloat64(c.requests.WithLabelValues("POST", "/api/kudos", "201")); got != 2 {
		t.Errorf("201 count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.requests.WithLabelValues("POST", "/api/kudos", "400")); got != 1 {
		t.Errorf("400 count = %v, want 1", got)
	}
	if n := testutil.CollectAndCount(c.duration); n != 1 {
		t.Errorf("duration series = %d, want 1", n)
	}
}

func TestNewCollector_SeparateRegistries(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("registering on two registries panicked: %v", r)
		}
	}()
	NewCollector(prometheus.NewRegistry())
	NewCollector(prometheus.NewRegistry())
}

func TestHandler_ServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.KudoCreated(model.CategoryInnovation)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `kudos_created_total{category="Innovation"} 1`) {
		t.Errorf("body missing kudos_created_total:\n%s", body)
	}
}
