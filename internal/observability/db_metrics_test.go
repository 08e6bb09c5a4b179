package observability_test

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/widiatmoko/jurnalku/internal/observability"
)

func TestObserveDB_Success(t *testing.T) {
	prom := observability.NewProm(prometheus.NewRegistry())

	err := prom.ObserveDB("users.list", func() error { return nil })
	if err != nil {
		t.Fatalf("ObserveDB returned %v, want nil", err)
	}

	if got := testutil.CollectAndCount(prom.DbQueryDuration); got != 1 {
		t.Fatalf("got %d duration series, want 1", got)
	}
	if got := testutil.CollectAndCount(prom.DbErrorsTotal); got != 0 {
		t.Fatalf("got %d error series, want 0", got)
	}
}

func TestObserveDB_ErrorPassesThroughAndCounts(t *testing.T) {
	prom := observability.NewProm(prometheus.NewRegistry())
	boom := &pgconn.PgError{Code: "23505"}

	err := prom.ObserveDB("users.create", func() error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("ObserveDB returned %v, want the wrapped query error", err)
	}

	got := testutil.ToFloat64(prom.DbErrorsTotal.WithLabelValues("users.create", "unique_violation"))
	if got != 1 {
		t.Fatalf("got %v unique_violation errors for users.create, want 1", got)
	}
	// failed queries still record a duration sample, under status=error
	if n := testutil.CollectAndCount(prom.DbQueryDuration); n != 1 {
		t.Fatalf("got %d duration series, want 1", n)
	}
}

func TestObserveDB_ErrorClasses(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"unique violation", &pgconn.PgError{Code: "23505"}, "unique_violation"},
		{"serialization failure", &pgconn.PgError{Code: "40001"}, "serialization_failure"},
		{"deadlock", &pgconn.PgError{Code: "40P01"}, "deadlock"},
		{"query canceled", &pgconn.PgError{Code: "57014"}, "query_canceled"},
		{"other pg code", &pgconn.PgError{Code: "42P01"}, "pg_42P01"},
		{"timeout", errors.New("context deadline exceeded"), "timeout"},
		{"connection", errors.New("failed to connect to host"), "connection"},
		{"unknown", errors.New("something odd"), "unknown"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			prom := observability.NewProm(prometheus.NewRegistry())

			_ = prom.ObserveDB("journals.update", func() error { return tc.err })

			got := testutil.ToFloat64(prom.DbErrorsTotal.WithLabelValues("journals.update", tc.want))
			if got != 1 {
				t.Fatalf("got %v errors with class %q, want 1", got, tc.want)
			}
		})
	}
}
