package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	subdto "github.com/ptuchik/billing/internal/application/subscription/dto"
	"github.com/ptuchik/billing/internal/interfaces/http/handlers/testutil"
	"github.com/ptuchik/billing/internal/shared/biztime"
	"github.com/ptuchik/billing/internal/shared/logger"
)

type fakeSweep struct {
	date time.Time
}

func (f *fakeSweep) Execute(ctx context.Context, date time.Time) (*subdto.SweepResult, error) {
	f.date = date
	return &subdto.SweepResult{Date: date, Processed: 2, Succeeded: 2}, nil
}

func TestSweepHandler_RunSweep(t *testing.T) {
	fixed := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	wantDate, err := biztime.ParseDateInBizTimezone("2026-02-01")
	assert.NoError(t, err)

	tests := []struct {
		name       string
		kind       string
		date       string
		wantStatus int
		wantDate   time.Time
	}{
		{name: "today", kind: "renew", wantStatus: http.StatusOK, wantDate: fixed},
		{name: "given date", kind: "expire", date: "2026-02-01", wantStatus: http.StatusOK, wantDate: wantDate},
		{name: "bad date", kind: "renew", date: "01/02/2026", wantStatus: http.StatusBadRequest},
		{name: "unknown kind", kind: "purge", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sweep := &fakeSweep{}
			h := NewSweepHandler(map[string]SweepRunner{"renew": sweep, "expire": sweep}, logger.NewNopLogger())
			h.now = func() time.Time { return fixed }

			c, w := testutil.NewTestContext(http.MethodPost, "/admin/sweeps/"+tt.kind, nil)
			testutil.SetURLParam(c, "kind", tt.kind)
			if tt.date != "" {
				testutil.SetQueryParams(c, map[string]string{"date": tt.date})
			}

			h.RunSweep(c)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				assert.True(t, tt.wantDate.Equal(sweep.date))
			}
		})
	}
}
