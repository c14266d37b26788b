package health

import (
	"context"
	"errors"
	"testing"
)

type pinger struct {
	err error
}

func (p *pinger) Ping(ctx context.Context) error { return p.err }

func TestCheck_Healthy(t *testing.T) {
	svc := New(&pinger{})
	report := svc.Check(context.Background())

	if report.Status != Healthy {
		t.Errorf("status = %s, want %s", report.Status, Healthy)
	}
	if report.Checks["database"] != CheckOK {
		t.Errorf("database check = %s, want %s", report.Checks["database"], CheckOK)
	}
}

func TestCheck_DatabaseDown(t *testing.T) {
	svc := New(&pinger{err: errors.New("refused")})
	report := svc.Check(context.Background())

	if report.Status != Degraded {
		t.Errorf("status = %s, want %s", report.Status, Degraded)
	}
	if report.Checks["database"] != CheckError {
		t.Errorf("database check = %s, want %s", report.Checks["database"], CheckError)
	}
}
