package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/trade-stasvinokur/momentum-strategy-cameron/pkg/queue"
	"github.com/trade-stasvinokur/momentum-strategy-cameron/pkg/util"
)

// ScanDayJobType routes queued daily runs to ScanDayJob.
const ScanDayJobType = "scan_day"

// ScanDayJob executes one queued daily run. Failures bubble up so the
// queue's retry policy applies to the whole scan.
type ScanDayJob struct {
	orch *Orchestrator
}

func NewScanDayJob(orch *Orchestrator) *ScanDayJob {
	return &ScanDayJob{orch: orch}
}

func (j *ScanDayJob) Name() string { return "daily-gap-scan" }

func (j *ScanDayJob) Type() string { return ScanDayJobType }

func (j *ScanDayJob) Handle(ctx context.Context, payload interface{}) error {
	p, err := queue.ParsePayload[ScanDayPayload](payload)
	if err != nil {
		return fmt.Errorf("scan job payload: %w", err)
	}

	date, ok := util.ParseDate(p.Date)
	if !ok {
		date = time.Now().UTC()
	}
	return j.orch.RunOnce(ctx, date, p.MinGap)
}
