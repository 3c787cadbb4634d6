package main

import (
	"context"
	"errors"
	"testing"

	"github.com/dvloznov/fingenius/internal/jobs"
	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	published []*jobs.GenerateReportsJob
	err       error
}

func (p *recordingPublisher) PublishGenerateReports(_ context.Context, job *jobs.GenerateReportsJob) error {
	if p.err != nil {
		return p.err
	}
	job.JobID = "job-1"
	p.published = append(p.published, job)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func TestScheduleReports(t *testing.T) {
	c := cron.New()
	pub := &recordingPublisher{}

	id, err := scheduleReports(context.Background(), c, "0 0 1 * *", pub)
	require.NoError(t, err)

	entry := c.Entry(id)
	require.True(t, entry.Valid())
	entry.Job.Run()

	require.Len(t, pub.published, 1)
	assert.Equal(t, jobs.TriggerSchedule, pub.published[0].TriggeredBy)
}

func TestScheduleReports_PublishErrorIsLogged(t *testing.T) {
	c := cron.New()
	pub := &recordingPublisher{err: errors.New("queue is closed")}

	id, err := scheduleReports(context.Background(), c, "@monthly", pub)
	require.NoError(t, err)

	assert.NotPanics(t, func() { c.Entry(id).Job.Run() })
	assert.Empty(t, pub.published)
}

func TestScheduleReports_InvalidSpec(t *testing.T) {
	_, err := scheduleReports(context.Background(), cron.New(), "every month", &recordingPublisher{})
	assert.Error(t, err)
}
