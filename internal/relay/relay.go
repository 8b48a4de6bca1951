// Package relay downloads a completed job's report and republishes it
// into the ingestion service.
//
// The pipeline is three strictly sequential stages, each producing a
// tagged result so a failure always names the stage it happened in:
//
//	download -> package -> upload
//
// A relay runs at most once per completed job and never retries; on any
// stage failure no partial descriptor is returned.
package relay

import (
	"context"
	"time"

	"insightrelay/internal/apperrors"
	"insightrelay/internal/ingest"
)

// Stage names carried in relay errors and metrics.
const (
	StageDownload = "download"
	StagePackage  = "package"
	StageUpload   = "upload"
)

// ReportContentType is the fixed mime type of analysis reports.
const ReportContentType = "text/csv"

// Descriptor is the caller-visible result of a successful relay:
// a reference to the artifact as stored by the ingestion service.
type Descriptor struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Type string `json:"type"`
}

// Downloader fetches the binary report of a completed job.
type Downloader interface {
	DownloadReport(ctx context.Context, jobID string) ([]byte, error)
}

// Uploader publishes a named file and returns its stored reference.
type Uploader interface {
	Upload(ctx context.Context, name, contentType string, content []byte) (*ingest.StoredObject, error)
}

// StageRecorder is an optional hook for recording stage outcomes.
type StageRecorder interface {
	RecordRelayStage(ctx context.Context, stage string, success bool, durationSeconds float64)
}

// Relay wires the download and upload collaborators into one pipeline.
type Relay struct {
	downloader Downloader
	uploader   Uploader
	metrics    StageRecorder
	now        func() time.Time
}

// New creates a relay. metrics may be nil.
func New(downloader Downloader, uploader Uploader, metrics StageRecorder) *Relay {
	return &Relay{
		downloader: downloader,
		uploader:   uploader,
		metrics:    metrics,
		now:        time.Now,
	}
}

// namedFile is the packaged artifact between the download and upload stages.
type namedFile struct {
	name        string
	contentType string
	content     []byte
}

// Run executes the pipeline for one completed job. The context is
// checked before every stage so a cancelled session never starts
// another remote call.
func (r *Relay) Run(ctx context.Context, jobID string) (*Descriptor, error) {
	content, err := r.download(ctx, jobID)
	if err != nil {
		return nil, err
	}

	file, err := r.packageFile(ctx, content)
	if err != nil {
		return nil, err
	}

	return r.upload(ctx, file)
}

func (r *Relay) download(ctx context.Context, jobID string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Relay(StageDownload, err)
	}

	start := r.now()
	content, err := r.downloader.DownloadReport(ctx, jobID)
	r.record(ctx, StageDownload, err == nil, start)
	if err != nil {
		return nil, apperrors.Relay(StageDownload, err)
	}
	return content, nil
}

func (r *Relay) packageFile(ctx context.Context, content []byte) (*namedFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Relay(StagePackage, err)
	}

	return &namedFile{
		name:        FileName(r.now()),
		contentType: ReportContentType,
		content:     content,
	}, nil
}

func (r *Relay) upload(ctx context.Context, file *namedFile) (*Descriptor, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Relay(StageUpload, err)
	}

	start := r.now()
	stored, err := r.uploader.Upload(ctx, file.name, file.contentType, file.content)
	r.record(ctx, StageUpload, err == nil, start)
	if err != nil {
		return nil, apperrors.Relay(StageUpload, err)
	}

	return &Descriptor{
		Name: file.name,
		URL:  stored.URL,
		Type: "csv",
	}, nil
}

func (r *Relay) record(ctx context.Context, stage string, success bool, start time.Time) {
	if r.metrics == nil {
		return
	}
	r.metrics.RecordRelayStage(ctx, stage, success, r.now().Sub(start).Seconds())
}

// FileName derives the deterministic artifact name for a given day.
func FileName(now time.Time) string {
	return "AI_Analysis_" + now.Format(time.DateOnly) + ".csv"
}
