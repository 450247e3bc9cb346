package nagare

import "context"

// ReportSink receives each report after it has been persisted. Implement it
// to forward reports to alerting, notification, or archival systems.
type ReportSink interface {
	Deliver(ctx context.Context, report Report) error
}

// ReportSinkFunc adapts a function to the ReportSink interface.
type ReportSinkFunc func(ctx context.Context, report Report) error

// Deliver implements ReportSink.
func (f ReportSinkFunc) Deliver(ctx context.Context, report Report) error {
	return f(ctx, report)
}
