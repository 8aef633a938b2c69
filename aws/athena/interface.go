//go:generate mockgen -package mocks -destination mocks/interface.go -source=interface.go
//go:generate mockgen -package mocks -destination mocks/sdk_athenaapi.go github.com/aws/aws-sdk-go/service/athena/athenaiface AthenaAPI
package athena

// QueryState is the engine-reported lifecycle state of a submitted query.
type QueryState string

const (
	StateQueued    QueryState = "QUEUED"
	StateRunning   QueryState = "RUNNING"
	StateSucceeded QueryState = "SUCCEEDED"
	StateFailed    QueryState = "FAILED"
	StateCancelled QueryState = "CANCELLED"
)

// IsTerminal reports whether the engine will never change this state again.
func (s QueryState) IsTerminal() bool {
	switch s {
	case StateSucceeded, StateFailed, StateCancelled:
		return true
	}
	return false
}

// Status is a point-in-time view of a query execution.
type Status struct {
	State  QueryState
	Reason string // engine's state change reason, populated on failure.
}

// Query is one submission request.
// Token is the caller's idempotency token: the engine collapses duplicate
// submissions carrying the same token into one execution.
type Query struct {
	SQL            string
	Database       string
	Workgroup      string
	OutputLocation string
	Token          string
}

type Client interface {
	Submitter
	StatusGetter
}

type Submitter interface {
	// StartQuery submits a query for asynchronous execution and returns the engine's query id.
	StartQuery(q Query) (queryID string, err error)
}

type StatusGetter interface {
	GetStatus(queryID string) (Status, error)
}
