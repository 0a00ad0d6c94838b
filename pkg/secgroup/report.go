package secgroup

import (
	"errors"
	"fmt"
)

// Outcome classifies what happened to a region during a reconciler call.
type Outcome int

const (
	// Applied means the provider accepted a change.
	Applied Outcome = iota
	// Unchanged means live state already matched and no call was made.
	Unchanged
	// Ignored means the provider returned an error that is expected for this
	// call, such as a duplicate rule or a rejected cross-region reference.
	Ignored
	// Failed means an unexpected provider error; later regions still ran.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Applied:
		return "applied"
	case Unchanged:
		return "unchanged"
	case Ignored:
		return "ignored"
	case Failed:
		return "failed"
	}

	return fmt.Sprintf("outcome(%d)", int(o))
}

type Result struct {
	Region  string
	GroupID string
	Outcome Outcome
	// CIDRs holds the ranges sent in the authorize call, if one was made.
	CIDRs []string
	Err   error
}

// Report collects per-region results so callers can decide whether partial
// failure is acceptable.
type Report struct {
	Results []*Result
}

func (r *Report) add(res *Result) {
	r.Results = append(r.Results, res)
}

func (r *Report) Failed() []*Result {
	failed := make([]*Result, 0)
	for _, res := range r.Results {
		if res.Outcome == Failed {
			failed = append(failed, res)
		}
	}

	return failed
}

// Err joins the errors of every failed region, or returns nil.
func (r *Report) Err() error {
	errs := make([]error, 0)
	for _, res := range r.Failed() {
		errs = append(errs, fmt.Errorf("%s: %w", res.Region, res.Err))
	}

	return errors.Join(errs...)
}

// ConfigError means no security group id could be obtained for a region. The
// run cannot continue; an operator has to inspect the account.
type ConfigError struct {
	Region    string
	GroupName string
	Err       error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("could not create or find security group %s in %s: %s", e.GroupName, e.Region, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
