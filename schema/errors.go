package schema

import "fmt"

// LoadError reports an input file that could not be read or parsed.
type LoadError struct {
	Path   string
	Reason string
	Err    error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("load %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("load %s: %s", e.Path, e.Reason)
}

func (e *LoadError) Unwrap() error { return e.Err }

// JoinError reports a region whose metrics cannot be selected under the active policy.
type JoinError struct {
	Region string
	Reason string
}

func (e *JoinError) Error() string {
	return fmt.Sprintf("join region %q: %s", e.Region, e.Reason)
}

// RenderError reports a per-region failure while building layers or charts.
type RenderError struct {
	Region string
	Reason string
	Err    error
}

func (e *RenderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("render region %q: %s: %v", e.Region, e.Reason, e.Err)
	}
	return fmt.Sprintf("render region %q: %s", e.Region, e.Reason)
}

func (e *RenderError) Unwrap() error { return e.Err }

// WriteError reports a failure writing the output file.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
