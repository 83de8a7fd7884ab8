package aggregation

import "fmt"

// ConfigurationError means a logical table name has no physical binding.
// It aborts the current aggregation kind.
type ConfigurationError struct {
	Name string
	Err  error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: resolve table %q: %v", e.Name, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// SchemaError means a required source column is absent or the resolved
// column map is inconsistent (two pairs claiming one column). It aborts the
// current aggregation kind.
type SchemaError struct {
	Reason string
}

func (e *SchemaError) Error() string {
	return "schema: " + e.Reason
}

// ConnectionError means a grid or source read failed.
type ConnectionError struct {
	Op    string
	Table string
	Err   error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection: %s %s: %v", e.Op, e.Table, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// DataError means a row is structurally malformed, as opposed to carrying
// merely unrecognized label text. Recovered per row.
type DataError struct {
	Reason string
}

func (e *DataError) Error() string {
	return "data: " + e.Reason
}

// WriteError means the backend rejected a batch write or range clear. The
// destination is left as committed by the backend; no rollback is attempted.
type WriteError struct {
	Table string
	Err   error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write: %s: %v", e.Table, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
