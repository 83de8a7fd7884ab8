package domain

// EntryEvent is one raw process-event row from the export. Duplicate events
// are detected by the composite natural key over all five fields.
type EntryEvent struct {
	Identity  string
	Category  string
	EventDate string
	GroupCode string
	GroupName string
}

// EventKey is the composite natural key used for deduplication. Field order
// is fixed: identity, category, event date, group code, group name.
type EventKey struct {
	Identity  string
	Category  string
	EventDate string
	GroupCode string
	GroupName string
}

// Key builds the composite key from normalized field values.
func (e EntryEvent) Key() EventKey {
	return EventKey{
		Identity:  Normalize(e.Identity),
		Category:  Normalize(e.Category),
		EventDate: Normalize(e.EventDate),
		GroupCode: Normalize(e.GroupCode),
		GroupName: Normalize(e.GroupName),
	}
}

// HasGroupCode reports whether the event carries the required linking field.
// Events without one are excluded before keying.
func (e EntryEvent) HasGroupCode() bool {
	return Normalize(e.GroupCode) != ""
}

// LedgerRow returns the event's payload cells for the ledger, without the
// leading date-key column (the upsert step owns column 0).
func (e EntryEvent) LedgerRow() []string {
	return []string{e.Identity, e.Category, e.EventDate, e.GroupCode, e.GroupName}
}
