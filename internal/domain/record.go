package domain

// RawRecord is one exported row, addressable by source column name.
// Records are immutable once built; missing trailing cells read as "".
type RawRecord struct {
	fields []string
	values map[string]string
}

// NewRawRecord pairs a header row with a data row. Rows shorter than the
// header are padded with empty strings, longer rows are truncated.
func NewRawRecord(fields []string, row []string) RawRecord {
	values := make(map[string]string, len(fields))
	for i, field := range fields {
		if i < len(row) {
			values[field] = row[i]
		} else {
			values[field] = ""
		}
	}
	return RawRecord{
		fields: append([]string(nil), fields...),
		values: values,
	}
}

// Get returns the cell text for a source column. The second return is false
// when the column does not exist in the export at all.
func (r RawRecord) Get(field string) (string, bool) {
	value, ok := r.values[field]
	return value, ok
}

// Fields returns the source column names in export order.
func (r RawRecord) Fields() []string {
	return append([]string(nil), r.fields...)
}
