package feeders

// FieldPopulation records one field of a config struct being set (or
// searched for and not found) by a feeder, for provenance reporting
// (config.HubConfig.FieldProvenance).
type FieldPopulation struct {
	FieldPath  string      // full path to the field
	FieldName  string      // name of the field
	FieldType  string      // type of the field
	FeederType string      // type of feeder that populated it
	SourceType string      // type of source (yaml, env, ...)
	SourceKey  string      // source key that was used
	Value      interface{} // value that was set, nil if not found
	SearchKeys []string    // keys searched for this field
	FoundKey   string      // the key that was actually found, "" if none
}

// FieldTracker lets a feeder report which fields it populated.
type FieldTracker interface {
	RecordFieldPopulation(fp FieldPopulation)
}

// DefaultFieldTracker is the in-memory FieldTracker config.Load attaches
// to a YAML source.
type DefaultFieldTracker struct {
	populations []FieldPopulation
}

// NewDefaultFieldTracker creates a new DefaultFieldTracker.
func NewDefaultFieldTracker() *DefaultFieldTracker {
	return &DefaultFieldTracker{}
}

// RecordFieldPopulation records that a field was populated by a feeder.
func (t *DefaultFieldTracker) RecordFieldPopulation(fp FieldPopulation) {
	t.populations = append(t.populations, fp)
}

// GetFieldPopulations returns all recorded field populations.
func (t *DefaultFieldTracker) GetFieldPopulations() []FieldPopulation {
	return t.populations
}
