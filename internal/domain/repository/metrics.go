package repository

// NopMetrics discards every observation. Used when the pipeline runs
// without a metrics backend, e.g. in tests or library embedding.
type NopMetrics struct{}

func (NopMetrics) RecordFilingIngested(string)    {}
func (NopMetrics) RecordDropped(string)           {}
func (NopMetrics) RecordSignal(string, int)       {}
func (NopMetrics) RecordEscalation(string)        {}
func (NopMetrics) RecordError(string)             {}
func (NopMetrics) RecordLatency(string, float64)  {}
