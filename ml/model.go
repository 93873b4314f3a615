package ml

// Model is a trained classifier artifact. PredictProba returns one probability
// per label, aligned with Labels.
type Model interface {
	Labels() []string
	FeatureCount() int
	PredictProba(features []float64) ([]float64, error)
}

// ConcurrencyReporter is implemented by models that know whether PredictProba
// may be called from several goroutines at once. Models that do not implement
// it are treated as unsafe.
type ConcurrencyReporter interface {
	ConcurrencySafe() bool
}
