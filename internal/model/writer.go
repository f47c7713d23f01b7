package model

// Writer defines a generic interface for presenting or persisting a finished report.
type Writer interface {
	// Write takes a report and renders or stores it.
	// timestamp names the run, e.g. the output directory of file based writers.
	Write(report *Report, timestamp string) error

	// Name returns the writer type as used in the config file.
	Name() string
}
