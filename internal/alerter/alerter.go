package alerter

import (
	"ConnSpectra/internal/config"
	"ConnSpectra/internal/model"
	"fmt"
	"sort"
	"strings"

	"github.com/gomarkdown/markdown"
	log "github.com/sirupsen/logrus"
)

// Alerter evaluates a finished report against threshold rules and sends one
// consolidated notification when any rule triggers.
type Alerter struct {
	rules    []config.AlerterRule
	notifier model.Notifier
}

// NewAlerter creates a new Alerter. Rules naming an unknown metric are rejected.
func NewAlerter(cfg *config.AlerterConfig, notifier model.Notifier) (*Alerter, error) {
	for _, rule := range cfg.Rules {
		if _, ok := metricFuncs[rule.Metric]; !ok {
			return nil, fmt.Errorf("alerter rule '%s': unknown metric '%s' (known: %s)",
				rule.Name, rule.Metric, strings.Join(Metrics(), ", "))
		}
	}
	return &Alerter{rules: cfg.Rules, notifier: notifier}, nil
}

var metricFuncs = map[string]func(r *model.Report) float64{
	"total_connections":          func(r *model.Report) float64 { return float64(r.Summary.TotalConnections) },
	"complete_connections":       func(r *model.Report) float64 { return float64(r.Summary.CompleteConnections) },
	"reset_connections":          func(r *model.Report) float64 { return float64(r.Summary.ResetConnections) },
	"open_connections":           func(r *model.Report) float64 { return float64(r.Summary.OpenConnections) },
	"before_capture_connections": func(r *model.Report) float64 { return float64(r.Summary.PreCaptureConns) },
	"truncated_frames":           func(r *model.Report) float64 { return float64(r.Capture.Truncated) },
	"min_duration":               func(r *model.Report) float64 { return r.Summary.Duration.Min },
	"mean_duration":              func(r *model.Report) float64 { return r.Summary.Duration.Mean },
	"max_duration":               func(r *model.Report) float64 { return r.Summary.Duration.Max },
	"min_rtt":                    func(r *model.Report) float64 { return r.Summary.RTT.Min },
	"mean_rtt":                   func(r *model.Report) float64 { return r.Summary.RTT.Mean },
	"max_rtt":                    func(r *model.Report) float64 { return r.Summary.RTT.Max },
	"min_packets":                func(r *model.Report) float64 { return r.Summary.Packets.Min },
	"mean_packets":               func(r *model.Report) float64 { return r.Summary.Packets.Mean },
	"max_packets":                func(r *model.Report) float64 { return r.Summary.Packets.Max },
	"min_window_size":            func(r *model.Report) float64 { return r.Summary.WindowSize.Min },
	"mean_window_size":           func(r *model.Report) float64 { return r.Summary.WindowSize.Mean },
	"max_window_size":            func(r *model.Report) float64 { return r.Summary.WindowSize.Max },
}

// Metrics lists the metric names rules may refer to.
func Metrics() []string {
	names := make([]string, 0, len(metricFuncs))
	for name := range metricFuncs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Evaluate returns one Markdown section per triggered rule, in rule order.
func (a *Alerter) Evaluate(report *model.Report) []string {
	var triggered []string
	for _, rule := range a.rules {
		value := metricFuncs[rule.Metric](report)
		if !check(value, rule.Threshold, rule.Operator) {
			continue
		}
		triggered = append(triggered, fmt.Sprintf("### Alert: %s\n\n"+
			"- **Capture:** `%s`\n"+
			"- **Metric:** `%s`\n"+
			"- **Condition:** `%s %g`\n"+
			"- **Observed Value:** `%g`\n",
			rule.Name, report.Source, rule.Metric, rule.Operator, rule.Threshold, value))
	}
	return triggered
}

// Run evaluates the rules and sends the triggered alerts as one HTML e-mail.
func (a *Alerter) Run(report *model.Report) error {
	messages := a.Evaluate(report)
	if len(messages) == 0 {
		return nil
	}
	log.WithField("triggered", len(messages)).Info("Alerter evaluation completed")

	md := "# ConnSpectra Alert Summary\n\n" +
		"The following alerts were triggered for this capture:\n\n---\n\n" +
		strings.Join(messages, "\n---\n\n")
	body := string(markdown.ToHTML([]byte(md), nil, nil))

	if a.notifier == nil {
		return nil
	}
	subject := fmt.Sprintf("ConnSpectra Alert Summary (%d Triggered)", len(messages))
	if err := a.notifier.Send(subject, body); err != nil {
		return fmt.Errorf("failed to send alert notification: %w", err)
	}
	log.Info("Consolidated alert notification sent successfully.")
	return nil
}

// check compares a value against a threshold based on an operator.
func check(value, threshold float64, operator string) bool {
	switch operator {
	case ">":
		return value > threshold
	case "<":
		return value < threshold
	case "=":
		return value == threshold
	case ">=":
		return value >= threshold
	case "<=":
		return value <= threshold
	default:
		log.Warnf("Unknown operator '%s' in alerter rule", operator)
		return false
	}
}
