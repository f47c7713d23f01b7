package manager

import (
	"ConnSpectra/internal/alerter"
	"ConnSpectra/internal/config"
	"ConnSpectra/internal/engine/protocol"
	"ConnSpectra/internal/engine/statistic"
	"ConnSpectra/internal/engine/tracker"
	"ConnSpectra/internal/factory"
	"ConnSpectra/internal/model"
	"ConnSpectra/internal/notification"
	"ConnSpectra/internal/report"
	"ConnSpectra/pkg/pcap"
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// FrameSource yields captured frames in capture order.
type FrameSource interface {
	Next() (model.CaptureFrame, bool)
}

// Manager runs the analysis pipeline and hands finished reports to the writers and the alerter.
type Manager struct {
	trackerOpts tracker.Options
	writers     []model.Writer
	alerter     *alerter.Alerter
}

// NewManager creates a new Manager.
func NewManager(cfg *config.Config) (*Manager, error) {
	writers, err := factory.Create(cfg.Report)
	if err != nil {
		return nil, err
	}

	var alertr *alerter.Alerter
	if cfg.Alerter.Enabled {
		// For now, we only initialize the email notifier.
		var notifier model.Notifier
		if cfg.SMTP.Host != "" {
			notifier = notification.NewEmailNotifier(cfg.SMTP)
		}

		if notifier != nil {
			alertr, err = alerter.NewAlerter(&cfg.Alerter, notifier)
			if err != nil {
				return nil, fmt.Errorf("failed to create alerter: %w", err)
			}
			log.Info("Alerter enabled and initialized.")
		} else {
			log.Warn("Alerter is enabled in config, but no notifiers are configured. Alerter will not run.")
		}
	}

	return &Manager{
		trackerOpts: tracker.Options{
			SymmetricRTT:       cfg.Tracker.SymmetricRTT,
			MaxPendingSegments: cfg.Tracker.MaxPendingSegments,
		},
		writers: writers,
		alerter: alertr,
	}, nil
}

// Analyze reads src to exhaustion and returns the report for it. Frames that are
// not IPv4/TCP or are too short to decode are counted and skipped.
func (m *Manager) Analyze(src FrameSource, name string) *model.Report {
	trk := tracker.New(m.trackerOpts)
	var stats model.CaptureStats

	start := time.Now()
	for {
		frame, ok := src.Next()
		if !ok {
			break
		}
		stats.Frames++

		pkt, outcome := protocol.ParsePacket(frame)
		switch outcome {
		case protocol.Decoded:
			stats.Decoded++
			trk.ProcessPacket(&pkt)
		case protocol.NotApplicable:
			stats.NotApplicable++
		case protocol.Truncated:
			stats.Truncated++
			log.Debugf("Skipping truncated frame %d (%d bytes captured)", stats.Frames, frame.CapturedLen)
		}
	}

	table := trk.Table()
	rep := &model.Report{
		Source:      name,
		Capture:     stats,
		Connections: statistic.Records(table),
		Summary:     statistic.Aggregate(table),
	}

	log.WithFields(log.Fields{
		"source":         name,
		"frames":         stats.Frames,
		"decoded":        stats.Decoded,
		"not_applicable": stats.NotApplicable,
		"truncated":      stats.Truncated,
		"connections":    table.Len(),
		"elapsed":        time.Since(start),
	}).Info("Capture analyzed")

	return rep
}

// AnalyzeFile opens a capture file and analyzes it. A frame record that cannot
// be read ends the capture early; the frames before it are still reported.
func (m *Manager) AnalyzeFile(path string) (*model.Report, error) {
	reader, err := pcap.Open(path)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	rep := m.Analyze(reader, path)
	if err := reader.Err(); err != nil {
		log.Warnf("Capture '%s' ended early: %v", path, err)
	}
	return rep, nil
}

// Publish hands the report to every writer concurrently, then runs the alerter.
// The report must not be modified while Publish runs.
func (m *Manager) Publish(rep *model.Report) error {
	timestamp := time.Now().Format(report.TimestampLayout)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	wg.Add(len(m.writers))
	for _, w := range m.writers {
		go func(w model.Writer) {
			defer wg.Done()
			if err := w.Write(rep, timestamp); err != nil {
				log.Errorf("Writer '%s' failed: %v", w.Name(), err)
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", w.Name(), err))
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()

	if err := m.Alert(rep); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// Alert runs the alerter on rep. It is a no-op when no alerter is configured.
func (m *Manager) Alert(rep *model.Report) error {
	if m.alerter == nil {
		return nil
	}
	if err := m.alerter.Run(rep); err != nil {
		log.Errorf("Alerter failed: %v", err)
		return err
	}
	return nil
}

// Stop releases writers that hold connections.
func (m *Manager) Stop() {
	for _, w := range m.writers {
		if c, ok := w.(interface{ Close() }); ok {
			c.Close()
		}
	}
	log.Info("Manager stopped.")
}
