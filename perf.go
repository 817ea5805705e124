package particlefield

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
)

// PerfLog streams governor samples as CSV rows. The header is written with
// the first record. A nil *PerfLog discards everything.
type PerfLog struct {
	w             io.Writer
	headerWritten bool
	samples       []Sample
}

// NewPerfLog returns a PerfLog writing to w.
func NewPerfLog(w io.Writer) *PerfLog {
	return &PerfLog{w: w}
}

// Record appends one sample and writes it as a CSV row.
func (p *PerfLog) Record(s Sample) error {
	if p == nil {
		return nil
	}
	p.samples = append(p.samples, s)

	records := []Sample{s}
	if !p.headerWritten {
		if err := gocsv.Marshal(records, p.w); err != nil {
			return fmt.Errorf("writing perf sample: %w", err)
		}
		p.headerWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, p.w); err != nil {
		return fmt.Errorf("writing perf sample: %w", err)
	}
	return nil
}

// Samples returns every sample recorded so far.
func (p *PerfLog) Samples() []Sample {
	if p == nil {
		return nil
	}
	return p.samples
}
