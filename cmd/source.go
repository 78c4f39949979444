package cmd

import (
	"fmt"

	"github.com/lehigh-university-libraries/borrowreport/internal/circulation"
	"github.com/lehigh-university-libraries/borrowreport/internal/report"
)

// sourceFlags select between the live API and saved payload files
type sourceFlags struct {
	borrowedFile string
	approvedFile string
}

func (s *sourceFlags) offline() bool {
	return s.borrowedFile != "" || s.approvedFile != ""
}

// newReportService wires the configured source into a report service
func (o *options) newReportService(src sourceFlags) (*report.Service, error) {
	normalize, err := o.cfg.NormalizeOptions()
	if err != nil {
		return nil, err
	}

	var source report.Source
	if src.offline() {
		source = circulation.NewFileSource(src.borrowedFile, src.approvedFile)
	} else {
		if err := o.cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
		source = circulation.NewClient(o.cfg.APIURL, o.cfg.APIToken, o.cfg.Timeout)
	}

	return report.NewService(source, normalize), nil
}
