// Package model contains the domain records passed between the scoring
// components. Records are closed, fixed-field types; the four weighted
// dimensions are addressed through the Dimension enum.
package model

import (
	"github.com/cockroachdb/errors"
)

// Dimension names one of the four weighted numeric performance metrics.
type Dimension string

// Weighted dimensions.
const (
	TechnicalAccuracy    Dimension = "technicalAccuracy"
	CommunicationQuality Dimension = "communicationQuality"
	CustomerSatisfaction Dimension = "customerSatisfaction"
	ProcessCompliance    Dimension = "processCompliance"
)

// Dimensions lists every weighted dimension in canonical order.
var Dimensions = []Dimension{
	TechnicalAccuracy,
	CommunicationQuality,
	CustomerSatisfaction,
	ProcessCompliance,
}

// Label returns a lower-case human readable name, e.g. "communication quality".
func (d Dimension) Label() string {
	switch d {
	case TechnicalAccuracy:
		return "technical accuracy"
	case CommunicationQuality:
		return "communication quality"
	case CustomerSatisfaction:
		return "customer satisfaction"
	case ProcessCompliance:
		return "process compliance"
	}
	return string(d)
}

// ParseDimension accepts the camelCase name or its snake_case form.
func ParseDimension(s string) (Dimension, error) {
	switch s {
	case "technicalAccuracy", "technical_accuracy":
		return TechnicalAccuracy, nil
	case "communicationQuality", "communication_quality":
		return CommunicationQuality, nil
	case "customerSatisfaction", "customer_satisfaction":
		return CustomerSatisfaction, nil
	case "processCompliance", "process_compliance":
		return ProcessCompliance, nil
	}
	return "", errors.Wrapf(ErrUnknownDimension, "%q", s)
}
