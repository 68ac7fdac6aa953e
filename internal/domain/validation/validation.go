// Package validation checks raw metrics, weight vectors and activity
// payloads, reporting problems as human readable messages instead of errors.
package validation

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"

	"github.com/okian/supportxp/internal/domain/model"
)

const resolutionTimeField = "resolutionTime"

// Validator validates engine inputs. It is safe for concurrent use.
type Validator struct {
	validate *validator.Validate
}

// New creates a Validator that reports fields by their json names.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: v}
}

// ValidateMetrics flags numeric dimensions outside [0,100] and a negative
// resolution time.
func (v *Validator) ValidateMetrics(m model.PerformanceMetrics) model.ValidationResult {
	return v.run(m, metricMessage)
}

// ValidateWeights flags weights outside [0,1] and a sum that deviates from
// 1.0 by more than model.WeightSumTolerance.
func (v *Validator) ValidateWeights(w model.PerformanceWeights) model.ValidationResult {
	res := v.run(w, weightMessage)
	if sum := w.Sum(); math.IsNaN(sum) || math.Abs(sum-1.0) > model.WeightSumTolerance {
		res.Valid = false
		res.Errors = append(res.Errors, fmt.Sprintf("Weights sum to %s, should sum to 1.0", formatNumber(sum)))
	}
	return res
}

// ValidateWeightRange flags weights outside [0,1] without checking their sum.
func (v *Validator) ValidateWeightRange(w model.PerformanceWeights) model.ValidationResult {
	return v.run(w, weightMessage)
}

// ValidateOverride flags override values outside [0,1].
func (v *Validator) ValidateOverride(o model.WeightOverride) model.ValidationResult {
	return v.run(o, weightMessage)
}

// ValidateActivityData checks the activity enums and its embedded metrics.
func (v *Validator) ValidateActivityData(a model.ActivityData) model.ValidationResult {
	return v.run(a, metricMessage)
}

// ValidateSubmission checks the submission identity and its activity.
func (v *Validator) ValidateSubmission(s model.ActivitySubmission) model.ValidationResult {
	return v.run(s, metricMessage)
}

func (v *Validator) run(s any, adapt func(validator.FieldError) string) model.ValidationResult {
	res := model.ValidationResult{Valid: true, Errors: []string{}}
	err := v.validate.Struct(s)
	if err == nil {
		return res
	}
	res.Valid = false
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		res.Errors = append(res.Errors, err.Error())
		return res
	}
	for _, fe := range fieldErrs {
		res.Errors = append(res.Errors, adapt(fe))
	}
	return res
}

func metricMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "min", "max":
		if fe.Field() == resolutionTimeField {
			return fmt.Sprintf("%s value %s must not be negative", fe.Field(), formatValue(fe.Value()))
		}
		return fmt.Sprintf("%s value %s is outside valid range (0-100)", fe.Field(), formatValue(fe.Value()))
	}
	return genericMessage(fe)
}

func weightMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "min", "max":
		return fmt.Sprintf("%s weight %s is outside valid range (0-1)", fe.Field(), formatValue(fe.Value()))
	}
	return genericMessage(fe)
}

func genericMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", fe.Field(), strings.Join(strings.Fields(fe.Param()), ", "))
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}

func formatValue(v any) string {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return "null"
		}
		rv = rv.Elem()
	}
	if rv.Kind() == reflect.Float64 || rv.Kind() == reflect.Float32 {
		return strconv.FormatFloat(rv.Float(), 'f', -1, 64)
	}
	return fmt.Sprint(rv.Interface())
}

// formatNumber renders f with at most three decimals and no trailing zeros.
func formatNumber(f float64) string {
	return strconv.FormatFloat(math.Round(f*1000)/1000, 'f', -1, 64)
}

type fieldKind int

const (
	kindNumber fieldKind = iota
	kindBool
)

var metricFields = []struct {
	name string
	kind fieldKind
	set  func(*model.PerformanceMetrics, any)
}{
	{"technicalAccuracy", kindNumber, func(m *model.PerformanceMetrics, v any) { m.TechnicalAccuracy = v.(float64) }},
	{"communicationQuality", kindNumber, func(m *model.PerformanceMetrics, v any) { m.CommunicationQuality = v.(float64) }},
	{"customerSatisfaction", kindNumber, func(m *model.PerformanceMetrics, v any) { m.CustomerSatisfaction = v.(float64) }},
	{"processCompliance", kindNumber, func(m *model.PerformanceMetrics, v any) { m.ProcessCompliance = v.(float64) }},
	{"verificationSuccess", kindBool, func(m *model.PerformanceMetrics, v any) { m.VerificationSuccess = v.(bool) }},
	{"firstTimeResolution", kindBool, func(m *model.PerformanceMetrics, v any) { m.FirstTimeResolution = v.(bool) }},
	{"knowledgeSharing", kindBool, func(m *model.PerformanceMetrics, v any) { m.KnowledgeSharing = v.(bool) }},
	{resolutionTimeField, kindNumber, func(m *model.PerformanceMetrics, v any) { m.ResolutionTime = v.(float64) }},
}

// DecodeMetrics converts a loosely typed record (for example a decoded JSON
// object) into PerformanceMetrics. Missing, unknown and wrongly typed fields
// are reported alongside the range checks of ValidateMetrics.
func (v *Validator) DecodeMetrics(raw map[string]any) (model.PerformanceMetrics, model.ValidationResult) {
	var m model.PerformanceMetrics
	res := model.ValidationResult{Valid: true, Errors: []string{}}

	known := make(map[string]struct{}, len(metricFields))
	for _, f := range metricFields {
		known[f.name] = struct{}{}
		val, ok := raw[f.name]
		if !ok || val == nil {
			res.Errors = append(res.Errors, fmt.Sprintf("%s is required", f.name))
			continue
		}
		switch f.kind {
		case kindNumber:
			n, ok := toFloat(val)
			if !ok {
				res.Errors = append(res.Errors, fmt.Sprintf("%s must be a number, got %T", f.name, val))
				continue
			}
			f.set(&m, n)
		case kindBool:
			b, ok := val.(bool)
			if !ok {
				res.Errors = append(res.Errors, fmt.Sprintf("%s must be a boolean, got %T", f.name, val))
				continue
			}
			f.set(&m, b)
		}
	}

	var unknown []string
	for k := range raw {
		if _, ok := known[k]; !ok {
			unknown = append(unknown, k)
		}
	}
	sort.Strings(unknown)
	for _, k := range unknown {
		res.Errors = append(res.Errors, fmt.Sprintf("unknown field %s", k))
	}

	rangeRes := v.ValidateMetrics(m)
	res.Errors = append(res.Errors, rangeRes.Errors...)
	res.Valid = len(res.Errors) == 0
	return m, res
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case interface{ Float64() (float64, error) }:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
