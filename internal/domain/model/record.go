// Package model contains domain models passed between layers.
package model

import (
	"strconv"
)

// CategoricalFields lists the categorical fields in encoder/model order.
var CategoricalFields = []string{
	FieldCity,
	FieldLocation,
	FieldConstructionType,
	FieldWorkType,
	FieldWorkDescription,
	FieldUnit,
}

// Field names shared by the encoder bank, the feature vector and the sinks.
const (
	FieldCity             = "city"
	FieldLocation         = "location"
	FieldConstructionType = "construction_type"
	FieldWorkType         = "work_type"
	FieldWorkDescription  = "work_description"
	FieldUnit             = "unit"
)

// Columns is the fixed column order used by both persistent sinks.
var Columns = []string{
	"city",
	"location",
	"construction_type",
	"work_type",
	"work_description",
	"volume",
	"unit",
	"unit_price",
	"prediction",
	"category",
	"date",
}

// RawLineItem carries the untyped form fields before coercion.
type RawLineItem struct {
	City             string
	Location         string
	ConstructionType string
	WorkType         string
	WorkDescription  string
	Volume           string
	Unit             string
	UnitPrice        string
}

// LineItem is a normalized, type-coerced line item. String fields are
// trimmed lowercase; Volume and UnitPrice are non-negative.
type LineItem struct {
	City             string  `json:"city"`
	Location         string  `json:"location"`
	ConstructionType string  `json:"construction_type"`
	WorkType         string  `json:"work_type"`
	WorkDescription  string  `json:"work_description"`
	Volume           float64 `json:"volume"`
	Unit             string  `json:"unit"`
	UnitPrice        float64 `json:"unit_price"`
}

// ManualTotal is volume times unit price, the plausibility baseline for
// the model output.
func (li LineItem) ManualTotal() float64 {
	return li.Volume * li.UnitPrice
}

// PredictionResult extends a LineItem with the estimated price, the
// reporting category (a copy of WorkType) and the creation date.
type PredictionResult struct {
	LineItem
	Prediction float64 `json:"prediction"`
	Category   string  `json:"category"`
	Date       string  `json:"date"` // ISO yyyy-mm-dd
}

// ProjectInfo is free-form session-scoped project metadata, unrelated to
// estimation.
type ProjectInfo struct {
	SubActivity     string `json:"sub_activity"`
	WorkName        string `json:"work_name"`
	ProjectLocation string `json:"project_location"`
}

// Row renders the result as a sink row in Columns order.
func (r PredictionResult) Row() []string {
	return []string{
		r.City,
		r.Location,
		r.ConstructionType,
		r.WorkType,
		r.WorkDescription,
		formatFloat(r.Volume),
		r.Unit,
		formatFloat(r.UnitPrice),
		formatFloat(r.Prediction),
		r.Category,
		r.Date,
	}
}

// ResultFromRow parses a sink row in Columns order. Short rows are
// rejected; malformed numeric cells degrade to zero so that a partially
// corrupted sheet still seeds a ledger.
func ResultFromRow(row []string) (PredictionResult, bool) {
	if len(row) < len(Columns) {
		return PredictionResult{}, false
	}
	return PredictionResult{
		LineItem: LineItem{
			City:             row[0],
			Location:         row[1],
			ConstructionType: row[2],
			WorkType:         row[3],
			WorkDescription:  row[4],
			Volume:           parseFloat(row[5]),
			Unit:             row[6],
			UnitPrice:        parseFloat(row[7]),
		},
		Prediction: parseFloat(row[8]),
		Category:   row[9],
		Date:       row[10],
	}, true
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
