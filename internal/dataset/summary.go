package dataset

import (
	"fmt"

	"github.com/montanaflynn/stats"
)

type MeasureSummary struct {
	Name   string
	Count  int
	Sum    float64
	Mean   float64
	Median float64
	Max    float64
	// Shares maps a category to its fraction of Sum.
	Shares map[string]float64
}

type Summary struct {
	Deaths MeasureSummary
	Cases  MeasureSummary
}

func summarizeMeasure(name string, records []Record, pick func(Record) Measure) (MeasureSummary, error) {
	var data stats.Float64Data
	var categories []string
	for _, r := range records {
		m := pick(r)
		if !m.Valid {
			continue
		}
		data = append(data, m.Value)
		categories = append(categories, r.Category)
	}

	out := MeasureSummary{Name: name, Count: len(data)}
	if len(data) == 0 {
		return out, fmt.Errorf("%s: no valid values", name)
	}

	var err error
	out.Sum, err = stats.Sum(data)
	if err != nil {
		return out, err
	}
	out.Mean, err = stats.Mean(data)
	if err != nil {
		return out, err
	}
	out.Median, err = stats.Median(data)
	if err != nil {
		return out, err
	}
	out.Max, err = stats.Max(data)
	if err != nil {
		return out, err
	}

	out.Shares = make(map[string]float64, len(data))
	for i, v := range data {
		if out.Sum == 0 {
			out.Shares[categories[i]] = 0
			continue
		}
		out.Shares[categories[i]] += v / out.Sum
	}
	return out, nil
}

// Summarize describes the breakdown rows, skipping missing values.
func (d Dataset) Summarize() (Summary, error) {
	breakdown := d.Breakdown()

	deaths, err := summarizeMeasure(DeathsColumn, breakdown, func(r Record) Measure { return r.Deaths })
	if err != nil {
		return Summary{}, err
	}
	cases, err := summarizeMeasure(CasesColumn, breakdown, func(r Record) Measure { return r.Cases })
	if err != nil {
		return Summary{}, err
	}
	return Summary{Deaths: deaths, Cases: cases}, nil
}
