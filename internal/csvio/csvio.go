// Package csvio reads the ratings and manager price sheets and writes the
// projected points sheet.
package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/utakatalp/assistant-manager-sim/internal/league"
	"github.com/utakatalp/assistant-manager-sim/internal/simulation"
)

const (
	attackColumn  = "Attack Strength"
	defenceColumn = "Defence Strength"
)

// ReadRatings parses a ratings sheet. The first column holds the team code.
func ReadRatings(r io.Reader) (league.Ratings, error) {
	header, records, err := readAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading ratings: %w", err)
	}

	attackIdx, defenceIdx := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case attackColumn:
			attackIdx = i
		case defenceColumn:
			defenceIdx = i
		}
	}
	if attackIdx <= 0 || defenceIdx <= 0 {
		return nil, fmt.Errorf("reading ratings: header must contain %q and %q after the team column", attackColumn, defenceColumn)
	}

	ratings := make(league.Ratings, len(records))
	for n, rec := range records {
		line := n + 2
		code := strings.TrimSpace(rec[0])
		if code == "" {
			return nil, fmt.Errorf("reading ratings: line %d: empty team code", line)
		}
		if _, dup := ratings[code]; dup {
			return nil, fmt.Errorf("reading ratings: line %d: duplicate team %q", line, code)
		}
		attack, err := strconv.ParseFloat(strings.TrimSpace(rec[attackIdx]), 64)
		if err != nil {
			return nil, fmt.Errorf("reading ratings: line %d: attack: %w", line, err)
		}
		defence, err := strconv.ParseFloat(strings.TrimSpace(rec[defenceIdx]), 64)
		if err != nil {
			return nil, fmt.Errorf("reading ratings: line %d: defence: %w", line, err)
		}
		ratings[code] = league.Rating{Attack: attack, Defence: defence}
	}
	return ratings, nil
}

// PriceTable is the manager price sheet, kept verbatim so it can be written
// back out with projections appended.
type PriceTable struct {
	Header []string
	Rows   [][]string
}

// Teams returns the team codes in sheet order.
func (p *PriceTable) Teams() []string {
	teams := make([]string, len(p.Rows))
	for i, r := range p.Rows {
		teams[i] = r[0]
	}
	return teams
}

// ReadPrices parses a manager price sheet. The first column holds the team
// code; all other columns are carried through untouched.
func ReadPrices(r io.Reader) (*PriceTable, error) {
	header, records, err := readAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading prices: %w", err)
	}
	for n, rec := range records {
		rec[0] = strings.TrimSpace(rec[0])
		if rec[0] == "" {
			return nil, fmt.Errorf("reading prices: line %d: empty team code", n+2)
		}
	}
	return &PriceTable{Header: header, Rows: records}, nil
}

// WriteProjections writes the price sheet with one "<gameweek>_Pts" column per
// projected gameweek. Teams without a projection get empty cells.
func WriteProjections(w io.Writer, prices *PriceTable, p *simulation.Projection) error {
	cw := csv.NewWriter(w)

	header := append([]string{}, prices.Header...)
	for _, gw := range p.Gameweeks {
		header = append(header, fmt.Sprintf("%d_Pts", gw))
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing projections header: %w", err)
	}

	for _, row := range prices.Rows {
		out := append([]string{}, row...)
		for _, gw := range p.Gameweeks {
			cell := ""
			if v, ok := p.Points(row[0], gw); ok {
				cell = strconv.FormatFloat(v, 'f', -1, 64)
			}
			out = append(out, cell)
		}
		if err := cw.Write(out); err != nil {
			return fmt.Errorf("writing projections for %s: %w", row[0], err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing projections: %w", err)
	}
	return nil
}

func readAll(r io.Reader) ([]string, [][]string, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, errors.New("empty file")
	}
	if err != nil {
		return nil, nil, err
	}
	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	return header, records, nil
}
