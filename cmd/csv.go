package cmd

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/rmi-compiler/rmi/dataview"
)

// readDataFile parses a two-column "key,position" CSV into a dataview.Data,
// choosing the IntInt/IntFloat/FloatInt/FloatFloat variant from the
// key/position type flags.
func readDataFile(path string, keyFloat, posFloat bool) (*dataview.Data, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("rmi: open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 2

	var (
		intInt     []dataview.IntIntPair
		intFloat   []dataview.IntFloatPair
		floatInt   []dataview.FloatIntPair
		floatFloat []dataview.FloatFloatPair
	)

	lineNo := 0
	for {
		lineNo++
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("rmi: parse %s at line %d: %w", path, lineNo, err)
		}

		switch {
		case !keyFloat && !posFloat:
			k, p, err := parseUintPair(record)
			if err != nil {
				return nil, fmt.Errorf("rmi: %s line %d: %w", path, lineNo, err)
			}
			intInt = append(intInt, dataview.IntIntPair{Key: k, Pos: p})
		case !keyFloat && posFloat:
			k, err := strconv.ParseUint(record[0], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("rmi: %s line %d: %w", path, lineNo, err)
			}
			p, err := strconv.ParseFloat(record[1], 64)
			if err != nil {
				return nil, fmt.Errorf("rmi: %s line %d: %w", path, lineNo, err)
			}
			intFloat = append(intFloat, dataview.IntFloatPair{Key: k, Pos: p})
		case keyFloat && !posFloat:
			k, err := strconv.ParseFloat(record[0], 64)
			if err != nil {
				return nil, fmt.Errorf("rmi: %s line %d: %w", path, lineNo, err)
			}
			p, err := strconv.ParseUint(record[1], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("rmi: %s line %d: %w", path, lineNo, err)
			}
			floatInt = append(floatInt, dataview.FloatIntPair{Key: k, Pos: p})
		default:
			k, p, err := parseFloatPair(record)
			if err != nil {
				return nil, fmt.Errorf("rmi: %s line %d: %w", path, lineNo, err)
			}
			floatFloat = append(floatFloat, dataview.FloatFloatPair{Key: k, Pos: p})
		}
	}

	switch {
	case !keyFloat && !posFloat:
		return dataview.NewIntInt(intInt), nil
	case !keyFloat && posFloat:
		return dataview.NewIntFloat(intFloat), nil
	case keyFloat && !posFloat:
		return dataview.NewFloatInt(floatInt), nil
	default:
		return dataview.NewFloatFloat(floatFloat), nil
	}
}

func parseUintPair(record []string) (uint64, uint64, error) {
	k, err := strconv.ParseUint(record[0], 10, 64)
	if err != nil {
		return 0, 0, err
	}
	p, err := strconv.ParseUint(record[1], 10, 64)
	if err != nil {
		return 0, 0, err
	}
	return k, p, nil
}

func parseFloatPair(record []string) (float64, float64, error) {
	k, err := strconv.ParseFloat(record[0], 64)
	if err != nil {
		return 0, 0, err
	}
	p, err := strconv.ParseFloat(record[1], 64)
	if err != nil {
		return 0, 0, err
	}
	return k, p, nil
}
