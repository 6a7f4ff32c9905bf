// Package dataset loads card pairs and hint tables from CSV files.
package dataset

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/jun-nagaya/competitive-karuta-trainer/internal/kana"
)

// Pair is one card: an opening verse (kami) and its closing verse (shimo).
// IDs are sequential in load order and stable for the lifetime of the set.
type Pair struct {
	ID    int
	Kami  string
	Shimo string
}

// LoadPairs reads kami/shimo pairs from a CSV file. The header may name the
// columns 上の句 and 下の句; otherwise the first two columns are used. Rows
// with missing fields are skipped and duplicate (kami, shimo) pairs keep the
// first occurrence. Lines without a comma fall back to splitting on the first
// 、 so that loosely formatted lists still load.
func LoadPairs(path string) ([]Pair, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only dataset.
			_ = cerr
		}
	}()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("dataset is empty")
	}

	kamiCol, shimoCol := headerColumns(lines[0])

	var pairs []Pair
	seen := map[[2]string]struct{}{}
	appendPair := func(kami, shimo string) {
		kami = kana.Normalize(kami)
		shimo = kana.Normalize(shimo)
		if kami == "" || shimo == "" {
			return
		}
		key := [2]string{kami, shimo}
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		pairs = append(pairs, Pair{ID: len(pairs), Kami: kami, Shimo: shimo})
	}

	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.Contains(line, ",") {
			fields, err := parseCSVLine(line)
			if err != nil || len(fields) <= kamiCol || len(fields) <= shimoCol {
				continue
			}
			appendPair(fields[kamiCol], fields[shimoCol])
			continue
		}
		// Fallback for lines using a Japanese comma as the separator.
		if idx := strings.Index(line, "、"); idx >= 0 {
			appendPair(line[:idx], line[idx+len("、"):])
		}
	}

	if len(pairs) == 0 {
		return nil, fmt.Errorf("no valid kami/shimo pairs in %s", path)
	}
	return pairs, nil
}

// IndexByID builds an id-keyed lookup for the given pairs.
func IndexByID(pairs []Pair) map[int]Pair {
	byID := make(map[int]Pair, len(pairs))
	for _, p := range pairs {
		byID[p.ID] = p
	}
	return byID
}

func headerColumns(header string) (kamiCol, shimoCol int) {
	kamiCol, shimoCol = 0, 1
	fields, err := parseCSVLine(header)
	if err != nil {
		return kamiCol, shimoCol
	}
	for i, name := range fields {
		switch strings.ReplaceAll(strings.TrimSpace(name), " ", "") {
		case "上の句":
			kamiCol = i
		case "下の句":
			shimoCol = i
		}
	}
	return kamiCol, shimoCol
}

func parseCSVLine(line string) ([]string, error) {
	reader := csv.NewReader(strings.NewReader(line))
	reader.FieldsPerRecord = -1
	return reader.Read()
}

// HintTable maps cards to optional hint text from a kimariji CSV.
type HintTable struct {
	byID    map[int]string
	byKami  map[string]string
	byShimo map[string]string
}

// NewHintTable returns an empty hint table.
func NewHintTable() *HintTable {
	return &HintTable{
		byID:    map[int]string{},
		byKami:  map[string]string{},
		byShimo: map[string]string{},
	}
}

// LoadHints reads a hint table. Recognized columns are id, 上の句, 下の句,
// and ヒント; rows with an empty or "-" hint are dropped. A missing file is
// not an error and yields an empty table.
func LoadHints(path string) (*HintTable, error) {
	table := NewHintTable()
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return table, nil
		}
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only hint table.
			_ = cerr
		}
	}()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return table, nil
	}

	idCol, kamiCol, shimoCol, hintCol := -1, -1, -1, -1
	for i, name := range rows[0] {
		switch strings.ReplaceAll(strings.TrimSpace(name), " ", "") {
		case "id":
			idCol = i
		case "上の句":
			kamiCol = i
		case "下の句":
			shimoCol = i
		case "ヒント":
			hintCol = i
		}
	}
	if hintCol < 0 {
		return table, nil
	}

	for _, row := range rows[1:] {
		if len(row) <= hintCol {
			continue
		}
		hint := strings.TrimSpace(row[hintCol])
		if hint == "" || hint == "-" {
			continue
		}
		if idCol >= 0 && idCol < len(row) {
			if id, err := strconv.Atoi(strings.TrimSpace(row[idCol])); err == nil {
				table.byID[id] = hint
			}
		}
		if kamiCol >= 0 && kamiCol < len(row) {
			if kami := kana.Normalize(row[kamiCol]); kami != "" {
				table.byKami[kami] = hint
			}
		}
		if shimoCol >= 0 && shimoCol < len(row) {
			if shimo := kana.Normalize(row[shimoCol]); shimo != "" {
				table.byShimo[shimo] = hint
			}
		}
	}
	return table, nil
}

// Lookup resolves the hint for a pair, preferring the id key over verse text.
func (t *HintTable) Lookup(p Pair) string {
	if hint, ok := t.byID[p.ID]; ok {
		return hint
	}
	if hint, ok := t.byKami[p.Kami]; ok {
		return hint
	}
	if hint, ok := t.byShimo[p.Shimo]; ok {
		return hint
	}
	return ""
}

// Len reports the number of distinct hint keys loaded by id.
func (t *HintTable) Len() int {
	return len(t.byID)
}
