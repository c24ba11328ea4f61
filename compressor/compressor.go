// Package compressor shrinks the parsing tables of a compiled grammar. Identical rows (states with the
// same actions) are merged first, then the remaining rows are overlaid on one array by row displacement.
package compressor

import (
	"encoding/binary"
	"fmt"
	"sort"

	spec "github.com/tern-lang/tern/spec/grammar"
)

// forbidden marks a cell of the displacement array that no row owns.
const forbidden = -1

type table struct {
	entries  []int
	rowCount int
	colCount int
}

func newTable(entries []int, colCount int) (*table, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("entries is empty")
	}
	if colCount <= 0 {
		return nil, fmt.Errorf("colCount must be >=1")
	}
	if len(entries)%colCount != 0 {
		return nil, fmt.Errorf("entries length or column count are incorrect; entries length: %v, column count: %v", len(entries), colCount)
	}

	return &table{
		entries:  entries,
		rowCount: len(entries) / colCount,
		colCount: colCount,
	}, nil
}

func (t *table) row(r int) []int {
	return t.entries[r*t.colCount : (r+1)*t.colCount]
}

// Compress compresses a row-major table of `colCount` columns. `emptyValue` is the value of the cells
// that the compressed table may leave out, such as the error entry of an action table.
func Compress(entries []int, colCount int, emptyValue int) (*spec.CompressedTable, error) {
	orig, err := newTable(entries, colCount)
	if err != nil {
		return nil, err
	}

	uniq, rowNums := mergeRows(orig)
	ents, bounds, disp := displaceRows(uniq, emptyValue)

	return &spec.CompressedTable{
		RowCount:        orig.rowCount,
		ColCount:        orig.colCount,
		EmptyValue:      emptyValue,
		RowNums:         rowNums,
		Entries:         ents,
		Bounds:          bounds,
		RowDisplacement: disp,
	}, nil
}

// mergeRows returns the table of the distinct rows and, for each original row, its distinct row number.
func mergeRows(orig *table) (*table, []int) {
	var uniqueEntries []int
	rowNums := make([]int, orig.rowCount)
	hash2RowNum := map[string]int{}
	nextRowNum := 0
	for row := 0; row < orig.rowCount; row++ {
		var rowHash string
		{
			buf := make([]byte, 0, orig.colCount*binary.MaxVarintLen64)
			for _, v := range orig.row(row) {
				buf = binary.AppendVarint(buf, int64(v))
			}
			rowHash = string(buf)
		}
		rowNum, ok := hash2RowNum[rowHash]
		if !ok {
			rowNum = nextRowNum
			nextRowNum++
			hash2RowNum[rowHash] = rowNum
			uniqueEntries = append(uniqueEntries, orig.row(row)...)
		}
		rowNums[row] = rowNum
	}

	return &table{
		entries:  uniqueEntries,
		rowCount: nextRowNum,
		colCount: orig.colCount,
	}, rowNums
}

type rowInfo struct {
	rowNum      int
	nonEmptyCol []int
}

// displaceRows places the rows on one array, the densest first, each at the lowest offset where its
// non-empty cells hit only empty cells.
func displaceRows(tab *table, emptyValue int) ([]int, []int, []int) {
	rows := make([]rowInfo, tab.rowCount)
	for r := 0; r < tab.rowCount; r++ {
		rows[r].rowNum = r
		for c, v := range tab.row(r) {
			if v != emptyValue {
				rows[r].nonEmptyCol = append(rows[r].nonEmptyCol, c)
			}
		}
	}
	sort.SliceStable(rows, func(i int, j int) bool {
		return len(rows[i].nonEmptyCol) > len(rows[j].nonEmptyCol)
	})

	size := len(tab.entries) + tab.colCount
	entries := make([]int, size)
	bounds := make([]int, size)
	for i := 0; i < size; i++ {
		entries[i] = emptyValue
		bounds[i] = forbidden
	}
	displacement := make([]int, tab.rowCount)
	bottom := tab.colCount

	for _, ri := range rows {
		if len(ri.nonEmptyCol) == 0 {
			continue
		}

		d := 0
		for !fits(bounds, d, ri.nonEmptyCol) {
			d++
		}

		displacement[ri.rowNum] = d
		for _, c := range ri.nonEmptyCol {
			entries[d+c] = tab.entries[ri.rowNum*tab.colCount+c]
			bounds[d+c] = ri.rowNum
		}
		if d+tab.colCount > bottom {
			bottom = d + tab.colCount
		}
	}

	return entries[:bottom], bounds[:bottom], displacement
}

func fits(bounds []int, d int, cols []int) bool {
	for _, c := range cols {
		if bounds[d+c] != forbidden {
			return false
		}
	}
	return true
}
