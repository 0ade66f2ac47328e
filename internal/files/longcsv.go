package files

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	apperrors "aqdaily/internal/errors"
	"aqdaily/pkg/contracts/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadLongCSV loads a clean long file written by the exporter. The file must
// carry timestamp, measurand and value columns; any row that does not parse
// is a conversion error.
func ReadLongCSV(path, deviceID string) (domain.CanonicalLongTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.CanonicalLongTable{}, apperrors.NewStorageError(fmt.Sprintf("failed to open %s", path), err)
	}
	defer f.Close()
	return DecodeLongCSV(f, deviceID)
}

// DecodeLongCSV is ReadLongCSV over a reader.
func DecodeLongCSV(r io.Reader, deviceID string) (domain.CanonicalLongTable, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	reader := csv.NewReader(br)
	header, err := reader.Read()
	if err == io.EOF {
		return domain.CanonicalLongTable{}, apperrors.NewConversionError("long table for %s is empty", deviceID)
	}
	if err != nil {
		return domain.CanonicalLongTable{}, apperrors.NewConversionError("long table for %s: %v", deviceID, err)
	}

	idx := map[string]int{}
	for i, name := range header {
		idx[name] = i
	}
	tsCol, okT := idx[domain.TimestampKey]
	mCol, okM := idx["measurand"]
	vCol, okV := idx["value"]
	if !okT || !okM || !okV {
		return domain.CanonicalLongTable{}, apperrors.NewConversionError(
			"long table for %s lacks timestamp, measurand or value column", deviceID)
	}

	table := domain.CanonicalLongTable{DeviceID: deviceID}
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return domain.CanonicalLongTable{}, apperrors.NewConversionError("long table for %s line %d: %v", deviceID, line, err)
		}
		ts, err := time.Parse(domain.TimestampLayout, row[tsCol])
		if err != nil {
			return domain.CanonicalLongTable{}, apperrors.NewConversionError(
				"long table for %s line %d: bad timestamp %q", deviceID, line, row[tsCol])
		}
		v, err := strconv.ParseFloat(row[vCol], 64)
		if err != nil {
			return domain.CanonicalLongTable{}, apperrors.NewConversionError(
				"long table for %s line %d: non-numeric value %q", deviceID, line, row[vCol])
		}
		table.Records = append(table.Records, domain.CanonicalRecord{
			Timestamp: ts,
			Measurand: row[mCol],
			Value:     v,
		})
	}
	return table, nil
}
