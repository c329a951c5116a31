package catalog

import (
	_ "embed"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

//go:embed data/region_codes.csv
var embeddedRegions string

// RegionTable maps numeric administrative codes to city names.
type RegionTable struct {
	byCode map[string]string
}

// Lookup returns the city registered for code. Leading zeros are ignored.
func (t *RegionTable) Lookup(code string) (string, bool) {
	if t == nil {
		return "", false
	}
	name, ok := t.byCode[canonicalCode(code)]
	return name, ok
}

// Len reports the number of codes in the table.
func (t *RegionTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.byCode)
}

// ParseRegionTable reads "code,city" rows. A header row whose first cell is
// not numeric is skipped, as are rows with an empty code or city.
func ParseRegionTable(r io.Reader) (*RegionTable, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	t := &RegionTable{byCode: make(map[string]string)}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("region table: %w", err)
		}
		if len(rec) < 2 {
			continue
		}
		code := strings.TrimSpace(rec[0])
		city := strings.TrimSpace(rec[1])
		if code == "" || city == "" || !isDigits(code) {
			continue
		}
		t.byCode[canonicalCode(code)] = city
	}
	return t, nil
}

// LoadRegionTable reads the table from path, or from the copy embedded in
// the binary when path is empty.
func LoadRegionTable(path string) (*RegionTable, error) {
	if strings.TrimSpace(path) == "" {
		return ParseRegionTable(strings.NewReader(embeddedRegions))
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseRegionTable(f)
}

var (
	regionsOnce sync.Once
	regions     *RegionTable
	regionsErr  error
)

// Regions loads the process-wide region table on first use and caches it for
// the process lifetime. Later calls ignore path. On a load error an empty
// table is cached alongside the error.
func Regions(path string) (*RegionTable, error) {
	regionsOnce.Do(func() {
		regions, regionsErr = LoadRegionTable(path)
		if regionsErr != nil {
			regions = &RegionTable{byCode: map[string]string{}}
		}
	})
	return regions, regionsErr
}

func canonicalCode(code string) string {
	c := strings.TrimLeft(strings.TrimSpace(code), "0")
	if c == "" {
		return "0"
	}
	return c
}
