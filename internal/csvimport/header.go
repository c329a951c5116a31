package csvimport

// Column names of the supplier export, in the order they are reported when
// missing.
const (
	ColCity        = "Населено място"
	ColStore       = "Търговски обект"
	ColProductName = "Наименование на продукта"
	ColProductCode = "Код на продукта"
	ColRetailPrice = "Цена на дребно"
	ColPromoPrice  = "Цена в промоция"
)

// RequiredHeaders lists every column an import file must carry.
var RequiredHeaders = []string{
	ColCity, ColStore, ColProductName, ColProductCode, ColRetailPrice, ColPromoPrice,
}

// Row is one data line mapped onto the required columns. Cells missing from
// a short line are empty.
type Row struct {
	City        string
	Store       string
	ProductName string
	ProductCode string
	RetailPrice string
	PromoPrice  string
}

// PriceText returns the promo price, or the retail price when promo is blank.
func (r Row) PriceText() string {
	if r.PromoPrice != "" {
		return r.PromoPrice
	}
	return r.RetailPrice
}

// Header holds the column index of each required field.
type Header struct {
	city, store, name, code, retail, promo int
}

// ResolveHeader locates the required columns in a header line. missing lists
// the absent column names in RequiredHeaders order; when it is non-empty the
// returned Header must not be used.
func ResolveHeader(header []string) (Header, []string) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		if _, seen := pos[h]; !seen {
			pos[h] = i
		}
	}

	var missing []string
	idx := func(name string) int {
		i, ok := pos[name]
		if !ok {
			missing = append(missing, name)
			return -1
		}
		return i
	}

	h := Header{
		city:   idx(ColCity),
		store:  idx(ColStore),
		name:   idx(ColProductName),
		code:   idx(ColProductCode),
		retail: idx(ColRetailPrice),
		promo:  idx(ColPromoPrice),
	}
	return h, missing
}

// Row maps fields onto the resolved columns.
func (h Header) Row(fields []string) Row {
	at := func(i int) string {
		if i < 0 || i >= len(fields) {
			return ""
		}
		return fields[i]
	}
	return Row{
		City:        at(h.city),
		Store:       at(h.store),
		ProductName: at(h.name),
		ProductCode: at(h.code),
		RetailPrice: at(h.retail),
		PromoPrice:  at(h.promo),
	}
}
