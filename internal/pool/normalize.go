package pool

import (
	"math"
	"strconv"
	"strings"

	"github.com/fire-ai/valuation-cli/internal/model"
)

// rawRecord is one pool entry before normalization. Field names drift across
// data-provider versions: some feeds carry RESO names (BedroomsTotal,
// LivingArea, ClosePrice), others the flattened names of the cleaned feed
// (bedrooms, areaSqft, price). Normalization happens here, at the pool
// boundary, so the selection engine never does multi-key lookups.
type rawRecord map[string]any

// Normalize converts a raw pool entry into a typed CandidateRecord. It
// returns false when the entry carries none of the known fields.
func Normalize(raw rawRecord) (model.CandidateRecord, bool) {
	if len(raw) == 0 {
		return model.CandidateRecord{}, false
	}

	var rec model.CandidateRecord
	var found bool

	if v, ok := raw.str("UnparsedAddress", "address"); ok {
		rec.Address = v
		found = true
	}
	if v, ok := raw.str("City", "city"); ok {
		rec.City = v
		found = true
	}
	if v, ok := raw.str("StateOrProvince", "state"); ok {
		rec.State = v
		found = true
	}
	if v, ok := raw.str("PostalCode", "zip"); ok {
		rec.ZipCode = v
		found = true
	}
	if v, ok := raw.coordinate("Latitude", "latitude"); ok {
		rec.Latitude = &v
		found = true
	}
	if v, ok := raw.coordinate("Longitude", "longitude"); ok {
		rec.Longitude = &v
		found = true
	}
	if v, ok := raw.num("BedroomsTotal", "bedrooms"); ok {
		rec.Bedrooms = int(v)
		found = true
	}
	if baths, ok := bathrooms(raw); ok {
		rec.Bathrooms = baths
		found = true
	}
	if area, ok := livingArea(raw); ok {
		rec.AreaSqft = area
		found = true
	}
	if v, ok := raw.num("ClosePrice", "price"); ok {
		rec.Price = v
		found = true
	}
	if v, ok := raw.num("YearBuilt", "yearBuilt"); ok {
		rec.YearBuilt = int(v)
		found = true
	}
	if v, ok := raw.str("MlsStatus", "status"); ok {
		rec.Status = v
		found = true
	} else if v, ok := raw.str("StandardStatus", "standardStatus"); ok {
		rec.Status = v
		found = true
	}

	return rec, found
}

// NormalizeAll converts a list of raw entries, dropping empty ones.
func NormalizeAll(raws []rawRecord) []model.CandidateRecord {
	records := make([]model.CandidateRecord, 0, len(raws))
	for _, raw := range raws {
		if rec, ok := Normalize(raw); ok {
			records = append(records, rec)
		}
	}
	return records
}

// bathrooms combines full and half baths into one decimal count when the
// feed splits them, otherwise uses the pre-combined value.
func bathrooms(raw rawRecord) (float64, bool) {
	if full, ok := raw.num("BathroomsFull"); ok {
		half, _ := raw.num("BathroomsHalf")
		return full + half*0.5, true
	}
	return raw.num("bathrooms")
}

// livingArea prefers LivingArea and falls back to the total building area.
func livingArea(raw rawRecord) (int, bool) {
	if v, ok := raw.num("LivingArea", "areaSqft"); ok && v > 0 {
		return int(math.Round(v)), true
	}
	if v, ok := raw.num("BuildingAreaTotal", "buildingAreaTotal"); ok && v > 0 {
		return int(math.Round(v)), true
	}
	return 0, false
}

// str returns the first present, non-blank string value among keys.
func (r rawRecord) str(keys ...string) (string, bool) {
	for _, key := range keys {
		v, ok := r[key]
		if !ok {
			continue
		}
		if s, ok := v.(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				return s, true
			}
		}
	}
	return "", false
}

// coordinate reads a latitude or longitude. Feeds write 0 for unknown
// positions, so zero is absence, not a point on the 0 graticule.
func (r rawRecord) coordinate(keys ...string) (float64, bool) {
	v, ok := r.num(keys...)
	if !ok || v == 0 {
		return 0, false
	}
	return v, true
}

// num returns the first present numeric value among keys. JSON numbers
// decode as float64; numeric strings in older feeds are parsed too.
func (r rawRecord) num(keys ...string) (float64, bool) {
	for _, key := range keys {
		v, ok := r[key]
		if !ok || v == nil {
			continue
		}
		switch n := v.(type) {
		case float64:
			return n, true
		case int:
			return float64(n), true
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}
