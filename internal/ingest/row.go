// Package ingest maps raw tabular rows from the open-data API and CSV
// exports onto catalog records.
package ingest

import "strings"

// Row is one raw source row keyed by column name.
type Row map[string]string

// first returns the trimmed value of the first present alias, and the alias.
func (r Row) first(aliases []string) (value, column string) {
	for _, a := range aliases {
		if v, ok := r[a]; ok {
			v = strings.TrimSpace(v)
			if isBlank(v) {
				continue
			}
			return v, a
		}
	}
	return "", ""
}

// has reports whether any alias is a column of r, even if empty.
func (r Row) has(aliases []string) bool {
	for _, a := range aliases {
		if _, ok := r[a]; ok {
			return true
		}
	}
	return false
}

// isBlank treats the null spellings of spreadsheet and dataframe exports as empty.
func isBlank(v string) bool {
	switch v {
	case "", "nan", "NaN", "None", "null", "NULL":
		return true
	default:
		return false
	}
}

// Column aliases for metadata rows. Open-data API names come first.
var (
	colDistrict       = []string{"SGG_ADDR", "자치구", "구"}
	colNeighborhood   = []string{"EMD_ADDR", "원본_EMD_ADDR", "동"}
	colName           = []string{"APT_NM", "아파트명"}
	colAddress        = []string{"APT_RDN_ADDR", "주소", "APT_STDG_ADDR", "원본_APT_STDG_ADDR"}
	colApprovalDate   = []string{"USE_APRV_YMD", "원본_USE_APRV_YMD"}
	colYear           = []string{"건축연도"}
	colUnits          = []string{"TNOHSH", "세대수"}
	colLayout         = []string{"ROAD_TYPE", "복도계단식"}
	colFloorArea      = []string{"RSDT_XUAR", "전용면적_제곱미터"}
	colParking        = []string{"PRK_CNTOM", "주차대수"}
	colLatitude       = []string{"YCRD", "위도"}
	colLongitude      = []string{"XCRD", "경도"}
	colUnitsUpTo60    = []string{"XUAR_HH_STTS60", "전용면적60㎡이하_세대수"}
	colUnits60To85    = []string{"XUAR_HH_STTS85", "전용면적60_85㎡_세대수"}
	colUnits85To135   = []string{"XUAR_HH_STTS135", "전용면적85_135㎡_세대수"}
	colStation        = []string{"가장가까운지하철역"}
	colSubwayDistance = []string{"지하철역거리_km"}
	colClassification = []string{"CMPX_CLSF", "원본_CMPX_CLSF"}
)

// Columns derived from others; they are recomputed, never kept as extras.
var derivedColumns = []string{
	"평형", "세대당평균전용면적_제곱미터", "세대당평균평형", "세대당주차면수",
	"평수", "실거래가", "기준연월일",
}

// Column aliases for transaction rows.
var (
	colTxDistrict     = []string{"구", "자치구", "SGG_ADDR"}
	colTxNeighborhood = []string{"동", "EMD_ADDR"}
	colTxName         = []string{"아파트명", "APT_NM"}
	colTxSize         = []string{"평수", "평형"}
	colTxPrice        = []string{"실거래가", "거래금액"}
	colTxDate         = []string{"기준연월일", "계약일"}
)

var metadataColumns = func() map[string]struct{} {
	m := map[string]struct{}{}
	groups := [][]string{
		colDistrict, colNeighborhood, colName, colAddress, colApprovalDate, colYear,
		colUnits, colLayout, colFloorArea, colParking, colLatitude, colLongitude,
		colUnitsUpTo60, colUnits60To85, colUnits85To135, colStation, colSubwayDistance,
		derivedColumns,
	}
	for _, g := range groups {
		for _, c := range g {
			m[c] = struct{}{}
		}
	}
	return m
}()
