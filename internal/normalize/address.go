package normalize

import (
	"regexp"
	"strings"
)

// SeoulDistricts lists the 25 autonomous districts of Seoul.
var SeoulDistricts = []string{
	"강남구", "강동구", "강북구", "강서구", "관악구", "광진구", "구로구", "금천구",
	"노원구", "도봉구", "동대문구", "동작구", "마포구", "서대문구", "서초구", "성동구",
	"성북구", "송파구", "양천구", "영등포구", "용산구", "은평구", "종로구", "중구", "중랑구",
}

// A neighborhood token ends in 동 followed by a separator, so "강동구" is skipped.
var reNeighborhoodToken = regexp.MustCompile(`([\p{L}\p{N}]+` + NeighborhoodSuffix + `)(?:[^\p{L}\p{N}]|$)`)

// DistrictFromAddress returns the first Seoul district named in address, or "".
func DistrictFromAddress(address string) string {
	for _, d := range SeoulDistricts {
		if strings.Contains(address, d) {
			return d
		}
	}
	return ""
}

// NeighborhoodFromAddress returns the first whole token ending in 동, or "".
func NeighborhoodFromAddress(address string) string {
	s := strings.TrimSpace(address)
	if s == "" || s == "nan" || s == "None" {
		return ""
	}
	m := reNeighborhoodToken.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	return m[1]
}
