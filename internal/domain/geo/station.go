package geo

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Station is a subway station with its coordinates in degrees.
type Station struct {
	Name      string  `yaml:"name"`
	Latitude  float64 `yaml:"lat"`
	Longitude float64 `yaml:"lon"`
}

// Stations is a fixed table of stations searched for the nearest one.
type Stations []Station

type stationsFile struct {
	Stations Stations `yaml:"stations"`
}

// LoadStations reads a station table from a YAML file of the form
//
//	stations:
//	  - {name: 서울역, lat: 37.5547, lon: 126.9707}
func LoadStations(path string) (Stations, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from operator config
	if err != nil {
		return nil, fmt.Errorf("read stations: %w", err)
	}
	var f stationsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse stations: %w", err)
	}
	if err := f.Stations.Validate(); err != nil {
		return nil, err
	}
	return f.Stations, nil
}

// Validate checks that every station is named and has valid coordinates.
func (s Stations) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("station table is empty")
	}
	for i, st := range s {
		if st.Name == "" {
			return fmt.Errorf("station %d: name is required", i)
		}
		if !ValidateCoordinates(st.Latitude, st.Longitude) {
			return fmt.Errorf("station %q: invalid coordinates (%f, %f)", st.Name, st.Latitude, st.Longitude)
		}
	}
	return nil
}

// Nearest returns the station closest to (lat, lon) and its distance in km
// rounded to 0.01. ok is false for an empty table.
// Ties keep the station listed first.
func (s Stations) Nearest(lat, lon float64) (st Station, km float64, ok bool) {
	best := math.Inf(1)
	for _, cand := range s {
		d := Distance(lat, lon, cand.Latitude, cand.Longitude)
		if d < best {
			best, st, ok = d, cand, true
		}
	}
	if !ok {
		return Station{}, 0, false
	}
	return st, math.Round(best/10) / 100, true
}

// SeoulStations is the built-in table of Seoul subway stations.
var SeoulStations = Stations{
	{"서울역", 37.5547, 126.9707},
	{"시청", 37.5657, 126.9769},
	{"광화문", 37.5710, 126.9768},
	{"경복궁", 37.5759, 126.9735},
	{"안국", 37.5765, 126.9854},
	{"종각", 37.5702, 126.9831},
	{"종로3가", 37.5715, 126.9916},
	{"을지로입구", 37.5660, 126.9826},
	{"을지로3가", 37.5663, 126.9910},
	{"동대문", 37.5714, 127.0098},
	{"동대문역사문화공원", 37.5653, 127.0079},
	{"신당", 37.5656, 127.0195},
	{"상왕십리", 37.5644, 127.0290},
	{"왕십리", 37.5612, 127.0371},
	{"신설동", 37.5752, 127.0250},
	{"제기동", 37.5783, 127.0348},
	{"청량리", 37.5801, 127.0470},
	{"답십리", 37.5669, 127.0526},
	{"회기", 37.5894, 127.0575},
	{"혜화", 37.5822, 127.0019},
	{"성신여대입구", 37.5926, 127.0170},
	{"미아사거리", 37.6132, 127.0302},
	{"수유", 37.6380, 127.0257},
	{"창동", 37.6531, 127.0477},
	{"노원", 37.6554, 127.0614},
	{"태릉입구", 37.6180, 127.0752},
	{"상봉", 37.5966, 127.0853},
	{"면목", 37.5886, 127.0875},
	{"충정로", 37.5597, 126.9636},
	{"공덕", 37.5443, 126.9516},
	{"마포", 37.5395, 126.9459},
	{"이대", 37.5567, 126.9460},
	{"신촌", 37.5551, 126.9369},
	{"홍대입구", 37.5572, 126.9245},
	{"합정", 37.5495, 126.9139},
	{"당산", 37.5349, 126.9023},
	{"영등포구청", 37.5249, 126.8960},
	{"여의도", 37.5216, 126.9243},
	{"신도림", 37.5088, 126.8913},
	{"대림", 37.4925, 126.8949},
	{"구로디지털단지", 37.4853, 126.9015},
	{"가산디지털단지", 37.4815, 126.8825},
	{"목동", 37.5260, 126.8644},
	{"까치산", 37.5317, 126.8466},
	{"김포공항", 37.5624, 126.8013},
	{"연신내", 37.6190, 126.9210},
	{"불광", 37.6104, 126.9298},
	{"용산", 37.5298, 126.9648},
	{"삼각지", 37.5347, 126.9731},
	{"이태원", 37.5345, 126.9943},
	{"한남", 37.5293, 127.0090},
	{"옥수", 37.5405, 127.0177},
	{"성수", 37.5446, 127.0557},
	{"건대입구", 37.5404, 127.0696},
	{"천호", 37.5386, 127.1236},
	{"강동", 37.5358, 127.1325},
	{"길동", 37.5380, 127.1400},
	{"잠실", 37.5133, 127.1001},
	{"석촌", 37.5055, 127.1069},
	{"가락시장", 37.4927, 127.1183},
	{"수서", 37.4873, 127.1018},
	{"삼성", 37.5089, 127.0631},
	{"선릉", 37.5045, 127.0490},
	{"역삼", 37.5006, 127.0366},
	{"강남", 37.4979, 127.0276},
	{"교대", 37.4934, 127.0142},
	{"서초", 37.4919, 127.0076},
	{"고속터미널", 37.5049, 127.0049},
	{"신사", 37.5163, 127.0203},
	{"압구정", 37.5270, 127.0284},
	{"사당", 37.4765, 126.9816},
	{"서울대입구", 37.4812, 126.9527},
	{"신림", 37.4842, 126.9297},
}
