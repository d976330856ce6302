package weather

import "math"

// Lambert conformal conic projection constants for the KMA forecast grid.
const (
	earthRadiusKM = 6371.00877
	gridSpacingKM = 5.0
	projLat1Deg   = 30.0
	projLat2Deg   = 60.0
	originLonDeg  = 126.0
	originLatDeg  = 38.0
	originX       = 43
	originY       = 136
)

// ToGrid converts latitude/longitude to the KMA grid cell (nx, ny).
func ToGrid(lat, lon float64) (int, int) {
	degrad := math.Pi / 180.0

	re := earthRadiusKM / gridSpacingKM
	slat1 := projLat1Deg * degrad
	slat2 := projLat2Deg * degrad
	olon := originLonDeg * degrad
	olat := originLatDeg * degrad

	sn := math.Tan(math.Pi*0.25+slat2*0.5) / math.Tan(math.Pi*0.25+slat1*0.5)
	sn = math.Log(math.Cos(slat1)/math.Cos(slat2)) / math.Log(sn)
	sf := math.Tan(math.Pi*0.25 + slat1*0.5)
	sf = math.Pow(sf, sn) * math.Cos(slat1) / sn
	ro := math.Tan(math.Pi*0.25 + olat*0.5)
	ro = re * sf / math.Pow(ro, sn)

	ra := math.Tan(math.Pi*0.25 + lat*degrad*0.5)
	ra = re * sf / math.Pow(ra, sn)
	theta := lon*degrad - olon
	if theta > math.Pi {
		theta -= 2 * math.Pi
	}
	if theta < -math.Pi {
		theta += 2 * math.Pi
	}
	theta *= sn

	nx := int(math.Floor(ra*math.Sin(theta) + originX + 0.5))
	ny := int(math.Floor(ro - ra*math.Cos(theta) + originY + 0.5))
	return nx, ny
}
