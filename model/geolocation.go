package model

type Point struct {
	Latitude  float64
	Longitude float64
}

type Box struct {
	WestLongitude float64
	EastLongitude float64
	SouthLatitude float64
	NorthLatitude float64
}

// GeoLocation holds at most one shape. A location made only of a place name
// is valid.
type GeoLocation struct {
	Place   string
	Point   *Point
	Box     *Box
	Polygon []Point
}
