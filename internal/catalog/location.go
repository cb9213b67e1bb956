package catalog

import "context"

// LocationResolver turns a GPS position into an address.
type LocationResolver interface {
	Resolve(ctx context.Context, gps GPS) (Location, error)
}

// PlaceholderResolver returns the same configured address for every
// position, filling in the coordinates. It stands in until a real
// reverse-geocoding service is wired up.
type PlaceholderResolver struct {
	Country          string `yaml:"country"`
	Province         string `yaml:"province"`
	City             string `yaml:"city"`
	District         string `yaml:"district"`
	Street           string `yaml:"street"`
	FormattedAddress string `yaml:"formattedAddress"`
}

// DefaultPlaceholder is the address the gallery has always shown.
func DefaultPlaceholder() PlaceholderResolver {
	return PlaceholderResolver{
		Country:          "中国",
		Province:         "北京市",
		City:             "北京市",
		District:         "朝阳区",
		Street:           "建国路88号",
		FormattedAddress: "中国北京市朝阳区建国路88号",
	}
}

// Resolve implements LocationResolver.
func (p PlaceholderResolver) Resolve(_ context.Context, gps GPS) (Location, error) {
	return Location{
		Coordinates:      &Coordinates{Latitude: gps.Latitude, Longitude: gps.Longitude},
		Country:          p.Country,
		Province:         p.Province,
		City:             p.City,
		District:         p.District,
		Street:           p.Street,
		FormattedAddress: p.FormattedAddress,
	}, nil
}
