package models

import (
	"slices"

	dErrors "portal/pkg/domain-errors"
)

// Province is one of the seven provinces. Both Region and Address.State use it.
type Province string

const (
	ProvinceKoshi         Province = "Koshi"
	ProvinceMadhesh       Province = "Madhesh"
	ProvinceBagmati       Province = "Bagmati"
	ProvinceGandaki       Province = "Gandaki"
	ProvinceLumbini       Province = "Lumbini"
	ProvinceKarnali       Province = "Karnali"
	ProvinceSudurpashchim Province = "Sudurpashchim"
)

// Provinces lists every province in display order.
var Provinces = []Province{
	ProvinceKoshi,
	ProvinceMadhesh,
	ProvinceBagmati,
	ProvinceGandaki,
	ProvinceLumbini,
	ProvinceKarnali,
	ProvinceSudurpashchim,
}

// ParseProvince accepts only members of the closed province set.
func ParseProvince(s string) (Province, error) {
	p := Province(s)
	if !slices.Contains(Provinces, p) {
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown province: "+s)
	}
	return p, nil
}

// Weekday is a working day name.
type Weekday string

const (
	Monday    Weekday = "Monday"
	Tuesday   Weekday = "Tuesday"
	Wednesday Weekday = "Wednesday"
	Thursday  Weekday = "Thursday"
	Friday    Weekday = "Friday"
	Saturday  Weekday = "Saturday"
	Sunday    Weekday = "Sunday"
)

// Weekdays lists every weekday in display order.
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// ParseWeekday accepts only members of the closed weekday set.
func ParseWeekday(s string) (Weekday, error) {
	d := Weekday(s)
	if !slices.Contains(Weekdays, d) {
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown weekday: "+s)
	}
	return d, nil
}

// SortWeekdays returns a copy of days in Monday→Sunday order. Unknown values
// sort last in their original relative order.
func SortWeekdays(days []Weekday) []Weekday {
	out := slices.Clone(days)
	slices.SortStableFunc(out, func(a, b Weekday) int {
		return weekdayRank(a) - weekdayRank(b)
	})
	return out
}

func weekdayRank(d Weekday) int {
	if i := slices.Index(Weekdays, d); i >= 0 {
		return i
	}
	return len(Weekdays)
}

// Service is a logistics service a center can offer.
type Service string

const (
	ServiceStorage             Service = "Storage"
	ServiceDistribution        Service = "Distribution"
	ServicePackaging           Service = "Packaging"
	ServiceColdStorage         Service = "Cold Storage"
	ServiceLastMileDelivery    Service = "Last Mile Delivery"
	ServiceReturnsProcessing   Service = "Returns Processing"
	ServiceInventoryManagement Service = "Inventory Management"
)

// Services lists every offered service in display order.
var Services = []Service{
	ServiceStorage,
	ServiceDistribution,
	ServicePackaging,
	ServiceColdStorage,
	ServiceLastMileDelivery,
	ServiceReturnsProcessing,
	ServiceInventoryManagement,
}

// ParseService accepts only members of the closed service set.
func ParseService(s string) (Service, error) {
	svc := Service(s)
	if !slices.Contains(Services, svc) {
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown service: "+s)
	}
	return svc, nil
}
