package gbs

// DefaultBuildingTypeID is used when the host building type has no GBS counterpart (Office)
const DefaultBuildingTypeID = 1

// DefaultScheduleID is the GBS default operating schedule
const DefaultScheduleID = 1

// buildingTypes maps gbXML building type names, as the host reports them, to GBS building type ids
var buildingTypes = map[string]int{
	"Office":                   1,
	"AutomotiveFacility":       2,
	"ConventionCenter":         3,
	"Courthouse":               4,
	"DiningBarLoungeOrLeisure": 5,
	"DiningCafeteriaFastFood":  6,
	"DiningFamily":             7,
	"Dormitory":                8,
	"ExerciseCenter":           9,
	"FireStation":              10,
	"Gymnasium":                11,
	"HospitalOrHealthcare":     12,
	"Hotel":                    13,
	"Library":                  14,
	"Manufacturing":            15,
	"Motel":                    16,
	"MotionPictureTheatre":     17,
	"MultiFamily":              18,
	"Museum":                   19,
	"ParkingGarage":            20,
	"Penitentiary":             21,
	"PerformingArtsTheater":    22,
	"PoliceStation":            23,
	"PostOffice":               24,
	"ReligiousBuilding":        25,
	"Retail":                   26,
	"SchoolOrUniversity":       27,
	"SingleFamily":             28,
	"SportsArena":              29,
	"TownHall":                 30,
	"Transportation":           31,
	"Warehouse":                32,
	"Workshop":                 33,
}

// schedules maps gbXML operating schedule names to GBS schedule ids
var schedules = map[string]int{
	"DefaultOperatingSchedule":          1,
	"TwelveHourSixDayFacility":          2,
	"TwelveHourFiveDayFacility":         3,
	"TwelveHourSevenDayFacility":        4,
	"TwentyFourHourHourSixDayFacility":  5,
	"TwentyFourHourHourFiveDayFacility": 6,
	"TwentyFourHourSevenDayFacility":    7,
	"KindergartenThruTwelveGradeSchool": 8,
	"YearRoundSchool":                   9,
	"TheaterPerformingArts":             10,
	"Worship":                           11,
}

// RemapBuildingType returns the GBS building type id for a host building type name
func RemapBuildingType(name string) int {
	if id, ok := buildingTypes[name]; ok {
		return id
	}
	return DefaultBuildingTypeID
}

// RemapScheduleType returns the GBS schedule id for a host operating schedule name
func RemapScheduleType(name string) int {
	if id, ok := schedules[name]; ok {
		return id
	}
	return DefaultScheduleID
}
