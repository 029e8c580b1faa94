package normalize

// MeasurementType is the display name and unit of a recognized reading.
type MeasurementType struct {
	Name string
	Unit string
}

// MeasurementTypes is the allow-list for body measurements. Readings of any
// other type are dropped.
var MeasurementTypes = map[int]MeasurementType{
	1:  {"Weight", "kg"},
	4:  {"Height", "m"},
	5:  {"Fat-free mass", "kg"},
	6:  {"Body fat", "%"},
	8:  {"Fat mass", "kg"},
	9:  {"Diastolic BP", "mmHg"},
	10: {"Systolic BP", "mmHg"},
	11: {"Heart rate", "bpm"},
	12: {"Temperature", "°C"},
	54: {"SpO2", "%"},
	71: {"Body temperature", "°C"},
	76: {"Muscle mass", "kg"},
	88: {"Bone mass", "kg"},
	91: {"Pulse wave velocity", "m/s"},
}

var WorkoutCategories = map[int]string{
	1:   "Walk",
	2:   "Run",
	3:   "Hiking",
	4:   "Skating",
	5:   "BMX",
	6:   "Bicycling",
	7:   "Swimming",
	8:   "Surfing",
	9:   "Kitesurfing",
	10:  "Windsurfing",
	11:  "Bodyboard",
	12:  "Tennis",
	13:  "Table tennis",
	14:  "Squash",
	15:  "Badminton",
	16:  "Lift weights",
	17:  "Calisthenics",
	18:  "Elliptical",
	19:  "Pilates",
	20:  "Basketball",
	21:  "Soccer",
	22:  "Football",
	23:  "Rugby",
	24:  "Volleyball",
	25:  "Waterpolo",
	26:  "Horse riding",
	27:  "Golf",
	28:  "Yoga",
	29:  "Dancing",
	30:  "Boxing",
	31:  "Fencing",
	32:  "Wrestling",
	33:  "Martial arts",
	34:  "Skiing",
	35:  "Snowboarding",
	36:  "Other",
	188: "Rowing",
	191: "Ice hockey",
	192: "Handball",
	193: "Climbing",
	194: "Ice skating",
	272: "Multi-sport",
}

var SleepStates = map[int]string{
	0: "awake",
	1: "light",
	2: "deep",
	3: "rem",
}

// rename maps a raw vendor key to its output key.
type rename struct {
	from string
	to   string
}

var activityFields = []rename{
	{"steps", "steps"},
	{"calories", "calories"},
	{"totalcalories", "total_calories"},
	{"distance", "distance_km"},
	{"elevation", "elevation_m"},
	{"soft", "light_activity_min"},
	{"moderate", "moderate_activity_min"},
	{"intense", "intense_activity_min"},
	{"hr_average", "hr_average"},
	{"hr_min", "hr_min"},
	{"hr_max", "hr_max"},
}

var workoutFields = []rename{
	{"calories", "calories"},
	{"distance", "distance_km"},
	{"elevation", "elevation_m"},
	{"steps", "steps"},
	{"hr_average", "hr_average"},
	{"hr_min", "hr_min"},
	{"hr_max", "hr_max"},
	{"spo2_average", "spo2_average"},
}

var sleepDurationFields = []rename{
	{"deepsleepduration", "deep_hours"},
	{"lightsleepduration", "light_hours"},
	{"remsleepduration", "rem_hours"},
	{"wakeupduration", "awake_hours"},
	{"total_sleep_time", "total_sleep_hours"},
}

var sleepLatencyFields = []rename{
	{"durationtosleep", "time_to_sleep_min"},
	{"durationtowakeup", "time_to_wakeup_min"},
}

var sleepRenamedFields = []rename{
	{"wakeupcount", "wakeup_count"},
	{"breathing_disturbances_intensity", "breathing_disturbances"},
	{"snoringepisodecount", "snoring_episodes"},
}

var sleepPassthroughFields = []string{
	"sleep_score",
	"sleep_efficiency",
	"hr_average",
	"hr_min",
	"hr_max",
	"rr_average",
	"apnea_hypopnea_index",
}
