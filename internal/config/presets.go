package config

import "sort"

// Heliocentric presets use AU and years, so mu = 4π².
const muSun = 39.47841760435743

var Presets = map[string]*Config{
	"inner-planets": {
		Name: "inner-planets", Mu: muSun, Dt: 0.002, Duration: 2.0, Integrator: "rk4",
		Bodies: []BodyConfig{
			{Name: "mercury", SemiMajorAxis: 0.387, Eccentricity: 0.2056, Inclination: 7.0, RAAN: 48.3, ArgPeriapsis: 29.1, MeanAnomaly: 174.8},
			{Name: "venus", SemiMajorAxis: 0.723, Eccentricity: 0.0068, Inclination: 3.39, RAAN: 76.7, ArgPeriapsis: 54.9, MeanAnomaly: 50.1},
			{Name: "earth", SemiMajorAxis: 1.0, Eccentricity: 0.0167, Inclination: 0.0, RAAN: 0, ArgPeriapsis: 102.9, MeanAnomaly: 357.5},
			{Name: "mars", SemiMajorAxis: 1.524, Eccentricity: 0.0934, Inclination: 1.85, RAAN: 49.6, ArgPeriapsis: 286.5, MeanAnomaly: 19.4},
		},
	},
	"comet": {
		Name: "comet", Mu: muSun, Dt: 0.01, Duration: 80.0, Integrator: "rk45",
		Bodies: []BodyConfig{
			{Name: "halley", SemiMajorAxis: 17.8, Eccentricity: 0.967, Inclination: 162.3, RAAN: 58.4, ArgPeriapsis: 111.3, MeanAnomaly: 38.4},
			{Name: "sungrazer", SemiMajorAxis: 80, Eccentricity: 0.9999, Inclination: 144.0, RAAN: 0, ArgPeriapsis: 80, MeanAnomaly: 0},
		},
	},
	"flyby": {
		Name: "flyby", Mu: 398600.4418, Dt: 10, Duration: 20000, Integrator: "rk4",
		Bodies: []BodyConfig{
			{Name: "probe", SemiMajorAxis: 20000, Eccentricity: 1.35, Inclination: 28.5, RAAN: 10, ArgPeriapsis: 45, MeanAnomaly: -3},
		},
	},
	"interstellar": {
		Name: "interstellar", Mu: muSun, Dt: 0.005, Duration: 4.0, Integrator: "rk4",
		Bodies: []BodyConfig{
			{Name: "oumuamua", SemiMajorAxis: 1.272, Eccentricity: 1.2011, Inclination: 122.7, RAAN: 24.6, ArgPeriapsis: 241.8, MeanAnomaly: -200},
			{Name: "borisov", SemiMajorAxis: 0.8514, Eccentricity: 3.3565, Inclination: 44.05, RAAN: 308.1, ArgPeriapsis: 209.1, MeanAnomaly: -40},
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
