package planner

import (
	"fmt"
	"math"
	"sort"

	"cycling-route-service/internal/domain"
)

// Fixed assessment thresholds.
const (
	highWindMS        = 10.0
	veryHighWindMS    = 15.0
	highPrecipPct     = 50.0
	veryHighPrecipPct = 70.0
	coldTempC         = 5.0
	hotTempC          = 35.0
	moderateGainM     = 1000.0
	hardGainM         = 2000.0
	longDistanceKm    = 100.0
	longDurationMin   = 180
	steepGradient     = 0.08
	thunderstormCode  = 95
)

// Baseline gear recommended for every ride regardless of conditions.
var baseGear = []string{
	"Helmet",
	"Water bottles (at least 2)",
	"Repair kit (spare tube, tire levers, pump)",
	"Bike lights (front and rear)",
}

// Assess runs the full risk analysis for a route: warnings, a deduplicated
// sorted gear list, and the 0-100 risk score.
func Assess(segments []domain.RouteSegment, forecasts []domain.WeatherForecast, prefs domain.RoutePreferences) domain.RiskAssessment {
	warnings, gear := AssessRoute(segments, forecasts, prefs)
	return domain.RiskAssessment{
		Warnings:        warnings,
		RecommendedGear: gear,
		RiskScore:       CalculateRiskScore(segments, forecasts),
	}
}

// AssessRoute derives warnings and gear recommendations from the route and
// its weather context. The four sub-assessments are independent; warnings
// keep weather, elevation, distance, surface order while gear is collected
// into a set and returned sorted.
func AssessRoute(segments []domain.RouteSegment, forecasts []domain.WeatherForecast, prefs domain.RoutePreferences) (warnings, gear []string) {
	gearSet := make(map[string]struct{}, len(baseGear))
	for _, g := range baseGear {
		gearSet[g] = struct{}{}
	}
	collect := func(ws, gs []string) {
		warnings = append(warnings, ws...)
		for _, g := range gs {
			gearSet[g] = struct{}{}
		}
	}

	collect(assessWeather(forecasts))
	collect(assessElevation(segments, prefs))
	collect(assessDistance(segments))
	collect(assessSurface(segments))

	gear = make([]string, 0, len(gearSet))
	for g := range gearSet {
		gear = append(gear, g)
	}
	sort.Strings(gear)
	return warnings, gear
}

func assessWeather(forecasts []domain.WeatherForecast) (warnings, gear []string) {
	if len(forecasts) == 0 {
		return nil, nil
	}

	maxWind := forecasts[0].WindSpeedMS
	maxPrecip := forecasts[0].PrecipitationProbability
	minTemp := forecasts[0].TemperatureC
	maxTemp := forecasts[0].TemperatureC
	for _, f := range forecasts[1:] {
		maxWind = math.Max(maxWind, f.WindSpeedMS)
		maxPrecip = math.Max(maxPrecip, f.PrecipitationProbability)
		minTemp = math.Min(minTemp, f.TemperatureC)
		maxTemp = math.Max(maxTemp, f.TemperatureC)
	}

	switch {
	case maxWind >= veryHighWindMS:
		warnings = append(warnings, fmt.Sprintf("SEVERE: Very high wind speeds expected (up to %.1f m/s). Consider postponing the ride.", maxWind))
		gear = append(gear, "Windproof jacket", "Eye protection (glasses)")
	case maxWind >= highWindMS:
		warnings = append(warnings, fmt.Sprintf("Moderate to high wind speeds expected (up to %.1f m/s). Crosswinds may affect stability.", maxWind))
		gear = append(gear, "Windbreaker or wind vest")
	}

	switch {
	case maxPrecip >= veryHighPrecipPct:
		warnings = append(warnings, fmt.Sprintf("SEVERE: High chance of rain (%.0f%%). Wet conditions expected throughout the ride.", maxPrecip))
		gear = append(gear, "Full rain jacket and pants", "Waterproof shoe covers", "Fenders (if available)")
	case maxPrecip >= highPrecipPct:
		warnings = append(warnings, fmt.Sprintf("Moderate chance of rain (%.0f%%). Pack rain gear just in case.", maxPrecip))
		gear = append(gear, "Packable rain jacket", "Waterproof bag for electronics")
	}

	if minTemp < coldTempC {
		warnings = append(warnings, fmt.Sprintf("Cold temperatures expected (as low as %.1f°C). Dress in layers and protect extremities.", minTemp))
		gear = append(gear,
			"Thermal base layer",
			"Leg warmers or tights",
			"Gloves (preferably insulated)",
			"Ear warmer or headband")
	}
	if maxTemp > hotTempC {
		warnings = append(warnings, fmt.Sprintf("High temperatures expected (up to %.1f°C). Stay hydrated and consider an early start.", maxTemp))
		gear = append(gear,
			"Extra water bottles",
			"Sunscreen (SPF 30+)",
			"Sunglasses",
			"Lightweight, breathable clothing")
	}

	for _, f := range forecasts {
		if f.WeatherCode >= thunderstormCode {
			warnings = append(warnings, "SEVERE: Thunderstorms possible. Avoid riding during storms.")
			break
		}
	}
	return warnings, gear
}

func assessElevation(segments []domain.RouteSegment, prefs domain.RoutePreferences) (warnings, gear []string) {
	var totalGain float64
	for _, s := range segments {
		totalGain += s.ElevationGainM
	}

	if prefs.MaxElevationGainM != nil && totalGain > *prefs.MaxElevationGainM {
		warnings = append(warnings, fmt.Sprintf("Total elevation gain (%.0fm) exceeds your stated limit (%.0fm).", totalGain, *prefs.MaxElevationGainM))
	}

	switch {
	case totalGain >= hardGainM:
		warnings = append(warnings, fmt.Sprintf("Very challenging elevation gain (%.0fm). Suitable for experienced cyclists only.", totalGain))
		gear = append(gear, "Extra energy gels or bars", "Electrolyte supplements")
		if prefs.Difficulty == domain.DifficultyEasy || prefs.Difficulty == domain.DifficultyModerate {
			warnings = append(warnings, fmt.Sprintf("Route difficulty may not match your %q preference. Consider an alternative route.", prefs.Difficulty))
		}
	case totalGain >= moderateGainM:
		warnings = append(warnings, fmt.Sprintf("Moderate elevation gain (%.0fm). Maintain a steady pace and take breaks as needed.", totalGain))
		gear = append(gear, "Energy bars or snacks")
	}

	// Only the single steepest segment is called out; the first occurrence
	// wins on ties so the warning text stays reproducible.
	steepestIdx := -1
	var steepestGrad float64
	for i, s := range segments {
		if s.DistanceKm <= 0 {
			continue
		}
		grad := s.ElevationGainM / (s.DistanceKm * 1000)
		if grad > steepGradient && grad > steepestGrad {
			steepestGrad = grad
			steepestIdx = i
		}
	}
	if steepestIdx >= 0 {
		warnings = append(warnings, fmt.Sprintf("Steep climb in segment %d: %.1f%% gradient. Consider lower gearing.", steepestIdx+1, steepestGrad*100))
	}
	return warnings, gear
}

func assessDistance(segments []domain.RouteSegment) (warnings, gear []string) {
	var totalKm float64
	totalMin := 0
	for _, s := range segments {
		totalKm += s.DistanceKm
		totalMin += s.EstimatedDurationMin
	}

	if totalKm >= longDistanceKm {
		warnings = append(warnings, fmt.Sprintf("Long distance ride (%.1fkm). Plan rest stops and ensure adequate nutrition.", totalKm))
		gear = append(gear,
			"Multiple energy bars or gels",
			"Electrolyte drink mix",
			"Emergency cash/card for resupply",
			"Portable phone charger")
	}
	if totalMin > longDurationMin {
		gear = append(gear, "Chamois cream (for comfort)", "Arm warmers (temperature changes)")
	}
	return warnings, gear
}

func assessSurface(segments []domain.RouteSegment) (warnings, gear []string) {
	var totalKm, unpavedKm float64
	for _, s := range segments {
		totalKm += s.DistanceKm
		if s.Surface.Unpaved() {
			unpavedKm += s.DistanceKm
		}
	}
	if totalKm <= 0 || unpavedKm <= 0 {
		return nil, nil
	}

	pct := unpavedKm / totalKm * 100
	switch {
	case pct > 50:
		warnings = append(warnings, fmt.Sprintf("Majority of route is unpaved (%.0f%%). Gravel or mountain bike recommended.", pct))
		gear = append(gear, "Wider tires (28mm+ or gravel tires)", "Extra spare tube")
	case pct > 20:
		warnings = append(warnings, fmt.Sprintf("Significant unpaved sections (%.0f%%). Ensure tires suit mixed terrain.", pct))
		gear = append(gear, "All-terrain or gravel tires")
	}
	return warnings, gear
}

// CalculateRiskScore folds weather, elevation, distance and surface exposure
// into a 0-100 score. The weather block contributes nothing when no
// forecasts are available.
func CalculateRiskScore(segments []domain.RouteSegment, forecasts []domain.WeatherForecast) float64 {
	score := 0.0

	if len(forecasts) > 0 {
		maxWind := forecasts[0].WindSpeedMS
		maxPrecip := forecasts[0].PrecipitationProbability
		minTemp := forecasts[0].TemperatureC
		maxTemp := forecasts[0].TemperatureC
		for _, f := range forecasts[1:] {
			maxWind = math.Max(maxWind, f.WindSpeedMS)
			maxPrecip = math.Max(maxPrecip, f.PrecipitationProbability)
			minTemp = math.Min(minTemp, f.TemperatureC)
			maxTemp = math.Max(maxTemp, f.TemperatureC)
		}
		score += math.Min(15, maxWind/veryHighWindMS*15)
		score += maxPrecip / 100 * 15
		if minTemp < coldTempC {
			score += math.Min(10, (coldTempC-minTemp)/5*10)
		}
		if maxTemp > hotTempC {
			score += math.Min(10, (maxTemp-hotTempC)/10*10)
		}
	}

	var totalGain, totalKm, unpavedKm float64
	for _, s := range segments {
		totalGain += s.ElevationGainM
		totalKm += s.DistanceKm
		if s.Surface.Unpaved() {
			unpavedKm += s.DistanceKm
		}
	}
	score += math.Min(30, totalGain/hardGainM*30)
	score += math.Min(20, totalKm/150*20)
	if totalKm > 0 {
		score += unpavedKm / totalKm * 10
	}
	return math.Min(100, score)
}
