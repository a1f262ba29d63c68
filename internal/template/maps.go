// SPDX-FileCopyrightText: The RealWeatherApp Authors
//
// SPDX-License-Identifier: MIT

package template

// MoonPhaseIcon is a map where moon phase names are keys and their corresponding emoji representations are values.
var MoonPhaseIcon = map[string]string{
	"New Moon":        "🌑",
	"Waxing Crescent": "🌒",
	"First Quarter":   "🌓",
	"Waxing Gibbous":  "🌔",
	"Full Moon":       "🌕",
	"Waning Gibbous":  "🌖",
	"Third Quarter":   "🌗",
	"Waning Crescent": "🌘",
}

// WMOWeatherIcons maps WMO weather codes to single emoji icons for day (true) and night (false)
var WMOWeatherIcons = map[int]map[bool]string{
	0: {
		true:  "☀️", // Clear sky (day)
		false: "🌙",
	},
	1: {
		true:  "🌤️", // Mainly clear (day)
		false: "🌙",
	},
	2: {
		true:  "⛅", // Partly cloudy
		false: "☁️",
	},
	3: {
		true:  "☁️", // Overcast
		false: "☁️",
	},
	45: {
		true:  "🌫️", // Fog
		false: "🌫️",
	},
	48: {
		true:  "🌫️", // Depositing rime fog
		false: "🌫️",
	},
	51: {
		true:  "🌦️", // Drizzle: Light
		false: "🌧️",
	},
	53: {
		true:  "🌧️", // Drizzle: Moderate
		false: "🌧️",
	},
	55: {
		true:  "🌧️", // Drizzle: Dense intensity
		false: "🌧️",
	},
	56: {
		true:  "🌨️", // Freezing drizzle: Light
		false: "🌨️",
	},
	57: {
		true:  "🌨️", // Freezing drizzle: Dense intensity
		false: "🌨️",
	},
	61: {
		true:  "🌦️", // Rain: Slight
		false: "🌧️",
	},
	63: {
		true:  "🌧️", // Rain: Moderate
		false: "🌧️",
	},
	65: {
		true:  "🌧️", // Rain: Heavy
		false: "🌧️",
	},
	66: {
		true:  "🌨️", // Freezing rain: Light
		false: "🌨️",
	},
	67: {
		true:  "🌨️", // Freezing rain: Heavy
		false: "🌨️",
	},
	71: {
		true:  "🌨️", // Snow fall: Slight
		false: "🌨️",
	},
	73: {
		true:  "🌨️", // Snow fall: Moderate
		false: "🌨️",
	},
	75: {
		true:  "🌨️", // Snow fall: Heavy
		false: "🌨️",
	},
	77: {
		true:  "🌨️", // Snow grains
		false: "🌨️",
	},
	80: {
		true:  "🌦️", // Rain showers: Slight
		false: "🌧️",
	},
	81: {
		true:  "🌧️", // Rain showers: Moderate
		false: "🌧️",
	},
	82: {
		true:  "🌧️", // Rain showers: Violent
		false: "🌧️",
	},
	85: {
		true:  "🌨️", // Snow showers: Slight
		false: "🌨️",
	},
	86: {
		true:  "🌨️", // Snow showers: Heavy
		false: "🌨️",
	},
	95: {
		true:  "🌩️", // Thunderstorm: Slight or moderate
		false: "🌩️",
	},
	96: {
		true:  "⛈️", // Thunderstorm with slight hail
		false: "⛈️",
	},
	99: {
		true:  "⛈️", // Thunderstorm with heavy hail
		false: "⛈️",
	},
}

// windDirIcons maps 16-point compass labels to the nearest arrow glyph.
var windDirIcons = map[string]string{
	"N":   "↑",
	"NNE": "↗",
	"NE":  "↗",
	"ENE": "→",
	"E":   "→",
	"ESE": "↘",
	"SE":  "↘",
	"SSE": "↓",
	"S":   "↓",
	"SSW": "↙",
	"SW":  "↙",
	"WSW": "←",
	"W":   "←",
	"WNW": "↖",
	"NW":  "↖",
	"NNW": "↑",
}

// ConditionIcon returns the emoji for a WMO weather code, with separate
// day and night variants.
func ConditionIcon(code int, isDay bool) string {
	if icons, ok := WMOWeatherIcons[code]; ok {
		return icons[isDay]
	}
	return "❓"
}

// WindDirIcon returns the arrow glyph for a 16-point compass label.
func WindDirIcon(compass string) string {
	if icon, ok := windDirIcons[compass]; ok {
		return icon
	}
	return ""
}
