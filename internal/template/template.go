// SPDX-FileCopyrightText: The RealWeatherApp Authors
//
// SPDX-License-Identifier: MIT

// Package template renders the configured output templates with the
// current weather, location and sky state.
package template

import (
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/wmarchant13/RealWeatherApp/internal/config"
	"github.com/wmarchant13/RealWeatherApp/internal/geocode"
	"github.com/wmarchant13/RealWeatherApp/internal/vartype"
)

// DisplayData is the single context value all three templates render
// against.
type DisplayData struct {
	// Location data
	Latitude  float64
	Longitude float64
	Address   geocode.Address

	// General weather and moon phase data
	UpdateTime    time.Time
	TempUnit      string
	WindUnit      string
	HumidityUnit  string
	PressureUnit  string
	SunriseTime   time.Time
	SunsetTime    time.Time
	Moonphase     string
	MoonphaseIcon string

	// Current conditions
	Temperature            float64
	ApparentTemperature    vartype.VarFloat64
	Humidity               vartype.VarFloat64
	Pressure               vartype.VarFloat64
	DewPoint               vartype.VarFloat64
	WindSpeed              float64
	WindDirection          float64
	WindCompass            string
	WindCompassIcon        string
	Condition              string
	ConditionIcon          string
	ConditionIconWithSpace string
	IsDaytime              bool

	// Sky state
	SolarElevation float64
	SolarAzimuth   float64
	SkyPhase       string
}

type Templates struct {
	Text    *template.Template
	AltText *template.Template
	Tooltip *template.Template
}

// New parses the text, alt text and tooltip templates from the given
// configuration.
func New(conf *config.Config) (*Templates, error) {
	tpls := new(Templates)

	tpl, err := template.New("text").Funcs(templateFuncMap()).Parse(conf.Templates.Text)
	if err != nil {
		return tpls, fmt.Errorf("failed to parse text template: %w", err)
	}
	tpls.Text = tpl

	tpl, err = template.New("alt_text").Funcs(templateFuncMap()).Parse(conf.Templates.AltText)
	if err != nil {
		return tpls, fmt.Errorf("failed to parse alt text template: %w", err)
	}
	tpls.AltText = tpl

	tpl, err = template.New("tooltip").Funcs(templateFuncMap()).Parse(conf.Templates.Tooltip)
	if err != nil {
		return tpls, fmt.Errorf("failed to parse tooltip template: %w", err)
	}
	tpls.Tooltip = tpl

	return tpls, nil
}

func templateFuncMap() template.FuncMap {
	return template.FuncMap{
		"timeFormat":  timeFormat,
		"floatFormat": floatFormat,
		"lc":          strings.ToLower,
		"uc":          strings.ToUpper,
	}
}

func timeFormat(val time.Time, fmt string) string {
	return val.Format(fmt)
}

func floatFormat(val float64, precision int) string {
	return fmt.Sprintf("%.*f", precision, val)
}

// EmojiWithSpace pads an emoji with spaces matching its render width, so
// monospace bar output stays aligned.
func EmojiWithSpace(emoji string) string {
	width := runewidth.StringWidth(emoji)
	return fmt.Sprintf("%s%s", emoji, strings.Repeat(" ", width+1))
}
