package weather

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/i474232898/metoffice-weather/internal/metoffice"
)

type iconMapping struct {
	icon  Icon
	night bool
}

var conditionTable = map[metoffice.WeatherCode]iconMapping{
	metoffice.TraceRain:            {IconDrizzle, false},
	metoffice.ClearNight:           {IconClear, true},
	metoffice.SunnyDay:             {IconClear, false},
	metoffice.PartlyCloudyNight:    {IconPartlyCloudy, true},
	metoffice.PartlyCloudyDay:      {IconPartlyCloudy, false},
	metoffice.Mist:                 {IconHaze, false},
	metoffice.Fog:                  {IconFog, false},
	metoffice.Cloudy:               {IconMostlyCloudy, false},
	metoffice.Overcast:             {IconCloudy, false},
	metoffice.LightRainShowerNight: {IconShowers, true},
	metoffice.LightRainShowerDay:   {IconShowers, false},
	metoffice.Drizzle:              {IconDrizzle, false},
	metoffice.LightRain:            {IconShowers, false},
	metoffice.HeavyRainShowerNight: {IconShowers, true},
	metoffice.HeavyRainShowerDay:   {IconShowers, false},
	metoffice.HeavyRain:            {IconShowers, false},
	metoffice.SleetShowerNight:     {IconSleet, true},
	metoffice.SleetShowerDay:       {IconSleet, false},
	metoffice.Sleet:                {IconSleet, false},
	metoffice.HailShowerNight:      {IconHail, true},
	metoffice.HailShowerDay:        {IconHail, false},
	metoffice.Hail:                 {IconHail, false},
	metoffice.LightSnowShowerNight: {IconSnow, true},
	metoffice.LightSnowShowerDay:   {IconSnow, false},
	metoffice.LightSnow:            {IconSnow, false},
	metoffice.HeavySnowShowerNight: {IconSnow, true},
	metoffice.HeavySnowShowerDay:   {IconSnow, false},
	metoffice.HeavySnow:            {IconSnow, false},
	metoffice.ThunderShowerNight:   {IconThunderstormWithRain, true},
	metoffice.ThunderShowerDay:     {IconThunderstormWithRain, false},
	metoffice.Thunder:              {IconThunderstorm, false},
}

// MapCode maps a decoded significant weather code. nil and codes outside the
// enumeration yield Unknown with text "Unknown". Members of the enumeration get their
// humanized name as text.
func MapCode(code *metoffice.WeatherCode) Condition {
	if code == nil || !code.Known() {
		return Condition{Text: "Unknown", Icon: IconUnknown}
	}
	m := conditionTable[*code]
	return Condition{
		Text:  humanize(code.Name()),
		Icon:  m.icon,
		Night: m.night,
	}
}

// MapRawCode maps a bare integer code. The text is left empty: responses that only
// carry the integer have no name to humanize.
func MapRawCode(code int) Condition {
	c, ok := metoffice.FromCode(code)
	if !ok {
		return Condition{Icon: IconUnknown}
	}
	m := conditionTable[c]
	return Condition{Icon: m.icon, Night: m.night}
}

func humanize(name string) string {
	// Casers carry state and are not shared between goroutines.
	return cases.Lower(language.BritishEnglish).String(strings.ReplaceAll(name, "_", " "))
}
