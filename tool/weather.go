package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
)

// DefaultWeatherURL is the public Open-Meteo forecast endpoint.
const DefaultWeatherURL = "https://api.open-meteo.com/v1/forecast"

// WeatherToolName is the name the weather tool is declared under.
const WeatherToolName = "get_weather"

// WeatherArgs are the arguments of the weather tool.
type WeatherArgs struct {
	Latitude  float64 `json:"latitude" jsonschema:"description=Latitude of the location"`
	Longitude float64 `json:"longitude" jsonschema:"description=Longitude of the location"`
}

// NewWeatherTool returns the get_weather tool. It fetches the forecast for
// the given coordinates and returns only the "current" conditions object.
func NewWeatherTool(opts ...HTTPToolOption) Registration {
	cfg := applyHTTPOpts(DefaultWeatherURL, opts)

	return Func(WeatherToolName, "Get current temperature for provided coordinates in celsius.",
		func(ctx context.Context, args WeatherArgs) (json.RawMessage, error) {
			query := url.Values{}
			query.Set("latitude", strconv.FormatFloat(args.Latitude, 'f', -1, 64))
			query.Set("longitude", strconv.FormatFloat(args.Longitude, 'f', -1, 64))
			query.Set("current", "temperature_2m,wind_speed_10m")
			query.Set("hourly", "temperature_2m,relative_humidity_2m,wind_speed_10m")

			body, err := cfg.get(ctx, query)
			if err != nil {
				return nil, err
			}

			var forecast struct {
				Current json.RawMessage `json:"current"`
			}
			if err := json.Unmarshal(body, &forecast); err != nil {
				return nil, fmt.Errorf("decode forecast: %w", err)
			}
			if len(forecast.Current) == 0 {
				return nil, errors.New("forecast has no current conditions")
			}
			return forecast.Current, nil
		})
}
