package nws

import (
	"context"
	"fmt"
	"time"

	"github.com/wxgate/wxgate/internal/models"
)

// ForecastResult is one fetched forecast product, with every period already
// normalized into the uniform models.Period shape.
type ForecastResult struct {
	GeneratedAt time.Time
	UpdatedAt   time.Time
	Periods     []models.Period
}

type forecastResponse struct {
	Properties struct {
		UpdateTime  string `json:"updateTime"`
		GeneratedAt string `json:"generatedAt"`
		Periods     []struct {
			Name                       string  `json:"name"`
			StartTime                  string  `json:"startTime"`
			EndTime                    string  `json:"endTime"`
			IsDaytime                  bool    `json:"isDaytime"`
			Temperature                float64 `json:"temperature"`
			TemperatureUnit            string  `json:"temperatureUnit"`
			ProbabilityOfPrecipitation struct {
				Value *int `json:"value"`
			} `json:"probabilityOfPrecipitation"`
			WindSpeed        string `json:"windSpeed"`
			WindDirection    string `json:"windDirection"`
			ShortForecast    string `json:"shortForecast"`
			DetailedForecast string `json:"detailedForecast"`
		} `json:"periods"`
	} `json:"properties"`
}

// Forecast fetches the daily or hourly forecast for a grid cell. Hourly and
// daily products share a schema and normalize to the same period shape.
func (c *Client) Forecast(ctx context.Context, cell models.GridCell, hourly bool) (*ForecastResult, error) {
	url := fmt.Sprintf("%s/gridpoints/%s/%d,%d/forecast", c.baseURL, cell.Office, cell.X, cell.Y)
	endpoint := "forecast"
	if hourly {
		url += "/hourly"
		endpoint = "forecast_hourly"
	}

	var data forecastResponse
	if err := c.getJSON(ctx, endpoint, url, &data); err != nil {
		return nil, err
	}

	result := &ForecastResult{}
	if t, err := time.Parse(time.RFC3339, data.Properties.GeneratedAt); err == nil {
		result.GeneratedAt = t
	}
	if t, err := time.Parse(time.RFC3339, data.Properties.UpdateTime); err == nil {
		result.UpdatedAt = t
	}

	for _, p := range data.Properties.Periods {
		period := models.Period{
			Name:    p.Name,
			Daytime: p.IsDaytime,
			Temperature: models.Temperature{
				Value: p.Temperature,
				Unit:  p.TemperatureUnit,
			},
			Wind: models.Wind{
				Speed:     p.WindSpeed,
				Direction: p.WindDirection,
			},
			Short:    p.ShortForecast,
			Detailed: p.DetailedForecast,
		}
		if t, err := time.Parse(time.RFC3339, p.StartTime); err == nil {
			period.Start = t
		}
		if t, err := time.Parse(time.RFC3339, p.EndTime); err == nil {
			period.End = t
		}
		// The upstream field is null when no probability was computed.
		if p.ProbabilityOfPrecipitation.Value != nil {
			period.Precipitation = *p.ProbabilityOfPrecipitation.Value
		}
		result.Periods = append(result.Periods, period)
	}

	return result, nil
}
