// Package weather looks up KMA forecasts and turns them into a heuristic
// activity recommendation.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	defaultForecastURL = "http://apis.data.go.kr/1360000/VilageFcstInfoService_2.0/getVilageFcst"
	defaultASOSURL     = "http://apis.data.go.kr/1360000/AsosDalyInfoService/getWthrDataList"

	// Daily ASOS summaries use the Seoul station.
	seoulStationID = "108"
)

// Service retrieves forecast and historical weather from the KMA open API.
type Service struct {
	client      *http.Client
	serviceKey  string
	forecastURL string
	asosURL     string
	now         func() time.Time
}

// NewService constructs a Service using the provided HTTP client. If client
// is nil, a client with a 10 second timeout is created. The URLs are
// optional and fall back to the KMA endpoints when empty.
func NewService(client *http.Client, serviceKey, forecastURL, asosURL string) *Service {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if forecastURL == "" {
		forecastURL = defaultForecastURL
	}
	if asosURL == "" {
		asosURL = defaultASOSURL
	}
	return &Service{
		client:      client,
		serviceKey:  serviceKey,
		forecastURL: forecastURL,
		asosURL:     asosURL,
		now:         time.Now,
	}
}

// Result is the recommendation for one date. Temp/Sky/Rain are nil when the
// lookup degraded to an unavailable result.
type Result struct {
	Temp    *int    `json:"temp"`
	Sky     *string `json:"sky"`
	Rain    *string `json:"rain"`
	Score   int     `json:"score"`
	Comment string  `json:"comment"`
}

type conditions struct {
	temp int
	sky  int
	pty  int
}

var monthPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)

// Recommendation derives the activity score for a date key ("YYYY-MM-DD").
// Month-granular keys ("YYYY-MM") return a textual ASOS summary in the
// comment. Upstream failures degrade to a zero-score unavailable result.
func (s *Service) Recommendation(ctx context.Context, dateKey string, lat, lon float64) Result {
	if monthPattern.MatchString(dateKey) {
		return s.monthly(ctx, dateKey)
	}

	target := strings.ReplaceAll(dateKey, "-", "")
	now := s.now()
	today := now.Format("20060102")
	yesterday := now.AddDate(0, 0, -1).Format("20060102")

	var cond *conditions
	if target < today {
		cond = s.past(ctx, target)
		// Yesterday's summary is published with a lag.
		if cond == nil && target == yesterday {
			return Result{Score: 50, Comment: "Yesterday's weather data is still being compiled; it is usually available after 11am."}
		}
	} else {
		cond = s.future(ctx, target, lat, lon)
	}

	if cond == nil {
		return Result{Score: 0, Comment: "Weather data is unavailable for that date."}
	}

	return score(*cond, target < today)
}

// past queries the ASOS daily summary and derives sky/precipitation codes
// from cloud cover and rainfall totals.
func (s *Service) past(ctx context.Context, dateYYYYMMDD string) *conditions {
	items, err := s.asos(ctx, dateYYYYMMDD, dateYYYYMMDD, 10)
	if err != nil || len(items) == 0 {
		return nil
	}
	item := items[0]

	temp, err := strconv.ParseFloat(item.AvgTa, 64)
	if err != nil {
		return nil
	}
	rain, _ := strconv.ParseFloat(item.SumRn, 64)
	cloud, _ := strconv.ParseFloat(item.AvgTca, 64)

	pty := 0
	if rain > 0 {
		pty = 1
	}
	sky := 4
	if cloud <= 2 {
		sky = 1
	} else if cloud <= 8 {
		sky = 3
	}

	return &conditions{temp: int(temp), sky: sky, pty: pty}
}

// future reads the TMP/SKY/PTY categories for the target date out of the
// short-term forecast.
func (s *Service) future(ctx context.Context, dateYYYYMMDD string, lat, lon float64) *conditions {
	baseDate, baseTime := baseDateTime(s.now())
	nx, ny := ToGrid(lat, lon)

	params := url.Values{}
	params.Set("ServiceKey", s.serviceKey)
	params.Set("pageNo", "1")
	params.Set("numOfRows", "1000")
	params.Set("dataType", "JSON")
	params.Set("base_date", baseDate)
	params.Set("base_time", baseTime)
	params.Set("nx", strconv.Itoa(nx))
	params.Set("ny", strconv.Itoa(ny))

	var payload struct {
		Response struct {
			Header struct {
				ResultCode string `json:"resultCode"`
			} `json:"header"`
			Body struct {
				Items struct {
					Item []struct {
						Category  string `json:"category"`
						FcstDate  string `json:"fcstDate"`
						FcstValue string `json:"fcstValue"`
					} `json:"item"`
				} `json:"items"`
			} `json:"body"`
		} `json:"response"`
	}
	if err := s.get(ctx, s.forecastURL, params, &payload); err != nil {
		return nil
	}
	if payload.Response.Header.ResultCode != "00" {
		return nil
	}

	cond := conditions{temp: -999, sky: -1, pty: -1}
	for _, item := range payload.Response.Body.Items.Item {
		if item.FcstDate != dateYYYYMMDD {
			continue
		}
		switch item.Category {
		case "TMP":
			if cond.temp == -999 {
				if v, err := strconv.Atoi(item.FcstValue); err == nil {
					cond.temp = v
				}
			}
		case "SKY":
			if cond.sky == -1 {
				if v, err := strconv.Atoi(item.FcstValue); err == nil {
					cond.sky = v
				}
			}
		case "PTY":
			if cond.pty == -1 {
				if v, err := strconv.Atoi(item.FcstValue); err == nil {
					cond.pty = v
				}
			}
		}
	}
	if cond.temp == -999 || cond.sky == -1 || cond.pty == -1 {
		return nil
	}
	return &cond
}

// monthly summarises a month's ASOS records into a text comment.
func (s *Service) monthly(ctx context.Context, monthKey string) Result {
	year, _ := strconv.Atoi(monthKey[:4])
	month, _ := strconv.Atoi(monthKey[5:7])

	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)

	items, err := s.asos(ctx, first.Format("20060102"), last.Format("20060102"), 31)
	if err != nil {
		return Result{Score: 0, Comment: fmt.Sprintf("Could not load weather for %d-%02d.", year, month)}
	}
	if len(items) == 0 {
		return Result{Score: 0, Comment: fmt.Sprintf("No weather data recorded for %d-%02d.", year, month)}
	}

	type rainyDay struct {
		day  int
		rain float64
	}
	var rainy []rainyDay
	overcast := 0
	for _, item := range items {
		if rain, err := strconv.ParseFloat(item.SumRn, 64); err == nil && rain > 0 {
			if t, err := time.Parse("2006-01-02", item.Tm); err == nil {
				rainy = append(rainy, rainyDay{day: t.Day(), rain: rain})
			}
		}
		if cloud, err := strconv.ParseFloat(item.AvgTca, 64); err == nil && cloud >= 8 {
			overcast++
		}
	}
	sort.Slice(rainy, func(i, j int) bool { return rainy[i].rain > rainy[j].rain })

	var b strings.Builder
	fmt.Fprintf(&b, "Weather summary for %d-%02d: ", year, month)
	if len(rainy) > 0 {
		if len(rainy) > 5 {
			rainy = rainy[:5]
		}
		parts := make([]string, len(rainy))
		for i, d := range rainy {
			parts[i] = fmt.Sprintf("day %d (%.1fmm)", d.day, d.rain)
		}
		fmt.Fprintf(&b, "the rainiest days were %s. ", strings.Join(parts, ", "))
	} else {
		b.WriteString("there were no rainy days. ")
	}
	if overcast > 0 {
		fmt.Fprintf(&b, "Around %d day(s) were overcast.", overcast)
	}

	return Result{Score: 50, Comment: strings.TrimSpace(b.String())}
}

type asosItem struct {
	Tm     string `json:"tm"`
	AvgTa  string `json:"avgTa"`
	SumRn  string `json:"sumRn"`
	AvgTca string `json:"avgTca"`
}

func (s *Service) asos(ctx context.Context, startDt, endDt string, rows int) ([]asosItem, error) {
	params := url.Values{}
	params.Set("ServiceKey", s.serviceKey)
	params.Set("pageNo", "1")
	params.Set("numOfRows", strconv.Itoa(rows))
	params.Set("dataType", "JSON")
	params.Set("dataCd", "ASOS")
	params.Set("dateCd", "DAY")
	params.Set("startDt", startDt)
	params.Set("endDt", endDt)
	params.Set("stnIds", seoulStationID)

	var payload struct {
		Response struct {
			Header struct {
				ResultCode string `json:"resultCode"`
			} `json:"header"`
			Body struct {
				Items struct {
					Item []asosItem `json:"item"`
				} `json:"items"`
			} `json:"body"`
		} `json:"response"`
	}
	if err := s.get(ctx, s.asosURL, params, &payload); err != nil {
		return nil, err
	}
	if payload.Response.Header.ResultCode != "00" {
		return nil, fmt.Errorf("asos request failed: code %s", payload.Response.Header.ResultCode)
	}
	return payload.Response.Body.Items.Item, nil
}

func (s *Service) get(ctx context.Context, baseURL string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("weather request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("weather request failed: status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode weather response: %w", err)
	}
	return nil
}

// baseDateTime picks the nearest past forecast-issue slot. Slots publish
// with a lag, so before 02:15 the previous day's 23:00 issue is used.
func baseDateTime(now time.Time) (string, string) {
	slots := []int{2, 5, 8, 11, 14, 17, 20, 23}

	if now.Hour() < 2 || (now.Hour() == 2 && now.Minute() < 15) {
		return now.AddDate(0, 0, -1).Format("20060102"), "2300"
	}

	slot := slots[0]
	for _, h := range slots {
		if h <= now.Hour() {
			slot = h
		}
	}
	return now.Format("20060102"), fmt.Sprintf("%02d00", slot)
}

var skyLabels = map[int]string{1: "clear", 3: "mostly cloudy", 4: "overcast"}
var rainLabels = map[int]string{0: "none", 1: "rain", 2: "rain/snow", 3: "snow", 4: "showers"}

// score turns conditions into the 0-100 activity score.
func score(cond conditions, isPast bool) Result {
	s := 50
	var comment strings.Builder

	tense := func(past, future string) string {
		if isPast {
			return past
		}
		return future
	}

	if cond.pty != 0 {
		s -= 40
		comment.WriteString(tense("There was rain or snow. ", "Rain or snow is expected. "))
	} else if cond.sky == 1 {
		s += 20
		comment.WriteString(tense("It was a clear day! ", "It will be a clear day! "))
	} else if cond.sky == 4 {
		s -= 10
		comment.WriteString(tense("It was a bit overcast. ", "It will be a bit overcast. "))
	}

	switch {
	case cond.temp >= 15 && cond.temp < 26:
		s += 30
		comment.WriteString(tense("The temperature was comfortable for any activity. ", "The temperature will be comfortable for any activity. "))
	case cond.temp >= 26:
		s -= 10
		comment.WriteString(tense("It was on the hot side. ", "It will be on the hot side. "))
	case cond.temp < 5:
		s -= 20
		comment.WriteString(tense("It was quite cold. ", "It will be quite cold, dress warmly. "))
	}

	if s < 0 {
		s = 0
	} else if s > 100 {
		s = 100
	}

	sky := skyLabels[cond.sky]
	if sky == "" {
		sky = "unknown"
	}
	rain := rainLabels[cond.pty]
	if rain == "" {
		rain = "unknown"
	}
	temp := cond.temp

	return Result{
		Temp:    &temp,
		Sky:     &sky,
		Rain:    &rain,
		Score:   s,
		Comment: strings.TrimSpace(comment.String()),
	}
}
