// Package metaculus adapts Metaculus forecasting questions. Questions have
// no money at stake; forecaster counts stand in for volume.
package metaculus

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/alanyoungcy/predicthub/internal/domain"
	"github.com/alanyoungcy/predicthub/internal/matching"
	"github.com/alanyoungcy/predicthub/internal/platform/restclient"
)

const (
	DefaultBaseURL = "https://www.metaculus.com/api2"

	siteURL = "https://www.metaculus.com/questions/"
)

// Adapter lists, looks up and charts Metaculus questions.
type Adapter struct {
	client *restclient.Client
	now    func() time.Time
}

var (
	_ domain.MarketSource  = (*Adapter)(nil)
	_ domain.MarketLookup  = (*Adapter)(nil)
	_ domain.HistorySource = (*Adapter)(nil)
)

// New creates an Adapter rooted at baseURL (DefaultBaseURL when empty).
func New(baseURL string, opts restclient.Options) *Adapter {
	opts.BaseURL = restclient.FirstNonEmpty(baseURL, DefaultBaseURL)
	return &Adapter{client: restclient.New(opts), now: time.Now}
}

// Platform returns domain.PlatformMetaculus.
func (a *Adapter) Platform() domain.Platform { return domain.PlatformMetaculus }

// FetchMarkets returns the most active open binary questions.
//
// GET /questions/?limit=100&status=open&order_by=-activity&type=forecast
func (a *Adapter) FetchMarkets(ctx context.Context) ([]domain.UnifiedMarket, error) {
	params := url.Values{}
	params.Set("limit", "100")
	params.Set("status", "open")
	params.Set("order_by", "-activity")
	params.Set("type", "forecast")

	var list apiQuestionList
	if err := a.client.GetJSON(ctx, "/questions/", params, &list); err != nil {
		return nil, fmt.Errorf("metaculus: list questions: %w", err)
	}

	markets := make([]domain.UnifiedMarket, 0, len(list.Results))
	for i := range list.Results {
		if m, ok := list.Results[i].toUnified(); ok {
			markets = append(markets, m)
		}
	}
	return markets, nil
}

// GetMarket returns one question by numeric id.
//
// GET /questions/{id}/
func (a *Adapter) GetMarket(ctx context.Context, id string) (domain.UnifiedMarket, error) {
	p, err := a.post(ctx, id)
	if err != nil {
		return domain.UnifiedMarket{}, err
	}
	m, ok := p.toUnified()
	if !ok {
		return domain.UnifiedMarket{}, fmt.Errorf("metaculus: question %s: %w", id, domain.ErrNotFound)
	}
	return m, nil
}

func (a *Adapter) post(ctx context.Context, id string) (apiPost, error) {
	if _, err := strconv.ParseInt(id, 10, 64); err != nil {
		return apiPost{}, fmt.Errorf("metaculus: question id %q: %w", id, domain.ErrInvalidInput)
	}
	var p apiPost
	if err := a.client.GetJSON(ctx, "/questions/"+id+"/", nil, &p); err != nil {
		return apiPost{}, fmt.Errorf("metaculus: get question %s: %w", id, err)
	}
	return p, nil
}

// History returns the community median over time, oldest first.
func (a *Adapter) History(ctx context.Context, id string, r domain.HistoryRange) ([]domain.HistoryPoint, error) {
	p, err := a.post(ctx, id)
	if err != nil {
		return nil, err
	}

	var since int64
	if r != domain.RangeAll {
		since = r.Since(a.now()).Unix()
	}

	var points []domain.HistoryPoint
	if p.Question != nil {
		for _, f := range p.Question.Aggregations.RecencyWeighted.History {
			if len(f.Centers) == 0 {
				continue
			}
			points = append(points, domain.HistoryPoint{Time: int64(f.StartTime), Value: f.Centers[0] * 100})
		}
	}
	if len(points) == 0 && p.CommunityPrediction != nil {
		for _, lp := range p.CommunityPrediction.History {
			if lp.Y == nil {
				continue
			}
			points = append(points, domain.HistoryPoint{Time: int64(lp.X), Value: *lp.Y * 100})
		}
	}

	out := points[:0]
	for _, pt := range points {
		if pt.Time >= since && pt.Value >= 0 && pt.Value <= 100 {
			out = append(out, pt)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time < out[j].Time })
	return out, nil
}

func (p *apiPost) probability() float64 {
	if p.Question == nil {
		return 50
	}
	latest := p.Question.Aggregations.RecencyWeighted.Latest
	if latest == nil || len(latest.Centers) == 0 {
		return 50
	}
	return math.Round(latest.Centers[0] * 100)
}

// toUnified keeps unresolved binary questions with a title.
func (p *apiPost) toUnified() (domain.UnifiedMarket, bool) {
	if p.Resolved {
		return domain.UnifiedMarket{}, false
	}
	if p.Question != nil && p.Question.Type != "" && p.Question.Type != "binary" {
		return domain.UnifiedMarket{}, false
	}
	title := restclient.FirstNonEmpty(p.Title, p.ShortTitle)
	if title == "" {
		return domain.UnifiedMarket{}, false
	}

	volume := p.NrForecasters
	if volume == 0 {
		volume = p.ForecastsCount
	}
	id := strconv.FormatInt(p.ID, 10)
	return domain.UnifiedMarket{
		ID:          domain.MarketID(domain.PlatformMetaculus, id),
		Question:    title,
		Platform:    domain.PlatformMetaculus,
		Probability: p.probability(),
		Volume:      volume,
		VolumeLabel: "Forecasters",
		Category:    matching.InferCategory(title),
		EndDate:     restclient.ParseTime(p.ScheduledCloseTime),
		URL:         siteURL + id + "/" + p.Slug + "/",
		IsPlayMoney: true,
		HistoryID:   id,
	}, true
}
