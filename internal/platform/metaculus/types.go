package metaculus

// apiQuestionList is the paginated /questions/ response.
type apiQuestionList struct {
	Results []apiPost `json:"results"`
	Next    string    `json:"next"`
}

// apiPost wraps a question. Binary forecasts carry the community
// aggregation under question.aggregations.
type apiPost struct {
	ID                 int64        `json:"id"`
	Title              string       `json:"title"`
	ShortTitle         string       `json:"short_title"`
	Slug               string       `json:"slug"`
	Resolved           bool         `json:"resolved"`
	NrForecasters      float64      `json:"nr_forecasters"`
	ForecastsCount     float64      `json:"forecasts_count"`
	ScheduledCloseTime string       `json:"scheduled_close_time"`
	Question           *apiQuestion `json:"question"`

	// Legacy payloads expose the community forecast here instead.
	CommunityPrediction *apiCommunityPrediction `json:"community_prediction"`
}

type apiQuestion struct {
	Type         string          `json:"type"`
	Aggregations apiAggregations `json:"aggregations"`
}

type apiAggregations struct {
	RecencyWeighted apiAggregation `json:"recency_weighted"`
}

type apiAggregation struct {
	Latest  *apiForecast  `json:"latest"`
	History []apiForecast `json:"history"`
}

// apiForecast is one aggregation window; times are unix seconds and
// centers[0] is the community median for binary questions.
type apiForecast struct {
	StartTime float64   `json:"start_time"`
	EndTime   *float64  `json:"end_time"`
	Centers   []float64 `json:"centers"`
}

type apiCommunityPrediction struct {
	History []apiLegacyPoint `json:"history"`
}

type apiLegacyPoint struct {
	X float64  `json:"x"`
	Y *float64 `json:"y"`
}
