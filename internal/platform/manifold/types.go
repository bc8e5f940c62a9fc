package manifold

// apiMarket is a Manifold contract. probability is in [0,1]; times are
// unix milliseconds.
type apiMarket struct {
	ID              string   `json:"id"`
	Question        string   `json:"question"`
	Slug            string   `json:"slug"`
	URL             string   `json:"url"`
	CreatorUsername string   `json:"creatorUsername"`
	OutcomeType     string   `json:"outcomeType"`
	IsResolved      bool     `json:"isResolved"`
	Probability     *float64 `json:"probability"`
	Volume          float64  `json:"volume"`
	CloseTime       int64    `json:"closeTime"`
	CoverImageURL   string   `json:"coverImageUrl"`
}

type apiBet struct {
	ContractID  string   `json:"contractId"`
	Outcome     string   `json:"outcome"`
	Amount      float64  `json:"amount"`
	Shares      float64  `json:"shares"`
	ProbBefore  *float64 `json:"probBefore"`
	ProbAfter   *float64 `json:"probAfter"`
	CreatedTime int64    `json:"createdTime"`
	UpdatedTime int64    `json:"updatedTime"`
	IsSold      bool     `json:"isSold"`
	IsCancelled bool     `json:"isCancelled"`
}

type apiUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}
