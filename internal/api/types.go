package api

// AskRequest is the body of /ask and /topk.
type AskRequest struct {
	Query string `json:"query"`
}

// AskResponse is returned by /ask. MatchQuestion is empty unless the
// outcome is an answer.
type AskResponse struct {
	Answer        string  `json:"answer"`
	MatchQuestion string  `json:"match_question"`
	Score         float64 `json:"score"`
	Outcome       string  `json:"outcome"`
}

// RankItem is one row of a /topk response.
type RankItem struct {
	ID       string  `json:"id"`
	Question string  `json:"question"`
	Answer   string  `json:"answer"`
	Score    float64 `json:"score"`
}

// TopKResponse is returned by /topk.
type TopKResponse struct {
	Results []RankItem `json:"results"`
}

// StatusResponse is returned by GET /.
type StatusResponse struct {
	Status  string `json:"status"`
	Items   int    `json:"items"`
	Version uint64 `json:"version"`
}

// ReloadResponse is returned by /reload.
type ReloadResponse struct {
	Documents int    `json:"documents"`
	Version   uint64 `json:"version"`
}

// ErrorResponse carries a failure message.
type ErrorResponse struct {
	Error string `json:"error"`
}
