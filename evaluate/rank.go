package evaluate

import (
	"fmt"
	"sort"

	"github.com/sartorproj/paxcast/model"
)

// CriteriaRow is one line of the information criteria table.
type CriteriaRow struct {
	Model    string         `json:"model"`
	Describe string         `json:"describe"`
	Family   model.Family   `json:"family"`
	Criteria model.Criteria `json:"criteria"`
}

// Criteria reads the information criteria of every successful result, in
// order.
func Criteria(results []model.Result) []CriteriaRow {
	var rows []CriteriaRow
	for _, r := range results {
		if !r.OK() {
			continue
		}
		rows = append(rows, CriteriaRow{
			Model:    r.Name,
			Describe: r.Fitted.Describe(),
			Family:   r.Fitted.Family(),
			Criteria: r.Fitted.Criteria(),
		})
	}
	return rows
}

// Entry is a ranked model.
type Entry struct {
	Model    string         `json:"model"`
	Describe string         `json:"describe"`
	Family   model.Family   `json:"family"`
	Test     Accuracy       `json:"test"`
	Criteria model.Criteria `json:"criteria"`
}

// Failure is a model that could not be fitted or scored.
type Failure struct {
	Model string `json:"model"`
	Error string `json:"error"`
}

// Board holds the two model orderings and the failures.
type Board struct {
	ByRMSE []Entry   `json:"by_rmse"`
	ByAICc []Entry   `json:"by_aicc"`
	Failed []Failure `json:"failed"`
}

// Best returns the model with the lowest test RMSE.
func (b *Board) Best() (Entry, bool) {
	if len(b.ByRMSE) == 0 {
		return Entry{}, false
	}
	return b.ByRMSE[0], true
}

// Rank builds the leaderboard from fit results and their test accuracy.
// Successful fits without a score are listed as failures, with the reason
// from scoreErrs when present. A score for a name that is not a successful
// fit returns ErrUnknownModel. Ties keep catalog order.
func Rank(results []model.Result, scores map[string]Accuracy, scoreErrs map[string]error) (*Board, error) {
	fitted := make(map[string]bool, len(results))
	for _, r := range results {
		if r.OK() {
			fitted[r.Name] = true
		}
	}
	for name := range scores {
		if !fitted[name] {
			return nil, fmt.Errorf("%w: %s", ErrUnknownModel, name)
		}
	}

	board := &Board{}
	var entries []Entry
	for _, r := range results {
		if !r.OK() {
			board.Failed = append(board.Failed, Failure{Model: r.Name, Error: r.Err.Error()})
			continue
		}
		acc, ok := scores[r.Name]
		if !ok {
			reason := "not scored"
			if err := scoreErrs[r.Name]; err != nil {
				reason = err.Error()
			}
			board.Failed = append(board.Failed, Failure{Model: r.Name, Error: reason})
			continue
		}
		entries = append(entries, Entry{
			Model:    r.Name,
			Describe: r.Fitted.Describe(),
			Family:   r.Fitted.Family(),
			Test:     acc,
			Criteria: r.Fitted.Criteria(),
		})
	}

	board.ByRMSE = append([]Entry(nil), entries...)
	sort.SliceStable(board.ByRMSE, func(i, j int) bool {
		return board.ByRMSE[i].Test.RMSE < board.ByRMSE[j].Test.RMSE
	})
	board.ByAICc = append([]Entry(nil), entries...)
	sort.SliceStable(board.ByAICc, func(i, j int) bool {
		return board.ByAICc[i].Criteria.AICc < board.ByAICc[j].Criteria.AICc
	})
	return board, nil
}
