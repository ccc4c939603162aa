package aggregator

import (
	"sort"

	"voc-insights-go/internal/types"
)

// Summary is the roll-up of a backfill run.
type Summary struct {
	Total               int            `json:"total"`
	Succeeded           int            `json:"succeeded"`
	Failed              int            `json:"failed"`
	Retryable           int            `json:"retryable"`
	SuccessRate         float64        `json:"success_rate"`
	ByErrorCode         map[string]int `json:"by_error_code"`
	ByCallNature        map[string]int `json:"by_call_nature"`
	ByAgent             map[string]int `json:"by_agent"`
	AvgConversationSecs float64        `json:"avg_conversation_secs"`
	TopCategories       []string       `json:"top_categories"`
}

func Aggregate(outcomes []types.Outcome) Summary {
	s := Summary{
		Total:        len(outcomes),
		ByErrorCode:  map[string]int{},
		ByCallNature: map[string]int{},
		ByAgent:      map[string]int{},
	}
	cats := map[string]int{}
	var duration float64
	for _, o := range outcomes {
		if !o.Succeeded() {
			s.Failed++
			s.ByErrorCode[o.ErrorCode]++
			if o.Retryable {
				s.Retryable++
			}
			continue
		}
		s.Succeeded++
		if o.Record == nil {
			continue
		}
		if o.Record.CallNature != "" {
			s.ByCallNature[o.Record.CallNature]++
		}
		if o.Record.Agent != "" {
			s.ByAgent[o.Record.Agent]++
		}
		for _, c := range o.Record.CategoriesDetected {
			cats[c]++
		}
		duration += o.Record.ConversationDuration
	}
	if s.Total > 0 {
		s.SuccessRate = float64(s.Succeeded) / float64(s.Total)
	}
	if s.Succeeded > 0 {
		s.AvgConversationSecs = duration / float64(s.Succeeded)
	}

	type pc struct {
		c string
		n int
	}
	var arr []pc
	for k, v := range cats {
		arr = append(arr, pc{k, v})
	}
	sort.Slice(arr, func(i, j int) bool {
		if arr[i].n != arr[j].n {
			return arr[i].n > arr[j].n
		}
		return arr[i].c < arr[j].c
	})
	s.TopCategories = []string{}
	for i := 0; i < len(arr) && i < 5; i++ {
		s.TopCategories = append(s.TopCategories, arr[i].c)
	}
	return s
}
