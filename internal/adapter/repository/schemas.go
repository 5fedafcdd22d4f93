package repository

import (
	"time"

	"github.com/eslsoft/drillnet/internal/repository"
	"github.com/eslsoft/drillnet/pkg/filterexpr"
)

// listExerciseParams receives the parsed filter and ordering for history
// listing queries.
type listExerciseParams struct {
	Language      string
	SessionID     string
	Word          string
	Difficulties  []string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	SortKey       string
	SortDesc      bool
}

var listExerciseSchema = filterexpr.Schema{
	Fields: map[string]filterexpr.Field{
		"language": {
			Kind: filterexpr.KindString,
			Ops:  map[filterexpr.Op]string{filterexpr.OpEQ: "Language"},
		},
		"session_id": {
			Kind: filterexpr.KindString,
			Ops:  map[filterexpr.Op]string{filterexpr.OpEQ: "SessionID"},
		},
		"word": {
			Kind: filterexpr.KindString,
			Ops:  map[filterexpr.Op]string{filterexpr.OpEQ: "Word"},
		},
		"difficulty": {
			Kind: filterexpr.KindString,
			Ops:  map[filterexpr.Op]string{filterexpr.OpIN: "Difficulties"},
		},
		"created_at": {
			Kind: filterexpr.KindTimestamp,
			Ops: map[filterexpr.Op]string{
				filterexpr.OpGTE: "CreatedAfter",
				filterexpr.OpLTE: "CreatedBefore",
			},
		},
	},
	Order: filterexpr.OrderSchema{
		Default:     "created_at",
		DefaultDesc: true,
		Keys: map[string]bool{
			"created_at": true,
			"word":       true,
			"session_id": true,
		},
		KeyField:  "SortKey",
		DescField: "SortDesc",
	},
}

func bindListExercise(query *repository.ListExerciseQuery, params *listExerciseParams) error {
	return filterexpr.Bind(&query.FilterOrder, params, listExerciseSchema)
}
