package filterexpr

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type listMsg struct {
	filter  string
	orderBy string
}

func (m listMsg) GetFilter() string  { return m.filter }
func (m listMsg) GetOrderBy() string { return m.orderBy }

type listParams struct {
	Language     string
	SessionID    string
	Word         string
	Difficulties []string
	CreatedAfter *time.Time
	MinScore     float64
	SortKey      string
	SortDesc     bool
}

func historySchema() Schema {
	return Schema{
		Fields: map[string]Field{
			"language":   {Kind: KindString, Ops: map[Op]string{OpEQ: "Language"}},
			"session_id": {Kind: KindString, Ops: map[Op]string{OpEQ: "SessionID"}},
			"word":       {Kind: KindString, Ops: map[Op]string{OpEQ: "Word"}},
			"difficulty": {Kind: KindString, Ops: map[Op]string{OpIN: "Difficulties"}},
			"created_at": {Kind: KindTimestamp, Ops: map[Op]string{OpGTE: "CreatedAfter"}},
			"score":      {Kind: KindNumber, Ops: map[Op]string{OpGTE: "MinScore"}},
		},
		Order: OrderSchema{
			Default:     "created_at",
			DefaultDesc: true,
			Keys:        map[string]bool{"created_at": true, "word": true},
			KeyField:    "SortKey",
			DescField:   "SortDesc",
		},
	}
}

func TestBindConjunction(t *testing.T) {
	var params listParams
	msg := listMsg{filter: `language == "de" && word == "haus" && created_at >= timestamp("2024-04-01T00:00:00Z")`}
	require.NoError(t, Bind(msg, &params, historySchema()))

	assert.Equal(t, "de", params.Language)
	assert.Equal(t, "haus", params.Word)
	require.NotNil(t, params.CreatedAfter)
	assert.Equal(t, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), params.CreatedAfter.UTC())
}

func TestBindInList(t *testing.T) {
	var params listParams
	msg := listMsg{filter: `difficulty in ["beginner", "intermediate"]`}
	require.NoError(t, Bind(msg, &params, historySchema()))
	assert.Equal(t, []string{"beginner", "intermediate"}, params.Difficulties)
}

func TestBindNumericComparison(t *testing.T) {
	var params listParams
	msg := listMsg{filter: `score >= 40`}
	require.NoError(t, Bind(msg, &params, historySchema()))
	assert.Equal(t, 40.0, params.MinScore)
}

func TestBindDefaultOrder(t *testing.T) {
	var params listParams
	require.NoError(t, Bind(listMsg{}, &params, historySchema()))
	assert.Equal(t, "created_at", params.SortKey)
	assert.True(t, params.SortDesc)
}

func TestBindExplicitOrder(t *testing.T) {
	var params listParams
	require.NoError(t, Bind(listMsg{orderBy: "word asc"}, &params, historySchema()))
	assert.Equal(t, "word", params.SortKey)
	assert.False(t, params.SortDesc)
}

func TestBindRejections(t *testing.T) {
	cases := map[string]listMsg{
		"disjunction":        {filter: `language == "de" || word == "haus"`},
		"unknown field":      {filter: `secret == "x"`},
		"disallowed op":      {filter: `language >= "de"`},
		"non literal rhs":    {filter: `language == word`},
		"bad timestamp":      {filter: `created_at >= timestamp("yesterday")`},
		"wrong literal kind": {filter: `language == 3`},
		"unknown order key":  {orderBy: "score desc"},
		"bad direction":      {orderBy: "word sideways"},
	}
	for name, msg := range cases {
		t.Run(name, func(t *testing.T) {
			var params listParams
			assert.Error(t, Bind(msg, &params, historySchema()))
		})
	}
}
