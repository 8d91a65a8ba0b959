package nav

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/snapshop/snapshop/internal/search"
)

type fakeScreen struct {
	name    string
	payload *Payload
}

func newTestTable(builds *int) *Table[fakeScreen] {
	table := NewTable[fakeScreen]()
	table.Handle(PathSubmission, RouteSubmission, func(p *Payload) fakeScreen {
		*builds++
		return fakeScreen{name: "submission", payload: p}
	})
	table.Handle(PathResults, RouteResults, func(p *Payload) fakeScreen {
		*builds++
		return fakeScreen{name: "results", payload: p}
	})
	return table
}

func TestTable_ResolveCarriesPayload(t *testing.T) {
	var builds int
	table := newTestTable(&builds)

	results := search.ResultSet{{ID: "1", Title: "Cat Toy"}}
	route, screen, err := table.Resolve(To(PathResults, WithResults(results)))
	require.NoError(t, err)
	require.Equal(t, RouteResults, route)
	require.Equal(t, "results", screen.name)
	require.NotNil(t, screen.payload)
	require.Equal(t, results, screen.payload.Results)
	require.Equal(t, 1, builds)
}

func TestTable_ReloadDropsPayload(t *testing.T) {
	var builds int
	table := newTestTable(&builds)

	_, screen, err := table.Resolve(Reload(PathResults))
	require.NoError(t, err)
	require.Nil(t, screen.payload)
}

func TestTable_NormalizesPaths(t *testing.T) {
	var builds int
	table := newTestTable(&builds)

	for _, path := range []string{"", " / ", "results/", "/results//"} {
		_, _, err := table.Resolve(Reload(path))
		require.NoError(t, err, "path %q", path)
	}

	route, _, err := table.Resolve(Reload(""))
	require.NoError(t, err)
	require.Equal(t, RouteSubmission, route)
}

func TestTable_UnknownRoute(t *testing.T) {
	var builds int
	table := newTestTable(&builds)

	_, _, err := table.Resolve(Reload("/checkout"))
	require.ErrorIs(t, err, ErrUnknownRoute)
	require.Zero(t, builds)
}

func TestTable_PathLookup(t *testing.T) {
	var builds int
	table := newTestTable(&builds)

	path, ok := table.PathOf(RouteResults)
	require.True(t, ok)
	require.Equal(t, PathResults, path)
	require.Equal(t, []string{"/", "/results"}, table.Paths())
}
