package timeline_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"echosurvey/internal/survey"
	"echosurvey/internal/timeline"
)

func names(t *testing.T, paths ...string) []survey.Name {
	t.Helper()
	out := make([]survey.Name, 0, len(paths))
	for _, path := range paths {
		name, err := survey.ParseName(path)
		require.NoError(t, err)
		out = append(out, name)
	}
	return out
}

func TestGroupUniqueDatesAndMembership(t *testing.T) {
	g := timeline.Group(names(t, "20170102-T1.nc", "20170101-T2.nc", "20170101-T1.nc"))

	assert.Equal(t, []string{"20170101", "20170102"}, g.Dates())
	assert.Len(t, g.Files("20170101"), 2)
	assert.Len(t, g.Files("20170102"), 1)
	assert.Equal(t, 3, g.Len())

	first := g.Files("20170101")
	assert.Equal(t, "20170101-T1", first[0].Timestamp)
	assert.Equal(t, "20170101-T2", first[1].Timestamp)
}

func TestFilesToleratesUnknownDate(t *testing.T) {
	g := timeline.Group(names(t, "SaKe-D20170720-T120000.nc"))
	assert.Empty(t, g.Files("D20990101"))
	assert.Empty(t, g.Files(""))
}

func TestFilesMatchesBySubstring(t *testing.T) {
	g := timeline.Group(names(t,
		"SaKe-D20170720-T120000.nc",
		"SaKe-D20170721-T000000.nc",
	))
	// A shortened date token matches every observation that contains it.
	assert.Len(t, g.Files("D201707"), 2)
}

func TestGroupEmpty(t *testing.T) {
	g := timeline.Group(nil)
	assert.Empty(t, g.Dates())
	assert.Zero(t, g.Len())
}
