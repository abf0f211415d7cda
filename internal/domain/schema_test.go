package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_AllPresent(t *testing.T) {
	tbl := loadString(t, "latitude,longitude,noise_level,extra\n1,2,3,4\n")

	res := Validate(tbl, RequiredUploadColumns, MatchExact)

	assert.True(t, res.OK)
	assert.Empty(t, res.Missing)
	assert.NoError(t, res.Err())
}

func TestValidate_MissingNoiseLevel(t *testing.T) {
	tbl := loadString(t, "latitude,longitude\n19.07,72.87\n")

	res := Validate(tbl, RequiredUploadColumns, MatchExact)

	assert.False(t, res.OK)
	assert.Equal(t, []string{"noise_level"}, res.Missing)

	var se *SchemaError
	require.ErrorAs(t, res.Err(), &se)
	assert.Equal(t, []string{"noise_level"}, se.Missing)
	assert.Equal(t, RequiredUploadColumns, se.Required)
	assert.Contains(t, se.Error(), "noise_level")
}

func TestValidate_ReportsInRequiredOrder(t *testing.T) {
	tbl := loadString(t, "longitude\n1\n")

	res := Validate(tbl, RequiredUploadColumns, MatchExact)

	assert.Equal(t, []string{"latitude", "noise_level"}, res.Missing)
}

func TestValidate_ExactModeIsCaseSensitive(t *testing.T) {
	tbl := loadString(t, "Latitude,LONGITUDE,noise_level\n1,2,3\n")

	exact := Validate(tbl, RequiredUploadColumns, MatchExact)
	assert.False(t, exact.OK)
	assert.Equal(t, []string{"latitude", "longitude"}, exact.Missing)

	fold := Validate(tbl, RequiredUploadColumns, MatchFold)
	assert.True(t, fold.OK)
}

func TestResolveColumn_FoldPicksFirstInFileOrder(t *testing.T) {
	tbl := loadString(t, "LATITUDE,latitude\n1,2\n")

	col, ok := ResolveColumn(tbl, "latitude", MatchFold)
	require.True(t, ok)
	assert.Equal(t, "LATITUDE", col)

	col, ok = ResolveColumn(tbl, "latitude", MatchExact)
	require.True(t, ok)
	assert.Equal(t, "latitude", col)
}

func TestResolveValueColumn(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
		found  bool
	}{
		{name: "priority beats file order", header: "avg_db,noise,Value", want: "Value", found: true},
		{name: "case-insensitive", header: "NOISE_LEVEL", want: "NOISE_LEVEL", found: true},
		{name: "noise before noise_level", header: "noise_level,Noise", want: "Noise", found: true},
		{name: "average_db before avg_db", header: "avg_db,Average_dB", want: "Average_dB", found: true},
		{name: "no alias", header: "latitude,longitude,db", found: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := loadString(t, tt.header+"\n")
			got, ok := ResolveValueColumn(tbl)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
