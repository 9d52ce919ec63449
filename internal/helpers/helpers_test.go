package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsPasswordStrong(t *testing.T) {
	tests := []struct {
		password string
		want     bool
	}{
		{"Str0ng!pass", true},
		{"weak", false},
		{"alllowercase1!", false},
		{"ALLUPPERCASE1!", false},
		{"NoDigits!!", false},
		{"NoSpecial123", false},
		{"Sh0rt!", false},
	}
	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			assert.Equal(t, tt.want, IsPasswordStrong(tt.password))
		})
	}
}

func TestStringTrim(t *testing.T) {
	assert.Equal(t, "abc", StringTrim(`  "abc" `))
	assert.Equal(t, "abc", StringTrim("'abc'"))
	assert.Equal(t, "", StringTrim("   "))
}

func TestParseTime(t *testing.T) {
	got, err := ParseTime("2030-05-01T18:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2030, 5, 1, 18, 0, 0, 0, time.UTC), got)

	got, err = ParseTime("2030-05-01T18:30")
	require.NoError(t, err)
	assert.Equal(t, 30, got.Minute())

	got, err = ParseTime("2030-05-01")
	require.NoError(t, err)
	assert.Equal(t, time.May, got.Month())

	_, err = ParseTime("next tuesday")
	assert.Error(t, err)
}

func TestParsePagination(t *testing.T) {
	limit, offset, err := ParsePagination("", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultLimit, limit)
	assert.Equal(t, 0, offset)

	limit, offset, err = ParsePagination("500", "20")
	require.NoError(t, err)
	assert.Equal(t, MaxLimit, limit)
	assert.Equal(t, 20, offset)

	_, _, err = ParsePagination("0", "")
	assert.Error(t, err)
	_, _, err = ParsePagination("5", "-1")
	assert.Error(t, err)
	_, _, err = ParsePagination("abc", "")
	assert.Error(t, err)

	assert.Equal(t, 3, Page(20, 10))
	assert.Equal(t, 1, Page(0, 0))
}

func TestResponses(t *testing.T) {
	ok := SuccessResponse([]int{1}, "done")
	assert.True(t, ok.Success)
	assert.Equal(t, "done", ok.Message)

	bad := ErrorResponse("nope")
	assert.False(t, bad.Success)
	assert.Equal(t, "nope", bad.Error)

	page := PaginatedResponse(nil, 2, 10, 35)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 35, page.Total)
}
