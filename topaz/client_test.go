package topaz

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeetingsRequestShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/meeting", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("X-API-Key"))
		assert.Equal(t, "application/json", r.Header.Get("accept"))
		q := r.URL.Query()
		assert.Equal(t, "2025-06-01", q.Get("from"))
		assert.Equal(t, "2025-06-01", q.Get("to"))
		assert.Equal(t, "VIC", q.Get("owningauthoritycode"))
		w.Write([]byte(`[{"meetingId": 42, "trackCode": "MEA", "trackName": "The Meadows"}]`))
	}))
	defer srv.Close()

	c := New(srv.URL, "secret")
	meetings, err := c.Meetings(context.Background(), "2025-06-01", "2025-06-01", "VIC")
	require.NoError(t, err)
	require.Len(t, meetings, 1)
	assert.Equal(t, int64(42), meetings[0].MeetingID)
	assert.Equal(t, "MEA", meetings[0].TrackCode)
}

func TestRacesForMeetingDecodesRunners(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/meeting/42/races", r.URL.Path)
		w.Write([]byte(`[
			{"raceId": 7, "raceNumber": 1, "distance": 525, "runs": [
				{"dogId": 1, "dogName": "FAST DOG", "boxNumber": 3, "incomingGrade": "5", "scratched": false},
				{"dogId": 2, "dogName": "LATE OUT", "boxNumber": null, "incomingGrade": null, "scratched": true}
			]}
		]`))
	}))
	defer srv.Close()

	c := New(srv.URL, "secret")
	races, err := c.RacesForMeeting(context.Background(), 42)
	require.NoError(t, err)
	require.Len(t, races, 1)
	require.Len(t, races[0].Runners, 2)

	first := races[0].Runners[0]
	require.NotNil(t, first.BoxNumber)
	assert.Equal(t, 3, *first.BoxNumber)
	assert.False(t, first.Scratched)

	second := races[0].Runners[1]
	assert.Nil(t, second.BoxNumber)
	assert.Nil(t, second.IncomingGrade)
	assert.True(t, second.Scratched)
}

func TestBulkRunsPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bulk/runs/VIC/2025/6", r.URL.Path)
		w.Write([]byte(`[{"runId": 1, "dogId": 9, "trackCode": "MEA", "place": 1}]`))
	}))
	defer srv.Close()

	c := New(srv.URL, "secret")
	runs, err := c.BulkRuns(context.Background(), "VIC", 2025, 6)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, int64(1), runs[0].RunID)
	assert.Equal(t, int64(9), runs[0].DogID)
	require.NotNil(t, runs[0].Place)
	assert.Equal(t, 1, *runs[0].Place)
}

func TestNon2xxIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := New(srv.URL, "secret")
	_, err := c.Meetings(context.Background(), "2025-06-01", "", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.Contains(t, err.Error(), "rate limited")
}
