package geocode

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func fakeAMAP(t *testing.T, body string) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") == "" {
			t.Error("request missing api key")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return NewClient("test-key").WithEndpoint(srv.URL)
}

func TestSearch_ParsesPlaces(t *testing.T) {
	c := fakeAMAP(t, `{
		"status": "1",
		"info": "OK",
		"pois": [
			{"id": "B1", "name": "西湖国宾馆", "address": "杨公堤18号", "location": "120.131233,30.241975"},
			{"id": "B2", "name": "坏坐标", "address": [], "location": "not-a-location"},
			{"id": "B3", "name": "无地址", "address": [], "location": "120.2,30.3"}
		]
	}`)

	places, err := c.Search(context.Background(), "西湖")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(places) != 2 {
		t.Fatalf("places = %d, want unparseable entries skipped", len(places))
	}
	if places[0].Name != "西湖国宾馆" || places[0].Address != "杨公堤18号" {
		t.Errorf("place = %+v", places[0])
	}
	if places[0].Location.Lng != 120.131233 || places[0].Location.Lat != 30.241975 {
		t.Errorf("location = %+v, lng,lat order swapped?", places[0].Location)
	}
	if places[1].Address != "" {
		t.Errorf("array address should decode as empty, got %q", places[1].Address)
	}
}

func TestSearch_NoUsableResults(t *testing.T) {
	c := fakeAMAP(t, `{"status":"1","info":"OK","pois":[{"id":"B1","location":"garbage"}]}`)

	if _, err := c.Search(context.Background(), "nowhere"); !errors.Is(err, ErrNoResults) {
		t.Errorf("err = %v, want ErrNoResults", err)
	}
}

func TestSearch_APIRejection(t *testing.T) {
	c := fakeAMAP(t, `{"status":"0","info":"INVALID_USER_KEY"}`)

	_, err := c.Search(context.Background(), "西湖")
	if err == nil {
		t.Fatal("expected an error for rejected request")
	}
}

func TestSearch_MissingKey(t *testing.T) {
	c := NewClient("")
	if _, err := c.Search(context.Background(), "西湖"); !errors.Is(err, ErrNoAPIKey) {
		t.Errorf("err = %v, want ErrNoAPIKey", err)
	}
}

func TestSearch_EmptyQuery(t *testing.T) {
	c := NewClient("key")
	if _, err := c.Search(context.Background(), "   "); !errors.Is(err, ErrNoResults) {
		t.Errorf("err = %v, want ErrNoResults", err)
	}
}

func TestParseLocation(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"120.15,30.24", true},
		{" 120.15 , 30.24 ", true},
		{"120.15", false},
		{"a,b", false},
		{"", false},
		{"120.15,30.24,5", false},
	}
	for _, tc := range cases {
		if _, ok := parseLocation(tc.in); ok != tc.ok {
			t.Errorf("parseLocation(%q) ok = %v, want %v", tc.in, ok, tc.ok)
		}
	}
}
