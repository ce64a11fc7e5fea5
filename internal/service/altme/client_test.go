package altme

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	xhttp "github.com/FabienAstre/crypto-bullrun-dashboard/pkg/http"
)

func newTestClient(t *testing.T, body string) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/fng/" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	fetcher := xhttp.NewFetcher(
		xhttp.NewClient(xhttp.WithTimeout(2*time.Second)),
		xhttp.WithMaxRetries(1),
	)
	return New(srv.URL, fetcher).(*Client)
}

func TestFearGreed(t *testing.T) {
	client := newTestClient(t, `{"data":[{"value":"76","value_classification":"Greed"}]}`)

	value, label, err := client.FearGreed(context.Background())
	if err != nil {
		t.Fatalf("FearGreed: %v", err)
	}
	if value != 76 {
		t.Fatalf("value = %d, want 76", value)
	}
	if label != "Greed" {
		t.Fatalf("label = %q, want Greed", label)
	}
}

func TestFearGreedEmptyData(t *testing.T) {
	client := newTestClient(t, `{"data":[]}`)
	if _, _, err := client.FearGreed(context.Background()); err == nil {
		t.Fatal("expected error for empty data")
	}
}

func TestFearGreedBadValue(t *testing.T) {
	for _, body := range []string{
		`{"data":[{"value":"greedy","value_classification":"Greed"}]}`,
		`{"data":[{"value":"140","value_classification":"Greed"}]}`,
	} {
		client := newTestClient(t, body)
		if _, _, err := client.FearGreed(context.Background()); err == nil {
			t.Fatalf("expected error for body %s", body)
		}
	}
}
