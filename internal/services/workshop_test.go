package services

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func workshopServer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != workshopDetailsPath {
			t.Errorf("Unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchDetailsParsesCatalogResponse(t *testing.T) {
	srv := workshopServer(t, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("Bad form: %v", err)
		}
		if r.PostForm.Get("itemcount") != "2" {
			t.Errorf("Expected itemcount 2, got %q", r.PostForm.Get("itemcount"))
		}
		if r.PostForm.Get("publishedfileids[0]") != "111" || r.PostForm.Get("publishedfileids[1]") != "222" {
			t.Errorf("Unexpected ids in form: %v", r.PostForm)
		}

		fmt.Fprint(w, `{"response":{"result":1,"resultcount":2,"publishedfiledetails":[
			{"publishedfileid":"111","result":1,"title":"测试模组","description":"描述",
			 "creator":"765","preview_url":"https://cdn.example/p.jpg","file_size":"2048",
			 "subscriptions":1500,"time_created":1700000000,"time_updated":1700100000,
			 "tags":[{"tag":"Weapons"},{"tag":"Maps"}],"vote_data":{"score":0.87}},
			{"publishedfileid":"222","result":9}
		]}}`)
	})

	c := NewWorkshopClient(srv.URL, "", 100, time.Millisecond)
	details := c.FetchDetails(context.Background(), []string{"111", "222"})

	if len(details) != 1 {
		t.Fatalf("Expected 1 accessible item, got %d", len(details))
	}
	d, ok := details["111"]
	if !ok {
		t.Fatal("Expected details for 111")
	}
	if d.Title != "测试模组" || d.Description != "描述" || d.Creator != "765" {
		t.Errorf("Unexpected fields: %+v", d)
	}
	if d.FileSize != 2048 {
		t.Errorf("Expected file size 2048 from string field, got %d", d.FileSize)
	}
	if d.Subscriptions != 1500 {
		t.Errorf("Expected 1500 subscriptions, got %d", d.Subscriptions)
	}
	if d.Rating != 0.87 {
		t.Errorf("Expected rating 0.87, got %f", d.Rating)
	}
	if len(d.Tags) != 2 || d.Tags[0] != "Weapons" || d.Tags[1] != "Maps" {
		t.Errorf("Unexpected tags %v", d.Tags)
	}
	if d.CreatedAt.Unix() != 1700000000 || d.UpdatedAt.Unix() != 1700100000 {
		t.Errorf("Unexpected timestamps: %v / %v", d.CreatedAt, d.UpdatedAt)
	}
	if _, ok := details["222"]; ok {
		t.Error("Item with non-OK result must be absent, not zero-valued")
	}
}

func TestFetchDetailsSplitsIntoBatches(t *testing.T) {
	var batchSizes []int
	srv := workshopServer(t, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("Bad form: %v", err)
		}
		count := 0
		fmt.Sscanf(r.PostForm.Get("itemcount"), "%d", &count)
		batchSizes = append(batchSizes, count)
		fmt.Fprint(w, `{"response":{"result":1,"resultcount":0,"publishedfiledetails":[]}}`)
	})

	c := NewWorkshopClient(srv.URL, "", 2, time.Millisecond)
	ids := []string{"1", "2", "3", "4", "5"}
	c.FetchDetails(context.Background(), ids)

	if len(batchSizes) != 3 || batchSizes[0] != 2 || batchSizes[1] != 2 || batchSizes[2] != 1 {
		t.Errorf("Expected batches [2 2 1], got %v", batchSizes)
	}
}

func TestFetchDetailsSurvivesFailedBatch(t *testing.T) {
	var calls int
	srv := workshopServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, `{"response":{"result":1,"resultcount":1,"publishedfiledetails":[
			{"publishedfileid":"2","result":1,"title":"ok","file_size":"1"}
		]}}`)
	})

	c := NewWorkshopClient(srv.URL, "", 1, time.Millisecond)
	details := c.FetchDetails(context.Background(), []string{"1", "2"})

	if len(details) != 1 {
		t.Fatalf("Expected partial results after a failed batch, got %d", len(details))
	}
	if _, ok := details["2"]; !ok {
		t.Error("Expected the second batch's item despite the first failing")
	}
}

func TestFetchDetailsStopsOnCancelledContext(t *testing.T) {
	srv := workshopServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"response":{"result":1,"resultcount":0,"publishedfiledetails":[]}}`)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewWorkshopClient(srv.URL, "", 1, time.Hour)
	details := c.FetchDetails(ctx, []string{"1", "2", "3"})
	if len(details) != 0 {
		t.Errorf("Expected no results under a cancelled context, got %d", len(details))
	}
}

func TestNewWorkshopClientClampsBatchSize(t *testing.T) {
	c := NewWorkshopClient("http://example", "", 500, time.Second)
	if c.batchSize != workshopMaxBatch {
		t.Errorf("Expected batch size clamped to %d, got %d", workshopMaxBatch, c.batchSize)
	}
	c = NewWorkshopClient("http://example", "", 0, time.Second)
	if c.batchSize != workshopMaxBatch {
		t.Errorf("Expected zero batch size replaced with %d, got %d", workshopMaxBatch, c.batchSize)
	}
}
