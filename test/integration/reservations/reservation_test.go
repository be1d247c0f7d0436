package integrationtests

import (
	"fmt"
	"os"
	"regexp"
	"testing"
	"time"

	"libroom/pkg/model"
	"libroom/test/integration/testutil"
)

// The suite runs against a live reservations service named by
// TEST_SERVER_URL. The server must be configured with a rate limit high
// enough for the whole suite and with the default scheduling rules
// (08:00-18:00 window, 120-minute slots, closed Sundays).
func serverURL(t *testing.T) string {
	t.Helper()
	url := os.Getenv("TEST_SERVER_URL")
	if url == "" {
		t.Skip("TEST_SERVER_URL not set, skipping integration tests")
	}
	return url
}

// bookableDate picks a near-future date that is open under the default
// rules.
func bookableDate() string {
	d := time.Now().AddDate(0, 0, 7)
	if d.Weekday() == time.Sunday {
		d = d.AddDate(0, 0, 1)
	}
	return d.Format("2006-01-02")
}

func validRequest(date, start, end string) map[string]any {
	return map[string]any{
		"date":        date,
		"start_time":  start,
		"end_time":    end,
		"full_name":   "Maria Perez",
		"document_id": "V12345678",
		"email":       "maria.perez@example.com",
		"phone":       "0414-555-1234",
		"event_type":  model.EventWorkshop,
		"attendees":   15,
		"description": "Monthly community workshop on local history",
	}
}

func decodeRequest(t *testing.T, resp *testutil.Response) *model.ReservationRequest {
	t.Helper()
	var result struct {
		Data model.ReservationRequest `json:"data"`
	}
	if err := resp.DecodeJSON(&result); err != nil {
		t.Fatalf("failed to decode reservation request: %v", err)
	}
	return &result.Data
}

func TestReservationLifecycle(t *testing.T) {
	client := testutil.NewClient(serverURL(t))
	client.WaitForHealthy(t, 30*time.Second)

	date := bookableDate()

	// The slot grid for the default window starts at 08:00.
	resp := client.POST(t, "/api/v1/reservations", validRequest(date, "08:00", "10:00"))
	testutil.AssertStatusCode(t, resp, 201)
	created := decodeRequest(t, resp)

	if !regexp.MustCompile(`^RSV-\d{8}-[0-9A-F]{8}$`).MatchString(created.RequestNumber) {
		t.Errorf("unexpected request number shape: %q", created.RequestNumber)
	}
	if created.Status != model.StatusPending {
		t.Errorf("expected status pending, got %q", created.Status)
	}

	// Same slot, different applicant: the conflict guard must refuse.
	second := validRequest(date, "08:00", "10:00")
	second["full_name"] = "Jose Gomez"
	second["document_id"] = "V87654321"
	second["email"] = "jose.gomez@example.com"
	resp = client.POST(t, "/api/v1/reservations", second)
	testutil.AssertStatusCode(t, resp, 409)

	// The slot shows as taken on the availability surface.
	resp = client.GET(t, "/api/v1/availability/slots?date="+date)
	testutil.AssertStatusCode(t, resp, 200)
	var slots struct {
		Data []struct {
			StartTime string `json:"start_time"`
			Available bool   `json:"available"`
		} `json:"data"`
	}
	if err := resp.DecodeJSON(&slots); err != nil {
		t.Fatalf("failed to decode slots: %v", err)
	}
	if len(slots.Data) == 0 {
		t.Fatal("expected slots for a bookable date")
	}

	// Lookup by number round-trips.
	resp = client.GET(t, "/api/v1/reservations/number/"+created.RequestNumber)
	testutil.AssertStatusCode(t, resp, 200)
	fetched := decodeRequest(t, resp)
	if fetched.RequestNumber != created.RequestNumber {
		t.Errorf("expected request %q, got %q", created.RequestNumber, fetched.RequestNumber)
	}

	// First decision wins.
	decisionPath := fmt.Sprintf("/api/v1/reservations/number/%s/decision", created.RequestNumber)
	resp = client.POST(t, decisionPath, map[string]any{"approve": true, "comment": "See you there"})
	testutil.AssertStatusCode(t, resp, 200)
	decided := decodeRequest(t, resp)
	if decided.Status != model.StatusApproved {
		t.Errorf("expected status approved, got %q", decided.Status)
	}

	resp = client.POST(t, decisionPath, map[string]any{"approve": false})
	testutil.AssertStatusCode(t, resp, 409)
}

func TestSubmitValidationFailures(t *testing.T) {
	client := testutil.NewClient(serverURL(t))
	client.WaitForHealthy(t, 30*time.Second)

	date := bookableDate()

	bad := validRequest(date, "10:00", "08:00")
	resp := client.POST(t, "/api/v1/reservations", bad)
	testutil.AssertStatusCode(t, resp, 422)
	testutil.AssertContains(t, resp, "EndTime")

	resp = client.POSTRaw(t, "/api/v1/reservations", []byte(`{"date": not-json`))
	testutil.AssertStatusCode(t, resp, 400)
}

func TestAvailabilityEndpoints(t *testing.T) {
	client := testutil.NewClient(serverURL(t))
	client.WaitForHealthy(t, 30*time.Second)

	resp := client.GET(t, "/api/v1/availability/dates?days=14")
	testutil.AssertStatusCode(t, resp, 200)
	var dates struct {
		Data []string `json:"data"`
	}
	if err := resp.DecodeJSON(&dates); err != nil {
		t.Fatalf("failed to decode dates: %v", err)
	}
	for _, d := range dates.Data {
		parsed, err := time.Parse("2006-01-02", d)
		if err != nil {
			t.Errorf("bookable date %q is not a date", d)
			continue
		}
		if parsed.Weekday() == time.Sunday {
			t.Errorf("bookable dates include closed weekday: %s", d)
		}
	}

	resp = client.GET(t, "/api/v1/availability/slots")
	testutil.AssertStatusCode(t, resp, 400)

	resp = client.GET(t, "/api/v1/availability/slots?date=not-a-date")
	testutil.AssertStatusCode(t, resp, 400)
}

func TestListPagination(t *testing.T) {
	client := testutil.NewClient(serverURL(t))
	client.WaitForHealthy(t, 30*time.Second)

	resp := client.GET(t, "/api/v1/reservations?limit=5&offset=0")
	testutil.AssertStatusCode(t, resp, 200)
	var page struct {
		Data       []model.ReservationRequest `json:"data"`
		TotalCount int64                      `json:"total_count"`
		Limit      int                        `json:"limit"`
		Offset     int64                      `json:"offset"`
	}
	if err := resp.DecodeJSON(&page); err != nil {
		t.Fatalf("failed to decode page: %v", err)
	}
	if page.Limit != 5 {
		t.Errorf("expected limit 5, got %d", page.Limit)
	}

	resp = client.GET(t, "/api/v1/reservations?status=bogus")
	testutil.AssertStatusCode(t, resp, 400)
}
